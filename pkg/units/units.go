// Package units defines the length unit tags carried by interchange objects
// and the scale factors used to bring lengths into a host's working unit.
package units

import (
	"fmt"
	"strings"
)

// Unit is a length unit tag as it appears on interchange objects.
type Unit string

const (
	Millimeters Unit = "mm"
	Centimeters Unit = "cm"
	Meters      Unit = "m"
	Kilometers  Unit = "km"
	Inches      Unit = "in"
	Feet        Unit = "ft"
	Yards       Unit = "yd"
	Miles       Unit = "mi"
	None        Unit = "none"
)

// metersPer maps a unit to the number of meters in one of it.
var metersPer = map[Unit]float64{
	Millimeters: 0.001,
	Centimeters: 0.01,
	Meters:      1,
	Kilometers:  1000,
	Inches:      0.0254,
	Feet:        0.3048,
	Yards:       0.9144,
	Miles:       1609.344,
}

// aliases accepts the spellings other applications write into unit fields.
var aliases = map[string]Unit{
	"millimeters": Millimeters,
	"millimetres": Millimeters,
	"centimeters": Centimeters,
	"centimetres": Centimeters,
	"meters":      Meters,
	"metres":      Meters,
	"kilometers":  Kilometers,
	"kilometres":  Kilometers,
	"inches":      Inches,
	"feet":        Feet,
	"yards":       Yards,
	"miles":       Miles,
	"":            None,
}

// Parse normalizes a unit tag. Unknown tags are an error.
func Parse(s string) (Unit, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if u, ok := aliases[s]; ok {
		return u, nil
	}
	u := Unit(s)
	if u == None {
		return None, nil
	}
	if _, ok := metersPer[u]; !ok {
		return None, fmt.Errorf("units: unknown unit %q", s)
	}
	return u, nil
}

// IsKnown reports whether u carries a length scale.
func (u Unit) IsKnown() bool {
	_, ok := metersPer[u]
	return ok
}

func (u Unit) String() string {
	return string(u)
}

// Scale returns the factor that converts a length in from into a length in to.
// A missing or unitless side yields 1: unitless values are taken as already
// being in the target unit.
func Scale(from, to Unit) float64 {
	f, okFrom := metersPer[from]
	t, okTo := metersPer[to]
	if !okFrom || !okTo || from == to {
		return 1
	}
	return f / t
}

// ScaleToNative converts value expressed in from into the native unit.
func ScaleToNative(value float64, from, native Unit) float64 {
	return value * Scale(from, native)
}
