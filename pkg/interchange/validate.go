package interchange

import "fmt"

// ValidationSeverity indicates whether a finding makes an object unusable or
// is merely informational.
type ValidationSeverity int

const (
	SeverityError   ValidationSeverity = iota // object cannot be converted
	SeverityWarning                           // informational
)

func (s ValidationSeverity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return fmt.Sprintf("ValidationSeverity(%d)", int(s))
	}
}

// ValidationError describes a single validation finding.
type ValidationError struct {
	Kind     Kind               // kind of the offending object
	Message  string             // human-readable description
	Severity ValidationSeverity // error or warning
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Severity, e.Kind, e.Message)
}

// ValidationWarning describes a non-blocking advisory finding.
type ValidationWarning struct {
	Kind    Kind
	Message string
}

// ValidationResult bundles blocking errors and advisory warnings.
type ValidationResult struct {
	Errors   []ValidationError
	Warnings []ValidationWarning
}

// OK reports whether no blocking errors were found.
func (r ValidationResult) OK() bool {
	return len(r.Errors) == 0
}

// Validate runs the structural checks for o and separates errors from
// warnings. It never mutates o.
func Validate(o Object) ValidationResult {
	var findings []ValidationError
	switch v := o.(type) {
	case *Mesh:
		findings = ValidateMesh(v)
	case *BlockInstance:
		findings = ValidateInstance(v)
	case *BlockDefinition:
		findings = ValidateDefinition(v)
	case *Polyline:
		if len(v.Value)%3 != 0 {
			findings = append(findings, ValidationError{
				Kind:     KindPolyline,
				Message:  fmt.Sprintf("value length %d is not a multiple of 3", len(v.Value)),
				Severity: SeverityError,
			})
		}
	}

	var result ValidationResult
	for _, f := range findings {
		if f.Severity == SeverityWarning {
			result.Warnings = append(result.Warnings, ValidationWarning{Kind: f.Kind, Message: f.Message})
		} else {
			result.Errors = append(result.Errors, f)
		}
	}
	return result
}

// ValidateMesh checks array shapes and face records of a mesh.
func ValidateMesh(m *Mesh) []ValidationError {
	var errs []ValidationError
	add := func(sev ValidationSeverity, format string, args ...any) {
		errs = append(errs, ValidationError{Kind: KindMesh, Message: fmt.Sprintf(format, args...), Severity: sev})
	}

	if len(m.Vertices)%3 != 0 {
		add(SeverityError, "vertices length %d is not a multiple of 3", len(m.Vertices))
	}
	if len(m.TextureCoordinates)%2 != 0 {
		add(SeverityError, "texture coordinates length %d is not a multiple of 2", len(m.TextureCoordinates))
	}
	if m.HasColors() && len(m.Colors) != m.VerticesCount() {
		add(SeverityError, "%d colors for %d vertices", len(m.Colors), m.VerticesCount())
	}

	vc := m.VerticesCount()
	for i := 0; i < len(m.Faces); {
		n := FaceArity(m.Faces[i])
		if n < MinFaceCorners {
			add(SeverityWarning, "face record at %d has tag %d, decoding to %d corners", i, m.Faces[i], n)
			break
		}
		if i+n >= len(m.Faces) {
			add(SeverityWarning, "face record at %d declares %d corners but only %d values follow", i, n, len(m.Faces)-i-1)
			break
		}
		for _, idx := range m.Faces[i+1 : i+n+1] {
			if idx < 0 || idx >= vc {
				add(SeverityError, "face record at %d references vertex %d of %d", i, idx, vc)
				break
			}
		}
		i += n + 1
	}

	return errs
}

// ValidateInstance checks the transform shape and embedded definition.
func ValidateInstance(bi *BlockInstance) []ValidationError {
	var errs []ValidationError
	if len(bi.Transform) != TransformSize {
		errs = append(errs, ValidationError{
			Kind:     KindBlockInstance,
			Message:  fmt.Sprintf("transform has %d entries, want %d", len(bi.Transform), TransformSize),
			Severity: SeverityError,
		})
	}
	if bi.BlockDefinition == nil {
		errs = append(errs, ValidationError{
			Kind:     KindBlockInstance,
			Message:  "instance has no block definition",
			Severity: SeverityError,
		})
		return errs
	}
	if !bi.Units.IsKnown() {
		errs = append(errs, ValidationError{
			Kind:     KindBlockInstance,
			Message:  fmt.Sprintf("units %q carry no scale; translation is taken as native", bi.Units),
			Severity: SeverityWarning,
		})
	}
	return append(errs, ValidateDefinition(bi.BlockDefinition)...)
}

// ValidateDefinition checks a block definition and, recursively, the
// definitions of any instances nested in its geometry.
func ValidateDefinition(def *BlockDefinition) []ValidationError {
	var errs []ValidationError
	if def.Name == "" {
		errs = append(errs, ValidationError{
			Kind:     KindBlockDefinition,
			Message:  "definition has no name",
			Severity: SeverityError,
		})
	}
	if len(def.Geometry) == 0 {
		errs = append(errs, ValidationError{
			Kind:     KindBlockDefinition,
			Message:  fmt.Sprintf("definition %q has no geometry", def.Name),
			Severity: SeverityWarning,
		})
	}
	for _, g := range def.Geometry {
		switch v := g.(type) {
		case *Mesh:
			errs = append(errs, ValidateMesh(v)...)
		case *BlockInstance:
			errs = append(errs, ValidateInstance(v)...)
		}
	}
	return errs
}
