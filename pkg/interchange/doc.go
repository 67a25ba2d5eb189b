// Package interchange defines the portable object model exchanged between
// applications. Every object is an attributed record: a fixed set of typed
// fields plus a dynamic attribute map that converters use to carry
// application-specific data such as layer membership.
//
// Block definitions are embedded by value inside each block instance; the
// model has no sharing mechanism, so a definition placed many times appears
// many times in an exported graph.
package interchange
