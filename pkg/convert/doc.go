// Package convert moves objects between the host document model and the
// interchange model.
//
// A Registry dispatches single pieces of geometry by kind. Block definitions
// and instances are handled on top of it: definitions are converted with
// all of their owned geometry, instances embed their definition, and on the
// way into the host definitions are deduplicated by a name derived from the
// conversion's commit identifier.
//
// Registry methods do not lock. A Converter owns a Registry and a Context
// and serializes every conversion against its document.
package convert
