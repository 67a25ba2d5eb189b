package convert

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupported is returned when no converter is registered for a kind.
	ErrUnsupported = errors.New("convert: unsupported object kind")

	// ErrEmptyResult is returned when a converter produced nothing usable,
	// for example a mesh with no faces left.
	ErrEmptyResult = errors.New("convert: conversion produced no result")

	// ErrTransformShape is returned for an instance transform that does not
	// hold exactly 16 values.
	ErrTransformShape = errors.New("convert: instance transform must have 16 entries")

	// ErrDefinitionRejected is returned when the host refuses to register a
	// block definition.
	ErrDefinitionRejected = errors.New("convert: host rejected block definition")

	// ErrDefinitionNotFound is returned when an instance references a
	// definition index the host does not know.
	ErrDefinitionNotFound = errors.New("convert: block definition not found")

	// ErrInstanceRejected is returned when the host refuses to place an
	// instance.
	ErrInstanceRejected = errors.New("convert: host rejected block instance")

	// ErrInstanceNotFound is returned when a placed object cannot be looked
	// up by the id the host handed back.
	ErrInstanceNotFound = errors.New("convert: placed object not found")
)

// ObjectError is the failure of one object in a batch import. Index is the
// object's position in the batch.
type ObjectError struct {
	Index int
	Kind  string
	Err   error
}

func (e *ObjectError) Error() string {
	return fmt.Sprintf("object %d (%s): %v", e.Index, e.Kind, e.Err)
}

func (e *ObjectError) Unwrap() error {
	return e.Err
}
