package model

import "errors"

var (
	ErrDuplicateFunction  = errors.New("model: duplicate function")
	ErrDuplicateInstance  = errors.New("model: duplicate instance")
	ErrDuplicateSignal    = errors.New("model: duplicate signal")
	ErrDuplicateAttribute = errors.New("model: duplicate attribute")
	ErrDuplicatePin       = errors.New("model: duplicate pin")
	ErrDuplicatePackage   = errors.New("model: duplicate package configuration")

	// ErrAbstractFunction is returned when a type-level function is attached
	// to a signal.
	ErrAbstractFunction = errors.New("model: function is not instanced")
	// ErrForeignFunction is returned when a function of another schematic is
	// attached to a signal.
	ErrForeignFunction = errors.New("model: function belongs to another schematic")

	// ErrBindingConflict is returned when a pin that is exclusively bound is
	// bound again, or an exclusive bind targets an already bound pin.
	ErrBindingConflict = errors.New("model: binding conflict")
	ErrUnknownPin      = errors.New("model: unknown pin")
)
