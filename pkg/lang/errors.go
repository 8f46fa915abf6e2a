package lang

import (
	"errors"
	"fmt"
)

var (
	ErrUnexpectedEOF   = errors.New("unexpected end of input")
	ErrUnexpectedToken = errors.New("unexpected token")
	ErrInvalidInput    = errors.New("unrecognized input")

	// ErrNotFound is returned by resolvers, and wrapped by the parser, when
	// an import or symbol path does not resolve.
	ErrNotFound = errors.New("not found")
	// ErrAmbiguous is returned by resolvers when a path names more than one
	// component.
	ErrAmbiguous = errors.New("ambiguous symbol")

	ErrCountMismatch   = errors.New("bus width mismatch")
	ErrInlinePlacement = errors.New("inline part must sit between two connection points")
	ErrSignalToSignal  = errors.New("cannot connect two signals")
	ErrUnknownSignal   = errors.New("unknown signal")
	ErrUnknownInstance = errors.New("unknown instance")
	ErrUnknownFunction = errors.New("unknown function")
	ErrInvalidPath     = errors.New("invalid connection path")
	ErrDuplicate       = errors.New("duplicate declaration")
)

// SyntaxError reports a structural problem in a document. Line is the line
// of the offending token, or of the last consumed token when the input ended
// early. Path is set for resolution failures.
type SyntaxError struct {
	Line  int
	Token *Token
	Msg   string
	Path  string
	Err   error
}

func (e *SyntaxError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Msg)
	}
	return e.Msg
}

func (e *SyntaxError) Unwrap() error { return e.Err }
