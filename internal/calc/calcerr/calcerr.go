// Package calcerr defines the machine-readable failure kinds returned by the
// stability engine.
package calcerr

import (
	"errors"
	"fmt"
	"math"
)

type Kind string

const (
	InvalidGeometry       Kind = "InvalidGeometryError"
	EmptyLoadCase         Kind = "EmptyLoadCaseError"
	DegenerateEquilibrium Kind = "DegenerateEquilibriumError"
	CapacityExceeded      Kind = "CapacityExceededError"
	NegativeResidualGM    Kind = "NegativeResidualGMError"
	InvalidInput          Kind = "InvalidInputError"
)

// Epsilon is the smallest MCT, TPC or GM the solvers will divide by.
const Epsilon = 1e-6

// Error is a calculation failure. Values holds the offending quantities so a
// caller can show them next to the verdict.
type Error struct {
	Kind   Kind               `json:"kind"`
	Op     string             `json:"op,omitempty"`
	Msg    string             `json:"message"`
	Values map[string]float64 `json:"values,omitempty"`
}

func (e *Error) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
	}
	return fmt.Sprintf("%s: %s: %s", e.Op, e.Kind, e.Msg)
}

// Is matches any *Error of the same kind, so errors.Is(err, calcerr.ErrEmptyLoadCase) works.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

var (
	ErrInvalidGeometry       = &Error{Kind: InvalidGeometry}
	ErrEmptyLoadCase         = &Error{Kind: EmptyLoadCase}
	ErrDegenerateEquilibrium = &Error{Kind: DegenerateEquilibrium}
	ErrCapacityExceeded      = &Error{Kind: CapacityExceeded}
	ErrNegativeResidualGM    = &Error{Kind: NegativeResidualGM}
	ErrInvalidInput          = &Error{Kind: InvalidInput}
)

func New(kind Kind, op, format string, args ...any) *Error {
	return &Error{Kind: kind, Op: op, Msg: fmt.Sprintf(format, args...)}
}

// With attaches a named quantity to the error and returns it.
func (e *Error) With(name string, v float64) *Error {
	if e.Values == nil {
		e.Values = make(map[string]float64)
	}
	e.Values[name] = v
	return e
}

// KindOf returns the kind of the first *Error in err's chain, or "" if there is none.
func KindOf(err error) Kind {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return ""
}

// Finite reports the first named value that is NaN or infinite as an error of
// the given kind. Names and values alternate: Finite(k, op, "kb", kb, "bm", bm).
func Finite(kind Kind, op string, pairs ...any) error {
	for i := 0; i+1 < len(pairs); i += 2 {
		name, _ := pairs[i].(string)
		v, ok := pairs[i+1].(float64)
		if !ok {
			continue
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return New(kind, op, "%s is not a finite number", name)
		}
	}
	return nil
}
