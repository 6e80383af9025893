package gisops

import (
	"fmt"
	"strings"
)

// Kind classifies a boundary failure.
type Kind string

const (
	KindDecode    Kind = "decode"     // malformed JSON or wrong value type
	KindInvalid   Kind = "invalid"    // missing or structurally wrong field
	KindNonFinite Kind = "non_finite" // NaN or ±Inf input, or overflowed result
	KindUnknownOp Kind = "unknown_op"
	KindCanceled  Kind = "canceled"
)

// Error is returned for every input rejected before the geometry core runs.
type Error struct {
	Kind  Kind   `json:"kind"`
	Op    string `json:"op,omitempty"`
	Field string `json:"field,omitempty"`
	Msg   string `json:"message"`
	Cause error  `json:"-"`
}

// Sentinels for errors.Is; only Kind is compared.
var (
	ErrDecode    = &Error{Kind: KindDecode}
	ErrInvalid   = &Error{Kind: KindInvalid}
	ErrNonFinite = &Error{Kind: KindNonFinite}
	ErrUnknownOp = &Error{Kind: KindUnknownOp}
	ErrCanceled  = &Error{Kind: KindCanceled}
)

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString("gisops")
	if e.Op != "" {
		fmt.Fprintf(&b, " %s", e.Op)
	}
	fmt.Fprintf(&b, ": %s", e.Kind)
	if e.Field != "" {
		fmt.Fprintf(&b, ": %s", e.Field)
	}
	if e.Msg != "" {
		fmt.Fprintf(&b, ": %s", e.Msg)
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Cause }

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}
