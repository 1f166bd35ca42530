package errors

import (
	"fmt"
	"strings"
)

// ParseError describes a malformed document. Line and Column are 1-based and
// zero when the position is unknown.
type ParseError struct {
	Path    string
	Line    int
	Column  int
	Message string
}

func (e *ParseError) Error() string {
	loc := e.Path
	if e.Line > 0 {
		loc = fmt.Sprintf("%s:%d:%d", e.Path, e.Line, e.Column)
	}
	if loc == "" {
		return fmt.Sprintf("%s: %s", ErrParse, e.Message)
	}
	return fmt.Sprintf("%s: %s: %s", ErrParse, loc, e.Message)
}

func (e *ParseError) Unwrap() error { return ErrParse }

// PlaceholderError is a malformed `${...}` marker. Pos is the byte offset of
// the `$` that opens the placeholder. Kind is ErrUnterminatedPlaceholder or
// ErrEmptyPlaceholderName.
type PlaceholderError struct {
	Kind error
	Pos  int
}

func (e *PlaceholderError) Error() string {
	return fmt.Sprintf("%s at position %d", e.Kind, e.Pos)
}

func (e *PlaceholderError) Unwrap() error { return e.Kind }

// UndefinedVariableError names a placeholder with no host value. It carries
// only the name, never the string it appeared in.
type UndefinedVariableError struct {
	Name string
}

func (e *UndefinedVariableError) Error() string {
	return fmt.Sprintf("%s: %s", ErrUndefinedVariable, e.Name)
}

func (e *UndefinedVariableError) Unwrap() error { return ErrUndefinedVariable }

// CycleError holds the full inheritance chain of a cycle, with the first
// environment repeated at the end.
type CycleError struct {
	Chain []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("%s: %s", ErrCycleDetected, strings.Join(e.Chain, " -> "))
}

func (e *CycleError) Unwrap() error { return ErrCycleDetected }

// Violation is a single structural problem found by the validator.
type Violation struct {
	Field   string
	Message string
}

func (v *Violation) Error() string {
	if v.Field == "" {
		return v.Message
	}
	return v.Field + ": " + v.Message
}

// ValidationError is the full batch of problems found in one document.
type ValidationError struct {
	Problems []error
}

func (e *ValidationError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s (%d problem", ErrValidation, len(e.Problems))
	if len(e.Problems) != 1 {
		b.WriteString("s")
	}
	b.WriteString(")")
	for _, p := range e.Problems {
		b.WriteString("\n  - ")
		b.WriteString(p.Error())
	}
	return b.String()
}

// Unwrap exposes ErrValidation and every problem so errors.Is and errors.As
// can reach individual violations.
func (e *ValidationError) Unwrap() []error {
	return append([]error{ErrValidation}, e.Problems...)
}

// Stage names for StageError.
const (
	StageLoad        = "load"
	StageValidate    = "validate"
	StageResolve     = "resolve"
	StageDecrypt     = "decrypt"
	StageInterpolate = "interpolate"
)

// StageError tags a resolution failure with the pipeline stage that produced it.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return e.Stage + ": " + e.Err.Error()
}

func (e *StageError) Unwrap() error { return e.Err }
