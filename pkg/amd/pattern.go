package amd

import (
	"errors"
	"fmt"

	"github.com/Sumatoshi-tech/amd2esm/pkg/jsast"
)

// Unsupported-pattern errors: the input uses an AMD form the converter
// refuses to rewrite.
var (
	ErrNamedDefine          = errors.New("found a named define - this is not supported")
	ErrDefineByIdentifier   = errors.New("found a define using a variable as the callback - this is not supported")
	ErrDynamicModuleName    = errors.New("dynamic module names are not supported")
	ErrDuplicateDefinition  = errors.New("found multiple module definitions in one file")
	ErrDuplicateCapture     = errors.New("found more than one declaration for the same role")
	ErrUnknownComponentKind = errors.New("unknown component type")
	ErrConflictingBinding   = errors.New("conflicting import bindings")
	ErrPatternParameter     = errors.New("factory parameters must be plain identifiers")
)

// ErrInternal marks a broken assumption inside the converter rather than a
// problem with the input.
var ErrInternal = errors.New("internal converter error")

// ErrSyntax is returned when the source does not parse.
var ErrSyntax = jsast.ErrSyntax

var unsupported = []error{
	ErrNamedDefine,
	ErrDefineByIdentifier,
	ErrDynamicModuleName,
	ErrDuplicateDefinition,
	ErrDuplicateCapture,
	ErrUnknownComponentKind,
	ErrConflictingBinding,
	ErrPatternParameter,
}

// PatternError locates a rejected pattern in the source.
type PatternError struct {
	Err    error
	Line   int
	Column int
	Text   string
}

// Error implements the error interface.
func (e *PatternError) Error() string {
	if e.Text == "" {
		return fmt.Sprintf("%d:%d: %v", e.Line, e.Column, e.Err)
	}

	return fmt.Sprintf("%d:%d: %v: %s", e.Line, e.Column, e.Err, e.Text)
}

// Unwrap returns the underlying sentinel.
func (e *PatternError) Unwrap() error {
	return e.Err
}

// IsUnsupported reports whether err was caused by an unsupported input pattern.
func IsUnsupported(err error) bool {
	for _, target := range unsupported {
		if errors.Is(err, target) {
			return true
		}
	}

	return false
}

// IsInternal reports whether err signals a converter defect.
func IsInternal(err error) bool {
	return errors.Is(err, ErrInternal)
}

// maxSnippet bounds the source excerpt attached to a PatternError.
const maxSnippet = 60

func patternError(tree *jsast.Tree, n *jsast.Node, err error) error {
	line, col := tree.Position(n.Start)

	text := tree.Text(n)
	if len(text) > maxSnippet {
		text = text[:maxSnippet] + "..."
	}

	return &PatternError{Err: err, Line: line, Column: col, Text: text}
}
