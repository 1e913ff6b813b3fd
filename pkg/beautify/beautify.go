// Package beautify reformats JavaScript module text with esbuild's printer.
package beautify

import (
	"errors"
	"fmt"
	"strings"

	"github.com/evanw/esbuild/pkg/api"
)

// ErrFormat is returned when esbuild rejects the input.
var ErrFormat = errors.New("beautify: format failed")

// Formatter prints code with two-space indentation and collapsed braces.
// Comments other than legal comments are not preserved.
type Formatter struct {
	// TrailingNewline keeps the newline esbuild appends to its output.
	TrailingNewline bool
}

// New returns a Formatter suitable for splicing into a larger file.
func New() *Formatter {
	return &Formatter{}
}

// Format reformats code, which may contain JSX and import/export statements.
func (f *Formatter) Format(code string) (string, error) {
	if strings.TrimSpace(code) == "" {
		return code, nil
	}

	result := api.Transform(code, api.TransformOptions{
		Loader:        api.LoaderJSX,
		JSX:           api.JSXPreserve,
		Target:        api.ESNext,
		Format:        api.FormatDefault,
		Charset:       api.CharsetUTF8,
		LegalComments: api.LegalCommentsInline,
		TreeShaking:   api.TreeShakingFalse,
		LogLevel:      api.LogLevelSilent,
	})

	if len(result.Errors) > 0 {
		return "", fmt.Errorf("%w: %s", ErrFormat, describe(result.Errors))
	}

	out := string(result.Code)
	if !f.TrailingNewline {
		out = strings.TrimRight(out, "\n")
	}

	return out, nil
}

func describe(messages []api.Message) string {
	parts := make([]string, 0, len(messages))

	for _, msg := range messages {
		if msg.Location != nil {
			parts = append(parts, fmt.Sprintf("%d:%d: %s", msg.Location.Line, msg.Location.Column, msg.Text))

			continue
		}

		parts = append(parts, msg.Text)
	}

	return strings.Join(parts, "; ")
}
