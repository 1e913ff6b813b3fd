// Package amd rewrites AMD module definitions (define/require with a
// dependency array and factory function) into ES module import/export
// syntax. Text outside the rewritten regions is left byte-for-byte intact.
package amd

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Sumatoshi-tech/amd2esm/pkg/jsast"
	"github.com/Sumatoshi-tech/amd2esm/pkg/splice"
)

// Formatter reformats a JavaScript fragment.
type Formatter interface {
	Format(code string) (string, error)
}

// Options configures a conversion.
type Options struct {
	// Beautify runs the assembled module body through Formatter.
	Beautify bool

	// Formatter is used when Beautify is set. Nil selects beautify.New().
	Formatter Formatter

	// Now supplies the current year for copyright normalization. Nil uses time.Now.
	Now func() time.Time

	// Logger receives debug output. Nil uses slog.Default().
	Logger *slog.Logger

	// Parser is reused when set; otherwise a shared default parser is used.
	Parser *jsast.Parser
}

// Result describes a finished conversion.
type Result struct {
	// Code is the converted source, or the input when Changed is false.
	Code string

	// Changed is false when no module definition was found.
	Changed bool

	// Shape is the argument layout of the module definition.
	Shape string

	// Imports lists the emitted imports in order.
	Imports []Dependency

	// Components lists binding names synthesized from module paths.
	Components []string

	// Edits are the final replacements applied to the (copyright-updated) input.
	Edits []splice.Edit
}

var defaultParser = sync.OnceValues(jsast.NewParser)

// Convert rewrites the AMD module definition in source into ES module
// syntax. Source without a module definition is returned unchanged. Any
// unsupported pattern aborts the conversion with an error and no output.
func Convert(source string, opts Options) (string, error) {
	res, err := ConvertResult(source, opts)
	if err != nil {
		return "", err
	}

	return res.Code, nil
}

// ConvertResult is Convert with details about what was rewritten.
func ConvertResult(source string, opts Options) (*Result, error) {
	parser := opts.Parser
	if parser == nil {
		var err error

		parser, err = defaultParser()
		if err != nil {
			return nil, fmt.Errorf("init parser: %w", err)
		}
	}

	now := opts.Now
	if now == nil {
		now = time.Now
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	updated := RewriteCopyright(source, now().Year())

	tree, err := parser.Parse(context.Background(), []byte(updated))
	if err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}

	conv := newConverter(tree, opts, logger)

	err = conv.visit()
	if err != nil {
		return nil, err
	}

	if conv.caps.get(roleDefinition) == nil {
		logger.Debug("no module definition found")

		return &Result{Code: source, Shape: shapeNone.String()}, nil
	}

	conflict, err := conv.caps.claimCandidates()
	if err != nil {
		return nil, patternError(tree, conflict, err)
	}

	err = conv.resolve()
	if err != nil {
		return nil, err
	}

	err = conv.reassemble()
	if err != nil {
		return nil, err
	}

	logger.Debug("module converted",
		slog.String("shape", conv.caps.shape.String()),
		slog.Int("imports", conv.deps.Len()),
		slog.Int("components", conv.components.Len()),
		slog.Any("captured", conv.caps.claimed()),
	)

	return &Result{
		Code:       conv.editor.String(),
		Changed:    true,
		Shape:      conv.caps.shape.String(),
		Imports:    conv.deps.Entries(),
		Components: conv.components.Names(),
		Edits:      conv.editor.Edits(),
	}, nil
}

// converter holds the state of one conversion.
type converter struct {
	tree       *jsast.Tree
	editor     *splice.Editor
	opts       Options
	logger     *slog.Logger
	caps       captures
	deps       *DependencyTable
	components *ComponentRegistry
	names      *nameCache

	syncRequires []*jsast.Node
	sideEffects  []*jsast.Node
}

func newConverter(tree *jsast.Tree, opts Options, logger *slog.Logger) *converter {
	return &converter{
		tree:       tree,
		editor:     splice.New(tree.Source),
		opts:       opts,
		logger:     logger,
		deps:       NewDependencyTable(),
		components: NewComponentRegistry(),
		names:      newNameCache(),
	}
}

func (c *converter) replace(n *jsast.Node, text string) error {
	return c.replaceRange(n.Start, n.End, text)
}

func (c *converter) replaceRange(start, end int, text string) error {
	err := c.editor.Replace(start, end, text)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInternal, err)
	}

	return nil
}

// text returns n's source with edits made so far applied.
func (c *converter) text(n *jsast.Node) string {
	return c.editor.Text(n.Start, n.End)
}
