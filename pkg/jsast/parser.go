// Package jsast parses JavaScript (with JSX) into an immutable syntax tree
// that carries byte offsets, parent links and named fields.
package jsast

import (
	"context"
	"errors"
	"fmt"
	"sync"

	sitter "github.com/alexaandru/go-tree-sitter-bare"
	"github.com/alexaandru/go-sitter-forest/javascript"

	"github.com/Sumatoshi-tech/amd2esm/pkg/safeconv"
)

// Sentinel errors for parsing.
var (
	ErrSyntax      = errors.New("syntax error")
	errNoRootNode  = errors.New("jsast: no root node")
	errPoolType    = errors.New("jsast: pool returned unexpected type")
	errNoLanguage  = errors.New("jsast: javascript grammar not available")
	errOffsetRange = errors.New("jsast: node offset out of range")
)

// fieldNames are the grammar fields the rewrite engine looks up. Other fields
// are still reachable through Children.
var fieldNames = []string{
	"function",
	"arguments",
	"object",
	"property",
	"name",
	"parameters",
	"parameter",
	"body",
	"source",
	"value",
	"left",
	"right",
}

var (
	languageOnce sync.Once
	language     *sitter.Language
)

func javascriptLanguage() *sitter.Language {
	languageOnce.Do(func() {
		defer func() {
			_ = recover() //nolint:errcheck // recover() returns any, not error
		}()

		language = sitter.NewLanguage(javascript.GetLanguage())
	})

	return language
}

// Parser turns JavaScript source into a Tree. It is safe for concurrent use;
// tree-sitter parsers are pooled.
type Parser struct {
	pool sync.Pool
}

// NewParser creates a Parser for the JavaScript grammar. JSX is part of the
// grammar and always enabled.
func NewParser() (*Parser, error) {
	lang := javascriptLanguage()
	if lang == nil {
		return nil, errNoLanguage
	}

	parser := &Parser{}
	parser.pool = sync.Pool{
		New: func() any {
			tsParser := sitter.NewParser()
			tsParser.SetLanguage(lang)

			return tsParser
		},
	}

	return parser, nil
}

// Parse parses source and returns its tree. A source that tree-sitter can only
// recover with ERROR or missing nodes is rejected with ErrSyntax.
func (parser *Parser) Parse(ctx context.Context, source []byte) (*Tree, error) {
	tsParser, ok := parser.pool.Get().(*sitter.Parser)
	if !ok {
		return nil, errPoolType
	}

	defer parser.pool.Put(tsParser)

	tsTree, err := tsParser.ParseString(ctx, nil, source)
	if err != nil {
		return nil, fmt.Errorf("jsast: failed to parse: %w", err)
	}
	defer tsTree.Close()

	root := tsTree.RootNode()
	if root.IsNull() {
		return nil, errNoRootNode
	}

	tree := &Tree{Source: source}

	conv := converter{source: source}

	tree.Root, err = conv.convert(root, nil)
	if err != nil {
		return nil, err
	}

	if conv.firstError != nil {
		line, col := tree.Position(conv.firstError.Start)

		return nil, fmt.Errorf("%w at %d:%d", ErrSyntax, line, col)
	}

	return tree, nil
}

// converter copies a tree-sitter tree into Nodes so the result outlives the
// tree-sitter tree and can be walked without cgo calls.
type converter struct {
	source     []byte
	firstError *Node
}

func (conv *converter) convert(tsNode sitter.Node, parent *Node) (*Node, error) {
	start, end := safeconv.MustOffset(tsNode.StartByte()), safeconv.MustOffset(tsNode.EndByte())
	if start > end || end > len(conv.source) {
		return nil, fmt.Errorf("%w: [%d,%d) of %d", errOffsetRange, start, end, len(conv.source))
	}

	n := &Node{
		Kind:   tsNode.Type(),
		Start:  start,
		End:    end,
		Named:  tsNode.IsNamed(),
		Parent: parent,
	}

	if (n.Kind == KindError || tsNode.IsMissing()) && conv.firstError == nil {
		conv.firstError = n
	}

	count := tsNode.ChildCount()
	if count == 0 {
		return n, nil
	}

	n.Children = make([]*Node, 0, count)

	for idx := range count {
		child, err := conv.convert(tsNode.Child(idx), n)
		if err != nil {
			return nil, err
		}

		n.Children = append(n.Children, child)
	}

	conv.attachFields(tsNode, n)

	return n, nil
}

func (conv *converter) attachFields(tsNode sitter.Node, n *Node) {
	for _, name := range fieldNames {
		fieldNode := tsNode.ChildByFieldName(name)
		if fieldNode.IsNull() {
			continue
		}

		start, end, kind := safeconv.MustOffset(fieldNode.StartByte()), safeconv.MustOffset(fieldNode.EndByte()), fieldNode.Type()

		for _, child := range n.Children {
			if child.Start == start && child.End == end && child.Kind == kind {
				if n.fields == nil {
					n.fields = make(map[string]*Node, len(fieldNames))
				}

				n.fields[name] = child

				break
			}
		}
	}
}
