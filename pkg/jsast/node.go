package jsast

import (
	"bytes"
	"strings"
)

// Grammar node kinds used by the rewrite engine.
const (
	KindProgram             = "program"
	KindExpressionStatement = "expression_statement"
	KindCallExpression      = "call_expression"
	KindMemberExpression    = "member_expression"
	KindArguments           = "arguments"
	KindIdentifier          = "identifier"
	KindPropertyIdentifier  = "property_identifier"
	KindString              = "string"
	KindArray               = "array"
	KindObject              = "object"
	KindFunction            = "function"
	KindFunctionExpression  = "function_expression"
	KindArrowFunction       = "arrow_function"
	KindFunctionDeclaration = "function_declaration"
	KindFormalParameters    = "formal_parameters"
	KindStatementBlock      = "statement_block"
	KindReturnStatement     = "return_statement"
	KindImportStatement     = "import_statement"
	KindImportClause        = "import_clause"
	KindComment             = "comment"
	KindError               = "ERROR"
)

// Node is one syntax node. Nodes are immutable once parsed; Parent is a back
// link, not an ownership relation.
type Node struct {
	Kind     string
	Start    int
	End      int
	Named    bool
	Parent   *Node
	Children []*Node
	fields   map[string]*Node
}

// Field returns the child stored under a grammar field name, or nil.
func (n *Node) Field(name string) *Node {
	if n == nil {
		return nil
	}

	return n.fields[name]
}

// NamedChildren returns the named children, skipping punctuation, keywords
// and comments.
func (n *Node) NamedChildren() []*Node {
	if n == nil {
		return nil
	}

	out := make([]*Node, 0, len(n.Children))

	for _, child := range n.Children {
		if child.Named && child.Kind != KindComment {
			out = append(out, child)
		}
	}

	return out
}

// Is reports whether the node is one of the given kinds.
func (n *Node) Is(kinds ...string) bool {
	if n == nil {
		return false
	}

	for _, kind := range kinds {
		if n.Kind == kind {
			return true
		}
	}

	return false
}

// Contains reports whether other lies inside n's byte range.
func (n *Node) Contains(other *Node) bool {
	return n != nil && other != nil && n.Start <= other.Start && other.End <= n.End
}

// Walk visits n and its descendants in document order. Returning false from
// fn skips the node's children.
func (n *Node) Walk(fn func(*Node) bool) {
	if n == nil || !fn(n) {
		return
	}

	for _, child := range n.Children {
		child.Walk(fn)
	}
}

// Tree is a parsed program together with its source bytes.
type Tree struct {
	Root   *Node
	Source []byte
}

// Text returns the source slice covered by n.
func (t *Tree) Text(n *Node) string {
	if n == nil {
		return ""
	}

	return string(t.Source[n.Start:n.End])
}

// StringValue returns the contents of a string literal without its quotes.
// Escape sequences are kept as written.
func (t *Tree) StringValue(n *Node) string {
	raw := t.Text(n)
	if len(raw) >= 2 && (raw[0] == '\'' || raw[0] == '"') && raw[len(raw)-1] == raw[0] {
		return raw[1 : len(raw)-1]
	}

	return raw
}

// Position returns the 1-based line and column of a byte offset.
func (t *Tree) Position(off int) (line, col int) {
	if off > len(t.Source) {
		off = len(t.Source)
	}

	prefix := t.Source[:off]
	line = bytes.Count(prefix, []byte{'\n'}) + 1
	col = off - (bytes.LastIndexByte(prefix, '\n') + 1) + 1

	return line, col
}

// Dump renders the named structure of n as an S-expression, for tests and
// debugging.
func (n *Node) Dump() string {
	var sb strings.Builder

	n.dump(&sb)

	return sb.String()
}

func (n *Node) dump(sb *strings.Builder) {
	sb.WriteString("(")
	sb.WriteString(n.Kind)

	for _, child := range n.NamedChildren() {
		sb.WriteString(" ")
		child.dump(sb)
	}

	sb.WriteString(")")
}
