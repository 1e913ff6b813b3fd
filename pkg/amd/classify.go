package amd

import (
	"strings"

	"github.com/Sumatoshi-tech/amd2esm/pkg/jsast"
)

// definitionShape is the argument layout of a module definition call.
type definitionShape int

const (
	shapeNone definitionShape = iota
	// require(['a', 'b'])
	shapeDepsOnly
	// require(['a', 'b'], function (a, b) {}) or define(...)
	shapeDepsAndFactory
	// require(function () {}) or define(function () {})
	shapeFactoryOnly
)

func (s definitionShape) String() string {
	switch s {
	case shapeDepsOnly:
		return "deps"
	case shapeDepsAndFactory:
		return "deps+factory"
	case shapeFactoryOnly:
		return "factory"
	default:
		return "none"
	}
}

const (
	calleeRequire   = "require"
	calleeDefine    = "define"
	calleeRequireJS = "requirejs"
	calleeRegister  = "register"
	objectModule    = "module"
	methodForEach   = "forEach"
	fnRegister      = "register"
	fnFactory       = "factory"
	useStrict       = "use strict"
)

// calleeName returns the identifier a call invokes directly, or "".
func calleeName(tree *jsast.Tree, call *jsast.Node) string {
	if !call.Is(jsast.KindCallExpression) {
		return ""
	}

	callee := call.Field("function")
	if !callee.Is(jsast.KindIdentifier) {
		return ""
	}

	return tree.Text(callee)
}

// calleeMember returns the object identifier and property of a call of the
// form obj.prop(...).
func calleeMember(tree *jsast.Tree, call *jsast.Node) (object, property string, ok bool) {
	if !call.Is(jsast.KindCallExpression) {
		return "", "", false
	}

	callee := call.Field("function")
	if !callee.Is(jsast.KindMemberExpression) {
		return "", "", false
	}

	obj, prop := callee.Field("object"), callee.Field("property")
	if prop == nil {
		return "", "", false
	}

	if obj.Is(jsast.KindIdentifier) {
		object = tree.Text(obj)
	}

	return object, tree.Text(prop), true
}

func callArgs(call *jsast.Node) []*jsast.Node {
	return call.Field("arguments").NamedChildren()
}

func isFunctionExpression(n *jsast.Node) bool {
	return n.Is(jsast.KindFunction, jsast.KindFunctionExpression)
}

func isStringLiteral(n *jsast.Node) bool {
	return n.Is(jsast.KindString)
}

func isRequire(tree *jsast.Tree, n *jsast.Node) bool {
	return calleeName(tree, n) == calleeRequire
}

func isDefine(tree *jsast.Tree, n *jsast.Node) bool {
	return calleeName(tree, n) == calleeDefine
}

// definitionShapeOf classifies a require/define call as a module definition.
func definitionShapeOf(tree *jsast.Tree, n *jsast.Node) definitionShape {
	if !isRequire(tree, n) && !isDefine(tree, n) {
		return shapeNone
	}

	args := callArgs(n)

	switch {
	case len(args) == 1 && args[0].Is(jsast.KindArray):
		return shapeDepsOnly
	case len(args) == 2 && args[0].Is(jsast.KindArray) && isFunctionExpression(args[1]):
		return shapeDepsAndFactory
	case len(args) == 1 && isFunctionExpression(args[0]):
		return shapeFactoryOnly
	default:
		return shapeNone
	}
}

// isNamedDefine matches define('name', ...).
func isNamedDefine(tree *jsast.Tree, n *jsast.Node) bool {
	if !isDefine(tree, n) {
		return false
	}

	args := callArgs(n)

	return len(args) > 0 && isStringLiteral(args[0])
}

// isDefineUsingIdentifier matches define(factoryFn) and define([...], factoryFn).
func isDefineUsingIdentifier(tree *jsast.Tree, n *jsast.Node) bool {
	if !isDefine(tree, n) {
		return false
	}

	args := callArgs(n)

	return len(args) > 0 && args[len(args)-1].Is(jsast.KindIdentifier)
}

// isSyncRequire matches require('path').
func isSyncRequire(tree *jsast.Tree, n *jsast.Node) bool {
	if !isRequire(tree, n) {
		return false
	}

	args := callArgs(n)

	return len(args) == 1 && isStringLiteral(args[0])
}

// isRequireWithDynamicModuleName matches a single-argument require whose
// argument is neither a literal path, a dependency array nor a factory.
func isRequireWithDynamicModuleName(tree *jsast.Tree, n *jsast.Node) bool {
	if !isRequire(tree, n) {
		return false
	}

	args := callArgs(n)
	if len(args) != 1 {
		return false
	}

	return !isStringLiteral(args[0]) && !args[0].Is(jsast.KindArray) && !isFunctionExpression(args[0])
}

// isSideEffectRequire matches a statement require([...]) nested inside the
// factory of an already captured definition.
func isSideEffectRequire(tree *jsast.Tree, n, definition *jsast.Node) bool {
	if definition == nil || !isRequire(tree, n) || definitionShapeOf(tree, n) != shapeDepsOnly {
		return false
	}

	return definition.Contains(n) && n.Parent.Is(jsast.KindExpressionStatement)
}

// isUseStrict matches the statement "use strict";.
func isUseStrict(tree *jsast.Tree, n *jsast.Node) bool {
	if !n.Is(jsast.KindExpressionStatement) {
		return false
	}

	named := n.NamedChildren()
	if len(named) != 1 || !isStringLiteral(named[0]) {
		return false
	}

	return tree.StringValue(named[0]) == useStrict
}

// isRequireJSLiteralCall matches requirejs.<method>('literal').
func isRequireJSLiteralCall(tree *jsast.Tree, n *jsast.Node) (*jsast.Node, bool) {
	object, _, ok := calleeMember(tree, n)
	if !ok || object != calleeRequireJS {
		return nil, false
	}

	args := callArgs(n)
	if len(args) != 1 || !isStringLiteral(args[0]) {
		return nil, false
	}

	return args[0], true
}

// componentCall matches module.<kind>(Identifier) with kind in the
// registration vocabulary.
func componentCall(tree *jsast.Tree, n *jsast.Node) (kind string, ident *jsast.Node, ok bool) {
	object, property, isMember := calleeMember(tree, n)
	if !isMember || object != objectModule || !isComponentKind(property) {
		return "", nil, false
	}

	args := callArgs(n)
	if len(args) != 1 || !args[0].Is(jsast.KindIdentifier) {
		return "", nil, false
	}

	return property, args[0], true
}

// isComponentDefinition matches the object literal passed to a module.<x>(...)
// call, e.g. the options of module.component('brFoo', {...}).
func isComponentDefinition(tree *jsast.Tree, n *jsast.Node) bool {
	if !n.Is(jsast.KindObject) || !n.Parent.Is(jsast.KindArguments) {
		return false
	}

	object, _, ok := calleeMember(tree, n.Parent.Parent)

	return ok && object == objectModule
}

// functionDeclarationNamed matches function <name>(...) {...}.
func functionDeclarationNamed(tree *jsast.Tree, n *jsast.Node, name string) bool {
	if !n.Is(jsast.KindFunctionDeclaration) {
		return false
	}

	ident := n.Field("name")

	return ident != nil && tree.Text(ident) == name
}

// looksLikeServiceRegister tells a service/directive register function from a
// component one by scanning its text. This is a textual heuristic: unrelated
// text containing the same substrings (a comment, a string) also matches.
func looksLikeServiceRegister(text string) bool {
	return strings.Contains(text, "module.service") || strings.Contains(text, "module.directive")
}

// paramNames returns the identifier names of a function's parameters. A
// parameter that is not a plain identifier (pattern, default value) yields
// Unassigned at its position.
func paramNames(tree *jsast.Tree, fn *jsast.Node) []string {
	if single := fn.Field("parameter"); single != nil {
		return []string{identOrUnassigned(tree, single)}
	}

	params := fn.Field("parameters").NamedChildren()
	out := make([]string, 0, len(params))

	for _, param := range params {
		out = append(out, identOrUnassigned(tree, param))
	}

	return out
}

// firstPatternParam returns the first parameter that does not bind a plain
// identifier (destructuring, default value, rest), or nil.
func firstPatternParam(fn *jsast.Node) *jsast.Node {
	if single := fn.Field("parameter"); single != nil {
		if !single.Is(jsast.KindIdentifier) {
			return single
		}

		return nil
	}

	for _, param := range fn.Field("parameters").NamedChildren() {
		if !param.Is(jsast.KindIdentifier) {
			return param
		}
	}

	return nil
}

func identOrUnassigned(tree *jsast.Tree, n *jsast.Node) string {
	if n.Is(jsast.KindIdentifier) {
		return tree.Text(n)
	}

	return Unassigned
}
