package amd

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/amd2esm/pkg/jsast"
)

func parseTree(t *testing.T, src string) *jsast.Tree {
	t.Helper()

	parser, err := defaultParser()
	require.NoError(t, err)

	tree, err := parser.Parse(context.Background(), []byte(src))
	require.NoError(t, err)

	return tree
}

// nodesOf returns all nodes of kind in document order.
func nodesOf(tree *jsast.Tree, kind string) []*jsast.Node {
	var out []*jsast.Node

	tree.Root.Walk(func(n *jsast.Node) bool {
		if n.Is(kind) {
			out = append(out, n)
		}

		return true
	})

	return out
}

func firstCall(t *testing.T, src string) (*jsast.Tree, *jsast.Node) {
	t.Helper()

	tree := parseTree(t, src)
	calls := nodesOf(tree, jsast.KindCallExpression)
	require.NotEmpty(t, calls)

	return tree, calls[0]
}

func TestDefinitionShapeOf(t *testing.T) {
	t.Parallel()

	tests := map[string]definitionShape{
		"require(['a']);":                         shapeDepsOnly,
		"define(['a'], function (a) {});":         shapeDepsAndFactory,
		"require(['a'], function (a) {});":        shapeDepsAndFactory,
		"define(function () {});":                 shapeFactoryOnly,
		"define(['a'], () => {});":                shapeNone,
		"require('a');":                           shapeNone,
		"foo(['a'], function () {});":             shapeNone,
		"define(['a'], function () {}, 'extra');": shapeNone,
	}

	for src, want := range tests {
		tree, call := firstCall(t, src)
		assert.Equal(t, want, definitionShapeOf(tree, call), src)
	}
}

func TestFatalClassifiers(t *testing.T) {
	t.Parallel()

	tree, call := firstCall(t, "define('name', function () {});")
	assert.True(t, isNamedDefine(tree, call))
	assert.False(t, isDefineUsingIdentifier(tree, call))

	tree, call = firstCall(t, "define(['a'], factory);")
	assert.True(t, isDefineUsingIdentifier(tree, call))
	assert.False(t, isNamedDefine(tree, call))

	tree, call = firstCall(t, "require(name);")
	assert.True(t, isRequireWithDynamicModuleName(tree, call))

	tree, call = firstCall(t, "require(['a']);")
	assert.False(t, isRequireWithDynamicModuleName(tree, call))

	tree, call = firstCall(t, "require('a');")
	assert.False(t, isRequireWithDynamicModuleName(tree, call))
	assert.True(t, isSyncRequire(tree, call))
}

func TestIsSideEffectRequire(t *testing.T) {
	t.Parallel()

	tree := parseTree(t, "define(['a'], function (a) {\n  require(['b']);\n  var c = require(['c']);\n});\nrequire(['d']);")
	calls := nodesOf(tree, jsast.KindCallExpression)
	require.Len(t, calls, 4)

	def := calls[0]

	assert.True(t, isSideEffectRequire(tree, calls[1], def))
	assert.False(t, isSideEffectRequire(tree, calls[2], def), "not a statement")
	assert.False(t, isSideEffectRequire(tree, calls[3], def), "outside the definition")
	assert.False(t, isSideEffectRequire(tree, calls[1], nil))
}

func TestIsUseStrict(t *testing.T) {
	t.Parallel()

	tree := parseTree(t, "'use strict';\n\"use strict\";\n'use sloppy';\nfoo('use strict');")
	stmts := tree.Root.NamedChildren()
	require.Len(t, stmts, 4)

	assert.True(t, isUseStrict(tree, stmts[0]))
	assert.True(t, isUseStrict(tree, stmts[1]))
	assert.False(t, isUseStrict(tree, stmts[2]))
	assert.False(t, isUseStrict(tree, stmts[3]))
}

func TestComponentCall(t *testing.T) {
	t.Parallel()

	tree, call := firstCall(t, "module.directive(myDirective);")
	kind, ident, ok := componentCall(tree, call)
	require.True(t, ok)
	assert.Equal(t, "directive", kind)
	assert.Equal(t, "myDirective", tree.Text(ident))

	for _, src := range []string{
		"module.directive('brX', myDirective);",
		"module.controller(myController);",
		"other.directive(myDirective);",
	} {
		tree, call = firstCall(t, src)
		_, _, ok = componentCall(tree, call)
		assert.False(t, ok, src)
	}
}

func TestIsComponentDefinition(t *testing.T) {
	t.Parallel()

	tree := parseTree(t, "module.component('brFoo', {a: 1});\nother.component('x', {b: 2});\nvar o = {c: 3};")
	objects := nodesOf(tree, jsast.KindObject)
	require.Len(t, objects, 3)

	assert.True(t, isComponentDefinition(tree, objects[0]))
	assert.False(t, isComponentDefinition(tree, objects[1]))
	assert.False(t, isComponentDefinition(tree, objects[2]))
}

func TestFunctionDeclarationNamed(t *testing.T) {
	t.Parallel()

	tree := parseTree(t, "function register(module) { module.service('x', y); }\nfunction factory() {}")
	decls := nodesOf(tree, jsast.KindFunctionDeclaration)
	require.Len(t, decls, 2)

	assert.True(t, functionDeclarationNamed(tree, decls[0], fnRegister))
	assert.True(t, looksLikeServiceRegister(tree.Text(decls[0])))
	assert.True(t, functionDeclarationNamed(tree, decls[1], fnFactory))
	assert.False(t, functionDeclarationNamed(tree, decls[1], fnRegister))
	assert.False(t, looksLikeServiceRegister(tree.Text(decls[1])))
}

func TestParamNames(t *testing.T) {
	t.Parallel()

	tree := parseTree(t, "f(function (a, b) {}, (c) => c, d => d);")
	args := callArgs(nodesOf(tree, jsast.KindCallExpression)[0])
	require.Len(t, args, 3)

	assert.Equal(t, []string{"a", "b"}, paramNames(tree, args[0]))
	assert.Equal(t, []string{"c"}, paramNames(tree, args[1]))
	assert.Equal(t, []string{"d"}, paramNames(tree, args[2]))
}

func TestFirstPatternParam(t *testing.T) {
	t.Parallel()

	tree := parseTree(t, "f(function (a, b) {}, function ({x}) {}, (a, [b]) => a, (c = 1) => c, d => d);")
	args := callArgs(nodesOf(tree, jsast.KindCallExpression)[0])
	require.Len(t, args, 5)

	assert.Nil(t, firstPatternParam(args[0]))
	assert.Equal(t, "{x}", tree.Text(firstPatternParam(args[1])))
	assert.Equal(t, "[b]", tree.Text(firstPatternParam(args[2])))
	assert.NotNil(t, firstPatternParam(args[3]))
	assert.Nil(t, firstPatternParam(args[4]))
}

func TestRegistrationLoopPattern(t *testing.T) {
	t.Parallel()

	match := func(src string) bool {
		tree := parseTree(t, src)

		for _, ident := range nodesOf(tree, jsast.KindIdentifier) {
			if _, ok := registrationLoopPattern.match(tree, ident); ok {
				return true
			}
		}

		return false
	}

	assert.True(t, match("mods.forEach(function (module) {\n  register(module);\n});"))
	assert.True(t, match("mods.forEach((module) => {\n  register(module);\n});"))
	assert.True(t, match("mods.forEach(function (m) {\n  register(module);\n});"), "any param name")
	assert.True(t, match("Array.prototype.slice.call(arguments, 1).forEach(function (register) {\n  register(module);\n});"))
	assert.False(t, match("mods.map(function (module) {\n  register(module);\n});"), "method")
	assert.False(t, match("mods.forEach(function (module) {\n  install(module);\n});"), "callee")
	assert.False(t, match("register(module);"))
}

func TestCaptures_Claim(t *testing.T) {
	t.Parallel()

	var caps captures

	first, second := &jsast.Node{Kind: "a"}, &jsast.Node{Kind: "b"}

	require.NoError(t, caps.claim(roleFactory, first))
	require.ErrorIs(t, caps.claim(roleFactory, second), ErrDuplicateCapture)
	assert.Same(t, first, caps.get(roleFactory))

	require.NoError(t, caps.claim(roleDefinition, first))
	require.ErrorIs(t, caps.claim(roleDefinition, second), ErrDuplicateDefinition)

	assert.Equal(t, []string{"module definition", "factory function"}, caps.claimed())
}

func TestCaptures_ClaimCandidates(t *testing.T) {
	t.Parallel()

	var caps captures

	first, second, loop := &jsast.Node{Kind: "a"}, &jsast.Node{Kind: "b"}, &jsast.Node{Kind: "c"}

	caps.offer(roleRegistrationLoop, loop)
	caps.offer(roleFactory, first)
	assert.Nil(t, caps.get(roleFactory), "offers are not claims")

	conflict, err := caps.claimCandidates()
	require.NoError(t, err)
	assert.Nil(t, conflict)
	assert.Same(t, first, caps.get(roleFactory))
	assert.Same(t, loop, caps.get(roleRegistrationLoop))

	var dup captures

	dup.offer(roleRegister, first)
	dup.offer(roleRegister, second)

	conflict, err = dup.claimCandidates()
	require.ErrorIs(t, err, ErrDuplicateCapture)
	assert.Same(t, second, conflict)
}
