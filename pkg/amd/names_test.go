package amd

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPascalCase(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"foo-bar":        "FooBar",
		"fooBar":         "FooBar",
		"FooBar":         "FooBar",
		"foo_bar baz":    "FooBarBaz",
		"FOO_BAR":        "FooBar",
		"XMLHttpRequest": "XmlHttpRequest",
		"foo2bar":        "Foo2Bar",
		"fooComponent":   "FooComponent",
		"":               "",
		"--":             "",
	}

	for in, want := range tests {
		assert.Equal(t, want, PascalCase(in), in)
	}
}

func TestImportNameFor(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "$____foo_bar", importNameFor("./foo-bar"))
	assert.Equal(t, "$__lodash", importNameFor("lodash"))
	assert.Equal(t, "$__a__b", importNameFor("a/1b"))
}

func TestComponentKind(t *testing.T) {
	t.Parallel()

	kind, ok := componentKind("FooComponent")
	assert.True(t, ok)
	assert.Equal(t, "component", kind)

	kind, ok = componentKind("BarServiceComponent")
	assert.True(t, ok)
	assert.Equal(t, "service", kind)

	kind, ok = componentKind("DateFilter")
	assert.True(t, ok)
	assert.Equal(t, "filter", kind)

	_, ok = componentKind("Util")
	assert.False(t, ok)
}

func TestIsComponentParam(t *testing.T) {
	t.Parallel()

	assert.True(t, isComponentParam("fooComponent"))
	assert.True(t, isComponentParam("myDirective"))
	assert.True(t, isComponentParam("dateFilter"))
	assert.True(t, isComponentParam("Service"))
	assert.False(t, isComponentParam("componentFactory"))
	assert.False(t, isComponentParam("angular"))
}

func TestPathSegments(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{"lib", "foo"}, pathSegments("../lib/./foo.js"))
	assert.Equal(t, []string{"app", "view"}, pathSegments("app//view.jsx"))
	assert.Empty(t, pathSegments("./"))
}

func TestNameCache_ComponentName(t *testing.T) {
	t.Parallel()

	cache := newNameCache()
	cache.reserve("Foo")

	assert.Equal(t, "LibFoo", cache.componentName("./lib/foo"))
	assert.Equal(t, "LibFoo", cache.componentName("./lib/foo"), "cached per path")
	assert.Equal(t, "Foo2", cache.componentName("foo"))
	assert.Equal(t, "BarDirective", cache.componentName("./bar-directive.js"))
	assert.Equal(t, "Module", cache.componentName("./123"))
	assert.Equal(t, "Module2", cache.componentName("./"))
}
