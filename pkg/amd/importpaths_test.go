package amd_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/amd2esm/pkg/amd"
)

func TestRewriteImportPaths(t *testing.T) {
	t.Parallel()

	src := "import FooComponent from './foo-component';\n" +
		"import bar from './bar';\n" +
		"import BazService from 'lib/baz';\n" +
		"import QuxFilter from './qux.js';\n" +
		"import ListDirective from \"../list.directive\";\n" +
		"import Widget, {helper} from './widget';\n"

	want := "import FooComponent from './foo-component.js';\n" +
		"import bar from './bar';\n" +
		"import BazService from 'lib/baz';\n" +
		"import QuxFilter from './qux.js';\n" +
		"import ListDirective from \"../list.directive.js\";\n" +
		"import Widget, {helper} from './widget';\n"

	out, err := amd.RewriteImportPaths(src, amd.ImportPathOptions{})
	require.NoError(t, err)

	assert.Equal(t, want, out)
}

func TestRewriteImportPaths_CustomSuffixes(t *testing.T) {
	t.Parallel()

	src := "import Widget, {helper} from './widget';\nimport FooComponent from './foo';\n"

	out, err := amd.RewriteImportPaths(src, amd.ImportPathOptions{Suffixes: []string{"Widget"}})
	require.NoError(t, err)

	assert.Equal(t, "import Widget, {helper} from './widget.js';\nimport FooComponent from './foo';\n", out)
}

func TestRewriteImportPaths_NothingToDo(t *testing.T) {
	t.Parallel()

	src := "import a from './a';\nconsole.log(a);\n"

	out, err := amd.RewriteImportPaths(src, amd.ImportPathOptions{})
	require.NoError(t, err)

	assert.Equal(t, src, out)
}

func TestRewriteImportPaths_AfterConvert(t *testing.T) {
	t.Parallel()

	converted := convert(t, "define(['./foo-component'], function(fooComponent){ init(); });")

	out, err := amd.RewriteImportPaths(converted, amd.ImportPathOptions{})
	require.NoError(t, err)

	assert.Equal(t, "import FooComponent from './foo-component.js';\n\ninit();", out)
}

func TestRewriteImportPaths_SyntaxError(t *testing.T) {
	t.Parallel()

	_, err := amd.RewriteImportPaths("import {a from './a';", amd.ImportPathOptions{})
	require.ErrorIs(t, err, amd.ErrSyntax)
}
