package amd

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/Sumatoshi-tech/amd2esm/pkg/jsast"
	"github.com/Sumatoshi-tech/amd2esm/pkg/splice"
)

// DefaultImportSuffixes are the binding suffixes whose import paths get an
// explicit extension.
var DefaultImportSuffixes = []string{"Component", "Directive", "Filter", "Service"}

const scriptExt = ".js"

// ImportPathOptions configures RewriteImportPaths.
type ImportPathOptions struct {
	// Suffixes selects imports by the suffix of their default binding.
	// Empty uses DefaultImportSuffixes.
	Suffixes []string

	// Parser is reused when set.
	Parser *jsast.Parser
}

// RewriteImportPaths appends ".js" to relative paths without a script extension of
// default imports whose binding ends in one of the configured suffixes, e.g.
// import FooComponent from './foo-component' becomes
// import FooComponent from './foo-component.js'. Source with nothing to
// rewrite is returned unchanged.
func RewriteImportPaths(source string, opts ImportPathOptions) (string, error) {
	parser := opts.Parser
	if parser == nil {
		var err error

		parser, err = defaultParser()
		if err != nil {
			return "", fmt.Errorf("init parser: %w", err)
		}
	}

	suffixes := opts.Suffixes
	if len(suffixes) == 0 {
		suffixes = DefaultImportSuffixes
	}

	tree, err := parser.Parse(context.Background(), []byte(source))
	if err != nil {
		return "", fmt.Errorf("parse: %w", err)
	}

	editor := splice.New(tree.Source)

	for _, stmt := range tree.Root.NamedChildren() {
		if !stmt.Is(jsast.KindImportStatement) {
			continue
		}

		src := stmt.Field("source")
		binding := defaultImportBinding(tree, stmt)

		if src == nil || binding == "" || !hasAnySuffix(binding, suffixes) {
			continue
		}

		value := tree.StringValue(src)
		if !needsExtension(value) {
			continue
		}

		quote := tree.Text(src)[:1]

		err = editor.Replace(src.Start, src.End, quote+value+scriptExt+quote)
		if err != nil {
			return "", fmt.Errorf("%w: %w", ErrInternal, err)
		}
	}

	if editor.Len() == 0 {
		return source, nil
	}

	return editor.String(), nil
}

// defaultImportBinding returns Foo for import Foo from '...' and
// import Foo, {bar} from '...'.
func defaultImportBinding(tree *jsast.Tree, stmt *jsast.Node) string {
	for _, child := range stmt.NamedChildren() {
		if !child.Is(jsast.KindImportClause) {
			continue
		}

		for _, part := range child.NamedChildren() {
			if part.Is(jsast.KindIdentifier) {
				return tree.Text(part)
			}
		}
	}

	return ""
}

func hasAnySuffix(name string, suffixes []string) bool {
	for _, suffix := range suffixes {
		if strings.HasSuffix(name, suffix) {
			return true
		}
	}

	return false
}

func needsExtension(value string) bool {
	if !strings.HasPrefix(value, "./") && !strings.HasPrefix(value, "../") {
		return false
	}

	return !knownExtensions[path.Ext(value)]
}

// knownExtensions are left alone; anything else, including the dot in
// ./foo.component, is part of the module name.
var knownExtensions = map[string]bool{
	".js": true, ".jsx": true, ".mjs": true, ".cjs": true,
	".ts": true, ".tsx": true, ".json": true, ".css": true, ".html": true,
}
