package migrate

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/src-d/enry/v2"
)

// Collection errors.
var (
	ErrNoInputs      = errors.New("no input paths")
	ErrEmptyPath     = errors.New("path is empty")
	ErrPathHasNUL    = errors.New("path contains NUL byte")
	ErrNoSourceFiles = errors.New("no source files found")
)

// Source is one file selected for conversion.
type Source struct {
	// Path is the absolute file path.
	Path string
	// Rel is Path relative to the root it was found under; for a file named
	// directly it is the base name.
	Rel string
}

// CollectOptions selects files when walking directories. Files named
// directly are always selected.
type CollectOptions struct {
	// Extensions lists accepted extensions, dot included.
	Extensions []string
	// SkipVendor skips paths enry classifies as vendored (node_modules,
	// bower_components, minified bundles, ...).
	SkipVendor bool
}

// Collect expands roots into the sorted, de-duplicated list of source files.
// Hidden directories are not entered.
func Collect(roots []string, opts CollectOptions) ([]Source, error) {
	if len(roots) == 0 {
		return nil, ErrNoInputs
	}

	seen := make(map[string]bool)

	var out []Source

	add := func(src Source) {
		if seen[src.Path] {
			return
		}

		seen[src.Path] = true
		out = append(out, src)
	}

	for _, root := range roots {
		absRoot, err := resolvePath(root)
		if err != nil {
			return nil, err
		}

		info, err := os.Stat(absRoot)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", absRoot, err)
		}

		if !info.IsDir() {
			add(Source{Path: absRoot, Rel: filepath.Base(absRoot)})

			continue
		}

		walkErr := filepath.WalkDir(absRoot, func(path string, entry fs.DirEntry, err error) error {
			if err != nil {
				return err
			}

			rel, relErr := filepath.Rel(absRoot, path)
			if relErr != nil {
				return fmt.Errorf("relative path of %s: %w", path, relErr)
			}

			if entry.IsDir() {
				if path != absRoot && skipDir(rel, entry.Name(), opts) {
					return filepath.SkipDir
				}

				return nil
			}

			if !entry.Type().IsRegular() || !selected(rel, opts) {
				return nil
			}

			add(Source{Path: path, Rel: rel})

			return nil
		})
		if walkErr != nil {
			return nil, fmt.Errorf("walk %s: %w", absRoot, walkErr)
		}
	}

	if len(out) == 0 {
		return nil, ErrNoSourceFiles
	}

	slices.SortFunc(out, func(a, b Source) int { return strings.Compare(a.Path, b.Path) })

	return out, nil
}

func skipDir(rel, name string, opts CollectOptions) bool {
	if strings.HasPrefix(name, ".") {
		return true
	}

	// enry's vendor rules match directory paths with a trailing slash.
	return opts.SkipVendor && enry.IsVendor(filepath.ToSlash(rel)+"/")
}

func selected(rel string, opts CollectOptions) bool {
	if !slices.Contains(opts.Extensions, strings.ToLower(filepath.Ext(rel))) {
		return false
	}

	return !opts.SkipVendor || !enry.IsVendor(filepath.ToSlash(rel))
}

// Language reports the linguist language of a file, e.g. "JavaScript".
func Language(path string, content []byte) string {
	return enry.GetLanguage(filepath.Base(path), content)
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", ErrEmptyPath
	}

	if strings.ContainsRune(path, '\x00') {
		return "", fmt.Errorf("%w: %q", ErrPathHasNUL, path)
	}

	absPath, err := filepath.Abs(filepath.Clean(path))
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", path, err)
	}

	return absPath, nil
}
