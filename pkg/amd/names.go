package amd

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// componentKinds is the registration vocabulary, in match order.
var componentKinds = []string{"component", "directive", "service", "filter"}

// registeredPrefix is prepended to component names in registration calls.
const registeredPrefix = "br"

var nonLetters = regexp.MustCompile(`[^a-zA-Z]`)

// PascalCase splits text into words (on separators, case changes and
// letter/digit boundaries) and joins them capitalized: "foo-bar" and
// "fooBar" both become "FooBar".
func PascalCase(text string) string {
	var sb strings.Builder

	for _, word := range splitWords(text) {
		runes := []rune(strings.ToLower(word))
		runes[0] = unicode.ToUpper(runes[0])
		sb.WriteString(string(runes))
	}

	return sb.String()
}

func splitWords(text string) []string {
	var (
		words []string
		cur   []rune
	)

	flush := func() {
		if len(cur) > 0 {
			words = append(words, string(cur))
			cur = cur[:0]
		}
	}

	runes := []rune(text)

	for i, r := range runes {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			flush()

			continue
		}

		if len(cur) > 0 {
			prev := cur[len(cur)-1]

			switch {
			case unicode.IsDigit(r) != unicode.IsDigit(prev):
				flush()
			case unicode.IsUpper(r) && unicode.IsLower(prev):
				flush()
			case unicode.IsUpper(r) && unicode.IsUpper(prev) &&
				i+1 < len(runes) && unicode.IsLower(runes[i+1]):
				// End of an acronym: "XMLHttp" -> "XML", "Http".
				flush()
			}
		}

		cur = append(cur, r)
	}

	flush()

	return words
}

// importNameFor derives the binding used for an inline require of value.
func importNameFor(value string) string {
	return "$__" + nonLetters.ReplaceAllString(value, "_")
}

// componentKind returns the registration kind named inside name. The last
// vocabulary word found wins.
func componentKind(name string) (string, bool) {
	lower := strings.ToLower(name)
	kind := ""

	for _, candidate := range componentKinds {
		if strings.Contains(lower, candidate) {
			kind = candidate
		}
	}

	return kind, kind != ""
}

// isComponentParam reports whether a factory parameter names a UI component
// (case-insensitive suffix match against the vocabulary).
func isComponentParam(name string) bool {
	lower := strings.ToLower(name)

	for _, kind := range componentKinds {
		if strings.HasSuffix(lower, kind) {
			return true
		}
	}

	return false
}

// isComponentKind reports whether kind is in the registration vocabulary.
func isComponentKind(kind string) bool {
	for _, candidate := range componentKinds {
		if kind == candidate {
			return true
		}
	}

	return false
}

// pathSegments returns the '/'-separated segments of an unquoted module
// path, dropping empty, "." and ".." segments and a trailing .js/.jsx.
func pathSegments(value string) []string {
	value = strings.TrimSuffix(value, ".jsx")
	value = strings.TrimSuffix(value, ".js")

	var out []string

	for _, seg := range strings.Split(value, "/") {
		if seg == "" || seg == "." || seg == ".." {
			continue
		}

		out = append(out, seg)
	}

	return out
}

func stripLeadingNonLetters(s string) string {
	return strings.TrimLeftFunc(s, func(r rune) bool { return !unicode.IsLetter(r) })
}

// nameCache maps module paths to the component names synthesized for them
// during one conversion.
type nameCache struct {
	byPath map[string]string
	taken  map[string]bool
}

func newNameCache() *nameCache {
	return &nameCache{
		byPath: make(map[string]string),
		taken:  make(map[string]bool),
	}
}

// reserve marks a binding as used so synthesized names avoid it.
func (c *nameCache) reserve(binding string) {
	c.taken[binding] = true
}

// componentName synthesizes a binding for an unquoted module path from its
// last segment. On collision, preceding segments are folded in; a numeric
// suffix is the last resort.
func (c *nameCache) componentName(value string) string {
	if name, ok := c.byPath[value]; ok {
		return name
	}

	segs := pathSegments(value)
	name := ""

	for n := 1; n <= len(segs); n++ {
		candidate := PascalCase(stripLeadingNonLetters(strings.Join(segs[len(segs)-n:], "-")))
		if candidate != "" && !c.taken[candidate] {
			name = candidate

			break
		}
	}

	if name == "" {
		base := PascalCase(stripLeadingNonLetters(strings.Join(segs, "-")))
		if base == "" {
			base = "Module"
		}

		name = base
		for i := 2; c.taken[name]; i++ {
			name = base + strconv.Itoa(i)
		}
	}

	c.byPath[value] = name
	c.taken[name] = true

	return name
}
