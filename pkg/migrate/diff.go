package migrate

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// LineOp is the kind of a diff line.
type LineOp int

// Diff line kinds.
const (
	LineEqual LineOp = iota
	LineInsert
	LineDelete
)

// DiffLine is one line of a line-level diff, without its newline.
type DiffLine struct {
	Op   LineOp
	Text string
}

// LineDiff compares two texts line by line.
func LineDiff(before, after string) []DiffLine {
	dmp := diffmatchpatch.New()

	srcChars, dstChars, lines := dmp.DiffLinesToChars(before, after)
	diffs := dmp.DiffMain(srcChars, dstChars, false)
	diffs = dmp.DiffCharsToLines(diffs, lines)

	var out []DiffLine

	for _, d := range diffs {
		op := LineEqual

		switch d.Type {
		case diffmatchpatch.DiffInsert:
			op = LineInsert
		case diffmatchpatch.DiffDelete:
			op = LineDelete
		case diffmatchpatch.DiffEqual:
		}

		for _, line := range splitLines(d.Text) {
			out = append(out, DiffLine{Op: op, Text: line})
		}
	}

	return out
}

// UnifiedLines renders a diff with "+", "-" and " " prefixes, one line per
// element.
func UnifiedLines(diff []DiffLine) []string {
	out := make([]string, 0, len(diff))

	for _, l := range diff {
		prefix := " "

		switch l.Op {
		case LineInsert:
			prefix = "+"
		case LineDelete:
			prefix = "-"
		case LineEqual:
		}

		out = append(out, prefix+l.Text)
	}

	return out
}

func splitLines(text string) []string {
	if text == "" {
		return nil
	}

	return strings.Split(strings.TrimSuffix(text, "\n"), "\n")
}
