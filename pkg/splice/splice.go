// Package splice records text replacements over byte ranges of a source
// buffer and reassembles the buffer with the replacements applied.
//
// A replacement may cover earlier replacements completely; those are folded
// into it, which is how an enclosing node is rewritten from the already edited
// text of its children (see Text). Partial overlaps are rejected.
package splice

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Sentinel errors for edit tracking.
var (
	ErrOverlap = errors.New("splice: replacement overlaps an existing edit")
	ErrRange   = errors.New("splice: range outside source")
)

// Edit is one replacement of Source[Start:End] by Text.
type Edit struct {
	Start int
	End   int
	Text  string
}

// Editor tracks non-overlapping edits over a fixed source.
type Editor struct {
	source []byte
	edits  []Edit // sorted by Start, pairwise disjoint
}

// New returns an Editor over source. The slice is not copied and must not be
// modified while the Editor is in use.
func New(source []byte) *Editor {
	return &Editor{source: source}
}

// Replace marks [start, end) to be replaced by text. Edits lying entirely
// inside the range are discarded; callers fold them in by building text from
// Text(start, end).
func (e *Editor) Replace(start, end int, text string) error {
	if start < 0 || end < start || end > len(e.source) {
		return fmt.Errorf("%w: [%d,%d) of %d", ErrRange, start, end, len(e.source))
	}

	kept := e.edits[:0:0]

	for _, existing := range e.edits {
		switch {
		case existing.End <= start || existing.Start >= end:
			if existing.Start == existing.End && existing.Start == start && start == end {
				continue
			}

			kept = append(kept, existing)
		case start <= existing.Start && existing.End <= end:
			// Folded into the new edit.
		default:
			return fmt.Errorf("%w: [%d,%d) against [%d,%d)", ErrOverlap, start, end, existing.Start, existing.End)
		}
	}

	kept = append(kept, Edit{Start: start, End: end, Text: text})
	sort.Slice(kept, func(i, j int) bool {
		if kept[i].Start != kept[j].Start {
			return kept[i].Start < kept[j].Start
		}

		return kept[i].End < kept[j].End
	})

	e.edits = kept

	return nil
}

// Text returns source[start:end] with every edit inside the range applied.
func (e *Editor) Text(start, end int) string {
	var sb strings.Builder

	pos := start

	for _, edit := range e.edits {
		if edit.Start < start || edit.End > end {
			continue
		}

		sb.Write(e.source[pos:edit.Start])
		sb.WriteString(edit.Text)
		pos = edit.End
	}

	sb.Write(e.source[pos:end])

	return sb.String()
}

// String returns the whole source with all edits applied.
func (e *Editor) String() string {
	return e.Text(0, len(e.source))
}

// Edits returns a copy of the current edits in source order.
func (e *Editor) Edits() []Edit {
	out := make([]Edit, len(e.edits))
	copy(out, e.edits)

	return out
}

// Len returns the number of pending edits.
func (e *Editor) Len() int {
	return len(e.edits)
}
