// Package crumb resolves which section headings should be shown for a
// scrolled document view: the breadcrumb stack of ancestors containing
// the content currently on screen.
package crumb

import (
	"errors"
	"fmt"
)

// ErrUnordered reports a heading sequence that violates document
// order. Such input is rejected outright rather than re-sorted, so a
// caller bug stays visible instead of producing a silently shuffled
// stack.
var ErrUnordered = errors.New("crumb: headings out of document order")

// Position marks a point in the document source.
type Position struct {
	Line int
	Col  int
}

// after reports whether p comes strictly after q in document order.
func (p Position) after(q Position) bool {
	if p.Line != q.Line {
		return p.Line > q.Line
	}
	return p.Col > q.Col
}

// Heading is one section header in a document. Level runs 1 (most
// significant) through 6. Start and End bound the heading's own source
// text, and a heading sequence is expected in non-decreasing Start
// order. The engine never mutates headings.
type Heading struct {
	Level int
	Text  string
	Start Position
	End   Position
}

// PositionedHeading pairs a heading with its resolved vertical offset
// in the current view, in whatever unit the view uses (screen rows for
// a terminal, pixels for a client of the HTTP API).
type PositionedHeading struct {
	Heading
	Offset int
}

// Stack is the final output of one resolution: the breadcrumb headings
// shallow-to-deep plus an index-aligned indent depth for each. It is
// recomputed in full on every call, never patched.
type Stack struct {
	Headings []PositionedHeading
	Indents  []int
}

// validate enforces the data-model invariants the engine relies on:
// levels in [1,6], Start not after End, and document order across the
// sequence.
func validate(headings []Heading) error {
	for i, h := range headings {
		if h.Level < 1 || h.Level > 6 {
			return fmt.Errorf("crumb: heading %d (%q): level %d out of range", i, h.Text, h.Level)
		}
		if h.Start.after(h.End) {
			return fmt.Errorf("crumb: heading %d (%q): start past end: %w", i, h.Text, ErrUnordered)
		}
		if i > 0 && headings[i-1].Start.after(h.Start) {
			return fmt.Errorf("crumb: heading %d (%q) before its predecessor: %w", i, h.Text, ErrUnordered)
		}
	}
	return nil
}
