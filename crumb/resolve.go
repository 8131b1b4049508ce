package crumb

// Resolve computes the breadcrumb stack for one view snapshot: the
// headings whose sections contain the content at scrollTop, shallow to
// deep, with compact indents, capped at cfg.Max entries.
//
// This is the one entry point hosts call, on every tick that can move
// a heading or the view: open, content change, resize, scroll, view
// toggle, config change. It holds no state between calls and performs
// no I/O, so identical inputs always produce identical output and
// redundant calls cost only the work of one pass.
//
// The only failure is input that violates the heading invariants
// (levels in [1,6], document order); that is a caller bug and is
// rejected rather than silently re-sorted. Everything else degrades:
// offsets the geometry cannot place become 0, and an empty candidate
// set is an empty Stack, not an error.
func Resolve(headings []Heading, geom Geometry, scrollTop, bandHeight int, cfg Config) (Stack, error) {
	if err := validate(headings); err != nil {
		return Stack{}, err
	}
	positioned := ResolveOffsets(headings, geom)
	candidates := Passed(positioned, scrollTop, bandHeight)
	stack := Collapse(candidates, cfg.Mode)
	indents := Indents(stack)
	stack, indents = Truncate(stack, indents, cfg.Max)
	return Stack{Headings: stack, Indents: indents}, nil
}
