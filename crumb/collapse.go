package crumb

// Collapse turns the passed-heading candidates into the breadcrumb
// stack: the currently open path through the heading hierarchy,
// shallow to deep.
//
// Each round finds the shallowest level present, emits headings at
// that level according to the mode, then recurses on everything
// strictly after the last of them. A later sibling closes the scope of
// everything between it and its predecessors, so those headings are
// consumed without being emitted. In concise mode only the last
// same-level sibling survives a round; in default mode all of them do,
// which deliberately keeps superseded siblings visible at each tier
// while still dropping their children.
//
// Pure: the input is never modified and every call builds a fresh
// result.
func Collapse(candidates []PositionedHeading, mode Mode) []PositionedHeading {
	if len(candidates) == 0 {
		return nil
	}

	top := candidates[0].Level
	for _, h := range candidates[1:] {
		if h.Level < top {
			top = h.Level
		}
	}

	last := 0
	var out []PositionedHeading
	for i, h := range candidates {
		if h.Level != top {
			continue
		}
		last = i
		if mode == ModeConcise {
			out = out[:0]
		}
		out = append(out, h)
	}

	return append(out, Collapse(candidates[last+1:], mode)...)
}
