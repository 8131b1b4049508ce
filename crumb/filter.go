package crumb

// Passed selects the headings the view has already scrolled past: those
// whose offset is at or above the line marked by scrollTop plus the
// height of the band the stack currently occupies. Each heading is
// tested independently so out-of-order offsets (a half-rendered
// preview, a stale layout) select whatever genuinely qualifies instead
// of corrupting the cut. Order is preserved.
func Passed(positioned []PositionedHeading, scrollTop, bandHeight int) []PositionedHeading {
	threshold := scrollTop + bandHeight
	var out []PositionedHeading
	for _, h := range positioned {
		if h.Offset <= threshold {
			out = append(out, h)
		}
	}
	return out
}
