package crumb

// Indents assigns a compact indent depth to each stack entry. Raw
// levels can skip ranks (an H1 followed directly by an H4), so depths
// come from first-appearance order instead: scanning shallow to deep,
// each distinct level gets the next unused depth starting at 0, and a
// level seen again reuses the depth it already has. The output values
// are always exactly {0..k} for k+1 distinct levels.
func Indents(stack []PositionedHeading) []int {
	indents := make([]int, len(stack))
	depths := make(map[int]int, 6)
	for i, h := range stack {
		d, ok := depths[h.Level]
		if !ok {
			d = len(depths)
			depths[h.Level] = d
		}
		indents[i] = d
	}
	return indents
}
