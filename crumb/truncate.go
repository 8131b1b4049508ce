package crumb

// Truncate caps the stack at max entries, keeping the tail: the
// headings nearest the current scroll position survive and the most
// distant ancestors drop first. Indents are cut at the same boundary
// so the two stay index-aligned, and the surviving depths keep the
// values they already had. max <= 0 means unlimited.
func Truncate(stack []PositionedHeading, indents []int, max int) ([]PositionedHeading, []int) {
	if max <= 0 || len(stack) <= max {
		return stack, indents
	}
	return stack[len(stack)-max:], indents[len(indents)-max:]
}
