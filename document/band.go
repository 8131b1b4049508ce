package document

import (
	"strings"

	"headway/crumb"
	"headway/render"
	"headway/theme"
)

// BandHeight returns the rows the breadcrumb band occupies for a
// stack: one per entry plus a separator row, zero when the stack is
// empty.
func BandHeight(stack crumb.Stack) int {
	if len(stack.Headings) == 0 {
		return 0
	}
	return len(stack.Headings) + 1
}

// DrawBand paints the breadcrumb band over the top rows of the
// canvas: one row per stack entry, shallow to deep, then a separator
// rule. labels, when non-empty, overlays a jump label on the first
// cells of each entry; typed is the prefix entered so far, which
// fades the labels it has ruled out.
func DrawBand(c *render.Canvas, stack crumb.Stack, th *theme.Theme, labels []string, typed string) {
	n := len(stack.Headings)
	if n == 0 {
		return
	}

	width := c.Width()
	base := th.BaseStyle()

	for row := 0; row <= n; row++ {
		for x := 0; x < width; x++ {
			c.Set(x, row, ' ', base)
		}
	}

	for i, h := range stack.Headings {
		indent := 0
		if i < len(stack.Indents) {
			indent = stack.Indents[i]
		}
		x := 1 + indent*2

		style := th.BandStyle()
		if i == n-1 {
			style = th.BandCurrentStyle()
		}

		c.WriteString(x, i, render.Truncate(h.Text, width-x-1), style)

		if i < len(labels) {
			drawBandLabel(c, x, i, labels[i], typed, th)
		}
	}

	c.DrawHLine(0, n, width, render.SingleBox.Horizontal, th.DimStyle())
}

func drawBandLabel(c *render.Canvas, x, y int, label, typed string, th *theme.Theme) {
	matches := strings.HasPrefix(label, typed)
	for j, ch := range label {
		var style render.Style
		switch {
		case !matches:
			style = th.LabelDimStyle()
		case j < len(typed):
			style = th.LabelTypedStyle()
		default:
			style = th.LabelStyle()
		}
		style.Reverse = true
		c.Set(x+j, y, ch, style)
	}
}

// JumpTarget returns the scroll position that reveals the given
// heading at the top of the content area: the heading's resolved
// offset with the band pulled back out of the way, clamped at zero.
func JumpTarget(h crumb.PositionedHeading, bandHeight int) int {
	target := h.Offset - bandHeight
	if target < 0 {
		target = 0
	}
	return target
}
