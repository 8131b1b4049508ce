package document

import (
	"headway/crumb"
	"headway/markup"
	"headway/render"
)

// RenderSource draws the raw source lines of doc scrolled down by
// scrollY rows. With wrap enabled long lines fold at the content
// width; otherwise they clip. Lines that start a heading render bold
// so section anchors stay recognizable in source form.
func (r *Renderer) RenderSource(doc *markup.Document, scrollY int, wrap bool) {
	r.canvas.Clear()
	r.links = nil

	headingLines := headingStartLines(doc)

	y := -scrollY
	for i, line := range doc.Source {
		style := render.Style{}
		if headingLines[i] {
			style.Bold = true
		}

		if !wrap {
			if y >= 0 && y < r.canvas.Height() {
				r.canvas.WriteString(r.leftMargin, y, render.TruncateToWidth(line, r.contentWidth), style)
			}
			y++
			continue
		}

		for _, row := range wrapSourceLine(line, r.contentWidth) {
			if y >= 0 && y < r.canvas.Height() {
				r.canvas.WriteString(r.leftMargin, y, row, style)
			}
			y++
		}
	}
}

// SourceGeometry maps source lines to screen rows for the source
// view. Without wrapping the mapping is the identity; with wrapping
// it is the running sum of each line's folded height, which is
// exactly how RenderSource advances.
func (r *Renderer) SourceGeometry(doc *markup.Document, wrap bool) crumb.LineGeometry {
	total := len(doc.Source)
	if !wrap {
		return crumb.LineGeometry{RowForLine: func(line int) (int, bool) {
			if line < 0 || line >= total {
				return 0, false
			}
			return line, true
		}}
	}

	rows := make([]int, total)
	sum := 0
	for i, line := range doc.Source {
		rows[i] = sum
		sum += len(wrapSourceLine(line, r.contentWidth))
	}
	return crumb.LineGeometry{RowForLine: func(line int) (int, bool) {
		if line < 0 || line >= total {
			return 0, false
		}
		return rows[line], true
	}}
}

// SourceHeight returns the total rows the source view occupies.
func (r *Renderer) SourceHeight(doc *markup.Document, wrap bool) int {
	if !wrap {
		return len(doc.Source)
	}
	sum := 0
	for _, line := range doc.Source {
		sum += len(wrapSourceLine(line, r.contentWidth))
	}
	return sum
}

func wrapSourceLine(line string, width int) []string {
	rows := render.WrapText(line, width)
	if len(rows) == 0 {
		return []string{""}
	}
	return rows
}

func headingStartLines(doc *markup.Document) map[int]bool {
	lines := make(map[int]bool, len(doc.Headings))
	for _, h := range doc.Headings {
		lines[h.Start.Line] = true
	}
	return lines
}
