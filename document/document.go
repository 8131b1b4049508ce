// Package document renders parsed documents to the terminal canvas
// and derives the scroll geometry the breadcrumb engine consumes.
// Render and Geometry share one height computation per block, so the
// rows drawn and the offsets reported can never drift apart.
package document

import (
	"fmt"
	"strings"

	"headway/crumb"
	"headway/markup"
	"headway/render"
)

const defaultMaxWidth = 80

// Link represents a followable link in the rendered document.
type Link struct {
	Href   string
	X, Y   int // position on canvas
	Length int // display length for highlighting
}

// Renderer converts document blocks to canvas output.
type Renderer struct {
	canvas       *render.Canvas
	contentWidth int
	leftMargin   int
	y            int
	links        []Link

	// Section numbering
	h1Count int
	h2Count int
	h3Count int
}

// NewRenderer creates a renderer for the given canvas. maxWidth caps
// the content column; zero or negative picks the default.
func NewRenderer(c *render.Canvas, maxWidth int) *Renderer {
	if maxWidth <= 0 {
		maxWidth = defaultMaxWidth
	}

	canvasWidth := c.Width()
	contentWidth := canvasWidth - 4 // minimal margins
	if contentWidth > maxWidth {
		contentWidth = maxWidth
	}
	if contentWidth < 10 {
		contentWidth = 10
	}

	// Center the content
	leftMargin := (canvasWidth - contentWidth) / 2
	if leftMargin < 0 {
		leftMargin = 0
	}

	return &Renderer{
		canvas:       c,
		contentWidth: contentWidth,
		leftMargin:   leftMargin,
	}
}

// ContentWidth returns the width of the content column.
func (r *Renderer) ContentWidth() int { return r.contentWidth }

// Render draws the document to the canvas scrolled down by scrollY rows.
func (r *Renderer) Render(doc *markup.Document, scrollY int) {
	r.canvas.Clear()
	r.y = -scrollY
	r.links = nil

	r.h1Count = 0
	r.h2Count = 0
	r.h3Count = 0

	for _, b := range doc.Blocks {
		r.renderBlock(b)
	}
}

// Links returns the links placed by the last render.
func (r *Renderer) Links() []Link {
	return r.links
}

// Geometry returns the preview scroll geometry: one entry per block
// with its exact render height, marking which blocks draw headings.
func (r *Renderer) Geometry(doc *markup.Document) crumb.BlockGeometry {
	blocks := make([]crumb.Block, len(doc.Blocks))
	h1Seen := false
	for i, b := range doc.Blocks {
		blocks[i] = crumb.Block{
			Height:  r.blockHeight(b, h1Seen),
			Heading: b.Kind == markup.KindHeading,
		}
		if b.Kind == markup.KindHeading && b.Level == 1 {
			h1Seen = true
		}
	}
	return crumb.BlockGeometry{Blocks: blocks}
}

// ContentHeight returns the total height needed for the document.
func (r *Renderer) ContentHeight(doc *markup.Document) int {
	height := 0
	h1Seen := false
	for _, b := range doc.Blocks {
		height += r.blockHeight(b, h1Seen)
		if b.Kind == markup.KindHeading && b.Level == 1 {
			h1Seen = true
		}
	}
	return height
}

// blockHeight is the single place render heights come from. Every
// renderBlock arm advances r.y by exactly the number returned here.
func (r *Renderer) blockHeight(b markup.Block, h1Seen bool) int {
	switch b.Kind {
	case markup.KindHeading:
		switch {
		case b.Level == 1 && h1Seen:
			return 7 // section rule + blank + title + underline + blank
		case b.Level == 1:
			return 4 // blank + title + underline + blank
		case b.Level == 2:
			return 4 // blank + title + underline + blank
		default:
			return 2 // title + blank
		}
	case markup.KindParagraph:
		return len(render.WrapAndJustify(b.PlainText(), r.contentWidth)) + 1
	case markup.KindQuote:
		return len(render.WrapText(b.PlainText(), r.contentWidth-4)) + 1
	case markup.KindList:
		h := 0
		for _, item := range b.Items {
			h += len(render.WrapText(markup.SpanText(item), r.contentWidth-4))
		}
		return h + 1
	case markup.KindCode:
		return len(strings.Split(b.Text, "\n")) + 2
	case markup.KindTable:
		return len(b.Rows) + 4
	case markup.KindRule:
		return 2
	default:
		return 1
	}
}

func (r *Renderer) renderBlock(b markup.Block) {
	switch b.Kind {
	case markup.KindHeading:
		r.renderHeading(b)
	case markup.KindParagraph:
		r.renderParagraph(b)
	case markup.KindQuote:
		r.renderQuote(b)
	case markup.KindList:
		r.renderList(b)
	case markup.KindCode:
		r.renderCode(b)
	case markup.KindTable:
		r.renderTable(b)
	case markup.KindRule:
		r.canvas.DrawHLine(r.leftMargin, r.y, r.contentWidth, render.SingleBox.Horizontal, render.Style{Dim: true})
		r.y += 2
	default:
		r.y++
	}
}

func (r *Renderer) renderHeading(b markup.Block) {
	switch b.Level {
	case 1:
		r.renderHeading1(b)
	case 2:
		r.renderHeading2(b)
	default:
		r.renderHeadingMinor(b)
	}
}

func (r *Renderer) renderHeading1(b markup.Block) {
	r.h1Count++
	r.h2Count = 0
	r.h3Count = 0

	// Horizontal rule before major sections (except first)
	if r.h1Count > 1 {
		r.y++
		r.canvas.DrawHLine(r.leftMargin, r.y, r.contentWidth, render.DoubleBox.Horizontal, render.Style{Dim: true})
		r.y += 2
	}

	r.y++

	// Section number + SMALL CAPS style (uppercase)
	fullText := fmt.Sprintf("%d. %s", r.h1Count, strings.ToUpper(b.Text))
	r.writeLine(r.leftMargin, r.y, fullText, render.Style{Bold: true})

	r.y++
	r.canvas.DrawHLine(r.leftMargin, r.y, render.StringWidth(fullText), render.DoubleBox.Horizontal, render.Style{})
	r.y += 2
}

func (r *Renderer) renderHeading2(b markup.Block) {
	r.h2Count++
	r.h3Count = 0

	r.y++

	var fullText string
	if r.h1Count > 0 {
		fullText = fmt.Sprintf("%d.%d  %s", r.h1Count, r.h2Count, b.Text)
	} else {
		fullText = fmt.Sprintf("%d. %s", r.h2Count, b.Text)
	}

	r.writeLine(r.leftMargin, r.y, fullText, render.Style{Bold: true})

	r.y++
	r.canvas.DrawHLine(r.leftMargin, r.y, render.StringWidth(fullText), render.SingleBox.Horizontal, render.Style{Dim: true})
	r.y += 2
}

func (r *Renderer) renderHeadingMinor(b markup.Block) {
	style := render.Style{Bold: true, Underline: true}
	text := b.Text

	if b.Level == 3 {
		r.h3Count++
		if r.h1Count > 0 && r.h2Count > 0 {
			text = fmt.Sprintf("%d.%d.%d  %s", r.h1Count, r.h2Count, r.h3Count, b.Text)
		} else if r.h2Count > 0 {
			text = fmt.Sprintf("%d.%d  %s", r.h2Count, r.h3Count, b.Text)
		}
	} else {
		// Deep headings get the quietest treatment.
		style = render.Style{Underline: true}
	}

	r.writeLine(r.leftMargin, r.y, text, style)
	r.y += 2
}

func (r *Renderer) renderParagraph(b markup.Block) {
	spans := styledSpans(b.Spans)
	lines := r.wrapSpans(spans, r.contentWidth, true)

	for _, line := range lines {
		x := r.leftMargin
		for _, span := range line {
			if r.y >= 0 && r.y < r.canvas.Height() {
				r.canvas.WriteString(x, r.y, span.Text, span.Style)

				if span.Href != "" {
					r.links = append(r.links, Link{
						Href:   span.Href,
						X:      x,
						Y:      r.y,
						Length: render.StringWidth(span.Text),
					})
				}
			}
			x += render.StringWidth(span.Text)
		}
		r.y++
	}
	r.y++
}

func (r *Renderer) renderQuote(b markup.Block) {
	startY := r.y

	lines := render.WrapText(b.PlainText(), r.contentWidth-4)
	for _, line := range lines {
		r.writeLine(r.leftMargin+4, r.y, line, render.Style{Dim: true})
		r.y++
	}

	for y := startY; y < r.y; y++ {
		if y >= 0 && y < r.canvas.Height() {
			r.canvas.Set(r.leftMargin, y, '│', render.Style{Dim: true})
		}
	}

	r.y++
}

func (r *Renderer) renderList(b markup.Block) {
	for i, item := range b.Items {
		spans := styledSpans(item)
		lines := r.wrapSpans(spans, r.contentWidth-4, false)

		for j, lineSpans := range lines {
			if j == 0 {
				if b.Ordered {
					r.writeLine(r.leftMargin, r.y, fmt.Sprintf("%d.", i+1), render.Style{Dim: true})
				} else {
					r.writeLine(r.leftMargin, r.y, "•", render.Style{})
				}
			}
			x := r.leftMargin + 3
			for _, span := range lineSpans {
				if span.Href != "" && r.y >= 0 && r.y < r.canvas.Height() {
					r.links = append(r.links, Link{
						Href:   span.Href,
						X:      x,
						Y:      r.y,
						Length: render.StringWidth(span.Text),
					})
				}
				r.writeLine(x, r.y, span.Text, span.Style)
				x += render.StringWidth(span.Text)
			}
			r.y++
		}
	}
	r.y++
}

func (r *Renderer) renderCode(b markup.Block) {
	lines := strings.Split(b.Text, "\n")

	r.canvas.DrawHLine(r.leftMargin, r.y, r.contentWidth, render.SingleBox.Horizontal, render.Style{Dim: true})
	if b.Lang != "" && r.y >= 0 && r.y < r.canvas.Height() {
		r.canvas.WriteString(r.leftMargin+3, r.y, " "+b.Lang+" ", render.Style{Dim: true})
	}
	r.y++

	for _, line := range lines {
		r.writeLine(r.leftMargin, r.y, render.TruncateToWidth(line, r.contentWidth), render.Style{Dim: true})
		r.y++
	}

	r.canvas.DrawHLine(r.leftMargin, r.y, r.contentWidth, render.SingleBox.Horizontal, render.Style{Dim: true})
	r.y++
}

func (r *Renderer) renderTable(b markup.Block) {
	if len(b.Rows) == 0 {
		r.y += 4
		return
	}

	tbl := render.NewTable(b.Rows[0]...)
	for _, row := range b.Rows[1:] {
		tbl.AddRow(row...)
	}

	r.y += tbl.Draw(r.canvas, r.leftMargin, r.y)
	r.y++
}

type textSpan struct {
	Text  string
	Style render.Style
	Href  string
}

// styledSpans maps inline markup onto terminal attributes: bold stays
// bold, emphasis and links underline, code dims.
func styledSpans(spans []markup.Span) []textSpan {
	out := make([]textSpan, 0, len(spans))
	for _, s := range spans {
		st := render.Style{}
		if s.Bold {
			st.Bold = true
		}
		if s.Emph || s.Link != "" {
			st.Underline = true
		}
		if s.Code {
			st.Dim = true
		}
		out = append(out, textSpan{Text: s.Text, Style: st, Href: s.Link})
	}
	return out
}

// wrapSpans wraps styled spans into lines, mapping each wrapped
// character back to its source span so styles and link targets survive
// rewrapping. Justification spaces come out unstyled.
func (r *Renderer) wrapSpans(spans []textSpan, width int, justify bool) [][]textSpan {
	var fullText strings.Builder
	type charInfo struct {
		style render.Style
		href  string
	}
	var charMap []charInfo

	for _, span := range spans {
		for _, ch := range span.Text {
			fullText.WriteRune(ch)
			charMap = append(charMap, charInfo{style: span.Style, href: span.Href})
		}
	}

	var lines []string
	if justify {
		lines = render.WrapAndJustify(fullText.String(), width)
	} else {
		lines = render.WrapText(fullText.String(), width)
	}
	result := make([][]textSpan, len(lines))

	origPos := 0
	origRunes := []rune(fullText.String())

	for i, line := range lines {
		var lineSpans []textSpan
		lineRunes := []rune(line)

		j := 0
		for j < len(lineRunes) {
			if origPos < len(origRunes) && lineRunes[j] == origRunes[origPos] {
				info := charMap[origPos]
				spanStart := j

				for j < len(lineRunes) && origPos < len(origRunes) &&
					lineRunes[j] == origRunes[origPos] &&
					charMap[origPos].href == info.href &&
					charMap[origPos].style == info.style {
					j++
					origPos++
				}

				lineSpans = append(lineSpans, textSpan{
					Text:  string(lineRunes[spanStart:j]),
					Style: info.style,
					Href:  info.href,
				})
			} else if lineRunes[j] == ' ' {
				// Space introduced by wrapping or justification
				spanStart := j
				for j < len(lineRunes) && lineRunes[j] == ' ' &&
					(origPos >= len(origRunes) || lineRunes[j] != origRunes[origPos]) {
					j++
				}
				lineSpans = append(lineSpans, textSpan{
					Text: string(lineRunes[spanStart:j]),
				})
			} else if origPos < len(origRunes) {
				// Whitespace consumed during wrapping
				origPos++
			} else {
				break
			}
		}

		result[i] = lineSpans
	}

	return result
}

func (r *Renderer) writeLine(x, y int, text string, style render.Style) {
	if y < 0 || y >= r.canvas.Height() {
		return
	}
	r.canvas.WriteString(x, y, text, style)
}

// GenerateLabels creates short jump labels for the given number of
// targets. Uses home row keys for speed: a, s, d, f, g, h, j, k, l.
// Past nine targets it switches to two-key combinations throughout,
// so no label is a prefix of another.
func GenerateLabels(count int) []string {
	keys := []byte("asdfghjkl")
	labels := make([]string, 0, count)

	if count <= len(keys) {
		for _, k := range keys {
			if len(labels) >= count {
				break
			}
			labels = append(labels, string(k))
		}
		return labels
	}

	for _, k1 := range keys {
		for _, k2 := range keys {
			if len(labels) >= count {
				return labels
			}
			labels = append(labels, string([]byte{k1, k2}))
		}
	}

	return labels
}

// RenderLinkLabels overlays jump labels on visible links.
func (r *Renderer) RenderLinkLabels(labels []string) {
	for i, link := range r.links {
		if i >= len(labels) {
			break
		}
		if link.Y < 0 || link.Y >= r.canvas.Height() {
			continue
		}

		label := labels[i]
		for j, ch := range label {
			if link.X+j < r.canvas.Width() {
				r.canvas.Set(link.X+j, link.Y, ch, render.Style{Reverse: true, Bold: true})
			}
		}
	}
}
