// Package markup parses raw document bytes into the shared block
// model: an ordered list of content blocks plus the heading list the
// breadcrumb engine consumes. Markdown, HTML, and plain text come in;
// one Document shape comes out.
package markup

import (
	"strings"

	"headway/crumb"
)

// Kind identifies the type of a content block.
type Kind int

const (
	KindParagraph Kind = iota
	KindHeading
	KindCode
	KindList
	KindQuote
	KindTable
	KindRule
)

// Span is a run of inline text with uniform styling.
type Span struct {
	Text string
	Bold bool
	Emph bool
	Code bool
	Link string // resolved href, empty when the run is not a link
}

// Block is one content block in document order.
type Block struct {
	Kind    Kind
	Level   int        // heading rank 1-6, only for KindHeading
	Text    string     // plain text: heading title, code body, quote text
	Lang    string     // fence language, only for KindCode
	Spans   []Span     // inline runs for paragraphs and quotes
	Items   [][]Span   // one span list per list item
	Ordered bool       // numbered list
	Rows    [][]string // table cells, Rows[0] is the header row

	// Line range of the block in Source. Real source lines for
	// markdown and text; synthetic emission-order lines for HTML.
	StartLine int
	EndLine   int
}

// Document is a parsed document: blocks for rendering, headings for
// the breadcrumb engine, raw lines for the source view.
type Document struct {
	Title    string
	Blocks   []Block
	Headings []crumb.Heading
	Source   []string
}

// PlainText returns the block's text content for plain contexts:
// search, source synthesis, outline previews.
func (b Block) PlainText() string {
	switch b.Kind {
	case KindParagraph, KindQuote:
		if len(b.Spans) > 0 {
			return joinSpans(b.Spans)
		}
		return b.Text
	case KindList:
		var sb strings.Builder
		for i, item := range b.Items {
			if i > 0 {
				sb.WriteByte('\n')
			}
			sb.WriteString(joinSpans(item))
		}
		return sb.String()
	case KindTable:
		var sb strings.Builder
		for i, row := range b.Rows {
			if i > 0 {
				sb.WriteByte('\n')
			}
			sb.WriteString(strings.Join(row, " | "))
		}
		return sb.String()
	default:
		return b.Text
	}
}

// SpanText flattens spans to their plain text.
func SpanText(spans []Span) string {
	return joinSpans(spans)
}

func joinSpans(spans []Span) string {
	var sb strings.Builder
	for _, s := range spans {
		sb.WriteString(s.Text)
	}
	return strings.TrimSpace(sb.String())
}

// collectHeadings fills d.Headings and d.Title from the parsed blocks.
// Blocks are in document order, so the heading list satisfies the
// engine's ordering invariant by construction.
func collectHeadings(d *Document) {
	for _, b := range d.Blocks {
		if b.Kind != KindHeading {
			continue
		}
		end := b.EndLine
		if end < b.StartLine {
			end = b.StartLine
		}
		d.Headings = append(d.Headings, crumb.Heading{
			Level: b.Level,
			Text:  b.Text,
			Start: crumb.Position{Line: b.StartLine},
			End:   crumb.Position{Line: end},
		})
		if d.Title == "" && b.Level == 1 {
			d.Title = b.Text
		}
	}
	if d.Title == "" && len(d.Headings) > 0 {
		d.Title = d.Headings[0].Text
	}
}

func splitLines(src []byte) []string {
	s := strings.ReplaceAll(string(src), "\r\n", "\n")
	return strings.Split(s, "\n")
}
