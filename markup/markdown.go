package markup

import (
	"sort"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

// ParseMarkdown parses CommonMark with table support into the block
// model. Block line ranges are the real source line ranges reported
// by the parser, so jumping between preview and source stays aligned.
func ParseMarkdown(src []byte) *Document {
	md := goldmark.New(goldmark.WithExtensions(extension.Table))
	root := md.Parser().Parse(text.NewReader(src))

	p := &mdParser{
		src:    src,
		starts: lineStarts(src),
	}
	for n := root.FirstChild(); n != nil; n = n.NextSibling() {
		p.handleBlock(n)
	}

	d := &Document{Blocks: p.blocks, Source: splitLines(src)}
	collectHeadings(d)
	return d
}

type mdParser struct {
	src    []byte
	starts []int
	blocks []Block
	cursor int
}

func (p *mdParser) handleBlock(n ast.Node) {
	switch t := n.(type) {
	case *ast.Heading:
		level := t.Level
		if level < 1 {
			level = 1
		}
		if level > 6 {
			level = 6
		}
		p.emit(n, Block{Kind: KindHeading, Level: level, Text: p.nodeText(n)})
	case *ast.Paragraph:
		p.emit(n, Block{Kind: KindParagraph, Spans: p.inlineSpans(n), Text: p.nodeText(n)})
	case *ast.TextBlock:
		p.emit(n, Block{Kind: KindParagraph, Spans: p.inlineSpans(n), Text: p.nodeText(n)})
	case *ast.FencedCodeBlock:
		p.emit(n, Block{Kind: KindCode, Text: p.rawLines(n), Lang: string(t.Language(p.src))})
	case *ast.CodeBlock:
		p.emit(n, Block{Kind: KindCode, Text: p.rawLines(n)})
	case *ast.List:
		p.emit(n, Block{Kind: KindList, Ordered: t.IsOrdered(), Items: p.listItems(t)})
	case *ast.Blockquote:
		p.quoteBlocks(t)
	case *ast.ThematicBreak:
		p.emit(n, Block{Kind: KindRule, Text: "---"})
	case *east.Table:
		p.emit(n, Block{Kind: KindTable, Rows: p.tableRows(t)})
	}
}

// quoteBlocks folds a blockquote's paragraph children into one quote
// block. Anything else nested in the quote, headings included, is
// emitted as its own block so document order survives.
func (p *mdParser) quoteBlocks(q *ast.Blockquote) {
	var spans []Span
	flush := func(last ast.Node) {
		if len(spans) == 0 {
			return
		}
		p.emit(last, Block{Kind: KindQuote, Spans: spans, Text: joinSpans(spans)})
		spans = nil
	}
	var prev ast.Node = q
	for c := q.FirstChild(); c != nil; c = c.NextSibling() {
		switch c.(type) {
		case *ast.Paragraph, *ast.TextBlock:
			if len(spans) > 0 {
				spans = append(spans, Span{Text: " "})
			}
			spans = append(spans, p.inlineSpans(c)...)
			prev = c
		default:
			flush(prev)
			p.handleBlock(c)
		}
	}
	flush(prev)
}

func (p *mdParser) listItems(list *ast.List) [][]Span {
	var items [][]Span
	for item := list.FirstChild(); item != nil; item = item.NextSibling() {
		var spans []Span
		for c := item.FirstChild(); c != nil; c = c.NextSibling() {
			switch t := c.(type) {
			case *ast.Paragraph, *ast.TextBlock:
				if len(spans) > 0 {
					spans = append(spans, Span{Text: " "})
				}
				spans = append(spans, p.inlineSpans(c)...)
			case *ast.List:
				items = append(items, spans)
				spans = nil
				items = append(items, p.listItems(t)...)
			}
		}
		if len(spans) > 0 {
			items = append(items, spans)
		}
	}
	return items
}

func (p *mdParser) tableRows(table *east.Table) [][]string {
	var rows [][]string
	for row := table.FirstChild(); row != nil; row = row.NextSibling() {
		var cells []string
		for cell := row.FirstChild(); cell != nil; cell = cell.NextSibling() {
			cells = append(cells, p.nodeText(cell))
		}
		rows = append(rows, cells)
	}
	return rows
}

// emit assigns the block's source line range and appends it. Blocks
// the parser reports no lines for, like thematic breaks, land just
// past the previous block.
func (p *mdParser) emit(n ast.Node, b Block) {
	start, end, ok := p.lineRange(n)
	if !ok {
		start, end = p.cursor+1, p.cursor+1
	}
	b.StartLine, b.EndLine = start, end
	p.cursor = end
	p.blocks = append(p.blocks, b)
}

// lineRange walks the subtree for the lowest and highest source lines
// any block node covers.
func (p *mdParser) lineRange(n ast.Node) (int, int, bool) {
	start, end := -1, -1
	var walk func(ast.Node)
	walk = func(n ast.Node) {
		if n.Type() == ast.TypeBlock {
			if lines := n.Lines(); lines != nil && lines.Len() > 0 {
				s := p.lineAt(lines.At(0).Start)
				e := p.lineAt(lines.At(lines.Len() - 1).Stop - 1)
				if start == -1 || s < start {
					start = s
				}
				if e > end {
					end = e
				}
			}
		}
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			walk(c)
		}
	}
	walk(n)
	if start == -1 {
		return 0, 0, false
	}
	return start, end, true
}

func (p *mdParser) lineAt(offset int) int {
	i := sort.Search(len(p.starts), func(i int) bool { return p.starts[i] > offset }) - 1
	if i < 0 {
		return 0
	}
	return i
}

// rawLines joins a code block's source segments verbatim.
func (p *mdParser) rawLines(n ast.Node) string {
	var sb strings.Builder
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		sb.Write(seg.Value(p.src))
	}
	return strings.TrimRight(sb.String(), "\n")
}

// nodeText flattens a subtree to plain text, one space per line break.
func (p *mdParser) nodeText(n ast.Node) string {
	var sb strings.Builder
	var walk func(ast.Node)
	walk = func(n ast.Node) {
		switch t := n.(type) {
		case *ast.Text:
			sb.Write(t.Segment.Value(p.src))
			if t.SoftLineBreak() || t.HardLineBreak() {
				sb.WriteByte(' ')
			}
		case *ast.String:
			sb.Write(t.Value)
		case *ast.AutoLink:
			sb.Write(t.URL(p.src))
		default:
			for c := n.FirstChild(); c != nil; c = c.NextSibling() {
				walk(c)
			}
		}
	}
	walk(n)
	return strings.TrimSpace(sb.String())
}

// inlineSpans flattens inline children into styled runs. Nested
// emphasis compounds onto the inherited style.
func (p *mdParser) inlineSpans(n ast.Node) []Span {
	var spans []Span
	var walk func(ast.Node, Span)
	walk = func(n ast.Node, cur Span) {
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			switch t := c.(type) {
			case *ast.Text:
				txt := string(t.Segment.Value(p.src))
				if t.SoftLineBreak() || t.HardLineBreak() {
					txt += " "
				}
				if txt != "" {
					sp := cur
					sp.Text = txt
					spans = append(spans, sp)
				}
			case *ast.String:
				sp := cur
				sp.Text = string(t.Value)
				spans = append(spans, sp)
			case *ast.Emphasis:
				sp := cur
				if t.Level >= 2 {
					sp.Bold = true
				} else {
					sp.Emph = true
				}
				walk(c, sp)
			case *ast.CodeSpan:
				sp := cur
				sp.Code = true
				sp.Text = p.nodeText(c)
				spans = append(spans, sp)
			case *ast.Link:
				sp := cur
				sp.Link = string(t.Destination)
				walk(c, sp)
			case *ast.AutoLink:
				u := string(t.URL(p.src))
				sp := cur
				sp.Link = u
				sp.Text = u
				spans = append(spans, sp)
			default:
				walk(c, cur)
			}
		}
	}
	walk(n, Span{})
	return spans
}

func lineStarts(src []byte) []int {
	starts := make([]int, 1, 64)
	for i, b := range src {
		if b == '\n' {
			starts = append(starts, i+1)
		}
	}
	return starts
}
