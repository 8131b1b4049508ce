package markup

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// ParseHTML extracts readable content from an HTML page. Chrome like
// navigation, scripts, and forms are stripped before the walk, and the
// content root is the first of article, main, or body. Since HTML has
// no meaningful source lines, block line ranges index into a
// synthesized plain text rendition kept in Source.
func ParseHTML(body []byte, baseURL string) (*Document, error) {
	gq, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parsing html: %w", err)
	}
	gq.Find("script, style, noscript, nav, header, footer, aside, form, iframe, svg").Remove()

	root := gq.Find("article").First()
	if root.Length() == 0 {
		root = gq.Find("main").First()
	}
	if root.Length() == 0 {
		root = gq.Find("body").First()
	}

	d := &Document{Title: strings.TrimSpace(gq.Find("title").First().Text())}
	if root.Length() == 0 {
		return d, nil
	}

	var base *url.URL
	if baseURL != "" {
		base, _ = url.Parse(baseURL)
	}
	w := &htmlWalker{base: base}
	w.walk(root.Nodes[0])
	w.flushPara()

	d.Blocks = w.blocks
	synthesizeSource(d)
	collectHeadings(d)
	if d.Title == "" {
		d.Title = baseURL
	}
	return d, nil
}

type htmlWalker struct {
	base   *url.URL
	blocks []Block
	para   []Span // bare inline content awaiting a block boundary
}

func (w *htmlWalker) walk(n *html.Node) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case html.TextNode:
			if txt := collapseSpace(c.Data); txt != "" {
				w.para = append(w.para, Span{Text: txt})
			}
		case html.ElementNode:
			w.element(c)
		}
	}
}

func (w *htmlWalker) element(n *html.Node) {
	switch n.Data {
	case "h1", "h2", "h3", "h4", "h5", "h6":
		w.flushPara()
		if txt := textContent(n); txt != "" {
			w.blocks = append(w.blocks, Block{
				Kind:  KindHeading,
				Level: int(n.Data[1] - '0'),
				Text:  txt,
			})
		}
	case "p":
		w.flushPara()
		w.emitPara(w.inlineSpans(n))
	case "pre":
		w.flushPara()
		w.blocks = append(w.blocks, Block{
			Kind: KindCode,
			Text: strings.Trim(rawText(n), "\n"),
			Lang: codeLang(n),
		})
	case "ul", "ol":
		w.flushPara()
		if items := w.listItems(n); len(items) > 0 {
			w.blocks = append(w.blocks, Block{Kind: KindList, Ordered: n.Data == "ol", Items: items})
		}
	case "blockquote":
		w.flushPara()
		if spans := w.inlineSpans(n); len(spans) > 0 {
			w.blocks = append(w.blocks, Block{Kind: KindQuote, Spans: spans, Text: joinSpans(spans)})
		}
	case "table":
		w.flushPara()
		if rows := w.tableRows(n); len(rows) > 0 {
			w.blocks = append(w.blocks, Block{Kind: KindTable, Rows: rows})
		}
	case "hr":
		w.flushPara()
		w.blocks = append(w.blocks, Block{Kind: KindRule, Text: "---"})
	case "a", "strong", "b", "em", "i", "code", "kbd", "samp", "tt", "span", "img", "br", "small", "sup", "sub", "u", "mark", "abbr":
		// Inline content sitting directly in a container joins the
		// pending paragraph.
		w.inlineChild(&w.para, n, Span{})
	default:
		w.flushPara()
		w.walk(n)
		w.flushPara()
	}
}

func (w *htmlWalker) flushPara() {
	spans := w.para
	w.para = nil
	w.emitPara(spans)
}

func (w *htmlWalker) emitPara(spans []Span) {
	if len(spans) == 0 {
		return
	}
	text := joinSpans(spans)
	if text == "" {
		return
	}
	w.blocks = append(w.blocks, Block{Kind: KindParagraph, Spans: spans, Text: text})
}

func (w *htmlWalker) inlineSpans(n *html.Node) []Span {
	var spans []Span
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		w.inlineChild(&spans, c, Span{})
	}
	return spans
}

func (w *htmlWalker) inlineChild(spans *[]Span, n *html.Node, cur Span) {
	if n.Type == html.TextNode {
		if txt := collapseSpace(n.Data); txt != "" {
			sp := cur
			sp.Text = txt
			*spans = append(*spans, sp)
		}
		return
	}
	if n.Type != html.ElementNode {
		return
	}
	switch n.Data {
	case "a":
		sp := cur
		sp.Link = resolveRef(w.base, attrVal(n, "href"))
		w.inlineChildren(spans, n, sp)
	case "strong", "b":
		sp := cur
		sp.Bold = true
		w.inlineChildren(spans, n, sp)
	case "em", "i":
		sp := cur
		sp.Emph = true
		w.inlineChildren(spans, n, sp)
	case "code", "kbd", "samp", "tt":
		sp := cur
		sp.Code = true
		w.inlineChildren(spans, n, sp)
	case "br":
		*spans = append(*spans, Span{Text: " "})
	case "img":
		if alt := attrVal(n, "alt"); alt != "" {
			sp := cur
			sp.Emph = true
			sp.Text = alt
			*spans = append(*spans, sp)
		}
	case "p", "div", "li":
		if len(*spans) > 0 {
			*spans = append(*spans, Span{Text: " "})
		}
		w.inlineChildren(spans, n, cur)
	default:
		w.inlineChildren(spans, n, cur)
	}
}

func (w *htmlWalker) inlineChildren(spans *[]Span, n *html.Node, cur Span) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		w.inlineChild(spans, c, cur)
	}
}

func (w *htmlWalker) listItems(n *html.Node) [][]Span {
	var items [][]Span
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode || c.Data != "li" {
			continue
		}
		var spans []Span
		var nested [][]Span
		for g := c.FirstChild; g != nil; g = g.NextSibling {
			if g.Type == html.ElementNode && (g.Data == "ul" || g.Data == "ol") {
				nested = append(nested, w.listItems(g)...)
				continue
			}
			w.inlineChild(&spans, g, Span{})
		}
		if txt := joinSpans(spans); txt != "" {
			items = append(items, spans)
		}
		items = append(items, nested...)
	}
	return items
}

func (w *htmlWalker) tableRows(n *html.Node) [][]string {
	var rows [][]string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != html.ElementNode {
				continue
			}
			switch c.Data {
			case "tr":
				var cells []string
				for td := c.FirstChild; td != nil; td = td.NextSibling {
					if td.Type == html.ElementNode && (td.Data == "td" || td.Data == "th") {
						cells = append(cells, textContent(td))
					}
				}
				if len(cells) > 0 {
					rows = append(rows, cells)
				}
			case "thead", "tbody", "tfoot":
				walk(c)
			}
		}
	}
	walk(n)
	return rows
}

// synthesizeSource builds the plain text source rendition and stamps
// each block with its line range in it.
func synthesizeSource(d *Document) {
	for i := range d.Blocks {
		b := &d.Blocks[i]
		lines := blockSourceLines(*b)
		if len(lines) == 0 {
			lines = []string{""}
		}
		b.StartLine = len(d.Source)
		d.Source = append(d.Source, lines...)
		b.EndLine = len(d.Source) - 1
		d.Source = append(d.Source, "")
	}
}

func blockSourceLines(b Block) []string {
	switch b.Kind {
	case KindHeading:
		return []string{strings.Repeat("#", b.Level) + " " + b.Text}
	case KindCode:
		return strings.Split(b.Text, "\n")
	case KindList:
		lines := make([]string, 0, len(b.Items))
		for i, item := range b.Items {
			marker := "- "
			if b.Ordered {
				marker = fmt.Sprintf("%d. ", i+1)
			}
			lines = append(lines, marker+joinSpans(item))
		}
		return lines
	case KindQuote:
		return []string{"> " + b.PlainText()}
	case KindTable:
		lines := make([]string, 0, len(b.Rows))
		for _, row := range b.Rows {
			lines = append(lines, strings.Join(row, " | "))
		}
		return lines
	case KindRule:
		return []string{"---"}
	default:
		return []string{b.PlainText()}
	}
}

// collapseSpace folds runs of whitespace to single spaces while
// keeping one boundary space so words across inline tags stay apart.
func collapseSpace(s string) string {
	out := strings.Join(strings.Fields(s), " ")
	if out == "" {
		if s != "" {
			return " "
		}
		return ""
	}
	if isSpaceByte(s[0]) {
		out = " " + out
	}
	if isSpaceByte(s[len(s)-1]) {
		out += " "
	}
	return out
}

func isSpaceByte(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}

func rawText(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}

func textContent(n *html.Node) string {
	return strings.Join(strings.Fields(rawText(n)), " ")
}

// codeLang pulls the language hint from a nested code element's
// language-* class, the convention highlighters use.
func codeLang(pre *html.Node) string {
	for c := pre.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode || c.Data != "code" {
			continue
		}
		for _, cls := range strings.Fields(attrVal(c, "class")) {
			if lang, ok := strings.CutPrefix(cls, "language-"); ok {
				return lang
			}
		}
	}
	return ""
}

func attrVal(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func resolveRef(base *url.URL, ref string) string {
	if base == nil || ref == "" {
		return ref
	}
	u, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return base.ResolveReference(u).String()
}
