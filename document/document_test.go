package document

import (
	"strings"
	"testing"

	"headway/crumb"
	"headway/markup"
	"headway/render"
	"headway/theme"
)

var structureFixture = strings.Join([]string{
	"# Alpha",
	"",
	"Intro paragraph.",
	"",
	"## Beta",
	"",
	"- one",
	"- two",
	"",
	"# Gamma",
	"",
	"Closing.",
	"",
}, "\n")

var blockFixture = strings.Join([]string{
	"```go",
	"a",
	"b",
	"```",
	"",
	"> quoted words",
	"",
	"---",
	"",
	"| A | B |",
	"|---|---|",
	"| 1 | 2 |",
	"",
}, "\n")

func newTestRenderer(t *testing.T) (*Renderer, *render.Canvas) {
	t.Helper()
	c := render.NewCanvas(100, 40)
	return NewRenderer(c, 0), c
}

// The renderer's advance and its reported geometry must agree row for
// row, or the breadcrumb band would drift from the drawn content.
func TestRenderAdvanceMatchesContentHeight(t *testing.T) {
	for _, fixture := range []string{structureFixture, blockFixture} {
		doc := markup.ParseMarkdown([]byte(fixture))
		r, _ := newTestRenderer(t)

		r.Render(doc, 0)
		if r.y != r.ContentHeight(doc) {
			t.Errorf("render advanced %d rows, geometry says %d", r.y, r.ContentHeight(doc))
		}
	}
}

func TestBlockHeights(t *testing.T) {
	doc := markup.ParseMarkdown([]byte(structureFixture))
	r, _ := newTestRenderer(t)

	// h1, paragraph, h2, list, second h1 (with section rule), paragraph
	want := []int{4, 2, 4, 3, 7, 2}
	geom := r.Geometry(doc)
	if len(geom.Blocks) != len(want) {
		t.Fatalf("got %d blocks, want %d", len(geom.Blocks), len(want))
	}
	for i, w := range want {
		if geom.Blocks[i].Height != w {
			t.Errorf("block %d: height %d, want %d", i, geom.Blocks[i].Height, w)
		}
	}

	total := 0
	for _, w := range want {
		total += w
	}
	if got := r.ContentHeight(doc); got != total {
		t.Errorf("content height %d, want %d", got, total)
	}
}

func TestGeometryOffsets(t *testing.T) {
	doc := markup.ParseMarkdown([]byte(structureFixture))
	r, _ := newTestRenderer(t)

	offsets := r.Geometry(doc).Offsets(doc.Headings)
	want := []int{0, 6, 13}
	if len(offsets) != len(want) {
		t.Fatalf("got %d offsets, want %d", len(offsets), len(want))
	}
	for i, w := range want {
		if offsets[i] != w {
			t.Errorf("heading %d: offset %d, want %d", i, offsets[i], w)
		}
	}
}

func TestBlockFixtureHeights(t *testing.T) {
	doc := markup.ParseMarkdown([]byte(blockFixture))
	r, _ := newTestRenderer(t)

	// code (2 lines + frame), quote, rule, table (2 rows + borders)
	want := []int{4, 2, 2, 6}
	geom := r.Geometry(doc)
	if len(geom.Blocks) != len(want) {
		t.Fatalf("got %d blocks, want %d: %+v", len(geom.Blocks), len(want), doc.Blocks)
	}
	for i, w := range want {
		if geom.Blocks[i].Height != w {
			t.Errorf("block %d: height %d, want %d", i, geom.Blocks[i].Height, w)
		}
	}
}

func TestRenderEndToEndBand(t *testing.T) {
	doc := markup.ParseMarkdown([]byte(structureFixture))
	r, _ := newTestRenderer(t)

	geom := r.Geometry(doc)
	tests := []struct {
		scrollTop int
		want      string
	}{
		// Inside Beta's subsection: offsets 0 and 6 have passed.
		{5, "Alpha,Beta"},
		// Past Gamma at offset 13: it closes Alpha's subtree, so
		// Beta drops out while Alpha stays visible as a sibling.
		{12, "Alpha,Gamma"},
	}
	for _, tt := range tests {
		stack, err := crumb.Resolve(doc.Headings, geom, tt.scrollTop, 2, crumb.Config{})
		if err != nil {
			t.Fatal(err)
		}
		var texts []string
		for _, h := range stack.Headings {
			texts = append(texts, h.Text)
		}
		if got := strings.Join(texts, ","); got != tt.want {
			t.Errorf("scrollTop %d: got %q, want %q", tt.scrollTop, got, tt.want)
		}
	}
}

func TestBandHeight(t *testing.T) {
	if got := BandHeight(crumb.Stack{}); got != 0 {
		t.Errorf("empty stack: got %d, want 0", got)
	}

	stack := crumb.Stack{
		Headings: []crumb.PositionedHeading{
			{Heading: crumb.Heading{Level: 1, Text: "a"}},
			{Heading: crumb.Heading{Level: 2, Text: "b"}},
		},
		Indents: []int{0, 1},
	}
	if got := BandHeight(stack); got != 3 {
		t.Errorf("two entries: got %d, want 3", got)
	}
}

func TestDrawBand(t *testing.T) {
	stack := crumb.Stack{
		Headings: []crumb.PositionedHeading{
			{Heading: crumb.Heading{Level: 1, Text: "Install"}, Offset: 0},
			{Heading: crumb.Heading{Level: 2, Text: "Linux"}, Offset: 9},
		},
		Indents: []int{0, 1},
	}

	c := render.NewCanvas(40, 10)
	DrawBand(c, stack, theme.Mono, nil, "")

	if got := c.Get(1, 0).Rune; got != 'I' {
		t.Errorf("row 0 entry: got %q, want 'I'", got)
	}
	if !c.Get(1, 0).Style.Dim {
		t.Error("ancestor entry should render dim in mono theme")
	}
	if got := c.Get(3, 1).Rune; got != 'L' {
		t.Errorf("row 1 indented entry: got %q, want 'L'", got)
	}
	if !c.Get(3, 1).Style.Bold {
		t.Error("deepest entry should render bold")
	}
	if got := c.Get(0, 2).Rune; got != '─' {
		t.Errorf("separator row: got %q, want rule", got)
	}
}

func TestDrawBandLabels(t *testing.T) {
	stack := crumb.Stack{
		Headings: []crumb.PositionedHeading{
			{Heading: crumb.Heading{Level: 1, Text: "Install"}},
			{Heading: crumb.Heading{Level: 1, Text: "Usage"}},
		},
		Indents: []int{0, 0},
	}

	c := render.NewCanvas(40, 10)
	DrawBand(c, stack, theme.Mono, []string{"a", "s"}, "")

	if got := c.Get(1, 0).Rune; got != 'a' {
		t.Errorf("label on row 0: got %q, want 'a'", got)
	}
	if !c.Get(1, 0).Style.Reverse {
		t.Error("label should render reversed")
	}
	if got := c.Get(1, 1).Rune; got != 's' {
		t.Errorf("label on row 1: got %q, want 's'", got)
	}
}

func TestJumpTarget(t *testing.T) {
	h := crumb.PositionedHeading{Offset: 20}
	if got := JumpTarget(h, 3); got != 17 {
		t.Errorf("got %d, want 17", got)
	}
	h.Offset = 2
	if got := JumpTarget(h, 5); got != 0 {
		t.Errorf("near top: got %d, want 0", got)
	}
}

func TestSourceGeometryIdentity(t *testing.T) {
	doc := markup.ParseText([]byte("one\ntwo\nthree"))
	r, _ := newTestRenderer(t)

	geom := r.SourceGeometry(doc, false)
	for line := 0; line < 3; line++ {
		row, ok := geom.RowForLine(line)
		if !ok || row != line {
			t.Errorf("line %d: got row %d ok=%v", line, row, ok)
		}
	}
	if _, ok := geom.RowForLine(99); ok {
		t.Error("out of range line should not resolve")
	}
	if _, ok := geom.RowForLine(-1); ok {
		t.Error("negative line should not resolve")
	}
}

func TestSourceGeometryWrapped(t *testing.T) {
	long := strings.TrimSpace(strings.Repeat("word ", 40))
	doc := markup.ParseText([]byte("short\n\n" + long + "\n\nend"))
	r, _ := newTestRenderer(t)

	longRows := len(render.WrapText(long, r.ContentWidth()))
	if longRows < 2 {
		t.Fatalf("fixture line should wrap, got %d rows", longRows)
	}

	geom := r.SourceGeometry(doc, true)
	tests := []struct {
		line int
		want int
	}{
		{0, 0},
		{1, 1},
		{2, 2},
		{3, 2 + longRows},
		{4, 3 + longRows},
	}
	for _, tt := range tests {
		row, ok := geom.RowForLine(tt.line)
		if !ok || row != tt.want {
			t.Errorf("line %d: got row %d ok=%v, want %d", tt.line, row, ok, tt.want)
		}
	}

	if got := r.SourceHeight(doc, true); got != 4+longRows {
		t.Errorf("source height: got %d, want %d", got, 4+longRows)
	}
	if got := r.SourceHeight(doc, false); got != 5 {
		t.Errorf("unwrapped height: got %d, want 5", got)
	}
}

func TestRenderSourceBoldHeadings(t *testing.T) {
	doc := markup.ParseMarkdown([]byte("# Title\n\nbody\n"))
	c := render.NewCanvas(100, 10)
	r := NewRenderer(c, 0)

	r.RenderSource(doc, 0, false)

	cell := c.Get(r.leftMargin, 0)
	if cell.Rune != '#' || !cell.Style.Bold {
		t.Errorf("heading source line: got %q bold=%v", cell.Rune, cell.Style.Bold)
	}
	body := c.Get(r.leftMargin, 2)
	if body.Rune != 'b' || body.Style.Bold {
		t.Errorf("body source line: got %q bold=%v", body.Rune, body.Style.Bold)
	}
}

func TestGenerateLabels(t *testing.T) {
	labels := GenerateLabels(20)
	if len(labels) != 20 {
		t.Fatalf("got %d labels, want 20", len(labels))
	}
	seen := make(map[string]bool)
	for _, l := range labels {
		if seen[l] {
			t.Errorf("duplicate label %q", l)
		}
		seen[l] = true
	}
}
