package crumb

// Geometry supplies the vertical position of each heading in the
// current view. Implementations are snapshots: they answer from
// whatever layout existed when they were built and degrade to offset 0
// for anything they cannot place, never failing the call.
type Geometry interface {
	// Offsets returns one vertical offset per heading, same order.
	Offsets(headings []Heading) []int
}

// LineGeometry positions headings for a source view through a
// line-to-row lookup supplied by the host.
type LineGeometry struct {
	// RowForLine maps a zero-based source line to the screen row where
	// it starts. Returning ok=false leaves that heading at offset 0.
	RowForLine func(line int) (row int, ok bool)
}

func (g LineGeometry) Offsets(headings []Heading) []int {
	offsets := make([]int, len(headings))
	if g.RowForLine == nil {
		return offsets
	}
	for i, h := range headings {
		if row, ok := g.RowForLine(h.Start.Line); ok {
			offsets[i] = row
		}
	}
	return offsets
}

// Block is one rendered content block in a preview view: its height
// and whether it renders a heading.
type Block struct {
	Height  int
	Heading bool
}

// BlockGeometry positions headings for a rendered view by walking the
// ordered block list and accumulating heights. The nth heading block
// positions the nth heading; its offset is the cumulative height of
// everything above it, excluding the block's own height. If the view
// has rendered fewer heading blocks than there are headings, the
// trailing headings stay at offset 0; extra heading blocks are
// ignored.
type BlockGeometry struct {
	Blocks []Block
}

func (g BlockGeometry) Offsets(headings []Heading) []int {
	offsets := make([]int, len(headings))
	next := 0
	sum := 0
	for _, b := range g.Blocks {
		if b.Heading {
			if next >= len(offsets) {
				break
			}
			offsets[next] = sum
			next++
		}
		sum += b.Height
	}
	return offsets
}

// ResolveOffsets pairs every heading with its vertical offset from
// geom. Exactly one output per input, same order, no filtering. A nil
// geometry places everything at 0.
func ResolveOffsets(headings []Heading, geom Geometry) []PositionedHeading {
	positioned := make([]PositionedHeading, len(headings))
	for i, h := range headings {
		positioned[i] = PositionedHeading{Heading: h}
	}
	if geom == nil {
		return positioned
	}
	offsets := geom.Offsets(headings)
	for i := range positioned {
		if i < len(offsets) {
			positioned[i].Offset = offsets[i]
		}
	}
	return positioned
}
