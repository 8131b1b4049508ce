// Geom dumps the row geometry the preview renderer computes for a
// document, for checking band placement against what the reader shows.
package main

import (
	"fmt"
	"os"
	"strconv"

	"headway/crumb"
	"headway/document"
	"headway/markup"
	"headway/render"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("usage: geom <file> [width]")
		return
	}

	width := 100
	if len(os.Args) > 2 {
		if w, err := strconv.Atoi(os.Args[2]); err == nil && w > 0 {
			width = w
		}
	}

	body, err := os.ReadFile(os.Args[1])
	if err != nil {
		fmt.Println("Error:", err)
		return
	}
	doc, err := markup.Parse(body, markup.Detect(os.Args[1], "", body), "")
	if err != nil {
		fmt.Println("Parse error:", err)
		return
	}

	renderer := document.NewRenderer(render.NewCanvas(width, 1), 0)
	geom := renderer.Geometry(doc)

	table := render.NewTable("#", "KIND", "LINES", "HEIGHT", "OFFSET")
	table.SetAlignment(0, render.AlignRight)
	table.SetAlignment(3, render.AlignRight)
	table.SetAlignment(4, render.AlignRight)

	offset := 0
	for i, blk := range geom.Blocks {
		b := doc.Blocks[i]
		kind := kindName(b.Kind)
		if blk.Heading {
			kind = fmt.Sprintf("h%d", b.Level)
		}
		table.AddRow(
			strconv.Itoa(i),
			kind,
			fmt.Sprintf("%d-%d", b.StartLine+1, b.EndLine+1),
			strconv.Itoa(blk.Height),
			strconv.Itoa(offset),
		)
		offset += blk.Height
	}
	fmt.Print(table.RenderToString())
	fmt.Printf("\ncontent height: %d rows\n", renderer.ContentHeight(doc))

	if len(doc.Headings) == 0 {
		return
	}
	fmt.Println("\nheading offsets:")
	for _, h := range crumb.ResolveOffsets(doc.Headings, geom) {
		fmt.Printf("  %*s%s  row %d\n", (h.Level-1)*2, "", h.Text, h.Offset)
	}
}

func kindName(k markup.Kind) string {
	switch k {
	case markup.KindHeading:
		return "heading"
	case markup.KindParagraph:
		return "para"
	case markup.KindCode:
		return "code"
	case markup.KindQuote:
		return "quote"
	case markup.KindList:
		return "list"
	case markup.KindTable:
		return "table"
	case markup.KindRule:
		return "rule"
	}
	return "?"
}
