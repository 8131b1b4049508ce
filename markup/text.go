package markup

import "strings"

// ParseText treats plain text as blank line separated paragraphs.
// Runs where every line is indented are kept verbatim as code so
// pasted snippets and ASCII diagrams survive rewrapping.
func ParseText(src []byte) *Document {
	lines := splitLines(src)
	d := &Document{Source: lines}

	start := -1
	flush := func(end int) {
		if start < 0 {
			return
		}
		chunk := lines[start : end+1]
		b := Block{StartLine: start, EndLine: end}
		if allIndented(chunk) {
			b.Kind = KindCode
			b.Text = strings.TrimRight(strings.Join(chunk, "\n"), " \t")
		} else {
			b.Kind = KindParagraph
			text := strings.TrimSpace(strings.Join(chunk, " "))
			b.Text = text
			b.Spans = []Span{{Text: text}}
		}
		d.Blocks = append(d.Blocks, b)
		start = -1
	}

	for i, line := range lines {
		if strings.TrimSpace(line) == "" {
			flush(i - 1)
			continue
		}
		if start < 0 {
			start = i
		}
	}
	flush(len(lines) - 1)
	return d
}

func allIndented(lines []string) bool {
	for _, line := range lines {
		if line == "" {
			continue
		}
		if line[0] != ' ' && line[0] != '\t' {
			return false
		}
	}
	return true
}
