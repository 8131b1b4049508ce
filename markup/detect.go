package markup

import (
	"bytes"
	"path/filepath"
	"strings"
)

// Format identifies which parser handles a document.
type Format int

const (
	FormatText Format = iota
	FormatMarkdown
	FormatHTML
)

func (f Format) String() string {
	switch f {
	case FormatMarkdown:
		return "markdown"
	case FormatHTML:
		return "html"
	default:
		return "text"
	}
}

// Detect picks a format from the name's extension first, then the
// Content-Type header, then a sniff of the body. Any of the three may
// be empty.
func Detect(name, contentType string, body []byte) Format {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".md", ".markdown", ".mdown", ".mkd":
		return FormatMarkdown
	case ".html", ".htm", ".xhtml":
		return FormatHTML
	case ".txt", ".text", ".log":
		return FormatText
	}

	ct := strings.ToLower(contentType)
	switch {
	case strings.Contains(ct, "html"):
		return FormatHTML
	case strings.Contains(ct, "markdown"):
		return FormatMarkdown
	}

	return sniff(body)
}

// Parse runs the parser for format. baseURL anchors relative links in
// HTML and is ignored by the other parsers.
func Parse(body []byte, format Format, baseURL string) (*Document, error) {
	switch format {
	case FormatMarkdown:
		return ParseMarkdown(body), nil
	case FormatHTML:
		return ParseHTML(body, baseURL)
	default:
		return ParseText(body), nil
	}
}

func sniff(body []byte) Format {
	head := bytes.ToLower(bytes.TrimSpace(body))
	if len(head) > 1024 {
		head = head[:1024]
	}
	for _, marker := range []string{"<!doctype html", "<html", "<head", "<body"} {
		if bytes.HasPrefix(head, []byte(marker)) {
			return FormatHTML
		}
	}

	for _, line := range strings.Split(string(head), "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "```") {
			return FormatMarkdown
		}
		hashes := 0
		for hashes < len(line) && line[hashes] == '#' {
			hashes++
		}
		if hashes >= 1 && hashes <= 6 && hashes < len(line) && line[hashes] == ' ' {
			return FormatMarkdown
		}
	}
	return FormatText
}
