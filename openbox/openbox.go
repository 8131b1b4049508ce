// Package openbox parses open-prompt input into a navigation target.
package openbox

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Kind says what a parsed input names.
type Kind int

const (
	// KindNone is an empty or unusable input.
	KindNone Kind = iota
	// KindURL navigates to a remote document.
	KindURL
	// KindFile opens a local file.
	KindFile
	// KindStdin reads the document from standard input.
	KindStdin
	// KindLine jumps to a source line in the current document.
	KindLine
	// KindHeading jumps to the first matching heading in the current
	// document.
	KindHeading
)

// Target represents the parsed open-prompt input.
type Target struct {
	Kind  Kind
	URL   string // for KindURL
	Path  string // for KindFile
	Query string // for KindHeading
	Line  int    // for KindLine, 1-based
}

// Parse turns prompt or argv input into a Target. It never touches the
// filesystem; whether a KindFile path exists is the caller's problem.
func Parse(input string) Target {
	input = strings.TrimSpace(input)
	if input == "" {
		return Target{}
	}

	if input == "-" {
		return Target{Kind: KindStdin}
	}

	if strings.HasPrefix(input, "http://") || strings.HasPrefix(input, "https://") {
		return Target{Kind: KindURL, URL: input}
	}
	if rest, ok := strings.CutPrefix(input, "file://"); ok {
		return Target{Kind: KindFile, Path: rest}
	}

	// ":120" jumps to a line in the open document.
	if rest, ok := strings.CutPrefix(input, ":"); ok {
		if n, err := strconv.Atoi(rest); err == nil && n > 0 {
			return Target{Kind: KindLine, Line: n}
		}
		return Target{}
	}

	// "#install" jumps to a heading in the open document.
	if rest, ok := strings.CutPrefix(input, "#"); ok {
		rest = strings.TrimSpace(rest)
		if rest == "" {
			return Target{}
		}
		return Target{Kind: KindHeading, Query: rest}
	}

	// Explicit path shapes open files directly.
	if strings.HasPrefix(input, "/") || strings.HasPrefix(input, "./") || strings.HasPrefix(input, "../") {
		return Target{Kind: KindFile, Path: input}
	}
	if rest, ok := strings.CutPrefix(input, "~/"); ok {
		if home, err := os.UserHomeDir(); err == nil {
			return Target{Kind: KindFile, Path: filepath.Join(home, rest)}
		}
		return Target{Kind: KindFile, Path: input}
	}

	// Bare words that look like hosts get a scheme; everything else is
	// treated as a relative file path.
	if looksLikeURL(input) {
		return Target{Kind: KindURL, URL: "https://" + input}
	}

	return Target{Kind: KindFile, Path: input}
}

// looksLikeURL checks if input looks like a URL (has domain.tld pattern).
func looksLikeURL(input string) bool {
	if strings.Contains(input, " ") {
		return false
	}

	lower := strings.ToLower(input)
	if strings.HasPrefix(lower, "localhost") || strings.HasPrefix(lower, "127.") {
		return true
	}

	host := lower
	if i := strings.IndexAny(host, "/:"); i >= 0 {
		host = host[:i]
	}

	tlds := []string{
		".com", ".org", ".net", ".io", ".dev", ".co", ".me", ".app",
		".edu", ".gov", ".uk", ".de", ".fr", ".jp", ".au", ".ca",
		".info", ".biz", ".tv", ".cc", ".xyz", ".tech", ".ai",
	}
	for _, tld := range tlds {
		if strings.HasSuffix(host, tld) {
			return true
		}
	}
	return false
}
