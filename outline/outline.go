// Package outline scans directories of documents and extracts their
// heading structure.
package outline

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/schollz/progressbar/v3"

	"headway/cache"
	"headway/crumb"
	"headway/markup"
	"headway/render"
)

// DefaultInclude covers the document types the reader renders.
var DefaultInclude = []string{
	"**/*.md", "**/*.markdown",
	"**/*.html", "**/*.htm",
	"**/*.txt",
}

// DefaultExclude skips directories that are never worth outlining.
var DefaultExclude = []string{
	"**/node_modules/**",
	"**/.git/**",
	"**/vendor/**",
}

// FileOutline is the heading structure of one scanned file.
type FileOutline struct {
	Path     string // relative to the scan root
	Title    string
	Headings []crumb.Heading
	Cached   bool // served from the outline cache
}

// Scanner walks a directory tree for documents. Include and Exclude
// are doublestar patterns matched against root-relative paths.
type Scanner struct {
	Include []string
	Exclude []string
	Store   *cache.Store // optional, nil disables caching
	Quiet   bool         // suppress the progress bar
}

// NewScanner returns a scanner with the default patterns.
func NewScanner() *Scanner {
	return &Scanner{Include: DefaultInclude, Exclude: DefaultExclude}
}

// Scan walks root and outlines every matching document. Files that
// cannot be read or parsed are skipped. Results come back sorted by
// path.
func (s *Scanner) Scan(root string) ([]FileOutline, error) {
	fsys := os.DirFS(root)

	seen := make(map[string]bool)
	var files []string
	for _, pattern := range s.Include {
		matches, err := doublestar.Glob(fsys, pattern)
		if err != nil {
			return nil, fmt.Errorf("bad include pattern %q: %w", pattern, err)
		}
		for _, m := range matches {
			if seen[m] || s.excluded(m) {
				continue
			}
			seen[m] = true
			files = append(files, m)
		}
	}
	sort.Strings(files)

	bar := s.newBar(len(files))
	outlines := make([]FileOutline, 0, len(files))
	for _, rel := range files {
		bar.Add(1)
		o, err := s.scanFile(root, rel)
		if err != nil {
			continue
		}
		outlines = append(outlines, o)
	}
	bar.Finish()

	return outlines, nil
}

func (s *Scanner) excluded(rel string) bool {
	for _, pattern := range s.Exclude {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
	}
	return false
}

func (s *Scanner) scanFile(root, rel string) (FileOutline, error) {
	full := filepath.Join(root, rel)
	info, err := os.Stat(full)
	if err != nil {
		return FileOutline{}, err
	}

	if hit, ok := s.Store.GetOutline(full, info.ModTime()); ok {
		return FileOutline{Path: rel, Title: hit.Title, Headings: hit.Headings, Cached: true}, nil
	}

	body, err := os.ReadFile(full)
	if err != nil {
		return FileOutline{}, err
	}

	doc, err := markup.Parse(body, markup.Detect(rel, "", body), "")
	if err != nil {
		return FileOutline{}, err
	}

	s.Store.PutOutline(full, &cache.Outline{
		Title:     doc.Title,
		Headings:  doc.Headings,
		ModTime:   info.ModTime(),
		ScannedAt: time.Now(),
	})

	return FileOutline{Path: rel, Title: doc.Title, Headings: doc.Headings}, nil
}

func (s *Scanner) newBar(n int) *progressbar.ProgressBar {
	if s.Quiet {
		return progressbar.DefaultSilent(int64(n))
	}
	return progressbar.NewOptions(n,
		progressbar.OptionSetDescription("scanning"),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
}

// Tree formats one file's outline as indented lines with 1-based
// source line references. Indentation uses compact depths rather than
// raw levels, so a document whose headings skip ranks still reads as
// a tidy tree.
func Tree(o FileOutline) []string {
	if len(o.Headings) == 0 {
		return []string{"(no headings)"}
	}
	hs := make([]crumb.PositionedHeading, len(o.Headings))
	for i, h := range o.Headings {
		hs[i] = crumb.PositionedHeading{Heading: h}
	}
	depths := crumb.Indents(hs)
	lines := make([]string, 0, len(o.Headings))
	for i, h := range o.Headings {
		indent := strings.Repeat("  ", depths[i])
		lines = append(lines, fmt.Sprintf("%s%s  :%d", indent, h.Text, h.Start.Line+1))
	}
	return lines
}

// SummaryTable builds the per-file summary for a scan.
func SummaryTable(outlines []FileOutline) *render.Table {
	tbl := render.NewTable("FILE", "TITLE", "HEADINGS", "DEPTH")
	tbl.SetAlignment(2, render.AlignRight)
	tbl.SetAlignment(3, render.AlignRight)

	for _, o := range outlines {
		title := o.Title
		if title == "" {
			title = "-"
		}
		depth := 0
		for _, h := range o.Headings {
			if h.Level > depth {
				depth = h.Level
			}
		}
		tbl.AddRow(
			o.Path,
			render.Truncate(title, 40),
			strconv.Itoa(len(o.Headings)),
			strconv.Itoa(depth),
		)
	}
	return tbl
}
