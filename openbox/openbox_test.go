package openbox

import (
	"testing"
)

func TestParse(t *testing.T) {
	t.Setenv("HOME", "/home/reader")

	tests := []struct {
		name string
		in   string
		want Target
	}{
		{
			name: "empty",
			in:   "   ",
			want: Target{},
		},
		{
			name: "stdin dash",
			in:   "-",
			want: Target{Kind: KindStdin},
		},
		{
			name: "http url",
			in:   "https://example.com/guide.md",
			want: Target{Kind: KindURL, URL: "https://example.com/guide.md"},
		},
		{
			name: "file scheme",
			in:   "file:///tmp/notes.md",
			want: Target{Kind: KindFile, Path: "/tmp/notes.md"},
		},
		{
			name: "absolute path",
			in:   "/var/doc/readme.md",
			want: Target{Kind: KindFile, Path: "/var/doc/readme.md"},
		},
		{
			name: "relative dot path",
			in:   "./notes.txt",
			want: Target{Kind: KindFile, Path: "./notes.txt"},
		},
		{
			name: "home path",
			in:   "~/docs/guide.md",
			want: Target{Kind: KindFile, Path: "/home/reader/docs/guide.md"},
		},
		{
			name: "bare file name",
			in:   "README.md",
			want: Target{Kind: KindFile, Path: "README.md"},
		},
		{
			name: "line jump",
			in:   ":120",
			want: Target{Kind: KindLine, Line: 120},
		},
		{
			name: "bad line jump",
			in:   ":abc",
			want: Target{},
		},
		{
			name: "heading jump",
			in:   "#install",
			want: Target{Kind: KindHeading, Query: "install"},
		},
		{
			name: "empty heading jump",
			in:   "#  ",
			want: Target{},
		},
		{
			name: "looks like url",
			in:   "example.com",
			want: Target{Kind: KindURL, URL: "https://example.com"},
		},
		{
			name: "host with path",
			in:   "example.org/docs/intro",
			want: Target{Kind: KindURL, URL: "https://example.org/docs/intro"},
		},
		{
			name: "host port url",
			in:   "localhost:8080",
			want: Target{Kind: KindURL, URL: "https://localhost:8080"},
		},
		{
			name: "tld only as suffix of host",
			in:   "report.commit.txt",
			want: Target{Kind: KindFile, Path: "report.commit.txt"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Parse(tt.in)
			if got != tt.want {
				t.Fatalf("Parse(%q) = %#v, want %#v", tt.in, got, tt.want)
			}
		})
	}
}
