package crumb

import (
	"reflect"
	"testing"
)

func ph(level int, text string) PositionedHeading {
	return PositionedHeading{Heading: Heading{Level: level, Text: text}}
}

func texts(stack []PositionedHeading) []string {
	out := make([]string, 0, len(stack))
	for _, h := range stack {
		out = append(out, h.Text)
	}
	return out
}

func TestCollapse(t *testing.T) {
	siblings := []PositionedHeading{
		ph(1, "A"), ph(2, "A.1"), ph(2, "A.2"), ph(1, "B"),
	}

	tests := []struct {
		name       string
		candidates []PositionedHeading
		mode       Mode
		want       []string
	}{
		{"later sibling supersedes in concise", siblings, ModeConcise, []string{"B"}},
		{"siblings retained in default", siblings, ModeDefault, []string{"A", "B"}},
		{"rank gap concise", []PositionedHeading{ph(1, "A"), ph(3, "A.1.1")}, ModeConcise, []string{"A", "A.1.1"}},
		{"rank gap default", []PositionedHeading{ph(1, "A"), ph(3, "A.1.1")}, ModeDefault, []string{"A", "A.1.1"}},
		{"empty", nil, ModeDefault, []string{}},
		{"single", []PositionedHeading{ph(4, "deep")}, ModeConcise, []string{"deep"}},
		{
			"open path through three tiers",
			[]PositionedHeading{ph(1, "Intro"), ph(2, "Setup"), ph(3, "Linux"), ph(3, "Mac"), ph(2, "Usage"), ph(4, "Flags")},
			ModeConcise,
			[]string{"Intro", "Usage", "Flags"},
		},
		{
			"default keeps sibling history per tier",
			[]PositionedHeading{ph(1, "Intro"), ph(2, "Setup"), ph(3, "Linux"), ph(3, "Mac"), ph(2, "Usage"), ph(4, "Flags")},
			ModeDefault,
			[]string{"Intro", "Setup", "Usage", "Flags"},
		},
		{
			"document starting below rank 1",
			[]PositionedHeading{ph(3, "a"), ph(2, "b"), ph(3, "c")},
			ModeConcise,
			[]string{"b", "c"},
		},
		{
			"repeated shallow rank swallows everything between",
			[]PositionedHeading{ph(2, "x"), ph(5, "x.deep"), ph(2, "y"), ph(2, "z"), ph(3, "z.1")},
			ModeDefault,
			[]string{"x", "y", "z", "z.1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := texts(Collapse(tt.candidates, tt.mode))
			if len(got) != len(tt.want) {
				t.Fatalf("Collapse returned %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("entry %d: got %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestCollapseDoesNotMutateInput(t *testing.T) {
	candidates := []PositionedHeading{ph(1, "A"), ph(2, "A.1"), ph(1, "B")}
	snapshot := make([]PositionedHeading, len(candidates))
	copy(snapshot, candidates)

	Collapse(candidates, ModeConcise)
	Collapse(candidates, ModeDefault)

	if !reflect.DeepEqual(candidates, snapshot) {
		t.Errorf("input mutated: %v, want %v", candidates, snapshot)
	}
}

// Concise keeps the last same-level sibling of each tier and default
// keeps all of them, so every concise entry (and hence every concise
// level) must also appear in the default result.
func TestConciseWithinDefault(t *testing.T) {
	sequences := [][]PositionedHeading{
		{ph(1, "A"), ph(2, "A.1"), ph(2, "A.2"), ph(1, "B")},
		{ph(2, "a"), ph(4, "b"), ph(2, "c"), ph(6, "d")},
		{ph(3, "x"), ph(1, "y"), ph(5, "z")},
		{ph(1, "1"), ph(1, "2"), ph(1, "3")},
		{},
	}

	for _, seq := range sequences {
		defaults := Collapse(seq, ModeDefault)
		concise := Collapse(seq, ModeConcise)

		inDefault := make(map[string]bool, len(defaults))
		for _, h := range defaults {
			inDefault[h.Text] = true
		}
		for _, h := range concise {
			if !inDefault[h.Text] {
				t.Errorf("concise entry %q (level %d) missing from default result %v", h.Text, h.Level, texts(defaults))
			}
		}
		if len(concise) > len(defaults) {
			t.Errorf("concise result longer than default: %d > %d", len(concise), len(defaults))
		}
	}
}

func TestIndents(t *testing.T) {
	tests := []struct {
		name  string
		stack []PositionedHeading
		want  []int
	}{
		{"empty", nil, []int{}},
		{"plain chain", []PositionedHeading{ph(1, "a"), ph(2, "b"), ph(3, "c")}, []int{0, 1, 2}},
		{"rank gap compacted", []PositionedHeading{ph(1, "a"), ph(3, "b")}, []int{0, 1}},
		{"wide gaps", []PositionedHeading{ph(1, "a"), ph(4, "b"), ph(6, "c")}, []int{0, 1, 2}},
		{"repeated level reuses depth", []PositionedHeading{ph(1, "a"), ph(2, "b"), ph(2, "c"), ph(4, "d")}, []int{0, 1, 1, 2}},
		{"starts deep", []PositionedHeading{ph(5, "a"), ph(6, "b")}, []int{0, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Indents(tt.stack)
			if len(got) != len(tt.want) {
				t.Fatalf("Indents returned %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("indent %d: got %d, want %d", i, got[i], tt.want[i])
				}
			}
		})
	}
}

// The assigned depths must be exactly {0..k} with no gaps, where k+1
// is the number of distinct levels in the stack.
func TestIndentsCompact(t *testing.T) {
	stacks := [][]PositionedHeading{
		{ph(2, "a"), ph(6, "b"), ph(2, "c"), ph(4, "d"), ph(6, "e")},
		{ph(1, "a"), ph(1, "b")},
		{ph(6, "only")},
	}

	for _, stack := range stacks {
		levels := make(map[int]bool)
		for _, h := range stack {
			levels[h.Level] = true
		}

		seen := make(map[int]bool)
		for _, d := range Indents(stack) {
			seen[d] = true
		}
		if len(seen) != len(levels) {
			t.Errorf("stack %v: %d distinct depths, want %d", texts(stack), len(seen), len(levels))
		}
		for d := 0; d < len(levels); d++ {
			if !seen[d] {
				t.Errorf("stack %v: depth %d missing from %v", texts(stack), d, Indents(stack))
			}
		}
	}
}

func TestTruncate(t *testing.T) {
	stack := []PositionedHeading{ph(1, "a"), ph(2, "b"), ph(4, "c")}
	indents := []int{0, 1, 2}

	tests := []struct {
		name        string
		max         int
		wantTexts   []string
		wantIndents []int
	}{
		{"zero is unlimited", 0, []string{"a", "b", "c"}, []int{0, 1, 2}},
		{"negative is unlimited", -3, []string{"a", "b", "c"}, []int{0, 1, 2}},
		{"max beyond length", 10, []string{"a", "b", "c"}, []int{0, 1, 2}},
		{"exact length", 3, []string{"a", "b", "c"}, []int{0, 1, 2}},
		{"keeps the deepest entries", 2, []string{"b", "c"}, []int{1, 2}},
		{"single survivor keeps its indent", 1, []string{"c"}, []int{2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotStack, gotIndents := Truncate(stack, indents, tt.max)
			if !reflect.DeepEqual(texts(gotStack), tt.wantTexts) {
				t.Errorf("stack: got %v, want %v", texts(gotStack), tt.wantTexts)
			}
			if !reflect.DeepEqual(gotIndents, tt.wantIndents) {
				t.Errorf("indents: got %v, want %v", gotIndents, tt.wantIndents)
			}
			if len(gotStack) != len(gotIndents) {
				t.Errorf("misaligned: %d headings, %d indents", len(gotStack), len(gotIndents))
			}
		})
	}
}

func TestTruncateBound(t *testing.T) {
	for n := 0; n <= 5; n++ {
		stack := make([]PositionedHeading, n)
		indents := make([]int, n)
		for max := 1; max <= 7; max++ {
			got, _ := Truncate(stack, indents, max)
			want := n
			if max < n {
				want = max
			}
			if len(got) != want {
				t.Errorf("len(Truncate(n=%d, max=%d)) = %d, want %d", n, max, len(got), want)
			}
		}
	}
}
