package serve

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

var guideFixture = strings.Join([]string{
	"# Alpha",
	"",
	"text",
	"",
	"## Beta",
	"",
	"more",
	"",
	"# Gamma",
	"",
	"end",
	"",
}, "\n")

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "guide.md"), []byte(guideFixture), 0o644); err != nil {
		t.Fatal(err)
	}

	s := New(Options{
		Root:   root,
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)
	return srv
}

func getJSON(t *testing.T, url string, into interface{}) *http.Response {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if into != nil {
		if err := json.NewDecoder(resp.Body).Decode(into); err != nil {
			t.Fatalf("decoding %s: %v", url, err)
		}
	}
	return resp
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("status: got %d", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	if string(body) != "ok\n" {
		t.Errorf("body: got %q", body)
	}
	if resp.Header.Get("X-View-ID") == "" {
		t.Error("expected a minted X-View-ID header")
	}
}

func TestViewIDEchoed(t *testing.T) {
	srv := newTestServer(t)

	req, _ := http.NewRequest("GET", srv.URL+"/healthz", nil)
	req.Header.Set("X-View-ID", "session-42")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()

	if got := resp.Header.Get("X-View-ID"); got != "session-42" {
		t.Errorf("view id: got %q, want session-42", got)
	}
}

func TestOutline(t *testing.T) {
	srv := newTestServer(t)

	var out outlineResponse
	resp := getJSON(t, srv.URL+"/api/outline?src=guide.md", &out)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status: got %d", resp.StatusCode)
	}

	if out.Title != "Alpha" {
		t.Errorf("title: got %q", out.Title)
	}
	want := []headingJSON{
		{Level: 1, Text: "Alpha", Line: 1},
		{Level: 2, Text: "Beta", Line: 5},
		{Level: 1, Text: "Gamma", Line: 9},
	}
	if len(out.Headings) != len(want) {
		t.Fatalf("got %d headings: %+v", len(out.Headings), out.Headings)
	}
	for i, w := range want {
		if out.Headings[i] != w {
			t.Errorf("heading %d: got %+v, want %+v", i, out.Headings[i], w)
		}
	}
}

func TestOutlineMissingSource(t *testing.T) {
	srv := newTestServer(t)

	resp := getJSON(t, srv.URL+"/api/outline?src=nope.md", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status: got %d, want 404", resp.StatusCode)
	}

	resp = getJSON(t, srv.URL+"/api/outline", nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("missing src: got %d, want 400", resp.StatusCode)
	}
}

func TestCrumbSourceView(t *testing.T) {
	srv := newTestServer(t)

	var out crumbResponse
	resp := getJSON(t, srv.URL+"/api/crumb?src=guide.md&scroll=4&band=0", &out)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status: got %d", resp.StatusCode)
	}

	if len(out.Stack) != 2 {
		t.Fatalf("stack: got %+v", out.Stack)
	}
	if out.Stack[0].Text != "Alpha" || out.Stack[0].Offset != 0 || out.Stack[0].Indent != 0 {
		t.Errorf("entry 0: got %+v", out.Stack[0])
	}
	if out.Stack[1].Text != "Beta" || out.Stack[1].Offset != 4 || out.Stack[1].Indent != 1 {
		t.Errorf("entry 1: got %+v", out.Stack[1])
	}
	if out.Stack[1].Line != 5 {
		t.Errorf("entry 1 line: got %d, want 5", out.Stack[1].Line)
	}
}

func TestCrumbBandWidensThreshold(t *testing.T) {
	srv := newTestServer(t)

	// scroll=2 alone passes only Alpha; a band of 2 reaches line 4.
	var out crumbResponse
	getJSON(t, srv.URL+"/api/crumb?src=guide.md&scroll=2&band=0", &out)
	if len(out.Stack) != 1 || out.Stack[0].Text != "Alpha" {
		t.Errorf("without band: got %+v", out.Stack)
	}

	getJSON(t, srv.URL+"/api/crumb?src=guide.md&scroll=2&band=2", &out)
	if len(out.Stack) != 2 || out.Stack[1].Text != "Beta" {
		t.Errorf("with band: got %+v", out.Stack)
	}
	if out.Stack[1].JumpTarget != 2 {
		t.Errorf("jump target: got %d, want 2", out.Stack[1].JumpTarget)
	}
}

func TestCrumbConciseMode(t *testing.T) {
	srv := newTestServer(t)

	var out crumbResponse
	getJSON(t, srv.URL+"/api/crumb?src=guide.md&scroll=8&mode=default", &out)
	var texts []string
	for _, e := range out.Stack {
		texts = append(texts, e.Text)
	}
	if got := strings.Join(texts, ","); got != "Alpha,Gamma" {
		t.Errorf("default mode: got %q", got)
	}

	getJSON(t, srv.URL+"/api/crumb?src=guide.md&scroll=8&mode=concise", &out)
	if len(out.Stack) != 1 || out.Stack[0].Text != "Gamma" {
		t.Errorf("concise mode: got %+v", out.Stack)
	}
}

func TestCrumbMaxNormalized(t *testing.T) {
	srv := newTestServer(t)

	// Negative max reads as unlimited, not an error.
	var out crumbResponse
	resp := getJSON(t, srv.URL+"/api/crumb?src=guide.md&scroll=4&max=-3", &out)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status: got %d", resp.StatusCode)
	}
	if len(out.Stack) != 2 {
		t.Errorf("got %+v", out.Stack)
	}

	resp = getJSON(t, srv.URL+"/api/crumb?src=guide.md&scroll=4&max=1", &out)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status: got %d", resp.StatusCode)
	}
	if len(out.Stack) != 1 || out.Stack[0].Text != "Beta" {
		t.Errorf("max=1 should keep the deepest entry: got %+v", out.Stack)
	}
}

func TestCrumbBadParams(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		query string
		want  int
	}{
		{"?src=guide.md&scroll=abc", http.StatusBadRequest},
		{"?src=guide.md&mode=shiny", http.StatusUnprocessableEntity},
		{"?src=guide.md&view=holographic", http.StatusUnprocessableEntity},
		{"?scroll=3", http.StatusBadRequest},
		{"?src=../../etc/passwd", http.StatusNotFound},
	}
	for _, tt := range tests {
		resp := getJSON(t, srv.URL+"/api/crumb"+tt.query, nil)
		if resp.StatusCode != tt.want {
			t.Errorf("%s: got %d, want %d", tt.query, resp.StatusCode, tt.want)
		}
	}
}

func TestCrumbPreviewView(t *testing.T) {
	srv := newTestServer(t)

	// In preview geometry the first h1 sits at row 0 and Beta lands
	// past it; offsets are rendered rows, not source lines.
	var out crumbResponse
	resp := getJSON(t, srv.URL+"/api/crumb?src=guide.md&view=preview&scroll=50&width=100", &out)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status: got %d", resp.StatusCode)
	}
	if out.View != "preview" {
		t.Errorf("view: got %q", out.View)
	}
	if len(out.Stack) == 0 {
		t.Fatal("expected entries at bottom scroll")
	}
	last := out.Stack[len(out.Stack)-1]
	if last.Text != "Gamma" {
		t.Errorf("deepest: got %+v", last)
	}
	// h1(4) + para(2) + h2(4) + para(2) puts Gamma's section rule block at row 12.
	if last.Offset != 12 {
		t.Errorf("preview offset: got %d, want 12", last.Offset)
	}
}
