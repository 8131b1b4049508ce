// Package serve exposes the breadcrumb resolver over HTTP so editor
// plugins and web front ends can ask for outlines and stacks without
// embedding the engine.
package serve

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"headway/cache"
	"headway/crumb"
	"headway/document"
	"headway/fetcher"
	"headway/markup"
	"headway/render"
)

// Options configures the server.
type Options struct {
	Root   string       // directory local sources resolve under; empty disables file sources
	Store  *cache.Store // optional page/outline cache
	Logger *slog.Logger // defaults to a text logger on stderr
}

// Server answers outline and breadcrumb queries for local files and
// remote pages.
type Server struct {
	root   string
	store  *cache.Store
	log    *slog.Logger
	router chi.Router
}

// New builds a server and its routes.
func New(opts Options) *Server {
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(os.Stderr, nil))
	}

	s := &Server{
		root:  opts.Root,
		store: opts.Store,
		log:   log,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.viewID)
	r.Use(s.requestLogger)

	r.Get("/healthz", s.handleHealthz)
	r.Route("/api", func(r chi.Router) {
		r.Get("/outline", s.handleOutline)
		r.Get("/crumb", s.handleCrumb)
	})

	s.router = r
	return s
}

// Handler returns the HTTP handler for mounting or testing.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe runs the server on addr until it fails.
func (s *Server) ListenAndServe(addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	s.log.Info("listening", "addr", addr)
	return srv.ListenAndServe()
}

// viewID tags every response with a view identifier, minting one when
// the client did not send its own. Clients echo it on subsequent
// requests so one scrolling session can be followed through the logs.
func (s *Server) viewID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-View-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-View-ID", id)
		next.ServeHTTP(w, r)
	})
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.log.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"reqId", middleware.GetReqID(r.Context()),
			"viewId", ww.Header().Get("X-View-ID"),
		)
	})
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("ok\n"))
}

type headingJSON struct {
	Level int    `json:"level"`
	Text  string `json:"text"`
	Line  int    `json:"line"` // 1-based source line
}

type outlineResponse struct {
	Source   string        `json:"source"`
	Title    string        `json:"title"`
	Headings []headingJSON `json:"headings"`
}

func (s *Server) handleOutline(w http.ResponseWriter, r *http.Request) {
	src := r.URL.Query().Get("src")
	if src == "" {
		writeError(w, http.StatusBadRequest, "missing src parameter")
		return
	}

	doc, err := s.load(src)
	if err != nil {
		writeError(w, loadStatus(src), err.Error())
		return
	}

	resp := outlineResponse{
		Source:   src,
		Title:    doc.Title,
		Headings: make([]headingJSON, len(doc.Headings)),
	}
	for i, h := range doc.Headings {
		resp.Headings[i] = headingJSON{Level: h.Level, Text: h.Text, Line: h.Start.Line + 1}
	}
	writeJSON(w, http.StatusOK, resp)
}

type stackEntryJSON struct {
	Level      int    `json:"level"`
	Text       string `json:"text"`
	Line       int    `json:"line"`
	Offset     int    `json:"offset"`
	Indent     int    `json:"indent"`
	JumpTarget int    `json:"jumpTarget"`
}

type crumbResponse struct {
	Source string           `json:"source"`
	View   string           `json:"view"`
	Scroll int              `json:"scroll"`
	Band   int              `json:"band"`
	Stack  []stackEntryJSON `json:"stack"`
}

// handleCrumb resolves the breadcrumb stack for a scrolled position.
// Offsets are source line numbers for view=source and rendered rows
// (at the given column width) for view=preview.
func (s *Server) handleCrumb(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	src := q.Get("src")
	if src == "" {
		writeError(w, http.StatusBadRequest, "missing src parameter")
		return
	}

	scroll, ok := intParam(w, q.Get("scroll"), "scroll", 0)
	if !ok {
		return
	}
	band, ok := intParam(w, q.Get("band"), "band", 0)
	if !ok {
		return
	}
	width, ok := intParam(w, q.Get("width"), "width", 100)
	if !ok {
		return
	}
	max, ok := intParam(w, q.Get("max"), "max", 0)
	if !ok {
		return
	}
	if max < 0 {
		max = 0
	}

	mode, err := crumb.ParseMode(q.Get("mode"))
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	view := q.Get("view")
	if view == "" {
		view = "source"
	}

	doc, err := s.load(src)
	if err != nil {
		writeError(w, loadStatus(src), err.Error())
		return
	}

	var geom crumb.Geometry
	switch view {
	case "source":
		geom = crumb.LineGeometry{RowForLine: func(line int) (int, bool) {
			return line, true
		}}
	case "preview":
		renderer := document.NewRenderer(render.NewCanvas(width, 1), width)
		geom = renderer.Geometry(doc)
	default:
		writeError(w, http.StatusUnprocessableEntity, "unknown view "+strconv.Quote(view))
		return
	}

	stack, err := crumb.Resolve(doc.Headings, geom, scroll, band, crumb.Config{Mode: mode, Max: max})
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	resp := crumbResponse{
		Source: src,
		View:   view,
		Scroll: scroll,
		Band:   band,
		Stack:  make([]stackEntryJSON, len(stack.Headings)),
	}
	for i, h := range stack.Headings {
		resp.Stack[i] = stackEntryJSON{
			Level:      h.Level,
			Text:       h.Text,
			Line:       h.Start.Line + 1,
			Offset:     h.Offset,
			Indent:     stack.Indents[i],
			JumpTarget: document.JumpTarget(h, band),
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// load resolves src into a parsed document: remote URLs through the
// fetcher and page cache, everything else as a path under root.
func (s *Server) load(src string) (*markup.Document, error) {
	if isRemote(src) {
		if page, ok := s.store.GetPage(src); ok {
			return markup.Parse(page.Body, markup.Detect(page.FinalURL, page.ContentType, page.Body), page.FinalURL)
		}
		result, err := fetcher.Smart(src)
		if err != nil {
			return nil, err
		}
		s.store.PutPage(src, &cache.Page{
			Body:        result.Body,
			ContentType: result.ContentType,
			FinalURL:    result.FinalURL,
			UsedBrowser: result.UsedBrowser,
			FetchedAt:   time.Now(),
		})
		return markup.Parse(result.Body, markup.Detect(result.FinalURL, result.ContentType, result.Body), result.FinalURL)
	}

	if s.root == "" {
		return nil, os.ErrNotExist
	}
	// Clean against the root so ../ cannot escape it.
	path := filepath.Join(s.root, filepath.Clean("/"+src))
	body, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return markup.Parse(body, markup.Detect(path, "", body), "")
}

func isRemote(src string) bool {
	return strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://")
}

func loadStatus(src string) int {
	if isRemote(src) {
		return http.StatusBadGateway
	}
	return http.StatusNotFound
}

func intParam(w http.ResponseWriter, raw, name string, def int) (int, bool) {
	if raw == "" {
		return def, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad "+name+" parameter")
		return 0, false
	}
	return n, true
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
