// Headway is a terminal reader that keeps a breadcrumb band of the
// headings enclosing whatever is currently on screen.
package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	neturl "net/url"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"headway/bookmarks"
	"headway/cache"
	"headway/config"
	"headway/crumb"
	"headway/document"
	"headway/fetcher"
	"headway/markup"
	"headway/openbox"
	"headway/outline"
	"headway/prompt"
	"headway/render"
	"headway/serve"
	"headway/session"
	"headway/theme"
)

const (
	viewPreview = "preview"
	viewSource  = "source"

	// welcomePage is the synthetic source string for the built-in
	// landing document. It is regenerated rather than fetched.
	welcomePage = "about:welcome"
)

var (
	flagPrint      bool
	flagWidth      int
	flagCrumb      int
	flagView       string
	flagBand       int
	flagRestore    bool
	flagNoCache    bool
	flagInitConfig bool

	flagScanInclude []string
	flagScanExclude []string
	flagScanQuiet   bool

	flagServeAddr string
	flagServeRoot string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "headway [source]",
	Short: "terminal reader with a breadcrumb band",
	Long: `Headway renders markdown, HTML and plain text in the terminal and keeps
a band at the top of the screen showing the heading trail for the
content currently in view.

A source can be a file path, a URL, or - for stdin. With no source the
previous session is restored when enabled, otherwise a welcome page.`,
	Example: `  headway README.md
  headway https://go.dev/doc/effective_go
  cat notes.md | headway -
  headway --print spec.md | less
  headway --crumb 120 --view source doc.md`,
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if flagInitConfig {
			fmt.Print(config.DefaultYAML())
			return nil
		}
		source := ""
		if len(args) > 0 {
			source = args[0]
		}
		if flagPrint {
			return runPrint(source)
		}
		if cmd.Flags().Changed("crumb") {
			return runCrumb(source)
		}
		return run(source)
	},
}

func init() {
	rootCmd.Flags().BoolVarP(&flagPrint, "print", "p", false, "render once to stdout and exit")
	rootCmd.Flags().IntVar(&flagCrumb, "crumb", 0, "print the breadcrumb stack at this scroll offset and exit")
	rootCmd.Flags().StringVar(&flagView, "view", viewPreview, "view for --crumb: preview or source")
	rootCmd.Flags().IntVar(&flagBand, "band", 0, "band height in rows for --crumb")
	rootCmd.Flags().IntVar(&flagWidth, "width", 0, "render width for --print and --crumb (default: terminal width)")
	rootCmd.Flags().BoolVar(&flagRestore, "restore", false, "restore the previous session")
	rootCmd.Flags().BoolVar(&flagInitConfig, "init-config", false, "print a commented default config and exit")
	rootCmd.PersistentFlags().BoolVar(&flagNoCache, "no-cache", false, "bypass the page cache")

	scanCmd.Flags().StringSliceVar(&flagScanInclude, "include", nil, "glob patterns to scan (default: markdown, html, text)")
	scanCmd.Flags().StringSliceVar(&flagScanExclude, "exclude", nil, "directory names to skip")
	scanCmd.Flags().BoolVarP(&flagScanQuiet, "quiet", "q", false, "suppress the progress bar")

	serveCmd.Flags().StringVar(&flagServeAddr, "addr", ":8532", "listen address")
	serveCmd.Flags().StringVar(&flagServeRoot, "root", ".", "directory local sources are resolved under")

	cacheCmd.AddCommand(cachePruneCmd, cacheClearCmd)
	rootCmd.AddCommand(outlineCmd, scanCmd, serveCmd, cacheCmd)
}

var outlineCmd = &cobra.Command{
	Use:   "outline <file>",
	Short: "print the heading outline of a document",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, err := loadFile(args[0])
		if err != nil {
			return err
		}
		fo := outline.FileOutline{Path: args[0], Title: doc.Title, Headings: doc.Headings}
		for _, line := range outline.Tree(fo) {
			fmt.Println(line)
		}
		return nil
	},
}

var scanCmd = &cobra.Command{
	Use:   "scan [dir]",
	Short: "index the headings of every document under a directory",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root := "."
		if len(args) > 0 {
			root = args[0]
		}
		cfg, err := config.Load()
		if err != nil {
			return errors.New(config.FormatError(err))
		}

		store := openStore(cfg)
		defer store.Close()

		sc := outline.NewScanner()
		sc.Store = store
		sc.Quiet = flagScanQuiet
		if len(flagScanInclude) > 0 {
			sc.Include = flagScanInclude
		}
		if len(flagScanExclude) > 0 {
			sc.Exclude = flagScanExclude
		}

		outlines, err := sc.Scan(root)
		if err != nil {
			return err
		}
		fmt.Print(outline.SummaryTable(outlines).RenderToString())
		fmt.Printf("\n%d documents\n", len(outlines))
		return nil
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "serve outlines and breadcrumb stacks over HTTP",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return errors.New(config.FormatError(err))
		}
		configureFetcher(cfg)

		store := openStore(cfg)
		defer store.Close()

		logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
		srv := serve.New(serve.Options{
			Root:   flagServeRoot,
			Store:  store,
			Logger: logger,
		})
		logger.Info("listening", "addr", flagServeAddr, "root", flagServeRoot)
		return srv.ListenAndServe(flagServeAddr)
	},
}

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "manage the page cache",
}

var cachePruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "drop expired pages from the cache",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return errors.New(config.FormatError(err))
		}
		path, err := cache.DefaultPath()
		if err != nil {
			return err
		}
		store, err := cache.Open(path, time.Duration(cfg.Cache.TTLHours)*time.Hour)
		if err != nil {
			return err
		}
		defer store.Close()

		n, err := store.Prune()
		if err != nil {
			return err
		}
		fmt.Printf("pruned %d entries\n", n)
		return nil
	},
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "delete the cache entirely",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := cache.DefaultPath()
		if err != nil {
			return err
		}
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return err
		}
		fmt.Println("cache cleared")
		return nil
	},
}

// runPrint renders the document once and writes plain text to stdout,
// for piping into a pager or diffing rendered output.
func runPrint(source string) error {
	cfg, err := config.Load()
	if err != nil {
		return errors.New(config.FormatError(err))
	}
	configureFetcher(cfg)

	store := openStore(cfg)
	defer store.Close()

	doc, _, err := loadQuiet(source, store)
	if err != nil {
		return err
	}

	width := renderWidth()
	probe := document.NewRenderer(render.NewCanvas(width, 1), cfg.Display.MaxWidth)
	height := probe.ContentHeight(doc)
	if height < 1 {
		height = 1
	}

	canvas := render.NewCanvas(width, height)
	document.NewRenderer(canvas, cfg.Display.MaxWidth).Render(doc, 0)
	fmt.Print(canvas.PlainText())
	return nil
}

// runCrumb prints the resolved breadcrumb stack for a scroll offset,
// one entry per line, for scripting and inspecting geometry.
func runCrumb(source string) error {
	cfg, err := config.Load()
	if err != nil {
		return errors.New(config.FormatError(err))
	}
	configureFetcher(cfg)

	store := openStore(cfg)
	defer store.Close()

	doc, _, err := loadQuiet(source, store)
	if err != nil {
		return err
	}

	width := renderWidth()
	renderer := document.NewRenderer(render.NewCanvas(width, 1), cfg.Display.MaxWidth)

	var geom crumb.Geometry
	switch flagView {
	case viewPreview:
		geom = renderer.Geometry(doc)
	case viewSource:
		geom = renderer.SourceGeometry(doc, cfg.Reading.SourceWrap)
	default:
		return fmt.Errorf("unknown view %q", flagView)
	}

	stack, err := crumb.Resolve(doc.Headings, geom, flagCrumb, flagBand, cfg.Crumb())
	if err != nil {
		return err
	}
	for i, h := range stack.Headings {
		fmt.Printf("%s%s  :%d\n", strings.Repeat("  ", stack.Indents[i]), h.Text, h.Start.Line+1)
	}
	return nil
}

// run starts the interactive reader.
func run(initial string) error {
	cfg, err := config.Load()
	if err != nil {
		return errors.New(config.FormatError(err))
	}
	theme.Set(cfg.Display.Theme)
	configureFetcher(cfg)
	crumbCfg := cfg.Crumb()

	store := openStore(cfg)
	defer store.Close()

	books, err := bookmarks.Load()
	if err != nil {
		books = &bookmarks.Store{}
	}

	// When the document arrives on stdin the keyboard has to come
	// from the controlling terminal instead.
	initialTarget := openbox.Parse(initial)
	ttyIn := os.Stdin
	var stdinDoc *markup.Document
	if initialTarget.Kind == openbox.KindStdin {
		body, err := io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("reading stdin: %w", err)
		}
		stdinDoc, err = markup.Parse(body, markup.Detect("", "", body), "")
		if err != nil {
			return err
		}
		tty, err := os.Open("/dev/tty")
		if err != nil {
			return fmt.Errorf("reading keys needs a terminal: %w", err)
		}
		defer tty.Close()
		ttyIn = tty
	}

	width, height, err := render.TerminalSize()
	if err != nil {
		return fmt.Errorf("getting terminal size: %w", err)
	}

	term, err := render.NewTerminal(ttyIn)
	if err != nil {
		return err
	}

	render.EnterAltScreen(os.Stdout)
	defer render.ExitAltScreen(os.Stdout)

	if err := term.EnterRawMode(); err != nil {
		return fmt.Errorf("entering raw mode: %w", err)
	}
	defer term.RestoreMode()

	canvas := render.NewCanvas(width, height)
	renderer := document.NewRenderer(canvas, cfg.Display.MaxWidth)

	// Per-buffer navigation stacks. The live document and position sit
	// in plain variables and are synced into the slice on switches.
	type buffer struct {
		history []session.ViewState
		forward []session.ViewState
		current session.ViewState
		doc     *markup.Document
	}

	var (
		buffers []*buffer
		bufIdx  int

		doc     *markup.Document
		source  string
		view    = viewPreview
		scrollY int

		bandOn    = cfg.Reading.Band
		statusMsg string

		curStack crumb.Stack
		curBandH int

		searchQuery   string
		searchHits    []int
		searchHistory []string
		openHistory   []string

		promptAction string // "open", "find" or "goto" while a prompt is up
		promptEd     = prompt.New()
		promptHist   int

		bandJumpMode  bool
		linkMode      bool
		outlineMode   bool
		bookmarkMode  bool
		bufferMode    bool
		themeMode     bool
		helpMode      bool
		deletePending bool
		gPending      bool

		labelInput    string
		labels        []string
		links         []document.Link
		outlineQuery  string
		outlineSel    int
		outlineOffset int
	)

	welcome := func() *markup.Document {
		return markup.ParseMarkdown(welcomeSource(books))
	}

	geomFor := func() crumb.Geometry {
		if view == viewSource {
			return renderer.SourceGeometry(doc, cfg.Reading.SourceWrap)
		}
		return renderer.Geometry(doc)
	}

	contentHeight := func() int {
		if view == viewSource {
			return renderer.SourceHeight(doc, cfg.Reading.SourceWrap)
		}
		return renderer.ContentHeight(doc)
	}

	maxScroll := func() int {
		m := contentHeight() - (height - 1)
		if m < 0 {
			m = 0
		}
		return m
	}

	clampScroll := func() {
		if m := maxScroll(); scrollY > m {
			scrollY = m
		}
		if scrollY < 0 {
			scrollY = 0
		}
	}

	// resolveStack recomputes the breadcrumb band. The band consumes
	// rows, which moves the passed-heading threshold, which can change
	// the stack, so it iterates until the height settles.
	resolveStack := func() (crumb.Stack, int) {
		if !bandOn {
			return crumb.Stack{}, 0
		}
		geom := geomFor()
		var stack crumb.Stack
		bandH := 0
		for i := 0; i < 4; i++ {
			st, err := crumb.Resolve(doc.Headings, geom, scrollY, bandH, crumbCfg)
			if err != nil {
				return crumb.Stack{}, 0
			}
			stack = st
			h := document.BandHeight(st)
			if h == bandH {
				break
			}
			bandH = h
		}
		return stack, document.BandHeight(stack)
	}

	drawStatusBar := func() {
		th := theme.Current
		y := height - 1
		canvas.DrawHLine(0, y, width, ' ', th.DimStyle())

		left := source
		if view == viewSource {
			left += "  [src]"
		}
		if statusMsg != "" {
			left = statusMsg
		}
		canvas.WriteString(1, y, render.Truncate(left, width-16), th.DimStyle())

		pct := 100
		if m := maxScroll(); m > 0 {
			pct = scrollY * 100 / m
		}
		right := fmt.Sprintf("%d%%", pct)
		if len(buffers) > 1 {
			right = fmt.Sprintf("[%d/%d]  %s", bufIdx+1, len(buffers), right)
		}
		canvas.WriteString(width-len(right)-1, y, right, th.DimStyle())
	}

	drawScrollbar := func() {
		ch := contentHeight()
		scrollHeight := height - 1
		if ch <= scrollHeight {
			return
		}
		th := theme.Current
		for y := 0; y < scrollHeight; y++ {
			canvas.Set(width-1, y, '│', th.DimStyle())
		}
		thumbHeight := scrollHeight * scrollHeight / ch
		if thumbHeight < 1 {
			thumbHeight = 1
		}
		thumbPos := 0
		if m := maxScroll(); m > 0 {
			thumbPos = scrollY * (scrollHeight - thumbHeight) / m
		}
		for y := thumbPos; y < thumbPos+thumbHeight && y < scrollHeight; y++ {
			canvas.Set(width-1, y, '█', th.BaseStyle())
		}
	}

	// drawOverlay dims the page and draws a centered box, returning
	// the inner origin and width for the caller to fill with rows.
	drawOverlay := func(title string, rows int) (int, int, int) {
		th := theme.Current
		canvas.DimAll()
		w := width * 2 / 3
		if w > 70 {
			w = 70
		}
		if w < 30 && width > 34 {
			w = width - 4
		}
		h := rows + 4
		if h > height-2 {
			h = height - 2
		}
		x := (width - w) / 2
		y := (height - h) / 2
		base := th.BaseStyle()
		titleStyle := base
		titleStyle.Bold = true
		canvas.DrawBoxWithTitle(x, y, w, h, title, render.DoubleBox, base, titleStyle)
		return x + 2, y + 2, w - 4
	}

	drawLabel := func(x, y int, label string) int {
		th := theme.Current
		style := th.LabelStyle()
		typedStyle := th.LabelTypedStyle()
		if labelInput != "" && !strings.HasPrefix(label, labelInput) {
			style = th.LabelDimStyle()
			typedStyle = style
		}
		for i, r := range label {
			if i < len(labelInput) {
				canvas.Set(x+i, y, r, typedStyle)
			} else {
				canvas.Set(x+i, y, r, style)
			}
		}
		return len(label)
	}

	drawFooterHint := func(x, y, w int, hint string) {
		canvas.WriteString(x, y, render.Truncate(hint, w), theme.Current.DimStyle())
	}

	outlineMatches := func() []int {
		idx := make([]int, 0, len(doc.Headings))
		for i, h := range doc.Headings {
			if outlineQuery == "" || fuzzyMatch(outlineQuery, h.Text) {
				idx = append(idx, i)
			}
		}
		return idx
	}

	drawOutline := func() {
		matches := outlineMatches()
		hs := make([]crumb.PositionedHeading, len(doc.Headings))
		for i, h := range doc.Headings {
			hs[i] = crumb.PositionedHeading{Heading: h}
		}
		depths := crumb.Indents(hs)

		if outlineSel > len(matches)-1 {
			outlineSel = len(matches) - 1
		}
		if outlineSel < 0 {
			outlineSel = 0
		}
		visible := len(matches)
		if max := height - 8; visible > max {
			visible = max
		}
		if visible < 1 {
			visible = 1
		}
		x, y, w := drawOverlay("Outline", visible+1)
		if outlineSel < outlineOffset {
			outlineOffset = outlineSel
		}
		if outlineSel >= outlineOffset+visible {
			outlineOffset = outlineSel - visible + 1
		}
		if outlineOffset > len(matches)-visible {
			outlineOffset = len(matches) - visible
		}
		if outlineOffset < 0 {
			outlineOffset = 0
		}
		th := theme.Current
		if len(matches) == 0 {
			canvas.WriteString(x, y, "no matches", th.DimStyle())
		}
		for i := 0; i < visible && outlineOffset+i < len(matches); i++ {
			idx := matches[outlineOffset+i]
			h := doc.Headings[idx]
			style := th.BaseStyle()
			if outlineOffset+i == outlineSel {
				style.Reverse = true
			}
			indent := strings.Repeat("  ", depths[idx])
			line := fmt.Sprintf(":%d", h.Start.Line+1)
			text := render.Truncate(indent+h.Text, w-len(line)-2)
			canvas.WriteString(x, y+i, text, style)
			canvas.WriteString(x+w-len(line), y+i, line, th.DimStyle())
		}
		hint := "type to filter · arrows move · enter jumps · esc closes"
		if outlineQuery != "" {
			hint = fmt.Sprintf("filter: %s · %d of %d", outlineQuery, len(matches), len(doc.Headings))
		}
		drawFooterHint(x, y+visible+1, w, hint)
	}

	drawBookmarks := func() {
		visible := books.Len()
		if max := height - 8; visible > max {
			visible = max
		}
		x, y, w := drawOverlay("Bookmarks", visible+1)
		th := theme.Current
		for i := 0; i < visible; i++ {
			bm := books.Bookmarks[i]
			lx := x
			if i < len(labels) {
				lx += drawLabel(x, y+i, labels[i]) + 1
			}
			title := bm.Title
			if title == "" {
				title = bm.Source
			}
			canvas.WriteString(lx, y+i, render.Truncate(title, w/2), th.BaseStyle())
			src := render.Truncate(bm.Source, w-(lx-x)-w/2-2)
			canvas.WriteString(x+w-len(src), y+i, src, th.DimStyle())
		}
		hint := "type label to open · D then label deletes · esc closes"
		if deletePending {
			hint = "delete which? type its label · esc cancels"
		}
		drawFooterHint(x, y+visible+1, w, hint)
	}

	drawBuffers := func() {
		x, y, w := drawOverlay("Buffers", len(buffers)+1)
		th := theme.Current
		for i, b := range buffers {
			st := b.current
			if i == bufIdx {
				st = session.ViewState{Source: source, Scroll: scrollY, View: view}
			}
			lx := x
			if i < len(labels) {
				lx += drawLabel(x, y+i, labels[i]) + 1
			}
			marker := "  "
			if i == bufIdx {
				marker = "▸ "
			}
			canvas.WriteString(lx, y+i, marker+render.Truncate(st.Source, w-(lx-x)-12), th.BaseStyle())
			canvas.WriteString(x+w-len(st.View), y+i, st.View, th.DimStyle())
		}
		drawFooterHint(x, y+len(buffers)+1, w, "type label to switch · esc closes")
	}

	drawThemes := func() {
		x, y, w := drawOverlay("Theme", len(theme.All)+1)
		th := theme.Current
		for i, t := range theme.All {
			lx := x
			if i < len(labels) {
				lx += drawLabel(x, y+i, labels[i]) + 1
			}
			marker := "  "
			if t == theme.Current {
				marker = "▸ "
			}
			style := th.BaseStyle()
			canvas.WriteString(lx, y+i, marker+t.Name, style)
		}
		drawFooterHint(x, y+len(theme.All)+1, w, "type label to apply · esc closes")
	}

	drawHelp := func() {
		kb := cfg.Keybindings
		rows := [][2]string{
			{kb.ScrollDown + "/" + kb.ScrollUp, "scroll down / up"},
			{kb.HalfPageDown + "/" + kb.HalfPageUp, "half page down / up"},
			{kb.GoTop + "/" + kb.GoBottom, "top / bottom"},
			{kb.PrevSection + "/" + kb.NextSection, "previous / next section"},
			{kb.BandJump, "jump to a band entry"},
			{kb.Outline, "outline"},
			{kb.ToggleBand, "toggle the band"},
			{kb.CrumbMode, "full trail / concise band"},
			{kb.ToggleView, "preview / source view"},
			{kb.Open, "open path, URL, #heading or :line"},
			{kb.Find + " " + kb.NextMatch + "/" + kb.PrevMatch, "find, next / previous match"},
			{kb.GotoLine, "go to line"},
			{kb.FollowLink, "follow a link"},
			{kb.Reload, "reload, bypassing the cache"},
			{keyName(kb.Back) + "/" + keyName(kb.Forward), "history back / forward"},
			{kb.NewBuffer + " " + kb.NextBuffer + "/" + kb.PrevBuffer, "new buffer, next / previous"},
			{keyName(kb.BufferList), "buffer list"},
			{kb.AddBookmark + "/" + keyName(kb.BookmarksList), "add bookmark / list bookmarks"},
			{kb.ToggleTheme + "/" + kb.ThemePicker, "cycle theme / theme picker"},
			{kb.EditConfig, "edit config"},
			{kb.Quit, "quit"},
		}
		x, y, w := drawOverlay("Help", len(rows)+1)
		th := theme.Current
		for i, row := range rows {
			keyStyle := th.BaseStyle()
			keyStyle.Bold = true
			canvas.WriteString(x, y+i, row[0], keyStyle)
			canvas.WriteString(x+10, y+i, render.Truncate(row[1], w-10), th.BaseStyle())
		}
		drawFooterHint(x, y+len(rows)+1, w, "any key closes")
	}

	drawPrompt := func() {
		th := theme.Current
		y := height - 1
		style := th.BaseStyle()
		style.Reverse = true
		canvas.DrawHLine(0, y, width, ' ', style)
		prefix := "open: "
		switch promptAction {
		case "find":
			prefix = "/"
		case "goto":
			prefix = ":"
		}
		canvas.WriteString(0, y, prefix+promptEd.Text(), style)
		// Un-reversed cell at the cursor reads as a block cursor.
		if cx := len(prefix) + promptEd.Cursor(); cx < width {
			canvas.Set(cx, y, promptEd.RuneAtCursor(), th.BaseStyle())
		}
	}

	var redraw func()
	redraw = func() {
		canvas.Clear()
		if view == viewSource {
			renderer.RenderSource(doc, scrollY, cfg.Reading.SourceWrap)
		} else {
			renderer.Render(doc, scrollY)
		}
		drawScrollbar()
		drawStatusBar()

		curStack, curBandH = resolveStack()
		if curBandH > 0 {
			if bandJumpMode {
				document.DrawBand(canvas, curStack, theme.Current, labels, labelInput)
			} else {
				document.DrawBand(canvas, curStack, theme.Current, nil, "")
			}
		}

		if linkMode {
			renderer.RenderLinkLabels(labels)
		}
		if promptAction != "" {
			drawPrompt()
		}
		if outlineMode {
			drawOutline()
		}
		if bookmarkMode {
			drawBookmarks()
		}
		if bufferMode {
			drawBuffers()
		}
		if themeMode {
			drawThemes()
		}
		if helpMode {
			drawHelp()
		}

		canvas.RenderTo(os.Stdout)
	}

	scrollTo := func(target int) {
		if target < 0 {
			target = 0
		}
		if m := maxScroll(); target > m {
			target = m
		}
		if target == scrollY {
			// Still redraw: callers rely on this to clear overlays.
			redraw()
			return
		}
		if crumbCfg.ScrollBehavior != crumb.BehaviorSmooth {
			scrollY = target
			redraw()
			return
		}
		// Ease toward the target so the band visibly tracks the move.
		for scrollY != target {
			step := (target - scrollY) / 4
			if step == 0 {
				if target > scrollY {
					step = 1
				} else {
					step = -1
				}
			}
			scrollY += step
			redraw()
			time.Sleep(12 * time.Millisecond)
		}
	}

	positioned := func() []crumb.PositionedHeading {
		return crumb.ResolveOffsets(doc.Headings, geomFor())
	}

	nextSection := func() {
		threshold := scrollY + curBandH
		for _, h := range positioned() {
			if h.Offset > threshold {
				scrollTo(document.JumpTarget(h, curBandH))
				return
			}
		}
	}

	prevSection := func() {
		var target *crumb.PositionedHeading
		hs := positioned()
		for i := range hs {
			if document.JumpTarget(hs[i], curBandH) < scrollY {
				target = &hs[i]
			} else {
				break
			}
		}
		if target != nil {
			scrollTo(document.JumpTarget(*target, curBandH))
		}
	}

	// lineToRow maps a 0-based source line to a row in the current
	// view, so line-addressed jumps land in the right place in both.
	lineToRow := func(line int) int {
		if view == viewSource {
			geom := renderer.SourceGeometry(doc, cfg.Reading.SourceWrap)
			if row, ok := geom.RowForLine(line); ok {
				return row
			}
			return 0
		}
		geom := renderer.Geometry(doc)
		row := 0
		sum := 0
		for i, blk := range geom.Blocks {
			if i < len(doc.Blocks) && doc.Blocks[i].StartLine > line {
				break
			}
			row = sum
			sum += blk.Height
		}
		return row
	}

	topSourceLine := func() int {
		geom := renderer.SourceGeometry(doc, cfg.Reading.SourceWrap)
		line := 0
		for i := range doc.Source {
			row, ok := geom.RowForLine(i)
			if !ok || row > scrollY {
				break
			}
			line = i
		}
		return line
	}

	toggleView := func() {
		if view == viewPreview {
			geom := renderer.Geometry(doc)
			sum := 0
			line := 0
			for i, blk := range geom.Blocks {
				if sum > scrollY {
					break
				}
				if i < len(doc.Blocks) {
					line = doc.Blocks[i].StartLine
				}
				sum += blk.Height
			}
			view = viewSource
			scrollY = lineToRow(line)
		} else {
			line := topSourceLine()
			view = viewPreview
			scrollY = lineToRow(line)
		}
		clampScroll()
		redraw()
	}

	runSearch := func(query string) {
		searchQuery = query
		searchHits = searchHits[:0]
		q := strings.ToLower(query)
		for i, line := range doc.Source {
			if strings.Contains(strings.ToLower(line), q) {
				searchHits = append(searchHits, i)
			}
		}
	}

	jumpHit := func(idx int) {
		target := lineToRow(searchHits[idx]) - curBandH
		if target < 0 {
			target = 0
		}
		statusMsg = fmt.Sprintf("match %d/%d for %q", idx+1, len(searchHits), searchQuery)
		scrollTo(target)
	}

	nextHit := func(dir int) {
		if len(searchHits) == 0 {
			statusMsg = "no matches"
			redraw()
			return
		}
		cur := scrollY + curBandH
		if dir > 0 {
			for i, line := range searchHits {
				if lineToRow(line) > cur {
					jumpHit(i)
					return
				}
			}
			jumpHit(0)
		} else {
			for i := len(searchHits) - 1; i >= 0; i-- {
				if lineToRow(searchHits[i]) < cur {
					jumpHit(i)
					return
				}
			}
			jumpHit(len(searchHits) - 1)
		}
	}

	findHeading := func(query string) int {
		q := strings.ToLower(query)
		for i, h := range doc.Headings {
			if strings.Contains(strings.ToLower(h.Text), q) {
				return i
			}
		}
		return -1
	}

	jumpHeading := func(idx int) {
		hs := positioned()
		if idx < 0 || idx >= len(hs) {
			return
		}
		scrollTo(document.JumpTarget(hs[idx], curBandH))
	}

	loadDoc := func(target openbox.Target, bypass bool) (*markup.Document, string, error) {
		switch target.Kind {
		case openbox.KindFile:
			d, err := loadFile(target.Path)
			return d, target.Path, err
		case openbox.KindURL:
			page, err := fetchWithSpinner(canvas, target.URL, func() (*cache.Page, error) {
				return fetchPage(target.URL, store, bypass)
			})
			if err != nil {
				return nil, "", err
			}
			d, err := parsePage(target.URL, page)
			return d, target.URL, err
		}
		return nil, "", fmt.Errorf("nothing to open")
	}

	resetDocState := func() {
		searchQuery = ""
		searchHits = nil
		clampScroll()
	}

	navigateTo := func(target openbox.Target, bypass bool) {
		d, src, err := loadDoc(target, bypass)
		if err != nil {
			statusMsg = fmt.Sprintf("error: %v", err)
			redraw()
			return
		}
		b := buffers[bufIdx]
		b.history = append(b.history, session.ViewState{Source: source, Scroll: scrollY, View: view})
		b.forward = nil
		doc, source, scrollY = d, src, 0
		statusMsg = ""
		resetDocState()
		redraw()
	}

	loadState := func(st session.ViewState) (*markup.Document, error) {
		if st.Source == welcomePage {
			return welcome(), nil
		}
		d, _, err := loadDoc(openbox.Parse(st.Source), false)
		return d, err
	}

	applyState := func(st session.ViewState) error {
		d, err := loadState(st)
		if err != nil {
			return err
		}
		doc = d
		source = st.Source
		scrollY = st.Scroll
		view = viewPreview
		if st.View == viewSource {
			view = viewSource
		}
		resetDocState()
		return nil
	}

	goBack := func() {
		b := buffers[bufIdx]
		if len(b.history) == 0 {
			statusMsg = "start of history"
			redraw()
			return
		}
		st := b.history[len(b.history)-1]
		b.history = b.history[:len(b.history)-1]
		b.forward = append(b.forward, session.ViewState{Source: source, Scroll: scrollY, View: view})
		if err := applyState(st); err != nil {
			statusMsg = fmt.Sprintf("error: %v", err)
		}
		redraw()
	}

	goForward := func() {
		b := buffers[bufIdx]
		if len(b.forward) == 0 {
			statusMsg = "end of history"
			redraw()
			return
		}
		st := b.forward[len(b.forward)-1]
		b.forward = b.forward[:len(b.forward)-1]
		b.history = append(b.history, session.ViewState{Source: source, Scroll: scrollY, View: view})
		if err := applyState(st); err != nil {
			statusMsg = fmt.Sprintf("error: %v", err)
		}
		redraw()
	}

	syncBuf := func() {
		b := buffers[bufIdx]
		b.current = session.ViewState{Source: source, Scroll: scrollY, View: view}
		b.doc = doc
	}

	switchBuffer := func(idx int) {
		if idx == bufIdx || idx < 0 || idx >= len(buffers) {
			return
		}
		syncBuf()
		bufIdx = idx
		b := buffers[bufIdx]
		if b.doc != nil {
			doc = b.doc
			source = b.current.Source
			scrollY = b.current.Scroll
			view = b.current.View
			if view == "" {
				view = viewPreview
			}
			resetDocState()
		} else if err := applyState(b.current); err != nil {
			statusMsg = fmt.Sprintf("error: %v", err)
			doc = welcome()
			source = welcomePage
			scrollY = 0
			view = viewPreview
			resetDocState()
		}
		redraw()
	}

	newBuffer := func() {
		syncBuf()
		buffers = append(buffers, &buffer{})
		bufIdx = len(buffers) - 1
		doc = welcome()
		source = welcomePage
		scrollY = 0
		view = viewPreview
		resetDocState()
		syncBuf()
		redraw()
	}

	addBookmark := func() {
		if source == welcomePage || source == "stdin" {
			statusMsg = "nothing to bookmark here"
			redraw()
			return
		}
		var path []string
		for _, h := range curStack.Headings {
			path = append(path, h.Text)
		}
		title := doc.Title
		if title == "" {
			title = source
		}
		if !books.Add(source, title, path, scrollY) {
			statusMsg = "already bookmarked"
		} else if err := books.Save(); err != nil {
			statusMsg = fmt.Sprintf("error: %v", err)
		} else {
			statusMsg = "bookmarked"
		}
		redraw()
	}

	openBookmark := func(idx int) {
		if idx < 0 || idx >= books.Len() {
			return
		}
		bm := books.Bookmarks[idx]
		navigateTo(openbox.Parse(bm.Source), false)
		if source == bm.Source && bm.Scroll > 0 {
			scrollY = bm.Scroll
			clampScroll()
			redraw()
		}
	}

	deleteBookmark := func(idx int) {
		if !books.Remove(idx) {
			return
		}
		if err := books.Save(); err != nil {
			statusMsg = fmt.Sprintf("error: %v", err)
		} else {
			statusMsg = "bookmark deleted"
		}
	}

	followLink := func(idx int) {
		if idx < 0 || idx >= len(links) {
			return
		}
		href := resolveHref(source, links[idx].Href)
		if href == "" {
			statusMsg = "cannot resolve link"
			redraw()
			return
		}
		if strings.HasPrefix(href, "#") {
			if i := findHeading(strings.TrimPrefix(href, "#")); i >= 0 {
				jumpHeading(i)
			} else {
				statusMsg = "no matching heading"
				redraw()
			}
			return
		}
		navigateTo(openbox.Parse(href), false)
	}

	bandJump := func(idx int) {
		if idx < 0 || idx >= len(curStack.Headings) {
			return
		}
		scrollTo(document.JumpTarget(curStack.Headings[idx], curBandH))
	}

	reload := func() {
		if source == welcomePage {
			doc = welcome()
			resetDocState()
			redraw()
			return
		}
		if source == "stdin" {
			statusMsg = "stdin can only be read once"
			redraw()
			return
		}
		d, src, err := loadDoc(openbox.Parse(source), true)
		if err != nil {
			statusMsg = fmt.Sprintf("error: %v", err)
			redraw()
			return
		}
		doc, source = d, src
		resetDocState()
		statusMsg = "reloaded"
		redraw()
	}

	editConfig := func() {
		path, err := config.Path()
		if err != nil {
			statusMsg = fmt.Sprintf("error: %v", err)
			redraw()
			return
		}
		if _, err := os.Stat(path); os.IsNotExist(err) {
			os.MkdirAll(filepath.Dir(path), 0755)
			os.WriteFile(path, []byte(config.DefaultYAML()), 0644)
		}
		editor := os.Getenv("EDITOR")
		if editor == "" {
			editor = "vi"
		}

		term.RestoreMode()
		render.ExitAltScreen(os.Stdout)

		cmd := exec.Command(editor, path)
		cmd.Stdin = ttyIn
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr
		runErr := cmd.Run()

		render.EnterAltScreen(os.Stdout)
		term.EnterRawMode()

		if runErr != nil {
			statusMsg = fmt.Sprintf("editor: %v", runErr)
			redraw()
			return
		}
		if newCfg, err := config.Load(); err != nil {
			statusMsg = "config has errors, keeping the old one"
		} else {
			cfg = newCfg
			crumbCfg = cfg.Crumb()
			theme.Set(cfg.Display.Theme)
			configureFetcher(cfg)
			renderer = document.NewRenderer(canvas, cfg.Display.MaxWidth)
			statusMsg = "config reloaded"
		}
		clampScroll()
		redraw()
	}

	promptHistory := func() []string {
		if promptAction == "find" {
			return searchHistory
		}
		return openHistory
	}

	commitPrompt := func(action, text string) {
		switch action {
		case "open":
			if text == "" {
				redraw()
				return
			}
			openHistory = appendHistory(openHistory, text)
			target := openbox.Parse(text)
			switch target.Kind {
			case openbox.KindLine:
				row := lineToRow(target.Line - 1)
				if row < curBandH {
					scrollTo(0)
				} else {
					scrollTo(row - curBandH)
				}
			case openbox.KindHeading:
				if i := findHeading(target.Query); i >= 0 {
					jumpHeading(i)
				} else {
					statusMsg = fmt.Sprintf("no heading matches %q", target.Query)
					redraw()
				}
			case openbox.KindStdin:
				statusMsg = "stdin can only be read at startup"
				redraw()
			case openbox.KindNone:
				redraw()
			default:
				navigateTo(target, false)
			}
		case "find":
			if text == "" {
				searchQuery = ""
				searchHits = nil
				redraw()
				return
			}
			searchHistory = appendHistory(searchHistory, text)
			runSearch(text)
			if len(searchHits) == 0 {
				statusMsg = fmt.Sprintf("no matches for %q", text)
				redraw()
				return
			}
			nextHit(1)
		case "goto":
			ln, err := strconv.Atoi(strings.TrimSpace(text))
			if err != nil || ln < 1 {
				statusMsg = fmt.Sprintf("not a line number: %s", text)
				redraw()
				return
			}
			row := lineToRow(ln - 1)
			if row < curBandH {
				scrollTo(0)
			} else {
				scrollTo(row - curBandH)
			}
		}
	}

	saveSession := func() {
		syncBuf()
		s := &session.Session{
			CurrentBufferIdx: bufIdx,
			SearchHistory:    searchHistory,
			OpenHistory:      openHistory,
		}
		for _, b := range buffers {
			if b.current.Source == "stdin" {
				continue
			}
			s.Buffers = append(s.Buffers, session.Buffer{
				History: b.history,
				Current: b.current,
				Forward: b.forward,
			})
		}
		if s.CurrentBufferIdx >= len(s.Buffers) {
			s.CurrentBufferIdx = 0
		}
		session.Save(s)
	}

	// Restore the previous session when asked, or by default when
	// starting without a source.
	restored := false
	if flagRestore || (initial == "" && cfg.Session.RestoreSession) {
		if sess, err := session.Load(); err == nil && len(sess.Buffers) > 0 {
			for _, sb := range sess.Buffers {
				buffers = append(buffers, &buffer{
					history: sb.History,
					forward: sb.Forward,
					current: sb.Current,
				})
			}
			bufIdx = sess.CurrentBufferIdx
			if bufIdx < 0 || bufIdx >= len(buffers) {
				bufIdx = 0
			}
			searchHistory = sess.SearchHistory
			openHistory = sess.OpenHistory
			restored = true
		}
	}
	if len(buffers) == 0 {
		buffers = []*buffer{{}}
		bufIdx = 0
	}

	switch {
	case stdinDoc != nil:
		if restored {
			buffers = append(buffers, &buffer{})
			bufIdx = len(buffers) - 1
		}
		doc = stdinDoc
		source = "stdin"
	case initial != "":
		if restored {
			buffers = append(buffers, &buffer{})
			bufIdx = len(buffers) - 1
		}
		d, src, err := loadDoc(initialTarget, flagNoCache)
		if err != nil {
			return err
		}
		doc, source = d, src
	case restored:
		if err := applyState(buffers[bufIdx].current); err != nil {
			doc = welcome()
			source = welcomePage
		}
	default:
		doc = welcome()
		source = welcomePage
	}
	syncBuf()
	clampScroll()
	redraw()

	resize := make(chan os.Signal, 1)
	signal.Notify(resize, syscall.SIGWINCH)
	go func() {
		for range resize {
			w, h, err := render.TerminalSize()
			if err != nil || (w == width && h == height) {
				continue
			}
			width, height = w, h
			canvas = render.NewCanvas(width, height)
			renderer = document.NewRenderer(canvas, cfg.Display.MaxWidth)
			clampScroll()
			redraw()
		}
	}()

	buf := make([]byte, 3)
	for {
		n, _ := ttyIn.Read(buf)
		if n == 0 {
			continue
		}
		k := buf[0]

		if promptAction != "" {
			switch {
			case k == 27 && n == 1:
				promptAction = ""
				promptEd.Clear()
				redraw()
			case k == 27 && n >= 3 && buf[1] == 91 && buf[2] == 'A':
				hist := promptHistory()
				if promptHist < len(hist)-1 {
					promptHist++
					promptEd.Set(hist[len(hist)-1-promptHist])
					redraw()
				}
			case k == 27 && n >= 3 && buf[1] == 91 && buf[2] == 'B':
				hist := promptHistory()
				if promptHist > 0 {
					promptHist--
					promptEd.Set(hist[len(hist)-1-promptHist])
				} else if promptHist == 0 {
					promptHist = -1
					promptEd.Clear()
				}
				redraw()
			case k == 27 && n >= 3 && buf[1] == 91 && buf[2] == 'C':
				promptEd.Right()
				redraw()
			case k == 27 && n >= 3 && buf[1] == 91 && buf[2] == 'D':
				promptEd.Left()
				redraw()
			case k == 27 && n >= 3 && buf[1] == 91 && buf[2] == '3': // delete key
				promptEd.Delete()
				redraw()
			case k == 13:
				action := promptAction
				text := promptEd.Text()
				promptAction = ""
				promptEd.Clear()
				commitPrompt(action, text)
			case k == 127 || k == 8:
				promptEd.Backspace()
				redraw()
			case k == 1: // ctrl-a
				promptEd.Home()
				redraw()
			case k == 5: // ctrl-e
				promptEd.End()
				redraw()
			case k == 11: // ctrl-k
				promptEd.KillToEnd()
				redraw()
			case k == 21: // ctrl-u
				promptEd.KillToStart()
				redraw()
			case k == 23: // ctrl-w
				promptEd.DeleteWordBack()
				redraw()
			case k >= 32 && k < 127:
				for _, c := range buf[:n] {
					if c >= 32 && c < 127 {
						promptEd.Insert(rune(c))
					}
				}
				redraw()
			}
			continue
		}

		if bandJumpMode {
			switch {
			case k == 27 && n == 1:
				bandJumpMode = false
				labelInput = ""
				redraw()
			case k >= 'a' && k <= 'z':
				labelInput += string(rune(k))
				if idx := matchLabel(labels, labelInput); idx >= 0 {
					bandJumpMode = false
					labelInput = ""
					bandJump(idx)
				} else if !labelPrefix(labels, labelInput) {
					bandJumpMode = false
					labelInput = ""
					redraw()
				} else {
					redraw()
				}
			}
			continue
		}

		if linkMode {
			switch {
			case k == 27 && n == 1:
				linkMode = false
				labelInput = ""
				statusMsg = ""
				redraw()
			case k >= 'a' && k <= 'z':
				labelInput += string(rune(k))
				if idx := matchLabel(labels, labelInput); idx >= 0 {
					linkMode = false
					labelInput = ""
					statusMsg = ""
					followLink(idx)
				} else if !labelPrefix(labels, labelInput) {
					linkMode = false
					labelInput = ""
					statusMsg = ""
					redraw()
				} else {
					statusMsg = "follow: " + labelInput
					redraw()
				}
			}
			continue
		}

		if outlineMode {
			switch {
			case k == 27 && n == 1:
				if outlineQuery != "" {
					outlineQuery = ""
					outlineSel = 0
					outlineOffset = 0
				} else {
					outlineMode = false
				}
				redraw()
			case k == 27 && n >= 3 && buf[1] == 91 && buf[2] == 'A':
				outlineSel--
				redraw()
			case k == 27 && n >= 3 && buf[1] == 91 && buf[2] == 'B':
				outlineSel++
				redraw()
			case k == 13:
				matches := outlineMatches()
				outlineMode = false
				if outlineSel >= 0 && outlineSel < len(matches) {
					jumpHeading(matches[outlineSel])
				} else {
					redraw()
				}
			case k == 127 || k == 8:
				if outlineQuery != "" {
					outlineQuery = outlineQuery[:len(outlineQuery)-1]
					outlineSel = 0
				}
				redraw()
			case k >= 32 && k < 127:
				outlineQuery += string(rune(k))
				outlineSel = 0
				redraw()
			}
			continue
		}

		if bookmarkMode {
			switch {
			case k == 27 && n == 1:
				if deletePending {
					deletePending = false
				} else {
					bookmarkMode = false
				}
				labelInput = ""
				redraw()
			case k == 'D' && !deletePending:
				deletePending = true
				labelInput = ""
				redraw()
			case k >= 'a' && k <= 'z':
				labelInput += string(rune(k))
				if idx := matchLabel(labels, labelInput); idx >= 0 {
					labelInput = ""
					if deletePending {
						deletePending = false
						deleteBookmark(idx)
						labels = document.GenerateLabels(books.Len())
						if books.Len() == 0 {
							bookmarkMode = false
						}
						redraw()
					} else {
						bookmarkMode = false
						openBookmark(idx)
					}
				} else if !labelPrefix(labels, labelInput) {
					labelInput = ""
					redraw()
				} else {
					redraw()
				}
			}
			continue
		}

		if bufferMode {
			switch {
			case k == 27 && n == 1:
				bufferMode = false
				labelInput = ""
				redraw()
			case k >= 'a' && k <= 'z':
				labelInput += string(rune(k))
				if idx := matchLabel(labels, labelInput); idx >= 0 {
					bufferMode = false
					labelInput = ""
					switchBuffer(idx)
					redraw()
				} else if !labelPrefix(labels, labelInput) {
					bufferMode = false
					labelInput = ""
					redraw()
				} else {
					redraw()
				}
			}
			continue
		}

		if themeMode {
			switch {
			case k == 27 && n == 1:
				themeMode = false
				labelInput = ""
				redraw()
			case k >= 'a' && k <= 'z':
				labelInput += string(rune(k))
				if idx := matchLabel(labels, labelInput); idx >= 0 {
					themeMode = false
					labelInput = ""
					if idx < len(theme.All) {
						theme.Set(theme.All[idx].Name)
						statusMsg = "theme: " + theme.Current.Name
					}
					redraw()
				} else if !labelPrefix(labels, labelInput) {
					themeMode = false
					labelInput = ""
					redraw()
				} else {
					redraw()
				}
			}
			continue
		}

		if helpMode {
			helpMode = false
			redraw()
			continue
		}

		kb := cfg.Keybindings

		if gPending {
			gPending = false
			switch {
			case config.MatchWithPrefix("g", k, kb.GoTop):
				scrollTo(0)
			case config.MatchWithPrefix("g", k, kb.NextBuffer):
				switchBuffer((bufIdx + 1) % len(buffers))
			case config.MatchWithPrefix("g", k, kb.PrevBuffer):
				switchBuffer((bufIdx - 1 + len(buffers)) % len(buffers))
			default:
				redraw()
			}
			continue
		}

		// Arrow and page keys arrive as escape sequences.
		if k == 27 && n >= 3 && buf[1] == 91 {
			switch buf[2] {
			case 'A':
				scrollY--
				clampScroll()
				redraw()
			case 'B':
				scrollY++
				clampScroll()
				redraw()
			case '5':
				scrollTo(scrollY - (height - 2))
			case '6':
				scrollTo(scrollY + (height - 2))
			}
			continue
		}
		if k == 27 && n == 1 {
			statusMsg = ""
			redraw()
			continue
		}

		statusMsg = ""

		switch {
		case config.MatchSingle(k, kb.Quit):
			saveSession()
			return nil

		case config.MatchSingle(k, kb.ScrollDown):
			scrollY++
			clampScroll()
			redraw()

		case config.MatchSingle(k, kb.ScrollUp):
			scrollY--
			clampScroll()
			redraw()

		case config.MatchSingle(k, kb.HalfPageDown):
			scrollTo(scrollY + (height-1)/2)

		case config.MatchSingle(k, kb.HalfPageUp):
			scrollTo(scrollY - (height-1)/2)

		case config.MatchSingle(k, kb.GoBottom):
			scrollTo(maxScroll())

		case config.StartsBinding(k, kb.GoTop),
			config.StartsBinding(k, kb.NextBuffer),
			config.StartsBinding(k, kb.PrevBuffer):
			gPending = true

		case config.MatchSingle(k, kb.PrevSection):
			prevSection()

		case config.MatchSingle(k, kb.NextSection):
			nextSection()

		case config.MatchSingle(k, kb.Open):
			promptAction = "open"
			promptEd.Clear()
			promptHist = -1
			redraw()

		case config.MatchSingle(k, kb.Find):
			promptAction = "find"
			promptEd.Clear()
			promptHist = -1
			redraw()

		case config.MatchSingle(k, kb.NextMatch):
			nextHit(1)

		case config.MatchSingle(k, kb.PrevMatch):
			nextHit(-1)

		case config.MatchSingle(k, kb.GotoLine):
			promptAction = "goto"
			promptEd.Clear()
			promptHist = -1
			redraw()

		case config.MatchSingle(k, kb.FollowLink):
			if view != viewPreview {
				statusMsg = "links work in the preview view"
				redraw()
				break
			}
			links = renderer.Links()
			if len(links) == 0 {
				statusMsg = "no links on screen"
				redraw()
				break
			}
			labels = document.GenerateLabels(len(links))
			labelInput = ""
			linkMode = true
			redraw()

		case config.MatchSingle(k, kb.Reload):
			reload()

		case config.MatchSingle(k, kb.EditConfig):
			editConfig()

		case config.MatchSingle(k, kb.ToggleBand):
			bandOn = !bandOn
			if bandOn {
				statusMsg = "band on"
			} else {
				statusMsg = "band off"
			}
			redraw()

		case config.MatchSingle(k, kb.BandJump):
			if curBandH == 0 {
				statusMsg = "band is empty"
				redraw()
				break
			}
			labels = document.GenerateLabels(len(curStack.Headings))
			labelInput = ""
			bandJumpMode = true
			redraw()

		case config.MatchSingle(k, kb.CrumbMode):
			if crumbCfg.Mode == crumb.ModeConcise {
				crumbCfg.Mode = crumb.ModeDefault
				statusMsg = "band: full trail"
			} else {
				crumbCfg.Mode = crumb.ModeConcise
				statusMsg = "band: concise"
			}
			redraw()

		case config.MatchSingle(k, kb.ToggleView):
			toggleView()

		case config.MatchSingle(k, kb.Outline):
			if len(doc.Headings) == 0 {
				statusMsg = "no headings"
				redraw()
				break
			}
			outlineQuery = ""
			outlineSel = 0
			outlineOffset = 0
			outlineMode = true
			redraw()

		case config.MatchSingle(k, kb.ToggleTheme):
			theme.Toggle()
			statusMsg = "theme: " + theme.Current.Name
			redraw()

		case config.MatchSingle(k, kb.ThemePicker):
			labels = document.GenerateLabels(len(theme.All))
			labelInput = ""
			themeMode = true
			redraw()

		case config.MatchSingle(k, kb.Help):
			helpMode = true
			redraw()

		case config.MatchSingle(k, kb.Back):
			goBack()

		case config.MatchSingle(k, kb.Forward):
			goForward()

		case config.MatchSingle(k, kb.NewBuffer):
			newBuffer()

		case config.MatchSingle(k, kb.BufferList):
			labels = document.GenerateLabels(len(buffers))
			labelInput = ""
			bufferMode = true
			redraw()

		case config.MatchSingle(k, kb.AddBookmark):
			addBookmark()

		case config.MatchSingle(k, kb.BookmarksList):
			if books.Len() == 0 {
				statusMsg = "no bookmarks"
				redraw()
				break
			}
			labels = document.GenerateLabels(books.Len())
			labelInput = ""
			deletePending = false
			bookmarkMode = true
			redraw()
		}
	}
}

// configureFetcher pushes the fetcher section of the config into the
// fetcher package.
func configureFetcher(cfg *config.Config) {
	fetcher.Configure(fetcher.Options{
		UserAgent:       cfg.Fetcher.UserAgent,
		TimeoutSeconds:  cfg.Fetcher.TimeoutSeconds,
		BrowserFallback: cfg.Fetcher.BrowserFallback,
		ChromePath:      cfg.Fetcher.ChromePath,
	})
}

// openStore opens the page cache best-effort. A nil store is valid and
// disables caching.
func openStore(cfg *config.Config) *cache.Store {
	if cfg.Cache.Disabled || flagNoCache {
		return nil
	}
	path, err := cache.DefaultPath()
	if err != nil {
		return nil
	}
	store, err := cache.Open(path, time.Duration(cfg.Cache.TTLHours)*time.Hour)
	if err != nil {
		return nil
	}
	return store
}

// loadQuiet resolves and loads a source without any terminal UI.
func loadQuiet(source string, store *cache.Store) (*markup.Document, string, error) {
	target := openbox.Parse(source)
	switch target.Kind {
	case openbox.KindStdin:
		body, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, "", err
		}
		doc, err := markup.Parse(body, markup.Detect("", "", body), "")
		return doc, "stdin", err
	case openbox.KindFile:
		doc, err := loadFile(target.Path)
		return doc, target.Path, err
	case openbox.KindURL:
		page, err := fetchPage(target.URL, store, flagNoCache)
		if err != nil {
			return nil, "", err
		}
		doc, err := parsePage(target.URL, page)
		return doc, target.URL, err
	}
	return nil, "", fmt.Errorf("nothing to open")
}

func loadFile(path string) (*markup.Document, error) {
	body, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return markup.Parse(body, markup.Detect(path, "", body), "")
}

// fetchPage returns the cached page for a URL or fetches and caches it.
func fetchPage(rawURL string, store *cache.Store, bypass bool) (*cache.Page, error) {
	if !bypass {
		if page, ok := store.GetPage(rawURL); ok {
			return page, nil
		}
	}
	res, err := fetcher.Smart(rawURL)
	if err != nil {
		return nil, err
	}
	page := &cache.Page{
		Body:        res.Body,
		ContentType: res.ContentType,
		FinalURL:    res.FinalURL,
		UsedBrowser: res.UsedBrowser,
		FetchedAt:   time.Now(),
	}
	store.PutPage(rawURL, page)
	return page, nil
}

func parsePage(source string, page *cache.Page) (*markup.Document, error) {
	name := page.FinalURL
	if name == "" {
		name = source
	}
	return markup.Parse(page.Body, markup.Detect(name, page.ContentType, page.Body), page.FinalURL)
}

// fetchWithSpinner runs the fetch in the background while animating a
// loading box over the current canvas.
func fetchWithSpinner(canvas *render.Canvas, source string, work func() (*cache.Page, error)) (*cache.Page, error) {
	type result struct {
		page *cache.Page
		err  error
	}
	done := make(chan result, 1)
	go func() {
		page, err := work()
		done <- result{page, err}
	}()

	display := render.FetchDisplay(source)
	ticker := time.NewTicker(80 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case res := <-done:
			return res.page, res.err
		case <-ticker.C:
			display.Tick()
			display.Draw(canvas)
			canvas.RenderTo(os.Stdout)
		}
	}
}

// resolveHref makes a link target absolute relative to the current
// source, which may be a URL or a local file path. Fragment links come
// back unchanged for in-document heading jumps.
func resolveHref(base, href string) string {
	if href == "" {
		return ""
	}
	if strings.HasPrefix(href, "#") {
		return href
	}
	if u, err := neturl.Parse(href); err == nil && u.IsAbs() {
		return href
	}
	if strings.HasPrefix(base, "http://") || strings.HasPrefix(base, "https://") {
		bu, err := neturl.Parse(base)
		if err != nil {
			return ""
		}
		ref, err := neturl.Parse(href)
		if err != nil {
			return ""
		}
		return bu.ResolveReference(ref).String()
	}
	if filepath.IsAbs(href) {
		return href
	}
	return filepath.Join(filepath.Dir(base), href)
}

// welcomeSource builds the markdown for the built-in landing page.
func welcomeSource(books *bookmarks.Store) []byte {
	var b strings.Builder
	b.WriteString("# Headway\n\n")
	b.WriteString("A terminal reader that keeps your place. The band at the top of the\n")
	b.WriteString("screen shows the heading trail for whatever is under the viewport,\n")
	b.WriteString("and updates as you scroll.\n\n")
	b.WriteString("## Opening documents\n\n")
	b.WriteString("Press `o` and type a file path, a URL, `#heading` or `:line`. Piping\n")
	b.WriteString("works too: `cat notes.md | headway -`\n\n")
	if books != nil && books.Len() > 0 {
		b.WriteString("## Bookmarks\n\n")
		for _, bm := range books.Bookmarks {
			title := bm.Title
			if title == "" {
				title = bm.Source
			}
			fmt.Fprintf(&b, "- [%s](%s)\n", title, bm.Source)
		}
		b.WriteString("\n")
	}
	b.WriteString("## Keys\n\n")
	b.WriteString("Press `?` for the full list. The essentials: `j` and `k` scroll, `b`\n")
	b.WriteString("jumps by band entry, `t` opens the outline, `w` hides the band, and\n")
	b.WriteString("`q` quits.\n")
	return []byte(b.String())
}

// appendHistory appends an entry, skipping immediate repeats and
// keeping the list bounded.
func appendHistory(hist []string, entry string) []string {
	if len(hist) > 0 && hist[len(hist)-1] == entry {
		return hist
	}
	hist = append(hist, entry)
	if len(hist) > 50 {
		hist = hist[len(hist)-50:]
	}
	return hist
}

func matchLabel(labels []string, input string) int {
	for i, l := range labels {
		if l == input {
			return i
		}
	}
	return -1
}

func labelPrefix(labels []string, input string) bool {
	for _, l := range labels {
		if strings.HasPrefix(l, input) {
			return true
		}
	}
	return false
}

// fuzzyMatch reports whether every rune of query appears in s in
// order, ignoring case.
func fuzzyMatch(query, s string) bool {
	rest := strings.ToLower(s)
	for _, r := range strings.ToLower(query) {
		i := strings.IndexRune(rest, r)
		if i < 0 {
			return false
		}
		rest = rest[i+1:]
	}
	return true
}

// keyName renders a binding for display, spelling out control keys.
func keyName(s string) string {
	switch s {
	case "\t":
		return "tab"
	case "\x0f":
		return "^o"
	}
	if len(s) == 1 && s[0] < 32 {
		return "^" + string(rune(s[0]+64))
	}
	return s
}

func renderWidth() int {
	if flagWidth > 0 {
		return flagWidth
	}
	if w, _, err := render.TerminalSize(); err == nil && w > 0 {
		return w
	}
	return 100
}
