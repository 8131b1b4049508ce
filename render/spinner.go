package render

import "time"

// SpinnerStyle defines different spinner animation styles.
type SpinnerStyle int

const (
	// SpinnerBraille uses smooth braille dot animation
	SpinnerBraille SpinnerStyle = iota
	// SpinnerGlobe uses a rotating globe (box drawing)
	SpinnerGlobe
	// SpinnerWave uses a wave animation
	SpinnerWave
)

// Spinner provides animated loading indicators.
type Spinner struct {
	style    SpinnerStyle
	frame    int
	lastTick time.Time
	interval time.Duration
}

// NewSpinner creates a new spinner with the given style.
func NewSpinner(style SpinnerStyle) *Spinner {
	return &Spinner{
		style:    style,
		frame:    0,
		lastTick: time.Now(),
		interval: 80 * time.Millisecond,
	}
}

// Tick advances the spinner animation if enough time has passed.
// Returns true if the frame changed.
func (s *Spinner) Tick() bool {
	now := time.Now()
	if now.Sub(s.lastTick) >= s.interval {
		s.frame++
		s.lastTick = now
		return true
	}
	return false
}

// Reset resets the spinner to its initial state.
func (s *Spinner) Reset() {
	s.frame = 0
	s.lastTick = time.Now()
}

// Frame returns the current animation frame string.
func (s *Spinner) Frame() string {
	frames := s.frames()
	return frames[s.frame%len(frames)]
}

// Width returns the display width of the spinner.
func (s *Spinner) Width() int {
	return StringWidth(s.Frame())
}

func (s *Spinner) frames() []string {
	switch s.style {
	case SpinnerBraille:
		return []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}
	case SpinnerGlobe:
		return []string{"◐", "◓", "◑", "◒"}
	case SpinnerWave:
		return []string{
			"▁▂▃▄▅▆▇█",
			"▂▃▄▅▆▇█▇",
			"▃▄▅▆▇█▇▆",
			"▄▅▆▇█▇▆▅",
			"▅▆▇█▇▆▅▄",
			"▆▇█▇▆▅▄▃",
			"▇█▇▆▅▄▃▂",
			"█▇▆▅▄▃▂▁",
			"▇▆▅▄▃▂▁▂",
			"▆▅▄▃▂▁▂▃",
			"▅▄▃▂▁▂▃▄",
			"▄▃▂▁▂▃▄▅",
			"▃▂▁▂▃▄▅▆",
			"▂▁▂▃▄▅▆▇",
			"▁▂▃▄▅▆▇█",
		}
	default:
		return []string{"|", "/", "-", "\\"}
	}
}

// LoadingDisplay provides a complete loading indicator with spinner and message.
type LoadingDisplay struct {
	spinner *Spinner
	message string
}

// NewLoadingDisplay creates a new loading display.
func NewLoadingDisplay(style SpinnerStyle, message string) *LoadingDisplay {
	return &LoadingDisplay{
		spinner: NewSpinner(style),
		message: message,
	}
}

// FetchDisplay creates the loading display shown while a document is
// being fetched, truncating long source names to fit the box.
func FetchDisplay(source string) *LoadingDisplay {
	if len(source) > 40 {
		source = source[:37] + "..."
	}
	ld := NewLoadingDisplay(SpinnerWave, source)
	ld.spinner.interval = 60 * time.Millisecond
	return ld
}

// Tick advances the animation.
func (ld *LoadingDisplay) Tick() bool {
	return ld.spinner.Tick()
}

// Draw renders the loading display centered on the canvas.
func (ld *LoadingDisplay) Draw(c *Canvas) {
	width := c.Width()
	height := c.Height()

	spinnerFrame := ld.spinner.Frame()

	// Format: spinner + space + message
	fullText := spinnerFrame + " " + ld.message
	textWidth := StringWidth(fullText)

	x := (width - textWidth) / 2
	y := height / 2

	spinnerWidth := ld.spinner.Width()
	c.WriteString(x, y, spinnerFrame, Style{Bold: true, FgColor: ColorCyan})
	c.WriteString(x+spinnerWidth+1, y, ld.message, Style{Dim: true})
}

// DrawBoxStyled renders the loading display in a centered box with custom spinner style.
func (ld *LoadingDisplay) DrawBoxStyled(c *Canvas, title string, spinnerStyle Style) {
	width := c.Width()
	height := c.Height()

	spinnerFrame := ld.spinner.Frame()
	fullText := spinnerFrame + " " + ld.message
	textWidth := StringWidth(fullText)

	boxWidth := textWidth + 6
	if boxWidth < 30 {
		boxWidth = 30
	}
	boxHeight := 5

	startX := (width - boxWidth) / 2
	startY := (height - boxHeight) / 2

	// Clear box area
	for y := startY; y < startY+boxHeight; y++ {
		for x := startX; x < startX+boxWidth; x++ {
			c.Set(x, y, ' ', Style{})
		}
	}

	c.DrawBox(startX, startY, boxWidth, boxHeight, RoundedBox, Style{})

	if title != "" {
		titleWidth := StringWidth(title) + 2
		titleX := startX + (boxWidth-titleWidth)/2
		c.Set(titleX, startY, ' ', Style{})
		c.WriteString(titleX+1, startY, title, Style{Bold: true})
		c.Set(titleX+1+StringWidth(title), startY, ' ', Style{})
	}

	contentX := startX + (boxWidth-textWidth)/2
	contentY := startY + 2

	spinnerWidth := ld.spinner.Width()
	c.WriteString(contentX, contentY, spinnerFrame, spinnerStyle)
	c.WriteString(contentX+spinnerWidth+1, contentY, ld.message, Style{})
}
