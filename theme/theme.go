// Package theme provides color theming for the reader.
package theme

import "headway/render"

// Color represents an RGB color that can render to ANSI.
type Color struct {
	R, G, B uint8
}

// Theme defines the color palette for the reader.
// Document content uses terminal attributes (bold/dim/underline) not colors.
// Themes control the UI chrome: the breadcrumb band, labels, status feedback.
type Theme struct {
	Name string
	Dark bool // true if this is a dark theme
	Mono bool // attribute-only rendering, emits no color codes

	// Base colors
	Background    Color // terminal background (ignored if TransparentBg is true)
	TransparentBg bool  // if true, use terminal's native background
	Foreground    Color // default text
	Dim           Color // dimmed text, separators, line numbers

	// Breadcrumb band
	Band        Color // collapsed ancestor entries
	BandCurrent Color // deepest entry, the section the viewport sits in

	// Labels (jump hints)
	Label      Color // untyped portion of label
	LabelTyped Color // typed portion of label
	LabelDim   Color // non-matching labels

	// Accent
	Accent Color // spinner, active indicators

	// Feedback
	Error   Color
	Warning Color
	Success Color
	Info    Color
}

// Style creates a render.Style with the given foreground color.
func (c Color) Style() render.Style {
	return render.Style{
		FgRGB:    [3]uint8{c.R, c.G, c.B},
		UseFgRGB: true,
	}
}

// StyleBg creates a render.Style with the given background color.
func (c Color) StyleBg() render.Style {
	return render.Style{
		BgRGB:    [3]uint8{c.R, c.G, c.B},
		UseBgRGB: true,
	}
}

// StyleFgBg creates a render.Style with foreground and background colors.
func StyleFgBg(fg, bg Color) render.Style {
	return render.Style{
		FgRGB:    [3]uint8{fg.R, fg.G, fg.B},
		UseFgRGB: true,
		BgRGB:    [3]uint8{bg.R, bg.G, bg.B},
		UseBgRGB: true,
	}
}

// BaseStyle returns the base render.Style for the theme.
// If TransparentBg is true, no colors are set (terminal defaults used).
func (t *Theme) BaseStyle() render.Style {
	if t.Mono || t.TransparentBg {
		return render.Style{} // use terminal's native colors
	}
	return StyleFgBg(t.Foreground, t.Background)
}

// BandStyle is the style for collapsed ancestor crumbs.
func (t *Theme) BandStyle() render.Style {
	if t.Mono {
		return render.Style{Dim: true}
	}
	return t.Band.Style()
}

// BandCurrentStyle is the style for the deepest crumb.
func (t *Theme) BandCurrentStyle() render.Style {
	if t.Mono {
		return render.Style{Bold: true}
	}
	s := t.BandCurrent.Style()
	s.Bold = true
	return s
}

// DimStyle is the style for separators and secondary text.
func (t *Theme) DimStyle() render.Style {
	if t.Mono {
		return render.Style{Dim: true}
	}
	return t.Dim.Style()
}

// LabelStyle is the style for jump labels.
func (t *Theme) LabelStyle() render.Style {
	if t.Mono {
		return render.Style{Bold: true, Underline: true}
	}
	s := t.Label.Style()
	s.Bold = true
	return s
}

// LabelTypedStyle marks the typed prefix of a matching label.
func (t *Theme) LabelTypedStyle() render.Style {
	if t.Mono {
		return render.Style{Bold: true}
	}
	s := t.LabelTyped.Style()
	s.Bold = true
	return s
}

// LabelDimStyle fades labels ruled out by the typed prefix.
func (t *Theme) LabelDimStyle() render.Style {
	if t.Mono {
		return render.Style{Dim: true}
	}
	return t.LabelDim.Style()
}

// AccentStyle is the style for spinners and active indicators.
func (t *Theme) AccentStyle() render.Style {
	if t.Mono {
		return render.Style{Bold: true}
	}
	return t.Accent.Style()
}

// ErrorStyle is the style for error feedback in the status line.
func (t *Theme) ErrorStyle() render.Style {
	if t.Mono {
		return render.Style{Bold: true, Reverse: true}
	}
	s := t.Error.Style()
	s.Bold = true
	return s
}

// InfoStyle is the style for informational status messages.
func (t *Theme) InfoStyle() render.Style {
	if t.Mono {
		return render.Style{}
	}
	return t.Info.Style()
}

// Hex creates a Color from a hex string like "#RRGGBB" or "RRGGBB".
func Hex(s string) Color {
	if len(s) > 0 && s[0] == '#' {
		s = s[1:]
	}
	if len(s) != 6 {
		return Color{}
	}
	return Color{
		R: hexByte(s[0:2]),
		G: hexByte(s[2:4]),
		B: hexByte(s[4:6]),
	}
}

func hexByte(s string) uint8 {
	var v uint8
	for _, c := range s {
		v *= 16
		switch {
		case c >= '0' && c <= '9':
			v += uint8(c - '0')
		case c >= 'a' && c <= 'f':
			v += uint8(c - 'a' + 10)
		case c >= 'A' && c <= 'F':
			v += uint8(c - 'A' + 10)
		}
	}
	return v
}

// RGB creates a Color from RGB values.
func RGB(r, g, b uint8) Color {
	return Color{R: r, G: g, B: b}
}

// Built-in themes
var (
	// Default - uses terminal's native background, works with any terminal theme
	DefaultDark = &Theme{
		Name:          "default-dark",
		Dark:          true,
		TransparentBg: true, // use terminal's own background
		Foreground:    Hex("e0e0e0"),
		Dim:           Hex("666666"),
		Band:          Hex("8a8a8a"),
		BandCurrent:   Hex("e0e0e0"),
		Label:         Hex("d7d700"), // yellow
		LabelTyped:    Hex("5fd75f"), // green
		LabelDim:      Hex("4a4a4a"),
		Accent:        Hex("5fd7d7"), // cyan
		Error:         Hex("d75f5f"),
		Warning:       Hex("d7af5f"),
		Success:       Hex("5fd75f"),
		Info:          Hex("5f87d7"),
	}

	DefaultLight = &Theme{
		Name:        "default-light",
		Dark:        false,
		Background:  Hex("fafafa"),
		Foreground:  Hex("1a1a1a"),
		Dim:         Hex("888888"),
		Band:        Hex("6a6a6a"),
		BandCurrent: Hex("1a1a1a"),
		Label:       Hex("b58900"), // darker yellow
		LabelTyped:  Hex("2e7d32"), // green
		LabelDim:    Hex("cccccc"),
		Accent:      Hex("00838f"), // teal
		Error:       Hex("c62828"),
		Warning:     Hex("f57c00"),
		Success:     Hex("2e7d32"),
		Info:        Hex("1565c0"),
	}

	// Mono - pure terminal attributes for limited terminals and pagers
	Mono = &Theme{
		Name:          "mono",
		Dark:          true,
		Mono:          true,
		TransparentBg: true,
	}

	// Solarized - Ethan Schoonover's precision colors
	SolarizedDark = &Theme{
		Name:        "solarized-dark",
		Dark:        true,
		Background:  Hex("002b36"), // base03
		Foreground:  Hex("839496"), // base0
		Dim:         Hex("586e75"), // base01
		Band:        Hex("586e75"), // base01
		BandCurrent: Hex("93a1a1"), // base1
		Label:       Hex("b58900"), // yellow
		LabelTyped:  Hex("859900"), // green
		LabelDim:    Hex("073642"), // base02
		Accent:      Hex("2aa198"), // cyan
		Error:       Hex("dc322f"), // red
		Warning:     Hex("cb4b16"), // orange
		Success:     Hex("859900"), // green
		Info:        Hex("268bd2"), // blue
	}

	SolarizedLight = &Theme{
		Name:        "solarized-light",
		Dark:        false,
		Background:  Hex("fdf6e3"), // base3
		Foreground:  Hex("657b83"), // base00
		Dim:         Hex("93a1a1"), // base1
		Band:        Hex("93a1a1"), // base1
		BandCurrent: Hex("586e75"), // base01
		Label:       Hex("b58900"), // yellow
		LabelTyped:  Hex("859900"), // green
		LabelDim:    Hex("eee8d5"), // base2
		Accent:      Hex("2aa198"), // cyan
		Error:       Hex("dc322f"), // red
		Warning:     Hex("cb4b16"), // orange
		Success:     Hex("859900"), // green
		Info:        Hex("268bd2"), // blue
	}

	// Nord - Arctic, north-bluish color palette
	Nord = &Theme{
		Name:        "nord",
		Dark:        true,
		Background:  Hex("2e3440"), // nord0
		Foreground:  Hex("d8dee9"), // nord4
		Dim:         Hex("4c566a"), // nord3
		Band:        Hex("81a1c1"), // nord9
		BandCurrent: Hex("eceff4"), // nord6
		Label:       Hex("ebcb8b"), // nord13 (yellow)
		LabelTyped:  Hex("a3be8c"), // nord14 (green)
		LabelDim:    Hex("3b4252"), // nord1
		Accent:      Hex("88c0d0"), // nord8 (frost)
		Error:       Hex("bf616a"), // nord11 (red)
		Warning:     Hex("d08770"), // nord12 (orange)
		Success:     Hex("a3be8c"), // nord14 (green)
		Info:        Hex("81a1c1"), // nord9
	}

	// Gruvbox - Retro groove color scheme
	GruvboxDark = &Theme{
		Name:        "gruvbox-dark",
		Dark:        true,
		Background:  Hex("282828"), // bg
		Foreground:  Hex("ebdbb2"), // fg
		Dim:         Hex("928374"), // gray
		Band:        Hex("a89984"), // fg4
		BandCurrent: Hex("fbf1c7"), // fg0
		Label:       Hex("fabd2f"), // yellow
		LabelTyped:  Hex("b8bb26"), // green
		LabelDim:    Hex("3c3836"), // bg1
		Accent:      Hex("8ec07c"), // aqua
		Error:       Hex("fb4934"), // red
		Warning:     Hex("fe8019"), // orange
		Success:     Hex("b8bb26"), // green
		Info:        Hex("83a598"), // blue
	}

	// Dracula - Dark theme with vivid colors
	Dracula = &Theme{
		Name:        "dracula",
		Dark:        true,
		Background:  Hex("282a36"),
		Foreground:  Hex("f8f8f2"),
		Dim:         Hex("6272a4"), // comment
		Band:        Hex("bd93f9"), // purple
		BandCurrent: Hex("f8f8f2"), // foreground
		Label:       Hex("f1fa8c"), // yellow
		LabelTyped:  Hex("50fa7b"), // green
		LabelDim:    Hex("44475a"), // current line
		Accent:      Hex("8be9fd"), // cyan
		Error:       Hex("ff5555"), // red
		Warning:     Hex("ffb86c"), // orange
		Success:     Hex("50fa7b"), // green
		Info:        Hex("bd93f9"), // purple
	}
)

// All contains all built-in themes for iteration.
var All = []*Theme{
	DefaultDark,
	DefaultLight,
	Mono,
	SolarizedDark,
	SolarizedLight,
	Nord,
	GruvboxDark,
	Dracula,
}

// Current is the active theme.
var Current = DefaultDark

// currentIndex tracks position in All for cycling.
var currentIndex = 0

// Set changes to a specific theme by name.
func Set(name string) bool {
	for i, t := range All {
		if t.Name == name {
			Current = t
			currentIndex = i
			return true
		}
	}
	return false
}

// Next cycles to the next theme.
func Next() {
	currentIndex = (currentIndex + 1) % len(All)
	Current = All[currentIndex]
}

// Prev cycles to the previous theme.
func Prev() {
	currentIndex = (currentIndex - 1 + len(All)) % len(All)
	Current = All[currentIndex]
}

// Toggle switches between light and dark variants if available.
// If current theme has no variant, cycles to next theme of opposite type.
func Toggle() {
	baseName := Current.Name
	if Current.Dark {
		lightName := baseName
		if len(baseName) > 5 && baseName[len(baseName)-5:] == "-dark" {
			lightName = baseName[:len(baseName)-5] + "-light"
		}
		if Set(lightName) {
			return
		}
	} else {
		darkName := baseName
		if len(baseName) > 6 && baseName[len(baseName)-6:] == "-light" {
			darkName = baseName[:len(baseName)-6] + "-dark"
		}
		if Set(darkName) {
			return
		}
	}
	Next()
}
