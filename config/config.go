// Package config provides configuration loading for Headway using YAML.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"headway/crumb"
)

// Display settings for the rendered view.
type Display struct {
	Mode           string `yaml:"mode"`           // breadcrumb collapse mode: "default" or "concise"
	MaxEntries     int    `yaml:"maxEntries"`     // cap on breadcrumb rows, 0 = unlimited
	ScrollBehavior string `yaml:"scrollBehavior"` // "auto", "smooth" or "instant"
	Theme          string `yaml:"theme"`
	MaxWidth       int    `yaml:"maxWidth"` // content column width
}

// Reading settings for view state on open.
type Reading struct {
	Band       bool `yaml:"band"`       // show the breadcrumb band
	SourceWrap bool `yaml:"sourceWrap"` // wrap long lines in source view
}

// Fetcher settings for HTTP fetching.
type Fetcher struct {
	UserAgent       string `yaml:"userAgent"`
	TimeoutSeconds  int    `yaml:"timeoutSeconds"`
	BrowserFallback bool   `yaml:"browserFallback"` // retry blocked pages through headless Chrome
	ChromePath      string `yaml:"chromePath"`      // empty = auto-detect
}

// Cache settings for the page and outline cache.
type Cache struct {
	TTLHours int  `yaml:"ttlHours"`
	Disabled bool `yaml:"disabled"`
}

// Session settings.
type Session struct {
	RestoreSession bool `yaml:"restoreSession"`
}

// Keybindings configuration.
type Keybindings struct {
	// Navigation
	Quit         string `yaml:"quit"`
	ScrollDown   string `yaml:"scrollDown"`
	ScrollUp     string `yaml:"scrollUp"`
	HalfPageDown string `yaml:"halfPageDown"`
	HalfPageUp   string `yaml:"halfPageUp"`
	GoTop        string `yaml:"goTop"`
	GoBottom     string `yaml:"goBottom"`
	PrevSection  string `yaml:"prevSection"`
	NextSection  string `yaml:"nextSection"`

	// Actions
	Open       string `yaml:"open"`
	Find       string `yaml:"find"`
	NextMatch  string `yaml:"nextMatch"`
	PrevMatch  string `yaml:"prevMatch"`
	GotoLine   string `yaml:"gotoLine"`
	FollowLink string `yaml:"followLink"`
	Reload     string `yaml:"reload"`
	EditConfig string `yaml:"editConfig"`

	// Breadcrumb band
	ToggleBand string `yaml:"toggleBand"`
	BandJump   string `yaml:"bandJump"`
	CrumbMode  string `yaml:"crumbMode"`

	// Views & overlays
	ToggleView  string `yaml:"toggleView"`
	Outline     string `yaml:"outline"`
	ToggleTheme string `yaml:"toggleTheme"`
	ThemePicker string `yaml:"themePicker"`
	Help        string `yaml:"help"`

	// History & buffers
	Back       string `yaml:"back"`
	Forward    string `yaml:"forward"`
	NewBuffer  string `yaml:"newBuffer"`
	NextBuffer string `yaml:"nextBuffer"`
	PrevBuffer string `yaml:"prevBuffer"`
	BufferList string `yaml:"bufferList"`

	// Bookmarks
	AddBookmark   string `yaml:"addBookmark"`
	BookmarksList string `yaml:"bookmarksList"`
}

// Config is the main configuration struct.
type Config struct {
	Display     Display     `yaml:"display"`
	Reading     Reading     `yaml:"reading"`
	Fetcher     Fetcher     `yaml:"fetcher"`
	Cache       Cache       `yaml:"cache"`
	Session     Session     `yaml:"session"`
	Keybindings Keybindings `yaml:"keybindings"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Display: Display{
			Mode:           "default",
			MaxEntries:     0,
			ScrollBehavior: "auto",
			Theme:          "default-dark",
			MaxWidth:       80,
		},
		Reading: Reading{
			Band:       true,
			SourceWrap: false,
		},
		Fetcher: Fetcher{
			UserAgent:       "Headway/1.0 (Terminal Reader)",
			TimeoutSeconds:  30,
			BrowserFallback: true,
			ChromePath:      "",
		},
		Cache: Cache{
			TTLHours: 24,
			Disabled: false,
		},
		Session: Session{
			RestoreSession: true,
		},
		Keybindings: Keybindings{
			Quit:         "q",
			ScrollDown:   "j",
			ScrollUp:     "k",
			HalfPageDown: "d",
			HalfPageUp:   "u",
			GoTop:        "gg",
			GoBottom:     "G",
			PrevSection:  "{",
			NextSection:  "}",

			Open:       "o",
			Find:       "/",
			NextMatch:  "n",
			PrevMatch:  "N",
			GotoLine:   ":",
			FollowLink: "f",
			Reload:     "r",
			EditConfig: "E",

			ToggleBand: "w",
			BandJump:   "b",
			CrumbMode:  "c",

			ToggleView:  "v",
			Outline:     "t",
			ToggleTheme: "z",
			ThemePicker: "P",
			Help:        "?",

			Back:       "\x0f", // Ctrl-o (vim jump list style)
			Forward:    "\t",   // Ctrl-i / Tab
			NewBuffer:  "T",
			NextBuffer: "gt",
			PrevBuffer: "gT",
			BufferList: "`",

			AddBookmark:   "m",
			BookmarksList: "'",
		},
	}
}

// configDir returns the configuration directory path.
func configDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "headway"), nil
}

// Path returns the path to the user's config file.
func Path() (string, error) {
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// Load loads configuration, layering user config on top of defaults.
// Returns the default config if no user config exists.
func Load() (*Config, error) {
	cfg := Default()

	path, err := Path()
	if err != nil {
		return cfg, nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	if err := loadInto(cfg, path); err != nil {
		return nil, fmt.Errorf("loading config from %s: %w", path, err)
	}
	cfg.normalize()
	return cfg, nil
}

// loadInto decodes the YAML file over cfg. Only keys present in the
// file are touched, so defaults survive for everything else.
func loadInto(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parsing config YAML: %w", err)
	}
	return nil
}

// normalize repairs out-of-range values rather than failing startup.
func (c *Config) normalize() {
	if c.Display.MaxEntries < 0 {
		c.Display.MaxEntries = 0
	}
	if c.Display.MaxWidth < 0 {
		c.Display.MaxWidth = 0
	}
	if c.Fetcher.TimeoutSeconds <= 0 {
		c.Fetcher.TimeoutSeconds = 30
	}
	if c.Cache.TTLHours <= 0 {
		c.Cache.TTLHours = 24
	}
}

// Crumb converts the display settings into a breadcrumb resolution
// config. Unknown mode or behavior strings fall back to the defaults;
// a config file typo should degrade the band, not kill the viewer.
func (c *Config) Crumb() crumb.Config {
	mode, _ := crumb.ParseMode(c.Display.Mode)
	behavior, _ := crumb.ParseBehavior(c.Display.ScrollBehavior)
	max := c.Display.MaxEntries
	if max < 0 {
		max = 0
	}
	return crumb.Config{Mode: mode, Max: max, ScrollBehavior: behavior}
}

// DefaultYAML returns the default configuration as a YAML string.
// Used for --init-config to generate a user config file.
func DefaultYAML() string {
	return `# Headway configuration
# Save to ~/.config/headway/config.yaml and customize
# Only include settings you want to change from defaults

# Display settings
display:
  mode: default          # Breadcrumb collapse mode: "default" keeps sibling history, "concise" keeps one entry per tier
  maxEntries: 0          # Cap on breadcrumb rows shown, 0 = unlimited
  scrollBehavior: auto   # Scroll on breadcrumb jump: "auto", "smooth" or "instant"
  theme: default-dark
  maxWidth: 80           # Content column width

# Reading settings
reading:
  band: true             # Show the breadcrumb band
  sourceWrap: false      # Wrap long lines in source view

# HTTP fetching settings
fetcher:
  userAgent: "Headway/1.0 (Terminal Reader)"
  timeoutSeconds: 30
  browserFallback: true  # Retry blocked pages through headless Chrome
  chromePath: ""         # Path to Chrome/Chromium (empty = auto-detect)

# Page cache settings
cache:
  ttlHours: 24
  disabled: false

# Session settings
session:
  restoreSession: true   # Restore previous session on startup

# Keybindings
keybindings:
  # Navigation
  quit: q
  scrollDown: j
  scrollUp: k
  halfPageDown: d
  halfPageUp: u
  goTop: gg
  goBottom: G
  prevSection: "{"
  nextSection: "}"

  # Actions
  open: o
  find: /
  nextMatch: "n"
  prevMatch: "N"
  gotoLine: ":"
  followLink: f
  reload: r
  editConfig: E

  # Breadcrumb band
  toggleBand: w
  bandJump: b
  crumbMode: c

  # Views & overlays
  toggleView: v
  outline: t
  toggleTheme: z
  themePicker: P
  help: "?"

  # History & buffers
  back: "\x0F"           # Ctrl-o (vim jump list style)
  forward: "\t"          # Ctrl-i / Tab
  newBuffer: T
  nextBuffer: gt
  prevBuffer: gT
  bufferList: "` + "`" + `"

  # Bookmarks
  addBookmark: m
  bookmarksList: "'"
`
}

// MatchSingle is a simple helper for single-char bindings.
func MatchSingle(input byte, binding string) bool {
	return len(binding) == 1 && input == binding[0]
}

// MatchWithPrefix checks if input completes a two-char binding given a prefix.
func MatchWithPrefix(prefix string, input byte, binding string) bool {
	if len(binding) != 2 || len(prefix) != 1 {
		return false
	}
	return prefix[0] == binding[0] && input == binding[1]
}

// StartsBinding returns true if input is the first char of a multi-char binding.
func StartsBinding(input byte, binding string) bool {
	return len(binding) > 1 && input == binding[0]
}

// FormatError formats a configuration error for user display.
func FormatError(err error) string {
	return fmt.Sprintf("Configuration error:\n\n%s", err.Error())
}
