// Package fetcher provides HTTP fetching with optional browser rendering fallback.
package fetcher

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

// Result contains the fetched document and metadata.
type Result struct {
	Body        []byte
	ContentType string
	FinalURL    string // URL after following redirects
	UsedBrowser bool
	FetchTime   time.Duration
}

// Options configures the fetcher behavior.
type Options struct {
	UserAgent       string
	TimeoutSeconds  int
	BrowserFallback bool   // retry blocked or script-only pages through headless Chrome
	ChromePath      string // path to Chrome binary (empty = auto-detect)
}

// DefaultOptions returns sensible defaults.
func DefaultOptions() Options {
	return Options{
		UserAgent:       "Headway/1.0 (Terminal Reader)",
		TimeoutSeconds:  30,
		BrowserFallback: true,
		ChromePath:      "",
	}
}

// Package-level options (set via Configure)
var opts = DefaultOptions()

// Configure sets the package-level options.
func Configure(o Options) {
	if o.UserAgent != "" {
		opts.UserAgent = o.UserAgent
	}
	if o.TimeoutSeconds > 0 {
		opts.TimeoutSeconds = o.TimeoutSeconds
	}
	opts.BrowserFallback = o.BrowserFallback
	opts.ChromePath = o.ChromePath // can be empty
}

// UserAgent returns the currently configured user agent string.
func UserAgent() string {
	return opts.UserAgent
}

// Timeout returns the currently configured timeout duration.
func Timeout() time.Duration {
	return time.Duration(opts.TimeoutSeconds) * time.Second
}

// userDataDir returns a persistent directory for Chrome user data so
// cookies survive between browser fetches.
func userDataDir() string {
	dir, _ := os.UserCacheDir()
	return filepath.Join(dir, "headway-chrome-profile")
}

// Simple fetches a URL using standard HTTP (fast, low bandwidth).
func Simple(url string) (*Result, error) {
	start := time.Now()

	req, err := http.NewRequest("GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", opts.UserAgent)
	req.Header.Set("Accept", "text/html, text/markdown;q=0.9, text/plain;q=0.8, */*;q=0.5")

	client := &http.Client{
		Timeout: time.Duration(opts.TimeoutSeconds) * time.Second,
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("fetching %s: %s", url, resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	return &Result{
		Body:        body,
		ContentType: resp.Header.Get("Content-Type"),
		FinalURL:    resp.Request.URL.String(),
		UsedBrowser: false,
		FetchTime:   time.Since(start),
	}, nil
}

// WithBrowser fetches a URL using headless Chrome to execute JavaScript.
// Slower than Simple, but it renders script-built pages and rides out
// bot checks that plain HTTP trips over.
func WithBrowser(targetURL string) (*Result, error) {
	start := time.Now()

	allocOpts := []chromedp.ExecAllocatorOption{
		chromedp.NoDefaultBrowserCheck,
		chromedp.NoFirstRun,
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-default-apps", true),
		chromedp.Flag("disable-component-update", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("no-service-autorun", true),
		chromedp.Flag("password-store", "basic"),
		chromedp.Flag("use-mock-keychain", true),
		chromedp.Flag("blink-settings", "imagesEnabled=false"),
		chromedp.UserAgent(opts.UserAgent),
		chromedp.WindowSize(1280, 1024),
		chromedp.UserDataDir(userDataDir()),
		chromedp.Flag("headless", "new"),
	}
	if opts.ChromePath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(opts.ChromePath))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), allocOpts...)
	defer allocCancel()

	// Browser fetches need extra time over the plain HTTP budget.
	timeout := time.Duration(opts.TimeoutSeconds)*time.Second + 15*time.Second
	ctx, cancel := context.WithTimeout(allocCtx, timeout)
	defer cancel()

	ctx, cancel = chromedp.NewContext(ctx)
	defer cancel()

	// Dismiss alert/confirm/beforeunload dialogs; an unanswered dialog
	// blocks the tab and the fetch would just sit until the timeout.
	chromedp.ListenTarget(ctx, func(ev interface{}) {
		if _, ok := ev.(*page.EventJavascriptDialogOpening); ok {
			go chromedp.Run(ctx, page.HandleJavaScriptDialog(false))
		}
	})

	var html string
	var finalURL string
	err := chromedp.Run(ctx,
		network.SetExtraHTTPHeaders(network.Headers(map[string]interface{}{
			"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
			"Accept-Language": "en-US,en;q=0.9",
		})),
		chromedp.Navigate(targetURL),
		chromedp.WaitReady("body", chromedp.ByQuery),
		// Give late script rendering and challenge pages a beat.
		chromedp.Sleep(2*time.Second),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var title string
			if err := chromedp.Title(&title).Do(ctx); err != nil {
				return nil
			}
			if title == "Just a moment..." {
				return chromedp.Sleep(5 * time.Second).Do(ctx)
			}
			return nil
		}),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
		chromedp.Location(&finalURL),
	)
	if err != nil {
		return nil, fmt.Errorf("browser fetch: %w", err)
	}

	return &Result{
		Body:        []byte(html),
		ContentType: "text/html; charset=utf-8",
		FinalURL:    finalURL,
		UsedBrowser: true,
		FetchTime:   time.Since(start),
	}, nil
}

// IsBlocked checks whether the body looks like a bot challenge rather
// than the page itself. The reason names the wall we hit.
func IsBlocked(body []byte) (bool, string) {
	html := string(body)
	if strings.Contains(html, "Just a moment...") ||
		strings.Contains(html, "Checking your browser") ||
		strings.Contains(html, "cf-browser-verification") {
		return true, "Cloudflare challenge"
	}
	if strings.Contains(html, "recaptcha") && len(html) < 10000 {
		return true, "reCAPTCHA challenge"
	}
	if strings.Contains(html, "captcha-delivery.com") || strings.Contains(html, "DataDome") {
		return true, "DataDome bot protection"
	}
	if strings.Contains(html, "perimeterx") || strings.Contains(html, "px-captcha") {
		return true, "PerimeterX bot protection"
	}
	if strings.Contains(html, "akam/") && len(html) < 5000 {
		return true, "Akamai bot protection"
	}
	return false, ""
}

// isHTML reports whether the content type names an HTML document. Only
// HTML responses can be script-starved or challenge walls; markdown and
// plain text never need the browser.
func isHTML(contentType string) bool {
	return strings.Contains(contentType, "text/html") ||
		strings.Contains(contentType, "application/xhtml")
}

// Smart fetches a URL using the best available method: plain HTTP
// first, headless browser when the response is a challenge wall or a
// near-empty script shell and the fallback is enabled.
func Smart(targetURL string) (*Result, error) {
	result, err := Simple(targetURL)
	if err == nil {
		if !isHTML(result.ContentType) {
			return result, nil
		}
		blocked, _ := IsBlocked(result.Body)
		if !blocked && len(result.Body) > 2000 {
			return result, nil
		}
	}

	if !opts.BrowserFallback {
		if err != nil {
			return nil, err
		}
		if blocked, reason := IsBlocked(result.Body); blocked {
			return result, fmt.Errorf("blocked: %s", reason)
		}
		return result, nil
	}

	result, err = WithBrowser(targetURL)
	if err != nil {
		return nil, err
	}
	if blocked, reason := IsBlocked(result.Body); blocked {
		return result, fmt.Errorf("blocked: %s", reason)
	}
	return result, nil
}
