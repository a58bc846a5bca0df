// Package browser wraps chromedp for the smoke test: allocator options, a
// session that owns one tab, locators and network-idle tracking.
package browser

import (
	"github.com/chromedp/chromedp"

	"github.com/ibeckermayer/cardcheck/internal/config"
)

// DefaultUserAgent is a realistic Chrome user agent
const DefaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// Options returns chromedp allocator options for the configured browser.
// The window starts at the mobile viewport; the page viewport itself is set
// by emulation once the tab exists.
func Options(cfg config.BrowserConfig, initial config.Size) []chromedp.ExecAllocatorOption {
	ua := cfg.UserAgent
	if ua == "" {
		ua = DefaultUserAgent
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", cfg.Headless),
		chromedp.UserAgent(ua),
		chromedp.WindowSize(int(initial.Width), int(initial.Height)),

		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-default-apps", true),
		chromedp.Flag("no-first-run", true),
		chromedp.Flag("no-default-browser-check", true),
	)

	if cfg.Headless {
		opts = append(opts, chromedp.Flag("disable-gpu", true))
	}

	// Containers usually need both of these to start Chrome at all
	if cfg.NoSandbox {
		opts = append(opts,
			chromedp.NoSandbox,
			chromedp.Flag("disable-dev-shm-usage", true),
		)
	}

	if cfg.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(cfg.ExecPath))
	}

	return opts
}
