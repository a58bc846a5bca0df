// Package browsertest locates a local Chrome for tests and skips them when
// none is usable.
package browsertest

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/ibeckermayer/cardcheck/internal/browser"
	"github.com/ibeckermayer/cardcheck/internal/config"
)

const startupTimeout = 20 * time.Second

var envVars = []string{"CHROMEDP_EXEC_PATH", "CHROME_PATH"}

var executableNames = []string{
	"google-chrome",
	"google-chrome-stable",
	"chromium",
	"chromium-browser",
	"chrome",
	"headless-shell",
}

var probe struct {
	once sync.Once
	path string
	err  error
}

// Config returns a headless browser config pointing at a working Chrome,
// or skips t.
func Config(t testing.TB) config.BrowserConfig {
	t.Helper()

	probe.once.Do(func() {
		probe.path, probe.err = locate()
		if probe.err == nil {
			probe.err = startOnce(probe.path)
		}
	})
	if probe.err != nil {
		t.Skipf("headless chrome not available: %v", probe.err)
	}

	return config.BrowserConfig{
		Headless:  true,
		NoSandbox: true,
		ExecPath:  probe.path,
	}
}

func locate() (string, error) {
	for _, name := range envVars {
		if v := strings.TrimSpace(os.Getenv(name)); v != "" {
			return v, nil
		}
	}
	for _, name := range executableNames {
		if p, err := exec.LookPath(name); err == nil {
			return p, nil
		}
	}
	return "", fmt.Errorf("no chrome executable found in PATH")
}

func startOnce(path string) error {
	opts := browser.Options(config.BrowserConfig{Headless: true, NoSandbox: true, ExecPath: path}, config.Size{Width: 800, Height: 600})

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)
	defer allocCancel()

	ctx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	ctx, timeoutCancel := context.WithTimeout(ctx, startupTimeout)
	defer timeoutCancel()

	return chromedp.Run(ctx,
		chromedp.Navigate("about:blank"),
		chromedp.WaitReady("body", chromedp.ByQuery),
	)
}
