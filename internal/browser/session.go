package browser

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"github.com/ibeckermayer/cardcheck/internal/config"
)

// Session owns one browser process and one tab
type Session struct {
	ctx         context.Context
	tabCancel   context.CancelFunc
	allocCancel context.CancelFunc
	idle        *idleTracker

	closeOnce sync.Once
	closeErr  error
}

// NewSession starts a browser with the given options and opens a tab sized
// to viewport. Callers must Close the session.
func NewSession(ctx context.Context, opts []chromedp.ExecAllocatorOption, viewport config.Size) (*Session, error) {
	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	tabCtx, tabCancel := chromedp.NewContext(allocCtx)

	s := &Session{
		ctx:         tabCtx,
		tabCancel:   tabCancel,
		allocCancel: allocCancel,
		idle:        newIdleTracker(),
	}

	chromedp.ListenTarget(tabCtx, func(ev interface{}) {
		if e, ok := ev.(*page.EventLifecycleEvent); ok {
			s.idle.Observe(string(e.FrameID), e.Name)
		}
	})

	// First Run launches the browser
	err := chromedp.Run(tabCtx,
		chromedp.ActionFunc(func(ctx context.Context) error {
			tree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			s.idle.SetFrame(string(tree.Frame.ID))
			return page.SetLifecycleEventsEnabled(true).Do(ctx)
		}),
		chromedp.EmulateViewport(viewport.Width, viewport.Height),
	)
	if err != nil {
		tabCancel()
		allocCancel()
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	return s, nil
}

// Context returns the tab context. Derive per-step timeouts from it.
func (s *Session) Context() context.Context {
	return s.ctx
}

// Navigate loads url and waits for the load event
func (s *Session) Navigate(ctx context.Context, url string) error {
	if err := chromedp.Run(ctx, chromedp.Navigate(url)); err != nil {
		return fmt.Errorf("failed to navigate to %s: %w", url, err)
	}
	return nil
}

// WaitNetworkIdle blocks until the current document has had no network
// activity for 500ms. It returns immediately if that already happened.
func (s *Session) WaitNetworkIdle(ctx context.Context) error {
	return s.idle.Wait(ctx)
}

// SetViewport resizes the page viewport without reloading
func (s *Session) SetViewport(ctx context.Context, size config.Size) error {
	if err := chromedp.Run(ctx, chromedp.EmulateViewport(size.Width, size.Height)); err != nil {
		return fmt.Errorf("failed to set viewport %s: %w", size, err)
	}
	return nil
}

// Screenshot captures the viewport as PNG and writes it to path
func (s *Session) Screenshot(ctx context.Context, path string) error {
	var buf []byte
	if err := chromedp.Run(ctx, chromedp.CaptureScreenshot(&buf)); err != nil {
		return fmt.Errorf("failed to capture screenshot: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory for screenshot: %w", err)
		}
	}

	if err := os.WriteFile(path, buf, 0644); err != nil {
		return fmt.Errorf("failed to write screenshot: %w", err)
	}
	return nil
}

// Close shuts the browser down. Only the first call does anything.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		// Cancel waits on a browser process; after a failed launch there is
		// none and the plain cancel funcs are enough.
		if c := chromedp.FromContext(s.ctx); c != nil && c.Browser != nil {
			s.closeErr = chromedp.Cancel(s.ctx)
		}
		s.tabCancel()
		s.allocCancel()
		if s.closeErr != nil {
			log.Printf("[browser] close: %v", s.closeErr)
		}
	})
	return s.closeErr
}
