// Package cardcheck runs the customer card smoke test: a fixed sequence of
// navigation, clicks and visibility probes against the running app.
package cardcheck

import (
	"context"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/ibeckermayer/cardcheck/internal/browser"
	"github.com/ibeckermayer/cardcheck/internal/config"
)

// Check names recorded in Result.Checks
const (
	CheckClientSelected   = "client_selected"
	CheckIAVisible        = "ia_button_visible"
	CheckTrocarVisible    = "trocar_button_visible"
	CheckSheetOpened      = "bottom_sheet_opened"
	CheckIAClicked        = "ia_button_clicked"
	CheckSelectionOpened  = "client_selection_opened"
	CheckDesktopCardShown = "desktop_card_visible"
)

// Runner executes the smoke test
type Runner struct {
	cfg *config.Config
	out io.Writer
}

// New creates a runner that prints progress lines to out
func New(cfg *config.Config, out io.Writer) *Runner {
	return &Runner{cfg: cfg, out: out}
}

type step struct {
	name string
	run  func(ctx context.Context, s *browser.Session, p *reporter) error
}

func (r *Runner) steps() []step {
	return []step{
		{"navigate", r.navigate},
		{"select client", r.selectClient},
		{"action buttons", r.probeButtons},
		{"bottom sheet", r.openBottomSheet},
		{"IA button", r.clickIA},
		{"Trocar button", r.clickTrocar},
		{"desktop layout", r.checkDesktop},
	}
}

// Run launches the browser, executes every step in order and closes the
// browser. The first failing step stops the run; its error is printed,
// a screenshot is written and the error is returned in Result.Err.
func (r *Runner) Run(ctx context.Context) *Result {
	res := &Result{BaseURL: r.cfg.Target.BaseURL, StartedAt: time.Now()}
	p := &reporter{out: r.out, result: res}
	defer func() { res.FinishedAt = time.Now() }()

	if d := r.cfg.Timeouts.Run.Duration; d > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d)
		defer cancel()
	}

	log.Printf("[runner] Starting smoke test against %s", r.cfg.Target.BaseURL)

	// The browser outlives ctx so a failure screenshot can still be taken
	// after the run deadline or an interrupt; the steps are bound to ctx.
	opts := browser.Options(r.cfg.Browser, r.cfg.Viewport.Mobile)
	session, err := browser.NewSession(context.WithoutCancel(ctx), opts, r.cfg.Viewport.Mobile)
	if err != nil {
		p.fail(err)
		return res
	}
	defer session.Close()

	stepCtx, cancel := bound(session.Context(), ctx)
	defer cancel()

	for _, st := range r.steps() {
		if err := st.run(stepCtx, session, p); err != nil {
			p.fail(fmt.Errorf("%s: %w", st.name, err))
			r.captureFailure(session, res)
			return res
		}
	}

	log.Printf("[runner] Smoke test completed with %d checks", len(res.Checks))
	return res
}

func (r *Runner) captureFailure(s *browser.Session, res *Result) {
	path := r.cfg.Target.ScreenshotPath
	if path == "" {
		return
	}

	ctx, cancel := context.WithTimeout(s.Context(), r.cfg.Timeouts.Action.Duration)
	defer cancel()

	if err := s.Screenshot(ctx, path); err != nil {
		log.Printf("[runner] Failed to save failure screenshot: %v", err)
		return
	}
	res.Screenshot = path
	log.Printf("[runner] Saved failure screenshot to %s", path)
}

// bound derives a context from tab that also ends when run ends, keeping
// run's deadline.
func bound(tab, run context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(tab)
	if deadline, ok := run.Deadline(); ok {
		var cancelDeadline context.CancelFunc
		ctx, cancelDeadline = context.WithDeadline(ctx, deadline)
		parentCancel := cancel
		cancel = func() {
			cancelDeadline()
			parentCancel()
		}
	}
	stop := context.AfterFunc(run, cancel)
	return ctx, func() {
		stop()
		cancel()
	}
}

// within runs fn with a timeout derived from ctx
func within(ctx context.Context, d time.Duration, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, d)
	defer cancel()
	return fn(ctx)
}

// act runs chromedp actions under the action timeout
func (r *Runner) act(ctx context.Context, actions ...chromedp.Action) error {
	return within(ctx, r.cfg.Timeouts.Action.Duration, func(ctx context.Context) error {
		return chromedp.Run(ctx, actions...)
	})
}

// waitFor waits for l to become visible under the explicit wait timeout
func (r *Runner) waitFor(ctx context.Context, l browser.Locator) error {
	err := within(ctx, r.cfg.Timeouts.Wait.Duration, func(ctx context.Context) error {
		return chromedp.Run(ctx, l.WaitVisible())
	})
	if err != nil {
		return fmt.Errorf("waiting for %s (%s): %w", l, r.cfg.Timeouts.Wait.Duration, err)
	}
	return nil
}

func (r *Runner) click(ctx context.Context, l browser.Locator) error {
	if err := r.act(ctx, l.Click()); err != nil {
		return fmt.Errorf("clicking %s: %w", l, err)
	}
	return nil
}

func (r *Runner) settle(ctx context.Context, s *browser.Session) error {
	return within(ctx, r.cfg.Timeouts.Action.Duration, s.WaitNetworkIdle)
}

func (r *Runner) visible(ctx context.Context, l browser.Locator) (bool, error) {
	var visible bool
	err := within(ctx, r.cfg.Timeouts.Action.Duration, func(ctx context.Context) error {
		var err error
		visible, err = l.Visible(ctx)
		return err
	})
	return visible, err
}

func (r *Runner) navigate(ctx context.Context, s *browser.Session, _ *reporter) error {
	err := within(ctx, r.cfg.Timeouts.Action.Duration, func(ctx context.Context) error {
		return s.Navigate(ctx, r.cfg.Target.BaseURL)
	})
	if err != nil {
		return err
	}
	return r.settle(ctx, s)
}

// selectClient picks the first client when the page starts without one
func (r *Runner) selectClient(ctx context.Context, s *browser.Session, p *reporter) error {
	needed, err := r.visible(ctx, SelectClient)
	if err != nil {
		return err
	}
	if !needed {
		return nil
	}

	p.line("Selecting a client first...")
	if err := r.click(ctx, SelectClient); err != nil {
		return err
	}
	if err := r.waitFor(ctx, ClientListItem); err != nil {
		return err
	}
	if err := r.click(ctx, ClientListItem); err != nil {
		return err
	}
	if err := r.settle(ctx, s); err != nil {
		return err
	}
	p.result.Checks = append(p.result.Checks, Check{Name: CheckClientSelected, Passed: true})
	return nil
}

func (r *Runner) probeButtons(ctx context.Context, _ *browser.Session, p *reporter) error {
	ia, err := r.visible(ctx, IAButton)
	if err != nil {
		return err
	}
	p.observe(CheckIAVisible, "IA button visible", ia)

	trocar, err := r.visible(ctx, TrocarButton)
	if err != nil {
		return err
	}
	p.observe(CheckTrocarVisible, "Trocar button visible", trocar)
	return nil
}

func (r *Runner) openBottomSheet(ctx context.Context, _ *browser.Session, p *reporter) error {
	p.line("Clicking card body...")
	if err := r.click(ctx, CardHeading); err != nil {
		return err
	}
	if err := r.waitFor(ctx, ActionsSheet); err != nil {
		return err
	}
	p.pass(CheckSheetOpened, "Bottom sheet 'Ações do Cliente' opened successfully.")

	if err := r.click(ctx, SheetCancel); err != nil {
		return err
	}
	// let the sheet finish its close animation
	return r.act(ctx, chromedp.Sleep(r.cfg.Timeouts.SheetSettle.Duration))
}

// clickIA only checks that the click itself goes through
func (r *Runner) clickIA(ctx context.Context, _ *browser.Session, p *reporter) error {
	p.line("Clicking IA button...")
	if err := r.click(ctx, IAButton); err != nil {
		return err
	}
	p.pass(CheckIAClicked, "IA button clicked.")
	return nil
}

func (r *Runner) clickTrocar(ctx context.Context, _ *browser.Session, p *reporter) error {
	p.line("Clicking Trocar button...")
	if err := r.click(ctx, TrocarButton); err != nil {
		return err
	}
	if err := r.waitFor(ctx, SelectClient); err != nil {
		return err
	}
	p.pass(CheckSelectionOpened, "Client selection opened successfully.")
	return nil
}

// checkDesktop resizes in place; the page is not reloaded
func (r *Runner) checkDesktop(ctx context.Context, s *browser.Session, p *reporter) error {
	p.line("Checking desktop layout...")
	err := within(ctx, r.cfg.Timeouts.Action.Duration, func(ctx context.Context) error {
		return s.SetViewport(ctx, r.cfg.Viewport.Desktop)
	})
	if err != nil {
		return err
	}
	if err := r.settle(ctx, s); err != nil {
		return err
	}

	visible, err := r.visible(ctx, DesktopCard)
	if err != nil {
		return err
	}
	p.observe(CheckDesktopCardShown, "Desktop card visible", visible)
	return nil
}
