package browser

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/chromedp/chromedp"
)

// Kind says how a Locator's query is interpreted
type Kind int

const (
	KindCSS Kind = iota
	KindText
)

const (
	pollInterval = 100 * time.Millisecond
	clickAttr    = "data-cardcheck-click"
)

var clickSeq atomic.Uint64

// Locator identifies an element by CSS selector or by visible text.
//
// A CSS locator resolves to the first match in document order. A text
// locator matches elements whose whole text, with whitespace collapsed and
// case ignored, contains the query, including text split across child
// elements. Of those it keeps the innermost ones and resolves to the first
// that is visible, so hidden copies of the same label do not get in the way.
type Locator struct {
	Kind  Kind
	Query string
}

// CSS returns a locator for a CSS selector
func CSS(selector string) Locator {
	return Locator{Kind: KindCSS, Query: selector}
}

// Text returns a locator for elements whose text contains s
func Text(s string) Locator {
	return Locator{Kind: KindText, Query: s}
}

func (l Locator) String() string {
	if l.Kind == KindText {
		return "text=" + l.Query
	}
	return l.Query
}

const isVisibleJS = `function(el) {
		if (!el) return false;
		if (window.getComputedStyle(el).visibility === 'hidden') return false;
		const rect = el.getBoundingClientRect();
		return rect.width > 0 && rect.height > 0;
	}`

// textMatchJS finds the innermost elements under body whose normalised
// text contains the query and returns the first visible one, or null.
// Script and style contents do not count as text.
const textMatchJS = `(function(query, isVisible) {
		const norm = (s) => s.replace(/\s+/g, ' ').trim().toLowerCase();
		const skip = new Set(['SCRIPT', 'STYLE', 'NOSCRIPT', 'TEMPLATE']);
		const textOf = (node) => {
			let out = '';
			for (const child of node.childNodes) {
				if (child.nodeType === Node.TEXT_NODE) out += child.nodeValue;
				else if (child.nodeType === Node.ELEMENT_NODE && !skip.has(child.tagName)) out += textOf(child);
			}
			return out;
		};
		const q = norm(query);
		const matches = (el) => !skip.has(el.tagName) && norm(textOf(el)).includes(q);
		if (!document.body || !matches(document.body)) return null;
		const all = [document.body, ...document.body.querySelectorAll('*')];
		for (const el of all) {
			if (!matches(el)) continue;
			if (Array.from(el.children).some(matches)) continue;
			if (isVisible(el)) return el;
		}
		return null;
	})(%s, %s)`

// resolveJS is a JS expression evaluating to the element the locator
// resolves to, or null.
func (l Locator) resolveJS() string {
	if l.Kind == KindText {
		return fmt.Sprintf(textMatchJS, jsString(l.Query), isVisibleJS)
	}
	return fmt.Sprintf("document.querySelector(%s)", jsString(l.Query))
}

// VisibleJS returns a JS expression that is true when the locator resolves
// to a visible element: present, not visibility:hidden, non-empty box.
func (l Locator) VisibleJS() string {
	return "(" + isVisibleJS + ")(" + l.resolveJS() + ")"
}

// Visible reports whether the element is visible right now. It does not
// wait; a missing element is simply not visible.
func (l Locator) Visible(ctx context.Context) (bool, error) {
	var visible bool
	if err := chromedp.Run(ctx, chromedp.Evaluate(l.VisibleJS(), &visible)); err != nil {
		return false, fmt.Errorf("checking visibility of %s: %w", l, err)
	}
	return visible, nil
}

// WaitVisible waits until the locator resolves to a visible element
func (l Locator) WaitVisible() chromedp.Action {
	if l.Kind == KindCSS {
		return chromedp.WaitVisible(l.Query, chromedp.ByQuery)
	}
	return chromedp.ActionFunc(func(ctx context.Context) error {
		return l.poll(ctx, l.VisibleJS())
	})
}

// Click waits for the element to be visible and clicks its center
func (l Locator) Click() chromedp.Action {
	if l.Kind == KindCSS {
		return chromedp.Click(l.Query, chromedp.ByQuery)
	}
	return chromedp.ActionFunc(func(ctx context.Context) error {
		// tag the resolved element so the click goes through the normal
		// node query and mouse event path
		token := strconv.FormatUint(clickSeq.Add(1), 10)
		mark := fmt.Sprintf(`(function(el) {
		if (!el) return false;
		el.setAttribute(%q, %q);
		return true;
	})(%s)`, clickAttr, token, l.resolveJS())

		if err := l.poll(ctx, mark); err != nil {
			return err
		}
		return chromedp.Click(fmt.Sprintf(`[%s="%s"]`, clickAttr, token), chromedp.ByQuery).Do(ctx)
	})
}

// poll evaluates expr until it returns true or ctx ends
func (l Locator) poll(ctx context.Context, expr string) error {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		var ok bool
		if err := chromedp.Evaluate(expr, &ok).Do(ctx); err != nil {
			return fmt.Errorf("evaluating %s: %w", l, err)
		}
		if ok {
			return nil
		}

		select {
		case <-ticker.C:
		case <-ctx.Done():
			return fmt.Errorf("%s not visible: %w", l, ctx.Err())
		}
	}
}

// jsString quotes s as a JS string literal
func jsString(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}
