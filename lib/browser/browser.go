package browser

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/storage"
	"github.com/chromedp/chromedp"
)

const DefaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

type Options struct {
	// Headless defaults to true, set Headful to watch the login flow
	// while re-tuning selectors.
	Headful   bool
	UserAgent string
}

// Session owns exactly one Chrome process and its active tab. It is
// not safe for concurrent use; each scrape owns its own Session and
// must release it with Close exactly once (Close is idempotent).
type Session struct {
	ctx         context.Context
	allocCancel context.CancelFunc
	tabCancels  []context.CancelFunc
	closeOnce   sync.Once
}

func NewSession(opts Options) (*Session, error) {
	ua := opts.UserAgent
	if ua == "" {
		ua = DefaultUserAgent
	}

	allocOpts := append(
		chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", !opts.Headful),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-notifications", true),
		chromedp.Flag("disable-popup-blocking", true),
		chromedp.Flag("mute-audio", true),
		chromedp.WindowSize(1920, 1080),
		chromedp.UserAgent(ua),
	)

	// the allocator hangs off the background context on purpose: the
	// session may outlive the request that created it (deferred
	// collectors), its lifetime is governed by Close, not by the
	// request context.
	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), allocOpts...)
	tabCtx, tabCancel := chromedp.NewContext(allocCtx)

	s := &Session{
		ctx:         tabCtx,
		allocCancel: allocCancel,
		tabCancels:  []context.CancelFunc{tabCancel},
	}

	// starts the browser process eagerly so a broken chrome install
	// fails here instead of in the middle of a login flow
	err := chromedp.Run(tabCtx)
	if err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

// run executes chromedp actions against the active tab, bounded by the
// caller's deadline when one is set.
func (s *Session) run(ctx context.Context, actions ...chromedp.Action) error {
	runCtx := s.ctx
	if deadline, ok := ctx.Deadline(); ok {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithDeadline(s.ctx, deadline)
		defer cancel()
	}
	return chromedp.Run(runCtx, actions...)
}

func (s *Session) Navigate(ctx context.Context, url string) error {
	return s.run(ctx, chromedp.Navigate(url))
}

func (s *Session) Location(ctx context.Context) (string, error) {
	var url string
	err := s.run(ctx, chromedp.Location(&url))
	return url, err
}

func (s *Session) HTML(ctx context.Context) (string, error) {
	var out string
	err := s.run(ctx, chromedp.OuterHTML("html", &out, chromedp.ByQuery))
	return out, err
}

func (s *Session) Click(ctx context.Context, selector string) error {
	return s.run(ctx, chromedp.Click(selector, chromedp.ByQuery, chromedp.NodeVisible))
}

func (s *Session) ClickXPath(ctx context.Context, xpath string) error {
	return s.run(ctx, chromedp.Click(xpath, chromedp.BySearch))
}

func (s *Session) SendKeys(ctx context.Context, selector, text string) error {
	return s.run(ctx,
		chromedp.Clear(selector, chromedp.ByQuery),
		chromedp.SendKeys(selector, text, chromedp.ByQuery),
	)
}

// Settle waits a fixed delay, for pages that expose no reliable
// load-complete signal.
func (s *Session) Settle(ctx context.Context, d time.Duration) {
	select {
	case <-time.After(d):
	case <-ctx.Done():
	}
}

// Cookies returns the cookies of the whole browser context, used to
// seed plain HTTP clients with an already-authenticated session.
func (s *Session) Cookies(ctx context.Context) ([]*http.Cookie, error) {
	var raw []*network.Cookie
	err := s.run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		var err error
		raw, err = storage.GetCookies().Do(ctx)
		return err
	}))
	if err != nil {
		return nil, err
	}

	cookies := make([]*http.Cookie, len(raw))
	for i, c := range raw {
		cookies[i] = &http.Cookie{
			Name:   c.Name,
			Value:  c.Value,
			Domain: c.Domain,
			Path:   c.Path,
			Secure: c.Secure,
		}
	}
	return cookies, nil
}

// Close releases the Chrome process. Safe to call more than once, only
// the first call does anything.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		for i := len(s.tabCancels) - 1; i >= 0; i-- {
			s.tabCancels[i]()
		}
		if s.allocCancel != nil {
			s.allocCancel()
		}
	})
}
