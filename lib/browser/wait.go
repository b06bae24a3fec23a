package browser

import (
	"context"
	"errors"
	"time"

	"github.com/chromedp/cdproto/target"
	"github.com/chromedp/chromedp"
)

// ErrWaitTimeout reports that a bounded wait expired before its
// condition held. Callers decide whether that is fatal; several steps
// of the login flow fall through to inspecting the live page instead.
var ErrWaitTimeout = errors.New("wait timed out")

const pollInterval = 500 * time.Millisecond

// WaitLocation polls the current URL until pred accepts it or the
// timeout expires. The last observed URL is returned either way.
func (s *Session) WaitLocation(ctx context.Context, timeout time.Duration, pred func(url string) bool) (string, error) {
	deadline := time.Now().Add(timeout)
	var lastUrl string

	for {
		url, err := s.Location(ctx)
		if err != nil {
			return lastUrl, err
		}
		lastUrl = url
		if pred(url) {
			return lastUrl, nil
		}

		if time.Now().After(deadline) {
			return lastUrl, ErrWaitTimeout
		}
		select {
		case <-time.After(pollInterval):
		case <-ctx.Done():
			return lastUrl, ctx.Err()
		}
	}
}

// WaitVisible blocks until the element is rendered or the timeout
// expires.
func (s *Session) WaitVisible(ctx context.Context, timeout time.Duration, selector string) error {
	tctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	err := s.run(tctx, chromedp.WaitVisible(selector, chromedp.ByQuery))
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrWaitTimeout
	}
	return err
}

// ClickIfPresent clicks the first element matching the xpath if it
// shows up within the timeout. Absence is not an error, conditional
// affordances like the landing page login button simply aren't always
// there.
func (s *Session) ClickIfPresent(ctx context.Context, timeout time.Duration, xpath string) (bool, error) {
	tctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	err := s.run(tctx, chromedp.Click(xpath, chromedp.BySearch))
	if errors.Is(err, context.DeadlineExceeded) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *Session) pageTargets() ([]*target.Info, error) {
	infos, err := chromedp.Targets(s.ctx)
	if err != nil {
		return nil, err
	}
	var pages []*target.Info
	for _, info := range infos {
		if info.Type == "page" {
			pages = append(pages, info)
		}
	}
	return pages, nil
}

// WaitWindowCount polls until the browser has at least n page targets.
func (s *Session) WaitWindowCount(ctx context.Context, timeout time.Duration, n int) error {
	deadline := time.Now().Add(timeout)

	for {
		pages, err := s.pageTargets()
		if err != nil {
			return err
		}
		if len(pages) >= n {
			return nil
		}

		if time.Now().After(deadline) {
			return ErrWaitTimeout
		}
		select {
		case <-time.After(pollInterval):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// SwitchToNewestWindow attaches the session to the most recently
// opened page target. Subsequent operations address that window.
func (s *Session) SwitchToNewestWindow(ctx context.Context) error {
	current := chromedp.FromContext(s.ctx).Target.TargetID

	pages, err := s.pageTargets()
	if err != nil {
		return err
	}

	var newest target.ID
	for _, info := range pages {
		if info.TargetID != current {
			newest = info.TargetID
		}
	}
	if newest == "" {
		return errors.New("no other window to switch to")
	}

	tabCtx, tabCancel := chromedp.NewContext(s.ctx, chromedp.WithTargetID(newest))
	err = chromedp.Run(tabCtx)
	if err != nil {
		tabCancel()
		return err
	}

	s.ctx = tabCtx
	s.tabCancels = append(s.tabCancels, tabCancel)
	return nil
}
