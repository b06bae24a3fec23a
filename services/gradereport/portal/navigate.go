package portal

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/WasedaCreators/seiseki-viewer/lib/browser"
	"github.com/WasedaCreators/seiseki-viewer/lib/telemetry"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = telemetry.Tracer("seiseki.gradereport.portal")

const (
	// bound on every redirect/element wait
	redirectTimeout = 20 * time.Second
	elementTimeout  = 20 * time.Second
	// how long to probe for conditional affordances before assuming
	// they aren't there
	probeTimeout = 3 * time.Second
	// fixed delays for pages with no reliable load-complete signal
	settleDelay      = 3 * time.Second
	gradeSettleDelay = 5 * time.Second
)

// Navigator drives a browser session through the federated login and
// menu sequence up to a populated grade page. It does not own the
// session's lifetime; the caller releases it.
type Navigator struct {
	session *browser.Session
	pages   Pages
}

func NewNavigator(session *browser.Session, pages Pages) Navigator {
	return Navigator{session: session, pages: pages}
}

// fail wraps a step failure with the last URL the session saw. The
// caller's context may already be dead, so the lookup gets its own.
func (n Navigator) fail(step string, cause error) error {
	lctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	last, _ := n.session.Location(lctx)
	return &NavigationError{Step: step, LastURL: last, Cause: cause}
}

// FetchGradePage performs one attempt of the whole sequence:
// entry → (conditional login affordance) → identity provider login if
// redirected there → menu → grade window → results markup.
func (n Navigator) FetchGradePage(ctx context.Context, username, password string) (Result, error) {
	ctx, span := tracer.Start(ctx, "FetchGradePage")
	defer span.End()

	err := n.session.Navigate(ctx, n.pages.LoginEntryURL)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to open login entry")
		return Result{}, n.fail("open entry", err)
	}
	n.session.Settle(ctx, settleDelay)

	clicked, err := n.session.ClickIfPresent(ctx, probeTimeout, n.pages.LandingLoginXPath)
	if err != nil {
		// the landing page probe is best-effort, a broken probe must
		// not sink an otherwise working flow
		slog.WarnContext(ctx, "landing login probe failed", "err", err)
	}
	if clicked {
		slog.DebugContext(ctx, "clicked landing login link")
		n.session.Settle(ctx, settleDelay)
	}

	current, err := n.session.WaitLocation(ctx, redirectTimeout, func(url string) bool {
		return strings.Contains(url, n.pages.IdentityProviderHost) ||
			strings.Contains(url, n.pages.PortalURLMarker)
	})
	if err != nil && !errors.Is(err, browser.ErrWaitTimeout) {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed waiting for entry redirect")
		return Result{}, n.fail("entry redirect", err)
	}
	if errors.Is(err, browser.ErrWaitTimeout) {
		// not necessarily fatal, the branch below inspects the live
		// URL either way
		slog.WarnContext(ctx, "timed out waiting for entry redirect", "url", current)
	}
	span.SetAttributes(attribute.String("entry_url", current))

	switch {
	case strings.Contains(current, n.pages.IdentityProviderHost):
		err := n.loginIdentityProvider(ctx, username, password)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "identity provider login failed")
			return Result{}, err
		}
	case strings.Contains(current, n.pages.PortalURLMarker):
		slog.InfoContext(ctx, "already authenticated, skipping identity provider")
	}

	return n.openGradePage(ctx)
}

// loginIdentityProvider runs the username → password → stay-signed-in
// sequence on the identity provider, each step gated by a bounded wait
// for the target element.
func (n Navigator) loginIdentityProvider(ctx context.Context, username, password string) error {
	ctx, span := tracer.Start(ctx, "loginIdentityProvider")
	defer span.End()

	err := n.session.WaitVisible(ctx, elementTimeout, n.pages.EmailField)
	if err != nil {
		return n.fail("wait email field", err)
	}
	err = n.session.SendKeys(ctx, n.pages.EmailField, username)
	if err != nil {
		return n.fail("enter username", err)
	}
	err = n.clickBounded(ctx, n.pages.SubmitButton)
	if err != nil {
		return n.fail("submit username", err)
	}

	err = n.session.WaitVisible(ctx, elementTimeout, n.pages.PasswordField)
	if err != nil {
		return n.fail("wait password field", err)
	}
	err = n.session.SendKeys(ctx, n.pages.PasswordField, password)
	if err != nil {
		return n.fail("enter password", err)
	}
	err = n.clickBounded(ctx, n.pages.SubmitButton)
	if err != nil {
		return n.fail("submit password", err)
	}

	// the "stay signed in?" prompt doesn't always appear
	dismissed, err := n.session.ClickIfPresent(ctx, probeTimeout, xpathForID(n.pages.StaySignedInNo))
	if err != nil {
		slog.WarnContext(ctx, "stay signed in probe failed", "err", err)
	}
	if !dismissed {
		slog.DebugContext(ctx, "stay signed in prompt did not appear")
	}

	last, err := n.session.WaitLocation(ctx, redirectTimeout, func(url string) bool {
		return strings.Contains(url, n.pages.PortalURLMarker)
	})
	if errors.Is(err, browser.ErrWaitTimeout) {
		if strings.Contains(last, n.pages.IdentityProviderHost) {
			// never left the identity provider: extra verification
			// required or wrong credentials, not an automation bug
			authErr := &AuthIncompleteError{LastURL: last}
			span.RecordError(authErr)
			span.SetStatus(codes.Error, "login incomplete")
			return authErr
		}
		slog.WarnContext(ctx, "timed out waiting for portal redirect", "url", last)
		return nil
	}
	if err != nil {
		return n.fail("portal redirect", err)
	}

	slog.InfoContext(ctx, "login successful, redirected to portal")
	return nil
}

// openGradePage navigates the menu, follows the grade inquiry link
// into its new window and captures the results markup.
func (n Navigator) openGradePage(ctx context.Context) (Result, error) {
	ctx, span := tracer.Start(ctx, "openGradePage")
	defer span.End()

	err := n.session.Navigate(ctx, n.pages.MenuURL)
	if err != nil {
		return Result{}, n.fail("open menu", err)
	}
	// the menu page exposes no load-complete signal
	n.session.Settle(ctx, settleDelay)

	cctx, cancel := context.WithTimeout(ctx, elementTimeout)
	err = n.session.ClickXPath(cctx, n.pages.GradeLinkXPath)
	cancel()
	if err != nil {
		return Result{}, n.fail("click grade link", err)
	}

	err = n.session.WaitWindowCount(ctx, redirectTimeout, 2)
	if err != nil {
		return Result{}, n.fail("wait grade window", err)
	}
	err = n.session.SwitchToNewestWindow(ctx)
	if err != nil {
		return Result{}, n.fail("switch to grade window", err)
	}
	n.session.Settle(ctx, gradeSettleDelay)

	markup, err := n.session.HTML(ctx)
	if err != nil {
		return Result{}, n.fail("read grade page", err)
	}

	if strings.Contains(markup, n.pages.PageMarker) && !strings.Contains(markup, n.pages.ResultsMarker) {
		// landed on the search/filter page instead of the listing
		slog.InfoContext(ctx, "on search condition page, requesting results")
		clicked, err := n.session.ClickIfPresent(ctx, elementTimeout, n.pages.DisplayButtonXPath)
		if err != nil {
			slog.WarnContext(ctx, "display button probe failed", "err", err)
		}
		if clicked {
			n.session.Settle(ctx, settleDelay)
			markup, err = n.session.HTML(ctx)
			if err != nil {
				return Result{}, n.fail("re-read grade page", err)
			}
		}
	}

	lctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	last, _ := n.session.Location(lctx)
	cancel()

	span.SetAttributes(attribute.String("grade_url", last))
	return Result{Markup: markup, LastURL: last}, nil
}

func (n Navigator) clickBounded(ctx context.Context, selector string) error {
	cctx, cancel := context.WithTimeout(ctx, elementTimeout)
	defer cancel()
	return n.session.Click(cctx, selector)
}

// xpathForID turns a #id selector into the xpath form ClickIfPresent
// expects.
func xpathForID(selector string) string {
	return `//*[@id='` + strings.TrimPrefix(selector, "#") + `']`
}
