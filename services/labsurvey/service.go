package labsurvey

import (
	"context"
	"database/sql"
	"log/slog"
	"strings"
	"time"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel/codes"

	"github.com/WasedaCreators/seiseki-viewer/lib/browser"
	"github.com/WasedaCreators/seiseki-viewer/lib/restyutil"
	"github.com/WasedaCreators/seiseki-viewer/lib/telemetry"
	"github.com/WasedaCreators/seiseki-viewer/lib/timezone"
	"github.com/WasedaCreators/seiseki-viewer/services/labsurvey/db"
)

var tracer = telemetry.Tracer("seiseki.labsurvey")

const (
	collectTimeout = 2 * time.Minute
	settleDelay    = 3 * time.Second
	queueDepth     = 4
)

type Config struct {
	// the lab preference survey page; empty disables collection
	TargetUrl string `json:"target_url"`
}

// Handoff transfers ownership of an authenticated browser session to
// the collector. After a successful Submit the collector is the only
// party allowed to Close it.
type Handoff struct {
	Session *browser.Session
	// overrides the configured survey page for this capture only
	TargetUrl string
}

// Queue collects lab survey snapshots off the request path. Scrapes
// hand their session over once the grade report is captured, so the
// user-facing request never waits on the survey page.
type Queue struct {
	cfg    Config
	qry    *db.Queries
	client *resty.Client
	jobs   chan Handoff
}

func NewQueue(ctx context.Context, database *sql.DB, cfg Config, output restyutil.InstrumentOutput) *Queue {
	client := resty.New()
	client.SetTransport(cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport))
	client.SetHeader("User-Agent", browser.DefaultUserAgent)
	client.SetRedirectPolicy(resty.DomainCheckRedirectPolicy(
		"waseda.jp", "wcms.waseda.jp", "login.microsoftonline.com",
	))
	restyutil.InstrumentClient(client, tracer, output)

	q := &Queue{
		cfg:    cfg,
		qry:    db.New(database),
		client: client,
		jobs:   make(chan Handoff, queueDepth),
	}
	go q.worker(ctx)
	return q
}

// Submit offers a session to the collector. Returns true when the
// collector took ownership; on false the caller still owns the session
// and must release it.
func (q *Queue) Submit(h Handoff) bool {
	if q == nil {
		return false
	}
	if q.cfg.TargetUrl == "" && h.TargetUrl == "" {
		return false
	}
	select {
	case q.jobs <- h:
		return true
	default:
		slog.Warn("lab survey queue full, skipping collection")
		return false
	}
}

func (q *Queue) worker(ctx context.Context) {
	slog.InfoContext(ctx, "lab survey collector started", "url", q.cfg.TargetUrl)
	for {
		select {
		case <-ctx.Done():
			// drain so in-flight handoffs don't leak browser processes
			for {
				select {
				case h := <-q.jobs:
					h.Session.Close()
				default:
					return
				}
			}
		case h := <-q.jobs:
			q.collect(ctx, h)
		}
	}
}

// collect captures one survey snapshot with the handed-off session,
// then releases it. This is the session's sole Close call after a
// handoff.
func (q *Queue) collect(ctx context.Context, h Handoff) {
	defer h.Session.Close()

	ctx, cancel := context.WithTimeout(ctx, collectTimeout)
	defer cancel()
	ctx, span := tracer.Start(ctx, "collect")
	defer span.End()

	targetUrl := h.TargetUrl
	if targetUrl == "" {
		targetUrl = q.cfg.TargetUrl
	}

	markup, err := q.fetchWithSession(ctx, h.Session, targetUrl)
	if err != nil || looksLikeLogin(markup) {
		if err != nil {
			slog.WarnContext(ctx, "browser fetch of survey page failed, retrying over http", "err", err)
		}
		markup, err = q.fetchWithClient(ctx, h.Session, targetUrl)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "survey fetch failed")
			slog.ErrorContext(ctx, "failed to fetch survey page", "err", err)
			return
		}
	}

	choices := ParseChoices(markup)
	slog.InfoContext(ctx, "captured lab survey snapshot", "choices", len(choices))

	id, err := q.qry.CreateSnapshot(ctx, db.CreateSnapshotParams{
		Url:       targetUrl,
		FetchedAt: timezone.Timestamp(timezone.Now()),
		Html:      markup,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to store snapshot")
		slog.ErrorContext(ctx, "failed to store survey snapshot", "err", err)
		return
	}
	for _, label := range choices {
		err = q.qry.CreateChoice(ctx, db.CreateChoiceParams{SnapshotID: id, Label: label})
		if err != nil {
			slog.ErrorContext(ctx, "failed to store survey choice", "err", err)
			return
		}
	}
}

func (q *Queue) fetchWithSession(ctx context.Context, session *browser.Session, url string) (string, error) {
	err := session.Navigate(ctx, url)
	if err != nil {
		return "", err
	}
	session.Settle(ctx, settleDelay)
	return session.HTML(ctx)
}

// fetchWithClient re-fetches the page over plain http, seeded with the
// session's cookies. Some survey hosts render fine without a browser
// and this is much cheaper when the tab misbehaves.
func (q *Queue) fetchWithClient(ctx context.Context, session *browser.Session, url string) (string, error) {
	cookies, err := session.Cookies(ctx)
	if err != nil {
		return "", err
	}
	res, err := q.client.R().
		SetContext(ctx).
		SetCookies(cookies).
		Get(url)
	if err != nil {
		return "", err
	}
	return string(res.Body()), nil
}

// ParseChoices pulls the selectable lab options out of survey page
// markup. The survey runs on the course LMS, whose choice activity
// renders one option label per choice.
func ParseChoices(markup string) []string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return nil
	}

	var labels []string
	doc.Find("div.option label, td.option label").Each(func(_ int, s *goquery.Selection) {
		text := strings.TrimSpace(s.Text())
		if text != "" {
			labels = append(labels, text)
		}
	})
	return labels
}

// looksLikeLogin detects a bounce back to the identity provider, which
// means the handed-off session wasn't authenticated for the LMS.
func looksLikeLogin(markup string) bool {
	return strings.Contains(markup, "loginfmt") ||
		strings.Contains(markup, "login.microsoftonline.com")
}
