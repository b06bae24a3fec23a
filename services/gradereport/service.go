package gradereport

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/WasedaCreators/seiseki-viewer/lib/browser"
	"github.com/WasedaCreators/seiseki-viewer/lib/telemetry"
	"github.com/WasedaCreators/seiseki-viewer/lib/timezone"
	"github.com/WasedaCreators/seiseki-viewer/services/gradereport/db"
	"github.com/WasedaCreators/seiseki-viewer/services/gradereport/portal"
	"github.com/WasedaCreators/seiseki-viewer/services/labsurvey"
)

var tracer = telemetry.Tracer("seiseki.gradereport")

type Options struct {
	// candidate locations of the required-course csv, first hit wins
	RequirementPaths []string
	Rules            Rules
	Pages            portal.Pages
	Headful          bool
	// optional deferred collector; when set, sessions of successful
	// scrapes are handed to it instead of being closed here
	Survey *labsurvey.Queue
}

type Service struct {
	db   *sql.DB
	qry  *db.Queries
	opts Options
}

func NewService(database *sql.DB, opts Options) Service {
	return Service{
		db:   database,
		qry:  db.New(database),
		opts: opts,
	}
}

// Report is what one successful scrape produces for the caller.
type Report struct {
	// the raw student id as seen on the page, UnknownID when absent
	StudentID string
	Grades    []CourseRecord
	Average   float64
	Unmatched []UnmatchedRequirement
}

// FetchGrades runs one full scrape: drive the portal login, capture
// the grade page, gate on the student's cohort, compute the weighted
// required-course average and persist it. Persistence failures are
// logged but don't fail the report; the user still gets their numbers.
func (s Service) FetchGrades(ctx context.Context, username, password string) (Report, error) {
	ctx, span := tracer.Start(ctx, "FetchGrades")
	defer span.End()

	session, err := browser.NewSession(browser.Options{Headful: s.opts.Headful})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to start browser")
		return Report{}, fmt.Errorf("start browser: %w", err)
	}
	handedOff := false
	defer func() {
		if !handedOff {
			session.Close()
		}
	}()

	nav := portal.NewNavigator(session, s.opts.Pages)
	page, err := nav.FetchGradePage(ctx, username, password)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "navigation failed")
		return Report{}, err
	}

	identity, found := ResolveIdentity(page.Markup)
	if !found {
		slog.WarnContext(ctx, "no student id found on grade page")
	}
	err = identity.CheckEligibility(s.opts.Rules)
	if err != nil {
		span.SetAttributes(attribute.String("student_year", identity.Year))
		return Report{}, err
	}

	records, err := ExtractRecords(page.Markup)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "extraction failed")
		return Report{}, err
	}
	span.SetAttributes(attribute.Int("record_count", len(records)))

	// snapshot the list per computation, edits to the csv take effect
	// on the next scrape without mixing into this one
	required, err := LoadRequirements(s.opts.RequirementPaths...)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "requirements unavailable")
		return Report{}, err
	}

	result := Aggregate(records, required, s.opts.Rules)
	unmatched := DiagnoseUnmatched(result, required, records)
	for _, miss := range unmatched {
		slog.WarnContext(
			ctx, "requirement matched no course",
			"name", miss.Name,
			"closest", miss.ClosestSubject,
			"similarity", miss.Similarity,
		)
	}
	slog.InfoContext(
		ctx, "computed required-course average",
		"records", len(records),
		"matched", len(result.Matches),
		"average", result.Average,
	)

	err = s.qry.UpsertGPA(ctx, db.UpsertGPAParams{
		StudentID: identity.Hash(),
		AvgGpa:    result.Average,
		Timestamp: timezone.Timestamp(timezone.Now()),
	})
	if err != nil {
		span.RecordError(err)
		slog.ErrorContext(ctx, "failed to persist average", "err", err)
	}

	if s.opts.Survey.Submit(labsurvey.Handoff{Session: session}) {
		handedOff = true
		slog.DebugContext(ctx, "session handed to lab survey collector")
	}

	return Report{
		StudentID: identity.Raw,
		Grades:    records,
		Average:   result.Average,
		Unmatched: unmatched,
	}, nil
}
