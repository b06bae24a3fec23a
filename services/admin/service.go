package admin

import (
	"context"
	"crypto/sha512"
	"crypto/subtle"
	"database/sql"
	"encoding/hex"
	"errors"
	"log/slog"
	"sync"
	"time"

	random "github.com/mazen160/go-random"
	"go.opentelemetry.io/otel/codes"

	"github.com/WasedaCreators/seiseki-viewer/lib/telemetry"
	"github.com/WasedaCreators/seiseki-viewer/lib/timezone"
	"github.com/WasedaCreators/seiseki-viewer/services/gradereport/db"
)

var tracer = telemetry.Tracer("seiseki.admin")

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrNotFound           = errors.New("no such student")
)

const (
	tokenLength = 32
	sessionTTL  = 12 * time.Hour
)

// Service manages the review surface over the stored averages. Admin
// accounts live in the same database as the data they review.
type Service struct {
	qry *db.Queries

	mu       sync.Mutex
	sessions map[string]time.Time
}

func NewService(database *sql.DB) *Service {
	return &Service{
		qry:      db.New(database),
		sessions: make(map[string]time.Time),
	}
}

func hashPassword(password string) string {
	sum := sha512.Sum512([]byte(password))
	return hex.EncodeToString(sum[:])
}

// Login checks the credentials against the users table and mints a
// session token. Passwords are stored as hex SHA-512.
func (s *Service) Login(ctx context.Context, username, password string) (string, error) {
	ctx, span := tracer.Start(ctx, "Login")
	defer span.End()

	stored, err := s.qry.GetUserPassword(ctx, username)
	if err == sql.ErrNoRows {
		return "", ErrInvalidCredentials
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to look up user")
		return "", err
	}

	given := hashPassword(password)
	if subtle.ConstantTimeCompare([]byte(given), []byte(stored)) != 1 {
		slog.WarnContext(ctx, "rejected admin login", "username", username)
		return "", ErrInvalidCredentials
	}

	token, err := random.String(tokenLength)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to mint token")
		return "", err
	}

	s.mu.Lock()
	s.sessions[token] = time.Now().Add(sessionTTL)
	s.mu.Unlock()

	slog.InfoContext(ctx, "admin logged in", "username", username)
	return token, nil
}

// VerifyToken accepts either a live session token or, for older
// clients that stored the password hash directly, a token whose
// SHA-512 matches a stored password.
func (s *Service) VerifyToken(ctx context.Context, token string) bool {
	if token == "" {
		return false
	}

	s.mu.Lock()
	expiry, ok := s.sessions[token]
	if ok && time.Now().After(expiry) {
		delete(s.sessions, token)
		ok = false
	}
	s.mu.Unlock()
	if ok {
		return true
	}

	found, err := s.qry.FindPasswordHash(ctx, hashPassword(token))
	if err != nil {
		slog.ErrorContext(ctx, "failed to verify token", "err", err)
		return false
	}
	return found
}

func (s *Service) ListData(ctx context.Context) ([]db.GpaRow, error) {
	ctx, span := tracer.Start(ctx, "ListData")
	defer span.End()

	rows, err := s.qry.GetAllGPA(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to list data")
		return nil, err
	}
	return rows, nil
}

// UpdateGPA overwrites one stored average, refreshing its timestamp.
func (s *Service) UpdateGPA(ctx context.Context, studentID string, average float64) error {
	ctx, span := tracer.Start(ctx, "UpdateGPA")
	defer span.End()

	affected, err := s.qry.UpdateGPA(ctx, db.UpdateGPAParams{
		StudentID: studentID,
		AvgGpa:    average,
		Timestamp: timezone.Timestamp(timezone.Now()),
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to update")
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	slog.InfoContext(ctx, "updated stored average", "student_id", studentID)
	return nil
}

func (s *Service) DeleteStudent(ctx context.Context, studentID string) error {
	ctx, span := tracer.Start(ctx, "DeleteStudent")
	defer span.End()

	affected, err := s.qry.DeleteGPA(ctx, studentID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to delete")
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	slog.InfoContext(ctx, "deleted stored average", "student_id", studentID)
	return nil
}
