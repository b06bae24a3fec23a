package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/WasedaCreators/seiseki-viewer/services/gradereport"
	"github.com/WasedaCreators/seiseki-viewer/services/gradereport/portal"
)

const scrapeTimeout = 5 * time.Minute

const indexPage = `<!DOCTYPE html>
<html lang="ja">
<head><meta charset="utf-8"><title>成績照会</title></head>
<body>
<h1>成績照会</h1>
<form action="/grades" method="post">
  <label>Waseda ID <input type="text" name="username" required></label><br>
  <label>Password <input type="password" name="password" required></label><br>
  <button type="submit">照会</button>
</form>
</body>
</html>
`

type gradeResponse struct {
	Status       string                     `json:"status"`
	Grades       []gradereport.CourseRecord `json:"grades"`
	StudentID    string                     `json:"student_id"`
	AverageScore string                     `json:"average_score"`
}

type errorResponse struct {
	Status     string `json:"status"`
	Message    string `json:"message"`
	CurrentURL string `json:"current_url,omitempty"`
}

func registerGradeRoutes(mux *http.ServeMux, svc gradereport.Service) {
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		setCorsHeaders(w)
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, indexPage)
	})

	mux.HandleFunc("POST /grades", func(w http.ResponseWriter, r *http.Request) {
		setCorsHeaders(w)

		// the frontend posts multipart form data, curl users tend not to
		err := r.ParseMultipartForm(1 << 20)
		if err != nil {
			err = r.ParseForm()
		}
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid form data", "")
			return
		}
		username := r.FormValue("username")
		password := r.FormValue("password")
		if username == "" || password == "" {
			writeError(w, http.StatusBadRequest, "username and password are required", "")
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), scrapeTimeout)
		defer cancel()

		report, err := svc.FetchGrades(ctx, username, password)
		if err != nil {
			writeGradeError(ctx, w, err)
			return
		}

		if report.Grades == nil {
			// the frontend expects a list, not null
			report.Grades = []gradereport.CourseRecord{}
		}
		writeJson(w, http.StatusOK, gradeResponse{
			Status:       "success",
			Grades:       report.Grades,
			StudentID:    report.StudentID,
			AverageScore: fmt.Sprintf("%.2f", report.Average),
		})
	})
}

func writeGradeError(ctx context.Context, w http.ResponseWriter, err error) {
	var authErr *portal.AuthIncompleteError
	var navErr *portal.NavigationError

	switch {
	case errors.Is(err, gradereport.ErrWrongCohort):
		writeError(w, http.StatusBadRequest, "総合機械工学科専用だよ", "")
	case errors.Is(err, gradereport.ErrWrongYear):
		writeError(w, http.StatusBadRequest, "学年が違うよ", "")
	case errors.As(err, &authErr):
		writeError(
			w, http.StatusUnauthorized,
			"Login incomplete. Possible 2FA required or wrong credentials.",
			authErr.LastURL,
		)
	case errors.As(err, &navErr):
		slog.ErrorContext(ctx, "scrape failed", "step", navErr.Step, "err", err)
		writeError(w, http.StatusInternalServerError, navErr.Error(), navErr.LastURL)
	default:
		slog.ErrorContext(ctx, "scrape failed", "err", err)
		writeError(w, http.StatusInternalServerError, err.Error(), "")
	}
}

func writeError(w http.ResponseWriter, status int, message, currentUrl string) {
	writeJson(w, status, errorResponse{
		Status:     "error",
		Message:    message,
		CurrentURL: currentUrl,
	})
}

func writeJson(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	err := json.NewEncoder(w).Encode(body)
	if err != nil {
		slog.Error("failed to encode response", "err", err)
	}
}
