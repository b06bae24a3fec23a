package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/WasedaCreators/seiseki-viewer/services/admin"
	"github.com/WasedaCreators/seiseki-viewer/services/gradereport/db"
)

type adminLoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type adminLoginResponse struct {
	Status string `json:"status"`
	Token  string `json:"token"`
}

type adminDataRow struct {
	StudentID string `json:"student_id"`
	AvgGpa    string `json:"avg_gpa"`
	Timestamp string `json:"timestamp"`
}

type adminUpdateRequest struct {
	AvgGpa float64 `json:"avg_gpa"`
}

type adminStatusResponse struct {
	Status string `json:"status"`
}

func registerAdminRoutes(mux *http.ServeMux, svc *admin.Service) {
	mux.HandleFunc("POST /admin/login", func(w http.ResponseWriter, r *http.Request) {
		setCorsHeaders(w)

		var req adminLoginRequest
		err := json.NewDecoder(r.Body).Decode(&req)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body", "")
			return
		}

		token, err := svc.Login(r.Context(), req.Username, req.Password)
		if errors.Is(err, admin.ErrInvalidCredentials) {
			writeError(w, http.StatusUnauthorized, err.Error(), "")
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error(), "")
			return
		}
		writeJson(w, http.StatusOK, adminLoginResponse{Status: "success", Token: token})
	})

	mux.HandleFunc("GET /admin/data", func(w http.ResponseWriter, r *http.Request) {
		setCorsHeaders(w)
		if !authorized(svc, w, r) {
			return
		}

		rows, err := svc.ListData(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error(), "")
			return
		}
		writeJson(w, http.StatusOK, formatRows(rows))
	})

	mux.HandleFunc("PUT /admin/data/{student_id}", func(w http.ResponseWriter, r *http.Request) {
		setCorsHeaders(w)
		if !authorized(svc, w, r) {
			return
		}

		var req adminUpdateRequest
		err := json.NewDecoder(r.Body).Decode(&req)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body", "")
			return
		}

		err = svc.UpdateGPA(r.Context(), r.PathValue("student_id"), req.AvgGpa)
		if errors.Is(err, admin.ErrNotFound) {
			writeError(w, http.StatusNotFound, err.Error(), "")
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error(), "")
			return
		}
		writeJson(w, http.StatusOK, adminStatusResponse{Status: "success"})
	})

	mux.HandleFunc("DELETE /admin/data/{student_id}", func(w http.ResponseWriter, r *http.Request) {
		setCorsHeaders(w)
		if !authorized(svc, w, r) {
			return
		}

		err := svc.DeleteStudent(r.Context(), r.PathValue("student_id"))
		if errors.Is(err, admin.ErrNotFound) {
			writeError(w, http.StatusNotFound, err.Error(), "")
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error(), "")
			return
		}
		writeJson(w, http.StatusOK, adminStatusResponse{Status: "success"})
	})
}

func authorized(svc *admin.Service, w http.ResponseWriter, r *http.Request) bool {
	if !svc.VerifyToken(r.Context(), r.Header.Get("X-Admin-Token")) {
		writeError(w, http.StatusUnauthorized, "invalid or expired token", "")
		return false
	}
	return true
}

func formatRows(rows []db.GpaRow) []adminDataRow {
	out := make([]adminDataRow, len(rows))
	for i, row := range rows {
		out[i] = adminDataRow{
			StudentID: row.StudentID,
			AvgGpa:    strconv.FormatFloat(row.AvgGpa, 'f', 2, 64),
			Timestamp: row.Timestamp,
		}
	}
	return out
}
