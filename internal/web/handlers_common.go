package web

// Shared request decoding plus the non-API pages: index, health.

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/JonMunkholm/workerdesk/internal/core"
	"github.com/JonMunkholm/workerdesk/internal/logging"
	"github.com/JonMunkholm/workerdesk/internal/web/templates"
)

// maxJSONBody bounds the size of JSON request bodies (1MB).
const maxJSONBody = 1 << 20

// healthTimeout bounds the database ping done by /health.
const healthTimeout = 2 * time.Second

// workerID is a worker id that decodes from a JSON number or a numeric string.
type workerID int64

func (id *workerID) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" {
		return nil
	}
	if strings.HasPrefix(s, `"`) {
		unquoted, err := strconv.Unquote(s)
		if err != nil {
			return errInvalidID
		}
		s = strings.TrimSpace(unquoted)
	}

	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n <= 0 {
		return errInvalidID
	}
	*id = workerID(n)
	return nil
}

// workerRequest is the JSON body of add, edit and delete.
// Absent text fields decode as empty strings.
type workerRequest struct {
	ID            *workerID `json:"id"`
	Name          string    `json:"name"`
	EmployeeID    string    `json:"employee_id"`
	Email         string    `json:"email"`
	PhoneNumber   string    `json:"phone_number"`
	Department    string    `json:"department"`
	DateOfBirth   string    `json:"date_of_birth"`
	DateOfJoining string    `json:"date_of_joining"`
	Role          string    `json:"role"`
}

func (req workerRequest) input() core.WorkerInput {
	return core.WorkerInput{
		Name:          req.Name,
		EmployeeID:    req.EmployeeID,
		Email:         req.Email,
		PhoneNumber:   req.PhoneNumber,
		Department:    req.Department,
		DateOfBirth:   req.DateOfBirth,
		DateOfJoining: req.DateOfJoining,
		Role:          req.Role,
	}
}

// id returns the request's worker id, or errInvalidID when it is missing.
func (req workerRequest) id() (int64, error) {
	if req.ID == nil {
		return 0, errInvalidID
	}
	return int64(*req.ID), nil
}

// decodeWorkerRequest reads a workerRequest from the body of r.
func decodeWorkerRequest(w http.ResponseWriter, r *http.Request) (workerRequest, error) {
	var req workerRequest

	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if errors.Is(err, errInvalidID) {
			return req, errInvalidID
		}
		return req, fmt.Errorf("%w: %v", errInvalidBody, err)
	}
	return req, nil
}

// handleIndex renders the worker list with an upload form.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	workers, err := s.service.ListWorkers(r.Context())
	if err != nil {
		respondError(w, r, err, http.StatusInternalServerError, "Database query failed")
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	page := templates.Index(workers, s.cfg.Server.APIPrefix+"/workers/upload")
	if err := page.Render(r.Context(), w); err != nil {
		logging.FromContext(r.Context()).Error("render index", "error", err)
	}
}

// healthResponse is the body of GET /health.
type healthResponse struct {
	Status        string `json:"status"`
	ActiveImports int    `json:"active_imports"`
	Error         string `json:"error,omitempty"`
}

// handleHealth reports whether the database is reachable.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
	defer cancel()

	resp := healthResponse{Status: "ok", ActiveImports: s.service.ImportStatus().Active}
	if err := s.service.Ping(ctx); err != nil {
		resp.Status = "unavailable"
		resp.Error = core.MapError(err).Code
		writeJSON(w, r, http.StatusServiceUnavailable, resp)
		return
	}
	writeJSON(w, r, http.StatusOK, resp)
}
