package web

import (
	"net/http"
)

// handleListWorkers returns every worker as a JSON array.
func (s *Server) handleListWorkers(w http.ResponseWriter, r *http.Request) {
	workers, err := s.service.ListWorkers(r.Context())
	if err != nil {
		respondError(w, r, err, http.StatusInternalServerError, "Database query failed")
		return
	}
	writeJSON(w, r, http.StatusOK, workers)
}
