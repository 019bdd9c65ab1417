package web

import (
	"net/http"
)

// mutationResponse is the success body of add, edit and delete.
type mutationResponse struct {
	Message string `json:"message"`
	ID      int64  `json:"id,omitempty"`
}

// handleAddWorker creates one worker from a JSON body.
func (s *Server) handleAddWorker(w http.ResponseWriter, r *http.Request) {
	req, err := decodeWorkerRequest(w, r)
	if err != nil {
		respondError(w, r, err, statusFor(err), "Failed to add worker")
		return
	}

	id, err := s.service.AddWorker(r.Context(), req.input())
	if err != nil {
		respondError(w, r, err, statusFor(err), "Failed to add worker")
		return
	}

	writeJSON(w, r, http.StatusOK, mutationResponse{Message: "Worker added successfully", ID: id})
}

// handleEditWorker overwrites every field of the worker named by the body's id.
func (s *Server) handleEditWorker(w http.ResponseWriter, r *http.Request) {
	const summary = "Failed to update worker"

	req, err := decodeWorkerRequest(w, r)
	if err != nil {
		respondError(w, r, err, statusFor(err), summary)
		return
	}
	id, err := req.id()
	if err != nil {
		respondError(w, r, err, statusFor(err), summary)
		return
	}

	if err := s.service.EditWorker(r.Context(), id, req.input()); err != nil {
		respondError(w, r, err, statusFor(err), summary)
		return
	}

	writeJSON(w, r, http.StatusOK, mutationResponse{Message: "Worker updated successfully"})
}

// handleDeleteWorker removes the worker named by the body's id.
func (s *Server) handleDeleteWorker(w http.ResponseWriter, r *http.Request) {
	const summary = "Failed to delete worker"

	req, err := decodeWorkerRequest(w, r)
	if err != nil {
		respondError(w, r, err, statusFor(err), summary)
		return
	}
	id, err := req.id()
	if err != nil {
		respondError(w, r, err, statusFor(err), summary)
		return
	}

	if err := s.service.DeleteWorker(r.Context(), id); err != nil {
		respondError(w, r, err, statusFor(err), summary)
		return
	}

	writeJSON(w, r, http.StatusOK, mutationResponse{Message: "Worker deleted successfully"})
}
