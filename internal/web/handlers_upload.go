package web

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/JonMunkholm/workerdesk/internal/core"
	"github.com/JonMunkholm/workerdesk/internal/logging"
)

// multipartMemory is how much of a multipart body is kept in memory before
// parts spill to temporary files.
const multipartMemory = 32 << 20

// handleUpload imports the CSV sent in the multipart field "file".
//
// The response is the import result as JSON, or only its message when the
// client asks for text/plain.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Upload.MaxFileSize)

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		s.respondUploadError(w, r, classifyFormError(err))
		return
	}
	defer func() {
		if err := r.MultipartForm.RemoveAll(); err != nil {
			logging.FromContext(r.Context()).Warn("multipart cleanup failed", "error", err)
		}
	}()

	file, header, err := r.FormFile("file")
	if err != nil {
		s.respondUploadError(w, r, core.ErrNoFile)
		return
	}
	defer file.Close()

	result, err := s.service.ImportWorkers(r.Context(), header.Filename, file)
	if err != nil && (result == nil || result.Message == "") {
		s.respondUploadError(w, r, err)
		return
	}

	status := http.StatusOK
	if err != nil {
		status = statusFor(err)
		logging.FromContext(r.Context()).Warn("import failed",
			"import_id", result.ImportID,
			"status", status,
			"error", err,
		)
	}

	if wantsPlainText(r) {
		respondText(w, status, result.Message)
		return
	}
	writeJSON(w, r, status, result)
}

// respondUploadError answers an upload that produced no import result.
func (s *Server) respondUploadError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if errors.Is(err, core.ErrTooManyUploads) {
		w.Header().Set("Retry-After", retryAfter(s.cfg.Upload.MaxWaitTime))
	}

	if wantsPlainText(r) {
		logging.FromContext(r.Context()).Error("upload error", "status", status, "error", err)
		if errors.Is(err, core.ErrNoFile) {
			respondText(w, status, core.MsgNoFile)
			return
		}
		respondText(w, status, core.FormatUserError(err))
		return
	}
	respondError(w, r, err, status, "File upload failed.")
}

// retryAfter formats d as whole seconds for the Retry-After header,
// rounding up and never going below one second.
func retryAfter(d time.Duration) string {
	secs := int64((d + time.Second - 1) / time.Second)
	if secs < 1 {
		secs = 1
	}
	return strconv.FormatInt(secs, 10)
}

// classifyFormError separates "no multipart body" from oversized or
// malformed bodies.
func classifyFormError(err error) error {
	var maxBytes *http.MaxBytesError
	switch {
	case errors.As(err, &maxBytes):
		return err
	case errors.Is(err, http.ErrNotMultipart), errors.Is(err, http.ErrMissingBoundary):
		return core.ErrNoFile
	default:
		return fmt.Errorf("%w: %v", errInvalidBody, err)
	}
}
