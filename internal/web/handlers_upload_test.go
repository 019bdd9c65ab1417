package web

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/workerdesk/internal/core"
)

const csvHeader = "name,employee_id,email,phone_number,department,date_of_birth,date_of_joining,role\n"

func upload(t *testing.T, s *Server, accept, content string) *httptest.ResponseRecorder {
	t.Helper()
	body, contentType := multipartBody(t, "file", "workers.csv", content)

	req := httptest.NewRequest(http.MethodPost, "/workers/upload", body)
	req.Header.Set("Content-Type", contentType)
	if accept != "" {
		req.Header.Set("Accept", accept)
	}
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func TestUpload_MixedRowsJSON(t *testing.T) {
	store := newFakeStore()
	s := newTestServer(t, store, testConfig())

	rec := upload(t, s, "", csvHeader+
		"Jane Doe,E001,j@x.io,5551234567,Ops,1990-01-05,2020-03-01,Lead\n"+
		"John3,E002,john@x.io,5551234568,Ops,1991-02-06,2021-03-01,Dev\n")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var result core.ImportResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, core.MsgImportSucceeded, result.Message)
	assert.Equal(t, "workers.csv", result.FileName)
	assert.Equal(t, 1, result.AcceptedCount)
	assert.Equal(t, 1, result.RejectedCount)
	require.Len(t, result.RejectedRows, 1)
	assert.Equal(t, 2, result.RejectedRows[0].Row)
	assert.Contains(t, result.RejectedRows[0].Reason, "name")
	assert.Len(t, store.rows, 1)
}

func TestUpload_PlainText(t *testing.T) {
	s := newTestServer(t, newFakeStore(), testConfig())

	rec := upload(t, s, "text/plain", csvHeader+"Jane Doe,E001,j@x.io,5551234567,Ops,1990-01-05,2020-03-01,Lead\n")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, core.MsgImportSucceeded, rec.Body.String())
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/plain")
}

func TestUpload_NoValidRows(t *testing.T) {
	store := newFakeStore()
	s := newTestServer(t, store, testConfig())

	rec := upload(t, s, "text/plain", csvHeader+"John3,E002,john@x.io,12345,Ops,1991-02-06,2021-03-01,Dev\n")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, core.MsgNoValidRows, rec.Body.String())
	assert.Empty(t, store.rows)

	rec = upload(t, s, "", csvHeader+"John3,E002,john@x.io,12345,Ops,1991-02-06,2021-03-01,Dev\n")
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var result core.ImportResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, core.MsgNoValidRows, result.Message)
	assert.Equal(t, 1, result.RejectedCount)
	assert.Equal(t, "name: must contain only letters and spaces; phone_number: must be exactly 10 digits", result.RejectedRows[0].Reason)
}

func TestUpload_ParseErrorIsServerError(t *testing.T) {
	s := newTestServer(t, newFakeStore(), testConfig())

	rec := upload(t, s, "text/plain", csvHeader+"\"Broken,E001\n")
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, core.MsgParseFailed, rec.Body.String())
}

func TestUpload_NoFile(t *testing.T) {
	s := newTestServer(t, newFakeStore(), testConfig())

	t.Run("wrong field", func(t *testing.T) {
		body, contentType := multipartBody(t, "attachment", "workers.csv", csvHeader)
		req := httptest.NewRequest(http.MethodPost, "/workers/upload", body)
		req.Header.Set("Content-Type", contentType)
		req.Header.Set("Accept", "text/plain")
		rec := httptest.NewRecorder()
		s.Router().ServeHTTP(rec, req)

		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, core.MsgNoFile, rec.Body.String())
	})

	t.Run("not multipart", func(t *testing.T) {
		rec := do(s, http.MethodPost, "/workers/upload", `{}`)
		require.Equal(t, http.StatusBadRequest, rec.Code)

		resp := decodeError(t, rec)
		assert.Equal(t, "FILE004", resp.Code)
		assert.Equal(t, "File upload failed.", resp.Error)
	})
}

func TestUpload_TooLarge(t *testing.T) {
	cfg := testConfig()
	cfg.Upload.MaxFileSize = 64
	s := newTestServer(t, newFakeStore(), cfg)

	rec := upload(t, s, "", csvHeader+strings.Repeat("Jane Doe,E001,j@x.io,5551234567,Ops,1990-01-05,2020-03-01,Lead\n", 10))
	require.Equal(t, http.StatusRequestEntityTooLarge, rec.Code, rec.Body.String())
	assert.Equal(t, "FILE001", decodeError(t, rec).Code)
}

func TestUpload_BusyRetryAfterFollowsMaxWait(t *testing.T) {
	cfg := testConfig()
	cfg.Upload.MaxWaitTime = 45 * time.Second
	s := newTestServer(t, newFakeStore(), cfg)

	req := httptest.NewRequest(http.MethodPost, "/workers/upload", nil)
	rec := httptest.NewRecorder()
	s.respondUploadError(rec, req, core.ErrTooManyUploads)

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "45", rec.Header().Get("Retry-After"))
}

func TestRetryAfter(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{30 * time.Second, "30"},
		{1500 * time.Millisecond, "2"},
		{2 * time.Minute, "120"},
		{0, "1"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, retryAfter(tt.in), "retryAfter(%v)", tt.in)
	}
}
