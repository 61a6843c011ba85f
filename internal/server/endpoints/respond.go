package endpoints

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/jackzampolin/promptvault/internal/desktop"
	"github.com/jackzampolin/promptvault/internal/svcctx"
	"github.com/jackzampolin/promptvault/internal/vault"
)

// errDuplicate is returned when a category or model already exists.
var errDuplicate = errors.New("already exists")

// maxBodyBytes bounds request bodies, including import payloads.
const maxBodyBytes = 10 << 20

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// ErrorResponse is a standard error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}

// writeServiceError maps store and bridge errors to HTTP statuses.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, vault.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, vault.ErrInvalidPrompt),
		errors.Is(err, vault.ErrImportNotArray),
		errors.Is(err, vault.ErrImportFailed),
		errors.Is(err, vault.ErrNoSelection),
		errors.Is(err, vault.ErrEmptyExport):
		status = http.StatusBadRequest
	case errors.Is(err, errDuplicate), errors.Is(err, desktop.ErrWindowClosed):
		status = http.StatusConflict
	case errors.Is(err, desktop.ErrBridgeUnavailable):
		status = http.StatusServiceUnavailable
	}
	if status == http.StatusInternalServerError {
		if logger := svcctx.LoggerFrom(r.Context()); logger != nil {
			logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		}
	}
	writeError(w, status, err.Error())
}

// decodeJSON decodes a bounded JSON request body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

// storeFrom returns the vault from the request context, writing a 503 when
// it is missing.
func storeFrom(w http.ResponseWriter, r *http.Request) (*vault.Store, bool) {
	store := svcctx.VaultFrom(r.Context())
	if store == nil {
		writeError(w, http.StatusServiceUnavailable, "prompt store not initialized")
		return nil, false
	}
	return store, true
}
