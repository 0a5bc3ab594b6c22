package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"outlay/internal/core"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func errorBody(msg string) map[string]string {
	return map[string]string{"message": msg}
}

// writeError maps domain sentinels to statuses. Anything unrecognized is a
// generic 500: storage detail stays in the log, not the response.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, core.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody("please ensure the correct expense is requested"))
	case errors.Is(err, core.ErrInvalidSort):
		writeJSON(w, http.StatusBadRequest, errorBody("invalid sort parameters"))
	case errors.Is(err, core.ErrMissingDimensionID):
		writeJSON(w, http.StatusBadRequest, errorBody("please ensure the request specifies the source for details"))
	case errors.Is(err, core.ErrInvalidAmount),
		errors.Is(err, core.ErrInvalidDate),
		errors.Is(err, core.ErrUnknownDimension),
		errors.Is(err, core.ErrMissingOwner),
		errors.Is(err, core.ErrNoIDs),
		errors.Is(err, core.ErrBatchTooLarge):
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
	default:
		s.logger.ErrorContext(r.Context(), "Request failed",
			"error", err,
			slog.String("path", r.URL.Path))
		writeJSON(w, http.StatusInternalServerError, errorBody("there was an error processing your request"))
	}
}

func decodeBody(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

// parseRange reads the optional start/end query params as an inclusive range.
func parseRange(r *http.Request) (core.DateRange, error) {
	return core.ParseDateRange(r.URL.Query().Get("start"), r.URL.Query().Get("end"))
}

// parseSort reads the sort/dir query params, substituting defaultKey when the
// client supplied no sort at all.
func parseSort(r *http.Request, defaultKey string, allowed []string) (core.SortSpec, error) {
	key := r.URL.Query().Get("sort")
	if key == "" {
		key = defaultKey
	}
	return core.ParseSortSpec(key, r.URL.Query().Get("dir"), allowed)
}
