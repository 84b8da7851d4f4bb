package lookups

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
)

// StatusError lets a Guard choose the rejection status.
type StatusError struct {
	Code int
	Err  error
}

func (e StatusError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return http.StatusText(e.Code)
}

func (e StatusError) Unwrap() error { return e.Err }

type rowsResponse struct {
	Data []Option `json:"data"`
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

type handler struct {
	settings
}

// Handler answers GET {table}?q=&limit= with the ranked rows of the table.
// The table comes from the {table} wildcard, or the last path segment when
// the router does not fill path values.
func Handler(opts ...HandlerOption) http.Handler {
	return &handler{settings: newSettings(opts)}
}

func (h *handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", http.MethodGet+", "+http.MethodHead)
		writeError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "lookups are read-only")
		return
	}
	if h.guard != nil {
		if err := h.guard(r); err != nil {
			status := http.StatusForbidden
			var se StatusError
			if errors.As(err, &se) && se.Code > 0 {
				status = se.Code
			}
			writeError(w, status, "FORBIDDEN", http.StatusText(status))
			return
		}
	}
	if h.provider == nil {
		writeError(w, http.StatusServiceUnavailable, "NO_PROVIDER", "no lookup provider configured")
		return
	}

	table := tableName(r)
	if table == "" {
		writeError(w, http.StatusBadRequest, "MISSING_TABLE", "missing lookup table")
		return
	}

	query := r.URL.Query()
	limit := h.limit(query.Get("limit"))
	rows := []Option{}
	if limit > 0 {
		found, err := h.provider.SearchLookup(r.Context(), table, strings.TrimSpace(query.Get("q")), limit)
		switch {
		case errors.Is(err, ErrUnknownTable):
			writeError(w, http.StatusNotFound, "UNKNOWN_TABLE", "unknown lookup table "+table)
			return
		case err != nil:
			writeError(w, http.StatusInternalServerError, "LOOKUP_FAILED", "lookup failed")
			return
		}
		if len(found) > limit {
			found = found[:limit]
		}
		if found != nil {
			rows = found
		}
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if r.Method == http.MethodHead {
		return
	}
	_ = json.NewEncoder(w).Encode(rowsResponse{Data: rows})
}

func tableName(r *http.Request) string {
	if table := strings.TrimSpace(r.PathValue("table")); table != "" {
		return table
	}
	path := strings.TrimRight(r.URL.Path, "/")
	return strings.TrimSpace(path[strings.LastIndex(path, "/")+1:])
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorResponse{Error: message, Code: code})
}
