package server

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
)

// Error codes returned in JSON error bodies.
const (
	codeInvalidBody  = "INVALID_BODY"
	codeNotFound     = "NOT_FOUND"
	codeMissingTitle = "MISSING_TITLE"
	codeNoSections   = "NO_SECTIONS"
	codeInternal     = "INTERNAL_ERROR"
	codeUnsupported  = "UNSUPPORTED_FORMAT"
	maxBodyBytes     = 4 << 20
)

// errorBody is the shape of every JSON error response.
type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("encode response", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, code, message string) {
	s.writeJSON(w, status, errorBody{Error: message, Code: code})
}

// internalError logs err and answers with an opaque 500.
func (s *Server) internalError(w http.ResponseWriter, r *http.Request, err error) {
	s.logger.Error("request failed",
		zap.String("path", r.URL.Path),
		zap.String("request_id", requestID(r)),
		zap.Error(err),
	)
	s.writeError(w, http.StatusInternalServerError, codeInternal, "internal server error")
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	defer r.Body.Close()
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	return dec.Decode(v)
}
