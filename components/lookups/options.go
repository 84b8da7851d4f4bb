package lookups

import (
	"net/http"
	"strconv"
	"strings"
)

// Limits applied when a request omits ?limit= or asks for too much.
const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// Guard vets a request before any table is searched. Returning a StatusError
// picks the response code; any other error answers 403.
type Guard func(r *http.Request) error

// HandlerOption configures the lookup handler.
type HandlerOption func(*settings)

type settings struct {
	provider     Provider
	defaultLimit int
	maxLimit     int
	guard        Guard
}

func newSettings(opts []HandlerOption) settings {
	s := settings{defaultLimit: DefaultLimit, maxLimit: MaxLimit}
	for _, opt := range opts {
		if opt != nil {
			opt(&s)
		}
	}
	if s.maxLimit <= 0 {
		s.maxLimit = MaxLimit
	}
	if s.defaultLimit <= 0 {
		s.defaultLimit = DefaultLimit
	}
	s.defaultLimit = min(s.defaultLimit, s.maxLimit)
	return s
}

// WithProvider sets where rows come from. Without one the handler answers
// 503.
func WithProvider(p Provider) HandlerOption {
	return func(s *settings) { s.provider = p }
}

// WithDefaultLimit sets the row count used when ?limit= is absent.
// Non-positive values keep DefaultLimit.
func WithDefaultLimit(limit int) HandlerOption {
	return func(s *settings) { s.defaultLimit = limit }
}

// WithMaxLimit caps ?limit=. Non-positive values keep MaxLimit.
func WithMaxLimit(limit int) HandlerOption {
	return func(s *settings) { s.maxLimit = limit }
}

func WithGuard(g Guard) HandlerOption {
	return func(s *settings) { s.guard = g }
}

// limit turns the raw ?limit= value into a row count. Garbage falls back to
// the default; negative asks for nothing.
func (s settings) limit(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	switch {
	case raw == "" || err != nil || n == 0:
		return s.defaultLimit
	case n < 0:
		return 0
	}
	return min(n, s.maxLimit)
}
