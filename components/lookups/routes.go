package lookups

import (
	"errors"
	"net/http"
	"path"
	"strings"
)

// Route is the pattern the handler is mounted at below a base path.
const Route = "/lookups/{table}"

// Mux is satisfied by *http.ServeMux and chi routers.
type Mux interface {
	Handle(pattern string, handler http.Handler)
}

// MountPath joins basePath and Route into an absolute pattern.
func MountPath(basePath string) string {
	return path.Join("/", strings.TrimSpace(basePath), Route)
}

// RegisterRoutes mounts a Handler built from opts under basePath and returns
// the registered pattern.
func RegisterRoutes(mux Mux, basePath string, opts ...HandlerOption) (string, error) {
	if mux == nil {
		return "", errors.New("lookups: nil mux")
	}
	pattern := MountPath(basePath)
	mux.Handle(pattern, Handler(opts...))
	return pattern, nil
}
