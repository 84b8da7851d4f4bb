package lookups

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestMountPath_JoinsBasePath(t *testing.T) {
	if got := MountPath("/v1"); got != "/v1/lookups/{table}" {
		t.Fatalf("unexpected mount path: %q", got)
	}
	if got := MountPath("v1/"); got != "/v1/lookups/{table}" {
		t.Fatalf("unexpected mount path: %q", got)
	}
	if got := MountPath(""); got != "/lookups/{table}" {
		t.Fatalf("unexpected mount path: %q", got)
	}
}

func TestRegisterRoutes_RegistersHandler(t *testing.T) {
	mux := http.NewServeMux()
	pattern, err := RegisterRoutes(mux, "/v1", WithProvider(cargos()))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if pattern != "/v1/lookups/{table}" {
		t.Fatalf("unexpected registered pattern: %q", pattern)
	}

	req := httptest.NewRequest(http.MethodGet, "/v1/lookups/cargos?q=analista&limit=1", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if data := decode(t, rec); len(data) != 1 || data[0].Value != "1" {
		t.Fatalf("unexpected payload: %#v", data)
	}
}

func TestRegisterRoutes_MissingMux(t *testing.T) {
	if _, err := RegisterRoutes(nil, "/v1"); err == nil {
		t.Fatalf("expected error for nil mux")
	}
}

func TestRankBlankQueryKeepsOrder(t *testing.T) {
	rows := []Option{{Value: "b", Label: "Beta"}, {Value: "a", Label: "Alfa"}}
	got := Rank(rows, "  ", 0)
	if len(got) != 2 || got[0].Value != "b" {
		t.Fatalf("expected original order, got %#v", got)
	}
	if got := Rank(rows, "", 1); len(got) != 1 {
		t.Fatalf("expected limit to apply, got %#v", got)
	}
}
