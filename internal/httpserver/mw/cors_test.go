package mw

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func corsHandler(origins []string) http.Handler {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return CORS(origins)(ok)
}

func TestCORSAllowedOrigin(t *testing.T) {
	h := corsHandler([]string{"https://app.example.com"})

	req := httptest.NewRequest(http.MethodGet, "/api/categories", nil)
	req.Header.Set("Origin", "https://app.example.com")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://app.example.com" {
		t.Errorf("Allow-Origin = %q, want the request origin echoed", got)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

func TestCORSUnknownOrigin(t *testing.T) {
	h := corsHandler([]string{"https://app.example.com"})

	req := httptest.NewRequest(http.MethodGet, "/api/categories", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("Allow-Origin = %q for unknown origin, want empty", got)
	}
}

func TestCORSPreflight(t *testing.T) {
	h := corsHandler([]string{"https://app.example.com"})

	req := httptest.NewRequest(http.MethodOptions, "/api/categories", nil)
	req.Header.Set("Origin", "https://app.example.com")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Errorf("preflight status = %d, want 204", rec.Code)
	}
}

func TestCORSDisabledPassthrough(t *testing.T) {
	h := corsHandler(nil)

	req := httptest.NewRequest(http.MethodGet, "/api/categories", nil)
	req.Header.Set("Origin", "https://anywhere.example.com")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200 passthrough", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("Allow-Origin = %q with CORS disabled, want empty", got)
	}
}
