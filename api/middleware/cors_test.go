package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func preflight(origins []string, origin string) *httptest.ResponseRecorder {
	handler := CORS(origins)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/checkout", nil)
	req.Header.Set("Origin", origin)
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestCORSAllowsConfiguredOriginWithCredentials(t *testing.T) {
	rec := preflight([]string{"http://localhost:3000"}, "http://localhost:3000")
	if rec.Header().Get("Access-Control-Allow-Origin") != "http://localhost:3000" {
		t.Fatalf("expected origin to be allowed, got %q", rec.Header().Get("Access-Control-Allow-Origin"))
	}
	if rec.Header().Get("Access-Control-Allow-Credentials") != "true" {
		t.Fatal("expected credentials to be allowed")
	}

	other := preflight([]string{"http://localhost:3000"}, "https://evil.example")
	if other.Header().Get("Access-Control-Allow-Origin") != "" {
		t.Fatal("unexpected origin allowed")
	}
}

func TestCORSWildcardDropsCredentials(t *testing.T) {
	rec := preflight([]string{"https://shop.example", "*"}, "https://anywhere.example")
	if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Fatalf("expected wildcard, got %q", rec.Header().Get("Access-Control-Allow-Origin"))
	}
	if rec.Header().Get("Access-Control-Allow-Credentials") != "" {
		t.Fatal("credentials must not be allowed with a wildcard origin")
	}
}
