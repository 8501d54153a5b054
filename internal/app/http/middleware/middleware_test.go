package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/cotizador/quoter/internal/domain/auth"
)

func principalEcho(t *testing.T, want auth.Principal) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, ok := auth.FromContext(r.Context())
		if !ok || p != want {
			t.Errorf("principal = %+v (%v), want %+v", p, ok, want)
		}
		w.WriteHeader(http.StatusTeapot)
	})
}

func TestAuthenticate(t *testing.T) {
	issuer := auth.NewIssuer("secret", time.Hour)
	token, _, err := issuer.Issue(42, false)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	cases := []struct {
		name    string
		headers map[string]string
		want    auth.Principal
		status  int
	}{
		{"no credentials", nil, auth.Principal{}, http.StatusUnauthorized},
		{"bearer", map[string]string{"Authorization": "Bearer " + token}, auth.Principal{UserID: 42}, http.StatusTeapot},
		{"bad bearer", map[string]string{"Authorization": "Bearer nope"}, auth.Principal{}, http.StatusUnauthorized},
		{"basic scheme", map[string]string{"Authorization": "Basic abc"}, auth.Principal{}, http.StatusUnauthorized},
		{"internal token", map[string]string{"X-Internal-Token": "svc"}, auth.Principal{Staff: true}, http.StatusTeapot},
		{"wrong internal token", map[string]string{"X-Internal-Token": "x"}, auth.Principal{}, http.StatusUnauthorized},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		for k, v := range tc.headers {
			req.Header.Set(k, v)
		}
		rec := httptest.NewRecorder()
		Authenticate(issuer, "svc")(principalEcho(t, tc.want)).ServeHTTP(rec, req)
		if rec.Code != tc.status {
			t.Errorf("%s: status = %d, want %d", tc.name, rec.Code, tc.status)
		}
	}
}

func TestAuthenticate_InternalTokenDisabled(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Internal-Token", "svc")
	rec := httptest.NewRecorder()
	Authenticate(auth.NewIssuer("secret", time.Hour), "")(http.NotFoundHandler()).ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestRequireStaff(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) })

	for _, tc := range []struct {
		p      auth.Principal
		status int
	}{
		{auth.Principal{UserID: 1}, http.StatusForbidden},
		{auth.Principal{UserID: 1, Staff: true}, http.StatusNoContent},
	} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req = req.WithContext(auth.WithPrincipal(req.Context(), tc.p))
		rec := httptest.NewRecorder()
		RequireStaff(ok).ServeHTTP(rec, req)
		if rec.Code != tc.status {
			t.Errorf("%+v: status = %d, want %d", tc.p, rec.Code, tc.status)
		}
	}
}

func TestCORS_Preflight(t *testing.T) {
	h := CORS("https://app.example.com, https://admin.example.com")(http.NotFoundHandler())

	req := httptest.NewRequest(http.MethodOptions, "/v1/quotes", nil)
	req.Header.Set("Origin", "https://admin.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPut)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://admin.example.com" {
		t.Fatalf("allow origin = %q", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/v1/quotes/1/pdf", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Fatalf("foreign origin allowed: %q", got)
	}
}

func TestCORS_ExposesContentDisposition(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/v1/quotes/1/pdf", nil)
	req.Header.Set("Origin", "https://app.example.com")
	rec := httptest.NewRecorder()
	CORS("*")(http.NotFoundHandler()).ServeHTTP(rec, req)
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("allow origin = %q", got)
	}
	if got := rec.Header().Get("Access-Control-Expose-Headers"); got != "Content-Disposition" {
		t.Fatalf("expose headers = %q", got)
	}
}
