package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestTokenRoundTrip(t *testing.T) {
	p := NewTokenProvider("test-secret", time.Hour)
	token, err := p.Generate("a@example.com", RoleVendor)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	claims, err := p.Verify(token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if claims.Email != "a@example.com" || claims.Role != RoleVendor {
		t.Errorf("claims = %+v", claims)
	}
}

func TestTokenWrongSecretRejected(t *testing.T) {
	token, _ := NewTokenProvider("secret-one", time.Hour).Generate("a@example.com", RoleVendor)
	if _, err := NewTokenProvider("secret-two", time.Hour).Verify(token); err == nil {
		t.Error("token signed with another secret accepted")
	}
}

func TestTokenExpiredRejected(t *testing.T) {
	token, _ := NewTokenProvider("test-secret", -time.Minute).Generate("a@example.com", RoleVendor)
	if _, err := NewTokenProvider("test-secret", -time.Minute).Verify(token); err == nil {
		t.Error("expired token accepted")
	}
}

func TestMiddlewarePutsIdentityInContext(t *testing.T) {
	p := NewTokenProvider("test-secret", time.Hour)
	m := NewMiddleware(p)
	token, _ := p.Generate("a@example.com", RoleRequester)

	var gotEmail, gotRole string
	handler := m.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotEmail, _ = EmailFromContext(r.Context())
		gotRole, _ = RoleFromContext(r.Context())
	}))

	req := httptest.NewRequest("GET", "/services/1", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if gotEmail != "a@example.com" || gotRole != RoleRequester {
		t.Errorf("context identity = %s/%s", gotEmail, gotRole)
	}
}

func TestMiddlewareRejectsMissingOrBadToken(t *testing.T) {
	m := NewMiddleware(NewTokenProvider("test-secret", time.Hour))
	handler := m.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler must not run without a valid token")
	}))

	for _, header := range []string{"", "Bearer garbage", "Basic abc"} {
		req := httptest.NewRequest("GET", "/services/1", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("header %q: status = %d, want 401", header, rec.Code)
		}
	}
}

func TestRequireRole(t *testing.T) {
	p := NewTokenProvider("test-secret", time.Hour)
	m := NewMiddleware(p)
	token, _ := p.Generate("v@example.com", RoleVendor)

	ran := false
	handler := m.Authenticate(RequireRole(RoleRequester, func(w http.ResponseWriter, r *http.Request) {
		ran = true
	}))

	req := httptest.NewRequest("POST", "/services", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", rec.Code)
	}
	if ran {
		t.Error("handler ran for the wrong role")
	}
}
