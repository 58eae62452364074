package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/campusmart/api/internal/auth"
	"github.com/google/uuid"
)

const testSecret = "test-middleware-secret"

func protectedHandler(t *testing.T, wantUserID uuid.UUID) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims := ClaimsFromContext(r.Context())
		if claims == nil {
			t.Error("expected claims in context")
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		if claims.UserID != wantUserID {
			t.Errorf("user_id: got %v, want %v", claims.UserID, wantUserID)
		}
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthenticate_MissingHeader(t *testing.T) {
	mw := Authenticate(testSecret)
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not be called")
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest("GET", "/cart", nil))

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusUnauthorized)
	}
}

func TestAuthenticate_BadFormat(t *testing.T) {
	mw := Authenticate(testSecret)
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not be called")
	}))

	req := httptest.NewRequest("GET", "/cart", nil)
	req.Header.Set("Authorization", "Basic abc123")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusUnauthorized)
	}
}

func TestAuthenticate_InvalidToken(t *testing.T) {
	mw := Authenticate(testSecret)
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not be called")
	}))

	req := httptest.NewRequest("GET", "/cart", nil)
	req.Header.Set("Authorization", "Bearer not-a-valid-token")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusUnauthorized)
	}
}

func TestAuthenticate_ValidToken(t *testing.T) {
	userID := uuid.New()
	token, err := auth.GenerateToken(testSecret, userID)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	mw := Authenticate(testSecret)
	handler := mw(protectedHandler(t, userID))

	req := httptest.NewRequest("GET", "/cart", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusOK)
	}
}

func TestClaimsFromContext_Empty(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	if claims := ClaimsFromContext(req.Context()); claims != nil {
		t.Fatalf("expected nil claims, got %+v", claims)
	}
}
