package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Phantom-VK/icrs/internal/session"
)

func signedTestToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func TestLoginStoresTokenAndComputedExpiry(t *testing.T) {
	token := signedTestToken(t, jwt.MapClaims{"sub": "asha@college.edu", "role": "STUDENT"})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/login" || r.Method != http.MethodPost {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["email"] != "asha@college.edu" || body["password"] != "pw" {
			t.Errorf("unexpected login payload %v", body)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"token":     token,
			"expiresIn": int64(2 * time.Hour / time.Millisecond),
		})
	}))
	defer srv.Close()

	store := session.NewMemory()
	auth := NewAuthService(New(srv.URL, store))

	before := time.Now()
	sess, err := auth.Login(context.Background(), "asha@college.edu", "pw")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if sess.Token != token {
		t.Fatalf("expected token returned")
	}
	if sess.Role != "STUDENT" || sess.Email != "asha@college.edu" {
		t.Fatalf("expected display fields from token claims, got %+v", sess)
	}

	stored, _ := store.Get(context.Background())
	if stored.Token != token {
		t.Fatalf("expected token persisted, got %q", stored.Token)
	}
	wantExpiry := before.Add(2 * time.Hour)
	if stored.Expiry.Before(wantExpiry.Add(-time.Minute)) || stored.Expiry.After(wantExpiry.Add(time.Minute)) {
		t.Fatalf("expected expiry near %v, got %v", wantExpiry, stored.Expiry)
	}
}

func TestLoginDefaultsLifetimeWhenServerOmitsIt(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"token": "opaque-token"})
	}))
	defer srv.Close()

	store := session.NewMemory()
	auth := NewAuthService(New(srv.URL, store))

	before := time.Now()
	if _, err := auth.Login(context.Background(), "a@b.c", "pw"); err != nil {
		t.Fatalf("login: %v", err)
	}

	stored, _ := store.Get(context.Background())
	wantExpiry := before.Add(defaultTokenTTL)
	if stored.Expiry.Before(wantExpiry.Add(-time.Minute)) || stored.Expiry.After(wantExpiry.Add(time.Minute)) {
		t.Fatalf("expected default one hour expiry, got %v", stored.Expiry)
	}
}

func TestLoginRejectsMissingToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"expiresIn": 1000})
	}))
	defer srv.Close()

	store := session.NewMemory()
	auth := NewAuthService(New(srv.URL, store))

	if _, err := auth.Login(context.Background(), "a@b.c", "pw"); err == nil {
		t.Fatalf("expected error for missing token")
	}
	stored, _ := store.Get(context.Background())
	if stored.Token != "" {
		t.Fatalf("nothing should be persisted on a bad login response")
	}
}

func TestVerifyWrapsPlainTextMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/verify" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte("Account verified"))
	}))
	defer srv.Close()

	auth := NewAuthService(New(srv.URL, session.NewMemory()))
	msg, err := auth.Verify(context.Background(), "a@b.c", "123456")
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if msg != "Account verified" {
		t.Fatalf("expected server message, got %q", msg)
	}
}

func TestVerifyDefaultsMessageOnEmptyBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	auth := NewAuthService(New(srv.URL, session.NewMemory()))
	msg, err := auth.Verify(context.Background(), "a@b.c", "123456")
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if msg != "Account verified successfully." {
		t.Fatalf("expected default message, got %q", msg)
	}
}

func TestResendSendsEmailAsQueryParam(t *testing.T) {
	var gotEmail string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotEmail = r.URL.Query().Get("email")
		w.Write([]byte(`"Code resent"`))
	}))
	defer srv.Close()

	auth := NewAuthService(New(srv.URL, session.NewMemory()))
	msg, err := auth.Resend(context.Background(), "x+y@college.edu")
	if err != nil {
		t.Fatalf("resend: %v", err)
	}
	if gotEmail != "x+y@college.edu" {
		t.Fatalf("expected escaped email param, got %q", gotEmail)
	}
	if msg != "Code resent" {
		t.Fatalf("expected server message, got %q", msg)
	}
}

func TestVerifySuccessDoesNotCreateSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	store := session.NewMemory()
	auth := NewAuthService(New(srv.URL, store))
	if _, err := auth.Verify(context.Background(), "a@b.c", "123456"); err != nil {
		t.Fatalf("verify: %v", err)
	}

	stored, _ := store.Get(context.Background())
	if stored.Token != "" {
		t.Fatalf("verify must not log in")
	}
}

func TestLogoutClearsSession(t *testing.T) {
	store := session.NewMemory()
	seedSession(t, store, "tok")

	auth := NewAuthService(New("http://unused", store))
	if err := auth.Logout(context.Background()); err != nil {
		t.Fatalf("logout: %v", err)
	}
	stored, _ := store.Get(context.Background())
	if stored.Token != "" {
		t.Fatalf("expected session cleared")
	}
}
