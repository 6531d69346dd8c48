package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Phantom-VK/icrs/internal/model"
	"github.com/Phantom-VK/icrs/internal/session"
)

func seedSession(t *testing.T, store session.Store, token string) {
	t.Helper()
	err := store.Set(context.Background(), model.Session{
		Token:  token,
		Expiry: time.Now().Add(time.Hour),
	})
	if err != nil {
		t.Fatalf("seed session: %v", err)
	}
}

func TestBearerTokenAttachedWhenPresent(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	store := session.NewMemory()
	seedSession(t, store, "tok-1")
	client := New(srv.URL, store)

	if _, err := NewGrievanceService(client).Mine(context.Background()); err != nil {
		t.Fatalf("mine: %v", err)
	}
	if gotAuth != "Bearer tok-1" {
		t.Fatalf("expected bearer header, got %q", gotAuth)
	}
}

func TestNoTokenMeansUnauthenticatedCall(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	client := New(srv.URL, session.NewMemory())
	if _, err := NewGrievanceService(client).Mine(context.Background()); err != nil {
		t.Fatalf("mine: %v", err)
	}
	if gotAuth != "" {
		t.Fatalf("expected no auth header, got %q", gotAuth)
	}
}

func TestUnauthorizedEvictsSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "token expired", http.StatusUnauthorized)
	}))
	defer srv.Close()

	store := session.NewMemory()
	seedSession(t, store, "stale")
	client := New(srv.URL, store)

	_, err := NewGrievanceService(client).Mine(context.Background())
	if !IsUnauthorized(err) {
		t.Fatalf("expected unauthorized error, got %v", err)
	}

	left, _ := store.Get(context.Background())
	if left.Token != "" || !left.Expiry.IsZero() {
		t.Fatalf("expected session evicted after 401, got %+v", left)
	}
}

func TestForbiddenKeepsSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "faculty only", http.StatusForbidden)
	}))
	defer srv.Close()

	store := session.NewMemory()
	seedSession(t, store, "still-good")
	client := New(srv.URL, store)

	_, err := NewGrievanceService(client).List(context.Background(), ListParams{})
	if !IsForbidden(err) {
		t.Fatalf("expected forbidden error, got %v", err)
	}

	left, _ := store.Get(context.Background())
	if left.Token != "still-good" {
		t.Fatalf("403 must not evict the session, got %+v", left)
	}
}

func TestTransportErrorPropagates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	client := New(srv.URL, session.NewMemory())
	_, err := NewGrievanceService(client).Mine(context.Background())
	if err == nil {
		t.Fatalf("expected transport error")
	}
	if IsUnauthorized(err) || IsForbidden(err) {
		t.Fatalf("transport failure is not an http status error: %v", err)
	}
}

func TestRequestIDHeaderSet(t *testing.T) {
	var gotID string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotID = r.Header.Get("X-Request-Id")
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	client := New(srv.URL, session.NewMemory())
	if _, err := NewGrievanceService(client).Mine(context.Background()); err != nil {
		t.Fatalf("mine: %v", err)
	}
	if gotID == "" {
		t.Fatalf("expected X-Request-Id header")
	}
}
