package api

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorMessagePrecedence(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		fallback string
		want     string
	}{
		{
			name: "string body wins",
			err:  &Error{Status: 400, Body: []byte(`"Bad input"`)},
			want: "Bad input",
		},
		{
			name: "plain text body wins",
			err:  &Error{Status: 400, Body: []byte("Bad input")},
			want: "Bad input",
		},
		{
			name: "message field",
			err:  &Error{Status: 404, Body: []byte(`{"message":"X"}`)},
			want: "X",
		},
		{
			name: "error field when message absent",
			err:  &Error{Status: 409, Body: []byte(`{"error":"Y"}`)},
			want: "Y",
		},
		{
			name: "message beats error field",
			err:  &Error{Status: 409, Body: []byte(`{"message":"X","error":"Y"}`)},
			want: "X",
		},
		{
			name: "plain error message",
			err:  errors.New("timeout"),
			want: "timeout",
		},
		{
			name:     "nil error falls back",
			err:      nil,
			fallback: "Something went wrong.",
			want:     "Something went wrong.",
		},
		{
			name:     "empty error message falls back",
			err:      errors.New(""),
			fallback: "Something went wrong.",
			want:     "Something went wrong.",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := ErrorMessage(tc.err, tc.fallback)
			if got != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, got)
			}
		})
	}
}

func TestErrorMessageUnwrapsWrappedError(t *testing.T) {
	inner := &Error{Status: 400, Body: []byte(`{"message":"Title is required"}`)}
	wrapped := fmt.Errorf("submit grievance: %w", inner)

	if got := ErrorMessage(wrapped, "fallback"); got != "Title is required" {
		t.Fatalf("expected server message through wrapping, got %q", got)
	}
}

func TestErrorStringIncludesStatus(t *testing.T) {
	err := &Error{Status: 500}
	if got := err.Error(); got != "request failed with status code 500" {
		t.Fatalf("unexpected error string %q", got)
	}
}

func TestStatusHelpers(t *testing.T) {
	if !IsUnauthorized(&Error{Status: 401}) {
		t.Fatalf("expected 401 to be unauthorized")
	}
	if IsUnauthorized(&Error{Status: 403}) {
		t.Fatalf("403 is not unauthorized")
	}
	if !IsForbidden(&Error{Status: 403}) {
		t.Fatalf("expected 403 to be forbidden")
	}
	if IsForbidden(errors.New("network down")) {
		t.Fatalf("transport errors are not forbidden")
	}
}
