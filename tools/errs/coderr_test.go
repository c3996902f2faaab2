package errs

import (
	"net/http"
	"testing"
)

func TestCodeOfPredefined(t *testing.T) {
	code, msg := CodeOf(ErrNotFound.WithDetail("request abc"))
	if code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", code)
	}
	if msg != "not found: request abc" {
		t.Fatalf("unexpected message %q", msg)
	}
}

func TestCodeOfUnknownErrorIs500(t *testing.T) {
	code, msg := CodeOf(New("connection reset"))
	if code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", code)
	}
	// Internal tool: the underlying message is surfaced, not sanitized.
	if msg != "connection reset" {
		t.Fatalf("unexpected message %q", msg)
	}
}

func TestWithDetailDoesNotMutatePredefined(t *testing.T) {
	_ = ErrValidation.WithDetail("location is required")
	if ErrValidation.Detail != "" {
		t.Fatal("predefined error mutated")
	}
}

func TestIsMatchesByCode(t *testing.T) {
	err := ErrTokenExpired.WithDetail("t")
	if !ErrTokenExpired.Is(err) {
		t.Fatal("expected Is to match by code")
	}
	if ErrNotFound.Is(err) {
		t.Fatal("different codes must not match")
	}
}
