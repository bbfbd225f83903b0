package services_test

import (
	"errors"
	"net/http"
	"testing"

	"storyloom/internal/services"
)

func TestWrapTagsMarker(t *testing.T) {
	err := services.Wrap(services.ErrNotFound, "episodes", "submit", "theme 9 missing", nil)
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected ErrNotFound classification, got %v", err)
	}
	if got := err.Error(); got != "not found: episodes: submit: theme 9 missing" {
		t.Fatalf("unexpected message: %q", got)
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("disk full")
	err := services.Wrap(services.ErrTaskFailure, "jobs", "update", "persist step", cause)
	if !errors.Is(err, cause) {
		t.Fatalf("expected wrapped cause to be preserved: %v", err)
	}
	if !errors.Is(err, services.ErrTaskFailure) {
		t.Fatalf("expected ErrTaskFailure classification: %v", err)
	}
}

func TestWrapDefaultsMarker(t *testing.T) {
	err := services.Wrap(nil, "jobs", "run", "unknown", nil)
	if !errors.Is(err, services.ErrTaskFailure) {
		t.Fatalf("nil marker should default to ErrTaskFailure, got %v", err)
	}
}

func TestHTTPStatus(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{nil, http.StatusOK},
		{services.Wrap(services.ErrNotFound, "a", "b", "c", nil), http.StatusNotFound},
		{services.Wrap(services.ErrValidation, "a", "b", "c", nil), http.StatusUnprocessableEntity},
		{services.Wrap(services.ErrInvalidState, "a", "b", "c", nil), http.StatusBadRequest},
		{services.Wrap(services.ErrConflict, "a", "b", "c", nil), http.StatusConflict},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got := services.HTTPStatus(tc.err); got != tc.want {
			t.Fatalf("HTTPStatus(%v) = %d, want %d", tc.err, got, tc.want)
		}
	}
}
