package services_test

import (
	"errors"
	"strings"
	"testing"

	"newsreel/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrSourceUnavailable, "collect", "fetch recent", "request failed", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrSourceUnavailable) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"collect", "fetch recent", "request failed"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapNilMarkerDefaultsToLookupFailed(t *testing.T) {
	err := services.Wrap(nil, "enrich", "lookup", "no marker", nil)
	if !errors.Is(err, services.ErrLookupFailed) {
		t.Fatalf("expected lookup-failed marker, got %v", err)
	}
}

func TestFatalClassification(t *testing.T) {
	fatal := []error{
		services.ErrSourceUnavailable,
		services.ErrPathTraversal,
		services.ErrTemplateNotFound,
		services.ErrContextTooLarge,
		services.ErrRunTimedOut,
		services.ErrConfiguration,
	}
	for _, marker := range fatal {
		err := services.Wrap(marker, "step", "op", "msg", nil)
		if !services.Fatal(err) {
			t.Errorf("expected %v to be fatal", marker)
		}
	}
	if services.Fatal(services.Wrap(services.ErrLookupFailed, "enrich", "lookup", "miss", nil)) {
		t.Error("lookup failures must not abort the run")
	}
	if services.Fatal(nil) {
		t.Error("nil error must not be fatal")
	}
}
