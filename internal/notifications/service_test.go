package notifications_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"newsreel/internal/config"
	"newsreel/internal/notifications"
	"newsreel/internal/pipeline"
)

func TestNewServiceReturnsNoopWhenTopicMissing(t *testing.T) {
	svc := notifications.NewService(config.Notifications{})
	if err := svc.NotifyRunFailed(context.Background(), errors.New("boom")); err != nil {
		t.Fatalf("expected noop notifier to return nil, got %v", err)
	}
}

func TestNotifyRunCompletedFormatsStats(t *testing.T) {
	var gotTitle, gotBody string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotTitle = r.Header.Get("Title")
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
	}))
	defer server.Close()

	svc := notifications.NewService(config.Notifications{
		NtfyTopic:    server.URL,
		RunCompleted: true,
		RunFailed:    true,
	})
	result := pipeline.RenderedDigest{
		Stats: pipeline.Stats{MoviesCount: 3, ShowsCount: 2, EnrichmentFailures: 1},
	}
	if err := svc.NotifyRunCompleted(context.Background(), result, 5); err != nil {
		t.Fatalf("NotifyRunCompleted returned error: %v", err)
	}
	if gotTitle != "Newsreel - Run Completed" {
		t.Fatalf("unexpected title: %q", gotTitle)
	}
	for _, want := range []string{"5 recipients", "3 movies", "2 shows", "1 lookups failed"} {
		if !strings.Contains(gotBody, want) {
			t.Errorf("message missing %q: %q", want, gotBody)
		}
	}
}

func TestNotifyRunCompletedEmptyDigest(t *testing.T) {
	var gotBody string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
	}))
	defer server.Close()

	svc := notifications.NewService(config.Notifications{NtfyTopic: server.URL, RunCompleted: true})
	if err := svc.NotifyRunCompleted(context.Background(), pipeline.RenderedDigest{}, 0); err != nil {
		t.Fatalf("NotifyRunCompleted returned error: %v", err)
	}
	if !strings.Contains(gotBody, "Nothing new") {
		t.Fatalf("unexpected message: %q", gotBody)
	}
}

func TestNotifyRunFailedUsesHighPriority(t *testing.T) {
	var gotPriority string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPriority = r.Header.Get("Priority")
	}))
	defer server.Close()

	svc := notifications.NewService(config.Notifications{NtfyTopic: server.URL, RunFailed: true})
	if err := svc.NotifyRunFailed(context.Background(), errors.New("source unavailable")); err != nil {
		t.Fatalf("NotifyRunFailed returned error: %v", err)
	}
	if gotPriority != "high" {
		t.Fatalf("expected high priority, got %q", gotPriority)
	}
}

func TestDisabledEventsAreSkipped(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))
	defer server.Close()

	svc := notifications.NewService(config.Notifications{NtfyTopic: server.URL})
	_ = svc.NotifyRunCompleted(context.Background(), pipeline.RenderedDigest{}, 0)
	_ = svc.NotifyRunFailed(context.Background(), errors.New("x"))
	if calls != 0 {
		t.Fatalf("disabled events must not post, got %d calls", calls)
	}
}

func TestNtfyFailureStatusSurfaces(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "topic rejected", http.StatusForbidden)
	}))
	defer server.Close()

	svc := notifications.NewService(config.Notifications{NtfyTopic: server.URL, RunFailed: true})
	if err := svc.NotifyRunFailed(context.Background(), errors.New("x")); err == nil {
		t.Fatal("expected error for rejected notification")
	}
}
