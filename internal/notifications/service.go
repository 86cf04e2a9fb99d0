package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"newsreel/internal/config"
	"newsreel/internal/pipeline"
)

const userAgent = "Newsreel-Go/0.1.0"

// Service defines the notification surface exposed to the CLI shell.
type Service interface {
	NotifyRunCompleted(ctx context.Context, result pipeline.RenderedDigest, recipients int) error
	NotifyRunFailed(ctx context.Context, runErr error) error
	TestNotification(ctx context.Context) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg config.Notifications) Service {
	topic := strings.TrimSpace(cfg.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &ntfyService{
		endpoint:     topic,
		client:       &http.Client{Timeout: timeout},
		runCompleted: cfg.RunCompleted,
		runFailed:    cfg.RunFailed,
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint     string
	client       *http.Client
	runCompleted bool
	runFailed    bool
}

func (n *ntfyService) NotifyRunCompleted(ctx context.Context, result pipeline.RenderedDigest, recipients int) error {
	if !n.runCompleted {
		return nil
	}
	message := fmt.Sprintf("Newsletter sent to %d recipients: %d movies, %d shows",
		recipients, result.Stats.MoviesCount, result.Stats.ShowsCount)
	if result.Empty() {
		message = "Nothing new this period, no newsletter sent"
	} else if result.Stats.EnrichmentFailures > 0 {
		message += fmt.Sprintf(" (%d lookups failed)", result.Stats.EnrichmentFailures)
	}
	data := payload{
		title:   "Newsreel - Run Completed",
		message: message,
		tags:    []string{"newsreel", "run", "completed"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyRunFailed(ctx context.Context, runErr error) error {
	if !n.runFailed {
		return nil
	}
	message := "Newsletter run failed"
	if runErr != nil {
		message = fmt.Sprintf("Newsletter run failed: %s", strings.TrimSpace(runErr.Error()))
	}
	data := payload{
		title:    "Newsreel - Run Failed",
		message:  message,
		tags:     []string{"newsreel", "run", "failed"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	data := payload{
		title:   "Newsreel - Test",
		message: "Test notification from newsreel",
		tags:    []string{"newsreel", "test"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) send(ctx context.Context, data payload) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" && data.priority != "default" {
		req.Header.Set("Priority", data.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type noopService struct{}

func (noopService) NotifyRunCompleted(context.Context, pipeline.RenderedDigest, int) error { return nil }
func (noopService) NotifyRunFailed(context.Context, error) error                           { return nil }
func (noopService) TestNotification(context.Context) error                                 { return nil }
