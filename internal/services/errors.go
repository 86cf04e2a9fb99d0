package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrSourceUnavailable marks a media-server failure that survives the
	// transport retry policy. Fatal: no digest without source data.
	ErrSourceUnavailable = errors.New("library source unavailable")
	// ErrLookupFailed marks a metadata lookup failure for a single title.
	// Never fatal; the item proceeds without enrichment.
	ErrLookupFailed = errors.New("metadata lookup failed")
	// ErrPathTraversal marks a template path escaping the template root.
	ErrPathTraversal = errors.New("path traversal")
	// ErrTemplateNotFound marks a missing newsletter template.
	ErrTemplateNotFound = errors.New("template not found")
	// ErrContextTooLarge marks a render context exceeding the byte ceiling.
	ErrContextTooLarge = errors.New("render context too large")
	// ErrRunTimedOut marks a run exceeding the caller-supplied time budget.
	ErrRunTimedOut = errors.New("run timed out")
	// ErrConfiguration marks unusable configuration.
	ErrConfiguration = errors.New("configuration error")
)

// Wrap builds an error message that includes step context while tagging it
// with the provided marker for later classification. The marker should be
// one of the exported sentinel errors above. Messages must never contain
// secrets; callers pass key names, not values.
func Wrap(marker error, step, operation, message string, err error) error {
	detail := buildDetail(step, operation, message)
	if marker == nil {
		marker = ErrLookupFailed
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Fatal reports whether err must abort the whole run rather than being
// absorbed as a per-item failure.
func Fatal(err error) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, ErrSourceUnavailable),
		errors.Is(err, ErrPathTraversal),
		errors.Is(err, ErrTemplateNotFound),
		errors.Is(err, ErrContextTooLarge),
		errors.Is(err, ErrRunTimedOut),
		errors.Is(err, ErrConfiguration):
		return true
	default:
		return false
	}
}

func buildDetail(step, operation, message string) string {
	parts := make([]string, 0, 3)
	if step = strings.TrimSpace(step); step != "" {
		parts = append(parts, step)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
