package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"freestyle/internal/config"
)

const userAgent = "freestyle/0.1.0"

// Event names a batch milestone.
type Event string

const (
	EventBatchStarted     Event = "batch_started"
	EventBatchCompleted   Event = "batch_completed"
	EventItemRecorded     Event = "item_recorded"
	EventItemFailed       Event = "item_failed"
	EventPublishCompleted Event = "publish_completed"
	EventError            Event = "error"
	EventTest             Event = "test"
)

// Payload carries event fields. Values are formatted with %v.
type Payload map[string]any

// Service publishes events.
type Service interface {
	Publish(ctx context.Context, event Event, payload Payload) error
}

// NewService builds an ntfy-backed service, or a no-op when no topic is set.
func NewService(cfg *config.Config) Service {
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}
	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &ntfyService{
		endpoint: topic,
		client:   &http.Client{Timeout: timeout},
	}
}

type message struct {
	title    string
	body     string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint string
	client   *http.Client
}

func (n *ntfyService) Publish(ctx context.Context, event Event, payload Payload) error {
	msg, ok := format(event, payload)
	if !ok {
		return nil
	}
	return n.send(ctx, msg)
}

// format renders an event. Per-track successes are suppressed.
func format(event Event, p Payload) (message, bool) {
	switch event {
	case EventBatchStarted:
		return message{
			title: "Freestyle - Batch Started",
			body:  fmt.Sprintf("Processing %d tracks", p.number("count")),
			tags:  []string{"freestyle", "batch", "started"},
		}, true
	case EventBatchCompleted:
		elapsed := p.duration("elapsed")
		recorded, failed := p.number("recorded"), p.number("failed")
		if failed == 0 {
			return message{
				title: "Freestyle - Batch Complete",
				body:  fmt.Sprintf("Total tracks processed: %d in %s", recorded, elapsed),
				tags:  []string{"freestyle", "batch", "completed"},
			}, true
		}
		return message{
			title: "Freestyle - Batch Complete (with errors)",
			body:  fmt.Sprintf("Total tracks processed: %d, %d failed in %s", recorded, failed, elapsed),
			tags:  []string{"freestyle", "batch", "warning"},
		}, true
	case EventItemFailed:
		return message{
			title:    "Freestyle - Track Failed",
			body:     fmt.Sprintf("%s failed during %s: %s", p.text("slug"), p.text("stage"), p.text("error")),
			tags:     []string{"freestyle", "track", "failed"},
			priority: "high",
		}, true
	case EventPublishCompleted:
		return message{
			title: "Freestyle - Published",
			body:  fmt.Sprintf("Uploaded %d files to %s", p.number("uploaded"), p.text("bucket")),
			tags:  []string{"freestyle", "publish", "completed"},
		}, true
	case EventError:
		var b strings.Builder
		b.WriteString("Error")
		if label := p.text("context"); label != "" {
			b.WriteString(" during ")
			b.WriteString(label)
		}
		b.WriteString(": ")
		if errText := p.text("error"); errText != "" {
			b.WriteString(errText)
		} else {
			b.WriteString("unknown")
		}
		return message{
			title:    "Freestyle - Error",
			body:     b.String(),
			tags:     []string{"freestyle", "error", "alert"},
			priority: "high",
		}, true
	case EventTest:
		return message{
			title:    "Freestyle - Test",
			body:     "Notification system test",
			tags:     []string{"freestyle", "test"},
			priority: "low",
		}, true
	default:
		return message{}, false
	}
}

func (n *ntfyService) send(ctx context.Context, msg message) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(msg.body))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if msg.title != "" {
		req.Header.Set("Title", msg.title)
	}
	if len(msg.tags) > 0 {
		req.Header.Set("Tags", strings.Join(msg.tags, ","))
	}
	if msg.priority != "" && msg.priority != "default" {
		req.Header.Set("Priority", msg.priority)
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

func (p Payload) text(key string) string {
	v, ok := p[key]
	if !ok || v == nil {
		return ""
	}
	if err, ok := v.(error); ok {
		return strings.TrimSpace(err.Error())
	}
	return strings.TrimSpace(fmt.Sprint(v))
}

func (p Payload) number(key string) int {
	switch v := p[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	default:
		return 0
	}
}

func (p Payload) duration(key string) string {
	d, _ := p[key].(time.Duration)
	d = d.Round(time.Second)
	if d <= 0 {
		return "0s"
	}
	return d.String()
}

type noopService struct{}

func (noopService) Publish(context.Context, Event, Payload) error { return nil }
