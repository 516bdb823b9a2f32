package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"wordglow/internal/config"
)

const userAgent = "wordglow/0.1.0"

// Event identifies a workflow milestone.
type Event string

const (
	EventJobQueued      Event = "job_queued"
	EventJobCompleted   Event = "job_completed"
	EventQueueStarted   Event = "queue_started"
	EventQueueCompleted Event = "queue_completed"
	EventError          Event = "error"
	EventTest           Event = "test"
)

// Payload carries event-specific values keyed by name.
type Payload map[string]any

// Service defines the notification surface exposed to workflow components.
type Service interface {
	Publish(ctx context.Context, event Event, payload Payload) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	if cfg == nil {
		return noopService{}
	}
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

// format renders an event. Job-queued and queue-started events are accepted
// but not delivered.
func format(event Event, payload Payload) (message, bool) {
	switch event {
	case EventJobCompleted:
		audio := payloadString(payload, "audio")
		body := fmt.Sprintf("Captions ready: %s", audio)
		if cues := payloadInt(payload, "cues"); cues > 0 {
			body = fmt.Sprintf("%s (%d cues)", body, cues)
		}
		if output := payloadString(payload, "output"); output != "" {
			body = fmt.Sprintf("%s\nFile: %s", body, output)
		}
		return message{
			title: "wordglow - Captions Ready",
			body:  body,
			tags:  []string{"wordglow", "captions", "completed"},
		}, true
	case EventQueueCompleted:
		processed := payloadInt(payload, "processed")
		failed := payloadInt(payload, "failed")
		duration := payloadDuration(payload, "duration")
		if failed == 0 {
			return message{
				title: "wordglow - Queue Complete",
				body:  fmt.Sprintf("Queue processing complete: %d jobs in %s", processed, duration),
				tags:  []string{"wordglow", "queue", "completed"},
			}, true
		}
		return message{
			title: "wordglow - Queue Complete (with errors)",
			body:  fmt.Sprintf("Queue processing complete: %d succeeded, %d failed in %s", processed, failed, duration),
			tags:  []string{"wordglow", "queue", "completed"},
		}, true
	case EventError:
		var builder strings.Builder
		builder.WriteString("Error")
		if label := payloadString(payload, "context"); label != "" {
			builder.WriteString(" with ")
			builder.WriteString(label)
		}
		builder.WriteString(": ")
		if text := payloadString(payload, "error"); text != "" {
			builder.WriteString(text)
		} else {
			builder.WriteString("unknown")
		}
		return message{
			title:    "wordglow - Error",
			body:     builder.String(),
			tags:     []string{"wordglow", "error", "alert"},
			priority: "high",
		}, true
	case EventTest:
		return message{
			title:    "wordglow - Test",
			body:     "Notification system test",
			tags:     []string{"wordglow", "test"},
			priority: "low",
		}, true
	default:
		return message{}, false
	}
}

func payloadString(payload Payload, key string) string {
	if payload == nil {
		return ""
	}
	switch v := payload[key].(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case error:
		return strings.TrimSpace(v.Error())
	case fmt.Stringer:
		return strings.TrimSpace(v.String())
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}

func payloadInt(payload Payload, key string) int {
	if payload == nil {
		return 0
	}
	switch v := payload[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	default:
		return 0
	}
}

func payloadDuration(payload Payload, key string) time.Duration {
	d, _ := payload[key].(time.Duration)
	d = d.Round(time.Second)
	if d < 0 {
		d = 0
	}
	return d
}

func (n *ntfyService) send(ctx context.Context, data message) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.body))
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

func (noopService) Publish(context.Context, Event, Payload) error { return nil }
