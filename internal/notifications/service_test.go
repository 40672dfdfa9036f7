package notifications_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"freestyle/internal/config"
	"freestyle/internal/notifications"
)

func TestNewServiceReturnsNoopWhenTopicMissing(t *testing.T) {
	cfg := config.Default()
	cfg.Notifications.NtfyTopic = ""
	svc := notifications.NewService(&cfg)
	if err := svc.Publish(context.Background(), notifications.EventBatchStarted, notifications.Payload{"count": 3}); err != nil {
		t.Fatalf("expected noop notifier to return nil, got %v", err)
	}
}

func TestNtfyServiceFormatsPayloads(t *testing.T) {
	tests := []struct {
		name           string
		event          notifications.Event
		payload        notifications.Payload
		expectTitle    string
		expectMessage  string
		expectTags     string
		expectPriority string
	}{
		{
			name:          "batch started",
			event:         notifications.EventBatchStarted,
			payload:       notifications.Payload{"count": 4},
			expectTitle:   "Freestyle - Batch Started",
			expectMessage: "Processing 4 tracks",
			expectTags:    "freestyle,batch,started",
		},
		{
			name:          "batch completed",
			event:         notifications.EventBatchCompleted,
			payload:       notifications.Payload{"recorded": 3, "failed": 0, "elapsed": 90 * time.Second},
			expectTitle:   "Freestyle - Batch Complete",
			expectMessage: "Total tracks processed: 3 in 1m30s",
			expectTags:    "freestyle,batch,completed",
		},
		{
			name:          "batch completed with failures",
			event:         notifications.EventBatchCompleted,
			payload:       notifications.Payload{"recorded": 2, "failed": 1},
			expectTitle:   "Freestyle - Batch Complete (with errors)",
			expectMessage: "Total tracks processed: 2, 1 failed in 0s",
			expectTags:    "freestyle,batch,warning",
		},
		{
			name:           "item failed",
			event:          notifications.EventItemFailed,
			payload:        notifications.Payload{"slug": "late-night", "stage": "mastering", "error": errors.New("render exploded ")},
			expectTitle:    "Freestyle - Track Failed",
			expectMessage:  "late-night failed during mastering: render exploded",
			expectTags:     "freestyle,track,failed",
			expectPriority: "high",
		},
		{
			name:           "error",
			event:          notifications.EventError,
			payload:        notifications.Payload{"context": "manifest", "error": "disk full"},
			expectTitle:    "Freestyle - Error",
			expectMessage:  "Error during manifest: disk full",
			expectTags:     "freestyle,error,alert",
			expectPriority: "high",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var captured struct {
				title    string
				tags     string
				priority string
				body     string
			}

			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodPost {
					t.Errorf("unexpected method: %s", r.Method)
				}
				captured.title = r.Header.Get("Title")
				captured.tags = r.Header.Get("Tags")
				captured.priority = r.Header.Get("Priority")
				body, _ := io.ReadAll(r.Body)
				captured.body = string(body)
				w.WriteHeader(http.StatusOK)
			}))
			defer server.Close()

			cfg := config.Default()
			cfg.Notifications.NtfyTopic = server.URL
			cfg.Notifications.RequestTimeout = 5

			svc := notifications.NewService(&cfg)
			if err := svc.Publish(context.Background(), tc.event, tc.payload); err != nil {
				t.Fatalf("notification returned error: %v", err)
			}

			if captured.title != tc.expectTitle {
				t.Fatalf("expected title %q, got %q", tc.expectTitle, captured.title)
			}
			if captured.body != tc.expectMessage {
				t.Fatalf("expected message %q, got %q", tc.expectMessage, captured.body)
			}
			if captured.tags != tc.expectTags {
				t.Fatalf("expected tags %q, got %q", tc.expectTags, captured.tags)
			}
			if captured.priority != tc.expectPriority {
				t.Fatalf("expected priority %q, got %q", tc.expectPriority, captured.priority)
			}
		})
	}
}

func TestNtfyServiceIgnoresSuppressedEvents(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected call for suppressed event: %s", r.URL.String())
	}))
	defer server.Close()

	cfg := config.Default()
	cfg.Notifications.NtfyTopic = server.URL

	svc := notifications.NewService(&cfg)
	for _, event := range []notifications.Event{notifications.EventItemRecorded, notifications.Event("unknown")} {
		if err := svc.Publish(context.Background(), event, notifications.Payload{"slug": "ignored"}); err != nil {
			t.Fatalf("expected no error for suppressed event %s, got %v", event, err)
		}
	}
}

func TestNtfyServiceReportsServerErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "topic locked", http.StatusForbidden)
	}))
	defer server.Close()

	cfg := config.Default()
	cfg.Notifications.NtfyTopic = server.URL

	err := notifications.NewService(&cfg).Publish(context.Background(), notifications.EventTest, nil)
	if err == nil {
		t.Fatal("expected error for 403 response")
	}
}
