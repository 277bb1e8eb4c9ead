package notifications_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"stockmate/internal/config"
	"stockmate/internal/notifications"
)

func TestNewServiceReturnsNoopWhenTopicMissing(t *testing.T) {
	cfg := config.Default()
	cfg.Notifications.NtfyTopic = ""
	svc := notifications.NewService(&cfg)
	if err := svc.NotifyBatchStarted(context.Background(), 3); err != nil {
		t.Fatalf("expected noop notifier to return nil, got %v", err)
	}
}

func TestNtfyServiceFormatsPayloads(t *testing.T) {
	tests := []struct {
		name           string
		notify         func(svc notifications.Service) error
		expectTitle    string
		expectMessage  string
		expectTags     string
		expectPriority string
	}{
		{
			name: "batch started",
			notify: func(svc notifications.Service) error {
				return svc.NotifyBatchStarted(context.Background(), 12)
			},
			expectTitle:   "Stockmate - Batch Started",
			expectMessage: "Started processing batch with 12 images",
			expectTags:    "stockmate,batch,started",
		},
		{
			name: "batch completed clean",
			notify: func(svc notifications.Service) error {
				return svc.NotifyBatchCompleted(context.Background(), 10, 0, 90*time.Second)
			},
			expectTitle:   "Stockmate - Batch Complete",
			expectMessage: "Batch complete: 10 images processed in 1m30s",
			expectTags:    "stockmate,batch,completed",
		},
		{
			name: "batch completed with failures",
			notify: func(svc notifications.Service) error {
				return svc.NotifyBatchCompleted(context.Background(), 8, 2, time.Minute)
			},
			expectTitle:   "Stockmate - Batch Complete (with errors)",
			expectMessage: "Batch complete: 8 succeeded, 2 failed in 1m0s",
			expectTags:    "stockmate,batch,completed",
		},
		{
			name: "review required",
			notify: func(svc notifications.Service) error {
				return svc.NotifyReviewRequired(context.Background(), "dunes.jpg", "Near-duplicate of beach.jpg")
			},
			expectTitle:   "Stockmate - Review Required",
			expectMessage: "Needs review: dunes.jpg\nNear-duplicate of beach.jpg",
			expectTags:    "stockmate,review",
		},
		{
			name: "error",
			notify: func(svc notifications.Service) error {
				return svc.NotifyError(context.Background(), errors.New("vision api unreachable"), "generating")
			},
			expectTitle:    "Stockmate - Error",
			expectMessage:  "Error with generating: vision api unreachable",
			expectTags:     "stockmate,error,alert",
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
					t.Fatalf("unexpected method: %s", r.Method)
				}
				captured.title = r.Header.Get("Title")
				captured.tags = r.Header.Get("Tags")
				captured.priority = r.Header.Get("Priority")
				body, err := io.ReadAll(r.Body)
				if err != nil {
					t.Fatalf("read body: %v", err)
				}
				captured.body = string(body)
				_ = r.Body.Close()
				w.WriteHeader(http.StatusOK)
			}))
			defer server.Close()

			cfg := config.Default()
			cfg.Notifications.NtfyTopic = server.URL
			cfg.Notifications.RequestTimeout = 5

			svc := notifications.NewService(&cfg)
			if err := tc.notify(svc); err != nil {
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

func TestNtfyServiceHonorsCategoryToggles(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("unexpected call for suppressed category: %s", r.Header.Get("Title"))
	}))
	defer server.Close()

	cfg := config.Default()
	cfg.Notifications.NtfyTopic = server.URL
	cfg.Notifications.Batch = false
	cfg.Notifications.Review = false
	cfg.Notifications.Errors = false

	svc := notifications.NewService(&cfg)
	ctx := context.Background()
	if err := svc.NotifyBatchStarted(ctx, 1); err != nil {
		t.Fatalf("suppressed batch event returned error: %v", err)
	}
	if err := svc.NotifyReviewRequired(ctx, "x.jpg", "reason"); err != nil {
		t.Fatalf("suppressed review event returned error: %v", err)
	}
	if err := svc.NotifyError(ctx, errors.New("boom"), "stage"); err != nil {
		t.Fatalf("suppressed error event returned error: %v", err)
	}
}
