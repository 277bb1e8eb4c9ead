package uploader_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"stockmate/internal/catalog"
	"stockmate/internal/logging"
	"stockmate/internal/platform"
	"stockmate/internal/services"
	"stockmate/internal/testsupport"
	"stockmate/internal/uploader"
)

func TestUploaderSubmitsMultipart(t *testing.T) {
	var gotAuth atomic.Value
	var gotFile atomic.Value
	var gotFields atomic.Value
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth.Store(r.Header.Get("Authorization"))
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse multipart: %v", err)
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			t.Errorf("form file: %v", err)
		} else {
			file.Close()
			gotFile.Store(header.Filename)
		}
		gotFields.Store(map[string]string{
			"title":       r.FormValue("title"),
			"description": r.FormValue("description"),
			"keywords":    r.FormValue("keywords"),
		})
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	cfg := testsupport.NewConfig(t)
	cfg.Uploader.Enabled = true
	cfg.Uploader.MinIntervalSeconds = 0
	store := testsupport.MustOpenStore(t, cfg)

	client := uploader.NewHTTPClient(platform.Shutterstock, server.URL, map[string]string{"Authorization": "Bearer shutter-key"}, server.Client())
	handler := uploader.NewUploaderWithClients(cfg, store, logging.NewNop(), client)

	path := filepath.Join(testsupport.BaseDir(cfg), "in", "upload.jpg")
	testsupport.WriteGradientImage(t, path, 64, 64)
	item := testsupport.NewImage(t, store, path, "")
	if err := item.SetRenditions(map[platform.Platform]platform.ImageMetadata{
		platform.Shutterstock: {
			Filename:    "upload.jpg",
			Title:       "Rolling dunes at sunset",
			Description: "Wind-carved sand ridges glowing in late light.",
			Keywords:    []string{"dunes", "desert", "sunset"},
			Platform:    platform.Shutterstock,
		},
	}); err != nil {
		t.Fatalf("SetRenditions: %v", err)
	}

	if err := handler.Execute(context.Background(), item); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if gotAuth.Load() != "Bearer shutter-key" {
		t.Fatalf("unexpected auth header %v", gotAuth.Load())
	}
	if gotFile.Load() != "upload.jpg" {
		t.Fatalf("unexpected uploaded filename %v", gotFile.Load())
	}
	fields, _ := gotFields.Load().(map[string]string)
	if fields["title"] != "Rolling dunes at sunset" {
		t.Fatalf("unexpected title field %q", fields["title"])
	}
	if fields["description"] != "Wind-carved sand ridges glowing in late light." {
		t.Fatalf("unexpected description field %q", fields["description"])
	}
	if fields["keywords"] != "dunes,desert,sunset" {
		t.Fatalf("unexpected keywords field %q", fields["keywords"])
	}
}

func TestUploaderRetriesOnServerError(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	cfg := testsupport.NewConfig(t)
	cfg.Uploader.Enabled = true
	cfg.Uploader.MinIntervalSeconds = 0
	store := testsupport.MustOpenStore(t, cfg)

	client := uploader.NewHTTPClient(platform.AdobeStock, server.URL, nil, server.Client()).WithSleeper(func(time.Duration) {})
	handler := uploader.NewUploaderWithClients(cfg, store, logging.NewNop(), client)

	path := filepath.Join(testsupport.BaseDir(cfg), "in", "retry.jpg")
	testsupport.WriteGradientImage(t, path, 64, 64)
	item := testsupport.NewImage(t, store, path, "")

	if err := handler.Execute(context.Background(), item); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if calls.Load() != 2 {
		t.Fatalf("expected retry, got %d calls", calls.Load())
	}
}

func TestUploaderGivesUpOnClientError(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	cfg := testsupport.NewConfig(t)
	cfg.Uploader.Enabled = true
	cfg.Uploader.MinIntervalSeconds = 0
	store := testsupport.MustOpenStore(t, cfg)

	client := uploader.NewHTTPClient(platform.Shutterstock, server.URL, nil, server.Client()).WithSleeper(func(time.Duration) {})
	handler := uploader.NewUploaderWithClients(cfg, store, logging.NewNop(), client)

	path := filepath.Join(testsupport.BaseDir(cfg), "in", "denied.jpg")
	testsupport.WriteGradientImage(t, path, 64, 64)
	item := testsupport.NewImage(t, store, path, "")

	err := handler.Execute(context.Background(), item)
	if err == nil || !strings.Contains(err.Error(), "http 403") {
		t.Fatalf("expected 403 error, got %v", err)
	}
	if calls.Load() != 1 {
		t.Fatalf("expected single attempt, got %d", calls.Load())
	}
	if status := services.FailureStatus(err); status != catalog.StatusFailed {
		t.Fatalf("expected failed status, got %s", status)
	}
}

func TestUploaderDisabledIsNoop(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	handler := uploader.NewUploaderWithClients(cfg, store, logging.NewNop())
	item := testsupport.NewImage(t, store, "/photos/skip.jpg", "")
	if err := handler.Execute(context.Background(), item); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !strings.Contains(item.ProgressMessage, "disabled") {
		t.Fatalf("unexpected progress message %q", item.ProgressMessage)
	}
}

func TestUploaderEnabledWithoutCredentialsFails(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Uploader.Enabled = true
	store := testsupport.MustOpenStore(t, cfg)

	handler := uploader.NewUploaderWithClients(cfg, store, logging.NewNop())
	item := testsupport.NewImage(t, store, "/photos/x.jpg", "")
	err := handler.Execute(context.Background(), item)
	if err == nil {
		t.Fatal("expected configuration error")
	}
	if status := services.FailureStatus(err); status != catalog.StatusReview {
		t.Fatalf("expected review failure status, got %s", status)
	}
}

func TestUploaderRateLimitsUploads(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	cfg := testsupport.NewConfig(t)
	cfg.Uploader.Enabled = true
	cfg.Uploader.MinIntervalSeconds = 30
	store := testsupport.MustOpenStore(t, cfg)

	first := uploader.NewHTTPClient(platform.Shutterstock, server.URL, nil, server.Client())
	second := uploader.NewHTTPClient(platform.AdobeStock, server.URL, nil, server.Client())
	handler := uploader.NewUploaderWithClients(cfg, store, logging.NewNop(), first, second)

	var slept []time.Duration
	handler.SetSleeper(func(d time.Duration) { slept = append(slept, d) })

	path := filepath.Join(testsupport.BaseDir(cfg), "in", "limited.jpg")
	testsupport.WriteGradientImage(t, path, 64, 64)
	item := testsupport.NewImage(t, store, path, "")

	if err := handler.Execute(context.Background(), item); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if len(slept) == 0 {
		t.Fatal("expected the second upload to wait for the rate-limit slot")
	}
}
