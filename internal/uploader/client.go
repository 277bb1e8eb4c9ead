package uploader

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"stockmate/internal/config"
	"stockmate/internal/platform"
)

const (
	shutterstockUploadURL = "https://api.shutterstock.com/v2/images/uploads"
	adobeStockUploadURL   = "https://cc-api-aiss.adobe.io/api/v2/content"

	uploadRetryAttempts = 3
	uploadRetryBase     = 2 * time.Second
)

// Client submits one image file plus its curated metadata to a marketplace.
type Client interface {
	Marketplace() platform.Platform
	Upload(ctx context.Context, sourcePath string, meta platform.ImageMetadata) error
}

// HTTPClient uploads files as multipart form data to a marketplace endpoint.
type HTTPClient struct {
	marketplace platform.Platform
	endpoint    string
	headers     map[string]string
	httpClient  *http.Client
	sleeper     func(time.Duration)
}

// NewShutterstockClient builds an upload client for the Shutterstock
// contributor API using the configured API key as a bearer token.
func NewShutterstockClient(cfg *config.Config) *HTTPClient {
	return &HTTPClient{
		marketplace: platform.Shutterstock,
		endpoint:    shutterstockUploadURL,
		headers: map[string]string{
			"Authorization": "Bearer " + strings.TrimSpace(cfg.Uploader.ShutterstockAPIKey),
		},
		httpClient: &http.Client{Timeout: uploadTimeout(cfg)},
	}
}

// NewAdobeStockClient builds an upload client for the Adobe Stock contributor
// API, which authenticates with an API key header plus an access token.
func NewAdobeStockClient(cfg *config.Config) *HTTPClient {
	return &HTTPClient{
		marketplace: platform.AdobeStock,
		endpoint:    adobeStockUploadURL,
		headers: map[string]string{
			"x-api-key":     strings.TrimSpace(cfg.Uploader.AdobeStockAPIKey),
			"Authorization": "Bearer " + strings.TrimSpace(cfg.Uploader.AdobeStockAccessKey),
		},
		httpClient: &http.Client{Timeout: uploadTimeout(cfg)},
	}
}

// NewHTTPClient builds a generic upload client (used in tests).
func NewHTTPClient(marketplace platform.Platform, endpoint string, headers map[string]string, httpClient *http.Client) *HTTPClient {
	return &HTTPClient{marketplace: marketplace, endpoint: endpoint, headers: headers, httpClient: httpClient}
}

func uploadTimeout(cfg *config.Config) time.Duration {
	if cfg.Uploader.TimeoutSeconds > 0 {
		return time.Duration(cfg.Uploader.TimeoutSeconds) * time.Second
	}
	return 120 * time.Second
}

func (c *HTTPClient) Marketplace() platform.Platform { return c.marketplace }

// Upload sends the file and its rendition metadata, retrying on throttling
// and server errors with exponential backoff.
func (c *HTTPClient) Upload(ctx context.Context, sourcePath string, meta platform.ImageMetadata) error {
	var lastErr error
	for attempt := 1; attempt <= uploadRetryAttempts; attempt++ {
		status, err := c.uploadOnce(ctx, sourcePath, meta)
		if err == nil {
			return nil
		}
		lastErr = err
		if !retryableStatus(status) || attempt == uploadRetryAttempts {
			return err
		}
		if err := c.sleep(ctx, uploadRetryBase*time.Duration(1<<(attempt-1))); err != nil {
			return err
		}
	}
	return lastErr
}

func retryableStatus(status int) bool {
	return status == http.StatusTooManyRequests || status >= http.StatusInternalServerError
}

func (c *HTTPClient) uploadOnce(ctx context.Context, sourcePath string, meta platform.ImageMetadata) (int, error) {
	file, err := os.Open(sourcePath)
	if err != nil {
		return 0, fmt.Errorf("open upload source: %w", err)
	}
	defer file.Close()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", filepath.Base(sourcePath))
	if err != nil {
		return 0, fmt.Errorf("create multipart: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return 0, fmt.Errorf("copy upload body: %w", err)
	}
	if err := writeMetadataFields(writer, meta); err != nil {
		return 0, err
	}
	if err := writer.Close(); err != nil {
		return 0, fmt.Errorf("finalize multipart: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, &body)
	if err != nil {
		return 0, fmt.Errorf("new upload request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	for key, value := range c.headers {
		req.Header.Set(key, value)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("upload to %s: %w", c.marketplace, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusMultipleChoices {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return resp.StatusCode, fmt.Errorf(
			"upload to %s: http %s: %s",
			c.marketplace,
			strconv.Itoa(resp.StatusCode),
			strings.TrimSpace(string(snippet)),
		)
	}
	return resp.StatusCode, nil
}

// writeMetadataFields attaches the curated rendition to the multipart body.
// Marketplaces index the submission from these fields, so an upload without
// them would strand the asset untitled in the contributor queue.
func writeMetadataFields(writer *multipart.Writer, meta platform.ImageMetadata) error {
	if meta.Title != "" {
		if err := writer.WriteField("title", meta.Title); err != nil {
			return fmt.Errorf("write title field: %w", err)
		}
	}
	if meta.Description != "" {
		if err := writer.WriteField("description", meta.Description); err != nil {
			return fmt.Errorf("write description field: %w", err)
		}
	}
	if len(meta.Keywords) > 0 {
		if err := writer.WriteField("keywords", strings.Join(meta.Keywords, ",")); err != nil {
			return fmt.Errorf("write keywords field: %w", err)
		}
	}
	return nil
}

func (c *HTTPClient) sleep(ctx context.Context, delay time.Duration) error {
	if c.sleeper != nil {
		c.sleeper(delay)
		return ctx.Err()
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// WithSleeper overrides retry sleeps (used in tests).
func (c *HTTPClient) WithSleeper(sleeper func(time.Duration)) *HTTPClient {
	c.sleeper = sleeper
	return c
}
