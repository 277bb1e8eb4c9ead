package vision

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func testConfig(baseURL string) Config {
	return Config{
		APIKey:         "test-key",
		BaseURL:        baseURL,
		Model:          "gpt-4o-mini",
		TimeoutSeconds: 5,
		Temperature:    0.4,
	}
}

func describePayload(t *testing.T, r *http.Request) map[string]any {
	t.Helper()
	var payload map[string]any
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		t.Fatalf("decode request payload: %v", err)
	}
	return payload
}

func completionBody(content string) string {
	body, _ := json.Marshal(map[string]any{
		"choices": []map[string]any{
			{"message": map[string]any{"content": content}},
		},
	})
	return string(body)
}

func TestDescribeSendsMultimodalRequest(t *testing.T) {
	var gotPayload map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if auth := r.Header.Get("Authorization"); auth != "Bearer test-key" {
			t.Errorf("unexpected authorization header %q", auth)
		}
		gotPayload = describePayload(t, r)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(completionBody(`{"title":"Misty pine forest at dawn","description":"Fog drifts between tall pines.","keywords":["forest","fog","pine","dawn"],"keywords_zh":[],"category":"nature"}`)))
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL))
	desc, err := client.Describe(context.Background(), Request{
		ImageData:   []byte("fake-jpeg-bytes"),
		MIMEType:    "image/jpeg",
		MaxKeywords: 50,
		Languages:   []string{"en"},
	})
	if err != nil {
		t.Fatalf("Describe returned error: %v", err)
	}
	if desc.Title != "Misty pine forest at dawn" {
		t.Fatalf("unexpected title %q", desc.Title)
	}
	if len(desc.Keywords) != 4 {
		t.Fatalf("unexpected keywords %v", desc.Keywords)
	}

	messages, ok := gotPayload["messages"].([]any)
	if !ok || len(messages) != 2 {
		t.Fatalf("expected two messages, got %v", gotPayload["messages"])
	}
	user, ok := messages[1].(map[string]any)
	if !ok {
		t.Fatalf("unexpected user message shape: %v", messages[1])
	}
	parts, ok := user["content"].([]any)
	if !ok || len(parts) != 2 {
		t.Fatalf("expected text and image parts, got %v", user["content"])
	}
	imagePart, ok := parts[1].(map[string]any)
	if !ok || imagePart["type"] != "image_url" {
		t.Fatalf("expected image_url part, got %v", parts[1])
	}
	urlField, _ := imagePart["image_url"].(map[string]any)
	uri, _ := urlField["url"].(string)
	if !strings.HasPrefix(uri, "data:image/jpeg;base64,") {
		t.Fatalf("expected base64 data URI, got %q", uri)
	}
}

func TestDescribeRejectsMissingTitle(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(completionBody(`{"title":"","keywords":["x"]}`)))
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL))
	_, err := client.Describe(context.Background(), Request{ImageData: []byte("x")})
	if err == nil || !strings.Contains(err.Error(), "no title") {
		t.Fatalf("expected missing title error, got %v", err)
	}
}

func TestDescribeRetriesOnRateLimit(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.Header().Set("Retry-After", "1")
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"error":{"message":"slow down"}}`))
			return
		}
		_, _ = w.Write([]byte(completionBody(`{"title":"City street at night","description":"Neon lights reflect on wet asphalt.","keywords":["city","night","neon"],"category":"travel"}`)))
	}))
	defer server.Close()

	var slept []time.Duration
	client := NewClient(testConfig(server.URL),
		WithRetryMaxAttempts(3),
		WithSleeper(func(d time.Duration) { slept = append(slept, d) }),
	)
	desc, err := client.Describe(context.Background(), Request{ImageData: []byte("x")})
	if err != nil {
		t.Fatalf("Describe returned error: %v", err)
	}
	if desc.Title != "City street at night" {
		t.Fatalf("unexpected title %q", desc.Title)
	}
	if calls.Load() != 2 {
		t.Fatalf("expected 2 calls, got %d", calls.Load())
	}
	if len(slept) != 1 || slept[0] != time.Second {
		t.Fatalf("expected Retry-After honored, got %v", slept)
	}
}

func TestDescribeDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"bad key"}}`))
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL),
		WithRetryMaxAttempts(3),
		WithSleeper(func(time.Duration) {}),
	)
	_, err := client.Describe(context.Background(), Request{ImageData: []byte("x")})
	if err == nil || !strings.Contains(err.Error(), "http 401") {
		t.Fatalf("expected 401 error, got %v", err)
	}
	if calls.Load() != 1 {
		t.Fatalf("expected single call, got %d", calls.Load())
	}
}

func TestDescribeRetriesEmptyContent(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			_, _ = w.Write([]byte(completionBody("")))
			return
		}
		_, _ = w.Write([]byte(completionBody(`{"title":"Green tea in a cup","description":"Steam rises from a ceramic cup.","keywords":["tea","cup","steam"],"category":"food"}`)))
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL),
		WithRetryMaxAttempts(3),
		WithSleeper(func(time.Duration) {}),
	)
	desc, err := client.Describe(context.Background(), Request{ImageData: []byte("x")})
	if err != nil {
		t.Fatalf("Describe returned error: %v", err)
	}
	if desc.Category != "food" {
		t.Fatalf("unexpected category %q", desc.Category)
	}
	if calls.Load() != 2 {
		t.Fatalf("expected retry after empty content, got %d calls", calls.Load())
	}
}

func TestDescribeToleratesCodeFencedJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fenced := "```json\n{\"title\":\"Red tulip field\",\"description\":\"Rows of tulips under a clear sky.\",\"keywords\":[\"tulip\",\"field\",\"spring\"],\"category\":\"nature\"}\n```"
		_, _ = w.Write([]byte(completionBody(fenced)))
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL))
	desc, err := client.Describe(context.Background(), Request{ImageData: []byte("x")})
	if err != nil {
		t.Fatalf("Describe returned error: %v", err)
	}
	if desc.Title != "Red tulip field" {
		t.Fatalf("unexpected title %q", desc.Title)
	}
}

func TestHealthCheckVerifiesRoundTrip(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(completionBody(`{"ok":true}`)))
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL))
	if err := client.HealthCheck(context.Background()); err != nil {
		t.Fatalf("HealthCheck returned error: %v", err)
	}
}

func TestHealthCheckRequiresAPIKey(t *testing.T) {
	client := NewClient(Config{BaseURL: "http://localhost"})
	if err := client.HealthCheck(context.Background()); err == nil {
		t.Fatal("expected error for missing api key")
	}
}

func TestDecodeModelJSONExtractsEmbeddedObject(t *testing.T) {
	var parsed struct {
		Title string `json:"title"`
	}
	payload := "Here is the metadata you asked for: {\"title\":\"Harbor at sunset\"} hope it helps"
	if err := DecodeModelJSON(payload, &parsed); err != nil {
		t.Fatalf("DecodeModelJSON: %v", err)
	}
	if parsed.Title != "Harbor at sunset" {
		t.Fatalf("unexpected title %q", parsed.Title)
	}
}

func TestUserPromptRespectsLanguages(t *testing.T) {
	withZH := UserPrompt(40, []string{"en", "zh"}, nil)
	if !strings.Contains(withZH, "Simplified Chinese") {
		t.Fatalf("expected Chinese keyword instruction, got %q", withZH)
	}
	without := UserPrompt(40, []string{"en"}, nil)
	if !strings.Contains(without, "empty array") {
		t.Fatalf("expected empty keywords_zh instruction, got %q", without)
	}
	hinted := UserPrompt(40, []string{"en"}, []string{"dominant colors: blue, orange"})
	if !strings.Contains(hinted, "dominant colors: blue, orange") {
		t.Fatalf("expected hint in prompt, got %q", hinted)
	}
}
