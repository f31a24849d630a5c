package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"invoice-parser/internal/domain"
)

func newTestStructurer(endpoint string) *StructuringService {
	s := NewStructuringService(newTestConfig(), newTestLogger())
	s.endpoint = endpoint
	return s
}

func decodeChatRequest(t *testing.T, r *http.Request) chatRequest {
	t.Helper()
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		t.Fatalf("failed to decode upstream request: %v", err)
	}
	return req
}

func completionReply(content string) string {
	reply := map[string]interface{}{
		"choices": []map[string]interface{}{
			{"message": map[string]string{"content": content}},
		},
	}
	out, _ := json.Marshal(reply)
	return string(out)
}

func TestStructureText_ParsedVariant(t *testing.T) {
	var captured chatRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = decodeChatRequest(t, r)
		w.Write([]byte(completionReply(`{"invoice_number":"123","total":"50"}`)))
	}))
	defer server.Close()

	s := newTestStructurer(server.URL)
	result := s.StructureText(context.Background(), "Invoice #123, Total: $50")

	if result.Kind != domain.ExtractionParsed {
		t.Fatalf("expected parsed variant, got %s (%s)", result.Kind, result.ErrMessage)
	}
	var fields map[string]string
	if err := json.Unmarshal(result.Fields, &fields); err != nil {
		t.Fatalf("parsed fields not decodable: %v", err)
	}
	if fields["invoice_number"] != "123" || fields["total"] != "50" {
		t.Errorf("unexpected fields: %v", fields)
	}

	if len(captured.Messages) != 2 {
		t.Fatalf("expected system + user turns, got %d messages", len(captured.Messages))
	}
	if captured.Messages[0].Role != "system" {
		t.Errorf("first turn should be the system instruction, got %q", captured.Messages[0].Role)
	}
	sys, _ := captured.Messages[0].Content.(string)
	for _, field := range []string{"invoice_number", "due_date", "bank_details"} {
		if !strings.Contains(sys, field) {
			t.Errorf("system instruction missing field %q", field)
		}
	}
	if captured.Model != "qwen/qwen3-14b:free" {
		t.Errorf("unexpected model: %s", captured.Model)
	}
}

func TestStructureText_FallbackVariant(t *testing.T) {
	raw := "Sorry, I cannot process this"
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(completionReply(raw)))
	}))
	defer server.Close()

	s := newTestStructurer(server.URL)
	result := s.StructureText(context.Background(), "some ocr text")

	if result.Kind != domain.ExtractionFallback {
		t.Fatalf("expected fallback variant, got %s", result.Kind)
	}
	if result.RawResponse != raw {
		t.Errorf("expected raw response preserved, got %q", result.RawResponse)
	}
}

func TestStructureText_QuotaFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
		w.Write([]byte(`{"error":{"message":"More credits are required to run this request.","code":402}}`))
	}))
	defer server.Close()

	s := newTestStructurer(server.URL)
	result := s.StructureText(context.Background(), "text")

	if result.Kind != domain.ExtractionError {
		t.Fatalf("expected error variant, got %s", result.Kind)
	}
	if !result.Quota {
		t.Error("402 response must be flagged as a quota failure")
	}
	if !strings.Contains(result.ErrMessage, "More credits are required") {
		t.Errorf("expected upstream message in cause, got %q", result.ErrMessage)
	}
}

func TestStructureText_TransportFailure(t *testing.T) {
	// Closed server: connection refused.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	endpoint := server.URL
	server.Close()

	s := newTestStructurer(endpoint)
	result := s.StructureText(context.Background(), "text")

	if result.Kind != domain.ExtractionError {
		t.Fatalf("expected error variant, got %s", result.Kind)
	}
	if result.Quota {
		t.Error("connection failure must not be flagged as quota")
	}
	if !strings.Contains(result.ErrMessage, "request failed") {
		t.Errorf("expected transport cause, got %q", result.ErrMessage)
	}
}

func TestStructureText_TruncatesToPromptBudget(t *testing.T) {
	var captured chatRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = decodeChatRequest(t, r)
		w.Write([]byte(completionReply(`{}`)))
	}))
	defer server.Close()

	s := newTestStructurer(server.URL)
	long := strings.Repeat("a", maxPromptChars+500)
	s.StructureText(context.Background(), long)

	user, _ := captured.Messages[1].Content.(string)
	wantText := strings.Repeat("a", maxPromptChars)
	if !strings.HasSuffix(user, wantText) {
		t.Error("user turn should carry exactly the truncated OCR text")
	}
	if strings.Contains(user, strings.Repeat("a", maxPromptChars+1)) {
		t.Errorf("OCR text exceeded the %d character budget", maxPromptChars)
	}
}

func TestStructureText_Deterministic(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(completionReply(`{"invoice_number":"INV-1"}`)))
	}))
	defer server.Close()

	s := newTestStructurer(server.URL)
	first := s.StructureText(context.Background(), "Invoice INV-1")
	second := s.StructureText(context.Background(), "Invoice INV-1")

	if !reflect.DeepEqual(first, second) {
		t.Errorf("identical input against a deterministic stub must produce identical output:\n%+v\n%+v", first, second)
	}
}

func TestStructureText_RetriesTransportFailures(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(completionReply(`{"invoice_number":"1"}`)))
	}))
	defer server.Close()

	cfg := newTestConfig()
	cfg.maxRetries = 2
	s := NewStructuringService(cfg, newTestLogger())
	s.endpoint = server.URL

	result := s.StructureText(context.Background(), "text")

	if result.Kind != domain.ExtractionParsed {
		t.Fatalf("expected recovery on retry, got %s (%s)", result.Kind, result.ErrMessage)
	}
	if attempts != 2 {
		t.Errorf("expected 2 attempts, got %d", attempts)
	}
}

func TestStructureText_NoRetryByDefault(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	s := newTestStructurer(server.URL)
	result := s.StructureText(context.Background(), "text")

	if result.Kind != domain.ExtractionError {
		t.Fatalf("expected error variant, got %s", result.Kind)
	}
	if attempts != 1 {
		t.Errorf("default policy is a single attempt, got %d", attempts)
	}
}

func TestStructureImage_SendsDataURL(t *testing.T) {
	dir := t.TempDir()
	imagePath := filepath.Join(dir, "page.png")
	if err := os.WriteFile(imagePath, []byte("fake png bytes"), 0o644); err != nil {
		t.Fatal(err)
	}

	var rawBody []byte
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var err error
		rawBody, err = json.Marshal(decodeChatRequest(t, r))
		if err != nil {
			t.Errorf("re-encode failed: %v", err)
		}
		w.Write([]byte(completionReply(`{"invoice_number":"7"}`)))
	}))
	defer server.Close()

	s := newTestStructurer(server.URL)
	result := s.StructureImage(context.Background(), imagePath, "Extract the invoice fields")

	if result.Kind != domain.ExtractionParsed {
		t.Fatalf("expected parsed variant, got %s (%s)", result.Kind, result.ErrMessage)
	}
	body := string(rawBody)
	if !strings.Contains(body, "data:image/png;base64,") {
		t.Error("request should embed the page image as a base64 data URL")
	}
	if !strings.Contains(body, "Extract the invoice fields") {
		t.Error("request should carry the instruction text")
	}
}

func TestStructureImage_MissingFile(t *testing.T) {
	s := newTestStructurer("http://unused.invalid")
	result := s.StructureImage(context.Background(), "/nonexistent/page.png", "")

	if result.Kind != domain.ExtractionError {
		t.Fatalf("expected error variant for unreadable image, got %s", result.Kind)
	}
}
