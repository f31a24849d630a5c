package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"invoice-parser/internal/domain"
)

const (
	openRouterURL = "https://openrouter.ai/api/v1/chat/completions"

	// Truncate OCR text to stay within upstream request-size limits.
	maxPromptChars = 3000

	systemInstruction = "You are an invoice parser. Extract structured invoice information such as:\n" +
		"- invoice_number\n" +
		"- invoice_date\n" +
		"- due_date\n" +
		"- from (name, address, email)\n" +
		"- to (name, address, email)\n" +
		"- items (description, quantity, rate, subtotal)\n" +
		"- tax, total\n" +
		"- bank_details (bank_name, account_number, bsb)\n\n" +
		"Return the result as a valid JSON object."
)

// StructuringService sends page content to the OpenRouter chat-completions
// endpoint and maps the reply into a StructuredExtraction. Failures are
// returned as data, never raised: a non-JSON reply becomes the fallback
// variant, a transport or quota failure becomes the error variant.
type StructuringService struct {
	endpoint   string
	apiKey     string
	model      string
	httpClient *http.Client
	logger     domain.Logger

	maxRetries int
	backoff    time.Duration
}

// NewStructuringService creates a client from application config
func NewStructuringService(cfg domain.Config, logger domain.Logger) *StructuringService {
	return &StructuringService{
		endpoint: openRouterURL,
		apiKey:   cfg.GetOpenRouterAPIKey(),
		model:    cfg.GetOpenRouterModel(),
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.GetStructuringTimeout()) * time.Second,
		},
		logger:     logger,
		maxRetries: cfg.GetStructuringMaxRetries(),
		backoff:    time.Duration(cfg.GetStructuringRetryBackoffMS()) * time.Millisecond,
	}
}

type chatMessage struct {
	Role string `json:"role"`
	// Content is a plain string for text-only turns, or a list of
	// contentPart for image turns.
	Content interface{} `json:"content"`
}

type contentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type imageURL struct {
	URL string `json:"url"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Code    int    `json:"code"`
	} `json:"error"`
}

// StructureText sends the text-only request variant: the OCR text,
// truncated to the prompt budget, under the fixed system instruction.
func (s *StructuringService) StructureText(ctx context.Context, ocrText string) domain.StructuredExtraction {
	truncated := ocrText
	if len(truncated) > maxPromptChars {
		truncated = truncated[:maxPromptChars]
	}

	req := chatRequest{
		Model: s.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemInstruction},
			{Role: "user", Content: "Extract structured data from the following invoice text:\n\n" + truncated},
		},
	}
	return s.complete(ctx, req)
}

// StructureImage sends the image+text request variant: the page image as
// a base64 data URL, optionally alongside an instruction string.
func (s *StructuringService) StructureImage(ctx context.Context, imagePath string, instruction string) domain.StructuredExtraction {
	data, err := os.ReadFile(imagePath)
	if err != nil {
		s.logger.Error("Failed to read page image for structuring", err, "image", imagePath)
		return domain.ErrorExtraction(fmt.Sprintf("failed to read page image: %v", err))
	}
	if instruction == "" {
		instruction = "Extract structured data from this invoice image."
	}

	parts := []contentPart{
		{Type: "text", Text: instruction},
		{Type: "image_url", ImageURL: &imageURL{URL: dataURL(imagePath, data)}},
	}
	req := chatRequest{
		Model: s.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemInstruction},
			{Role: "user", Content: parts},
		},
	}
	return s.complete(ctx, req)
}

// complete performs the HTTP exchange and maps the outcome onto the
// extraction variants. Only transport-level failures are retried, and only
// when a retry budget is configured.
func (s *StructuringService) complete(ctx context.Context, req chatRequest) domain.StructuredExtraction {
	body, err := json.Marshal(req)
	if err != nil {
		return domain.ErrorExtraction(fmt.Sprintf("failed to encode request: %v", err))
	}

	var lastFailure domain.StructuredExtraction
	for attempt := 0; attempt <= s.maxRetries; attempt++ {
		if attempt > 0 {
			s.logger.Warn("Retrying structuring request",
				"attempt", attempt,
				"max_retries", s.maxRetries,
				"backoff", s.backoff.String(),
			)
			select {
			case <-ctx.Done():
				return domain.ErrorExtraction(fmt.Sprintf("request cancelled: %v", ctx.Err()))
			case <-time.After(s.backoff):
			}
		}

		result, retryable := s.doRequest(ctx, body)
		if !retryable {
			return result
		}
		lastFailure = result
	}
	return lastFailure
}

// doRequest performs one attempt. The second return value reports whether
// the failure is transport-level and therefore eligible for retry.
func (s *StructuringService) doRequest(ctx context.Context, body []byte) (domain.StructuredExtraction, bool) {
	start := time.Now()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return domain.ErrorExtraction(fmt.Sprintf("failed to build request: %v", err)), false
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.httpClient.Do(httpReq)
	if err != nil {
		s.logger.Error("Structuring request failed", err,
			"model", s.model,
			"elapsed", time.Since(start).Round(time.Millisecond).String(),
		)
		return domain.ErrorExtraction(fmt.Sprintf("request failed: %v", err)), true
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.ErrorExtraction(fmt.Sprintf("failed to read response: %v", err)), true
	}

	s.logger.Info("Structuring request completed",
		"model", s.model,
		"status", resp.StatusCode,
		"elapsed", time.Since(start).Round(time.Millisecond).String(),
	)

	if resp.StatusCode != http.StatusOK {
		// Distinguish "service refused for billing reasons" from
		// "service unreachable".
		if isQuotaRefusal(resp.StatusCode, respBody) {
			s.logger.Warn("Structuring refused: insufficient credits", "status", resp.StatusCode)
			return domain.QuotaExtraction(
				fmt.Sprintf("insufficient credits: %s", upstreamErrorMessage(respBody)),
			), false
		}
		s.logger.Error("Structuring returned non-success status",
			fmt.Errorf("HTTP %d", resp.StatusCode),
			"body", string(respBody),
		)
		return domain.ErrorExtraction(
			fmt.Sprintf("upstream returned HTTP %d: %s", resp.StatusCode, upstreamErrorMessage(respBody)),
		), resp.StatusCode >= 500
	}

	var parsed chatResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil || len(parsed.Choices) == 0 {
		s.logger.Error("Structuring response missing choices", err, "body", string(respBody))
		return domain.ErrorExtraction("upstream returned an empty completion"), false
	}

	return extractionFromReply(parsed.Choices[0].Message.Content), false
}

// extractionFromReply parses the model's reply content as JSON. A reply
// that is not a JSON mapping falls back to the raw text; this is an
// expected outcome, not a fatal error.
func extractionFromReply(content string) domain.StructuredExtraction {
	trimmed := strings.TrimSpace(content)
	var fields map[string]interface{}
	if err := json.Unmarshal([]byte(trimmed), &fields); err != nil {
		return domain.FallbackExtraction(content)
	}
	return domain.ParsedExtraction(json.RawMessage(trimmed))
}

// isQuotaRefusal reports whether the upstream rejected the request for
// billing reasons. OpenRouter signals this with HTTP 402 and a body along
// the lines of "More credits are required".
func isQuotaRefusal(status int, body []byte) bool {
	if status == http.StatusPaymentRequired {
		return true
	}
	lower := strings.ToLower(string(body))
	return strings.Contains(lower, "more credits") || strings.Contains(lower, "insufficient credits")
}

// upstreamErrorMessage pulls the human-readable message out of an error
// body, falling back to the raw body.
func upstreamErrorMessage(body []byte) string {
	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Error != nil && parsed.Error.Message != "" {
		return parsed.Error.Message
	}
	return strings.TrimSpace(string(body))
}

// dataURL encodes an image for transport inside a message content part.
func dataURL(imagePath string, data []byte) string {
	mime := "image/png"
	switch strings.ToLower(filepath.Ext(imagePath)) {
	case ".jpg", ".jpeg":
		mime = "image/jpeg"
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
}
