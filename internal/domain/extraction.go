package domain

import "encoding/json"

// ExtractionKind discriminates the StructuredExtraction variants.
type ExtractionKind string

const (
	// ExtractionParsed means the model reply was valid JSON.
	ExtractionParsed ExtractionKind = "parsed"
	// ExtractionFallback means the reply arrived but was not valid JSON;
	// the raw reply text is preserved. This is an expected outcome, not
	// an error.
	ExtractionFallback ExtractionKind = "fallback"
	// ExtractionError means the structuring call itself failed
	// (network, HTTP status, quota exhaustion).
	ExtractionError ExtractionKind = "error"
)

// StructuredExtraction is a tagged variant: exactly one of Fields,
// RawResponse or ErrMessage is meaningful, selected by Kind. Consumers
// switch on Kind instead of probing optional keys.
type StructuredExtraction struct {
	Kind        ExtractionKind  `json:"-"`
	Fields      json.RawMessage `json:"-"`
	RawResponse string          `json:"-"`
	ErrMessage  string          `json:"-"`
	// Quota marks an error variant caused by upstream credit exhaustion,
	// so callers can show an actionable message.
	Quota bool `json:"-"`
}

// ParsedExtraction builds the success variant from a raw JSON mapping.
func ParsedExtraction(fields json.RawMessage) StructuredExtraction {
	return StructuredExtraction{Kind: ExtractionParsed, Fields: fields}
}

// FallbackExtraction builds the variant for a non-JSON model reply.
func FallbackExtraction(raw string) StructuredExtraction {
	return StructuredExtraction{Kind: ExtractionFallback, RawResponse: raw}
}

// ErrorExtraction builds the variant for a failed structuring call.
func ErrorExtraction(cause string) StructuredExtraction {
	return StructuredExtraction{Kind: ExtractionError, ErrMessage: cause}
}

// QuotaExtraction builds the error variant for upstream credit exhaustion.
func QuotaExtraction(cause string) StructuredExtraction {
	return StructuredExtraction{Kind: ExtractionError, ErrMessage: cause, Quota: true}
}

type fallbackPayload struct {
	RawResponse string `json:"raw_response"`
	Error       string `json:"error"`
}

type errorPayload struct {
	Error string `json:"error"`
	Quota bool   `json:"quota,omitempty"`
}

// MarshalJSON renders the variant in the wire shape the presentation layer
// expects: the parsed mapping inline, a {raw_response, error} object for
// the fallback, or an {error} object for failures.
func (e StructuredExtraction) MarshalJSON() ([]byte, error) {
	switch e.Kind {
	case ExtractionParsed:
		if len(e.Fields) == 0 {
			return []byte("null"), nil
		}
		return e.Fields, nil
	case ExtractionFallback:
		return json.Marshal(fallbackPayload{
			RawResponse: e.RawResponse,
			Error:       "Failed to parse JSON",
		})
	default:
		return json.Marshal(errorPayload{Error: e.ErrMessage, Quota: e.Quota})
	}
}
