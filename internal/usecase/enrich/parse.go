package enrich

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"newsdigest/internal/domain/entity"
)

// ErrMalformedResponse wraps every reason a model response could not be used.
var ErrMalformedResponse = errors.New("malformed enrichment response")

const fence = "```"

// StripCodeFence removes Markdown code-fence wrapping from a model response.
// A language tag directly after the opening fence ("```json") is dropped too.
// Text without a leading fence is only trimmed.
func StripCodeFence(raw string) string {
	t := strings.TrimSpace(raw)
	if !strings.HasPrefix(t, fence) {
		return t
	}

	t = strings.TrimLeft(t, "`")
	if nl := strings.IndexByte(t, '\n'); nl >= 0 && isLanguageTag(strings.TrimSpace(t[:nl])) {
		t = t[nl+1:]
	} else if len(t) >= 4 && strings.EqualFold(t[:4], "json") {
		t = t[4:]
	}
	t = strings.TrimRight(strings.TrimSpace(t), "`")
	return strings.TrimSpace(t)
}

func isLanguageTag(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || r == '-' || r == '_' || r == '+') {
			return false
		}
	}
	return true
}

// modelOutput mirrors the requested JSON object. Fields stay raw so a value of
// the wrong JSON type counts as absent instead of failing the whole parse.
type modelOutput struct {
	Summary   json.RawMessage `json:"summary"`
	Topic     json.RawMessage `json:"topic"`
	Sentiment json.RawMessage `json:"sentiment"`
}

// ParseResponse turns raw model output into a Result. truncated is the content
// the prompt was built from; it supplies the summary when the model gave none.
// Only output that is not a JSON object is an error; field-level problems are
// repaired with defaults.
func ParseResponse(raw, truncated string) (Result, error) {
	cleaned := StripCodeFence(raw)
	if !strings.HasPrefix(cleaned, "{") {
		return Result{}, fmt.Errorf("%w: not a JSON object", ErrMalformedResponse)
	}

	var out modelOutput
	if err := json.Unmarshal([]byte(cleaned), &out); err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	summary := strings.TrimSpace(jsonString(out.Summary))
	if summary == "" {
		summary = fallbackSummary(truncated)
	}
	return Result{
		Summary:   summary,
		Topic:     entity.ParseTopic(jsonString(out.Topic)),
		Sentiment: entity.ParseSentiment(jsonString(out.Sentiment)),
	}, nil
}

func jsonString(raw json.RawMessage) string {
	var s string
	if len(raw) == 0 || json.Unmarshal(raw, &s) != nil {
		return ""
	}
	return s
}
