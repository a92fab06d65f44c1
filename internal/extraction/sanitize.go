package extraction

import (
	"encoding/json"
	"fmt"
	"strings"
)

// knownFields lists the record attributes the model may emit, in the order
// they appear on models.InvoiceRecord.
var knownFields = []string{"vendor", "invoice_number", "invoice_date", "due_date", "total_amount"}

// reasoningSynonyms maps alternate key spellings the model occasionally
// emits back to the canonical "reasoning" key.
var reasoningSynonyms = []string{"reason", "rationale", "explanation"}

// stripCodeFences removes a Markdown fence wrapper around the payload.
func stripCodeFences(s string) string {
	trimmed := strings.TrimSpace(s)
	if !strings.HasPrefix(trimmed, "```") {
		return s
	}

	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")

	return strings.TrimSpace(trimmed)
}

// extractJSON pulls the first balanced JSON object out of a response that
// surrounds it with prose. Returns "" when no complete object is present.
func extractJSON(s string) string {
	start := findJSONStart(s)
	if start == -1 {
		return ""
	}

	end := findJSONEnd(s, start)
	if end == -1 {
		return ""
	}

	return s[start : end+1]
}

func findJSONStart(s string) int {
	return strings.Index(s, "{")
}

func findJSONEnd(s string, start int) int {
	depth := 0
	inString := false
	escapeNext := false

	for i := start; i < len(s); i++ {
		c := s[i]

		if escapeNext {
			escapeNext = false
			continue
		}
		if c == '\\' {
			escapeNext = true
			continue
		}
		if c == '"' {
			inString = !inString
			continue
		}
		if inString {
			continue
		}

		switch c {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}

	return -1
}

// normalizeRecordJSON applies tolerant shape fixes to parsed model output
// before schema validation: synonym keys are renamed, numeric amounts are
// rendered as decimal strings, currency decoration is stripped, and null or
// empty fields are removed. Confidence values pass through untouched so the
// schema can reject out-of-range scores. Returns the normalized document and
// the top-level keys that were dropped.
func normalizeRecordJSON(data []byte) ([]byte, []string, error) {
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, nil, fmt.Errorf("parse model output: %w", err)
	}

	out := make(map[string]any, len(doc))
	var dropped []string

	for _, key := range knownFields {
		raw, ok := doc[key]
		if !ok || raw == nil {
			continue
		}

		field, ok := raw.(map[string]any)
		if !ok {
			// Wrong shape. Keep it so validation reports the violation.
			out[key] = raw
			continue
		}

		normalized, keep := normalizeField(key, field)
		if !keep {
			dropped = append(dropped, key)
			continue
		}
		out[key] = normalized
	}

	for _, key := range []string{"summary", "answer"} {
		if s, ok := doc[key].(string); ok && strings.TrimSpace(s) != "" {
			out[key] = strings.TrimSpace(s)
		}
	}

	for key := range doc {
		if _, ok := out[key]; ok {
			continue
		}
		if isKnownKey(key) {
			continue
		}
		dropped = append(dropped, key)
	}

	b, err := json.Marshal(out)
	if err != nil {
		return nil, nil, fmt.Errorf("re-encode record: %w", err)
	}

	return b, dropped, nil
}

func normalizeField(name string, field map[string]any) (map[string]any, bool) {
	out := make(map[string]any, len(field))

	for key, v := range field {
		switch {
		case key == "value" || key == "confidence" || key == "reasoning":
			out[key] = v
		case isReasoningSynonym(key):
			if _, exists := out["reasoning"]; !exists {
				out["reasoning"] = v
			}
		}
	}

	value, keep := normalizeValue(name, out["value"])
	if !keep {
		return nil, false
	}
	out["value"] = value

	return out, true
}

// normalizeValue coerces a field value to a trimmed string. Dropping a field
// whose value is empty or null keeps absence explicit instead of inventing a
// placeholder.
func normalizeValue(name string, raw any) (string, bool) {
	switch v := raw.(type) {
	case string:
		s := strings.TrimSpace(v)
		if name == "total_amount" {
			s = normalizeAmount(s)
		}
		if s == "" {
			return "", false
		}
		return s, true
	case float64:
		if name == "total_amount" {
			return fmt.Sprintf("%.2f", v), true
		}
		return strings.TrimSpace(fmt.Sprintf("%v", v)), true
	default:
		return "", false
	}
}

// normalizeAmount strips currency decoration so "$1,234.50" reads as
// "1234.50". Anything beyond symbols and separators stays in place for the
// schema to reject.
func normalizeAmount(s string) string {
	replacer := strings.NewReplacer("$", "", "€", "", "£", "", "¥", "", ",", "", " ", "")
	return replacer.Replace(strings.TrimSpace(s))
}

func isKnownKey(key string) bool {
	if key == "summary" || key == "answer" {
		return true
	}
	for _, f := range knownFields {
		if f == key {
			return true
		}
	}
	return false
}

func isReasoningSynonym(key string) bool {
	for _, s := range reasoningSynonyms {
		if s == key {
			return true
		}
	}
	return false
}
