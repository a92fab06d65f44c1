package automation

import (
	"bytes"
	"encoding/json"
	"strings"
)

// parseWorkflowResponse pulls the useful bits out of whatever the workflow
// replied with. n8n responses vary by workflow version: a bare object, an
// array of objects, or an object wrapped in a "json" envelope, with keys in
// either snake_case or camelCase. Parsing is best-effort; delivery already
// succeeded by the time this runs.
func parseWorkflowResponse(body []byte) (finalAnswer, emailBody, workflowStatus string) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return "", "", ""
	}

	doc := decodeWorkflowObject(body)
	if doc == nil {
		return "", "", ""
	}

	finalAnswer = firstString(doc, "final_answer", "finalAnswer")
	emailBody = firstString(doc, "email_body", "emailBody")
	workflowStatus = strings.ToLower(firstString(doc, "automation_status", "status"))
	return finalAnswer, emailBody, workflowStatus
}

func decodeWorkflowObject(body []byte) map[string]any {
	var doc map[string]any
	if err := json.Unmarshal(body, &doc); err != nil {
		var list []map[string]any
		if err := json.Unmarshal(body, &list); err != nil || len(list) == 0 {
			return nil
		}
		doc = list[0]
	}

	if inner, ok := doc["json"].(map[string]any); ok {
		doc = inner
	}
	return doc
}

func firstString(doc map[string]any, keys ...string) string {
	for _, key := range keys {
		if s, ok := doc[key].(string); ok && strings.TrimSpace(s) != "" {
			return strings.TrimSpace(s)
		}
	}
	return ""
}
