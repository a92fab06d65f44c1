package extraction

import (
	"fmt"
	"strings"
)

const systemPrompt = `You are a meticulous accounts-payable analyst. You read raw invoice text and produce structured data. Respond with a single JSON object and nothing else: no Markdown fences, no commentary.`

// recordContract shows the model the exact shape the response must take.
// The same contract is enforced locally by BuildInvoiceJSONSchema.
const recordContract = `{
  "vendor":         {"value": "...", "confidence": 0.0-1.0, "reasoning": "..."},
  "invoice_number": {"value": "...", "confidence": 0.0-1.0, "reasoning": "..."},
  "invoice_date":   {"value": "YYYY-MM-DD", "confidence": 0.0-1.0, "reasoning": "..."},
  "due_date":       {"value": "YYYY-MM-DD", "confidence": 0.0-1.0, "reasoning": "..."},
  "total_amount":   {"value": "1234.56", "confidence": 0.0-1.0, "reasoning": "..."},
  "summary":        "one or two sentences describing the invoice",
  "answer":         "present only when a question was asked"
}`

const userPromptTemplate = `Extract the structured invoice record from the document text below.

Return a single JSON object with this shape:

%s

Rules:
- Omit a field entirely when the document does not state it. Never guess a value and never emit an empty one.
- Dates use the ISO form YYYY-MM-DD.
- "total_amount" is the final amount due, written as plain digits with an optional two-decimal fraction. No currency symbols, no thousands separators.
- "confidence" scores how directly the document states the value, from 0.0 to 1.0.
- "reasoning" is one short sentence naming where in the document the value was found.
- "summary" describes the invoice in one or two sentences.
%s
Document text:
"""
%s
"""`

func buildUserPrompt(text, question string) string {
	questionRule := "- No question was asked, so do not include an \"answer\" key.\n"
	if q := strings.TrimSpace(question); q != "" {
		questionRule = fmt.Sprintf("- Answer the user's question in the %q key, using only what the document states: %s\n", "answer", q)
	}

	return fmt.Sprintf(userPromptTemplate, recordContract, questionRule, text)
}
