package models

// AutomationStatus is the outcome of the automation stage for one document.
type AutomationStatus string

const (
	AutomationSent    AutomationStatus = "sent"
	AutomationSkipped AutomationStatus = "skipped"
	AutomationFailed  AutomationStatus = "failed"
)

// AutomationResult records the outcome of a single webhook dispatch attempt.
// FinalAnswer, EmailBody and WorkflowStatus are filled from the workflow's
// response body when it echoes them back.
type AutomationResult struct {
	Status         AutomationStatus `json:"status"`
	Recipient      string           `json:"recipient,omitempty"`
	WebhookStatus  int              `json:"webhook_status,omitempty"`
	FinalAnswer    string           `json:"final_answer,omitempty"`
	EmailBody      string           `json:"email_body,omitempty"`
	WorkflowStatus string           `json:"workflow_status,omitempty"`
}

// StageFailure is a user-visible record of a pipeline stage that failed after
// earlier stages had already produced usable output.
type StageFailure struct {
	Stage   string `json:"stage"`
	Message string `json:"message"`
}

// PipelineResult is the full outcome of processing one document. Partial
// outcomes are valid: a record with no risk tier means the risk stage failed,
// and the reason is listed under Failures.
type PipelineResult struct {
	FileName   string            `json:"file_name"`
	Preview    string            `json:"preview,omitempty"`
	CharCount  int               `json:"char_count"`
	Record     *InvoiceRecord    `json:"record"`
	Summary    string            `json:"summary,omitempty"`
	Answer     string            `json:"answer,omitempty"`
	RiskTier   string            `json:"risk_tier,omitempty"`
	Automation *AutomationResult `json:"automation,omitempty"`
	Failures   []StageFailure    `json:"failures,omitempty"`
}
