package automation

import "errors"

var (
	// ErrAutomationFailed means the webhook call was attempted and did not
	// succeed. The attempt is not retried.
	ErrAutomationFailed = errors.New("automation webhook call failed")

	// ErrInvalidRecipient means the recipient address failed validation
	// before any network call was made.
	ErrInvalidRecipient = errors.New("recipient email address is invalid")

	// ErrWebhookNotConfigured means a high-risk alert had nowhere to go
	// because no webhook URL is set.
	ErrWebhookNotConfigured = errors.New("automation webhook URL is not configured")
)
