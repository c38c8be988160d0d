package domain

import "time"

// GenerationRequest is the user-facing text-to-image request. It is built per
// HTTP call and consumed once.
type GenerationRequest struct {
	Prompt string `json:"prompt"`
	Style  string `json:"style,omitempty"`
	Ratio  string `json:"ratio,omitempty"`
}

// StyleTransferRequest carries an uploaded image to be re-rendered in a style.
type StyleTransferRequest struct {
	Image    []byte
	MIMEType string
	Style    string
}

// Outcome tags how a generation finished.
type Outcome string

const (
	OutcomeSucceeded             Outcome = "succeeded"
	OutcomeSucceededWithFallback Outcome = "succeeded_with_fallback"
	OutcomeFailed                Outcome = "failed"
)

// Result is the only shape handed back to callers; vendor payloads never
// leave the generation layer except as diagnostic Raw bytes.
type Result struct {
	Outcome   Outcome
	Image     string
	VendorURL string
	Persisted bool
}

// GenerationKind enumerates the recorded operations.
type GenerationKind string

const (
	GenerationKindTextToImage   GenerationKind = "text_to_image"
	GenerationKindStyleTransfer GenerationKind = "style_transfer"
)

// GenerationRecord is one row of the generation history.
type GenerationRecord struct {
	ID        string
	Kind      GenerationKind
	Prompt    string
	Style     string
	Ratio     string
	Outcome   Outcome
	Image     string
	Error     string
	CreatedAt time.Time
}
