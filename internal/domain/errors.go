package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound       = errors.New("not found")
	ErrValidation     = errors.New("validation failed")
	ErrConfiguration  = errors.New("configuration error")
	ErrVendorCall     = errors.New("vendor call failed")
	ErrReconciliation = errors.New("unrecognized vendor response")
	ErrPersistence    = errors.New("persistence failed")
)

// ValidationError reports a request rejected before any outbound call.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// VendorError describes a failed exchange with the image vendor: transport
// failures, non-2xx statuses and malformed bodies all end up here.
type VendorError struct {
	Status  int
	Code    string
	Message string
	Timeout bool
	Err     error
}

func (e *VendorError) Error() string {
	switch {
	case e.Timeout:
		return "vendor call timed out"
	case e.Message != "" && e.Code != "":
		return fmt.Sprintf("vendor error: %s (%s)", e.Message, e.Code)
	case e.Message != "":
		return "vendor error: " + e.Message
	case e.Status != 0:
		return fmt.Sprintf("vendor error: http %d", e.Status)
	case e.Err != nil:
		return "vendor error: " + e.Err.Error()
	default:
		return ErrVendorCall.Error()
	}
}

func (e *VendorError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrVendorCall}
	}
	return []error{ErrVendorCall, e.Err}
}

// ReconciliationError is returned when a 2xx vendor payload carries no image
// URL at any known location. Raw holds the payload for diagnosis.
type ReconciliationError struct {
	Raw []byte
}

func (e *ReconciliationError) Error() string { return ErrReconciliation.Error() }

func (e *ReconciliationError) Unwrap() error { return ErrReconciliation }
