package domain

import (
	"context"
	"errors"
	"testing"
)

func TestVendorErrorUnwrap(t *testing.T) {
	err := &VendorError{Err: context.DeadlineExceeded, Timeout: true}
	if !errors.Is(err, ErrVendorCall) {
		t.Fatalf("expected ErrVendorCall")
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected wrapped cause")
	}
	if err.Error() != "vendor call timed out" {
		t.Fatalf("unexpected message: %s", err.Error())
	}
}

func TestVendorErrorMessage(t *testing.T) {
	tests := []struct {
		name string
		err  *VendorError
		want string
	}{
		{name: "code and message", err: &VendorError{Status: 400, Code: "InvalidParameter", Message: "bad size"}, want: "vendor error: bad size (InvalidParameter)"},
		{name: "message only", err: &VendorError{Message: "malformed response"}, want: "vendor error: malformed response"},
		{name: "status only", err: &VendorError{Status: 502}, want: "vendor error: http 502"},
		{name: "empty", err: &VendorError{}, want: "vendor call failed"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.err.Error(); got != tc.want {
				t.Fatalf("Error() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestReconciliationErrorAs(t *testing.T) {
	var err error = &ReconciliationError{Raw: []byte(`{}`)}
	var rec *ReconciliationError
	if !errors.As(err, &rec) || string(rec.Raw) != "{}" {
		t.Fatalf("expected raw payload to survive errors.As")
	}
	if !errors.Is(err, ErrReconciliation) {
		t.Fatalf("expected ErrReconciliation")
	}
}

func TestValidationError(t *testing.T) {
	err := &ValidationError{Field: "prompt", Reason: "must not be empty"}
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation")
	}
	if err.Error() != "prompt: must not be empty" {
		t.Fatalf("unexpected message: %s", err.Error())
	}
}
