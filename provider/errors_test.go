package provider

import (
	"errors"
	"fmt"
	"testing"
)

func TestPaymentErrorCodes(t *testing.T) {
	tests := []struct {
		name       string
		err        *PaymentError
		wantCode   string
		wantReason int
	}{
		{"config", NewConfigError("missing store key", nil), ErrCodeConfig, ReasonConfig},
		{"invalid amount", NewInvalidAmountError(-5), ErrCodeInvalidAmount, ReasonInvalidAmount},
		{"general", NewGeneralError(errors.New("boom")), ErrCodeGeneral, ReasonGeneral},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Code != tt.wantCode {
				t.Errorf("Code = %q, want %q", tt.err.Code, tt.wantCode)
			}
			if tt.err.ReasonCode != tt.wantReason {
				t.Errorf("ReasonCode = %d, want %d", tt.err.ReasonCode, tt.wantReason)
			}
			if tt.err.Error() == "" {
				t.Error("Error() must not be empty")
			}
		})
	}
}

func TestPaymentErrorUnwrap(t *testing.T) {
	cause := errors.New("db down")
	err := NewConfigError("store key lookup failed", cause)
	if !errors.Is(err, cause) {
		t.Error("wrapped cause must survive errors.Is")
	}

	wrapped := fmt.Errorf("adding provider: %w", err)
	if !IsConfigError(wrapped) {
		t.Error("IsConfigError must see through wrapping")
	}
	if IsInvalidAmountError(wrapped) {
		t.Error("IsInvalidAmountError must not match a config error")
	}
}

func TestGeneralErrorHidesCause(t *testing.T) {
	err := NewGeneralError(errors.New("secret store: connection refused to 10.0.0.5"))
	if err.Message != "payment build failed" {
		t.Errorf("general error message = %q, internal detail must not leak", err.Message)
	}
}
