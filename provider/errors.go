package provider

import (
	"errors"
	"fmt"
)

// Machine-readable error codes surfaced to the calling SPI. Verification
// failures are deliberately absent: they are reported as a bare boolean,
// never as an error (see VerifyCallback).
const (
	ErrCodeConfig        = "CONFIG_ERROR"
	ErrCodeInvalidAmount = "INVALID_AMOUNT"
	ErrCodeGeneral       = "GENERAL_ERROR"
)

// Numeric reason codes paired with the machine codes above.
const (
	ReasonConfig        = 1001
	ReasonInvalidAmount = 1002
	ReasonGeneral       = 1999
)

// PaymentError is the structured error returned by outbound build
// operations. Code is machine-readable, ReasonCode numeric, Message human.
type PaymentError struct {
	Code       string
	ReasonCode int
	Message    string
	Err        error
}

func (e *PaymentError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *PaymentError) Unwrap() error {
	return e.Err
}

// NewConfigError reports a missing or invalid credential/base URL.
// Non-retryable: the merchant configuration must be fixed.
func NewConfigError(message string, err error) *PaymentError {
	return &PaymentError{Code: ErrCodeConfig, ReasonCode: ReasonConfig, Message: message, Err: err}
}

// NewInvalidAmountError reports a caller input violation. Non-retryable.
func NewInvalidAmountError(amountMinor int64) *PaymentError {
	return &PaymentError{
		Code:       ErrCodeInvalidAmount,
		ReasonCode: ReasonInvalidAmount,
		Message:    fmt.Sprintf("amount must be a positive minor-unit integer, got %d", amountMinor),
	}
}

// NewGeneralError wraps an unexpected failure during build. The wrapped
// error is logged internally; only the generic message reaches the caller.
func NewGeneralError(err error) *PaymentError {
	return &PaymentError{Code: ErrCodeGeneral, ReasonCode: ReasonGeneral, Message: "payment build failed", Err: err}
}

// IsConfigError reports whether err is a CONFIG_ERROR PaymentError.
func IsConfigError(err error) bool {
	var pe *PaymentError
	return errors.As(err, &pe) && pe.Code == ErrCodeConfig
}

// IsInvalidAmountError reports whether err is an INVALID_AMOUNT PaymentError.
func IsInvalidAmountError(err error) bool {
	var pe *PaymentError
	return errors.As(err, &pe) && pe.Code == ErrCodeInvalidAmount
}
