package provider

import (
	"time"
)

// PaymentStatus represents the current status of a payment
type PaymentStatus string

const (
	StatusPending    PaymentStatus = "pending"
	StatusSuccessful PaymentStatus = "successful"
	StatusFailed     PaymentStatus = "failed"
)

// ConfigField represents a required configuration field for a payment provider
type ConfigField struct {
	Key         string `json:"key"`
	Required    bool   `json:"required"`
	Type        string `json:"type"` // "string", "number", "url", "email", "boolean"
	Description string `json:"description"`
	Example     string `json:"example"`
	Pattern     string `json:"pattern,omitempty"`   // regex pattern for validation
	MinLength   int    `json:"minLength,omitempty"` // minimum length for string fields
	MaxLength   int    `json:"maxLength,omitempty"` // maximum length for string fields
}

// PaymentRequest contains all information required to start a hosted-page
// 3D Secure payment. Amounts are always minor currency units (kuruş, cents).
type PaymentRequest struct {
	OrderID          string `json:"orderId" validate:"required"`
	AmountMinor      int64  `json:"amountMinor" validate:"required,gt=0"`
	Currency         string `json:"currency" validate:"required,len=3"`
	InstallmentCount int    `json:"installmentCount,omitempty" validate:"gte=0"`
	SuccessURL       string `json:"successUrl" validate:"required,url"`
	FailURL          string `json:"failUrl" validate:"required,url"`
	CancelURL        string `json:"cancelUrl,omitempty"`
	PendingURL       string `json:"pendingUrl,omitempty"`
	CustomerIP       string `json:"customerIp,omitempty"`
	CustomerEmail    string `json:"customerEmail,omitempty"`
}

// RedirectDescriptor is the outbound redirect contract: the gateway's form
// action URL plus every hidden field the browser must POST to it. It never
// carries the store key or the provision password.
type RedirectDescriptor struct {
	ActionURL  string            `json:"actionUrl"`
	FormFields map[string]string `json:"formFields"`
}

// ApprovalResult is the outcome of classifying a verified callback.
type ApprovalResult struct {
	Approved      bool   `json:"approved"`
	ReasonCode    string `json:"reasonCode,omitempty"`
	ReasonMessage string `json:"reasonMessage,omitempty"`
}

// PaymentResponse contains the result of a payment operation
type PaymentResponse struct {
	Success    bool                `json:"success"`
	Status     PaymentStatus       `json:"status"`
	Message    string              `json:"message,omitempty"`
	ErrorCode  string              `json:"errorCode,omitempty"`
	ReasonCode string              `json:"reasonCode,omitempty"`
	OrderID    string              `json:"orderId,omitempty"`
	Redirect   *RedirectDescriptor `json:"redirect,omitempty"`
	HTML       string              `json:"html,omitempty"`
	SystemTime *time.Time          `json:"systemTime,omitempty"`
}
