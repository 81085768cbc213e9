package provider

import (
	"context"
	"errors"
)

// ErrSecretNotFound is returned by a SecretStore when the named secret
// does not exist in the backing store.
var ErrSecretNotFound = errors.New("secret not found")

// SecretStore is the external secret collaborator. Implementations may be
// backed by process environment, SQLite, or a remote vault; the engine
// fetches every secret fresh per request and never caches values, so key
// rotation takes effect immediately.
type SecretStore interface {
	GetSecret(ctx context.Context, name string) (string, error)
}

// PaymentProvider defines the interface that all hosted-page gateways
// must implement
type PaymentProvider interface {
	// Initialize sets up the provider with merchant configuration and the
	// secret store used to resolve store keys and passwords per request
	Initialize(conf map[string]string, secrets SecretStore) error

	// GetRequiredConfig returns the configuration fields required for this provider
	GetRequiredConfig() []ConfigField

	// ValidateConfig validates the provided configuration against provider requirements
	ValidateConfig(conf map[string]string) error

	// Create3DPayment builds the signed redirect form for the bank's hosted
	// 3D Secure page
	Create3DPayment(ctx context.Context, request PaymentRequest) (*PaymentResponse, error)

	// VerifyCallback recomputes the callback signature and compares it to the
	// received one. It never returns an error: any missing secret, missing
	// field list or internal failure resolves to false.
	VerifyCallback(ctx context.Context, data map[string]string) bool

	// Complete3DPayment verifies an inbound callback and classifies the
	// authorization outcome
	Complete3DPayment(ctx context.Context, data map[string]string) (*PaymentResponse, error)
}

// ProviderFactory is a function type that creates a new PaymentProvider
type ProviderFactory func() PaymentProvider
