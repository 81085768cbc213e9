package provider

import (
	"context"
	"fmt"
	"sync"
)

// PaymentService routes payment operations to initialized providers.
type PaymentService struct {
	mu        sync.RWMutex
	providers map[string]PaymentProvider
}

// NewPaymentService creates a new payment service with no providers.
func NewPaymentService() *PaymentService {
	return &PaymentService{
		providers: make(map[string]PaymentProvider),
	}
}

// AddProvider creates a provider from the default registry, validates and
// applies its configuration, and makes it available under its name.
func (s *PaymentService) AddProvider(name string, conf map[string]string, secrets SecretStore) error {
	prov, err := Get(name)
	if err != nil {
		return err
	}
	if err := prov.ValidateConfig(conf); err != nil {
		return err
	}
	if err := prov.Initialize(conf, secrets); err != nil {
		return err
	}
	s.mu.Lock()
	s.providers[name] = prov
	s.mu.Unlock()
	return nil
}

func (s *PaymentService) provider(name string) (PaymentProvider, error) {
	s.mu.RLock()
	prov, ok := s.providers[name]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("payment provider %q is not configured", name)
	}
	return prov, nil
}

// Providers returns the names of configured providers.
func (s *PaymentService) Providers() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.providers))
	for name := range s.providers {
		names = append(names, name)
	}
	return names
}

// Create3DPayment builds the signed redirect for a hosted-page payment.
// Provider panics surface as a general payment error, never as a crash.
func (s *PaymentService) Create3DPayment(ctx context.Context, providerName string, req PaymentRequest) (resp *PaymentResponse, err error) {
	prov, perr := s.provider(providerName)
	if perr != nil {
		return nil, perr
	}
	defer func() {
		if r := recover(); r != nil {
			resp = nil
			err = NewGeneralError(fmt.Errorf("provider %s panicked: %v", providerName, r))
		}
	}()
	return prov.Create3DPayment(ctx, req)
}

// VerifyCallback reports whether a gateway callback carries a valid
// signature. It answers only true or false; any internal failure,
// including a provider panic, reads as unverified.
func (s *PaymentService) VerifyCallback(ctx context.Context, providerName string, data map[string]string) (verified bool) {
	prov, err := s.provider(providerName)
	if err != nil {
		return false
	}
	defer func() {
		if r := recover(); r != nil {
			verified = false
		}
	}()
	return prov.VerifyCallback(ctx, data)
}

// Complete3DPayment verifies a callback and classifies the payment outcome.
func (s *PaymentService) Complete3DPayment(ctx context.Context, providerName string, data map[string]string) (resp *PaymentResponse, err error) {
	prov, perr := s.provider(providerName)
	if perr != nil {
		return nil, perr
	}
	defer func() {
		if r := recover(); r != nil {
			resp = nil
			err = NewGeneralError(fmt.Errorf("provider %s panicked: %v", providerName, r))
		}
	}()
	return prov.Complete3DPayment(ctx, data)
}
