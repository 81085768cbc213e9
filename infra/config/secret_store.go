package config

import (
	"context"
	"os"
	"strings"

	"github.com/mstgnz/posgate/provider"
)

// EnvSecretStore resolves secrets from process environment variables.
// Secret names are uppercased and non-alphanumeric characters replaced
// with underscores before lookup, so "garanti-store-key" resolves
// GARANTI_STORE_KEY.
type EnvSecretStore struct {
	prefix string
}

// NewEnvSecretStore creates an environment-backed secret store. An
// optional prefix is prepended to every lookup.
func NewEnvSecretStore(prefix string) *EnvSecretStore {
	return &EnvSecretStore{prefix: prefix}
}

// GetSecret implements provider.SecretStore.
func (s *EnvSecretStore) GetSecret(_ context.Context, name string) (string, error) {
	key := s.prefix + normalizeSecretName(name)
	if value := os.Getenv(key); value != "" {
		return value, nil
	}
	return "", provider.ErrSecretNotFound
}

func normalizeSecretName(name string) string {
	mapped := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return r - 32
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		default:
			return '_'
		}
	}, name)
	return mapped
}
