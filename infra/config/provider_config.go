package config

import (
	"fmt"
	"strings"
	"sync"
)

// knownProviders are the gateway families the engine ships with. Each one
// is configured through environment variables carrying its uppercased name
// as prefix, e.g. NESTPAY_CLIENT_ID or GARANTI_TERMINAL_ID.
var knownProviders = []string{"nestpay", "garanti"}

// providerEnvKeys maps a provider's config keys to the env var suffix that
// carries them.
var providerEnvKeys = map[string]map[string]string{
	"nestpay": {
		"clientId":       "CLIENT_ID",
		"storeKeySecret": "STORE_KEY_SECRET",
		"gatewayBaseUrl": "GATEWAY_BASE_URL",
		"txnType":        "TXN_TYPE",
		"hashMode":       "HASH_MODE",
	},
	"garanti": {
		"terminalId":     "TERMINAL_ID",
		"merchantId":     "MERCHANT_ID",
		"provUserId":     "PROV_USER_ID",
		"storeKeySecret": "STORE_KEY_SECRET",
		"passwordSecret": "PASSWORD_SECRET",
		"gatewayBaseUrl": "GATEWAY_BASE_URL",
		"txnType":        "TXN_TYPE",
		"mode":           "MODE",
	},
}

// ProviderConfig manages gateway provider configurations
type ProviderConfig struct {
	configs map[string]map[string]string
	mu      sync.RWMutex
}

// NewProviderConfig creates a new provider configuration
func NewProviderConfig() *ProviderConfig {
	return &ProviderConfig{
		configs: make(map[string]map[string]string),
	}
}

// LoadFromEnv loads configurations for every known provider that has its
// environment variables set. A provider counts as configured when at least
// one of its env vars is present.
func (c *ProviderConfig) LoadFromEnv() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, name := range knownProviders {
		prefix := strings.ToUpper(name) + "_"
		conf := make(map[string]string)
		for key, suffix := range providerEnvKeys[name] {
			if value := GetEnv(prefix+suffix, ""); value != "" {
				conf[key] = value
			}
		}
		if len(conf) > 0 {
			c.configs[name] = conf
		}
	}
}

// SetConfig sets configuration for a provider
func (c *ProviderConfig) SetConfig(providerName string, conf map[string]string) error {
	if providerName == "" {
		return fmt.Errorf("provider name cannot be empty")
	}
	if len(conf) == 0 {
		return fmt.Errorf("config cannot be empty")
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.configs[strings.ToLower(providerName)] = conf
	return nil
}

// GetConfig returns configuration for a specific provider
func (c *ProviderConfig) GetConfig(providerName string) (map[string]string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	conf, exists := c.configs[strings.ToLower(providerName)]
	if !exists {
		return nil, fmt.Errorf("no configuration found for provider: %s", providerName)
	}

	// Return a copy to prevent external modification
	confCopy := make(map[string]string, len(conf))
	for k, v := range conf {
		confCopy[k] = v
	}
	return confCopy, nil
}

// GetAvailableProviders returns all providers that have configurations
func (c *ProviderConfig) GetAvailableProviders() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	providers := make([]string, 0, len(c.configs))
	for name := range c.configs {
		providers = append(providers, name)
	}
	return providers
}
