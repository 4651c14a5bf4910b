package config

import (
	"fmt"
	"time"
)

// ClientAdapter holds network settings used by the client transport layer.
type ClientAdapter struct {
	// HTTPAddress is the base URL of the identity server.
	HTTPAddress string
	// RequestTimeout is the default timeout for outbound client requests.
	RequestTimeout time.Duration
}

// ClientConfig is the top-level client configuration assembled from
// [StructuredConfig].
type ClientConfig struct {
	// Adapter contains client transport addresses and timeouts.
	Adapter ClientAdapter
	// LogLevel is the zerolog level of the client logger.
	LogLevel string
}

// GetClientConfig builds and validates a client-specific config view from
// defaults, environment variables, flags and an optional JSON file.
//
// Only the fields relevant to the client runtime are mapped, so server-only
// requirements such as signing keys are not enforced here. The positional
// arguments left after flag parsing (the command and its operands) are
// returned alongside the config.
func GetClientConfig(args []string) (*ClientConfig, []string, error) {
	b := newConfigBuilder().
		withDefaults().
		withEnv().
		withFlags(args).
		withJSON()

	cfg, err := b.build()
	if err != nil {
		return nil, nil, fmt.Errorf("error get structured config: %w", err)
	}

	clientCfg, err := newClientConfig(cfg)
	if err != nil {
		return nil, nil, err
	}

	return clientCfg, b.rest, nil
}

func newClientConfig(cfg *StructuredConfig) (*ClientConfig, error) {
	clientCfg := &ClientConfig{
		Adapter: ClientAdapter{
			HTTPAddress:    cfg.Adapter.HTTPAddress,
			RequestTimeout: cfg.Adapter.RequestTimeout,
		},
		LogLevel: cfg.App.LogLevel,
	}

	return clientCfg, clientCfg.validate()
}
