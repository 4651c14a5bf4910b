package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"dario.cat/mergo"
	"golang.org/x/crypto/bcrypt"
)

// Defaults applied before any other source.
const (
	defaultDBDriver              = "pgx"
	defaultMaxOpenConns          = 10
	defaultTokenIssuer           = "go-identity-keeper"
	defaultTokenDuration         = time.Hour
	defaultRecoveryTokenDuration = time.Hour
	defaultPasswordHashCost      = bcrypt.DefaultCost
	defaultPasswordMinLength     = 6
	defaultLogLevel              = "info"
	defaultRequestTimeout        = 30 * time.Second
	defaultLimiterAttempts       = 10
	defaultLimiterWindow         = time.Minute
	defaultNotifierExchange      = "identity"
	defaultNotifierRoutingKey    = "user.password_recovery"
	defaultAuditQueueSize        = 1024
	defaultAuditWorkers          = 2
	defaultAdapterTimeout        = 10 * time.Second
)

type configBuilder struct {
	configs []*StructuredConfig
	// rest holds positional arguments left after flag parsing.
	rest []string
	err  error
}

func newConfigBuilder() *configBuilder {
	return &configBuilder{
		configs: make([]*StructuredConfig, 0, 4),
	}
}

// build merges the collected sources in order; later non-zero fields win.
func (b *configBuilder) build() (*StructuredConfig, error) {
	if b.err != nil {
		return nil, fmt.Errorf("error occured during building config: %w", b.err)
	}

	config := new(StructuredConfig)
	for _, cfg := range b.configs {
		if err := mergo.Merge(config, cfg, mergo.WithOverride); err != nil {
			return nil, fmt.Errorf("error merging configs: %w", err)
		}
	}

	return config, nil
}

func (b *configBuilder) withDefaults() *configBuilder {
	b.configs = append(b.configs, defaultConfig())
	return b
}

func (b *configBuilder) withEnv() *configBuilder {
	envCfg := &StructuredConfig{}
	if err := parseEnv(envCfg); err != nil {
		b.err = errors.Join(b.err, err)
		return b
	}

	b.configs = append(b.configs, envCfg)
	return b
}

func (b *configBuilder) withFlags(args []string) *configBuilder {
	flags, rest, err := parseFlags(args)
	if err != nil {
		b.err = errors.Join(b.err, err)
		return b
	}

	b.configs = append(b.configs, flags)
	b.rest = rest
	return b
}

func (b *configBuilder) withJSON() *configBuilder {
	var jsonPath string

	for _, cfg := range b.configs {
		if cfg.JSONFilePath != "" {
			jsonPath = cfg.JSONFilePath
		}
	}

	if jsonPath != "" {
		jsonCfg, err := parseJSON(jsonPath)
		if err != nil {
			b.err = errors.Join(b.err, err)
			return b
		}
		b.configs = append(b.configs, jsonCfg)
	}

	return b
}

func defaultConfig() *StructuredConfig {
	return &StructuredConfig{
		App: App{
			TokenIssuer:           defaultTokenIssuer,
			TokenDuration:         defaultTokenDuration,
			RecoveryTokenDuration: defaultRecoveryTokenDuration,
			PasswordHashCost:      defaultPasswordHashCost,
			PasswordMinLength:     defaultPasswordMinLength,
			LogLevel:              defaultLogLevel,
		},
		Storage: Storage{
			DB: DB{
				Driver:       defaultDBDriver,
				MaxOpenConns: defaultMaxOpenConns,
			},
		},
		Server: Server{
			RequestTimeout: defaultRequestTimeout,
		},
		Limiter: Limiter{
			Attempts: defaultLimiterAttempts,
			Window:   defaultLimiterWindow,
		},
		Notifier: Notifier{
			Exchange:   defaultNotifierExchange,
			RoutingKey: defaultNotifierRoutingKey,
		},
		Adapter: Adapter{
			RequestTimeout: defaultAdapterTimeout,
		},
		Workers: Workers{
			AuditQueueSize: defaultAuditQueueSize,
			AuditWorkers:   defaultAuditWorkers,
		},
	}
}

func osArgs() []string {
	if len(os.Args) < 2 {
		return nil
	}
	return os.Args[1:]
}
