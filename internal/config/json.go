// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// StructuredJSONConfig mirrors [StructuredConfig] for JSON files. Durations
// are accepted as strings ("1h") or as integer nanoseconds.
type StructuredJSONConfig struct {
	App struct {
		TokenSignKey          string   `json:"token_sign_key"`
		TokenIssuer           string   `json:"token_issuer"`
		TokenDuration         Duration `json:"token_duration"`
		RecoveryHashKey       string   `json:"recovery_hash_key"`
		RecoveryTokenDuration Duration `json:"recovery_token_duration"`
		PasswordHashCost      int      `json:"password_hash_cost"`
		PasswordMinLength     int      `json:"password_min_length"`
		LogLevel              string   `json:"log_level"`
		Version               string   `json:"version"`
	} `json:"app,omitempty"`

	Storage struct {
		DB struct {
			Driver       string `json:"driver"`
			DSN          string `json:"dsn"`
			MaxOpenConns int    `json:"max_open_conns"`
		} `json:"db,omitempty"`
	} `json:"storage,omitempty"`

	Server struct {
		HTTPAddress    string   `json:"http_address"`
		GRPCAddress    string   `json:"grpc_address"`
		RequestTimeout Duration `json:"request_timeout"`
	} `json:"server,omitempty"`

	Limiter struct {
		RedisAddress  string   `json:"redis_address"`
		RedisPassword string   `json:"redis_password"`
		RedisDB       int      `json:"redis_db"`
		Attempts      int      `json:"attempts"`
		Window        Duration `json:"window"`
	} `json:"limiter,omitempty"`

	Notifier struct {
		AMQPURL     string `json:"amqp_url"`
		Exchange    string `json:"exchange"`
		RoutingKey  string `json:"routing_key"`
		RecoveryURL string `json:"recovery_url"`
	} `json:"notifier,omitempty"`

	Adapter struct {
		HTTPAddress    string   `json:"http_address"`
		RequestTimeout Duration `json:"request_timeout"`
	} `json:"adapter,omitempty"`

	Workers struct {
		AuditQueueSize int `json:"audit_queue_size"`
		AuditWorkers   int `json:"audit_workers"`
	} `json:"workers,omitempty"`
}

func parseJSON(jsonFilePath string) (*StructuredConfig, error) {
	jsonFile, err := os.Open(jsonFilePath)
	if err != nil {
		return nil, fmt.Errorf("error reading a json file: %w", err)
	}
	defer jsonFile.Close()

	var jsonCfg StructuredJSONConfig
	if err := json.NewDecoder(jsonFile).Decode(&jsonCfg); err != nil {
		return nil, fmt.Errorf("error decoding json configs: %w", err)
	}

	cfg := &StructuredConfig{
		App: App{
			TokenSignKey:          jsonCfg.App.TokenSignKey,
			TokenIssuer:           jsonCfg.App.TokenIssuer,
			TokenDuration:         time.Duration(jsonCfg.App.TokenDuration),
			RecoveryHashKey:       jsonCfg.App.RecoveryHashKey,
			RecoveryTokenDuration: time.Duration(jsonCfg.App.RecoveryTokenDuration),
			PasswordHashCost:      jsonCfg.App.PasswordHashCost,
			PasswordMinLength:     jsonCfg.App.PasswordMinLength,
			LogLevel:              jsonCfg.App.LogLevel,
			Version:               jsonCfg.App.Version,
		},
		Storage: Storage{
			DB: DB{
				Driver:       jsonCfg.Storage.DB.Driver,
				DSN:          jsonCfg.Storage.DB.DSN,
				MaxOpenConns: jsonCfg.Storage.DB.MaxOpenConns,
			},
		},
		Server: Server{
			HTTPAddress:    jsonCfg.Server.HTTPAddress,
			GRPCAddress:    jsonCfg.Server.GRPCAddress,
			RequestTimeout: time.Duration(jsonCfg.Server.RequestTimeout),
		},
		Limiter: Limiter{
			RedisAddress:  jsonCfg.Limiter.RedisAddress,
			RedisPassword: jsonCfg.Limiter.RedisPassword,
			RedisDB:       jsonCfg.Limiter.RedisDB,
			Attempts:      jsonCfg.Limiter.Attempts,
			Window:        time.Duration(jsonCfg.Limiter.Window),
		},
		Notifier: Notifier{
			AMQPURL:     jsonCfg.Notifier.AMQPURL,
			Exchange:    jsonCfg.Notifier.Exchange,
			RoutingKey:  jsonCfg.Notifier.RoutingKey,
			RecoveryURL: jsonCfg.Notifier.RecoveryURL,
		},
		Adapter: Adapter{
			HTTPAddress:    jsonCfg.Adapter.HTTPAddress,
			RequestTimeout: time.Duration(jsonCfg.Adapter.RequestTimeout),
		},
		Workers: Workers{
			AuditQueueSize: jsonCfg.Workers.AuditQueueSize,
			AuditWorkers:   jsonCfg.Workers.AuditWorkers,
		},
	}

	return cfg, nil
}

// Duration is a wrapper around time.Duration that supports JSON unmarshaling from strings like "1h", "30s"
type Duration time.Duration

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}

	switch value := v.(type) {
	case float64:
		*d = Duration(time.Duration(value))
		return nil
	case string:
		tmp, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		*d = Duration(tmp)
		return nil
	default:
		return json.Unmarshal(b, (*time.Duration)(d))
	}
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}
