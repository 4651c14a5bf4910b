package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/MKhiriev/go-identity-keeper/models"
)

const metricsNamespace = "identity_keeper"

// Operation labels.
const (
	opSignup          = "signup"
	opLogin           = "login"
	opRefreshToken    = "refresh_token"
	opChangePassword  = "change_password"
	opResetPassword   = "reset_password"
	opRecoverPassword = "recover_password"
	opParseToken      = "parse_token"
)

// CredentialMetricsService counts credential operations by outcome and
// observes their latency.
type CredentialMetricsService struct {
	inner CredentialService

	operations *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	now        func() time.Time
}

// NewCredentialMetricsService registers the credential collectors with reg.
// Collectors that are already registered are reused.
func NewCredentialMetricsService(reg prometheus.Registerer) (CredentialServiceWrapper, error) {
	operations := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "credentials",
			Name:      "operations_total",
			Help:      "Total number of credential lifecycle operations by outcome",
		},
		[]string{"operation", "result"},
	)

	duration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: "credentials",
			Name:      "operation_duration_seconds",
			Help:      "Duration of credential lifecycle operations in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	var err error
	if operations, err = registerCollector(reg, operations); err != nil {
		return nil, err
	}
	if duration, err = registerCollector(reg, duration); err != nil {
		return nil, err
	}

	return &CredentialMetricsService{
		operations: operations,
		duration:   duration,
		now:        time.Now,
	}, nil
}

func registerCollector[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var already prometheus.AlreadyRegisteredError
		if errors.As(err, &already) {
			if existing, ok := already.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, fmt.Errorf("error registering collector: %w", err)
	}
	return c, nil
}

func (m *CredentialMetricsService) Signup(ctx context.Context, req models.SignupRequest) (models.AuthResponse, error) {
	defer m.observe(opSignup, m.now())
	resp, err := m.inner.Signup(ctx, req)
	m.count(opSignup, err)
	return resp, err
}

func (m *CredentialMetricsService) Login(ctx context.Context, req models.LoginRequest) (models.AuthResponse, error) {
	defer m.observe(opLogin, m.now())
	resp, err := m.inner.Login(ctx, req)
	m.count(opLogin, err)
	return resp, err
}

func (m *CredentialMetricsService) RefreshToken(ctx context.Context, userID string, scope models.Scope) (models.TokenResponse, error) {
	defer m.observe(opRefreshToken, m.now())
	resp, err := m.inner.RefreshToken(ctx, userID, scope)
	m.count(opRefreshToken, err)
	return resp, err
}

func (m *CredentialMetricsService) ChangePassword(ctx context.Context, req models.ChangePasswordRequest) error {
	defer m.observe(opChangePassword, m.now())
	err := m.inner.ChangePassword(ctx, req)
	m.count(opChangePassword, err)
	return err
}

func (m *CredentialMetricsService) ResetPassword(ctx context.Context, req models.ResetPasswordRequest) (models.Ack, error) {
	defer m.observe(opResetPassword, m.now())
	ack, err := m.inner.ResetPassword(ctx, req)
	m.count(opResetPassword, err)
	return ack, err
}

func (m *CredentialMetricsService) RecoverPassword(ctx context.Context, req models.RecoverPasswordRequest) error {
	defer m.observe(opRecoverPassword, m.now())
	err := m.inner.RecoverPassword(ctx, req)
	m.count(opRecoverPassword, err)
	return err
}

// ParseToken runs on every authenticated request; only outcomes are counted.
func (m *CredentialMetricsService) ParseToken(ctx context.Context, token string) (models.Token, error) {
	t, err := m.inner.ParseToken(ctx, token)
	m.count(opParseToken, err)
	return t, err
}

func (m *CredentialMetricsService) Wrap(inner CredentialService) CredentialService {
	m.inner = inner
	return m
}

func (m *CredentialMetricsService) observe(operation string, start time.Time) {
	m.duration.WithLabelValues(operation).Observe(m.now().Sub(start).Seconds())
}

func (m *CredentialMetricsService) count(operation string, err error) {
	m.operations.WithLabelValues(operation, resultLabel(err)).Inc()
}

// resultLabel keeps the label set closed.
func resultLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrInvalidDataProvided):
		return "invalid_data"
	case errors.Is(err, ErrInvalidCredentials):
		return "invalid_credentials"
	case errors.Is(err, ErrDuplicateIdentity):
		return "duplicate_identity"
	case errors.Is(err, ErrWeakPassword):
		return "weak_password"
	case errors.Is(err, ErrInvalidOrExpiredToken), errors.Is(err, ErrTokenIsExpiredOrInvalid):
		return "invalid_token"
	case errors.Is(err, ErrUserNotFound):
		return "user_not_found"
	case errors.Is(err, ErrStoreUnavailable):
		return "store_unavailable"
	default:
		return "error"
	}
}
