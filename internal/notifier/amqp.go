// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package notifier

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rabbitmq/amqp091-go"

	"github.com/MKhiriev/go-identity-keeper/internal/config"
	"github.com/MKhiriev/go-identity-keeper/internal/logger"
	"github.com/MKhiriev/go-identity-keeper/models"
)

var ErrChannelNotInitialized = errors.New("amqp channel is not initialized")

// publisher is the part of *amqp091.Channel the notifier uses.
type publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error
	Close() error
}

// recoveryMessage is the body consumed by the mailer.
type recoveryMessage struct {
	UserID    string    `json:"user_id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Link      string    `json:"link"`
	ExpiresAt time.Time `json:"expires_at"`
}

type amqpNotifier struct {
	conn       *amqp091.Connection
	channel    publisher
	exchange   string
	routingKey string
	base       string
	now        func() time.Time
	logger     *logger.Logger
}

// DialAMQP connects to the broker and declares the durable topic exchange
// recovery notices are published to.
func DialAMQP(cfg config.Notifier, logger *logger.Logger) (Notifier, error) {
	conn, err := amqp091.Dial(cfg.AMQPURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to rabbitmq: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if err = channel.ExchangeDeclare(cfg.Exchange, "topic", true, false, false, false, nil); err != nil {
		_ = channel.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("failed to declare exchange %q: %w", cfg.Exchange, err)
	}

	logger.Info().Str("exchange", cfg.Exchange).Msg("connected to recovery notice broker")

	n := newAMQPNotifier(channel, cfg, logger)
	n.conn = conn
	return n, nil
}

func newAMQPNotifier(channel publisher, cfg config.Notifier, logger *logger.Logger) *amqpNotifier {
	return &amqpNotifier{
		channel:    channel,
		exchange:   cfg.Exchange,
		routingKey: cfg.RoutingKey,
		base:       cfg.RecoveryURL,
		now:        time.Now,
		logger:     logger,
	}
}

func (n *amqpNotifier) Notify(ctx context.Context, notice models.RecoveryNotice) error {
	if n.channel == nil {
		return ErrChannelNotInitialized
	}

	body, err := json.Marshal(recoveryMessage{
		UserID:    notice.UserID,
		Username:  notice.Username,
		Email:     notice.Email,
		Link:      RecoveryLink(n.base, notice.RawToken),
		ExpiresAt: notice.ExpiresAt.UTC(),
	})
	if err != nil {
		return fmt.Errorf("failed to encode recovery notice: %w", err)
	}

	msg := amqp091.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp091.Persistent,
		Timestamp:    n.now(),
		Expiration:   expiration(notice.ExpiresAt.Sub(n.now())),
		Body:         body,
	}

	if err = n.channel.PublishWithContext(ctx, n.exchange, n.routingKey, false, false, msg); err != nil {
		return fmt.Errorf("failed to publish recovery notice: %w", err)
	}

	n.logger.Debug().Str("user_id", notice.UserID).Msg("recovery notice published")
	return nil
}

func (n *amqpNotifier) Close() error {
	var errs []error
	if n.channel != nil {
		errs = append(errs, n.channel.Close())
	}
	if n.conn != nil {
		errs = append(errs, n.conn.Close())
	}
	return errors.Join(errs...)
}

// expiration is the per-message TTL in milliseconds: a notice is useless once
// its token has expired.
func expiration(ttl time.Duration) string {
	if ttl <= 0 {
		return "0"
	}
	return fmt.Sprintf("%d", ttl.Milliseconds())
}
