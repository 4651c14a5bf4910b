// Package notifier delivers password recovery tokens to account owners.
//
// The server never sends mail itself: in production recovery notices are
// published to a message broker and a separate mailer consumes them. The
// console notifier exists for local development.
package notifier

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"sync"

	"github.com/MKhiriev/go-identity-keeper/internal/config"
	"github.com/MKhiriev/go-identity-keeper/internal/logger"
	"github.com/MKhiriev/go-identity-keeper/models"
)

// Notifier is a RecoveryNotifier that holds a connection.
type Notifier interface {
	Notify(ctx context.Context, notice models.RecoveryNotice) error
	Close() error
}

// New returns an AMQP publisher when a broker URL is configured and a console
// notifier otherwise.
func New(cfg config.Notifier, logger *logger.Logger) (Notifier, error) {
	if cfg.AMQPURL == "" {
		logger.Warn().Msg("notifier AMQP URL is not set, recovery links are printed to stdout")
		return NewConsoleNotifier(os.Stdout, cfg.RecoveryURL), nil
	}

	return DialAMQP(cfg, logger)
}

// RecoveryLink appends the url-escaped token to base. An empty base yields
// the bare token.
func RecoveryLink(base, token string) string {
	if base == "" {
		return token
	}
	return base + url.PathEscape(token)
}

type consoleNotifier struct {
	mu   sync.Mutex
	w    io.Writer
	base string
}

func NewConsoleNotifier(w io.Writer, recoveryURL string) Notifier {
	return &consoleNotifier{w: w, base: recoveryURL}
}

func (n *consoleNotifier) Notify(_ context.Context, notice models.RecoveryNotice) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	_, err := fmt.Fprintf(n.w, "password recovery for %s <%s> (valid until %s): %s\n",
		notice.Username,
		notice.Email,
		notice.ExpiresAt.UTC().Format("2006-01-02 15:04:05 MST"),
		RecoveryLink(n.base, notice.RawToken),
	)
	return err
}

func (n *consoleNotifier) Close() error {
	return nil
}
