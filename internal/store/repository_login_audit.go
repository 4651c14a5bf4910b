package store

import (
	"context"
	"fmt"

	"github.com/MKhiriev/go-identity-keeper/internal/logger"
	"github.com/MKhiriev/go-identity-keeper/models"
)

type loginAuditRepository struct {
	*DB
	queries queries
	logger  *logger.Logger
}

// NewLoginAuditRepository constructs a [LoginAuditRepository] writing to the
// "user_logins" table.
func NewLoginAuditRepository(db *DB, logger *logger.Logger) LoginAuditRepository {
	logger.Debug().Msg("creating login audit repository")
	return &loginAuditRepository{
		DB:      db,
		queries: newQueries(db),
		logger:  logger,
	}
}

func (r *loginAuditRepository) Append(ctx context.Context, entry models.LoginAuditEntry) error {
	log := logger.FromContext(ctx)

	query, args, err := r.queries.insertLoginAudit(entry)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	if _, err = r.ExecContext(ctx, query, args...); err != nil {
		log.Err(err).
			Str("func", "*loginAuditRepository.Append").
			Str("user_id", entry.UserID).
			Msg("error appending login audit entry")
		return classifyError(r.errorClassificator, err)
	}

	return nil
}

// classifyError wraps err with [ErrStoreUnavailable] when the classifier
// deems it retryable and with [ErrExecutingQuery] otherwise.
func classifyError(classifier ErrorClassificator, err error) error {
	if classifier != nil && classifier.Classify(err) == Retryable {
		return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	return fmt.Errorf("%w: %w", ErrExecutingQuery, err)
}
