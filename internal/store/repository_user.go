// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/MKhiriev/go-identity-keeper/internal/logger"
	"github.com/MKhiriev/go-identity-keeper/models"
)

// userRepository is the database/sql implementation of [UserRepository].
// It works against the "users" table on both PostgreSQL and SQLite; the
// dialect only changes the placeholder style of the generated SQL.
//
// All methods obtain a context-scoped logger via [logger.FromContext] for
// structured, request-level tracing of database interactions. Password and
// recovery hashes are never logged.
type userRepository struct {
	*DB
	queries queries
	logger  *logger.Logger
	now     func() time.Time
}

// NewUserRepository constructs a [UserRepository] backed by the provided
// database connection and logger.
func NewUserRepository(db *DB, logger *logger.Logger) UserRepository {
	logger.Debug().Msg("creating user repository")
	return &userRepository{
		DB:      db,
		queries: newQueries(db),
		logger:  logger,
		now:     time.Now,
	}
}

func (r *userRepository) Create(ctx context.Context, user models.User) (models.User, error) {
	log := logger.FromContext(ctx)

	user.Email = normalizeEmail(user.Email)
	user.CreatedAt = user.CreatedAt.UTC()
	user.UpdatedAt = user.UpdatedAt.UTC()

	query, args, err := r.queries.insertUser(user)
	if err != nil {
		log.Err(err).Str("func", "*userRepository.Create").Msg("failed to build query")
		return models.User{}, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	if _, err = r.ExecContext(ctx, query, args...); err != nil {
		log.Err(err).Str("func", "*userRepository.Create").Str("username", user.Username).Msg("error inserting user")
		return models.User{}, r.wrapError(err)
	}

	return user, nil
}

func (r *userRepository) FindByUsernameOrEmail(ctx context.Context, identifier string) (models.User, error) {
	query, args, err := r.queries.selectUserByUsernameOrEmail(identifier)
	if err != nil {
		return models.User{}, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	return r.findOne(ctx, "*userRepository.FindByUsernameOrEmail", query, args)
}

func (r *userRepository) FindByID(ctx context.Context, id string) (models.User, error) {
	query, args, err := r.queries.selectUserByID(id)
	if err != nil {
		return models.User{}, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	return r.findOne(ctx, "*userRepository.FindByID", query, args)
}

func (r *userRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	query, args, err := r.queries.updatePassword(id, passwordHash, r.now().UTC())
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	affected, err := r.execAffected(ctx, "*userRepository.UpdatePassword", query, args)
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNoUserWasFound
	}

	return nil
}

func (r *userRepository) UpdatePasswordAndClearRecovery(ctx context.Context, id, expectedTokenHash, passwordHash string, now time.Time) error {
	if expectedTokenHash == "" {
		return ErrRecoveryTokenMismatch
	}

	query, args, err := r.queries.updatePasswordAndClearRecovery(id, expectedTokenHash, passwordHash, now.UTC())
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	affected, err := r.execAffected(ctx, "*userRepository.UpdatePasswordAndClearRecovery", query, args)
	if err != nil {
		return err
	}
	if affected == 0 {
		logger.FromContext(ctx).Warn().
			Str("func", "*userRepository.UpdatePasswordAndClearRecovery").
			Str("user_id", id).
			Msg("recovery compare-and-set matched no row")
		return ErrRecoveryTokenMismatch
	}

	return nil
}

func (r *userRepository) SetRecoveryToken(ctx context.Context, id string, token models.RecoveryToken) error {
	query, args, err := r.queries.setRecoveryToken(id, token, r.now().UTC())
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	affected, err := r.execAffected(ctx, "*userRepository.SetRecoveryToken", query, args)
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNoUserWasFound
	}

	return nil
}

func (r *userRepository) UpdateProfile(ctx context.Context, user models.User) (models.User, error) {
	user.UpdatedAt = r.now().UTC()

	query, args, err := r.queries.updateProfile(user)
	if err != nil {
		return models.User{}, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	affected, err := r.execAffected(ctx, "*userRepository.UpdateProfile", query, args)
	if err != nil {
		return models.User{}, err
	}
	if affected == 0 {
		return models.User{}, ErrNoUserWasFound
	}

	return r.FindByID(ctx, user.ID)
}

func (r *userRepository) findOne(ctx context.Context, funcName, query string, args []any) (models.User, error) {
	log := logger.FromContext(ctx)

	user, err := scanUser(r.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, ErrNoUserWasFound
	}
	if err != nil {
		log.Err(err).Str("func", funcName).Msg("error querying user")
		return models.User{}, r.wrapError(err)
	}

	return user, nil
}

func (r *userRepository) execAffected(ctx context.Context, funcName, query string, args []any) (int64, error) {
	log := logger.FromContext(ctx)

	result, err := r.ExecContext(ctx, query, args...)
	if err != nil {
		log.Err(err).Str("func", funcName).Msg("error executing statement")
		return 0, r.wrapError(err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		log.Err(err).Str("func", funcName).Msg("error reading affected rows")
		return 0, r.wrapError(err)
	}

	return affected, nil
}

// wrapError maps driver errors to the package sentinels.
func (r *userRepository) wrapError(err error) error {
	if column, ok := uniqueViolationColumn(err); ok {
		switch column {
		case columnEmail:
			return ErrEmailAlreadyExists
		case columnUsername:
			return ErrUsernameAlreadyExists
		}
	}

	return classifyError(r.errorClassificator, err)
}

func scanUser(row *sql.Row) (models.User, error) {
	var (
		user         models.User
		recoveryHash sql.NullString
		recoveryExp  sql.NullTime
	)

	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.Name,
		&user.PasswordHash,
		&user.Scope,
		&recoveryHash,
		&recoveryExp,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return models.User{}, err
	}

	if recoveryHash.Valid && recoveryHash.String != "" && recoveryExp.Valid {
		user.Recovery = &models.RecoveryToken{
			TokenHash: recoveryHash.String,
			ExpiresAt: recoveryExp.Time.UTC(),
		}
	}
	user.CreatedAt = user.CreatedAt.UTC()
	user.UpdatedAt = user.UpdatedAt.UTC()

	return user, nil
}
