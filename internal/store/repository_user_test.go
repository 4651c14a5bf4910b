package store

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-identity-keeper/internal/logger"
	"github.com/MKhiriev/go-identity-keeper/models"
)

var testNow = time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)

func newTestDB(t *testing.T) (*DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	return &DB{
		DB:                 db,
		dialect:            DialectPostgres,
		errorClassificator: NewPostgresErrorClassifier(),
		logger:             logger.Nop(),
	}, mock
}

func newTestUserRepo(t *testing.T) (*userRepository, sqlmock.Sqlmock) {
	db, mock := newTestDB(t)
	repo := NewUserRepository(db, logger.Nop()).(*userRepository)
	repo.now = func() time.Time { return testNow }
	return repo, mock
}

func pgError(code string) error {
	return &pgconn.PgError{Code: code}
}

func testUser() models.User {
	return models.User{
		ID:           "0195f6e2-7c1a-7b3e-9a55-1f0c2d3e4f50",
		Username:     "alice",
		Email:        "Alice@Example.com",
		Name:         "Alice",
		PasswordHash: "$2a$10$hash",
		Scope:        models.ScopeUser,
		CreatedAt:    testNow,
		UpdatedAt:    testNow,
	}
}

func userRows() *sqlmock.Rows {
	return sqlmock.NewRows(userColumns)
}

func TestCreate_Success(t *testing.T) {
	repo, mock := newTestUserRepo(t)
	user := testUser()

	mock.ExpectExec("INSERT INTO users").
		WithArgs(user.ID, "alice", "alice@example.com", "Alice", user.PasswordHash, "user", testNow, testNow).
		WillReturnResult(sqlmock.NewResult(0, 1))

	created, err := repo.Create(context.Background(), user)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", created.Email)
	assert.Equal(t, user.ID, created.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_UniqueViolation(t *testing.T) {
	tests := []struct {
		name       string
		constraint string
		wantErr    error
	}{
		{name: "username taken", constraint: usersUsernameConstraint, wantErr: ErrUsernameAlreadyExists},
		{name: "email taken", constraint: usersEmailConstraint, wantErr: ErrEmailAlreadyExists},
		{name: "primary key clash", constraint: "users_pkey", wantErr: ErrExecutingQuery},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock := newTestUserRepo(t)

			mock.ExpectExec("INSERT INTO users").
				WillReturnError(&pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: tt.constraint})

			_, err := repo.Create(context.Background(), testUser())
			assert.ErrorIs(t, err, tt.wantErr)
			if tt.wantErr == ErrExecutingQuery {
				assert.NotErrorIs(t, err, ErrUsernameAlreadyExists)
				assert.NotErrorIs(t, err, ErrEmailAlreadyExists)
			}
		})
	}
}

func TestCreate_DBErrors(t *testing.T) {
	tests := []struct {
		name    string
		dbErr   error
		wantErr error
	}{
		{name: "retryable", dbErr: pgError(pgerrcode.SerializationFailure), wantErr: ErrStoreUnavailable},
		{name: "unclassified", dbErr: errors.New("driver failure"), wantErr: ErrExecutingQuery},
		{name: "non retryable", dbErr: pgError(pgerrcode.SyntaxError), wantErr: ErrExecutingQuery},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock := newTestUserRepo(t)

			mock.ExpectExec("INSERT INTO users").WillReturnError(tt.dbErr)

			_, err := repo.Create(context.Background(), testUser())
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestFindByUsernameOrEmail_Success(t *testing.T) {
	repo, mock := newTestUserRepo(t)
	u := testUser()

	mock.ExpectQuery("SELECT (.+) FROM users WHERE").
		WithArgs("Alice@Example.com", "alice@example.com").
		WillReturnRows(userRows().AddRow(
			u.ID, u.Username, "alice@example.com", u.Name, u.PasswordHash, "user", nil, nil, testNow, testNow,
		))

	found, err := repo.FindByUsernameOrEmail(context.Background(), "Alice@Example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, found.ID)
	assert.Equal(t, models.ScopeUser, found.Scope)
	assert.Equal(t, u.PasswordHash, found.PasswordHash)
	assert.Nil(t, found.Recovery)
}

func TestFindByUsernameOrEmail_NotFound(t *testing.T) {
	repo, mock := newTestUserRepo(t)

	mock.ExpectQuery("SELECT (.+) FROM users WHERE").
		WithArgs("ghost", "ghost").
		WillReturnRows(userRows())

	_, err := repo.FindByUsernameOrEmail(context.Background(), "ghost")
	assert.ErrorIs(t, err, ErrNoUserWasFound)
}

func TestFindByUsernameOrEmail_QueryError(t *testing.T) {
	repo, mock := newTestUserRepo(t)

	mock.ExpectQuery("SELECT (.+) FROM users WHERE").
		WillReturnError(pgError(pgerrcode.AdminShutdown))

	_, err := repo.FindByUsernameOrEmail(context.Background(), "alice")
	assert.ErrorIs(t, err, ErrStoreUnavailable)
}

func TestFindByID_WithRecovery(t *testing.T) {
	repo, mock := newTestUserRepo(t)
	u := testUser()
	expires := testNow.Add(time.Hour)

	mock.ExpectQuery("SELECT (.+) FROM users WHERE id").
		WithArgs(u.ID).
		WillReturnRows(userRows().AddRow(
			u.ID, u.Username, u.Email, u.Name, u.PasswordHash, "admin", "tokenhash", expires, testNow, testNow,
		))

	found, err := repo.FindByID(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ScopeAdmin, found.Scope)
	require.NotNil(t, found.Recovery)
	assert.Equal(t, "tokenhash", found.Recovery.TokenHash)
	assert.True(t, expires.Equal(found.Recovery.ExpiresAt))
}

func TestFindByID_ScanError(t *testing.T) {
	repo, mock := newTestUserRepo(t)

	mock.ExpectQuery("SELECT (.+) FROM users WHERE id").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("x")) // wrong shape

	_, err := repo.FindByID(context.Background(), "x")
	assert.ErrorIs(t, err, ErrExecutingQuery)
}

func TestUpdatePassword(t *testing.T) {
	tests := []struct {
		name     string
		affected int64
		wantErr  error
	}{
		{name: "updated", affected: 1},
		{name: "unknown user", affected: 0, wantErr: ErrNoUserWasFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock := newTestUserRepo(t)

			mock.ExpectExec("UPDATE users SET password_hash").
				WithArgs("newhash", testNow, "id-1").
				WillReturnResult(sqlmock.NewResult(0, tt.affected))

			err := repo.UpdatePassword(context.Background(), "id-1", "newhash")
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestUpdatePasswordAndClearRecovery(t *testing.T) {
	tests := []struct {
		name     string
		affected int64
		wantErr  error
	}{
		{name: "token matched", affected: 1},
		{name: "token superseded or expired", affected: 0, wantErr: ErrRecoveryTokenMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock := newTestUserRepo(t)

			mock.ExpectExec("UPDATE users SET password_hash (.+) WHERE").
				WithArgs("newhash", nil, nil, testNow, "id-1", "tokenhash", testNow).
				WillReturnResult(sqlmock.NewResult(0, tt.affected))

			err := repo.UpdatePasswordAndClearRecovery(context.Background(), "id-1", "tokenhash", "newhash", testNow)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestUpdatePasswordAndClearRecovery_EmptyHash(t *testing.T) {
	repo, mock := newTestUserRepo(t)

	err := repo.UpdatePasswordAndClearRecovery(context.Background(), "id-1", "", "newhash", testNow)
	assert.ErrorIs(t, err, ErrRecoveryTokenMismatch)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSetRecoveryToken(t *testing.T) {
	repo, mock := newTestUserRepo(t)
	token := models.RecoveryToken{TokenHash: "tokenhash", ExpiresAt: testNow.Add(time.Hour)}

	mock.ExpectExec("UPDATE users SET recovery_token_hash").
		WithArgs("tokenhash", token.ExpiresAt, testNow, "id-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.SetRecoveryToken(context.Background(), "id-1", token))
}

func TestSetRecoveryToken_UnknownUser(t *testing.T) {
	repo, mock := newTestUserRepo(t)

	mock.ExpectExec("UPDATE users SET recovery_token_hash").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.SetRecoveryToken(context.Background(), "id-1", models.RecoveryToken{TokenHash: "h", ExpiresAt: testNow})
	assert.ErrorIs(t, err, ErrNoUserWasFound)
}

func TestUpdateProfile_UsernameTaken(t *testing.T) {
	repo, mock := newTestUserRepo(t)

	mock.ExpectExec("UPDATE users SET username").
		WillReturnError(&pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: usersUsernameConstraint})

	_, err := repo.UpdateProfile(context.Background(), testUser())
	assert.ErrorIs(t, err, ErrUsernameAlreadyExists)
}

func TestUpdateProfile_ReturnsFreshRow(t *testing.T) {
	repo, mock := newTestUserRepo(t)
	u := testUser()
	u.Username = "alicia"

	mock.ExpectExec("UPDATE users SET username").
		WithArgs("alicia", "Alice", testNow, u.ID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT (.+) FROM users WHERE id").
		WithArgs(u.ID).
		WillReturnRows(userRows().AddRow(
			u.ID, "alicia", "alice@example.com", u.Name, u.PasswordHash, "user", nil, nil, testNow, testNow,
		))

	updated, err := repo.UpdateProfile(context.Background(), u)
	require.NoError(t, err)
	assert.Equal(t, "alicia", updated.Username)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecAffected_RowsAffectedError(t *testing.T) {
	repo, mock := newTestUserRepo(t)

	mock.ExpectExec("UPDATE users").
		WillReturnResult(sqlmock.NewErrorResult(sql.ErrConnDone))

	err := repo.UpdatePassword(context.Background(), "id-1", "h")
	assert.ErrorIs(t, err, ErrStoreUnavailable)
}
