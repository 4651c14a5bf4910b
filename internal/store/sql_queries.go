package store

import (
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/MKhiriev/go-identity-keeper/models"
)

const (
	usersTable      = "users"
	userLoginsTable = "user_logins"

	columnID                = "id"
	columnUsername          = "username"
	columnEmail             = "email"
	columnName              = "name"
	columnPasswordHash      = "password_hash"
	columnScope             = "scope"
	columnRecoveryTokenHash = "recovery_token_hash"
	columnRecoveryExpiresAt = "recovery_expires_at"
	columnCreatedAt         = "created_at"
	columnUpdatedAt         = "updated_at"

	columnUserID         = "user_id"
	columnIP             = "ip"
	columnClientIdentity = "client_identity"
	columnLoggedInAt     = "logged_in_at"

	usersUsernameConstraint = "users_username_key"
	usersEmailConstraint    = "users_email_key"
)

// userColumns is the column order every user SELECT returns and scanUser
// expects.
var userColumns = []string{
	columnID,
	columnUsername,
	columnEmail,
	columnName,
	columnPasswordHash,
	columnScope,
	columnRecoveryTokenHash,
	columnRecoveryExpiresAt,
	columnCreatedAt,
	columnUpdatedAt,
}

// queries builds the statements of the repositories for one dialect.
type queries struct {
	sq.StatementBuilderType
}

func newQueries(db *DB) queries {
	return queries{StatementBuilderType: db.builder()}
}

// selectUserByUsernameOrEmail matches identifier against the username as is
// and against the email normalized the way it was stored.
func (q queries) selectUserByUsernameOrEmail(identifier string) (string, []any, error) {
	return q.Select(userColumns...).
		From(usersTable).
		Where(sq.Or{
			sq.Eq{columnUsername: identifier},
			sq.Eq{columnEmail: normalizeEmail(identifier)},
		}).
		Limit(1).
		ToSql()
}

func (q queries) selectUserByID(id string) (string, []any, error) {
	return q.Select(userColumns...).
		From(usersTable).
		Where(sq.Eq{columnID: id}).
		ToSql()
}

func (q queries) insertUser(user models.User) (string, []any, error) {
	return q.Insert(usersTable).
		Columns(
			columnID,
			columnUsername,
			columnEmail,
			columnName,
			columnPasswordHash,
			columnScope,
			columnCreatedAt,
			columnUpdatedAt,
		).
		Values(
			user.ID,
			user.Username,
			user.Email,
			user.Name,
			user.PasswordHash,
			string(user.Scope),
			user.CreatedAt,
			user.UpdatedAt,
		).
		ToSql()
}

func (q queries) updatePassword(id, passwordHash string, now time.Time) (string, []any, error) {
	return q.Update(usersTable).
		Set(columnPasswordHash, passwordHash).
		Set(columnUpdatedAt, now).
		Where(sq.Eq{columnID: id}).
		ToSql()
}

// updatePasswordAndClearRecovery is a compare-and-set on the stored recovery
// token: the row only changes while the hash matches and is not expired.
func (q queries) updatePasswordAndClearRecovery(id, expectedTokenHash, passwordHash string, now time.Time) (string, []any, error) {
	return q.Update(usersTable).
		Set(columnPasswordHash, passwordHash).
		Set(columnRecoveryTokenHash, nil).
		Set(columnRecoveryExpiresAt, nil).
		Set(columnUpdatedAt, now).
		Where(sq.And{
			sq.Eq{columnID: id},
			sq.Eq{columnRecoveryTokenHash: expectedTokenHash},
			sq.GtOrEq{columnRecoveryExpiresAt: now},
		}).
		ToSql()
}

func (q queries) setRecoveryToken(id string, token models.RecoveryToken, now time.Time) (string, []any, error) {
	return q.Update(usersTable).
		Set(columnRecoveryTokenHash, token.TokenHash).
		Set(columnRecoveryExpiresAt, token.ExpiresAt.UTC()).
		Set(columnUpdatedAt, now).
		Where(sq.Eq{columnID: id}).
		ToSql()
}

func (q queries) updateProfile(user models.User) (string, []any, error) {
	return q.Update(usersTable).
		Set(columnUsername, user.Username).
		Set(columnName, user.Name).
		Set(columnUpdatedAt, user.UpdatedAt).
		Where(sq.Eq{columnID: user.ID}).
		ToSql()
}

func (q queries) insertLoginAudit(entry models.LoginAuditEntry) (string, []any, error) {
	return q.Insert(userLoginsTable).
		Columns(columnUserID, columnIP, columnClientIdentity, columnLoggedInAt).
		Values(entry.UserID, entry.IP, entry.ClientIdentity, entry.Timestamp.UTC()).
		ToSql()
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
