package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"golang.org/x/crypto/bcrypt"

	"github.com/MKhiriev/go-identity-keeper/internal/config"
	"github.com/MKhiriev/go-identity-keeper/internal/logger"
	"github.com/MKhiriev/go-identity-keeper/internal/mock"
	"github.com/MKhiriev/go-identity-keeper/internal/store"
	"github.com/MKhiriev/go-identity-keeper/models"
)

const (
	alicePassword = "Str0ng!pw"
	aliceNewPass  = "NewPw1!"
)

func signupAlice(t *testing.T, svc *credentialService) models.AuthResponse {
	t.Helper()
	resp, err := svc.Signup(context.Background(), models.SignupRequest{
		Username: "alice",
		Email:    "a@x.com",
		Password: alicePassword,
	})
	require.NoError(t, err)
	return resp
}

func login(svc *credentialService, username, password string) (models.AuthResponse, error) {
	return svc.Login(context.Background(), models.LoginRequest{Username: username, Password: password})
}

// ─────────────────────────────────────────────
// End-to-end lifecycle
// ─────────────────────────────────────────────

func TestCredentialService_AliceScenario(t *testing.T) {
	ctx := context.Background()
	notifier := &recordingNotifier{}
	svc, _ := newTestCredentialService(t, newMemoryUsers(), &recordingAudit{}, notifier)

	signup := signupAlice(t, svc)
	assert.NotEmpty(t, signup.Token)

	_, err := login(svc, "alice", alicePassword)
	require.NoError(t, err)

	_, err = login(svc, "alice", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	ack, err := svc.ResetPassword(ctx, models.ResetPasswordRequest{UsernameOrEmail: "alice"})
	require.NoError(t, err)
	assert.Equal(t, models.ResetPasswordAck, ack)
	token := notifier.Last(t).RawToken
	require.NotEmpty(t, token)

	require.NoError(t, svc.RecoverPassword(ctx, models.RecoverPasswordRequest{Token: token, Password: aliceNewPass}))

	_, err = login(svc, "alice", alicePassword)
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = login(svc, "alice", aliceNewPass)
	require.NoError(t, err)
}

// ─────────────────────────────────────────────
// Signup
// ─────────────────────────────────────────────

func TestSignup_CreatesActiveUserWithDefaultScope(t *testing.T) {
	users := newMemoryUsers()
	svc, _ := newTestCredentialService(t, users, &recordingAudit{}, &recordingNotifier{})

	resp, err := svc.Signup(context.Background(), models.SignupRequest{
		Username: "alice",
		Email:    "  Alice@X.com ",
		Name:     "Alice",
		Password: alicePassword,
	})
	require.NoError(t, err)

	assert.Equal(t, "alice", resp.User.Username)
	assert.Equal(t, "alice@x.com", resp.User.Email)
	assert.Equal(t, models.ScopeUser, resp.User.Scope)
	assert.Equal(t, testNow, resp.User.CreatedAt)
	assert.Equal(t, testNow.Add(testTokenTTL), resp.ExpiresAt)

	stored, err := users.FindByID(context.Background(), resp.User.ID)
	require.NoError(t, err)
	assert.NotEqual(t, alicePassword, stored.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte(alicePassword)))
	assert.Nil(t, stored.Recovery)
}

func TestSignup_TokenReferencesCreatedUser(t *testing.T) {
	svc, _ := newTestCredentialService(t, newMemoryUsers(), &recordingAudit{}, &recordingNotifier{})

	resp := signupAlice(t, svc)

	token, err := svc.ParseToken(context.Background(), resp.Token)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, token.UserID)
	assert.Equal(t, models.ScopeUser, token.SessionClaims.Scope)
}

func TestSignup_Rejections(t *testing.T) {
	svc, _ := newTestCredentialService(t, newMemoryUsers(), &recordingAudit{}, &recordingNotifier{})
	signupAlice(t, svc)

	tests := []struct {
		name    string
		req     models.SignupRequest
		wantErr error
	}{
		{
			name:    "username taken",
			req:     models.SignupRequest{Username: "alice", Email: "other@x.com", Password: alicePassword},
			wantErr: ErrDuplicateIdentity,
		},
		{
			name:    "email taken in another case",
			req:     models.SignupRequest{Username: "alice2", Email: "A@X.COM", Password: alicePassword},
			wantErr: ErrDuplicateIdentity,
		},
		{
			name:    "username looks like an email",
			req:     models.SignupRequest{Username: "bob@x.com", Email: "bob@x.com", Password: alicePassword},
			wantErr: ErrInvalidDataProvided,
		},
		{
			name:    "weak password",
			req:     models.SignupRequest{Username: "bob", Email: "bob@x.com", Password: "password"},
			wantErr: ErrWeakPassword,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Signup(context.Background(), tt.req)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestSignup_WeakPasswordCreatesNothing(t *testing.T) {
	users := newMemoryUsers()
	svc, _ := newTestCredentialService(t, users, &recordingAudit{}, &recordingNotifier{})

	_, err := svc.Signup(context.Background(), models.SignupRequest{Username: "bob", Email: "bob@x.com", Password: "abc"})
	require.ErrorIs(t, err, ErrWeakPassword)

	_, err = users.FindByUsernameOrEmail(context.Background(), "bob")
	assert.ErrorIs(t, err, store.ErrNoUserWasFound)
}

func TestSignup_StoreUnavailable(t *testing.T) {
	ctrl := gomock.NewController(t)
	users := mock.NewMockUserRepository(ctrl)
	users.EXPECT().Create(gomock.Any(), gomock.Any()).
		Return(models.User{}, fmt.Errorf("%w: connection refused", store.ErrStoreUnavailable))

	svc, _ := newTestCredentialService(t, users, &recordingAudit{}, &recordingNotifier{})

	_, err := svc.Signup(context.Background(), models.SignupRequest{Username: "bob", Email: "bob@x.com", Password: alicePassword})
	assert.ErrorIs(t, err, ErrStoreUnavailable)
}

// ─────────────────────────────────────────────
// Login
// ─────────────────────────────────────────────

func TestLogin_RecordsAuditEntry(t *testing.T) {
	audit := &recordingAudit{}
	svc, _ := newTestCredentialService(t, newMemoryUsers(), audit, &recordingNotifier{})
	created := signupAlice(t, svc)

	resp, err := svc.Login(context.Background(), models.LoginRequest{
		Username:       "alice",
		Password:       alicePassword,
		IP:             "203.0.113.7",
		ClientIdentity: "identity-cli/1.0",
	})
	require.NoError(t, err)
	assert.Equal(t, created.User.ID, resp.User.ID)

	entries := audit.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, models.LoginAuditEntry{
		UserID:         created.User.ID,
		IP:             "203.0.113.7",
		ClientIdentity: "identity-cli/1.0",
		Timestamp:      testNow,
	}, entries[0])
}

func TestLogin_ByEmail(t *testing.T) {
	svc, _ := newTestCredentialService(t, newMemoryUsers(), &recordingAudit{}, &recordingNotifier{})
	created := signupAlice(t, svc)

	resp, err := login(svc, "A@x.com", alicePassword)
	require.NoError(t, err)

	token, err := svc.ParseToken(context.Background(), resp.Token)
	require.NoError(t, err)
	assert.Equal(t, created.User.ID, token.UserID)
}

func TestLogin_FailuresAreIndistinguishable(t *testing.T) {
	audit := &recordingAudit{}
	svc, _ := newTestCredentialService(t, newMemoryUsers(), audit, &recordingNotifier{})
	signupAlice(t, svc)

	_, errWrong := login(svc, "alice", "Wr0ng!password")
	_, errUnknown := login(svc, "nobody", "Wr0ng!password")

	require.Error(t, errWrong)
	require.Error(t, errUnknown)
	assert.Equal(t, errWrong, errUnknown)
	assert.Equal(t, errWrong.Error(), errUnknown.Error())
	assert.ErrorIs(t, errUnknown, ErrInvalidCredentials)
	assert.NotErrorIs(t, errUnknown, ErrUserNotFound)
	assert.Empty(t, audit.Entries())
}

func TestLogin_AdminGetsAdminScope(t *testing.T) {
	users := newMemoryUsers()
	users.put(models.User{
		ID:           "00000000-0000-4000-8000-00000000a0a0",
		Username:     "root",
		Email:        "root@x.com",
		PasswordHash: mustHash(t, alicePassword),
		Scope:        models.ScopeAdmin,
	})
	svc, _ := newTestCredentialService(t, users, &recordingAudit{}, &recordingNotifier{})

	resp, err := login(svc, "root", alicePassword)
	require.NoError(t, err)

	token, err := svc.ParseToken(context.Background(), resp.Token)
	require.NoError(t, err)
	assert.Equal(t, models.ScopeAdmin, token.SessionClaims.Scope)
}

func TestLogin_CorruptHashLooksLikeWrongPassword(t *testing.T) {
	users := newMemoryUsers()
	users.put(models.User{
		ID:           "00000000-0000-4000-8000-0000000000cc",
		Username:     "carol",
		Email:        "carol@x.com",
		PasswordHash: "not-a-bcrypt-hash",
		Scope:        models.ScopeUser,
	})
	svc, _ := newTestCredentialService(t, users, &recordingAudit{}, &recordingNotifier{})

	_, err := login(svc, "carol", alicePassword)
	assert.Equal(t, ErrInvalidCredentials, err)
}

func TestLogin_AuditFailureDoesNotFailLogin(t *testing.T) {
	ctrl := gomock.NewController(t)
	audit := mock.NewMockLoginAuditSink(ctrl)
	audit.EXPECT().Append(gomock.Any(), gomock.Any()).Return(errors.New("audit queue is full"))

	svc, _ := newTestCredentialService(t, newMemoryUsers(), audit, &recordingNotifier{})
	signupAlice(t, svc)

	resp, err := login(svc, "alice", alicePassword)
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
}

func TestLogin_CanceledContextSkipsAudit(t *testing.T) {
	audit := &recordingAudit{}
	svc, _ := newTestCredentialService(t, newMemoryUsers(), audit, &recordingNotifier{})
	signupAlice(t, svc)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Login(ctx, models.LoginRequest{Username: "alice", Password: alicePassword})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, audit.Entries())
}

func TestLogin_StoreUnavailable(t *testing.T) {
	ctrl := gomock.NewController(t)
	users := mock.NewMockUserRepository(ctrl)
	users.EXPECT().FindByUsernameOrEmail(gomock.Any(), "alice").
		Return(models.User{}, fmt.Errorf("%w: connection refused", store.ErrStoreUnavailable))

	svc, _ := newTestCredentialService(t, users, &recordingAudit{}, &recordingNotifier{})

	_, err := login(svc, "alice", alicePassword)
	assert.ErrorIs(t, err, ErrStoreUnavailable)
	assert.NotErrorIs(t, err, ErrInvalidCredentials)
}

// ─────────────────────────────────────────────
// Session tokens
// ─────────────────────────────────────────────

func TestRefreshToken(t *testing.T) {
	const (
		userID  = "00000000-0000-4000-8000-000000000001"
		adminID = "00000000-0000-4000-8000-000000000002"
	)
	users := newMemoryUsers()
	users.put(models.User{ID: userID, Username: "u", Email: "u@x.com", Scope: models.ScopeUser})
	users.put(models.User{ID: adminID, Username: "a", Email: "a@x.com", Scope: models.ScopeAdmin})
	svc, _ := newTestCredentialService(t, users, &recordingAudit{}, &recordingNotifier{})

	tests := []struct {
		name      string
		userID    string
		scope     models.Scope
		wantScope models.Scope
		wantErr   error
	}{
		{name: "user keeps user scope", userID: userID, scope: models.ScopeUser, wantScope: models.ScopeUser},
		{name: "admin keeps admin scope", userID: adminID, scope: models.ScopeAdmin, wantScope: models.ScopeAdmin},
		{name: "admin may refresh a user token", userID: adminID, scope: models.ScopeUser, wantScope: models.ScopeUser},
		{name: "lost admin scope is downgraded", userID: userID, scope: models.ScopeAdmin, wantScope: models.ScopeUser},
		{name: "unknown scope", userID: userID, scope: models.Scope("root"), wantErr: ErrInvalidDataProvided},
		{name: "deleted user", userID: "00000000-0000-4000-8000-000000000099", scope: models.ScopeUser, wantErr: ErrTokenIsExpiredOrInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := svc.RefreshToken(context.Background(), tt.userID, tt.scope)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.NotErrorIs(t, err, ErrUserNotFound)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, testNow.Add(testTokenTTL), resp.ExpiresAt)

			token, err := svc.ParseToken(context.Background(), resp.Token)
			require.NoError(t, err)
			assert.Equal(t, tt.userID, token.UserID)
			assert.Equal(t, tt.wantScope, token.SessionClaims.Scope)
		})
	}
}

func TestParseToken_Rejections(t *testing.T) {
	svc, clock := newTestCredentialService(t, newMemoryUsers(), &recordingAudit{}, &recordingNotifier{})
	resp := signupAlice(t, svc)

	_, err := svc.ParseToken(context.Background(), "garbage")
	assert.ErrorIs(t, err, ErrTokenIsExpiredOrInvalid)

	_, err = svc.ParseToken(context.Background(), resp.Token+"x")
	assert.ErrorIs(t, err, ErrTokenIsExpiredOrInvalid)

	clock.Advance(testTokenTTL + time.Second)
	_, err = svc.ParseToken(context.Background(), resp.Token)
	assert.ErrorIs(t, err, ErrTokenIsExpiredOrInvalid)
}

// ─────────────────────────────────────────────
// ChangePassword
// ─────────────────────────────────────────────

func TestChangePassword_NewPasswordReplacesOld(t *testing.T) {
	svc, _ := newTestCredentialService(t, newMemoryUsers(), &recordingAudit{}, &recordingNotifier{})
	created := signupAlice(t, svc)

	err := svc.ChangePassword(context.Background(), models.ChangePasswordRequest{
		UserID:      created.User.ID,
		OldPassword: alicePassword,
		Password:    "An0ther!pw",
	})
	require.NoError(t, err)

	_, err = login(svc, "alice", alicePassword)
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = login(svc, "alice", "An0ther!pw")
	assert.NoError(t, err)
}

func TestChangePassword_Rejections(t *testing.T) {
	svc, _ := newTestCredentialService(t, newMemoryUsers(), &recordingAudit{}, &recordingNotifier{})
	created := signupAlice(t, svc)

	tests := []struct {
		name    string
		req     models.ChangePasswordRequest
		wantErr error
	}{
		{
			name:    "wrong old password",
			req:     models.ChangePasswordRequest{UserID: created.User.ID, OldPassword: "Wr0ng!pw", Password: "An0ther!pw"},
			wantErr: ErrInvalidCredentials,
		},
		{
			name:    "weak new password",
			req:     models.ChangePasswordRequest{UserID: created.User.ID, OldPassword: alicePassword, Password: "short"},
			wantErr: ErrWeakPassword,
		},
		{
			name:    "deleted user",
			req:     models.ChangePasswordRequest{UserID: "00000000-0000-4000-8000-000000000099", OldPassword: alicePassword, Password: "An0ther!pw"},
			wantErr: ErrTokenIsExpiredOrInvalid,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := svc.ChangePassword(context.Background(), tt.req)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.NotErrorIs(t, err, ErrUserNotFound)
		})
	}

	_, err := login(svc, "alice", alicePassword)
	assert.NoError(t, err, "rejected changes must keep the old password")
}

func TestChangePassword_PendingRecoveryStaysValid(t *testing.T) {
	ctx := context.Background()
	notifier := &recordingNotifier{}
	svc, _ := newTestCredentialService(t, newMemoryUsers(), &recordingAudit{}, notifier)
	created := signupAlice(t, svc)

	_, err := svc.ResetPassword(ctx, models.ResetPasswordRequest{UsernameOrEmail: "alice"})
	require.NoError(t, err)

	require.NoError(t, svc.ChangePassword(ctx, models.ChangePasswordRequest{
		UserID:      created.User.ID,
		OldPassword: alicePassword,
		Password:    "An0ther!pw",
	}))

	err = svc.RecoverPassword(ctx, models.RecoverPasswordRequest{Token: notifier.Last(t).RawToken, Password: aliceNewPass})
	require.NoError(t, err)

	_, err = login(svc, "alice", aliceNewPass)
	assert.NoError(t, err)
}

// ─────────────────────────────────────────────
// ResetPassword
// ─────────────────────────────────────────────

func TestResetPassword_UnknownIdentifierGetsSameAck(t *testing.T) {
	notifier := &recordingNotifier{}
	svc, _ := newTestCredentialService(t, newMemoryUsers(), &recordingAudit{}, notifier)
	signupAlice(t, svc)

	known, err := svc.ResetPassword(context.Background(), models.ResetPasswordRequest{UsernameOrEmail: "alice"})
	require.NoError(t, err)
	unknown, err := svc.ResetPassword(context.Background(), models.ResetPasswordRequest{UsernameOrEmail: "nobody@x.com"})
	require.NoError(t, err)

	assert.Equal(t, known, unknown)
	assert.Equal(t, 1, notifier.Count())
}

func TestResetPassword_ByEmailStoresHashedToken(t *testing.T) {
	users := newMemoryUsers()
	notifier := &recordingNotifier{}
	svc, _ := newTestCredentialService(t, users, &recordingAudit{}, notifier)
	created := signupAlice(t, svc)

	_, err := svc.ResetPassword(context.Background(), models.ResetPasswordRequest{UsernameOrEmail: "A@X.com"})
	require.NoError(t, err)

	notice := notifier.Last(t)
	assert.Equal(t, created.User.ID, notice.UserID)
	assert.Equal(t, "alice", notice.Username)
	assert.Equal(t, "a@x.com", notice.Email)
	assert.Equal(t, testNow.Add(testRecoveryTTL), notice.ExpiresAt)

	stored, err := users.FindByID(context.Background(), created.User.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.Recovery)
	assert.NotEqual(t, notice.RawToken, stored.Recovery.TokenHash)
	assert.Equal(t, svc.recovery.HashToken(notice.RawToken), stored.Recovery.TokenHash)
}

func TestResetPassword_NotifierFailureStillAcks(t *testing.T) {
	ctrl := gomock.NewController(t)
	notifier := mock.NewMockRecoveryNotifier(ctrl)

	var delivered models.RecoveryNotice
	notifier.EXPECT().Notify(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, notice models.RecoveryNotice) error {
			delivered = notice
			return errors.New("broker is down")
		})

	svc, _ := newTestCredentialService(t, newMemoryUsers(), &recordingAudit{}, notifier)
	signupAlice(t, svc)

	ack, err := svc.ResetPassword(context.Background(), models.ResetPasswordRequest{UsernameOrEmail: "alice"})
	require.NoError(t, err)
	assert.Equal(t, models.ResetPasswordAck, ack)

	err = svc.RecoverPassword(context.Background(), models.RecoverPasswordRequest{Token: delivered.RawToken, Password: aliceNewPass})
	assert.NoError(t, err)
}

func TestResetPassword_StoreUnavailable(t *testing.T) {
	ctrl := gomock.NewController(t)
	users := mock.NewMockUserRepository(ctrl)
	user := models.User{ID: "00000000-0000-4000-8000-000000000001", Username: "alice"}

	users.EXPECT().FindByUsernameOrEmail(gomock.Any(), "alice").Return(user, nil)
	users.EXPECT().SetRecoveryToken(gomock.Any(), user.ID, gomock.Any()).
		Return(fmt.Errorf("%w: connection reset", store.ErrStoreUnavailable))

	svc, _ := newTestCredentialService(t, users, &recordingAudit{}, &recordingNotifier{})

	_, err := svc.ResetPassword(context.Background(), models.ResetPasswordRequest{UsernameOrEmail: "alice"})
	assert.ErrorIs(t, err, ErrStoreUnavailable)
}

// ─────────────────────────────────────────────
// RecoverPassword
// ─────────────────────────────────────────────

func TestRecoverPassword_SecondResetInvalidatesFirst(t *testing.T) {
	ctx := context.Background()
	notifier := &recordingNotifier{}
	svc, _ := newTestCredentialService(t, newMemoryUsers(), &recordingAudit{}, notifier)
	signupAlice(t, svc)

	_, err := svc.ResetPassword(ctx, models.ResetPasswordRequest{UsernameOrEmail: "alice"})
	require.NoError(t, err)
	first := notifier.Last(t).RawToken

	_, err = svc.ResetPassword(ctx, models.ResetPasswordRequest{UsernameOrEmail: "alice"})
	require.NoError(t, err)
	second := notifier.Last(t).RawToken
	require.NotEqual(t, first, second)

	err = svc.RecoverPassword(ctx, models.RecoverPasswordRequest{Token: first, Password: aliceNewPass})
	assert.ErrorIs(t, err, ErrInvalidOrExpiredToken)

	err = svc.RecoverPassword(ctx, models.RecoverPasswordRequest{Token: second, Password: aliceNewPass})
	assert.NoError(t, err)
}

func TestRecoverPassword_TokenIsSingleUse(t *testing.T) {
	ctx := context.Background()
	notifier := &recordingNotifier{}
	svc, _ := newTestCredentialService(t, newMemoryUsers(), &recordingAudit{}, notifier)
	signupAlice(t, svc)

	_, err := svc.ResetPassword(ctx, models.ResetPasswordRequest{UsernameOrEmail: "alice"})
	require.NoError(t, err)
	token := notifier.Last(t).RawToken

	require.NoError(t, svc.RecoverPassword(ctx, models.RecoverPasswordRequest{Token: token, Password: aliceNewPass}))

	err = svc.RecoverPassword(ctx, models.RecoverPasswordRequest{Token: token, Password: "Th1rd!pw"})
	assert.ErrorIs(t, err, ErrInvalidOrExpiredToken)

	_, err = login(svc, "alice", aliceNewPass)
	assert.NoError(t, err)
}

func TestRecoverPassword_Expiry(t *testing.T) {
	tests := []struct {
		name    string
		advance time.Duration
		wantErr error
	}{
		{name: "usable at the expiry instant", advance: testRecoveryTTL},
		{name: "rejected after expiry", advance: testRecoveryTTL + time.Second, wantErr: ErrInvalidOrExpiredToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			notifier := &recordingNotifier{}
			svc, clock := newTestCredentialService(t, newMemoryUsers(), &recordingAudit{}, notifier)
			signupAlice(t, svc)

			_, err := svc.ResetPassword(ctx, models.ResetPasswordRequest{UsernameOrEmail: "alice"})
			require.NoError(t, err)

			clock.Advance(tt.advance)

			err = svc.RecoverPassword(ctx, models.RecoverPasswordRequest{Token: notifier.Last(t).RawToken, Password: aliceNewPass})
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				_, loginErr := login(svc, "alice", alicePassword)
				assert.NoError(t, loginErr)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestRecoverPassword_Rejections(t *testing.T) {
	ctx := context.Background()
	notifier := &recordingNotifier{}
	svc, _ := newTestCredentialService(t, newMemoryUsers(), &recordingAudit{}, notifier)
	signupAlice(t, svc)

	_, err := svc.ResetPassword(ctx, models.ResetPasswordRequest{UsernameOrEmail: "alice"})
	require.NoError(t, err)
	valid := notifier.Last(t).RawToken

	selector, _, _ := strings.Cut(valid, ".")
	tampered := selector + "." + strings.Repeat("A", 43)

	foreign, err := svc.recovery.Issue("00000000-0000-4000-8000-000000000099")
	require.NoError(t, err)

	tests := []struct {
		name     string
		token    string
		password string
		wantErr  error
	}{
		{name: "malformed token", token: "not-a-token", password: aliceNewPass, wantErr: ErrInvalidOrExpiredToken},
		{name: "tampered secret", token: tampered, password: aliceNewPass, wantErr: ErrInvalidOrExpiredToken},
		{name: "unknown user", token: foreign.RawToken, password: aliceNewPass, wantErr: ErrInvalidOrExpiredToken},
		{name: "weak password", token: valid, password: "weak", wantErr: ErrWeakPassword},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := svc.RecoverPassword(ctx, models.RecoverPasswordRequest{Token: tt.token, Password: tt.password})
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	// none of the rejected attempts consumed the token
	require.NoError(t, svc.RecoverPassword(ctx, models.RecoverPasswordRequest{Token: valid, Password: aliceNewPass}))
}

func TestRecoverPassword_LostCompareAndSet(t *testing.T) {
	ctrl := gomock.NewController(t)
	users := mock.NewMockUserRepository(ctrl)
	svc, _ := newTestCredentialService(t, users, &recordingAudit{}, &recordingNotifier{})

	const userID = "00000000-0000-4000-8000-000000000001"
	grant, err := svc.recovery.Issue(userID)
	require.NoError(t, err)

	users.EXPECT().FindByID(gomock.Any(), userID).Return(models.User{
		ID:       userID,
		Username: "alice",
		Recovery: &grant.Token,
	}, nil)
	users.EXPECT().UpdatePasswordAndClearRecovery(gomock.Any(), userID, grant.Token.TokenHash, gomock.Any(), testNow).
		Return(store.ErrRecoveryTokenMismatch)

	err = svc.RecoverPassword(context.Background(), models.RecoverPasswordRequest{Token: grant.RawToken, Password: aliceNewPass})
	assert.ErrorIs(t, err, ErrInvalidOrExpiredToken)
}

func TestRecoverPassword_ConcurrentUseSucceedsOnce(t *testing.T) {
	ctx := context.Background()
	notifier := &recordingNotifier{}
	svc, _ := newTestCredentialService(t, newMemoryUsers(), &recordingAudit{}, notifier)
	signupAlice(t, svc)

	_, err := svc.ResetPassword(ctx, models.ResetPasswordRequest{UsernameOrEmail: "alice"})
	require.NoError(t, err)
	token := notifier.Last(t).RawToken

	const attempts = 8
	var (
		wg        sync.WaitGroup
		succeeded atomic.Int32
		rejected  atomic.Int32
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := svc.RecoverPassword(ctx, models.RecoverPasswordRequest{Token: token, Password: aliceNewPass})
			switch {
			case err == nil:
				succeeded.Add(1)
			case errors.Is(err, ErrInvalidOrExpiredToken):
				rejected.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 1, succeeded.Load())
	assert.EqualValues(t, attempts-1, rejected.Load())
}

// ─────────────────────────────────────────────
// NewCredentialService
// ─────────────────────────────────────────────

func TestNewCredentialService(t *testing.T) {
	valid := config.App{
		TokenSignKey:          "sign-key",
		TokenIssuer:           "identity-keeper",
		TokenDuration:         time.Hour,
		RecoveryHashKey:       "recovery-key",
		RecoveryTokenDuration: time.Hour,
		PasswordHashCost:      bcrypt.MinCost,
		PasswordMinLength:     8,
	}

	tests := []struct {
		name    string
		mutate  func(*config.App)
		wantErr bool
	}{
		{name: "valid settings", mutate: func(*config.App) {}},
		{name: "missing sign key", mutate: func(c *config.App) { c.TokenSignKey = "" }, wantErr: true},
		{name: "missing issuer", mutate: func(c *config.App) { c.TokenIssuer = "" }, wantErr: true},
		{name: "missing recovery key", mutate: func(c *config.App) { c.RecoveryHashKey = "" }, wantErr: true},
		{name: "zero recovery lifetime", mutate: func(c *config.App) { c.RecoveryTokenDuration = 0 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)

			svc, err := NewCredentialService(newMemoryUsers(), &recordingAudit{}, &recordingNotifier{}, cfg, logger.Nop())
			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, svc)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, svc)
		})
	}
}
