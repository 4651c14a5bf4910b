package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/MKhiriev/go-identity-keeper/internal/crypto"
	"github.com/MKhiriev/go-identity-keeper/internal/logger"
	"github.com/MKhiriev/go-identity-keeper/internal/store"
	"github.com/MKhiriev/go-identity-keeper/models"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

const (
	testRecoveryTTL = time.Hour
	testTokenTTL    = 15 * time.Minute
)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: testNow}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// memoryUsers is an in-process UserRepository with the same uniqueness and
// compare-and-set rules as the SQL store.
type memoryUsers struct {
	mu    sync.Mutex
	users map[string]models.User
}

func newMemoryUsers() *memoryUsers {
	return &memoryUsers{users: make(map[string]models.User)}
}

func (m *memoryUsers) Create(_ context.Context, user models.User) (models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	for _, u := range m.users {
		if u.Username == user.Username {
			return models.User{}, store.ErrUsernameAlreadyExists
		}
		if u.Email == user.Email {
			return models.User{}, store.ErrEmailAlreadyExists
		}
	}
	m.users[user.ID] = user
	return cloneUser(user), nil
}

func (m *memoryUsers) FindByUsernameOrEmail(_ context.Context, identifier string) (models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	email := strings.ToLower(strings.TrimSpace(identifier))
	for _, u := range m.users {
		if u.Username == identifier || u.Email == email {
			return cloneUser(u), nil
		}
	}
	return models.User{}, store.ErrNoUserWasFound
}

func (m *memoryUsers) FindByID(_ context.Context, id string) (models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[id]
	if !ok {
		return models.User{}, store.ErrNoUserWasFound
	}
	return cloneUser(u), nil
}

func (m *memoryUsers) UpdatePassword(_ context.Context, id, passwordHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[id]
	if !ok {
		return store.ErrNoUserWasFound
	}
	u.PasswordHash = passwordHash
	m.users[id] = u
	return nil
}

func (m *memoryUsers) UpdatePasswordAndClearRecovery(_ context.Context, id, expectedTokenHash, passwordHash string, now time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[id]
	if !ok || expectedTokenHash == "" || u.Recovery == nil ||
		u.Recovery.TokenHash != expectedTokenHash || now.After(u.Recovery.ExpiresAt) {
		return store.ErrRecoveryTokenMismatch
	}
	u.PasswordHash = passwordHash
	u.Recovery = nil
	m.users[id] = u
	return nil
}

func (m *memoryUsers) SetRecoveryToken(_ context.Context, id string, token models.RecoveryToken) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[id]
	if !ok {
		return store.ErrNoUserWasFound
	}
	u.Recovery = &token
	m.users[id] = u
	return nil
}

func (m *memoryUsers) UpdateProfile(_ context.Context, user models.User) (models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[user.ID]
	if !ok {
		return models.User{}, store.ErrNoUserWasFound
	}
	for id, other := range m.users {
		if id != user.ID && other.Username == user.Username {
			return models.User{}, store.ErrUsernameAlreadyExists
		}
	}
	u.Username = user.Username
	u.Name = user.Name
	m.users[user.ID] = u
	return cloneUser(u), nil
}

// put stores a user bypassing uniqueness checks.
func (m *memoryUsers) put(user models.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[user.ID] = user
}

func cloneUser(u models.User) models.User {
	if u.Recovery != nil {
		r := *u.Recovery
		u.Recovery = &r
	}
	return u
}

type recordingAudit struct {
	mu      sync.Mutex
	entries []models.LoginAuditEntry
}

func (a *recordingAudit) Append(_ context.Context, entry models.LoginAuditEntry) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries = append(a.entries, entry)
	return nil
}

func (a *recordingAudit) Entries() []models.LoginAuditEntry {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]models.LoginAuditEntry(nil), a.entries...)
}

type recordingNotifier struct {
	mu      sync.Mutex
	notices []models.RecoveryNotice
}

func (n *recordingNotifier) Notify(_ context.Context, notice models.RecoveryNotice) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notices = append(n.notices, notice)
	return nil
}

func (n *recordingNotifier) Last(t *testing.T) models.RecoveryNotice {
	t.Helper()
	n.mu.Lock()
	defer n.mu.Unlock()
	require.NotEmpty(t, n.notices, "no recovery notice was sent")
	return n.notices[len(n.notices)-1]
}

func (n *recordingNotifier) Count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.notices)
}

// newTestCredentialService wires the real bcrypt hasher and token issuers to
// a shared fixed clock.
func newTestCredentialService(t *testing.T, users store.UserRepository, audit LoginAuditSink, notifier RecoveryNotifier) (*credentialService, *testClock) {
	t.Helper()

	clock := newTestClock()

	hasher, err := crypto.NewPasswordHasher(bcrypt.MinCost)
	require.NoError(t, err)
	tokens, err := crypto.NewTokenIssuer("test-sign-key", "identity-keeper-test", crypto.WithClock(clock.Now))
	require.NoError(t, err)
	recovery, err := crypto.NewRecoveryTokenIssuer("test-recovery-key", testRecoveryTTL, crypto.WithClock(clock.Now))
	require.NoError(t, err)

	var (
		idMu sync.Mutex
		seq  int
	)
	newID := func() string {
		idMu.Lock()
		defer idMu.Unlock()
		seq++
		return fmt.Sprintf("00000000-0000-4000-8000-%012d", seq)
	}

	return &credentialService{
		users:         users,
		audit:         audit,
		notifier:      notifier,
		hasher:        hasher,
		tokens:        tokens,
		recovery:      recovery,
		policy:        NewPasswordPolicy(6),
		tokenDuration: testTokenTTL,
		newID:         newID,
		now:           clock.Now,
		logger:        logger.Nop(),
	}, clock
}

func mustHash(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}
