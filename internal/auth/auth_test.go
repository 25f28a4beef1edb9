package auth

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testMasterSecret = "test-master-secret"

func testCredentials(t *testing.T) *Credentials {
	t.Helper()
	creds, err := NewCredentials("alice", "open-water", testMasterSecret)
	require.NoError(t, err)
	return creds
}

func TestVerifyAcceptsConfiguredPair(t *testing.T) {
	creds := testCredentials(t)

	require.NoError(t, creds.Verify("alice", "open-water"))
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	creds := testCredentials(t)

	require.ErrorIs(t, creds.Verify("alice", "wrong-secret"), ErrInvalidCredentials)
}

func TestVerifyRejectsWrongUsername(t *testing.T) {
	creds := testCredentials(t)

	require.ErrorIs(t, creds.Verify("bob", "open-water"), ErrInvalidCredentials)
}

func TestNewCredentialsRequiresValues(t *testing.T) {
	_, err := NewCredentials("", "secret", testMasterSecret)
	require.Error(t, err)

	_, err = NewCredentials("alice", "", testMasterSecret)
	require.Error(t, err)

	_, err = NewCredentials("alice", "secret", "")
	require.ErrorIs(t, err, ErrInvalidMasterSecret)
}

func TestVerifyAcceptsBcryptConfiguredSecret(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("open-water"), bcrypt.MinCost)
	require.NoError(t, err)

	creds, err := NewCredentials("alice", string(hash), testMasterSecret)
	require.NoError(t, err)

	require.NoError(t, creds.Verify("alice", "open-water"))
	require.ErrorIs(t, creds.Verify("alice", "wrong"), ErrInvalidCredentials)
}

func TestDeriveKeyIsPurposeBound(t *testing.T) {
	a, err := DeriveKey([]byte(testMasterSecret), "purpose-a")
	require.NoError(t, err)
	b, err := DeriveKey([]byte(testMasterSecret), "purpose-b")
	require.NoError(t, err)

	require.Len(t, a, derivedKeyLength)
	require.NotEqual(t, a, b)
}

func TestSessionLifecycle(t *testing.T) {
	manager := NewSessionManager(time.Hour)

	session, err := manager.Create("alice")
	require.NoError(t, err)
	require.NotEmpty(t, session.Token)

	username, err := manager.Validate(session.Token)
	require.NoError(t, err)
	require.Equal(t, "alice", username)

	manager.Invalidate(session.Token)

	_, err = manager.Validate(session.Token)
	require.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSessionTokensAreUnique(t *testing.T) {
	manager := NewSessionManager(time.Hour)

	seen := make(map[string]struct{})
	for i := 0; i < 100; i++ {
		session, err := manager.Create("alice")
		require.NoError(t, err)
		_, dup := seen[session.Token]
		require.False(t, dup)
		seen[session.Token] = struct{}{}
	}
}

func TestSessionExpiry(t *testing.T) {
	manager := NewSessionManager(time.Hour)
	current := time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)
	manager.now = func() time.Time { return current }

	session, err := manager.Create("alice")
	require.NoError(t, err)

	current = current.Add(2 * time.Hour)

	_, err = manager.Validate(session.Token)
	require.ErrorIs(t, err, ErrSessionExpired)

	// Expired entries are pruned, so a second attempt reports not found.
	_, err = manager.Validate(session.Token)
	require.ErrorIs(t, err, ErrSessionNotFound)
}

func TestValidateSlidesExpiryWindow(t *testing.T) {
	manager := NewSessionManager(time.Hour)
	current := time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)
	manager.now = func() time.Time { return current }

	session, err := manager.Create("alice")
	require.NoError(t, err)

	// Touch the session every 45 minutes; the sliding window keeps it
	// alive far past the original expiry.
	for i := 0; i < 4; i++ {
		current = current.Add(45 * time.Minute)
		_, err = manager.Validate(session.Token)
		require.NoError(t, err)
	}
}

func TestActiveCountsUnexpired(t *testing.T) {
	manager := NewSessionManager(time.Hour)
	current := time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)
	manager.now = func() time.Time { return current }

	_, err := manager.Create("alice")
	require.NoError(t, err)
	stale, err := manager.Create("alice")
	require.NoError(t, err)
	_ = stale

	require.Equal(t, 2, manager.Active())

	current = current.Add(2 * time.Hour)
	require.Equal(t, 0, manager.Active())
}

func TestServiceLoginAndValidate(t *testing.T) {
	service := NewService(testCredentials(t), NewSessionManager(time.Hour), zerolog.Nop())

	_, err := service.Login("alice", "wrong-secret")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	session, err := service.Login("alice", "open-water")
	require.NoError(t, err)

	username, err := service.Validate(session.Token)
	require.NoError(t, err)
	require.Equal(t, "alice", username)

	service.Logout(session.Token)
	_, err = service.Validate(session.Token)
	require.ErrorIs(t, err, ErrSessionNotFound)
}
