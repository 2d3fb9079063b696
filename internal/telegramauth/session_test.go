package telegramauth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionManager_IssueAndVerify(t *testing.T) {
	manager := NewSessionManager("test-signing-secret", time.Hour)
	user := &User{ID: 99281932, FirstName: "Andrew", Username: "rogue"}

	token, err := manager.Issue(user)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := manager.Verify(token)
	require.NoError(t, err)

	assert.Equal(t, "99281932", claims.Subject)
	assert.Equal(t, int64(99281932), claims.TelegramID)
	assert.Equal(t, "rogue", claims.Username)
	assert.Equal(t, "Andrew", claims.FirstName)
	assert.NotEmpty(t, claims.ID, "each token gets a fresh JTI")
	require.NotNil(t, claims.ExpiresAt)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt.Time, time.Minute)
}

func TestSessionManager_Verify(t *testing.T) {
	manager := NewSessionManager("test-signing-secret", time.Hour)
	user := &User{ID: 1, FirstName: "A"}

	t.Run("WrongSecret", func(t *testing.T) {
		token, err := manager.Issue(user)
		require.NoError(t, err)

		other := NewSessionManager("different-secret", time.Hour)
		_, err = other.Verify(token)

		assert.ErrorIs(t, err, ErrInvalidSession)
	})

	t.Run("ExpiredToken", func(t *testing.T) {
		shortLived := NewSessionManager("test-signing-secret", -time.Minute)
		token, err := shortLived.Issue(user)
		require.NoError(t, err)

		_, err = manager.Verify(token)

		assert.ErrorIs(t, err, ErrInvalidSession)
	})

	t.Run("Garbage", func(t *testing.T) {
		_, err := manager.Verify("not.a.token")
		assert.ErrorIs(t, err, ErrInvalidSession)
	})
}
