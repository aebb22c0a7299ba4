package token

import (
	"testing"
	"time"

	autherrors "dayflow-hrms/internal/auth/errors"

	"github.com/stretchr/testify/assert"
)

func TestManager_PairAndParse(t *testing.T) {
	m := NewManager("0123456789abcdef0123", 15*time.Minute, time.Hour)

	access, refresh, err := m.Pair("user-1", "HR")
	assert.NoError(t, err)

	t.Run("access token", func(t *testing.T) {
		claims, err := m.Parse(access, TypeAccess)
		assert.NoError(t, err)
		assert.Equal(t, "user-1", claims.UserID)
		assert.Equal(t, "HR", claims.Role)
	})

	t.Run("refresh used as access is rejected", func(t *testing.T) {
		_, err := m.Parse(refresh, TypeAccess)
		assert.ErrorIs(t, err, autherrors.ErrInvalidToken)
	})

	t.Run("wrong secret", func(t *testing.T) {
		other := NewManager("another-secret-value-xx", time.Minute, time.Hour)
		_, err := other.Parse(access, TypeAccess)
		assert.ErrorIs(t, err, autherrors.ErrInvalidToken)
	})

	t.Run("expired", func(t *testing.T) {
		past := NewManager("0123456789abcdef0123", time.Minute, time.Hour)
		past.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
		old, _, err := past.Pair("user-1", "HR")
		assert.NoError(t, err)

		_, err = m.Parse(old, TypeAccess)
		assert.ErrorIs(t, err, autherrors.ErrTokenExpired)
	})
}
