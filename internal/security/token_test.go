package security

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"equiprent-backend/internal/domain"
)

func TestTokenManager_ResolveActor(t *testing.T) {
	m := NewTokenManager("test-secret-test-secret-test-secret!")

	t.Run("Round Trip", func(t *testing.T) {
		token, err := m.GenerateToken(42, "seller@example.com", domain.RoleSeller, time.Hour)
		assert.NoError(t, err)

		actor, err := m.ResolveActor(token)
		assert.NoError(t, err)
		assert.Equal(t, int32(42), actor.UserID)
		assert.Equal(t, domain.RoleSeller, actor.Role)
	})

	t.Run("Expired Token", func(t *testing.T) {
		token, err := m.GenerateToken(42, "", domain.RoleCustomer, -time.Minute)
		assert.NoError(t, err)

		_, err = m.ResolveActor(token)
		assert.ErrorIs(t, err, ErrExpiredToken)
	})

	t.Run("Wrong Secret", func(t *testing.T) {
		other := NewTokenManager("other-secret-other-secret-other-secret")
		token, err := other.GenerateToken(42, "", domain.RoleCustomer, time.Hour)
		assert.NoError(t, err)

		_, err = m.ResolveActor(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("Garbage Token", func(t *testing.T) {
		_, err := m.ResolveActor("not-a-jwt")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("System Role Not Accepted From Tokens", func(t *testing.T) {
		token, err := m.GenerateToken(1, "", domain.RoleSystem, time.Hour)
		assert.NoError(t, err)

		_, err = m.ResolveActor(token)
		assert.ErrorIs(t, err, ErrUnknownRole)
	})
}
