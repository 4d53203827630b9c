//go:build unit

package jwt_test

import (
	"testing"
	"time"

	"condo-booking/internal/domain/user"
	"condo-booking/internal/pkg/jwt"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestService(t *testing.T) {
	svc := jwt.NewService("secret", time.Hour)
	userID, unitID := uuid.New(), uuid.New()

	t.Run("round trip keeps role and unit", func(t *testing.T) {
		token, err := svc.GenerateToken(userID, user.RoleResident, &unitID)
		require.NoError(t, err)

		claims, err := svc.ValidateToken(token)
		require.NoError(t, err)
		assert.Equal(t, userID, claims.UserID)
		assert.Equal(t, "morador", claims.Role)
		require.NotNil(t, claims.UnitID)
		assert.Equal(t, unitID, *claims.UnitID)
	})

	t.Run("wrong secret", func(t *testing.T) {
		token, err := jwt.NewService("other", time.Hour).GenerateToken(userID, user.RoleStaff, nil)
		require.NoError(t, err)

		_, err = svc.ValidateToken(token)
		assert.ErrorIs(t, err, jwt.ErrInvalidToken)
	})

	t.Run("expired", func(t *testing.T) {
		token, err := jwt.NewService("secret", -time.Minute).GenerateToken(userID, user.RoleStaff, nil)
		require.NoError(t, err)

		_, err = svc.ValidateToken(token)
		assert.ErrorIs(t, err, jwt.ErrExpiredToken)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := svc.ValidateToken("not-a-token")
		assert.ErrorIs(t, err, jwt.ErrInvalidToken)
	})
}
