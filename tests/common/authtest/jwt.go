//go:build unit || e2e

package authtest

import (
	"testing"
	"time"

	"condo-booking/internal/domain/user"
	"condo-booking/internal/pkg/config"
	"condo-booking/internal/pkg/jwt"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type JWTHelper struct {
	cfg config.JWTConfig
}

func NewJWTHelper(cfg config.JWTConfig) *JWTHelper {
	return &JWTHelper{cfg: cfg}
}

func (h *JWTHelper) GenerateToken(t *testing.T, actor user.Actor) string {
	t.Helper()
	service := jwt.NewService(h.cfg.Secret, h.cfg.Duration)
	token, err := service.GenerateToken(actor.ID, actor.Role, actor.UnitID)
	require.NoError(t, err)
	return token
}

func (h *JWTHelper) CreateExpiredToken(t *testing.T, actor user.Actor) string {
	t.Helper()
	service := jwt.NewService(h.cfg.Secret, time.Millisecond)
	token, err := service.GenerateToken(actor.ID, actor.Role, actor.UnitID)
	require.NoError(t, err)
	time.Sleep(10 * time.Millisecond)
	return token
}

// Resident returns a fresh resident actor bound to unitID.
func Resident(unitID uuid.UUID) user.Actor {
	return user.NewActor(uuid.New(), user.RoleResident, &unitID)
}

func Staff() user.Actor {
	return user.NewActor(uuid.New(), user.RoleStaff, nil)
}
