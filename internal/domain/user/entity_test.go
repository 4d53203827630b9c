//go:build unit

package user_test

import (
	"testing"

	"condo-booking/internal/domain/user"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRole(t *testing.T) {
	for _, s := range []string{"morador", "funcionario", "sindico"} {
		r, err := user.NewRole(s)
		require.NoError(t, err)
		assert.Equal(t, s, r.String())
	}

	_, err := user.NewRole("viewer")
	assert.ErrorIs(t, err, user.ErrInvalidRole)

	assert.True(t, user.RoleAdmin.AtLeast(user.RoleStaff))
	assert.True(t, user.RoleStaff.AtLeast(user.RoleStaff))
	assert.False(t, user.RoleResident.AtLeast(user.RoleStaff))
	assert.False(t, user.Role("ghost").AtLeast(user.RoleResident))
}

func TestActor(t *testing.T) {
	owner := uuid.New()

	resident := user.NewActor(owner, user.RoleResident, nil)
	assert.False(t, resident.IsStaff())
	assert.True(t, resident.CanAccess(owner))
	assert.False(t, resident.CanAccess(uuid.New()))

	staff := user.NewActor(uuid.New(), user.RoleStaff, nil)
	assert.True(t, staff.IsStaff())
	assert.True(t, staff.CanAccess(owner))
	assert.Equal(t, staff.ID, *staff.IDPtr())
}
