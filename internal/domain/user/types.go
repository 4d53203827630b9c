package user

import "errors"

var ErrInvalidRole = errors.New("invalid role")

type Role string

const (
	RoleResident Role = "morador"
	RoleStaff    Role = "funcionario"
	RoleAdmin    Role = "sindico"
)

var roleLevel = map[Role]int{
	RoleResident: 1,
	RoleStaff:    2,
	RoleAdmin:    3,
}

func (r Role) String() string {
	return string(r)
}

func (r Role) IsValid() bool {
	_, ok := roleLevel[r]
	return ok
}

// AtLeast reports whether r ranks at or above min.
func (r Role) AtLeast(min Role) bool {
	have, ok := roleLevel[r]
	want, okMin := roleLevel[min]
	return ok && okMin && have >= want
}

func NewRole(s string) (Role, error) {
	role := Role(s)
	if !role.IsValid() {
		return "", ErrInvalidRole
	}
	return role, nil
}
