package models

import (
	"fmt"
	"strings"
)

type Role string

const (
	RoleAdmin  Role = "ADMIN"
	RoleSeller Role = "SELLER"
	RoleBuyer  Role = "BUYER"
)

// Higher rank includes permissions of the lower ones
var roleRank = map[Role]int{
	RoleBuyer:  1,
	RoleSeller: 2,
	RoleAdmin:  3,
}

func ParseRole(value string) (Role, error) {
	r := Role(strings.ToUpper(strings.TrimSpace(value)))
	if _, ok := roleRank[r]; !ok {
		return "", fmt.Errorf("unknown role %q", value)
	}
	return r, nil
}

func (r Role) IsAdmin() bool {
	return r == RoleAdmin
}

// AtLeast reports whether r grants everything required grants
// Unknown roles never pass
func (r Role) AtLeast(required Role) bool {
	have, ok := roleRank[r]
	if !ok {
		return false
	}
	return have >= roleRank[required]
}

func (r Role) String() string {
	return string(r)
}

// Identity of the authenticated caller, taken from verified token claims
type Identity struct {
	SubjectID int64
	Role      Role
}
