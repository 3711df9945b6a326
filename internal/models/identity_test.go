package models

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRole(t *testing.T) {
	t.Run("parse", func(t *testing.T) {
		r, err := ParseRole("seller")
		require.NoError(t, err)
		require.Equal(t, RoleSeller, r)

		_, err = ParseRole("ROOT")
		require.Error(t, err, "unknown role must fail")

		_, err = ParseRole("")
		require.Error(t, err, "empty role must fail")
	})

	t.Run("at least", func(t *testing.T) {
		tests := []struct {
			role     Role
			required Role
			allowed  bool
		}{
			{RoleAdmin, RoleAdmin, true},
			{RoleSeller, RoleAdmin, false},
			{RoleBuyer, RoleAdmin, false},
			{RoleAdmin, RoleSeller, true},
			{RoleSeller, RoleSeller, true},
			{RoleBuyer, RoleSeller, false},
			{RoleBuyer, RoleBuyer, true},
			{Role("ROOT"), RoleBuyer, false},
		}

		for _, tt := range tests {
			t.Run(string(tt.role)+" for "+string(tt.required), func(t *testing.T) {
				require.Equal(t, tt.allowed, tt.role.AtLeast(tt.required))
			})
		}
	})
}
