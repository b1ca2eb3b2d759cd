package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoleValid(t *testing.T) {
	assert.True(t, RoleUser.Valid())
	assert.True(t, RolePublisher.Valid())
	assert.True(t, RoleAdmin.Valid())
	assert.False(t, Role("superuser").Valid())
	assert.False(t, Role("").Valid())
}

func TestRolePredicates(t *testing.T) {
	tests := []struct {
		role          Role
		manageCatalog bool
		manageUsers   bool
	}{
		{RoleUser, false, false},
		{RolePublisher, true, true},
		{RoleAdmin, true, true},
		{Role("unknown"), false, false},
	}

	for _, tc := range tests {
		t.Run(string(tc.role), func(t *testing.T) {
			assert.Equal(t, tc.manageCatalog, tc.role.CanManageCatalog())
			assert.Equal(t, tc.manageUsers, tc.role.CanManageUsers())
		})
	}
}
