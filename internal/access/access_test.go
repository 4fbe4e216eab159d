package access

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	for _, r := range Roles {
		got, err := ParseRole(string(r))
		require.NoError(t, err)
		assert.Equal(t, r, got)
	}

	_, err := ParseRole("admin")
	assert.Error(t, err)
}

func TestCapabilities(t *testing.T) {
	cases := []struct {
		role Role
		cap  Capability
		want bool
	}{
		{RoleEmployee, EditOwnTimesheets, true},
		{RoleEmployee, ApproveTimesheets, false},
		{RoleEmployee, ViewUsers, false},
		{RoleManager, ApproveTimesheets, true},
		{RoleManager, ViewUsers, true},
		{RoleManager, ManageInvoices, false},
		{RoleManager, ViewAllProjects, false},
		{RoleAdmin, ManageInvoices, true},
		{RoleAdmin, ViewAllProjects, true},
		{RoleAdmin, ManageUsers, true},
		{Role("ROLE_GUEST"), EditOwnTimesheets, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, tc.role.Can(tc.cap), "%s %s", tc.role, tc.cap)
	}
}

func TestCapabilityString(t *testing.T) {
	assert.Equal(t, "manage_invoices", ManageInvoices.String())
	assert.Equal(t, "capability(99)", Capability(99).String())
}
