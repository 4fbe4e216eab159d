// Package access maps roles to the capabilities they grant. Both the API
// middleware and the command-line client check capabilities, never raw role
// strings.
package access

import "fmt"

// Role is a user's role as stored and sent on the wire.
type Role string

const (
	RoleAdmin    Role = "ROLE_ADMIN"
	RoleManager  Role = "ROLE_MANAGER"
	RoleEmployee Role = "ROLE_EMPLOYEE"
)

// Roles lists every role.
var Roles = []Role{RoleAdmin, RoleManager, RoleEmployee}

// ParseRole accepts the wire names only.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleEmployee:
		return true
	}
	return false
}

// Capability is one thing a role may do.
type Capability int

const (
	EditOwnTimesheets Capability = iota + 1
	ApproveTimesheets
	ViewUsers
	ManageUsers
	ManageClients
	ManageProjects
	ViewAllProjects
	ManageInvoices
)

var capabilityNames = map[Capability]string{
	EditOwnTimesheets: "edit_own_timesheets",
	ApproveTimesheets: "approve_timesheets",
	ViewUsers:         "view_users",
	ManageUsers:       "manage_users",
	ManageClients:     "manage_clients",
	ManageProjects:    "manage_projects",
	ViewAllProjects:   "view_all_projects",
	ManageInvoices:    "manage_invoices",
}

func (c Capability) String() string {
	if n, ok := capabilityNames[c]; ok {
		return n
	}
	return fmt.Sprintf("capability(%d)", int(c))
}

// Set is an immutable capability set.
type Set map[Capability]struct{}

func newSet(caps ...Capability) Set {
	s := make(Set, len(caps))
	for _, c := range caps {
		s[c] = struct{}{}
	}
	return s
}

// Has reports whether c is in the set.
func (s Set) Has(c Capability) bool {
	_, ok := s[c]
	return ok
}

var grants = map[Role]Set{
	RoleEmployee: newSet(EditOwnTimesheets),
	RoleManager:  newSet(EditOwnTimesheets, ApproveTimesheets, ViewUsers),
	RoleAdmin: newSet(
		EditOwnTimesheets, ApproveTimesheets, ViewUsers, ManageUsers,
		ManageClients, ManageProjects, ViewAllProjects, ManageInvoices,
	),
}

// Capabilities returns the set granted to r; unknown roles get nothing.
func Capabilities(r Role) Set {
	if s, ok := grants[r]; ok {
		return s
	}
	return Set{}
}

// Can reports whether r grants c.
func (r Role) Can(c Capability) bool { return Capabilities(r).Has(c) }
