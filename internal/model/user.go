package model

import (
    "strconv"
    "strings"
    "time"
)

// Role is the numeric user role stored in users.role.
type Role uint8

const (
    RoleCustomer   Role = 0
    RoleCollector  Role = 1
    RoleSuperAdmin Role = 2
    RoleAdmin      Role = 3
)

// Role names carried in the JWT "role" claim.
const (
    RoleNameCustomer   = "CUSTOMER"
    RoleNameCollector  = "COLLECTOR"
    RoleNameSuperAdmin = "SUPER_ADMIN"
    RoleNameAdmin      = "ADMIN"
)

var roleNames = map[Role]string{
    RoleCustomer:   RoleNameCustomer,
    RoleCollector:  RoleNameCollector,
    RoleSuperAdmin: RoleNameSuperAdmin,
    RoleAdmin:      RoleNameAdmin,
}

// Roles lists every known role in numeric order.
func Roles() []Role {
    return []Role{RoleCustomer, RoleCollector, RoleSuperAdmin, RoleAdmin}
}

// Name returns the claim name of the role, or "" for unknown values.
func (r Role) Name() string {
    return roleNames[r]
}

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
    _, ok := roleNames[r]
    return ok
}

// ParseRole accepts either the numeric form ("1") or the name ("collector").
func ParseRole(s string) (Role, bool) {
    s = strings.TrimSpace(s)
    if n, err := strconv.Atoi(s); err == nil {
        r := Role(n)
        return r, n >= 0 && n <= 255 && r.Valid()
    }
    up := strings.ToUpper(s)
    for r, name := range roleNames {
        if name == up {
            return r, true
        }
    }
    return 0, false
}

// User represents an application user as stored in the users table.
// Customers own waste profiles, collectors are assigned to them, and
// super admins manage calendars and users.
type User struct {
    ID            uint64    `json:"id"`
    FirstName     string    `json:"first_name"`
    LastName      string    `json:"last_name"`
    Email         string    `json:"email"`
    ContactNumber string    `json:"contact_number"`
    PasswordHash  string    `json:"-"`
    Role          Role      `json:"role"`
    IsActive      bool      `json:"is_active"`
    CreatedAt     time.Time `json:"created_at"`
    UpdatedAt     time.Time `json:"updated_at"`
}
