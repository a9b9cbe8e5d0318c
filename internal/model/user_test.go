package model

import "testing"

func TestParseRole(t *testing.T) {
    tests := []struct {
        in   string
        want Role
        ok   bool
    }{
        {"0", RoleCustomer, true},
        {"1", RoleCollector, true},
        {"collector", RoleCollector, true},
        {" SUPER_ADMIN ", RoleSuperAdmin, true},
        {"3", RoleAdmin, true},
        {"7", 0, false},
        {"-1", 0, false},
        {"owner", 0, false},
        {"", 0, false},
    }
    for _, tt := range tests {
        got, ok := ParseRole(tt.in)
        if ok != tt.ok || (ok && got != tt.want) {
            t.Errorf("ParseRole(%q) = %v, %v; want %v, %v", tt.in, got, ok, tt.want, tt.ok)
        }
    }
}

func TestRoleName(t *testing.T) {
    if RoleCollector.Name() != "COLLECTOR" {
        t.Errorf("unexpected name %q", RoleCollector.Name())
    }
    if Role(9).Name() != "" || Role(9).Valid() {
        t.Error("unknown role should have no name")
    }
}
