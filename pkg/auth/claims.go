package auth

import (
	"slices"

	"github.com/golang-jwt/jwt/v5"
)

// Claims carries the caller identity and the roles it may act under.
type Claims struct {
	jwt.RegisteredClaims
	Roles []string `json:"roles"`
}

// Actor returns the subject the token was issued to.
func (c Claims) Actor() string {
	return c.Subject
}

// HasAnyRole reports whether the claims include at least one of roles.
func (c Claims) HasAnyRole(roles ...string) bool {
	for _, r := range roles {
		if slices.Contains(c.Roles, r) {
			return true
		}
	}
	return false
}

// Roles recognised by the underwriting service.
const (
	RoleAdmin       = "admin"
	RoleLoanOfficer = "loan_officer"
	RoleUnderwriter = "underwriter"
	RoleServicing   = "servicing"
	RoleAuditor     = "auditor"
)
