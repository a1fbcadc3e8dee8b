// Package access is the single authority for role membership. Every mutating
// entry point in the system asks it rather than keeping its own permission
// logic.
package access

import (
	dErrors "nameledger/pkg/domain-errors"
)

// Role names a global permission tier.
type Role string

const (
	// RoleGovernor can grant and revoke GOVERNOR and ADMIN membership and
	// perform system-level reconfiguration.
	RoleGovernor Role = "GOVERNOR"
	// RoleAdmin can manage component wiring, the root pricer, and REGISTRAR
	// membership.
	RoleAdmin Role = "ADMIN"
	// RoleRegistrar is held exclusively by registrar components; it gates the
	// registry's record-mutating primitives and certificate mint/burn.
	RoleRegistrar Role = "REGISTRAR"
)

// ParseRole validates a role name from external input.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleGovernor, RoleAdmin, RoleRegistrar:
		return Role(s), nil
	default:
		return "", dErrors.New(dErrors.CodeInvalidInput, "unknown role")
	}
}
