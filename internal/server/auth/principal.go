package auth

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/hireledger/internal/common"
)

type Role string

const (
	RoleOwner     Role = "owner"
	RoleOracle    Role = "oracle"
	RoleApplicant Role = "applicant"
)

func (r Role) Valid() bool {
	switch r {
	case RoleOwner, RoleOracle, RoleApplicant:
		return true
	}
	return false
}

// Principal is the authenticated caller of an operation.
type Principal struct {
	Subject string
	Role    Role
}

// Anonymous is the principal of a request without an access token.
var Anonymous = Principal{}

func (p Principal) IsAnonymous() bool {
	return p.Subject == ""
}

// Require fails with ErrUnauthorized unless p holds one of roles.
func (p Principal) Require(roles ...Role) error {
	if p.IsAnonymous() {
		return fmt.Errorf("%w: authentication required", common.ErrUnauthorized)
	}
	for _, r := range roles {
		if p.Role == r {
			return nil
		}
	}
	return fmt.Errorf("%w: role %q not permitted", common.ErrUnauthorized, p.Role)
}

type principalKey struct{}

func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFrom returns the principal stored in ctx, or Anonymous.
func PrincipalFrom(ctx context.Context) Principal {
	if p, ok := ctx.Value(principalKey{}).(Principal); ok {
		return p
	}
	return Anonymous
}
