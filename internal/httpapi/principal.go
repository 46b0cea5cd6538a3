package httpapi

import (
	"context"

	"github.com/ticketon/ticketon/internal/domain/user"
)

// Principal is the authenticated caller extracted from a bearer token.
type Principal struct {
	Login string
	Role  user.Role
}

type principalKey struct{}

func withPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFrom returns the caller, or false for anonymous requests.
func PrincipalFrom(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok
}
