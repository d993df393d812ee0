package utils

import (
	"context"

	"github.com/amankumarsingh77/video-containers/pkg/httperrors"
	"github.com/labstack/echo/v4"
)

type AccountCtxKey struct{}

// Principal is the authenticated caller carried in the request context.
type Principal struct {
	AccountID string
	Role      Role
}

func GetPrincipalFromCtx(ctx context.Context) (*Principal, error) {
	p, ok := ctx.Value(AccountCtxKey{}).(*Principal)
	if !ok {
		return nil, httperrors.NewUnauthorizedError("account not found in context")
	}
	return p, nil
}

func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, AccountCtxKey{}, p)
}

func GetRequestID(c echo.Context) string {
	return c.Response().Header().Get(echo.HeaderXRequestID)
}
