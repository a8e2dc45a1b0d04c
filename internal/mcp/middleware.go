package mcp

import (
	"context"
	"errors"
	"strings"

	"github.com/ganot/sitecycle/internal/domain/failure"
	"github.com/ganot/sitecycle/internal/identity"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

var errMissingToken = errors.New("missing bearer token")

// authMiddleware implements bearer token authentication as MCP middleware.
func authMiddleware(resolver identity.Resolver) sdkmcp.Middleware {
	return func(next sdkmcp.MethodHandler) sdkmcp.MethodHandler {
		return func(ctx context.Context, method string, req sdkmcp.Request) (sdkmcp.Result, error) {
			// Skip auth for protocol methods
			if method == "initialize" || method == "ping" || strings.HasPrefix(method, "notifications/") {
				return next(ctx, method, req)
			}

			extra := req.GetExtra()
			if extra == nil || extra.Header == nil {
				return nil, failure.Auth("authenticate", errMissingToken)
			}

			auth := extra.Header.Get("Authorization")
			token := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
			if token == "" {
				return nil, failure.Auth("authenticate", errMissingToken)
			}

			user, err := resolver.Resolve(ctx, token)
			if err != nil {
				return nil, failure.Auth("authenticate", err)
			}

			return next(identity.WithUser(ctx, user), method, req)
		}
	}
}

// noAuthMiddleware injects a fixed user when auth is disabled.
func noAuthMiddleware(user identity.User) sdkmcp.Middleware {
	return func(next sdkmcp.MethodHandler) sdkmcp.MethodHandler {
		return func(ctx context.Context, method string, req sdkmcp.Request) (sdkmcp.Result, error) {
			return next(identity.WithUser(ctx, user), method, req)
		}
	}
}
