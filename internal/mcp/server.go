package mcp

import (
	"log/slog"

	"github.com/ganot/sitecycle/internal/identity"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// Config contains server configuration.
type Config struct {
	Services      Services
	Resolver      identity.Resolver
	AuthEnabled   bool
	TransportMode string // "stdio" or "http"
	// LocalUser acts for every call when auth is off in stdio mode.
	LocalUser identity.User
	Logger    *slog.Logger
}

// NewServer creates and configures an MCP server with all tools and middleware.
func NewServer(cfg Config) *sdkmcp.Server {
	server := sdkmcp.NewServer(&sdkmcp.Implementation{
		Name:    "sitecycle",
		Version: "0.1.0",
	}, &sdkmcp.ServerOptions{
		Instructions: serverInstructions,
		Logger:       cfg.Logger,
	})

	registerDocResources(server)

	// Stdio mode: always disable auth, acting as the local user
	switch {
	case cfg.TransportMode == "stdio":
		server.AddReceivingMiddleware(noAuthMiddleware(localUser(cfg.LocalUser)))
	case cfg.AuthEnabled:
		server.AddReceivingMiddleware(authMiddleware(cfg.Resolver))
	default:
		server.AddReceivingMiddleware(noAuthMiddleware(identity.AnonymousUser("anonymous")))
	}
	server.AddReceivingMiddleware(trafficLoggingMiddleware(cfg.Logger, "inbound"))
	server.AddSendingMiddleware(trafficLoggingMiddleware(cfg.Logger, "outbound"))

	registerTools(server, NewHandler(cfg.Services))

	return server
}

func localUser(u identity.User) identity.User {
	if u.ID == "" {
		u.ID = "local"
	}
	u.Anonymous = false
	return u
}
