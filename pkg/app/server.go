package app

import (
	"context"
	"net"

	"github.com/shashiranjanraj/pantry/config"
	"github.com/shashiranjanraj/pantry/internal/server"
)

// Serve listens on APP_PORT until ctx is cancelled, then drains in-flight
// requests.
func (a *Application) Serve(ctx context.Context) error {
	addr := net.JoinHostPort("", config.AppPort())
	return server.Run(ctx, addr, a.Handler(), config.Duration("SHUTDOWN_TIMEOUT", server.DefaultShutdownTimeout))
}
