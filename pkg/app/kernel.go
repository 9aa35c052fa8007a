package app

import (
	"context"
	"net/http"
	"time"

	"github.com/shashiranjanraj/pantry/app/controllers"
	"github.com/shashiranjanraj/pantry/app/routes"
	"github.com/shashiranjanraj/pantry/pkg/logger"
	"github.com/shashiranjanraj/pantry/pkg/metrics"
	"github.com/shashiranjanraj/pantry/pkg/middleware"
	"github.com/shashiranjanraj/pantry/pkg/reqid"
	"github.com/shashiranjanraj/pantry/pkg/response"
	"github.com/shashiranjanraj/pantry/pkg/router"
)

// Router builds the router with the global middleware stack and every route.
//
// Global middleware, outermost first:
//  1. metrics, so latency covers the whole chain
//  2. recovery
//  3. request id, before anything logs
//  4. request logger
//  5. CORS
//  6. rate limiter
func (a *Application) Router() *router.Router {
	r := router.New()

	r.Use(metrics.Middleware())
	r.Use(middleware.Recovery)
	r.Use(reqid.Middleware())
	r.Use(middleware.Logger)
	r.Use(middleware.CORS(middleware.DefaultCORSOptions()))
	r.Use(a.limiter.Middleware)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) { response.NotFound(w) })
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		response.Error(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	r.HandleFunc("/metrics", metrics.Handler())
	r.Get("/healthz", "health", a.health)

	routes.RegisterAPI(r, controllers.New(a.Services), a.policy)
	return r
}

// Handler returns the root http.Handler.
func (a *Application) Handler() http.Handler {
	return a.Router().Handler()
}

func (a *Application) health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := a.Store.Ping(ctx); err != nil {
		logger.WithCtx(r.Context()).Error("health check failed", "error", err)
		response.Error(w, http.StatusServiceUnavailable, "store unavailable")
		return
	}
	response.Success(w, map[string]string{"status": "ok"})
}
