// Package app is the composition root. It opens the document store, wires
// repositories, mail transports and services, and builds the HTTP handler.
//
//	a, err := app.New(ctx)
//	if err != nil {
//	    return err
//	}
//	defer a.Close(context.Background())
//	return a.Serve(ctx)
//
// Tests swap infrastructure through options:
//
//	a, _ := app.New(ctx, app.WithStore(docstore.NewMemory()), app.WithCache(nil))
package app

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/shashiranjanraj/pantry/app/controllers"
	"github.com/shashiranjanraj/pantry/app/repositories"
	"github.com/shashiranjanraj/pantry/app/services"
	"github.com/shashiranjanraj/pantry/config"
	"github.com/shashiranjanraj/pantry/pkg/cache"
	"github.com/shashiranjanraj/pantry/pkg/database"
	"github.com/shashiranjanraj/pantry/pkg/docstore"
	"github.com/shashiranjanraj/pantry/pkg/logger"
	"github.com/shashiranjanraj/pantry/pkg/mail"
	"github.com/shashiranjanraj/pantry/pkg/middleware"
	"github.com/shashiranjanraj/pantry/pkg/notification"
	"github.com/shashiranjanraj/pantry/pkg/tenant"
)

// Application holds every long-lived dependency of the process.
type Application struct {
	Store    docstore.Store
	Cache    *cache.Cache
	Repos    *repositories.Repositories
	Mail     *mail.Registry
	Notifier *notification.Notifier
	Services controllers.Services

	policy      tenant.Policy
	mailFactory mail.Factory
	limiter     *middleware.RateLimiter
	logSink     *logger.MongoHandler

	cacheSet  bool
	ownsStore bool
	ownsCache bool
}

// Option customises New.
type Option func(*Application)

// WithStore uses s instead of opening the store named by STORE_DRIVER.
// The caller keeps ownership of s.
func WithStore(s docstore.Store) Option {
	return func(a *Application) { a.Store = s }
}

// WithCache uses c instead of dialling Redis. A nil cache disables caching.
func WithCache(c *cache.Cache) Option {
	return func(a *Application) { a.Cache, a.cacheSet = c, true }
}

// WithMailFactory replaces the SMTP transport factory.
func WithMailFactory(f mail.Factory) Option {
	return func(a *Application) { a.mailFactory = f }
}

// WithPolicy overrides the TENANT_OVERRIDE setting.
func WithPolicy(p tenant.Policy) Option {
	return func(a *Application) { a.policy = p }
}

// New wires the application. Indexes are ensured on every boot; a Redis
// outage only disables caching.
func New(ctx context.Context, opts ...Option) (*Application, error) {
	if err := config.Load(); err != nil {
		return nil, err
	}

	a := &Application{
		policy:      tenant.ParsePolicy(config.TenantOverride()),
		mailFactory: mail.SMTPFactory,
	}
	for _, opt := range opts {
		opt(a)
	}

	if a.Store == nil {
		s, err := database.Open(ctx)
		if err != nil {
			return nil, err
		}
		a.Store, a.ownsStore = s, true
	}
	if err := repositories.EnsureIndexes(ctx, a.Store); err != nil {
		a.Close(ctx)
		return nil, err
	}

	if !a.cacheSet {
		c, err := cache.Connect(ctx)
		if err != nil {
			logger.Warn("cache disabled", "error", err)
		}
		a.Cache, a.ownsCache = c, true
	}

	var mailOpts []mail.RegistryOption
	if !config.IsProduction() {
		mailOpts = append(mailOpts, mail.WithFallback(mail.ProcessConfig))
	}
	a.Mail = mail.NewRegistry(a.mailFactory, mailOpts...)
	a.Notifier = notification.New(a.Mail)

	a.Repos = repositories.New(a.Store)
	a.Services = controllers.Services{
		Auth:        services.NewAuthService(a.Repos),
		Items:       services.NewItemService(a.Repos),
		Suppliers:   services.NewSupplierService(a.Repos),
		Categories:  services.NewCategoryService(a.Repos),
		Units:       services.NewUnitService(a.Repos),
		Orders:      services.NewOrderService(a.Repos, a.Notifier),
		Users:       services.NewUserService(a.Repos),
		Restaurants: services.NewRestaurantService(a.Repos, a.Notifier),
		Stats:       services.NewStatsService(a.Repos, a.Cache),
	}

	a.limiter = middleware.NewRateLimiter(rateLimit(), time.Minute)
	a.mirrorLogs()
	return a, nil
}

// mirrorLogs tees the global logger into the logs collection when LOG_MONGO
// is set and the store is Mongo.
func (a *Application) mirrorLogs() {
	if !config.Bool("LOG_MONGO", false) {
		return
	}
	m, ok := a.Store.(*docstore.Mongo)
	if !ok {
		logger.Warn("LOG_MONGO ignored: store is not mongo", "driver", config.StoreDriver())
		return
	}
	a.logSink = logger.NewMongoHandler(m.Database().Collection("logs"), slog.LevelInfo)
	logger.Tee(a.logSink)
}

func rateLimit() int {
	n, err := strconv.Atoi(config.Get("RATE_LIMIT", "200"))
	if err != nil || n <= 0 {
		return 200
	}
	return n
}

// Close releases what New opened. Injected stores and caches are left to
// their owners.
func (a *Application) Close(ctx context.Context) {
	if a.limiter != nil {
		a.limiter.Stop()
	}
	if a.logSink != nil {
		a.logSink.Close()
	}
	if a.ownsCache {
		_ = a.Cache.Close()
	}
	if a.ownsStore && a.Store != nil {
		if err := a.Store.Close(ctx); err != nil {
			logger.Warn("store close failed", "error", err)
		}
	}
}
