package mail

import (
	"strings"
	"sync"

	"github.com/shashiranjanraj/pantry/pkg/apperr"
)

// Factory builds a transport for a restaurant's sender configuration.
type Factory func(restaurantID string, cfg SMTPConfig) (Transport, error)

// SMTPFactory is the production Factory.
func SMTPFactory(_ string, cfg SMTPConfig) (Transport, error) {
	return NewSMTP(cfg), nil
}

// Registry caches one transport per restaurant for the life of the process.
// Cached entries are only replaced through Forget or Set.
type Registry struct {
	mu         sync.Mutex
	transports map[string]Transport
	factory    Factory
	// fallback, when set, is used for restaurants whose own settings are
	// incomplete.
	fallback func() (SMTPConfig, bool)
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithFallback lets restaurants with incomplete settings send through cfg
// when cfg itself is complete.
func WithFallback(cfg func() SMTPConfig) RegistryOption {
	return func(r *Registry) {
		r.fallback = func() (SMTPConfig, bool) {
			c := cfg()
			return c, len(c.Missing()) == 0
		}
	}
}

func NewRegistry(factory Factory, opts ...RegistryOption) *Registry {
	if factory == nil {
		factory = SMTPFactory
	}
	r := &Registry{transports: make(map[string]Transport), factory: factory}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Get returns the cached transport for restaurantID, building one from cfg on
// first use. Incomplete settings yield a configuration error naming the
// missing fields.
func (r *Registry) Get(restaurantID string, cfg SMTPConfig) (Transport, error) {
	const op = "mail.Registry.Get"

	r.mu.Lock()
	defer r.mu.Unlock()

	if t, ok := r.transports[restaurantID]; ok {
		return t, nil
	}

	if missing := cfg.Missing(); len(missing) > 0 {
		fb, ok := r.fallbackConfig()
		if !ok {
			return nil, &apperr.Error{
				Code:    apperr.EConfiguration,
				Op:      op,
				Msg:     "incomplete email configuration: missing " + strings.Join(missing, ", "),
				Details: map[string]any{"missing": missing},
			}
		}
		cfg = fb
	}

	t, err := r.factory(restaurantID, cfg)
	if err != nil {
		return nil, &apperr.Error{Code: apperr.EConfiguration, Op: op, Msg: "could not create mail transport", Err: err}
	}
	r.transports[restaurantID] = t
	return t, nil
}

func (r *Registry) fallbackConfig() (SMTPConfig, bool) {
	if r.fallback == nil {
		return SMTPConfig{}, false
	}
	return r.fallback()
}

// Set installs a transport for restaurantID.
func (r *Registry) Set(restaurantID string, t Transport) {
	r.mu.Lock()
	r.transports[restaurantID] = t
	r.mu.Unlock()
}

// Forget drops the cached transport so the next Get rebuilds it.
func (r *Registry) Forget(restaurantID string) {
	r.mu.Lock()
	delete(r.transports, restaurantID)
	r.mu.Unlock()
}
