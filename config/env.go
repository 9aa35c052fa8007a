package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultStoreDriver   = "mongo"
	defaultMongoURI      = "mongodb://localhost:27017"
	defaultMongoDatabase = "pantry"
	defaultRedisAddr     = "localhost:6379"
	defaultJWTSecret     = "change-me-in-production"
	defaultTokenTTL      = "24h"
	defaultAppPort       = "8080"
	defaultAppEnv        = "local"
)

var (
	loadOnce sync.Once
	loadErr  error
	// loaded is set once any source set has been applied, so a later Load
	// does not replace it with the default paths.
	loaded atomic.Bool

	mu     sync.RWMutex
	values = defaultValues()
)

// Load merges config/app.json, .env and the process environment on top of
// the built-in defaults. Later sources win.
func Load() error {
	loadOnce.Do(func() {
		if loaded.Load() {
			return
		}
		loadErr = loadFromFiles("config/app.json", ".env")
	})
	return loadErr
}

func defaultValues() map[string]string {
	return map[string]string{
		"APP_ENV":           defaultAppEnv,
		"APP_PORT":          defaultAppPort,
		"STORE_DRIVER":      defaultStoreDriver,
		"MONGO_URI":         defaultMongoURI,
		"MONGO_DATABASE":    defaultMongoDatabase,
		"REDIS_ADDR":        defaultRedisAddr,
		"REDIS_PASSWORD":    "",
		"JWT_SECRET":        defaultJWTSecret,
		"TOKEN_TTL":         defaultTokenTTL,
		"TENANT_OVERRIDE":   "elevated",
		"MAIL_DEFAULT_HOST": "smtp.gmail.com",
		"MAIL_DEFAULT_PORT": "587",
		"SEED_PASSWORD":     "changeme",
	}
}

func AppEnv() string {
	_ = Load()
	return get("APP_ENV", defaultAppEnv)
}

// IsProduction reports whether APP_ENV names a production deployment.
func IsProduction() bool {
	switch strings.ToLower(AppEnv()) {
	case "production", "prod":
		return true
	}
	return false
}

func AppPort() string {
	_ = Load()
	return get("APP_PORT", defaultAppPort)
}

// StoreDriver names the document store backend ("mongo" or "memory").
func StoreDriver() string {
	_ = Load()
	return strings.ToLower(get("STORE_DRIVER", defaultStoreDriver))
}

func MongoURI() string      { _ = Load(); return get("MONGO_URI", defaultMongoURI) }
func MongoDatabase() string { _ = Load(); return get("MONGO_DATABASE", defaultMongoDatabase) }

func RedisAddr() string {
	_ = Load()
	return get("REDIS_ADDR", defaultRedisAddr)
}

func RedisPassword() string {
	_ = Load()
	return get("REDIS_PASSWORD", "")
}

func JWTSecret() string {
	_ = Load()
	return get("JWT_SECRET", defaultJWTSecret)
}

// TokenTTL is the lifetime of issued access tokens.
func TokenTTL() time.Duration {
	return Duration("TOKEN_TTL", 24*time.Hour)
}

// TenantOverride returns the restaurant override policy: "elevated" (only
// superadmins may switch restaurants) or "any" (override honoured for every
// authenticated role).
func TenantOverride() string {
	_ = Load()
	if strings.EqualFold(get("TENANT_OVERRIDE", "elevated"), "any") {
		return "any"
	}
	return "elevated"
}

// ── Mail ─────────────────────────────────────────────────────────────────────

func MailHost() string        { _ = Load(); return get("MAIL_HOST", "") }
func MailPort() string        { _ = Load(); return get("MAIL_PORT", "587") }
func MailUsername() string    { _ = Load(); return get("MAIL_USERNAME", "") }
func MailPassword() string    { _ = Load(); return get("MAIL_PASSWORD", "") }
func MailFrom() string        { _ = Load(); return get("MAIL_FROM", "") }
func MailFromName() string    { _ = Load(); return get("MAIL_FROM_NAME", "Pantry") }
func MailTLS() bool           { return Bool("MAIL_TLS", false) }
func MailDefaultHost() string { _ = Load(); return get("MAIL_DEFAULT_HOST", "smtp.gmail.com") }
func MailDefaultPort() string { _ = Load(); return get("MAIL_DEFAULT_PORT", "587") }

// ── Seeding ──────────────────────────────────────────────────────────────────

func SeedPassword() string       { _ = Load(); return get("SEED_PASSWORD", "changeme") }
func SuperadminEmail() string    { _ = Load(); return get("SUPERADMIN_EMAIL", "") }
func SuperadminPassword() string { _ = Load(); return get("SUPERADMIN_PASSWORD", "") }

func loadFromFiles(configPath, envPath string) error {
	merged := defaultValues()

	if err := mergeJSONConfig(configPath, merged); err != nil {
		if !os.IsNotExist(err) {
			return err
		}
	}

	env, err := godotenv.Read(envPath)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("read %s: %w", envPath, err)
	}
	for k, v := range env {
		merged[strings.ToUpper(strings.TrimSpace(k))] = strings.TrimSpace(v)
	}

	for k := range merged {
		if v, ok := os.LookupEnv(k); ok {
			merged[k] = strings.TrimSpace(v)
		}
	}
	for _, k := range optionalKeys {
		if v, ok := os.LookupEnv(k); ok {
			merged[k] = strings.TrimSpace(v)
		}
	}

	mu.Lock()
	values = merged
	mu.Unlock()
	loaded.Store(true)

	return nil
}

// optionalKeys have no default but are still read from the environment.
var optionalKeys = []string{
	"MAIL_HOST", "MAIL_PORT", "MAIL_USERNAME", "MAIL_PASSWORD", "MAIL_FROM",
	"MAIL_FROM_NAME", "MAIL_TLS", "SUPERADMIN_EMAIL", "SUPERADMIN_PASSWORD",
	"LOG_MONGO", "MAX_BODY_BYTES", "STATS_CACHE_TTL", "RATE_LIMIT",
	"SHUTDOWN_TIMEOUT",
}

func mergeJSONConfig(path string, out map[string]string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	var raw map[string]interface{}
	if err := json.NewDecoder(file).Decode(&raw); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}

	for key, val := range raw {
		k := strings.ToUpper(strings.TrimSpace(key))
		if k == "" {
			continue
		}
		switch v := val.(type) {
		case string:
			out[k] = strings.TrimSpace(v)
		case bool:
			out[k] = strconv.FormatBool(v)
		case float64:
			out[k] = strconv.FormatFloat(v, 'f', -1, 64)
		}
	}

	return nil
}

func get(key, fallback string) string {
	mu.RLock()
	defer mu.RUnlock()

	if value := strings.TrimSpace(values[key]); value != "" {
		return value
	}

	return fallback
}

// Get reads any config key by name with an optional fallback.
func Get(key, fallback string) string {
	_ = Load()
	return get(key, fallback)
}

// Bool reads a boolean key; unparseable values yield fallback.
func Bool(key string, fallback bool) bool {
	b, err := strconv.ParseBool(Get(key, ""))
	if err != nil {
		return fallback
	}
	return b
}

// Duration reads a Go duration string ("90s", "24h").
func Duration(key string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(Get(key, ""))
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

// Set overrides a key for the rest of the process. Intended for tests and
// CLI flags.
func Set(key, value string) {
	_ = Load()
	mu.Lock()
	values[strings.ToUpper(key)] = value
	mu.Unlock()
}
