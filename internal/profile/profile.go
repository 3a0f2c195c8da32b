package profile

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/hrygo/eventdesk/store/cache"
)

// Profile is the configuration to start main server.
type Profile struct {
	// Mode can be "prod" or "dev" or "demo"
	Mode string
	// Addr is the binding address for server
	Addr string
	// Port is the binding port for server
	Port int
	// Data is the data directory
	Data string
	// DSN points to where eventdesk stores its own data
	DSN string
	// Driver is the database driver (sqlite or postgres)
	Driver string
	// Version is the current version of server
	Version string
	// Secret signs admin tokens. Outside prod it defaults to a fixed value.
	Secret string
	// InstanceURL is the public url of the site.
	InstanceURL string

	// Cache Configuration
	CacheDefaultTTL      time.Duration // EVENTDESK_CACHE_DEFAULT_TTL (default: 5m)
	CacheMaxSize         int           // EVENTDESK_CACHE_MAX_SIZE (default: 100)
	CacheCompression     bool          // EVENTDESK_CACHE_COMPRESSION (default: false)
	CacheCleanupInterval time.Duration // EVENTDESK_CACHE_CLEANUP_INTERVAL (default: 1m, 0 disables)
	CacheCoalesceLoads   bool          // EVENTDESK_CACHE_COALESCE_LOADS (default: false)

	// ContactRateLimit is the number of contact requests allowed per minute per client IP.
	ContactRateLimit int // EVENTDESK_CONTACT_RATE_LIMIT (default: 5)
}

func (p *Profile) IsDev() bool {
	return p.Mode != "prod"
}

// CacheConfig returns the cache settings carried by the profile.
func (p *Profile) CacheConfig() cache.Config {
	return cache.Config{
		DefaultTTL:        p.CacheDefaultTTL,
		MaxSize:           p.CacheMaxSize,
		EnableCompression: p.CacheCompression,
		CleanupInterval:   p.CacheCleanupInterval,
		CoalesceLoads:     p.CacheCoalesceLoads,
	}
}

// getEnvOrDefault returns the environment variable value or the default value.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// FromEnv loads cache and rate limit configuration from environment variables.
// Malformed values are logged and replaced by their defaults.
func (p *Profile) FromEnv() {
	getDuration := func(key string, defaultValue time.Duration) time.Duration {
		raw := os.Getenv(key)
		if raw == "" {
			return defaultValue
		}
		d, err := time.ParseDuration(raw)
		if err != nil {
			slog.Warn("invalid duration in environment", slog.String("key", key), slog.String("value", raw))
			return defaultValue
		}
		return d
	}

	getInt := func(key string, defaultValue int) int {
		raw := os.Getenv(key)
		if raw == "" {
			return defaultValue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			slog.Warn("invalid integer in environment", slog.String("key", key), slog.String("value", raw))
			return defaultValue
		}
		return n
	}

	getBool := func(key string) bool {
		return getEnvOrDefault(key, "false") == "true"
	}

	p.CacheDefaultTTL = getDuration("EVENTDESK_CACHE_DEFAULT_TTL", cache.DefaultTTL)
	p.CacheMaxSize = getInt("EVENTDESK_CACHE_MAX_SIZE", cache.DefaultMaxSize)
	p.CacheCompression = getBool("EVENTDESK_CACHE_COMPRESSION")
	p.CacheCleanupInterval = getDuration("EVENTDESK_CACHE_CLEANUP_INTERVAL", cache.DefaultCleanupInterval)
	p.CacheCoalesceLoads = getBool("EVENTDESK_CACHE_COALESCE_LOADS")
	p.ContactRateLimit = getInt("EVENTDESK_CONTACT_RATE_LIMIT", 5)
}

func checkDataDir(dataDir string) (string, error) {
	// Convert to absolute path if relative path is supplied.
	if !filepath.IsAbs(dataDir) {
		relativeDir := filepath.Join(filepath.Dir(os.Args[0]), dataDir)
		absDir, err := filepath.Abs(relativeDir)
		if err != nil {
			return "", err
		}
		dataDir = absDir
	}

	// Trim trailing \ or / in case user supplies
	dataDir = strings.TrimRight(dataDir, "\\/")
	if _, err := os.Stat(dataDir); err != nil {
		return "", errors.Wrapf(err, "unable to access data folder %s", dataDir)
	}
	return dataDir, nil
}

func (p *Profile) Validate() error {
	if p.Mode != "demo" && p.Mode != "dev" && p.Mode != "prod" {
		p.Mode = "demo"
	}

	if p.Mode == "prod" && p.Data == "" {
		if runtime.GOOS == "windows" {
			p.Data = filepath.Join(os.Getenv("ProgramData"), "eventdesk")
			if _, err := os.Stat(p.Data); os.IsNotExist(err) {
				if err := os.MkdirAll(p.Data, 0770); err != nil {
					slog.Error("failed to create data directory", slog.String("data", p.Data), slog.String("error", err.Error()))
					return err
				}
			}
		} else {
			p.Data = "/var/opt/eventdesk"
		}
	}

	dataDir, err := checkDataDir(p.Data)
	if err != nil {
		slog.Error("failed to check dsn", slog.String("data", dataDir), slog.String("error", err.Error()))
		return err
	}

	p.Data = dataDir
	if p.Driver == "sqlite" && p.DSN == "" {
		dbFile := fmt.Sprintf("eventdesk_%s.db", p.Mode)
		p.DSN = filepath.Join(dataDir, dbFile)
	}

	if p.Secret == "" {
		if p.Mode == "prod" {
			return errors.New("secret is required in prod mode")
		}
		p.Secret = "eventdesk-" + p.Mode
	}

	if err := p.CacheConfig().Validate(); err != nil {
		return errors.Wrap(err, "invalid cache configuration")
	}
	return nil
}
