package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/text/language"
)

// TokenStore selects where the session token is persisted.
type TokenStore string

const (
	TokenStoreSQLite TokenStore = "sqlite"
	TokenStoreRedis  TokenStore = "redis"
	TokenStoreMemory TokenStore = "memory"
)

// RoomsSource selects where the rooms list is loaded from.
type RoomsSource string

const (
	RoomsFromGateway RoomsSource = "gateway"
	RoomsFromFixture RoomsSource = "fixture"
)

// Config captures environment driven configuration values for the dashboard.
type Config struct {
	HTTPAddr       string
	APIBaseURL     string
	APITimeout     time.Duration
	SessionSecret  string
	TokenStore     TokenStore
	SQLiteDSN      string
	RedisAddr      string
	RedisPassword  string
	RedisDB        int
	FixturesDir    string
	RoomsSource    RoomsSource
	AllowedOrigins []string
	Locale         language.Tag
	PageSize       int
	// LoginRate is the number of login attempts allowed per minute.
	LoginRate int
	LogLevel  slog.Level
}

// Load reads an optional .env file from the working directory and then parses
// the process environment.
func Load() (Config, error) {
	return LoadFiles(".env")
}

// LoadFiles loads the given dotenv files, skipping ones that do not exist,
// and parses the environment. Variables already set win over file values.
func LoadFiles(paths ...string) (Config, error) {
	for _, path := range paths {
		if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", path, err)
		}
	}
	return parse()
}

// parse applies defaults for optional fields and validates the rest. Missing
// and invalid variables are reported together.
func parse() (Config, error) {
	cfg := Config{
		HTTPAddr:    "127.0.0.1:8080",
		APIBaseURL:  "https://simaru.amisbudi.cloud/api",
		APITimeout:  10 * time.Second,
		TokenStore:  TokenStoreSQLite,
		SQLiteDSN:   "file:dashboard.db",
		RoomsSource: RoomsFromGateway,
		Locale:      language.Indonesian,
		PageSize:    10,
		LoginRate:   5,
		LogLevel:    slog.LevelInfo,
	}

	missing := make([]string, 0, 1)
	invalid := make([]string, 0, 2)

	if addr := env("DASHBOARD_HTTP_ADDR"); addr != "" {
		cfg.HTTPAddr = addr
	}

	if raw := env("DASHBOARD_API_BASE_URL"); raw != "" {
		u, err := url.Parse(raw)
		if err != nil || u.Scheme == "" || u.Host == "" {
			invalid = append(invalid, "DASHBOARD_API_BASE_URL")
		} else {
			cfg.APIBaseURL = strings.TrimRight(raw, "/")
		}
	}

	if raw := env("DASHBOARD_API_TIMEOUT"); raw != "" {
		timeout, err := time.ParseDuration(raw)
		if err != nil || timeout <= 0 {
			invalid = append(invalid, "DASHBOARD_API_TIMEOUT")
		} else {
			cfg.APITimeout = timeout
		}
	}

	if secret := env("DASHBOARD_SESSION_SECRET"); secret == "" {
		missing = append(missing, "DASHBOARD_SESSION_SECRET")
	} else {
		cfg.SessionSecret = secret
	}

	if raw := env("DASHBOARD_TOKEN_STORE"); raw != "" {
		switch store := TokenStore(strings.ToLower(raw)); store {
		case TokenStoreSQLite, TokenStoreRedis, TokenStoreMemory:
			cfg.TokenStore = store
		default:
			invalid = append(invalid, "DASHBOARD_TOKEN_STORE")
		}
	}

	if dsn := env("DASHBOARD_SQLITE_DSN"); dsn != "" {
		cfg.SQLiteDSN = dsn
	}

	cfg.RedisAddr = env("DASHBOARD_REDIS_ADDR")
	cfg.RedisPassword = os.Getenv("DASHBOARD_REDIS_PASSWORD")
	if cfg.TokenStore == TokenStoreRedis && cfg.RedisAddr == "" {
		missing = append(missing, "DASHBOARD_REDIS_ADDR")
	}
	if raw := env("DASHBOARD_REDIS_DB"); raw != "" {
		db, err := strconv.Atoi(raw)
		if err != nil || db < 0 {
			invalid = append(invalid, "DASHBOARD_REDIS_DB")
		} else {
			cfg.RedisDB = db
		}
	}

	cfg.FixturesDir = env("DASHBOARD_FIXTURES_DIR")

	if raw := env("DASHBOARD_ROOMS_SOURCE"); raw != "" {
		switch source := RoomsSource(strings.ToLower(raw)); source {
		case RoomsFromGateway, RoomsFromFixture:
			cfg.RoomsSource = source
		default:
			invalid = append(invalid, "DASHBOARD_ROOMS_SOURCE")
		}
	}

	if raw := env("DASHBOARD_ALLOWED_ORIGINS"); raw != "" {
		for _, origin := range strings.Split(raw, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				cfg.AllowedOrigins = append(cfg.AllowedOrigins, origin)
			}
		}
	}

	if raw := env("DASHBOARD_LOCALE"); raw != "" {
		tag, err := language.Parse(raw)
		if err != nil {
			invalid = append(invalid, "DASHBOARD_LOCALE")
		} else {
			cfg.Locale = tag
		}
	}

	if raw := env("DASHBOARD_PAGE_SIZE"); raw != "" {
		size, err := strconv.Atoi(raw)
		if err != nil || size <= 0 {
			invalid = append(invalid, "DASHBOARD_PAGE_SIZE")
		} else {
			cfg.PageSize = size
		}
	}

	if raw := env("DASHBOARD_LOGIN_RATE"); raw != "" {
		rate, err := strconv.Atoi(raw)
		if err != nil || rate <= 0 {
			invalid = append(invalid, "DASHBOARD_LOGIN_RATE")
		} else {
			cfg.LoginRate = rate
		}
	}

	if raw := env("DASHBOARD_LOG_LEVEL"); raw != "" {
		if err := cfg.LogLevel.UnmarshalText([]byte(raw)); err != nil {
			invalid = append(invalid, "DASHBOARD_LOG_LEVEL")
		}
	}

	var errs []error
	if len(missing) > 0 {
		errs = append(errs, fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", ")))
	}
	if len(invalid) > 0 {
		errs = append(errs, fmt.Errorf("invalid environment values: %s", strings.Join(invalid, ", ")))
	}
	if len(errs) > 0 {
		return Config{}, errors.Join(errs...)
	}

	return cfg, nil
}

func env(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}
