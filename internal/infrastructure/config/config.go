package config

import (
	"context"
	"errors"
	"fmt"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	Auth  AuthConfig
	Mongo MongoConfig
	Redis RedisConfig
}

type AuthConfig struct {
	// JWTSecret is the HS256 key used to verify inbound bearer tokens.
	JWTSecret string `env:"JWT_SECRET"`
	// InsecureSkipVerify accepts bearer tokens without signature or lifetime
	// validation. Intended only for local development against externally
	// issued tokens; Validate refuses it when Env is production.
	InsecureSkipVerify bool `env:"AUTH_INSECURE_SKIP_VERIFY, default=false"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=user_api"`
}

type RedisConfig struct {
	// Addr enables the user-record cache when non-empty.
	Addr string `env:"REDIS_ADDR"`
	DB   int    `env:"REDIS_DB, default=0"`
}

// Load reads configuration from environment variables using go-envconfig and
// rejects inconsistent auth profiles before the server starts.
func Load(ctx context.Context) (*Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate enforces the auth profile rules. The verification bypass must not
// be reachable in production, and the verified profile needs a signing key.
func (c *Config) Validate() error {
	if c.Auth.InsecureSkipVerify && c.IsProduction() {
		return errors.New("config: AUTH_INSECURE_SKIP_VERIFY is not allowed when ENV=production")
	}
	if !c.Auth.InsecureSkipVerify && c.Auth.JWTSecret == "" {
		return errors.New("config: JWT_SECRET is required unless AUTH_INSECURE_SKIP_VERIFY is set")
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}
