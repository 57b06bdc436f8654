package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds application configuration loaded from environment variables.
type Config struct {
	Port               int           `envconfig:"PORT" default:"5001"`
	LogLevel           string        `envconfig:"LOG_LEVEL" default:"info"`
	DatabaseURL        string        `envconfig:"DATABASE_URL" required:"true"`
	JWTSecret          string        `envconfig:"JWT_SECRET" required:"true"`
	TokenTTL           time.Duration `envconfig:"TOKEN_TTL" default:"168h"`
	BcryptCost         int           `envconfig:"BCRYPT_COST" default:"12"`
	CORSAllowedOrigins []string      `envconfig:"CORS_ALLOWED_ORIGINS" default:"*"`
	Version            string        `envconfig:"VERSION" default:"dev"`
}

// Load reads configuration from environment variables into a Config struct.
// A .env file in the working directory is loaded first when present;
// variables already set in the environment take precedence over it.
func Load() (*Config, error) {
	if err := LoadDotEnv(".env"); err != nil {
		return nil, err
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if cfg.TokenTTL <= 0 {
		return nil, fmt.Errorf("TOKEN_TTL must be positive, got %s", cfg.TokenTTL)
	}
	return &cfg, nil
}

// Seed holds the settings of the seed command.
type Seed struct {
	DatabaseURL      string `envconfig:"DATABASE_URL" required:"true"`
	BcryptCost       int    `envconfig:"BCRYPT_COST" default:"12"`
	DemoUserEmail    string `envconfig:"DEMO_USER_EMAIL" default:""`
	DemoUserPassword string `envconfig:"DEMO_USER_PASSWORD" default:""`
	RosterFile       string `envconfig:"ROSTER_FILE" default:""`
}

// LoadSeed reads the seed command settings, honouring .env like Load.
func LoadSeed() (*Seed, error) {
	if err := LoadDotEnv(".env"); err != nil {
		return nil, err
	}

	var cfg Seed
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadDotEnv loads the given dotenv files. Missing files are ignored.
func LoadDotEnv(paths ...string) error {
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return fmt.Errorf("loading %s: %w", p, err)
		}
	}
	return nil
}
