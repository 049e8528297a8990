package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	DBPath       string `yaml:"db_path"`
	DataDir      string `yaml:"data_dir"`
	Team         string `yaml:"team"`
	DefaultActor string `yaml:"default_actor"`
	LogLevel     string `yaml:"log_level"`
	Output       string `yaml:"output"`

	// SyncQuietMS is the debounce window for background sync, in
	// milliseconds.
	SyncQuietMS int `yaml:"sync_quiet_ms"`

	// BaseCatalogFile is the filename of the base catalog dataset in
	// DataDir; empty falls back to the bundled default.
	BaseCatalogFile string `yaml:"base_catalog_file"`

	// BasePackagesFile is the filename of the base package definitions
	// dataset in DataDir.
	BasePackagesFile string `yaml:"base_packages_file"`
}

// SyncQuiet returns the debounce window as a duration.
func (c *Config) SyncQuiet() time.Duration {
	return time.Duration(c.SyncQuietMS) * time.Millisecond
}

// Load loads configuration from multiple sources with precedence:
// 1. Environment variables
// 2. ./.env.local (dotenv) - walks up parent directories to find it
// 3. ~/.config/estq/config.yaml (YAML)
func Load() (*Config, error) {
	cfg := &Config{
		LogLevel:    "info",
		Output:      "table",
		SyncQuietMS: 2000,
	}

	// Load .env.local if it exists (walking up parent directories)
	if envPath := findEnvLocal(); envPath != "" {
		_ = godotenv.Load(envPath)
	}

	// Load ~/.config/estq/config.yaml if it exists
	if err := loadYAMLConfig(cfg); err != nil {
		// YAML config is optional, so we don't fail if it doesn't exist
	}

	// Override with environment variables
	if dbPath := getEnvOrFile("ESTQ_DB_PATH", "ESTQ_DB_PATH_FILE"); dbPath != "" {
		cfg.DBPath = dbPath
	}
	if dataDir := os.Getenv("ESTQ_DATA_DIR"); dataDir != "" {
		cfg.DataDir = dataDir
	}
	if team := os.Getenv("ESTQ_TEAM"); team != "" {
		cfg.Team = team
	}
	if actor := os.Getenv("ESTQ_ACTOR"); actor != "" {
		cfg.DefaultActor = actor
	}
	if logLevel := os.Getenv("ESTQ_LOG_LEVEL"); logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if output := os.Getenv("ESTQ_OUTPUT"); output != "" {
		cfg.Output = output
	}

	// Set defaults if not configured
	if cfg.DBPath == "" {
		// Check for project-local database first
		if _, err := os.Stat(".estq/estq.db"); err == nil {
			cfg.DBPath = ".estq/estq.db"
		} else {
			// Fall back to user-global database
			homeDir, err := os.UserHomeDir()
			if err != nil {
				return nil, fmt.Errorf("failed to get home directory: %w", err)
			}
			cfg.DBPath = filepath.Join(homeDir, ".local", "share", "estq", "estq.db")
		}
	}

	if cfg.DataDir == "" {
		// Use project-local data if using local database
		if cfg.DBPath == ".estq/estq.db" {
			cfg.DataDir = ".estq/data"
		} else {
			homeDir, err := os.UserHomeDir()
			if err != nil {
				return nil, fmt.Errorf("failed to get home directory: %w", err)
			}
			cfg.DataDir = filepath.Join(homeDir, ".local", "share", "estq", "data")
		}
	}

	return cfg, nil
}

// loadYAMLConfig loads configuration from ~/.config/estq/config.yaml
func loadYAMLConfig(cfg *Config) error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return err
	}

	configPath := filepath.Join(homeDir, ".config", "estq", "config.yaml")
	data, err := os.ReadFile(configPath)
	if err != nil {
		return err
	}

	return yaml.Unmarshal(data, cfg)
}

// getEnvOrFile gets an environment variable value, or reads it from a file
// if the _FILE variant is set
func getEnvOrFile(envVar, fileVar string) string {
	if val := os.Getenv(envVar); val != "" {
		return val
	}

	if filePath := os.Getenv(fileVar); filePath != "" {
		data, err := os.ReadFile(filePath)
		if err == nil {
			return string(data)
		}
	}

	return ""
}

// findEnvLocal searches for .env.local starting from cwd and walking up
// parent directories. Stops at the user's home directory.
// Returns the path to .env.local if found, empty string otherwise.
func findEnvLocal() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		// If we can't get home dir, just check cwd
		if _, err := os.Stat(".env.local"); err == nil {
			return ".env.local"
		}
		return ""
	}

	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}

	// Clean paths for reliable comparison
	homeDir = filepath.Clean(homeDir)
	dir := filepath.Clean(cwd)

	for {
		envPath := filepath.Join(dir, ".env.local")
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}

		// Stop if we've reached home directory
		if dir == homeDir {
			break
		}

		// Get parent directory
		parent := filepath.Dir(dir)

		// Stop if we've reached the filesystem root
		if parent == dir {
			break
		}

		dir = parent
	}

	return ""
}

// GetActor returns the current actor from environment or config
// Priority: ESTQ_ACTOR > config.default_actor
func (c *Config) GetActor() string {
	if actor := os.Getenv("ESTQ_ACTOR"); actor != "" {
		return actor
	}
	return c.DefaultActor
}

// GetTeam returns the current team, falling back to the actor as the
// owner scope when no team is configured.
func (c *Config) GetTeam() string {
	if team := os.Getenv("ESTQ_TEAM"); team != "" {
		return team
	}
	return c.Team
}
