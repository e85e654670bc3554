package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration settings
type Config struct {
	// Deployment mode: "server" uses Postgres/Neo4j/Redis, "local" runs
	// everything in-process over SQLite.
	Mode string `yaml:"mode"`

	Storage StorageConfig `yaml:"storage"`
	Graph   GraphConfig   `yaml:"graph"`
	Cache   CacheConfig   `yaml:"cache"`
	API     APIConfig     `yaml:"api"`
	Engine  EngineConfig  `yaml:"engine"`
	Rules   RulesConfig   `yaml:"rules"`
	History HistoryConfig `yaml:"history"`
}

type StorageConfig struct {
	Type        string `yaml:"type"` // "postgres", "sqlite"
	PostgresDSN string `yaml:"postgres_dsn"`
	LocalPath   string `yaml:"local_path"`
}

type GraphConfig struct {
	Neo4jURI      string `yaml:"neo4j_uri"`
	Neo4jUser     string `yaml:"neo4j_user"`
	Neo4jPassword string `yaml:"neo4j_password"`
}

type CacheConfig struct {
	RedisHost     string `yaml:"redis_host"`
	RedisPort     int    `yaml:"redis_port"`
	RedisPassword string `yaml:"redis_password"`
}

type APIConfig struct {
	OpenAIKey   string `yaml:"openai_key"`
	UseKeychain bool   `yaml:"use_keychain"`
}

type EngineConfig struct {
	MinConfidence      float64       `yaml:"min_confidence"`
	MaxRecommendations int           `yaml:"max_recommendations"`
	ScoringTimeout     time.Duration `yaml:"scoring_timeout"`
	ContextTTL         time.Duration `yaml:"context_ttl"`
}

type RulesConfig struct {
	Directory string `yaml:"directory"`
}

type HistoryConfig struct {
	Path string `yaml:"path"`
}

// Default returns default configuration
func Default() *Config {
	homeDir, _ := os.UserHomeDir()
	return &Config{
		Mode: "local",
		Storage: StorageConfig{
			Type:      "sqlite",
			LocalPath: filepath.Join(homeDir, ".basix", "local.db"),
		},
		Graph: GraphConfig{
			Neo4jURI:  "bolt://localhost:7687",
			Neo4jUser: "neo4j",
		},
		Cache: CacheConfig{
			RedisHost: "localhost",
			RedisPort: 6379,
		},
		Engine: EngineConfig{
			MinConfidence:      0.7,
			MaxRecommendations: 10,
			ScoringTimeout:     30 * time.Second,
			ContextTTL:         5 * time.Minute,
		},
		History: HistoryConfig{
			Path: filepath.Join(homeDir, ".basix", "history.db"),
		},
	}
}

// Load loads configuration from file, environment, and OS keychain.
func Load(path string) (*Config, error) {
	loadEnvFiles()

	v := viper.New()
	v.SetConfigType("yaml")

	cfg := Default()
	v.SetDefault("mode", cfg.Mode)
	v.SetDefault("storage", cfg.Storage)
	v.SetDefault("graph", cfg.Graph)
	v.SetDefault("cache", cfg.Cache)
	v.SetDefault("engine", cfg.Engine)
	v.SetDefault("history", cfg.History)

	v.SetEnvPrefix("BASIX")
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".basix")
		v.AddConfigPath(".")
		homeDir, _ := os.UserHomeDir()
		v.AddConfigPath(filepath.Join(homeDir, ".basix"))
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		// Config file not found is OK, use defaults
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyEnvOverrides(cfg)

	return cfg, nil
}

// loadEnvFiles loads .env files in order of precedence
func loadEnvFiles() {
	envFiles := []string{
		".env.local",
		".env",
	}
	for _, file := range envFiles {
		if _, err := os.Stat(file); err == nil {
			godotenv.Load(file)
		}
	}

	homeDir, _ := os.UserHomeDir()
	homeEnvFile := filepath.Join(homeDir, ".basix", ".env")
	if _, err := os.Stat(homeEnvFile); err == nil {
		godotenv.Load(homeEnvFile)
	}
}

// applyEnvOverrides applies environment variable overrides.
// Precedence: env var > keychain > config file.
func applyEnvOverrides(cfg *Config) {
	if mode := os.Getenv("BASIX_MODE"); mode != "" {
		cfg.Mode = mode
	}

	if storageType := os.Getenv("STORAGE_TYPE"); storageType != "" {
		cfg.Storage.Type = storageType
	}
	if dsn := os.Getenv("POSTGRES_DSN"); dsn != "" {
		cfg.Storage.PostgresDSN = dsn
	}

	if uri := os.Getenv("NEO4J_URI"); uri != "" {
		cfg.Graph.Neo4jURI = uri
	}
	if user := os.Getenv("NEO4J_USER"); user != "" {
		cfg.Graph.Neo4jUser = user
	}
	if password := os.Getenv("NEO4J_PASSWORD"); password != "" {
		cfg.Graph.Neo4jPassword = password
	}

	if host := os.Getenv("REDIS_HOST"); host != "" {
		cfg.Cache.RedisHost = host
	}
	if password := os.Getenv("REDIS_PASSWORD"); password != "" {
		cfg.Cache.RedisPassword = password
	}

	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		cfg.API.OpenAIKey = key
	} else if cfg.API.OpenAIKey == "" {
		km := NewKeyringManager()
		if km.IsAvailable() {
			if keychainKey, err := km.GetAPIKey(); err == nil && keychainKey != "" {
				cfg.API.OpenAIKey = keychainKey
			}
		}
	}
}
