package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	configPathEnv      = "DOCFORGE_CONFIG"
	completionKeyEnv   = "OPENAI_API_KEY_%d"
	completionModelEnv = "COMPLETIONS_MODEL"
	grammarURLEnv      = "LANGUAGETOOL_URL"
	entityKeyEnv       = "TEXTRAZOR_API_KEY"
	nlpKeyEnv          = "HUGGINGFACE_API_KEY"
	databaseDSNEnv     = "DATABASE_DSN"
	redisAddrEnv       = "REDIS_ADDR"
	portEnv            = "DOCFORGE_PORT"
	logLevelEnv        = "DOCFORGE_LOG_LEVEL"

	maxCompletionKeys = 4
)

// Config holds high-level settings required across the application.
type Config struct {
	Server      ServerConfig      `yaml:"server"`
	Logging     LoggingConfig     `yaml:"logging"`
	Completions CompletionsConfig `yaml:"completions"`
	Grammar     GrammarConfig     `yaml:"grammar"`
	Entity      EntityConfig      `yaml:"entity"`
	NLP         NLPConfig         `yaml:"nlp"`
	Database    DatabaseConfig    `yaml:"database"`
	Cache       CacheConfig       `yaml:"cache"`
}

// ServerConfig describes the HTTP listener.
type ServerConfig struct {
	Port string `yaml:"port"`
}

// LoggingConfig controls slog verbosity.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// CompletionsConfig defines how to contact the completion provider.
type CompletionsConfig struct {
	Endpoint string   `yaml:"endpoint"`
	Model    string   `yaml:"model"`
	APIKeys  []string `yaml:"apiKeys"`
}

// GrammarConfig points at a LanguageTool-compatible service.
type GrammarConfig struct {
	BaseURL string `yaml:"baseUrl"`
}

// EntityConfig wires the entity/topic extraction service.
type EntityConfig struct {
	Endpoint string `yaml:"endpoint"`
	APIKey   string `yaml:"apiKey"`
}

// NLPConfig wires the generic NLP inference service used for sentiment.
type NLPConfig struct {
	Endpoint string `yaml:"endpoint"`
	APIKey   string `yaml:"apiKey"`
}

// DatabaseConfig describes the optional report-history store.
type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

// CacheConfig describes the optional Redis report cache.
type CacheConfig struct {
	RedisAddr  string `yaml:"redisAddr"`
	TTLMinutes int    `yaml:"ttlMinutes"`
}

// TTL resolves the configured cache lifetime.
func (c CacheConfig) TTL() time.Duration {
	if c.TTLMinutes <= 0 {
		return time.Hour
	}
	return time.Duration(c.TTLMinutes) * time.Minute
}

// Load reads YAML configuration (if present) and applies environment overrides.
func Load() Config {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()
	return cfg
}

func (c *Config) applyEnvOverrides() {
	var keys []string
	for i := 1; i <= maxCompletionKeys; i++ {
		if v := os.Getenv(fmt.Sprintf(completionKeyEnv, i)); v != "" {
			keys = append(keys, v)
		}
	}
	if len(keys) > 0 {
		c.Completions.APIKeys = keys
	}

	if v := os.Getenv(completionModelEnv); v != "" {
		c.Completions.Model = v
	}

	if v := os.Getenv(grammarURLEnv); v != "" {
		c.Grammar.BaseURL = v
	}

	if v := os.Getenv(entityKeyEnv); v != "" {
		c.Entity.APIKey = v
	}

	if v := os.Getenv(nlpKeyEnv); v != "" {
		c.NLP.APIKey = v
	}

	if v := os.Getenv(databaseDSNEnv); v != "" {
		c.Database.DSN = v
	}

	if v := os.Getenv(redisAddrEnv); v != "" {
		c.Cache.RedisAddr = v
	}

	if v := os.Getenv(portEnv); v != "" {
		c.Server.Port = v
	}

	if v := os.Getenv(logLevelEnv); v != "" {
		c.Logging.Level = v
	}
}

func mergeConfig(base, override Config) Config {
	if override.Server.Port != "" {
		base.Server.Port = override.Server.Port
	}
	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}

	if override.Completions.Endpoint != "" {
		base.Completions.Endpoint = override.Completions.Endpoint
	}
	if override.Completions.Model != "" {
		base.Completions.Model = override.Completions.Model
	}
	if len(override.Completions.APIKeys) > 0 {
		base.Completions.APIKeys = override.Completions.APIKeys
	}

	if override.Grammar.BaseURL != "" {
		base.Grammar.BaseURL = override.Grammar.BaseURL
	}

	if override.Entity.Endpoint != "" {
		base.Entity.Endpoint = override.Entity.Endpoint
	}
	if override.Entity.APIKey != "" {
		base.Entity.APIKey = override.Entity.APIKey
	}

	if override.NLP.Endpoint != "" {
		base.NLP.Endpoint = override.NLP.Endpoint
	}
	if override.NLP.APIKey != "" {
		base.NLP.APIKey = override.NLP.APIKey
	}

	if override.Database.DSN != "" {
		base.Database.DSN = override.Database.DSN
	}

	if override.Cache.RedisAddr != "" {
		base.Cache.RedisAddr = override.Cache.RedisAddr
	}
	if override.Cache.TTLMinutes > 0 {
		base.Cache.TTLMinutes = override.Cache.TTLMinutes
	}

	return base
}

func defaultConfig() Config {
	return Config{
		Server:  ServerConfig{Port: "8085"},
		Logging: LoggingConfig{Level: "info"},
		Completions: CompletionsConfig{
			Endpoint: "https://api.openai.com/v1/chat/completions",
			Model:    "gpt-4o-mini",
		},
		Grammar: GrammarConfig{BaseURL: "https://api.languagetool.org/v2"},
		Entity:  EntityConfig{Endpoint: "https://api.textrazor.com"},
		NLP: NLPConfig{
			Endpoint: "https://api-inference.huggingface.co/models/distilbert-base-uncased-finetuned-sst-2-english",
		},
		Cache: CacheConfig{TTLMinutes: 60},
	}
}
