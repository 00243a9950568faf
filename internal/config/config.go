// internal/config/config.go
//
// Runtime configuration.
//
// Precedence (lowest → highest):
//   1. Built-in defaults.
//   2. Optional YAML file (path argument, else $ELDROW_CONFIG).
//   3. Environment variables (a `.env` file in the working directory is
//      loaded first via godotenv; real env vars win over it).
//   4. CLI flags, applied by cmd/eldrow after Load returns.

package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/robalobadob/eldrow/internal/game"
	"github.com/robalobadob/eldrow/internal/words"
)

// Config is the merged configuration.
type Config struct {
	LogLevel   string `yaml:"log_level"`
	Addr       string `yaml:"addr"`
	DBPath     string `yaml:"db_path"`
	Player     string `yaml:"player"`
	MaxGuesses int    `yaml:"max_guesses"`
	Rule       string `yaml:"rule"`
	DailySalt  string `yaml:"daily_salt"`

	Words WordsConfig `yaml:"words"`
	Auth  AuthConfig  `yaml:"auth"`

	ClientOrigin string        `yaml:"client_origin"`
	RedisAddr    string        `yaml:"redis_addr"`
	SessionTTL   time.Duration `yaml:"session_ttl"`
	Production   bool          `yaml:"production"`
}

// WordsConfig mirrors words.Config.
type WordsConfig struct {
	AnswersFile string `yaml:"answers_file"`
	AllowedFile string `yaml:"allowed_file"`
	Length      int    `yaml:"length"`
}

// AuthConfig holds HTTP player-account settings.
type AuthConfig struct {
	JWTSecret      string `yaml:"jwt_secret"`
	JWTExpiresDays int    `yaml:"jwt_expires_days"`
	CookieName     string `yaml:"cookie_name"`
}

// Default returns the built-in defaults.
func Default() Config {
	return Config{
		LogLevel:   "info",
		Addr:       ":5175",
		DBPath:     "./data/eldrow.db",
		Player:     "local",
		MaxGuesses: game.DefaultRows,
		Rule:       "standard",
		DailySalt:  "local_dev_salt",
		Words:      WordsConfig{Length: words.DefaultLength},
		Auth: AuthConfig{
			JWTSecret:      "dev_secret_change_me",
			JWTExpiresDays: 14,
			CookieName:     "eldrow_token",
		},
		ClientOrigin: "http://localhost:5173",
		SessionTTL:   24 * time.Hour,
	}
}

// Load merges defaults, the YAML file and the environment.
// A missing file is an error only when path was given explicitly.
func Load(path string) (Config, error) {
	_ = godotenv.Load()
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = os.Getenv("ELDROW_CONFIG")
		explicit = path != ""
	}
	if path != "" {
		if err := cfg.mergeFile(path); err != nil {
			if explicit || !errors.Is(err, os.ErrNotExist) {
				return cfg, err
			}
		}
	}

	cfg.applyEnvOverrides()
	return cfg, cfg.Validate()
}

func (c *Config) mergeFile(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(b, c); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}
	return nil
}

// applyEnvOverrides copies set environment variables over the current values.
func (c *Config) applyEnvOverrides() {
	setStr(&c.LogLevel, "LOG_LEVEL")
	if port := os.Getenv("PORT"); port != "" {
		c.Addr = ":" + port
	}
	setStr(&c.Addr, "ADDR")
	setStr(&c.DBPath, "DB_PATH")
	setStr(&c.Player, "PLAYER")
	setInt(&c.MaxGuesses, "MAX_GUESSES")
	setStr(&c.Rule, "EVAL_RULE")
	setStr(&c.DailySalt, "DAILY_SALT")

	setStr(&c.Words.AnswersFile, "WORDS_ANSWERS_FILE")
	setStr(&c.Words.AllowedFile, "WORDS_ALLOWED_FILE")
	setInt(&c.Words.Length, "WORD_LENGTH")

	setStr(&c.Auth.JWTSecret, "JWT_SECRET")
	setInt(&c.Auth.JWTExpiresDays, "JWT_EXPIRES_DAYS")
	setStr(&c.Auth.CookieName, "COOKIE_NAME")

	setStr(&c.ClientOrigin, "CLIENT_ORIGIN")
	setStr(&c.RedisAddr, "REDIS_ADDR")
	if v := os.Getenv("SESSION_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.SessionTTL = d
		}
	}
	if v := os.Getenv("ELDROW_ENV"); v != "" {
		c.Production = v == "production"
	}
}

// Validate checks values that would otherwise fail deep inside a command.
func (c Config) Validate() error {
	if _, err := game.ParseRule(c.Rule); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if c.MaxGuesses < 1 {
		return fmt.Errorf("config: max_guesses must be positive, got %d", c.MaxGuesses)
	}
	if c.Words.Length < 1 {
		return fmt.Errorf("config: words.length must be positive, got %d", c.Words.Length)
	}
	return nil
}

// WordList converts the words section for words.Load.
func (c Config) WordList() words.Config {
	return words.Config{
		AnswersFile: c.Words.AnswersFile,
		AllowedFile: c.Words.AllowedFile,
		Length:      c.Words.Length,
	}
}

// EvalRule returns the parsed rule; Validate has already checked it.
func (c Config) EvalRule() game.Rule {
	r, _ := game.ParseRule(c.Rule)
	return r
}

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}
