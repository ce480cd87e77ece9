package config

import (
	"bytes"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config application configuration
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Export   ExportConfig   `mapstructure:"export"`
}

// ServerConfig loopback server the UI shell talks to
type ServerConfig struct {
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

// DatabaseConfig embedded store file
type DatabaseConfig struct {
	Path     string `mapstructure:"path"`
	Filename string `mapstructure:"filename"`
	LogMode  bool   `mapstructure:"log_mode"`
}

// AuthConfig session and unlock settings
type AuthConfig struct {
	JWTSecret      string        `mapstructure:"jwt_secret"`
	SessionHours   int           `mapstructure:"session_hours"`
	UnlockAttempts int           `mapstructure:"unlock_attempts"`
	SessionTTL     time.Duration `mapstructure:"-"`
}

// ExportConfig where export files are written
type ExportConfig struct {
	Dir string `mapstructure:"dir"`
}

var (
	// GlobalConfig global configuration instance
	GlobalConfig *Config
)

// LoadConfig loads configuration.
// Priority: FINTRACK_ env > external file > embedded defaults.
// configPath is an optional external file.
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	if err := v.ReadConfig(bytes.NewReader(DefaultConfigYAML)); err != nil {
		return nil, fmt.Errorf("read embedded config: %w", err)
	}

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.MergeInConfig(); err != nil {
			log.Printf("warning: cannot read config file %s: %v", configPath, err)
		} else {
			log.Printf("merged config file: %s", configPath)
		}
	} else {
		externalViper := viper.New()
		externalViper.SetConfigName("config")
		externalViper.SetConfigType("yaml")
		externalViper.AddConfigPath(".")
		externalViper.AddConfigPath("./config")
		externalViper.AddConfigPath("$HOME/.fintrack")

		if err := externalViper.ReadInConfig(); err == nil {
			if err := v.MergeConfigMap(externalViper.AllSettings()); err != nil {
				log.Printf("warning: merge external config: %v", err)
			} else {
				log.Printf("merged config file: %s", externalViper.ConfigFileUsed())
			}
		}
	}

	v.SetEnvPrefix("FINTRACK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.applyDefaults(); err != nil {
		return nil, err
	}

	GlobalConfig = &cfg
	return &cfg, nil
}

func (cfg *Config) applyDefaults() error {
	if cfg.Database.Filename == "" {
		cfg.Database.Filename = "finance_tracker.db"
	}
	if cfg.Database.Path == "" {
		dir, err := DataDir()
		if err != nil {
			return err
		}
		cfg.Database.Path = filepath.Join(dir, cfg.Database.Filename)
	}
	if cfg.Export.Dir == "" {
		cfg.Export.Dir = filepath.Join(filepath.Dir(cfg.Database.Path), "exports")
	}

	if cfg.Auth.SessionHours <= 0 {
		cfg.Auth.SessionHours = 12
	}
	cfg.Auth.SessionTTL = time.Duration(cfg.Auth.SessionHours) * time.Hour
	if cfg.Auth.UnlockAttempts <= 0 {
		cfg.Auth.UnlockAttempts = 5
	}
	if cfg.Auth.JWTSecret == "" {
		secret := make([]byte, 32)
		if _, err := rand.Read(secret); err != nil {
			return fmt.Errorf("generate session secret: %w", err)
		}
		cfg.Auth.JWTSecret = hex.EncodeToString(secret)
	}
	return nil
}

// DataDir returns the per-user directory holding the database file.
func DataDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locate user config dir: %w", err)
	}
	return filepath.Join(base, "fintrack"), nil
}

// PrintConfig logs the active configuration without secrets
func PrintConfig() {
	if GlobalConfig == nil {
		return
	}
	log.Printf("active config:")
	log.Printf("  server:   %s (mode: %s)", GlobalConfig.Server.Port, GlobalConfig.Server.Mode)
	log.Printf("  database: %s", GlobalConfig.Database.Path)
	log.Printf("  exports:  %s", GlobalConfig.Export.Dir)
}

// SafeErrorMessage hides internal error details from the UI in release mode.
func SafeErrorMessage(err error, fallback string) string {
	if err == nil {
		return fallback
	}
	if GlobalConfig != nil && GlobalConfig.Server.Mode == "release" {
		return fallback
	}
	return err.Error()
}
