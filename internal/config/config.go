package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

const envPrefix = "LUMINA"

type AppConfig struct {
	API      *APIConfig      `mapstructure:"api"`
	Gin      *GinConfig      `mapstructure:"gin"`
	Logger   *LoggerConfig   `mapstructure:"logger"`
	Database *DatabaseConfig `mapstructure:"database"`
	Admin    *AdminConfig    `mapstructure:"admin"`
	Session  *SessionConfig  `mapstructure:"session"`
	Telegram *TelegramConfig `mapstructure:"telegram"`
}

type APIConfig struct {
	BaseURL            string   `mapstructure:"base_url"`
	Environment        string   `mapstructure:"environment"`
	Port               string   `mapstructure:"port"`
	AllowedCORSDomains []string `mapstructure:"allowed_cors_domains"`
	JWTSigningKey      string   `mapstructure:"jwt_signing_key"`
	SeedOnBoot         bool     `mapstructure:"seed_on_boot"`
}

type GinConfig struct {
	Mode string `mapstructure:"mode"`
}

type LoggerConfig struct {
	Level string `mapstructure:"level"`
}

// DatabaseConfig selects one of the supported drivers: postgres, sqlite or libsql.
type DatabaseConfig struct {
	Driver    string `mapstructure:"driver"`
	Host      string `mapstructure:"host"`
	Port      string `mapstructure:"port"`
	User      string `mapstructure:"user"`
	Password  string `mapstructure:"password"`
	DBName    string `mapstructure:"db_name"`
	SSLMode   string `mapstructure:"ssl_mode"`
	Path      string `mapstructure:"path"`
	URL       string `mapstructure:"url"`
	AuthToken string `mapstructure:"auth_token"`
}

type AdminConfig struct {
	Username     string `mapstructure:"username"`
	PasswordHash string `mapstructure:"password_hash"`
}

type SessionConfig struct {
	TTL time.Duration `mapstructure:"ttl"`
}

type TelegramConfig struct {
	Token  string `mapstructure:"token"`
	ChatID int64  `mapstructure:"chat_id"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api.environment", "dev")
	v.SetDefault("api.port", "8080")
	v.SetDefault("api.seed_on_boot", true)
	v.SetDefault("gin.mode", "debug")
	v.SetDefault("logger.level", "info")
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", "lumina.db")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("admin.username", "admin")
	v.SetDefault("session.ttl", 2*time.Hour)
}

// Load reads the YAML file at path, then applies LUMINA_* environment overrides
// (api.port -> LUMINA_API_PORT).
func Load(path string) (*AppConfig, error) {
	return load(viper.GetViper(), path)
}

func load(v *viper.Viper, path string) (*AppConfig, error) {
	setDefaults(v)

	v.SetConfigFile(path)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("v.ReadInConfig() -> %w", err)
	}

	return unmarshal(v)
}

func unmarshal(v *viper.Viper) (*AppConfig, error) {
	conf := &AppConfig{}
	if err := v.Unmarshal(conf); err != nil {
		return nil, fmt.Errorf("v.Unmarshal() -> %w", err)
	}

	if conf.API.JWTSigningKey == "" {
		return nil, fmt.Errorf("api.jwt_signing_key is required")
	}

	return conf, nil
}

// Watch re-reads the config file whenever it changes on disk and hands the
// result to onChange. Only settings that are safe to swap at runtime should be
// applied by the callback.
func Watch(onChange func(*AppConfig, error)) {
	v := viper.GetViper()
	v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		onChange(unmarshal(v))
	})
	v.WatchConfig()
}
