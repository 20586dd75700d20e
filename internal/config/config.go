package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Wekan    Wekan    `mapstructure:"wekan"`
	Database Database `mapstructure:"database"`
	Sync     Sync     `mapstructure:"sync"`
	Server   Server   `mapstructure:"server"`
}

type Wekan struct {
	BaseURL   string        `mapstructure:"base_url" validate:"required,url"`
	Username  string        `mapstructure:"username" validate:"required"`
	Password  string        `mapstructure:"password" validate:"required"`
	AdminUser string        `mapstructure:"admin_user" validate:"required"`
	Timeout   time.Duration `mapstructure:"timeout" validate:"gte=0"`
}

type Database struct {
	Driver         string `mapstructure:"driver" validate:"oneof=sqlite postgres"`
	Path           string `mapstructure:"path" validate:"required_if=Driver sqlite"`
	User           string `mapstructure:"user" validate:"required_if=Driver postgres"`
	Password       string `mapstructure:"password"`
	Host           string `mapstructure:"host" validate:"required_if=Driver postgres"`
	Port           int    `mapstructure:"port" validate:"required_if=Driver postgres,gte=0,lte=65535"`
	Name           string `mapstructure:"name" validate:"required_if=Driver postgres"`
	MaxRecordBytes int    `mapstructure:"max_record_bytes" validate:"gte=0"`
}

type Sync struct {
	CompletedField string `mapstructure:"completed_field" validate:"required"`
	HoursMarker    string `mapstructure:"hours_marker" validate:"required"`
	Baseline       string `mapstructure:"baseline" validate:"oneof=board global"`
	PrefetchUsers  bool   `mapstructure:"prefetch_users"`
}

type Server struct {
	Port string `mapstructure:"port" validate:"required"`
}

const (
	BaselineBoard  = "board"
	BaselineGlobal = "global"
)

// envBindings lists the environment names accepted for each key, first match wins.
var envBindings = []struct {
	key   string
	names []string
}{
	{"wekan.base_url", []string{"WEKAN_BASE_URL"}},
	{"wekan.username", []string{"WEKAN_USERNAME"}},
	{"wekan.password", []string{"WEKAN_PASSWORD"}},
	{"wekan.admin_user", []string{"WEKAN_ADMIN_USER"}},
	{"wekan.timeout", []string{"HTTP_TIMEOUT"}},
	{"database.driver", []string{"DB_DRIVER"}},
	{"database.path", []string{"DB_PATH"}},
	{"database.user", []string{"DB_USER", "MONGO_USER"}},
	{"database.password", []string{"DB_PASSWORD", "MONGO_PASSWORD"}},
	{"database.host", []string{"DB_HOST", "MONGO_HOST"}},
	{"database.port", []string{"DB_PORT", "MONGO_PORT"}},
	{"database.name", []string{"DB_NAME", "MONGO_DB"}},
	{"database.max_record_bytes", []string{"DB_MAX_RECORD_BYTES"}},
	{"sync.completed_field", []string{"SYNC_COMPLETED_FIELD"}},
	{"sync.hours_marker", []string{"SYNC_HOURS_MARKER"}},
	{"sync.baseline", []string{"SYNC_BASELINE"}},
	{"sync.prefetch_users", []string{"SYNC_PREFETCH_USERS"}},
	{"server.port", []string{"SERVER_PORT"}},
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("wekan.timeout", 30*time.Second)
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", "cards.db")
	v.SetDefault("database.max_record_bytes", 16*1024*1024)
	v.SetDefault("sync.completed_field", "Выполнено")
	v.SetDefault("sync.hours_marker", "Часы успешно отправлены в кабинет.")
	v.SetDefault("sync.baseline", BaselineBoard)
	v.SetDefault("sync.prefetch_users", false)
	v.SetDefault("server.port", "8080")
}

// Load builds the configuration from dir. Precedence, lowest first:
// defaults, config.toml, .env.shared, .env, process environment.
func Load(dir string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(dir)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	dotenv, err := readDotenv(filepath.Join(dir, ".env.shared"), filepath.Join(dir, ".env"))
	if err != nil {
		return nil, err
	}

	for _, b := range envBindings {
		if err := v.BindEnv(append([]string{b.key}, b.names...)...); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", b.key, err)
		}
		if envSet(b.names) {
			continue
		}
		for _, name := range b.names {
			if value, ok := dotenv[name]; ok {
				v.Set(b.key, value)
				break
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// readDotenv merges env files in order; later files override earlier ones.
func readDotenv(paths ...string) (map[string]string, error) {
	merged := make(map[string]string)
	for _, path := range paths {
		values, err := godotenv.Read(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		for k, val := range values {
			merged[k] = val
		}
	}
	return merged, nil
}

func envSet(names []string) bool {
	for _, name := range names {
		if _, ok := os.LookupEnv(name); ok {
			return true
		}
	}
	return false
}

// DSN returns the postgres connection string.
func (d Database) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		d.Host, d.Port, d.User, d.Password, d.Name,
	)
}
