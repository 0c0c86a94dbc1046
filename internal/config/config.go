package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Storage backends.
const (
	BackendFile     = "file"
	BackendRedis    = "redis"
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
)

const (
	MinTimerMinutes = 1
	MaxTimerMinutes = 60
)

type Config struct {
	// File is the config file that was read, empty when running on defaults.
	File    string
	Server  ServerConfig
	Logger  LoggerConfig
	Quiz    QuizConfig
	Storage StorageConfig
	DB      DBConfig
	Redis   RedisConfig
}

type ServerConfig struct {
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	BodyLimit    int
}

type LoggerConfig struct {
	Env   string
	Level string
}

// QuizConfig holds the settings a fresh session starts with.
type QuizConfig struct {
	Levels        []int
	QuestionCount int
	UseImages     bool
	UseTimer      bool
	TimerMinutes  int
	FrameInterval time.Duration
}

type StorageConfig struct {
	ProfileBackend string
	ProfilePath    string
	BankBackend    string
}

type DBConfig struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type RedisConfig struct {
	Address  string
	Password string
	DB       int
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8090)
	v.SetDefault("server.read_timeout", 10)
	v.SetDefault("server.write_timeout", 10)
	v.SetDefault("server.body_limit_mb", 8)

	v.SetDefault("logger.env", "development")
	v.SetDefault("logger.level", "info")

	v.SetDefault("quiz.levels", []int{1, 2, 3})
	v.SetDefault("quiz.question_count", 10)
	v.SetDefault("quiz.use_images", false)
	v.SetDefault("quiz.use_timer", false)
	v.SetDefault("quiz.timer_minutes", 5)
	v.SetDefault("quiz.frame_interval", "16ms")

	v.SetDefault("storage.profile.backend", BackendFile)
	v.SetDefault("storage.profile.path", "data/profile.json")
	v.SetDefault("storage.bank.backend", BackendMemory)

	v.SetDefault("db.max_open_conns", 5)
	v.SetDefault("db.max_idle_conns", 2)
	v.SetDefault("db.conn_max_lifetime", "5m")

	v.SetDefault("redis.address", "localhost:6379")
	v.SetDefault("redis.db", 0)
}

// LoadConfig reads config.yaml from the working directory or ./config when
// present, then applies environment overrides (e.g. QUIZ_TIMER_MINUTES,
// STORAGE_PROFILE_BACKEND). A .env file is loaded first if one exists.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	return load(v)
}

// LoadConfigFile reads the given YAML file with the same defaults and
// environment overrides as LoadConfig.
func LoadConfigFile(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	return load(v)
}

func load(v *viper.Viper) (*Config, error) {
	setDefaults(v)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:         v.GetInt("server.port"),
			ReadTimeout:  time.Duration(v.GetInt("server.read_timeout")) * time.Second,
			WriteTimeout: time.Duration(v.GetInt("server.write_timeout")) * time.Second,
			BodyLimit:    v.GetInt("server.body_limit_mb") * 1024 * 1024,
		},
		Logger: LoggerConfig{
			Env:   v.GetString("logger.env"),
			Level: v.GetString("logger.level"),
		},
		Quiz: QuizConfig{
			Levels:        v.GetIntSlice("quiz.levels"),
			QuestionCount: v.GetInt("quiz.question_count"),
			UseImages:     v.GetBool("quiz.use_images"),
			UseTimer:      v.GetBool("quiz.use_timer"),
			TimerMinutes:  ClampTimerMinutes(v.GetInt("quiz.timer_minutes")),
			FrameInterval: v.GetDuration("quiz.frame_interval"),
		},
		Storage: StorageConfig{
			ProfileBackend: strings.ToLower(v.GetString("storage.profile.backend")),
			ProfilePath:    v.GetString("storage.profile.path"),
			BankBackend:    strings.ToLower(v.GetString("storage.bank.backend")),
		},
		DB: DBConfig{
			DSN:             v.GetString("db.dsn"),
			MaxOpenConns:    v.GetInt("db.max_open_conns"),
			MaxIdleConns:    v.GetInt("db.max_idle_conns"),
			ConnMaxLifetime: v.GetDuration("db.conn_max_lifetime"),
		},
		Redis: RedisConfig{
			Address:  v.GetString("redis.address"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
	}

	if configFile := v.ConfigFileUsed(); configFile != "" {
		if absPath, err := filepath.Abs(configFile); err == nil {
			cfg.File = absPath
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the backend selections and their required settings.
func (c *Config) Validate() error {
	switch c.Storage.ProfileBackend {
	case BackendFile:
		if c.Storage.ProfilePath == "" {
			return errors.New("storage.profile.path is required for the file backend")
		}
	case BackendRedis:
		if c.Redis.Address == "" {
			return errors.New("redis.address is required for the redis backend")
		}
	default:
		return fmt.Errorf("unknown storage.profile.backend %q", c.Storage.ProfileBackend)
	}

	switch c.Storage.BankBackend {
	case BackendMemory:
	case BackendPostgres:
		if c.DB.DSN == "" {
			return errors.New("db.dsn is required for the postgres bank backend")
		}
	default:
		return fmt.Errorf("unknown storage.bank.backend %q", c.Storage.BankBackend)
	}
	return nil
}

// ClampTimerMinutes bounds a timer length to [MinTimerMinutes, MaxTimerMinutes].
func ClampTimerMinutes(m int) int {
	if m < MinTimerMinutes {
		return MinTimerMinutes
	}
	if m > MaxTimerMinutes {
		return MaxTimerMinutes
	}
	return m
}
