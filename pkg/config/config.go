package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	CORS      CORSConfig
	Log       LogConfig
	Scheduler SchedulerConfig
	Timetable TimetableConfig
	Export    ExportConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type JWTConfig struct {
	Secret     string
	Expiration time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// SchedulerConfig tunes the timetable search engine.
type SchedulerConfig struct {
	Attempts         int
	AttemptBudget    time.Duration
	MinLoad          int
	MaxLoad          int
	MaxSubjectPerDay int
}

// ExportConfig controls where rendered exports are archived on disk.
type ExportConfig struct {
	Dir string
}

// TimetableConfig governs caching and scoring of generated timetables.
type TimetableConfig struct {
	CacheTTL          time.Duration
	UtilizationWeight float64
	BalanceWeight     float64
	RoomWeight        float64
	DiversityWeight   float64
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.JWT = JWTConfig{
		Secret:     v.GetString("JWT_SECRET"),
		Expiration: parseDuration(v.GetString("JWT_EXPIRATION"), 24*time.Hour),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Scheduler = SchedulerConfig{
		Attempts:         v.GetInt("SCHEDULER_ATTEMPTS"),
		AttemptBudget:    parseDuration(v.GetString("SCHEDULER_ATTEMPT_BUDGET"), 45*time.Second),
		MinLoad:          v.GetInt("SCHEDULER_MIN_LOAD"),
		MaxLoad:          v.GetInt("SCHEDULER_MAX_LOAD"),
		MaxSubjectPerDay: v.GetInt("SCHEDULER_MAX_SUBJECT_PER_DAY"),
	}

	cfg.Export = ExportConfig{Dir: v.GetString("EXPORT_DIR")}

	cfg.Timetable = TimetableConfig{
		CacheTTL:          parseDuration(v.GetString("TIMETABLE_CACHE_TTL"), 5*time.Minute),
		UtilizationWeight: v.GetFloat64("TIMETABLE_UTILIZATION_WEIGHT"),
		BalanceWeight:     v.GetFloat64("TIMETABLE_BALANCE_WEIGHT"),
		RoomWeight:        v.GetFloat64("TIMETABLE_ROOM_WEIGHT"),
		DiversityWeight:   v.GetFloat64("TIMETABLE_DIVERSITY_WEIGHT"),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "timetable")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_EXPIRATION", "24h")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("SCHEDULER_ATTEMPTS", 3)
	v.SetDefault("SCHEDULER_ATTEMPT_BUDGET", "45s")
	v.SetDefault("SCHEDULER_MIN_LOAD", 2)
	v.SetDefault("SCHEDULER_MAX_LOAD", 8)
	v.SetDefault("SCHEDULER_MAX_SUBJECT_PER_DAY", 3)

	v.SetDefault("EXPORT_DIR", "./exports")

	v.SetDefault("TIMETABLE_CACHE_TTL", "5m")
	v.SetDefault("TIMETABLE_UTILIZATION_WEIGHT", 0.35)
	v.SetDefault("TIMETABLE_BALANCE_WEIGHT", 0.25)
	v.SetDefault("TIMETABLE_ROOM_WEIGHT", 0.25)
	v.SetDefault("TIMETABLE_DIVERSITY_WEIGHT", 0.15)
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
