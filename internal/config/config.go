package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	App        AppConfig        `mapstructure:"app"`
	Server     ServerConfig     `mapstructure:"http_server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Kafka      KafkaConfig      `mapstructure:"kafka"`
	Auth       AuthConfig       `mapstructure:"auth" validate:"required"`
	Attendance AttendanceConfig `mapstructure:"attendance"`
	Worker     WorkerConfig     `mapstructure:"worker"`
	Bootstrap  BootstrapConfig  `mapstructure:"bootstrap"`
}

type AppConfig struct {
	Env      string `mapstructure:"env" validate:"required,oneof=development staging production test"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
	Timezone string `mapstructure:"timezone" validate:"required"`
}

type ServerConfig struct {
	Port           string        `mapstructure:"port" validate:"required"`
	AllowedOrigins string        `mapstructure:"allowed_origins"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	IdleTimeout    time.Duration `mapstructure:"idle_timeout"`
}

type DatabaseConfig struct {
	Host        string `mapstructure:"host" validate:"required"`
	Port        string `mapstructure:"port" validate:"required"`
	User        string `mapstructure:"user" validate:"required"`
	Password    string `mapstructure:"password"`
	Name        string `mapstructure:"name" validate:"required"`
	SSLMode     string `mapstructure:"sslmode" validate:"required"`
	MaxRetries  int    `mapstructure:"max_retries" validate:"min=1"`
	AutoMigrate bool   `mapstructure:"auto_migrate"`
}

type RedisConfig struct {
	Addr       string `mapstructure:"addr"`
	MaxRetries int    `mapstructure:"max_retries" validate:"min=1"`
}

type KafkaConfig struct {
	Broker            string `mapstructure:"broker"`
	NotificationTopic string `mapstructure:"notification_topic" validate:"required"`
	ConsumerGroup     string `mapstructure:"consumer_group" validate:"required"`
}

type AuthConfig struct {
	JWTSecret       string        `mapstructure:"jwt_secret" validate:"required,min=16"`
	AccessTokenTTL  time.Duration `mapstructure:"access_token_ttl" validate:"required"`
	RefreshTokenTTL time.Duration `mapstructure:"refresh_token_ttl" validate:"required"`
	BcryptCost      int           `mapstructure:"bcrypt_cost" validate:"min=4,max=15"`
}

type AttendanceConfig struct {
	LateCutoff           string  `mapstructure:"late_cutoff" validate:"required"`
	EarlyDepartureCutoff string  `mapstructure:"early_departure_cutoff" validate:"required"`
	StandardHours        float64 `mapstructure:"standard_hours" validate:"gt=0,lte=24"`
}

type WorkerConfig struct {
	OutboxPollInterval        time.Duration `mapstructure:"outbox_poll_interval"`
	NotificationRetentionDays int           `mapstructure:"notification_retention_days" validate:"min=1"`
	PurgeSchedule             string        `mapstructure:"purge_schedule" validate:"required"`
}

type BootstrapConfig struct {
	AdminUsername string `mapstructure:"admin_username"`
	AdminEmail    string `mapstructure:"admin_email"`
	AdminPassword string `mapstructure:"admin_password"`
}

// envBindings keeps the flat env names used by the deployment manifests.
var envBindings = map[string]string{
	"app.env":                            "APP_ENV",
	"app.log_level":                      "LOG_LEVEL",
	"app.timezone":                       "APP_TIMEZONE",
	"http_server.port":                   "PORT",
	"http_server.allowed_origins":        "CORS_ALLOWED_ORIGINS",
	"database.host":                      "DB_HOST",
	"database.port":                      "DB_PORT",
	"database.user":                      "DB_USER",
	"database.password":                  "DB_PASSWORD",
	"database.name":                      "DB_NAME",
	"database.sslmode":                   "DB_SSLMODE",
	"database.auto_migrate":              "DB_AUTO_MIGRATE",
	"redis.addr":                         "REDIS_ADDR",
	"kafka.broker":                       "KAFKA_BROKER",
	"kafka.notification_topic":           "KAFKA_NOTIFICATION_TOPIC",
	"kafka.consumer_group":               "KAFKA_CONSUMER_GROUP",
	"auth.jwt_secret":                    "JWT_SECRET",
	"auth.access_token_ttl":              "JWT_ACCESS_TTL",
	"auth.refresh_token_ttl":             "JWT_REFRESH_TTL",
	"auth.bcrypt_cost":                   "BCRYPT_COST",
	"attendance.late_cutoff":             "ATTENDANCE_LATE_CUTOFF",
	"attendance.early_departure_cutoff":  "ATTENDANCE_EARLY_DEPARTURE_CUTOFF",
	"attendance.standard_hours":          "ATTENDANCE_STANDARD_HOURS",
	"worker.outbox_poll_interval":        "WORKER_OUTBOX_POLL_INTERVAL",
	"worker.notification_retention_days": "WORKER_NOTIFICATION_RETENTION_DAYS",
	"worker.purge_schedule":              "WORKER_PURGE_SCHEDULE",
	"bootstrap.admin_username":           "BOOTSTRAP_ADMIN_USERNAME",
	"bootstrap.admin_email":              "BOOTSTRAP_ADMIN_EMAIL",
	"bootstrap.admin_password":           "BOOTSTRAP_ADMIN_PASSWORD",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.env", "development")
	v.SetDefault("app.log_level", "info")
	v.SetDefault("app.timezone", "UTC")

	v.SetDefault("http_server.port", "3000")
	v.SetDefault("http_server.allowed_origins", "*")
	v.SetDefault("http_server.read_timeout", 5*time.Second)
	v.SetDefault("http_server.write_timeout", 10*time.Second)
	v.SetDefault("http_server.idle_timeout", 60*time.Second)

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.name", "dayflow")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_retries", 5)
	v.SetDefault("database.auto_migrate", true)

	v.SetDefault("redis.max_retries", 5)

	v.SetDefault("kafka.notification_topic", "hr.notification.created.v1")
	v.SetDefault("kafka.consumer_group", "dayflow-notification-email")

	v.SetDefault("auth.access_token_ttl", 15*time.Minute)
	v.SetDefault("auth.refresh_token_ttl", 7*24*time.Hour)
	v.SetDefault("auth.bcrypt_cost", 10)

	v.SetDefault("attendance.late_cutoff", "09:00")
	v.SetDefault("attendance.early_departure_cutoff", "18:00")
	v.SetDefault("attendance.standard_hours", 8)

	v.SetDefault("worker.outbox_poll_interval", 3*time.Second)
	v.SetDefault("worker.notification_retention_days", 90)
	v.SetDefault("worker.purge_schedule", "@daily")
}

// Load reads .env (optional), config.yaml (optional) and the environment, in
// increasing order of precedence.
func Load(paths ...string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if len(paths) == 0 {
		paths = []string{".", "./config"}
	}
	for _, p := range paths {
		v.AddConfigPath(p)
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", env, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if _, err := time.LoadLocation(c.App.Timezone); err != nil {
		return fmt.Errorf("invalid app timezone %q: %w", c.App.Timezone, err)
	}
	if _, err := ParseClock(c.Attendance.LateCutoff); err != nil {
		return fmt.Errorf("invalid attendance late cutoff: %w", err)
	}
	if _, err := ParseClock(c.Attendance.EarlyDepartureCutoff); err != nil {
		return fmt.Errorf("invalid attendance early departure cutoff: %w", err)
	}
	return nil
}

func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.App.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}

func (c *Config) Origins() []string {
	var origins []string
	for _, o := range strings.Split(c.Server.AllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

// ParseClock parses HH:MM or HH:MM:SS into an offset from midnight.
func ParseClock(v string) (time.Duration, error) {
	for _, layout := range []string{"15:04:05", "15:04"} {
		if t, err := time.Parse(layout, v); err == nil {
			return time.Duration(t.Hour())*time.Hour +
				time.Duration(t.Minute())*time.Minute +
				time.Duration(t.Second())*time.Second, nil
		}
	}
	return 0, fmt.Errorf("invalid clock value %q, expected HH:MM or HH:MM:SS", v)
}
