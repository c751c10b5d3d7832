package config

import (
	"time"

	"confessions/model"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// ErrMissingSetting is returned when a required setting is empty.
var ErrMissingSetting = errors.New("missing required setting")

var Cfg model.Config

// LoadConfig reads ./config.yaml (optional) and the environment into Cfg.
func LoadConfig() (err error) {
	v := viper.New()
	v.AddConfigPath(".")
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	Cfg, err = Load(v)
	return
}

// Load reads configuration through v. A missing config file is not an error;
// environment variables and defaults still apply.
func Load(v *viper.Viper) (model.Config, error) {
	setDefaults(v)
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return model.Config{}, errors.Wrap(err, "read config file")
		}
	}

	var cfg model.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return model.Config{}, errors.Wrap(err, "decode config")
	}
	if err := Validate(cfg); err != nil {
		return model.Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	// keys without a default still need registering so AutomaticEnv sees them
	v.SetDefault("TOKEN", "")
	v.SetDefault("MODERATION_CHANNEL_ID", "")
	v.SetDefault("PUBLIC_CHANNEL_ID", "")
	v.SetDefault("REDIS_URL", "")

	v.SetDefault("RATE_LIMIT_SECONDS", 60)
	v.SetDefault("PUBLISH_INTERVAL_SECONDS", 1800)
	v.SetDefault("BAN_HOURS", []int{1, 2, 4, 24})
	v.SetDefault("BACKUP_INTERVAL_SECONDS", 300)
	v.SetDefault("BACKUP_BACKEND", "file")
	v.SetDefault("BACKUP_FILE", "bot_backup.json")
	v.SetDefault("BACKUP_REDIS_KEY", "confessions:snapshot")
	v.SetDefault("AUDIT_DB", "./data/confessions.db")
	v.SetDefault("HEALTH_ADDR", ":10000")
	v.SetDefault("GATEWAY_TIMEOUT_SECONDS", 10)
	v.SetDefault("REPLY_SESSION_TTL_SECONDS", 900)
	v.SetDefault("POLL_DURATION_HOURS", 24)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
}

// Discord refuses polls that run longer than 32 days.
const maxPollHours = 768

// Validate checks the settings the bot cannot start without.
func Validate(cfg model.Config) error {
	switch {
	case cfg.Token == "":
		return errors.Wrap(ErrMissingSetting, "TOKEN")
	case cfg.ModerationChannelID == "":
		return errors.Wrap(ErrMissingSetting, "MODERATION_CHANNEL_ID")
	case cfg.PublicChannelID == "":
		return errors.Wrap(ErrMissingSetting, "PUBLIC_CHANNEL_ID")
	}

	switch {
	case cfg.RateLimitSeconds < 0:
		return errors.New("RATE_LIMIT_SECONDS must not be negative")
	case cfg.PublishIntervalSeconds <= 0:
		return errors.New("PUBLISH_INTERVAL_SECONDS must be positive")
	case cfg.BackupIntervalSeconds <= 0:
		return errors.New("BACKUP_INTERVAL_SECONDS must be positive")
	case cfg.GatewayTimeoutSeconds <= 0:
		return errors.New("GATEWAY_TIMEOUT_SECONDS must be positive")
	case cfg.ReplySessionTTLSeconds <= 0:
		return errors.New("REPLY_SESSION_TTL_SECONDS must be positive")
	case cfg.PollDurationHours <= 0 || cfg.PollDurationHours > maxPollHours:
		return errors.Errorf("POLL_DURATION_HOURS must be between 1 and %d", maxPollHours)
	case len(cfg.BanHours) == 0:
		return errors.New("BAN_HOURS must list at least one duration")
	}
	for _, h := range cfg.BanHours {
		if h <= 0 {
			return errors.Errorf("BAN_HOURS contains invalid duration %d", h)
		}
	}

	switch cfg.BackupBackend {
	case "file":
	case "redis":
		if cfg.RedisURL == "" {
			return errors.Wrap(ErrMissingSetting, "REDIS_URL (BACKUP_BACKEND=redis)")
		}
	default:
		return errors.Errorf("unknown BACKUP_BACKEND %q", cfg.BackupBackend)
	}
	return nil
}

// Durations derived from the second-based settings.
func RateLimit(cfg model.Config) time.Duration {
	return time.Duration(cfg.RateLimitSeconds) * time.Second
}

func PublishInterval(cfg model.Config) time.Duration {
	return time.Duration(cfg.PublishIntervalSeconds) * time.Second
}

func BackupInterval(cfg model.Config) time.Duration {
	return time.Duration(cfg.BackupIntervalSeconds) * time.Second
}

func GatewayTimeout(cfg model.Config) time.Duration {
	return time.Duration(cfg.GatewayTimeoutSeconds) * time.Second
}

func ReplySessionTTL(cfg model.Config) time.Duration {
	return time.Duration(cfg.ReplySessionTTLSeconds) * time.Second
}
