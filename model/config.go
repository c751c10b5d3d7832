package model

// Config 对应于 config.yaml 的顶级结构
type Config struct {
	Token               string `mapstructure:"TOKEN"`
	ModerationChannelID string `mapstructure:"MODERATION_CHANNEL_ID"`
	PublicChannelID     string `mapstructure:"PUBLIC_CHANNEL_ID"`

	RateLimitSeconds       int   `mapstructure:"RATE_LIMIT_SECONDS"`
	PublishIntervalSeconds int   `mapstructure:"PUBLISH_INTERVAL_SECONDS"`
	BanHours               []int `mapstructure:"BAN_HOURS"`

	BackupIntervalSeconds int    `mapstructure:"BACKUP_INTERVAL_SECONDS"`
	BackupBackend         string `mapstructure:"BACKUP_BACKEND"`
	BackupFile            string `mapstructure:"BACKUP_FILE"`
	RedisURL              string `mapstructure:"REDIS_URL"`
	BackupRedisKey        string `mapstructure:"BACKUP_REDIS_KEY"`

	AuditDB    string `mapstructure:"AUDIT_DB"`
	HealthAddr string `mapstructure:"HEALTH_ADDR"`

	GatewayTimeoutSeconds  int `mapstructure:"GATEWAY_TIMEOUT_SECONDS"`
	ReplySessionTTLSeconds int `mapstructure:"REPLY_SESSION_TTL_SECONDS"`
	PollDurationHours      int `mapstructure:"POLL_DURATION_HOURS"`

	LogLevel  string `mapstructure:"LOG_LEVEL"`
	LogFormat string `mapstructure:"LOG_FORMAT"`
}
