package config

import "time"

type DBConfig struct {
	URL             string        `mapstructure:"url" validate:"required"`
	MaxOpenConns    int32         `mapstructure:"max_open_conns"`
	MinIdleConns    int32         `mapstructure:"min_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
	HealthTimeout   time.Duration `mapstructure:"health_timeout"`
}

type RedisConfig struct {
	URL string `mapstructure:"url" validate:"required"`
}

type CheckConfig struct {
	HTTPTimeout            time.Duration `mapstructure:"http_timeout" validate:"required"`
	SSLExpiryThresholdDays int           `mapstructure:"ssl_expiry_threshold_days" validate:"gte=1"`
	DispatchBuffer         int           `mapstructure:"dispatch_buffer" validate:"gte=1"`
}

type RetentionConfig struct {
	EventDays   int `mapstructure:"event_days" validate:"gte=1"`
	LatencyDays int `mapstructure:"latency_days" validate:"gte=1"`
}

type SMTPConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host" validate:"required_if=Enabled true"`
	Port     int    `mapstructure:"port" validate:"required_if=Enabled true"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from" validate:"required_if=Enabled true,omitempty,email"`
	To       string `mapstructure:"to" validate:"required_if=Enabled true,omitempty,email"`
}

type SlackConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	WebhookURL string `mapstructure:"webhook_url" validate:"required_if=Enabled true,omitempty,url"`
}

type TelegramConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Token   string `mapstructure:"token" validate:"required_if=Enabled true"`
	ChatID  string `mapstructure:"chat_id" validate:"required_if=Enabled true"`
}

type PagerdutyConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	RoutingKey string `mapstructure:"routing_key"`
}

type AMQPConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	BrokerLink   string `mapstructure:"broker_link" validate:"required_if=Enabled true"`
	ExchangeName string `mapstructure:"exchange_name" validate:"required_if=Enabled true"`
	ExchangeType string `mapstructure:"exchange_type"`
	RoutingKey   string `mapstructure:"routing_key"`
}

type NotifierConfig struct {
	SMTP      SMTPConfig      `mapstructure:"smtp"`
	Slack     SlackConfig     `mapstructure:"slack"`
	Telegram  TelegramConfig  `mapstructure:"telegram"`
	Pagerduty PagerdutyConfig `mapstructure:"pagerduty"`
	AMQP      AMQPConfig      `mapstructure:"amqp"`
}

type LogConfig struct {
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

type Config struct {
	Env         string          `mapstructure:"env"`
	ServiceName string          `mapstructure:"service_name"`
	Port        int             `mapstructure:"port" validate:"gte=1,lte=65535"`
	DB          DBConfig        `mapstructure:"db"`
	Redis       RedisConfig     `mapstructure:"redis"`
	Checks      CheckConfig     `mapstructure:"checks"`
	Retention   RetentionConfig `mapstructure:"retention"`
	Notifiers   NotifierConfig  `mapstructure:"notifiers"`
	Log         LogConfig       `mapstructure:"log"`
}
