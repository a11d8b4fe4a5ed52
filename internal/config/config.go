package config

import (
	"github.com/blues/lms/internal/logger"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Webhook  WebhookConfig  `mapstructure:"webhook"`
	Task     TaskConfig     `mapstructure:"task"`
	Log      LogConfig      `mapstructure:"log"`
}

type ServerConfig struct {
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

// RedisConfig 分布式任务租约用的 Redis 配置
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// WebhookConfig 外发通知配置
type WebhookConfig struct {
	TimeoutSeconds     int `mapstructure:"timeout_seconds"`      // 单次尝试超时（秒）
	MaxAttempts        int `mapstructure:"max_attempts"`         // 最大尝试次数
	BackoffBaseSeconds int `mapstructure:"backoff_base_seconds"` // 退避基数，按 4^n 递增
	StaleMinutes       int `mapstructure:"stale_minutes"`        // pending 记录多久算滞留
	ResumeMinutes      int `mapstructure:"resume_minutes"`       // 滞留补发任务周期，0 表示关闭
	NotifyPoolSize     int `mapstructure:"notify_pool_size"`     // 广播协程池大小
}

// TaskConfig 定时任务配置
type TaskConfig struct {
	SettlementIntervalHours int  `mapstructure:"settlement_interval_hours"` // 结算周期（小时）
	TierIntervalHours       int  `mapstructure:"tier_interval_hours"`       // 分级评估周期（小时）
	StaleProcessingMinutes  int  `mapstructure:"stale_processing_minutes"`  // processing 批次多久算僵死
	DistributedLock         bool `mapstructure:"distributed_lock"`          // 多实例部署时启用 Redis 租约
	LockTTLMinutes          int  `mapstructure:"lock_ttl_minutes"`          // 租约时长（分钟）
}

type LogConfig struct {
	Level  string `mapstructure:"level"`  // 日志级别: debug, info, warn, error, fatal
	Output string `mapstructure:"output"` // 输出目标: stdout, file
	File   string `mapstructure:"file"`   // 日志文件路径（当output为file时使用）
}

func Load() *Config {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("/etc/lms")

	// 设置默认值
	viper.SetDefault("server.port", "8080")
	viper.SetDefault("server.mode", "debug")
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.user", "postgres")
	viper.SetDefault("database.password", "")
	viper.SetDefault("database.dbname", "lms")
	viper.SetDefault("database.sslmode", "disable")
	viper.SetDefault("redis.addr", "localhost:6379")
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("webhook.timeout_seconds", 10)
	viper.SetDefault("webhook.max_attempts", 3)
	viper.SetDefault("webhook.backoff_base_seconds", 1)
	viper.SetDefault("webhook.stale_minutes", 15)
	viper.SetDefault("webhook.resume_minutes", 10)
	viper.SetDefault("webhook.notify_pool_size", 8)
	viper.SetDefault("task.settlement_interval_hours", 24)
	viper.SetDefault("task.tier_interval_hours", 720)
	viper.SetDefault("task.stale_processing_minutes", 30)
	viper.SetDefault("task.distributed_lock", false)
	viper.SetDefault("task.lock_ttl_minutes", 10)
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.output", "stdout")
	viper.SetDefault("log.file", "logs/app.log")

	// 自动读取环境变量
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		logger.Warn("Warning: Could not read config file: %v", err)
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		logger.Fatal("Unable to decode config into struct: %v", err)
	}

	return &config
}
