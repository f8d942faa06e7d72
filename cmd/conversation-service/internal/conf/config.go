package conf

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/hawkymisc/VoiceDialogueApp-sub001/pkg/config"
)

// Config 应用配置
type Config struct {
	Server        ServerConfig        `mapstructure:"server"`
	Storage       StorageConfig       `mapstructure:"storage"`
	Redis         RedisConfig         `mapstructure:"redis"`
	Database      DatabaseConfig      `mapstructure:"database"`
	Summarizer    SummarizerConfig    `mapstructure:"summarizer"`
	Kafka         KafkaConfig         `mapstructure:"kafka"`
	Archive       ArchiveConfig       `mapstructure:"archive"`
	Observability ObservabilityConfig `mapstructure:"observability"`
	Characters    CharactersConfig    `mapstructure:"characters"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	HTTPAddr        string        `mapstructure:"http_addr"`
	MetricsAddr     string        `mapstructure:"metrics_addr"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// StorageConfig 键值存储后端
type StorageConfig struct {
	// Driver memory / redis / postgres
	Driver    string `mapstructure:"driver"`
	KeyPrefix string `mapstructure:"key_prefix"`
}

// RedisConfig Redis 配置
type RedisConfig struct {
	Addr         string        `mapstructure:"addr"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	PoolSize     int           `mapstructure:"pool_size"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	DBName          string        `mapstructure:"dbname"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// SummarizerConfig 摘要服务配置
type SummarizerConfig struct {
	Enabled    bool          `mapstructure:"enabled"`
	BaseURL    string        `mapstructure:"base_url"`
	Timeout    time.Duration `mapstructure:"timeout"`
	MaxRetries int           `mapstructure:"max_retries"`
	RetryDelay time.Duration `mapstructure:"retry_delay"`
}

// KafkaConfig 事件发布配置
type KafkaConfig struct {
	Enabled  bool     `mapstructure:"enabled"`
	Brokers  []string `mapstructure:"brokers"`
	Topic    string   `mapstructure:"topic"`
	RetryMax int      `mapstructure:"retry_max"`
}

// ArchiveConfig MinIO 归档配置
type ArchiveConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Bucket    string `mapstructure:"bucket"`
	UseSSL    bool   `mapstructure:"use_ssl"`
	Prefix    string `mapstructure:"prefix"`
}

// ObservabilityConfig 可观测性配置
type ObservabilityConfig struct {
	OTELEndpoint   string  `mapstructure:"otel_endpoint"`
	ServiceName    string  `mapstructure:"service_name"`
	ServiceVersion string  `mapstructure:"service_version"`
	Environment    string  `mapstructure:"environment"`
	EnableTrace    bool    `mapstructure:"enable_trace"`
	SamplingRate   float64 `mapstructure:"sampling_rate"`
	LogLevel       string  `mapstructure:"log_level"`
	LogFormat      string  `mapstructure:"log_format"`
}

// CharactersConfig 角色目录
type CharactersConfig struct {
	// File YAML 角色目录文件，为空时标题直接使用角色ID
	File string `mapstructure:"file"`
}

// setDefaults 设置默认值
func setDefaults(m *config.Manager) {
	m.SetDefault("server.http_addr", ":8080")
	m.SetDefault("server.metrics_addr", ":9090")
	m.SetDefault("server.request_timeout", 30*time.Second)
	m.SetDefault("server.shutdown_timeout", 30*time.Second)

	m.SetDefault("storage.driver", "memory")
	m.SetDefault("storage.key_prefix", "dialogue")

	m.SetDefault("redis.addr", "localhost:6379")
	m.SetDefault("redis.pool_size", 10)

	m.SetDefault("database.host", "localhost")
	m.SetDefault("database.port", 5432)
	m.SetDefault("database.dbname", "dialogue")
	m.SetDefault("database.user", "postgres")
	m.SetDefault("database.sslmode", "disable")

	m.SetDefault("summarizer.timeout", 30*time.Second)
	m.SetDefault("summarizer.max_retries", 2)
	m.SetDefault("summarizer.retry_delay", 200*time.Millisecond)

	m.SetDefault("kafka.topic", "conversation.events")
	m.SetDefault("kafka.retry_max", 3)

	m.SetDefault("archive.bucket", "conversation-archives")
	m.SetDefault("archive.prefix", "exports")

	m.SetDefault("observability.service_name", "conversation-service")
	m.SetDefault("observability.service_version", "1.0.0")
	m.SetDefault("observability.environment", "development")
	m.SetDefault("observability.otel_endpoint", "localhost:4317")
	m.SetDefault("observability.sampling_rate", 1.0)
	m.SetDefault("observability.log_level", "info")
	m.SetDefault("observability.log_format", "json")
}

// Load 从配置管理器解析配置
func Load(m *config.Manager) (*Config, error) {
	setDefaults(m)

	var c Config
	if err := m.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	// 从环境变量覆盖敏感配置
	if password := os.Getenv("DB_PASSWORD"); password != "" {
		c.Database.Password = password
	}
	if password := os.Getenv("REDIS_PASSWORD"); password != "" {
		c.Redis.Password = password
	}
	if secret := os.Getenv("MINIO_SECRET_KEY"); secret != "" {
		c.Archive.SecretKey = secret
	}
	if endpoint := os.Getenv("OTEL_ENDPOINT"); endpoint != "" {
		c.Observability.OTELEndpoint = endpoint
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate 校验配置
func (c *Config) Validate() error {
	c.Storage.Driver = strings.ToLower(c.Storage.Driver)
	switch c.Storage.Driver {
	case "memory", "redis", "postgres":
	default:
		return fmt.Errorf("unsupported storage driver: %q", c.Storage.Driver)
	}
	if c.Summarizer.Enabled && c.Summarizer.BaseURL == "" {
		return fmt.Errorf("summarizer.base_url is required when summarizer is enabled")
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers is required when kafka is enabled")
	}
	if c.Archive.Enabled && c.Archive.Endpoint == "" {
		return fmt.Errorf("archive.endpoint is required when archive is enabled")
	}
	return nil
}
