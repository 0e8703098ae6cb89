package settings

import (
	"fmt"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

type AppConfig struct {
	Name    string `mapstructure:"name"`
	Mode    string `mapstructure:"mode"`
	Version string `mapstructure:"version"`
	Port    int    `mapstructure:"port"`
	// Locale selects the validator message language ("en" or "tr").
	Locale         string        `mapstructure:"locale"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

type LogConfig struct {
	Level      string `mapstructure:"level"`
	FileName   string `mapstructure:"file_name"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"`
}

// DatabaseConfig selects the relational backend. Driver is one of
// "mysql", "postgres" or "sqlite"; for sqlite DbName is the file path.
type DatabaseConfig struct {
	Driver       string `mapstructure:"driver"`
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	User         string `mapstructure:"user"`
	Password     string `mapstructure:"password"`
	DbName       string `mapstructure:"db_name"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
	MaxIdleConns int    `mapstructure:"max_idle_conns"`
	LogLevel     string `mapstructure:"log_level"`
	AutoMigrate  bool   `mapstructure:"auto_migrate"`
	Metrics      bool   `mapstructure:"metrics"`
	Tracing      bool   `mapstructure:"tracing"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db_name"`
	PoolSize int    `mapstructure:"pool_size"`
}

type RateLimitConfig struct {
	FillInterval string `mapstructure:"fill_interval"`
	Capacity     int64  `mapstructure:"capacity"`
}

type SnowflakeConfig struct {
	StartTime string `mapstructure:"start_time"`
	MachineID int64  `mapstructure:"machine_id"`
}

// JWTConfig controls session tokens. SessionTTL defaults to seven days.
type JWTConfig struct {
	Secret     string        `mapstructure:"secret"`
	Issuer     string        `mapstructure:"issuer"`
	SessionTTL time.Duration `mapstructure:"session_ttl"`
	// StrictSession rejects requests when the session registry cannot be reached.
	StrictSession bool `mapstructure:"strict_session"`
}

type ForumConfig struct {
	ReviewsCategory string `mapstructure:"reviews_category"`
	DefaultAvatar   string `mapstructure:"default_avatar"`
	// FanOut bounds concurrent secondary lookups in one aggregation step.
	FanOut int `mapstructure:"fan_out"`
}

type StorageConfig struct {
	Root          string `mapstructure:"root"`
	Bucket        string `mapstructure:"bucket"`
	PublicBaseURL string `mapstructure:"public_base_url"`
	MaxAvatarSize int64  `mapstructure:"max_avatar_size"`
}

type ElasticsearchConfig struct {
	Enabled   bool     `mapstructure:"enabled"`
	Addresses []string `mapstructure:"addresses"`
	Username  string   `mapstructure:"username"`
	Password  string   `mapstructure:"password"`
	Index     string   `mapstructure:"index"`
}

type RabbitMQConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	URL      string `mapstructure:"url"`
	Exchange string `mapstructure:"exchange"`
	Queue    string `mapstructure:"queue"`
}

type TracingConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	Endpoint    string `mapstructure:"endpoint"`
	ServiceName string `mapstructure:"service_name"`
}

type AssistantConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	BaseURL string        `mapstructure:"base_url"`
	APIKey  string        `mapstructure:"api_key"`
	Model   string        `mapstructure:"model"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type CacheConfig struct {
	CapacityMB int           `mapstructure:"capacity_mb"`
	L1TTL      time.Duration `mapstructure:"l1_ttl"`
	L2TTL      time.Duration `mapstructure:"l2_ttl"`
}

// Sub-configs are pointers so a missing section stays nil instead of
// silently becoming a zero value.
type Config struct {
	App           *AppConfig           `mapstructure:"app"`
	Log           *LogConfig           `mapstructure:"log"`
	Database      *DatabaseConfig      `mapstructure:"database"`
	Redis         *RedisConfig         `mapstructure:"redis"`
	Snowflake     *SnowflakeConfig     `mapstructure:"snowflake"`
	RateLimit     *RateLimitConfig     `mapstructure:"ratelimit"`
	JWT           *JWTConfig           `mapstructure:"jwt"`
	Forum         *ForumConfig         `mapstructure:"forum"`
	Storage       *StorageConfig       `mapstructure:"storage"`
	Elasticsearch *ElasticsearchConfig `mapstructure:"elasticsearch"`
	RabbitMQ      *RabbitMQConfig      `mapstructure:"rabbitmq"`
	Tracing       *TracingConfig       `mapstructure:"tracing"`
	Assistant     *AssistantConfig     `mapstructure:"assistant"`
	Cache         *CacheConfig         `mapstructure:"cache"`
}

var Conf = new(Config)

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.mode", "debug")
	v.SetDefault("app.port", 8080)
	v.SetDefault("app.locale", "en")
	v.SetDefault("app.request_timeout", "10s")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.file_name", "./logs/gameforum.log")
	v.SetDefault("log.max_size", 200)
	v.SetDefault("log.max_backups", 7)
	v.SetDefault("log.max_age", 30)
	v.SetDefault("snowflake.start_time", "2024-01-01")
	v.SetDefault("snowflake.machine_id", 1)
	v.SetDefault("database.driver", "mysql")
	v.SetDefault("database.max_open_conns", 100)
	v.SetDefault("database.max_idle_conns", 10)
	v.SetDefault("database.log_level", "warn")
	v.SetDefault("ratelimit.fill_interval", "10ms")
	v.SetDefault("ratelimit.capacity", 200)
	v.SetDefault("jwt.issuer", "gameforum")
	v.SetDefault("jwt.session_ttl", "168h")
	v.SetDefault("forum.reviews_category", "İncelemeler")
	v.SetDefault("forum.default_avatar", "https://ui-avatars.com/api/?name=%s&background=random")
	v.SetDefault("forum.fan_out", 8)
	v.SetDefault("storage.root", "./data")
	v.SetDefault("storage.bucket", "avatars")
	v.SetDefault("storage.public_base_url", "/storage")
	v.SetDefault("storage.max_avatar_size", 2<<20)
	v.SetDefault("elasticsearch.index", "threads")
	v.SetDefault("rabbitmq.exchange", "gameforum.events")
	v.SetDefault("rabbitmq.queue", "gameforum.search-indexer")
	v.SetDefault("tracing.service_name", "gameforum")
	v.SetDefault("assistant.model", "gpt-4o-mini")
	v.SetDefault("assistant.timeout", "20s")
	v.SetDefault("cache.capacity_mb", 64)
	v.SetDefault("cache.l1_ttl", "1m")
	v.SetDefault("cache.l2_ttl", "10m")
}

// Load reads filePath into a fresh Config without touching Conf.
func Load(filePath string) (*Config, *viper.Viper, error) {
	v := viper.New()
	setDefaults(v)
	v.SetConfigFile(filePath)
	v.SetEnvPrefix("GAMEFORUM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, nil, fmt.Errorf("viper.ReadInConfig() failed: %w", err)
	}
	cfg := new(Config)
	if err := v.Unmarshal(cfg); err != nil {
		return nil, nil, fmt.Errorf("viper.Unmarshal() failed: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	return cfg, v, nil
}

// Validate rejects configurations the service cannot start with.
func (c *Config) Validate() error {
	if c.App == nil || c.Database == nil || c.JWT == nil {
		return fmt.Errorf("settings: app, database and jwt sections are required")
	}
	if len(c.JWT.Secret) < 16 {
		return fmt.Errorf("settings: jwt.secret must be at least 16 bytes")
	}
	switch c.Database.Driver {
	case "mysql", "postgres", "sqlite":
	default:
		return fmt.Errorf("settings: unknown database.driver %q", c.Database.Driver)
	}
	return nil
}

// Init loads the config into Conf and keeps it in sync with the file.
func Init(filePath string) error {
	cfg, v, err := Load(filePath)
	if err != nil {
		return err
	}
	*Conf = *cfg

	v.WatchConfig()
	v.OnConfigChange(func(in fsnotify.Event) {
		fmt.Printf("config file changed: %s\n", in.Name)
		next := new(Config)
		if err := v.Unmarshal(next); err != nil {
			fmt.Printf("reload config failed: %v\n", err)
			return
		}
		if err := next.Validate(); err != nil {
			fmt.Printf("reload config rejected: %v\n", err)
			return
		}
		*Conf = *next
	})
	return nil
}
