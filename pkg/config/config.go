package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server       ServerConfig       `mapstructure:"server"`
	Gateway      GatewayConfig      `mapstructure:"gateway"`
	GRPC         GRPCConfig         `mapstructure:"grpc"`
	Backend      BackendConfig      `mapstructure:"backend"`
	Etcd         EtcdConfig         `mapstructure:"etcd"`
	Redis        RedisConfig        `mapstructure:"redis"`
	MongoDB      MongoDBConfig      `mapstructure:"mongodb"`
	RabbitMQ     RabbitMQConfig     `mapstructure:"rabbitmq"`
	Cache        CacheConfig        `mapstructure:"cache"`
	Auth         AuthConfig         `mapstructure:"auth"`
	Payment      PaymentConfig      `mapstructure:"payment"`
	Connectivity ConnectivityConfig `mapstructure:"connectivity"`
	Landing      LandingConfig      `mapstructure:"landing"`
	Log          LogConfig          `mapstructure:"log"`
}

type ServerConfig struct {
	Name string `mapstructure:"name"`
	Host string `mapstructure:"host"`
}

type GatewayConfig struct {
	Port int    `mapstructure:"port"`
	Host string `mapstructure:"host"`
}

type GRPCConfig struct {
	Port int    `mapstructure:"port"`
	Host string `mapstructure:"host"`
}

// BackendConfig selects the table data API implementation.
type BackendConfig struct {
	Driver   string      `mapstructure:"driver"` // postgres, mysql or memory
	Postgres string      `mapstructure:"postgres_dsn"`
	MySQL    MySQLConfig `mapstructure:"mysql"`
}

type MySQLConfig struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	Username     string `mapstructure:"username"`
	Password     string `mapstructure:"password"`
	Database     string `mapstructure:"database"`
	MaxIdleConns int    `mapstructure:"max_idle_conns"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
}

type EtcdConfig struct {
	Endpoints   []string      `mapstructure:"endpoints"`
	DialTimeout time.Duration `mapstructure:"dial_timeout"`
	Prefix      string        `mapstructure:"prefix"`
}

type RedisConfig struct {
	Addr      string `mapstructure:"addr"`
	Password  string `mapstructure:"password"`
	DB        int    `mapstructure:"db"`
	PoolSize  int    `mapstructure:"pool_size"`
	KeyPrefix string `mapstructure:"key_prefix"`
}

type MongoDBConfig struct {
	URI        string `mapstructure:"uri"`
	Database   string `mapstructure:"database"`
	Collection string `mapstructure:"collection"`
}

type RabbitMQConfig struct {
	URL      string `mapstructure:"url"`
	Exchange string `mapstructure:"exchange"`
}

type CacheConfig struct {
	Driver string        `mapstructure:"driver"` // memory or redis
	TTL    time.Duration `mapstructure:"ttl"`
}

type AuthConfig struct {
	SessionTTL     time.Duration     `mapstructure:"session_ttl"`
	Sessions       string            `mapstructure:"sessions"` // memory or redis
	RedirectURL    string            `mapstructure:"redirect_url"`
	OAuthProviders map[string]string `mapstructure:"oauth_providers"`
}

type PaymentConfig struct {
	TokenPrefix string `mapstructure:"token_prefix"`
}

type ConnectivityConfig struct {
	Interval time.Duration `mapstructure:"interval"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// LandingConfig drives the featured kitchens preview on the landing page.
type LandingConfig struct {
	FeaturedKitchens []string `mapstructure:"featured_kitchens"`
	PerKitchenCap    int      `mapstructure:"per_kitchen_cap"`
}

type LogConfig struct {
	Level       string   `mapstructure:"level"`
	Encoding    string   `mapstructure:"encoding"`
	OutputPaths []string `mapstructure:"output_paths"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.name", "homecook")
	v.SetDefault("server.host", "127.0.0.1")
	v.SetDefault("gateway.host", "0.0.0.0")
	v.SetDefault("gateway.port", 8080)
	v.SetDefault("grpc.host", "0.0.0.0")
	v.SetDefault("grpc.port", 50051)
	v.SetDefault("backend.driver", "memory")
	v.SetDefault("etcd.dial_timeout", 5*time.Second)
	v.SetDefault("etcd.prefix", "/services/")
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.pool_size", 10)
	v.SetDefault("redis.key_prefix", "homecook:")
	v.SetDefault("mongodb.database", "homecook")
	v.SetDefault("mongodb.collection", "audit_logs")
	v.SetDefault("rabbitmq.exchange", "homecook.orders")
	v.SetDefault("cache.driver", "memory")
	v.SetDefault("cache.ttl", 10*time.Minute)
	v.SetDefault("auth.session_ttl", 24*time.Hour)
	v.SetDefault("auth.sessions", "memory")
	v.SetDefault("payment.token_prefix", "pm_")
	v.SetDefault("connectivity.interval", 10*time.Second)
	v.SetDefault("connectivity.timeout", 3*time.Second)
	v.SetDefault("landing.per_kitchen_cap", 3)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.encoding", "json")
	v.SetDefault("log.output_paths", []string{"stdout"})
}

func Load(configPath string) (*Config, error) {
	_ = godotenv.Load() // .env is optional

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("HOMECOOK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		v.SetConfigType("yaml")

		// Read config file
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func (c *Config) Validate() error {
	switch c.Backend.Driver {
	case "postgres", "mysql", "memory":
	default:
		return fmt.Errorf("unknown backend driver %q", c.Backend.Driver)
	}
	switch c.Cache.Driver {
	case "memory", "redis":
	default:
		return fmt.Errorf("unknown cache driver %q", c.Cache.Driver)
	}
	switch c.Auth.Sessions {
	case "memory", "redis":
	default:
		return fmt.Errorf("unknown session store %q", c.Auth.Sessions)
	}
	if c.Landing.PerKitchenCap <= 0 {
		return fmt.Errorf("landing.per_kitchen_cap must be positive, got %d", c.Landing.PerKitchenCap)
	}
	return nil
}

func (c *MySQLConfig) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		c.Username, c.Password, c.Host, c.Port, c.Database)
}

func (c *GatewayConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func (c *GRPCConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
