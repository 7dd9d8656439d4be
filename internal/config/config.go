package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// 数据库驱动
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config 应用配置
type Config struct {
	App       AppConfig
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Synthesis SynthesisConfig
	Log       LogConfig
}

// AppConfig 应用配置
type AppConfig struct {
	Name        string
	Environment string
	Version     string
	Debug       bool
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Host           string
	Port           int
	Mode           string
	ReadTimeout    int
	WriteTimeout   int      // 需大于 synthesis.timeout，生成请求同步等待子进程
	MaxUploadSize  int64    // 上传文件大小上限（字节）
	AllowedOrigins []string // CORS 允许的来源，为空时允许所有来源
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Driver       string // postgres, sqlite
	Host         string
	Port         int
	User         string
	Password     string
	DBName       string
	SSLMode      string
	Path         string // sqlite 文件路径
	MaxOpenConns int
	MaxIdleConns int
	MaxLifetime  int
}

// RedisConfig Redis配置
type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
	TTL      time.Duration // 终态生成结果缓存时间
}

// SynthesisConfig 合成进程配置
type SynthesisConfig struct {
	Command       string
	Args          []string // 位于输入 JSON 之前的固定参数，如脚本路径
	WorkDir       string
	Timeout       time.Duration
	MaxConcurrent int64 // 同时运行的合成进程上限
}

// LogConfig 日志配置
type LogConfig struct {
	Level  string
	Format string // json, console
}

// Load 加载配置，path 为空或文件不存在时仅使用默认值和环境变量
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed to read config: %w", err)
			}
		}
	}

	// 环境变量
	v.SetEnvPrefix("DATAMIMIC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate 校验配置
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case DriverPostgres, DriverSQLite:
	default:
		return fmt.Errorf("invalid database.driver %q", c.Database.Driver)
	}
	if strings.TrimSpace(c.Synthesis.Command) == "" {
		return errors.New("synthesis.command is required")
	}
	if c.Synthesis.Timeout < 0 {
		return errors.New("synthesis.timeout must not be negative")
	}
	if c.Server.MaxUploadSize <= 0 {
		return errors.New("server.maxUploadSize must be positive")
	}
	return nil
}

// GetDSN 获取数据库连接字符串
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

// GetSQLiteDSN 获取 sqlite 连接字符串，开启外键约束
func (c *DatabaseConfig) GetSQLiteDSN() string {
	path := c.Path
	if path == "" {
		path = "datamimic.db"
	}
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_pragma=foreign_keys(1)"
}

// GetAddr 获取服务器地址
func (c *ServerConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// GetAddr 获取 Redis 地址
func (c *RedisConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func setDefaults(v *viper.Viper) {
	// App
	v.SetDefault("app.name", "datamimic")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.version", "1.0.0")
	v.SetDefault("app.debug", false)

	// Server
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 5000)
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.readTimeout", 60)
	v.SetDefault("server.writeTimeout", 900)
	v.SetDefault("server.maxUploadSize", 10<<20)

	// Database
	v.SetDefault("database.driver", DriverPostgres)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "")
	v.SetDefault("database.dbname", "datamimic")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.path", "datamimic.db")
	v.SetDefault("database.maxOpenConns", 25)
	v.SetDefault("database.maxIdleConns", 5)
	v.SetDefault("database.maxLifetime", 300)

	// Redis
	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.ttl", "1h")

	// Synthesis
	v.SetDefault("synthesis.command", "python3")
	v.SetDefault("synthesis.args", []string{"python_scripts/generate_synthetic.py"})
	v.SetDefault("synthesis.workDir", "")
	v.SetDefault("synthesis.timeout", "10m")
	v.SetDefault("synthesis.maxConcurrent", 4)

	// Log
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}
