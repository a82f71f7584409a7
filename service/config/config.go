/*
 * @module service/config/config
 * @description 运行配置加载模块，从环境变量（及可选的 .env 文件）读取服务配置
 * @architecture 分层架构 - 基础设施层
 * @stateFlow 应用启动时加载一次，之后只读
 * @rules 所有配置项都有默认值，缺省时服务仍可在本地启动
 * @dependencies github.com/joho/godotenv, github.com/spf13/cast
 */

package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cast"
)

const (
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
	DriverSQLite   = "sqlite"
)

// Config 服务配置
type Config struct {
	ListenPort  int
	BaseContext string
	LogLevel    string

	Database DatabaseConfig
	Sources  SourcesConfig
	Summary  SummaryConfig
	Refresh  RefreshConfig
	Redis    RedisConfig
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Driver   string
	URL      string
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
	PoolSize int
}

// SourcesConfig 外部数据源配置
type SourcesConfig struct {
	CountriesURL string
	RatesURL     string
	Timeout      time.Duration
}

// SummaryConfig 汇总图片配置
type SummaryConfig struct {
	CacheDir string
}

// RefreshConfig 定时刷新配置，Cron 为空时不启用
type RefreshConfig struct {
	Cron    string
	LockTTL time.Duration
}

// RedisConfig Redis配置，Host 为空时不启用分布式锁
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// Enabled 是否配置了Redis
func (c RedisConfig) Enabled() bool {
	return c.Host != ""
}

// Addr Redis地址
func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// Load 加载配置
// 如果当前目录存在 .env 文件则先加载，已存在的环境变量不会被覆盖
func Load() *Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("加载 .env 文件失败", "error", err)
	}

	return &Config{
		ListenPort:  cast.ToInt(getEnvWithDefault("LISTEN_PORT", "3000")),
		BaseContext: os.Getenv("BASE_CONTEXT"),
		LogLevel:    getEnvWithDefault("LOG_LEVEL", "info"),
		Database: DatabaseConfig{
			Driver:   strings.ToLower(getEnvWithDefault("DB_DRIVER", DriverPostgres)),
			URL:      os.Getenv("DATABASE_URL"),
			Host:     getEnvWithDefault("DB_HOST", "localhost"),
			Port:     os.Getenv("DB_PORT"),
			User:     getEnvWithDefault("DB_USER", "postgres"),
			Password: os.Getenv("DB_PASSWORD"),
			Name:     getEnvWithDefault("DB_NAME", "countries"),
			SSLMode:  getEnvWithDefault("DB_SSLMODE", "disable"),
			PoolSize: cast.ToInt(getEnvWithDefault("DB_POOL_SIZE", "5")),
		},
		Sources: SourcesConfig{
			CountriesURL: getEnvWithDefault("EXTERNAL_COUNTRIES_API",
				"https://restcountries.com/v2/all?fields=name,capital,region,population,flag,currencies"),
			RatesURL: getEnvWithDefault("EXTERNAL_RATES_API", "https://open.er-api.com/v6/latest/USD"),
			Timeout:  getDurationWithDefault("FETCH_TIMEOUT", 15*time.Second),
		},
		Summary: SummaryConfig{
			CacheDir: getEnvWithDefault("CACHE_DIR", "cache"),
		},
		Refresh: RefreshConfig{
			Cron:    os.Getenv("REFRESH_CRON"),
			LockTTL: getDurationWithDefault("REFRESH_LOCK_TTL", 10*time.Minute),
		},
		Redis: RedisConfig{
			Host:     os.Getenv("REDIS_HOST"),
			Port:     getEnvWithDefault("REDIS_PORT", "6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       cast.ToInt(getEnvWithDefault("REDIS_DB", "0")),
		},
	}
}

// getEnvWithDefault 获取环境变量，如果不存在则返回默认值
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getDurationWithDefault 解析时长配置，支持 "15s" 形式和纯秒数
func getDurationWithDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if seconds, err := cast.ToIntE(value); err == nil {
		return time.Duration(seconds) * time.Second
	}

	d, err := cast.ToDurationE(value)
	if err != nil || d <= 0 {
		slog.Warn("时长配置无效，使用默认值", "key", key, "value", value, "default", defaultValue)
		return defaultValue
	}
	return d
}
