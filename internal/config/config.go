package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/blues/memberadmin/internal/logger"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Auth       AuthConfig       `mapstructure:"auth"`
	Settlement SettlementConfig `mapstructure:"settlement"`
	Notify     NotifyConfig     `mapstructure:"notify"`
	Scheduler  SchedulerConfig  `mapstructure:"scheduler"`
	App        AppConfig        `mapstructure:"app"`
	Log        LogConfig        `mapstructure:"log"`
}

type ServerConfig struct {
	Port         string   `mapstructure:"port"`
	Mode         string   `mapstructure:"mode"`
	AllowOrigins []string `mapstructure:"allow_origins"`
}

// DatabaseConfig 数据库配置, Driver 决定使用的后端 (postgres, mysql, sqlite)
type DatabaseConfig struct {
	Driver   string `mapstructure:"driver"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
	Path     string `mapstructure:"path"` // sqlite 文件路径
	LogLevel string `mapstructure:"log_level"`
}

// DSN 根据驱动生成连接串
func (d DatabaseConfig) DSN() string {
	switch d.Driver {
	case "mysql":
		return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=true&loc=Local",
			d.User, d.Password, d.Host, d.Port, d.DBName)
	case "sqlite":
		return d.Path
	default:
		return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode)
	}
}

// RedisConfig Addr 为空时不启用缓存和分布式锁
type RedisConfig struct {
	Addr      string `mapstructure:"addr"`
	Password  string `mapstructure:"password"`
	DB        int    `mapstructure:"db"`
	PeriodTTL int    `mapstructure:"period_ttl"` // 秒
}

func (r RedisConfig) Enabled() bool {
	return r.Addr != ""
}

type AuthConfig struct {
	Secret        string `mapstructure:"secret"`
	TokenHours    int    `mapstructure:"token_hours"`
	AdminUsername string `mapstructure:"admin_username"`
	AdminPassword string `mapstructure:"admin_password"`
}

// ErrWeakSecret 签名密钥为空或仍是示例值
var ErrWeakSecret = errors.New("auth.secret must be set to a private value")

// minReleaseSecretLen release 模式下密钥最短长度
const minReleaseSecretLen = 16

// placeholderSecrets 示例配置和旧版本默认值, release 模式拒绝
var placeholderSecrets = map[string]bool{
	"change-me":          true,
	"memberadmin-secret": true,
	"secret":             true,
}

// Validate 检查签名密钥, 任何模式下都不能为空, release 模式还拒绝示例值和过短的密钥
func (a AuthConfig) Validate(mode string) error {
	if strings.TrimSpace(a.Secret) == "" {
		return fmt.Errorf("%w: secret is empty", ErrWeakSecret)
	}
	if mode != "release" {
		return nil
	}
	if placeholderSecrets[a.Secret] {
		return fmt.Errorf("%w: %q is a placeholder", ErrWeakSecret, a.Secret)
	}
	if len(a.Secret) < minReleaseSecretLen {
		return fmt.Errorf("%w: need at least %d characters in release mode", ErrWeakSecret, minReleaseSecretLen)
	}
	return nil
}

// TokenLifespan token 有效期
func (a AuthConfig) TokenLifespan() time.Duration {
	return time.Duration(a.TokenHours) * time.Hour
}

// SettlementConfig 结算配置
type SettlementConfig struct {
	TotalShares     string `mapstructure:"total_shares"` // 总股数, 系统设置中没有时使用
	ConsoleURL      string `mapstructure:"console_url"`  // period 子命令访问的控制台地址
	ResolverTimeout int    `mapstructure:"resolver_timeout"`
}

// NotifyConfig 分红通知配置
type NotifyConfig struct {
	BaseURL   string `mapstructure:"base_url"`
	BotToken  string `mapstructure:"bot_token"`
	ChannelID string `mapstructure:"channel_id"`
	PoolSize  int    `mapstructure:"pool_size"`
	Timeout   int    `mapstructure:"timeout"` // 秒
}

type SchedulerConfig struct {
	Enabled  bool `mapstructure:"enabled"`
	Interval int  `mapstructure:"interval"` // 秒
}

type AppConfig struct {
	PhoneRegion string `mapstructure:"phone_region"`
	ButtonFile  string `mapstructure:"button_file"` // 为空时自定义按钮保存在系统设置表
}

type LogConfig struct {
	Level  string `mapstructure:"level"`  // 日志级别: debug, info, warn, error, fatal
	Output string `mapstructure:"output"` // 输出目标: stdout, file
	File   string `mapstructure:"file"`   // 日志文件路径（当output为file时使用）
}

// Load 加载配置, configFile 为空时按默认路径查找 config.yaml
func Load(configFile string) (*Config, error) {
	// .env 不存在时忽略
	_ = godotenv.Load()

	v := viper.New()
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/memberadmin")
	}

	setDefaults(v)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if configFile != "" {
			return nil, fmt.Errorf("read config %s: %w", configFile, err)
		}
		logger.Warn("Could not read config file, using defaults: %v", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.allow_origins", []string{"*"})
	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "")
	v.SetDefault("database.dbname", "memberadmin")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.path", "memberadmin.db")
	v.SetDefault("database.log_level", "warn")
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.period_ttl", 30)
	v.SetDefault("auth.secret", "")
	v.SetDefault("auth.token_hours", 12)
	v.SetDefault("auth.admin_username", "admin")
	v.SetDefault("auth.admin_password", "")
	v.SetDefault("settlement.total_shares", "10")
	v.SetDefault("settlement.console_url", "http://localhost:8080")
	v.SetDefault("settlement.resolver_timeout", 5)
	v.SetDefault("notify.base_url", "https://api.telegram.org")
	v.SetDefault("notify.bot_token", "")
	v.SetDefault("notify.channel_id", "")
	v.SetDefault("notify.pool_size", 4)
	v.SetDefault("notify.timeout", 10)
	v.SetDefault("scheduler.enabled", true)
	v.SetDefault("scheduler.interval", 300)
	v.SetDefault("app.phone_region", "CN")
	v.SetDefault("app.button_file", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.output", "stdout")
	v.SetDefault("log.file", "logs/app.log")
}

// GetLevel 实现 logger.LogConfig 接口
func (l LogConfig) GetLevel() string {
	return l.Level
}

// GetOutput 实现 logger.LogConfig 接口
func (l LogConfig) GetOutput() string {
	return l.Output
}

// GetFile 实现 logger.LogConfig 接口
func (l LogConfig) GetFile() string {
	return l.File
}
