package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config 全局配置结构体（完全匹配config.yaml）
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`   // 服务器配置
	Database DatabaseConfig `mapstructure:"database"` // 数据库配置
	Query    QueryConfig    `mapstructure:"query"`    // 查询规划参数
	Stats    StatsConfig    `mapstructure:"stats"`    // 基数统计文件
	Admin    AdminConfig    `mapstructure:"admin"`    // 管理员密钥
	Luogu    LuoguConfig    `mapstructure:"luogu"`    // 洛谷奖项同步
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Port int    `mapstructure:"port"` // 服务端口
	Mode string `mapstructure:"mode"` // Gin运行模式：debug/release/test
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"`            // postgres / sqlite
	DSN             string        `mapstructure:"dsn"`               // 连接DSN（sqlite 时为文件路径）
	MaxOpenConns    int           `mapstructure:"max_open_conns"`    // 最大打开连接数
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`    // 最大空闲连接数
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"` // 连接最大存活时间
	AutoMigrate     bool          `mapstructure:"auto_migrate"`      // 启动时是否自动建表（仅 postgres）
}

// QueryConfig 查询规划器参数
type QueryConfig struct {
	MaxParams             int `mapstructure:"max_params"`             // 单条语句绑定参数上限
	VerificationThreshold int `mapstructure:"verification_threshold"` // 候选集小于该值后转为内存校验
	MinStrength           int `mapstructure:"min_strength"`           // 查询强度下限
	MaxRecordFilters      int `mapstructure:"max_record_filters"`     // 单次请求记录过滤器数量上限
	DefaultLimit          int `mapstructure:"default_limit"`          // 默认返回条数
	MaxLimit              int `mapstructure:"max_limit"`              // 返回条数硬上限
	MaxConcurrency        int `mapstructure:"max_concurrency"`        // 分块查询并发数
}

// StatsConfig 基数统计配置
type StatsConfig struct {
	Path            string        `mapstructure:"path"`             // filter_stats.json 路径
	RefreshInterval time.Duration `mapstructure:"refresh_interval"` // 后台重算间隔，0 表示不重算
}

// AdminConfig 可信调用方配置
type AdminConfig struct {
	Secret string `mapstructure:"secret"` // 共享密钥，为空则关闭管理员通道
	Header string `mapstructure:"header"` // 携带密钥的请求头
}

// LuoguConfig 洛谷接口配置
type LuoguConfig struct {
	BaseURL   string `mapstructure:"base_url"`   // API基础地址
	Timeout   int    `mapstructure:"timeout"`    // 请求超时（秒）
	Proxy     string `mapstructure:"proxy"`      // 代理地址
	UserAgent string `mapstructure:"user_agent"` // 请求 UA
}

// 查询参数默认值
const (
	DefaultMaxParams             = 99
	DefaultVerificationThreshold = 50
	DefaultMinStrength           = 4
	DefaultMaxRecordFilters      = 20
	DefaultLimit                 = 100
	DefaultMaxLimit              = 500
	DefaultMaxConcurrency        = 8
)

// LoadConfig 加载配置文件（config/config.yaml），敏感项从 .env 覆盖（不提交 git）
func LoadConfig() (*Config, error) {
	// 1. 加载 .env（若存在），env 中的值会覆盖 config.yaml 中同名字段
	_ = godotenv.Load() // 忽略错误（.env 可不存在）

	// 2. 读取 config.yaml
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	setDefaults(v)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置文件失败: %w", err)
	}

	// 3. 敏感字段：用 env 覆盖（优先级 env > yaml）
	overrideFromEnv(&cfg)
	cfg.Query.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "release")
	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.max_open_conns", 20)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", time.Hour)
	v.SetDefault("stats.path", "./filter_stats.json")
	v.SetDefault("admin.header", "X-Admin-Secret")
	v.SetDefault("luogu.base_url", "https://www.luogu.com.cn")
	v.SetDefault("luogu.timeout", 10)
	v.SetDefault("luogu.user_agent", "OIerFinder/1.0")
}

// overrideFromEnv 用环境变量覆盖敏感配置
func overrideFromEnv(cfg *Config) {
	if v := os.Getenv("DATABASE_DSN"); v != "" {
		cfg.Database.DSN = v
	}
	if v := os.Getenv("ADMIN_SECRET"); v != "" {
		cfg.Admin.Secret = v
	}
	if v := os.Getenv("LUOGU_PROXY"); v != "" {
		cfg.Luogu.Proxy = v
	}
	if v := os.Getenv("STATS_PATH"); v != "" {
		cfg.Stats.Path = v
	}
}

// ApplyDefaults 未配置（<=0）的查询参数回落到默认值
func (q *QueryConfig) ApplyDefaults() {
	if q.MaxParams <= 0 {
		q.MaxParams = DefaultMaxParams
	}
	if q.VerificationThreshold <= 0 {
		q.VerificationThreshold = DefaultVerificationThreshold
	}
	if q.MinStrength <= 0 {
		q.MinStrength = DefaultMinStrength
	}
	if q.MaxRecordFilters <= 0 {
		q.MaxRecordFilters = DefaultMaxRecordFilters
	}
	if q.DefaultLimit <= 0 {
		q.DefaultLimit = DefaultLimit
	}
	if q.MaxLimit <= 0 {
		q.MaxLimit = DefaultMaxLimit
	}
	if q.MaxConcurrency <= 0 {
		q.MaxConcurrency = DefaultMaxConcurrency
	}
}

// Validate 启动前校验
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("不支持的数据库驱动: %q", c.Database.Driver)
	}
	if c.Database.DSN == "" {
		return fmt.Errorf("database.dsn 未配置")
	}
	if c.Query.DefaultLimit > c.Query.MaxLimit {
		return fmt.Errorf("query.default_limit(%d) 超过 query.max_limit(%d)", c.Query.DefaultLimit, c.Query.MaxLimit)
	}
	// 至少为过滤器自身条件留出一个参数位
	if c.Query.MaxParams < 2 {
		return fmt.Errorf("query.max_params 过小: %d", c.Query.MaxParams)
	}
	return nil
}
