package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config 全量配置
type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Log      LogConfig
	Sync     SyncConfig
	Accounts AccountsConfig
}

// AppConfig 应用配置
type AppConfig struct {
	Name string
	Env  string
	Port string
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
	LogSQL   bool
}

// DSN 拼接连接串
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=%s",
		d.Host, d.User, d.Password, d.DBName, d.Port, d.SSLMode)
}

// LogConfig 日志配置
type LogConfig struct {
	Level  string // debug/info/warn/error
	Format string // json/console
}

// SyncConfig 同步预算与调度配置
type SyncConfig struct {
	// cron 入口的墙钟预算（留有安全余量，低于宿主硬顶）
	CronBudget time.Duration
	// 手动 chunk 入口的预算
	ChunkBudget time.Duration
	// 滚动窗口天数（昨天+今天 = 2）
	RollingDays int
	// cron 表达式（robfig/cron，带秒位）
	CronSpec string
}

// AccountsConfig 平台账号密钥（环境变量注入，表为空时用于播种）
type AccountsConfig struct {
	OpenMarketVendorID  string
	OpenMarketAccessKey string
	OpenMarketSecretKey string

	StorefrontClientID     string
	StorefrontClientSecret string

	ProxyURL string
}

// Load 读取配置：config.yaml 可选，环境变量 SELLEROPS_* 覆盖
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")

	v.SetEnvPrefix("SELLEROPS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		// 配置文件可缺省，纯环境变量运行
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}

	// 滚动窗口至少 1 天，配成 0 会让定时任务取不到任何窗口
	if cfg.Sync.RollingDays < 1 {
		cfg.Sync.RollingDays = 1
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "seller-ops")
	v.SetDefault("app.env", "dev")
	v.SetDefault("app.port", "8080")

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "sellerops")
	v.SetDefault("database.dbname", "sellerops")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.logsql", false)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("sync.cronbudget", 8*time.Second)
	v.SetDefault("sync.chunkbudget", 50*time.Second)
	v.SetDefault("sync.rollingdays", 2)
	v.SetDefault("sync.cronspec", "0 */10 * * * *")
}
