package config

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/spf13/viper"
)

type HTTP struct {
	Host            string
	Port            int
	ReadTimeoutSec  int
	WriteTimeoutSec int
	IdleTimeoutSec  int
}

type App struct {
	Name string
	Env  string
	HTTP HTTP
}

type Log struct {
	Level      string
	JSON       bool
	File       string // 为空则只输出到 stdout
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// Backend 远端 REST 服务
type Backend struct {
	BaseURL    string `mapstructure:"baseurl"`
	TimeoutSec int
	RPS        float64 // 0 表示不限速
	Burst      int
}

// Store 本地持久化（token / 记住的邮箱）
type Store struct {
	Driver             string // sqlite | mysql | postgres | redis
	DSN                string
	Username           string
	Password           string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeMin int
	LogLevel           string
	KeyPrefix          string // 仅 redis
}

type Redis struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type Poll struct {
	SupportQueriesSec int
}

// Screen 单个页面的列表配置
type Screen struct {
	Policy   string // refetch | optimistic
	PageSize int
}

type Config struct {
	App     App
	Log     Log
	Backend Backend
	Store   Store
	Redis   Redis `mapstructure:"redis"`
	Poll    Poll
	Screens map[string]Screen
}

// ScreenFor 返回页面配置，未配置的页面用默认值
func (c *Config) ScreenFor(name string) Screen {
	s := c.Screens[strings.ToLower(name)]
	if s.Policy == "" {
		s.Policy = "refetch"
	}
	if s.PageSize <= 0 {
		s.PageSize = 10
	}
	return s
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "affiliate-admin")
	v.SetDefault("app.env", "local")
	v.SetDefault("app.http.host", "127.0.0.1")
	v.SetDefault("app.http.port", 8090)
	v.SetDefault("app.http.readtimeoutsec", 5)
	v.SetDefault("app.http.writetimeoutsec", 35)
	v.SetDefault("app.http.idletimeoutsec", 60)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.maxsizemb", 50)
	v.SetDefault("log.maxbackups", 5)
	v.SetDefault("log.maxagedays", 14)
	v.SetDefault("backend.baseurl", "http://localhost:4000/api/v1/")
	v.SetDefault("backend.timeoutsec", 20)
	v.SetDefault("backend.burst", 10)
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.dsn", "file:console.db?cache=shared")
	v.SetDefault("store.maxopenconns", 4)
	v.SetDefault("store.maxidleconns", 2)
	v.SetDefault("store.connmaxlifetimemin", 30)
	v.SetDefault("store.loglevel", "warn")
	v.SetDefault("store.keyprefix", "console:")
	v.SetDefault("poll.supportqueriessec", 10)
}

func Load(path string) (*Config, error) {
	v := viper.New()
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
		if path == "" {
			path = "./configs/config.yaml"
		}
	}
	setDefaults(v)
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("APP")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		// 配置文件可选：缺省值 + 环境变量即可启动
		if _, statErr := os.Stat(path); statErr == nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if c.Backend.BaseURL == "" {
		return nil, fmt.Errorf("backend.baseurl is required")
	}
	return &c, nil
}

func MustLoad(path string) *Config {
	c, err := Load(path)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	return c
}
