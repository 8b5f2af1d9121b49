// Package config 提供配置加载功能
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/spf13/viper"
)

var envPlaceholder = regexp.MustCompile(`\${(\w+)(:([^}]*))?}`)

// Load 从 ./configs 加载配置
func Load() (*Config, error) {
	return LoadFrom("configs")
}

// LoadFrom 按优先级加载：默认配置 -> 环境配置 -> 环境变量
func LoadFrom(dir string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	// 1. 加载默认配置
	if err := loadConfigFile(v, filepath.Join(dir, "config.yaml"), false); err != nil {
		return nil, err
	}

	// 2. 加载环境特定配置
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "development"
	}
	envFile := filepath.Join(dir, fmt.Sprintf("config.%s.yaml", env))
	if err := loadConfigFile(v, envFile, true); err != nil {
		return nil, err
	}

	// 3. 绑定环境变量 (直接覆盖)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// 设置默认值 (兜底)
	setDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// loadConfigFile 读取文件，执行环境变量替换，并加载到 viper
func loadConfigFile(v *viper.Viper, path string, optional bool) error {
	content, err := os.ReadFile(path)
	if err != nil {
		if optional && os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	reader := strings.NewReader(expandEnv(string(content)))
	if v.ConfigFileUsed() == "" {
		if err := v.ReadConfig(reader); err != nil {
			return fmt.Errorf("failed to read processed config %s: %w", path, err)
		}
		v.SetConfigFile(path)
	} else {
		if err := v.MergeConfig(reader); err != nil {
			return fmt.Errorf("failed to merge processed config %s: %w", path, err)
		}
	}
	return nil
}

// expandEnv 替换 ${VAR} 与 ${VAR:default}；未定义且无默认值的占位符原样保留
func expandEnv(s string) string {
	return envPlaceholder.ReplaceAllStringFunc(s, func(match string) string {
		sub := envPlaceholder.FindStringSubmatch(match)
		if val, ok := os.LookupEnv(sub[1]); ok {
			return val
		}
		if sub[2] != "" {
			return sub[3]
		}
		return match
	})
}

// MustLoad 加载配置，失败时 panic
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}
	return cfg
}

// Validate 校验跨字段约束
func (c *Config) Validate() error {
	switch c.Gateway.RolePolicy.Mode {
	case "off", "truncate", "reject":
	default:
		return fmt.Errorf("invalid gateway.role_policy.mode %q", c.Gateway.RolePolicy.Mode)
	}
	p := c.Gateway.RolePolicy
	if p.MinRoles < 0 || (p.MaxRoles > 0 && p.MinRoles > p.MaxRoles) {
		return fmt.Errorf("invalid gateway.role_policy bounds: min=%d max=%d", p.MinRoles, p.MaxRoles)
	}

	switch c.Wizard.SessionStore {
	case "memory":
	case "redis":
		if !c.Cache.Redis.Enabled {
			return fmt.Errorf("wizard.session_store=redis requires cache.redis.enabled")
		}
	default:
		return fmt.Errorf("invalid wizard.session_store %q", c.Wizard.SessionStore)
	}

	if c.Messaging.Enabled && !c.Cache.Redis.Enabled {
		return fmt.Errorf("messaging.enabled requires cache.redis.enabled")
	}

	if c.LLM.DefaultProvider != "" {
		if _, ok := c.LLM.Providers[c.LLM.DefaultProvider]; !ok {
			return fmt.Errorf("llm.default_provider %q is not configured", c.LLM.DefaultProvider)
		}
	}
	for name, p := range c.LLM.Providers {
		switch p.Type {
		case "", ProviderTypeOpenAI, ProviderTypeGemini:
		default:
			return fmt.Errorf("llm.providers.%s: unknown type %q", name, p.Type)
		}
	}
	return nil
}

// setDefaults 设置配置默认值
func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "quzz-ai-api")
	v.SetDefault("app.version", "v0.0.0")
	v.SetDefault("app.env", "development")

	// HTTP 服务器默认值
	v.SetDefault("server.http.host", "0.0.0.0")
	v.SetDefault("server.http.port", 8080)
	v.SetDefault("server.http.read_timeout", "30s")
	v.SetDefault("server.http.write_timeout", "120s")
	v.SetDefault("server.http.idle_timeout", "120s")

	// Redis 默认值
	v.SetDefault("cache.redis.enabled", false)
	v.SetDefault("cache.redis.host", "localhost")
	v.SetDefault("cache.redis.port", 6379)
	v.SetDefault("cache.redis.db", 0)
	v.SetDefault("cache.redis.pool_size", 20)
	v.SetDefault("cache.redis.min_idle_conns", 2)
	v.SetDefault("cache.redis.dial_timeout", "5s")
	v.SetDefault("cache.redis.read_timeout", "3s")
	v.SetDefault("cache.redis.write_timeout", "3s")

	// LLM 默认值
	v.SetDefault("llm.default_provider", "gemini")

	// AI 网关默认值
	v.SetDefault("gateway.role_timeout", "30s")
	v.SetDefault("gateway.blueprint_timeout", "90s")
	v.SetDefault("gateway.role_policy.mode", "off")
	v.SetDefault("gateway.role_policy.min_roles", 3)
	v.SetDefault("gateway.role_policy.max_roles", 5)
	v.SetDefault("gateway.role_policy.max_responsibilities", 4)
	v.SetDefault("gateway.role_policy.max_skills", 4)

	// 向导默认值
	v.SetDefault("wizard.session_store", "memory")
	v.SetDefault("wizard.session_ttl", "2h")
	v.SetDefault("wizard.stale_generation_after", "5m")
	v.SetDefault("wizard.key_prefix", "quzz:wizard")

	// 消息默认值
	v.SetDefault("messaging.enabled", false)
	v.SetDefault("messaging.redis_stream.stream", "quzz:events:wizard")
	v.SetDefault("messaging.redis_stream.max_len", 10000)

	// 可观测性默认值
	v.SetDefault("observability.logging.level", "info")
	v.SetDefault("observability.logging.format", "json")
	v.SetDefault("observability.tracing.enabled", false)
	v.SetDefault("observability.tracing.endpoint", "localhost:4317")
	v.SetDefault("observability.tracing.sample_rate", 1.0)
	v.SetDefault("observability.metrics.enabled", true)
	v.SetDefault("observability.metrics.path", "/metrics")

	// 安全默认值
	v.SetDefault("security.rate_limit.enabled", false)
	v.SetDefault("security.rate_limit.requests", 20)
	v.SetDefault("security.rate_limit.window", "1m")
	v.SetDefault("security.cors.allowed_origins", []string{"*"})
	v.SetDefault("security.cors.allowed_methods", []string{"GET", "POST", "DELETE", "OPTIONS"})
	v.SetDefault("security.cors.allowed_headers", []string{"Origin", "Content-Type", "Accept", "X-Request-ID"})
}
