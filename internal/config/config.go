// Package config loads gateway and CLI settings from the environment, with an
// optional YAML file underneath.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	CacheNone  = "none"
	CacheLRU   = "lru"
	CacheRedis = "redis"
)

type InvalidationCfg struct {
	Enabled bool   `yaml:"enabled"`
	Topic   string `yaml:"topic"`
	Brokers string `yaml:"brokers"`
	GroupID string `yaml:"group_id"`
}

type CacheCfg struct {
	Driver    string        `yaml:"driver"`
	RedisAddr string        `yaml:"redis_addr"`
	TTL       time.Duration `yaml:"ttl"`
	LRUSize   int           `yaml:"lru_size"`
	OpTimeout time.Duration `yaml:"op_timeout"`
}

type Config struct {
	FDSNWSURL      string          `yaml:"fdsnws_url"`
	Addr           string          `yaml:"addr"`
	LogLevel       string          `yaml:"log_level"`
	LogConsole     bool            `yaml:"log_console"`
	HTTPTimeout    time.Duration   `yaml:"http_timeout"`
	UserAgent      string          `yaml:"user_agent"`
	MaxBodyBytes   int64           `yaml:"max_body_bytes"`
	H3Res          int             `yaml:"h3_res"`
	MetricsEnabled bool            `yaml:"metrics_enabled"`
	Cache          CacheCfg        `yaml:"cache"`
	Invalidation   InvalidationCfg `yaml:"invalidation"`
}

func Defaults() Config {
	return Config{
		FDSNWSURL:      "http://localhost:8080/fdsnws",
		Addr:           ":8090",
		LogLevel:       "info",
		HTTPTimeout:    30 * time.Second,
		UserAgent:      "fdsnws-client",
		MaxBodyBytes:   64 << 20,
		H3Res:          5,
		MetricsEnabled: true,
		Cache: CacheCfg{
			Driver:    CacheNone,
			RedisAddr: "localhost:6379",
			TTL:       5 * time.Minute,
			LRUSize:   1024,
			OpTimeout: 250 * time.Millisecond,
		},
		Invalidation: InvalidationCfg{
			Topic:   "fdsnws-inventory",
			Brokers: "localhost:9092",
			GroupID: "fdsnws-cache-invalidator",
		},
	}
}

// FromEnv returns the defaults overridden by the file named in CONFIG_FILE
// (if any) and then by individual environment variables.
func FromEnv() (Config, error) {
	cfg := Defaults()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}
	applyEnv(&cfg)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(b, cfg); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) {
	cfg.FDSNWSURL = getenv("FDSNWS_URL", cfg.FDSNWSURL)
	cfg.Addr = getenv("ADDR", cfg.Addr)
	cfg.LogLevel = getenv("LOG_LEVEL", cfg.LogLevel)
	cfg.LogConsole = getbool("LOG_CONSOLE", cfg.LogConsole)
	cfg.HTTPTimeout = getduration("HTTP_TIMEOUT", cfg.HTTPTimeout)
	cfg.UserAgent = getenv("USER_AGENT", cfg.UserAgent)
	cfg.MaxBodyBytes = int64(getint("MAX_BODY_BYTES", int(cfg.MaxBodyBytes)))
	cfg.H3Res = getint("H3_RES", cfg.H3Res)
	cfg.MetricsEnabled = getbool("METRICS_ENABLED", cfg.MetricsEnabled)

	cfg.Cache.Driver = strings.ToLower(getenv("CACHE_DRIVER", cfg.Cache.Driver))
	cfg.Cache.RedisAddr = getenv("REDIS_ADDR", cfg.Cache.RedisAddr)
	cfg.Cache.TTL = getduration("CACHE_TTL", cfg.Cache.TTL)
	cfg.Cache.LRUSize = getint("LRU_SIZE", cfg.Cache.LRUSize)
	cfg.Cache.OpTimeout = getduration("CACHE_OP_TIMEOUT", cfg.Cache.OpTimeout)

	cfg.Invalidation.Enabled = getbool("INVALIDATION_ENABLED", cfg.Invalidation.Enabled)
	cfg.Invalidation.Brokers = getenv("KAFKA_BROKERS", cfg.Invalidation.Brokers)
	cfg.Invalidation.Topic = getenv("KAFKA_TOPIC", cfg.Invalidation.Topic)
	cfg.Invalidation.GroupID = getenv("KAFKA_GROUP_ID", cfg.Invalidation.GroupID)
}

func (c Config) Validate() error {
	switch c.Cache.Driver {
	case CacheNone, CacheLRU, CacheRedis:
	default:
		return fmt.Errorf("config: unknown cache driver %q", c.Cache.Driver)
	}
	if c.H3Res < 0 || c.H3Res > 15 {
		return fmt.Errorf("config: h3 resolution %d out of range [0,15]", c.H3Res)
	}
	if strings.TrimSpace(c.FDSNWSURL) == "" {
		return fmt.Errorf("config: empty FDSNWS_URL")
	}
	if c.Invalidation.Enabled && c.Cache.Driver == CacheNone {
		return fmt.Errorf("config: invalidation requires a cache driver")
	}
	return nil
}

// BrokerList splits the comma separated broker list.
func (i InvalidationCfg) BrokerList() []string {
	var out []string
	for b := range strings.SplitSeq(i.Brokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			out = append(out, b)
		}
	}
	return out
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getint(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getbool(k string, def bool) bool {
	if v := os.Getenv(k); v != "" {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "t", "true", "y", "yes":
			return true
		case "0", "f", "false", "n", "no":
			return false
		}
	}
	return def
}

func getduration(k string, def time.Duration) time.Duration {
	if v := os.Getenv(k); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
