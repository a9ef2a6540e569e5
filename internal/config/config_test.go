package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestFromEnv_Defaults(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}
	if cfg.Addr != ":8090" || cfg.Cache.Driver != CacheNone {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.HTTPTimeout != 30*time.Second {
		t.Fatalf("http timeout=%v want 30s", cfg.HTTPTimeout)
	}
	if cfg.MaxBodyBytes != 64<<20 {
		t.Fatalf("max body=%d want 64MiB", cfg.MaxBodyBytes)
	}
}

func TestFromEnv_FileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "gateway.yaml")
	body := `
fdsnws_url: http://geofon.example/fdsnws
addr: ":9000"
h3_res: 7
cache:
  driver: lru
  ttl: 90s
  lru_size: 10
invalidation:
  enabled: true
  brokers: "a:9092, b:9092"
`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("ADDR", ":9100")
	t.Setenv("CACHE_TTL", "2m")
	t.Setenv("MAX_BODY_BYTES", "1048576")

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}
	if cfg.FDSNWSURL != "http://geofon.example/fdsnws" {
		t.Fatalf("url=%q", cfg.FDSNWSURL)
	}
	if cfg.Addr != ":9100" {
		t.Fatalf("env should win over file, addr=%q", cfg.Addr)
	}
	if cfg.H3Res != 7 || cfg.Cache.Driver != CacheLRU || cfg.Cache.LRUSize != 10 {
		t.Fatalf("file values not applied: %+v", cfg)
	}
	if cfg.Cache.TTL != 2*time.Minute {
		t.Fatalf("ttl=%v want 2m", cfg.Cache.TTL)
	}
	if cfg.MaxBodyBytes != 1<<20 {
		t.Fatalf("max body=%d want 1MiB", cfg.MaxBodyBytes)
	}
	brokers := cfg.Invalidation.BrokerList()
	if len(brokers) != 2 || brokers[1] != "b:9092" {
		t.Fatalf("brokers=%v", brokers)
	}
}

func TestFromEnv_Invalid(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("CACHE_DRIVER", "memcached")
	if _, err := FromEnv(); err == nil {
		t.Fatalf("expected error for unknown driver")
	}

	t.Setenv("CACHE_DRIVER", "none")
	t.Setenv("INVALIDATION_ENABLED", "true")
	if _, err := FromEnv(); err == nil {
		t.Fatalf("expected error for invalidation without cache")
	}
}

func TestFromEnv_MissingFile(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "nope.yaml"))
	if _, err := FromEnv(); err == nil {
		t.Fatalf("expected read error")
	}
}

func TestGetbool_IgnoresGarbage(t *testing.T) {
	t.Setenv("X_FLAG", "maybe")
	if !getbool("X_FLAG", true) {
		t.Fatalf("garbage should keep default")
	}
	t.Setenv("X_FLAG", "no")
	if getbool("X_FLAG", true) {
		t.Fatalf("no should be false")
	}
}
