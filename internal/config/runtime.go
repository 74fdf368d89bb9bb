package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/danmuck/sib1ctl/internal/protocol"
	"github.com/danmuck/sib1ctl/internal/protocol/session"
)

// RuntimeConfig drives one sib1ctl run.
type RuntimeConfig struct {
	Session        session.Config
	EncodeCapacity int
	PlanPath       string
	Verify         bool
	MetricsOut     string
}

type runtimeFile struct {
	ConnectTimeout  string `toml:"connect_timeout"`
	WriteTimeout    string `toml:"write_timeout"`
	MaxPayloadBytes int64  `toml:"max_payload_bytes"`
	EncodeCapacity  int    `toml:"encode_capacity"`
	Plan            string `toml:"plan"`
	Verify          bool   `toml:"verify"`
	MetricsOut      string `toml:"metrics_out"`
}

func DefaultRuntimeConfig() RuntimeConfig {
	return RuntimeConfig{
		Session:        session.DefaultConfig(),
		EncodeCapacity: protocol.DefaultCapacity,
	}
}

// LoadRuntimeConfig overlays the keys defined in path onto the defaults.
// A relative plan path is resolved against the config file directory.
func LoadRuntimeConfig(path string) (RuntimeConfig, error) {
	cfg := DefaultRuntimeConfig()

	var raw runtimeFile
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return RuntimeConfig{}, fmt.Errorf("load runtime config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return RuntimeConfig{}, fmt.Errorf("runtime config unknown key %q", undecoded[0].String())
	}

	if meta.IsDefined("connect_timeout") {
		d, err := time.ParseDuration(strings.TrimSpace(raw.ConnectTimeout))
		if err != nil {
			return RuntimeConfig{}, fmt.Errorf("parse connect_timeout: %w", err)
		}
		cfg.Session.ConnectTimeout = d
	}

	if meta.IsDefined("write_timeout") {
		d, err := time.ParseDuration(strings.TrimSpace(raw.WriteTimeout))
		if err != nil {
			return RuntimeConfig{}, fmt.Errorf("parse write_timeout: %w", err)
		}
		cfg.Session.WriteTimeout = d
	}

	if meta.IsDefined("max_payload_bytes") {
		if raw.MaxPayloadBytes < 0 || raw.MaxPayloadBytes > int64(^uint32(0)) {
			return RuntimeConfig{}, fmt.Errorf("max_payload_bytes out of range: %d", raw.MaxPayloadBytes)
		}
		cfg.Session.Limits.MaxPayloadBytes = uint32(raw.MaxPayloadBytes)
	}

	if meta.IsDefined("encode_capacity") {
		if raw.EncodeCapacity <= 0 {
			return RuntimeConfig{}, fmt.Errorf("encode_capacity must be positive: %d", raw.EncodeCapacity)
		}
		cfg.EncodeCapacity = raw.EncodeCapacity
	}

	if meta.IsDefined("plan") {
		plan := strings.TrimSpace(raw.Plan)
		if plan != "" && !filepath.IsAbs(plan) {
			plan = filepath.Join(filepath.Dir(path), plan)
		}
		cfg.PlanPath = plan
	}

	if meta.IsDefined("verify") {
		cfg.Verify = raw.Verify
	}

	if meta.IsDefined("metrics_out") {
		cfg.MetricsOut = strings.TrimSpace(raw.MetricsOut)
	}

	return cfg, nil
}
