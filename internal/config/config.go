package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/danmuck/sib1ctl/internal/protocol/schema"
	"github.com/pelletier/go-toml/v2"
)

// PlanConfig is the on-disk SIB1 broadcast plan. Schema starts from the
// TS 38.331 defaults; any bound present in the file overrides its default.
type PlanConfig struct {
	CellSelection *CellSelectionConfig `toml:"cell_selection"`
	PLMNInfo      []PLMNInfoConfig     `toml:"plmn_info"`
	Schema        schema.Schema        `toml:"schema"`
}

type CellSelectionConfig struct {
	QRxLevMin int64 `toml:"q_rxlevmin"`
}

type PLMNInfoConfig struct {
	Identity []PLMNIdentityConfig `toml:"identity"`
}

// PLMNIdentityConfig keeps digits as strings so leading zeros survive.
type PLMNIdentityConfig struct {
	MCC string `toml:"mcc"`
	MNC string `toml:"mnc"`
}

func LoadPlanConfig(path string) (PlanConfig, error) {
	cfg := PlanConfig{Schema: schema.Default()}
	if err := loadToml(path, &cfg); err != nil {
		return PlanConfig{}, err
	}
	if err := ValidatePlanConfig(cfg); err != nil {
		return PlanConfig{}, err
	}
	return cfg, nil
}

func loadToml(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config load failed (%s): %w", path, err)
	}
	if err := toml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("config parse failed (%s): %w", path, err)
	}
	return nil
}

func ValidatePlanConfig(cfg PlanConfig) error {
	if err := cfg.Schema.Validate(); err != nil {
		return fmt.Errorf("plan schema invalid: %w", err)
	}
	if len(cfg.PLMNInfo) == 0 {
		return fmt.Errorf("plan missing plmn_info")
	}
	for i, info := range cfg.PLMNInfo {
		if len(info.Identity) == 0 {
			return fmt.Errorf("plmn_info[%d] missing identity", i)
		}
		for j, id := range info.Identity {
			if err := ValidatePLMNIdentity(id); err != nil {
				return fmt.Errorf("plmn_info[%d].identity[%d] invalid: %w", i, j, err)
			}
		}
	}
	return nil
}

// ValidatePLMNIdentity checks representation only; list sizes are
// enforced by the encoder against the schema.
func ValidatePLMNIdentity(id PLMNIdentityConfig) error {
	for _, field := range []struct{ name, v string }{{"mcc", id.MCC}, {"mnc", id.MNC}} {
		if strings.TrimFunc(field.v, func(r rune) bool { return r >= '0' && r <= '9' }) != "" {
			return fmt.Errorf("%s must be decimal digits: %q", field.name, field.v)
		}
	}
	return nil
}
