package config

import (
	"fmt"
	"os"
	"strings"
)

func Template(kind string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "plan":
		return planTemplate, nil
	case "runtime":
		return runtimeTemplate, nil
	default:
		return "", fmt.Errorf("unknown config kind: %s", kind)
	}
}

func WriteTemplate(path, kind string, overwrite bool) error {
	template, err := Template(kind)
	if err != nil {
		return err
	}
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config already exists: %s", path)
		}
	}
	return os.WriteFile(path, []byte(template), 0o600)
}

const planTemplate = `[cell_selection]
q_rxlevmin = -70

[[plmn_info]]
[[plmn_info.identity]]
mcc = "310"
mnc = "260"

# Bounds default to TS 38.331; uncomment to override.
# [schema.q_rxlevmin]
# lower = -70
# upper = -22
#
# [schema.message_type]
# alternatives = 2
# index = 0
`

const runtimeTemplate = `connect_timeout = "5s"
write_timeout = "15s"
max_payload_bytes = 8192
encode_capacity = 8192
plan = "plan.toml"
verify = true
`
