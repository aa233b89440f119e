// Package ledgerconfig loads the daemon's ledger and signer settings from a
// YAML config file with environment overrides.
package ledgerconfig

import (
	"os"
	"strconv"
	"strings"
	"time"

	"fave/go-backend/internal/ledger"

	"gopkg.in/yaml.v3"
)

type DaemonConfig struct {
	Ledger DaemonLedgerConfig `yaml:"ledger"`
	Signer DaemonSignerConfig `yaml:"signer"`
}

type DaemonLedgerConfig struct {
	Transport      string        `yaml:"transport"`
	Endpoints      []string      `yaml:"endpoints"`
	TargetContract string        `yaml:"targetContract"`
	TreasuryObject string        `yaml:"treasuryObject"`
	GasBudget      uint64        `yaml:"gasBudget"`
	RequestTimeout time.Duration `yaml:"requestTimeout"`
}

type DaemonSignerConfig struct {
	Mnemonic string `yaml:"mnemonic"`
}

// Settings is the merged result handed to the composition layer.
type Settings struct {
	Ledger         ledger.Config
	SignerMnemonic string
}

func LoadFromPath(configPath string) Settings {
	settings := Settings{Ledger: ledger.DefaultConfig()}

	candidates := make([]string, 0, 2)
	if configPath != "" {
		candidates = append(candidates, configPath)
	} else {
		candidates = append(candidates,
			"go-backend/configs/config.yaml",
			"configs/config.yaml",
		)
	}

	for _, path := range candidates {
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}

		var parsed DaemonConfig
		if err := yaml.Unmarshal(data, &parsed); err != nil {
			continue
		}

		merged := settings
		Merge(&merged, parsed)
		ApplyEnvOverrides(&merged)
		return merged
	}

	ApplyEnvOverrides(&settings)
	return settings
}

func Merge(dst *Settings, src DaemonConfig) {
	if src.Ledger.Transport != "" {
		dst.Ledger.Transport = src.Ledger.Transport
	}
	if src.Ledger.Endpoints != nil {
		dst.Ledger.Endpoints = src.Ledger.Endpoints
	}
	if src.Ledger.TargetContract != "" {
		dst.Ledger.TargetContract = src.Ledger.TargetContract
	}
	if src.Ledger.TreasuryObject != "" {
		dst.Ledger.TreasuryObject = src.Ledger.TreasuryObject
	}
	if src.Ledger.GasBudget != 0 {
		dst.Ledger.GasBudget = src.Ledger.GasBudget
	}
	if src.Ledger.RequestTimeout != 0 {
		dst.Ledger.RequestTimeout = src.Ledger.RequestTimeout
	}
	if src.Signer.Mnemonic != "" {
		dst.SignerMnemonic = src.Signer.Mnemonic
	}
}

func ApplyEnvOverrides(settings *Settings) {
	if transport := strings.TrimSpace(os.Getenv("FAVE_LEDGER_TRANSPORT")); transport != "" {
		settings.Ledger.Transport = transport
	}
	if endpoints := strings.TrimSpace(os.Getenv("FAVE_LEDGER_ENDPOINTS")); endpoints != "" {
		parts := strings.Split(endpoints, ",")
		parsed := make([]string, 0, len(parts))
		for _, part := range parts {
			if trimmed := strings.TrimSpace(part); trimmed != "" {
				parsed = append(parsed, trimmed)
			}
		}
		if len(parsed) > 0 {
			settings.Ledger.Endpoints = parsed
		}
	}
	if target := strings.TrimSpace(os.Getenv("FAVE_LEDGER_TARGET_CONTRACT")); target != "" {
		settings.Ledger.TargetContract = target
	}
	if treasury := strings.TrimSpace(os.Getenv("FAVE_LEDGER_TREASURY_OBJECT")); treasury != "" {
		settings.Ledger.TreasuryObject = treasury
	}
	if raw := strings.TrimSpace(os.Getenv("FAVE_LEDGER_GAS_BUDGET")); raw != "" {
		if budget, err := strconv.ParseUint(raw, 10, 64); err == nil && budget > 0 {
			settings.Ledger.GasBudget = budget
		}
	}
	if mnemonic := strings.TrimSpace(os.Getenv("FAVE_SIGNER_MNEMONIC")); mnemonic != "" {
		settings.SignerMnemonic = mnemonic
	}
}
