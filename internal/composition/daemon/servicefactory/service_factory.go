package servicefactory

import (
	"fave/go-backend/internal/api"
	"fave/go-backend/internal/bootstrap/ledgerconfig"
	"fave/go-backend/internal/domains/contracts"
)

// BuildDaemonService composes daemon-ready service from config path and data dir.
func BuildDaemonService(configPath, dataDir string) (contracts.DaemonService, error) {
	return api.NewServiceForDaemonWithDataDir(ledgerconfig.LoadFromPath(configPath), dataDir)
}
