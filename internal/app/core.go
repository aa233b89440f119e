package app

import (
	"context"

	"fave/go-backend/pkg/models"
)

type CoreAPI interface {
	Login(ctx context.Context, address, role string) (models.LoginResult, error)

	ListWork(ctx context.Context, creatorID, workID string, percentage int) (models.WorkListing, error)
	GetListings(creatorID string, limit, offset int) ([]models.WorkListing, error)
	GetCreator(creatorID string) (models.Creator, error)
	VerifyCreator(creatorID string) (models.Creator, error)

	GetLedgerStatus() models.LedgerStatus
	GetMetrics() models.MetricsSnapshot
}
