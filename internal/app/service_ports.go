package app

import (
	"context"

	"fave/go-backend/internal/ledger"
	"fave/go-backend/pkg/models"
)

type AccountDirectory interface {
	SaveCreator(creator models.Creator) error
	SaveFan(fan models.Fan) error
	GetCreator(id string) (models.Creator, bool)
	GetFan(id string) (models.Fan, bool)
	FindCreatorByAddress(address string) (models.Creator, bool)
	FindFanByAddress(address string) (models.Fan, bool)
}

type ListingRepository interface {
	Save(listing models.WorkListing) error
	Get(id string) (models.WorkListing, bool)
	FindByCreator(creatorID string) []models.WorkListing
	FindByWork(creatorID, workID string) (models.WorkListing, bool)
	List(limit, offset int) []models.WorkListing
	Count() int
}

type LedgerGateway interface {
	SubmitIssuance(ctx context.Context, req ledger.IssuanceRequest) (ledger.Receipt, error)
	Status() ledger.Status
}

type NotificationSink interface {
	Broadcast(method string, payload any) (NotificationEvent, int)
}
