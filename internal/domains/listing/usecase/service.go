package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"fave/go-backend/internal/domains/contracts"
	"fave/go-backend/internal/ledger"
	"fave/go-backend/pkg/models"
)

// UniquenessPolicy decides which duplicate check the pipeline runs. The
// default forbids a second listing per creator; per-work allows one listing
// per distinct work instead.
type UniquenessPolicy string

const (
	PolicyPerCreator UniquenessPolicy = "per-creator"
	PolicyPerWork    UniquenessPolicy = "per-work"
)

type ServiceDeps struct {
	Accounts contracts.AccountDirectory
	Listings contracts.ListingRepository

	SubmitIssuance func(ctx context.Context, req ledger.IssuanceRequest) (ledger.Receipt, error)
	Notify         func(method string, payload any)
	GenerateID     func(prefix string) (string, error)
	TrackOperation func(operation string, errRef *error) func()
	RecordError    func(err error)

	Logger         *slog.Logger
	Policy         UniquenessPolicy
	TargetContract string
}

type Service struct {
	deps ServiceDeps
}

func NewService(deps ServiceDeps) *Service {
	if deps.Policy == "" {
		deps.Policy = PolicyPerCreator
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	return &Service{deps: deps}
}

// ListWork runs the full listing pipeline for one request: validate, check
// for duplicates, submit the issuance to the ledger, persist the listing,
// notify subscribers. Each request is an independent run; the only shared
// state is the stores behind the deps. The context is used as-is for the
// ledger and store calls, so callers decide whether abandonment cancels it.
func (s *Service) ListWork(ctx context.Context, creatorID, workID string, percentage int) (listing models.WorkListing, err error) {
	if s.deps.TrackOperation != nil {
		defer s.deps.TrackOperation("work.list", &err)()
	}

	input, err := ParseListWorkInput(creatorID, workID, percentage)
	if err != nil {
		return models.WorkListing{}, err
	}
	if s.deps.Policy == PolicyPerWork && input.WorkID == "" {
		return models.WorkListing{}, fmt.Errorf("%w: work id is required", ErrInvalidInput)
	}

	creator, ok := s.deps.Accounts.GetCreator(input.CreatorID)
	if !ok {
		return models.WorkListing{}, ErrCreatorNotFound
	}
	if s.isDuplicate(input) {
		return models.WorkListing{}, ErrAlreadyListed
	}

	// Allocate the ID before the ledger call, so an allocation failure is
	// still a retry-safe outcome.
	listingID, err := s.deps.GenerateID("listing")
	if err != nil {
		s.recordError(contracts.ErrorCategoryAPI, err)
		return models.WorkListing{}, err
	}

	receipt, err := s.deps.SubmitIssuance(ctx, ledger.IssuanceRequest{
		TargetContract: s.deps.TargetContract,
		Percentage:     uint64(input.Percentage),
	})
	if err != nil {
		s.recordError(contracts.ErrorCategoryLedger, err)
		return models.WorkListing{}, &LedgerSubmissionError{Cause: err}
	}

	listing = models.WorkListing{
		ID:                listingID,
		CreatorID:         creator.ID,
		WorkID:            input.WorkID,
		RoyaltyPercentage: input.Percentage,
		LedgerReference:   receipt.Reference,
		LedgerCheckpoint:  receipt.Checkpoint,
		CreatedAt:         time.Now().UTC(),
	}
	if err := s.deps.Listings.Save(listing); err != nil {
		s.recordError(contracts.ErrorCategoryStorage, err)
		return models.WorkListing{}, &ReconciliationError{
			LedgerReference: receipt.Reference,
			Cause:           err,
		}
	}

	if s.deps.Notify == nil {
		// The listing is committed either way; fans just miss the push.
		s.deps.Logger.Warn("no notification sink configured, work.listed event dropped",
			"listing_id", listing.ID,
			"creator_id", creator.ID)
		return listing, nil
	}
	s.deps.Notify("work.listed", map[string]any{
		"listing": listing,
		"creator": map[string]any{
			"id":         creator.ID,
			"stage_name": creator.StageName,
		},
	})
	return listing, nil
}

func (s *Service) isDuplicate(input ListWorkInput) bool {
	if s.deps.Policy == PolicyPerWork {
		_, found := s.deps.Listings.FindByWork(input.CreatorID, input.WorkID)
		return found
	}
	return len(s.deps.Listings.FindByCreator(input.CreatorID)) > 0
}

// recordError hands the failure to the metrics sink tagged with its pipeline
// category, so the service layer can derive the counter from the error itself.
func (s *Service) recordError(category string, err error) {
	if s.deps.RecordError != nil {
		s.deps.RecordError(contracts.WrapCategorizedError(category, err))
	}
}
