package api

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"fave/go-backend/internal/app"
	"fave/go-backend/internal/app/contracts"
	"fave/go-backend/internal/bootstrap/ledgerconfig"
	daemoncomposition "fave/go-backend/internal/composition/daemon"
	domaincontracts "fave/go-backend/internal/domains/contracts"
	listingusecase "fave/go-backend/internal/domains/listing/usecase"
	"fave/go-backend/internal/ledger"
	"fave/go-backend/internal/platform/observability"
	"fave/go-backend/internal/platform/privacylog"
	"fave/go-backend/internal/signer"
	"fave/go-backend/internal/storage"
	"fave/go-backend/pkg/models"
)

var (
	ErrMissingAuth         = domaincontracts.ErrMissingAuth
	ErrInvalidRole         = domaincontracts.ErrInvalidRole
	ErrAddressBothRoles    = domaincontracts.ErrAddressBothRoles
	ErrRegisteredAsFan     = domaincontracts.ErrRegisteredAsFan
	ErrRegisteredAsCreator = domaincontracts.ErrRegisteredAsCreator
)

type Service struct {
	accounts     *storage.AccountStore
	listings     *storage.ListingStore
	gateway      *ledger.Gateway
	registry     *app.ConnectionRegistry
	broadcaster  *app.Broadcaster
	orchestrator *listingusecase.Service
	logger       *slog.Logger
	metrics      *app.ServiceMetricsState
	startStopMu  sync.Mutex
}

func NewService() (*Service, error) {
	return NewServiceWithSettings(ledgerconfig.Settings{Ledger: ledger.DefaultConfig()})
}

func NewServiceWithSettings(settings ledgerconfig.Settings) (*Service, error) {
	return newServiceWithStores(settings, storage.NewAccountStore(), storage.NewListingStore(), app.DefaultLogger())
}

// noinspection GoUnusedExportedFunction
func NewServiceForDaemon(settings ledgerconfig.Settings) (*Service, error) {
	return NewServiceForDaemonWithDataDir(settings, "")
}

func NewServiceForDaemonWithDataDir(settings ledgerconfig.Settings, dataDir string) (*Service, error) {
	_, _, bundle, err := daemoncomposition.ResolveStorage(dataDir)
	if err != nil {
		return nil, err
	}
	return newServiceWithStores(settings, bundle.AccountStore, bundle.ListingStore, app.DefaultLogger())
}

func newServiceWithStores(settings ledgerconfig.Settings, accounts *storage.AccountStore, listings *storage.ListingStore, logger *slog.Logger) (*Service, error) {
	if logger == nil {
		logger = app.DefaultLogger()
	}
	logger = slog.New(privacylog.WrapHandler(logger.Handler()))

	var sgn *signer.Signer
	var err error
	if strings.TrimSpace(settings.SignerMnemonic) != "" {
		sgn, err = signer.FromMnemonic(settings.SignerMnemonic)
	} else {
		sgn, _, err = signer.Generate()
	}
	if err != nil {
		return nil, err
	}

	registry := app.NewConnectionRegistry()
	svc := &Service{
		accounts:    accounts,
		listings:    listings,
		gateway:     ledger.NewGateway(settings.Ledger, sgn),
		registry:    registry,
		broadcaster: app.NewBroadcaster(registry, logger),
		logger:      logger,
		metrics:     app.NewServiceMetricsState(),
	}
	svc.orchestrator = listingusecase.NewService(listingusecase.ServiceDeps{
		Accounts:       accounts,
		Listings:       listings,
		SubmitIssuance: svc.submitIssuance,
		Notify:         svc.notify,
		GenerateID:     app.GeneratePrefixedID,
		TrackOperation: svc.trackOperation,
		RecordError:    svc.recordError,
		Logger:         logger,
		Policy:         listingPolicyFromEnv(),
		TargetContract: settings.Ledger.TargetContract,
	})
	return svc, nil
}

func listingPolicyFromEnv() listingusecase.UniquenessPolicy {
	switch strings.ToLower(strings.TrimSpace(os.Getenv("FAVE_LISTING_UNIQUENESS"))) {
	case "per-work":
		return listingusecase.PolicyPerWork
	default:
		return listingusecase.PolicyPerCreator
	}
}

func (s *Service) Start(ctx context.Context) error {
	s.startStopMu.Lock()
	defer s.startStopMu.Unlock()
	if err := s.gateway.Start(ctx); err != nil {
		s.recordError(domaincontracts.WrapCategorizedError(domaincontracts.ErrorCategoryLedger, err))
		return err
	}
	status := s.gateway.Status()
	s.logger.Info("ledger gateway started", "transport", status.Transport, "endpoint", status.Endpoint)
	return nil
}

func (s *Service) Stop(ctx context.Context) error {
	s.startStopMu.Lock()
	defer s.startStopMu.Unlock()
	return s.gateway.Stop(ctx)
}

// Login resolves or registers an account for a wallet address. An address can
// hold exactly one role; attempts to take the other role are rejected, the
// same way the original listing service refuses mixed registrations.
func (s *Service) Login(ctx context.Context, address, role string) (result models.LoginResult, err error) {
	defer s.trackOperation("auth.login", &err)()

	address = strings.TrimSpace(address)
	role = models.NormalizeRole(role)
	if address == "" || role == "" {
		return models.LoginResult{}, ErrMissingAuth
	}
	if !models.ValidRole(role) {
		return models.LoginResult{}, ErrInvalidRole
	}

	creator, isCreator := s.accounts.FindCreatorByAddress(address)
	fan, isFan := s.accounts.FindFanByAddress(address)
	if isCreator && isFan {
		return models.LoginResult{}, ErrAddressBothRoles
	}

	switch role {
	case models.RoleCreator:
		if isFan {
			return models.LoginResult{}, ErrRegisteredAsFan
		}
		if !isCreator {
			id, err := app.GeneratePrefixedID("creator")
			if err != nil {
				return models.LoginResult{}, err
			}
			creator = storage.NewCreator(id, address)
			if err := s.accounts.SaveCreator(creator); err != nil {
				s.recordError(domaincontracts.WrapCategorizedError(domaincontracts.ErrorCategoryStorage, err))
				return models.LoginResult{}, err
			}
			s.logger.Info("creator registered", privacylog.SanitizeArgs("creator_id", creator.ID, "address", address)...)
		}
		return models.LoginResult{Role: role, Creator: &creator}, nil
	default:
		if isCreator {
			return models.LoginResult{}, ErrRegisteredAsCreator
		}
		if !isFan {
			id, err := app.GeneratePrefixedID("fan")
			if err != nil {
				return models.LoginResult{}, err
			}
			fan = storage.NewFan(id, address)
			if err := s.accounts.SaveFan(fan); err != nil {
				s.recordError(domaincontracts.WrapCategorizedError(domaincontracts.ErrorCategoryStorage, err))
				return models.LoginResult{}, err
			}
			s.logger.Info("fan registered", privacylog.SanitizeArgs("fan_id", fan.ID, "address", address)...)
		}
		return models.LoginResult{Role: role, Fan: &fan}, nil
	}
}

// ListWork runs the listing pipeline. The pipeline always runs to completion
// server-side: once the ledger call is in flight it cannot be safely aborted,
// so caller abandonment must not cancel it.
func (s *Service) ListWork(ctx context.Context, creatorID, workID string, percentage int) (models.WorkListing, error) {
	runCtx := context.WithoutCancel(ctx)
	listing, err := s.orchestrator.ListWork(runCtx, creatorID, workID, percentage)

	stage := listingusecase.Classify(err)
	observability.RecordListingOutcome(string(stage))
	switch {
	case err == nil:
		observability.RecordLedgerSubmission(true)
		s.logger.Info("work listed",
			privacylog.SanitizeArgs("creator_id", listing.CreatorID, "listing_id", listing.ID, "ledger_reference", listing.LedgerReference)...)
	case stage == listingusecase.StageSubmitting:
		observability.RecordLedgerSubmission(false)
		s.logger.Error("listing aborted", "stage", string(stage), "error", err.Error())
	case stage == listingusecase.StagePersisting:
		// The ledger committed before the catalog write failed.
		observability.RecordLedgerSubmission(true)
		s.metrics.RecordReconciliationPending(1)
		var reconciliation *listingusecase.ReconciliationError
		errors.As(err, &reconciliation)
		observability.SetReconciliationPending(s.reconciliationQueue())
		s.logger.Error("listing needs reconciliation",
			privacylog.SanitizeArgs("creator_id", creatorID, "ledger_reference", reconciliation.LedgerReference, "error", err.Error())...)
	default:
		s.logger.Warn("listing aborted", "stage", string(stage), "error", err.Error())
	}
	if err != nil {
		return models.WorkListing{}, err
	}
	return listing, nil
}

func (s *Service) GetListings(creatorID string, limit, offset int) ([]models.WorkListing, error) {
	creatorID = strings.TrimSpace(creatorID)
	if creatorID == "" {
		return s.listings.List(limit, offset), nil
	}
	listings := s.listings.FindByCreator(creatorID)
	if offset > 0 {
		if offset >= len(listings) {
			return []models.WorkListing{}, nil
		}
		listings = listings[offset:]
	}
	if limit > 0 && limit < len(listings) {
		listings = listings[:limit]
	}
	return listings, nil
}

func (s *Service) GetCreator(creatorID string) (models.Creator, error) {
	creator, ok := s.accounts.GetCreator(strings.TrimSpace(creatorID))
	if !ok {
		return models.Creator{}, listingusecase.ErrCreatorNotFound
	}
	return creator, nil
}

// VerifyCreator marks a creator as approved. New creators register as
// pending and stay there until an operator runs this.
func (s *Service) VerifyCreator(creatorID string) (models.Creator, error) {
	creator, ok, err := s.accounts.SetCreatorVerification(strings.TrimSpace(creatorID), models.VerificationApproved)
	if err != nil {
		s.recordError(domaincontracts.WrapCategorizedError(domaincontracts.ErrorCategoryStorage, err))
		return models.Creator{}, err
	}
	if !ok {
		return models.Creator{}, listingusecase.ErrCreatorNotFound
	}
	s.logger.Info("creator verified", privacylog.SanitizeArgs("creator_id", creator.ID)...)
	return creator, nil
}

func (s *Service) GetLedgerStatus() models.LedgerStatus {
	status := s.gateway.Status()
	return models.LedgerStatus{
		Transport:       status.Transport,
		State:           status.State,
		Endpoint:        status.Endpoint,
		SubmissionCount: status.SubmissionCount,
		FailureCount:    status.FailureCount,
		LastSubmission:  status.LastSubmission,
	}
}

func (s *Service) GetMetrics() models.MetricsSnapshot {
	counters, opStats, reconciliation, lastAt := s.metrics.Snapshot()
	return models.MetricsSnapshot{
		ErrorCounters:       counters,
		OperationStats:      opStats,
		ListingCount:        s.listings.Count(),
		SubscriberCount:     s.registry.Len(),
		ReconciliationQueue: reconciliation,
		LastUpdatedAt:       lastAt,
	}
}

// SubscribeFan registers a live connection for a fan and returns the channel
// the transport reads broadcast events from. The cancel func removes exactly
// this connection, so a newer subscription for the same fan survives it.
func (s *Service) SubscribeFan(fanID string) (<-chan NotificationEvent, func(), error) {
	fanID = strings.TrimSpace(fanID)
	if fanID == "" {
		return nil, nil, errors.New("fan id is required")
	}
	conn := newStreamConn()
	s.registry.Subscribe(fanID, conn)
	observability.SetActiveSubscribers(s.registry.Len())
	cancel := func() {
		s.registry.UnsubscribeConn(conn)
		observability.SetActiveSubscribers(s.registry.Len())
	}
	return conn.ch, cancel, nil
}

func (s *Service) SubscriberCount() int {
	return s.registry.Len()
}

func (s *Service) submitIssuance(ctx context.Context, req ledger.IssuanceRequest) (ledger.Receipt, error) {
	return s.gateway.SubmitIssuance(ctx, req)
}

func (s *Service) notify(method string, payload any) {
	event, delivered := s.broadcaster.Broadcast(method, payload)
	s.logger.Info("notification broadcast", "method", method, "seq", event.Seq, "delivered", delivered)
}

func (s *Service) reconciliationQueue() int {
	_, _, reconciliation, _ := s.metrics.Snapshot()
	return reconciliation
}

func (s *Service) recordError(err error) {
	category := domaincontracts.ErrorCategory(err)
	s.metrics.RecordError(category)
	s.logger.Error("service error", "category", category, "error", err.Error())
}

func (s *Service) trackOperation(operation string, errRef *error) func() {
	started := time.Now()
	return func() {
		s.metrics.RecordOp(operation, started)
		if errRef != nil && *errRef != nil {
			s.metrics.RecordOpError(operation)
		}
	}
}

var _ contracts.DaemonService = (*Service)(nil)
