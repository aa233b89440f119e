package api

import (
	"context"
	"errors"
	"testing"
	"time"

	"fave/go-backend/internal/bootstrap/ledgerconfig"
	listingusecase "fave/go-backend/internal/domains/listing/usecase"
	"fave/go-backend/internal/ledger"
	"fave/go-backend/pkg/models"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	cfg := ledger.DefaultConfig()
	cfg.TargetContract = "0xc0ffee::worktoken::mint_creator_token"
	cfg.TreasuryObject = "0xf00d"
	svc, err := NewServiceWithSettings(ledgerconfig.Settings{Ledger: cfg})
	if err != nil {
		t.Fatalf("build service failed: %v", err)
	}
	if err := svc.Start(context.Background()); err != nil {
		t.Fatalf("start service failed: %v", err)
	}
	t.Cleanup(func() { _ = svc.Stop(context.Background()) })
	return svc
}

func TestLoginCreatesCreatorOnce(t *testing.T) {
	svc := newTestService(t)

	first, err := svc.Login(context.Background(), "0xwallet1", "creator")
	if err != nil {
		t.Fatalf("first login failed: %v", err)
	}
	if first.Role != "creator" || first.Creator == nil || first.Creator.ID == "" {
		t.Fatalf("unexpected login result: %+v", first)
	}

	second, err := svc.Login(context.Background(), "0xwallet1", "creator")
	if err != nil {
		t.Fatalf("repeat login failed: %v", err)
	}
	if second.Creator.ID != first.Creator.ID {
		t.Fatalf("repeat login must return the same creator, got %s and %s", first.Creator.ID, second.Creator.ID)
	}
}

func TestLoginEchoesCanonicalRole(t *testing.T) {
	svc := newTestService(t)

	result, err := svc.Login(context.Background(), "0xcased", " Creator ")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if result.Role != "creator" {
		t.Fatalf("role must be returned in canonical lower-case form, got %q", result.Role)
	}

	result, err = svc.Login(context.Background(), "0xcased2", "FAN")
	if err != nil {
		t.Fatalf("fan login failed: %v", err)
	}
	if result.Role != "fan" {
		t.Fatalf("role must be returned in canonical lower-case form, got %q", result.Role)
	}
}

func TestLoginRejectsCrossRoleWallets(t *testing.T) {
	svc := newTestService(t)

	if _, err := svc.Login(context.Background(), "0xcreator", "creator"); err != nil {
		t.Fatalf("creator login failed: %v", err)
	}
	if _, err := svc.Login(context.Background(), "0xcreator", "fan"); !errors.Is(err, ErrRegisteredAsCreator) {
		t.Fatalf("expected ErrRegisteredAsCreator, got: %v", err)
	}

	if _, err := svc.Login(context.Background(), "0xfan", "fan"); err != nil {
		t.Fatalf("fan login failed: %v", err)
	}
	if _, err := svc.Login(context.Background(), "0xfan", "creator"); !errors.Is(err, ErrRegisteredAsFan) {
		t.Fatalf("expected ErrRegisteredAsFan, got: %v", err)
	}

	if _, err := svc.Login(context.Background(), "", "fan"); !errors.Is(err, ErrMissingAuth) {
		t.Fatalf("expected ErrMissingAuth, got: %v", err)
	}
	if _, err := svc.Login(context.Background(), "0xother", "admin"); !errors.Is(err, ErrInvalidRole) {
		t.Fatalf("expected ErrInvalidRole, got: %v", err)
	}
}

func TestVerifyCreatorApprovesPendingCreator(t *testing.T) {
	svc := newTestService(t)

	login, err := svc.Login(context.Background(), "0xpending", "creator")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if login.Creator.Verification != models.VerificationPending {
		t.Fatalf("new creators must start pending, got %q", login.Creator.Verification)
	}

	verified, err := svc.VerifyCreator(login.Creator.ID)
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if verified.Verification != models.VerificationApproved {
		t.Fatalf("expected approved verification, got %q", verified.Verification)
	}

	creator, err := svc.GetCreator(login.Creator.ID)
	if err != nil {
		t.Fatalf("get creator failed: %v", err)
	}
	if creator.Verification != models.VerificationApproved {
		t.Fatalf("verification must persist, got %q", creator.Verification)
	}

	if _, err := svc.VerifyCreator("creator_missing"); !errors.Is(err, listingusecase.ErrCreatorNotFound) {
		t.Fatalf("expected ErrCreatorNotFound, got: %v", err)
	}
}

func TestListWorkEndToEnd(t *testing.T) {
	svc := newTestService(t)
	login, err := svc.Login(context.Background(), "0xlister", "creator")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	creatorID := login.Creator.ID

	listing, err := svc.ListWork(context.Background(), creatorID, "", 10)
	if err != nil {
		t.Fatalf("list work failed: %v", err)
	}
	if listing.CreatorID != creatorID || listing.RoyaltyPercentage != 10 {
		t.Fatalf("unexpected listing: %+v", listing)
	}
	if listing.LedgerReference == "" || listing.ID == "" {
		t.Fatalf("listing must carry an id and a ledger reference: %+v", listing)
	}

	if _, err := svc.ListWork(context.Background(), creatorID, "", 20); !errors.Is(err, listingusecase.ErrAlreadyListed) {
		t.Fatalf("expected ErrAlreadyListed, got: %v", err)
	}

	got, err := svc.GetListings(creatorID, 0, 0)
	if err != nil {
		t.Fatalf("get listings failed: %v", err)
	}
	if len(got) != 1 || got[0].ID != listing.ID {
		t.Fatalf("persisted listing not found: %+v", got)
	}
}

func TestListWorkSurvivesCallerCancellation(t *testing.T) {
	svc := newTestService(t)
	login, err := svc.Login(context.Background(), "0xcancel", "creator")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	listing, err := svc.ListWork(ctx, login.Creator.ID, "", 33)
	if err != nil {
		t.Fatalf("pipeline must run to completion despite cancelled caller: %v", err)
	}
	if listing.LedgerReference == "" {
		t.Fatalf("listing must be anchored: %+v", listing)
	}
}

func TestSubscribeFanReceivesWorkListed(t *testing.T) {
	svc := newTestService(t)
	login, err := svc.Login(context.Background(), "0xnotify", "creator")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	ch, cancel, err := svc.SubscribeFan("fan_listener")
	if err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}
	defer cancel()
	if svc.SubscriberCount() != 1 {
		t.Fatalf("expected one subscriber, got %d", svc.SubscriberCount())
	}

	if _, err := svc.ListWork(context.Background(), login.Creator.ID, "", 44); err != nil {
		t.Fatalf("list work failed: %v", err)
	}

	select {
	case evt := <-ch:
		if evt.Method != "work.listed" {
			t.Fatalf("unexpected event method: %s", evt.Method)
		}
		if evt.Seq != 1 {
			t.Fatalf("unexpected seq: %d", evt.Seq)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("work.listed event was not delivered")
	}

	cancel()
	if svc.SubscriberCount() != 0 {
		t.Fatalf("cancel must unsubscribe, got %d subscribers", svc.SubscriberCount())
	}
}

func TestSubscribeFanRequiresFanID(t *testing.T) {
	svc := newTestService(t)
	if _, _, err := svc.SubscribeFan("  "); err == nil {
		t.Fatalf("expected error for blank fan id")
	}
}

func TestGetMetricsTracksOperations(t *testing.T) {
	svc := newTestService(t)
	login, err := svc.Login(context.Background(), "0xmetrics", "creator")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if _, err := svc.ListWork(context.Background(), login.Creator.ID, "", 5); err != nil {
		t.Fatalf("list work failed: %v", err)
	}

	snap := svc.GetMetrics()
	if snap.ListingCount != 1 {
		t.Fatalf("expected listing count 1, got %d", snap.ListingCount)
	}
	op, ok := snap.OperationStats["work.list"]
	if !ok || op.Count != 1 {
		t.Fatalf("expected one tracked work.list operation, got %+v", snap.OperationStats)
	}
	if _, ok := snap.OperationStats["auth.login"]; !ok {
		t.Fatalf("expected auth.login operation stats")
	}
}

func TestGetLedgerStatusReflectsGateway(t *testing.T) {
	svc := newTestService(t)
	status := svc.GetLedgerStatus()
	if status.Transport != ledger.TransportMock || status.State != "ready" {
		t.Fatalf("unexpected ledger status: %+v", status)
	}
}
