package storage

import (
	"errors"
	"path/filepath"
	"testing"

	"fave/go-backend/pkg/models"
)

func TestAccountStoreCreatorRoundTrip(t *testing.T) {
	s := NewAccountStore()
	creator := NewCreator("cre_1", "0xabc")
	if err := s.SaveCreator(creator); err != nil {
		t.Fatalf("save creator failed: %v", err)
	}

	got, ok := s.GetCreator("cre_1")
	if !ok {
		t.Fatal("creator not found")
	}
	if got.Verification != models.VerificationPending {
		t.Fatalf("expected pending verification, got %s", got.Verification)
	}
	byAddr, ok := s.FindCreatorByAddress("0xabc")
	if !ok || byAddr.ID != "cre_1" {
		t.Fatalf("lookup by address failed: %+v ok=%v", byAddr, ok)
	}
}

func TestAccountStoreRejectsEmptyAddress(t *testing.T) {
	s := NewAccountStore()
	if err := s.SaveCreator(models.Creator{ID: "cre_1"}); !errors.Is(err, ErrAddressRequired) {
		t.Fatalf("expected ErrAddressRequired, got %v", err)
	}
	if err := s.SaveFan(models.Fan{ID: "fan_1", Address: "  "}); !errors.Is(err, ErrAddressRequired) {
		t.Fatalf("expected ErrAddressRequired for fan, got %v", err)
	}
}

func TestAccountStoreRejectsIDConflicts(t *testing.T) {
	s := NewAccountStore()
	if err := s.SaveCreator(NewCreator("cre_1", "0xabc")); err != nil {
		t.Fatalf("save creator failed: %v", err)
	}
	if err := s.SaveCreator(NewCreator("cre_1", "0xdef")); !errors.Is(err, ErrCreatorIDConflict) {
		t.Fatalf("expected ErrCreatorIDConflict, got %v", err)
	}
	if err := s.SaveFan(NewFan("fan_1", "0x123")); err != nil {
		t.Fatalf("save fan failed: %v", err)
	}
	if err := s.SaveFan(NewFan("fan_1", "0x456")); !errors.Is(err, ErrFanIDConflict) {
		t.Fatalf("expected ErrFanIDConflict, got %v", err)
	}
}

func TestAccountStoreSetCreatorVerification(t *testing.T) {
	s := NewAccountStore()
	if err := s.SaveCreator(NewCreator("cre_1", "0xabc")); err != nil {
		t.Fatalf("save creator failed: %v", err)
	}

	updated, ok, err := s.SetCreatorVerification("cre_1", models.VerificationApproved)
	if err != nil || !ok {
		t.Fatalf("set verification failed: ok=%v err=%v", ok, err)
	}
	if updated.Verification != models.VerificationApproved {
		t.Fatalf("verification not applied: %+v", updated)
	}
	if _, ok, _ := s.SetCreatorVerification("cre_missing", models.VerificationApproved); ok {
		t.Fatal("expected ok=false for unknown creator")
	}
}

func TestPersistentAccountStoreReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "accounts.enc")
	s, err := NewPersistentAccountStore(path, "secret")
	if err != nil {
		t.Fatalf("new store failed: %v", err)
	}
	if err := s.SaveCreator(NewCreator("cre_1", "0xabc")); err != nil {
		t.Fatalf("save creator failed: %v", err)
	}
	if err := s.SaveFan(NewFan("fan_1", "0x123")); err != nil {
		t.Fatalf("save fan failed: %v", err)
	}

	reloaded, err := NewPersistentAccountStore(path, "secret")
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if _, ok := reloaded.GetCreator("cre_1"); !ok {
		t.Fatal("creator missing after reload")
	}
	if _, ok := reloaded.FindFanByAddress("0x123"); !ok {
		t.Fatal("fan missing after reload")
	}
}
