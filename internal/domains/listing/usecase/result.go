package usecase

import (
	"errors"
	"fmt"
)

// Stage names each step of the listing pipeline. A failed run reports the
// stage it aborted in, so every exit path is enumerable.
type Stage string

const (
	StageValidating     Stage = "validating"
	StageDuplicateCheck Stage = "duplicate_check"
	StageSubmitting     Stage = "submitting"
	StagePersisting     Stage = "persisting"
	StageNotifying      Stage = "notifying"
	StageDone           Stage = "done"
)

var (
	ErrInvalidInput    = errors.New("invalid listing input")
	ErrCreatorNotFound = errors.New("creator not found")
	ErrAlreadyListed   = errors.New("work already listed")
)

// LedgerSubmissionError is a pre-commit failure. Nothing was issued on the
// ledger, so the caller may retry the whole request from scratch.
type LedgerSubmissionError struct {
	Cause error
}

func (e *LedgerSubmissionError) Error() string {
	return fmt.Sprintf("ledger submission failed: %v", e.Cause)
}

func (e *LedgerSubmissionError) Unwrap() error {
	return e.Cause
}

// ReconciliationError means the ledger committed the issuance but the catalog
// write failed afterwards. The ledger effect is irreversible while the
// catalog write is not, so this must never be retried blindly: resubmitting
// would double-issue. It carries the ledger reference so an operator or an
// idempotent repair path can attach the orphaned ledger record later.
type ReconciliationError struct {
	LedgerReference string
	Cause           error
}

func (e *ReconciliationError) Error() string {
	return fmt.Sprintf("listing persisted on ledger (%s) but catalog write failed: %v", e.LedgerReference, e.Cause)
}

func (e *ReconciliationError) Unwrap() error {
	return e.Cause
}

// Classify reports the stage a pipeline error belongs to. A nil error
// classifies as StageDone.
func Classify(err error) Stage {
	switch {
	case err == nil:
		return StageDone
	case errors.Is(err, ErrInvalidInput):
		return StageValidating
	case errors.Is(err, ErrCreatorNotFound), errors.Is(err, ErrAlreadyListed):
		return StageDuplicateCheck
	default:
	}
	var reconciliation *ReconciliationError
	if errors.As(err, &reconciliation) {
		return StagePersisting
	}
	var submission *LedgerSubmissionError
	if errors.As(err, &submission) {
		return StageSubmitting
	}
	return StageValidating
}

// RetrySafe reports whether the caller can retry the request with no risk of
// double-issuing on the ledger.
func RetrySafe(err error) bool {
	if err == nil {
		return false
	}
	var reconciliation *ReconciliationError
	return !errors.As(err, &reconciliation)
}
