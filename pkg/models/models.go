package models

import (
	"strings"
	"time"
)

const (
	RoleCreator = "creator"
	RoleFan     = "fan"

	VerificationPending  = "pending"
	VerificationApproved = "approved"
)

type Creator struct {
	ID           string    `json:"id"`
	Address      string    `json:"address"`
	StageName    string    `json:"stage_name,omitempty"`
	Verification string    `json:"verification"`
	CreatedAt    time.Time `json:"created_at"`
}

type Fan struct {
	ID        string    `json:"id"`
	Address   string    `json:"address"`
	CreatedAt time.Time `json:"created_at"`
}

// WorkListing is immutable once persisted. LedgerReference is set only after
// the issuance transaction has been confirmed by the ledger.
type WorkListing struct {
	ID                string    `json:"id"`
	CreatorID         string    `json:"creator_id"`
	WorkID            string    `json:"work_id,omitempty"`
	RoyaltyPercentage int       `json:"royalty_percentage"`
	LedgerReference   string    `json:"ledger_reference"`
	LedgerCheckpoint  uint64    `json:"ledger_checkpoint,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
}

// LoginResult mirrors the login response of the HTTP surface: the resolved
// role plus exactly one populated account record.
type LoginResult struct {
	Role    string   `json:"role"`
	Creator *Creator `json:"creator,omitempty"`
	Fan     *Fan     `json:"fan,omitempty"`
}

type LedgerStatus struct {
	Transport       string    `json:"transport"`
	State           string    `json:"state"`
	Endpoint        string    `json:"endpoint,omitempty"`
	SubmissionCount int       `json:"submission_count"`
	FailureCount    int       `json:"failure_count"`
	LastSubmission  time.Time `json:"last_submission"`
}

type MetricsSnapshot struct {
	ErrorCounters       map[string]int             `json:"error_counters"`
	OperationStats      map[string]OperationMetric `json:"operation_stats"`
	ListingCount        int                        `json:"listing_count"`
	SubscriberCount     int                        `json:"subscriber_count"`
	ReconciliationQueue int                        `json:"reconciliation_queue"`
	LastUpdatedAt       time.Time                  `json:"last_updated_at"`
}

type OperationMetric struct {
	Count         int   `json:"count"`
	Errors        int   `json:"errors"`
	AvgLatencyMs  int64 `json:"avg_latency_ms"`
	MaxLatencyMs  int64 `json:"max_latency_ms"`
	LastLatencyMs int64 `json:"last_latency_ms"`
}

// NormalizeRole lowers a caller-supplied role to its canonical wire form.
// LoginResult.Role always carries this form, never the raw input.
func NormalizeRole(role string) string {
	return strings.ToLower(strings.TrimSpace(role))
}

func ValidRole(role string) bool {
	switch NormalizeRole(role) {
	case RoleCreator, RoleFan:
		return true
	default:
		return false
	}
}
