// Package ledger submits royalty-token issuance transactions to an external
// token ledger. The ledger is consumed as an opaque capability: submit a
// signed transaction, get back a receipt or a failure. Receipts are final;
// nothing here retries a submission.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"fave/go-backend/internal/signer"
)

const (
	TransportMock = "mock"
	TransportRPC  = "rpc"

	StateIdle        = "idle"
	StateReady       = "ready"
	StateUnreachable = "unreachable"
)

var (
	ErrNotStarted       = errors.New("ledger gateway is not started")
	ErrSignerRequired   = errors.New("ledger gateway requires a signer")
	ErrInvalidIssuance  = errors.New("issuance request is invalid")
	ErrUnknownTransport = errors.New("unknown ledger transport")
)

type Config struct {
	Transport      string        `yaml:"transport"`
	Endpoints      []string      `yaml:"endpoints"`
	TargetContract string        `yaml:"targetContract"`
	TreasuryObject string        `yaml:"treasuryObject"`
	GasBudget      uint64        `yaml:"gasBudget"`
	RequestTimeout time.Duration `yaml:"requestTimeout"`
}

func DefaultConfig() Config {
	return Config{
		Transport:      TransportMock,
		GasBudget:      20_000_000,
		RequestTimeout: 15 * time.Second,
	}
}

func nowUTC() time.Time {
	return time.Now().UTC()
}

func normalizeConfig(cfg Config) Config {
	def := DefaultConfig()
	if strings.TrimSpace(cfg.Transport) == "" {
		cfg.Transport = def.Transport
	}
	if cfg.GasBudget == 0 {
		cfg.GasBudget = def.GasBudget
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = def.RequestTimeout
	}
	return cfg
}

type Status struct {
	Transport       string
	State           string
	Endpoint        string
	SubmissionCount int
	FailureCount    int
	LastSubmission  time.Time
}

// Receipt is the ledger's acknowledgement of a committed issuance.
type Receipt struct {
	Reference  string    `json:"reference"`
	Checkpoint uint64    `json:"checkpoint"`
	Timestamp  time.Time `json:"timestamp"`
}

type IssuanceRequest struct {
	TargetContract string
	TreasuryObject string
	Percentage     uint64
}

type gatewayBackend interface {
	Start(ctx context.Context, cfg Config) error
	Stop()
	Submit(ctx context.Context, tx SignedTransaction) (Receipt, error)
	Endpoint() string
}

type Gateway struct {
	mu      sync.RWMutex
	cfg     Config
	status  Status
	signer  *signer.Signer
	backend gatewayBackend
	nonce   uint64
}

func NewGateway(cfg Config, sgn *signer.Signer) *Gateway {
	cfg = normalizeConfig(cfg)
	return &Gateway{
		cfg:    cfg,
		signer: sgn,
		status: Status{Transport: cfg.Transport, State: StateIdle},
	}
}

func (g *Gateway) Start(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.signer == nil {
		return ErrSignerRequired
	}
	if g.backend != nil {
		return nil
	}
	backend, err := newBackend(g.cfg.Transport)
	if err != nil {
		return err
	}
	if err := backend.Start(ctx, g.cfg); err != nil {
		g.status.State = StateUnreachable
		return err
	}
	g.backend = backend
	g.status.State = StateReady
	g.status.Endpoint = backend.Endpoint()
	return nil
}

func (g *Gateway) Stop(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.backend == nil {
		return nil
	}
	g.backend.Stop()
	g.backend = nil
	g.status.State = StateIdle
	g.status.Endpoint = ""
	return nil
}

func (g *Gateway) Status() Status {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.status
}

// SubmitIssuance builds, signs and submits an issuance transaction. The call
// blocks until the ledger answers or the configured request timeout elapses.
func (g *Gateway) SubmitIssuance(ctx context.Context, req IssuanceRequest) (Receipt, error) {
	g.mu.Lock()
	if g.backend == nil {
		g.mu.Unlock()
		return Receipt{}, ErrNotStarted
	}
	backend := g.backend
	cfg := g.cfg
	sgn := g.signer
	g.nonce++
	nonce := g.nonce
	g.mu.Unlock()

	if req.Percentage == 0 {
		return Receipt{}, fmt.Errorf("%w: percentage must be positive", ErrInvalidIssuance)
	}
	target := req.TargetContract
	if target == "" {
		target = cfg.TargetContract
	}
	if strings.TrimSpace(target) == "" {
		return Receipt{}, fmt.Errorf("%w: target contract is required", ErrInvalidIssuance)
	}
	treasury := req.TreasuryObject
	if treasury == "" {
		treasury = cfg.TreasuryObject
	}

	tx := Transaction{
		Target:     target,
		Treasury:   treasury,
		Percentage: req.Percentage,
		Sender:     sgn.Address(),
		GasBudget:  cfg.GasBudget,
		Nonce:      nonce,
		IssuedAt:   time.Now().UTC(),
	}
	signed, err := SignTransaction(tx, sgn)
	if err != nil {
		return Receipt{}, err
	}

	submitCtx, cancel := context.WithTimeout(ctx, cfg.RequestTimeout)
	defer cancel()
	receipt, err := backend.Submit(submitCtx, signed)

	g.mu.Lock()
	g.status.LastSubmission = time.Now().UTC()
	if err != nil {
		g.status.FailureCount++
	} else {
		g.status.SubmissionCount++
	}
	g.mu.Unlock()

	if err != nil {
		return Receipt{}, err
	}
	return receipt, nil
}

func newBackend(transport string) (gatewayBackend, error) {
	switch transport {
	case TransportMock:
		return newMockBackend(), nil
	case TransportRPC:
		return newRPCBackend(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownTransport, transport)
	}
}
