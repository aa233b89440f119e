package ledger

import (
	"context"
	"crypto/ed25519"
	"errors"
	"sync"
	"time"
)

var errBadSignature = errors.New("mock ledger rejected signature")

// mockBackend is an in-process ledger used by the default transport. It
// verifies signatures, assigns monotonic checkpoints, and answers a repeated
// digest with the original receipt.
type mockBackend struct {
	mu         sync.Mutex
	checkpoint uint64
	receipts   map[string]Receipt
	failNext   error
}

func newMockBackend() *mockBackend {
	return &mockBackend{receipts: make(map[string]Receipt)}
}

func (m *mockBackend) Start(ctx context.Context, cfg Config) error {
	return nil
}

func (m *mockBackend) Stop() {}

func (m *mockBackend) Endpoint() string {
	return "mock://in-process"
}

func (m *mockBackend) Submit(ctx context.Context, tx SignedTransaction) (Receipt, error) {
	if err := ctx.Err(); err != nil {
		return Receipt{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failNext != nil {
		err := m.failNext
		m.failNext = nil
		return Receipt{}, err
	}
	if len(tx.PublicKey) != ed25519.PublicKeySize || !verifyTxSignature(tx) {
		return Receipt{}, errBadSignature
	}

	ref := tx.Reference()
	if receipt, ok := m.receipts[ref]; ok {
		return receipt, nil
	}
	m.checkpoint++
	receipt := Receipt{
		Reference:  ref,
		Checkpoint: m.checkpoint,
		Timestamp:  time.Now().UTC(),
	}
	m.receipts[ref] = receipt
	return receipt, nil
}

// FailNext makes the next submission fail with the given error.
func (m *mockBackend) FailNext(err error) {
	m.mu.Lock()
	m.failNext = err
	m.mu.Unlock()
}

func verifyTxSignature(tx SignedTransaction) bool {
	digest := txDigest(tx.TxBytes)
	return ed25519.Verify(ed25519.PublicKey(tx.PublicKey), digest[:], tx.Signature)
}
