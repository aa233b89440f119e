package ledger

import (
	"testing"
	"time"

	"fave/go-backend/internal/signer"
)

const testMnemonic = "legal winner thank year wave sausage worth useful legal winner thank yellow"

func TestSignTransactionVerifies(t *testing.T) {
	sgn, err := signer.FromMnemonic(testMnemonic)
	if err != nil {
		t.Fatalf("signer from mnemonic failed: %v", err)
	}

	tx := Transaction{
		Target:     "0xc0ffee::worktoken::mint_creator_token",
		Percentage: 15,
		Sender:     sgn.Address(),
		GasBudget:  20_000_000,
		Nonce:      1,
		IssuedAt:   time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
	signed, err := SignTransaction(tx, sgn)
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}
	if !verifyTxSignature(signed) {
		t.Fatal("signature did not verify against its own tx bytes")
	}

	signed.TxBytes[0] ^= 0xff
	if verifyTxSignature(signed) {
		t.Fatal("signature verified over tampered tx bytes")
	}
}

func TestReferenceIsDeterministic(t *testing.T) {
	sgn, err := signer.FromMnemonic(testMnemonic)
	if err != nil {
		t.Fatalf("signer from mnemonic failed: %v", err)
	}
	tx := Transaction{
		Target:     "0xc0ffee::worktoken::mint_creator_token",
		Percentage: 15,
		Sender:     sgn.Address(),
		GasBudget:  20_000_000,
		Nonce:      7,
		IssuedAt:   time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}

	a, err := SignTransaction(tx, sgn)
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}
	b, err := SignTransaction(tx, sgn)
	if err != nil {
		t.Fatalf("second sign failed: %v", err)
	}
	if a.Reference() == "" {
		t.Fatal("empty reference")
	}
	if a.Reference() != b.Reference() {
		t.Fatalf("same transaction produced references %s and %s", a.Reference(), b.Reference())
	}

	tx.Nonce = 8
	c, err := SignTransaction(tx, sgn)
	if err != nil {
		t.Fatalf("third sign failed: %v", err)
	}
	if c.Reference() == a.Reference() {
		t.Fatal("distinct nonces produced the same reference")
	}
}
