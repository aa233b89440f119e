package ledger

import (
	"encoding/json"
	"time"

	"github.com/mr-tron/base58"
	"golang.org/x/crypto/blake2b"

	"fave/go-backend/internal/signer"
)

// Transaction describes a royalty-share token issuance call. Field order is
// fixed by the struct so the encoded bytes are stable for a given input.
type Transaction struct {
	Target     string    `json:"target"`
	Treasury   string    `json:"treasury,omitempty"`
	Percentage uint64    `json:"percentage"`
	Sender     string    `json:"sender"`
	GasBudget  uint64    `json:"gas_budget"`
	Nonce      uint64    `json:"nonce"`
	IssuedAt   time.Time `json:"issued_at"`
}

type SignedTransaction struct {
	TxBytes   []byte `json:"tx_bytes"`
	Signature []byte `json:"signature"`
	PublicKey []byte `json:"public_key"`
}

func SignTransaction(tx Transaction, sgn *signer.Signer) (SignedTransaction, error) {
	txBytes, err := json.Marshal(tx)
	if err != nil {
		return SignedTransaction{}, err
	}
	digest := txDigest(txBytes)
	return SignedTransaction{
		TxBytes:   txBytes,
		Signature: sgn.Sign(digest[:]),
		PublicKey: sgn.PublicKey(),
	}, nil
}

// Reference is the base58 transaction digest used as the catalog's ledger
// anchor.
func (st SignedTransaction) Reference() string {
	digest := txDigest(st.TxBytes)
	return base58.Encode(digest[:])
}

func txDigest(txBytes []byte) [32]byte {
	return blake2b.Sum256(txBytes)
}
