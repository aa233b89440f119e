// Package signer holds the daemon's ledger signing wallet. Issuance
// transactions are signed server-side with this key, mirroring the backend
// treasury signer of the hosted deployment.
package signer

import (
	"crypto/ed25519"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"strings"

	"github.com/tyler-smith/go-bip39"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/hkdf"
)

const (
	hkdfInfoLedgerSigning = "fave/ledger/signing/v1"

	// ed25519 scheme flag prepended to the public key for address derivation.
	addressSchemeFlag = 0x00
	addressByteLen    = 32
)

var (
	ErrMnemonicRequired = errors.New("signer mnemonic is required")
	ErrInvalidMnemonic  = errors.New("signer mnemonic is invalid")
)

type Signer struct {
	priv    ed25519.PrivateKey
	pub     ed25519.PublicKey
	address string
}

// Generate creates a fresh wallet and returns its mnemonic for operator
// backup.
func Generate() (*Signer, string, error) {
	entropy, err := bip39.NewEntropy(256)
	if err != nil {
		return nil, "", err
	}
	mnemonic, err := bip39.NewMnemonic(entropy)
	if err != nil {
		return nil, "", err
	}
	s, err := FromMnemonic(mnemonic)
	if err != nil {
		return nil, "", err
	}
	return s, mnemonic, nil
}

func FromMnemonic(mnemonic string) (*Signer, error) {
	mnemonic = strings.TrimSpace(mnemonic)
	if mnemonic == "" {
		return nil, ErrMnemonicRequired
	}
	if !bip39.IsMnemonicValid(mnemonic) {
		return nil, ErrInvalidMnemonic
	}
	seedBytes := bip39.NewSeed(mnemonic, "")
	signingSeed, err := hkdfExpand(seedBytes, hkdfInfoLedgerSigning, ed25519.SeedSize)
	if err != nil {
		return nil, err
	}
	priv := ed25519.NewKeyFromSeed(signingSeed)
	pub := priv.Public().(ed25519.PublicKey)
	address, err := deriveAddress(pub)
	if err != nil {
		return nil, err
	}
	return &Signer{priv: priv, pub: pub, address: address}, nil
}

func (s *Signer) Address() string {
	return s.address
}

func (s *Signer) PublicKey() ed25519.PublicKey {
	return append(ed25519.PublicKey(nil), s.pub...)
}

func (s *Signer) Sign(message []byte) []byte {
	return ed25519.Sign(s.priv, message)
}

func (s *Signer) Verify(message, sig []byte) bool {
	return ed25519.Verify(s.pub, message, sig)
}

func deriveAddress(pub ed25519.PublicKey) (string, error) {
	h, err := blake2b.New256(nil)
	if err != nil {
		return "", err
	}
	h.Write([]byte{addressSchemeFlag})
	h.Write(pub)
	sum := h.Sum(nil)
	return "0x" + hex.EncodeToString(sum[:addressByteLen]), nil
}

func hkdfExpand(seed []byte, info string, outLen int) ([]byte, error) {
	reader := hkdf.New(sha256.New, seed, nil, []byte(info))
	out := make([]byte, outLen)
	if _, err := io.ReadFull(reader, out); err != nil {
		return nil, err
	}
	return out, nil
}
