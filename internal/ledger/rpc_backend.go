package ledger

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
)

const submitMethod = "fave_submitIssuance"

// rpcBackend talks JSON-RPC to one of the configured fullnode endpoints.
// Endpoints are tried in order; the first answer wins. A submission error
// from a node that accepted the request is final and is not retried against
// another node, since the transaction may already have been committed.
type rpcBackend struct {
	mu        sync.RWMutex
	endpoints []string
	client    *http.Client
}

func newRPCBackend() *rpcBackend {
	return &rpcBackend{}
}

func (b *rpcBackend) Start(ctx context.Context, cfg Config) error {
	urls, err := parseEndpoints(cfg.Endpoints)
	if err != nil {
		return err
	}
	b.mu.Lock()
	b.endpoints = urls
	b.client = &http.Client{Timeout: cfg.RequestTimeout}
	b.mu.Unlock()
	return nil
}

func (b *rpcBackend) Stop() {
	b.mu.Lock()
	if b.client != nil {
		b.client.CloseIdleConnections()
	}
	b.client = nil
	b.mu.Unlock()
}

func (b *rpcBackend) Endpoint() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if len(b.endpoints) == 0 {
		return ""
	}
	return b.endpoints[0]
}

type submitParams struct {
	TxBytes   string `json:"tx_bytes"`
	Signature string `json:"signature"`
	PublicKey string `json:"public_key"`
}

type submitResult struct {
	Digest     string `json:"digest"`
	Checkpoint uint64 `json:"checkpoint"`
}

func (b *rpcBackend) Submit(ctx context.Context, tx SignedTransaction) (Receipt, error) {
	b.mu.RLock()
	endpoints := b.endpoints
	client := b.client
	b.mu.RUnlock()
	if client == nil {
		return Receipt{}, ErrNotStarted
	}

	request := struct {
		JSONRPC string         `json:"jsonrpc"`
		ID      int            `json:"id"`
		Method  string         `json:"method"`
		Params  []submitParams `json:"params"`
	}{
		JSONRPC: "2.0",
		ID:      1,
		Method:  submitMethod,
		Params: []submitParams{{
			TxBytes:   base64.StdEncoding.EncodeToString(tx.TxBytes),
			Signature: base64.StdEncoding.EncodeToString(tx.Signature),
			PublicKey: base64.StdEncoding.EncodeToString(tx.PublicKey),
		}},
	}
	body, err := json.Marshal(request)
	if err != nil {
		return Receipt{}, err
	}

	var lastErr error
	for _, endpoint := range endpoints {
		receipt, reached, err := b.submitTo(ctx, endpoint, body)
		if err == nil {
			return receipt, nil
		}
		if reached {
			// The node saw the transaction; failing over could double-issue.
			return Receipt{}, err
		}
		lastErr = err
	}
	return Receipt{}, fmt.Errorf("all ledger endpoints unreachable: %w", lastErr)
}

func (b *rpcBackend) submitTo(ctx context.Context, endpoint string, body []byte) (Receipt, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return Receipt{}, false, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.client.Do(req)
	if err != nil {
		return Receipt{}, false, fmt.Errorf("dial %s: %w", endpoint, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return Receipt{}, false, fmt.Errorf("%s answered status %d", endpoint, resp.StatusCode)
	}

	var decoded struct {
		Result *submitResult `json:"result"`
		Error  *struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return Receipt{}, true, fmt.Errorf("decode response from %s: %w", endpoint, err)
	}
	if decoded.Error != nil {
		return Receipt{}, true, fmt.Errorf("ledger rejected transaction: %s (code %d)", decoded.Error.Message, decoded.Error.Code)
	}
	if decoded.Result == nil || decoded.Result.Digest == "" {
		return Receipt{}, true, fmt.Errorf("ledger answer from %s has no digest", endpoint)
	}
	return Receipt{
		Reference:  decoded.Result.Digest,
		Checkpoint: decoded.Result.Checkpoint,
		Timestamp:  nowUTC(),
	}, true, nil
}
