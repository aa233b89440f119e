package rpc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"fave/go-backend/internal/platform/observability"
)

type rpcRequest struct {
	JSONRPC    string          `json:"jsonrpc"`
	ID         json.RawMessage `json:"id"`
	Method     string          `json:"method"`
	Params     json.RawMessage `json:"params"`
	APIVersion *int            `json:"api_version,omitempty"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Result  any             `json:"result,omitempty"`
	Error   *rpcError       `json:"error,omitempty"`
}

const maxRPCBodyBytes int64 = 1 << 20 // 1 MiB
const (
	maxListingPageLimit  = 1000
	maxListingPageOffset = 1_000_000
)

func (s *Server) handleRPC(w http.ResponseWriter, r *http.Request) {
	if !s.applyCORS(w, r) {
		return
	}
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if !s.authorizeRPC(w, r) {
		return
	}
	if s.service == nil {
		writeRPC(w, rpcResponse{
			JSONRPC: "2.0",
			Error:   &rpcError{Code: -32099, Message: "service is not initialized"},
		})
		return
	}
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	clientKey := rpcRateLimitKey(r, s.extractRPCToken(r))
	if !s.rpcLimiter.Allow(clientKey, time.Now()) {
		http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxRPCBodyBytes)
	var req rpcRequest
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(&req); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			http.Error(w, "request body too large", http.StatusRequestEntityTooLarge)
			return
		}
		writeRPC(w, rpcResponse{
			JSONRPC: "2.0",
			Error:   &rpcError{Code: -32700, Message: "parse error"},
		})
		return
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		writeRPCInvalidRequest(w, req.ID)
		return
	}

	if req.JSONRPC != "2.0" || req.Method == "" {
		writeRPCInvalidRequest(w, req.ID)
		return
	}
	if rpcErr := validateRPCAPIVersion(req.APIVersion); rpcErr != nil {
		writeRPC(w, rpcResponse{JSONRPC: "2.0", ID: req.ID, Error: rpcErr})
		return
	}

	now := time.Now()
	idemKey := rpcIdempotencyKey(r.Header.Get(rpcIdempotencyHeader), s.extractRPCToken(r))
	if idemKey != "" {
		requestHash := rpcRequestHash(req)
		s.idemMu.Lock()
		cached, hit, conflict := s.idempotency.get(idemKey, requestHash, now)
		s.idemMu.Unlock()
		if conflict {
			writeRPC(w, rpcResponse{
				JSONRPC: "2.0",
				ID:      req.ID,
				Error:   &rpcError{Code: -32060, Message: "idempotency key was already used with a different request"},
			})
			return
		}
		if hit {
			cached.ID = req.ID
			writeRPC(w, cached)
			return
		}
	}

	reqID := fmt.Sprintf("rpc_%d", time.Now().UnixNano())
	started := time.Now()
	slog.Default().Info("rpc request", "request_id", reqID, "method", req.Method, "rpc_id", string(req.ID))

	result, rpcErr := s.dispatchRPC(r.Context(), req.Method, req.Params)
	observability.RecordRPCRequest(req.Method, rpcErr == nil, time.Since(started))
	if rpcErr != nil {
		slog.Default().Error("rpc failed", "request_id", reqID, "method", req.Method, "rpc_code", rpcErr.Code, "latency_ms", time.Since(started).Milliseconds())
	} else {
		slog.Default().Info("rpc response", "request_id", reqID, "method", req.Method, "latency_ms", time.Since(started).Milliseconds())
	}
	resp := rpcResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result:  result,
		Error:   rpcErr,
	}
	if idemKey != "" {
		s.idemMu.Lock()
		s.idempotency.set(idemKey, rpcRequestHash(req), resp, now)
		s.idemMu.Unlock()
	}
	writeRPC(w, resp)
}

func (s *Server) dispatchRPC(ctx context.Context, method string, rawParams json.RawMessage) (any, *rpcError) {
	switch method {
	case "health_check":
		return map[string]string{"status": "ok"}, nil
	case "rpc.version":
		return rpcVersionInfo(), nil
	case "auth.login":
		return s.rpcLogin(ctx, rawParams)
	case "work.list":
		return s.rpcListWork(ctx, rawParams)
	case "catalog.listings":
		return s.rpcCatalogListings(rawParams)
	case "creator.get":
		return s.rpcCreatorGet(rawParams)
	case "creator.verify":
		return s.rpcCreatorVerify(rawParams)
	case "ledger.status":
		return s.service.GetLedgerStatus(), nil
	case "metrics.get":
		return s.service.GetMetrics(), nil
	default:
		return nil, &rpcError{Code: -32601, Message: "method not found"}
	}
}

func (s *Server) rpcLogin(ctx context.Context, rawParams json.RawMessage) (any, *rpcError) {
	address, role, err := decodeLoginParams(rawParams)
	if err != nil {
		return nil, rpcInvalidParams()
	}
	result, err := s.service.Login(ctx, address, role)
	if err != nil {
		return nil, mapLoginRPCError(err)
	}
	return result, nil
}

func (s *Server) rpcListWork(ctx context.Context, rawParams json.RawMessage) (any, *rpcError) {
	creatorID, workID, percentage, err := decodeListWorkParams(rawParams)
	if err != nil {
		return nil, rpcInvalidParams()
	}
	listing, err := s.service.ListWork(ctx, creatorID, workID, percentage)
	if err != nil {
		return nil, mapListWorkRPCError(err)
	}
	return map[string]any{"listing": listing}, nil
}

func (s *Server) rpcCatalogListings(rawParams json.RawMessage) (any, *rpcError) {
	creatorID, limit, offset, err := decodeListingsQueryParams(rawParams)
	if err != nil {
		return nil, rpcInvalidParams()
	}
	listings, err := s.service.GetListings(creatorID, limit, offset)
	if err != nil {
		return nil, rpcServiceError(-32030, err)
	}
	return map[string]any{"listings": listings, "count": len(listings)}, nil
}

func (s *Server) rpcCreatorGet(rawParams json.RawMessage) (any, *rpcError) {
	creatorID, err := decodeSingleStringParam(rawParams)
	if err != nil {
		return nil, rpcInvalidParams()
	}
	creator, err := s.service.GetCreator(creatorID)
	if err != nil {
		return nil, mapLookupRPCError(err)
	}
	return creator, nil
}

func (s *Server) rpcCreatorVerify(rawParams json.RawMessage) (any, *rpcError) {
	creatorID, err := decodeSingleStringParam(rawParams)
	if err != nil {
		return nil, rpcInvalidParams()
	}
	creator, err := s.service.VerifyCreator(creatorID)
	if err != nil {
		return nil, mapLookupRPCError(err)
	}
	return creator, nil
}

func writeRPC(w http.ResponseWriter, resp rpcResponse) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

func writeRPCInvalidRequest(w http.ResponseWriter, id json.RawMessage) {
	writeRPC(w, rpcResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error:   &rpcError{Code: -32600, Message: "invalid request"},
	})
}
