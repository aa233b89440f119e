package rpc_test

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"fave/go-backend/internal/adapters/rpc"
	"fave/go-backend/internal/api"
	"fave/go-backend/internal/bootstrap/ledgerconfig"
	"fave/go-backend/internal/ledger"
)

type rpcTestError struct {
	Code    int            `json:"code"`
	Message string         `json:"message"`
	Data    map[string]any `json:"data"`
}

type rpcTestResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  json.RawMessage `json:"result"`
	Error   *rpcTestError   `json:"error"`
}

func newTestServer(t *testing.T) (*rpc.Server, *api.Service) {
	t.Helper()
	t.Setenv("FAVE_ENV", "test")
	t.Setenv("FAVE_RPC_TOKEN", "")

	cfg := ledger.DefaultConfig()
	cfg.TargetContract = "0xc0ffee::worktoken::mint_creator_token"
	cfg.TreasuryObject = "0xf00d"
	svc, err := api.NewServiceWithSettings(ledgerconfig.Settings{Ledger: cfg})
	if err != nil {
		t.Fatalf("build service failed: %v", err)
	}
	if err := svc.Start(context.Background()); err != nil {
		t.Fatalf("start service failed: %v", err)
	}
	t.Cleanup(func() { _ = svc.Stop(context.Background()) })

	return rpc.NewServerWithService("", svc), svc
}

func callRPC(t *testing.T, srv *rpc.Server, method string, params any) rpcTestResponse {
	t.Helper()
	body, err := json.Marshal(map[string]any{
		"jsonrpc": "2.0",
		"id":      1,
		"method":  method,
		"params":  params,
	})
	if err != nil {
		t.Fatalf("marshal request failed: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/rpc", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.HandleRPC(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected http status for %s: %d", method, rec.Code)
	}
	var resp rpcTestResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response failed: %v", err)
	}
	return resp
}

func loginCreator(t *testing.T, srv *rpc.Server, address string) string {
	t.Helper()
	resp := callRPC(t, srv, "auth.login", []string{address, "creator"})
	if resp.Error != nil {
		t.Fatalf("login failed: %+v", resp.Error)
	}
	var result struct {
		Role    string `json:"role"`
		Creator struct {
			ID string `json:"id"`
		} `json:"creator"`
	}
	if err := json.Unmarshal(resp.Result, &result); err != nil {
		t.Fatalf("decode login result failed: %v", err)
	}
	if result.Role != "creator" || result.Creator.ID == "" {
		t.Fatalf("unexpected login result: %s", string(resp.Result))
	}
	return result.Creator.ID
}

func TestHealthCheck(t *testing.T) {
	srv, _ := newTestServer(t)
	resp := callRPC(t, srv, "health_check", nil)
	if resp.Error != nil {
		t.Fatalf("health check failed: %+v", resp.Error)
	}
	if !strings.Contains(string(resp.Result), `"ok"`) {
		t.Fatalf("unexpected health result: %s", string(resp.Result))
	}
}

func TestUnknownMethodReturnsMethodNotFound(t *testing.T) {
	srv, _ := newTestServer(t)
	resp := callRPC(t, srv, "work.burn", nil)
	if resp.Error == nil || resp.Error.Code != -32601 {
		t.Fatalf("expected -32601, got: %+v", resp.Error)
	}
}

func TestLoginThenListWorkFlow(t *testing.T) {
	srv, _ := newTestServer(t)
	creatorID := loginCreator(t, srv, "0xabc123")

	resp := callRPC(t, srv, "work.list", map[string]any{
		"creator_id": creatorID,
		"percentage": 10,
	})
	if resp.Error != nil {
		t.Fatalf("work.list failed: %+v", resp.Error)
	}
	var result struct {
		Listing struct {
			ID                string `json:"id"`
			CreatorID         string `json:"creator_id"`
			RoyaltyPercentage int    `json:"royalty_percentage"`
			LedgerReference   string `json:"ledger_reference"`
		} `json:"listing"`
	}
	if err := json.Unmarshal(resp.Result, &result); err != nil {
		t.Fatalf("decode listing failed: %v", err)
	}
	if result.Listing.CreatorID != creatorID || result.Listing.RoyaltyPercentage != 10 {
		t.Fatalf("unexpected listing: %s", string(resp.Result))
	}
	if result.Listing.LedgerReference == "" {
		t.Fatalf("listing must carry a ledger reference")
	}

	dup := callRPC(t, srv, "work.list", map[string]any{
		"creator_id": creatorID,
		"percentage": 25,
	})
	if dup.Error == nil || dup.Error.Code != -32002 {
		t.Fatalf("expected -32002 for duplicate listing, got: %+v", dup.Error)
	}
}

func TestListWorkRejectsBadParams(t *testing.T) {
	srv, _ := newTestServer(t)
	creatorID := loginCreator(t, srv, "0xdef456")

	cases := []any{
		map[string]any{"creator_id": creatorID, "percentage": 10.5},
		map[string]any{"creator_id": creatorID, "percentage": -1},
		map[string]any{"creator_id": creatorID, "percentage": "10"},
		map[string]any{"creator_id": creatorID, "percentage": 0},
		map[string]any{"creator_id": creatorID, "percentage": 101},
		map[string]any{"creator_id": "", "percentage": 10},
	}
	for i, params := range cases {
		resp := callRPC(t, srv, "work.list", params)
		if resp.Error == nil || resp.Error.Code != -32602 {
			t.Fatalf("case %d: expected -32602, got: %+v", i, resp.Error)
		}
	}
}

func TestListWorkUnknownCreator(t *testing.T) {
	srv, _ := newTestServer(t)
	resp := callRPC(t, srv, "work.list", map[string]any{
		"creator_id": "creator_missing",
		"percentage": 10,
	})
	if resp.Error == nil || resp.Error.Code != -32001 {
		t.Fatalf("expected -32001, got: %+v", resp.Error)
	}
}

func TestLoginRoleExclusion(t *testing.T) {
	srv, _ := newTestServer(t)
	loginCreator(t, srv, "0xsame")

	resp := callRPC(t, srv, "auth.login", []string{"0xsame", "fan"})
	if resp.Error == nil || resp.Error.Code != -32022 {
		t.Fatalf("expected -32022 for creator wallet logging in as fan, got: %+v", resp.Error)
	}
}

func TestCreatorVerifyFlow(t *testing.T) {
	srv, _ := newTestServer(t)
	creatorID := loginCreator(t, srv, "0xverify_me")

	resp := callRPC(t, srv, "creator.verify", []string{creatorID})
	if resp.Error != nil {
		t.Fatalf("creator.verify failed: %+v", resp.Error)
	}
	var verified struct {
		ID           string `json:"id"`
		Verification string `json:"verification"`
	}
	if err := json.Unmarshal(resp.Result, &verified); err != nil {
		t.Fatalf("decode verify result failed: %v", err)
	}
	if verified.ID != creatorID || verified.Verification != "approved" {
		t.Fatalf("unexpected verify result: %s", string(resp.Result))
	}

	resp = callRPC(t, srv, "creator.get", []string{creatorID})
	if resp.Error != nil {
		t.Fatalf("creator.get failed: %+v", resp.Error)
	}
	if !strings.Contains(string(resp.Result), `"approved"`) {
		t.Fatalf("verification must persist across calls: %s", string(resp.Result))
	}

	resp = callRPC(t, srv, "creator.verify", []string{"creator_unknown"})
	if resp.Error == nil || resp.Error.Code != -32001 {
		t.Fatalf("expected -32001 for unknown creator, got %+v", resp.Error)
	}
}

func TestCatalogListingsPagination(t *testing.T) {
	t.Setenv("FAVE_LISTING_UNIQUENESS", "per-work")
	srv, _ := newTestServer(t)
	creatorID := loginCreator(t, srv, "0xcatalog")

	for i := 0; i < 3; i++ {
		resp := callRPC(t, srv, "work.list", map[string]any{
			"creator_id": creatorID,
			"work_id":    fmt.Sprintf("wrk_%d", i),
			"percentage": 10 + i,
		})
		if resp.Error != nil {
			t.Fatalf("work.list %d failed: %+v", i, resp.Error)
		}
	}

	resp := callRPC(t, srv, "catalog.listings", []any{creatorID, 2, 0})
	if resp.Error != nil {
		t.Fatalf("catalog.listings failed: %+v", resp.Error)
	}
	var page struct {
		Listings []json.RawMessage `json:"listings"`
		Count    int               `json:"count"`
	}
	if err := json.Unmarshal(resp.Result, &page); err != nil {
		t.Fatalf("decode page failed: %v", err)
	}
	if page.Count != 2 || len(page.Listings) != 2 {
		t.Fatalf("expected a page of 2 listings, got %d", page.Count)
	}
}

func TestLedgerStatusAndMetrics(t *testing.T) {
	srv, _ := newTestServer(t)
	creatorID := loginCreator(t, srv, "0xstatus")
	if resp := callRPC(t, srv, "work.list", map[string]any{"creator_id": creatorID, "percentage": 50}); resp.Error != nil {
		t.Fatalf("work.list failed: %+v", resp.Error)
	}

	status := callRPC(t, srv, "ledger.status", nil)
	if status.Error != nil {
		t.Fatalf("ledger.status failed: %+v", status.Error)
	}
	var ls struct {
		State           string `json:"state"`
		SubmissionCount int    `json:"submission_count"`
	}
	if err := json.Unmarshal(status.Result, &ls); err != nil {
		t.Fatalf("decode status failed: %v", err)
	}
	if ls.State != "ready" || ls.SubmissionCount != 1 {
		t.Fatalf("unexpected ledger status: %s", string(status.Result))
	}

	metrics := callRPC(t, srv, "metrics.get", nil)
	if metrics.Error != nil {
		t.Fatalf("metrics.get failed: %+v", metrics.Error)
	}
	var ms struct {
		ListingCount   int                        `json:"listing_count"`
		OperationStats map[string]json.RawMessage `json:"operation_stats"`
	}
	if err := json.Unmarshal(metrics.Result, &ms); err != nil {
		t.Fatalf("decode metrics failed: %v", err)
	}
	if ms.ListingCount != 1 {
		t.Fatalf("expected one listing in metrics, got %d", ms.ListingCount)
	}
	if _, ok := ms.OperationStats["work.list"]; !ok {
		t.Fatalf("expected work.list operation stats, got: %s", string(metrics.Result))
	}
}

func TestIdempotentListWorkReplaysCachedResponse(t *testing.T) {
	srv, _ := newTestServer(t)
	creatorID := loginCreator(t, srv, "0xidem")

	body, _ := json.Marshal(map[string]any{
		"jsonrpc": "2.0",
		"id":      7,
		"method":  "work.list",
		"params":  map[string]any{"creator_id": creatorID, "percentage": 15},
	})
	do := func() rpcTestResponse {
		req := httptest.NewRequest(http.MethodPost, "/rpc", bytes.NewReader(body))
		req.Header.Set("X-FAVE-Idempotency-Key", "list-once")
		rec := httptest.NewRecorder()
		srv.HandleRPC(rec, req)
		var resp rpcTestResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode response failed: %v", err)
		}
		return resp
	}

	first := do()
	if first.Error != nil {
		t.Fatalf("first submit failed: %+v", first.Error)
	}
	second := do()
	if second.Error != nil {
		t.Fatalf("replay must return the cached success, got: %+v", second.Error)
	}
	if !bytes.Equal(first.Result, second.Result) {
		t.Fatalf("replayed result differs from original")
	}

	otherBody, _ := json.Marshal(map[string]any{
		"jsonrpc": "2.0",
		"id":      8,
		"method":  "work.list",
		"params":  map[string]any{"creator_id": creatorID, "percentage": 30},
	})
	req := httptest.NewRequest(http.MethodPost, "/rpc", bytes.NewReader(otherBody))
	req.Header.Set("X-FAVE-Idempotency-Key", "list-once")
	rec := httptest.NewRecorder()
	srv.HandleRPC(rec, req)
	var conflict rpcTestResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &conflict); err != nil {
		t.Fatalf("decode response failed: %v", err)
	}
	if conflict.Error == nil || conflict.Error.Code != -32060 {
		t.Fatalf("expected -32060 for reused idempotency key, got: %+v", conflict.Error)
	}
}

func TestStreamDeliversWorkListedEvent(t *testing.T) {
	srv, svc := newTestServer(t)
	creatorID := loginCreator(t, srv, "0xstream")

	httpSrv := httptest.NewServer(http.HandlerFunc(srv.HandleRPCStream))
	defer httpSrv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, httpSrv.URL+"/rpc/stream?fan_id=fan_stream_1", nil)
	if err != nil {
		t.Fatalf("build stream request failed: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("open stream failed: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected stream status: %d", resp.StatusCode)
	}

	waitForSubscriber(t, svc)
	if listResp := callRPC(t, srv, "work.list", map[string]any{"creator_id": creatorID, "percentage": 12}); listResp.Error != nil {
		t.Fatalf("work.list failed: %+v", listResp.Error)
	}

	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		if !strings.Contains(line, `"work.listed"`) {
			continue
		}
		if !strings.Contains(line, creatorID) {
			t.Fatalf("event must carry creator context: %s", line)
		}
		return
	}
	t.Fatalf("stream closed before delivering work.listed: %v", scanner.Err())
}

func waitForSubscriber(t *testing.T, svc *api.Service) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if svc.SubscriberCount() > 0 {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("subscriber was not registered in time")
}
