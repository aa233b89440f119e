package rpc_test

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"fave/go-backend/internal/adapters/rpc"
	"fave/go-backend/internal/api"
	"fave/go-backend/internal/bootstrap/ledgerconfig"
	"fave/go-backend/internal/ledger"
)

func newSecuredServer(t *testing.T, token string) *rpc.Server {
	t.Helper()
	t.Setenv("FAVE_ENV", "test")
	t.Setenv("FAVE_RPC_TOKEN", token)

	svc, err := api.NewServiceWithSettings(ledgerconfig.Settings{Ledger: ledger.DefaultConfig()})
	if err != nil {
		t.Fatalf("build service failed: %v", err)
	}
	if err := svc.Start(context.Background()); err != nil {
		t.Fatalf("start service failed: %v", err)
	}
	t.Cleanup(func() { _ = svc.Stop(context.Background()) })
	return rpc.NewServerWithService("", svc)
}

func TestRunFailsClosedWithoutTokenInProduction(t *testing.T) {
	t.Setenv("FAVE_ENV", "production")
	t.Setenv("FAVE_RPC_TOKEN", "")

	srv := rpc.NewServerWithService("", nil)
	if err := srv.Run(context.Background()); err == nil {
		t.Fatalf("expected startup failure without a token in production")
	}
}

func TestRPCRequiresMatchingToken(t *testing.T) {
	srv := newSecuredServer(t, "sekret")
	body := []byte(`{"jsonrpc":"2.0","id":1,"method":"health_check"}`)

	req := httptest.NewRequest(http.MethodPost, "/rpc", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	srv.HandleRPC(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/rpc", bytes.NewReader(body))
	req.Header.Set("X-FAVE-RPC-Token", "wrong")
	rec = httptest.NewRecorder()
	srv.HandleRPC(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 with wrong token, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/rpc", bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer sekret")
	rec = httptest.NewRecorder()
	srv.HandleRPC(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 with bearer token, got %d", rec.Code)
	}
}

func TestCORSRejectsNonLocalOrigin(t *testing.T) {
	srv := newSecuredServer(t, "")
	body := []byte(`{"jsonrpc":"2.0","id":1,"method":"health_check"}`)

	req := httptest.NewRequest(http.MethodPost, "/rpc", bytes.NewReader(body))
	req.Header.Set("Origin", "https://evil.example.com")
	rec := httptest.NewRecorder()
	srv.HandleRPC(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for non-local origin, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/rpc", bytes.NewReader(body))
	req.Header.Set("Origin", "http://localhost:5173")
	rec = httptest.NewRecorder()
	srv.HandleRPC(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for localhost origin, got %d", rec.Code)
	}
}

func TestStreamRequiresFanID(t *testing.T) {
	srv := newSecuredServer(t, "")

	httpSrv := httptest.NewServer(http.HandlerFunc(srv.HandleRPCStream))
	defer httpSrv.Close()

	resp, err := http.Get(httpSrv.URL + "/rpc/stream")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 without fan_id, got %d", resp.StatusCode)
	}
}
