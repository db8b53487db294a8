package chain

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"sld-dashboard/internal/observability"
)

func TestHTTPClient_CallContract(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req rpcRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}

		if req.Method != "eth_call" {
			t.Errorf("expected method eth_call, got %s", req.Method)
		}

		resp := map[string]interface{}{
			"jsonrpc": "2.0",
			"id":      req.ID,
			// 32-byte word encoding the value 5
			"result": "0x0000000000000000000000000000000000000000000000000000000000000005",
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL)
	to := common.HexToAddress("0x1111111111111111111111111111111111111111")

	out, err := client.CallContract(context.Background(), to, []byte{0x70, 0xa0, 0x82, 0x31})
	if err != nil {
		t.Fatalf("CallContract: %v", err)
	}

	if len(out) != 32 {
		t.Fatalf("expected 32-byte result, got %d bytes", len(out))
	}
	if out[31] != 5 {
		t.Errorf("expected last byte 5, got %d", out[31])
	}
}

func TestHTTPClient_GasPriceGwei(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req rpcRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}

		if req.Method != "eth_gasPrice" {
			t.Errorf("expected method eth_gasPrice, got %s", req.Method)
		}

		resp := map[string]interface{}{
			"jsonrpc": "2.0",
			"id":      req.ID,
			"result":  "0x12a05f200", // 5_000_000_000 wei = 5 gwei
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL)

	gwei, err := client.GasPriceGwei(context.Background())
	if err != nil {
		t.Fatalf("GasPriceGwei: %v", err)
	}
	if gwei != 5 {
		t.Errorf("expected 5 gwei, got %f", gwei)
	}
}

func TestHTTPClient_RecordsCallMetrics(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req rpcRequest
		json.NewDecoder(r.Body).Decode(&req)
		if req.Method == "eth_gasPrice" {
			resp := map[string]interface{}{
				"jsonrpc": "2.0",
				"id":      req.ID,
				"result":  "0x12a05f200",
			}
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(resp)
			return
		}
		resp := map[string]interface{}{
			"jsonrpc": "2.0",
			"id":      req.ID,
			"error":   map[string]interface{}{"code": -32000, "message": "execution reverted"},
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	metrics := observability.NewMetrics("chain_test")
	client := NewHTTPClient(server.URL, WithMetrics(metrics))

	if _, err := client.GasPriceGwei(context.Background()); err != nil {
		t.Fatalf("GasPriceGwei: %v", err)
	}
	to := common.HexToAddress("0x1111111111111111111111111111111111111111")
	if _, err := client.CallContract(context.Background(), to, nil); err == nil {
		t.Fatal("expected revert error")
	}

	if got := testutil.CollectAndCount(metrics.RPCCallLatency); got != 2 {
		t.Errorf("expected 2 latency series, got %d", got)
	}
	if got := testutil.ToFloat64(metrics.RPCCallErrors.WithLabelValues("eth_call")); got != 1 {
		t.Errorf("eth_call errors counted %v, want 1", got)
	}
	if got := testutil.ToFloat64(metrics.RPCCallErrors.WithLabelValues("eth_gasPrice")); got != 0 {
		t.Errorf("eth_gasPrice errors counted %v, want 0", got)
	}
}

func TestHTTPClient_RetriesTransportErrors(t *testing.T) {
	var calls atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}

		var req rpcRequest
		json.NewDecoder(r.Body).Decode(&req)
		resp := map[string]interface{}{
			"jsonrpc": "2.0",
			"id":      req.ID,
			"result":  "0x1",
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, WithMaxRetries(2), WithRetryDelay(1))

	if _, err := client.GasPrice(context.Background()); err != nil {
		t.Fatalf("expected retry to succeed, got %v", err)
	}
	if calls.Load() != 2 {
		t.Errorf("expected 2 calls, got %d", calls.Load())
	}
}

func TestHTTPClient_RPCErrorNotRetried(t *testing.T) {
	var calls atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		var req rpcRequest
		json.NewDecoder(r.Body).Decode(&req)
		resp := map[string]interface{}{
			"jsonrpc": "2.0",
			"id":      req.ID,
			"error":   map[string]interface{}{"code": -32000, "message": "execution reverted"},
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, WithMaxRetries(3), WithRetryDelay(1))
	to := common.HexToAddress("0x1111111111111111111111111111111111111111")

	if _, err := client.CallContract(context.Background(), to, nil); err == nil {
		t.Fatal("expected revert error")
	}
	if calls.Load() != 1 {
		t.Errorf("expected 1 call (no retry on RPC error), got %d", calls.Load())
	}
}
