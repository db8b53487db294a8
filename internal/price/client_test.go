package price

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestClient_Fetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/0xpair") {
			t.Errorf("Unexpected path: %s", r.URL.Path)
		}
		w.Write([]byte(`{"pairs":[{
			"baseToken":{"symbol":"SLD"},
			"quoteToken":{"symbol":"WBNB"},
			"priceUsd":"0.01234",
			"priceChange":{"h24":5.6},
			"volume":{"h24":123456.78}
		}]}`))
	}))
	defer server.Close()

	client := NewClient(server.URL)
	point, err := client.Fetch(context.Background(), "0xpair")
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}

	if point.Pair != "SLD/WBNB" {
		t.Errorf("Pair mismatch: %s", point.Pair)
	}
	if point.PriceUsd != 0.01234 {
		t.Errorf("PriceUsd mismatch: %f", point.PriceUsd)
	}
	if point.Change24h != 5.6 || point.Volume24h != 123456.78 {
		t.Errorf("24h fields mismatch: %+v", point)
	}
	if point.Timestamp == 0 {
		t.Error("Timestamp not set")
	}
}

func TestClient_Fetch_PairNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"pairs":null}`))
	}))
	defer server.Close()

	client := NewClient(server.URL)
	_, err := client.Fetch(context.Background(), "0xmissing")
	if !errors.Is(err, ErrPairNotFound) {
		t.Errorf("Expected ErrPairNotFound, got %v", err)
	}
}

func TestClient_Fetch_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	if _, err := client.Fetch(context.Background(), "0xpair"); err == nil {
		t.Fatal("Expected error for 429 response")
	}
}
