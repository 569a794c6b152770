package zksync

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

const samplePage = `[
  {
    "tx_id": "12345,7",
    "hash": "sync-tx:0f1e2d",
    "eth_block": null,
    "pq_id": null,
    "tx": {
      "type": "Transfer",
      "from": "0x1111111111111111111111111111111111111111",
      "to": "0x2222222222222222222222222222222222222222",
      "token": "USDC",
      "amount": "2000000",
      "fee": "1000",
      "nonce": 4
    },
    "success": true,
    "fail_reason": null,
    "commited": true,
    "verified": true,
    "created_at": "2021-05-04T10:11:12.123456+00:00"
  }
]`

func TestHistory(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(samplePage))
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/api/v0.1/", 0)
	txs, err := c.History(context.Background(), "0xabc", 200, 100)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if gotPath != "/api/v0.1/account/0xabc/history/200/100" {
		t.Errorf("path = %q", gotPath)
	}
	if len(txs) != 1 {
		t.Fatalf("got %d txs, want 1", len(txs))
	}
	tx := txs[0]
	if tx.OperationID() != "0f1e2d" {
		t.Errorf("OperationID = %q", tx.OperationID())
	}
	if tx.CreatedAt != "2021-05-04T10:11:12.123456+00:00" {
		t.Errorf("CreatedAt = %q", tx.CreatedAt)
	}
	if tx.Tx["type"] != "Transfer" || tx.Tx["amount"] != "2000000" {
		t.Errorf("detail = %v", tx.Tx)
	}
	if tx.Success == nil || !*tx.Success || !tx.Verified {
		t.Errorf("status flags not decoded: %+v", tx)
	}
}

func TestHistory_EmptyPage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	txs, err := NewClient(srv.URL, 0).History(context.Background(), "0xabc", 0, 100)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(txs) != 0 {
		t.Errorf("got %d txs, want none", len(txs))
	}
}

func TestHistory_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "account not found", http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, 0).History(context.Background(), "0xabc", 0, 100)
	var httpErr *HTTPError
	if !errors.As(err, &httpErr) {
		t.Fatalf("expected *HTTPError, got %v", err)
	}
	if httpErr.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d", httpErr.StatusCode)
	}
	if httpErr.Body != "account not found" {
		t.Errorf("body = %q", httpErr.Body)
	}
}

func TestHistory_BadJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"error":`))
	}))
	defer srv.Close()

	if _, err := NewClient(srv.URL, 0).History(context.Background(), "0xabc", 0, 100); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestOperationID_NoPrefix(t *testing.T) {
	tx := Transaction{Hash: "0xdeadbeef"}
	if tx.OperationID() != "0xdeadbeef" {
		t.Errorf("OperationID = %q", tx.OperationID())
	}
}
