package classifier

import (
	"strings"
	"testing"

	"github.com/zksync-ledger/pkg/db"
	"github.com/zksync-ledger/pkg/zksync"
)

const (
	wallet = "0xAbCdEf0123456789aBcDeF0123456789AbCdEf01"
	other  = "0x9999999999999999999999999999999999999999"
)

func tx(detail map[string]any) zksync.Transaction {
	return zksync.Transaction{
		Hash:      "sync-tx:0f1e2d",
		CreatedAt: "2021-05-04T22:11:12.123456+02:00",
		Tx:        detail,
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name   string
		detail map[string]any
		want   db.Row
	}{
		{
			name:   "withdraw",
			detail: map[string]any{"type": "Withdraw", "amount": "2000000", "token": "USDC", "fee": "1000"},
			want: db.Row{
				Type: db.TypeWithdrawal,
				Sell: db.Leg{Quantity: "2", Asset: "USDC"},
				Fee:  db.Leg{Quantity: "0.001", Asset: "USDC"},
			},
		},
		{
			name: "self transfer paying a fee",
			detail: map[string]any{
				"type": "Transfer", "from": wallet, "to": strings.ToLower(wallet),
				"amount": "0", "fee": "5000000000000000", "token": "ETH",
			},
			want: db.Row{
				Type: db.TypeSpend,
				Sell: db.Leg{Quantity: "0", Asset: "ETH"},
				Fee:  db.Leg{Quantity: "0.005", Asset: "ETH"},
			},
		},
		{
			name: "incoming transfer",
			detail: map[string]any{
				"type": "Transfer", "from": other, "to": strings.ToUpper(wallet[2:]),
				"amount": "1500000000000000000", "fee": "100", "token": "ETH",
			},
			want: db.Row{
				Type: db.TypeIncome,
				Buy:  db.Leg{Quantity: "1.5", Asset: "ETH"},
			},
		},
		{
			name: "zero value zero fee self transfer is income",
			detail: map[string]any{
				"type": "Transfer", "from": wallet, "to": wallet,
				"amount": "0", "fee": "0", "token": "ETH",
			},
			want: db.Row{
				Type: db.TypeIncome,
				Buy:  db.Leg{Quantity: "0", Asset: "ETH"},
			},
		},
		{
			name: "self transfer with value is income",
			detail: map[string]any{
				"type": "Transfer", "from": wallet, "to": wallet,
				"amount": "3000000", "fee": "1000", "token": "USDT",
			},
			want: db.Row{
				Type: db.TypeIncome,
				Buy:  db.Leg{Quantity: "3", Asset: "USDT"},
			},
		},
		{
			name: "outgoing transfer",
			detail: map[string]any{
				"type": "Transfer", "from": wallet, "to": other,
				"amount": "250000", "fee": "30000", "token": "USDC",
			},
			want: db.Row{
				Type: db.TypeSpend,
				Sell: db.Leg{Quantity: "0.25", Asset: "USDC"},
				Fee:  db.Leg{Quantity: "0.03", Asset: "USDC"},
			},
		},
		{
			name:   "swap left for manual entry",
			detail: map[string]any{"type": "Swap", "orders": []any{}, "amounts": []any{"1", "2"}},
			want:   db.Row{Type: db.TypeTrade},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Classify(tx(tt.detail), wallet)
			if res.Kind != Classified {
				t.Fatalf("kind = %v (missing %q), want classified", res.Kind, res.Missing)
			}
			want := tt.want
			want.Wallet = db.WalletLabel
			want.Timestamp = "04/05/2021 22:11:12"
			want.OperationID = "0f1e2d"
			if res.Row != want {
				t.Errorf("row = %+v\nwant  %+v", res.Row, want)
			}
		})
	}
}

func TestClassify_Unsupported(t *testing.T) {
	for _, typ := range []string{"ChangePubKey", "Deposit", "FullExit", "ForcedExit"} {
		res := Classify(tx(map[string]any{"type": typ, "account": wallet}), wallet)
		if res.Kind != Unsupported {
			t.Errorf("%s: kind = %v, want unsupported", typ, res.Kind)
		}
		if res.TxType != typ {
			t.Errorf("%s: TxType = %q", typ, res.TxType)
		}
	}
}

func TestClassify_Malformed(t *testing.T) {
	tests := []struct {
		name    string
		detail  map[string]any
		missing string
	}{
		{"no type", map[string]any{"amount": "1", "token": "ETH"}, "type"},
		{"non-string type", map[string]any{"type": 7, "amount": "1"}, "type"},
		{"withdraw without fee", map[string]any{"type": "Withdraw", "amount": "1", "token": "ETH"}, "fee"},
		{"transfer without to", map[string]any{"type": "Transfer", "from": wallet, "amount": "1", "token": "ETH", "fee": "0"}, "to"},
		{"incoming without from", map[string]any{"type": "Transfer", "to": wallet, "amount": "1", "token": "ETH"}, "from"},
		{"incoming without token", map[string]any{"type": "Transfer", "from": other, "to": wallet, "amount": "1"}, "token"},
		{"self fee payment without fee", map[string]any{"type": "Transfer", "from": wallet, "to": wallet, "amount": "0", "token": "ETH"}, "fee"},
		{"outgoing without amount", map[string]any{"type": "Transfer", "from": wallet, "to": other, "token": "ETH", "fee": "1"}, "amount"},
		{"non-string amount", map[string]any{"type": "Withdraw", "amount": 12.0, "token": "ETH", "fee": "1"}, "amount"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Classify(tx(tt.detail), wallet)
			if res.Kind != Malformed {
				t.Fatalf("kind = %v, want malformed", res.Kind)
			}
			if res.Missing != tt.missing {
				t.Errorf("missing = %q, want %q", res.Missing, tt.missing)
			}
		})
	}
}

func TestClassify_BadTimestamp(t *testing.T) {
	in := tx(map[string]any{"type": "Swap"})
	in.CreatedAt = "yesterday"
	if res := Classify(in, wallet); res.Kind != Malformed || res.Missing != "created_at" {
		t.Errorf("result = %+v", res)
	}
}

func TestClassify_UTCTimestamp(t *testing.T) {
	in := tx(map[string]any{"type": "Swap"})
	in.CreatedAt = "2022-01-31T23:59:59.5Z"
	res := Classify(in, wallet)
	if res.Row.Timestamp != "31/01/2022 23:59:59" {
		t.Errorf("timestamp = %q", res.Row.Timestamp)
	}
}

func TestClassify_Deterministic(t *testing.T) {
	in := tx(map[string]any{"type": "Transfer", "from": other, "to": wallet, "amount": "10", "token": "DAI"})
	first := Classify(in, wallet)
	for i := 0; i < 5; i++ {
		if again := Classify(in, wallet); again != first {
			t.Fatalf("run %d differs: %+v vs %+v", i, again, first)
		}
	}
}

func TestSameAddress(t *testing.T) {
	if !sameAddress(wallet, strings.ToLower(wallet)) {
		t.Error("checksum vs lower should match")
	}
	if sameAddress(wallet, other) {
		t.Error("different addresses matched")
	}
	if !sameAddress("Alice", "alice") {
		t.Error("non-hex names should compare case-insensitively")
	}
}
