package classifier

import (
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/zksync-ledger/pkg/db"
	"github.com/zksync-ledger/pkg/quantity"
	"github.com/zksync-ledger/pkg/zksync"
)

// TimestampLayout is how ledger timestamps are written, in the offset the
// API reported.
const TimestampLayout = "02/01/2006 15:04:05"

type Kind int

const (
	// Classified means Row holds a ledger entry.
	Classified Kind = iota
	// Unsupported means the transaction type has no ledger mapping
	// (ChangePubKey, L1 deposits, ...). TxType names it.
	Unsupported
	// Malformed means a field the matched type needs is missing.
	Malformed
)

func (k Kind) String() string {
	switch k {
	case Classified:
		return "classified"
	case Unsupported:
		return "unsupported"
	case Malformed:
		return "malformed"
	default:
		return "unknown"
	}
}

type Result struct {
	Kind    Kind
	Row     db.Row
	TxType  string
	Missing string // first absent field, for Malformed
}

// Classify maps one history entry onto a ledger row. It is a pure function
// of its inputs; wallet is compared case-insensitively.
func Classify(tx zksync.Transaction, wallet string) Result {
	detail := tx.Tx
	txType, ok := detail["type"].(string)
	if !ok {
		return malformed("", "type")
	}

	created, err := time.Parse(time.RFC3339Nano, tx.CreatedAt)
	if err != nil {
		return Result{Kind: Malformed, TxType: txType, Missing: "created_at"}
	}

	row := db.Row{
		Wallet:      db.WalletLabel,
		Timestamp:   created.Format(TimestampLayout),
		OperationID: tx.OperationID(),
	}

	switch txType {
	case "Withdraw":
		f, missing := fields(detail, "amount", "token", "fee")
		if missing != "" {
			return malformed(txType, missing)
		}
		row.Type = db.TypeWithdrawal
		row.Sell = db.Leg{Quantity: quantity.Normalize(f["amount"], f["token"]), Asset: f["token"]}
		row.Fee = db.Leg{Quantity: quantity.Normalize(f["fee"], f["token"]), Asset: f["token"]}

	case "Transfer":
		to, ok := detail["to"].(string)
		if !ok {
			return malformed(txType, "to")
		}
		if sameAddress(to, wallet) {
			f, missing := fields(detail, "from", "amount")
			if missing != "" {
				return malformed(txType, missing)
			}
			if sameAddress(f["from"], wallet) && f["amount"] == "0" {
				// fee payments show up as zero-value transfers to oneself
				sf, missing := fields(detail, "fee", "token")
				if missing != "" {
					return malformed(txType, missing)
				}
				if sf["fee"] != "0" {
					row.Type = db.TypeSpend
					row.Sell = db.Leg{Quantity: "0", Asset: sf["token"]}
					row.Fee = db.Leg{Quantity: quantity.Normalize(sf["fee"], sf["token"]), Asset: sf["token"]}
					break
				}
			}
			token, ok := detail["token"].(string)
			if !ok {
				return malformed(txType, "token")
			}
			row.Type = db.TypeIncome
			row.Buy = db.Leg{Quantity: quantity.Normalize(f["amount"], token), Asset: token}
		} else {
			f, missing := fields(detail, "amount", "token", "fee")
			if missing != "" {
				return malformed(txType, missing)
			}
			row.Type = db.TypeSpend
			row.Sell = db.Leg{Quantity: quantity.Normalize(f["amount"], f["token"]), Asset: f["token"]}
			row.Fee = db.Leg{Quantity: quantity.Normalize(f["fee"], f["token"]), Asset: f["token"]}
		}

	case "Swap":
		// swap legs reference tokens by index; amounts are entered by hand
		row.Type = db.TypeTrade

	default:
		return Result{Kind: Unsupported, TxType: txType}
	}

	return Result{Kind: Classified, Row: row, TxType: txType}
}

func malformed(txType, missing string) Result {
	return Result{Kind: Malformed, TxType: txType, Missing: missing}
}

// fields pulls the named string fields out of a detail record. The second
// return value names the first key that is absent or not a string.
func fields(detail map[string]any, keys ...string) (map[string]string, string) {
	out := make(map[string]string, len(keys))
	for _, k := range keys {
		v, ok := detail[k].(string)
		if !ok {
			return nil, k
		}
		out[k] = v
	}
	return out, ""
}

func sameAddress(a, b string) bool {
	if common.IsHexAddress(a) && common.IsHexAddress(b) {
		return common.HexToAddress(a) == common.HexToAddress(b)
	}
	return strings.EqualFold(a, b)
}
