package db

// ---- Ledger Models ----

type TxType string

const (
	TypeWithdrawal TxType = "Withdrawal"
	TypeIncome     TxType = "Income"
	TypeSpend      TxType = "Spend"
	TypeTrade      TxType = "Trade"
)

// WalletLabel names the venue every row was sourced from.
const WalletLabel = "ZKSync"

// Leg is one side of a ledger row. Empty strings mean the field is absent.
// Value is never filled in here; valuation is left to downstream tooling.
type Leg struct {
	Quantity string `json:"quantity"`
	Asset    string `json:"asset"`
	Value    string `json:"value"`
}

type Row struct {
	Type        TxType `json:"type"`
	Buy         Leg    `json:"buy"`
	Sell        Leg    `json:"sell"`
	Fee         Leg    `json:"fee"`
	Wallet      string `json:"wallet"`
	Timestamp   string `json:"timestamp"` // "02/01/2006 15:04:05"
	OperationID string `json:"operation_id"`
}

// Columns is the ledger header, in file order.
var Columns = []string{
	"Type",
	"Buy Quantity", "Buy Asset", "Buy Value",
	"Sell Quantity", "Sell Asset", "Sell Value",
	"Fee Quantity", "Fee Asset", "Fee Value",
	"Wallet", "Timestamp", "operationId",
}

// OperationIDColumn is the dedup key column.
const OperationIDColumn = "operationId"

// Record flattens the row into Columns order.
func (r Row) Record() []string {
	return []string{
		string(r.Type),
		r.Buy.Quantity, r.Buy.Asset, r.Buy.Value,
		r.Sell.Quantity, r.Sell.Asset, r.Sell.Value,
		r.Fee.Quantity, r.Fee.Asset, r.Fee.Value,
		r.Wallet, r.Timestamp, r.OperationID,
	}
}

// RowFromFields builds a row from a column-name keyed record. Unknown columns
// are ignored and missing ones stay empty. Hand-entered rows may have no
// operationId.
func RowFromFields(fields map[string]string) Row {
	return Row{
		Type:        TxType(fields["Type"]),
		Buy:         Leg{Quantity: fields["Buy Quantity"], Asset: fields["Buy Asset"], Value: fields["Buy Value"]},
		Sell:        Leg{Quantity: fields["Sell Quantity"], Asset: fields["Sell Asset"], Value: fields["Sell Value"]},
		Fee:         Leg{Quantity: fields["Fee Quantity"], Asset: fields["Fee Asset"], Value: fields["Fee Value"]},
		Wallet:      fields["Wallet"],
		Timestamp:   fields["Timestamp"],
		OperationID: fields[OperationIDColumn],
	}
}
