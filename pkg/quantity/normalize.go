package quantity

import (
	"github.com/shopspring/decimal"
)

// Stablecoins on zkSync carry 6 decimals, everything else 18.
var sixDecimalAssets = map[string]bool{
	"USDC": true,
	"USDT": true,
}

// Decimals returns the fixed-point precision used by the given asset symbol.
func Decimals(asset string) int32 {
	if sixDecimalAssets[asset] {
		return 6
	}
	return 18
}

// Normalize converts a fixed-point integer amount (smallest unit, no decimal
// point) into a human-readable decimal string. Trailing zeros and a dangling
// decimal point are dropped, so "1500000000000000000" ETH becomes "1.5" and
// "0" stays "0". The conversion is exact.
func Normalize(qty, asset string) string {
	d, err := decimal.NewFromString(qty)
	if err != nil {
		// upstream amounts are trusted; pass anything odd through untouched
		return qty
	}
	return d.Shift(-Decimals(asset)).String()
}
