package utils

import (
	"strings"
)

// Index aliases and their Yahoo Finance symbols.
var indexSymbols = map[string]string{
	"SPX":    "^GSPC",
	"SP500":  "^GSPC",
	"S&P500": "^GSPC",
	"DJI":    "^DJI",
	"DOW":    "^DJI",
	"NDX":    "^NDX",
	"IXIC":   "^IXIC",
	"NASDAQ": "^IXIC",
	"VIX":    "^VIX",
	"RUT":    "^RUT",
}

// NormalizeTicker trims, uppercases and strips a leading "$" (common in
// headlines and chat).
func NormalizeTicker(ticker string) string {
	ticker = strings.TrimSpace(strings.ToUpper(ticker))
	return strings.TrimPrefix(ticker, "$")
}

// ToYahooSymbol converts a ticker to the form the Yahoo chart API expects.
// Share classes use a dash ("BRK.B" becomes "BRK-B") and index aliases map
// to their caret symbols.
func ToYahooSymbol(ticker string) string {
	ticker = NormalizeTicker(ticker)
	if sym, ok := indexSymbols[ticker]; ok {
		return sym
	}
	if strings.HasPrefix(ticker, "^") {
		return ticker
	}
	return strings.ReplaceAll(ticker, ".", "-")
}

// IsIndex reports whether the ticker names an index rather than a stock.
func IsIndex(ticker string) bool {
	ticker = NormalizeTicker(ticker)
	if _, ok := indexSymbols[ticker]; ok {
		return true
	}
	return strings.HasPrefix(ticker, "^")
}
