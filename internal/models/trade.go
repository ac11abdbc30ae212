package models

import "time"

// TradeRecord is one executed swap as reported back by a wallet after
// submission. Amounts are raw on-chain integer units.
type TradeRecord struct {
	Hash      string    `json:"hash"`
	Timestamp time.Time `json:"timestamp"`
	Pair      string    `json:"pair"`
	TokenIn   string    `json:"token_in"`
	TokenOut  string    `json:"token_out"`
	AmountIn  uint64    `json:"amount_in,string"`
	AmountOut uint64    `json:"amount_out,string"`
	Venue     string    `json:"venue"` // e.g. "Liquidswap", "Aggregator"
	Sender    string    `json:"sender"`
}
