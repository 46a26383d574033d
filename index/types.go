package index

import "ordindex.dev/core/ordinal"

// Block is the subset of a fetched block's fields the core consumes
// (spec §6, "Block structure (consumed fields only)").
type Block struct {
	Hash          [32]byte
	PrevBlockHash [32]byte
	Time          int64 // unix seconds
	Transactions  []Transaction
}

// Transaction is the subset of a transaction's fields the core
// consumes. Transactions[0] of a Block is always its coinbase.
type Transaction struct {
	Txid   [32]byte
	Inputs []TxIn
	Outputs []TxOut
}

// TxIn references the output it spends.
type TxIn struct {
	PreviousOutput ordinal.OutPoint
}

// TxOut carries only the value the ordinal-flow algorithm needs.
type TxOut struct {
	Value uint64
}
