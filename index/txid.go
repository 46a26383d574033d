package index

import "golang.org/x/sync/errgroup"

// TxHasher computes a transaction's id from its fields. It must be a
// pure function of the transaction — no cache or table access (spec
// §5, §9 "Parallel txid hashing").
type TxHasher interface {
	HashTx(Transaction) [32]byte
}

// precomputeTxids fills in Txid for every transaction whose id hasn't
// already been supplied by the RPC client, computing the missing ones
// concurrently. This is the only concurrency inside the core: each
// hash is an independent pure computation over its own transaction and
// never touches the cache or the store tables.
func precomputeTxids(txs []Transaction, hasher TxHasher) error {
	if hasher == nil {
		return nil
	}

	var zero [32]byte
	var g errgroup.Group
	for i := range txs {
		if txs[i].Txid != zero {
			continue
		}
		i := i
		g.Go(func() error {
			txs[i].Txid = hasher.HashTx(txs[i])
			return nil
		})
	}
	return g.Wait()
}
