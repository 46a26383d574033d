package index

import (
	"context"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"ordindex.dev/core/ordinal"
)

// Indexer drives the block loop: fetch, reorg check, ordinal-flow
// distribution across transactions, and coinbase-last fee reflow
// (spec §4.4). It holds no transaction-spanning state of its own other
// than the reorg flag — height, cache, and the write transaction are
// all owned by the caller (Updater) and threaded through explicitly.
type Indexer struct {
	client Client
	hasher TxHasher
	retry  RetryPolicy
	log    zerolog.Logger
	reorged atomic.Bool
}

// NewIndexer constructs an Indexer against client. log may be the zero
// value (a disabled logger); hasher may be nil if the client already
// supplies Txid on every transaction.
func NewIndexer(client Client, hasher TxHasher, log zerolog.Logger) *Indexer {
	return &Indexer{
		client: client,
		hasher: hasher,
		retry:  DefaultRetryPolicy(),
		log:    log,
	}
}

// Reorged reports whether a reorg has been detected since the Indexer
// was created. The core only signals this; rollback is a deliberate
// extension point left to higher layers (spec §9).
func (ix *Indexer) Reorged() bool { return ix.reorged.Load() }

// IndexBlock applies the block at height, if one exists, inside wtx,
// buffering new outputs in cache. Returns done=true if no block exists
// yet at height (the indexer has caught up to the tip). On any error
// the caller must not commit wtx — no partial-block state may become
// visible (spec §7).
func (ix *Indexer) IndexBlock(ctx context.Context, wtx *WriteTx, cache *Cache, height uint64) (done bool, rangesWritten uint64, outputsInBlock uint64, err error) {
	start := time.Now()

	block, err := fetchBlockWithRetries(ctx, ix.client, height, ix.retry)
	if err != nil {
		if err == ErrBlockNotFound {
			return true, 0, 0, nil
		}
		return false, 0, 0, err
	}

	if err := precomputeTxids(block.Transactions, ix.hasher); err != nil {
		return false, 0, 0, newErr(KindDomainEncode, "precompute txids", err)
	}

	ix.log.Info().
		Uint64("height", height).
		Int64("time", block.Time).
		Int("tx_count", len(block.Transactions)).
		Msg("indexing block")

	if height > 0 {
		prevHeight := height - 1
		prevHash, found, err := wtx.GetHeightHash(prevHeight)
		if err != nil {
			return false, 0, 0, err
		}
		if !found {
			return false, 0, 0, newErr(KindStoreError, "missing previously indexed height", nil)
		}
		if prevHash != block.PrevBlockHash {
			ix.reorged.Store(true)
			return false, 0, 0, newErr(KindReorgDetected, heightString(prevHeight), nil)
		}
	}

	fee := newInputRanges()
	h := ordinal.Height(height)
	if subsidy := h.Subsidy(); subsidy > 0 {
		s := h.StartingOrdinal()
		fee.pushFront(ordinal.Range{Base: s, End: s + subsidy})
	}

	for i := 1; i < len(block.Transactions); i++ {
		tx := block.Transactions[i]

		input := newInputRanges()
		for _, in := range tx.Inputs {
			encoded, err := cache.GetAndRemove(wtx, ordinal.EncodeOutPoint(in.PreviousOutput))
			if err != nil {
				return false, 0, 0, err
			}
			ranges, err := ordinal.DecodeRanges(encoded)
			if err != nil {
				return false, 0, 0, newErr(KindDomainEncode, "decode input ranges", err)
			}
			input.pushBackAll(ranges)
		}

		if err := indexTransaction(wtx, cache, tx.Txid, tx.Outputs, input, &rangesWritten, &outputsInBlock); err != nil {
			return false, 0, 0, err
		}

		fee.pushBackAll(input.ranges)
	}

	if len(block.Transactions) > 0 {
		coinbase := block.Transactions[0]
		if err := indexTransaction(wtx, cache, coinbase.Txid, coinbase.Outputs, fee, &rangesWritten, &outputsInBlock); err != nil {
			return false, 0, 0, err
		}
	}

	if err := wtx.PutHeightHash(height, block.Hash); err != nil {
		return false, 0, 0, err
	}

	ix.log.Info().
		Uint64("height", height).
		Uint64("ranges_written", rangesWritten).
		Uint64("outputs", outputsInBlock).
		Dur("elapsed", time.Since(start)).
		Msg("indexed block")

	return false, rangesWritten, outputsInBlock, nil
}

func heightString(height uint64) string {
	return "reorg detected at or before height " + strconv.FormatUint(height, 10)
}
