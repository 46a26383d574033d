package index

import "ordindex.dev/core/ordinal"

// inputRanges is the FIFO of unconsumed input ordinal ranges threaded
// through a transaction's outputs, with front-push support for range
// splitting (spec §9, "Deque of ordinal ranges"). A slice serves this
// fine at per-transaction scale; front operations are O(remaining) but
// bounded by the number of ranges a single output ever splits across.
type inputRanges struct {
	ranges []ordinal.Range
}

func newInputRanges(initial ...ordinal.Range) *inputRanges {
	return &inputRanges{ranges: initial}
}

func (q *inputRanges) empty() bool { return len(q.ranges) == 0 }

func (q *inputRanges) popFront() (ordinal.Range, bool) {
	if len(q.ranges) == 0 {
		return ordinal.Range{}, false
	}
	r := q.ranges[0]
	q.ranges = q.ranges[1:]
	return r, true
}

func (q *inputRanges) pushFront(r ordinal.Range) {
	q.ranges = append([]ordinal.Range{r}, q.ranges...)
}

func (q *inputRanges) pushBack(r ordinal.Range) {
	q.ranges = append(q.ranges, r)
}

func (q *inputRanges) pushBackAll(rs []ordinal.Range) {
	q.ranges = append(q.ranges, rs...)
}

// indexTransaction distributes input over tx's outputs (spec §4.3),
// writing each output's encoded ranges to cache and registering a
// satpoint for every uncommon range start. The ranges left over after
// every output is satisfied stay in input for the caller — the
// transaction's fee when tx is not the coinbase, or dust when it is.
func indexTransaction(
	wtx *WriteTx,
	cache *Cache,
	txid [32]byte,
	outputs []TxOut,
	input *inputRanges,
	rangesWritten *uint64,
	outputsTraversed *uint64,
) error {
	for vout, output := range outputs {
		outpoint := ordinal.OutPoint{Txid: txid, Vout: uint32(vout)}
		buf := make([]byte, 0, 16)

		remaining := output.Value
		for remaining > 0 {
			r, ok := input.popFront()
			if !ok {
				return newErr(KindInsufficientInputs, "ran out of input ranges before satisfying output value", nil)
			}

			if !ordinal.IsCommonOrdinal(r.Base) {
				sat := ordinal.EncodeSatPoint(ordinal.SatPoint{
					OutPoint: outpoint,
					Offset:   output.Value - remaining,
				})
				if err := wtx.PutSatPoint(r.Base, sat); err != nil {
					return err
				}
			}

			count := r.Len()
			var assigned ordinal.Range
			if count > remaining {
				middle := r.Base + remaining
				input.pushFront(ordinal.Range{Base: middle, End: r.End})
				assigned = ordinal.Range{Base: r.Base, End: middle}
			} else {
				assigned = r
			}

			enc, err := ordinal.EncodeRange(assigned.Base, assigned.End)
			if err != nil {
				return newErr(KindDomainEncode, "encode assigned range", err)
			}
			buf = append(buf, enc[:]...)

			remaining -= assigned.Len()
			*rangesWritten++
		}

		*outputsTraversed++
		cache.Insert(ordinal.EncodeOutPoint(outpoint), buf)
	}

	return nil
}
