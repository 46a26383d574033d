package index

import (
	"testing"

	"ordindex.dev/core/ordinal"
)

func TestIndexTransaction_SimpleSpend_OneOutputOneRange(t *testing.T) {
	s := openTestStore(t)
	wtx, err := s.BeginWrite()
	if err != nil {
		t.Fatalf("BeginWrite: %v", err)
	}
	t.Cleanup(func() { wtx.Rollback() })

	cache := NewCache()
	input := newInputRanges(ordinal.Range{Base: 1_000, End: 1_100})
	var rangesWritten, outputsTraversed uint64

	txid := [32]byte{1}
	outputs := []TxOut{{Value: 100}}

	if err := indexTransaction(wtx, cache, txid, outputs, input, &rangesWritten, &outputsTraversed); err != nil {
		t.Fatalf("indexTransaction: %v", err)
	}
	if !input.empty() {
		t.Fatalf("expected input fully consumed, %d ranges remain", len(input.ranges))
	}
	if rangesWritten != 1 || outputsTraversed != 1 {
		t.Fatalf("unexpected counters: ranges=%d outputs=%d", rangesWritten, outputsTraversed)
	}

	outpoint := ordinal.EncodeOutPoint(ordinal.OutPoint{Txid: txid, Vout: 0})
	got, err := cache.GetAndRemove(wtx, outpoint)
	if err != nil {
		t.Fatalf("GetAndRemove: %v", err)
	}
	ranges, err := ordinal.DecodeRanges(got)
	if err != nil {
		t.Fatalf("DecodeRanges: %v", err)
	}
	if len(ranges) != 1 || ranges[0].Base != 1_000 || ranges[0].End != 1_100 {
		t.Fatalf("unexpected ranges: %+v", ranges)
	}
}

func TestIndexTransaction_SplitsOversizedRange(t *testing.T) {
	s := openTestStore(t)
	wtx, err := s.BeginWrite()
	if err != nil {
		t.Fatalf("BeginWrite: %v", err)
	}
	t.Cleanup(func() { wtx.Rollback() })

	cache := NewCache()
	input := newInputRanges(ordinal.Range{Base: 0, End: 200})
	var rangesWritten, outputsTraversed uint64

	txid := [32]byte{2}
	outputs := []TxOut{{Value: 50}, {Value: 150}}

	if err := indexTransaction(wtx, cache, txid, outputs, input, &rangesWritten, &outputsTraversed); err != nil {
		t.Fatalf("indexTransaction: %v", err)
	}
	if !input.empty() {
		t.Fatalf("expected input fully consumed")
	}
	if outputsTraversed != 2 {
		t.Fatalf("expected 2 outputs traversed, got %d", outputsTraversed)
	}

	op0 := ordinal.EncodeOutPoint(ordinal.OutPoint{Txid: txid, Vout: 0})
	enc0, err := cache.GetAndRemove(wtx, op0)
	if err != nil {
		t.Fatalf("GetAndRemove(0): %v", err)
	}
	r0, err := ordinal.DecodeRanges(enc0)
	if err != nil {
		t.Fatalf("DecodeRanges(0): %v", err)
	}
	if len(r0) != 1 || r0[0].Base != 0 || r0[0].End != 50 {
		t.Fatalf("unexpected first output ranges: %+v", r0)
	}

	op1 := ordinal.EncodeOutPoint(ordinal.OutPoint{Txid: txid, Vout: 1})
	enc1, err := cache.GetAndRemove(wtx, op1)
	if err != nil {
		t.Fatalf("GetAndRemove(1): %v", err)
	}
	r1, err := ordinal.DecodeRanges(enc1)
	if err != nil {
		t.Fatalf("DecodeRanges(1): %v", err)
	}
	if len(r1) != 1 || r1[0].Base != 50 || r1[0].End != 200 {
		t.Fatalf("unexpected second output ranges: %+v", r1)
	}
}

func TestIndexTransaction_MultipleRangesPerOutput(t *testing.T) {
	s := openTestStore(t)
	wtx, err := s.BeginWrite()
	if err != nil {
		t.Fatalf("BeginWrite: %v", err)
	}
	t.Cleanup(func() { wtx.Rollback() })

	cache := NewCache()
	input := newInputRanges(
		ordinal.Range{Base: 0, End: 30},
		ordinal.Range{Base: 100, End: 130},
	)
	var rangesWritten, outputsTraversed uint64

	txid := [32]byte{3}
	outputs := []TxOut{{Value: 60}}

	if err := indexTransaction(wtx, cache, txid, outputs, input, &rangesWritten, &outputsTraversed); err != nil {
		t.Fatalf("indexTransaction: %v", err)
	}
	if rangesWritten != 2 {
		t.Fatalf("expected 2 ranges written for one output spanning two inputs, got %d", rangesWritten)
	}

	op := ordinal.EncodeOutPoint(ordinal.OutPoint{Txid: txid, Vout: 0})
	enc, err := cache.GetAndRemove(wtx, op)
	if err != nil {
		t.Fatalf("GetAndRemove: %v", err)
	}
	ranges, err := ordinal.DecodeRanges(enc)
	if err != nil {
		t.Fatalf("DecodeRanges: %v", err)
	}
	if len(ranges) != 2 {
		t.Fatalf("expected 2 ranges, got %d: %+v", len(ranges), ranges)
	}
	if ranges[0] != (ordinal.Range{Base: 0, End: 30}) || ranges[1] != (ordinal.Range{Base: 100, End: 130}) {
		t.Fatalf("unexpected ranges: %+v", ranges)
	}
}

func TestIndexTransaction_InsufficientInputs(t *testing.T) {
	s := openTestStore(t)
	wtx, err := s.BeginWrite()
	if err != nil {
		t.Fatalf("BeginWrite: %v", err)
	}
	t.Cleanup(func() { wtx.Rollback() })

	cache := NewCache()
	input := newInputRanges(ordinal.Range{Base: 0, End: 10})
	var rangesWritten, outputsTraversed uint64

	err = indexTransaction(wtx, cache, [32]byte{4}, []TxOut{{Value: 20}}, input, &rangesWritten, &outputsTraversed)
	if err == nil {
		t.Fatalf("expected InsufficientInputs error")
	}
	if e, ok := err.(*Error); !ok || e.Kind != KindInsufficientInputs {
		t.Fatalf("expected KindInsufficientInputs, got %v", err)
	}
}

func TestIndexTransaction_RegistersSatPointOnlyAtUncommonRangeStart(t *testing.T) {
	s := openTestStore(t)
	wtx, err := s.BeginWrite()
	if err != nil {
		t.Fatalf("BeginWrite: %v", err)
	}
	t.Cleanup(func() { wtx.Rollback() })

	cache := NewCache()
	// Height 0's starting ordinal (uncommon) plus one common ordinal after it.
	start := ordinal.Height(0).StartingOrdinal()
	input := newInputRanges(ordinal.Range{Base: start, End: start + 2})
	var rangesWritten, outputsTraversed uint64

	txid := [32]byte{5}
	if err := indexTransaction(wtx, cache, txid, []TxOut{{Value: 2}}, input, &rangesWritten, &outputsTraversed); err != nil {
		t.Fatalf("indexTransaction: %v", err)
	}

	_, found, err := wtx.GetSatPoint(start)
	if err != nil {
		t.Fatalf("GetSatPoint: %v", err)
	}
	if !found {
		t.Fatalf("expected satpoint registered for uncommon range start %d", start)
	}
	if _, found, _ := wtx.GetSatPoint(start + 1); found {
		t.Fatalf("did not expect a satpoint for the common ordinal inside the range")
	}
}
