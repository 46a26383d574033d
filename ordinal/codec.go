// Package ordinal implements the bit-exact encodings and issuance
// arithmetic that the indexer core builds on: outpoints, ordinal ranges,
// satpoints, and the height-to-subsidy schedule.
package ordinal

import (
	"encoding/binary"
	"fmt"
)

const (
	// maxRangeBase is the exclusive upper bound on a range's base ordinal (2^51).
	maxRangeBase = 1 << 51
	// maxRangeLen is the exclusive upper bound on a range's length (2^21).
	maxRangeLen = 1 << 21

	outPointLen = 36
	rangeLen    = 11
	satPointLen = outPointLen + 8
)

// OutPoint identifies a transaction output: the owning transaction id and
// its output index.
type OutPoint struct {
	Txid [32]byte
	Vout uint32
}

// EncodeOutPoint produces the 36-byte store key for an outpoint: txid
// bytes followed by the little-endian output index.
func EncodeOutPoint(p OutPoint) [outPointLen]byte {
	var out [outPointLen]byte
	copy(out[0:32], p.Txid[:])
	binary.LittleEndian.PutUint32(out[32:36], p.Vout)
	return out
}

// DecodeOutPoint is the inverse of EncodeOutPoint.
func DecodeOutPoint(b []byte) (OutPoint, error) {
	if len(b) != outPointLen {
		return OutPoint{}, fmt.Errorf("ordinal: outpoint: expected %d bytes, got %d", outPointLen, len(b))
	}
	var p OutPoint
	copy(p.Txid[:], b[0:32])
	p.Vout = binary.LittleEndian.Uint32(b[32:36])
	return p, nil
}

// Range is the half-open ordinal interval [Base, End).
type Range struct {
	Base uint64
	End  uint64
}

// Len reports the number of ordinals the range covers.
func (r Range) Len() uint64 { return r.End - r.Base }

// EncodeRange packs base and length into the 11-byte wire form:
// base | (length << 51), serialized little-endian, low 11 bytes kept.
func EncodeRange(base, end uint64) ([rangeLen]byte, error) {
	var out [rangeLen]byte
	if end <= base {
		return out, fmt.Errorf("ordinal: range: end %d must be greater than base %d", end, base)
	}
	length := end - base
	if base >= maxRangeBase {
		return out, fmt.Errorf("ordinal: range: base %d exceeds 2^51", base)
	}
	if length >= maxRangeLen {
		return out, fmt.Errorf("ordinal: range: length %d exceeds 2^21", length)
	}

	low := base | ((length & 0x1fff) << 51)
	high := byte(length >> 13)

	binary.LittleEndian.PutUint64(out[0:8], low)
	out[8] = high
	// out[9], out[10] stay zero: bits 72-87 of the conceptual 128-bit value are unused.
	return out, nil
}

// DecodeRange is the inverse of EncodeRange.
func DecodeRange(b [rangeLen]byte) (base, end uint64, err error) {
	if b[9] != 0 || b[10] != 0 {
		return 0, 0, fmt.Errorf("ordinal: range: unused high bytes must be zero")
	}
	low := binary.LittleEndian.Uint64(b[0:8])
	base = low & (maxRangeBase - 1)
	length := (low >> 51) | (uint64(b[8]) << 13)
	return base, base + length, nil
}

// SatPoint pins an exact byte offset within an output.
type SatPoint struct {
	OutPoint OutPoint
	Offset   uint64
}

// EncodeSatPoint concatenates the 36-byte outpoint with an 8-byte
// little-endian offset.
func EncodeSatPoint(s SatPoint) [satPointLen]byte {
	var out [satPointLen]byte
	op := EncodeOutPoint(s.OutPoint)
	copy(out[0:outPointLen], op[:])
	binary.LittleEndian.PutUint64(out[outPointLen:satPointLen], s.Offset)
	return out
}

// DecodeSatPoint is the inverse of EncodeSatPoint.
func DecodeSatPoint(b []byte) (SatPoint, error) {
	if len(b) != satPointLen {
		return SatPoint{}, fmt.Errorf("ordinal: satpoint: expected %d bytes, got %d", satPointLen, len(b))
	}
	op, err := DecodeOutPoint(b[0:outPointLen])
	if err != nil {
		return SatPoint{}, err
	}
	return SatPoint{
		OutPoint: op,
		Offset:   binary.LittleEndian.Uint64(b[outPointLen:satPointLen]),
	}, nil
}

// EncodeRanges concatenates the wire form of each range in order, the
// layout the write cache and OUTPOINT_TO_ORDINAL_RANGES store.
func EncodeRanges(ranges []Range) ([]byte, error) {
	out := make([]byte, 0, len(ranges)*rangeLen)
	for _, r := range ranges {
		enc, err := EncodeRange(r.Base, r.End)
		if err != nil {
			return nil, err
		}
		out = append(out, enc[:]...)
	}
	return out, nil
}

// DecodeRanges splits a concatenated ranges buffer back into individual
// ranges. Fails if the buffer length isn't a multiple of 11.
func DecodeRanges(b []byte) ([]Range, error) {
	if len(b)%rangeLen != 0 {
		return nil, fmt.Errorf("ordinal: ranges: buffer length %d not a multiple of %d", len(b), rangeLen)
	}
	out := make([]Range, 0, len(b)/rangeLen)
	for i := 0; i < len(b); i += rangeLen {
		var chunk [rangeLen]byte
		copy(chunk[:], b[i:i+rangeLen])
		base, end, err := DecodeRange(chunk)
		if err != nil {
			return nil, err
		}
		out = append(out, Range{Base: base, End: end})
	}
	return out, nil
}
