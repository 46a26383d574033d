package index

import (
	"encoding/binary"
	"fmt"

	bolt "go.etcd.io/bbolt"
)

// Store is the thin facade over the embedded transactional key-value
// store (spec §6). It owns the four persisted tables and hands out
// write transactions with atomic commit; it never itself buffers
// writes — that is the write cache's job (cache.go).
type Store struct {
	db *bolt.DB
}

var (
	bucketHeightToBlockHash      = []byte("height_to_block_hash")
	bucketOutpointToOrdinalRanges = []byte("outpoint_to_ordinal_ranges")
	bucketOrdinalToSatPoint      = []byte("ordinal_to_satpoint")
	bucketStatistic              = []byte("statistic")
)

// Open opens (creating if absent) the bbolt file at path and ensures
// the four tables exist.
func Open(path string) (*Store, error) {
	db, err := bolt.Open(path, 0o600, nil)
	if err != nil {
		return nil, newErr(KindStoreError, "open database", err)
	}
	s := &Store{db: db}
	if err := s.db.Update(func(tx *bolt.Tx) error {
		for _, b := range [][]byte{bucketHeightToBlockHash, bucketOutpointToOrdinalRanges, bucketOrdinalToSatPoint, bucketStatistic} {
			if _, err := tx.CreateBucketIfNotExists(b); err != nil {
				return fmt.Errorf("create bucket %s: %w", b, err)
			}
		}
		return nil
	}); err != nil {
		_ = db.Close()
		return nil, newErr(KindStoreError, "create tables", err)
	}
	return s, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// WriteTx is the open write transaction a block is applied within; the
// same transaction spans many blocks between commits (§4.5).
type WriteTx struct {
	tx *bolt.Tx

	heightToBlockHash       *bolt.Bucket
	outpointToOrdinalRanges *bolt.Bucket
	ordinalToSatPoint       *bolt.Bucket
	statistic               *bolt.Bucket
}

// BeginWrite opens a new write transaction with all four tables ready
// to use.
func (s *Store) BeginWrite() (*WriteTx, error) {
	tx, err := s.db.Begin(true)
	if err != nil {
		return nil, newErr(KindStoreError, "begin write transaction", err)
	}
	return &WriteTx{
		tx:                      tx,
		heightToBlockHash:       tx.Bucket(bucketHeightToBlockHash),
		outpointToOrdinalRanges: tx.Bucket(bucketOutpointToOrdinalRanges),
		ordinalToSatPoint:       tx.Bucket(bucketOrdinalToSatPoint),
		statistic:               tx.Bucket(bucketStatistic),
	}, nil
}

// Commit makes every effect since BeginWrite durable atomically.
func (w *WriteTx) Commit() error {
	if err := w.tx.Commit(); err != nil {
		return newErr(KindStoreError, "commit", err)
	}
	return nil
}

// Rollback discards every effect since BeginWrite without persisting
// anything. Safe to call after a failed Commit.
func (w *WriteTx) Rollback() error {
	return w.tx.Rollback()
}

func heightKey(height uint64) []byte {
	var k [8]byte
	binary.BigEndian.PutUint64(k[:], height)
	return k[:]
}

func ordinalKey(o uint64) []byte {
	var k [8]byte
	binary.BigEndian.PutUint64(k[:], o)
	return k[:]
}

// PutHeightHash records the block hash accepted at height.
func (w *WriteTx) PutHeightHash(height uint64, hash [32]byte) error {
	if err := w.heightToBlockHash.Put(heightKey(height), hash[:]); err != nil {
		return newErr(KindStoreError, "put height hash", err)
	}
	return nil
}

// GetHeightHash looks up the block hash at height, if indexed.
func (w *WriteTx) GetHeightHash(height uint64) (hash [32]byte, found bool, err error) {
	v := w.heightToBlockHash.Get(heightKey(height))
	if v == nil {
		return hash, false, nil
	}
	copy(hash[:], v)
	return hash, true, nil
}

// LastIndexedHeight returns the greatest height present in
// HEIGHT_TO_BLOCK_HASH, or found=false if the table is empty.
func (w *WriteTx) LastIndexedHeight() (height uint64, found bool, err error) {
	c := w.heightToBlockHash.Cursor()
	k, _ := c.Last()
	if k == nil {
		return 0, false, nil
	}
	return binary.BigEndian.Uint64(k), true, nil
}

// PutOrdinalRanges writes an output's encoded ordinal ranges directly
// to the table. Only used by cache.flush; ordinary indexing goes
// through the write cache instead.
func (w *WriteTx) PutOrdinalRanges(outpoint [36]byte, encoded []byte) error {
	if err := w.outpointToOrdinalRanges.Put(outpoint[:], encoded); err != nil {
		return newErr(KindStoreError, "put ordinal ranges", err)
	}
	return nil
}

// GetAndDeleteOrdinalRanges removes and returns the ranges stored for
// outpoint, or found=false if absent.
func (w *WriteTx) GetAndDeleteOrdinalRanges(outpoint [36]byte) (encoded []byte, found bool, err error) {
	v := w.outpointToOrdinalRanges.Get(outpoint[:])
	if v == nil {
		return nil, false, nil
	}
	out := append([]byte(nil), v...)
	if err := w.outpointToOrdinalRanges.Delete(outpoint[:]); err != nil {
		return nil, false, newErr(KindStoreError, "delete ordinal ranges", err)
	}
	return out, true, nil
}

// PutSatPoint records the current location of uncommon ordinal o.
func (w *WriteTx) PutSatPoint(o uint64, satpoint [44]byte) error {
	if err := w.ordinalToSatPoint.Put(ordinalKey(o), satpoint[:]); err != nil {
		return newErr(KindStoreError, "put satpoint", err)
	}
	return nil
}

// GetSatPoint looks up the current location of ordinal o.
func (w *WriteTx) GetSatPoint(o uint64) (satpoint [44]byte, found bool, err error) {
	v := w.ordinalToSatPoint.Get(ordinalKey(o))
	if v == nil {
		return satpoint, false, nil
	}
	copy(satpoint[:], v)
	return satpoint, true, nil
}

// Statistic enumerates the STATISTIC table's counters.
type Statistic byte

const (
	StatisticOutputsTraversed Statistic = 0
	StatisticCommits          Statistic = 1
)

func statisticKey(s Statistic) []byte { return []byte{byte(s)} }

// IncrementStatistic adds delta to the named counter, creating it at
// delta if absent.
func (w *WriteTx) IncrementStatistic(s Statistic, delta uint64) error {
	key := statisticKey(s)
	cur := uint64(0)
	if v := w.statistic.Get(key); v != nil {
		cur = binary.BigEndian.Uint64(v)
	}
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], cur+delta)
	if err := w.statistic.Put(key, buf[:]); err != nil {
		return newErr(KindStoreError, "increment statistic", err)
	}
	return nil
}

// GetStatistic reads the named counter's current value.
func (w *WriteTx) GetStatistic(s Statistic) (uint64, error) {
	v := w.statistic.Get(statisticKey(s))
	if v == nil {
		return 0, nil
	}
	return binary.BigEndian.Uint64(v), nil
}
