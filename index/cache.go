package index

// Cache is the in-memory write-through overlay in front of
// OUTPOINT_TO_ORDINAL_RANGES (spec §4.2). It absorbs newly created
// outputs between flushes so that an output created and spent within
// the same batch never touches the store.
type Cache struct {
	entries map[[36]byte][]byte

	insertedSinceFlush uint64
	cachedHits         uint64
}

// NewCache returns an empty write cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[[36]byte][]byte)}
}

// Insert unconditionally overwrites the cached ranges for outpoint.
func (c *Cache) Insert(outpoint [36]byte, encodedRanges []byte) {
	c.entries[outpoint] = encodedRanges
	c.insertedSinceFlush++
}

// GetAndRemove returns and removes outpoint's encoded ranges, serving
// them from the cache if present and falling back to the store
// otherwise. Fails with MissingOutpoint if absent from both.
func (c *Cache) GetAndRemove(wtx *WriteTx, outpoint [36]byte) ([]byte, error) {
	if v, ok := c.entries[outpoint]; ok {
		delete(c.entries, outpoint)
		c.cachedHits++
		return v, nil
	}

	v, found, err := wtx.GetAndDeleteOrdinalRanges(outpoint)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, newErr(KindMissingOutpoint, "outpoint not found in cache or store", nil)
	}
	return v, nil
}

// Flush writes every cache entry to the table and clears the cache.
// Must run inside an open write transaction while the caller holds the
// table exclusively (the updater loop is the sole writer, so this is
// always true in practice).
func (c *Cache) Flush(wtx *WriteTx) error {
	for outpoint, ranges := range c.entries {
		if err := wtx.PutOrdinalRanges(outpoint, ranges); err != nil {
			return err
		}
	}
	c.entries = make(map[[36]byte][]byte)
	c.insertedSinceFlush = 0
	return nil
}

// Len reports the number of entries currently buffered.
func (c *Cache) Len() int { return len(c.entries) }

// InsertedSinceFlush reports insertions since the last Flush.
func (c *Cache) InsertedSinceFlush() uint64 { return c.insertedSinceFlush }

// CachedHits reports the lifetime count of GetAndRemove calls served
// from memory rather than the store.
func (c *Cache) CachedHits() uint64 { return c.cachedHits }
