package index

import "testing"

func TestStore_HeightHash_RoundTripAndLast(t *testing.T) {
	s := openTestStore(t)
	wtx, err := s.BeginWrite()
	if err != nil {
		t.Fatalf("BeginWrite: %v", err)
	}
	t.Cleanup(func() { wtx.Rollback() })

	if _, found, err := wtx.LastIndexedHeight(); err != nil {
		t.Fatalf("LastIndexedHeight: %v", err)
	} else if found {
		t.Fatalf("expected no indexed height on an empty store")
	}

	for h := uint64(0); h < 3; h++ {
		var hash [32]byte
		hash[0] = byte(h + 1)
		if err := wtx.PutHeightHash(h, hash); err != nil {
			t.Fatalf("PutHeightHash(%d): %v", h, err)
		}
	}

	last, found, err := wtx.LastIndexedHeight()
	if err != nil {
		t.Fatalf("LastIndexedHeight: %v", err)
	}
	if !found || last != 2 {
		t.Fatalf("expected last indexed height 2, got %d (found=%v)", last, found)
	}

	got, found, err := wtx.GetHeightHash(1)
	if err != nil {
		t.Fatalf("GetHeightHash: %v", err)
	}
	if !found || got[0] != 2 {
		t.Fatalf("unexpected hash at height 1: %x", got)
	}
}

func TestStore_OrdinalRanges_GetAndDeleteIsOneShot(t *testing.T) {
	s := openTestStore(t)
	wtx, err := s.BeginWrite()
	if err != nil {
		t.Fatalf("BeginWrite: %v", err)
	}
	t.Cleanup(func() { wtx.Rollback() })

	var op [36]byte
	op[0] = 9
	if err := wtx.PutOrdinalRanges(op, []byte{1, 2, 3}); err != nil {
		t.Fatalf("PutOrdinalRanges: %v", err)
	}

	v, found, err := wtx.GetAndDeleteOrdinalRanges(op)
	if err != nil {
		t.Fatalf("GetAndDeleteOrdinalRanges: %v", err)
	}
	if !found || string(v) != "\x01\x02\x03" {
		t.Fatalf("unexpected value: %x (found=%v)", v, found)
	}

	if _, found, err := wtx.GetAndDeleteOrdinalRanges(op); err != nil {
		t.Fatalf("second GetAndDeleteOrdinalRanges: %v", err)
	} else if found {
		t.Fatalf("expected the entry to be gone after the first retrieval")
	}
}

func TestStore_Statistic_Increments(t *testing.T) {
	s := openTestStore(t)
	wtx, err := s.BeginWrite()
	if err != nil {
		t.Fatalf("BeginWrite: %v", err)
	}
	t.Cleanup(func() { wtx.Rollback() })

	if v, err := wtx.GetStatistic(StatisticCommits); err != nil || v != 0 {
		t.Fatalf("expected zero-value statistic, got %d, err=%v", v, err)
	}
	if err := wtx.IncrementStatistic(StatisticCommits, 1); err != nil {
		t.Fatalf("IncrementStatistic: %v", err)
	}
	if err := wtx.IncrementStatistic(StatisticCommits, 2); err != nil {
		t.Fatalf("IncrementStatistic: %v", err)
	}
	if v, err := wtx.GetStatistic(StatisticCommits); err != nil || v != 3 {
		t.Fatalf("expected 3, got %d, err=%v", v, err)
	}
}

func TestStore_Commit_PersistsAcrossTransactions(t *testing.T) {
	s := openTestStore(t)

	wtx, err := s.BeginWrite()
	if err != nil {
		t.Fatalf("BeginWrite: %v", err)
	}
	var hash [32]byte
	hash[0] = 0xab
	if err := wtx.PutHeightHash(5, hash); err != nil {
		t.Fatalf("PutHeightHash: %v", err)
	}
	if err := wtx.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	wtx2, err := s.BeginWrite()
	if err != nil {
		t.Fatalf("BeginWrite (second): %v", err)
	}
	t.Cleanup(func() { wtx2.Rollback() })
	got, found, err := wtx2.GetHeightHash(5)
	if err != nil {
		t.Fatalf("GetHeightHash: %v", err)
	}
	if !found || got != hash {
		t.Fatalf("expected committed hash to be visible in a new transaction")
	}
}
