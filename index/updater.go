package index

import (
	"context"
	"sync/atomic"

	"github.com/rs/zerolog"
)

// DefaultCommitInterval is the number of indexed blocks between commits
// (spec §4.5).
const DefaultCommitInterval = 5000

// Updater drives the resumable block loop: open a write transaction,
// resume from the last persisted height, index blocks until caught up
// or interrupted, and commit on a fixed cadence plus always at exit
// (spec §4.5/§4.6).
type Updater struct {
	store   *Store
	indexer *Indexer
	cache   *Cache
	log     zerolog.Logger
	metrics *Metrics
	progress ProgressReporter

	commitInterval uint64
	heightLimit    *uint64

	interrupts atomic.Int32

	height           uint64
	outputsTraversed uint64
}

// UpdaterOption configures an Updater at construction time.
type UpdaterOption func(*Updater)

// WithCommitInterval overrides DefaultCommitInterval.
func WithCommitInterval(n uint64) UpdaterOption {
	return func(u *Updater) { u.commitInterval = n }
}

// WithHeightLimit stops the loop once height exceeds limit, never
// fetching beyond it.
func WithHeightLimit(limit uint64) UpdaterOption {
	return func(u *Updater) { u.heightLimit = &limit }
}

// WithMetrics wires Prometheus gauges into the loop.
func WithMetrics(m *Metrics) UpdaterOption {
	return func(u *Updater) { u.metrics = m }
}

// WithProgress wires a progress reporter into the loop. A nil p
// disables reporting.
func WithProgress(p ProgressReporter) UpdaterOption {
	return func(u *Updater) {
		if p == nil {
			p = NoopProgress
		}
		u.progress = p
	}
}

// NewUpdater constructs an Updater over store, driving indexer.
func NewUpdater(store *Store, indexer *Indexer, log zerolog.Logger, opts ...UpdaterOption) *Updater {
	u := &Updater{
		store:          store,
		indexer:        indexer,
		cache:          NewCache(),
		log:            log,
		progress:       NoopProgress,
		commitInterval: DefaultCommitInterval,
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// RequestStop increments this Updater's interrupt counter, which the
// loop polls at each iteration boundary (spec §5). Safe to call
// concurrently, e.g. from a signal handler.
func (u *Updater) RequestStop() {
	u.interrupts.Add(1)
}

// Height reports the next height the loop will attempt to index.
func (u *Updater) Height() uint64 { return u.height }

// Run resumes from the last persisted height and indexes blocks until
// the client has no more, the height limit is reached, or a stop is
// requested. It commits periodically and before a normal return with
// uncommitted work pending; on an error it rolls back the open write
// transaction, discarding every block since the last commit.
func (u *Updater) Run(ctx context.Context) error {
	defer u.progress.Finish()

	wtx, err := u.store.BeginWrite()
	if err != nil {
		return err
	}

	if lastHeight, found, err := wtx.LastIndexedHeight(); err != nil {
		wtx.Rollback()
		return err
	} else if found {
		u.height = lastHeight + 1
	} else {
		u.height = 0
	}

	uncommitted := uint64(0)
	for i := uint64(0); ; i++ {
		if u.heightLimit != nil && u.height > *u.heightLimit {
			break
		}

		done, _, outputsInBlock, err := u.indexer.IndexBlock(ctx, wtx, u.cache, u.height)
		if err != nil {
			wtx.Rollback()
			return err
		}

		if !done {
			u.height++
			u.outputsTraversed += outputsInBlock
			uncommitted++
			u.progress.Advance(u.height, u.bestTipHeight(ctx))
			if u.metrics != nil {
				u.metrics.Height.Set(float64(u.height))
				u.metrics.CacheEntries.Set(float64(u.cache.Len()))
			}
		}

		if uncommitted > 0 && i > 0 && i%u.commitInterval == 0 {
			if err := u.commit(wtx); err != nil {
				return err
			}
			wtx, err = u.store.BeginWrite()
			if err != nil {
				return err
			}
			uncommitted = 0
		}

		if done || u.interrupts.Load() > 0 {
			break
		}
	}

	if uncommitted > 0 {
		if err := u.commit(wtx); err != nil {
			return err
		}
	} else {
		wtx.Rollback()
	}

	return nil
}

func (u *Updater) bestTipHeight(ctx context.Context) uint64 {
	tip, err := u.indexer.client.BlockCount(ctx)
	if err != nil {
		return u.height
	}
	return tip
}

// commit flushes the write cache, bumps the persisted statistics, and
// atomically commits wtx. Either every effect since the last commit
// becomes durable, or none does (spec §4.6).
func (u *Updater) commit(wtx *WriteTx) error {
	ratio := float64(0)
	if u.cache.InsertedSinceFlush() > 0 {
		ratio = float64(u.cache.Len()) / float64(u.cache.InsertedSinceFlush()) * 100
	}
	u.log.Info().
		Uint64("height", u.height).
		Uint64("outputs_traversed", u.outputsTraversed).
		Int("cache_entries", u.cache.Len()).
		Uint64("cached_hits", u.cache.CachedHits()).
		Float64("flush_ratio_pct", ratio).
		Msg("committing")

	if err := u.cache.Flush(wtx); err != nil {
		wtx.Rollback()
		return err
	}
	if err := wtx.IncrementStatistic(StatisticOutputsTraversed, u.outputsTraversed); err != nil {
		wtx.Rollback()
		return err
	}
	if err := wtx.IncrementStatistic(StatisticCommits, 1); err != nil {
		wtx.Rollback()
		return err
	}
	if err := wtx.Commit(); err != nil {
		return err
	}

	if u.metrics != nil {
		u.metrics.Commits.Add(1)
		u.metrics.OutputsTraversed.Add(float64(u.outputsTraversed))
	}

	u.outputsTraversed = 0
	return nil
}
