package index

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// ErrBlockNotFound is returned by Client.BlockAt when no block exists
// at the requested height yet (the tip of what the client has seen).
var ErrBlockNotFound = errors.New("index: block not found")

// Client is the chain RPC client contract the block indexer consumes
// (spec §6). It is an external collaborator; this package only
// specifies the shape it must have and the retry policy wrapped
// around it.
type Client interface {
	// BlockCount returns the client's best-effort view of the chain
	// tip height, used only for progress reporting.
	BlockCount(ctx context.Context) (uint64, error)
	// BlockAt fetches the block at height, or ErrBlockNotFound if none
	// exists there yet.
	BlockAt(ctx context.Context, height uint64) (*Block, error)
}

// RetryPolicy bounds the backoff applied to transient BlockAt failures.
type RetryPolicy struct {
	MaxElapsedTime  time.Duration
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// DefaultRetryPolicy is a conservative bounded, jittered exponential
// backoff: a handful of attempts over at most 30s before giving up.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxElapsedTime:  30 * time.Second,
		InitialInterval: 250 * time.Millisecond,
		MaxInterval:     5 * time.Second,
	}
}

func (p RetryPolicy) backoff(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.InitialInterval
	b.MaxInterval = p.MaxInterval
	b.MaxElapsedTime = p.MaxElapsedTime
	return backoff.WithContext(b, ctx)
}

// fetchBlockWithRetries fetches the block at height, retrying
// transient failures with jittered exponential backoff (spec §4.4
// step 1, §6). ErrBlockNotFound is never retried — it is the expected
// "caught up to the tip" signal and is returned to the caller as-is.
// Exhausting the retry budget surfaces the last error wrapped as
// RpcFatal.
func fetchBlockWithRetries(ctx context.Context, client Client, height uint64, policy RetryPolicy) (*Block, error) {
	var block *Block
	operation := func() error {
		b, err := client.BlockAt(ctx, height)
		if err != nil {
			if errors.Is(err, ErrBlockNotFound) {
				return backoff.Permanent(err)
			}
			return err // retryable
		}
		block = b
		return nil
	}

	err := backoff.Retry(operation, policy.backoff(ctx))
	if err != nil {
		if errors.Is(err, ErrBlockNotFound) {
			return nil, ErrBlockNotFound
		}
		return nil, newErr(KindRpcFatal, "fetch block exhausted retries", err)
	}
	return block, nil
}
