// Package queue is the narrow durable-store surface the engine needs: enqueue,
// per-platform claim, status recording and dedup lookup. Any persistence
// technology satisfying Store is acceptable.
package queue

import (
	"context"
	"errors"

	"github.com/ZoeDepthTokyo/jseeker-sub000/internal/apply"
)

var (
	ErrDuplicate  = errors.New("queue: url already has a non-failed terminal entry")
	ErrNotFound   = errors.New("queue: entry not found")
	ErrTransition = errors.New("queue: illegal status transition")
)

type Store interface {
	//Enqueue persists a new entry in queued state. Enqueueing a URL that
	//already has a non-failed terminal entry fails with ErrDuplicate.
	Enqueue(ctx context.Context, entry *apply.QueueEntry) error

	//ClaimNext atomically moves the oldest queued entry for a platform to
	//running and returns it; nil when the platform's queue is empty.
	ClaimNext(ctx context.Context, platform apply.Platform) (*apply.QueueEntry, error)

	//RecordStatus transitions an entry and attaches artifact references.
	RecordStatus(ctx context.Context, id string, status apply.AttemptStatus, artifacts []string) error

	//IsDuplicate reports whether the normalized URL already has a non-failed
	//terminal entry.
	IsDuplicate(ctx context.Context, normalizedURL string) (bool, error)
}
