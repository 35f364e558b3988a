package client

import (
	"context"
	"sync"

	"github.com/localnerve/jam-build-rentals/internal/api"
)

// Optimistic holds a server-confirmed value and at most one tentative value
// shown ahead of confirmation. A failed mutation rolls back to the confirmed value.
type Optimistic[T any] struct {
	mu        sync.Mutex
	confirmed T
	pending   *T
	gen       uint64
	notify    func(value T, err error)
}

// NewOptimistic creates an Optimistic starting at the confirmed value initial.
// notify, if set, is called after every settle with the value now shown and the
// mutation error, if any.
func NewOptimistic[T any](initial T, notify func(value T, err error)) *Optimistic[T] {
	return &Optimistic[T]{confirmed: initial, notify: notify}
}

// Value returns the tentative value while a mutation is pending, otherwise the confirmed one
func (o *Optimistic[T]) Value() T {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.pending != nil {
		return *o.pending
	}
	return o.confirmed
}

// Confirmed returns the last value the server acknowledged
func (o *Optimistic[T]) Confirmed() T {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.confirmed
}

// Pending reports whether a mutation is outstanding
func (o *Optimistic[T]) Pending() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.pending != nil
}

// Apply shows tentative immediately, runs mutate and settles on its result.
// On success the returned value becomes confirmed; on failure the confirmed value
// is restored and the error returned. A later Apply supersedes the tentative
// value of an earlier one still in flight.
func (o *Optimistic[T]) Apply(ctx context.Context, tentative T, mutate func(ctx context.Context) (T, error)) (T, error) {
	o.mu.Lock()
	o.gen++
	gen := o.gen
	o.pending = &tentative
	o.mu.Unlock()

	result, err := mutate(ctx)

	o.mu.Lock()
	if err == nil {
		o.confirmed = result
	}
	if o.gen == gen {
		o.pending = nil
	}
	shown := o.confirmed
	if o.pending != nil {
		shown = *o.pending
	}
	notify := o.notify
	o.mu.Unlock()

	if notify != nil {
		notify(shown, err)
	}
	if err != nil {
		return shown, err
	}
	return result, nil
}

// ToggleLike flips the liked state of a property optimistically
func (c *Client) ToggleLike(ctx context.Context, state *Optimistic[api.LikeState]) (api.LikeState, error) {
	current := state.Value()
	tentative := current
	tentative.Liked = !current.Liked
	if tentative.Liked {
		tentative.Likes++
	} else if tentative.Likes > 0 {
		tentative.Likes--
	}

	return state.Apply(ctx, tentative, func(ctx context.Context) (api.LikeState, error) {
		next, err := c.SetLiked(ctx, current.PropertyID, tentative.Liked)
		if err != nil {
			return api.LikeState{}, err
		}
		return *next, nil
	})
}
