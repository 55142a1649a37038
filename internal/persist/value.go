package persist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/Clark-Hu/popcorn/internal/reactive"
)

// MalformedError reports a stored value that could not be decoded.
type MalformedError struct {
	Key string
	Err error
}

func (e *MalformedError) Error() string {
	return fmt.Sprintf("persist: malformed value under %q: %v", e.Key, e.Err)
}

func (e *MalformedError) Unwrap() error { return e.Err }

// Options tunes Open.
type Options struct {
	// ResetMalformed replaces an undecodable stored value with the default
	// instead of failing.
	ResetMalformed bool
	Logger         *slog.Logger
}

// Value is a piece of state mirrored to a Backend key. Every change is
// encoded as JSON and written before Set returns.
type Value[T any] struct {
	mu      sync.Mutex
	key     string
	backend Backend
	state   *reactive.State[T]
	logger  *slog.Logger
}

// Open loads key from backend, falling back to def when nothing is stored,
// and writes the resulting value back.
func Open[T any](ctx context.Context, backend Backend, key string, def T, opts Options) (*Value[T], error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	initial := def
	raw, err := backend.Load(ctx, key)
	switch {
	case errors.Is(err, ErrNotFound):
	case err != nil:
		return nil, fmt.Errorf("persist: load %q: %w", key, err)
	case len(raw) == 0:
	default:
		var decoded T
		if err := json.Unmarshal(raw, &decoded); err != nil {
			if !opts.ResetMalformed {
				return nil, &MalformedError{Key: key, Err: err}
			}
			logger.Warn("persist: discarding malformed stored value", slog.String("key", key), slog.String("error", err.Error()))
		} else {
			initial = decoded
		}
	}

	v := &Value[T]{
		key:     key,
		backend: backend,
		state:   reactive.NewState(initial),
		logger:  logger,
	}
	if err := v.write(ctx, initial); err != nil {
		return nil, err
	}
	return v, nil
}

// Key returns the backend key of the value.
func (v *Value[T]) Key() string {
	return v.key
}

// Get returns the current value.
func (v *Value[T]) Get() T {
	return v.state.Get()
}

// Set stores next and notifies bindings. The in-memory value is only updated
// when the write succeeds.
func (v *Value[T]) Set(ctx context.Context, next T) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.commitLocked(ctx, next)
}

// Update applies fn to the current value and stores the result.
func (v *Value[T]) Update(ctx context.Context, fn func(T) T) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.commitLocked(ctx, fn(v.state.Get()))
}

// Bind registers fn to be called after every committed change.
func (v *Value[T]) Bind(fn func(T)) reactive.Unbind {
	return v.state.Bind(fn)
}

func (v *Value[T]) commitLocked(ctx context.Context, next T) error {
	if err := v.write(ctx, next); err != nil {
		return err
	}
	v.state.Set(next)
	return nil
}

func (v *Value[T]) write(ctx context.Context, value T) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("persist: encode %q: %w", v.key, err)
	}
	if err := v.backend.Save(ctx, v.key, payload); err != nil {
		return fmt.Errorf("persist: save %q: %w", v.key, err)
	}
	v.logger.Debug("persist: stored value", slog.String("key", v.key), slog.Int("bytes", len(payload)))
	return nil
}
