// Package kvstore provides the keyed JSON store behind the vehicle and
// booking collections. Reads and writes are best effort: a flaky backend
// must never crash a caller, so errors are logged and swallowed and reads
// fall back to the caller's default value.
package kvstore

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// ErrNoKey is returned by backends when a key has no value. It is the one
// backend error that does not count as an outage.
var ErrNoKey = errors.New("key not found")

// Backend is a raw byte store. Implementations return real errors; the
// Store wrapper decides what callers see.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, data []byte) error
	Remove(ctx context.Context, key string) error
	Ping(ctx context.Context) error
}

const defaultRecoveryInterval = time.Minute

// Store is the key-value adapter used by the registry and the ledger.
// It serves from the primary backend until the primary fails, then from the
// fallback, probing the primary again after RecoveryInterval. Writes are
// mirrored to the fallback so an outage mid-process keeps recent data
// visible.
type Store struct {
	primary  Backend
	fallback Backend
	logger   *zerolog.Logger

	recoveryInterval time.Duration

	mu        sync.Mutex
	isDown    bool
	lastCheck time.Time
}

// Options tunes Store behavior.
type Options struct {
	// RecoveryInterval is how long to wait before re-probing a failed
	// primary. Zero means one minute.
	RecoveryInterval time.Duration
}

// New builds a Store over a primary and a fallback backend.
func New(primary, fallback Backend, logger *zerolog.Logger, opts Options) *Store {
	interval := opts.RecoveryInterval
	if interval <= 0 {
		interval = defaultRecoveryInterval
	}
	return &Store{
		primary:          primary,
		fallback:         fallback,
		logger:           logger,
		recoveryInterval: interval,
	}
}

// NewMemory builds a Store backed entirely by process memory. Used by tests
// and as the zero-config default.
func NewMemory(logger *zerolog.Logger) *Store {
	return New(NewMemoryBackend(), NewMemoryBackend(), logger, Options{})
}

// Get unmarshals the value stored under key into out and returns true.
// A missing key, an unreachable backend, or an unparsable value all leave
// out untouched and return false, so the caller keeps its default.
func (s *Store) Get(ctx context.Context, key string, out any) bool {
	data, err := s.read(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrNoKey) {
			s.logger.Warn().Err(err).Str("key", key).Msg("store read failed, using default")
		}
		return false
	}
	if err := json.Unmarshal(data, out); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("stored value unparsable, using default")
		return false
	}
	return true
}

// Set marshals value and writes it under key. Errors are logged only.
func (s *Store) Set(ctx context.Context, key string, value any) {
	data, err := json.Marshal(value)
	if err != nil {
		s.logger.Error().Err(err).Str("key", key).Msg("store marshal failed, write dropped")
		return
	}
	if s.primaryUp(ctx) {
		if err := s.primary.Set(ctx, key, data); err != nil {
			s.markDown(err)
		}
	}
	if err := s.fallback.Set(ctx, key, data); err != nil {
		s.logger.Error().Err(err).Str("key", key).Msg("fallback write failed")
	}
}

// Remove deletes the value under key. Errors are logged only.
func (s *Store) Remove(ctx context.Context, key string) {
	if s.primaryUp(ctx) {
		if err := s.primary.Remove(ctx, key); err != nil {
			s.markDown(err)
		}
	}
	if err := s.fallback.Remove(ctx, key); err != nil {
		s.logger.Error().Err(err).Str("key", key).Msg("fallback remove failed")
	}
}

// Ping reports reachability of the primary backend. Used by readiness
// checks; the store itself never propagates this to data callers.
func (s *Store) Ping(ctx context.Context) error {
	return s.primary.Ping(ctx)
}

func (s *Store) read(ctx context.Context, key string) ([]byte, error) {
	if s.primaryUp(ctx) {
		data, err := s.primary.Get(ctx, key)
		if err == nil || errors.Is(err, ErrNoKey) {
			return data, err
		}
		s.markDown(err)
	}
	return s.fallback.Get(ctx, key)
}

// primaryUp reports whether the primary should be used, probing it again
// once RecoveryInterval has passed since the last failure.
func (s *Store) primaryUp(ctx context.Context) bool {
	s.mu.Lock()
	down := s.isDown
	due := time.Since(s.lastCheck) >= s.recoveryInterval
	s.mu.Unlock()

	if !down {
		return true
	}
	if !due {
		return false
	}
	if err := s.primary.Ping(ctx); err != nil {
		s.mu.Lock()
		s.lastCheck = time.Now()
		s.mu.Unlock()
		return false
	}
	s.mu.Lock()
	s.isDown = false
	s.mu.Unlock()
	s.logger.Info().Msg("primary store recovered")
	return true
}

func (s *Store) markDown(err error) {
	s.mu.Lock()
	wasDown := s.isDown
	s.isDown = true
	s.lastCheck = time.Now()
	s.mu.Unlock()
	if !wasDown {
		s.logger.Warn().Err(err).Msg("primary store unavailable, serving from fallback")
	}
}
