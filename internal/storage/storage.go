package storage

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

var ErrNotFound = errors.New("not found")

type Log interface {
	Info(string, ...zap.Field)
	Error(string, ...zap.Field)
}

// Keeper is a durable mirror of the key-value blobs.
type Keeper interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Store(ctx context.Context, key string, value []byte) error
	Ping(context.Context) bool
	Close() bool
}

// MemoryStorage is a key-value blob store held in memory. When a keeper is
// set every Put is written through to it and misses are read from it.
type MemoryStorage struct {
	mx   sync.RWMutex
	data map[string][]byte

	keeper Keeper
	log    Log
}

// NewMemoryStorage creates a new MemoryStorage instance. keeper may be nil.
func NewMemoryStorage(keeper Keeper, log Log) *MemoryStorage {
	return &MemoryStorage{
		data:   make(map[string][]byte),
		keeper: keeper,
		log:    log,
	}
}

// Get returns a copy of the value stored under key or ErrNotFound.
func (s *MemoryStorage) Get(ctx context.Context, key string) ([]byte, error) {
	s.mx.RLock()
	v, ok := s.data[key]
	s.mx.RUnlock()
	if ok {
		return clone(v), nil
	}

	if s.keeper == nil {
		return nil, ErrNotFound
	}

	v, err := s.keeper.Load(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.log.Error("keeper load failed", zap.String("key", key), zap.Error(err))
		}
		return nil, err
	}

	s.mx.Lock()
	s.data[key] = clone(v)
	s.mx.Unlock()

	return v, nil
}

// Put overwrites the value under key.
func (s *MemoryStorage) Put(ctx context.Context, key string, value []byte) error {
	s.mx.Lock()
	s.data[key] = clone(value)
	s.mx.Unlock()

	if s.keeper == nil {
		return nil
	}
	if err := s.keeper.Store(ctx, key, value); err != nil {
		s.log.Error("keeper store failed", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("store %q: %w", key, err)
	}
	return nil
}

// Ping reports whether the durable mirror is reachable. Without one the
// storage is always available.
func (s *MemoryStorage) Ping(ctx context.Context) bool {
	if s.keeper == nil {
		return true
	}
	return s.keeper.Ping(ctx)
}

func (s *MemoryStorage) Close() {
	if s.keeper != nil {
		s.keeper.Close()
	}
}

func clone(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
