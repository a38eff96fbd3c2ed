// Package cart holds the shopping cart and mirrors it to key-value storage.
package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/drstein77/eshop/internal/models"
	"github.com/drstein77/eshop/internal/storage"
	"go.uber.org/zap"
)

var (
	ErrInvalidQuantity = errors.New("quantity must be positive")
	ErrEmptyProductID  = errors.New("empty product id")
)

type Log interface {
	Info(string, ...zap.Field)
	Warn(string, ...zap.Field)
	Error(string, ...zap.Field)
}

// Storage is the key-value boundary the cart is persisted through.
type Storage interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
}

// Store maps product ids to positive quantities. Every mutation writes the
// whole cart to storage. Store is not safe for concurrent use.
type Store struct {
	key     string
	items   models.Cart
	storage Storage
	log     Log
}

// NewStore restores the cart saved under key. A missing or unreadable blob
// yields an empty cart.
func NewStore(ctx context.Context, st Storage, key string, log Log) *Store {
	s := &Store{
		key:     key,
		items:   make(models.Cart),
		storage: st,
		log:     log,
	}

	raw, err := st.Get(ctx, key)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return s
	case err != nil:
		log.Error("cannot load cart", zap.String("key", key), zap.Error(err))
		return s
	}

	var saved map[string]int
	if err := json.Unmarshal(raw, &saved); err != nil {
		log.Warn("discarding corrupt cart", zap.String("key", key), zap.Error(err))
		return s
	}
	for id, qty := range saved {
		if id != "" && qty > 0 {
			s.items[id] = qty
		}
	}

	log.Info("cart restored", zap.String("key", key), zap.Int("entries", len(s.items)))
	return s
}

// Add increases the quantity of id by qty, inserting it when absent.
func (s *Store) Add(ctx context.Context, id string, qty int) error {
	if id == "" {
		return ErrEmptyProductID
	}
	if qty <= 0 {
		return fmt.Errorf("add %d of %q: %w", qty, id, ErrInvalidQuantity)
	}
	s.items[id] += qty
	return s.save(ctx)
}

// SetQuantity sets the quantity of id. A non-positive qty removes the entry.
func (s *Store) SetQuantity(ctx context.Context, id string, qty int) error {
	if id == "" {
		return ErrEmptyProductID
	}
	if qty <= 0 {
		delete(s.items, id)
	} else {
		s.items[id] = qty
	}
	return s.save(ctx)
}

func (s *Store) Increment(ctx context.Context, id string) error {
	return s.SetQuantity(ctx, id, s.items[id]+1)
}

func (s *Store) Decrement(ctx context.Context, id string) error {
	return s.SetQuantity(ctx, id, s.items[id]-1)
}

func (s *Store) Remove(ctx context.Context, id string) error {
	delete(s.items, id)
	return s.save(ctx)
}

func (s *Store) Clear(ctx context.Context) error {
	s.items = make(models.Cart)
	return s.save(ctx)
}

func (s *Store) Quantity(id string) int {
	return s.items[id]
}

// Count is the total number of items, the value shown on the cart badge.
func (s *Store) Count() int {
	n := 0
	for _, qty := range s.items {
		n += qty
	}
	return n
}

func (s *Store) Len() int {
	return len(s.items)
}

// Snapshot returns a copy of the cart.
func (s *Store) Snapshot() models.Cart {
	out := make(models.Cart, len(s.items))
	for id, qty := range s.items {
		out[id] = qty
	}
	return out
}

// save writes the full cart. The in-memory state is kept even when the
// write fails.
func (s *Store) save(ctx context.Context) error {
	raw, err := json.Marshal(s.items)
	if err != nil {
		return fmt.Errorf("encode cart: %w", err)
	}
	if err := s.storage.Put(ctx, s.key, raw); err != nil {
		s.log.Error("cannot persist cart", zap.String("key", s.key), zap.Error(err))
		return fmt.Errorf("persist cart: %w", err)
	}
	return nil
}
