// Package cache provides a read-through cache in front of a row store.
package cache

import (
	"context"
	"fmt"
	"time"

	"gastos/internal/sheets"

	"github.com/dgraph-io/ristretto/v2"
)

// Store caches whole tables by name. Writes drop the table's entry before
// and after delegating, so a read never observes a table older than the
// last write made through this Store.
type Store struct {
	next  sheets.Store
	cache *ristretto.Cache[string, sheets.Table]
	ttl   time.Duration
}

var _ sheets.Store = (*Store)(nil)

// New wraps next. A zero ttl keeps entries until they are invalidated.
func New(next sheets.Store, ttl time.Duration) (*Store, error) {
	c, err := ristretto.NewCache(&ristretto.Config[string, sheets.Table]{
		NumCounters:        1e4, // number of keys to track frequency of
		MaxCost:            1 << 10,
		BufferItems:        64, // number of keys per Get buffer
		IgnoreInternalCost: true,
	})
	if err != nil {
		return nil, fmt.Errorf("create table cache: %w", err)
	}
	return &Store{next: next, cache: c, ttl: ttl}, nil
}

func (s *Store) Table(ctx context.Context, name string) (sheets.Table, error) {
	if t, ok := s.cache.Get(name); ok {
		return t.Clone(), nil
	}
	t, err := s.next.Table(ctx, name)
	if err != nil {
		return sheets.Table{}, err
	}
	s.cache.SetWithTTL(name, t.Clone(), 1, s.ttl)
	s.cache.Wait()
	return t, nil
}

func (s *Store) Append(ctx context.Context, name string, rec sheets.Record) error {
	s.cache.Del(name)
	defer s.cache.Del(name)
	return s.next.Append(ctx, name, rec)
}

func (s *Store) ClearAndRewrite(ctx context.Context, name string, recs []sheets.Record) error {
	s.cache.Del(name)
	defer s.cache.Del(name)
	return s.next.ClearAndRewrite(ctx, name, recs)
}

// Invalidate drops every cached table.
func (s *Store) Invalidate() {
	s.cache.Clear()
}

func (s *Store) Close() {
	s.cache.Close()
}
