// Wayfarer - Nearby Recommendation Aggregation and Ranking Engine
// Copyright 2026 Wayfarer Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/wayfarerhq/wayfarer

package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	badger "github.com/dgraph-io/badger/v4"
	json "github.com/goccy/go-json"

	"github.com/wayfarerhq/wayfarer/internal/config"
	"github.com/wayfarerhq/wayfarer/internal/logging"
	"github.com/wayfarerhq/wayfarer/internal/metrics"
	"github.com/wayfarerhq/wayfarer/internal/models"
)

const (
	prefixRecCache = "reccache:"
	prefixVisited  = "visited:"
	prefixRecent   = "recent:"
	prefixPrefs    = "prefs:"
)

// BadgerStore implements RecommendationCache, HistoryStore and
// PreferenceStore on a single embedded Badger database.
type BadgerStore struct {
	db  *badger.DB
	cfg config.DatabaseConfig
}

// cacheEnvelope wraps persisted recommendations with their expiry so a read
// can reject stale entries even before Badger's TTL reaps them.
type cacheEnvelope struct {
	Items     []models.Recommendation `json:"items"`
	ExpiresAt time.Time               `json:"expires_at"`
}

// OpenBadger opens (or creates) the database at cfg.Path. With cfg.InMemory
// set, no files are touched, which is what the tests use.
func OpenBadger(cfg config.DatabaseConfig) (*BadgerStore, error) {
	opts := badger.DefaultOptions(cfg.Path).
		WithInMemory(cfg.InMemory).
		WithLogger(nil)
	if cfg.InMemory {
		opts = opts.WithDir("").WithValueDir("")
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger at %q: %w", cfg.Path, err)
	}
	return &BadgerStore{db: db, cfg: cfg}, nil
}

func (s *BadgerStore) Close() error {
	return s.db.Close()
}

// Persist stores items under the user and cache key with an explicit expiry.
// A Badger TTL is set as well so expired entries vanish without a sweep.
func (s *BadgerStore) Persist(_ context.Context, userID, cacheKey string, items []models.Recommendation, expiresAt time.Time) error {
	env := cacheEnvelope{Items: items, ExpiresAt: expiresAt}
	data, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal cache envelope: %w", err)
	}

	key := []byte(prefixRecCache + userID + ":" + cacheKey)
	err = s.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry(key, data)
		if ttl := time.Until(expiresAt); ttl > 0 {
			entry = entry.WithTTL(ttl)
		}
		return txn.SetEntry(entry)
	})
	if err != nil {
		metrics.StoreOperations.WithLabelValues("persist_cache", "error").Inc()
		return fmt.Errorf("persist recommendations: %w", err)
	}
	metrics.StoreOperations.WithLabelValues("persist_cache", "ok").Inc()
	return nil
}

// Read returns the cached recommendations, or ErrNotFound when the entry is
// absent or past its expiry.
func (s *BadgerStore) Read(_ context.Context, userID, cacheKey string) ([]models.Recommendation, error) {
	key := []byte(prefixRecCache + userID + ":" + cacheKey)

	var env cacheEnvelope
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &env)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		metrics.StoreOperations.WithLabelValues("read_cache", "miss").Inc()
		return nil, ErrNotFound
	}
	if err != nil {
		metrics.StoreOperations.WithLabelValues("read_cache", "error").Inc()
		return nil, fmt.Errorf("read cached recommendations: %w", err)
	}
	if time.Now().After(env.ExpiresAt) {
		metrics.StoreOperations.WithLabelValues("read_cache", "expired").Inc()
		return nil, ErrNotFound
	}
	metrics.StoreOperations.WithLabelValues("read_cache", "hit").Inc()
	return env.Items, nil
}

func (s *BadgerStore) VisitedList(_ context.Context, userID string) ([]models.VisitedPlace, error) {
	var visits []models.VisitedPlace
	prefix := []byte(prefixVisited + userID + ":")
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = true
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var v models.VisitedPlace
				if uerr := json.Unmarshal(val, &v); uerr != nil {
					logging.Warn().Err(uerr).Str("user_id", userID).Msg("skipping corrupt visited entry")
					return nil
				}
				visits = append(visits, v)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list visited places: %w", err)
	}
	return visits, nil
}

func (s *BadgerStore) AddVisited(_ context.Context, userID string, visit models.VisitedPlace) error {
	data, err := json.Marshal(visit)
	if err != nil {
		return fmt.Errorf("marshal visited place: %w", err)
	}
	key := []byte(prefixVisited + userID + ":" + visit.PlaceID)
	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, data)
	})
	if err != nil {
		return fmt.Errorf("record visited place: %w", err)
	}
	metrics.StoreOperations.WithLabelValues("add_visited", "ok").Inc()
	return nil
}

func (s *BadgerStore) RecentRecommendations(_ context.Context, userID string) ([]models.RecentRecommendation, error) {
	var recents []models.RecentRecommendation
	prefix := []byte(prefixRecent + userID + ":")
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = true
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var r models.RecentRecommendation
				if uerr := json.Unmarshal(val, &r); uerr != nil {
					logging.Warn().Err(uerr).Str("user_id", userID).Msg("skipping corrupt recent entry")
					return nil
				}
				recents = append(recents, r)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list recent recommendations: %w", err)
	}
	return recents, nil
}

func (s *BadgerStore) AddRecentRecommendation(_ context.Context, userID string, rec models.RecentRecommendation) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal recent recommendation: %w", err)
	}
	key := []byte(prefixRecent + userID + ":" + rec.RecID)
	err = s.db.Update(func(txn *badger.Txn) error {
		// Recents only matter inside the dedup window, so let Badger
		// reap them a comfortable margin past it.
		entry := badger.NewEntry(key, data).WithTTL(8 * 7 * 24 * time.Hour)
		return txn.SetEntry(entry)
	})
	if err != nil {
		return fmt.Errorf("record recent recommendation: %w", err)
	}
	metrics.StoreOperations.WithLabelValues("add_recent", "ok").Inc()
	return nil
}

func (s *BadgerStore) Preferences(_ context.Context, userID string) (models.Preferences, error) {
	var prefs models.Preferences
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(prefixPrefs + userID))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &prefs)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return models.Preferences{}, ErrNotFound
	}
	if err != nil {
		return models.Preferences{}, fmt.Errorf("read preferences: %w", err)
	}
	return prefs, nil
}

func (s *BadgerStore) SetPreferences(_ context.Context, userID string, prefs models.Preferences) error {
	data, err := json.Marshal(prefs)
	if err != nil {
		return fmt.Errorf("marshal preferences: %w", err)
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(prefixPrefs+userID), data)
	})
	if err != nil {
		return fmt.Errorf("store preferences: %w", err)
	}
	metrics.StoreOperations.WithLabelValues("set_prefs", "ok").Inc()
	return nil
}

// SweepExpired removes cache envelopes whose explicit expiry has passed but
// whose Badger TTL has not fired yet. Wired to the janitor service.
func (s *BadgerStore) SweepExpired(_ context.Context) (int, error) {
	now := time.Now()
	prefix := []byte(prefixRecCache)
	var stale [][]byte

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = true
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			err := item.Value(func(val []byte) error {
				var env cacheEnvelope
				if uerr := json.Unmarshal(val, &env); uerr != nil {
					stale = append(stale, item.KeyCopy(nil))
					return nil
				}
				if now.After(env.ExpiresAt) {
					stale = append(stale, item.KeyCopy(nil))
				}
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("scan cache entries: %w", err)
	}

	for _, key := range stale {
		err := s.db.Update(func(txn *badger.Txn) error {
			return txn.Delete(key)
		})
		if err != nil {
			return 0, fmt.Errorf("delete expired cache entry: %w", err)
		}
	}
	if len(stale) > 0 {
		logging.Debug().Int("removed", len(stale)).Msg("swept expired cache entries")
	}
	return len(stale), nil
}

// RunGC triggers Badger's value log garbage collection once. ErrNoRewrite
// means there was nothing to reclaim and is not an error for callers.
func (s *BadgerStore) RunGC() error {
	err := s.db.RunValueLogGC(s.cfg.GCDiscardRatio)
	if errors.Is(err, badger.ErrNoRewrite) {
		return nil
	}
	return err
}
