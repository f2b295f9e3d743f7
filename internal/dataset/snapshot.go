// Reelmatch - LSH Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package dataset

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
)

// Key prefixes for BadgerDB storage
const (
	ratingsKeyPrefix = "ratings:"
	titleKeyPrefix   = "title:"
	metaKey          = "meta"
)

// ErrSnapshotEmpty is returned when the store holds no saved dataset.
var ErrSnapshotEmpty = errors.New("dataset: snapshot store is empty")

// Meta describes the dataset held by a SnapshotStore.
type Meta struct {
	SavedAt           time.Time `json:"saved_at"`
	Source            string    `json:"source"`
	Users             int       `json:"users"`
	Ratings           int       `json:"ratings"`
	MinRatingsPerUser int       `json:"min_ratings_per_user"`
	MinRatingsPerItem int       `json:"min_ratings_per_item"`
}

// userRatings is the stored value for one user.
type userRatings struct {
	Items      []int     `json:"i"`
	Ratings    []float64 `json:"r"`
	Timestamps []int64   `json:"t,omitempty"`
}

// SnapshotStore persists a filtered dataset in BadgerDB so restarts and
// refreshes can skip CSV parsing.
type SnapshotStore struct {
	db     *badger.DB
	logger zerolog.Logger
}

// OpenSnapshotStore opens (or creates) a snapshot store in dir.
func OpenSnapshotStore(dir string, logger zerolog.Logger) (*SnapshotStore, error) {
	if dir == "" {
		return nil, errors.New("dataset: snapshot dir is empty")
	}

	opts := badger.DefaultOptions(dir)
	// Reduce logging verbosity
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open BadgerDB: %w", err)
	}

	s := &SnapshotStore{
		db:     db,
		logger: logger.With().Str("component", "snapshot_store").Logger(),
	}
	s.logger.Info().Str("path", dir).Msg("Snapshot store opened")
	return s, nil
}

// Close closes the underlying database.
func (s *SnapshotStore) Close() error {
	return s.db.Close()
}

// userKey encodes id so keys sort in numeric order, negatives first.
func userKey(id int) []byte {
	key := make([]byte, len(ratingsKeyPrefix)+8)
	copy(key, ratingsKeyPrefix)
	binary.BigEndian.PutUint64(key[len(ratingsKeyPrefix):], uint64(int64(id))^(1<<63))
	return key
}

func decodeUserKey(key []byte) int {
	return int(int64(binary.BigEndian.Uint64(key[len(ratingsKeyPrefix):]) ^ (1 << 63)))
}

func titleKey(id int) []byte {
	key := make([]byte, len(titleKeyPrefix)+8)
	copy(key, titleKeyPrefix)
	binary.BigEndian.PutUint64(key[len(titleKeyPrefix):], uint64(int64(id))^(1<<63))
	return key
}

func decodeTitleKey(key []byte) int {
	return int(int64(binary.BigEndian.Uint64(key[len(titleKeyPrefix):]) ^ (1 << 63)))
}

// SaveRatings replaces the stored ratings with ratings and records meta.
// meta.SavedAt, Users and Ratings are filled in.
func (s *SnapshotStore) SaveRatings(ctx context.Context, ratings []Rating, meta Meta) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.db.DropPrefix([]byte(ratingsKeyPrefix)); err != nil {
		return fmt.Errorf("drop ratings: %w", err)
	}

	sorted := SortRatings(ratings)
	wb := s.db.NewWriteBatch()
	defer wb.Cancel()

	users := 0
	for i := 0; i < len(sorted); {
		if err := ctx.Err(); err != nil {
			return err
		}
		user := sorted[i].UserID
		var value userRatings
		hasTS := false
		for ; i < len(sorted) && sorted[i].UserID == user; i++ {
			value.Items = append(value.Items, sorted[i].ItemID)
			value.Ratings = append(value.Ratings, sorted[i].Value)
			value.Timestamps = append(value.Timestamps, sorted[i].Timestamp)
			hasTS = hasTS || sorted[i].Timestamp != 0
		}
		if !hasTS {
			value.Timestamps = nil
		}

		data, err := json.Marshal(value)
		if err != nil {
			return fmt.Errorf("marshal ratings for user %d: %w", user, err)
		}
		if err := wb.Set(userKey(user), data); err != nil {
			return fmt.Errorf("set ratings for user %d: %w", user, err)
		}
		users++
	}
	if err := wb.Flush(); err != nil {
		return fmt.Errorf("flush ratings: %w", err)
	}

	meta.SavedAt = time.Now().UTC()
	meta.Users = users
	meta.Ratings = len(sorted)
	data, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("marshal meta: %w", err)
	}
	if err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(metaKey), data)
	}); err != nil {
		return fmt.Errorf("set meta: %w", err)
	}

	s.logger.Info().
		Int("users", users).
		Int("ratings", len(sorted)).
		Str("source", meta.Source).
		Msg("Dataset snapshot saved")
	return nil
}

// LoadRatings returns the stored ratings ordered by user then item.
func (s *SnapshotStore) LoadRatings(ctx context.Context) ([]Rating, error) {
	if _, err := s.Meta(ctx); err != nil {
		return nil, err
	}

	var ratings []Rating
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(ratingsKeyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(ratingsKeyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			item := it.Item()
			user := decodeUserKey(item.Key())
			var value userRatings
			if err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &value)
			}); err != nil {
				return fmt.Errorf("decode ratings for user %d: %w", user, err)
			}
			if len(value.Items) != len(value.Ratings) {
				return fmt.Errorf("decode ratings for user %d: %d items, %d ratings", user, len(value.Items), len(value.Ratings))
			}
			for j, itemID := range value.Items {
				r := Rating{UserID: user, ItemID: itemID, Value: value.Ratings[j]}
				if j < len(value.Timestamps) {
					r.Timestamp = value.Timestamps[j]
				}
				ratings = append(ratings, r)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ratings, nil
}

// SaveTitles replaces the stored titles.
func (s *SnapshotStore) SaveTitles(ctx context.Context, titles Titles) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.db.DropPrefix([]byte(titleKeyPrefix)); err != nil {
		return fmt.Errorf("drop titles: %w", err)
	}

	wb := s.db.NewWriteBatch()
	defer wb.Cancel()
	for id, title := range titles {
		if err := wb.Set(titleKey(id), []byte(title)); err != nil {
			return fmt.Errorf("set title %d: %w", id, err)
		}
	}
	if err := wb.Flush(); err != nil {
		return fmt.Errorf("flush titles: %w", err)
	}
	return nil
}

// LoadTitles returns the stored titles, empty when none were saved.
func (s *SnapshotStore) LoadTitles(ctx context.Context) (Titles, error) {
	titles := make(Titles)
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(titleKeyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(titleKeyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			item := it.Item()
			id := decodeTitleKey(item.Key())
			if err := item.Value(func(val []byte) error {
				titles[id] = string(val)
				return nil
			}); err != nil {
				return fmt.Errorf("read title %d: %w", id, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return titles, nil
}

// Meta returns the metadata of the saved dataset, or ErrSnapshotEmpty.
func (s *SnapshotStore) Meta(ctx context.Context) (*Meta, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var meta Meta
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(metaKey))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrSnapshotEmpty
		}
		if err != nil {
			return fmt.Errorf("get meta: %w", err)
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &meta)
		})
	})
	if err != nil {
		return nil, err
	}
	return &meta, nil
}
