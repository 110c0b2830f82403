// Package vault stores client-encrypted credential records. Every field the
// client sends is already encrypted on their side; this package only
// persists and indexes the opaque values.
package vault

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var (
	// ErrItemNotFound is returned when no vault item exists for the id.
	ErrItemNotFound = errors.New("vault item not found")
	// ErrInvalidItem is returned for items missing required fields.
	ErrInvalidItem = errors.New("invalid vault item")
	// ErrStoreUnavailable wraps persistence failures.
	ErrStoreUnavailable = errors.New("store unavailable")
)

// Item is one stored credential record.
type Item struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Title     string    `json:"title"`
	Username  string    `json:"username"`
	Password  string    `json:"password"`
	URL       string    `json:"url,omitempty"`
	Notes     string    `json:"notes,omitempty"`
	Tags      []string  `json:"tags"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ImportResult reports how an import went. Skipped counts duplicates and
// invalid entries; the import itself never fails on a bad entry.
type ImportResult struct {
	Created int `json:"count"`
	Skipped int `json:"skipped"`
}

// Store keeps items as JSON documents with a per-user index ordered by
// creation time, newest first on listing.
type Store struct {
	rdb    *redis.Client
	prefix string
	now    func() time.Time
}

// NewStore returns a Store namespaced by prefix.
func NewStore(rdb *redis.Client, prefix string) *Store {
	if prefix == "" {
		prefix = "sv"
	}
	return &Store{rdb: rdb, prefix: prefix, now: time.Now}
}

func (s *Store) itemKey(id string) string {
	return s.prefix + ":vault:item:" + id
}

func (s *Store) userKey(userID string) string {
	return s.prefix + ":vault:user:" + userID
}

// Create validates and persists a new item, assigning its id and timestamps.
func (s *Store) Create(ctx context.Context, item Item) (*Item, error) {
	if item.UserID == "" || item.Title == "" || item.Username == "" || item.Password == "" {
		return nil, fmt.Errorf("%w: userId, title, username and password required", ErrInvalidItem)
	}

	item.ID = uuid.NewString()
	now := s.now()
	if item.CreatedAt.IsZero() {
		item.CreatedAt = now
	}
	item.UpdatedAt = now
	if item.Tags == nil {
		item.Tags = []string{}
	}

	if err := s.write(ctx, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

// Get loads one item by id.
func (s *Store) Get(ctx context.Context, id string) (*Item, error) {
	data, err := s.rdb.Get(ctx, s.itemKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrItemNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	var item Item
	if err := json.Unmarshal(data, &item); err != nil {
		return nil, fmt.Errorf("%w: corrupt vault item: %v", ErrStoreUnavailable, err)
	}
	return &item, nil
}

// ListByUser returns all of the user's items, newest first.
func (s *Store) ListByUser(ctx context.Context, userID string) ([]Item, error) {
	ids, err := s.rdb.ZRevRange(ctx, s.userKey(userID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if len(ids) == 0 {
		return []Item{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = s.itemKey(id)
	}
	values, err := s.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	items := make([]Item, 0, len(values))
	for _, v := range values {
		raw, ok := v.(string)
		if !ok {
			continue
		}
		var item Item
		if err := json.Unmarshal([]byte(raw), &item); err != nil {
			continue
		}
		items = append(items, item)
	}
	return items, nil
}

// Update replaces the mutable fields of an existing item.
func (s *Store) Update(ctx context.Context, id string, patch Item) (*Item, error) {
	item, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	item.Title = patch.Title
	item.Username = patch.Username
	item.Password = patch.Password
	item.URL = patch.URL
	item.Notes = patch.Notes
	if patch.Tags != nil {
		item.Tags = patch.Tags
	} else {
		item.Tags = []string{}
	}
	item.UpdatedAt = s.now()

	if err := s.write(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// Delete removes an item and its index entry.
func (s *Store) Delete(ctx context.Context, id string) error {
	item, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	pipe := s.rdb.TxPipeline()
	pipe.Del(ctx, s.itemKey(id))
	pipe.ZRem(ctx, s.userKey(item.UserID), id)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

// Export returns the user's items for download; the payload is the same
// JSON the list endpoint serves.
func (s *Store) Export(ctx context.Context, userID string) ([]Item, error) {
	return s.ListByUser(ctx, userID)
}

// Import creates the valid, non-duplicate entries of items under userID.
// An entry is a duplicate when the user already holds an item with the same
// title and username. Invalid and duplicate entries are counted, not fatal.
func (s *Store) Import(ctx context.Context, userID string, items []Item) (*ImportResult, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: userId required", ErrInvalidItem)
	}

	existing, err := s.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{}, len(existing))
	for _, it := range existing {
		seen[it.Title+"\x00"+it.Username] = struct{}{}
	}

	result := &ImportResult{}
	for _, item := range items {
		if item.Title == "" || item.Username == "" || item.Password == "" {
			result.Skipped++
			continue
		}
		key := item.Title + "\x00" + item.Username
		if _, dup := seen[key]; dup {
			result.Skipped++
			continue
		}

		item.UserID = userID
		if _, err := s.Create(ctx, item); err != nil {
			if errors.Is(err, ErrStoreUnavailable) {
				return nil, err
			}
			result.Skipped++
			continue
		}
		seen[key] = struct{}{}
		result.Created++
	}
	return result, nil
}

func (s *Store) write(ctx context.Context, item *Item) error {
	data, err := json.Marshal(item)
	if err != nil {
		return err
	}

	pipe := s.rdb.TxPipeline()
	pipe.Set(ctx, s.itemKey(item.ID), data, 0)
	pipe.ZAdd(ctx, s.userKey(item.UserID), redis.Z{
		Score:  float64(item.CreatedAt.UnixNano()),
		Member: item.ID,
	})
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}
