package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// GuestStore keeps unauthenticated carts in Redis: one key per guest
// token holding the JSON-serialized item array, mirroring the single
// local-storage key the storefront used. The key is removed when the
// cart becomes empty or is cleared.
type GuestStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewGuestStore(rdb *redis.Client, ttl time.Duration) *GuestStore {
	return &GuestStore{rdb: rdb, ttl: ttl}
}

func guestKey(guestID string) string {
	return "cart:guest:" + guestID
}

// Fetch returns the guest's items; a missing key is an empty cart, any
// other failure propagates.
func (s *GuestStore) Fetch(ctx context.Context, guestID string) ([]Item, error) {
	b, err := s.rdb.Get(ctx, guestKey(guestID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return []Item{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading guest cart[%s]: %w", guestID, err)
	}

	var items []Item
	if err := json.Unmarshal(b, &items); err != nil {
		return nil, fmt.Errorf("decoding guest cart[%s]: %w", guestID, err)
	}

	return items, nil
}

// Save writes the item array back; an empty cart deletes the key.
func (s *GuestStore) Save(ctx context.Context, guestID string, items []Item) error {
	if len(items) == 0 {
		return s.Clear(ctx, guestID)
	}

	b, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encoding guest cart[%s]: %w", guestID, err)
	}

	if err := s.rdb.Set(ctx, guestKey(guestID), b, s.ttl).Err(); err != nil {
		return fmt.Errorf("writing guest cart[%s]: %w", guestID, err)
	}

	return nil
}

func (s *GuestStore) Clear(ctx context.Context, guestID string) error {
	if err := s.rdb.Del(ctx, guestKey(guestID)).Err(); err != nil {
		return fmt.Errorf("clearing guest cart[%s]: %w", guestID, err)
	}
	return nil
}

// NewItemID synthesizes a stable id for a locally added item from the
// product, cycle and creation time, the way the storefront did.
func NewItemID(productID string, cycle int, at time.Time) string {
	return fmt.Sprintf("%s-%d-%d", productID, cycle, at.UnixMilli())
}
