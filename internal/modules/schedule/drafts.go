// README: Booking form drafts kept in Redis with a TTL.
package schedule

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"ridepass/internal/types"
)

const draftKeyPrefix = "ridepass:draft:"

type DraftStore struct {
	rdb *redis.Client
}

func NewDraftStore(rdb *redis.Client) *DraftStore {
	return &DraftStore{rdb: rdb}
}

func draftKey(userID types.ID) string {
	return fmt.Sprintf("%s%s", draftKeyPrefix, userID)
}

func (s *DraftStore) Save(ctx context.Context, userID types.ID, d Draft, ttl time.Duration) error {
	raw, err := json.Marshal(d)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, draftKey(userID), raw, ttl).Err()
}

func (s *DraftStore) Load(ctx context.Context, userID types.ID) (Draft, error) {
	raw, err := s.rdb.Get(ctx, draftKey(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Draft{}, ErrDraftNotFound
	}
	if err != nil {
		return Draft{}, err
	}
	var d Draft
	if err := json.Unmarshal(raw, &d); err != nil {
		return Draft{}, err
	}
	return d, nil
}

func (s *DraftStore) Delete(ctx context.Context, userID types.ID) error {
	return s.rdb.Del(ctx, draftKey(userID)).Err()
}
