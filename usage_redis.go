package innerlife

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis key layout for usage bookkeeping.
const (
	userEventsKeyFormat = "persona:user_events:%s" // hash: eventID -> EventUsageRecord JSON
	convEventsKeyFormat = "persona:conv_events:%s" // list: event ids, newest first
	eventStatsKey       = "persona:event_stats"    // hash: eventID -> mention count
)

// RedisUsageStore persists usage bookkeeping in Redis so freshness
// survives restarts and is shared across instances.
type RedisUsageStore struct {
	client  redis.UniversalClient
	userTTL time.Duration
	convTTL time.Duration
}

// NewRedisUsageStore wraps an existing Redis client. Non-positive TTLs
// fall back to the package defaults.
func NewRedisUsageStore(client redis.UniversalClient, userTTL, convTTL time.Duration) *RedisUsageStore {
	if userTTL <= 0 {
		userTTL = DefaultUserUsageTTL
	}
	if convTTL <= 0 {
		convTTL = DefaultConversationUsageTTL
	}
	return &RedisUsageStore{client: client, userTTL: userTTL, convTTL: convTTL}
}

func (s *RedisUsageStore) RecordUse(ctx context.Context, userID, conversationID, eventID string, at time.Time) error {
	userKey := fmt.Sprintf(userEventsKeyFormat, userID)
	convKey := fmt.Sprintf(convEventsKeyFormat, conversationID)

	rec := EventUsageRecord{
		EventID:        eventID,
		LastUsed:       at.UTC(),
		ConversationID: conversationID,
		UsageCount:     1,
	}
	if raw, err := s.client.HGet(ctx, userKey, eventID).Result(); err == nil {
		var prev EventUsageRecord
		if json.Unmarshal([]byte(raw), &prev) == nil {
			rec.UsageCount = prev.UsageCount + 1
		}
	} else if err != redis.Nil {
		return fmt.Errorf("read usage record: %w", err)
	}

	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode usage record: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, userKey, eventID, payload)
	pipe.Expire(ctx, userKey, s.userTTL)
	pipe.LPush(ctx, convKey, eventID)
	pipe.Expire(ctx, convKey, s.convTTL)
	pipe.HIncrBy(ctx, eventStatsKey, eventID, 1)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("record event use: %w", err)
	}
	return nil
}

func (s *RedisUsageStore) UsageRecords(ctx context.Context, userID string) (map[string]EventUsageRecord, error) {
	raw, err := s.client.HGetAll(ctx, fmt.Sprintf(userEventsKeyFormat, userID)).Result()
	if err != nil {
		return nil, fmt.Errorf("read usage records: %w", err)
	}
	out := make(map[string]EventUsageRecord, len(raw))
	for eventID, payload := range raw {
		var rec EventUsageRecord
		if err := json.Unmarshal([]byte(payload), &rec); err != nil {
			// Skip rows written by an incompatible version.
			continue
		}
		out[eventID] = rec
	}
	return out, nil
}

func (s *RedisUsageStore) ConversationEvents(ctx context.Context, conversationID string) ([]string, error) {
	ids, err := s.client.LRange(ctx, fmt.Sprintf(convEventsKeyFormat, conversationID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("read conversation events: %w", err)
	}
	return ids, nil
}

func (s *RedisUsageStore) Stats(ctx context.Context) (map[string]int64, error) {
	raw, err := s.client.HGetAll(ctx, eventStatsKey).Result()
	if err != nil {
		return nil, fmt.Errorf("read event stats: %w", err)
	}
	out := make(map[string]int64, len(raw))
	for eventID, v := range raw {
		var n int64
		if _, err := fmt.Sscan(v, &n); err == nil {
			out[eventID] = n
		}
	}
	return out, nil
}

func (s *RedisUsageStore) Cleanup(ctx context.Context, userID string, cutoff time.Time) (int, error) {
	userKey := fmt.Sprintf(userEventsKeyFormat, userID)
	raw, err := s.client.HGetAll(ctx, userKey).Result()
	if err != nil {
		return 0, fmt.Errorf("read usage records: %w", err)
	}
	var stale []string
	for eventID, payload := range raw {
		var rec EventUsageRecord
		if err := json.Unmarshal([]byte(payload), &rec); err != nil {
			stale = append(stale, eventID)
			continue
		}
		if rec.LastUsed.Before(cutoff) {
			stale = append(stale, eventID)
		}
	}
	if len(stale) == 0 {
		return 0, nil
	}
	if err := s.client.HDel(ctx, userKey, stale...).Err(); err != nil {
		return 0, fmt.Errorf("delete stale usage records: %w", err)
	}
	return len(stale), nil
}

// CleanupAll walks every user hash via SCAN and applies the per-user
// cleanup against the cutoff.
func (s *RedisUsageStore) CleanupAll(ctx context.Context, cutoff time.Time) (int, error) {
	prefix := fmt.Sprintf(userEventsKeyFormat, "")
	iter := s.client.Scan(ctx, 0, fmt.Sprintf(userEventsKeyFormat, "*"), 100).Iterator()

	removed := 0
	for iter.Next(ctx) {
		userID := strings.TrimPrefix(iter.Val(), prefix)
		n, err := s.Cleanup(ctx, userID, cutoff)
		if err != nil {
			return removed, err
		}
		removed += n
	}
	if err := iter.Err(); err != nil {
		return removed, fmt.Errorf("scan usage keys: %w", err)
	}
	return removed, nil
}

var _ UsageStore = (*RedisUsageStore)(nil)
