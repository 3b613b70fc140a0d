// internal/matching/seencache.go
// Read-through cache of the recently-shown candidate set used by repeat
// prevention. The matches table stays the source of truth; Redis only
// saves the builder a query per user during the nightly batch.

package matching

import (
	"context"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const seenKeyPrefix = "matching:seen:"

// SeenCache tracks which candidates were shown to a user within the
// repeat-prevention lookback window.
type SeenCache struct {
	client   *redis.Client
	repo     Repository
	lookback time.Duration
	log      *zap.Logger
}

func NewSeenCache(client *redis.Client, repo Repository, lookback time.Duration, log *zap.Logger) *SeenCache {
	return &SeenCache{client: client, repo: repo, lookback: lookback, log: log}
}

func seenKey(userID string) string {
	return seenKeyPrefix + userID
}

// RecentlyShown returns candidate IDs shown within the lookback window,
// each with the time it was last shown. A cold or unavailable cache falls
// back to the matches table.
func (c *SeenCache) RecentlyShown(ctx context.Context, userID string, now time.Time) ([]SeenCandidate, error) {
	cutoff := now.Add(-c.lookback)

	if c.client != nil {
		entries, err := c.client.ZRangeByScoreWithScores(ctx, seenKey(userID), &redis.ZRangeBy{
			Min: strconv.FormatInt(cutoff.Unix(), 10),
			Max: "+inf",
		}).Result()
		if err == nil && len(entries) > 0 {
			seen := make([]SeenCandidate, 0, len(entries))
			for _, entry := range entries {
				id, ok := entry.Member.(string)
				if !ok {
					continue
				}
				seen = append(seen, SeenCandidate{
					UserID:    id,
					LastShown: time.Unix(int64(entry.Score), 0),
				})
			}
			return seen, nil
		}
		if err != nil {
			c.log.Warn("seen cache read failed, falling back to database",
				zap.String("user_id", userID), zap.Error(err))
		}
	}

	seen, err := c.repo.GetRecentlyShown(ctx, userID, cutoff)
	if err != nil {
		return nil, err
	}
	c.backfill(ctx, userID, seen)
	return seen, nil
}

// MarkShown records a delivery so the next builder run treats these
// candidates as seen. Cache errors are logged and swallowed: the matches
// table already holds the delivery.
func (c *SeenCache) MarkShown(ctx context.Context, userID string, candidateIDs []string, at time.Time) {
	if c.client == nil || len(candidateIDs) == 0 {
		return
	}

	members := make([]*redis.Z, 0, len(candidateIDs))
	for _, id := range candidateIDs {
		members = append(members, &redis.Z{Score: float64(at.Unix()), Member: id})
	}

	pipe := c.client.Pipeline()
	pipe.ZAdd(ctx, seenKey(userID), members...)
	pipe.Expire(ctx, seenKey(userID), c.lookback)
	if _, err := pipe.Exec(ctx); err != nil {
		c.log.Warn("seen cache write failed",
			zap.String("user_id", userID), zap.Error(err))
	}
}

func (c *SeenCache) backfill(ctx context.Context, userID string, seen []SeenCandidate) {
	if c.client == nil || len(seen) == 0 {
		return
	}
	members := make([]*redis.Z, 0, len(seen))
	for _, s := range seen {
		members = append(members, &redis.Z{Score: float64(s.LastShown.Unix()), Member: s.UserID})
	}
	pipe := c.client.Pipeline()
	pipe.ZAdd(ctx, seenKey(userID), members...)
	pipe.Expire(ctx, seenKey(userID), c.lookback)
	if _, err := pipe.Exec(ctx); err != nil {
		c.log.Warn("seen cache backfill failed",
			zap.String("user_id", userID), zap.Error(err))
	}
}
