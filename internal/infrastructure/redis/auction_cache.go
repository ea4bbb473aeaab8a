package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"auction-house/internal/domain"

	"github.com/go-redis/redis/v8"
)

// RedisAuctionCache mirrors auction snapshots as JSON under auction:<id>,
// and recently accepted bids under bid:<id> for fast duplicate detection.
// Entries expire after the configured TTL; the durable store stays
// authoritative.
type RedisAuctionCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisAuctionCache(client *redis.Client, ttl time.Duration) *RedisAuctionCache {
	return &RedisAuctionCache{client: client, ttl: ttl}
}

func auctionKey(auctionID string) string {
	return fmt.Sprintf("auction:%s", auctionID)
}

func bidKey(bidID string) string {
	return fmt.Sprintf("bid:%s", bidID)
}

func (r *RedisAuctionCache) GetAuction(ctx context.Context, auctionID string) (*domain.Auction, error) {
	data, err := r.client.Get(ctx, auctionKey(auctionID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrCacheMiss
		}
		return nil, fmt.Errorf("%w: cache get: %v", domain.ErrUnavailable, err)
	}

	var auction domain.Auction
	if err := json.Unmarshal([]byte(data), &auction); err != nil {
		// Treat an unreadable entry like a miss; the store will repopulate it.
		return nil, domain.ErrCacheMiss
	}
	return &auction, nil
}

// PutAuction unconditionally overwrites the entry and refreshes the TTL.
func (r *RedisAuctionCache) PutAuction(ctx context.Context, auction *domain.Auction) error {
	data, err := json.Marshal(auction)
	if err != nil {
		return err
	}

	if err := r.client.Set(ctx, auctionKey(auction.ID), string(data), r.ttl).Err(); err != nil {
		return fmt.Errorf("%w: cache set: %v", domain.ErrUnavailable, err)
	}
	return nil
}

func (r *RedisAuctionCache) Invalidate(ctx context.Context, auctionID string) error {
	if err := r.client.Del(ctx, auctionKey(auctionID)).Err(); err != nil {
		return fmt.Errorf("%w: cache del: %v", domain.ErrUnavailable, err)
	}
	return nil
}

func (r *RedisAuctionCache) PutBid(ctx context.Context, bid *domain.Bid) error {
	data, err := json.Marshal(bid)
	if err != nil {
		return err
	}

	if err := r.client.Set(ctx, bidKey(bid.ID), string(data), r.ttl).Err(); err != nil {
		return fmt.Errorf("%w: cache set: %v", domain.ErrUnavailable, err)
	}
	return nil
}

func (r *RedisAuctionCache) HasBid(ctx context.Context, bidID string) (bool, error) {
	count, err := r.client.Exists(ctx, bidKey(bidID)).Result()
	if err != nil {
		return false, fmt.Errorf("%w: cache exists: %v", domain.ErrUnavailable, err)
	}
	return count > 0, nil
}
