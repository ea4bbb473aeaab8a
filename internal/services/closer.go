package services

import (
	"context"
	"fmt"
	"time"

	"auction-house/internal/domain"
	"auction-house/pkg/logger"

	"github.com/robfig/cron/v3"
)

// Closer periodically transitions auctions whose end time has passed from
// open to closed and publishes the final state, winner included, to the
// cache. Each sweep is independent and idempotent: the query only matches
// open auctions, so an auction that failed to close is simply retried on
// the next cycle.
type Closer struct {
	auctionRepo domain.AuctionRepository
	cache       domain.AuctionCache
	eventPub    domain.EventPublisher
	election    domain.LeaderElection
	instanceID  string
	interval    time.Duration
	cron        *cron.Cron
	log         logger.Logger
}

func NewCloser(
	auctionRepo domain.AuctionRepository,
	cache domain.AuctionCache,
	eventPub domain.EventPublisher,
	election domain.LeaderElection,
	instanceID string,
	interval time.Duration,
	log logger.Logger,
) *Closer {
	return &Closer{
		auctionRepo: auctionRepo,
		cache:       cache,
		eventPub:    eventPub,
		election:    election,
		instanceID:  instanceID,
		interval:    interval,
		cron:        cron.New(cron.WithSeconds()),
		log:         log,
	}
}

func (c *Closer) Start(ctx context.Context) error {
	c.log.Info("Starting auction closer", "interval", c.interval)

	_, err := c.cron.AddFunc(fmt.Sprintf("@every %s", c.interval), func() {
		c.runSweep(ctx)
	})
	if err != nil {
		return err
	}

	c.cron.Start()
	return nil
}

func (c *Closer) Stop() error {
	c.log.Info("Stopping auction closer")
	c.cron.Stop()
	return nil
}

func (c *Closer) runSweep(ctx context.Context) {
	if c.election != nil {
		isLeader, err := c.election.IsLeader(ctx, c.instanceID)
		if err != nil {
			c.log.Error("Leader check failed, skipping sweep", "error", err)
			return
		}
		if !isLeader {
			return
		}
	}

	if _, err := c.SweepExpiredAuctions(ctx, time.Now()); err != nil {
		c.log.Error("Sweep failed", "error", err)
	}
}

// SweepExpiredAuctions closes every open auction past its end time and
// returns how many it closed. A failure on one auction never blocks the
// rest of the batch.
func (c *Closer) SweepExpiredAuctions(ctx context.Context, now time.Time) (int, error) {
	expired, err := c.auctionRepo.GetExpiredAuctions(ctx, now)
	if err != nil {
		return 0, err
	}

	closed := 0
	for _, auction := range expired {
		if err := c.closeAuction(ctx, auction); err != nil {
			// Still matches the sweep predicate, retried next cycle.
			c.log.Error("Failed to close auction", "auction_id", auction.ID, "error", err)
			continue
		}
		closed++
	}

	if closed > 0 {
		c.log.Info("Sweep closed auctions", "count", closed)
	}
	return closed, nil
}

func (c *Closer) closeAuction(ctx context.Context, auction *domain.Auction) error {
	if err := c.auctionRepo.UpdateAuctionStatus(ctx, auction.ID, domain.StatusClosed); err != nil {
		return err
	}

	auction.Status = domain.StatusClosed
	auction.Version++ // the status write bumped the stored version
	auction.UpdatedAt = time.Now().UTC()
	if err := c.cache.PutAuction(ctx, auction); err != nil {
		c.log.Warn("Failed to publish closed auction to cache", "auction_id", auction.ID, "error", err)
	}

	if c.eventPub != nil {
		event := &domain.AuctionEvent{
			Type:      domain.EventAuctionClosed,
			AuctionID: auction.ID,
			Timestamp: time.Now().UTC(),
		}
		if winning := auction.WinningBid; winning != nil {
			event.UserID = winning.UserID
			event.Amount = winning.Amount
		}
		if err := c.eventPub.PublishAuctionEvent(ctx, event); err != nil {
			c.log.Warn("Failed to publish close event", "auction_id", auction.ID, "error", err)
		}
	}

	c.log.Info("Auction closed", "auction_id", auction.ID)
	return nil
}
