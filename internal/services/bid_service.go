package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"auction-house/internal/domain"
	"auction-house/pkg/logger"
)

// BidService decides whether a submitted bid is admissible for its target
// auction and, if so, records it as the new winner.
type BidService struct {
	auctionRepo domain.AuctionRepository
	bidRepo     domain.BidRepository
	cache       domain.AuctionCache
	eventPub    domain.EventPublisher
	log         logger.Logger
}

func NewBidService(
	auctionRepo domain.AuctionRepository,
	bidRepo domain.BidRepository,
	cache domain.AuctionCache,
	eventPub domain.EventPublisher,
	log logger.Logger,
) *BidService {
	return &BidService{
		auctionRepo: auctionRepo,
		bidRepo:     bidRepo,
		cache:       cache,
		eventPub:    eventPub,
		log:         log,
	}
}

// SubmitBid validates and applies a single bid. Checks run cheapest first
// and the first failure wins; the order is part of the API contract.
//
// The apply step writes the bid record before the auction's winner pointer:
// a bid orphaned by a crash between the two writes is harmless, an auction
// pointing at a bid that was never persisted is not. The winner update is
// an optimistic compare-and-swap on the auction version; the losing side of
// a concurrent race gets ErrConflict and may retry with a fresh read.
func (s *BidService) SubmitBid(ctx context.Context, bid *domain.Bid) (string, error) {
	if err := bid.Validate(); err != nil {
		return "", err
	}

	if err := s.checkDuplicate(ctx, bid.ID); err != nil {
		return "", err
	}

	auction, err := s.resolveAuction(ctx, bid.AuctionID)
	if err != nil {
		return "", err
	}

	if winning := auction.WinningBid; winning != nil && winning.Amount >= bid.Amount {
		return "", fmt.Errorf("%w: current winning bid is %d", domain.ErrBidTooLow, winning.Amount)
	}
	if bid.UserID == auction.OwnerID {
		return "", domain.ErrSelfBid
	}
	if auction.Status != domain.StatusOpen {
		return "", domain.ErrAuctionNotOpen
	}
	if bid.Amount < auction.MinPrice {
		return "", fmt.Errorf("%w: minimum price is %d", domain.ErrBidBelowReserve, auction.MinPrice)
	}

	if bid.CreatedAt.IsZero() {
		bid.CreatedAt = time.Now().UTC()
	}

	// Durable bid record first.
	if err := s.bidRepo.CreateBid(ctx, bid); err != nil {
		return "", err
	}

	updated := *auction
	updated.WinningBid = bid
	updated.UpdatedAt = time.Now().UTC()

	if err := s.auctionRepo.UpdateAuction(ctx, &updated, auction.Version); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			s.log.Info("Lost winner race", "auction_id", auction.ID, "bid_id", bid.ID)
			return "", domain.ErrConflict
		}
		// Bid is persisted but the winner pointer is not: a different bug
		// class than a validation rejection, log it as such.
		s.log.Error("Data inconsistency: bid persisted but auction update failed",
			"auction_id", auction.ID, "bid_id", bid.ID, "error", err)
		return "", err
	}

	// Cache writes are best-effort after the durable writes succeeded.
	if err := s.cache.PutAuction(ctx, &updated); err != nil {
		s.log.Warn("Failed to refresh auction cache", "auction_id", auction.ID, "error", err)
	}
	if err := s.cache.PutBid(ctx, bid); err != nil {
		s.log.Warn("Failed to cache bid", "bid_id", bid.ID, "error", err)
	}

	s.publishBidAccepted(ctx, bid)

	s.log.Info("Bid accepted", "auction_id", auction.ID, "bid_id", bid.ID,
		"user_id", bid.UserID, "amount", bid.Amount)
	return bid.ID, nil
}

// ListBids returns every bid recorded for the auction, accepted order.
func (s *BidService) ListBids(ctx context.Context, auctionID string) ([]*domain.Bid, error) {
	if auctionID == "" {
		return nil, fmt.Errorf("%w: missing auctionId", domain.ErrInvalidBid)
	}
	if _, err := s.resolveAuction(ctx, auctionID); err != nil {
		return nil, err
	}
	return s.bidRepo.GetBidsByAuction(ctx, auctionID)
}

// checkDuplicate consults the cache fast path first; the bid store's
// primary key stays authoritative for entries the TTL already evicted.
func (s *BidService) checkDuplicate(ctx context.Context, bidID string) error {
	seen, err := s.cache.HasBid(ctx, bidID)
	if err != nil {
		s.log.Warn("Bid cache lookup failed, falling back to store", "bid_id", bidID, "error", err)
	} else if seen {
		return domain.ErrDuplicateBid
	}

	exists, err := s.bidRepo.BidExists(ctx, bidID)
	if err != nil {
		return err
	}
	if exists {
		return domain.ErrDuplicateBid
	}
	return nil
}

// resolveAuction is the read-through: cache first, store on miss, and the
// fetched snapshot repopulates the cache.
func (s *BidService) resolveAuction(ctx context.Context, auctionID string) (*domain.Auction, error) {
	auction, err := s.cache.GetAuction(ctx, auctionID)
	if err == nil {
		return auction, nil
	}
	if !errors.Is(err, domain.ErrCacheMiss) {
		s.log.Warn("Auction cache read failed, falling back to store", "auction_id", auctionID, "error", err)
	}

	auction, err = s.auctionRepo.GetAuction(ctx, auctionID)
	if err != nil {
		return nil, err
	}

	if err := s.cache.PutAuction(ctx, auction); err != nil {
		s.log.Warn("Failed to repopulate auction cache", "auction_id", auctionID, "error", err)
	}
	return auction, nil
}

func (s *BidService) publishBidAccepted(ctx context.Context, bid *domain.Bid) {
	if s.eventPub == nil {
		return
	}
	event := &domain.AuctionEvent{
		Type:      domain.EventBidAccepted,
		AuctionID: bid.AuctionID,
		UserID:    bid.UserID,
		Amount:    bid.Amount,
		Timestamp: time.Now().UTC(),
	}
	if err := s.eventPub.PublishAuctionEvent(ctx, event); err != nil {
		s.log.Warn("Failed to publish bid event", "auction_id", bid.AuctionID, "error", err)
	}
}
