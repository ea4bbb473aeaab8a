package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"auction-house/internal/domain"
	"auction-house/pkg/logger"
)

// AuctionService owns the auction lifecycle around the admission engine:
// creation, reads, forward-only status updates and soft deletion.
type AuctionService struct {
	auctionRepo domain.AuctionRepository
	cache       domain.AuctionCache
	users       domain.UserDirectory
	media       domain.MediaStore
	log         logger.Logger
}

func NewAuctionService(
	auctionRepo domain.AuctionRepository,
	cache domain.AuctionCache,
	users domain.UserDirectory,
	media domain.MediaStore,
	log logger.Logger,
) *AuctionService {
	return &AuctionService{
		auctionRepo: auctionRepo,
		cache:       cache,
		users:       users,
		media:       media,
		log:         log,
	}
}

// CreateAuction stores a new auction. The owner must exist, the image must
// already be uploaded, and a new auction is always open with no winner.
func (s *AuctionService) CreateAuction(ctx context.Context, auction *domain.Auction) (*domain.Auction, error) {
	if err := auction.Validate(); err != nil {
		return nil, err
	}
	if auction.Status != domain.StatusOpen {
		return nil, fmt.Errorf("%w: new auctions must be open", domain.ErrInvalidStatus)
	}

	exists, err := s.users.UserExists(ctx, auction.OwnerID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, domain.ErrUserNotExists
	}

	exists, err = s.media.ImageExists(ctx, auction.ImageRef)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, domain.ErrImageNotExists
	}

	now := time.Now().UTC()
	auction.WinningBid = nil
	auction.Version = 1
	auction.CreatedAt = now
	auction.UpdatedAt = now

	if err := s.auctionRepo.CreateAuction(ctx, auction); err != nil {
		return nil, err
	}

	if err := s.cache.PutAuction(ctx, auction); err != nil {
		s.log.Warn("Failed to cache new auction", "auction_id", auction.ID, "error", err)
	}

	s.log.Info("Auction created", "auction_id", auction.ID, "owner_id", auction.OwnerID)
	return auction, nil
}

// GetAuction returns the current snapshot, cache first, store on miss.
func (s *AuctionService) GetAuction(ctx context.Context, auctionID string) (*domain.Auction, error) {
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

// UpdateAuction replaces the mutable fields of an auction. The status may
// only move forward; owner and winning bid are not updatable here, the
// winner belongs to the admission engine.
func (s *AuctionService) UpdateAuction(ctx context.Context, auction *domain.Auction) (*domain.Auction, error) {
	if err := auction.Validate(); err != nil {
		return nil, err
	}

	current, err := s.auctionRepo.GetAuction(ctx, auction.ID)
	if err != nil {
		return nil, err
	}
	if auction.Status < current.Status {
		return nil, fmt.Errorf("%w: cannot move %s back to %s",
			domain.ErrInvalidStatus, current.Status, auction.Status)
	}

	updated := *current
	updated.Title = auction.Title
	updated.Description = auction.Description
	updated.ImageRef = auction.ImageRef
	updated.EndTime = auction.EndTime
	updated.MinPrice = auction.MinPrice
	updated.Status = auction.Status
	updated.UpdatedAt = time.Now().UTC()

	if err := s.auctionRepo.UpdateAuction(ctx, &updated, current.Version); err != nil {
		return nil, err
	}

	if err := s.cache.PutAuction(ctx, &updated); err != nil {
		s.log.Warn("Failed to refresh auction cache", "auction_id", auction.ID, "error", err)
	}

	return &updated, nil
}

// DeleteAuction soft-deletes: the record stays while bids reference it.
func (s *AuctionService) DeleteAuction(ctx context.Context, auctionID string) error {
	if _, err := s.auctionRepo.GetAuction(ctx, auctionID); err != nil {
		return err
	}

	if err := s.auctionRepo.UpdateAuctionStatus(ctx, auctionID, domain.StatusDeleted); err != nil {
		return err
	}

	if err := s.cache.Invalidate(ctx, auctionID); err != nil {
		s.log.Warn("Failed to invalidate auction cache", "auction_id", auctionID, "error", err)
	}

	s.log.Info("Auction deleted", "auction_id", auctionID)
	return nil
}
