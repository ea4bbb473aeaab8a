package services

import (
	"context"
	"sync"
	"time"

	"auction-house/internal/domain"
)

// In-memory fakes for the store and cache interfaces.

type fakeAuctionRepo struct {
	mu        sync.Mutex
	auctions  map[string]*domain.Auction
	updateErr error            // forced failure for every UpdateAuction
	statusErr map[string]error // forced failure per auction id
}

func newFakeAuctionRepo() *fakeAuctionRepo {
	return &fakeAuctionRepo{
		auctions:  make(map[string]*domain.Auction),
		statusErr: make(map[string]error),
	}
}

func copyAuction(a *domain.Auction) *domain.Auction {
	c := *a
	if a.WinningBid != nil {
		bid := *a.WinningBid
		c.WinningBid = &bid
	}
	return &c
}

func (r *fakeAuctionRepo) CreateAuction(ctx context.Context, auction *domain.Auction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.auctions[auction.ID] = copyAuction(auction)
	return nil
}

func (r *fakeAuctionRepo) GetAuction(ctx context.Context, auctionID string) (*domain.Auction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	auction, ok := r.auctions[auctionID]
	if !ok {
		return nil, domain.ErrAuctionNotExists
	}
	return copyAuction(auction), nil
}

func (r *fakeAuctionRepo) UpdateAuction(ctx context.Context, auction *domain.Auction, expectedVersion int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.updateErr != nil {
		return r.updateErr
	}
	current, ok := r.auctions[auction.ID]
	if !ok {
		return domain.ErrAuctionNotExists
	}
	if current.Version != expectedVersion {
		return domain.ErrConflict
	}
	stored := copyAuction(auction)
	stored.Version = expectedVersion + 1
	r.auctions[auction.ID] = stored
	auction.Version = stored.Version
	return nil
}

func (r *fakeAuctionRepo) UpdateAuctionStatus(ctx context.Context, auctionID string, status domain.AuctionStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.statusErr[auctionID]; err != nil {
		return err
	}
	current, ok := r.auctions[auctionID]
	if !ok {
		return nil
	}
	if current.Status < status {
		current.Status = status
		current.Version++
		current.UpdatedAt = time.Now()
	}
	return nil
}

func (r *fakeAuctionRepo) GetExpiredAuctions(ctx context.Context, now time.Time) ([]*domain.Auction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var expired []*domain.Auction
	for _, auction := range r.auctions {
		if auction.Status == domain.StatusOpen && !auction.EndTime.After(now) {
			expired = append(expired, copyAuction(auction))
		}
	}
	return expired, nil
}

type fakeBidRepo struct {
	mu        sync.Mutex
	bids      map[string]*domain.Bid
	order     []string
	createErr error
}

func newFakeBidRepo() *fakeBidRepo {
	return &fakeBidRepo{bids: make(map[string]*domain.Bid)}
}

func (r *fakeBidRepo) CreateBid(ctx context.Context, bid *domain.Bid) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	if _, exists := r.bids[bid.ID]; exists {
		return domain.ErrDuplicateBid
	}
	stored := *bid
	r.bids[bid.ID] = &stored
	r.order = append(r.order, bid.ID)
	return nil
}

func (r *fakeBidRepo) BidExists(ctx context.Context, bidID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, exists := r.bids[bidID]
	return exists, nil
}

func (r *fakeBidRepo) GetBidsByAuction(ctx context.Context, auctionID string) ([]*domain.Bid, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var bids []*domain.Bid
	for _, id := range r.order {
		if bid := r.bids[id]; bid.AuctionID == auctionID {
			c := *bid
			bids = append(bids, &c)
		}
	}
	return bids, nil
}

type fakeCache struct {
	mu       sync.Mutex
	auctions map[string]*domain.Auction
	bids     map[string]*domain.Bid
	getErr   error // forced failure on reads
	putErr   error // forced failure on writes
	puts     int
}

func newFakeCache() *fakeCache {
	return &fakeCache{
		auctions: make(map[string]*domain.Auction),
		bids:     make(map[string]*domain.Bid),
	}
}

func (c *fakeCache) GetAuction(ctx context.Context, auctionID string) (*domain.Auction, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.getErr != nil {
		return nil, c.getErr
	}
	auction, ok := c.auctions[auctionID]
	if !ok {
		return nil, domain.ErrCacheMiss
	}
	return copyAuction(auction), nil
}

func (c *fakeCache) PutAuction(ctx context.Context, auction *domain.Auction) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.putErr != nil {
		return c.putErr
	}
	c.auctions[auction.ID] = copyAuction(auction)
	c.puts++
	return nil
}

func (c *fakeCache) Invalidate(ctx context.Context, auctionID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.auctions, auctionID)
	return nil
}

func (c *fakeCache) PutBid(ctx context.Context, bid *domain.Bid) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.putErr != nil {
		return c.putErr
	}
	stored := *bid
	c.bids[bid.ID] = &stored
	return nil
}

func (c *fakeCache) HasBid(ctx context.Context, bidID string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.getErr != nil {
		return false, c.getErr
	}
	_, exists := c.bids[bidID]
	return exists, nil
}

type fakeEventPublisher struct {
	mu     sync.Mutex
	events []*domain.AuctionEvent
}

func (p *fakeEventPublisher) PublishAuctionEvent(ctx context.Context, event *domain.AuctionEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *fakeEventPublisher) eventTypes() []domain.AuctionEventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	var types []domain.AuctionEventType
	for _, e := range p.events {
		types = append(types, e.Type)
	}
	return types
}

type fakeUserDirectory struct {
	users map[string]bool
}

func (d *fakeUserDirectory) UserExists(ctx context.Context, userID string) (bool, error) {
	return d.users[userID], nil
}

type fakeMediaStore struct {
	images map[string]bool
}

func (m *fakeMediaStore) ImageExists(ctx context.Context, imageRef string) (bool, error) {
	return m.images[imageRef], nil
}
