package services

import (
	"context"
	"testing"
	"time"

	"auction-house/internal/domain"
	"auction-house/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type bidFixture struct {
	service  *BidService
	auctions *fakeAuctionRepo
	bids     *fakeBidRepo
	cache    *fakeCache
	events   *fakeEventPublisher
}

func newBidFixture() *bidFixture {
	auctions := newFakeAuctionRepo()
	bids := newFakeBidRepo()
	cache := newFakeCache()
	events := &fakeEventPublisher{}
	return &bidFixture{
		service:  NewBidService(auctions, bids, cache, events, logger.NewNop()),
		auctions: auctions,
		bids:     bids,
		cache:    cache,
		events:   events,
	}
}

func openAuction(id, ownerID string, minPrice int64) *domain.Auction {
	now := time.Now().UTC()
	return &domain.Auction{
		ID:        id,
		Title:     "vintage clock",
		ImageRef:  "img-1",
		OwnerID:   ownerID,
		EndTime:   now.Add(time.Hour),
		MinPrice:  minPrice,
		Status:    domain.StatusOpen,
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func bid(id, auctionID, userID string, amount int64) *domain.Bid {
	return &domain.Bid{ID: id, AuctionID: auctionID, UserID: userID, Amount: amount}
}

func TestSubmitBid_Accepted(t *testing.T) {
	f := newBidFixture()
	ctx := context.Background()
	require.NoError(t, f.auctions.CreateAuction(ctx, openAuction("a1", "owner", 100)))

	bidID, err := f.service.SubmitBid(ctx, bid("b1", "a1", "alice", 150))
	require.NoError(t, err)
	assert.Equal(t, "b1", bidID)

	stored, err := f.auctions.GetAuction(ctx, "a1")
	require.NoError(t, err)
	require.NotNil(t, stored.WinningBid)
	assert.Equal(t, "b1", stored.WinningBid.ID)
	assert.Equal(t, int64(150), stored.WinningBid.Amount)
	assert.Equal(t, int64(2), stored.Version)

	// Bid record is durable and the cache carries the fresh snapshot.
	exists, err := f.bids.BidExists(ctx, "b1")
	require.NoError(t, err)
	assert.True(t, exists)

	cached, err := f.cache.GetAuction(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, "b1", cached.WinningBid.ID)

	assert.Equal(t, []domain.AuctionEventType{domain.EventBidAccepted}, f.events.eventTypes())
}

func TestSubmitBid_StructuralValidation(t *testing.T) {
	f := newBidFixture()
	ctx := context.Background()

	cases := []struct {
		name string
		bid  *domain.Bid
	}{
		{"missing id", bid("", "a1", "alice", 100)},
		{"missing auctionId", bid("b1", "", "alice", 100)},
		{"missing userId", bid("b1", "a1", "", 100)},
		{"zero amount", bid("b1", "a1", "alice", 0)},
		{"negative amount", bid("b1", "a1", "alice", -5)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.service.SubmitBid(ctx, tc.bid)
			assert.ErrorIs(t, err, domain.ErrInvalidBid)
		})
	}
}

func TestSubmitBid_AuctionNotExists(t *testing.T) {
	f := newBidFixture()

	_, err := f.service.SubmitBid(context.Background(), bid("b1", "missing", "alice", 100))
	assert.ErrorIs(t, err, domain.ErrAuctionNotExists)
}

func TestSubmitBid_DuplicateID(t *testing.T) {
	f := newBidFixture()
	ctx := context.Background()
	require.NoError(t, f.auctions.CreateAuction(ctx, openAuction("a1", "owner", 100)))

	_, err := f.service.SubmitBid(ctx, bid("b1", "a1", "alice", 150))
	require.NoError(t, err)

	// Same id, different payload: still a conflict.
	_, err = f.service.SubmitBid(ctx, bid("b1", "a1", "bob", 500))
	assert.ErrorIs(t, err, domain.ErrDuplicateBid)
}

func TestSubmitBid_DuplicateCaughtByStoreWhenCacheExpired(t *testing.T) {
	f := newBidFixture()
	ctx := context.Background()
	require.NoError(t, f.auctions.CreateAuction(ctx, openAuction("a1", "owner", 100)))

	_, err := f.service.SubmitBid(ctx, bid("b1", "a1", "alice", 150))
	require.NoError(t, err)

	// Simulate TTL eviction of the bid marker; the store stays authoritative.
	f.cache.bids = map[string]*domain.Bid{}

	_, err = f.service.SubmitBid(ctx, bid("b1", "a1", "bob", 500))
	assert.ErrorIs(t, err, domain.ErrDuplicateBid)
}

// Validation precedence: winner check, then self-bid, then status, then
// reserve. First failure wins.
func TestSubmitBid_ValidationPrecedence(t *testing.T) {
	ctx := context.Background()

	t.Run("too-low beats self-bid and status", func(t *testing.T) {
		f := newBidFixture()
		auction := openAuction("a1", "owner", 100)
		auction.Status = domain.StatusClosed
		auction.WinningBid = bid("w", "a1", "alice", 300)
		require.NoError(t, f.auctions.CreateAuction(ctx, auction))

		_, err := f.service.SubmitBid(ctx, bid("b1", "a1", "owner", 200))
		assert.ErrorIs(t, err, domain.ErrBidTooLow)
	})

	t.Run("self-bid beats status", func(t *testing.T) {
		f := newBidFixture()
		auction := openAuction("a1", "owner", 100)
		auction.Status = domain.StatusClosed
		require.NoError(t, f.auctions.CreateAuction(ctx, auction))

		_, err := f.service.SubmitBid(ctx, bid("b1", "a1", "owner", 200))
		assert.ErrorIs(t, err, domain.ErrSelfBid)
	})

	t.Run("status beats reserve", func(t *testing.T) {
		f := newBidFixture()
		auction := openAuction("a1", "owner", 100)
		auction.Status = domain.StatusClosed
		require.NoError(t, f.auctions.CreateAuction(ctx, auction))

		_, err := f.service.SubmitBid(ctx, bid("b1", "a1", "alice", 50))
		assert.ErrorIs(t, err, domain.ErrAuctionNotOpen)
	})

	t.Run("reserve last", func(t *testing.T) {
		f := newBidFixture()
		require.NoError(t, f.auctions.CreateAuction(ctx, openAuction("a1", "owner", 100)))

		_, err := f.service.SubmitBid(ctx, bid("b1", "a1", "alice", 50))
		assert.ErrorIs(t, err, domain.ErrBidBelowReserve)
	})
}

func TestSubmitBid_SelfBidRegardlessOfAmount(t *testing.T) {
	f := newBidFixture()
	ctx := context.Background()
	require.NoError(t, f.auctions.CreateAuction(ctx, openAuction("a2", "u1", 50)))

	_, err := f.service.SubmitBid(ctx, bid("b1", "a2", "u1", 1000))
	assert.ErrorIs(t, err, domain.ErrSelfBid)
}

func TestSubmitBid_DeletedAuctionRejected(t *testing.T) {
	f := newBidFixture()
	ctx := context.Background()
	auction := openAuction("a1", "owner", 100)
	auction.Status = domain.StatusDeleted
	require.NoError(t, f.auctions.CreateAuction(ctx, auction))

	_, err := f.service.SubmitBid(ctx, bid("b1", "a1", "alice", 200))
	assert.ErrorIs(t, err, domain.ErrAuctionNotOpen)
}

// Strictly greater than the current winner, greater-or-equal to the reserve.
func TestSubmitBid_ComparisonSemantics(t *testing.T) {
	f := newBidFixture()
	ctx := context.Background()
	require.NoError(t, f.auctions.CreateAuction(ctx, openAuction("a1", "u1", 100)))

	// Equal to the reserve is admissible.
	_, err := f.service.SubmitBid(ctx, bid("b1", "a1", "u2", 100))
	require.NoError(t, err)

	// Equal to the current winner is not.
	_, err = f.service.SubmitBid(ctx, bid("b2", "a1", "u3", 100))
	assert.ErrorIs(t, err, domain.ErrBidTooLow)

	// Strictly higher wins.
	_, err = f.service.SubmitBid(ctx, bid("b3", "a1", "u3", 150))
	require.NoError(t, err)

	// Reusing b1 is a conflict regardless of payload.
	_, err = f.service.SubmitBid(ctx, bid("b1", "a1", "u4", 200))
	assert.ErrorIs(t, err, domain.ErrDuplicateBid)

	stored, err := f.auctions.GetAuction(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, "b3", stored.WinningBid.ID)
	assert.Equal(t, int64(150), stored.WinningBid.Amount)
}

// The final winner amount equals the maximum accepted amount.
func TestSubmitBid_WinnerMonotonic(t *testing.T) {
	f := newBidFixture()
	ctx := context.Background()
	require.NoError(t, f.auctions.CreateAuction(ctx, openAuction("a1", "owner", 10)))

	amounts := []int64{10, 25, 20, 100, 99, 101}
	var maxAccepted int64
	for i, amount := range amounts {
		_, err := f.service.SubmitBid(ctx, &domain.Bid{
			ID:        string(rune('a' + i)),
			AuctionID: "a1",
			UserID:    "bidder",
			Amount:    amount,
		})
		if amount > maxAccepted {
			require.NoError(t, err, "amount %d should be accepted", amount)
			maxAccepted = amount
		} else {
			assert.ErrorIs(t, err, domain.ErrBidTooLow)
		}
	}

	stored, err := f.auctions.GetAuction(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, maxAccepted, stored.WinningBid.Amount)
}

func TestSubmitBid_CacheMissFallsBackToStore(t *testing.T) {
	f := newBidFixture()
	ctx := context.Background()
	require.NoError(t, f.auctions.CreateAuction(ctx, openAuction("a1", "owner", 100)))
	require.Empty(t, f.cache.auctions)

	_, err := f.service.SubmitBid(ctx, bid("b1", "a1", "alice", 150))
	require.NoError(t, err)

	cached, err := f.cache.GetAuction(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, "a1", cached.ID)
}

func TestSubmitBid_CacheOutageDoesNotBlockBidding(t *testing.T) {
	f := newBidFixture()
	ctx := context.Background()
	require.NoError(t, f.auctions.CreateAuction(ctx, openAuction("a1", "owner", 100)))

	f.cache.getErr = domain.ErrUnavailable
	f.cache.putErr = domain.ErrUnavailable

	bidID, err := f.service.SubmitBid(ctx, bid("b1", "a1", "alice", 150))
	require.NoError(t, err)
	assert.Equal(t, "b1", bidID)

	stored, err := f.auctions.GetAuction(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, "b1", stored.WinningBid.ID)
}

// A stale snapshot loses the optimistic check and surfaces a conflict the
// client can retry.
func TestSubmitBid_ConflictOnStaleSnapshot(t *testing.T) {
	f := newBidFixture()
	ctx := context.Background()
	auction := openAuction("a1", "owner", 100)
	require.NoError(t, f.auctions.CreateAuction(ctx, auction))

	// Cache holds version 1 while a concurrent writer already moved the
	// store to version 2.
	require.NoError(t, f.cache.PutAuction(ctx, auction))
	stored, err := f.auctions.GetAuction(ctx, "a1")
	require.NoError(t, err)
	stored.WinningBid = bid("other", "a1", "bob", 120)
	require.NoError(t, f.auctions.UpdateAuction(ctx, stored, 1))

	_, err = f.service.SubmitBid(ctx, bid("b1", "a1", "alice", 150))
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestSubmitBid_StoreFailureSurfaces(t *testing.T) {
	f := newBidFixture()
	ctx := context.Background()
	require.NoError(t, f.auctions.CreateAuction(ctx, openAuction("a1", "owner", 100)))
	f.auctions.updateErr = domain.ErrUnavailable

	_, err := f.service.SubmitBid(ctx, bid("b1", "a1", "alice", 150))
	assert.ErrorIs(t, err, domain.ErrUnavailable)
}

func TestListBids(t *testing.T) {
	f := newBidFixture()
	ctx := context.Background()
	require.NoError(t, f.auctions.CreateAuction(ctx, openAuction("a1", "owner", 10)))

	for i, amount := range []int64{20, 30, 40} {
		_, err := f.service.SubmitBid(ctx, &domain.Bid{
			ID:        string(rune('a' + i)),
			AuctionID: "a1",
			UserID:    "bidder",
			Amount:    amount,
		})
		require.NoError(t, err)
	}

	bids, err := f.service.ListBids(ctx, "a1")
	require.NoError(t, err)
	require.Len(t, bids, 3)
	assert.Equal(t, int64(20), bids[0].Amount)
	assert.Equal(t, int64(40), bids[2].Amount)

	_, err = f.service.ListBids(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrAuctionNotExists)
}
