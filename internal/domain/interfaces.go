package domain

import (
	"context"
	"time"
)

// Repository interfaces. The durable store is the source of truth.
type AuctionRepository interface {
	CreateAuction(ctx context.Context, auction *Auction) error
	GetAuction(ctx context.Context, auctionID string) (*Auction, error)
	// UpdateAuction writes the full record only if the stored version still
	// equals expectedVersion, bumping it by one. Returns ErrConflict when a
	// concurrent writer got there first.
	UpdateAuction(ctx context.Context, auction *Auction, expectedVersion int64) error
	// UpdateAuctionStatus moves the status forward; it is a no-op when the
	// stored status is already at or past the target.
	UpdateAuctionStatus(ctx context.Context, auctionID string, status AuctionStatus) error
	GetExpiredAuctions(ctx context.Context, now time.Time) ([]*Auction, error)
}

type BidRepository interface {
	// CreateBid inserts an immutable bid record, ErrDuplicateBid on reused id.
	CreateBid(ctx context.Context, bid *Bid) error
	BidExists(ctx context.Context, bidID string) (bool, error)
	GetBidsByAuction(ctx context.Context, auctionID string) ([]*Bid, error)
}

// AuctionCache is a disposable projection of auction state; every entry may
// vanish on TTL expiry without data loss.
type AuctionCache interface {
	// GetAuction returns ErrCacheMiss when the entry is absent or expired.
	GetAuction(ctx context.Context, auctionID string) (*Auction, error)
	PutAuction(ctx context.Context, auction *Auction) error
	Invalidate(ctx context.Context, auctionID string) error
	PutBid(ctx context.Context, bid *Bid) error
	HasBid(ctx context.Context, bidID string) (bool, error)
}

// External collaborators, consulted during the surrounding CRUD flows.
type UserDirectory interface {
	UserExists(ctx context.Context, userID string) (bool, error)
}

type MediaStore interface {
	ImageExists(ctx context.Context, imageRef string) (bool, error)
}

// Event interfaces
type EventPublisher interface {
	PublishAuctionEvent(ctx context.Context, event *AuctionEvent) error
}

type EventHandler func(event *AuctionEvent) error

type EventSubscriber interface {
	SubscribeToAuctionEvents(ctx context.Context, handler EventHandler) error
}

// Leader election, so a single replica runs the closing sweep.
type LeaderElection interface {
	BecomeLeader(ctx context.Context, instanceID string) (bool, error)
	IsLeader(ctx context.Context, instanceID string) (bool, error)
	ReleaseLeadership(ctx context.Context, instanceID string) error
}

// Live feed interfaces
type WebSocketConnection interface {
	Send(message interface{}) error
	Close() error
	UserID() string
	AuctionID() string
}

type ConnectionManager interface {
	RegisterConnection(userID, auctionID string, conn WebSocketConnection) error
	UnregisterConnection(userID, auctionID string) error
	BroadcastToAuction(auctionID string, message interface{}) error
	CloseAndUnregisterConnections(auctionID string) error
}
