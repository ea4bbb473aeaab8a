package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// AuctionStatus values are ordered: a status update may only move forward
// (open -> closed -> deleted) or stay equal.
type AuctionStatus int

const (
	StatusOpen AuctionStatus = iota
	StatusClosed
	StatusDeleted
)

func (s AuctionStatus) String() string {
	switch s {
	case StatusOpen:
		return "open"
	case StatusClosed:
		return "closed"
	case StatusDeleted:
		return "deleted"
	default:
		return "unknown"
	}
}

func ParseAuctionStatus(raw string) (AuctionStatus, error) {
	switch raw {
	case "open":
		return StatusOpen, nil
	case "closed":
		return StatusClosed, nil
	case "deleted":
		return StatusDeleted, nil
	default:
		return StatusOpen, fmt.Errorf("%w: %q", ErrInvalidStatus, raw)
	}
}

// Statuses travel as strings on the wire and in the cache.
func (s AuctionStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *AuctionStatus) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParseAuctionStatus(raw)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Auction is the durable record and the cached snapshot, one shape for both.
// Version backs the optimistic check on winning-bid updates.
type Auction struct {
	ID          string        `json:"id"`
	Title       string        `json:"title"`
	Description string        `json:"description,omitempty"`
	ImageRef    string        `json:"imageRef"`
	OwnerID     string        `json:"ownerId"`
	EndTime     time.Time     `json:"endTime"`
	MinPrice    int64         `json:"minPrice"`
	Status      AuctionStatus `json:"status"`
	WinningBid  *Bid          `json:"winningBid,omitempty"`
	Version     int64         `json:"version"`
	CreatedAt   time.Time     `json:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt"`
}

// Validate checks the fields required at creation. Description and
// winningBid are the only optional fields.
func (a *Auction) Validate() error {
	if a == nil {
		return fmt.Errorf("%w: nil auction", ErrInvalidAuction)
	}
	if a.ID == "" {
		return fmt.Errorf("%w: missing id", ErrInvalidAuction)
	}
	if a.Title == "" {
		return fmt.Errorf("%w: missing title", ErrInvalidAuction)
	}
	if a.ImageRef == "" {
		return fmt.Errorf("%w: missing imageRef", ErrInvalidAuction)
	}
	if a.OwnerID == "" {
		return fmt.Errorf("%w: missing ownerId", ErrInvalidAuction)
	}
	if a.EndTime.IsZero() {
		return fmt.Errorf("%w: missing endTime", ErrInvalidAuction)
	}
	if a.MinPrice <= 0 {
		return fmt.Errorf("%w: minPrice must be positive", ErrInvalidAuction)
	}
	return nil
}

// Bid is immutable once stored; the current winner is derived state kept
// redundantly on the auction.
type Bid struct {
	ID        string    `json:"id"`
	AuctionID string    `json:"auctionId"`
	UserID    string    `json:"userId"`
	Amount    int64     `json:"amount"`
	CreatedAt time.Time `json:"createdAt"`
}

func (b *Bid) Validate() error {
	if b == nil {
		return fmt.Errorf("%w: nil bid", ErrInvalidBid)
	}
	if b.ID == "" {
		return fmt.Errorf("%w: missing id", ErrInvalidBid)
	}
	if b.AuctionID == "" {
		return fmt.Errorf("%w: missing auctionId", ErrInvalidBid)
	}
	if b.UserID == "" {
		return fmt.Errorf("%w: missing userId", ErrInvalidBid)
	}
	if b.Amount <= 0 {
		return fmt.Errorf("%w: amount must be positive", ErrInvalidBid)
	}
	return nil
}

type AuctionEventType string

const (
	EventBidAccepted   AuctionEventType = "bid_accepted"
	EventAuctionClosed AuctionEventType = "auction_closed"
)

// AuctionEvent is published on the auction_events channel after accepted
// bids and closed auctions.
type AuctionEvent struct {
	Type      AuctionEventType `json:"type"`
	AuctionID string           `json:"auction_id"`
	UserID    string           `json:"user_id,omitempty"`
	Amount    int64            `json:"amount,omitempty"`
	Timestamp time.Time        `json:"timestamp"`
}
