package domain

import "errors"

// Input errors. Never retried, the client must fix the request.
var (
	ErrInvalidBid     = errors.New("invalid bid")
	ErrInvalidAuction = errors.New("invalid auction")
	ErrInvalidStatus  = errors.New("invalid status")
)

// Not-found errors.
var (
	ErrAuctionNotExists = errors.New("auction does not exist")
	ErrUserNotExists    = errors.New("user does not exist")
	ErrImageNotExists   = errors.New("image does not exist")
)

// Conflict errors. The client may retry after a fresh read.
var (
	ErrDuplicateBid = errors.New("bid id already exists")
	ErrConflict     = errors.New("concurrent update lost, retry with fresh state")
)

// Business-rule rejections, terminal for the submitted bid.
var (
	ErrBidTooLow       = errors.New("bid must be higher than current winning bid")
	ErrSelfBid         = errors.New("owner cannot bid on own auction")
	ErrAuctionNotOpen  = errors.New("can only bid on an open auction")
	ErrBidBelowReserve = errors.New("bid is below the auction's minimum price")
)

// Infrastructure errors.
var (
	// ErrUnavailable marks store/cache I/O failures, safe to retry with backoff.
	ErrUnavailable = errors.New("backend unavailable")
	// ErrCacheMiss is internal to the read-through path, never surfaced to callers.
	ErrCacheMiss = errors.New("cache miss")
)
