package services

import (
	"context"
	"fmt"

	"auction-house/internal/domain"
	"auction-house/pkg/logger"
)

// FeedListener bridges the auction_events channel onto the websocket feed:
// accepted bids fan out to every watcher of the auction, a close drains
// the auction's connections.
type FeedListener struct {
	connManager domain.ConnectionManager
	log         logger.Logger
}

func NewFeedListener(connManager domain.ConnectionManager, log logger.Logger) *FeedListener {
	return &FeedListener{
		connManager: connManager,
		log:         log,
	}
}

func (l *FeedListener) Start(ctx context.Context, subscriber domain.EventSubscriber) error {
	l.log.Info("Starting feed listener")
	return subscriber.SubscribeToAuctionEvents(ctx, l.handleEvent)
}

func (l *FeedListener) handleEvent(event *domain.AuctionEvent) error {
	switch event.Type {
	case domain.EventBidAccepted:
		return l.connManager.BroadcastToAuction(event.AuctionID, map[string]interface{}{
			"type":           "bid_update",
			"current_bid":    event.Amount,
			"current_winner": event.UserID,
			"timestamp":      event.Timestamp,
		})
	case domain.EventAuctionClosed:
		if err := l.connManager.BroadcastToAuction(event.AuctionID, map[string]interface{}{
			"type":      "auction_closed",
			"winner":    event.UserID,
			"amount":    event.Amount,
			"timestamp": event.Timestamp,
		}); err != nil {
			l.log.Error("Failed to broadcast close", "auction_id", event.AuctionID, "error", err)
		}
		return l.connManager.CloseAndUnregisterConnections(event.AuctionID)
	}

	return fmt.Errorf("unknown event type %q", event.Type)
}
