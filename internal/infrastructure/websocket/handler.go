package websocket

import (
	"net/http"
	"time"

	"auction-house/internal/domain"
	"auction-house/pkg/logger"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins in development
	},
}

// FeedHandler upgrades watchers onto the live bid feed for an auction.
// The feed is read-only: bids go through the REST API, the only inbound
// message handled here is a ping.
type FeedHandler struct {
	auctionRepo domain.AuctionRepository
	connManager domain.ConnectionManager
	log         logger.Logger
}

func NewFeedHandler(auctionRepo domain.AuctionRepository,
	connManager domain.ConnectionManager, log logger.Logger) *FeedHandler {
	return &FeedHandler{
		auctionRepo: auctionRepo,
		connManager: connManager,
		log:         log,
	}
}

func (h *FeedHandler) HandleConnection(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	auctionID := vars["auctionID"]

	auction, err := h.auctionRepo.GetAuction(r.Context(), auctionID)
	if err != nil {
		h.log.Error("Failed to find auction", "error", err, "auction_id", auctionID)
		http.Error(w, "auction not found", http.StatusNotFound)
		return
	}

	if auction.Status != domain.StatusOpen || time.Now().After(auction.EndTime) {
		http.Error(w, "auction is not open", http.StatusForbidden)
		return
	}

	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		http.Error(w, "user_id required", http.StatusBadRequest)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Error("Failed to upgrade connection", "error", err)
		return
	}

	feedConn := NewFeedConnection(conn, userID, auctionID)

	if err := h.connManager.RegisterConnection(userID, auctionID, feedConn); err != nil {
		h.log.Error("Failed to register connection", "error", err)
		conn.Close()
		return
	}

	go h.readLoop(feedConn, userID, auctionID)
}

func (h *FeedHandler) readLoop(conn *FeedConnection, userID, auctionID string) {
	defer func() {
		h.connManager.UnregisterConnection(userID, auctionID)
		conn.Close()
	}()

	for {
		var msg map[string]interface{}
		if err := conn.conn.ReadJSON(&msg); err != nil {
			return
		}

		if msgType, ok := msg["type"].(string); ok && msgType == "ping" {
			conn.Send(map[string]string{"type": "pong"})
		}
	}
}

type FeedConnection struct {
	conn      *websocket.Conn
	userID    string
	auctionID string
}

func NewFeedConnection(conn *websocket.Conn, userID, auctionID string) *FeedConnection {
	return &FeedConnection{
		conn:      conn,
		userID:    userID,
		auctionID: auctionID,
	}
}

func (fc *FeedConnection) Send(message interface{}) error {
	return fc.conn.WriteJSON(message)
}

func (fc *FeedConnection) Close() error {
	return fc.conn.Close()
}

func (fc *FeedConnection) UserID() string {
	return fc.userID
}

func (fc *FeedConnection) AuctionID() string {
	return fc.auctionID
}
