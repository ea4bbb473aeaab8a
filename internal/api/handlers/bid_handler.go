package handlers

import (
	"net/http"

	"auction-house/internal/domain"
	"auction-house/internal/services"
	"auction-house/pkg/logger"

	"github.com/labstack/echo/v4"
)

type BidHandler struct {
	bids *services.BidService
	log  logger.Logger
}

// SubmitBidRequest carries a client-assigned bid id; resubmitting the same
// id is rejected with a conflict. The userId is trusted as already
// authenticated by the session layer in front of this API.
type SubmitBidRequest struct {
	ID     string `json:"id"`
	UserID string `json:"userId"`
	Amount int64  `json:"amount"`
}

type SubmitBidResponse struct {
	BidID string `json:"bidId"`
}

func NewBidHandler(bids *services.BidService, log logger.Logger) *BidHandler {
	return &BidHandler{
		bids: bids,
		log:  log,
	}
}

func (h *BidHandler) SubmitBid(c echo.Context) error {
	var req SubmitBidRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}

	bid := &domain.Bid{
		ID:        req.ID,
		AuctionID: c.Param("id"),
		UserID:    req.UserID,
		Amount:    req.Amount,
	}

	bidID, err := h.bids.SubmitBid(c.Request().Context(), bid)
	if err != nil {
		h.log.Info("Bid rejected", "auction_id", bid.AuctionID, "bid_id", bid.ID, "reason", err)
		return c.JSON(httpStatus(err), errorBody(err))
	}

	return c.JSON(http.StatusCreated, SubmitBidResponse{BidID: bidID})
}

func (h *BidHandler) ListBids(c echo.Context) error {
	bids, err := h.bids.ListBids(c.Request().Context(), c.Param("id"))
	if err != nil {
		return c.JSON(httpStatus(err), errorBody(err))
	}
	if bids == nil {
		bids = []*domain.Bid{}
	}
	return c.JSON(http.StatusOK, bids)
}
