package handlers

import (
	"net/http"
	"time"

	"auction-house/internal/domain"
	"auction-house/internal/services"
	"auction-house/pkg/logger"
	"auction-house/pkg/utils"

	"github.com/labstack/echo/v4"
)

type AuctionHandler struct {
	auctions *services.AuctionService
	log      logger.Logger
}

type CreateAuctionRequest struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	ImageRef    string    `json:"imageRef"`
	OwnerID     string    `json:"ownerId"`
	EndTime     time.Time `json:"endTime"`
	MinPrice    int64     `json:"minPrice"`
}

type UpdateAuctionRequest struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	ImageRef    string    `json:"imageRef"`
	EndTime     time.Time `json:"endTime"`
	MinPrice    int64     `json:"minPrice"`
	Status      string    `json:"status"`
}

func NewAuctionHandler(auctions *services.AuctionService, log logger.Logger) *AuctionHandler {
	return &AuctionHandler{
		auctions: auctions,
		log:      log,
	}
}

func (h *AuctionHandler) CreateAuction(c echo.Context) error {
	var req CreateAuctionRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}

	if req.EndTime.Before(time.Now()) {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "End time must be in the future"})
	}

	auction := &domain.Auction{
		ID:          req.ID,
		Title:       req.Title,
		Description: req.Description,
		ImageRef:    req.ImageRef,
		OwnerID:     req.OwnerID,
		EndTime:     req.EndTime,
		MinPrice:    req.MinPrice,
		Status:      domain.StatusOpen,
	}
	if auction.ID == "" {
		auction.ID = utils.GenerateID("auction")
	}

	created, err := h.auctions.CreateAuction(c.Request().Context(), auction)
	if err != nil {
		h.log.Error("Failed to create auction", "error", err)
		return c.JSON(httpStatus(err), errorBody(err))
	}

	return c.JSON(http.StatusCreated, created)
}

func (h *AuctionHandler) GetAuction(c echo.Context) error {
	auction, err := h.auctions.GetAuction(c.Request().Context(), c.Param("id"))
	if err != nil {
		return c.JSON(httpStatus(err), errorBody(err))
	}
	return c.JSON(http.StatusOK, auction)
}

func (h *AuctionHandler) UpdateAuction(c echo.Context) error {
	var req UpdateAuctionRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}

	status, err := domain.ParseAuctionStatus(req.Status)
	if err != nil {
		return c.JSON(httpStatus(err), errorBody(err))
	}

	current, err := h.auctions.GetAuction(c.Request().Context(), c.Param("id"))
	if err != nil {
		return c.JSON(httpStatus(err), errorBody(err))
	}

	auction := &domain.Auction{
		ID:          current.ID,
		Title:       req.Title,
		Description: req.Description,
		ImageRef:    req.ImageRef,
		OwnerID:     current.OwnerID,
		EndTime:     req.EndTime,
		MinPrice:    req.MinPrice,
		Status:      status,
	}

	updated, err := h.auctions.UpdateAuction(c.Request().Context(), auction)
	if err != nil {
		h.log.Error("Failed to update auction", "auction_id", current.ID, "error", err)
		return c.JSON(httpStatus(err), errorBody(err))
	}

	return c.JSON(http.StatusOK, updated)
}

func (h *AuctionHandler) DeleteAuction(c echo.Context) error {
	if err := h.auctions.DeleteAuction(c.Request().Context(), c.Param("id")); err != nil {
		return c.JSON(httpStatus(err), errorBody(err))
	}
	return c.NoContent(http.StatusNoContent)
}
