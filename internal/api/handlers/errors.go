package handlers

import (
	"errors"
	"net/http"

	"auction-house/internal/domain"
)

// httpStatus maps the error taxonomy to response codes: invalid input 400,
// not found 404, conflicts 409, business rejections 422, backend outage 503.
func httpStatus(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidBid),
		errors.Is(err, domain.ErrInvalidAuction),
		errors.Is(err, domain.ErrInvalidStatus):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrAuctionNotExists):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrDuplicateBid),
		errors.Is(err, domain.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, domain.ErrBidTooLow),
		errors.Is(err, domain.ErrSelfBid),
		errors.Is(err, domain.ErrAuctionNotOpen),
		errors.Is(err, domain.ErrBidBelowReserve),
		errors.Is(err, domain.ErrUserNotExists),
		errors.Is(err, domain.ErrImageNotExists):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func errorBody(err error) map[string]string {
	return map[string]string{"error": err.Error()}
}
