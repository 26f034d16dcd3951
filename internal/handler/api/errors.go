package api

import (
	"log/slog"
	"net/http"

	"space-booking/internal/domain/calendar"
	"space-booking/internal/domain/location"
	"space-booking/internal/domain/occupancy"
	"space-booking/internal/domain/pricing"
	"space-booking/internal/domain/reservation"
	"space-booking/internal/handler/httperr"
	"space-booking/internal/pkg/errs"
	"space-booking/internal/usecase/commands"
	"space-booking/internal/usecase/queries"

	"github.com/gin-gonic/gin"
)

type errorMapping struct {
	target  error
	status  int
	code    string
	message string
}

// Order matters: the first match wins, so specific errors precede the generic marks.
var errorMappings = []errorMapping{
	{queries.ErrLocationNotFound, http.StatusNotFound, "LOCATION_NOT_FOUND", "Location not found"},
	{commands.ErrLocationNotFound, http.StatusNotFound, "LOCATION_NOT_FOUND", "Location not found"},
	{queries.ErrReservationNotFound, http.StatusNotFound, "RESERVATION_NOT_FOUND", "Reservation not found"},
	{commands.ErrReservationNotFound, http.StatusNotFound, "RESERVATION_NOT_FOUND", "Reservation not found"},
	{queries.ErrReservationAccess, http.StatusNotFound, "RESERVATION_NOT_FOUND", "Reservation not found"},
	{commands.ErrLocationForbidden, http.StatusForbidden, "FORBIDDEN", "Only the location host may change it"},
	{commands.ErrReservationForbidden, http.StatusForbidden, "FORBIDDEN", "Action not allowed for this user"},
	{commands.ErrReservationExpired, http.StatusConflict, "RESERVATION_EXPIRED", "Pending reservation has expired"},
	{commands.ErrReservationStale, http.StatusConflict, "RESERVATION_STALE", "Reservation changed concurrently"},
	{reservation.ErrInvalidTransition, http.StatusConflict, "INVALID_TRANSITION", "Invalid reservation status transition"},
	{commands.ErrIdempotencyKeyReused, http.StatusConflict, "IDEMPOTENCY_KEY_REUSED", "Idempotency key reused with a different request"},
	{commands.ErrIdempotencyInProgress, http.StatusConflict, "IDEMPOTENCY_IN_PROGRESS", "Request with this idempotency key is in progress"},
	{queries.ErrInvalidCursor, http.StatusBadRequest, "INVALID_CURSOR", "Invalid cursor"},
	{pricing.ErrUnsupportedActivity, http.StatusUnprocessableEntity, "UNSUPPORTED_ACTIVITY", "Activity is not offered at this location"},
	{pricing.ErrUnsupportedTier, http.StatusUnprocessableEntity, "UNSUPPORTED_TIER", "Tier is not offered at this location"},
	{pricing.ErrInvalidPricing, http.StatusBadRequest, "INVALID_PRICING", "Invalid pricing"},
	{calendar.ErrInvalidWindow, http.StatusBadRequest, "INVALID_WINDOW", "Invalid time window"},
	{calendar.ErrInvalidDate, http.StatusBadRequest, "INVALID_DATE", "Invalid date"},
	{calendar.ErrInvalidRange, http.StatusBadRequest, "INVALID_RANGE", "Invalid date range"},
	{calendar.ErrWindowNotInZone, http.StatusUnprocessableEntity, "WINDOW_NOT_IN_ZONE", "Window start or end does not exist or is ambiguous in the location timezone"},
	{calendar.ErrRangeTooLong, http.StatusBadRequest, "RANGE_TOO_LONG", "Date range is too long"},
	{location.ErrEmptyLocationName, http.StatusBadRequest, "INVALID_LOCATION", "Location name cannot be empty"},
	{location.ErrLocationNameTooLong, http.StatusBadRequest, "INVALID_LOCATION", "Location name is too long"},
	{location.ErrInvalidTimezone, http.StatusBadRequest, "INVALID_TIMEZONE", "Invalid timezone"},
	{occupancy.ErrInvalidBlackout, http.StatusBadRequest, "INVALID_BLACKOUT", "Invalid blackout"},
	{reservation.ErrSlotInPast, http.StatusUnprocessableEntity, "SLOT_IN_PAST", "Time slot starts in the past"},
	{reservation.ErrNoteTooLong, http.StatusBadRequest, "NOTE_TOO_LONG", "Note is too long"},
	{commands.ErrDomainValidation, http.StatusUnprocessableEntity, "VALIDATION_FAILED", "Domain validation failed"},
}

// abortWithUseCaseError maps use case and domain errors to HTTP responses.
func abortWithUseCaseError(c *gin.Context, err error, fallback string) {
	for _, m := range errorMappings {
		if errs.Is(err, m.target) {
			httperr.AbortWithCode(c, m.status, m.code, err, m.message, nil)
			return
		}
	}
	slog.Error(fallback, "error", err.Error(), "path", c.Request.URL.Path)
	httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
}

func abortInvalidRequest(c *gin.Context, err error) {
	// Value parse failures from calendar and pricing carry their own sentinels.
	for _, m := range errorMappings {
		if m.status == http.StatusBadRequest && errs.Is(err, m.target) {
			httperr.AbortWithCode(c, http.StatusBadRequest, m.code, err, m.message, nil)
			return
		}
	}
	httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request", nil)
}

var errUnauthorized = errs.New("request has no user identity")
