package api

import (
	"context"
	"net/http"

	reqdto "space-booking/internal/handler/dto/request"
	resdto "space-booking/internal/handler/dto/response"
	"space-booking/internal/handler/httperr"
	"space-booking/internal/handler/middleware"
	"space-booking/internal/pkg/errs"
	"space-booking/internal/usecase/commands"
	"space-booking/internal/usecase/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	HeaderIdempotencyKey      = "Idempotency-Key"
	HeaderIdempotencyReplayed = "Idempotent-Replayed"
)

var errInvalidIdempotencyKey = errs.New("invalid idempotency key format")

type ReservationHandler struct {
	admission    commands.AdmissionCommands
	reservations commands.ReservationCommands
	q            queries.ReservationQueries
}

func NewReservationHandler(
	admission commands.AdmissionCommands,
	reservations commands.ReservationCommands,
	q queries.ReservationQueries,
) *ReservationHandler {
	return &ReservationHandler{admission: admission, reservations: reservations, q: q}
}

// @Summary Request a reservation
// @Description Admit a booking request. Accepted requests become pending, or confirmed on instant-booking locations.
// @Description A window that overlaps an occupied hour is rejected with a reason that tells a lost race from a slot that was never free.
// @Tags reservations
// @Accept json
// @Produce json
// @Param X-User-ID header string true "Guest user ID"
// @Param Idempotency-Key header string false "Idempotency key (UUID)"
// @Param request body reqdto.CreateReservationRequest true "Reservation request"
// @Success 201 {object} resdto.AdmissionResponse
// @Success 200 {object} resdto.AdmissionResponse "Replayed outcome"
// @Failure 400 {object} httperr.Response
// @Failure 401 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Failure 409 {object} resdto.AdmissionResponse
// @Failure 422 {object} httperr.Response
// @Router /reservations [post]
func (h *ReservationHandler) Create(c *gin.Context) {
	guestID, ok := middleware.GetUserID(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusUnauthorized, errUnauthorized, "Unauthorized", nil)
		return
	}
	key, err := idempotencyKey(c)
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Idempotency-Key must be a UUID", nil)
		return
	}
	var req reqdto.CreateReservationRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		abortInvalidRequest(c, bindErr)
		return
	}
	admitReq, err := req.ToAdmitRequest(guestID, key)
	if err != nil {
		abortWithUseCaseError(c, err, "admission request invalid")
		return
	}

	result, err := h.admission.Admit(c.Request.Context(), admitReq)
	if err != nil {
		abortWithUseCaseError(c, err, "admission failed")
		return
	}

	if result.IsReplayed {
		c.Header(HeaderIdempotencyReplayed, "true")
	}
	status := http.StatusCreated
	switch {
	case !result.Accepted():
		status = http.StatusConflict
	case result.IsReplayed:
		status = http.StatusOK
	}
	c.JSON(status, resdto.FromAdmissionResult(result))
}

// @Summary Get reservation
// @Description Visible to the guest and the location host
// @Tags reservations
// @Produce json
// @Param X-User-ID header string true "User ID"
// @Param id path string true "Reservation ID"
// @Success 200 {object} resdto.ReservationResponse
// @Failure 400 {object} httperr.Response
// @Failure 401 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Router /reservations/{id} [get]
func (h *ReservationHandler) Get(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusUnauthorized, errUnauthorized, "Unauthorized", nil)
		return
	}
	id, ok := bindReservationID(c)
	if !ok {
		return
	}
	view, err := h.q.GetByID(c.Request.Context(), userID, id)
	if err != nil {
		abortWithUseCaseError(c, err, "get reservation failed")
		return
	}
	c.JSON(http.StatusOK, resdto.FromReservationView(view))
}

// @Summary List my reservations
// @Description Reservations of the calling guest, newest first, keyset paginated
// @Tags reservations
// @Produce json
// @Param X-User-ID header string true "Guest user ID"
// @Param limit query int false "Page size (1-200)"
// @Param after query string false "Cursor from the previous page"
// @Success 200 {object} resdto.ReservationPageResponse
// @Failure 400 {object} httperr.Response
// @Failure 401 {object} httperr.Response
// @Router /reservations [get]
func (h *ReservationHandler) ListMine(c *gin.Context) {
	guestID, ok := middleware.GetUserID(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusUnauthorized, errUnauthorized, "Unauthorized", nil)
		return
	}
	var query reqdto.ListReservationsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		abortInvalidRequest(c, err)
		return
	}
	var cursor *queries.Cursor
	if query.After != "" {
		cursor = &queries.Cursor{After: query.After}
	}
	items, next, err := h.q.ListByGuest(c.Request.Context(), guestID, cursor, query.Limit)
	if err != nil {
		abortWithUseCaseError(c, err, "list reservations failed")
		return
	}
	c.JSON(http.StatusOK, resdto.FromReservationPage(items, next))
}

// @Summary Confirm reservation
// @Description Host accepts a pending reservation
// @Tags reservations
// @Produce json
// @Param X-User-ID header string true "Host user ID"
// @Param id path string true "Reservation ID"
// @Success 200 {object} resdto.ReservationResponse
// @Failure 403 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Router /reservations/{id}/confirm [post]
func (h *ReservationHandler) Confirm(c *gin.Context) {
	h.transition(c, h.reservations.Confirm)
}

// @Summary Decline reservation
// @Description Host rejects a pending reservation
// @Tags reservations
// @Produce json
// @Param X-User-ID header string true "Host user ID"
// @Param id path string true "Reservation ID"
// @Success 200 {object} resdto.ReservationResponse
// @Failure 403 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Router /reservations/{id}/decline [post]
func (h *ReservationHandler) Decline(c *gin.Context) {
	h.transition(c, h.reservations.Decline)
}

// @Summary Cancel reservation
// @Description Guest or host cancels a pending or confirmed reservation
// @Tags reservations
// @Produce json
// @Param X-User-ID header string true "User ID"
// @Param id path string true "Reservation ID"
// @Success 200 {object} resdto.ReservationResponse
// @Failure 403 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Router /reservations/{id}/cancel [post]
func (h *ReservationHandler) Cancel(c *gin.Context) {
	h.transition(c, h.reservations.Cancel)
}

type transitionFunc func(ctx context.Context, actor, id uuid.UUID) (*queries.ReservationView, error)

func (h *ReservationHandler) transition(c *gin.Context, fn transitionFunc) {
	actor, ok := middleware.GetUserID(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusUnauthorized, errUnauthorized, "Unauthorized", nil)
		return
	}
	id, ok := bindReservationID(c)
	if !ok {
		return
	}
	view, err := fn(c.Request.Context(), actor, id)
	if err != nil {
		abortWithUseCaseError(c, err, "reservation transition failed")
		return
	}
	c.JSON(http.StatusOK, resdto.FromReservationView(view))
}

func idempotencyKey(c *gin.Context) (*uuid.UUID, error) {
	raw := c.GetHeader(HeaderIdempotencyKey)
	if raw == "" {
		return nil, nil
	}
	key, err := uuid.Parse(raw)
	if err != nil {
		return nil, errs.Wrap(errInvalidIdempotencyKey, err.Error())
	}
	return &key, nil
}

func bindReservationID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid reservation id", nil)
		return uuid.Nil, false
	}
	return id, true
}
