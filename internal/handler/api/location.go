package api

import (
	"net/http"

	reqdto "space-booking/internal/handler/dto/request"
	resdto "space-booking/internal/handler/dto/response"
	"space-booking/internal/handler/httperr"
	"space-booking/internal/handler/middleware"
	"space-booking/internal/usecase/commands"
	"space-booking/internal/usecase/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type LocationHandler struct {
	cmds commands.LocationCommands
	q    queries.LocationQueries
}

func NewLocationHandler(cmds commands.LocationCommands, q queries.LocationQueries) *LocationHandler {
	return &LocationHandler{cmds: cmds, q: q}
}

// @Summary Create location
// @Description Register a location owned by the calling host
// @Tags locations
// @Accept json
// @Produce json
// @Param X-User-ID header string true "Host user ID"
// @Param request body reqdto.CreateLocationRequest true "Location"
// @Success 201 {object} resdto.LocationResponse
// @Failure 400 {object} httperr.Response
// @Failure 401 {object} httperr.Response
// @Router /locations [post]
func (h *LocationHandler) Create(c *gin.Context) {
	hostID, ok := middleware.GetUserID(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusUnauthorized, errUnauthorized, "Unauthorized", nil)
		return
	}
	var req reqdto.CreateLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortInvalidRequest(c, err)
		return
	}

	snap, err := h.cmds.Create(c.Request.Context(), commands.CreateLocationInput{
		HostID:         hostID,
		Name:           req.Name,
		Timezone:       req.Timezone,
		Pricing:        req.Pricing.ToDomain(),
		Blackout:       req.Blackout.ToDomain(),
		InstantBooking: req.InstantBooking,
	})
	if err != nil {
		abortWithUseCaseError(c, err, "create location failed")
		return
	}
	c.JSON(http.StatusCreated, resdto.FromLocationSnapshot(snap))
}

// @Summary Get location
// @Tags locations
// @Produce json
// @Param id path string true "Location ID"
// @Success 200 {object} resdto.LocationResponse
// @Failure 404 {object} httperr.Response
// @Router /locations/{id} [get]
func (h *LocationHandler) Get(c *gin.Context) {
	id, ok := bindLocationID(c)
	if !ok {
		return
	}
	snap, err := h.q.GetByID(c.Request.Context(), id)
	if err != nil {
		abortWithUseCaseError(c, err, "get location failed")
		return
	}
	c.JSON(http.StatusOK, resdto.FromLocationSnapshot(snap))
}

// @Summary Update rates
// @Description Replace the pricing document and instant booking flag
// @Tags locations
// @Accept json
// @Produce json
// @Param X-User-ID header string true "Host user ID"
// @Param id path string true "Location ID"
// @Param request body reqdto.UpdateRatesRequest true "Rates"
// @Success 200 {object} resdto.LocationResponse
// @Failure 400 {object} httperr.Response
// @Failure 403 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Router /locations/{id}/rates [put]
func (h *LocationHandler) UpdateRates(c *gin.Context) {
	hostID, ok := middleware.GetUserID(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusUnauthorized, errUnauthorized, "Unauthorized", nil)
		return
	}
	id, ok := bindLocationID(c)
	if !ok {
		return
	}
	var req reqdto.UpdateRatesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortInvalidRequest(c, err)
		return
	}
	snap, err := h.cmds.UpdateRates(c.Request.Context(), hostID, id, req.Pricing.ToDomain(), req.InstantBooking)
	if err != nil {
		abortWithUseCaseError(c, err, "update rates failed")
		return
	}
	c.JSON(http.StatusOK, resdto.FromLocationSnapshot(snap))
}

// @Summary Update blackouts
// @Description Replace the blocked dates and hours of a location
// @Tags locations
// @Accept json
// @Produce json
// @Param X-User-ID header string true "Host user ID"
// @Param id path string true "Location ID"
// @Param request body reqdto.BlackoutRequest true "Blackout calendar"
// @Success 200 {object} resdto.LocationResponse
// @Failure 400 {object} httperr.Response
// @Failure 403 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Router /locations/{id}/blackouts [put]
func (h *LocationHandler) UpdateBlackout(c *gin.Context) {
	hostID, ok := middleware.GetUserID(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusUnauthorized, errUnauthorized, "Unauthorized", nil)
		return
	}
	id, ok := bindLocationID(c)
	if !ok {
		return
	}
	var req reqdto.BlackoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortInvalidRequest(c, err)
		return
	}
	snap, err := h.cmds.UpdateBlackout(c.Request.Context(), hostID, id, req.ToDomain())
	if err != nil {
		abortWithUseCaseError(c, err, "update blackout failed")
		return
	}
	c.JSON(http.StatusOK, resdto.FromLocationSnapshot(snap))
}

// @Summary Availability calendar
// @Description Blocked hours and per-day status over an inclusive date range
// @Tags availability
// @Produce json
// @Param id path string true "Location ID"
// @Param from query string true "First date (YYYY-MM-DD)"
// @Param to query string true "Last date (YYYY-MM-DD)"
// @Success 200 {object} resdto.AvailabilityResponse
// @Failure 400 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Router /locations/{id}/availability [get]
func (h *LocationHandler) Availability(c *gin.Context) {
	id, ok := bindLocationID(c)
	if !ok {
		return
	}
	var query reqdto.AvailabilityQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		abortInvalidRequest(c, err)
		return
	}
	from, to, err := query.ToDomain()
	if err != nil {
		abortInvalidRequest(c, err)
		return
	}
	view, err := h.q.Availability(c.Request.Context(), id, from, to)
	if err != nil {
		abortWithUseCaseError(c, err, "availability failed")
		return
	}
	c.JSON(http.StatusOK, resdto.FromAvailabilityView(view))
}

// @Summary Check window
// @Description Report whether a window is free right now
// @Tags availability
// @Produce json
// @Param id path string true "Location ID"
// @Param date query string true "Date (YYYY-MM-DD)"
// @Param start query string true "Start (HH:MM)"
// @Param end query string true "End (HH:MM)"
// @Success 200 {object} resdto.WindowCheckResponse
// @Failure 400 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Router /locations/{id}/availability/check [get]
func (h *LocationHandler) CheckWindow(c *gin.Context) {
	id, ok := bindLocationID(c)
	if !ok {
		return
	}
	var query reqdto.WindowRequest
	if err := c.ShouldBindQuery(&query); err != nil {
		abortInvalidRequest(c, err)
		return
	}
	w, err := query.ToDomain()
	if err != nil {
		abortInvalidRequest(c, err)
		return
	}
	view, err := h.q.CheckWindow(c.Request.Context(), id, w)
	if err != nil {
		abortWithUseCaseError(c, err, "check window failed")
		return
	}
	c.JSON(http.StatusOK, resdto.FromWindowCheckView(view))
}

// @Summary Bookable activities
// @Tags locations
// @Produce json
// @Param id path string true "Location ID"
// @Success 200 {object} resdto.ActivitiesResponse
// @Failure 404 {object} httperr.Response
// @Router /locations/{id}/activities [get]
func (h *LocationHandler) Activities(c *gin.Context) {
	id, ok := bindLocationID(c)
	if !ok {
		return
	}
	view, err := h.q.Activities(c.Request.Context(), id)
	if err != nil {
		abortWithUseCaseError(c, err, "activities failed")
		return
	}
	c.JSON(http.StatusOK, resdto.FromActivitiesView(view))
}

// @Summary Quote
// @Description Price a window for an activity and tier without booking it
// @Tags pricing
// @Accept json
// @Produce json
// @Param id path string true "Location ID"
// @Param request body reqdto.QuoteRequest true "Quote request"
// @Success 200 {object} resdto.QuoteResponse
// @Failure 400 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Failure 422 {object} httperr.Response
// @Router /locations/{id}/quotes [post]
func (h *LocationHandler) Quote(c *gin.Context) {
	id, ok := bindLocationID(c)
	if !ok {
		return
	}
	var req reqdto.QuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortInvalidRequest(c, err)
		return
	}
	in, err := req.ToDomain()
	if err != nil {
		abortWithUseCaseError(c, err, "quote failed")
		return
	}
	quote, err := h.q.Quote(c.Request.Context(), id, in)
	if err != nil {
		abortWithUseCaseError(c, err, "quote failed")
		return
	}
	c.JSON(http.StatusOK, resdto.FromQuote(quote))
}

func bindLocationID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid location id", nil)
		return uuid.Nil, false
	}
	return id, true
}
