//go:build unit

package api_test

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"space-booking/internal/domain/reservation"
	"space-booking/internal/handler/api"
	resdto "space-booking/internal/handler/dto/response"
	"space-booking/internal/handler/middleware"
	"space-booking/internal/usecase/commands"
	"space-booking/internal/usecase/queries"
	"space-booking/tests/common/builder"
	"space-booking/tests/common/httptest"
	"space-booking/tests/common/testutil"
	commandsmock "space-booking/tests/mock/commands"
	queriesmock "space-booking/tests/mock/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

type ReservationHandlerTestSuite struct {
	suite.Suite
	router           *gin.Engine
	mockCtrl         *gomock.Controller
	mockAdmission    *commandsmock.MockAdmissionCommands
	mockReservations *commandsmock.MockReservationCommands
	mockQueries      *queriesmock.MockReservationQueries
	handler          *api.ReservationHandler
	userID           uuid.UUID
}

func (s *ReservationHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	s.router = gin.New()

	s.mockCtrl = gomock.NewController(s.T())
	s.mockAdmission = commandsmock.NewMockAdmissionCommands(s.mockCtrl)
	s.mockReservations = commandsmock.NewMockReservationCommands(s.mockCtrl)
	s.mockQueries = queriesmock.NewMockReservationQueries(s.mockCtrl)
	s.handler = api.NewReservationHandler(s.mockAdmission, s.mockReservations, s.mockQueries)
	s.userID = uuid.New()

	g := s.router.Group("/reservations", middleware.RequireUser())
	g.POST("", s.handler.Create)
	g.GET("", s.handler.ListMine)
	g.GET("/:id", s.handler.Get)
	g.POST("/:id/confirm", s.handler.Confirm)
	g.POST("/:id/decline", s.handler.Decline)
	g.POST("/:id/cancel", s.handler.Cancel)
}

func (s *ReservationHandlerTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
}

func TestReservationHandlerSuite(t *testing.T) {
	suite.Run(t, new(ReservationHandlerTestSuite))
}

func (s *ReservationHandlerTestSuite) headers(extra map[string]string) map[string]string {
	h := map[string]string{"X-User-ID": s.userID.String()}
	for k, v := range extra {
		h[k] = v
	}
	return h
}

// ================================================================================
// TestCreate
// ================================================================================

func (s *ReservationHandlerTestSuite) TestCreate() {
	url := "/reservations"
	locationID := uuid.New()
	reqBody := builder.NewCreateReservationRequest(locationID, "2026-03-05")
	view := builder.NewReservationBuilder().With(func(b *builder.ReservationBuilder) {
		b.LocationID = locationID
	}).BuildView()

	accepted := &commands.AdmissionResult{Decision: commands.DecisionAccepted, Reservation: view}

	s.Run("success: 201 Created with the pending reservation", func() {
		var got commands.AdmitRequest
		s.mockAdmission.EXPECT().Admit(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, req commands.AdmitRequest) (*commands.AdmissionResult, error) {
				got = req
				return accepted, nil
			}).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, reqBody, s.userID.String())

		var body resdto.AdmissionResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusCreated, &body)
		s.Equal("ACCEPTED", body.Decision)
		s.Empty(body.Reason)
		s.False(body.Replayed)
		s.Require().NotNil(body.Reservation)
		s.Equal(view.ID, body.Reservation.ID)
		s.Equal("pending", body.Reservation.Status)
		s.Equal(210.0, body.Reservation.Quote.Total)

		s.Equal(s.userID, got.GuestID)
		s.Equal(locationID, got.LocationID)
		s.Equal("2026-03-05 10:00-12:00", got.Window.String())
		s.Nil(got.IdempotencyKey)
		s.True(got.ObservedAt.IsZero())
	})

	s.Run("success: idempotency key is passed through", func() {
		key := uuid.New()
		s.mockAdmission.EXPECT().Admit(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, req commands.AdmitRequest) (*commands.AdmissionResult, error) {
				s.Require().NotNil(req.IdempotencyKey)
				s.Equal(key, *req.IdempotencyKey)
				return accepted, nil
			}).Times(1)

		rec := httptest.PerformRequestWithHeaders(s.T(), s.router, http.MethodPost, url, reqBody,
			s.headers(map[string]string{"Idempotency-Key": key.String()}))
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusCreated, nil)
		s.Empty(rec.Header().Get("Idempotent-Replayed"))
	})

	s.Run("success: replayed outcome returns 200 with marker header", func() {
		replayed := &commands.AdmissionResult{Decision: commands.DecisionAccepted, Reservation: view, IsReplayed: true}
		s.mockAdmission.EXPECT().Admit(gomock.Any(), gomock.Any()).Return(replayed, nil).Times(1)

		rec := httptest.PerformRequestWithHeaders(s.T(), s.router, http.MethodPost, url, reqBody,
			s.headers(map[string]string{"Idempotency-Key": uuid.NewString()}))

		var body resdto.AdmissionResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &body)
		httptest.AssertHeaders(s.T(), rec, map[string]string{"Idempotent-Replayed": "true"})
		s.True(body.Replayed)
	})

	s.Run("rejection: 409 Conflict carries decision and reason", func() {
		for _, reason := range []commands.RejectReason{commands.ReasonSlotJustTaken, commands.ReasonSlotNeverFree} {
			s.Run(string(reason), func() {
				rejected := &commands.AdmissionResult{Decision: commands.DecisionRejected, Reason: reason}
				s.mockAdmission.EXPECT().Admit(gomock.Any(), gomock.Any()).Return(rejected, nil).Times(1)

				rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, reqBody, s.userID.String())

				s.Equal(http.StatusConflict, rec.Code)
				var body resdto.AdmissionResponse
				s.NoError(httptest.DecodeResponseBody(s.T(), rec.Body, &body))
				s.Equal("REJECTED", body.Decision)
				s.Equal(string(reason), body.Reason)
				s.Nil(body.Reservation)
			})
		}
	})

	s.Run("error: 400 Bad Request on validation errors", func() {
		cases := []struct {
			name   string
			mutate func(map[string]any)
			msg    string
		}{
			{name: "missing locationId", mutate: testutil.Field("locationId", nil)},
			{name: "missing date", mutate: testutil.Field("date", nil)},
			{name: "missing start", mutate: testutil.Field("start", nil)},
			{name: "missing tier", mutate: testutil.Field("tier", nil)},
			{name: "missing activity", mutate: testutil.Field("activity", nil)},
			{name: "malformed date", mutate: testutil.Field("date", "2026-13-45"), msg: "Invalid time window"},
			{name: "malformed start", mutate: testutil.Field("start", "10h"), msg: "Invalid time window"},
		}
		for _, tc := range cases {
			s.Run(tc.name, func() {
				body := testutil.DtoMap(s.T(), reqBody, tc.mutate)
				rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, body, s.userID.String())
				httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, tc.msg)
			})
		}
	})

	s.Run("note length limit matches the domain", func() {
		longest := strings.Repeat("ü", reservation.MaxNoteLength)
		s.mockAdmission.EXPECT().Admit(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, req commands.AdmitRequest) (*commands.AdmissionResult, error) {
				s.Equal(longest, req.Note)
				return accepted, nil
			}).Times(1)

		body := testutil.DtoMap(s.T(), reqBody, testutil.Field("note", longest))
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, body, s.userID.String())
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusCreated, nil)

		body = testutil.DtoMap(s.T(), reqBody, testutil.Field("note", longest+"x"))
		rec = httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, body, s.userID.String())
		httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "")
	})

	s.Run("error: 400 Bad Request for malformed idempotency key", func() {
		rec := httptest.PerformRequestWithHeaders(s.T(), s.router, http.MethodPost, url, reqBody,
			s.headers(map[string]string{"Idempotency-Key": "not-a-uuid"}))
		httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "Idempotency-Key")
	})

	s.Run("error: 401 Unauthorized without identity", func() {
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, reqBody, "")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusUnauthorized, "X-User-ID")
	})

	s.Run("error: 401 Unauthorized with malformed identity", func() {
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, reqBody, "guest-42")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusUnauthorized, "X-User-ID")
	})

	s.Run("error: maps usecase errors to proper statuses", func() {
		cases := []struct {
			name   string
			err    error
			status int
			msg    string
		}{
			{"location not found", commands.ErrLocationNotFound, http.StatusNotFound, "Location not found"},
			{"key reused", commands.ErrIdempotencyKeyReused, http.StatusConflict, "reused"},
			{"key in progress", commands.ErrIdempotencyInProgress, http.StatusConflict, "in progress"},
			{"slot in past", commands.ErrDomainValidation, http.StatusUnprocessableEntity, "Domain validation failed"},
			{"internal", errors.New("database error"), http.StatusInternalServerError, "Internal server error"},
		}
		for _, tc := range cases {
			s.Run(tc.name, func() {
				s.mockAdmission.EXPECT().Admit(gomock.Any(), gomock.Any()).Return(nil, tc.err).Times(1)
				rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, reqBody, s.userID.String())
				httptest.AssertErrorResponse(s.T(), rec, tc.status, tc.msg)
			})
		}
	})
}

// ================================================================================
// TestGet
// ================================================================================

func (s *ReservationHandlerTestSuite) TestGet() {
	view := builder.NewReservationBuilder().BuildView()
	url := "/reservations/" + view.ID.String()

	s.Run("success: 200 OK for an allowed user", func() {
		s.mockQueries.EXPECT().GetByID(gomock.Any(), s.userID, view.ID).Return(view, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, url, nil, s.userID.String())

		var body resdto.ReservationResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &body)
		s.Equal(view.ID, body.ID)
		s.Equal(view.LocationID, body.LocationID)
		s.Require().NotNil(body.Note)
		s.Equal("Product shoot", *body.Note)
	})

	s.Run("error: 400 Bad Request for invalid UUID", func() {
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/reservations/nope", nil, s.userID.String())
		httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "Invalid reservation id")
	})

	s.Run("error: 404 Not Found hides reservations of others", func() {
		s.mockQueries.EXPECT().GetByID(gomock.Any(), s.userID, view.ID).Return(nil, queries.ErrReservationAccess).Times(1)
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, url, nil, s.userID.String())
		httptest.AssertErrorCode(s.T(), rec, http.StatusNotFound, "RESERVATION_NOT_FOUND")
	})
}

// ================================================================================
// TestListMine
// ================================================================================

func (s *ReservationHandlerTestSuite) TestListMine() {
	item := &queries.ReservationListItem{ID: uuid.New(), LocationID: uuid.New(), Status: "pending", Total: 241.499}

	s.Run("success: first page with next cursor", func() {
		next := &queries.Cursor{After: "cursor-2"}
		s.mockQueries.EXPECT().ListByGuest(gomock.Any(), s.userID, (*queries.Cursor)(nil), 0).
			Return([]*queries.ReservationListItem{item}, next, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/reservations", nil, s.userID.String())

		var body resdto.ReservationPageResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &body)
		s.Require().Len(body.Items, 1)
		s.Equal(item.ID, body.Items[0].ID)
		s.Equal(241.5, body.Items[0].Total)
		s.Equal("cursor-2", body.NextAfter)
	})

	s.Run("success: cursor and limit are forwarded", func() {
		s.mockQueries.EXPECT().ListByGuest(gomock.Any(), s.userID, &queries.Cursor{After: "abc"}, 5).
			Return([]*queries.ReservationListItem{}, nil, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/reservations?limit=5&after=abc", nil, s.userID.String())

		var body resdto.ReservationPageResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &body)
		s.Empty(body.Items)
		s.Empty(body.NextAfter)
	})

	s.Run("error: 400 Bad Request for invalid cursor", func() {
		s.mockQueries.EXPECT().ListByGuest(gomock.Any(), s.userID, gomock.Any(), gomock.Any()).
			Return(nil, nil, queries.ErrInvalidCursor).Times(1)
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/reservations?after=zzz", nil, s.userID.String())
		httptest.AssertErrorCode(s.T(), rec, http.StatusBadRequest, "INVALID_CURSOR")
	})

	s.Run("success: the maximum limit is accepted", func() {
		s.mockQueries.EXPECT().ListByGuest(gomock.Any(), s.userID, (*queries.Cursor)(nil), queries.MaxListLimit).
			Return([]*queries.ReservationListItem{}, nil, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/reservations?limit=200", nil, s.userID.String())
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, nil)
	})

	s.Run("error: 400 Bad Request for limit out of range", func() {
		for _, limit := range []string{"201", "1000"} {
			rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/reservations?limit="+limit, nil, s.userID.String())
			httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "")
		}
	})
}

// ================================================================================
// TestTransitions
// ================================================================================

func (s *ReservationHandlerTestSuite) TestTransitions() {
	id := uuid.New()
	confirmed := builder.NewReservationBuilder().With(func(b *builder.ReservationBuilder) {
		b.ID = id
		b.Status = reservation.StatusConfirmed
		b.ExpiresAt = nil
	}).BuildView()

	s.Run("success: host confirms", func() {
		s.mockReservations.EXPECT().Confirm(gomock.Any(), s.userID, id).Return(confirmed, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/reservations/"+id.String()+"/confirm", nil, s.userID.String())

		var body resdto.ReservationResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &body)
		s.Equal("confirmed", body.Status)
		s.Nil(body.ExpiresAt)
	})

	s.Run("success: decline and cancel reach their commands", func() {
		s.mockReservations.EXPECT().Decline(gomock.Any(), s.userID, id).Return(confirmed, nil).Times(1)
		s.mockReservations.EXPECT().Cancel(gomock.Any(), s.userID, id).Return(confirmed, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/reservations/"+id.String()+"/decline", nil, s.userID.String())
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, nil)
		rec = httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/reservations/"+id.String()+"/cancel", nil, s.userID.String())
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, nil)
	})

	s.Run("error: maps transition errors", func() {
		cases := []struct {
			name   string
			err    error
			status int
			msg    string
		}{
			{"not found", commands.ErrReservationNotFound, http.StatusNotFound, "Reservation not found"},
			{"forbidden", commands.ErrReservationForbidden, http.StatusForbidden, "not allowed"},
			{"expired", commands.ErrReservationExpired, http.StatusConflict, "expired"},
			{"invalid transition", reservation.ErrInvalidTransition, http.StatusConflict, "Invalid reservation status transition"},
			{"stale", commands.ErrReservationStale, http.StatusConflict, "concurrently"},
		}
		for _, tc := range cases {
			s.Run(tc.name, func() {
				s.mockReservations.EXPECT().Confirm(gomock.Any(), s.userID, id).Return(nil, tc.err).Times(1)
				rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/reservations/"+id.String()+"/confirm", nil, s.userID.String())
				httptest.AssertErrorResponse(s.T(), rec, tc.status, tc.msg)
			})
		}
	})
}
