//go:build e2e

package reservation_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	nethttptest "net/http/httptest"
	"sync"
	"testing"
	"time"

	"space-booking/internal/domain/calendar"
	reqdto "space-booking/internal/handler/dto/request"
	"space-booking/internal/handler/dto/response"
	"space-booking/internal/pkg/ptr"
	"space-booking/internal/usecase/commands"
	"space-booking/tests/common/builder"
	"space-booking/tests/common/dbtest"
	"space-booking/tests/common/httptest"
	"space-booking/tests/e2e"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type ReservationE2ETestSuite struct {
	e2e.SharedSuite
	hostID  uuid.UUID
	guestID uuid.UUID
	date    string
}

func TestReservationE2ETestSuite(t *testing.T) {
	suite.Run(t, new(ReservationE2ETestSuite))
}

func (s *ReservationE2ETestSuite) SetupTest() {
	s.SharedSuite.SetupTest()
	s.hostID = uuid.New()
	s.guestID = uuid.New()
	s.date = time.Now().UTC().AddDate(0, 0, 7).Format("2006-01-02")
}

func (s *ReservationE2ETestSuite) createLocation(instantBooking bool) uuid.UUID {
	req := builder.NewCreateLocationRequest()
	req.InstantBooking = instantBooking
	w := httptest.PerformRequest(s.T(), s.Router, http.MethodPost, "/api/locations", req, s.hostID.String())
	require.Equal(s.T(), http.StatusCreated, w.Code, w.Body.String())

	var loc response.LocationResponse
	httptest.DecodeResponseBody(s.T(), w.Body, &loc)
	return loc.ID
}

func (s *ReservationE2ETestSuite) book(guest uuid.UUID, body any, key string) (int, response.AdmissionResponse) {
	headers := map[string]string{"X-User-ID": guest.String()}
	if key != "" {
		headers["Idempotency-Key"] = key
	}
	w := httptest.PerformRequestWithHeaders(s.T(), s.Router, http.MethodPost, "/api/reservations", body, headers)
	var res response.AdmissionResponse
	if w.Code == http.StatusCreated || w.Code == http.StatusOK || w.Code == http.StatusConflict {
		_ = json.Unmarshal(w.Body.Bytes(), &res)
	}
	return w.Code, res
}

func (s *ReservationE2ETestSuite) TestAdmission_InstantBookingConfirms() {
	t := s.T()
	locationID := s.createLocation(true)

	code, res := s.book(s.guestID, builder.NewCreateReservationRequest(locationID, s.date), "")

	require.Equal(t, http.StatusCreated, code)
	assert.Equal(t, string(commands.DecisionAccepted), res.Decision)
	require.NotNil(t, res.Reservation)
	assert.Equal(t, "confirmed", res.Reservation.Status)
	assert.Nil(t, res.Reservation.ExpiresAt)
	assert.Equal(t, "Sunlit Loft", res.Reservation.LocationName)
	assert.InDelta(t, 241.5, res.Reservation.Quote.Total, 1e-9)
	assert.Equal(t, 1, dbtest.CountReservations(t, s.DB, locationID, "confirmed"))
	assert.Equal(t, 1, dbtest.CountNotifications(t, s.DB, "email"))
}

func (s *ReservationE2ETestSuite) TestAdmission_RequestToBookHoldsSlot() {
	t := s.T()
	locationID := s.createLocation(false)

	code, res := s.book(s.guestID, builder.NewCreateReservationRequest(locationID, s.date), "")
	require.Equal(t, http.StatusCreated, code)
	assert.Equal(t, "pending", res.Reservation.Status)
	require.NotNil(t, res.Reservation.ExpiresAt)

	// A pending request blocks the window for everyone else.
	code, res = s.book(uuid.New(), builder.NewCreateReservationRequest(locationID, s.date), "")
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, string(commands.DecisionRejected), res.Decision)
	assert.Equal(t, string(commands.ReasonSlotNeverFree), res.Reason)
}

func (s *ReservationE2ETestSuite) TestAdmission_RejectionReasons() {
	t := s.T()
	locationID := s.createLocation(true)

	observed := time.Now().UTC().Add(-time.Minute)
	code, _ := s.book(s.guestID, builder.NewCreateReservationRequest(locationID, s.date), "")
	require.Equal(t, http.StatusCreated, code)

	s.Run("window was free when the guest looked", func() {
		req := builder.NewCreateReservationRequest(locationID, s.date)
		req.Start, req.End = "11:00", "13:00"
		req.ObservedAt = ptr.Of(observed)

		code, res := s.book(uuid.New(), req, "")

		assert.Equal(t, http.StatusConflict, code)
		assert.Equal(t, string(commands.ReasonSlotJustTaken), res.Reason)
		assert.Nil(t, res.Reservation)
	})

	s.Run("window was already taken", func() {
		req := builder.NewCreateReservationRequest(locationID, s.date)
		req.Start, req.End = "09:00", "11:00"

		code, res := s.book(uuid.New(), req, "")

		assert.Equal(t, http.StatusConflict, code)
		assert.Equal(t, string(commands.ReasonSlotNeverFree), res.Reason)
	})
}

func (s *ReservationE2ETestSuite) TestAdmission_AdjacentWindowsBothAccepted() {
	t := s.T()
	locationID := s.createLocation(true)

	first := builder.NewCreateReservationRequest(locationID, s.date)
	second := builder.NewCreateReservationRequest(locationID, s.date)
	second.Start, second.End = "12:00", "14:00"

	code, _ := s.book(s.guestID, first, "")
	require.Equal(t, http.StatusCreated, code)
	code, _ = s.book(uuid.New(), second, "")
	require.Equal(t, http.StatusCreated, code)

	assert.Equal(t, 2, dbtest.CountReservations(t, s.DB, locationID))
}

func (s *ReservationE2ETestSuite) TestAdmission_IdempotentReplay() {
	t := s.T()
	locationID := s.createLocation(true)
	key := uuid.NewString()
	req := builder.NewCreateReservationRequest(locationID, s.date)

	code, first := s.book(s.guestID, req, key)
	require.Equal(t, http.StatusCreated, code)

	code, replay := s.book(s.guestID, req, key)
	require.Equal(t, http.StatusOK, code)
	assert.True(t, replay.Replayed)
	require.NotNil(t, replay.Reservation)
	assert.Equal(t, first.Reservation.ID, replay.Reservation.ID)
	assert.Equal(t, 1, dbtest.CountReservations(t, s.DB, locationID))

	// Same key, different payload.
	other := builder.NewCreateReservationRequest(locationID, s.date)
	other.Start, other.End = "15:00", "17:00"
	w := httptest.PerformRequestWithHeaders(t, s.Router, http.MethodPost, "/api/reservations", other,
		map[string]string{"X-User-ID": s.guestID.String(), "Idempotency-Key": key})
	body := httptest.AssertErrorResponse(t, w, http.StatusConflict, "Idempotency key reused")
	s.Equal("IDEMPOTENCY_KEY_REUSED", body.Error.Code)
	s.NotEmpty(body.RequestID)
}

func (s *ReservationE2ETestSuite) TestAdmission_ConcurrentRequestsAdmitOne() {
	t := s.T()
	locationID := s.createLocation(true)
	body, err := json.Marshal(builder.NewCreateReservationRequest(locationID, s.date))
	require.NoError(t, err)

	const n = 8
	codes := make([]int, n)
	results := make([]response.AdmissionResponse, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			req := nethttptest.NewRequest(http.MethodPost, "/api/reservations", bytes.NewReader(body))
			req.Header.Set("Content-Type", "application/json")
			req.Header.Set("X-User-ID", uuid.NewString())
			w := nethttptest.NewRecorder()
			s.Router.ServeHTTP(w, req)
			codes[i] = w.Code
			_ = json.Unmarshal(w.Body.Bytes(), &results[i])
		}(i)
	}
	wg.Wait()

	accepted := 0
	for i := range codes {
		switch codes[i] {
		case http.StatusCreated:
			accepted++
		case http.StatusConflict:
			assert.Contains(t,
				[]string{string(commands.ReasonSlotJustTaken), string(commands.ReasonSlotNeverFree)},
				results[i].Reason)
		default:
			t.Errorf("unexpected status %d", codes[i])
		}
	}
	assert.Equal(t, 1, accepted)
	assert.Equal(t, 1, dbtest.CountReservations(t, s.DB, locationID))
}

func (s *ReservationE2ETestSuite) TestAdmission_ExpiredPendingFreesSlot() {
	t := s.T()
	locationID := s.createLocation(false)

	code, res := s.book(s.guestID, builder.NewCreateReservationRequest(locationID, s.date), "")
	require.Equal(t, http.StatusCreated, code)
	dbtest.ExpirePending(t, s.DB, res.Reservation.ID)

	code, _ = s.book(uuid.New(), builder.NewCreateReservationRequest(locationID, s.date), "")
	assert.Equal(t, http.StatusCreated, code)

	// The original guest can no longer get the stale request confirmed.
	w := httptest.PerformRequest(t, s.Router, http.MethodPost,
		"/api/reservations/"+res.Reservation.ID.String()+"/confirm", nil, s.hostID.String())
	assert.Equal(t, http.StatusConflict, w.Code)
}

func (s *ReservationE2ETestSuite) TestLifecycle_HostConfirmsGuestCancels() {
	t := s.T()
	locationID := s.createLocation(false)

	code, res := s.book(s.guestID, builder.NewCreateReservationRequest(locationID, s.date), "")
	require.Equal(t, http.StatusCreated, code)
	path := "/api/reservations/" + res.Reservation.ID.String()

	w := httptest.PerformRequest(t, s.Router, http.MethodPost, path+"/confirm", nil, s.guestID.String())
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = httptest.PerformRequest(t, s.Router, http.MethodPost, path+"/confirm", nil, s.hostID.String())
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var confirmed response.ReservationResponse
	httptest.DecodeResponseBody(t, w.Body, &confirmed)
	assert.Equal(t, "confirmed", confirmed.Status)

	w = httptest.PerformRequest(t, s.Router, http.MethodPost, path+"/cancel", nil, s.guestID.String())
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// A stranger cannot see it at all.
	w = httptest.PerformRequest(t, s.Router, http.MethodGet, path, nil, uuid.NewString())
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = httptest.PerformRequest(t, s.Router, http.MethodGet, path, nil, s.guestID.String())
	require.Equal(t, http.StatusOK, w.Code)
	var got response.ReservationResponse
	httptest.DecodeResponseBody(t, w.Body, &got)
	assert.Equal(t, "cancelled", got.Status)

	// Cancelled reservations release the window.
	code, _ = s.book(uuid.New(), builder.NewCreateReservationRequest(locationID, s.date), "")
	assert.Equal(t, http.StatusCreated, code)
}

func (s *ReservationE2ETestSuite) TestAvailability_ReflectsReservationsAndBlackout() {
	t := s.T()
	locationID := s.createLocation(true)
	code, _ := s.book(s.guestID, builder.NewCreateReservationRequest(locationID, s.date), "")
	require.Equal(t, http.StatusCreated, code)

	day, err := calendar.ParseDate(s.date)
	require.NoError(t, err)
	nextDay := day.AddDays(1)
	w := httptest.PerformRequest(t, s.Router, http.MethodPut, "/api/locations/"+locationID.String()+"/blackouts",
		reqdto.BlackoutRequest{BlockedDates: []calendar.Date{nextDay}}, s.hostID.String())
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = httptest.PerformRequest(t, s.Router, http.MethodGet,
		"/api/locations/"+locationID.String()+"/availability?from="+s.date+"&to="+nextDay.String(), nil, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var avail response.AvailabilityResponse
	httptest.DecodeResponseBody(t, w.Body, &avail)

	// Blocked slots list every occupied hour, blackout days included.
	require.Len(t, avail.BlockedSlots, 2+24)
	assert.Equal(t, day, avail.BlockedSlots[0].Date)
	assert.Equal(t, 10, avail.BlockedSlots[0].Hour)
	assert.Equal(t, 11, avail.BlockedSlots[1].Hour)
	for h, slot := range avail.BlockedSlots[2:] {
		assert.Equal(t, nextDay, slot.Date)
		assert.Equal(t, h, slot.Hour)
	}
	assert.Equal(t, []calendar.Date{nextDay}, avail.FullyBlockedDates)

	w = httptest.PerformRequest(t, s.Router, http.MethodGet,
		"/api/locations/"+locationID.String()+"/availability/check?date="+s.date+"&start=11:00&end=12:00", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var check response.WindowCheckResponse
	httptest.DecodeResponseBody(t, w.Body, &check)
	assert.False(t, check.Free)
}

// Quotes read locations through redis; a rate change must not serve the old price.
func (s *ReservationE2ETestSuite) TestQuote_RateUpdateInvalidatesCache() {
	t := s.T()
	locationID := s.createLocation(true)
	quotePath := "/api/locations/" + locationID.String() + "/quotes"
	quoteReq := reqdto.QuoteRequest{
		WindowRequest: reqdto.WindowRequest{Date: s.date, Start: "10:00", End: "12:00"},
		Tier:          "medium",
		Activity:      "photo",
	}
	quote := func() response.QuoteResponse {
		w := httptest.PerformRequest(t, s.Router, http.MethodPost, quotePath, quoteReq, "")
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		var q response.QuoteResponse
		httptest.DecodeResponseBody(t, w.Body, &q)
		return q
	}

	first := quote()
	assert.Equal(t, 100.0, first.HourlyRate)
	assert.Equal(t, 100.0, quote().HourlyRate, "cached read")

	update := builder.NewCreateLocationRequest().Pricing
	update.RateTable = map[string]map[string]float64{"photo": {"medium": 150}}
	w := httptest.PerformRequest(t, s.Router, http.MethodPut, "/api/locations/"+locationID.String()+"/rates",
		reqdto.UpdateRatesRequest{Pricing: update, InstantBooking: true}, s.hostID.String())
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	second := quote()
	assert.Equal(t, 150.0, second.HourlyRate)
	assert.Greater(t, second.Total, first.Total)

	// Only the host may change rates.
	w = httptest.PerformRequest(t, s.Router, http.MethodPut, "/api/locations/"+locationID.String()+"/rates",
		reqdto.UpdateRatesRequest{Pricing: update}, s.guestID.String())
	httptest.AssertErrorCode(t, w, http.StatusForbidden, "FORBIDDEN")
}
