package infrastructure

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mateusmacedo/bus-booking/internal/booking/application"
	"github.com/mateusmacedo/bus-booking/internal/booking/domain"
	pkgApp "github.com/mateusmacedo/bus-booking/pkg/application"
)

type stubCommandBus struct {
	result   domain.Booking
	err      error
	received []application.BookingCommand
}

func (b *stubCommandBus) RegisterHandler(string, application.BookingCommandHandler) {}

func (b *stubCommandBus) Dispatch(_ context.Context, command application.BookingCommand) (domain.Booking, error) {
	b.received = append(b.received, command)
	return b.result, b.err
}

type stubQueryBus struct {
	result []domain.Booking
	err    error
}

func (b *stubQueryBus) RegisterHandler(string, application.BookingQueryHandler) {}

func (b *stubQueryBus) Dispatch(context.Context, application.BookingQuery) ([]domain.Booking, error) {
	return b.result, b.err
}

func newTestRouter(commands *stubCommandBus, queries *stubQueryBus) http.Handler {
	router := chi.NewRouter()
	NewBookingHTTPHandler(commands, queries, time.Second, pkgApp.NopLogger{}).RegisterRoutes(router)
	return router
}

func serve(handler http.Handler, method, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	handler.ServeHTTP(w, req)
	return w
}

func errorMessage(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Error
}

func TestBookingHTTPHandler_ErrorStatusMapping(t *testing.T) {
	cases := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"validation", &domain.ValidationError{Message: "All fields are required: passengerName, busNumber, seatNumber"}, http.StatusBadRequest, "All fields are required: passengerName, busNumber, seatNumber"},
		{"conflict", &domain.ConflictError{BusNumber: "BUS001", SeatNumber: "A1"}, http.StatusConflict, "Seat A1 is already taken on bus BUS001"},
		{"not found", &domain.NotFoundError{Message: "Booking not found"}, http.StatusNotFound, "Booking not found"},
		{"store", &domain.StoreError{Op: "create booking", Err: errors.New("pq: secret detail")}, http.StatusInternalServerError, "Failed to create booking"},
		{"unexpected", errors.New("no handler"), http.StatusInternalServerError, "Failed to create booking"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			router := newTestRouter(&stubCommandBus{err: tc.err}, &stubQueryBus{})

			w := serve(router, http.MethodPost, "/bookings", `{"passengerName":"John Doe","busNumber":"BUS001","seatNumber":"A1"}`)

			assert.Equal(t, tc.status, w.Code)
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
			assert.Equal(t, tc.message, errorMessage(t, w))
		})
	}
}

func TestBookingHTTPHandler_FallbackMessages(t *testing.T) {
	boom := &domain.StoreError{Op: "op", Err: errors.New("boom")}
	commands := &stubCommandBus{err: boom}
	queries := &stubQueryBus{err: boom}
	router := newTestRouter(commands, queries)
	body := `{"passengerName":"a","busNumber":"b","seatNumber":"c"}`

	cases := map[string]*httptest.ResponseRecorder{
		"Failed to fetch bookings": serve(router, http.MethodGet, "/bookings", ""),
		"Failed to fetch booking":  serve(router, http.MethodGet, "/bookings/1", ""),
		"Failed to search booking": serve(router, http.MethodGet, "/bookings/name/John", ""),
		"Failed to update booking": serve(router, http.MethodPut, "/bookings/1", body),
		"Failed to delete booking": serve(router, http.MethodDelete, "/bookings/1", ""),
	}
	for message, w := range cases {
		assert.Equal(t, http.StatusInternalServerError, w.Code, message)
		assert.Equal(t, message, errorMessage(t, w))
	}
}

func TestBookingHTTPHandler_RejectsBadBodies(t *testing.T) {
	commands := &stubCommandBus{}
	router := newTestRouter(commands, &stubQueryBus{})

	bodies := []string{
		`{"passengerName":"John Doe"`,
		`not json`,
		`{"passengerName":"John Doe","busNumber":"BUS001","seatNumber":"A1","id":"1"}`,
		`{"passengerName":1,"busNumber":"BUS001","seatNumber":"A1"}`,
		``,
	}
	for _, body := range bodies {
		w := serve(router, http.MethodPost, "/bookings", body)
		assert.Equal(t, http.StatusBadRequest, w.Code, body)
		assert.Equal(t, "Invalid request body", errorMessage(t, w), body)
	}
	assert.Empty(t, commands.received)
}

func TestBookingHTTPHandler_RoutesCommands(t *testing.T) {
	booking := domain.Booking{ID: "1", PassengerName: "John Doe", BusNumber: "BUS001", SeatNumber: "A1"}
	commands := &stubCommandBus{result: booking}
	router := newTestRouter(commands, &stubQueryBus{})
	body := `{"passengerName":"John Doe","busNumber":"BUS001","seatNumber":"A1"}`

	assert.Equal(t, http.StatusCreated, serve(router, http.MethodPost, "/bookings", body).Code)
	assert.Equal(t, http.StatusOK, serve(router, http.MethodPut, "/bookings/1", body).Code)
	assert.Equal(t, http.StatusOK, serve(router, http.MethodPut, "/bookings/updatePassenger/1", body).Code)
	assert.Equal(t, http.StatusOK, serve(router, http.MethodDelete, "/bookings/deletePassenger/1", "").Code)

	w := serve(router, http.MethodDelete, "/bookings/1", "")
	require.Equal(t, http.StatusOK, w.Code)
	var resp DeleteBookingResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Booking deleted successfully", resp.Message)
	assert.Equal(t, "John Doe", resp.DeletedBooking.PassengerName)

	names := make([]string, 0, len(commands.received))
	for _, command := range commands.received {
		names = append(names, command.CommandName())
	}
	assert.Equal(t, []string{
		application.CreateBookingCommand,
		application.UpdateBookingCommand,
		application.UpdateBookingCommand,
		application.DeleteBookingCommand,
		application.DeleteBookingCommand,
	}, names)
	assert.Equal(t, "1", commands.received[1].Payload().ID)
}

func TestBookingHTTPHandler_SingleResultGuard(t *testing.T) {
	router := newTestRouter(&stubCommandBus{}, &stubQueryBus{result: []domain.Booking{}})

	w := serve(router, http.MethodGet, "/bookings/1", "")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Failed to fetch booking", errorMessage(t, w))
}

func TestBookingHTTPHandler_ListEncodesEmptyArray(t *testing.T) {
	router := newTestRouter(&stubCommandBus{}, &stubQueryBus{result: []domain.Booking{}})

	w := serve(router, http.MethodGet, "/bookings", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}
