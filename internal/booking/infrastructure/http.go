package infrastructure

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mateusmacedo/bus-booking/internal/booking/application"
	"github.com/mateusmacedo/bus-booking/internal/booking/domain"
	pkgApp "github.com/mateusmacedo/bus-booking/pkg/application"
)

const maxRequestBody = 1 << 20

// BookingRequest é o corpo aceito por POST e PUT. Campos desconhecidos são rejeitados.
type BookingRequest struct {
	PassengerName string `json:"passengerName"`
	BusNumber     string `json:"busNumber"`
	SeatNumber    string `json:"seatNumber"`
}

type DeleteBookingResponse struct {
	Message        string         `json:"message"`
	DeletedBooking domain.Booking `json:"deletedBooking"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type BookingHTTPHandler struct {
	commandBus application.BookingCommandBus
	queryBus   application.BookingQueryBus
	timeout    time.Duration
	logger     pkgApp.AppLogger
}

func NewBookingHTTPHandler(
	commandBus application.BookingCommandBus,
	queryBus application.BookingQueryBus,
	timeout time.Duration,
	logger pkgApp.AppLogger,
) *BookingHTTPHandler {
	return &BookingHTTPHandler{
		commandBus: commandBus,
		queryBus:   queryBus,
		timeout:    timeout,
		logger:     logger,
	}
}

// RegisterRoutes monta as rotas de reserva. As rotas updatePassenger e
// deletePassenger são aliases mantidos para clientes antigos.
func (h *BookingHTTPHandler) RegisterRoutes(router chi.Router) {
	router.Route("/bookings", func(r chi.Router) {
		r.Get("/", h.HandleListBookings)
		r.Post("/", h.HandleCreateBooking)
		r.Get("/name/{passengerName}", h.HandleFindBookingByName)
		r.Put("/updatePassenger/{bookingID}", h.HandleUpdateBooking)
		r.Delete("/deletePassenger/{bookingID}", h.HandleDeleteBooking)
		r.Get("/{bookingID}", h.HandleGetBooking)
		r.Put("/{bookingID}", h.HandleUpdateBooking)
		r.Delete("/{bookingID}", h.HandleDeleteBooking)
	})
}

func (h *BookingHTTPHandler) HandleListBookings(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.requestContext(r)
	defer cancel()

	bookings, err := h.queryBus.Dispatch(ctx, application.NewListBookingsQuery())
	if err != nil {
		h.handleError(ctx, w, err, "Failed to fetch bookings")
		return
	}
	h.writeJSON(ctx, w, http.StatusOK, bookings)
}

func (h *BookingHTTPHandler) HandleGetBooking(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.requestContext(r)
	defer cancel()

	bookings, err := h.queryBus.Dispatch(ctx, application.NewGetBookingQuery(chi.URLParam(r, "bookingID")))
	if err != nil {
		h.handleError(ctx, w, err, "Failed to fetch booking")
		return
	}
	h.writeSingle(ctx, w, bookings, "Failed to fetch booking")
}

func (h *BookingHTTPHandler) HandleFindBookingByName(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.requestContext(r)
	defer cancel()

	query := application.NewFindBookingByNameQuery(chi.URLParam(r, "passengerName"))
	bookings, err := h.queryBus.Dispatch(ctx, query)
	if err != nil {
		h.handleError(ctx, w, err, "Failed to search booking")
		return
	}
	h.writeSingle(ctx, w, bookings, "Failed to search booking")
}

func (h *BookingHTTPHandler) HandleCreateBooking(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.requestContext(r)
	defer cancel()

	req, ok := h.decodeBooking(ctx, w, r)
	if !ok {
		return
	}

	command := application.NewCreateBookingCommand(req.PassengerName, req.BusNumber, req.SeatNumber)
	booking, err := h.commandBus.Dispatch(ctx, command)
	if err != nil {
		h.handleError(ctx, w, err, "Failed to create booking")
		return
	}
	h.writeJSON(ctx, w, http.StatusCreated, booking)
}

func (h *BookingHTTPHandler) HandleUpdateBooking(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.requestContext(r)
	defer cancel()

	req, ok := h.decodeBooking(ctx, w, r)
	if !ok {
		return
	}

	command := application.NewUpdateBookingCommand(chi.URLParam(r, "bookingID"), req.PassengerName, req.BusNumber, req.SeatNumber)
	booking, err := h.commandBus.Dispatch(ctx, command)
	if err != nil {
		h.handleError(ctx, w, err, "Failed to update booking")
		return
	}
	h.writeJSON(ctx, w, http.StatusOK, booking)
}

func (h *BookingHTTPHandler) HandleDeleteBooking(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.requestContext(r)
	defer cancel()

	booking, err := h.commandBus.Dispatch(ctx, application.NewDeleteBookingCommand(chi.URLParam(r, "bookingID")))
	if err != nil {
		h.handleError(ctx, w, err, "Failed to delete booking")
		return
	}
	h.writeJSON(ctx, w, http.StatusOK, DeleteBookingResponse{
		Message:        "Booking deleted successfully",
		DeletedBooking: booking,
	})
}

func (h *BookingHTTPHandler) requestContext(r *http.Request) (context.Context, context.CancelFunc) {
	if h.timeout <= 0 {
		return context.WithCancel(r.Context())
	}
	return context.WithTimeout(r.Context(), h.timeout)
}

func (h *BookingHTTPHandler) decodeBooking(ctx context.Context, w http.ResponseWriter, r *http.Request) (BookingRequest, bool) {
	var req BookingRequest

	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		pkgApp.LogDebug(ctx, h.logger, "invalid request body", map[string]interface{}{"error": err.Error()})
		h.writeJSON(ctx, w, http.StatusBadRequest, ErrorResponse{Error: "Invalid request body"})
		return BookingRequest{}, false
	}
	return req, true
}

func (h *BookingHTTPHandler) writeSingle(ctx context.Context, w http.ResponseWriter, bookings []domain.Booking, fallback string) {
	if len(bookings) != 1 {
		pkgApp.LogError(ctx, h.logger, "unexpected query result", nil, map[string]interface{}{"count": len(bookings)})
		h.writeJSON(ctx, w, http.StatusInternalServerError, ErrorResponse{Error: fallback})
		return
	}
	h.writeJSON(ctx, w, http.StatusOK, bookings[0])
}

// handleError converte os erros do domínio em status HTTP. Erros
// inesperados viram 500 com uma mensagem genérica; o detalhe fica no log.
func (h *BookingHTTPHandler) handleError(ctx context.Context, w http.ResponseWriter, err error, fallback string) {
	status := http.StatusInternalServerError
	message := fallback

	switch {
	case errors.Is(err, domain.ErrValidation):
		status, message = http.StatusBadRequest, err.Error()
	case errors.Is(err, domain.ErrNotFound):
		status, message = http.StatusNotFound, err.Error()
	case errors.Is(err, domain.ErrConflict):
		status, message = http.StatusConflict, err.Error()
	default:
		pkgApp.LogError(ctx, h.logger, "request failed", err, nil)
	}

	h.writeJSON(ctx, w, status, ErrorResponse{Error: message})
}

func (h *BookingHTTPHandler) writeJSON(ctx context.Context, w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		pkgApp.LogError(ctx, h.logger, "failed to write response", err, nil)
	}
}
