package api

import (
	"errors"
	"net/http"

	"padelclub/internal/config"
	"padelclub/internal/courts"
	"padelclub/internal/domain"
	"padelclub/internal/models"
	"padelclub/internal/pricing"
	"padelclub/internal/service"
	"padelclub/internal/store"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

func (s *Server) handleListBookings(w http.ResponseWriter, r *http.Request) {
	view := r.URL.Query().Get("view")
	bookings, err := s.bookings.ListBookings(r.Context(), userFrom(r.Context()), view)
	if err != nil {
		writeError(w, r, statusFor(err), err.Error())
		return
	}
	render.JSON(w, r, map[string]interface{}{"bookings": bookings})
}

type playerBookingRequest struct {
	Level      string   `json:"level"`
	Notes      string   `json:"notes"`
	Visibility string   `json:"visibility" validate:"required,oneof=public private"`
	Type       string   `json:"type" validate:"required,oneof=casual competitive"`
	Invited    []string `json:"invited"`
}

func (s *Server) handleCreatePlayerBooking(w http.ResponseWriter, r *http.Request) {
	var req playerBookingRequest
	if !s.decode(w, r, &req) {
		return
	}

	booking, err := s.bookings.CreatePlayerBooking(r.Context(), tokenFrom(r.Context()), userFrom(r.Context()), domain.PlayerBookingRequest{
		Level:      req.Level,
		Notes:      req.Notes,
		Visibility: req.Visibility,
		Type:       req.Type,
		Invited:    req.Invited,
	})
	if err != nil {
		writeError(w, r, statusFor(err), err.Error())
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, booking)
}

type ownerBookingRequest struct {
	Date       string   `json:"date" validate:"required"`
	Time       string   `json:"time" validate:"required"`
	Duration   int      `json:"duration"`
	Organizer  string   `json:"organizer" validate:"required"`
	Players    []string `json:"players"`
	Level      string   `json:"level"`
	Notes      string   `json:"notes"`
	Visibility string   `json:"visibility" validate:"required,oneof=public private"`
	Type       string   `json:"type" validate:"required,oneof=casual competitive"`
	Price      *float64 `json:"price"`
}

func (s *Server) handleCreateOwnerBooking(w http.ResponseWriter, r *http.Request) {
	var req ownerBookingRequest
	if !s.decode(w, r, &req) {
		return
	}

	booking, err := s.bookings.CreateOwnerBooking(r.Context(), tokenFrom(r.Context()), userFrom(r.Context()), domain.OwnerBookingRequest{
		Date:       req.Date,
		Time:       req.Time,
		Duration:   req.Duration,
		Organizer:  req.Organizer,
		Players:    req.Players,
		Level:      req.Level,
		Notes:      req.Notes,
		Visibility: req.Visibility,
		Type:       req.Type,
		Price:      req.Price,
	})
	if err != nil {
		writeError(w, r, statusFor(err), err.Error())
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, booking)
}

func (s *Server) handleUpdateBooking(w http.ResponseWriter, r *http.Request) {
	var booking models.Booking
	if err := render.DecodeJSON(r.Body, &booking); err != nil {
		writeError(w, r, http.StatusBadRequest, "failed to decode request")
		return
	}
	booking.ID = chi.URLParam(r, "id")

	if err := s.bookings.UpdateBooking(r.Context(), userFrom(r.Context()), &booking); err != nil {
		writeError(w, r, statusFor(err), err.Error())
		return
	}
	render.JSON(w, r, booking)
}

func (s *Server) handleDeleteBooking(w http.ResponseWriter, r *http.Request) {
	confirmed := r.URL.Query().Get("confirm") == "true"
	err := s.bookings.DeleteBooking(r.Context(), userFrom(r.Context()), chi.URLParam(r, "id"), confirmed)
	if err != nil {
		writeError(w, r, statusFor(err), err.Error())
		return
	}
	render.NoContent(w, r)
}

type draftRequest struct {
	Date string `json:"date"`
	Time string `json:"time"`
}

type draftResponse struct {
	Step string `json:"step"`
	Date string `json:"date,omitempty"`
	Time string `json:"time,omitempty"`
}

func (s *Server) handleGetDraft(w http.ResponseWriter, r *http.Request) {
	state, err := s.bookings.Draft(r.Context(), tokenFrom(r.Context()))
	if err != nil {
		writeError(w, r, statusFor(err), err.Error())
		return
	}
	render.JSON(w, r, toDraftResponse(state))
}

// handleUpdateDraft advances slot selection: a date resets any chosen
// time, a time completes the slot.
func (s *Server) handleUpdateDraft(w http.ResponseWriter, r *http.Request) {
	var req draftRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, "failed to decode request")
		return
	}
	if req.Date == "" && req.Time == "" {
		writeError(w, r, http.StatusBadRequest, "date or time is required")
		return
	}

	token := tokenFrom(r.Context())
	var state *models.SessionState
	var err error
	if req.Date != "" {
		if state, err = s.bookings.SelectDate(r.Context(), token, req.Date); err != nil {
			writeError(w, r, statusFor(err), err.Error())
			return
		}
	}
	if req.Time != "" {
		if state, err = s.bookings.SelectTime(r.Context(), token, req.Time); err != nil {
			writeError(w, r, statusFor(err), err.Error())
			return
		}
	}

	render.JSON(w, r, toDraftResponse(state))
}

func toDraftResponse(state *models.SessionState) draftResponse {
	return draftResponse{
		Step: state.Step,
		Date: state.GetString("date"),
		Time: state.GetString("time"),
	}
}

// statusFor maps service and store errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, store.ErrNotFound), errors.Is(err, store.ErrUserNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrOwnerOnly):
		return http.StatusForbidden
	case errors.Is(err, service.ErrSessionExpired):
		return http.StatusUnauthorized
	case errors.Is(err, courts.ErrSlotConflict),
		errors.Is(err, store.ErrSlotTaken),
		errors.Is(err, service.ErrSlotOccupied),
		errors.Is(err, service.ErrSubmissionInFlight):
		return http.StatusConflict
	case errors.Is(err, service.ErrNoSlotSelected),
		errors.Is(err, service.ErrUnknownSlot),
		errors.Is(err, service.ErrInvalidType),
		errors.Is(err, service.ErrInvalidVisibility),
		errors.Is(err, service.ErrTooManyPlayers),
		errors.Is(err, service.ErrConfirmationNeeded),
		errors.Is(err, service.ErrMissingOrganizer),
		errors.Is(err, service.ErrUnknownView),
		errors.Is(err, config.ErrInvalidDate),
		errors.Is(err, pricing.ErrUnknownDuration),
		errors.Is(err, pricing.ErrEmptyTable),
		errors.Is(err, pricing.ErrInvalidOption):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
