package api

import (
	"fmt"
	"net/http"
	"time"

	"padelclub/internal/export"
	"padelclub/internal/models"

	"github.com/go-chi/render"
)

func (s *Server) handleAvailability(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		writeError(w, r, http.StatusBadRequest, "date is required")
		return
	}

	occupied, open, err := s.bookings.Availability(r.Context(), date)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"date":     date,
		"occupied": occupied,
		"open":     open,
	})
}

func (s *Server) handleGetPricing(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]interface{}{"pricing": s.bookings.Pricing()})
}

type pricingRequest struct {
	Pricing map[string]models.PriceOption `json:"pricing" validate:"required"`
}

func (s *Server) handleUpdatePricing(w http.ResponseWriter, r *http.Request) {
	var req pricingRequest
	if !s.decode(w, r, &req) {
		return
	}

	if err := s.bookings.UpdatePricing(r.Context(), userFrom(r.Context()), req.Pricing); err != nil {
		writeError(w, r, statusFor(err), err.Error())
		return
	}
	render.JSON(w, r, map[string]interface{}{"pricing": s.bookings.Pricing()})
}

// handleExport streams all bookings as an xlsx workbook; owner only.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	actor := userFrom(r.Context())
	bookings, err := s.bookings.ListBookings(r.Context(), actor, "all")
	if err != nil {
		writeError(w, r, statusFor(err), err.Error())
		return
	}

	f, err := export.Bookings(bookings)
	if err != nil {
		s.logger.Error().Err(err).Msg("export error")
		writeError(w, r, http.StatusInternalServerError, "failed to build export")
		return
	}
	defer f.Close()

	fileName := fmt.Sprintf("bookings_%s.xlsx", time.Now().Format("2006-01-02"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fileName))
	if err := f.Write(w); err != nil {
		s.logger.Error().Err(err).Msg("export write error")
	}
}
