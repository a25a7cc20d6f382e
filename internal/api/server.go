package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"padelclub/internal/config"
	"padelclub/internal/domain"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

// Server exposes the booking system over HTTP/JSON. It owns no state:
// every invariant lives in the services and stores behind it.
type Server struct {
	cfg      config.ServerConfig
	bookings domain.BookingService
	roster   domain.RosterService
	users    domain.UserService
	states   domain.StateRepository

	rateLimit config.RateLimitConfig
	validate  *validator.Validate
	logger    *zerolog.Logger
	server    *http.Server
	limiters  *limiterPool
}

func NewServer(
	cfg config.ServerConfig,
	rateLimit config.RateLimitConfig,
	bookings domain.BookingService,
	roster domain.RosterService,
	users domain.UserService,
	states domain.StateRepository,
	logger *zerolog.Logger,
) *Server {
	s := &Server{
		cfg:       cfg,
		rateLimit: rateLimit,
		bookings:  bookings,
		roster:    roster,
		users:     users,
		states:    states,
		validate:  validator.New(),
		logger:    logger,
		limiters:  newLimiterPool(rateLimit),
	}

	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           s.Routes(),
		ReadHeaderTimeout: time.Duration(cfg.ReadHeaderTimeoutSec) * time.Second,
		WriteTimeout:      time.Duration(cfg.WriteTimeoutSec) * time.Second,
	}
	return s
}

// Routes builds the router; exposed so tests can drive it directly.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(s.requestLogger)
	r.Use(chimw.Recoverer)

	r.Get("/healthz", s.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(s.authRateLimit)
			r.Post("/auth/login", s.handleLogin)
			r.Post("/auth/register", s.handleRegister)
		})

		r.Group(func(r chi.Router) {
			r.Use(s.authenticate)
			r.Use(s.rateLimiter)

			r.Post("/auth/logout", s.handleLogout)

			r.Get("/bookings", s.handleListBookings)
			r.Post("/bookings", s.handleCreatePlayerBooking)
			r.Put("/bookings/{id}", s.handleUpdateBooking)
			r.Delete("/bookings/{id}", s.handleDeleteBooking)

			r.Post("/bookings/{id}/join", s.handleJoin)
			r.Post("/bookings/{id}/leave", s.handleLeave)
			r.Post("/bookings/{id}/kick", s.handleKick)
			r.Post("/bookings/{id}/invite", s.handleInvite)

			r.Get("/draft", s.handleGetDraft)
			r.Put("/draft", s.handleUpdateDraft)

			r.Post("/owner/bookings", s.handleCreateOwnerBooking)
			r.Get("/owner/users", s.handleListUsers)

			r.Get("/availability", s.handleAvailability)
			r.Get("/pricing", s.handleGetPricing)
			r.Put("/pricing", s.handleUpdatePricing)

			r.Get("/notifications", s.handleNotifications)
			r.Post("/notifications/{id}/read", s.handleMarkNotificationRead)

			r.Get("/profile", s.handleGetProfile)
			r.Put("/profile", s.handleUpdateProfile)
			r.Post("/profile/friends", s.handleAddFriend)
			r.Delete("/profile/friends/{email}", s.handleRemoveFriend)

			r.Get("/export/bookings.xlsx", s.handleExport)
		})
	})

	return r
}

func (s *Server) Start() error {
	s.logger.Info().Str("addr", s.server.Addr).Msg("HTTP API listening")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
