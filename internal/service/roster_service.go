package service

import (
	"context"
	"fmt"

	"padelclub/internal/domain"
	"padelclub/internal/events"
	"padelclub/internal/metrics"
	"padelclub/internal/models"

	"github.com/rs/zerolog"
)

// RosterService applies join/leave/kick/invite against a single
// booking. Authorization failures and capacity overflows are silent
// no-ops: the UI never offers them, but a direct call must not crash
// or corrupt state.
type RosterService struct {
	bookings      domain.BookingRepository
	notifications domain.NotificationRepository
	bus           domain.EventPublisher
	logger        *zerolog.Logger
}

func NewRosterService(bookings domain.BookingRepository, notifications domain.NotificationRepository, bus domain.EventPublisher, logger *zerolog.Logger) *RosterService {
	return &RosterService{
		bookings:      bookings,
		notifications: notifications,
		bus:           bus,
		logger:        logger,
	}
}

func (s *RosterService) Join(ctx context.Context, actor *models.User, bookingID string) (*models.Booking, error) {
	booking, changed, err := s.bookings.Join(ctx, bookingID, actor.Name)
	if err != nil {
		return nil, err
	}
	if changed {
		metrics.IncRosterOp("join")
		s.publish(events.EventPlayerJoined, booking, actor.Name, "")
		s.notifications.Append(ctx, actor.Email,
			fmt.Sprintf("You joined %s's booking at %s.", booking.Organizer, booking.Time))
	}
	return booking, nil
}

func (s *RosterService) Leave(ctx context.Context, actor *models.User, bookingID string) (*models.Booking, error) {
	booking, changed, err := s.bookings.Leave(ctx, bookingID, actor.Name)
	if err != nil {
		return nil, err
	}
	if changed {
		metrics.IncRosterOp("leave")
		s.publish(events.EventPlayerLeft, booking, actor.Name, "")
		if actor.Name == booking.Organizer {
			s.logger.Debug().
				Str("booking_id", booking.ID).
				Msg("organizer left their own booking")
		}
	}
	return booking, nil
}

func (s *RosterService) Kick(ctx context.Context, actor *models.User, bookingID, target string) (*models.Booking, error) {
	booking, changed, err := s.bookings.Kick(ctx, bookingID, actor.Name, target)
	if err != nil {
		return nil, err
	}
	if changed {
		metrics.IncRosterOp("kick")
		s.publish(events.EventPlayerKicked, booking, actor.Name, target)
	}
	return booking, nil
}

func (s *RosterService) Invite(ctx context.Context, actor *models.User, bookingID, name string) (*models.Booking, error) {
	booking, changed, err := s.bookings.Invite(ctx, bookingID, name)
	if err != nil {
		return nil, err
	}
	if changed {
		metrics.IncRosterOp("invite")
		s.publish(events.EventPlayerInvited, booking, actor.Name, name)
	}
	return booking, nil
}

func (s *RosterService) publish(eventType string, booking *models.Booking, actor, target string) {
	payload := events.BookingEventPayload{
		BookingID:  booking.ID,
		Date:       booking.Date,
		Time:       booking.Time,
		Organizer:  booking.Organizer,
		Visibility: booking.Visibility,
		Actor:      actor,
		Target:     target,
	}
	if err := s.bus.PublishJSON(eventType, payload); err != nil {
		s.logger.Error().Err(err).Str("event_type", eventType).Msg("publish event error")
	}
}
