package domain

import (
	"context"
	"time"

	"padelclub/internal/models"
)

// BookingRepository is the authoritative booking collection. Every
// mutation replaces exactly one whole booking; untouched bookings keep
// referential identity so readers can change-detect by pointer.
type BookingRepository interface {
	Get(ctx context.Context, id string) (*models.Booking, error)
	List(ctx context.Context) []*models.Booking
	Create(ctx context.Context, booking *models.Booking) error
	Update(ctx context.Context, booking *models.Booking) error
	Delete(ctx context.Context, id string) error

	Join(ctx context.Context, id, actor string) (*models.Booking, bool, error)
	Leave(ctx context.Context, id, actor string) (*models.Booking, bool, error)
	Kick(ctx context.Context, id, actor, target string) (*models.Booking, bool, error)
	Invite(ctx context.Context, id, name string) (*models.Booking, bool, error)
}

// UserRepository is the in-memory user directory keyed by email.
type UserRepository interface {
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User) error
	All(ctx context.Context) []*models.User
}

// NotificationRepository is the append-only notification log, newest first.
type NotificationRepository interface {
	Append(ctx context.Context, email, message string) *models.Notification
	ListFor(ctx context.Context, email string) []*models.Notification
	MarkRead(ctx context.Context, email, id string) error
}

// StateRepository persists session and draft state with a TTL.
type StateRepository interface {
	GetState(ctx context.Context, token string) (*models.SessionState, error)
	SetState(ctx context.Context, state *models.SessionState) error
	ClearState(ctx context.Context, token string) error
	CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

// CourtCreator finalizes a booking draft at the (simulated) court
// backend. The returned booking carries the server-assigned id.
type CourtCreator interface {
	Create(ctx context.Context, draft models.Booking) (*models.Booking, error)
}

// EventPublisher fans domain events out to in-process subscribers.
type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}

// BookingService drives the creation workflow and owner management.
type BookingService interface {
	SelectDate(ctx context.Context, token, date string) (*models.SessionState, error)
	SelectTime(ctx context.Context, token, slot string) (*models.SessionState, error)
	Draft(ctx context.Context, token string) (*models.SessionState, error)
	CreatePlayerBooking(ctx context.Context, token string, actor *models.User, req PlayerBookingRequest) (*models.Booking, error)
	CreateOwnerBooking(ctx context.Context, token string, actor *models.User, req OwnerBookingRequest) (*models.Booking, error)
	UpdateBooking(ctx context.Context, actor *models.User, booking *models.Booking) error
	DeleteBooking(ctx context.Context, actor *models.User, id string, confirmed bool) error
	ListBookings(ctx context.Context, actor *models.User, view string) ([]*models.Booking, error)
	Availability(ctx context.Context, date string) (occupied, open []string, err error)
	Pricing() map[string]models.PriceOption
	UpdatePricing(ctx context.Context, actor *models.User, options map[string]models.PriceOption) error
}

// RosterService applies roster transitions on behalf of an actor.
type RosterService interface {
	Join(ctx context.Context, actor *models.User, bookingID string) (*models.Booking, error)
	Leave(ctx context.Context, actor *models.User, bookingID string) (*models.Booking, error)
	Kick(ctx context.Context, actor *models.User, bookingID, target string) (*models.Booking, error)
	Invite(ctx context.Context, actor *models.User, bookingID, name string) (*models.Booking, error)
}

// UserService covers authentication, sessions and profile management.
type UserService interface {
	Login(ctx context.Context, email, password string) (*models.User, string, error)
	Register(ctx context.Context, name, email, password string) (*models.User, string, error)
	Logout(ctx context.Context, token string) error
	Authenticate(ctx context.Context, token string) (*models.User, error)
	UpdateProfile(ctx context.Context, user *models.User) error
	ListUsers(ctx context.Context, actor *models.User) ([]*models.User, error)
	AddFriend(ctx context.Context, actor *models.User, friendEmail string) error
	RemoveFriend(ctx context.Context, actor *models.User, friendEmail string) error
	Notifications(ctx context.Context, email string) []*models.Notification
	MarkNotificationRead(ctx context.Context, email, id string) error
}

// PlayerBookingRequest is the player-flow form payload. Date and time
// come from the session draft, not the request.
type PlayerBookingRequest struct {
	Level      string
	Notes      string
	Visibility string
	Type       string
	Invited    []string
}

// OwnerBookingRequest is the owner-flow payload; it bypasses slot
// selection and supplies the full booking directly.
type OwnerBookingRequest struct {
	Date       string
	Time       string
	Duration   int
	Organizer  string
	Players    []string
	Level      string
	Notes      string
	Visibility string
	Type       string
	Price      *float64
}
