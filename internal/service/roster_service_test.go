package service

import (
	"context"
	"testing"

	"padelclub/internal/events"
	"padelclub/internal/logging"
	"padelclub/internal/models"
	"padelclub/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type rosterFixture struct {
	service       *RosterService
	bookings      *store.BookingStore
	notifications *store.NotificationLog
	published     []events.Event
}

func newRosterFixture(t *testing.T) *rosterFixture {
	t.Helper()
	f := &rosterFixture{
		bookings:      store.NewBookingStore(),
		notifications: store.NewNotificationLog(),
	}
	bus := events.NewBus()
	for _, et := range []string{events.EventPlayerJoined, events.EventPlayerLeft, events.EventPlayerKicked, events.EventPlayerInvited} {
		bus.Subscribe(et, func(e events.Event) { f.published = append(f.published, e) })
	}
	f.service = NewRosterService(f.bookings, f.notifications, bus, logging.Nop())

	require.NoError(t, f.bookings.Create(context.Background(), &models.Booking{
		ID: "b1", Date: "2026-09-02", Time: "10:00", Duration: 60,
		Organizer: "Ana Torres", Players: []string{"Ana Torres"},
		Type: models.TypeCasual, Visibility: models.VisibilityPublic, Price: 20,
	}))
	return f
}

func TestRosterService_Join(t *testing.T) {
	ctx := context.Background()

	t.Run("join notifies and publishes", func(t *testing.T) {
		f := newRosterFixture(t)
		luis := player("Luis Fer", "luis@example.com")

		booking, err := f.service.Join(ctx, luis, "b1")
		require.NoError(t, err)
		assert.Equal(t, []string{"Ana Torres", "Luis Fer"}, booking.Players)
		assert.Len(t, f.published, 1)

		list := f.notifications.ListFor(ctx, luis.Email)
		require.Len(t, list, 1)
		assert.Contains(t, list[0].Message, "Ana Torres")
	})

	t.Run("no-op join stays silent", func(t *testing.T) {
		f := newRosterFixture(t)
		ana := player("Ana Torres", "ana@example.com")

		booking, err := f.service.Join(ctx, ana, "b1")
		require.NoError(t, err)
		assert.Equal(t, []string{"Ana Torres"}, booking.Players)
		assert.Empty(t, f.published)
		assert.Empty(t, f.notifications.ListFor(ctx, ana.Email))
	})

	t.Run("unknown booking errors", func(t *testing.T) {
		f := newRosterFixture(t)
		_, err := f.service.Join(ctx, player("Luis", "luis@example.com"), "missing")
		assert.ErrorIs(t, err, store.ErrNotFound)
	})
}

func TestRosterService_Leave(t *testing.T) {
	ctx := context.Background()

	t.Run("leave publishes once", func(t *testing.T) {
		f := newRosterFixture(t)
		luis := player("Luis Fer", "luis@example.com")
		_, err := f.service.Join(ctx, luis, "b1")
		require.NoError(t, err)
		f.published = nil

		booking, err := f.service.Leave(ctx, luis, "b1")
		require.NoError(t, err)
		assert.Equal(t, []string{"Ana Torres"}, booking.Players)
		assert.Len(t, f.published, 1)

		_, err = f.service.Leave(ctx, luis, "b1")
		require.NoError(t, err)
		assert.Len(t, f.published, 1)
	})

	t.Run("organizer may leave their own booking", func(t *testing.T) {
		f := newRosterFixture(t)
		ana := player("Ana Torres", "ana@example.com")

		booking, err := f.service.Leave(ctx, ana, "b1")
		require.NoError(t, err)
		assert.Empty(t, booking.Players)
		assert.Equal(t, "Ana Torres", booking.Organizer)
	})
}

func TestRosterService_Kick(t *testing.T) {
	ctx := context.Background()

	t.Run("organizer kicks", func(t *testing.T) {
		f := newRosterFixture(t)
		_, err := f.service.Join(ctx, player("Luis Fer", "luis@example.com"), "b1")
		require.NoError(t, err)
		f.published = nil

		booking, err := f.service.Kick(ctx, player("Ana Torres", "ana@example.com"), "b1", "Luis Fer")
		require.NoError(t, err)
		assert.Equal(t, []string{"Ana Torres"}, booking.Players)
		assert.Len(t, f.published, 1)
	})

	t.Run("non-organizer kick is a silent no-op", func(t *testing.T) {
		f := newRosterFixture(t)
		_, err := f.service.Join(ctx, player("Luis Fer", "luis@example.com"), "b1")
		require.NoError(t, err)
		f.published = nil

		booking, err := f.service.Kick(ctx, player("Luis Fer", "luis@example.com"), "b1", "Ana Torres")
		require.NoError(t, err)
		assert.Equal(t, []string{"Ana Torres", "Luis Fer"}, booking.Players)
		assert.Empty(t, f.published)
	})
}

func TestRosterService_Invite(t *testing.T) {
	ctx := context.Background()
	f := newRosterFixture(t)
	ana := player("Ana Torres", "ana@example.com")

	booking, err := f.service.Invite(ctx, ana, "b1", "Marta G.")
	require.NoError(t, err)
	assert.Equal(t, []string{"Ana Torres", "Marta G."}, booking.Players)
	assert.Len(t, f.published, 1)

	// fill up, then invites go silent
	_, err = f.service.Invite(ctx, ana, "b1", "Juan Pérez")
	require.NoError(t, err)
	_, err = f.service.Invite(ctx, ana, "b1", "Luis Fer")
	require.NoError(t, err)
	f.published = nil

	booking, err = f.service.Invite(ctx, ana, "b1", "Pedro")
	require.NoError(t, err)
	assert.Len(t, booking.Players, models.MaxPlayers)
	assert.Empty(t, f.published)
}
