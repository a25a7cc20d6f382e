package store

import (
	"context"
	"fmt"
	"sync"

	"padelclub/internal/models"
)

// BookingStore is the authoritative in-memory booking collection.
//
// Mutations replace the whole booking whose id matches and leave every
// other stored booking referentially unchanged; List snapshots can be
// compared by pointer for cheap change detection.
type BookingStore struct {
	mu    sync.RWMutex
	byID  map[string]*models.Booking
	order []string
}

func NewBookingStore() *BookingStore {
	return &BookingStore{byID: make(map[string]*models.Booking)}
}

// Seed loads sample bookings at startup. Same rules as Create.
func (s *BookingStore) Seed(ctx context.Context, bookings []models.Booking) error {
	for i := range bookings {
		b := bookings[i]
		if err := s.Create(ctx, &b); err != nil {
			return fmt.Errorf("seed booking %s: %w", b.ID, err)
		}
	}
	return nil
}

// Create inserts a finalized booking. The slot must be free: the venue
// has a single court, so (date, time) exclusivity is enforced here and
// not only in the picker UI.
func (s *BookingStore) Create(ctx context.Context, booking *models.Booking) error {
	if booking.ID == "" {
		return fmt.Errorf("booking without id")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byID[booking.ID]; ok {
		return ErrAlreadyExists
	}
	for _, id := range s.order {
		other := s.byID[id]
		if other.Date == booking.Date && other.Time == booking.Time {
			return ErrSlotTaken
		}
	}

	s.byID[booking.ID] = booking.Clone()
	s.order = append(s.order, booking.ID)
	return nil
}

func (s *BookingStore) Get(ctx context.Context, id string) (*models.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	booking, ok := s.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return booking, nil
}

// List returns a snapshot in insertion order. The returned bookings
// are the stored values; callers must treat them as read-only.
func (s *BookingStore) List(ctx context.Context) []*models.Booking {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.Booking, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.byID[id])
	}
	return out
}

// Update replaces the whole booking with a matching id.
func (s *BookingStore) Update(ctx context.Context, booking *models.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byID[booking.ID]; !ok {
		return ErrNotFound
	}
	s.byID[booking.ID] = booking.Clone()
	return nil
}

func (s *BookingStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byID[id]; !ok {
		return ErrNotFound
	}
	delete(s.byID, id)
	for i, existing := range s.order {
		if existing == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

// Join appends actor to a public roster with free capacity. Re-joining
// and full or private rosters are silent no-ops, not errors. The bool
// reports whether the booking changed.
func (s *BookingStore) Join(ctx context.Context, id, actor string) (*models.Booking, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	booking, ok := s.byID[id]
	if !ok {
		return nil, false, ErrNotFound
	}
	if booking.Visibility != models.VisibilityPublic ||
		len(booking.Players) >= models.MaxPlayers ||
		booking.HasPlayer(actor) {
		return booking, false, nil
	}

	updated := booking.Clone()
	updated.Players = append(updated.Players, actor)
	s.byID[id] = updated
	return updated, true, nil
}

// Leave removes actor from the roster if present. The organizer may
// leave their own booking; organizer-of-record is not reassigned.
func (s *BookingStore) Leave(ctx context.Context, id, actor string) (*models.Booking, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	booking, ok := s.byID[id]
	if !ok {
		return nil, false, ErrNotFound
	}
	if !booking.HasPlayer(actor) {
		return booking, false, nil
	}

	updated := booking.Clone()
	updated.Players = removePlayer(updated.Players, actor)
	s.byID[id] = updated
	return updated, true, nil
}

// Kick removes target from the roster. Only the organizer may kick,
// and never themselves; unauthorized calls are silent no-ops.
func (s *BookingStore) Kick(ctx context.Context, id, actor, target string) (*models.Booking, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	booking, ok := s.byID[id]
	if !ok {
		return nil, false, ErrNotFound
	}
	if actor != booking.Organizer || target == actor || !booking.HasPlayer(target) {
		return booking, false, nil
	}

	updated := booking.Clone()
	updated.Players = removePlayer(updated.Players, target)
	s.byID[id] = updated
	return updated, true, nil
}

// Invite appends name verbatim while capacity allows. Duplicate names
// are permitted; a full roster is a no-op.
func (s *BookingStore) Invite(ctx context.Context, id, name string) (*models.Booking, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	booking, ok := s.byID[id]
	if !ok {
		return nil, false, ErrNotFound
	}
	if name == "" || len(booking.Players) >= models.MaxPlayers {
		return booking, false, nil
	}

	updated := booking.Clone()
	updated.Players = append(updated.Players, name)
	s.byID[id] = updated
	return updated, true, nil
}

func removePlayer(players []string, name string) []string {
	out := players[:0]
	for _, p := range players {
		if p != name {
			out = append(out, p)
		}
	}
	return out
}
