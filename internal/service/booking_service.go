package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"padelclub/internal/config"
	"padelclub/internal/domain"
	"padelclub/internal/events"
	"padelclub/internal/metrics"
	"padelclub/internal/models"
	"padelclub/internal/pricing"
	"padelclub/internal/schedule"

	"github.com/rs/zerolog"
)

var (
	ErrNoSlotSelected     = errors.New("select a date and time first")
	ErrSlotOccupied       = errors.New("this slot is already booked")
	ErrUnknownSlot        = errors.New("time is not a bookable slot")
	ErrInvalidType        = errors.New("type must be casual or competitive")
	ErrInvalidVisibility  = errors.New("visibility must be public or private")
	ErrTooManyPlayers     = fmt.Errorf("a booking holds at most %d players", models.MaxPlayers)
	ErrSubmissionInFlight = errors.New("a submission is already in flight")
	ErrOwnerOnly          = errors.New("operation requires the owner role")
	ErrConfirmationNeeded = errors.New("deletion requires explicit confirmation")
	ErrMissingOrganizer   = errors.New("organizer name is required")
	ErrSessionExpired     = errors.New("session expired")
	ErrUnknownView        = errors.New("unknown bookings view")
)

// BookingService orchestrates the creation workflow and the owner's
// booking management. All validation failures are returned before the
// remote call; a remote failure leaves every piece of local state
// untouched so the user may resubmit.
type BookingService struct {
	bookings      domain.BookingRepository
	notifications domain.NotificationRepository
	states        domain.StateRepository
	courts        domain.CourtCreator
	pricing       *pricing.Table
	venue         config.VenueConfig
	bus           domain.EventPublisher
	logger        *zerolog.Logger
}

func NewBookingService(
	bookings domain.BookingRepository,
	notifications domain.NotificationRepository,
	states domain.StateRepository,
	courts domain.CourtCreator,
	table *pricing.Table,
	venue config.VenueConfig,
	bus domain.EventPublisher,
	logger *zerolog.Logger,
) *BookingService {
	return &BookingService{
		bookings:      bookings,
		notifications: notifications,
		states:        states,
		courts:        courts,
		pricing:       table,
		venue:         venue,
		bus:           bus,
		logger:        logger,
	}
}

// SelectDate starts or restarts slot selection. Picking a new date
// always drops a previously selected time.
func (s *BookingService) SelectDate(ctx context.Context, token, date string) (*models.SessionState, error) {
	state, err := s.session(ctx, token)
	if err != nil {
		return nil, err
	}
	if state.Step == models.StepSubmitting {
		return nil, ErrSubmissionInFlight
	}
	if err := s.venue.ValidateDate(date, time.Now()); err != nil {
		return nil, err
	}

	state.Set("date", date)
	delete(state.Data, "time")
	state.Step = models.StepSlotUnselected
	if err := s.states.SetState(ctx, state); err != nil {
		return nil, err
	}
	return state, nil
}

// SelectTime completes slot selection against the availability index.
func (s *BookingService) SelectTime(ctx context.Context, token, slot string) (*models.SessionState, error) {
	state, err := s.session(ctx, token)
	if err != nil {
		return nil, err
	}
	if state.Step == models.StepSubmitting {
		return nil, ErrSubmissionInFlight
	}
	date := state.GetString("date")
	if date == "" {
		return nil, ErrNoSlotSelected
	}
	if !s.venue.HasSlot(slot) {
		return nil, ErrUnknownSlot
	}

	ix := schedule.Build(s.bookings.List(ctx), "")
	if ix.IsOccupied(date, slot) {
		return nil, ErrSlotOccupied
	}

	state.Set("time", slot)
	state.Step = models.StepSlotSelected
	if err := s.states.SetState(ctx, state); err != nil {
		return nil, err
	}
	return state, nil
}

// Draft returns the current workflow state for a session.
func (s *BookingService) Draft(ctx context.Context, token string) (*models.SessionState, error) {
	return s.session(ctx, token)
}

// CreatePlayerBooking submits the player-flow form. Date and time come
// from the session draft; the roster is built from the organizer plus,
// for private bookings, the non-blank invited names.
func (s *BookingService) CreatePlayerBooking(ctx context.Context, token string, actor *models.User, req domain.PlayerBookingRequest) (*models.Booking, error) {
	state, err := s.session(ctx, token)
	if err != nil {
		return nil, err
	}
	switch state.Step {
	case models.StepSubmitting:
		return nil, ErrSubmissionInFlight
	case models.StepSlotSelected:
	default:
		return nil, ErrNoSlotSelected
	}

	date := state.GetString("date")
	slot := state.GetString("time")

	if err := validateType(req.Type); err != nil {
		return nil, err
	}
	if err := validateVisibility(req.Visibility); err != nil {
		return nil, err
	}

	players, err := buildRoster(actor.Name, req.Visibility, req.Invited)
	if err != nil {
		return nil, err
	}

	opt, err := s.pricing.Get(s.venue.DefaultDuration)
	if err != nil {
		return nil, err
	}

	draft := models.Booking{
		Date:       date,
		Time:       slot,
		Duration:   s.venue.DefaultDuration,
		Organizer:  actor.Name,
		Players:    players,
		Level:      s.venue.NormalizeLevel(req.Type, req.Level),
		Type:       req.Type,
		Visibility: req.Visibility,
		Notes:      req.Notes,
		Price:      opt.Price,
	}

	booking, err := s.submit(ctx, state, draft)
	if err != nil {
		return nil, err
	}

	metrics.IncBookingCreated("player")
	s.notifications.Append(ctx, actor.Email,
		fmt.Sprintf("You booked a court for %s at %s.", booking.Date, booking.Time))
	return booking, nil
}

// CreateOwnerBooking bypasses slot selection: the owner supplies the
// full payload, including organizer, duration and an optional price
// override.
func (s *BookingService) CreateOwnerBooking(ctx context.Context, token string, actor *models.User, req domain.OwnerBookingRequest) (*models.Booking, error) {
	if !actor.IsOwner() {
		return nil, ErrOwnerOnly
	}

	state, err := s.session(ctx, token)
	if err != nil {
		return nil, err
	}
	if state.Step == models.StepSubmitting {
		return nil, ErrSubmissionInFlight
	}

	if strings.TrimSpace(req.Organizer) == "" {
		return nil, ErrMissingOrganizer
	}
	if !s.venue.HasSlot(req.Time) {
		return nil, ErrUnknownSlot
	}
	if err := s.venue.ValidateDate(req.Date, time.Now()); err != nil {
		return nil, err
	}
	if err := validateType(req.Type); err != nil {
		return nil, err
	}
	if err := validateVisibility(req.Visibility); err != nil {
		return nil, err
	}
	if len(req.Players) > models.MaxPlayers {
		return nil, ErrTooManyPlayers
	}

	duration := req.Duration
	if duration == 0 {
		duration = s.venue.DefaultDuration
	}

	var price float64
	if req.Price != nil {
		price = *req.Price
	} else {
		opt, perr := s.pricing.Get(duration)
		if perr != nil {
			return nil, perr
		}
		price = opt.Price
	}

	players := req.Players
	if len(players) == 0 {
		players = []string{req.Organizer}
	}

	draft := models.Booking{
		Date:       req.Date,
		Time:       req.Time,
		Duration:   duration,
		Organizer:  req.Organizer,
		Players:    players,
		Level:      s.venue.NormalizeLevel(req.Type, req.Level),
		Type:       req.Type,
		Visibility: req.Visibility,
		Notes:      req.Notes,
		Price:      price,
	}

	booking, err := s.submit(ctx, state, draft)
	if err != nil {
		return nil, err
	}

	metrics.IncBookingCreated("owner")
	return booking, nil
}

// submit guards the single-submission-in-flight invariant, performs
// the remote call and commits to the store only after confirmation.
func (s *BookingService) submit(ctx context.Context, state *models.SessionState, draft models.Booking) (*models.Booking, error) {
	prevStep := state.Step
	state.Step = models.StepSubmitting
	if err := s.states.SetState(ctx, state); err != nil {
		return nil, err
	}

	booking, err := s.courts.Create(ctx, draft)
	if err != nil {
		metrics.IncBookingFailure()
		state.Step = prevStep
		if serr := s.states.SetState(ctx, state); serr != nil {
			s.logger.Error().Err(serr).Msg("failed to restore workflow step")
		}
		return nil, err
	}

	if err := s.bookings.Create(ctx, booking); err != nil {
		// Someone grabbed the slot between the pre-check and the
		// remote confirmation; surface it like a remote conflict.
		metrics.IncBookingFailure()
		state.Step = prevStep
		if serr := s.states.SetState(ctx, state); serr != nil {
			s.logger.Error().Err(serr).Msg("failed to restore workflow step")
		}
		return nil, err
	}

	state.ClearDraft()
	if err := s.states.SetState(ctx, state); err != nil {
		s.logger.Error().Err(err).Msg("failed to clear booking draft")
	}

	s.publishBooking(events.EventBookingCreated, booking, booking.Organizer, "")
	s.logger.Info().
		Str("booking_id", booking.ID).
		Str("date", booking.Date).
		Str("time", booking.Time).
		Msg("booking created")
	return booking, nil
}

// UpdateBooking fully replaces a booking; owner only.
func (s *BookingService) UpdateBooking(ctx context.Context, actor *models.User, booking *models.Booking) error {
	if !actor.IsOwner() {
		return ErrOwnerOnly
	}
	if len(booking.Players) > models.MaxPlayers {
		return ErrTooManyPlayers
	}
	booking.Level = s.venue.NormalizeLevel(booking.Type, booking.Level)
	if err := s.bookings.Update(ctx, booking); err != nil {
		return err
	}
	s.publishBooking(events.EventBookingUpdated, booking, actor.Name, "")
	return nil
}

// DeleteBooking removes a booking after the confirmation gate; the
// gate lives here so no transport can skip it.
func (s *BookingService) DeleteBooking(ctx context.Context, actor *models.User, id string, confirmed bool) error {
	if !actor.IsOwner() {
		return ErrOwnerOnly
	}
	if !confirmed {
		return ErrConfirmationNeeded
	}
	booking, err := s.bookings.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.bookings.Delete(ctx, id); err != nil {
		return err
	}
	s.publishBooking(events.EventBookingDeleted, booking, actor.Name, "")
	return nil
}

// ListBookings returns the requested partition: public, mine, or the
// full collection for the owner.
func (s *BookingService) ListBookings(ctx context.Context, actor *models.User, view string) ([]*models.Booking, error) {
	snapshot := s.bookings.List(ctx)
	switch view {
	case "", "public":
		return schedule.Build(snapshot, actor.Name).Public, nil
	case "mine":
		return schedule.Build(snapshot, actor.Name).Mine, nil
	case "all":
		if !actor.IsOwner() {
			return nil, ErrOwnerOnly
		}
		return snapshot, nil
	default:
		return nil, fmt.Errorf("%w %q", ErrUnknownView, view)
	}
}

// Availability reports occupied and open slots for one date.
func (s *BookingService) Availability(ctx context.Context, date string) ([]string, []string, error) {
	if _, err := time.Parse(models.DateLayout, date); err != nil {
		return nil, nil, fmt.Errorf("%w %q: expected YYYY-MM-DD", config.ErrInvalidDate, date)
	}
	ix := schedule.Build(s.bookings.List(ctx), "")
	occupied := append([]string(nil), ix.BookedSlots[date]...)
	return occupied, ix.OpenSlots(date, s.venue.TimeSlots), nil
}

// Pricing returns the current table.
func (s *BookingService) Pricing() map[string]models.PriceOption {
	return s.pricing.Options()
}

// UpdatePricing replaces the table; owner only.
func (s *BookingService) UpdatePricing(ctx context.Context, actor *models.User, options map[string]models.PriceOption) error {
	if !actor.IsOwner() {
		return ErrOwnerOnly
	}
	if err := s.pricing.Replace(options); err != nil {
		return err
	}
	if err := s.bus.PublishJSON(events.EventPricingUpdated, options); err != nil {
		s.logger.Error().Err(err).Msg("publish pricing event error")
	}
	return nil
}

func (s *BookingService) session(ctx context.Context, token string) (*models.SessionState, error) {
	state, err := s.states.GetState(ctx, token)
	if err != nil {
		return nil, err
	}
	if state == nil {
		return nil, ErrSessionExpired
	}
	if state.Step == "" {
		state.Step = models.StepSlotUnselected
	}
	return state, nil
}

func (s *BookingService) publishBooking(eventType string, booking *models.Booking, actor, target string) {
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

func validateType(bookingType string) error {
	if bookingType != models.TypeCasual && bookingType != models.TypeCompetitive {
		return ErrInvalidType
	}
	return nil
}

func validateVisibility(visibility string) error {
	if visibility != models.VisibilityPublic && visibility != models.VisibilityPrivate {
		return ErrInvalidVisibility
	}
	return nil
}

// buildRoster assembles the player list client-side before submission.
// Private bookings take the organizer plus non-blank invitees, rejected
// with a descriptive error when over capacity; public bookings start
// with the organizer alone and fill up via joins.
func buildRoster(organizer, visibility string, invited []string) ([]string, error) {
	players := []string{organizer}
	if visibility != models.VisibilityPrivate {
		return players, nil
	}
	for _, name := range invited {
		if trimmed := strings.TrimSpace(name); trimmed != "" {
			players = append(players, trimmed)
		}
	}
	if len(players) > models.MaxPlayers {
		return nil, ErrTooManyPlayers
	}
	return players, nil
}
