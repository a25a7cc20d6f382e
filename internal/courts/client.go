package courts

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"time"

	"padelclub/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ErrSlotConflict is the retryable failure the court backend returns;
// the caller keeps its local state and may resubmit.
var ErrSlotConflict = errors.New("the court was already booked for this slot, try another one")

// SimulatedClient stands in for the court backend: a fixed latency and
// a probabilistic conflict failure. On success it returns the draft
// with a server-assigned id.
type SimulatedClient struct {
	latency     time.Duration
	failureRate float64
	logger      *zerolog.Logger

	mu  sync.Mutex
	rng *rand.Rand
}

func NewSimulatedClient(latency time.Duration, failureRate float64, logger *zerolog.Logger) *SimulatedClient {
	return &SimulatedClient{
		latency:     latency,
		failureRate: failureRate,
		logger:      logger,
		rng:         rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// NewSeededClient pins the random source, for deterministic tests.
func NewSeededClient(latency time.Duration, failureRate float64, seed int64, logger *zerolog.Logger) *SimulatedClient {
	c := NewSimulatedClient(latency, failureRate, logger)
	c.rng = rand.New(rand.NewSource(seed))
	return c
}

// Create resolves after the configured latency, never earlier. There
// is no cancellation beyond the context and no retry here.
func (c *SimulatedClient) Create(ctx context.Context, draft models.Booking) (*models.Booking, error) {
	if c.latency > 0 {
		timer := time.NewTimer(c.latency)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	c.mu.Lock()
	roll := c.rng.Float64()
	c.mu.Unlock()

	if roll < c.failureRate {
		c.logger.Warn().
			Str("date", draft.Date).
			Str("time", draft.Time).
			Msg("court backend rejected booking")
		return nil, ErrSlotConflict
	}

	booking := draft
	booking.ID = uuid.NewString()
	c.logger.Debug().Str("booking_id", booking.ID).Msg("court backend confirmed booking")
	return &booking, nil
}
