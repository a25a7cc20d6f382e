package pricing

import (
	"errors"
	"fmt"
	"strconv"
	"sync"

	"padelclub/internal/models"
)

var (
	ErrEmptyTable      = errors.New("pricing table must not be empty")
	ErrUnknownDuration = errors.New("no pricing for this duration")
	ErrInvalidOption   = errors.New("invalid pricing entry")
)

// Table maps duration keys ("60", "90") to price and label. Reads come
// from the creation flows; the owner may replace the whole table.
type Table struct {
	mu      sync.RWMutex
	options map[string]models.PriceOption
}

func NewTable(options map[string]models.PriceOption) *Table {
	t := &Table{options: make(map[string]models.PriceOption, len(options))}
	for k, v := range options {
		t.options[k] = v
	}
	return t
}

// Get looks up the option for a duration in minutes.
func (t *Table) Get(duration int) (models.PriceOption, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	opt, ok := t.options[strconv.Itoa(duration)]
	if !ok {
		return models.PriceOption{}, ErrUnknownDuration
	}
	return opt, nil
}

// Options returns a copy of the table.
func (t *Table) Options() map[string]models.PriceOption {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make(map[string]models.PriceOption, len(t.options))
	for k, v := range t.options {
		out[k] = v
	}
	return out
}

// Replace swaps in a new table after validation.
func (t *Table) Replace(options map[string]models.PriceOption) error {
	if len(options) == 0 {
		return ErrEmptyTable
	}
	for key, opt := range options {
		if _, err := strconv.Atoi(key); err != nil {
			return fmt.Errorf("%w: key %q is not a duration in minutes", ErrInvalidOption, key)
		}
		if opt.Price <= 0 {
			return fmt.Errorf("%w: %q has non-positive price", ErrInvalidOption, key)
		}
	}

	replacement := make(map[string]models.PriceOption, len(options))
	for k, v := range options {
		replacement[k] = v
	}

	t.mu.Lock()
	t.options = replacement
	t.mu.Unlock()
	return nil
}
