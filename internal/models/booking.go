package models

// Booking is a reservation of one court slot with its player roster.
// The ID is assigned by the court backend on creation, never locally.
type Booking struct {
	ID         string   `json:"id" yaml:"id"`
	Date       string   `json:"date" yaml:"date"` // YYYY-MM-DD
	Time       string   `json:"time" yaml:"time"` // HH:MM, from the slot vocabulary
	Duration   int      `json:"duration" yaml:"duration"` // minutes, pricing table key
	Organizer  string   `json:"organizer" yaml:"organizer"`
	Players    []string `json:"players" yaml:"players"`
	Level      string   `json:"level" yaml:"level"`
	Type       string   `json:"type" yaml:"type"` // casual, competitive
	Visibility string   `json:"visibility" yaml:"visibility"` // public, private
	Notes      string   `json:"notes,omitempty" yaml:"notes,omitempty"`
	Price      float64  `json:"price" yaml:"price"`
}

// HasPlayer reports whether name is on the roster.
func (b *Booking) HasPlayer(name string) bool {
	for _, p := range b.Players {
		if p == name {
			return true
		}
	}
	return false
}

// Clone returns a deep copy so that roster mutations never alias a
// booking already handed out to readers.
func (b *Booking) Clone() *Booking {
	c := *b
	c.Players = append([]string(nil), b.Players...)
	return &c
}

// PriceOption is one pricing table entry, keyed by duration in minutes.
type PriceOption struct {
	Price float64 `json:"price" yaml:"price"`
	Label string  `json:"label" yaml:"label"`
}
