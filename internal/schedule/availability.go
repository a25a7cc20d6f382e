package schedule

import "padelclub/internal/models"

// Index is derived from a booking snapshot: which slots are occupied
// per date, plus the public and "mine" partitions for one viewer. It
// is a pure value, recomputed whenever the collection or viewer
// changes, and never written back to.
type Index struct {
	// BookedSlots maps date to occupied slot times in first-seen
	// order. A slot is binary occupied/free; if several bookings ever
	// share it, it is still listed once.
	BookedSlots map[string][]string

	Public []*models.Booking
	Mine   []*models.Booking
}

// Build scans the collection once. viewerName may be empty when only
// occupancy matters.
func Build(bookings []*models.Booking, viewerName string) *Index {
	ix := &Index{BookedSlots: make(map[string][]string)}

	seen := make(map[string]map[string]bool)
	for _, b := range bookings {
		if seen[b.Date] == nil {
			seen[b.Date] = make(map[string]bool)
		}
		if !seen[b.Date][b.Time] {
			seen[b.Date][b.Time] = true
			ix.BookedSlots[b.Date] = append(ix.BookedSlots[b.Date], b.Time)
		}

		if b.Visibility == models.VisibilityPublic {
			ix.Public = append(ix.Public, b)
		}
		if viewerName != "" && b.HasPlayer(viewerName) {
			ix.Mine = append(ix.Mine, b)
		}
	}
	return ix
}

// IsOccupied reports whether the (date, time) slot is taken.
func (ix *Index) IsOccupied(date, slot string) bool {
	for _, t := range ix.BookedSlots[date] {
		if t == slot {
			return true
		}
	}
	return false
}

// OpenSlots filters the slot vocabulary down to free times on a date,
// preserving vocabulary order.
func (ix *Index) OpenSlots(date string, vocabulary []string) []string {
	open := make([]string, 0, len(vocabulary))
	for _, slot := range vocabulary {
		if !ix.IsOccupied(date, slot) {
			open = append(open, slot)
		}
	}
	return open
}
