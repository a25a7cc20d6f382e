package models

const (
	TypeCasual      = "casual"
	TypeCompetitive = "competitive"
)

const (
	VisibilityPublic  = "public"
	VisibilityPrivate = "private"
)

const (
	RolePlayer = "player"
	RoleOwner  = "owner"
)

const (
	// MaxPlayers is the court capacity; no roster may ever exceed it.
	MaxPlayers = 4

	// DefaultDuration is the duration used by the player booking flow.
	DefaultDuration = 60

	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

// Creation workflow steps, tracked per session.
const (
	StepSlotUnselected = "slot_unselected"
	StepSlotSelected   = "slot_selected"
	StepSubmitting     = "submitting"
)

const (
	// DefaultSessionTTL время жизни сессии
	DefaultSessionTTL = 24 * 60 * 60 // 24 hours in seconds

	// RateLimitRequests requests allowed per window
	RateLimitRequests = 20

	// RateLimitWindow rate limit window in seconds
	RateLimitWindow = 60
)

// DefaultTimeSlots is the fixed slot vocabulary used when the config
// does not override it.
var DefaultTimeSlots = []string{
	"09:00", "10:00", "11:00", "12:00",
	"13:00", "14:00", "15:00", "16:00",
	"17:00", "18:00", "19:00", "20:00",
	"21:00", "22:00",
}

// DefaultCasualLevels and DefaultCompetitiveLevels are the two level
// vocabularies; which one applies depends on the booking type.
var DefaultCasualLevels = []string{"Iniciación", "Intermedio", "Avanzado"}

var DefaultCompetitiveLevels = []string{"1ra", "2da", "3ra", "4ta", "5ta", "6ta", "7ma"}

// DefaultPricing maps duration keys to price and display label.
var DefaultPricing = map[string]PriceOption{
	"60": {Price: 20, Label: "1 hora"},
	"90": {Price: 28, Label: "1 hora 30 min"},
}
