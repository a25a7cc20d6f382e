package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"padelclub/internal/models"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	App          AppConfig        `yaml:"app"`
	Server       ServerConfig     `yaml:"server"`
	Redis        RedisConfig      `yaml:"redis"`
	Logging      LoggingConfig    `yaml:"logging"`
	Monitoring   MonitoringConfig `yaml:"monitoring"`
	Venue        VenueConfig      `yaml:"venue"`
	Courts       CourtsConfig     `yaml:"courts"`
	RateLimit    RateLimitConfig  `yaml:"rate_limit"`
	Session      SessionConfig    `yaml:"session"`
	SeedUsers    []models.User    `yaml:"seed_users"`
	SeedBookings []models.Booking `yaml:"seed_bookings"`
}

type AppConfig struct {
	Name        string `yaml:"name"`
	Environment string `yaml:"environment"`
	Version     string `yaml:"version"`
}

type ServerConfig struct {
	Port                 int `yaml:"port"`
	ReadHeaderTimeoutSec int `yaml:"read_header_timeout_sec"`
	WriteTimeoutSec      int `yaml:"write_timeout_sec"`
}

type RedisConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
}

type LoggingConfig struct {
	Level    string `yaml:"level"`
	Format   string `yaml:"format"`
	Output   string `yaml:"output"`
	FilePath string `yaml:"file_path"`
}

type MonitoringConfig struct {
	PrometheusEnabled bool `yaml:"prometheus_enabled"`
	PrometheusPort    int  `yaml:"prometheus_port"`
}

// VenueConfig carries the fixed vocabularies of the court: bookable
// time slots, the two level lists and the pricing table.
type VenueConfig struct {
	TimeSlots         []string                      `yaml:"time_slots"`
	CasualLevels      []string                      `yaml:"casual_levels"`
	CompetitiveLevels []string                      `yaml:"competitive_levels"`
	Pricing           map[string]models.PriceOption `yaml:"pricing"`
	MaxBookingDays    int                           `yaml:"max_booking_days"`
	DefaultDuration   int                           `yaml:"default_duration"`
}

// CourtsConfig tunes the simulated court backend. Pointer fields keep
// an explicit zero (instant, always-succeeding backend) distinct from
// an absent value.
type CourtsConfig struct {
	LatencyMS   *int     `yaml:"latency_ms"`
	FailureRate *float64 `yaml:"failure_rate"`
}

type RateLimitConfig struct {
	RPS           float64 `yaml:"rps"`
	Burst         int     `yaml:"burst"`
	AuthRequests  int     `yaml:"auth_requests"`
	AuthWindowSec int     `yaml:"auth_window_sec"`
}

type SessionConfig struct {
	TTLHours int `yaml:"ttl_hours"`
}

func Load(configPath string) (*Config, error) {
	// .env is optional; only a present-but-broken file is an error
	if err := godotenv.Load(".env"); err != nil && !os.IsNotExist(err) {
		return nil, err
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	// Подстановка переменных окружения в YAML
	expandedData := []byte(os.ExpandEnv(string(data)))

	var config Config
	if err := yaml.Unmarshal(expandedData, &config); err != nil {
		return nil, err
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

func (c *Config) Validate() error {
	if len(c.Venue.TimeSlots) == 0 {
		return errors.New("venue time slots are required")
	}
	for _, slot := range c.Venue.TimeSlots {
		if _, err := time.Parse(models.TimeLayout, slot); err != nil {
			return fmt.Errorf("invalid time slot %q: %w", slot, err)
		}
	}
	if len(c.Venue.CasualLevels) == 0 || len(c.Venue.CompetitiveLevels) == 0 {
		return errors.New("both level vocabularies must be non-empty")
	}
	for key, opt := range c.Venue.Pricing {
		if _, err := strconv.Atoi(key); err != nil {
			return fmt.Errorf("pricing key %q is not a duration in minutes", key)
		}
		if opt.Price <= 0 {
			return fmt.Errorf("pricing entry %q has non-positive price", key)
		}
	}
	if _, ok := c.Venue.Pricing[strconv.Itoa(c.Venue.DefaultDuration)]; !ok {
		return fmt.Errorf("default duration %d has no pricing entry", c.Venue.DefaultDuration)
	}
	if c.Courts.FailureRate != nil && (*c.Courts.FailureRate < 0 || *c.Courts.FailureRate > 1) {
		return errors.New("courts failure_rate must be within [0,1]")
	}
	if err := c.validateSeeds(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateSeeds() error {
	emails := make(map[string]bool)
	for _, u := range c.SeedUsers {
		if u.Email == "" || u.Name == "" {
			return fmt.Errorf("seed user %q must have name and email", u.Email)
		}
		if emails[u.Email] {
			return fmt.Errorf("duplicate seed user email: %s", u.Email)
		}
		emails[u.Email] = true
		if u.Role != models.RolePlayer && u.Role != models.RoleOwner {
			return fmt.Errorf("seed user %s has unknown role %q", u.Email, u.Role)
		}
	}

	ids := make(map[string]bool)
	for _, b := range c.SeedBookings {
		if b.ID == "" {
			return errors.New("seed bookings must carry ids")
		}
		if ids[b.ID] {
			return fmt.Errorf("duplicate seed booking id: %s", b.ID)
		}
		ids[b.ID] = true
		if !c.Venue.HasSlot(b.Time) {
			return fmt.Errorf("seed booking %s uses unknown slot %q", b.ID, b.Time)
		}
		if len(b.Players) > models.MaxPlayers {
			return fmt.Errorf("seed booking %s exceeds %d players", b.ID, models.MaxPlayers)
		}
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.ReadHeaderTimeoutSec == 0 {
		c.Server.ReadHeaderTimeoutSec = 5
	}
	if c.Server.WriteTimeoutSec == 0 {
		c.Server.WriteTimeoutSec = 15
	}
	if c.Monitoring.PrometheusEnabled && c.Monitoring.PrometheusPort == 0 {
		c.Monitoring.PrometheusPort = 9090
	}

	if len(c.Venue.TimeSlots) == 0 {
		c.Venue.TimeSlots = models.DefaultTimeSlots
	}
	if len(c.Venue.CasualLevels) == 0 {
		c.Venue.CasualLevels = models.DefaultCasualLevels
	}
	if len(c.Venue.CompetitiveLevels) == 0 {
		c.Venue.CompetitiveLevels = models.DefaultCompetitiveLevels
	}
	if len(c.Venue.Pricing) == 0 {
		c.Venue.Pricing = models.DefaultPricing
	}
	if c.Venue.MaxBookingDays == 0 {
		c.Venue.MaxBookingDays = 365
	}
	if c.Venue.DefaultDuration == 0 {
		c.Venue.DefaultDuration = models.DefaultDuration
	}

	if c.Courts.LatencyMS == nil {
		latency := 1000
		c.Courts.LatencyMS = &latency
	}
	if c.Courts.FailureRate == nil {
		rate := 0.1
		c.Courts.FailureRate = &rate
	}

	if c.RateLimit.RPS == 0 {
		c.RateLimit.RPS = float64(models.RateLimitRequests) / float64(models.RateLimitWindow)
	}
	if c.RateLimit.Burst == 0 {
		c.RateLimit.Burst = 5
	}
	if c.RateLimit.AuthRequests == 0 {
		c.RateLimit.AuthRequests = models.RateLimitRequests
	}
	if c.RateLimit.AuthWindowSec == 0 {
		c.RateLimit.AuthWindowSec = models.RateLimitWindow
	}
	if c.Session.TTLHours == 0 {
		c.Session.TTLHours = models.DefaultSessionTTL / 3600
	}
}

// HasSlot reports whether t belongs to the slot vocabulary.
func (v VenueConfig) HasSlot(t string) bool {
	for _, slot := range v.TimeSlots {
		if slot == t {
			return true
		}
	}
	return false
}

// LevelsForType returns the vocabulary implied by the booking type.
func (v VenueConfig) LevelsForType(bookingType string) []string {
	if bookingType == models.TypeCompetitive {
		return v.CompetitiveLevels
	}
	return v.CasualLevels
}

// DefaultLevel is the first entry of the type's vocabulary; the form
// falls back to it whenever the match type switches.
func (v VenueConfig) DefaultLevel(bookingType string) string {
	levels := v.LevelsForType(bookingType)
	if len(levels) == 0 {
		return ""
	}
	return levels[0]
}

// NormalizeLevel keeps level if it belongs to the type's vocabulary,
// otherwise resets it to the vocabulary head.
func (v VenueConfig) NormalizeLevel(bookingType, level string) string {
	for _, l := range v.LevelsForType(bookingType) {
		if l == level {
			return level
		}
	}
	return v.DefaultLevel(bookingType)
}

// ErrInvalidDate marks a date the booking window rejects; transports
// may map it to a client error.
var ErrInvalidDate = errors.New("invalid date")

// ValidateDate checks format and the booking window.
func (v VenueConfig) ValidateDate(date string, now time.Time) error {
	d, err := time.Parse(models.DateLayout, date)
	if err != nil {
		return fmt.Errorf("%w %q: expected YYYY-MM-DD", ErrInvalidDate, date)
	}
	if d.Before(now.AddDate(0, 0, -1)) {
		return fmt.Errorf("%w: date is in the past", ErrInvalidDate)
	}
	if d.After(now.AddDate(0, 0, v.MaxBookingDays)) {
		return fmt.Errorf("%w: date is more than %d days ahead", ErrInvalidDate, v.MaxBookingDays)
	}
	return nil
}
