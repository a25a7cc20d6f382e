package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"padelclub/internal/config"
	"padelclub/internal/courts"
	"padelclub/internal/events"
	"padelclub/internal/logging"
	"padelclub/internal/metrics"
	"padelclub/internal/models"
	"padelclub/internal/pricing"
	"padelclub/internal/repository"
	"padelclub/internal/service"
	"padelclub/internal/store"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type apiFixture struct {
	ts       *httptest.Server
	bookings *store.BookingStore
	users    *store.UserStore
}

// newAPIFixture wires the whole stack behind an httptest server with a
// deterministic court backend (no latency, no failures).
func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()

	venue := config.VenueConfig{
		TimeSlots:         models.DefaultTimeSlots,
		CasualLevels:      models.DefaultCasualLevels,
		CompetitiveLevels: models.DefaultCompetitiveLevels,
		Pricing:           models.DefaultPricing,
		MaxBookingDays:    365,
		DefaultDuration:   models.DefaultDuration,
	}

	bookings := store.NewBookingStore()
	users := store.NewUserStore()
	notifications := store.NewNotificationLog()
	states := repository.NewMemoryStateRepository(time.Hour)
	bus := events.NewBus()
	table := pricing.NewTable(venue.Pricing)
	courtClient := courts.NewSeededClient(0, 0, 1, logging.Nop())

	require.NoError(t, users.Seed(context.Background(), []models.User{
		{Name: "Carlos Ríos", Email: "owner@padelclub.es", Password: "owner-pass", Role: models.RoleOwner},
		{Name: "Ana Torres", Email: "ana@example.com", Password: "demo1234", Role: models.RolePlayer},
		{Name: "Luis Fer", Email: "luis@example.com", Password: "demo1234", Role: models.RolePlayer},
	}))

	bookingService := service.NewBookingService(bookings, notifications, states, courtClient, table, venue, bus, logging.Nop())
	rosterService := service.NewRosterService(bookings, notifications, bus, logging.Nop())
	userService := service.NewUserService(users, states, notifications, logging.Nop())

	server := NewServer(
		config.ServerConfig{Port: 0, ReadHeaderTimeoutSec: 5, WriteTimeoutSec: 15},
		config.RateLimitConfig{RPS: 1000, Burst: 1000, AuthRequests: 1000, AuthWindowSec: 60},
		bookingService, rosterService, userService, states, logging.Nop(),
	)

	ts := httptest.NewServer(server.Routes())
	t.Cleanup(ts.Close)
	return &apiFixture{ts: ts, bookings: bookings, users: users}
}

func (f *apiFixture) do(t *testing.T, method, path, token string, body interface{}) (*http.Response, []byte) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, f.ts.URL+path, reader)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set(SessionHeader, token)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := f.ts.Client().Do(req)
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	return resp, raw
}

func (f *apiFixture) login(t *testing.T, email, password string) string {
	t.Helper()
	resp, raw := f.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email": email, "password": password,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))

	var out struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(raw, &out))
	require.NotEmpty(t, out.Token)
	return out.Token
}

func futureDate(days int) string {
	return time.Now().AddDate(0, 0, days).Format(models.DateLayout)
}

func TestAPI_Health(t *testing.T) {
	f := newAPIFixture(t)
	resp, raw := f.do(t, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", string(raw))
}

func TestAPI_Auth(t *testing.T) {
	t.Run("login happy path", func(t *testing.T) {
		f := newAPIFixture(t)
		token := f.login(t, "ana@example.com", "demo1234")
		assert.NotEmpty(t, token)
	})

	t.Run("bad credentials", func(t *testing.T) {
		f := newAPIFixture(t)
		resp, _ := f.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
			"email": "ana@example.com", "password": "wrong",
		})
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("register then use the session", func(t *testing.T) {
		f := newAPIFixture(t)
		resp, raw := f.do(t, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
			"name": "Marta G.", "email": "marta@example.com", "password": "secret",
		})
		require.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))

		var out struct {
			Token string      `json:"token"`
			User  models.User `json:"user"`
		}
		require.NoError(t, json.Unmarshal(raw, &out))
		assert.Equal(t, models.RolePlayer, out.User.Role)

		resp, _ = f.do(t, http.MethodGet, "/api/v1/profile", out.Token, nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("duplicate email registers once", func(t *testing.T) {
		f := newAPIFixture(t)
		resp, _ := f.do(t, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
			"name": "Other", "email": "ana@example.com", "password": "x",
		})
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
	})

	t.Run("missing token rejected", func(t *testing.T) {
		f := newAPIFixture(t)
		resp, _ := f.do(t, http.MethodGet, "/api/v1/bookings", "", nil)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("logout invalidates the session", func(t *testing.T) {
		f := newAPIFixture(t)
		token := f.login(t, "ana@example.com", "demo1234")

		resp, _ := f.do(t, http.MethodPost, "/api/v1/auth/logout", token, nil)
		assert.Equal(t, http.StatusNoContent, resp.StatusCode)

		resp, _ = f.do(t, http.MethodGet, "/api/v1/bookings", token, nil)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})
}

func TestAPI_BookingWorkflow(t *testing.T) {
	f := newAPIFixture(t)
	token := f.login(t, "ana@example.com", "demo1234")
	date := futureDate(3)

	// select date
	resp, raw := f.do(t, http.MethodPut, "/api/v1/draft", token, map[string]string{"date": date})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))

	var draft struct {
		Step string `json:"step"`
		Date string `json:"date"`
		Time string `json:"time"`
	}
	require.NoError(t, json.Unmarshal(raw, &draft))
	assert.Equal(t, models.StepSlotUnselected, draft.Step)

	// select time
	resp, raw = f.do(t, http.MethodPut, "/api/v1/draft", token, map[string]string{"time": "10:00"})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	require.NoError(t, json.Unmarshal(raw, &draft))
	assert.Equal(t, models.StepSlotSelected, draft.Step)
	assert.Equal(t, "10:00", draft.Time)

	// submit
	resp, raw = f.do(t, http.MethodPost, "/api/v1/bookings", token, map[string]interface{}{
		"level":      "Intermedio",
		"visibility": "private",
		"type":       "casual",
		"invited":    []string{"Luis Fer"},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))

	var booking models.Booking
	require.NoError(t, json.Unmarshal(raw, &booking))
	assert.NotEmpty(t, booking.ID)
	assert.Equal(t, []string{"Ana Torres", "Luis Fer"}, booking.Players)
	assert.Equal(t, 20.0, booking.Price)

	// slot is now occupied
	resp, raw = f.do(t, http.MethodGet, "/api/v1/availability?date="+date, token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var availability struct {
		Occupied []string `json:"occupied"`
		Open     []string `json:"open"`
	}
	require.NoError(t, json.Unmarshal(raw, &availability))
	assert.Contains(t, availability.Occupied, "10:00")
	assert.NotContains(t, availability.Open, "10:00")

	// notification landed
	resp, raw = f.do(t, http.MethodGet, "/api/v1/notifications", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var notifications []models.Notification
	require.NoError(t, json.Unmarshal(raw, &notifications))
	assert.NotEmpty(t, notifications)
}

func TestAPI_Roster(t *testing.T) {
	f := newAPIFixture(t)
	require.NoError(t, f.bookings.Create(context.Background(), &models.Booking{
		ID: "b1", Date: futureDate(3), Time: "10:00", Duration: 60,
		Organizer: "Ana Torres", Players: []string{"Ana Torres"},
		Type: models.TypeCasual, Visibility: models.VisibilityPublic, Price: 20,
	}))

	anaToken := f.login(t, "ana@example.com", "demo1234")
	luisToken := f.login(t, "luis@example.com", "demo1234")

	// join
	resp, raw := f.do(t, http.MethodPost, "/api/v1/bookings/b1/join", luisToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	var booking models.Booking
	require.NoError(t, json.Unmarshal(raw, &booking))
	assert.Equal(t, []string{"Ana Torres", "Luis Fer"}, booking.Players)

	// invite
	resp, raw = f.do(t, http.MethodPost, "/api/v1/bookings/b1/invite", anaToken, map[string]string{"name": "Marta G."})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	require.NoError(t, json.Unmarshal(raw, &booking))
	assert.Contains(t, booking.Players, "Marta G.")

	// kick by the organizer
	resp, raw = f.do(t, http.MethodPost, "/api/v1/bookings/b1/kick", anaToken, map[string]string{"target": "Luis Fer"})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	require.NoError(t, json.Unmarshal(raw, &booking))
	assert.NotContains(t, booking.Players, "Luis Fer")

	// leave
	resp, raw = f.do(t, http.MethodPost, "/api/v1/bookings/b1/leave", anaToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	require.NoError(t, json.Unmarshal(raw, &booking))
	assert.NotContains(t, booking.Players, "Ana Torres")

	// unknown booking
	resp, _ = f.do(t, http.MethodPost, "/api/v1/bookings/missing/join", luisToken, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	// kick without a target is a validation error
	resp, _ = f.do(t, http.MethodPost, "/api/v1/bookings/b1/kick", anaToken, map[string]string{})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAPI_OwnerEndpoints(t *testing.T) {
	f := newAPIFixture(t)
	ownerToken := f.login(t, "owner@padelclub.es", "owner-pass")
	playerToken := f.login(t, "ana@example.com", "demo1234")
	date := futureDate(3)

	t.Run("owner creates directly", func(t *testing.T) {
		resp, raw := f.do(t, http.MethodPost, "/api/v1/owner/bookings", ownerToken, map[string]interface{}{
			"date": date, "time": "11:00", "duration": 90,
			"organizer": "Luis Fer", "players": []string{"Luis Fer"},
			"level": "3ra", "visibility": "public", "type": "competitive",
		})
		require.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))

		var booking models.Booking
		require.NoError(t, json.Unmarshal(raw, &booking))
		assert.Equal(t, 28.0, booking.Price)
	})

	t.Run("player may not use the owner flow", func(t *testing.T) {
		resp, _ := f.do(t, http.MethodPost, "/api/v1/owner/bookings", playerToken, map[string]interface{}{
			"date": date, "time": "12:00", "organizer": "Ana Torres",
			"visibility": "public", "type": "casual",
		})
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("delete needs confirm", func(t *testing.T) {
		require.NoError(t, f.bookings.Create(context.Background(), &models.Booking{
			ID: "del-1", Date: date, Time: "20:00", Organizer: "Ana Torres",
			Players: []string{"Ana Torres"}, Visibility: models.VisibilityPublic,
		}))

		resp, _ := f.do(t, http.MethodDelete, "/api/v1/bookings/del-1", ownerToken, nil)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

		resp, _ = f.do(t, http.MethodDelete, "/api/v1/bookings/del-1?confirm=true", ownerToken, nil)
		assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	})

	t.Run("pricing round-trip", func(t *testing.T) {
		resp, raw := f.do(t, http.MethodGet, "/api/v1/pricing", playerToken, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var out struct {
			Pricing map[string]models.PriceOption `json:"pricing"`
		}
		require.NoError(t, json.Unmarshal(raw, &out))
		assert.Equal(t, 20.0, out.Pricing["60"].Price)

		resp, _ = f.do(t, http.MethodPut, "/api/v1/pricing", playerToken, map[string]interface{}{
			"pricing": map[string]models.PriceOption{"60": {Price: 22, Label: "1 hora"}},
		})
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)

		resp, raw = f.do(t, http.MethodPut, "/api/v1/pricing", ownerToken, map[string]interface{}{
			"pricing": map[string]models.PriceOption{"60": {Price: 22, Label: "1 hora"}},
		})
		require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
		require.NoError(t, json.Unmarshal(raw, &out))
		assert.Equal(t, 22.0, out.Pricing["60"].Price)
	})

	t.Run("owner lists the user directory", func(t *testing.T) {
		resp, raw := f.do(t, http.MethodGet, "/api/v1/owner/users", ownerToken, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))

		var out struct {
			Users []models.User `json:"users"`
		}
		require.NoError(t, json.Unmarshal(raw, &out))
		assert.GreaterOrEqual(t, len(out.Users), 3)
		assert.NotContains(t, string(raw), "demo1234")

		resp, _ = f.do(t, http.MethodGet, "/api/v1/owner/users", playerToken, nil)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("export streams a workbook", func(t *testing.T) {
		resp, raw := f.do(t, http.MethodGet, "/api/v1/export/bookings.xlsx", ownerToken, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Contains(t, resp.Header.Get("Content-Type"), "spreadsheetml")
		assert.NotEmpty(t, raw)

		resp, _ = f.do(t, http.MethodGet, "/api/v1/export/bookings.xlsx", playerToken, nil)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})
}

func TestAPI_Profile(t *testing.T) {
	f := newAPIFixture(t)
	token := f.login(t, "ana@example.com", "demo1234")

	resp, raw := f.do(t, http.MethodPut, "/api/v1/profile", token, map[string]string{
		"name": "Ana T.", "avatar": "https://example.com/a.png",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))

	var user models.User
	require.NoError(t, json.Unmarshal(raw, &user))
	assert.Equal(t, "Ana T.", user.Name)

	resp, _ = f.do(t, http.MethodPost, "/api/v1/profile/friends", token, map[string]string{"email": "luis@example.com"})
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, _ = f.do(t, http.MethodDelete, "/api/v1/profile/friends/luis@example.com", token, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

// newLimitedServer rebuilds the stack over the fixture's stores with a
// custom rate limit config.
func newLimitedServer(t *testing.T, f *apiFixture, rl config.RateLimitConfig) *httptest.Server {
	t.Helper()

	venue := config.VenueConfig{
		TimeSlots:         models.DefaultTimeSlots,
		CasualLevels:      models.DefaultCasualLevels,
		CompetitiveLevels: models.DefaultCompetitiveLevels,
		Pricing:           models.DefaultPricing,
		MaxBookingDays:    365,
		DefaultDuration:   models.DefaultDuration,
	}
	states := repository.NewMemoryStateRepository(time.Hour)
	notifications := store.NewNotificationLog()
	bookingService := service.NewBookingService(f.bookings, notifications, states, courts.NewSeededClient(0, 0, 1, logging.Nop()), pricing.NewTable(venue.Pricing), venue, events.NewBus(), logging.Nop())
	rosterService := service.NewRosterService(f.bookings, notifications, events.NewBus(), logging.Nop())
	userService := service.NewUserService(f.users, states, notifications, logging.Nop())

	server := NewServer(
		config.ServerConfig{Port: 0, ReadHeaderTimeoutSec: 5, WriteTimeoutSec: 15},
		rl,
		bookingService, rosterService, userService, states, logging.Nop(),
	)
	ts := httptest.NewServer(server.Routes())
	t.Cleanup(ts.Close)
	return ts
}

func TestAPI_RateLimit(t *testing.T) {
	f := newAPIFixture(t)
	ts := newLimitedServer(t, f, config.RateLimitConfig{RPS: 0.001, Burst: 2, AuthRequests: 1000, AuthWindowSec: 60})

	login := func() string {
		raw, _ := json.Marshal(map[string]string{"email": "ana@example.com", "password": "demo1234"})
		resp, err := http.Post(ts.URL+"/api/v1/auth/login", "application/json", bytes.NewReader(raw))
		require.NoError(t, err)
		defer resp.Body.Close()
		var out struct {
			Token string `json:"token"`
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
		return out.Token
	}
	token := login()

	statuses := make(map[int]int)
	for i := 0; i < 5; i++ {
		req, err := http.NewRequest(http.MethodGet, ts.URL+"/api/v1/bookings", nil)
		require.NoError(t, err)
		req.Header.Set(SessionHeader, token)
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		resp.Body.Close()
		statuses[resp.StatusCode]++
	}

	assert.Equal(t, 2, statuses[http.StatusOK], fmt.Sprintf("statuses: %v", statuses))
	assert.Equal(t, 3, statuses[http.StatusTooManyRequests])
}

// Repeated failed logins from one address must start answering 429
// before they can walk a password.
func TestAPI_AuthRateLimit(t *testing.T) {
	f := newAPIFixture(t)
	ts := newLimitedServer(t, f, config.RateLimitConfig{RPS: 1000, Burst: 1000, AuthRequests: 2, AuthWindowSec: 60})

	statuses := make(map[int]int)
	for i := 0; i < 5; i++ {
		raw, _ := json.Marshal(map[string]string{"email": "ana@example.com", "password": "wrong"})
		resp, err := http.Post(ts.URL+"/api/v1/auth/login", "application/json", bytes.NewReader(raw))
		require.NoError(t, err)
		resp.Body.Close()
		statuses[resp.StatusCode]++
	}

	assert.Equal(t, 2, statuses[http.StatusUnauthorized], fmt.Sprintf("statuses: %v", statuses))
	assert.Equal(t, 3, statuses[http.StatusTooManyRequests])

	// register shares the same window
	raw, _ := json.Marshal(map[string]string{"name": "X", "email": "x@example.com", "password": "x"})
	resp, err := http.Post(ts.URL+"/api/v1/auth/register", "application/json", bytes.NewReader(raw))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
}

// Request counters must label by route pattern so per-booking ids
// never become metric labels.
func TestAPI_MetricsLabelByRoutePattern(t *testing.T) {
	metrics.Register()

	f := newAPIFixture(t)
	require.NoError(t, f.bookings.Create(context.Background(), &models.Booking{
		ID: "metrics-b1", Date: futureDate(3), Time: "10:00", Organizer: "Ana Torres",
		Players: []string{"Ana Torres"}, Visibility: models.VisibilityPublic,
	}))

	token := f.login(t, "luis@example.com", "demo1234")
	resp, _ := f.do(t, http.MethodPost, "/api/v1/bookings/metrics-b1/join", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	rec := httptest.NewRecorder()
	promhttp.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := rec.Body.String()

	assert.Contains(t, body, `endpoint="/api/v1/bookings/{id}/join"`)
	assert.NotContains(t, body, "metrics-b1")
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, statusFor(store.ErrNotFound))
	assert.Equal(t, http.StatusForbidden, statusFor(service.ErrOwnerOnly))
	assert.Equal(t, http.StatusConflict, statusFor(courts.ErrSlotConflict))
	assert.Equal(t, http.StatusBadRequest, statusFor(fmt.Errorf("%w %q", service.ErrUnknownView, "weird")))
	assert.Equal(t, http.StatusBadRequest, statusFor(fmt.Errorf("%w: date is in the past", config.ErrInvalidDate)))
	assert.Equal(t, http.StatusBadRequest, statusFor(pricing.ErrInvalidOption))

	// anything unrecognized is an internal failure, not the client's fault
	assert.Equal(t, http.StatusInternalServerError, statusFor(errors.New("redis connection refused")))
}
