package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"padelclub/internal/domain"
	"padelclub/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrMissingFields      = errors.New("missing fields")
	ErrAlreadyFriends     = errors.New("already in your friends list")
)

// UserService covers the toy auth model of the in-memory directory:
// plain-text passwords, case-sensitive emails. Not a security layer.
type UserService struct {
	users         domain.UserRepository
	states        domain.StateRepository
	notifications domain.NotificationRepository
	logger        *zerolog.Logger
}

func NewUserService(users domain.UserRepository, states domain.StateRepository, notifications domain.NotificationRepository, logger *zerolog.Logger) *UserService {
	return &UserService{
		users:         users,
		states:        states,
		notifications: notifications,
		logger:        logger,
	}
}

// Login checks credentials and opens a session.
func (s *UserService) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil || user.Password != password {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.openSession(ctx, user.Email)
	if err != nil {
		return nil, "", err
	}

	s.notifications.Append(ctx, user.Email, fmt.Sprintf("Welcome back, %s!", user.Name))
	s.logger.Info().Str("email", user.Email).Msg("user logged in")
	return user, token, nil
}

// Register mints a new player account and opens a session.
func (s *UserService) Register(ctx context.Context, name, email, password string) (*models.User, string, error) {
	if strings.TrimSpace(name) == "" || strings.TrimSpace(email) == "" || password == "" {
		return nil, "", ErrMissingFields
	}

	user := &models.User{
		Name:     name,
		Email:    email,
		Password: password,
		Role:     models.RolePlayer,
		Friends:  []string{},
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, "", err
	}

	token, err := s.openSession(ctx, user.Email)
	if err != nil {
		return nil, "", err
	}

	s.logger.Info().Str("email", user.Email).Msg("user registered")
	return user, token, nil
}

func (s *UserService) Logout(ctx context.Context, token string) error {
	return s.states.ClearState(ctx, token)
}

// Authenticate resolves a session token to its user.
func (s *UserService) Authenticate(ctx context.Context, token string) (*models.User, error) {
	state, err := s.states.GetState(ctx, token)
	if err != nil {
		return nil, err
	}
	if state == nil || state.Email == "" {
		return nil, ErrInvalidCredentials
	}
	return s.users.GetByEmail(ctx, state.Email)
}

func (s *UserService) UpdateProfile(ctx context.Context, user *models.User) error {
	return s.users.Update(ctx, user)
}

// ListUsers returns the whole directory; owner only.
func (s *UserService) ListUsers(ctx context.Context, actor *models.User) ([]*models.User, error) {
	if !actor.IsOwner() {
		return nil, ErrOwnerOnly
	}
	return s.users.All(ctx), nil
}

func (s *UserService) AddFriend(ctx context.Context, actor *models.User, friendEmail string) error {
	if actor.HasFriend(friendEmail) {
		return ErrAlreadyFriends
	}
	updated := actor.Clone()
	updated.Friends = append(updated.Friends, friendEmail)
	return s.users.Update(ctx, updated)
}

func (s *UserService) RemoveFriend(ctx context.Context, actor *models.User, friendEmail string) error {
	updated := actor.Clone()
	out := updated.Friends[:0]
	for _, f := range updated.Friends {
		if f != friendEmail {
			out = append(out, f)
		}
	}
	updated.Friends = out
	return s.users.Update(ctx, updated)
}

func (s *UserService) Notifications(ctx context.Context, email string) []*models.Notification {
	return s.notifications.ListFor(ctx, email)
}

func (s *UserService) MarkNotificationRead(ctx context.Context, email, id string) error {
	return s.notifications.MarkRead(ctx, email, id)
}

func (s *UserService) openSession(ctx context.Context, email string) (string, error) {
	token := uuid.NewString()
	state := &models.SessionState{
		Token: token,
		Email: email,
		Step:  models.StepSlotUnselected,
	}
	if err := s.states.SetState(ctx, state); err != nil {
		return "", err
	}
	return token, nil
}
