package store

import (
	"context"
	"fmt"
	"sync"

	"padelclub/internal/models"
)

// UserStore is the in-memory user directory keyed by email.
// Emails are compared case-sensitively, no normalization.
type UserStore struct {
	mu      sync.RWMutex
	byEmail map[string]*models.User
}

func NewUserStore() *UserStore {
	return &UserStore{byEmail: make(map[string]*models.User)}
}

func (s *UserStore) Seed(ctx context.Context, users []models.User) error {
	for i := range users {
		u := users[i]
		if err := s.Create(ctx, &u); err != nil {
			return fmt.Errorf("seed user %s: %w", u.Email, err)
		}
	}
	return nil
}

func (s *UserStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.byEmail[email]
	if !ok {
		return nil, ErrUserNotFound
	}
	return user, nil
}

func (s *UserStore) Create(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byEmail[user.Email]; ok {
		return ErrEmailTaken
	}
	s.byEmail[user.Email] = user.Clone()
	return nil
}

func (s *UserStore) Update(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byEmail[user.Email]; !ok {
		return ErrUserNotFound
	}
	s.byEmail[user.Email] = user.Clone()
	return nil
}

func (s *UserStore) All(ctx context.Context) []*models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.User, 0, len(s.byEmail))
	for _, u := range s.byEmail {
		out = append(out, u)
	}
	return out
}
