package session

import (
	"context"
	"strings"

	"github.com/roach88/gauntlet/internal/domain"
	"github.com/roach88/gauntlet/internal/store"
)

// RegisterUser creates a new account. Usernames are unique
// case-insensitively.
func (s *Service) RegisterUser(ctx context.Context, username, cfHandle, atcoderUser string) (*domain.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, domain.InvalidInput("username must not be empty")
	}
	return store.UpdateResult(s.store, ctx, func(doc *domain.Document) (*domain.User, error) {
		for i := range doc.Users {
			if strings.EqualFold(doc.Users[i].Username, username) {
				return nil, domain.InvalidInput("username %q is taken", username)
			}
		}
		doc.Users = append(doc.Users, domain.User{
			ID:          s.newID(),
			Username:    username,
			CFHandle:    strings.TrimSpace(cfHandle),
			AtCoderUser: strings.TrimSpace(atcoderUser),
			CreatedAt:   s.now(),
			Stats:       domain.UserStats{Achievements: map[domain.AchievementID]domain.Unlock{}},
		})
		return &doc.Users[len(doc.Users)-1], nil
	})
}

// GetUser returns one user by id.
func (s *Service) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	doc, err := s.store.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	u := doc.FindUser(userID)
	if u == nil {
		return nil, domain.NotFound("user %s not found", userID)
	}
	return u, nil
}

// SetHandles updates a user's linked judge handles. Empty strings leave
// the corresponding handle unchanged.
func (s *Service) SetHandles(ctx context.Context, userID, cfHandle, atcoderUser string) (*domain.User, error) {
	return store.UpdateResult(s.store, ctx, func(doc *domain.Document) (*domain.User, error) {
		u := doc.FindUser(userID)
		if u == nil {
			return nil, domain.NotFound("user %s not found", userID)
		}
		if h := strings.TrimSpace(cfHandle); h != "" {
			u.CFHandle = h
		}
		if h := strings.TrimSpace(atcoderUser); h != "" {
			u.AtCoderUser = h
		}
		return u, nil
	})
}

// Activity returns the newest activity feed entries, most recent first,
// up to limit (0 means all).
func (s *Service) Activity(ctx context.Context, limit int) ([]domain.ActivityEvent, error) {
	doc, err := s.store.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	events := doc.Activities
	if limit > 0 && len(events) > limit {
		events = events[len(events)-limit:]
	}
	out := make([]domain.ActivityEvent, 0, len(events))
	for i := len(events) - 1; i >= 0; i-- {
		out = append(out, events[i])
	}
	return out, nil
}
