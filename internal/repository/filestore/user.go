package filestore

import (
	"context"
	"time"

	"github.com/rs/xid"

	"github.com/wilson400hong/slop-museum/internal/apperror"
	"github.com/wilson400hong/slop-museum/internal/model"
)

// UpsertUser mirrors the sqlite backend: the (provider, provider_id) pair is
// the stable identity, re-login refreshes profile fields only, and role and
// banned stay whatever moderation last set them to.
func (s *Store) UpsertUser(ctx context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.doc.Users {
		rec := &s.doc.Users[i]
		if rec.Provider != user.Provider || rec.ProviderID != user.ProviderID {
			continue
		}
		rec.DisplayName = user.DisplayName
		rec.AvatarURL = user.AvatarURL
		*user = rec.toModel()
		return s.save()
	}

	user.ID = xid.New().String()
	user.CreatedAt = time.Now().UTC()
	if user.Role == "" {
		user.Role = model.RoleUser
	}
	s.doc.Users = append(s.doc.Users, userRecord{
		ID:          user.ID,
		DisplayName: user.DisplayName,
		AvatarURL:   user.AvatarURL,
		Provider:    user.Provider,
		ProviderID:  user.ProviderID,
		Role:        user.Role,
		Banned:      user.Banned,
		CreatedAt:   user.CreatedAt,
	})
	return s.save()
}

func (s *Store) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, rec := range s.doc.Users {
		if rec.ID == id {
			u := rec.toModel()
			return &u, nil
		}
	}
	return nil, apperror.NotFound("user", id)
}

func (s *Store) UsersByID(ctx context.Context, ids []string) (map[string]model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	wanted := make(map[string]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}

	users := make(map[string]model.User)
	for _, rec := range s.doc.Users {
		if wanted[rec.ID] {
			users[rec.ID] = rec.toModel()
		}
	}
	return users, nil
}

func (s *Store) SetUserBanned(ctx context.Context, id string, banned bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.doc.Users {
		if s.doc.Users[i].ID == id {
			s.doc.Users[i].Banned = banned
			return s.save()
		}
	}
	return apperror.NotFound("user", id)
}
