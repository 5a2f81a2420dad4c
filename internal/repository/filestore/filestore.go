// Package filestore is the JSON-document persistence backend.
//
// It exists for local development and tests where a single human-readable
// file beats a database: the whole store is one JSON document loaded into
// memory at startup and rewritten atomically after every mutation. A global
// mutex serializes access, which stands in for the uniqueness constraints
// and conditional updates the sqlite backend gets from the engine — with
// one writer at a time, check-then-insert is already race-free.
//
// This is NOT a production backend. Every write rewrites the whole file and
// every query scans every row. For the data sizes local development sees,
// neither matters.
package filestore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/wilson400hong/slop-museum/internal/model"
	"github.com/wilson400hong/slop-museum/internal/repository"
)

// Compile-time check that the filestore satisfies the full contract.
var _ repository.Store = (*Store)(nil)

// userRecord is the persisted shape of a user. model.User hides ProviderID
// from JSON (`json:"-"`) so we cannot marshal it directly — losing the
// provider identity on save would break re-login.
type userRecord struct {
	ID          string     `json:"id"`
	DisplayName string     `json:"displayName"`
	AvatarURL   string     `json:"avatarUrl"`
	Provider    string     `json:"provider"`
	ProviderID  string     `json:"providerId"`
	Role        model.Role `json:"role"`
	Banned      bool       `json:"banned"`
	CreatedAt   time.Time  `json:"createdAt"`
}

func (r userRecord) toModel() model.User {
	return model.User{
		ID:          r.ID,
		DisplayName: r.DisplayName,
		AvatarURL:   r.AvatarURL,
		Provider:    r.Provider,
		ProviderID:  r.ProviderID,
		Role:        r.Role,
		Banned:      r.Banned,
		CreatedAt:   r.CreatedAt,
	}
}

// document is the entire store as one JSON value. WorkTags maps work ID to
// attached tag IDs — the join table, inlined.
type document struct {
	Users     []userRecord       `json:"users"`
	Works     []model.Work       `json:"works"`
	Tags      []model.Tag        `json:"tags"`
	WorkTags  map[string][]int64 `json:"workTags"`
	Reactions []model.Reaction   `json:"reactions"`
	Bookmarks []model.Bookmark   `json:"bookmarks"`
	Reports   []model.Report     `json:"reports"`
	NextTagID int64              `json:"nextTagId"`
}

// Store implements repository.Store on top of a single JSON file.
type Store struct {
	mu   sync.Mutex
	path string
	doc  document
}

// New opens (or creates) the store at path. A fresh store gets the seed tag
// vocabulary, same as the sqlite migrations.
func New(path string) (*Store, error) {
	s := &Store{path: path}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := json.Unmarshal(data, &s.doc); err != nil {
			return nil, fmt.Errorf("filestore: parsing %s: %w", path, err)
		}
	case os.IsNotExist(err):
		s.doc = document{
			WorkTags:  map[string][]int64{},
			NextTagID: 1,
		}
		for _, name := range model.SeedTagNames {
			s.doc.Tags = append(s.doc.Tags, model.Tag{ID: s.doc.NextTagID, Name: name})
			s.doc.NextTagID++
		}
		if err := s.save(); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("filestore: reading %s: %w", path, err)
	}

	if s.doc.WorkTags == nil {
		s.doc.WorkTags = map[string][]int64{}
	}
	return s, nil
}

// save rewrites the document atomically: marshal to a temp file in the same
// directory, then rename over the real one. A crash mid-write leaves the
// previous document intact, never a half-written file.
//
// Callers must hold s.mu.
func (s *Store) save() error {
	data, err := json.MarshalIndent(&s.doc, "", "  ")
	if err != nil {
		return fmt.Errorf("filestore: encoding document: %w", err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".store-*.json")
	if err != nil {
		return fmt.Errorf("filestore: creating temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("filestore: writing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("filestore: closing temp file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("filestore: replacing %s: %w", s.path, err)
	}
	return nil
}

// Close is a no-op; every mutation already persisted itself.
func (s *Store) Close() error {
	return nil
}
