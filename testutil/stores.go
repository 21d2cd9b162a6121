// Package testutil holds in-memory fakes shared by package tests.
package testutil

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/krishkalaria12/pic-profile-maker/models"
	"github.com/krishkalaria12/pic-profile-maker/repository"
)

// UserStore keeps users in a map and enforces email uniqueness the way the
// database index does.
type UserStore struct {
	mu    sync.Mutex
	users map[uuid.UUID]models.User
}

func NewUserStore() *UserStore {
	return &UserStore{users: make(map[uuid.UUID]models.User)}
}

func (s *UserStore) Create(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Email == user.Email {
			return repository.ErrEmailTaken
		}
	}
	s.users[user.ID] = *user
	return nil
}

func (s *UserStore) FindByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (s *UserStore) FindByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	return &u, nil
}

func (s *UserStore) UpdateProfile(_ context.Context, id uuid.UUID, fields repository.ProfileFields) error {
	return s.update(id, func(u *models.User) {
		u.Name = fields.Name
		u.City = fields.City
		u.Country = fields.Country
	})
}

func (s *UserStore) SetActive(_ context.Context, id uuid.UUID, active bool) error {
	return s.update(id, func(u *models.User) { u.IsActive = active })
}

func (s *UserStore) SetPasswordHash(_ context.Context, id uuid.UUID, hash string) error {
	return s.update(id, func(u *models.User) { u.PassHash = hash })
}

// Count returns the number of stored users.
func (s *UserStore) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.users)
}

func (s *UserStore) update(id uuid.UUID, fn func(*models.User)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return repository.ErrUserNotFound
	}
	fn(&u)
	s.users[id] = u
	return nil
}

// PictureStore keeps picture rows in insertion order. CreateErr, when set, is
// returned by Create without storing anything.
type PictureStore struct {
	mu        sync.Mutex
	pictures  []models.Picture
	nextID    uint
	CreateErr error
}

func NewPictureStore() *PictureStore {
	return &PictureStore{nextID: 1}
}

func (s *PictureStore) Create(_ context.Context, picture *models.Picture) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.CreateErr != nil {
		return s.CreateErr
	}
	picture.ID = s.nextID
	picture.CreatedAt = time.Now()
	picture.UpdatedAt = picture.CreatedAt
	s.nextID++
	s.pictures = append(s.pictures, *picture)
	return nil
}

func (s *PictureStore) ListByUser(_ context.Context, userID uuid.UUID) ([]models.Picture, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.Picture, 0)
	for _, p := range s.pictures {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (s *PictureStore) FindByFilename(_ context.Context, userID uuid.UUID, filename string) (*models.Picture, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range s.pictures {
		if p.UserID == userID && p.Filename == filename {
			return &p, nil
		}
	}
	return nil, repository.ErrPictureNotFound
}

// All returns every stored row.
func (s *PictureStore) All() []models.Picture {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Picture(nil), s.pictures...)
}
