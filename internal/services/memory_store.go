package services

import (
	"context"
	"sync"
	"time"

	"github.com/AnshRaj112/videotube-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemoryUserStore keeps users in process memory. It backs STORE_DRIVER=memory
// for local development and the handler tests. All mutations hold the lock, so
// RotateRefreshToken has the same compare-and-swap guarantee as the Mongo store.
type MemoryUserStore struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]models.User
	now   func() time.Time
}

func NewMemoryUserStore() *MemoryUserStore {
	return &MemoryUserStore{
		users: make(map[primitive.ObjectID]models.User),
		now:   time.Now,
	}
}

func (s *MemoryUserStore) Create(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if existing.Username == user.Username || existing.Email == user.Email {
			return ErrDuplicateUser
		}
	}

	now := s.now().UTC()
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	user.CreatedAt = now
	user.UpdatedAt = now
	s.users[user.ID] = *user
	return nil
}

func (s *MemoryUserStore) FindByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	return &user, nil
}

func (s *MemoryUserStore) FindByIdentity(_ context.Context, username, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if username != "" {
		for _, user := range s.users {
			if user.Username == username {
				u := user
				return &u, nil
			}
		}
	}
	if email != "" {
		for _, user := range s.users {
			if user.Email == email {
				u := user
				return &u, nil
			}
		}
	}
	return nil, ErrUserNotFound
}

func (s *MemoryUserStore) SetRefreshToken(_ context.Context, id primitive.ObjectID, token string) error {
	return s.mutate(id, func(u *models.User) error {
		u.RefreshToken = token
		return nil
	})
}

func (s *MemoryUserStore) RotateRefreshToken(_ context.Context, id primitive.ObjectID, presented, next string) error {
	return s.mutate(id, func(u *models.User) error {
		if presented == "" || u.RefreshToken != presented {
			return ErrRefreshTokenMismatch
		}
		u.RefreshToken = next
		return nil
	})
}

func (s *MemoryUserStore) ClearRefreshToken(_ context.Context, id primitive.ObjectID) error {
	return s.mutate(id, func(u *models.User) error {
		u.RefreshToken = ""
		return nil
	})
}

func (s *MemoryUserStore) UpdatePassword(_ context.Context, id primitive.ObjectID, passwordHash string) error {
	return s.mutate(id, func(u *models.User) error {
		u.Password = passwordHash
		return nil
	})
}

func (s *MemoryUserStore) UpdateProfile(_ context.Context, id primitive.ObjectID, update ProfileUpdate) (*models.User, error) {
	var out models.User
	err := s.mutate(id, func(u *models.User) error {
		if update.Email != nil {
			for otherID, other := range s.users {
				if otherID != id && other.Email == *update.Email {
					return ErrDuplicateUser
				}
			}
			u.Email = *update.Email
		}
		if update.FullName != nil {
			u.FullName = *update.FullName
		}
		if update.Avatar != nil {
			u.Avatar = *update.Avatar
		}
		if update.CoverImage != nil {
			u.CoverImage = *update.CoverImage
		}
		out = *u
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// mutate applies fn to a copy of the user and stores it only if fn succeeds.
func (s *MemoryUserStore) mutate(id primitive.ObjectID, fn func(*models.User) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return ErrUserNotFound
	}
	user.UpdatedAt = s.now().UTC()
	if err := fn(&user); err != nil {
		return err
	}
	s.users[id] = user
	return nil
}
