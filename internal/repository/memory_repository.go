package repository

import (
	"context"
	"sync"
	"time"

	"accounts-be/internal/entities"

	"github.com/google/uuid"
)

// MemoryRepository is an in-memory UserRepository with the same semantics as
// the Mongo implementation, including email uniqueness and atomic token
// consumption. Used in tests.
var _ UserRepository = (*MemoryRepository)(nil)

type MemoryRepository struct {
	mu    sync.Mutex
	users map[string]*entities.User // keyed by ID
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		users: make(map[string]*entities.User),
	}
}

func (r *MemoryRepository) Create(_ context.Context, name, email, passwordHash, verificationToken string) (*entities.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Email == email {
			return nil, ErrDuplicateEmail
		}
	}

	now := time.Now()
	vt := verificationToken
	user := &entities.User{
		ID:                uuid.NewString(),
		Name:              name,
		Email:             email,
		PasswordHash:      passwordHash,
		VerificationToken: &vt,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	r.users[user.ID] = user

	return copyUser(user), nil
}

func (r *MemoryRepository) FindByEmail(_ context.Context, email string) (*entities.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Email == email {
			return copyUser(u), nil
		}
	}
	return nil, ErrNotFound
}

func (r *MemoryRepository) FindByID(_ context.Context, id string) (*entities.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return copyUser(u), nil
}

func (r *MemoryRepository) UpdateProfile(_ context.Context, id, name, email string) (*entities.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return nil, ErrNotFound
	}

	for _, other := range r.users {
		if other.ID != id && other.Email == email {
			return nil, ErrDuplicateEmail
		}
	}

	u.Name = name
	u.Email = email
	u.UpdatedAt = time.Now()

	return copyUser(u), nil
}

func (r *MemoryRepository) SetResetToken(_ context.Context, id, token string, expiry time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return ErrNotFound
	}

	t := token
	e := expiry
	u.ResetToken = &t
	u.ResetTokenExpiry = &e
	u.UpdatedAt = time.Now()
	return nil
}

func (r *MemoryRepository) ConsumeVerificationToken(_ context.Context, token string) (*entities.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.VerificationToken != nil && *u.VerificationToken == token {
			u.IsVerified = true
			u.VerificationToken = nil
			u.UpdatedAt = time.Now()
			return copyUser(u), nil
		}
	}
	return nil, ErrNotFound
}

func (r *MemoryRepository) ConsumeResetToken(_ context.Context, token string, now time.Time, newPasswordHash string) (*entities.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.ResetToken != nil && *u.ResetToken == token &&
			u.ResetTokenExpiry != nil && u.ResetTokenExpiry.After(now) {
			u.PasswordHash = newPasswordHash
			u.ResetToken = nil
			u.ResetTokenExpiry = nil
			u.UpdatedAt = time.Now()
			return copyUser(u), nil
		}
	}
	return nil, ErrNotFound
}

func (r *MemoryRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[id]; !ok {
		return ErrNotFound
	}
	delete(r.users, id)
	return nil
}

// Count returns the number of stored users matching the email.
func (r *MemoryRepository) Count(email string) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for _, u := range r.users {
		if u.Email == email {
			n++
		}
	}
	return n
}

// ExpireResetToken backdates the reset-token expiry of the given user.
// Test helper for exercising expiry behavior.
func (r *MemoryRepository) ExpireResetToken(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if u, ok := r.users[id]; ok && u.ResetTokenExpiry != nil {
		past := time.Now().Add(-time.Minute)
		u.ResetTokenExpiry = &past
	}
}

func copyUser(u *entities.User) *entities.User {
	out := *u
	if u.VerificationToken != nil {
		vt := *u.VerificationToken
		out.VerificationToken = &vt
	}
	if u.ResetToken != nil {
		rt := *u.ResetToken
		out.ResetToken = &rt
	}
	if u.ResetTokenExpiry != nil {
		e := *u.ResetTokenExpiry
		out.ResetTokenExpiry = &e
	}
	return &out
}
