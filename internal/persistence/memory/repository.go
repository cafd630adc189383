// Package memory is an in-process record store for local development and tests.
package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/samthatcode/boilerplate-project-exercisetracker/internal/domain"
)

// Repository stores users and exercises in memory, preserving insertion order.
type Repository struct {
	mu        sync.RWMutex
	users     []domain.User
	userIndex map[string]int
	exercises map[string][]domain.Exercise
}

// NewRepository constructs an empty Repository.
func NewRepository() *Repository {
	return &Repository{
		userIndex: make(map[string]int),
		exercises: make(map[string][]domain.Exercise),
	}
}

// CreateUser implements domain.UserRepository.
func (r *Repository) CreateUser(ctx context.Context, username string) (domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user := domain.User{ID: uuid.NewString(), Username: username}
	r.userIndex[user.ID] = len(r.users)
	r.users = append(r.users, user)
	return user, nil
}

// ListUsers implements domain.UserRepository.
func (r *Repository) ListUsers(ctx context.Context) ([]domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.User, len(r.users))
	copy(out, r.users)
	return out, nil
}

// GetUser implements domain.UserRepository.
func (r *Repository) GetUser(ctx context.Context, id string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	idx, ok := r.userIndex[id]
	if !ok {
		return nil, nil
	}
	user := r.users[idx]
	return &user, nil
}

// CreateExercise implements domain.ExerciseRepository. The user id is stored verbatim.
func (r *Repository) CreateExercise(ctx context.Context, exercise domain.Exercise) (domain.Exercise, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	exercise.ID = uuid.NewString()
	r.exercises[exercise.UserID] = append(r.exercises[exercise.UserID], exercise)
	return exercise, nil
}

// ListExercisesByUser implements domain.ExerciseRepository.
func (r *Repository) ListExercisesByUser(ctx context.Context, userID string) ([]domain.Exercise, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	slice := r.exercises[userID]
	out := make([]domain.Exercise, len(slice))
	copy(out, slice)
	return out, nil
}

// Ping always succeeds.
func (r *Repository) Ping(context.Context) error { return nil }

// Close is a no-op.
func (r *Repository) Close(context.Context) error { return nil }
