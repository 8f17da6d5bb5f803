package storage

import (
	"context"
	"sync"

	"image-labeler/internal/domain/entity"
	"image-labeler/internal/domain/port"
)

// MemoryUserRepository in-memory хранилище состояний диалога
type MemoryUserRepository struct {
	mu    sync.Mutex
	users map[int64]entity.User
}

// NewMemoryUserRepository создаёт новое in-memory хранилище
func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{
		users: make(map[int64]entity.User),
	}
}

// Get возвращает копию пользователя, создаёт нового если не найден
func (r *MemoryUserRepository) Get(ctx context.Context, userID, chatID int64) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, exists := r.users[userID]
	if !exists {
		user = *entity.NewUser(userID, chatID)
		r.users[userID] = user
	}

	return &user, nil
}

// Save сохраняет состояние пользователя
func (r *MemoryUserRepository) Save(ctx context.Context, user *entity.User) error {
	r.mu.Lock()
	r.users[user.ID] = *user
	r.mu.Unlock()

	return nil
}

// SwapState атомарно переводит пользователя из состояния from в to
func (r *MemoryUserRepository) SwapState(ctx context.Context, userID int64, from, to entity.UserState) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, exists := r.users[userID]
	if !exists || user.State != from {
		return false, nil
	}
	user.SetState(to)
	r.users[userID] = user

	return true, nil
}

var _ port.UserRepository = (*MemoryUserRepository)(nil)
