package port

import (
	"context"

	"image-labeler/internal/domain/entity"
)

// UserRepository хранилище состояний диалога с ботом
type UserRepository interface {
	// Get возвращает копию пользователя, создаёт нового если не найден
	Get(ctx context.Context, userID, chatID int64) (*entity.User, error)

	// Save сохраняет состояние пользователя
	Save(ctx context.Context, user *entity.User) error

	// SwapState атомарно меняет состояние from на to.
	// Возвращает false, если текущее состояние отличается от from.
	SwapState(ctx context.Context, userID int64, from, to entity.UserState) (bool, error)
}
