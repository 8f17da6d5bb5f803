package app

import (
	"context"

	"image-labeler/internal/domain/entity"
	"image-labeler/internal/domain/port"
)

// UserService управляет состоянием диалога с ботом
type UserService struct {
	repo port.UserRepository
}

func NewUserService(repo port.UserRepository) *UserService {
	return &UserService{repo: repo}
}

func (s *UserService) Get(ctx context.Context, userID, chatID int64) (*entity.User, error) {
	return s.repo.Get(ctx, userID, chatID)
}

func (s *UserService) SetState(ctx context.Context, userID, chatID int64, state entity.UserState) (*entity.User, error) {
	user, err := s.repo.Get(ctx, userID, chatID)
	if err != nil {
		return nil, err
	}

	user.SetState(state)
	if err := s.repo.Save(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// BeginLabel переводит пользователя в ожидание фото. Идущая обработка не меняется.
func (s *UserService) BeginLabel(ctx context.Context, userID, chatID int64) (*entity.User, error) {
	return s.transition(ctx, userID, chatID, entity.StateMainMenu, entity.StateAwaitingPhoto)
}

// Cancel отменяет ожидание фото. Фото, которое уже у провайдера, не отменяется.
func (s *UserService) Cancel(ctx context.Context, userID, chatID int64) (*entity.User, error) {
	return s.transition(ctx, userID, chatID, entity.StateAwaitingPhoto, entity.StateMainMenu)
}

// StartProcessing занимает пользователя на время обработки фото. Фото принимается
// только после /label; иначе возвращается текущее состояние и false.
func (s *UserService) StartProcessing(ctx context.Context, userID, chatID int64) (entity.UserState, bool, error) {
	user, err := s.repo.Get(ctx, userID, chatID)
	if err != nil {
		return "", false, err
	}
	if user.State != entity.StateAwaitingPhoto {
		return user.State, false, nil
	}

	ok, err := s.repo.SwapState(ctx, userID, entity.StateAwaitingPhoto, entity.StateProcessing)
	if err != nil {
		return "", false, err
	}
	if ok {
		return entity.StateProcessing, true, nil
	}

	// Состояние успело смениться из другого сообщения
	user, err = s.repo.Get(ctx, userID, chatID)
	if err != nil {
		return "", false, err
	}
	return user.State, false, nil
}

// Finish возвращает пользователя в главное меню после обработки
func (s *UserService) Finish(ctx context.Context, userID, chatID int64) (*entity.User, error) {
	return s.SetState(ctx, userID, chatID, entity.StateMainMenu)
}

// transition меняет состояние только из from, остальные состояния не трогает
func (s *UserService) transition(ctx context.Context, userID, chatID int64, from, to entity.UserState) (*entity.User, error) {
	if _, err := s.repo.Get(ctx, userID, chatID); err != nil {
		return nil, err
	}
	if _, err := s.repo.SwapState(ctx, userID, from, to); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, userID, chatID)
}
