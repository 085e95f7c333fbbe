package service

import (
	"context"
	"errors"

	"anadara.com/exportmarket/internal/entity"
	"anadara.com/exportmarket/internal/modules/user/repository"
	"anadara.com/exportmarket/pkg/apperror"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AdminService interface {
	ListUsers(ctx context.Context, role string, page, limit int) ([]*entity.User, int64, error)
	ToggleUserStatus(ctx context.Context, id uuid.UUID) (*entity.User, error)
	VerifyUser(ctx context.Context, id uuid.UUID) (*entity.User, error)
}

type adminService struct {
	users repository.UserRepository
}

func NewAdminService(users repository.UserRepository) AdminService {
	return &adminService{users: users}
}

func (s *adminService) ListUsers(ctx context.Context, role string, page, limit int) ([]*entity.User, int64, error) {
	return s.users.FindAll(ctx, role, (page-1)*limit, limit)
}

// ToggleUserStatus flips an account between active and suspended.
func (s *adminService) ToggleUserStatus(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	user, err := s.findUser(ctx, id)
	if err != nil {
		return nil, err
	}

	if user.Status == entity.StatusActive {
		user.Status = entity.StatusSuspended
	} else {
		user.Status = entity.StatusActive
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *adminService) VerifyUser(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	user, err := s.findUser(ctx, id)
	if err != nil {
		return nil, err
	}

	if user.IsVerified {
		return user, nil
	}

	user.IsVerified = true
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *adminService) findUser(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("user not found")
		}
		return nil, err
	}
	return user, nil
}
