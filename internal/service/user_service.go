package service

import (
	"quizhub_backend/internal/model"
	"quizhub_backend/internal/repository"
	"quizhub_backend/internal/util"

	"gorm.io/gorm"
)

type UserService struct {
	UserRepo *repository.UserRepository
}

func NewUserService(userRepo *repository.UserRepository) *UserService {
	return &UserService{UserRepo: userRepo}
}

func (s *UserService) ListUsers(principal model.Principal, page, limit int) ([]model.User, int64, error) {
	if !principal.IsAdmin() {
		return nil, 0, util.ErrPermissionDenied
	}
	return s.UserRepo.List(page, limit)
}

// UpdateRole changes a user's role. An admin cannot demote their own account,
// which keeps at least the acting admin in place after the call.
func (s *UserService) UpdateRole(principal model.Principal, userID string, role model.UserRole) (*model.User, error) {
	if !principal.IsAdmin() {
		return nil, util.ErrPermissionDenied
	}
	if role != model.RoleStudent && role != model.RoleAdmin {
		return nil, util.NewValidationError("role", "role must be 'student' or 'admin'")
	}
	if principal.UserID == userID && role != model.RoleAdmin {
		return nil, util.ErrSelfDemotion
	}

	user, err := s.UserRepo.FindByID(userID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, util.ErrUserNotFound
		}
		return nil, err
	}

	user.Role = role
	if err := s.UserRepo.Update(user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) DeleteUser(principal model.Principal, userID string) error {
	if !principal.IsAdmin() {
		return util.ErrPermissionDenied
	}
	if principal.UserID == userID {
		return util.NewValidationError("id", "cannot delete your own account")
	}

	if _, err := s.UserRepo.FindByID(userID); err != nil {
		if err == gorm.ErrRecordNotFound {
			return util.ErrUserNotFound
		}
		return err
	}
	return s.UserRepo.Delete(userID)
}
