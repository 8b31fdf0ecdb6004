package services

import (
	"context"
	"net/http"

	"paso-monitor-server/internal/models"
	"paso-monitor-server/internal/utils"
)

// UserService carries the admin-only management operations. The actor is the
// already-authenticated admin performing the call; self-targeting rules are
// enforced here rather than in the handlers.
type UserService struct {
	users UserStore
}

func NewUserService(users UserStore) *UserService {
	return &UserService{users: users}
}

func (s *UserService) List(ctx context.Context) ([]models.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, utils.NewAppError(http.StatusInternalServerError, "INTERNAL_ERROR", "could not list users", nil)
	}
	return users, nil
}

func (s *UserService) UpdateRole(ctx context.Context, actor *models.User, targetID, role string) error {
	if !models.ValidRole(role) {
		return utils.NewAppError(http.StatusBadRequest, "INVALID_ROLE", "role must be user or admin", nil)
	}

	if targetID == actor.ID && role != models.RoleAdmin {
		return utils.NewAppError(http.StatusForbidden, "FORBIDDEN", "admins cannot demote their own account", nil)
	}

	updated, err := s.users.UpdateRole(ctx, targetID, role)
	if err != nil {
		return utils.NewAppError(http.StatusInternalServerError, "INTERNAL_ERROR", "could not update role", nil)
	}
	if !updated {
		return utils.NewAppError(http.StatusNotFound, "USER_NOT_FOUND", "user not found", nil)
	}
	return nil
}

func (s *UserService) Delete(ctx context.Context, actor *models.User, targetID string) error {
	if targetID == actor.ID {
		return utils.NewAppError(http.StatusForbidden, "FORBIDDEN", "admins cannot delete their own account", nil)
	}

	deleted, err := s.users.Delete(ctx, targetID)
	if err != nil {
		return utils.NewAppError(http.StatusInternalServerError, "INTERNAL_ERROR", "could not delete user", nil)
	}
	if !deleted {
		return utils.NewAppError(http.StatusNotFound, "USER_NOT_FOUND", "user not found", nil)
	}
	return nil
}
