package service

import (
	"context"
	"errors"
	"strings"

	"github.com/spec-kit/workforce-service/internal/authz"
	"github.com/spec-kit/workforce-service/internal/domain"
	"github.com/spec-kit/workforce-service/internal/repository"
	apperrors "github.com/spec-kit/workforce-service/pkg/util"
)

// UserService serves the actor's own profile and the admin user directory.
type UserService struct {
	users  repository.UserRepository
	engine *authz.Engine
}

// NewUserService constructs the service.
func NewUserService(users repository.UserRepository, engine *authz.Engine) *UserService {
	return &UserService{users: users, engine: engine}
}

// ProfilePatch lists the fields a user may change on their own profile.
type ProfilePatch struct {
	Name         *string
	Email        *string
	MobileNumber *string
}

// GetProfile returns the actor's current record.
func (s *UserService) GetProfile(ctx context.Context, actor *domain.User) (*domain.User, error) {
	if err := s.engine.Authorize(actor, authz.ActionViewProfile, authz.Target{Subject: actor}); err != nil {
		return nil, err
	}
	user, err := s.users.GetByID(ctx, actor.ID)
	if err != nil {
		return nil, notFound(err, "User")
	}
	return user, nil
}

// UpdateProfile applies name, email and mobile number changes. Changing the
// email keeps the verification state.
func (s *UserService) UpdateProfile(ctx context.Context, actor *domain.User, patch ProfilePatch) (*domain.User, error) {
	if err := s.engine.Authorize(actor, authz.ActionUpdateProfile, authz.Target{Subject: actor}); err != nil {
		return nil, err
	}
	user, err := s.users.GetByID(ctx, actor.ID)
	if err != nil {
		return nil, notFound(err, "User")
	}

	update := domain.UserPatch{}
	if patch.Name != nil && strings.TrimSpace(*patch.Name) != "" {
		name := strings.TrimSpace(*patch.Name)
		update.Name = &name
	}
	if patch.Email != nil && strings.TrimSpace(*patch.Email) != "" {
		email := domain.NormalizeEmail(*patch.Email)
		update.Email = &email
	}
	if patch.MobileNumber != nil {
		mobile := strings.TrimSpace(*patch.MobileNumber)
		update.MobileNumber = &mobile
	}
	update.Apply(user)

	if err := s.users.Update(ctx, user); err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			return nil, apperrors.NewConflict("Email already in use")
		}
		return nil, notFound(err, "User")
	}
	return user, nil
}

// ListUsers returns every account. Admin only.
func (s *UserService) ListUsers(ctx context.Context, actor *domain.User, filter repository.UserFilter) ([]domain.User, error) {
	if err := s.engine.Authorize(actor, authz.ActionListUsers, authz.Target{}); err != nil {
		return nil, err
	}
	if filter.Role != "" && filter.Role.Family() == domain.FamilyUnknown {
		return nil, apperrors.NewBadRequest("invalid role filter")
	}
	users, err := s.users.List(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return users, nil
}
