package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/workforce-service/internal/auth"
	"github.com/spec-kit/workforce-service/internal/authz"
	"github.com/spec-kit/workforce-service/internal/config"
	"github.com/spec-kit/workforce-service/internal/domain"
	"github.com/spec-kit/workforce-service/internal/events"
	"github.com/spec-kit/workforce-service/internal/repository"
	apperrors "github.com/spec-kit/workforce-service/pkg/util"
)

// generatedPasswordBytes yields a 16 character hex password.
const generatedPasswordBytes = 8

// TeamService lets managers and admins administer employee accounts.
type TeamService struct {
	users      repository.UserRepository
	engine     *authz.Engine
	dispatcher events.Dispatcher
	logger     *zap.Logger
	cfg        config.AuthConfig
	now        func() time.Time
}

// TeamDependencies bundles collaborators of the team service.
type TeamDependencies struct {
	UserRepo   repository.UserRepository
	Engine     *authz.Engine
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
	Now        func() time.Time
}

// NewTeamService constructs the service.
func NewTeamService(cfg config.Config, deps TeamDependencies) *TeamService {
	s := &TeamService{
		users:      deps.UserRepo,
		engine:     deps.Engine,
		dispatcher: deps.Dispatcher,
		logger:     deps.Logger,
		cfg:        cfg.Auth,
		now:        deps.Now,
	}
	if s.engine == nil {
		s.engine = authz.NewEngine()
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// CreateEmployeeInput describes an account created on behalf of an employee.
// ManagerID is honoured only for admins; a manager always becomes the
// manager of the accounts they create.
type CreateEmployeeInput struct {
	Name           string
	Email          string
	Role           string
	MobileNumber   string
	CompanyEmail   string
	PersonalEmail  string
	Department     string
	JobDescription string
	ManagerID      string
}

// CreateEmployee creates an unverified account with a generated password and
// mails the credentials together with a verification link.
func (s *TeamService) CreateEmployee(ctx context.Context, actor *domain.User, in CreateEmployeeInput) (*domain.User, error) {
	role, err := domain.ParseRole(in.Role)
	if err != nil {
		return nil, apperrors.NewValidationError("Validation Error", []string{err.Error()})
	}
	if err := s.engine.Authorize(actor, authz.ActionCreateEmployee, authz.Target{Role: &role}); err != nil {
		return nil, err
	}

	var managerID *string
	switch {
	case actor.Role.IsManager():
		id := actor.ID
		managerID = &id
	case in.ManagerID != "":
		manager, err := s.users.GetByID(ctx, in.ManagerID)
		if err != nil {
			return nil, notFound(err, "Manager")
		}
		if !manager.Role.IsManager() {
			return nil, apperrors.NewBadRequest("managerId must reference a manager")
		}
		managerID = &manager.ID
	}

	email := domain.NormalizeEmail(in.Email)
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, apperrors.NewConflict("User already exists")
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, apperrors.MapError(err)
	}

	password, err := auth.GeneratePassword(generatedPasswordBytes)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	hash, err := auth.HashPassword(password, s.cfg.BcryptCost)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	token, err := auth.NewActionToken(s.now(), s.cfg.VerificationTTL())
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	user := &domain.User{
		Name:           strings.TrimSpace(in.Name),
		Email:          email,
		PasswordHash:   hash,
		Role:           role,
		ManagerID:      managerID,
		MobileNumber:   strings.TrimSpace(in.MobileNumber),
		CompanyEmail:   strings.TrimSpace(in.CompanyEmail),
		PersonalEmail:  strings.TrimSpace(in.PersonalEmail),
		Department:     strings.TrimSpace(in.Department),
		JobDescription: strings.TrimSpace(in.JobDescription),
	}
	user.SetVerificationToken(token.Hash, token.ExpiresAt)
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			return nil, apperrors.NewConflict("User already exists")
		}
		return nil, apperrors.MapError(err)
	}

	publish(ctx, s.dispatcher, s.logger, events.New(events.EventEmployeeCreated, user.ID, actor.ID, events.EmployeeCreatedPayload{
		Name:              user.Name,
		Email:             user.Email,
		Role:              role.String(),
		Password:          password,
		VerificationToken: token.Raw,
		CreatedBy:         actor.ID,
	}))
	s.logger.Info("employee created",
		zap.String("user_id", user.ID),
		zap.String("created_by", actor.ID),
		zap.String("role", role.String()))
	return user, nil
}

// ListTeam returns the actor's direct reports. Admins may name a manager, or
// get every account when managerID is empty.
func (s *TeamService) ListTeam(ctx context.Context, actor *domain.User, managerID string) ([]domain.User, error) {
	if err := s.engine.Authorize(actor, authz.ActionViewTeam, authz.Target{}); err != nil {
		return nil, err
	}
	if !actor.Role.IsAdmin() {
		managerID = actor.ID
	}
	var (
		team []domain.User
		err  error
	)
	if managerID == "" {
		team, err = s.users.List(ctx, repository.UserFilter{})
	} else {
		team, err = s.users.ListByManager(ctx, managerID)
	}
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return team, nil
}

// GetEmployee returns one team member.
func (s *TeamService) GetEmployee(ctx context.Context, actor *domain.User, id string) (*domain.User, error) {
	employee, err := s.authorizeMember(ctx, actor, authz.ActionViewEmployee, id, nil)
	if err != nil {
		return nil, err
	}
	return employee, nil
}

// EmployeePatch carries the manager-editable employee fields. Empty strings
// are ignored.
type EmployeePatch struct {
	Name           string
	MobileNumber   string
	CompanyEmail   string
	PersonalEmail  string
	Department     string
	JobDescription string
	Role           string
}

// UpdateEmployee applies the allow-listed fields to a team member.
func (s *TeamService) UpdateEmployee(ctx context.Context, actor *domain.User, id string, patch EmployeePatch) (*domain.User, error) {
	var role *domain.Role
	if patch.Role != "" {
		parsed, err := domain.ParseRole(patch.Role)
		if err != nil {
			return nil, apperrors.NewValidationError("Validation Error", []string{err.Error()})
		}
		role = &parsed
	}

	employee, err := s.authorizeMember(ctx, actor, authz.ActionUpdateEmployee, id, role)
	if err != nil {
		return nil, err
	}

	update := domain.UserPatch{
		Name:           nonEmpty(patch.Name),
		MobileNumber:   nonEmpty(patch.MobileNumber),
		CompanyEmail:   nonEmpty(patch.CompanyEmail),
		PersonalEmail:  nonEmpty(patch.PersonalEmail),
		Department:     nonEmpty(patch.Department),
		JobDescription: nonEmpty(patch.JobDescription),
		Role:           role,
	}
	update.Apply(employee)

	if err := s.users.Update(ctx, employee); err != nil {
		return nil, notFound(err, "Employee")
	}
	return employee, nil
}

// DeleteEmployee removes a team member. Their own reports lose the manager
// reference.
func (s *TeamService) DeleteEmployee(ctx context.Context, actor *domain.User, id string) error {
	employee, err := s.authorizeMember(ctx, actor, authz.ActionDeleteEmployee, id, nil)
	if err != nil {
		return err
	}
	if employee.ID == actor.ID {
		return apperrors.NewBadRequest("You cannot delete your own account")
	}
	if err := s.users.Delete(ctx, employee.ID); err != nil {
		return notFound(err, "Employee")
	}
	s.logger.Info("employee deleted", zap.String("user_id", employee.ID), zap.String("deleted_by", actor.ID))
	return nil
}

// authorizeMember gates before loading so that non-managers learn nothing
// about which ids exist.
func (s *TeamService) authorizeMember(ctx context.Context, actor *domain.User, action authz.Action, id string, role *domain.Role) (*domain.User, error) {
	if err := s.engine.Gate(actor, action).Err(); err != nil {
		return nil, err
	}
	employee, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "Employee")
	}
	if err := s.engine.Authorize(actor, action, authz.Target{Subject: employee, Role: role}); err != nil {
		return nil, err
	}
	return employee, nil
}

func nonEmpty(v string) *string {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	return &v
}
