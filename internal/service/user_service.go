package service

import (
	"context"
	"errors"
	"slices"
	"strings"

	"go-leather-stock/internal/model"
	"go-leather-stock/internal/repository"
	"go-leather-stock/pkg/apperror"
	"go-leather-stock/pkg/validator"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// UserService manages workshop staff accounts. New users start with the
// privileges of their role; UpdateUserPrivileges overrides them per user.
type UserService interface {
	CreateUser(ctx context.Context, in CreateUserInput, actor string) (*model.User, error)
	UpdateUser(ctx context.Context, id uuid.UUID, in UpdateUserInput, actor string) (*model.User, error)
	UpdateUserPrivileges(ctx context.Context, id uuid.UUID, codes []string, actor string) (*model.User, error)
	GetAllUsers(ctx context.Context) ([]model.UserResponse, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*model.UserResponse, error)
}

type CreateUserInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	FullName string `json:"full_name" validate:"required"`
	RoleCode string `json:"role" validate:"required"`
}

type UpdateUserInput struct {
	FullName string  `json:"full_name" validate:"required"`
	RoleCode string  `json:"role" validate:"required"`
	Password *string `json:"password,omitempty" validate:"omitempty,min=6"`
	IsActive *bool   `json:"is_active"`
}

type userService struct {
	users      repository.UserRepository
	roles      repository.RoleRepository
	privileges repository.PrivilegeRepository
	log        *zap.Logger
}

func NewUserService(users repository.UserRepository, roles repository.RoleRepository, privileges repository.PrivilegeRepository, log *zap.Logger) UserService {
	return &userService{
		users:      users,
		roles:      roles,
		privileges: privileges,
		log:        log.Named("users"),
	}
}

func (s *userService) CreateUser(ctx context.Context, in CreateUserInput, actor string) (*model.User, error) {
	const op = "users.create"

	if err := validator.Check(op, in); err != nil {
		return nil, err
	}
	email := strings.ToLower(strings.TrimSpace(in.Email))

	_, err := s.users.FindByEmail(ctx, email)
	if err == nil {
		return nil, apperror.Conflict(op, "email %s already exists", email)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, failed(s.log, op, err)
	}

	role, err := s.role(ctx, op, in.RoleCode)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Email:      email,
		FullName:   strings.TrimSpace(in.FullName),
		RoleID:     &role.ID,
		IsActive:   true,
		Privileges: role.Privileges,
	}
	user.CreatedBy = actor
	user.UpdatedBy = actor
	if err := user.SetPassword(in.Password); err != nil {
		return nil, failed(s.log, op, err)
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, failed(s.log, op, err)
	}

	s.log.Info("user created",
		zap.Stringer("user_id", user.ID),
		zap.String("role", role.Code),
		zap.String("actor", actor))
	return s.reload(ctx, op, user.ID)
}

// UpdateUser changes name, role, password or active flag. A role change
// resets the user's privileges to the new role's.
func (s *userService) UpdateUser(ctx context.Context, id uuid.UUID, in UpdateUserInput, actor string) (*model.User, error) {
	const op = "users.update"

	if err := validator.Check(op, in); err != nil {
		return nil, err
	}
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, failed(s.log, op, lookupError(op, "user", id, err))
	}
	role, err := s.role(ctx, op, in.RoleCode)
	if err != nil {
		return nil, err
	}

	roleChanged := user.RoleID == nil || *user.RoleID != role.ID
	user.FullName = strings.TrimSpace(in.FullName)
	user.RoleID = &role.ID
	user.Role = nil
	if in.IsActive != nil {
		user.IsActive = *in.IsActive
	}
	if in.Password != nil && *in.Password != "" {
		if err := user.SetPassword(*in.Password); err != nil {
			return nil, failed(s.log, op, err)
		}
	}
	user.UpdatedBy = actor

	if err := s.users.Update(ctx, user); err != nil {
		return nil, failed(s.log, op, err)
	}
	if roleChanged {
		if err := s.users.UpdatePrivileges(ctx, id, role.Privileges); err != nil {
			return nil, failed(s.log, op, err)
		}
	}
	return s.reload(ctx, op, id)
}

func (s *userService) UpdateUserPrivileges(ctx context.Context, id uuid.UUID, codes []string, actor string) (*model.User, error) {
	const op = "users.update_privileges"

	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, failed(s.log, op, lookupError(op, "user", id, err))
	}

	privileges, err := s.privileges.FindByCodes(ctx, codes)
	if err != nil {
		return nil, failed(s.log, op, err)
	}
	for _, code := range codes {
		if !slices.Contains(model.PrivilegeCodes(privileges), code) {
			return nil, apperror.Validation(op, "unknown privilege %q", code)
		}
	}

	if err := s.users.UpdatePrivileges(ctx, id, privileges); err != nil {
		return nil, failed(s.log, op, err)
	}
	user.UpdatedBy = actor
	if err := s.users.Update(ctx, user); err != nil {
		return nil, failed(s.log, op, err)
	}

	s.log.Info("user privileges updated",
		zap.Stringer("user_id", id),
		zap.Strings("privileges", codes),
		zap.String("actor", actor))
	return s.reload(ctx, op, id)
}

func (s *userService) GetAllUsers(ctx context.Context) ([]model.UserResponse, error) {
	users, err := s.users.FindAll(ctx)
	if err != nil {
		return nil, failed(s.log, "users.list", err)
	}
	responses := make([]model.UserResponse, len(users))
	for i, user := range users {
		responses[i] = user.ToResponse()
	}
	return responses, nil
}

func (s *userService) GetUserByID(ctx context.Context, id uuid.UUID) (*model.UserResponse, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, failed(s.log, "users.get", lookupError("users.get", "user", id, err))
	}
	response := user.ToResponse()
	return &response, nil
}

func (s *userService) role(ctx context.Context, op, code string) (*model.Role, error) {
	role, err := s.roles.FindByCode(ctx, strings.ToUpper(strings.TrimSpace(code)))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.Validation(op, "unknown role %q", code)
	}
	if err != nil {
		return nil, failed(s.log, op, err)
	}
	return role, nil
}

func (s *userService) reload(ctx context.Context, op string, id uuid.UUID) (*model.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, failed(s.log, op, err)
	}
	return user, nil
}
