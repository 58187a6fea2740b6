package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/Behnamfe76/contacts-directory/internal/auth"
	"github.com/Behnamfe76/contacts-directory/internal/domain"
	"github.com/Behnamfe76/contacts-directory/internal/events"
	"github.com/Behnamfe76/contacts-directory/internal/repository"
	apperrors "github.com/Behnamfe76/contacts-directory/pkg/util/errorutil"
)

// CreateUserInput carries a validated registration request.
type CreateUserInput struct {
	Username string
	Password string
	Role     domain.Role
	Active   bool
}

// UpdateUserInput carries a validated update. An empty Password keeps the
// stored credential; nil Role or Active keep the current values.
type UpdateUserInput struct {
	ID       int64
	Username string
	Password string
	Role     *domain.Role
	Active   *bool
}

// UserService manages directory accounts.
type UserService struct {
	users      repository.UserRepository
	hasher     auth.PasswordHasher
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewUserService constructs the service. Dispatcher and logger may be nil.
func NewUserService(users repository.UserRepository, hasher auth.PasswordHasher, dispatcher events.Dispatcher, logger *zap.Logger) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserService{users: users, hasher: hasher, dispatcher: dispatcher, logger: logger}
}

// Create registers a user. Anonymous callers and non-administrators may only
// create CommonUser or Guest accounts.
func (s *UserService) Create(ctx context.Context, caller *auth.Principal, in CreateUserInput) (*domain.User, error) {
	if !in.Role.Valid() {
		return nil, apperrors.NewValidationError("request validation failed", map[string]any{"role": "unknown role"})
	}
	if elevated(in.Role) && !isAdmin(caller) {
		return nil, apperrors.NewForbidden("only administrators may create privileged accounts")
	}

	hash, err := s.hashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Username: in.Username,
		Password: hash,
		Active:   in.Active,
		Role:     in.Role,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publish(ctx, events.EventUserCreated, caller, user, "")
	return user, nil
}

// Get returns a user by id.
func (s *UserService) Get(ctx context.Context, id int64) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "user", id)
	}
	return user, nil
}

// List returns users matching filter.
func (s *UserService) List(ctx context.Context, filter repository.UserFilter) ([]domain.User, error) {
	users, err := s.users.List(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return users, nil
}

// Update replaces a user's fields. pathID must match in.ID. Non-administrators
// may only update their own account and may not change role or active flag.
func (s *UserService) Update(ctx context.Context, caller *auth.Principal, pathID int64, in UpdateUserInput) (*domain.User, error) {
	if in.ID != pathID {
		return nil, apperrors.NewBadRequest("id in body does not match path")
	}

	user, err := s.users.GetByID(ctx, pathID)
	if err != nil {
		return nil, notFoundOr(err, "user", pathID)
	}

	admin := isAdmin(caller)
	if !admin {
		if caller == nil || caller.Username != user.Username {
			return nil, apperrors.NewForbidden("cannot modify another user")
		}
		if in.Role != nil && *in.Role != user.Role {
			return nil, apperrors.NewForbidden("cannot change own role")
		}
		if in.Active != nil && *in.Active != user.Active {
			return nil, apperrors.NewForbidden("cannot change own active flag")
		}
	}

	previous := user.Username
	user.Username = in.Username
	if in.Role != nil {
		if !in.Role.Valid() {
			return nil, apperrors.NewValidationError("request validation failed", map[string]any{"role": "unknown role"})
		}
		user.Role = *in.Role
	}
	if in.Active != nil {
		user.Active = *in.Active
	}
	if in.Password != "" {
		hash, err := s.hashPassword(in.Password)
		if err != nil {
			return nil, err
		}
		user.Password = hash
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, apperrors.MapError(err)
	}

	renamed := ""
	if previous != user.Username {
		renamed = previous
	}
	s.publish(ctx, events.EventUserUpdated, caller, user, renamed)
	return user, nil
}

// Deactivate marks a user inactive. Users are never deleted.
func (s *UserService) Deactivate(ctx context.Context, caller *auth.Principal, id int64) error {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return notFoundOr(err, "user", id)
	}
	if err := s.users.Deactivate(ctx, id); err != nil {
		return notFoundOr(err, "user", id)
	}
	user.Active = false
	s.publish(ctx, events.EventUserDeactivated, caller, user, "")
	return nil
}

func (s *UserService) publish(ctx context.Context, eventType events.EventType, caller *auth.Principal, user *domain.User, previousUsername string) {
	if s.dispatcher == nil {
		return
	}
	event := events.NewEvent(eventType, actorOf(caller), events.UserChangedPayload{
		UserID:           user.ID,
		Username:         user.Username,
		Role:             user.Role,
		Active:           user.Active,
		PreviousUsername: previousUsername,
	})
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Error("user event subscribers failed",
			zap.String("event", string(eventType)),
			zap.Int64("user_id", user.ID),
			zap.Error(err))
	}
}

func elevated(role domain.Role) bool {
	return auth.HasRole(role, domain.RoleAdministrator, domain.RoleSupervisor)
}

func isAdmin(caller *auth.Principal) bool {
	return caller != nil && auth.HasRole(caller.Role, domain.RoleAdministrator)
}

func actorOf(caller *auth.Principal) events.Actor {
	if caller == nil {
		return events.Actor{}
	}
	return events.Actor{Username: caller.Username}
}

func (s *UserService) hashPassword(plain string) (string, error) {
	hash, err := s.hasher.Hash(plain)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", apperrors.NewValidationError("request validation failed", map[string]any{"password": "must be at most 72 bytes"})
	}
	if err != nil {
		return "", apperrors.NewInternalError(fmt.Errorf("hash password: %w", err))
	}
	return hash, nil
}
