package handlers

import (
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/Behnamfe76/contacts-directory/internal/api/dto"
	"github.com/Behnamfe76/contacts-directory/internal/auth"
	"github.com/Behnamfe76/contacts-directory/internal/domain"
	"github.com/Behnamfe76/contacts-directory/internal/repository"
	"github.com/Behnamfe76/contacts-directory/internal/service"
	apperrors "github.com/Behnamfe76/contacts-directory/pkg/util/errorutil"
	"github.com/Behnamfe76/contacts-directory/pkg/util/validation"
)

// UsersHandler exposes account management endpoints.
type UsersHandler struct {
	users     *service.UserService
	validator *validation.Validator
}

// NewUsersHandler constructs handler.
func NewUsersHandler(users *service.UserService, validator *validation.Validator) *UsersHandler {
	return &UsersHandler{users: users, validator: validator}
}

// Create handles POST /api/users.
func (h *UsersHandler) Create(c *fiber.Ctx) error {
	var req dto.UserCreateRequest
	if err := bind(c, h.validator, &req); err != nil {
		return err
	}

	in := service.CreateUserInput{
		Username: req.Username,
		Password: req.Password,
		Role:     domain.RoleCommonUser,
		Active:   true,
	}
	if req.Role != nil {
		in.Role = *req.Role
	}
	if req.Active != nil {
		in.Active = *req.Active
	}

	caller, _ := auth.PrincipalFromContext(c)
	user, err := h.users.Create(c.UserContext(), caller, in)
	if err != nil {
		return err
	}

	c.Location(fmt.Sprintf("/api/users/%d", user.ID))
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.NewUserResponse(user)})
}

// List handles GET /api/users.
func (h *UsersHandler) List(c *fiber.Ctx) error {
	limit, offset, err := page(c)
	if err != nil {
		return err
	}
	filter := repository.UserFilter{Limit: limit, Offset: offset}
	if raw := c.Query("active"); raw != "" {
		active, err := strconv.ParseBool(raw)
		if err != nil {
			return apperrors.NewValidationError("request validation failed", map[string]any{"active": "must be a boolean"})
		}
		filter.Active = &active
	}

	users, err := h.users.List(c.UserContext(), filter)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewUserListResponse(users)})
}

// Get handles GET /api/users/:id.
func (h *UsersHandler) Get(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	user, err := h.users.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewUserResponse(user)})
}

// Update handles PUT /api/users/:id.
func (h *UsersHandler) Update(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var req dto.UserUpdateRequest
	if err := bind(c, h.validator, &req); err != nil {
		return err
	}

	caller, _ := auth.PrincipalFromContext(c)
	_, err = h.users.Update(c.UserContext(), caller, id, service.UpdateUserInput{
		ID:       req.ID,
		Username: req.Username,
		Password: req.Password,
		Role:     req.Role,
		Active:   req.Active,
	})
	if err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Deactivate handles DELETE /api/users/:id.
func (h *UsersHandler) Deactivate(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	caller, _ := auth.PrincipalFromContext(c)
	if err := h.users.Deactivate(c.UserContext(), caller, id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}
