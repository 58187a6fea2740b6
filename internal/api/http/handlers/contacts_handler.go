package handlers

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/Behnamfe76/contacts-directory/internal/api/dto"
	"github.com/Behnamfe76/contacts-directory/internal/auth"
	"github.com/Behnamfe76/contacts-directory/internal/repository"
	"github.com/Behnamfe76/contacts-directory/internal/service"
	apperrors "github.com/Behnamfe76/contacts-directory/pkg/util/errorutil"
	"github.com/Behnamfe76/contacts-directory/pkg/util/validation"
)

// ContactsHandler exposes directory entry endpoints.
type ContactsHandler struct {
	contacts  *service.ContactService
	validator *validation.Validator
}

// NewContactsHandler constructs handler.
func NewContactsHandler(contacts *service.ContactService, validator *validation.Validator) *ContactsHandler {
	return &ContactsHandler{contacts: contacts, validator: validator}
}

// List handles GET /api/contacts with an optional ddd filter.
func (h *ContactsHandler) List(c *fiber.Ctx) error {
	limit, offset, err := page(c)
	if err != nil {
		return err
	}
	filter := repository.ContactFilter{Limit: limit, Offset: offset}
	if ddd := c.Query("ddd"); ddd != "" {
		if err := h.validator.Var("ddd", ddd, "len=2,digits"); err != nil {
			return err
		}
		filter.DDD = &ddd
	}

	contacts, err := h.contacts.List(c.UserContext(), filter)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewContactListResponse(contacts)})
}

// Get handles GET /api/contacts/:id.
func (h *ContactsHandler) Get(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	contact, err := h.contacts.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewContactResponse(contact)})
}

// Create handles POST /api/contacts.
func (h *ContactsHandler) Create(c *fiber.Ctx) error {
	var req dto.ContactRequest
	if err := bind(c, h.validator, &req); err != nil {
		return err
	}

	caller, _ := auth.PrincipalFromContext(c)
	contact, err := h.contacts.Create(c.UserContext(), caller, toContactInput(req))
	if err != nil {
		return err
	}

	c.Location(fmt.Sprintf("/api/contacts/%d", contact.ID))
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.NewContactResponse(contact)})
}

// Update handles PUT /api/contacts/:id.
func (h *ContactsHandler) Update(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var req dto.ContactRequest
	if err := bind(c, h.validator, &req); err != nil {
		return err
	}
	if req.ID != 0 && req.ID != id {
		return apperrors.NewBadRequest("id in body does not match path")
	}

	caller, _ := auth.PrincipalFromContext(c)
	contact, err := h.contacts.Update(c.UserContext(), caller, id, toContactInput(req))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewContactResponse(contact)})
}

// Delete handles DELETE /api/contacts/:id.
func (h *ContactsHandler) Delete(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	caller, _ := auth.PrincipalFromContext(c)
	contact, err := h.contacts.Delete(c.UserContext(), caller, id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewContactResponse(contact)})
}

func toContactInput(req dto.ContactRequest) service.ContactInput {
	return service.ContactInput{Name: req.Name, DDD: req.DDD, Phone: req.Phone, Email: req.Email}
}
