package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	apperrors "github.com/Behnamfe76/contacts-directory/pkg/util/errorutil"
	"github.com/Behnamfe76/contacts-directory/pkg/util/validation"
)

// bind parses the JSON body into dst and validates it.
func bind(c *fiber.Ctx, v *validation.Validator, dst any) error {
	if err := c.BodyParser(dst); err != nil {
		return apperrors.NewBadRequest("invalid payload")
	}
	return v.Struct(dst)
}

func pathID(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.NewBadRequest("id must be a positive integer")
	}
	return id, nil
}

func queryInt(c *fiber.Ctx, key string) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, apperrors.NewValidationError("request validation failed", map[string]any{
			key: "must be a non-negative integer",
		})
	}
	return n, nil
}

func page(c *fiber.Ctx) (limit, offset int, err error) {
	if limit, err = queryInt(c, "limit"); err != nil {
		return 0, 0, err
	}
	if offset, err = queryInt(c, "offset"); err != nil {
		return 0, 0, err
	}
	return limit, offset, nil
}
