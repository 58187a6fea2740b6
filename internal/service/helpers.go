package service

import (
	"errors"

	"github.com/jackc/pgx/v5"

	apperrors "github.com/Behnamfe76/contacts-directory/pkg/util/errorutil"
)

// notFoundOr maps a missing row to a NOT_FOUND naming the resource and id,
// and anything else through MapError.
func notFoundOr(err error, resource string, id int64) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.NewNotFound(resource, map[string]any{"id": id})
	}
	return apperrors.MapError(err)
}
