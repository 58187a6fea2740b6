package dto

import (
	"time"

	"github.com/Behnamfe76/contacts-directory/internal/domain"
)

// ContactRequest payload for creating or replacing a contact. ID is optional
// on update and must match the path when sent.
type ContactRequest struct {
	ID    int64  `json:"id"`
	Name  string `json:"name" validate:"required,max=100"`
	DDD   string `json:"ddd" validate:"required,len=2,digits"`
	Phone string `json:"phone" validate:"required,min=8,max=9,digits"`
	Email string `json:"email" validate:"required,email,max=254"`
}

// ContactResponse is the public view of a contact.
type ContactResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	DDD       string    `json:"ddd"`
	Phone     string    `json:"phone"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewContactResponse maps a domain contact.
func NewContactResponse(c *domain.Contact) ContactResponse {
	return ContactResponse{
		ID:        c.ID,
		Name:      c.Name,
		DDD:       c.DDD,
		Phone:     c.Phone,
		Email:     c.Email,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

// NewContactListResponse maps a slice of contacts.
func NewContactListResponse(contacts []domain.Contact) []ContactResponse {
	out := make([]ContactResponse, 0, len(contacts))
	for i := range contacts {
		out = append(out, NewContactResponse(&contacts[i]))
	}
	return out
}
