package dto

import (
	"time"

	"github.com/Behnamfe76/contacts-directory/internal/domain"
)

// UserCreateRequest payload for registration. Role defaults to CommonUser
// and Active to true.
type UserCreateRequest struct {
	Username string       `json:"username" validate:"required,max=100"`
	Password string       `json:"password" validate:"required,password_strength"`
	Role     *domain.Role `json:"role"`
	Active   *bool        `json:"active"`
}

// UserUpdateRequest payload for PUT /api/users/:id. An empty password keeps the current one.
type UserUpdateRequest struct {
	ID       int64        `json:"id" validate:"required"`
	Username string       `json:"username" validate:"required,max=100"`
	Password string       `json:"password" validate:"omitempty,password_strength"`
	Role     *domain.Role `json:"role"`
	Active   *bool        `json:"active"`
}

// UserResponse is the public view of a user. The stored password is never exposed.
type UserResponse struct {
	ID        int64       `json:"id"`
	Username  string      `json:"username"`
	Active    bool        `json:"active"`
	Role      domain.Role `json:"role"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// NewUserResponse maps a domain user.
func NewUserResponse(u *domain.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Active:    u.Active,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// NewUserListResponse maps a slice of users.
func NewUserListResponse(users []domain.User) []UserResponse {
	out := make([]UserResponse, 0, len(users))
	for i := range users {
		out = append(out, NewUserResponse(&users[i]))
	}
	return out
}
