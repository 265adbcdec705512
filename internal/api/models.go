package api

import (
	"time"

	"github.com/google/uuid"

	"github.com/mhutton/relay-api/internal/domain"
)

// LoginRequest is the payload for the login endpoint.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// RegisterRequest is the payload for the registration endpoint.
type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	// Role is optional and defaults to the regular user role.
	Role string `json:"role,omitempty"`
}

// UserResponse is the client-visible projection of a user. Password
// material never appears here.
type UserResponse struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

func newUserResponse(u domain.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
}

// AuthResponse is returned by login and registration: the issued access
// token together with the authenticated user.
type AuthResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

// UserListResponse wraps user collections so the payload can grow
// alongside pagination later.
type UserListResponse struct {
	Users []UserResponse `json:"users"`
	Count int            `json:"count"`
}

func newUserListResponse(users []*domain.User) UserListResponse {
	out := make([]UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, newUserResponse(*u))
	}
	return UserListResponse{Users: out, Count: len(out)}
}
