package api

import (
	"github.com/google/uuid"

	"github.com/taskward-app/taskward-api/internal/domain"
)

// GoogleLoginRequest is the request body for /auth/google.
// The caller has already completed the Google OAuth flow and supplies the
// resulting profile.
type GoogleLoginRequest struct {
	Email     string `json:"email"      validate:"required,email"`
	Name      string `json:"name"       validate:"required"`
	AvatarURL string `json:"avatar_url" validate:"omitempty,url"`
}

// MagicLinkRequest is the request body for /auth/magic-link.
type MagicLinkRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// VerifyTokenRequest is the request body for /auth/verify-token.
type VerifyTokenRequest struct {
	Token string `json:"token" validate:"required"`
}

// UserResponse is the client-facing view of a user.
type UserResponse struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	AvatarURL string    `json:"avatar_url,omitempty"`
}

// NewUserResponse maps a domain user to its API representation.
func NewUserResponse(user *domain.User) UserResponse {
	return UserResponse{
		ID:        user.ID,
		Email:     user.Email,
		Name:      user.Name,
		AvatarURL: user.AvatarURL,
	}
}

// AuthResponse is the response body for successful authentication.
type AuthResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

// MessageResponse is a generic acknowledgement body.
type MessageResponse struct {
	Message string `json:"message"`
}

// CreateTaskRequest is the request body for POST /tasks.
// Image may carry a data URI or remote URL to be stored externally.
type CreateTaskRequest struct {
	Title       string `json:"title" validate:"required,max=500"`
	Description string `json:"description,omitempty"`
	Image       string `json:"image,omitempty"`
}

// UpdateTaskRequest is the request body for PUT /tasks/{id}.
// Only non-nil fields are applied.
type UpdateTaskRequest struct {
	Title       *string `json:"title,omitempty"       validate:"omitempty,max=500"`
	Description *string `json:"description,omitempty"`
	Completed   *bool   `json:"completed,omitempty"`
	Image       *string `json:"image,omitempty"`
}
