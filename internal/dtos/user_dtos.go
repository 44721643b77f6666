package dtos

import (
	"time"

	"github.com/google/uuid"

	"github.com/NdoloMwende/Homehub-Backend/internal/models"
)

// RegisterUserRequest creates an account pending admin verification.
type RegisterUserRequest struct {
	Email    string `json:"email" validate:"required,email"`
	FullName string `json:"full_name" validate:"required,min=1"`
	Phone    string `json:"phone,omitempty" validate:"omitempty,min=9"`
	Role     string `json:"role" validate:"required,oneof=TENANT LANDLORD"`
}

// VerifyUserRequest is the admin action that settles a pending account.
type VerifyUserRequest struct {
	Status string `json:"status" validate:"required,oneof=ACTIVE REJECTED"`
}

type UserResponse struct {
	ID        uuid.UUID             `json:"id"`
	Email     string                `json:"email"`
	FullName  string                `json:"full_name"`
	Phone     string                `json:"phone,omitempty"`
	Role      models.UserRoleType   `json:"role"`
	Status    models.UserStatusType `json:"status"`
	CreatedAt time.Time             `json:"created_at"`
}

func NewUserResponse(u *models.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		FullName:  u.FullName,
		Phone:     u.Phone,
		Role:      u.Role,
		Status:    u.Status,
		CreatedAt: u.CreatedAt,
	}
}

func NewUserListResponse(users []*models.User) []UserResponse {
	out := make([]UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, NewUserResponse(u))
	}
	return out
}
