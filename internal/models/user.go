package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type UserRoleType string

const (
	RoleTenant   UserRoleType = "TENANT"
	RoleLandlord UserRoleType = "LANDLORD"
	RoleAdmin    UserRoleType = "ADMIN"
)

type UserStatusType string

const (
	UserStatusPending  UserStatusType = "PENDING"
	UserStatusActive   UserStatusType = "ACTIVE"
	UserStatusRejected UserStatusType = "REJECTED"
)

// ParseUserRole rejects unrecognized role values at the boundary instead of
// lowercased string comparisons at each call site.
func ParseUserRole(s string) (UserRoleType, error) {
	switch UserRoleType(strings.ToUpper(s)) {
	case RoleTenant:
		return RoleTenant, nil
	case RoleLandlord:
		return RoleLandlord, nil
	case RoleAdmin:
		return RoleAdmin, nil
	default:
		return "", fmt.Errorf("unknown user role %q", s)
	}
}

func ParseUserStatus(s string) (UserStatusType, error) {
	switch UserStatusType(strings.ToUpper(s)) {
	case UserStatusPending:
		return UserStatusPending, nil
	case UserStatusActive:
		return UserStatusActive, nil
	case UserStatusRejected:
		return UserStatusRejected, nil
	default:
		return "", fmt.Errorf("unknown user status %q", s)
	}
}

type User struct {
	ID       uuid.UUID      `json:"id"`
	FullName string         `json:"full_name"`
	Email    string         `json:"email"`
	Phone    string         `json:"phone,omitempty"`
	Role     UserRoleType   `json:"role"`
	Status   UserStatusType `json:"status"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (u *User) GetID() string {
	return u.ID.String()
}
