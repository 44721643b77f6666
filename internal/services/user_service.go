package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/NdoloMwende/Homehub-Backend/internal/models"
	"github.com/NdoloMwende/Homehub-Backend/internal/repositories"
	"github.com/NdoloMwende/Homehub-Backend/internal/utils"
)

// UserService covers registration and admin verification. Authentication
// mechanics live elsewhere; this service only owns the user records the
// workflows depend on.
type UserService struct {
	store repositories.Store
}

func NewUserService(store repositories.Store) *UserService {
	return &UserService{store: store}
}

// Register creates a user in PENDING verification status. Admin accounts are
// provisioned out of band, never self-registered.
func (s *UserService) Register(ctx context.Context, fullName, email, phone, role string) (*models.User, error) {
	parsedRole, err := models.ParseUserRole(role)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", err, utils.ErrValidation)
	}
	if parsedRole == models.RoleAdmin {
		return nil, fmt.Errorf("admin accounts cannot self-register: %w", utils.ErrUnauthorized)
	}

	user := &models.User{
		ID:       uuid.New(),
		FullName: fullName,
		Email:    email,
		Phone:    phone,
		Role:     parsedRole,
		Status:   models.UserStatusPending,
	}

	err = s.store.WithTx(ctx, func(r repositories.Repos) error {
		existing, err := r.Users.GetByEmail(ctx, email)
		if err != nil {
			return err
		}
		if existing != nil {
			return fmt.Errorf("email %s already registered: %w", email, utils.ErrConflict)
		}
		return r.Users.Create(ctx, user)
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// Verify is the admin verification action: PENDING -> ACTIVE or REJECTED.
func (s *UserService) Verify(ctx context.Context, userID uuid.UUID, status string, actorID uuid.UUID) error {
	parsed, err := models.ParseUserStatus(status)
	if err != nil {
		return fmt.Errorf("%s: %w", err, utils.ErrValidation)
	}

	return s.store.WithTx(ctx, func(r repositories.Repos) error {
		actor, err := requireActor(ctx, r, actorID)
		if err != nil {
			return err
		}
		if res := authorize(actor, capability{role: models.RoleAdmin, owns: true}); !res.Allowed {
			return fmt.Errorf("%s: %w", res.Reason, utils.ErrUnauthorized)
		}

		user, err := r.Users.GetByID(ctx, userID)
		if err != nil {
			return err
		}
		if user == nil {
			return fmt.Errorf("user %s: %w", userID, utils.ErrNotFound)
		}
		return r.Users.UpdateStatus(ctx, userID, parsed)
	})
}

func (s *UserService) List(ctx context.Context, actorID uuid.UUID) ([]*models.User, error) {
	r := s.store.Repos()
	actor, err := requireActor(ctx, r, actorID)
	if err != nil {
		return nil, err
	}
	if res := authorize(actor, capability{role: models.RoleAdmin, owns: true}); !res.Allowed {
		return nil, fmt.Errorf("%s: %w", res.Reason, utils.ErrUnauthorized)
	}
	return r.Users.ListAll(ctx)
}
