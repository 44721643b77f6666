package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/NdoloMwende/Homehub-Backend/internal/models"
	"github.com/NdoloMwende/Homehub-Backend/internal/repositories"
	"github.com/NdoloMwende/Homehub-Backend/internal/utils"
)

// capability pairs a role with the ownership predicate already evaluated for
// the concrete actor. An operation declares the capabilities that may perform
// it; nothing passes implicitly.
type capability struct {
	role models.UserRoleType
	owns bool
}

type authzResult struct {
	Allowed bool
	Reason  string
}

func authorize(actor *models.User, caps ...capability) authzResult {
	for _, c := range caps {
		if actor.Role == c.role && c.owns {
			return authzResult{Allowed: true}
		}
	}
	return authzResult{
		Allowed: false,
		Reason:  fmt.Sprintf("role %s may not perform this operation", actor.Role),
	}
}

// requireActor loads the acting user or fails with NotFound.
func requireActor(ctx context.Context, r repositories.Repos, actorID uuid.UUID) (*models.User, error) {
	actor, err := r.Users.GetByID(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if actor == nil {
		return nil, fmt.Errorf("actor %s: %w", actorID, utils.ErrNotFound)
	}
	return actor, nil
}

// leaseContext resolves the unit and property behind a lease; every
// ownership check on a lease goes through it.
func leaseContext(ctx context.Context, r repositories.Repos, lease *models.Lease) (*models.Unit, *models.Property, error) {
	unit, err := r.Units.GetByID(ctx, lease.UnitID)
	if err != nil {
		return nil, nil, err
	}
	if unit == nil {
		return nil, nil, fmt.Errorf("unit %s behind lease %s: %w", lease.UnitID, lease.ID, utils.ErrNotFound)
	}
	property, err := r.Properties.GetByID(ctx, unit.PropertyID)
	if err != nil {
		return nil, nil, err
	}
	if property == nil {
		return nil, nil, fmt.Errorf("property %s behind unit %s: %w", unit.PropertyID, unit.ID, utils.ErrNotFound)
	}
	return unit, property, nil
}
