// Package authz expresses the ownership rule shared by every resource
// type: one user is the sole party authorized to mutate or delete a given
// resource.
package authz

import (
	"context"
	"errors"
	"fmt"
)

var ErrForbidden = errors.New("forbidden")

// Ownable is implemented by any store whose resources have a single owner.
type Ownable interface {
	IsOwnedBy(ctx context.Context, resourceID, userID int64) (bool, error)
}

// RequireOwner returns ErrForbidden unless the resource exists and belongs
// to userID. Existence must be checked by the caller beforehand when a
// distinct not-found outcome is wanted; a missing resource is treated as
// not owned here.
func RequireOwner(ctx context.Context, resource Ownable, resourceID, userID int64) error {
	owned, err := resource.IsOwnedBy(ctx, resourceID, userID)
	if err != nil {
		return fmt.Errorf("check ownership: %w", err)
	}
	if !owned {
		return ErrForbidden
	}
	return nil
}
