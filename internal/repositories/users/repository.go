package users

import (
	"context"

	"github.com/dmitrijs2005/accesskeeper/internal/models"
	"github.com/google/uuid"
)

// Repository persists user records keyed by ID.
//
// Find returns common.ErrorNotFound when no record exists. Save inserts or
// replaces. Delete of an unknown id is not an error.
type Repository interface {
	Save(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id uuid.UUID) error
	Find(ctx context.Context, id uuid.UUID) (*models.User, error)
	All(ctx context.Context) ([]*models.User, error)
}

// Transactional is implemented by stores that can run a read-modify-write
// cycle atomically. fn receives a Repository scoped to the transaction.
type Transactional interface {
	InTx(ctx context.Context, fn func(ctx context.Context, repo Repository) error) error
}
