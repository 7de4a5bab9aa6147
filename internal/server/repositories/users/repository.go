package users

import (
	"context"

	"github.com/Renkon/StoreAPI/internal/server/models"
)

// Repository is the users side of the storage gateway. Operations that
// target a single user address it by national id, never by the
// store-assigned primary key.
type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByNationalID(ctx context.Context, nationalID int64) (*models.User, error)
	List(ctx context.Context) ([]*models.User, error)
	UpdateName(ctx context.Context, nationalID int64, firstName, lastName string) (*models.User, error)
	Delete(ctx context.Context, nationalID int64) error

	// IncrementMoneySpent atomically locates the user and advances their
	// running spend by delta, returning the post-update row. It is the only
	// way money_spent is ever mutated.
	IncrementMoneySpent(ctx context.Context, nationalID int64, delta float64) (*models.User, error)

	// AverageMoneySpent returns the mean running spend over all users.
	// ok is false when the table is empty and the mean is undefined.
	AverageMoneySpent(ctx context.Context) (avg float64, ok bool, err error)

	// ListWithMoneySpentAbove returns users whose running spend is strictly
	// greater than threshold, in insertion order.
	ListWithMoneySpentAbove(ctx context.Context, threshold float64) ([]*models.User, error)
}
