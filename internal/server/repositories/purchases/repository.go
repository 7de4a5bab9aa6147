package purchases

import (
	"context"

	"github.com/Renkon/StoreAPI/internal/server/models"
)

// Repository is the purchase-records side of the storage gateway. Records
// are append-only: there is no update or delete.
type Repository interface {
	// Create inserts one record and returns its store id.
	Create(ctx context.Context, record *models.PurchaseRecord) (string, error)

	// ListByUserNationalID returns every record referencing the national id.
	// The referenced user may no longer exist.
	ListByUserNationalID(ctx context.Context, nationalID int64) ([]*models.PurchaseRecord, error)
}
