// Package purchases provides the PostgreSQL-backed repository for the
// append-only purchase record log.
package purchases

import (
	"context"
	"fmt"

	"github.com/Renkon/StoreAPI/internal/dbx"
	"github.com/Renkon/StoreAPI/internal/server/models"
	"github.com/google/uuid"
)

// PostgresRepository implements Repository over a dbx.DBTX
// (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, record *models.PurchaseRecord) (string, error) {

	if record.ID == "" {
		record.ID = uuid.NewString()
	}

	query :=
		`INSERT INTO purchase_records (id, user_national_id, product, quantity, cost)
		 VALUES ($1, $2, $3, $4, $5)
		 `

	_, err := r.db.ExecContext(ctx, query,
		record.ID, record.UserNationalID, record.Product, record.Quantity, record.Cost)

	if err != nil {
		return "", fmt.Errorf("db error: %w", err)
	}

	return record.ID, nil
}

func (r *PostgresRepository) ListByUserNationalID(ctx context.Context, nationalID int64) ([]*models.PurchaseRecord, error) {
	query :=
		`SELECT id, user_national_id, product, quantity, cost FROM purchase_records
		 WHERE user_national_id = $1
		 `

	rows, err := r.db.QueryContext(ctx, query, nationalID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.PurchaseRecord
	for rows.Next() {
		var item models.PurchaseRecord
		if err := rows.Scan(&item.ID, &item.UserNationalID, &item.Product, &item.Quantity, &item.Cost); err != nil {
			return nil, err
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
