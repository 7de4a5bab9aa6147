// Package users provides the PostgreSQL-backed repository for user rows,
// including the atomic money_spent increment used by the purchase
// transaction and the aggregate primitives used by the spending report.
package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Renkon/StoreAPI/internal/common"
	"github.com/Renkon/StoreAPI/internal/dbx"
	"github.com/Renkon/StoreAPI/internal/server/models"
	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

// PostgresRepository implements Repository over a dbx.DBTX
// (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a user. The store assigns the row id; callers own
// national_id, and a duplicate one yields common.ErrorConflict.
func (r *PostgresRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {

	query :=
		`INSERT INTO users (national_id, first_name, last_name, money_spent)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id
		 `

	err := r.db.QueryRowContext(ctx, query,
		user.NationalID, user.FirstName, user.LastName, user.MoneySpent).Scan(&user.ID)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, common.ErrorConflict
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

func (r *PostgresRepository) GetByNationalID(ctx context.Context, nationalID int64) (*models.User, error) {
	query :=
		`SELECT id, national_id, first_name, last_name, money_spent FROM users
		 WHERE national_id = $1
		 `

	user := &models.User{}
	err := r.db.QueryRowContext(ctx, query, nationalID).Scan(
		&user.ID, &user.NationalID, &user.FirstName, &user.LastName, &user.MoneySpent)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

func (r *PostgresRepository) List(ctx context.Context) ([]*models.User, error) {
	query :=
		`SELECT id, national_id, first_name, last_name, money_spent FROM users
		 ORDER BY id
		 `

	return r.queryUsers(ctx, query)
}

// UpdateName finds the user and rewrites the name fields in one statement.
// money_spent is deliberately not touchable through this operation.
func (r *PostgresRepository) UpdateName(ctx context.Context, nationalID int64, firstName, lastName string) (*models.User, error) {
	query :=
		`UPDATE users SET first_name = $1, last_name = $2
		 WHERE national_id = $3
		 RETURNING id, national_id, first_name, last_name, money_spent
		 `

	user := &models.User{}
	err := r.db.QueryRowContext(ctx, query, firstName, lastName, nationalID).Scan(
		&user.ID, &user.NationalID, &user.FirstName, &user.LastName, &user.MoneySpent)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

// Delete removes the user row. Purchase records referencing the national id
// are left in place.
func (r *PostgresRepository) Delete(ctx context.Context, nationalID int64) error {
	query :=
		`DELETE FROM users
		 WHERE national_id = $1
		 `

	res, err := r.db.ExecContext(ctx, query, nationalID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}

	return nil
}

// IncrementMoneySpent performs the find-and-increment as a single UPDATE, so
// existence check and mutation happen in one indivisible step and concurrent
// increments against the same user serialize at the row.
func (r *PostgresRepository) IncrementMoneySpent(ctx context.Context, nationalID int64, delta float64) (*models.User, error) {
	query :=
		`UPDATE users SET money_spent = money_spent + $1
		 WHERE national_id = $2
		 RETURNING id, national_id, first_name, last_name, money_spent
		 `

	user := &models.User{}
	err := r.db.QueryRowContext(ctx, query, delta, nationalID).Scan(
		&user.ID, &user.NationalID, &user.FirstName, &user.LastName, &user.MoneySpent)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

// AverageMoneySpent computes the mean running spend. AVG over zero rows is
// NULL, which maps to ok=false rather than an error.
func (r *PostgresRepository) AverageMoneySpent(ctx context.Context) (float64, bool, error) {
	query :=
		`SELECT AVG(money_spent) FROM users
		 `

	var avg sql.NullFloat64
	err := r.db.QueryRowContext(ctx, query).Scan(&avg)
	if err != nil {
		return 0, false, fmt.Errorf("db error: %w", err)
	}

	return avg.Float64, avg.Valid, nil
}

func (r *PostgresRepository) ListWithMoneySpentAbove(ctx context.Context, threshold float64) ([]*models.User, error) {
	query :=
		`SELECT id, national_id, first_name, last_name, money_spent FROM users
		 WHERE money_spent > $1
		 ORDER BY id
		 `

	return r.queryUsers(ctx, query, threshold)
}

func (r *PostgresRepository) queryUsers(ctx context.Context, query string, args ...any) ([]*models.User, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.User
	for rows.Next() {
		var item models.User
		if err := rows.Scan(&item.ID, &item.NationalID, &item.FirstName, &item.LastName, &item.MoneySpent); err != nil {
			return nil, err
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
