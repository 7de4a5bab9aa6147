// Package services contains server-side business logic. This file implements
// PurchaseService, which records purchases as a single atomic unit: advance
// the buyer's running spend and append the purchase record, or do neither.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Renkon/StoreAPI/internal/common"
	"github.com/Renkon/StoreAPI/internal/dbx"
	"github.com/Renkon/StoreAPI/internal/server/models"
	"github.com/Renkon/StoreAPI/internal/server/repositories/repomanager"
)

// PurchaseService coordinates the purchase write path.
type PurchaseService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

// NewPurchaseService constructs a PurchaseService using the shared database
// handle and repository manager.
func NewPurchaseService(db *sql.DB, m repomanager.RepositoryManager) *PurchaseService {
	return &PurchaseService{db: db, repomanager: m}
}

// RecordPurchase performs one purchase by nationalID inside a single
// transaction:
//
//  1. Atomically find the user and increment money_spent by quantity*cost.
//     This is the only existence check; sql.ErrNoRows surfaces here as
//     common.ErrorNotFound and aborts the transaction before anything is
//     written.
//  2. Insert the purchase record referencing the confirmed national id.
//
// Commit happens on return from the WithTx scope; any error rolls both steps
// back, so no partial state is ever visible to other transactions.
//
// Callers are expected to have validated quantity >= 0 and cost >= 0; the
// coordinator does not re-validate. Transaction faults (write conflicts,
// infrastructure errors) propagate unchanged and are retryable by the
// caller; no retry is attempted here.
func (s *PurchaseService) RecordPurchase(ctx context.Context, nationalID int64, product string, quantity, cost float64) error {
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		usersRepo := s.repomanager.Users(tx)

		if _, err := usersRepo.IncrementMoneySpent(ctx, nationalID, quantity*cost); err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return common.ErrorNotFound
			}
			return fmt.Errorf("%w: incrementing user spend: %w", common.ErrorInternal, err)
		}

		record := &models.PurchaseRecord{
			UserNationalID: nationalID,
			Product:        product,
			Quantity:       quantity,
			Cost:           cost,
		}

		purchasesRepo := s.repomanager.Purchases(tx)
		if _, err := purchasesRepo.Create(ctx, record); err != nil {
			return fmt.Errorf("%w: inserting purchase record: %w", common.ErrorInternal, err)
		}

		return nil
	})
	return err
}

// ListByUserNationalID returns the purchase records referencing a national
// id. Records of deleted users are still returned.
func (s *PurchaseService) ListByUserNationalID(ctx context.Context, nationalID int64) ([]*models.PurchaseRecord, error) {
	repo := s.repomanager.Purchases(s.db)
	return repo.ListByUserNationalID(ctx, nationalID)
}
