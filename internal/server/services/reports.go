package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Renkon/StoreAPI/internal/common"
	"github.com/Renkon/StoreAPI/internal/dbx"
	"github.com/Renkon/StoreAPI/internal/server/models"
	"github.com/Renkon/StoreAPI/internal/server/repositories/repomanager"
)

// ReportService computes spending aggregates over the user population.
type ReportService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewReportService(db *sql.DB, m repomanager.RepositoryManager) *ReportService {
	return &ReportService{db: db, repomanager: m}
}

// UsersAboveAverageSpend returns the users whose running spend is strictly
// greater than the population mean, in insertion order. Users at exactly the
// mean are excluded. An empty population yields an empty result, not an
// error.
//
// The mean and the filtered set are read inside one read-only snapshot
// transaction so both primitives observe the same population; writers are
// never blocked.
func (s *ReportService) UsersAboveAverageSpend(ctx context.Context) ([]*models.User, error) {
	var result []*models.User

	err := dbx.WithSnapshotTx(ctx, s.db, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Users(tx)

		avg, ok, err := repo.AverageMoneySpent(ctx)
		if err != nil {
			return fmt.Errorf("%w: computing average spend: %w", common.ErrorInternal, err)
		}
		if !ok {
			// no users, mean undefined
			return nil
		}

		result, err = repo.ListWithMoneySpentAbove(ctx, avg)
		if err != nil {
			return fmt.Errorf("%w: listing users above average: %w", common.ErrorInternal, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if result == nil {
		result = []*models.User{}
	}
	return result, nil
}
