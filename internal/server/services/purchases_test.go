package services

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/Renkon/StoreAPI/internal/common"
	"github.com/Renkon/StoreAPI/internal/server/repositories/repomanager"
	"github.com/stretchr/testify/require"
)

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return db, mock
}

var (
	incrementQuery = `(?s)^UPDATE\s+users\s+SET\s+money_spent\s*=\s*money_spent\s*\+\s*\$1\s+WHERE\s+national_id\s*=\s*\$2\s+RETURNING\s+`
	insertQuery    = `(?s)^INSERT\s+INTO\s+purchase_records`
	userRowColumns = []string{"id", "national_id", "first_name", "last_name", "money_spent"}
)

func TestRecordPurchase_Success(t *testing.T) {
	db, mock := newSQLMockDB(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(incrementQuery).
		WithArgs(2.5, int64(17246710)).
		WillReturnRows(sqlmock.NewRows(userRowColumns).
			AddRow(int64(1), int64(17246710), "Ada", "Lovelace", 11.25))
	mock.ExpectExec(insertQuery).
		WithArgs(sqlmock.AnyArg(), int64(17246710), "Potatoes", 10.0, 0.25).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	svc := NewPurchaseService(db, repomanager.NewPostgresRepositoryManager())

	err := svc.RecordPurchase(context.Background(), 17246710, "Potatoes", 10, 0.25)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordPurchase_UserNotFound_AbortsBeforeInsert(t *testing.T) {
	db, mock := newSQLMockDB(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(incrementQuery).
		WithArgs(2.5, int64(99999999)).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	svc := NewPurchaseService(db, repomanager.NewPostgresRepositoryManager())

	err := svc.RecordPurchase(context.Background(), 99999999, "Potatoes", 10, 0.25)
	require.ErrorIs(t, err, common.ErrorNotFound)
	// no insert expectation was registered: the increment is the single
	// existence check, nothing further may touch the store
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordPurchase_InsertFailure_RollsBackIncrement(t *testing.T) {
	db, mock := newSQLMockDB(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(incrementQuery).
		WithArgs(2.5, int64(17246710)).
		WillReturnRows(sqlmock.NewRows(userRowColumns).
			AddRow(int64(1), int64(17246710), "Ada", "Lovelace", 11.25))
	mock.ExpectExec(insertQuery).
		WithArgs(sqlmock.AnyArg(), int64(17246710), "Potatoes", 10.0, 0.25).
		WillReturnError(errors.New("write conflict"))
	mock.ExpectRollback()

	svc := NewPurchaseService(db, repomanager.NewPostgresRepositoryManager())

	err := svc.RecordPurchase(context.Background(), 17246710, "Potatoes", 10, 0.25)
	require.ErrorIs(t, err, common.ErrorInternal)
	require.NotErrorIs(t, err, common.ErrorNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordPurchase_DeltaIsQuantityTimesCost(t *testing.T) {
	db, mock := newSQLMockDB(t)
	defer db.Close()

	// deliberately not exact in binary floating point: the increment must
	// carry the runtime product, with no rounding applied anywhere
	quantity, cost := 10.0, 0.33

	mock.ExpectBegin()
	mock.ExpectQuery(incrementQuery).
		WithArgs(quantity*cost, int64(17246710)).
		WillReturnRows(sqlmock.NewRows(userRowColumns).
			AddRow(int64(1), int64(17246710), "Ada", "Lovelace", quantity*cost))
	mock.ExpectExec(insertQuery).
		WithArgs(sqlmock.AnyArg(), int64(17246710), "Potatoes", quantity, cost).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	svc := NewPurchaseService(db, repomanager.NewPostgresRepositoryManager())

	err := svc.RecordPurchase(context.Background(), 17246710, "Potatoes", quantity, cost)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordPurchase_BeginFailure(t *testing.T) {
	db, mock := newSQLMockDB(t)
	defer db.Close()

	mock.ExpectBegin().WillReturnError(errors.New("no connection"))

	svc := NewPurchaseService(db, repomanager.NewPostgresRepositoryManager())

	err := svc.RecordPurchase(context.Background(), 17246710, "Potatoes", 10, 0.25)
	require.Error(t, err)
}
