package users

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/Renkon/StoreAPI/internal/common"
	"github.com/Renkon/StoreAPI/internal/server/models"
	"github.com/jackc/pgx/v5/pgconn"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

var userColumns = []string{"id", "national_id", "first_name", "last_name", "money_spent"}

func TestCreate_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^INSERT\s+INTO\s+users\s*\(national_id,\s*first_name,\s*last_name,\s*money_spent\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3,\s*\$4\)\s*RETURNING\s+id\s*$`

	rows := sqlmock.NewRows([]string{"id"}).AddRow(int64(7))
	mock.ExpectQuery(q).
		WithArgs(int64(17246710), "Ada", "Lovelace", 0.0).
		WillReturnRows(rows)

	u := &models.User{NationalID: 17246710, FirstName: "Ada", LastName: "Lovelace"}
	got, err := repo.Create(context.Background(), u)
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if got.ID != 7 || got.NationalID != 17246710 {
		t.Fatalf("unexpected user: %+v", got)
	}
}

func TestCreate_DuplicateNationalID(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^INSERT\s+INTO\s+users`

	mock.ExpectQuery(q).
		WithArgs(int64(17246710), "Ada", "Lovelace", 0.0).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	_, err := repo.Create(context.Background(), &models.User{NationalID: 17246710, FirstName: "Ada", LastName: "Lovelace"})
	if !errors.Is(err, common.ErrorConflict) {
		t.Fatalf("want common.ErrorConflict, got %v", err)
	}
}

func TestCreate_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^INSERT\s+INTO\s+users`

	mock.ExpectQuery(q).
		WithArgs(int64(17246710), "Ada", "Lovelace", 0.0).
		WillReturnError(errors.New("db down"))

	_, err := repo.Create(context.Background(), &models.User{NationalID: 17246710, FirstName: "Ada", LastName: "Lovelace"})
	if err == nil || !regexp.MustCompile(`db error: .*db down`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestGetByNationalID_Found(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^SELECT\s+id,\s*national_id,\s*first_name,\s*last_name,\s*money_spent\s+FROM\s+users\s+WHERE\s+national_id\s*=\s*\$1\s*$`

	rows := sqlmock.NewRows(userColumns).
		AddRow(int64(1), int64(17246710), "Ada", "Lovelace", 8.75)
	mock.ExpectQuery(q).
		WithArgs(int64(17246710)).
		WillReturnRows(rows)

	got, err := repo.GetByNationalID(context.Background(), 17246710)
	if err != nil {
		t.Fatalf("GetByNationalID error: %v", err)
	}
	if got.ID != 1 || got.MoneySpent != 8.75 {
		t.Fatalf("unexpected user: %+v", got)
	}
}

func TestGetByNationalID_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^SELECT\s+id,\s*national_id`

	mock.ExpectQuery(q).
		WithArgs(int64(99999999)).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByNationalID(context.Background(), 99999999)
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want common.ErrorNotFound, got %v", err)
	}
}

func TestUpdateName_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^UPDATE\s+users\s+SET\s+first_name\s*=\s*\$1,\s*last_name\s*=\s*\$2\s+WHERE\s+national_id\s*=\s*\$3\s+RETURNING\s+`

	mock.ExpectQuery(q).
		WithArgs("Ada", "King", int64(99999999)).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.UpdateName(context.Background(), 99999999, "Ada", "King")
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want common.ErrorNotFound, got %v", err)
	}
}

func TestDelete_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^DELETE\s+FROM\s+users\s+WHERE\s+national_id\s*=\s*\$1\s*$`

	mock.ExpectExec(q).
		WithArgs(int64(17246710)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.Delete(context.Background(), 17246710); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
}

func TestDelete_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^DELETE\s+FROM\s+users`

	mock.ExpectExec(q).
		WithArgs(int64(99999999)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), 99999999)
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want common.ErrorNotFound, got %v", err)
	}
}

func TestIncrementMoneySpent_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^UPDATE\s+users\s+SET\s+money_spent\s*=\s*money_spent\s*\+\s*\$1\s+WHERE\s+national_id\s*=\s*\$2\s+RETURNING\s+`

	rows := sqlmock.NewRows(userColumns).
		AddRow(int64(1), int64(17246710), "Ada", "Lovelace", 12.05)
	mock.ExpectQuery(q).
		WithArgs(3.30, int64(17246710)).
		WillReturnRows(rows)

	got, err := repo.IncrementMoneySpent(context.Background(), 17246710, 3.30)
	if err != nil {
		t.Fatalf("IncrementMoneySpent error: %v", err)
	}
	if got.MoneySpent != 12.05 {
		t.Fatalf("unexpected money spent: %v", got.MoneySpent)
	}
}

func TestIncrementMoneySpent_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^UPDATE\s+users\s+SET\s+money_spent`

	mock.ExpectQuery(q).
		WithArgs(3.30, int64(99999999)).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.IncrementMoneySpent(context.Background(), 99999999, 3.30)
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want common.ErrorNotFound, got %v", err)
	}
}

func TestAverageMoneySpent_Empty(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^SELECT\s+AVG\(money_spent\)\s+FROM\s+users\s*$`

	rows := sqlmock.NewRows([]string{"avg"}).AddRow(nil)
	mock.ExpectQuery(q).WillReturnRows(rows)

	_, ok, err := repo.AverageMoneySpent(context.Background())
	if err != nil {
		t.Fatalf("AverageMoneySpent error: %v", err)
	}
	if ok {
		t.Fatalf("expected ok=false for empty table")
	}
}

func TestListWithMoneySpentAbove(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^SELECT\s+id,\s*national_id,\s*first_name,\s*last_name,\s*money_spent\s+FROM\s+users\s+WHERE\s+money_spent\s*>\s*\$1\s+ORDER\s+BY\s+id\s*$`

	rows := sqlmock.NewRows(userColumns).
		AddRow(int64(1), int64(17246710), "Ada", "Lovelace", 8.75).
		AddRow(int64(2), int64(21698109), "Grace", "Hopper", 9.00)
	mock.ExpectQuery(q).
		WithArgs(8.1666).
		WillReturnRows(rows)

	got, err := repo.ListWithMoneySpentAbove(context.Background(), 8.1666)
	if err != nil {
		t.Fatalf("ListWithMoneySpentAbove error: %v", err)
	}
	if len(got) != 2 || got[0].NationalID != 17246710 || got[1].NationalID != 21698109 {
		t.Fatalf("unexpected users: %+v", got)
	}
}
