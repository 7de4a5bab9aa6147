package services

import (
	"context"
	"database/sql"

	"github.com/Renkon/StoreAPI/internal/server/models"
	"github.com/Renkon/StoreAPI/internal/server/repositories/repomanager"
)

// UserService provides point operations on users. All of these are
// single-statement and need no explicit transaction; the sentinel errors
// (common.ErrorNotFound, common.ErrorConflict) pass through from the
// repository untouched.
type UserService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewUserService(db *sql.DB, m repomanager.RepositoryManager) *UserService {
	return &UserService{db: db, repomanager: m}
}

// Create registers a new user with zero running spend.
func (s *UserService) Create(ctx context.Context, nationalID int64, firstName, lastName string) (*models.User, error) {
	user := &models.User{
		NationalID: nationalID,
		FirstName:  firstName,
		LastName:   lastName,
		MoneySpent: 0,
	}
	repo := s.repomanager.Users(s.db)
	return repo.Create(ctx, user)
}

func (s *UserService) Get(ctx context.Context, nationalID int64) (*models.User, error) {
	repo := s.repomanager.Users(s.db)
	return repo.GetByNationalID(ctx, nationalID)
}

func (s *UserService) List(ctx context.Context) ([]*models.User, error) {
	repo := s.repomanager.Users(s.db)
	return repo.List(ctx)
}

// UpdateName edits the name fields only; the running spend cannot be set
// through this operation.
func (s *UserService) UpdateName(ctx context.Context, nationalID int64, firstName, lastName string) (*models.User, error) {
	repo := s.repomanager.Users(s.db)
	return repo.UpdateName(ctx, nationalID, firstName, lastName)
}

// Delete removes the user unconditionally. Their purchase records are kept
// as orphaned log entries.
func (s *UserService) Delete(ctx context.Context, nationalID int64) error {
	repo := s.repomanager.Users(s.db)
	return repo.Delete(ctx, nationalID)
}
