// Package rest exposes the store operations over HTTP/JSON: user CRUD, the
// purchase write path, and the above-average spending report.
package rest

import (
	"context"
	"net/http"
	"time"

	"github.com/Renkon/StoreAPI/internal/logging"
	"github.com/Renkon/StoreAPI/internal/server/models"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

// UserService is the point-operation surface consumed by the handlers.
type UserService interface {
	Create(ctx context.Context, nationalID int64, firstName, lastName string) (*models.User, error)
	Get(ctx context.Context, nationalID int64) (*models.User, error)
	List(ctx context.Context) ([]*models.User, error)
	UpdateName(ctx context.Context, nationalID int64, firstName, lastName string) (*models.User, error)
	Delete(ctx context.Context, nationalID int64) error
}

// PurchaseService is the transactional write surface consumed by the handlers.
type PurchaseService interface {
	RecordPurchase(ctx context.Context, nationalID int64, product string, quantity, cost float64) error
	ListByUserNationalID(ctx context.Context, nationalID int64) ([]*models.PurchaseRecord, error)
}

// ReportService is the analytical read surface consumed by the handlers.
type ReportService interface {
	UsersAboveAverageSpend(ctx context.Context) ([]*models.User, error)
}

type HTTPServer struct {
	address   string
	logger    logging.Logger
	users     UserService
	purchases PurchaseService
	reports   ReportService
	jwtSecret []byte
}

func NewHTTPServer(a string, l logging.Logger, us UserService, ps PurchaseService, rs ReportService, secretKey string) *HTTPServer {
	return &HTTPServer{
		address:   a,
		logger:    l.With("module", "http_server"),
		users:     us,
		purchases: ps,
		reports:   rs,
		jwtSecret: []byte(secretKey),
	}
}

// Router assembles the route tree. Split out from Run so tests can drive the
// full middleware chain through httptest.
func (s *HTTPServer) Router() chi.Router {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(s.requestLogger)
	if len(s.jwtSecret) > 0 {
		r.Use(s.accessTokenMiddleware)
	}

	r.Route("/users", func(r chi.Router) {
		r.Get("/", s.handleListUsers)
		r.Post("/", s.handleCreateUser)
		r.Get("/more-than-avg-spent", s.handleMoreThanAverageSpent)
		r.Get("/{nationalId}", s.handleGetUser)
		r.Put("/{nationalId}", s.handleUpdateUser)
		r.Delete("/{nationalId}", s.handleDeleteUser)
	})

	r.Route("/purchases", func(r chi.Router) {
		r.Post("/", s.handleCreatePurchase)
		r.Get("/{nationalId}", s.handleListPurchases)
	})

	return r
}

// Run serves the API until ctx is cancelled, then shuts down gracefully.
func (s *HTTPServer) Run(ctx context.Context) error {

	srv := &http.Server{
		Addr:         s.address,
		Handler:      s.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "shutdown error", "error", err.Error())
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}

	return nil
}
