package rest

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/Renkon/StoreAPI/internal/common"
	"github.com/Renkon/StoreAPI/internal/server/models"
	"github.com/go-chi/chi/v5"
)

type createUserRequest struct {
	NationalID int64  `json:"nationalId"`
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
}

type updateUserRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

type createPurchaseRequest struct {
	UserNationalID int64   `json:"userNationalId"`
	Product        string  `json:"product"`
	Quantity       float64 `json:"quantity"`
	Cost           float64 `json:"cost"`
}

// userResponse mirrors the persisted user minus the store-assigned row id,
// which callers have no business addressing.
type userResponse struct {
	NationalID int64   `json:"nationalId"`
	FirstName  string  `json:"firstName"`
	LastName   string  `json:"lastName"`
	MoneySpent float64 `json:"moneySpent"`
}

type purchaseRecordResponse struct {
	UserNationalID int64   `json:"userNationalId"`
	Product        string  `json:"product"`
	Quantity       float64 `json:"quantity"`
	Cost           float64 `json:"cost"`
	TotalCost      float64 `json:"totalCost"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func toUserResponse(u *models.User) userResponse {
	return userResponse{
		NationalID: u.NationalID,
		FirstName:  u.FirstName,
		LastName:   u.LastName,
		MoneySpent: u.MoneySpent,
	}
}

func toUserResponses(users []*models.User) []userResponse {
	result := make([]userResponse, 0, len(users))
	for _, u := range users {
		result = append(result, toUserResponse(u))
	}
	return result
}

func (s *HTTPServer) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, common.ErrorValidation)
		return
	}

	user, err := s.users.Create(r.Context(), req.NationalID, req.FirstName, req.LastName)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.logger.Info(r.Context(), "user created", "nationalId", user.NationalID)
	s.writeJSON(w, r, http.StatusCreated, toUserResponse(user))
}

func (s *HTTPServer) handleGetUser(w http.ResponseWriter, r *http.Request) {
	nationalID, err := nationalIDParam(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	user, err := s.users.Get(r.Context(), nationalID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, r, http.StatusOK, toUserResponse(user))
}

func (s *HTTPServer) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.users.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, r, http.StatusOK, toUserResponses(users))
}

func (s *HTTPServer) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	nationalID, err := nationalIDParam(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var req updateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, common.ErrorValidation)
		return
	}

	user, err := s.users.UpdateName(r.Context(), nationalID, req.FirstName, req.LastName)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, r, http.StatusOK, toUserResponse(user))
}

func (s *HTTPServer) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	nationalID, err := nationalIDParam(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if err := s.users.Delete(r.Context(), nationalID); err != nil {
		s.writeError(w, r, err)
		return
	}

	s.logger.Info(r.Context(), "user deleted", "nationalId", nationalID)
	w.WriteHeader(http.StatusOK)
}

func (s *HTTPServer) handleMoreThanAverageSpent(w http.ResponseWriter, r *http.Request) {
	users, err := s.reports.UsersAboveAverageSpend(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, r, http.StatusOK, toUserResponses(users))
}

func (s *HTTPServer) handleCreatePurchase(w http.ResponseWriter, r *http.Request) {
	var req createPurchaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, common.ErrorValidation)
		return
	}

	// The coordinator assumes this precondition; enforce it here, before
	// the core.
	if req.Quantity < 0 || req.Cost < 0 {
		s.writeError(w, r, common.ErrorValidation)
		return
	}

	err := s.purchases.RecordPurchase(r.Context(), req.UserNationalID, req.Product, req.Quantity, req.Cost)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.logger.Info(r.Context(), "purchase recorded",
		"nationalId", req.UserNationalID, "product", req.Product)
	w.WriteHeader(http.StatusOK)
}

func (s *HTTPServer) handleListPurchases(w http.ResponseWriter, r *http.Request) {
	nationalID, err := nationalIDParam(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	records, err := s.purchases.ListByUserNationalID(r.Context(), nationalID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	result := make([]purchaseRecordResponse, 0, len(records))
	for _, rec := range records {
		result = append(result, purchaseRecordResponse{
			UserNationalID: rec.UserNationalID,
			Product:        rec.Product,
			Quantity:       rec.Quantity,
			Cost:           rec.Cost,
			TotalCost:      rec.TotalCost(),
		})
	}

	s.writeJSON(w, r, http.StatusOK, result)
}

func nationalIDParam(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "nationalId")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, common.ErrorValidation
	}
	return id, nil
}

func (s *HTTPServer) writeJSON(w http.ResponseWriter, r *http.Request, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// headers already sent, nothing left to do but log
		s.logger.Error(r.Context(), "response encode error", "error", err.Error())
	}
}

// writeError maps sentinel errors to status codes. This is the only place
// the error taxonomy meets HTTP.
func (s *HTTPServer) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	msg := "internal error"

	switch {
	case errors.Is(err, common.ErrorNotFound):
		status = http.StatusNotFound
		msg = "not found"
	case errors.Is(err, common.ErrorConflict):
		status = http.StatusConflict
		msg = "already exists"
	case errors.Is(err, common.ErrorValidation):
		status = http.StatusBadRequest
		msg = "validation error"
	}

	if status == http.StatusInternalServerError {
		s.logger.Error(r.Context(), "request failed", "error", err.Error())
	}

	s.writeJSON(w, r, status, errorResponse{Error: msg})
}
