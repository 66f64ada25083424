package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/alpadrive/fleet-server/internal/apperr"
	"github.com/alpadrive/fleet-server/internal/domain/model"
)

// AccountService is the subset of internal/service/account.Service this
// handler needs.
type AccountService interface {
	Signup(ctx context.Context, req model.SignupRequest) (*model.User, error)
	Login(ctx context.Context, req model.LoginRequest) (*model.User, []model.Vehicle, error)
	RefreshVehicles(ctx context.Context, userID string) ([]model.Vehicle, error)
	RegisterVehicle(ctx context.Context, req model.RegisterVehicleRequest) (*model.Vehicle, error)
	EditVehicle(ctx context.Context, req model.EditVehicleRequest) (*model.Vehicle, error)
	GetVehicle(ctx context.Context, vehicleID string) (*model.Vehicle, error)
	GetUser(ctx context.Context, userID string) (*model.User, error)
}

// StatusService is the subset of internal/service/status.Service this
// handler needs.
type StatusService interface {
	Snapshot(ctx context.Context, withSystemStat bool) model.StatusSnapshot
}

type AccountHandler struct {
	logger  *slog.Logger
	account AccountService
	status  StatusService
}

func NewAccountHandler(logger *slog.Logger, account AccountService, status StatusService) *AccountHandler {
	return &AccountHandler{logger: logger, account: account, status: status}
}

func (h *AccountHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req model.SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Error(w, "request body is not valid JSON", apperr.Wrap(apperr.KindParse, "decode signup request", err))
		return
	}
	user, err := h.account.Signup(r.Context(), req)
	if err != nil {
		Error(w, err.Error(), err)
		return
	}
	JSON(w, http.StatusOK, user)
}

func (h *AccountHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Error(w, "request body is not valid JSON", apperr.Wrap(apperr.KindParse, "decode login request", err))
		return
	}
	user, vehicles, err := h.account.Login(r.Context(), req)
	if err != nil {
		Error(w, err.Error(), err)
		return
	}
	JSON(w, http.StatusOK, map[string]interface{}{"user": user, "vehicles": vehicles})
}

func (h *AccountHandler) Status(w http.ResponseWriter, r *http.Request) {
	var req model.StatusRequest
	_ = json.NewDecoder(r.Body).Decode(&req) // an empty or absent body means "no system stat"
	snapshot := h.status.Snapshot(r.Context(), req.SystemStat)
	JSON(w, http.StatusOK, snapshot)
}
