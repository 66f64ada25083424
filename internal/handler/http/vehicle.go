package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/alpadrive/fleet-server/internal/apperr"
	"github.com/alpadrive/fleet-server/internal/domain/model"
)

type VehicleHandler struct {
	logger  *slog.Logger
	account AccountService
}

func NewVehicleHandler(logger *slog.Logger, account AccountService) *VehicleHandler {
	return &VehicleHandler{logger: logger, account: account}
}

func (h *VehicleHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req model.RegisterVehicleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Error(w, "request body is not valid JSON", apperr.Wrap(apperr.KindParse, "decode register request", err))
		return
	}
	vehicle, err := h.account.RegisterVehicle(r.Context(), req)
	if err != nil {
		Error(w, err.Error(), err)
		return
	}
	JSON(w, http.StatusOK, vehicle)
}

// Refresh re-hydrates the full vehicle documents for the user named in
// the request body.
func (h *VehicleHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UID string `json:"uid"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Error(w, "request body is not valid JSON", apperr.Wrap(apperr.KindParse, "decode refresh request", err))
		return
	}
	vehicles, err := h.account.RefreshVehicles(r.Context(), req.UID)
	if err != nil {
		Error(w, err.Error(), err)
		return
	}
	JSON(w, http.StatusOK, vehicles)
}

func (h *VehicleHandler) Edit(w http.ResponseWriter, r *http.Request) {
	var req model.EditVehicleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Error(w, "request body is not valid JSON", apperr.Wrap(apperr.KindParse, "decode edit request", err))
		return
	}
	vehicle, err := h.account.EditVehicle(r.Context(), req)
	if err != nil {
		Error(w, err.Error(), err)
		return
	}
	JSON(w, http.StatusOK, vehicle)
}
