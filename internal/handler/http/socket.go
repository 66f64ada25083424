package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/alpadrive/fleet-server/internal/apperr"
	"github.com/alpadrive/fleet-server/internal/domain/model"
)

// WSService is the subset of internal/handler/ws.Service this handler
// needs: the single entrypoint that upgrades a request and runs its
// pumps for the life of the connection.
type WSService interface {
	Serve(w http.ResponseWriter, r *http.Request, roomID, connID string, sender model.Sender)
}

// Authorizer is the subset of internal/service/pairing.Coordinator this
// handler needs for the join-as-user authorization check.
type Authorizer interface {
	HasVehicle(ctx context.Context, userID, vehicleID string) (bool, error)
}

// PairService is the subset of internal/service/pairing.Coordinator
// covering the one-shot pairing handshake.
type PairService interface {
	Pair(ctx context.Context, vehicleID, userID string, initial bool) (message string, err error)
}

type SocketHandler struct {
	logger  *slog.Logger
	ws      WSService
	account AccountService
	authz   Authorizer
	pairing PairService
}

func NewSocketHandler(logger *slog.Logger, ws WSService, account AccountService, authz Authorizer, pairing PairService) *SocketHandler {
	return &SocketHandler{logger: logger, ws: ws, account: account, authz: authz, pairing: pairing}
}

// JoinVehicle opens the one admin connection for a vehicle's room.
func (h *SocketHandler) JoinVehicle(w http.ResponseWriter, r *http.Request) {
	vehicleID := chi.URLParam(r, "uid")
	if _, err := h.account.GetVehicle(r.Context(), vehicleID); err != nil {
		Error(w, err.Error(), err)
		return
	}
	h.ws.Serve(w, r, vehicleID, uuid.NewString(), model.AdminSender())
}

// JoinUser opens a subordinate connection for a user already linked to
// the vehicle.
func (h *SocketHandler) JoinUser(w http.ResponseWriter, r *http.Request) {
	vehicleID := chi.URLParam(r, "vid")
	userID := chi.URLParam(r, "uid")

	if _, err := h.account.GetVehicle(r.Context(), vehicleID); err != nil {
		Error(w, err.Error(), err)
		return
	}
	if _, err := h.account.GetUser(r.Context(), userID); err != nil {
		Error(w, err.Error(), err)
		return
	}
	linked, err := h.authz.HasVehicle(r.Context(), userID, vehicleID)
	if err != nil {
		Error(w, err.Error(), err)
		return
	}
	if !linked {
		Error(w, "This user has no access to the vehicle. Securely link it first.", apperr.New(apperr.KindAuth, "vehicle not linked"))
		return
	}
	h.ws.Serve(w, r, vehicleID, uuid.NewString(), model.ClientSender(userID))
}

// Pair runs the one-shot pairing handshake and delivers its outcome
// over a socket that closes immediately after, per spec.md §4.4.
func (h *SocketHandler) Pair(w http.ResponseWriter, r *http.Request) {
	vehicleID := chi.URLParam(r, "vid")
	userID := chi.URLParam(r, "uid")
	initial := r.URL.Query().Get("initial") == "true"

	message, err := h.pairing.Pair(r.Context(), vehicleID, userID, initial)
	if err != nil {
		Error(w, err.Error(), err)
		return
	}

	payload, _ := json.Marshal(map[string]string{"message": message, "uid": userID, "vid": vehicleID})
	h.ws.Serve(w, r, vehicleID, uuid.NewString(), model.PairSender(payload))
}
