package api

import (
	"net/http"

	"github.com/mnedge/emulator/internal/service"
)

// HandleListUsers serves GET /mobile_network/users.
func HandleListUsers(svc *service.EmulatorService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusOK, svc.Users())
	}
}

// HandleListConnectedUsers serves GET /mobile_network/connected_users.
func HandleListConnectedUsers(svc *service.EmulatorService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusOK, svc.ConnectedUsers())
	}
}

// HandleListRadioCells serves GET /mobile_network/rans.
func HandleListRadioCells(svc *service.EmulatorService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusOK, svc.RadioCells())
	}
}

// HandleUpdateUserPositions serves POST /mobile_network/update_user_positions.
func HandleUpdateUserPositions(svc *service.EmulatorService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.UpdateUserPositions(r.Context()); err != nil {
			writeServiceError(w, err)
			return
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	}
}
