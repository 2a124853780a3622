package controllerengine

import (
	"encoding/json"
	"net/http"
)

// HandleHistory serves GET /controller/history: the controller's own
// bounded move audit trail, newest first.
func HandleHistory(c *Controller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		_ = json.NewEncoder(w).Encode(c.History())
	}
}
