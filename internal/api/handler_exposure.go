package api

import (
	"net/http"

	"github.com/mnedge/emulator/internal/model"
	"github.com/mnedge/emulator/internal/service"
)

// HandleListEvents serves GET /mobile_network_exposure/events.
func HandleListEvents(svc *service.EmulatorService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		events, err := svc.Events(r.Context())
		if err != nil {
			writeServiceError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, events)
	}
}

// HandleListSubscribers serves GET /mobile_network_exposure/subscribers.
func HandleListSubscribers(svc *service.EmulatorService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusOK, svc.Subscribers())
	}
}

// HandleAddSubscriber serves POST /mobile_network_exposure/subscribers.
func HandleAddSubscriber(svc *service.EmulatorService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var wire model.Subscriber
		if err := DecodeBody(r, &wire); err != nil {
			writeDecodeBodyError(w, err)
			return
		}
		if _, err := svc.AddSubscriber(wire); err != nil {
			writeServiceError(w, err)
			return
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	}
}

// HandlePublishEvents serves POST /mobile_network_exposure/events/publish.
func HandlePublishEvents(svc *service.EmulatorService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.PublishEvents(r.Context()); err != nil {
			writeServiceError(w, err)
			return
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	}
}
