package api

import (
	"net/http"
	"strconv"

	"github.com/mnedge/emulator/internal/service"
)

// HandleListEDCs serves GET /network/edge_data_centers.
func HandleListEDCs(svc *service.EmulatorService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusOK, svc.EdgeDataCenters())
	}
}

// HandleListApplications serves GET /network/edge_data_centers/{edc_id}/applications.
func HandleListApplications(svc *service.EmulatorService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		edcID, err := PathUint32(r, "edc_id")
		if err != nil {
			writeInvalidArgument(w, err.Error())
			return
		}
		apps, err := svc.Applications(edcID)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, apps)
	}
}

// HandleAddApplication serves POST /network/edge_data_centers/{edc_id}/applications/{app_id}.
func HandleAddApplication(svc *service.EmulatorService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		edcID, appID, err := pathEDCAndApp(r)
		if err != nil {
			writeInvalidArgument(w, err.Error())
			return
		}
		if err := svc.AddApplication(edcID, appID); err != nil {
			writeServiceError(w, err)
			return
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(strconv.FormatUint(uint64(appID), 10)))
	}
}

// HandleRemoveApplication serves DELETE /network/edge_data_centers/{edc_id}/applications/{app_id}.
func HandleRemoveApplication(svc *service.EmulatorService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		edcID, appID, err := pathEDCAndApp(r)
		if err != nil {
			writeInvalidArgument(w, err.Error())
			return
		}
		if err := svc.RemoveApplication(edcID, appID); err != nil {
			writeServiceError(w, err)
			return
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	}
}

// HandleTotalUsages serves GET .../applications/{app_id}/total_usages.
func HandleTotalUsages(svc *service.EmulatorService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		edcID, appID, err := pathEDCAndApp(r)
		if err != nil {
			writeInvalidArgument(w, err.Error())
			return
		}
		total, err := svc.TotalUsages(edcID, appID)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, total)
	}
}

func pathEDCAndApp(r *http.Request) (edcID, appID uint32, err error) {
	edcID, err = PathUint32(r, "edc_id")
	if err != nil {
		return 0, 0, err
	}
	appID, err = PathUint32(r, "app_id")
	if err != nil {
		return 0, 0, err
	}
	return edcID, appID, nil
}
