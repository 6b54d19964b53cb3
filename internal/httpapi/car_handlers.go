package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/VALIJONY/InfinBankBozorSmartPark/internal/models"
	"github.com/VALIJONY/InfinBankBozorSmartPark/internal/service"
)

// NewCarListHandler returns GET /cars handler.
func NewCarListHandler(svc *service.ParkService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cars, err := svc.Cars(r.Context())
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"cars": cars})
	}
}

// NewCarUpsertHandler returns POST /cars handler.
func NewCarUpsertHandler(svc *service.ParkService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var car models.Car
		if err := json.NewDecoder(r.Body).Decode(&car); err != nil {
			writeError(w, http.StatusBadRequest, "invalid json")
			return
		}
		saved, err := svc.RegisterCar(r.Context(), &car)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, saved)
	}
}

// NewCarDeleteHandler returns DELETE /cars/{plate} handler.
func NewCarDeleteHandler(svc *service.ParkService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.RemoveCar(r.Context(), r.PathValue("plate")); err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
	}
}

// NewPurgeHandler returns POST /admin/purge handler.
func NewPurgeHandler(svc *service.ParkService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Days int `json:"days"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid json")
			return
		}
		deleted, err := svc.PurgeEnteredBefore(r.Context(), req.Days)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]int64{"deleted": deleted})
	}
}
