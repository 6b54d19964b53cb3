package httpapi

import (
	"net/http"

	"github.com/VALIJONY/InfinBankBozorSmartPark/internal/service"
)

// NewStatsHandler returns GET /stats handler.
func NewStatsHandler(svc *service.ParkService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sum, err := svc.StatisticsForDate(r.Context(), r.URL.Query().Get("date"))
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, sum)
	}
}

// NewStatsDetailedHandler returns GET /stats/detailed handler.
func NewStatsDetailedHandler(svc *service.ParkService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		det, err := svc.DetailedForDate(r.Context(), r.URL.Query().Get("date"))
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, det)
	}
}

// NewEntriesHandler returns GET /entries handler.
func NewEntriesHandler(svc *service.ParkService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		views, err := svc.EntriesForDate(r.Context(), q.Get("date"), q.Get("search"))
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"entries": views})
	}
}

// NewUnpaidEntriesHandler returns GET /entries/unpaid handler.
func NewUnpaidEntriesHandler(svc *service.ParkService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		views, err := svc.UnpaidEntriesForDate(r.Context(), r.URL.Query().Get("date"))
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"entries": views})
	}
}

// NewLatestUnpaidHandler returns GET /entries/latest-unpaid handler.
func NewLatestUnpaidHandler(svc *service.ParkService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		view, err := svc.LatestUnpaidForDate(r.Context(), r.URL.Query().Get("date"))
		if err != nil {
			writeServiceError(w, err)
			return
		}
		if view == nil {
			writeJSON(w, http.StatusOK, map[string]bool{"found": false})
			return
		}
		writeJSON(w, http.StatusOK, view)
	}
}
