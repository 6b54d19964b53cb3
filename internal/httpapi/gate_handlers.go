package httpapi

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/VALIJONY/InfinBankBozorSmartPark/internal/service"
)

type gateEventRequest struct {
	Plate    string `json:"plate"`
	ExitTime string `json:"exit_time,omitempty"`
}

// NewGateEntryHandler returns POST /gate/entry handler.
func NewGateEntryHandler(svc *service.ParkService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req gateEventRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid json")
			return
		}

		session, err := svc.OpenSession(r.Context(), req.Plate)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, session)
	}
}

// NewGateExitHandler returns POST /gate/exit handler.
func NewGateExitHandler(svc *service.ParkService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req gateEventRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid json")
			return
		}

		var exitTime time.Time
		if req.ExitTime != "" {
			parsed, err := time.Parse(time.RFC3339, req.ExitTime)
			if err != nil {
				writeError(w, http.StatusBadRequest, "exit_time must be RFC 3339")
				return
			}
			exitTime = parsed
		}

		result, err := svc.CloseSessionByPlate(r.Context(), req.Plate, exitTime)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		resp := map[string]interface{}{
			"plate":  result.Plate,
			"amount": result.Amount,
		}
		if result.Session != nil {
			resp["session"] = result.Session
		}
		if result.Placeholder {
			resp["warning"] = "no entry record found"
		}
		writeJSON(w, http.StatusOK, resp)
	}
}
