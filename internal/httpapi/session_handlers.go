package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/VALIJONY/InfinBankBozorSmartPark/internal/service"
)

func sessionID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	return id, err == nil && id > 0
}

// NewSessionPayHandler returns POST /sessions/{id}/pay handler.
func NewSessionPayHandler(svc *service.ParkService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := sessionID(r)
		if !ok {
			writeError(w, http.StatusBadRequest, "invalid session id")
			return
		}
		session, err := svc.MarkPaid(r.Context(), id)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, session)
	}
}

// NewSessionReopenHandler returns POST /sessions/{id}/reopen handler.
func NewSessionReopenHandler(svc *service.ParkService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := sessionID(r)
		if !ok {
			writeError(w, http.StatusBadRequest, "invalid session id")
			return
		}
		session, err := svc.Reopen(r.Context(), id)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, session)
	}
}

// NewSessionFlagHandler returns POST /sessions/{id}/flag handler.
func NewSessionFlagHandler(svc *service.ParkService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := sessionID(r)
		if !ok {
			writeError(w, http.StatusBadRequest, "invalid session id")
			return
		}
		var req struct {
			Message string `json:"message"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid json")
			return
		}
		session, err := svc.FlagError(r.Context(), id, req.Message)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, session)
	}
}

// NewSessionDeleteHandler returns DELETE /sessions/{id} handler.
func NewSessionDeleteHandler(svc *service.ParkService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := sessionID(r)
		if !ok {
			writeError(w, http.StatusBadRequest, "invalid session id")
			return
		}
		if err := svc.Delete(r.Context(), id); err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
	}
}

// NewReceiptHandler returns GET /sessions/{id}/receipt handler.
func NewReceiptHandler(svc *service.ParkService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := sessionID(r)
		if !ok {
			writeError(w, http.StatusBadRequest, "invalid session id")
			return
		}
		receipt, err := svc.SessionReceipt(r.Context(), id)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, receipt)
	}
}
