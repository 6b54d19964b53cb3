package httpapi

import (
	"net/http"

	"github.com/VALIJONY/InfinBankBozorSmartPark/internal/service"
)

// NewTokenInfoHandler returns GET /token/{token} handler. Looking a token up
// closes a still-open session so the kiosk can show the amount due.
func NewTokenInfoHandler(svc *service.ParkService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		view, err := svc.TokenInfo(r.Context(), r.PathValue("token"))
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, view)
	}
}

// NewTokenPayHandler returns POST /token/{token}/pay handler.
func NewTokenPayHandler(svc *service.ParkService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		view, err := svc.TokenPay(r.Context(), r.PathValue("token"))
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, view)
	}
}
