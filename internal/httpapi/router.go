package httpapi

import "net/http"

// Routes groups handlers.
type Routes struct {
	GateEntry     http.HandlerFunc
	GateExit      http.HandlerFunc
	SessionPay    http.HandlerFunc
	SessionReopen http.HandlerFunc
	SessionFlag   http.HandlerFunc
	SessionDelete http.HandlerFunc
	Receipt       http.HandlerFunc
	Stats         http.HandlerFunc
	StatsDetailed http.HandlerFunc
	Entries       http.HandlerFunc
	UnpaidEntries http.HandlerFunc
	LatestUnpaid  http.HandlerFunc
	TokenInfo     http.HandlerFunc
	TokenPay      http.HandlerFunc
	CarList       http.HandlerFunc
	CarUpsert     http.HandlerFunc
	CarDelete     http.HandlerFunc
	Purge         http.HandlerFunc
	Console       http.HandlerFunc
	Health        http.HandlerFunc
}

// NewRouter registers endpoints.
func NewRouter(routes Routes) http.Handler {
	mux := http.NewServeMux()
	register := func(pattern string, handler http.HandlerFunc) {
		if handler != nil {
			mux.HandleFunc(pattern, handler)
		}
	}

	register("POST /gate/entry", routes.GateEntry)
	register("POST /gate/exit", routes.GateExit)
	register("POST /sessions/{id}/pay", routes.SessionPay)
	register("POST /sessions/{id}/reopen", routes.SessionReopen)
	register("POST /sessions/{id}/flag", routes.SessionFlag)
	register("DELETE /sessions/{id}", routes.SessionDelete)
	register("GET /sessions/{id}/receipt", routes.Receipt)
	register("GET /stats", routes.Stats)
	register("GET /stats/detailed", routes.StatsDetailed)
	register("GET /entries", routes.Entries)
	register("GET /entries/unpaid", routes.UnpaidEntries)
	register("GET /entries/latest-unpaid", routes.LatestUnpaid)
	register("GET /token/{token}", routes.TokenInfo)
	register("POST /token/{token}/pay", routes.TokenPay)
	register("GET /cars", routes.CarList)
	register("POST /cars", routes.CarUpsert)
	register("DELETE /cars/{plate}", routes.CarDelete)
	register("POST /admin/purge", routes.Purge)
	register("GET /ws", routes.Console)
	register("GET /health", routes.Health)

	return mux
}
