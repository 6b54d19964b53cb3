// Package app wires all dependencies for the smartpark service.
package app

import (
	"context"
	"database/sql"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/VALIJONY/InfinBankBozorSmartPark/internal/cache"
	"github.com/VALIJONY/InfinBankBozorSmartPark/internal/config"
	"github.com/VALIJONY/InfinBankBozorSmartPark/internal/db"
	"github.com/VALIJONY/InfinBankBozorSmartPark/internal/httpapi"
	"github.com/VALIJONY/InfinBankBozorSmartPark/internal/realtime"
	"github.com/VALIJONY/InfinBankBozorSmartPark/internal/repository"
	"github.com/VALIJONY/InfinBankBozorSmartPark/internal/service"
	"github.com/VALIJONY/InfinBankBozorSmartPark/internal/tariff"
	"github.com/VALIJONY/InfinBankBozorSmartPark/internal/ws"
)

const wsWriteTimeout = 10 * time.Second

// App holds the application graph.
type App struct {
	httpServer *httpapi.Server
	hub        *ws.Hub
	sweeper    *service.Sweeper
	db         *sql.DB
	redis      *redis.Client
	logger     *zap.Logger
}

// New builds the application graph.
func New(cfg *config.Config, logger *zap.Logger) (*App, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.NewPostgresDB(cfg.Database.DSN)
	if err != nil {
		return nil, err
	}

	redisClient, err := cache.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		sqlDB.Close()
		return nil, err
	}

	sessionRepo := repository.NewSessionRepository(sqlDB)
	carRepo := repository.NewCarRepository(sqlDB)
	liveState := cache.NewLiveState(redisClient, cfg.CacheTTL())

	calc := tariff.NewCalculator(tariff.Policy{
		FreeMinutes: cfg.Tariff.FreeMinutes,
		HourPrice:   cfg.Tariff.HourPrice,
		Location:    loc,
	})

	hub := ws.NewHub(30 * time.Second)
	broadcaster := realtime.NewBroadcaster(hub, logger)

	svc := service.NewParkService(sessionRepo, carRepo, calc, liveState, broadcaster, loc, logger)
	sweeper := service.NewSweeper(sessionRepo, cfg.SweepInterval(), cfg.RetentionAge(), logger)

	consoleMux := realtime.NewConsoleMux(svc, logger)
	wsServer := ws.NewServer(hub, consoleMux, wsWriteTimeout, logger)

	router := httpapi.NewRouter(httpapi.Routes{
		GateEntry:     httpapi.NewGateEntryHandler(svc),
		GateExit:      httpapi.NewGateExitHandler(svc),
		SessionPay:    httpapi.NewSessionPayHandler(svc),
		SessionReopen: httpapi.NewSessionReopenHandler(svc),
		SessionFlag:   httpapi.NewSessionFlagHandler(svc),
		SessionDelete: httpapi.NewSessionDeleteHandler(svc),
		Receipt:       httpapi.NewReceiptHandler(svc),
		Stats:         httpapi.NewStatsHandler(svc),
		StatsDetailed: httpapi.NewStatsDetailedHandler(svc),
		Entries:       httpapi.NewEntriesHandler(svc),
		UnpaidEntries: httpapi.NewUnpaidEntriesHandler(svc),
		LatestUnpaid:  httpapi.NewLatestUnpaidHandler(svc),
		TokenInfo:     httpapi.NewTokenInfoHandler(svc),
		TokenPay:      httpapi.NewTokenPayHandler(svc),
		CarList:       httpapi.NewCarListHandler(svc),
		CarUpsert:     httpapi.NewCarUpsertHandler(svc),
		CarDelete:     httpapi.NewCarDeleteHandler(svc),
		Purge:         httpapi.NewPurgeHandler(svc),
		Console:       wsServer.HandleWS,
		Health:        httpapi.NewHealthHandler(),
	})

	return &App{
		httpServer: httpapi.NewServer(cfg.HTTPAddress(), router, logger),
		hub:        hub,
		sweeper:    sweeper,
		db:         sqlDB,
		redis:      redisClient,
		logger:     logger,
	}, nil
}

// Run starts the HTTP server, the console ping loop, and the retention
// sweeper, and blocks until ctx is cancelled or one of them fails.
func (a *App) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return a.httpServer.Run(ctx)
	})
	g.Go(func() error {
		return a.hub.Run(ctx)
	})
	g.Go(func() error {
		return a.sweeper.Run(ctx)
	})

	return g.Wait()
}

// Close releases resources.
func (a *App) Close() {
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Warn("failed to close redis", zap.Error(err))
		}
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Warn("failed to close db", zap.Error(err))
		}
	}
}
