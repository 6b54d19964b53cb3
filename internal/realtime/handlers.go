package realtime

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/VALIJONY/InfinBankBozorSmartPark/internal/service"
)

// RegisterHandlers binds every console command to the parking service.
func RegisterHandlers(mux *Mux, svc *service.ParkService) {
	mux.Register(CmdGetStatistics, func(ctx context.Context, cmd Command) (interface{}, error) {
		return svc.StatisticsForDate(ctx, cmd.Date)
	})

	mux.Register(CmdGetEntries, func(ctx context.Context, cmd Command) (interface{}, error) {
		return svc.EntriesForDate(ctx, cmd.Date, cmd.Search)
	})

	mux.Register(CmdGetUnpaidEntries, func(ctx context.Context, cmd Command) (interface{}, error) {
		return svc.UnpaidEntriesForDate(ctx, cmd.Date)
	})

	mux.Register(CmdGetLatestUnpaid, func(ctx context.Context, cmd Command) (interface{}, error) {
		view, err := svc.LatestUnpaidForDate(ctx, cmd.Date)
		if err != nil {
			return nil, err
		}
		if view == nil {
			return map[string]bool{"found": false}, nil
		}
		return view, nil
	})

	mux.Register(CmdGetDetailed, func(ctx context.Context, cmd Command) (interface{}, error) {
		return svc.DetailedForDate(ctx, cmd.Date)
	})

	mux.Register(CmdMarkPaid, func(ctx context.Context, cmd Command) (interface{}, error) {
		if cmd.SessionID == 0 {
			return nil, errors.New("session_id is required")
		}
		return svc.MarkPaid(ctx, cmd.SessionID)
	})

	mux.Register(CmdClearExit, func(ctx context.Context, cmd Command) (interface{}, error) {
		if cmd.SessionID == 0 {
			return nil, errors.New("session_id is required")
		}
		return svc.Reopen(ctx, cmd.SessionID)
	})

	mux.Register(CmdDeleteEntry, func(ctx context.Context, cmd Command) (interface{}, error) {
		if cmd.SessionID == 0 {
			return nil, errors.New("session_id is required")
		}
		if err := svc.Delete(ctx, cmd.SessionID); err != nil {
			return nil, err
		}
		return map[string]int64{"deleted": cmd.SessionID}, nil
	})

	mux.Register(CmdFlagError, func(ctx context.Context, cmd Command) (interface{}, error) {
		if cmd.SessionID == 0 {
			return nil, errors.New("session_id is required")
		}
		return svc.FlagError(ctx, cmd.SessionID, cmd.Message)
	})

	mux.Register(CmdGetReceipt, func(ctx context.Context, cmd Command) (interface{}, error) {
		if cmd.SessionID == 0 {
			return nil, errors.New("session_id is required")
		}
		return svc.SessionReceipt(ctx, cmd.SessionID)
	})
}

// NewConsoleMux builds the fully wired command mux for the console endpoint.
func NewConsoleMux(svc *service.ParkService, logger *zap.Logger) *Mux {
	mux := NewMux(logger)
	RegisterHandlers(mux, svc)
	return mux
}
