package service

import (
	"context"
	"time"

	"github.com/VALIJONY/InfinBankBozorSmartPark/internal/stats"
)

// Mutation actions carried on state events.
const (
	ActionVehicleEntered   = "vehicle_entered"
	ActionVehicleExited    = "vehicle_exited"
	ActionPaymentCompleted = "payment_completed"
	ActionExitCleared      = "exit_cleared"
	ActionEntryDeleted     = "entry_deleted"
	ActionErrorFlagged     = "error_flagged"
)

// StateEvent is emitted after every successful mutation. It carries the
// refreshed statistics and entry list for the affected business day so
// subscribers can repaint without querying back.
type StateEvent struct {
	Action       string        `json:"action"`
	Date         string        `json:"date"`
	SessionID    int64         `json:"session_id,omitempty"`
	Plate        string        `json:"plate,omitempty"`
	Statistics   stats.Summary `json:"statistics"`
	Entries      []EntryView   `json:"entries"`
	LatestUnpaid *EntryView    `json:"latest_unpaid,omitempty"`
}

// Notification is an operator-facing alert (blocked car at the barrier,
// exit without a matching entry, double exit).
type Notification struct {
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Level     string    `json:"level"`
	Timestamp time.Time `json:"timestamp"`
}

// Notification levels.
const (
	LevelWarning = "warning"
	LevelError   = "error"
)

// Publisher delivers state events and notifications to live subscribers.
// Publishing happens as an explicit step after persistence succeeds, never
// as a storage-layer hook.
type Publisher interface {
	PublishState(ctx context.Context, event StateEvent)
	PublishNotification(ctx context.Context, note Notification)
}
