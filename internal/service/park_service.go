// Package service orchestrates the parking session lifecycle: entries,
// exits with fee computation, payments, administrative corrections, and the
// statistics republished to live subscribers after every mutation.
package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/VALIJONY/InfinBankBozorSmartPark/internal/models"
	"github.com/VALIJONY/InfinBankBozorSmartPark/internal/repository"
	"github.com/VALIJONY/InfinBankBozorSmartPark/internal/stats"
	"github.com/VALIJONY/InfinBankBozorSmartPark/internal/tariff"
)

// ErrBlocked is returned when a blocked plate tries to leave the lot.
var ErrBlocked = errors.New("plate is blocked")

// ErrInvalidToken is returned for malformed self-service tokens.
var ErrInvalidToken = errors.New("token must be 10 hex characters")

// ErrInvalidDate is returned for malformed business-day strings.
var ErrInvalidDate = errors.New("date must be YYYY-MM-DD")

// ErrNotPaid is returned when a receipt is requested for an unsettled session.
var ErrNotPaid = errors.New("session is not paid")

// SessionStore is the persistence surface the service mutates and queries.
type SessionStore interface {
	Create(ctx context.Context, plate string, entryTime time.Time) (*models.Session, error)
	GetByID(ctx context.Context, id int64) (*models.Session, error)
	GetByToken(ctx context.Context, token string) (*models.Session, error)
	OldestOpenByPlate(ctx context.Context, plate string) (*models.Session, error)
	LatestByPlate(ctx context.Context, plate string) (*models.Session, error)
	Close(ctx context.Context, id int64, exitTime time.Time, amount int64) (*models.Session, error)
	MarkPaid(ctx context.Context, id int64) (*models.Session, error)
	Reopen(ctx context.Context, id int64) (*models.Session, error)
	FlagError(ctx context.Context, id int64, message string) (*models.Session, error)
	Delete(ctx context.Context, id int64) error
	WindowSessions(ctx context.Context, w stats.Window, search string) ([]models.Session, error)
	UnpaidExited(ctx context.Context, start, end time.Time) ([]models.Session, error)
	LatestUnpaid(ctx context.Context, start, end time.Time) (*models.Session, error)
	CountPlateEntries(ctx context.Context, plate string, start, end time.Time) (int, error)
	DeleteAbandonedBefore(ctx context.Context, cutoff time.Time) (int64, error)
	DeleteEnteredBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// CarRegistry resolves per-plate billing overrides.
type CarRegistry interface {
	GetByPlate(ctx context.Context, plate string) (*models.Car, error)
	Upsert(ctx context.Context, car *models.Car) (*models.Car, error)
	List(ctx context.Context) ([]models.Car, error)
	Delete(ctx context.Context, plate string) error
}

// SummaryCache holds the per-date headline counters.
type SummaryCache interface {
	SaveSummary(ctx context.Context, date string, sum stats.Summary) error
	Summary(ctx context.Context, date string) (stats.Summary, bool, error)
	Invalidate(ctx context.Context, date string) error
}

// ParkService ties store, registry, tariff, cache, and publisher together.
type ParkService struct {
	sessions  SessionStore
	cars      CarRegistry
	calc      *tariff.Calculator
	cache     SummaryCache
	publisher Publisher
	logger    *zap.Logger
	loc       *time.Location
	now       func() time.Time
	locks     *keyedLocks
}

// NewParkService builds the service. cache and publisher may be nil.
func NewParkService(
	sessions SessionStore,
	cars CarRegistry,
	calc *tariff.Calculator,
	cache SummaryCache,
	publisher Publisher,
	loc *time.Location,
	logger *zap.Logger,
) *ParkService {
	if loc == nil {
		loc = time.Local
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ParkService{
		sessions:  sessions,
		cars:      cars,
		calc:      calc,
		cache:     cache,
		publisher: publisher,
		logger:    logger,
		loc:       loc,
		now:       time.Now,
		locks:     newKeyedLocks(),
	}
}

// WithClock overrides the time source. Intended for tests.
func (s *ParkService) WithClock(now func() time.Time) *ParkService {
	s.now = now
	return s
}

// OpenSession records a vehicle entry and returns the new inside session.
func (s *ParkService) OpenSession(ctx context.Context, plate string) (*models.Session, error) {
	plate = strings.TrimSpace(plate)
	if plate == "" {
		plate = fmt.Sprintf("TEMP%s", s.now().In(s.loc).Format("150405"))
	}

	session, err := s.sessions.Create(ctx, plate, s.now().In(s.loc))
	if err != nil {
		return nil, err
	}

	s.logger.Info("vehicle entered",
		zap.Int64("session_id", session.ID),
		zap.String("plate", session.Plate))
	s.publishState(ctx, ActionVehicleEntered, session)
	return session, nil
}

// ExitResult is the outcome of an exit event.
type ExitResult struct {
	Session     *models.Session
	Amount      int64
	Plate       string
	Placeholder bool
}

// CloseSessionByPlate handles a barrier exit event. The oldest open session
// for the plate settles first; with no open session the most recent record
// is examined and a double exit is rejected with ErrConflict. A plate with
// no record at all is let through with a zero amount and a warning for the
// operator, without creating a record.
func (s *ParkService) CloseSessionByPlate(ctx context.Context, plate string, exitTime time.Time) (*ExitResult, error) {
	plate = strings.TrimSpace(plate)
	if exitTime.IsZero() {
		exitTime = s.now()
	}
	exitTime = exitTime.In(s.loc)

	unlock := s.locks.lock("plate:" + plate)
	defer unlock()

	car, err := s.carFor(ctx, plate)
	if err != nil {
		return nil, err
	}
	if car != nil && car.Blocked {
		s.notify(ctx, Notification{
			Title:     "Bloklangan avtomobil",
			Message:   fmt.Sprintf("Avtomobil %s bloklangan, chiqish taqiqlanadi", plate),
			Level:     LevelError,
			Timestamp: s.now(),
		})
		return nil, ErrBlocked
	}

	target, err := s.sessions.OldestOpenByPlate(ctx, plate)
	if errors.Is(err, repository.ErrNotFound) {
		target, err = s.sessions.LatestByPlate(ctx, plate)
		if errors.Is(err, repository.ErrNotFound) {
			s.notify(ctx, Notification{
				Title:     "Avtomobil chiqib ketdi",
				Message:   fmt.Sprintf("Avtomobil %s chiqib ketdi, kirish yozuvi topilmadi", plate),
				Level:     LevelWarning,
				Timestamp: s.now(),
			})
			return &ExitResult{Plate: plate, Placeholder: true}, nil
		}
	}
	if err != nil {
		return nil, err
	}

	if target.ExitTime != nil {
		s.notify(ctx, Notification{
			Title:     "Avtomobil allaqachon chiqib ketgan",
			Message:   fmt.Sprintf("Avtomobil %s allaqachon chiqib ketgan", plate),
			Level:     LevelWarning,
			Timestamp: s.now(),
		})
		return nil, repository.ErrConflict
	}

	amount, err := s.exitAmount(ctx, car, target, exitTime)
	if err != nil {
		return nil, err
	}

	closed, err := s.sessions.Close(ctx, target.ID, exitTime, amount)
	if err != nil {
		return nil, err
	}

	s.logger.Info("vehicle exited",
		zap.Int64("session_id", closed.ID),
		zap.String("plate", closed.Plate),
		zap.Int64("amount", closed.Amount))
	s.publishState(ctx, ActionVehicleExited, closed)

	return &ExitResult{Session: closed, Amount: closed.Amount, Plate: closed.Plate}, nil
}

// CloseSession records an exit for a known session id. Returns ErrConflict
// when the session is already closed.
func (s *ParkService) CloseSession(ctx context.Context, id int64, exitTime time.Time) (*models.Session, error) {
	if exitTime.IsZero() {
		exitTime = s.now()
	}
	exitTime = exitTime.In(s.loc)

	unlock := s.locks.lock(sessionKey(id))
	defer unlock()

	target, err := s.sessions.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if target.ExitTime != nil {
		return nil, repository.ErrConflict
	}

	car, err := s.carFor(ctx, target.Plate)
	if err != nil {
		return nil, err
	}
	amount, err := s.exitAmount(ctx, car, target, exitTime)
	if err != nil {
		return nil, err
	}

	closed, err := s.sessions.Close(ctx, id, exitTime, amount)
	if err != nil {
		return nil, err
	}
	s.publishState(ctx, ActionVehicleExited, closed)
	return closed, nil
}

// MarkPaid settles a session. Deliberately permissive: payment is accepted
// for still-open sessions and zero amounts, matching the toll booth's manual
// workflow where ordering is enforced by the operator.
func (s *ParkService) MarkPaid(ctx context.Context, id int64) (*models.Session, error) {
	unlock := s.locks.lock(sessionKey(id))
	defer unlock()

	session, err := s.sessions.MarkPaid(ctx, id)
	if err != nil {
		return nil, err
	}

	s.logger.Info("payment completed",
		zap.Int64("session_id", session.ID),
		zap.String("plate", session.Plate),
		zap.Int64("amount", session.Amount))
	s.publishState(ctx, ActionPaymentCompleted, session)
	return session, nil
}

// Reopen clears exit state to correct an erroneous exit, returning the
// session to "inside".
func (s *ParkService) Reopen(ctx context.Context, id int64) (*models.Session, error) {
	unlock := s.locks.lock(sessionKey(id))
	defer unlock()

	session, err := s.sessions.Reopen(ctx, id)
	if err != nil {
		return nil, err
	}
	s.publishState(ctx, ActionExitCleared, session)
	return session, nil
}

// Delete removes a session permanently.
func (s *ParkService) Delete(ctx context.Context, id int64) error {
	unlock := s.locks.lock(sessionKey(id))
	defer unlock()

	session, err := s.sessions.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.sessions.Delete(ctx, id); err != nil {
		return err
	}
	s.publishState(ctx, ActionEntryDeleted, session)
	return nil
}

// FlagError sets the out-of-band error annotation on a session.
func (s *ParkService) FlagError(ctx context.Context, id int64, message string) (*models.Session, error) {
	session, err := s.sessions.FlagError(ctx, id, message)
	if err != nil {
		return nil, err
	}
	s.publishState(ctx, ActionErrorFlagged, session)
	return session, nil
}

// TokenInfo resolves a self-service token. A still-open session is closed at
// the current time so the kiosk can show the amount due.
func (s *ParkService) TokenInfo(ctx context.Context, token string) (*EntryView, error) {
	token = strings.TrimSpace(token)
	if !models.ValidToken(token) {
		return nil, ErrInvalidToken
	}

	session, err := s.sessions.GetByToken(ctx, token)
	if err != nil {
		return nil, err
	}

	if session.ExitTime == nil {
		unlock := s.locks.lock(sessionKey(session.ID))
		closed, closeErr := s.closeAtNow(ctx, session)
		unlock()
		if closeErr != nil && !errors.Is(closeErr, repository.ErrConflict) {
			return nil, closeErr
		}
		if closed != nil {
			session = closed
			s.publishState(ctx, ActionVehicleExited, session)
		}
	}

	view := newEntryView(session, s.loc)
	return &view, nil
}

// TokenPay settles a session by token: the exit is recorded at the current
// time and the session is marked paid in one step. Returns ErrConflict when
// the vehicle already exited through the barrier.
func (s *ParkService) TokenPay(ctx context.Context, token string) (*EntryView, error) {
	token = strings.TrimSpace(token)
	if !models.ValidToken(token) {
		return nil, ErrInvalidToken
	}

	session, err := s.sessions.GetByToken(ctx, token)
	if err != nil {
		return nil, err
	}

	unlock := s.locks.lock(sessionKey(session.ID))
	defer unlock()

	if session.ExitTime != nil {
		return nil, repository.ErrConflict
	}

	closed, err := s.closeAtNow(ctx, session)
	if err != nil {
		return nil, err
	}
	paid, err := s.sessions.MarkPaid(ctx, closed.ID)
	if err != nil {
		return nil, err
	}

	s.logger.Info("token payment completed",
		zap.Int64("session_id", paid.ID),
		zap.String("plate", paid.Plate),
		zap.Int64("amount", paid.Amount))
	s.publishState(ctx, ActionPaymentCompleted, paid)

	view := newEntryView(paid, s.loc)
	return &view, nil
}

// StatisticsForDate returns the headline counters for a business day,
// through the cache when one is configured.
func (s *ParkService) StatisticsForDate(ctx context.Context, date string) (stats.Summary, error) {
	day, window, err := s.window(date)
	if err != nil {
		return stats.Summary{}, err
	}

	if s.cache != nil {
		if sum, ok, cacheErr := s.cache.Summary(ctx, day); cacheErr != nil {
			s.logger.Warn("summary cache read failed", zap.Error(cacheErr))
		} else if ok {
			return sum, nil
		}
	}

	sessions, err := s.sessions.WindowSessions(ctx, window, "")
	if err != nil {
		return stats.Summary{}, err
	}
	sum := stats.Aggregate(sessions)

	if s.cache != nil {
		if cacheErr := s.cache.SaveSummary(ctx, day, sum); cacheErr != nil {
			s.logger.Warn("summary cache write failed", zap.Error(cacheErr))
		}
	}
	return sum, nil
}

// EntriesForDate returns the business day's entry list, optionally filtered
// by plate substring.
func (s *ParkService) EntriesForDate(ctx context.Context, date, search string) ([]EntryView, error) {
	_, window, err := s.window(date)
	if err != nil {
		return nil, err
	}
	sessions, err := s.sessions.WindowSessions(ctx, window, strings.TrimSpace(search))
	if err != nil {
		return nil, err
	}
	return newEntryViews(sessions, s.loc), nil
}

// UnpaidEntriesForDate returns unpaid exits for the day, most recent first.
func (s *ParkService) UnpaidEntriesForDate(ctx context.Context, date string) ([]EntryView, error) {
	_, window, err := s.window(date)
	if err != nil {
		return nil, err
	}
	sessions, err := s.sessions.UnpaidExited(ctx, window.Start, window.End)
	if err != nil {
		return nil, err
	}
	return newEntryViews(sessions, s.loc), nil
}

// LatestUnpaidForDate returns the most recent unpaid, non-flagged exit of
// the day, or nil when none exists.
func (s *ParkService) LatestUnpaidForDate(ctx context.Context, date string) (*EntryView, error) {
	_, window, err := s.window(date)
	if err != nil {
		return nil, err
	}
	session, err := s.sessions.LatestUnpaid(ctx, window.Start, window.End)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, nil
	}
	view := newEntryView(session, s.loc)
	return &view, nil
}

// DetailedForDate returns the revenue counters for the printed day report.
func (s *ParkService) DetailedForDate(ctx context.Context, date string) (stats.Detailed, error) {
	_, window, err := s.window(date)
	if err != nil {
		return stats.Detailed{}, err
	}
	sessions, err := s.sessions.WindowSessions(ctx, window, "")
	if err != nil {
		return stats.Detailed{}, err
	}
	return stats.AggregateDetailed(sessions), nil
}

// SessionReceipt builds the receipt payload for a settled session.
func (s *ParkService) SessionReceipt(ctx context.Context, id int64) (*Receipt, error) {
	session, err := s.sessions.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !session.Paid {
		return nil, ErrNotPaid
	}

	receipt := &Receipt{
		SessionID: session.ID,
		Plate:     session.Plate,
		EntryTime: session.EntryTime.In(s.loc).Format("2006-01-02 15:04"),
		Amount:    session.Amount,
	}
	if session.ExitTime != nil {
		receipt.ExitTime = session.ExitTime.In(s.loc).Format("2006-01-02 15:04")
		receipt.Duration = tariff.FormatDuration(session.ExitTime.Sub(session.EntryTime))
	} else {
		receipt.ExitTime = "--"
		receipt.Duration = tariff.FormatDuration(0)
	}
	return receipt, nil
}

// PurgeEnteredBefore is the administrative bulk purge of everything older
// than the given number of days.
func (s *ParkService) PurgeEnteredBefore(ctx context.Context, days int) (int64, error) {
	if days <= 0 {
		days = 20
	}
	cutoff := s.now().In(s.loc).AddDate(0, 0, -days)
	deleted, err := s.sessions.DeleteEnteredBefore(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	s.logger.Info("purged old sessions", zap.Int64("deleted", deleted), zap.Int("days", days))
	return deleted, nil
}

// RegisterCar upserts a registry record.
func (s *ParkService) RegisterCar(ctx context.Context, car *models.Car) (*models.Car, error) {
	car.Plate = strings.TrimSpace(car.Plate)
	if car.Plate == "" {
		return nil, errors.New("plate is required")
	}
	return s.cars.Upsert(ctx, car)
}

// Cars lists the registry.
func (s *ParkService) Cars(ctx context.Context) ([]models.Car, error) {
	return s.cars.List(ctx)
}

// RemoveCar deletes a registry record.
func (s *ParkService) RemoveCar(ctx context.Context, plate string) error {
	return s.cars.Delete(ctx, strings.TrimSpace(plate))
}

func (s *ParkService) carFor(ctx context.Context, plate string) (*models.Car, error) {
	if s.cars == nil {
		return nil, nil
	}
	return s.cars.GetByPlate(ctx, plate)
}

// exitAmount applies registry overrides on top of the tariff: free plates
// never pay, special taxis pay only for their first visit of the day.
func (s *ParkService) exitAmount(ctx context.Context, car *models.Car, session *models.Session, exitTime time.Time) (int64, error) {
	if car != nil && car.Free {
		return 0, nil
	}
	if car != nil && car.SpecialTaxi {
		window := stats.DayWindow(exitTime, s.loc)
		visits, err := s.sessions.CountPlateEntries(ctx, session.Plate, window.Start, window.End)
		if err != nil {
			return 0, err
		}
		if visits >= 2 {
			return 0, nil
		}
	}
	return s.calc.Fee(session.EntryTime, exitTime), nil
}

func (s *ParkService) closeAtNow(ctx context.Context, session *models.Session) (*models.Session, error) {
	exitTime := s.now().In(s.loc)
	car, err := s.carFor(ctx, session.Plate)
	if err != nil {
		return nil, err
	}
	amount, err := s.exitAmount(ctx, car, session, exitTime)
	if err != nil {
		return nil, err
	}
	return s.sessions.Close(ctx, session.ID, exitTime, amount)
}

func (s *ParkService) window(date string) (string, stats.Window, error) {
	day := strings.TrimSpace(date)
	if day == "" {
		day = s.now().In(s.loc).Format(stats.DateLayout)
	}
	parsed, err := stats.ParseDate(day, s.loc)
	if err != nil {
		return "", stats.Window{}, ErrInvalidDate
	}
	return day, stats.DayWindow(parsed, s.loc), nil
}

// publishState refreshes today's aggregates and hands them to the publisher
// and cache. Failures here are logged, never surfaced: the mutation itself
// already committed.
func (s *ParkService) publishState(ctx context.Context, action string, session *models.Session) {
	day, window, err := s.window("")
	if err != nil {
		return
	}

	sessions, err := s.sessions.WindowSessions(ctx, window, "")
	if err != nil {
		s.logger.Warn("state refresh query failed", zap.Error(err))
		return
	}
	sum := stats.Aggregate(sessions)

	if s.cache != nil {
		if cacheErr := s.cache.SaveSummary(ctx, day, sum); cacheErr != nil {
			s.logger.Warn("summary cache write failed", zap.Error(cacheErr))
		}
		// Correcting a session from an earlier business day leaves that
		// day's cached counters stale; drop them so the next read recomputes.
		if session != nil {
			entryDay := session.EntryTime.In(s.loc).Format(stats.DateLayout)
			if entryDay != day {
				if cacheErr := s.cache.Invalidate(ctx, entryDay); cacheErr != nil {
					s.logger.Warn("summary cache invalidate failed", zap.Error(cacheErr))
				}
			}
		}
	}

	if s.publisher == nil {
		return
	}

	event := StateEvent{
		Action:     action,
		Date:       day,
		Statistics: sum,
		Entries:    newEntryViews(sessions, s.loc),
	}
	if session != nil {
		event.SessionID = session.ID
		event.Plate = session.Plate
	}
	if latest, latestErr := s.sessions.LatestUnpaid(ctx, window.Start, window.End); latestErr == nil && latest != nil {
		view := newEntryView(latest, s.loc)
		event.LatestUnpaid = &view
	}

	s.publisher.PublishState(ctx, event)
}

func (s *ParkService) notify(ctx context.Context, note Notification) {
	if s.publisher == nil {
		return
	}
	s.publisher.PublishNotification(ctx, note)
}

func sessionKey(id int64) string {
	return "session:" + strconv.FormatInt(id, 10)
}
