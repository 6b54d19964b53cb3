package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/VALIJONY/InfinBankBozorSmartPark/internal/models"
	"github.com/VALIJONY/InfinBankBozorSmartPark/internal/stats"
)

const pgUniqueViolation = "23505"

const sessionColumns = `id, plate, token, entry_time, exit_time, amount, paid, flagged_error, error_message, created_at, updated_at`

// SessionRepository handles persistence of parking sessions.
type SessionRepository struct {
	db *sql.DB
}

// NewSessionRepository returns repository.
func NewSessionRepository(db *sql.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Create inserts a new inside session, assigning id and token. Token
// collisions are retried with a fresh token.
func (r *SessionRepository) Create(ctx context.Context, plate string, entryTime time.Time) (*models.Session, error) {
	const query = `
		INSERT INTO parking_sessions (plate, token, entry_time, amount, paid, flagged_error, created_at, updated_at)
		VALUES ($1, $2, $3, 0, FALSE, FALSE, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`
	session := &models.Session{
		Plate:     plate,
		EntryTime: entryTime,
	}
	for attempt := 0; attempt < 3; attempt++ {
		session.Token = models.NewToken()
		err := r.db.QueryRowContext(ctx, query, plate, session.Token, entryTime).
			Scan(&session.ID, &session.CreatedAt, &session.UpdatedAt)
		if err == nil {
			return session, nil
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			continue
		}
		return nil, err
	}
	return nil, errors.New("repository: token collision retries exhausted")
}

// GetByID fetches one session.
func (r *SessionRepository) GetByID(ctx context.Context, id int64) (*models.Session, error) {
	const query = `SELECT ` + sessionColumns + ` FROM parking_sessions WHERE id = $1`
	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

// GetByToken fetches one session by its public token.
func (r *SessionRepository) GetByToken(ctx context.Context, token string) (*models.Session, error) {
	const query = `SELECT ` + sessionColumns + ` FROM parking_sessions WHERE lower(token) = lower($1)`
	return r.scanOne(r.db.QueryRowContext(ctx, query, token))
}

// OldestOpenByPlate returns the oldest still-open session for a plate, so
// backdated or corrected entries settle first. Returns ErrNotFound when the
// plate has no open session.
func (r *SessionRepository) OldestOpenByPlate(ctx context.Context, plate string) (*models.Session, error) {
	const query = `
		SELECT ` + sessionColumns + `
		FROM parking_sessions
		WHERE plate = $1 AND exit_time IS NULL
		ORDER BY entry_time ASC
		LIMIT 1
	`
	return r.scanOne(r.db.QueryRowContext(ctx, query, plate))
}

// LatestByPlate returns the most recent session for a plate regardless of state.
func (r *SessionRepository) LatestByPlate(ctx context.Context, plate string) (*models.Session, error) {
	const query = `
		SELECT ` + sessionColumns + `
		FROM parking_sessions
		WHERE plate = $1
		ORDER BY entry_time DESC
		LIMIT 1
	`
	return r.scanOne(r.db.QueryRowContext(ctx, query, plate))
}

// Close records the exit and amount. The WHERE guard makes close-once
// atomic: of two concurrent closes only one updates a row, the other gets
// ErrConflict.
func (r *SessionRepository) Close(ctx context.Context, id int64, exitTime time.Time, amount int64) (*models.Session, error) {
	const query = `
		UPDATE parking_sessions
		SET exit_time = $2, amount = $3, updated_at = NOW()
		WHERE id = $1 AND exit_time IS NULL
		RETURNING ` + sessionColumns
	session, err := r.scanOne(r.db.QueryRowContext(ctx, query, id, exitTime, amount))
	if errors.Is(err, ErrNotFound) {
		if _, getErr := r.GetByID(ctx, id); getErr == nil {
			return nil, ErrConflict
		}
		return nil, ErrNotFound
	}
	return session, err
}

// MarkPaid flips the paid flag. Intentionally does not require exit_time or
// a positive amount.
func (r *SessionRepository) MarkPaid(ctx context.Context, id int64) (*models.Session, error) {
	const query = `
		UPDATE parking_sessions
		SET paid = TRUE, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + sessionColumns
	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

// Reopen clears exit state to correct an erroneous exit.
func (r *SessionRepository) Reopen(ctx context.Context, id int64) (*models.Session, error) {
	const query = `
		UPDATE parking_sessions
		SET exit_time = NULL, amount = 0, paid = FALSE, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + sessionColumns
	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

// FlagError sets the out-of-band error annotation.
func (r *SessionRepository) FlagError(ctx context.Context, id int64, message string) (*models.Session, error) {
	const query = `
		UPDATE parking_sessions
		SET flagged_error = TRUE, error_message = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + sessionColumns
	return r.scanOne(r.db.QueryRowContext(ctx, query, id, message))
}

// Delete removes the session permanently.
func (r *SessionRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM parking_sessions WHERE id = $1`, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// WindowSessions returns the business-day union: sessions entered within the
// day, plus overnight carry-over (entered the previous day, exited within the
// day). Optional search filters by plate substring.
func (r *SessionRepository) WindowSessions(ctx context.Context, w stats.Window, search string) ([]models.Session, error) {
	const query = `
		SELECT ` + sessionColumns + `
		FROM parking_sessions
		WHERE (
			(entry_time >= $1 AND entry_time <= $2)
			OR (entry_time >= $3 AND entry_time <= $4 AND exit_time >= $1 AND exit_time <= $2)
		)
		AND ($5 = '' OR plate ILIKE '%' || $5 || '%')
		ORDER BY entry_time DESC
	`
	rows, err := r.db.QueryContext(ctx, query, w.Start, w.End, w.PrevStart, w.PrevEnd, search)
	if err != nil {
		return nil, err
	}
	return r.scanAll(rows)
}

// UnpaidExited returns unpaid sessions whose exit falls within the range,
// most recent exit first.
func (r *SessionRepository) UnpaidExited(ctx context.Context, start, end time.Time) ([]models.Session, error) {
	const query = `
		SELECT ` + sessionColumns + `
		FROM parking_sessions
		WHERE exit_time >= $1 AND exit_time <= $2 AND paid = FALSE
		ORDER BY exit_time DESC
	`
	rows, err := r.db.QueryContext(ctx, query, start, end)
	if err != nil {
		return nil, err
	}
	return r.scanAll(rows)
}

// LatestUnpaid returns the most recently exited unpaid, non-flagged session
// in the range, or nil when none qualifies.
func (r *SessionRepository) LatestUnpaid(ctx context.Context, start, end time.Time) (*models.Session, error) {
	const query = `
		SELECT ` + sessionColumns + `
		FROM parking_sessions
		WHERE exit_time >= $1 AND exit_time <= $2 AND paid = FALSE AND flagged_error = FALSE
		ORDER BY exit_time DESC
		LIMIT 1
	`
	session, err := r.scanOne(r.db.QueryRowContext(ctx, query, start, end))
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	return session, err
}

// CountPlateEntries counts sessions for a plate entered within the range.
// Used for the special-taxi first-visit-of-the-day rule.
func (r *SessionRepository) CountPlateEntries(ctx context.Context, plate string, start, end time.Time) (int, error) {
	const query = `
		SELECT COUNT(*) FROM parking_sessions
		WHERE plate = $1 AND entry_time >= $2 AND entry_time <= $3
	`
	var count int
	err := r.db.QueryRowContext(ctx, query, plate, start, end).Scan(&count)
	return count, err
}

// DeleteAbandonedBefore removes open sessions whose entry is older than the
// cutoff (vehicles that never produced an exit event).
func (r *SessionRepository) DeleteAbandonedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM parking_sessions WHERE exit_time IS NULL AND entry_time <= $1`, cutoff)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// DeleteEnteredBefore removes every session entered before the cutoff,
// regardless of state. Used by the administrative bulk purge.
func (r *SessionRepository) DeleteEnteredBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM parking_sessions WHERE entry_time < $1`, cutoff)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func (r *SessionRepository) scanOne(row *sql.Row) (*models.Session, error) {
	var s models.Session
	var exitTime sql.NullTime
	var errorMessage sql.NullString
	err := row.Scan(
		&s.ID,
		&s.Plate,
		&s.Token,
		&s.EntryTime,
		&exitTime,
		&s.Amount,
		&s.Paid,
		&s.FlaggedError,
		&errorMessage,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if exitTime.Valid {
		t := exitTime.Time
		s.ExitTime = &t
	}
	if errorMessage.Valid {
		s.ErrorMessage = errorMessage.String
	}
	return &s, nil
}

func (r *SessionRepository) scanAll(rows *sql.Rows) ([]models.Session, error) {
	defer rows.Close()

	var sessions []models.Session
	for rows.Next() {
		var s models.Session
		var exitTime sql.NullTime
		var errorMessage sql.NullString
		if err := rows.Scan(
			&s.ID,
			&s.Plate,
			&s.Token,
			&s.EntryTime,
			&exitTime,
			&s.Amount,
			&s.Paid,
			&s.FlaggedError,
			&errorMessage,
			&s.CreatedAt,
			&s.UpdatedAt,
		); err != nil {
			return nil, err
		}
		if exitTime.Valid {
			t := exitTime.Time
			s.ExitTime = &t
		}
		if errorMessage.Valid {
			s.ErrorMessage = errorMessage.String
		}
		sessions = append(sessions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return sessions, nil
}
