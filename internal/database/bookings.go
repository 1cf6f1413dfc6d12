package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"medibook/internal/models"
	"medibook/internal/scheduling"
)

// sweepBatchSize держит число параметров UPDATE ниже лимита SQLite
const sweepBatchSize = 500

const bookingColumns = `id, kind, subject_id, provider_id, resource_id, date, time, status,
	cancel_reason, fee, notes, created_at, updated_at, version`

func scanBooking(row rowScanner) (*models.Booking, error) {
	var (
		b        models.Booking
		resource sql.NullInt64
		reason   sql.NullString
	)
	err := row.Scan(&b.ID, &b.Kind, &b.SubjectID, &b.ProviderID, &resource, &b.Date, &b.Time, &b.Status,
		&reason, &b.Fee, &b.Notes, &b.CreatedAt, &b.UpdatedAt, &b.Version)
	if err != nil {
		return nil, err
	}
	b.ResourceID = idPtr(resource)
	if reason.Valid {
		r := reason.String
		b.CancelReason = &r
	}
	return &b, nil
}

func scanBookings(rows *sql.Rows) ([]models.Booking, error) {
	defer rows.Close()
	bookings := []models.Booking{}
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}
		bookings = append(bookings, *b)
	}
	return bookings, rows.Err()
}

// activeOnDay reads the active bookings of a provider-day through q (the DB or a tx).
func (db *DB) activeOnDay(ctx context.Context, q interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}, kind models.Kind, providerID int64, date string,
) ([]models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings
              WHERE kind = ? AND provider_id = ? AND date = ? AND status IN (?, ?)
              ORDER BY time`
	rows, err := q.QueryContext(ctx, db.q(query), kind, providerID, date,
		models.StatusScheduled, models.StatusConfirmed)
	if err != nil {
		return nil, err
	}
	return scanBookings(rows)
}

func (db *DB) ListActiveBookings(ctx context.Context, kind models.Kind, providerID int64, date string) ([]models.Booking, error) {
	bookings, err := db.activeOnDay(ctx, db.DB, kind, providerID, date)
	if err != nil {
		return nil, fmt.Errorf("failed to list active bookings: %w", err)
	}
	return bookings, nil
}

// CreateBooking inserts a booking after re-checking the slot inside the
// transaction. A taken slot yields scheduling.ErrSlotTaken, whether detected
// by the check or by the unique index.
func (db *DB) CreateBooking(ctx context.Context, booking *models.Booking) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := db.dialect.lockSlot(ctx, tx, booking.Kind, booking.ProviderID, booking.Date); err != nil {
		return err
	}

	// 1. Check the slot inside transaction
	existing, err := db.activeOnDay(ctx, tx, booking.Kind, booking.ProviderID, booking.Date)
	if err != nil {
		return fmt.Errorf("failed to check slot in tx: %w", err)
	}
	if scheduling.FindConflict(existing, booking.ResourceID, booking.Time, 0) != nil {
		return scheduling.ErrSlotTaken
	}

	// 2. Create booking
	queryInsert := db.q(`INSERT INTO bookings (
				kind, subject_id, provider_id, resource_id, date, time, status,
				cancel_reason, fee, notes, created_at, updated_at, version
			) VALUES (?, ?, ?, ?, ?, ?, ?, NULL, ?, ?, ?, ?, 1) RETURNING id`)
	now := time.Now()
	if booking.Status == "" {
		booking.Status = models.StatusScheduled
	}
	err = tx.QueryRowContext(ctx, queryInsert,
		booking.Kind,
		booking.SubjectID,
		booking.ProviderID,
		nullableID(booking.ResourceID),
		booking.Date,
		booking.Time,
		booking.Status,
		booking.Fee,
		booking.Notes,
		now,
		now,
	).Scan(&booking.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return scheduling.ErrSlotTaken
		}
		return fmt.Errorf("failed to insert booking in tx: %w", err)
	}

	if err := tx.Commit(); err != nil {
		if isUniqueViolation(err) {
			return scheduling.ErrSlotTaken
		}
		return fmt.Errorf("failed to commit booking: %w", err)
	}

	booking.CancelReason = nil
	booking.CreatedAt = now
	booking.UpdatedAt = now
	booking.Version = 1
	return nil
}

func (db *DB) GetBooking(ctx context.Context, id int64) (*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = ?`
	b, err := scanBooking(db.QueryRowContext(ctx, db.q(query), id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, scheduling.ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	return b, nil
}

// scopeFilter builds the WHERE fragment for a booking scope.
func scopeFilter(scope models.BookingScope) (string, []any) {
	var (
		conds []string
		args  []any
	)
	if scope.Kind != "" {
		conds = append(conds, "kind = ?")
		args = append(args, scope.Kind)
	}
	if scope.ProviderID != 0 {
		conds = append(conds, "provider_id = ?")
		args = append(args, scope.ProviderID)
	}
	if scope.SubjectID != 0 {
		conds = append(conds, "subject_id = ?")
		args = append(args, scope.SubjectID)
	}
	if len(conds) == 0 {
		return "1 = 1", nil
	}
	return strings.Join(conds, " AND "), args
}

// ListBookings returns every booking in scope, newest slot first.
func (db *DB) ListBookings(ctx context.Context, scope models.BookingScope) ([]models.Booking, error) {
	where, args := scopeFilter(scope)
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE ` + where + ` ORDER BY date DESC, time DESC, id DESC`
	rows, err := db.QueryContext(ctx, db.q(query), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	bookings, err := scanBookings(rows)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	return bookings, nil
}

func (db *DB) UpdateBookingStatusWithVersion(ctx context.Context, id, fromVersion int64, status string) error {
	query := `UPDATE bookings SET status = ?, version = version + 1, updated_at = ? WHERE id = ? AND version = ?`
	result, err := db.ExecContext(ctx, db.q(query), status, time.Now(), id, fromVersion)
	if err != nil {
		return fmt.Errorf("failed to update booking status: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return scheduling.ErrConcurrentModification
	}
	return nil
}

func (db *DB) CancelBookingWithVersion(ctx context.Context, id, fromVersion int64, reason string) error {
	query := `UPDATE bookings SET status = ?, cancel_reason = ?, version = version + 1, updated_at = ?
              WHERE id = ? AND version = ?`
	result, err := db.ExecContext(ctx, db.q(query), models.StatusCancelled, reason, time.Now(), id, fromVersion)
	if err != nil {
		return fmt.Errorf("failed to cancel booking: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return scheduling.ErrConcurrentModification
	}
	return nil
}

// RescheduleBookingWithVersion moves booking to booking.Date/booking.Time and
// resets it to scheduled. The target slot is re-checked inside the transaction
// with the booking itself excluded.
func (db *DB) RescheduleBookingWithVersion(ctx context.Context, booking *models.Booking, fromVersion int64) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := db.dialect.lockSlot(ctx, tx, booking.Kind, booking.ProviderID, booking.Date); err != nil {
		return err
	}

	existing, err := db.activeOnDay(ctx, tx, booking.Kind, booking.ProviderID, booking.Date)
	if err != nil {
		return fmt.Errorf("failed to check slot in tx: %w", err)
	}
	if scheduling.FindConflict(existing, booking.ResourceID, booking.Time, booking.ID) != nil {
		return scheduling.ErrSlotTaken
	}

	now := time.Now()
	query := `UPDATE bookings SET date = ?, time = ?, status = ?, cancel_reason = NULL,
                version = version + 1, updated_at = ?
              WHERE id = ? AND version = ?`
	result, err := tx.ExecContext(ctx, db.q(query),
		booking.Date, booking.Time, models.StatusScheduled, now, booking.ID, fromVersion)
	if err != nil {
		if isUniqueViolation(err) {
			return scheduling.ErrSlotTaken
		}
		return fmt.Errorf("failed to reschedule booking: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return scheduling.ErrConcurrentModification
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit reschedule: %w", err)
	}

	booking.Status = models.StatusScheduled
	booking.CancelReason = nil
	booking.Version = fromVersion + 1
	booking.UpdatedAt = now
	return nil
}

// SweepAbsent cancels, with reason "absent", every active booking in scope whose
// moment is strictly before now. now is read in the operating timezone.
// Returns the swept bookings in their new state.
func (db *DB) SweepAbsent(ctx context.Context, scope models.BookingScope, now time.Time) ([]models.Booking, error) {
	today := now.Format(models.DateLayout)

	where, scopeArgs := scopeFilter(scope)
	// время сравниваем в Go через scheduling.Moment: в реестре бывают "10:00:00"
	query := `SELECT ` + bookingColumns + ` FROM bookings
              WHERE status IN (?, ?) AND date <= ? AND ` + where + `
              ORDER BY date, time, id` + db.dialect.forUpdate
	args := append([]any{models.StatusScheduled, models.StatusConfirmed, today}, scopeArgs...)

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	rows, err := tx.QueryContext(ctx, db.q(query), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select absent bookings: %w", err)
	}
	candidates, err := scanBookings(rows)
	if err != nil {
		return nil, fmt.Errorf("failed to select absent bookings: %w", err)
	}

	swept := make([]models.Booking, 0, len(candidates))
	for _, b := range candidates {
		moment, err := scheduling.Moment(b.Date, b.Time, now.Location())
		if err != nil {
			db.logger.Warn().Err(err).Int64("booking_id", b.ID).Msg("Skipping booking with unreadable moment")
			continue
		}
		if moment.Before(now) {
			swept = append(swept, b)
		}
	}
	if len(swept) == 0 {
		return swept, nil
	}

	updatedAt := time.Now()
	for start := 0; start < len(swept); start += sweepBatchSize {
		batch := swept[start:min(start+sweepBatchSize, len(swept))]
		args := []any{models.StatusCancelled, models.ReasonAbsent, updatedAt, models.StatusScheduled, models.StatusConfirmed}
		for i := range batch {
			args = append(args, batch[i].ID)
		}
		update := `UPDATE bookings SET status = ?, cancel_reason = ?, version = version + 1, updated_at = ?
                   WHERE status IN (?, ?) AND id IN (?` + strings.Repeat(", ?", len(batch)-1) + `)`
		if _, err := tx.ExecContext(ctx, db.q(update), args...); err != nil {
			return nil, fmt.Errorf("failed to sweep absent bookings: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit sweep: %w", err)
	}

	reason := models.ReasonAbsent
	for i := range swept {
		swept[i].Status = models.StatusCancelled
		swept[i].CancelReason = &reason
		swept[i].Version++
		swept[i].UpdatedAt = updatedAt
	}
	return swept, nil
}
