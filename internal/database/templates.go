package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"medibook/internal/models"
)

// resourceClause matches a nullable resource_id column against a nullable value.
func resourceClause(resourceID *int64) (string, []any) {
	if resourceID == nil {
		return "resource_id IS NULL", nil
	}
	return "resource_id = ?", []any{*resourceID}
}

func nullableID(id *int64) sql.NullInt64 {
	if id == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *id, Valid: true}
}

func idPtr(n sql.NullInt64) *int64 {
	if !n.Valid {
		return nil
	}
	v := n.Int64
	return &v
}

// ReplaceTemplates swaps the whole weekly schedule of one provider/resource pair.
func (db *DB) ReplaceTemplates(ctx context.Context, kind models.Kind, providerID int64, resourceID *int64,
	templates []models.AvailabilityTemplate,
) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	clause, args := resourceClause(resourceID)
	deleteQuery := `DELETE FROM availability_templates WHERE kind = ? AND provider_id = ? AND ` + clause
	if _, err := tx.ExecContext(ctx, db.q(deleteQuery), append([]any{kind, providerID}, args...)...); err != nil {
		return fmt.Errorf("failed to delete templates: %w", err)
	}

	insertQuery := db.q(`INSERT INTO availability_templates (
				kind, provider_id, resource_id, day_of_week, is_available,
				start_time, end_time, slot_duration, slots, fee, created_at, updated_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?) RETURNING id`)
	now := time.Now()
	for i := range templates {
		t := &templates[i]
		slots := t.Slots
		if slots == nil {
			slots = []models.ExplicitSlot{}
		}
		slotsJSON, err := json.Marshal(slots)
		if err != nil {
			return fmt.Errorf("failed to encode slots for day %d: %w", t.DayOfWeek, err)
		}

		var fee sql.NullFloat64
		if t.Fee != nil {
			fee = sql.NullFloat64{Float64: *t.Fee, Valid: true}
		}

		err = tx.QueryRowContext(ctx, insertQuery,
			kind, providerID, nullableID(resourceID), t.DayOfWeek, t.IsAvailable,
			t.StartTime, t.EndTime, t.SlotDuration, string(slotsJSON), fee, now, now,
		).Scan(&t.ID)
		if err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("duplicate template for day %d: %w", t.DayOfWeek, err)
			}
			return fmt.Errorf("failed to insert template for day %d: %w", t.DayOfWeek, err)
		}
		t.Kind = kind
		t.ProviderID = providerID
		t.ResourceID = resourceID
		t.CreatedAt = now
		t.UpdatedAt = now
	}

	return tx.Commit()
}

const templateColumns = `id, kind, provider_id, resource_id, day_of_week, is_available,
	start_time, end_time, slot_duration, slots, fee, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTemplate(row rowScanner) (*models.AvailabilityTemplate, error) {
	var (
		t         models.AvailabilityTemplate
		resource  sql.NullInt64
		fee       sql.NullFloat64
		slotsJSON string
	)
	err := row.Scan(&t.ID, &t.Kind, &t.ProviderID, &resource, &t.DayOfWeek, &t.IsAvailable,
		&t.StartTime, &t.EndTime, &t.SlotDuration, &slotsJSON, &fee, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	t.ResourceID = idPtr(resource)
	if fee.Valid {
		v := fee.Float64
		t.Fee = &v
	}
	if slotsJSON != "" {
		if err := json.Unmarshal([]byte(slotsJSON), &t.Slots); err != nil {
			return nil, fmt.Errorf("failed to decode slots of template %d: %w", t.ID, err)
		}
	}
	return &t, nil
}

// GetTemplate returns the template for one weekday, or nil if the day has none.
func (db *DB) GetTemplate(ctx context.Context, kind models.Kind, providerID int64, resourceID *int64,
	dayOfWeek int,
) (*models.AvailabilityTemplate, error) {
	clause, args := resourceClause(resourceID)
	query := `SELECT ` + templateColumns + ` FROM availability_templates
              WHERE kind = ? AND provider_id = ? AND day_of_week = ? AND ` + clause
	row := db.QueryRowContext(ctx, db.q(query), append([]any{kind, providerID, dayOfWeek}, args...)...)

	t, err := scanTemplate(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get template: %w", err)
	}
	return t, nil
}

func (db *DB) ListTemplates(ctx context.Context, kind models.Kind, providerID int64, resourceID *int64,
) ([]models.AvailabilityTemplate, error) {
	clause, args := resourceClause(resourceID)
	query := `SELECT ` + templateColumns + ` FROM availability_templates
              WHERE kind = ? AND provider_id = ? AND ` + clause + ` ORDER BY day_of_week`
	rows, err := db.QueryContext(ctx, db.q(query), append([]any{kind, providerID}, args...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to list templates: %w", err)
	}
	defer rows.Close()

	templates := []models.AvailabilityTemplate{}
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan template: %w", err)
		}
		templates = append(templates, *t)
	}
	return templates, rows.Err()
}
