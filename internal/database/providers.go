package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	"medibook/internal/models"
	"medibook/internal/scheduling"
)

// SyncDirectory upserts the configured resources and providers, replaces
// provider/resource associations and deactivates providers missing from the
// list. The in-memory cache is rebuilt afterwards.
func (db *DB) SyncDirectory(ctx context.Context, providers []models.Provider, resources []models.Resource) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	now := time.Now()
	upsertResource := db.q(`INSERT INTO resources (id, name, created_at, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET name = excluded.name, updated_at = excluded.updated_at`)
	for _, r := range resources {
		if _, err := tx.ExecContext(ctx, upsertResource, r.ID, r.Name, now, now); err != nil {
			return fmt.Errorf("failed to upsert resource %d: %w", r.ID, err)
		}
	}

	if _, err := tx.ExecContext(ctx, db.q(`UPDATE providers SET is_active = ?, updated_at = ?`), false, now); err != nil {
		return fmt.Errorf("failed to reset providers: %w", err)
	}

	upsertProvider := db.q(`INSERT INTO providers (kind, id, name, default_fee, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (kind, id) DO UPDATE SET
			name = excluded.name, default_fee = excluded.default_fee,
			is_active = excluded.is_active, updated_at = excluded.updated_at`)
	deleteLinks := db.q(`DELETE FROM provider_resources WHERE kind = ? AND provider_id = ?`)
	insertLink := db.q(`INSERT INTO provider_resources (kind, provider_id, resource_id) VALUES (?, ?, ?)`)

	for _, p := range providers {
		if _, err := tx.ExecContext(ctx, upsertProvider, p.Kind, p.ID, p.Name, p.DefaultFee, true, now, now); err != nil {
			return fmt.Errorf("failed to upsert provider %s/%d: %w", p.Kind, p.ID, err)
		}
		if _, err := tx.ExecContext(ctx, deleteLinks, p.Kind, p.ID); err != nil {
			return fmt.Errorf("failed to clear resources of provider %s/%d: %w", p.Kind, p.ID, err)
		}
		for _, rid := range p.ResourceIDs {
			if _, err := tx.ExecContext(ctx, insertLink, p.Kind, p.ID, rid); err != nil {
				return fmt.Errorf("failed to link provider %s/%d to resource %d: %w", p.Kind, p.ID, rid, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit directory sync: %w", err)
	}

	if err := db.reloadDirectory(ctx); err != nil {
		return err
	}

	db.logger.Info().
		Int("providers", len(providers)).
		Int("resources", len(resources)).
		Msg("Provider directory synced")
	return nil
}

// reloadDirectory rebuilds the cache from the database.
func (db *DB) reloadDirectory(ctx context.Context) error {
	resources := make(map[int64]models.Resource)
	rows, err := db.QueryContext(ctx, `SELECT id, name FROM resources`)
	if err != nil {
		return fmt.Errorf("failed to load resources: %w", err)
	}
	for rows.Next() {
		var r models.Resource
		if err := rows.Scan(&r.ID, &r.Name); err != nil {
			rows.Close()
			return fmt.Errorf("failed to scan resource: %w", err)
		}
		resources[r.ID] = r
	}
	rows.Close()

	providers := make(map[providerKey]models.Provider)
	rows, err = db.QueryContext(ctx, `SELECT kind, id, name, default_fee, is_active FROM providers`)
	if err != nil {
		return fmt.Errorf("failed to load providers: %w", err)
	}
	for rows.Next() {
		var p models.Provider
		if err := rows.Scan(&p.Kind, &p.ID, &p.Name, &p.DefaultFee, &p.IsActive); err != nil {
			rows.Close()
			return fmt.Errorf("failed to scan provider: %w", err)
		}
		providers[providerKey{p.Kind, p.ID}] = p
	}
	rows.Close()

	rows, err = db.QueryContext(ctx, `SELECT kind, provider_id, resource_id FROM provider_resources ORDER BY resource_id`)
	if err != nil {
		return fmt.Errorf("failed to load provider resources: %w", err)
	}
	for rows.Next() {
		var (
			k   providerKey
			rid int64
		)
		if err := rows.Scan(&k.kind, &k.id, &rid); err != nil {
			rows.Close()
			return fmt.Errorf("failed to scan provider resource: %w", err)
		}
		if p, ok := providers[k]; ok {
			p.ResourceIDs = append(p.ResourceIDs, rid)
			providers[k] = p
		}
	}
	rows.Close()

	db.mu.Lock()
	db.providersCache = providers
	db.resourcesCache = resources
	db.mu.Unlock()
	return nil
}

// GetProvider returns an active provider. Inactive and unknown providers are not found.
func (db *DB) GetProvider(ctx context.Context, kind models.Kind, id int64) (*models.Provider, error) {
	db.mu.RLock()
	p, ok := db.providersCache[providerKey{kind, id}]
	db.mu.RUnlock()
	if ok {
		if !p.IsActive {
			return nil, scheduling.ErrProviderNotFound
		}
		p.ResourceIDs = append([]int64(nil), p.ResourceIDs...)
		return &p, nil
	}

	// Кэш мог не успеть прогреться: читаем из БД.
	var found models.Provider
	err := db.QueryRowContext(ctx, db.q(`SELECT kind, id, name, default_fee, is_active FROM providers
		WHERE kind = ? AND id = ?`), kind, id).
		Scan(&found.Kind, &found.ID, &found.Name, &found.DefaultFee, &found.IsActive)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, scheduling.ErrProviderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get provider: %w", err)
	}
	if !found.IsActive {
		return nil, scheduling.ErrProviderNotFound
	}

	rows, err := db.QueryContext(ctx, db.q(`SELECT resource_id FROM provider_resources
		WHERE kind = ? AND provider_id = ? ORDER BY resource_id`), kind, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get provider resources: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var rid int64
		if err := rows.Scan(&rid); err != nil {
			return nil, fmt.Errorf("failed to scan provider resource: %w", err)
		}
		found.ResourceIDs = append(found.ResourceIDs, rid)
	}
	return &found, rows.Err()
}

func (db *DB) GetResource(ctx context.Context, id int64) (*models.Resource, error) {
	db.mu.RLock()
	r, ok := db.resourcesCache[id]
	db.mu.RUnlock()
	if ok {
		return &r, nil
	}

	var found models.Resource
	err := db.QueryRowContext(ctx, db.q(`SELECT id, name FROM resources WHERE id = ?`), id).Scan(&found.ID, &found.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, scheduling.ErrResourceNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get resource: %w", err)
	}
	return &found, nil
}

// ListProviders returns the cached directory for one kind.
func (db *DB) ListProviders(kind models.Kind) []models.Provider {
	db.mu.RLock()
	defer db.mu.RUnlock()

	out := make([]models.Provider, 0, len(db.providersCache))
	for k, p := range db.providersCache {
		if k.kind == kind && p.IsActive {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
