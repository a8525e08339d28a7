package assets

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/arjunmalik/editcore/pkg/models"
)

// Repository provides database operations for the asset library
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new repository
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// CreateAsset creates a new asset record
func (r *Repository) CreateAsset(ctx context.Context, asset *models.Asset) error {
	if asset.ID == "" {
		asset.ID = uuid.New().String()
	}

	query := `
		INSERT INTO assets (id, kind, name, duration, size, width, height, thumbnail_url, storage_key, generated)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at, updated_at
	`

	err := r.pool.QueryRow(ctx, query,
		asset.ID, asset.Kind, asset.Name, asset.Duration, asset.Size,
		asset.Width, asset.Height, asset.ThumbnailURL, asset.StorageKey, asset.Generated,
	).Scan(&asset.CreatedAt, &asset.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create asset: %w", err)
	}

	return nil
}

// GetAsset retrieves an asset by ID
func (r *Repository) GetAsset(ctx context.Context, id string) (*models.Asset, error) {
	var asset models.Asset

	query := `
		SELECT id, kind, name, duration, size, width, height, thumbnail_url,
		       storage_key, generated, created_at, updated_at
		FROM assets
		WHERE id = $1
	`

	err := r.pool.QueryRow(ctx, query, id).Scan(
		&asset.ID, &asset.Kind, &asset.Name, &asset.Duration, &asset.Size,
		&asset.Width, &asset.Height, &asset.ThumbnailURL, &asset.StorageKey,
		&asset.Generated, &asset.CreatedAt, &asset.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, models.NewNotFoundError("asset", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get asset: %w", err)
	}

	return &asset, nil
}

// UpdateAsset updates an asset record
func (r *Repository) UpdateAsset(ctx context.Context, asset *models.Asset) error {
	query := `
		UPDATE assets
		SET kind = $2, name = $3, duration = $4, size = $5, width = $6,
		    height = $7, thumbnail_url = $8, storage_key = $9, generated = $10,
		    updated_at = now()
		WHERE id = $1
	`

	tag, err := r.pool.Exec(ctx, query,
		asset.ID, asset.Kind, asset.Name, asset.Duration, asset.Size,
		asset.Width, asset.Height, asset.ThumbnailURL, asset.StorageKey, asset.Generated,
	)

	if err != nil {
		return fmt.Errorf("failed to update asset: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return models.NewNotFoundError("asset", asset.ID)
	}

	return nil
}

// ListAssets retrieves all assets with pagination, newest first
func (r *Repository) ListAssets(ctx context.Context, limit, offset int) ([]*models.Asset, error) {
	query := `
		SELECT id, kind, name, duration, size, width, height, thumbnail_url,
		       storage_key, generated, created_at, updated_at
		FROM assets
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list assets: %w", err)
	}
	defer rows.Close()

	var out []*models.Asset
	for rows.Next() {
		var asset models.Asset
		err := rows.Scan(
			&asset.ID, &asset.Kind, &asset.Name, &asset.Duration, &asset.Size,
			&asset.Width, &asset.Height, &asset.ThumbnailURL, &asset.StorageKey,
			&asset.Generated, &asset.CreatedAt, &asset.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan asset: %w", err)
		}
		out = append(out, &asset)
	}

	return out, nil
}

// DeleteAsset removes an asset record
func (r *Repository) DeleteAsset(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM assets WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete asset: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return models.NewNotFoundError("asset", id)
	}
	return nil
}
