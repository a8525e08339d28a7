package project

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/arjunmalik/editcore/internal/metrics"
	"github.com/arjunmalik/editcore/pkg/models"
)

// Snapshot is the durable state of one project: its settings, every tab
// with its committed clip collection, and the caption table. Histories are
// in-memory only; a reload starts with empty undo stacks. Track layout is
// fixed and never persisted.
type Snapshot struct {
	ID       string
	Name     string
	Settings models.ProjectSettings
	Tabs     []models.Tab
	Captions []models.CaptionData
}

// Store persists project snapshots in Postgres
type Store struct {
	db *DB
}

// NewStore creates a new store
func NewStore(db *DB) *Store {
	return &Store{db: db}
}

// Save writes the snapshot, replacing the project's previous state. The
// whole write runs in one transaction so a crashed save never leaves a
// half-updated project behind.
func (s *Store) Save(ctx context.Context, snap Snapshot) error {
	start := time.Now()
	err := s.save(ctx, snap)
	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.RecordDatabaseOperation("save_project", status, time.Since(start).Seconds())
	metrics.RecordProjectSave(status)
	return err
}

func (s *Store) save(ctx context.Context, snap Snapshot) error {
	settings, err := json.Marshal(snap.Settings)
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}

	tx, err := s.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO projects (id, name, settings, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (id) DO UPDATE
		SET name = EXCLUDED.name, settings = EXCLUDED.settings, updated_at = now()
	`
	if _, err := tx.Exec(ctx, query, snap.ID, snap.Name, settings); err != nil {
		return fmt.Errorf("failed to upsert project: %w", err)
	}

	// Replace-on-save: tabs, clips and captions are rewritten wholesale
	if _, err := tx.Exec(ctx, `DELETE FROM project_tabs WHERE project_id = $1`, snap.ID); err != nil {
		return fmt.Errorf("failed to clear tabs: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM clips WHERE project_id = $1`, snap.ID); err != nil {
		return fmt.Errorf("failed to clear clips: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM captions WHERE project_id = $1`, snap.ID); err != nil {
		return fmt.Errorf("failed to clear captions: %w", err)
	}

	for pos, tab := range snap.Tabs {
		query := `
			INSERT INTO project_tabs (id, project_id, name, tab_type, asset_id, position)
			VALUES ($1, $2, $3, $4, $5, $6)
		`
		if _, err := tx.Exec(ctx, query, tab.ID, snap.ID, tab.Name, tab.Type, tab.AssetID, pos); err != nil {
			return fmt.Errorf("failed to insert tab %s: %w", tab.ID, err)
		}

		for _, clip := range tab.Clips {
			transform, err := json.Marshal(clip.Transform)
			if err != nil {
				return fmt.Errorf("failed to marshal transform: %w", err)
			}

			query := `
				INSERT INTO clips (id, tab_id, project_id, asset_id, track_id,
				                   start_time, duration, in_point, out_point, transform)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			`
			_, err = tx.Exec(ctx, query,
				clip.ID, tab.ID, snap.ID, clip.AssetID, clip.TrackID,
				clip.Start, clip.Duration, clip.InPoint, clip.OutPoint, transform,
			)
			if err != nil {
				return fmt.Errorf("failed to insert clip %s: %w", clip.ID, err)
			}
		}
	}

	for _, caption := range snap.Captions {
		data, err := json.Marshal(caption)
		if err != nil {
			return fmt.Errorf("failed to marshal caption: %w", err)
		}

		query := `
			INSERT INTO captions (clip_id, project_id, data)
			VALUES ($1, $2, $3)
		`
		if _, err := tx.Exec(ctx, query, caption.ClipID, snap.ID, data); err != nil {
			return fmt.Errorf("failed to insert caption for clip %s: %w", caption.ClipID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit save: %w", err)
	}
	return nil
}

// Load retrieves a project snapshot by ID
func (s *Store) Load(ctx context.Context, projectID string) (*Snapshot, error) {
	start := time.Now()
	snap, err := s.load(ctx, projectID)
	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.RecordDatabaseOperation("load_project", status, time.Since(start).Seconds())
	return snap, err
}

func (s *Store) load(ctx context.Context, projectID string) (*Snapshot, error) {
	snap := Snapshot{ID: projectID}

	var settings []byte
	query := `SELECT name, settings FROM projects WHERE id = $1`
	err := s.db.Pool.QueryRow(ctx, query, projectID).Scan(&snap.Name, &settings)
	if err == pgx.ErrNoRows {
		return nil, models.NewNotFoundError("project", projectID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	if err := json.Unmarshal(settings, &snap.Settings); err != nil {
		return nil, fmt.Errorf("failed to unmarshal settings: %w", err)
	}

	tabs, err := s.loadTabs(ctx, projectID)
	if err != nil {
		return nil, err
	}
	snap.Tabs = tabs

	captions, err := s.loadCaptions(ctx, projectID)
	if err != nil {
		return nil, err
	}
	snap.Captions = captions

	return &snap, nil
}

func (s *Store) loadTabs(ctx context.Context, projectID string) ([]models.Tab, error) {
	query := `
		SELECT id, name, tab_type, asset_id
		FROM project_tabs
		WHERE project_id = $1
		ORDER BY position
	`
	rows, err := s.db.Pool.Query(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tabs: %w", err)
	}
	defer rows.Close()

	var tabs []models.Tab
	for rows.Next() {
		var tab models.Tab
		if err := rows.Scan(&tab.ID, &tab.Name, &tab.Type, &tab.AssetID); err != nil {
			return nil, fmt.Errorf("failed to scan tab: %w", err)
		}
		tabs = append(tabs, tab)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read tabs: %w", err)
	}

	for i := range tabs {
		clips, err := s.loadClips(ctx, tabs[i].ID)
		if err != nil {
			return nil, err
		}
		tabs[i].Clips = clips
	}
	return tabs, nil
}

func (s *Store) loadClips(ctx context.Context, tabID string) ([]models.Clip, error) {
	query := `
		SELECT id, asset_id, track_id, start_time, duration, in_point, out_point, transform
		FROM clips
		WHERE tab_id = $1
		ORDER BY track_id, start_time
	`
	rows, err := s.db.Pool.Query(ctx, query, tabID)
	if err != nil {
		return nil, fmt.Errorf("failed to list clips: %w", err)
	}
	defer rows.Close()

	var clips []models.Clip
	for rows.Next() {
		var clip models.Clip
		var transform []byte
		err := rows.Scan(
			&clip.ID, &clip.AssetID, &clip.TrackID,
			&clip.Start, &clip.Duration, &clip.InPoint, &clip.OutPoint, &transform,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan clip: %w", err)
		}
		if len(transform) > 0 && string(transform) != "null" {
			clip.Transform = &models.Transform{}
			if err := json.Unmarshal(transform, clip.Transform); err != nil {
				return nil, fmt.Errorf("failed to unmarshal transform: %w", err)
			}
		}
		clips = append(clips, clip)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read clips: %w", err)
	}
	return clips, nil
}

func (s *Store) loadCaptions(ctx context.Context, projectID string) ([]models.CaptionData, error) {
	query := `SELECT data FROM captions WHERE project_id = $1`
	rows, err := s.db.Pool.Query(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list captions: %w", err)
	}
	defer rows.Close()

	var captions []models.CaptionData
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("failed to scan caption: %w", err)
		}
		var caption models.CaptionData
		if err := json.Unmarshal(data, &caption); err != nil {
			return nil, fmt.Errorf("failed to unmarshal caption: %w", err)
		}
		captions = append(captions, caption)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read captions: %w", err)
	}
	return captions, nil
}

// ListProjects returns project ids and names, most recently updated first
func (s *Store) ListProjects(ctx context.Context, limit, offset int) ([]Snapshot, error) {
	query := `
		SELECT id, name, settings
		FROM projects
		ORDER BY updated_at DESC
		LIMIT $1 OFFSET $2
	`
	rows, err := s.db.Pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	var projects []Snapshot
	for rows.Next() {
		var snap Snapshot
		var settings []byte
		if err := rows.Scan(&snap.ID, &snap.Name, &settings); err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		if err := json.Unmarshal(settings, &snap.Settings); err != nil {
			return nil, fmt.Errorf("failed to unmarshal settings: %w", err)
		}
		projects = append(projects, snap)
	}
	return projects, nil
}

// DeleteProject removes a project and all its rows
func (s *Store) DeleteProject(ctx context.Context, projectID string) error {
	tx, err := s.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, table := range []string{"captions", "clips", "project_tabs"} {
		if _, err := tx.Exec(ctx, fmt.Sprintf(`DELETE FROM %s WHERE project_id = $1`, table), projectID); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	tag, err := tx.Exec(ctx, `DELETE FROM projects WHERE id = $1`, projectID)
	if err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return models.NewNotFoundError("project", projectID)
	}

	return tx.Commit(ctx)
}
