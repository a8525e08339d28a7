package main

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/arjunmalik/editcore/internal/logging"
	"github.com/arjunmalik/editcore/internal/project"
	"github.com/arjunmalik/editcore/internal/timeline"
	"github.com/arjunmalik/editcore/pkg/models"
)

type sessionEntry struct {
	session *timeline.Session
	saver   *project.DebouncedSaver
	name    string
}

// sessionManager owns the live editing sessions, one per open project.
// Sessions are loaded from the store on first access and saved through a
// debounced saver wired to the session's change callback. With a nil store
// the manager runs purely in memory (tests, ephemeral mode).
type sessionManager struct {
	mu       sync.Mutex
	entries  map[string]*sessionEntry
	store    *project.Store
	assets   timeline.AssetResolver
	tracks   []models.Track
	debounce time.Duration
	logger   *logging.Logger
}

func newSessionManager(store *project.Store, assets timeline.AssetResolver, tracks []models.Track, debounce time.Duration, logger *logging.Logger) *sessionManager {
	return &sessionManager{
		entries:  make(map[string]*sessionEntry),
		store:    store,
		assets:   assets,
		tracks:   tracks,
		debounce: debounce,
		logger:   logger,
	}
}

func (m *sessionManager) attachSaver(entry *sessionEntry, projectID string) {
	if m.store == nil {
		return
	}
	snapshot := func() project.Snapshot {
		return project.SnapshotSession(entry.session, entry.name)
	}
	entry.saver = project.NewDebouncedSaver(snapshot, m.store.Save, m.debounce, m.logger)
	entry.session.SetOnChange(entry.saver.Request)
}

// create starts a fresh session for a new project
func (m *sessionManager) create(ctx context.Context, projectID, name string) (*timeline.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.entries[projectID]; exists {
		return nil, models.NewValidationError("project_id", "project already open: "+projectID)
	}

	session := timeline.NewSession(projectID, m.tracks, m.assets, nil, models.DefaultProjectSettings(), m.logger)
	entry := &sessionEntry{session: session, name: name}
	m.attachSaver(entry, projectID)

	if m.store != nil {
		if err := m.store.Save(ctx, project.SnapshotSession(session, name)); err != nil {
			return nil, err
		}
	}

	m.entries[projectID] = entry
	return session, nil
}

// get returns the project's session, loading it from the store on first
// access.
func (m *sessionManager) get(ctx context.Context, projectID string) (*timeline.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if entry, ok := m.entries[projectID]; ok {
		return entry.session, nil
	}
	if m.store == nil {
		return nil, models.NewNotFoundError("project", projectID)
	}

	snap, err := m.store.Load(ctx, projectID)
	if err != nil {
		return nil, err
	}

	session := project.RestoreSession(snap, m.tracks, m.assets, m.logger)
	entry := &sessionEntry{session: session, name: snap.Name}
	m.attachSaver(entry, projectID)
	m.entries[projectID] = entry
	m.logger.WithProjectID(projectID).Info("project session loaded")
	return session, nil
}

// forEach visits every open session
func (m *sessionManager) forEach(fn func(*timeline.Session)) {
	m.mu.Lock()
	entries := make([]*sessionEntry, 0, len(m.entries))
	for _, e := range m.entries {
		entries = append(entries, e)
	}
	m.mu.Unlock()

	for _, e := range entries {
		fn(e.session)
	}
}

// closeAll flushes pending saves for every open session
func (m *sessionManager) closeAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.entries {
		if e.saver != nil {
			e.saver.Close()
		}
	}
	m.entries = make(map[string]*sessionEntry)
}

// isNotFound reports whether err is a not-found error
func isNotFound(err error) bool {
	var nf *models.NotFoundError
	return errors.As(err, &nf)
}

// isValidation reports whether err is a validation error
func isValidation(err error) bool {
	var v *models.ValidationError
	return errors.As(err, &v)
}
