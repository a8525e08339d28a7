package timeline

import (
	"sync"

	"github.com/google/uuid"

	"github.com/arjunmalik/editcore/internal/compositor"
	"github.com/arjunmalik/editcore/internal/logging"
	"github.com/arjunmalik/editcore/internal/metrics"
	"github.com/arjunmalik/editcore/pkg/models"
)

// Session is the editing surface for one project: the tab set with their
// clip collections and histories, the caption table, and the project
// settings. All editing is synchronous against in-memory state; there is
// exactly one logical writer (the interactive user session), so the mutex
// only guards the API boundary, not concurrent editing semantics.
//
// Discrete operations (add, delete, split, tab asset swap) snapshot their
// tab's history themselves. Continuous operations (update, move, resize)
// take an interim flag: interim updates only replace the present value, so
// a drag coalesces into the single undo step opened by Snapshot at
// drag-start.
type Session struct {
	mu        sync.Mutex
	projectID string
	editor    *Editor
	tabs      *TabManager
	settings  models.ProjectSettings
	captions  map[string]*models.CaptionData
	resolver  *compositor.Resolver
	logger    *logging.Logger
	onChange  func()
}

// NewSession creates a session with the main tab holding initialClips
func NewSession(projectID string, tracks []models.Track, assets AssetResolver, initialClips []models.Clip, settings models.ProjectSettings, logger *logging.Logger) *Session {
	s := &Session{
		projectID: projectID,
		editor:    NewEditor(tracks, assets, logger),
		tabs:      NewTabManager(tracks, initialClips),
		settings:  settings,
		captions:  make(map[string]*models.CaptionData),
		resolver:  compositor.NewResolver(tracks, assets),
		logger:    logger.WithProjectID(projectID),
	}
	metrics.TabsActive.Set(1)
	return s
}

// RestoreSession rebuilds a session from saved tab and caption state.
// Histories start empty: undo does not cross a reload. The main tab comes
// back active regardless of what was active at save time.
func RestoreSession(projectID string, tracks []models.Track, assets AssetResolver, tabs []models.Tab, settings models.ProjectSettings, captions []models.CaptionData, logger *logging.Logger) *Session {
	var mainClips []models.Clip
	for _, t := range tabs {
		if t.ID == models.MainTabID {
			mainClips = t.Clips
		}
	}
	s := NewSession(projectID, tracks, assets, mainClips, settings, logger)
	for _, t := range tabs {
		if t.ID == models.MainTabID {
			continue
		}
		s.tabs.CreateTab(t.ID, t.Name, t.AssetID, t.Clips)
	}
	_ = s.tabs.SwitchTab(models.MainTabID)
	for i := range captions {
		s.captions[captions[i].ClipID] = captions[i].Clone()
	}
	metrics.TabsActive.Set(float64(len(s.tabs.Tabs())))
	return s
}

// SetOnChange registers a callback fired after every committed mutation.
// The persistence layer uses it to schedule debounced saves.
func (s *Session) SetOnChange(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onChange = fn
}

func (s *Session) changed() {
	if s.onChange != nil {
		s.onChange()
	}
}

// Tracks returns the session's track configuration
func (s *Session) Tracks() []models.Track {
	return s.editor.Tracks()
}

// Settings returns the project settings
func (s *Session) Settings() models.ProjectSettings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings
}

// UpdateSettings replaces the project settings after validation
func (s *Session) UpdateSettings(settings models.ProjectSettings) error {
	if err := settings.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings = settings
	s.changed()
	return nil
}

// Tabs returns views of all tabs
func (s *Session) Tabs() []models.Tab {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tabs.Tabs()
}

// ActiveTab returns a view of the active tab
func (s *Session) ActiveTab() models.Tab {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tabs.ActiveTab()
}

// Clips returns the identified tab's clip collection
func (s *Session) Clips(tabID string) ([]models.Clip, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tabs.Clips(tabID)
}

// CreateTab creates and activates an isolation tab for one asset
func (s *Session) CreateTab(name, assetID string, initialClips []models.Clip) models.Tab {
	s.mu.Lock()
	defer s.mu.Unlock()
	tab := s.tabs.CreateTab(uuid.New().String(), name, assetID, initialClips)
	metrics.TabsActive.Set(float64(len(s.tabs.Tabs())))
	s.logger.WithTabID(tab.ID).WithAssetID(assetID).Info("tab created")
	return tab
}

// SwitchTab activates the identified tab
func (s *Session) SwitchTab(tabID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tabs.SwitchTab(tabID)
}

// CloseTab removes the tab, discarding its clips and history
func (s *Session) CloseTab(tabID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.tabs.CloseTab(tabID); err != nil {
		return err
	}
	metrics.TabsActive.Set(float64(len(s.tabs.Tabs())))
	metrics.ClipsPerTab.DeleteLabelValues(tabID)
	s.logger.WithTabID(tabID).Info("tab closed")
	return nil
}

// UpdateTabAsset points the tab's base-track clips at a regenerated asset
func (s *Session) UpdateTabAsset(tabID, newAssetID string, newDuration float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.tabs.UpdateTabAsset(tabID, newAssetID, newDuration); err != nil {
		metrics.RecordEditOp("update_tab_asset", "error")
		return err
	}
	metrics.RecordEditOp("update_tab_asset", "ok")
	s.changed()
	return nil
}

// Snapshot opens an undo step on the tab. Call once at the start of a
// logical edit, before the first interim update of a drag.
func (s *Session) Snapshot(tabID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	h, err := s.tabs.History(tabID)
	if err != nil {
		return err
	}
	h.Snapshot()
	return nil
}

// Undo steps the tab's history backward. Returns false when there is
// nothing to undo.
func (s *Session) Undo(tabID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	h, err := s.tabs.History(tabID)
	if err != nil {
		return false, err
	}
	ok := h.Undo()
	if ok {
		metrics.UndoTotal.Inc()
		s.changed()
	}
	return ok, nil
}

// Redo steps the tab's history forward. Returns false when there is
// nothing to redo.
func (s *Session) Redo(tabID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	h, err := s.tabs.History(tabID)
	if err != nil {
		return false, err
	}
	ok := h.Redo()
	if ok {
		metrics.RedoTotal.Inc()
		s.changed()
	}
	return ok, nil
}

// CanUndo and CanRedo report the tab's history state
func (s *Session) CanUndo(tabID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	h, err := s.tabs.History(tabID)
	if err != nil {
		return false, err
	}
	return h.CanUndo(), nil
}

func (s *Session) CanRedo(tabID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	h, err := s.tabs.History(tabID)
	if err != nil {
		return false, err
	}
	return h.CanRedo(), nil
}

// AddClip places a new clip on the tab. Discrete edit: opens its own undo
// step.
func (s *Session) AddClip(tabID, assetID, trackID string, start float64, opts AddOptions) (models.Clip, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	h, err := s.tabs.History(tabID)
	if err != nil {
		return models.Clip{}, err
	}

	next, clip, err := s.editor.AddClip(h.Present(), assetID, trackID, start, opts)
	s.logger.LogEditOp(tabID, "add", clip.ID, err)
	if err != nil {
		metrics.RecordEditOp("add", "error")
		return models.Clip{}, err
	}
	h.Snapshot()
	h.Set(next)
	metrics.RecordEditOp("add", "ok")
	metrics.ClipsPerTab.WithLabelValues(tabID).Set(float64(len(next)))
	s.changed()
	return clip, nil
}

// UpdateClip shallow-merges a patch into a clip. Interim updates coalesce
// into the undo step opened by Snapshot.
func (s *Session) UpdateClip(tabID, clipID string, patch ClipPatch, interim bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	h, err := s.tabs.History(tabID)
	if err != nil {
		return err
	}

	next, err := s.editor.UpdateClip(h.Present(), clipID, patch)
	s.logger.LogEditOp(tabID, "update", clipID, err)
	if err != nil {
		metrics.RecordEditOp("update", "error")
		return err
	}
	if !interim {
		h.Snapshot()
	}
	h.Set(next)
	metrics.RecordEditOp("update", "ok")
	s.changed()
	return nil
}

// MoveClip repositions a clip, optionally onto another track
func (s *Session) MoveClip(tabID, clipID string, newStart float64, newTrackID string, interim bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	h, err := s.tabs.History(tabID)
	if err != nil {
		return err
	}

	next, err := s.editor.MoveClip(h.Present(), clipID, newStart, newTrackID)
	s.logger.LogEditOp(tabID, "move", clipID, err)
	if err != nil {
		metrics.RecordEditOp("move", "error")
		return err
	}
	if !interim {
		h.Snapshot()
	}
	h.Set(next)
	metrics.RecordEditOp("move", "ok")
	s.changed()
	return nil
}

// ResizeClip retrims a clip to new in/out points
func (s *Session) ResizeClip(tabID, clipID string, newInPoint, newOutPoint float64, interim bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	h, err := s.tabs.History(tabID)
	if err != nil {
		return err
	}

	next, err := s.editor.ResizeClip(h.Present(), clipID, newInPoint, newOutPoint)
	s.logger.LogEditOp(tabID, "resize", clipID, err)
	if err != nil {
		metrics.RecordEditOp("resize", "error")
		return err
	}
	if !interim {
		h.Snapshot()
	}
	h.Set(next)
	metrics.RecordEditOp("resize", "ok")
	s.changed()
	return nil
}

// DeleteClip removes a clip, optionally rippling later same-track clips
// backward. Discrete edit: opens its own undo step.
func (s *Session) DeleteClip(tabID, clipID string, ripple bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	h, err := s.tabs.History(tabID)
	if err != nil {
		return err
	}

	next, err := s.editor.DeleteClip(h.Present(), clipID, ripple)
	s.logger.LogEditOp(tabID, "delete", clipID, err)
	if err != nil {
		metrics.RecordEditOp("delete", "error")
		return err
	}
	h.Snapshot()
	h.Set(next)
	delete(s.captions, clipID)
	metrics.RecordEditOp("delete", "ok")
	metrics.ClipsPerTab.WithLabelValues(tabID).Set(float64(len(next)))
	s.changed()
	return nil
}

// SplitClip cuts a clip at splitTime. Returns nil without error when the
// cut falls within the edge tolerance: near-edge splits are routine
// imprecise input, not failures. Discrete edit when it succeeds.
func (s *Session) SplitClip(tabID, clipID string, splitTime float64) (*models.Clip, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	h, err := s.tabs.History(tabID)
	if err != nil {
		return nil, err
	}

	next, created, err := s.editor.SplitClip(h.Present(), clipID, splitTime)
	s.logger.LogEditOp(tabID, "split", clipID, err)
	if err != nil {
		metrics.RecordEditOp("split", "error")
		return nil, err
	}
	if created == nil {
		metrics.RecordEditOp("split", "noop")
		return nil, nil
	}
	h.Snapshot()
	h.Set(next)
	metrics.RecordEditOp("split", "ok")
	metrics.ClipsPerTab.WithLabelValues(tabID).Set(float64(len(next)))
	s.changed()
	return created, nil
}

// RemoveAssetClips strips clips referencing a deleted asset from every tab.
// Each affected tab gets its own undo step.
func (s *Session) RemoveAssetClips(assetID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, tab := range s.tabs.Tabs() {
		h, err := s.tabs.History(tab.ID)
		if err != nil {
			continue
		}
		current := h.Present()
		next := s.editor.RemoveAssetClips(current, assetID)
		if len(next) == len(current) {
			continue
		}
		h.Snapshot()
		h.Set(next)
		metrics.ClipsPerTab.WithLabelValues(tab.ID).Set(float64(len(next)))
	}
	s.logger.WithAssetID(assetID).Info("asset clips removed")
	s.changed()
}

// SetCaption stores caption words and style for a clip
func (s *Session) SetCaption(clipID string, data models.CaptionData) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data.ClipID = clipID
	s.captions[clipID] = data.Clone()
	s.changed()
}

// Caption returns the caption data for a clip, or nil
func (s *Session) Caption(clipID string) *models.CaptionData {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.captions[clipID].Clone()
}

// Captions returns a copy of all caption entries, for persistence
func (s *Session) Captions() []models.CaptionData {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.CaptionData, 0, len(s.captions))
	for _, data := range s.captions {
		out = append(out, *data.Clone())
	}
	return out
}

// ProjectID returns the id of the project this session edits
func (s *Session) ProjectID() string {
	return s.projectID
}

// Layers resolves the active tab's layer list at time t
func (s *Session) Layers(t float64, vp compositor.Viewport, rf *compositor.ReframeOverride) []compositor.Layer {
	s.mu.Lock()
	clips := s.tabs.ActiveTab().Clips
	captions := make(map[string]*models.CaptionData, len(s.captions))
	for id, data := range s.captions {
		captions[id] = data
	}
	s.mu.Unlock()

	layers := s.resolver.Resolve(clips, captions, t, vp, rf)
	metrics.RecordComposite(len(layers))
	return layers
}
