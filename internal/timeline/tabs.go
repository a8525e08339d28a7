package timeline

import (
	"github.com/arjunmalik/editcore/pkg/models"
)

// sameClips reports whether two clip slices are the same backing array.
// Editing operations always return fresh slices, so identity is enough to
// skip redundant history sets.
func sameClips(a, b []models.Clip) bool {
	if len(a) != len(b) {
		return false
	}
	if len(a) == 0 {
		return true
	}
	return &a[0] == &b[0]
}

type tabState struct {
	id      string
	name    string
	tabType string
	assetID string
	history *History[[]models.Clip]
}

// TabManager maintains multiple isolated timelines: the always-present main
// tab plus clip-type tabs created to edit a single generated asset in
// isolation. Each tab owns its clip collection and its own undo history;
// closing a tab discards both irrecoverably.
type TabManager struct {
	tracks []models.Track
	tabs   []*tabState
	active string
}

// NewTabManager creates a manager holding only the main tab
func NewTabManager(tracks []models.Track, initialClips []models.Clip) *TabManager {
	m := &TabManager{tracks: tracks, active: models.MainTabID}
	m.tabs = append(m.tabs, &tabState{
		id:      models.MainTabID,
		name:    "Main",
		tabType: models.TabTypeMain,
		history: NewHistory(initialClips, sameClips),
	})
	return m
}

func (m *TabManager) find(id string) *tabState {
	for _, t := range m.tabs {
		if t.id == id {
			return t
		}
	}
	return nil
}

// CreateTab creates and activates a clip-type tab scoped to one asset.
// The tab starts with its own independent clip collection.
func (m *TabManager) CreateTab(id, name, assetID string, initialClips []models.Clip) models.Tab {
	t := &tabState{
		id:      id,
		name:    name,
		tabType: models.TabTypeClip,
		assetID: assetID,
		history: NewHistory(initialClips, sameClips),
	}
	m.tabs = append(m.tabs, t)
	m.active = t.id
	return m.view(t)
}

// SwitchTab activates the identified tab. An unknown id is a programming
// error upstream and is reported as such.
func (m *TabManager) SwitchTab(id string) error {
	if m.find(id) == nil {
		return models.NewNotFoundError("tab", id)
	}
	m.active = id
	return nil
}

// CloseTab removes the tab and its history. Closing main is a no-op;
// closing the active tab switches activation back to main.
func (m *TabManager) CloseTab(id string) error {
	if id == models.MainTabID {
		return nil
	}
	for i, t := range m.tabs {
		if t.id == id {
			m.tabs = append(m.tabs[:i], m.tabs[i+1:]...)
			if m.active == id {
				m.active = models.MainTabID
			}
			return nil
		}
	}
	return models.NewNotFoundError("tab", id)
}

// ActiveTabID returns the id of the active tab
func (m *TabManager) ActiveTabID() string {
	return m.active
}

// ActiveTab returns a view of the active tab
func (m *TabManager) ActiveTab() models.Tab {
	return m.view(m.find(m.active))
}

// Tabs returns views of all tabs in creation order
func (m *TabManager) Tabs() []models.Tab {
	out := make([]models.Tab, 0, len(m.tabs))
	for _, t := range m.tabs {
		out = append(out, m.view(t))
	}
	return out
}

// Clips returns the identified tab's current clip collection
func (m *TabManager) Clips(tabID string) ([]models.Clip, error) {
	t := m.find(tabID)
	if t == nil {
		return nil, models.NewNotFoundError("tab", tabID)
	}
	return t.history.Present(), nil
}

// History returns the identified tab's undo history
func (m *TabManager) History(tabID string) (*History[[]models.Clip], error) {
	t := m.find(tabID)
	if t == nil {
		return nil, models.NewNotFoundError("tab", tabID)
	}
	return t.history, nil
}

// UpdateTabAsset rewrites every clip on the tab's base video track to point
// at the new asset id with the new duration, retrimmed to the full source.
// Clips on other tracks (manually added overlays) are untouched. Used by
// in-place regeneration workflows.
func (m *TabManager) UpdateTabAsset(tabID, newAssetID string, newDuration float64) error {
	if newDuration <= 0 {
		return models.NewValidationError("duration", "must be positive")
	}
	t := m.find(tabID)
	if t == nil {
		return models.NewNotFoundError("tab", tabID)
	}
	base := models.BaseVideoTrack(m.tracks)
	if base == nil {
		return models.NewValidationError("track_id", "no base video track configured")
	}

	t.assetID = newAssetID

	clips := t.history.Present()
	out := make([]models.Clip, len(clips))
	copy(out, clips)
	for i := range out {
		if out[i].TrackID != base.ID {
			continue
		}
		out[i].AssetID = newAssetID
		out[i].Duration = newDuration
		out[i].InPoint = 0
		out[i].OutPoint = newDuration
	}
	t.history.Snapshot()
	t.history.Set(out)
	return nil
}

func (m *TabManager) view(t *tabState) models.Tab {
	if t == nil {
		return models.Tab{}
	}
	return models.Tab{
		ID:      t.id,
		Name:    t.name,
		Type:    t.tabType,
		AssetID: t.assetID,
		Clips:   t.history.Present(),
	}
}
