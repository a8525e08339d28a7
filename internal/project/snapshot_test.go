package project

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arjunmalik/editcore/internal/logging"
	"github.com/arjunmalik/editcore/internal/timeline"
	"github.com/arjunmalik/editcore/pkg/models"
)

type stubAssets map[string]*models.Asset

func (s stubAssets) ResolveAsset(id string) (*models.Asset, bool) {
	a, ok := s[id]
	return a, ok
}

func TestSnapshotRestoreRoundTrip(t *testing.T) {
	assets := stubAssets{
		"vid-1": {ID: "vid-1", Kind: models.AssetKindVideo, Name: "clip.mp4", Duration: 12.5},
	}
	tracks := models.DefaultTracks()
	logger := logging.NewNopLogger()

	session := timeline.NewSession("proj-1", tracks, assets, nil, models.DefaultProjectSettings(), logger)

	clip, err := session.AddClip(models.MainTabID, "vid-1", models.BaseVideoTrack(tracks).ID, 0, timeline.AddOptions{})
	require.NoError(t, err)

	tab := session.CreateTab("Scene 2", "vid-1", []models.Clip{clip.Clone()})
	session.SetCaption(clip.ID, models.CaptionData{
		Words: []models.CaptionWord{{Text: "hello", Start: 0.2, End: 0.6}},
	})

	snap := SnapshotSession(session, "My Project")
	assert.Equal(t, "proj-1", snap.ID)
	assert.Equal(t, "My Project", snap.Name)
	require.Len(t, snap.Tabs, 2)
	require.Len(t, snap.Captions, 1)

	restored := RestoreSession(&snap, tracks, assets, logger)

	// Tab set and clip collections survive the round trip.
	tabs := restored.Tabs()
	require.Len(t, tabs, 2)
	assert.Equal(t, models.MainTabID, tabs[0].ID)
	assert.Equal(t, tab.ID, tabs[1].ID)
	assert.Equal(t, "Scene 2", tabs[1].Name)
	assert.Equal(t, "vid-1", tabs[1].AssetID)

	mainClips, err := restored.Clips(models.MainTabID)
	require.NoError(t, err)
	require.Len(t, mainClips, 1)
	assert.Equal(t, clip.ID, mainClips[0].ID)

	// Captions survive too.
	caption := restored.Caption(clip.ID)
	require.NotNil(t, caption)
	assert.Equal(t, "hello", caption.Words[0].Text)

	// Histories do not: a restored session starts with nothing to undo.
	canUndo, err := restored.CanUndo(models.MainTabID)
	require.NoError(t, err)
	assert.False(t, canUndo)

	// Main is active after restore, not the tab active at save time.
	assert.Equal(t, models.MainTabID, restored.ActiveTab().ID)
}

func TestRestoreSessionEmptySnapshot(t *testing.T) {
	snap := &Snapshot{ID: "proj-2", Settings: models.DefaultProjectSettings()}
	restored := RestoreSession(snap, models.DefaultTracks(), stubAssets{}, logging.NewNopLogger())

	tabs := restored.Tabs()
	require.Len(t, tabs, 1)
	assert.Equal(t, models.MainTabID, tabs[0].ID)
	assert.Empty(t, tabs[0].Clips)
}
