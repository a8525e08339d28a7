package timeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arjunmalik/editcore/internal/compositor"
	"github.com/arjunmalik/editcore/internal/logging"
	"github.com/arjunmalik/editcore/pkg/models"
)

func newTestSession() *Session {
	return NewSession("proj-1", models.DefaultTracks(), testAssets(), nil,
		models.DefaultProjectSettings(), logging.NewNopLogger())
}

func TestSessionDragCoalescesIntoOneUndoStep(t *testing.T) {
	s := newTestSession()

	clip, err := s.AddClip(models.MainTabID, "vid-1", models.TrackVideoBase, 0, AddOptions{})
	require.NoError(t, err)

	// Drag: one snapshot at drag-start, interim moves during.
	require.NoError(t, s.Snapshot(models.MainTabID))
	require.NoError(t, s.MoveClip(models.MainTabID, clip.ID, 1, "", true))
	require.NoError(t, s.MoveClip(models.MainTabID, clip.ID, 2, "", true))
	require.NoError(t, s.MoveClip(models.MainTabID, clip.ID, 3, "", true))

	ok, err := s.Undo(models.MainTabID)
	require.NoError(t, err)
	require.True(t, ok)

	clips, err := s.Clips(models.MainTabID)
	require.NoError(t, err)
	require.Len(t, clips, 1)
	assert.Equal(t, 0.0, clips[0].Start, "whole drag undone in one step")

	ok, err = s.Redo(models.MainTabID)
	require.NoError(t, err)
	require.True(t, ok)

	clips, err = s.Clips(models.MainTabID)
	require.NoError(t, err)
	assert.Equal(t, 3.0, clips[0].Start, "redo restores the final drag position")
}

func TestSessionEditAfterUndoDiscardsRedo(t *testing.T) {
	s := newTestSession()

	clip, err := s.AddClip(models.MainTabID, "vid-1", models.TrackVideoBase, 0, AddOptions{})
	require.NoError(t, err)

	require.NoError(t, s.MoveClip(models.MainTabID, clip.ID, 5, "", false))

	ok, err := s.Undo(models.MainTabID)
	require.NoError(t, err)
	require.True(t, ok)

	canRedo, err := s.CanRedo(models.MainTabID)
	require.NoError(t, err)
	require.True(t, canRedo)

	require.NoError(t, s.MoveClip(models.MainTabID, clip.ID, 7, "", false))

	canRedo, err = s.CanRedo(models.MainTabID)
	require.NoError(t, err)
	assert.False(t, canRedo, "a new edit after undo discards the redo history")
}

func TestSessionUndoEmpty(t *testing.T) {
	s := newTestSession()

	ok, err := s.Undo(models.MainTabID)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = s.Undo("ghost")
	var nerr *models.NotFoundError
	require.ErrorAs(t, err, &nerr)
}

func TestSessionSplitAndDelete(t *testing.T) {
	s := newTestSession()

	clip, err := s.AddClip(models.MainTabID, "vid-1", models.TrackVideoBase, 0, AddOptions{})
	require.NoError(t, err)

	second, err := s.SplitClip(models.MainTabID, clip.ID, 6)
	require.NoError(t, err)
	require.NotNil(t, second)

	// Near-edge split: silent no-op.
	noop, err := s.SplitClip(models.MainTabID, clip.ID, 0.01)
	require.NoError(t, err)
	assert.Nil(t, noop)

	require.NoError(t, s.DeleteClip(models.MainTabID, clip.ID, true))

	clips, err := s.Clips(models.MainTabID)
	require.NoError(t, err)
	require.Len(t, clips, 1)
	assert.Equal(t, second.ID, clips[0].ID)
	assert.Equal(t, 0.0, clips[0].Start, "ripple pulled the second half back")
}

func TestSessionTabIsolation(t *testing.T) {
	s := newTestSession()

	_, err := s.AddClip(models.MainTabID, "vid-1", models.TrackVideoBase, 0, AddOptions{})
	require.NoError(t, err)

	tab := s.CreateTab("Isolation", "vid-1", nil)
	_, err = s.AddClip(tab.ID, "vid-1", models.TrackVideoBase, 0, AddOptions{})
	require.NoError(t, err)
	_, err = s.AddClip(tab.ID, "img-1", models.TrackVideoOverlay, 1, AddOptions{})
	require.NoError(t, err)

	mainClips, err := s.Clips(models.MainTabID)
	require.NoError(t, err)
	assert.Len(t, mainClips, 1, "isolation tab edits must not leak into main")

	tabClips, err := s.Clips(tab.ID)
	require.NoError(t, err)
	assert.Len(t, tabClips, 2)

	require.NoError(t, s.CloseTab(tab.ID))
	assert.Equal(t, models.MainTabID, s.ActiveTab().ID)
}

func TestSessionRemoveAssetClipsCascades(t *testing.T) {
	s := newTestSession()

	_, err := s.AddClip(models.MainTabID, "vid-1", models.TrackVideoBase, 0, AddOptions{})
	require.NoError(t, err)
	keep, err := s.AddClip(models.MainTabID, "img-1", models.TrackVideoOverlay, 1, AddOptions{})
	require.NoError(t, err)

	tab := s.CreateTab("Isolation", "vid-1", nil)
	_, err = s.AddClip(tab.ID, "vid-1", models.TrackVideoBase, 0, AddOptions{})
	require.NoError(t, err)

	s.RemoveAssetClips("vid-1")

	mainClips, err := s.Clips(models.MainTabID)
	require.NoError(t, err)
	require.Len(t, mainClips, 1)
	assert.Equal(t, keep.ID, mainClips[0].ID)

	tabClips, err := s.Clips(tab.ID)
	require.NoError(t, err)
	assert.Empty(t, tabClips, "cascade covers every tab")
}

func TestSessionCaptions(t *testing.T) {
	s := newTestSession()

	clip, err := s.AddClip(models.MainTabID, "", models.TrackCaptions, 0, AddOptions{Duration: f64(3)})
	require.NoError(t, err)

	words := []models.CaptionWord{
		{Text: "hello", Start: 0, End: 0.4},
		{Text: "world", Start: 0.4, End: 0.9},
	}
	s.SetCaption(clip.ID, models.CaptionData{Words: words, Style: models.DefaultCaptionStyle()})

	got := s.Caption(clip.ID)
	require.NotNil(t, got)
	assert.Equal(t, clip.ID, got.ClipID)
	assert.Len(t, got.Words, 2)

	// Deleting the clip drops its caption data.
	require.NoError(t, s.DeleteClip(models.MainTabID, clip.ID, false))
	assert.Nil(t, s.Caption(clip.ID))
}

func TestSessionLayers(t *testing.T) {
	s := newTestSession()

	_, err := s.AddClip(models.MainTabID, "vid-1", models.TrackVideoBase, 0, AddOptions{})
	require.NoError(t, err)
	_, err = s.AddClip(models.MainTabID, "img-1", models.TrackVideoOverlay, 0, AddOptions{})
	require.NoError(t, err)

	layers := s.Layers(1, compositor.Viewport{Width: 1080, Height: 1920}, nil)
	require.Len(t, layers, 2)
	assert.Equal(t, compositor.RenderFullBleed, layers[0].RenderMode)
	assert.Equal(t, compositor.RenderOverlayImage, layers[1].RenderMode)
}

func TestSessionUpdateSettings(t *testing.T) {
	s := newTestSession()

	require.NoError(t, s.UpdateSettings(models.ProjectSettings{Width: 1920, Height: 1080, FPS: 60}))
	assert.Equal(t, 1920, s.Settings().Width)

	err := s.UpdateSettings(models.ProjectSettings{Width: 0, Height: 1080, FPS: 30})
	var verr *models.ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestSessionUpdateTabAsset(t *testing.T) {
	s := newTestSession()

	tab := s.CreateTab("Isolation", "vid-1", nil)
	_, err := s.AddClip(tab.ID, "vid-1", models.TrackVideoBase, 0, AddOptions{})
	require.NoError(t, err)

	require.NoError(t, s.UpdateTabAsset(tab.ID, "vid-regen", 8))

	clips, err := s.Clips(tab.ID)
	require.NoError(t, err)
	require.Len(t, clips, 1)
	assert.Equal(t, "vid-regen", clips[0].AssetID)
	assert.Equal(t, 8.0, clips[0].Duration)
}
