package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClipValidate(t *testing.T) {
	tracks := DefaultTracks()

	tests := []struct {
		name      string
		clip      Clip
		wantField string
	}{
		{
			name: "valid clip",
			clip: Clip{ID: "c1", AssetID: "a1", TrackID: TrackVideoBase, Start: 0, Duration: 5, InPoint: 0, OutPoint: 5},
		},
		{
			name:      "negative start",
			clip:      Clip{ID: "c1", TrackID: TrackVideoBase, Start: -1, Duration: 5, InPoint: 0, OutPoint: 5},
			wantField: "start",
		},
		{
			name:      "zero duration",
			clip:      Clip{ID: "c1", TrackID: TrackVideoBase, Start: 0, Duration: 0, InPoint: 0, OutPoint: 0},
			wantField: "duration",
		},
		{
			name:      "out before in",
			clip:      Clip{ID: "c1", TrackID: TrackVideoBase, Start: 0, Duration: 5, InPoint: 5, OutPoint: 3},
			wantField: "out_point",
		},
		{
			name:      "unknown track",
			clip:      Clip{ID: "c1", TrackID: "nope", Start: 0, Duration: 5, InPoint: 0, OutPoint: 5},
			wantField: "track_id",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.clip.Validate(tracks)
			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.wantField, verr.Field)
		})
	}
}

func TestTransformClone(t *testing.T) {
	orig := &Transform{X: 10, Y: 20, Scale: 1.5, Opacity: 0.8, CropTop: 5}
	clone := orig.Clone()

	require.NotNil(t, clone)
	assert.Equal(t, *orig, *clone)

	clone.X = 99
	assert.Equal(t, 10.0, orig.X, "mutating the clone must not affect the original")

	var nilT *Transform
	assert.Nil(t, nilT.Clone())
}

func TestClipCloneIndependentTransform(t *testing.T) {
	c := Clip{ID: "c1", Transform: &Transform{Scale: 2}}
	cp := c.Clone()

	cp.Transform.Scale = 3
	assert.Equal(t, 2.0, c.Transform.Scale)
}

func TestBaseVideoTrack(t *testing.T) {
	base := BaseVideoTrack(DefaultTracks())
	require.NotNil(t, base)
	assert.Equal(t, TrackVideoBase, base.ID)

	assert.Nil(t, BaseVideoTrack([]Track{{ID: "t", Type: TrackTypeText, Order: 0}}))
}

func TestClipContains(t *testing.T) {
	c := Clip{Start: 2, Duration: 3}
	assert.True(t, c.Contains(2))
	assert.True(t, c.Contains(4.999))
	assert.False(t, c.Contains(5), "end is exclusive")
	assert.False(t, c.Contains(1.999))
}
