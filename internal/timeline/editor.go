package timeline

import (
	"github.com/google/uuid"

	"github.com/arjunmalik/editcore/internal/logging"
	"github.com/arjunmalik/editcore/internal/metrics"
	"github.com/arjunmalik/editcore/pkg/models"
)

const (
	// DefaultClipDuration is used for image clips and for assets that
	// cannot be resolved yet (eventual-consistency gap after async create).
	DefaultClipDuration = 5.0

	// SplitEdgeTolerance guards against degenerate zero-length clips from
	// imprecise pointer input near a clip edge.
	SplitEdgeTolerance = 0.05
)

// AssetResolver looks up assets for duration defaults. Lookups may race
// with asynchronous asset creation and are allowed to miss.
type AssetResolver interface {
	ResolveAsset(id string) (*models.Asset, bool)
}

// Editor implements the timeline editing operations as pure functions over
// a clip slice. Operations never mutate their input: they return a fresh
// slice so history snapshots stay intact.
type Editor struct {
	tracks []models.Track
	assets AssetResolver
	logger *logging.Logger
	idGen  func() string
}

// NewEditor creates an editor over the given track set
func NewEditor(tracks []models.Track, assets AssetResolver, logger *logging.Logger) *Editor {
	return &Editor{
		tracks: tracks,
		assets: assets,
		logger: logger,
		idGen:  func() string { return uuid.New().String() },
	}
}

// Tracks returns the editor's track configuration
func (e *Editor) Tracks() []models.Track {
	return e.tracks
}

// AddOptions carries the optional arguments of AddClip. Nil fields use the
// defaults: 5s for images, the asset's natural duration otherwise,
// in point 0 and out point equal to the duration.
type AddOptions struct {
	Duration *float64
	InPoint  *float64
	OutPoint *float64
}

// AddClip places a new clip for assetID on trackID at start and returns the
// extended slice plus the created clip. If the asset cannot be resolved the
// clip falls back to the default duration instead of failing; this tolerates
// the race with asynchronous asset creation and is logged as a warning so
// the path stays visible.
func (e *Editor) AddClip(clips []models.Clip, assetID, trackID string, start float64, opts AddOptions) ([]models.Clip, models.Clip, error) {
	duration := DefaultClipDuration
	if opts.Duration != nil {
		duration = *opts.Duration
	} else if asset, ok := e.assets.ResolveAsset(assetID); ok {
		if asset.Kind != models.AssetKindImage && asset.Duration > 0 {
			duration = asset.Duration
		}
	} else if assetID != "" {
		// Lenient by design: placements may race with async asset creation.
		// Logged distinctly so overuse of this path stays visible.
		e.logger.WithAssetID(assetID).Warn("asset not resolved, using default clip duration")
		metrics.AssetFallbacksTotal.Inc()
	}

	clip := models.Clip{
		ID:       e.idGen(),
		AssetID:  assetID,
		TrackID:  trackID,
		Start:    start,
		Duration: duration,
		InPoint:  0,
		OutPoint: duration,
	}
	if opts.InPoint != nil {
		clip.InPoint = *opts.InPoint
	}
	if opts.OutPoint != nil {
		clip.OutPoint = *opts.OutPoint
		if opts.Duration == nil {
			clip.Duration = clip.OutPoint - clip.InPoint
		}
	} else if opts.InPoint != nil {
		clip.OutPoint = clip.InPoint + duration
	}

	if err := clip.Validate(e.tracks); err != nil {
		return clips, models.Clip{}, err
	}

	out := make([]models.Clip, len(clips), len(clips)+1)
	copy(out, clips)
	out = append(out, clip)
	return out, clip, nil
}

// TransformPatch is a shallow-merge patch over a clip's transform.
// Nil fields keep their previous values.
type TransformPatch struct {
	X          *float64
	Y          *float64
	Scale      *float64
	Rotation   *float64
	Opacity    *float64
	CropTop    *float64
	CropBottom *float64
	CropLeft   *float64
	CropRight  *float64
}

func (p *TransformPatch) apply(t *models.Transform) *models.Transform {
	out := t.Clone()
	if out == nil {
		def := models.DefaultTransform()
		out = &def
	}
	if p.X != nil {
		out.X = *p.X
	}
	if p.Y != nil {
		out.Y = *p.Y
	}
	if p.Scale != nil {
		out.Scale = *p.Scale
	}
	if p.Rotation != nil {
		out.Rotation = *p.Rotation
	}
	if p.Opacity != nil {
		out.Opacity = *p.Opacity
	}
	if p.CropTop != nil {
		out.CropTop = *p.CropTop
	}
	if p.CropBottom != nil {
		out.CropBottom = *p.CropBottom
	}
	if p.CropLeft != nil {
		out.CropLeft = *p.CropLeft
	}
	if p.CropRight != nil {
		out.CropRight = *p.CropRight
	}
	return out
}

// ClipPatch is a shallow-merge patch over a clip. Nil fields keep their
// previous values. Transform patches merge field-wise into a fresh copy,
// never into the shared transform object.
type ClipPatch struct {
	AssetID   *string
	TrackID   *string
	Start     *float64
	Duration  *float64
	InPoint   *float64
	OutPoint  *float64
	Transform *TransformPatch
}

// UpdateClip shallow-merges the patch into the identified clip. The merged
// result is validated against the clip invariants before it replaces the
// original, so a patch cannot leave the collection in an illegal state.
func (e *Editor) UpdateClip(clips []models.Clip, id string, patch ClipPatch) ([]models.Clip, error) {
	idx := indexOf(clips, id)
	if idx < 0 {
		return clips, models.NewNotFoundError("clip", id)
	}

	merged := clips[idx]
	if patch.AssetID != nil {
		merged.AssetID = *patch.AssetID
	}
	if patch.TrackID != nil {
		merged.TrackID = *patch.TrackID
	}
	if patch.Start != nil {
		merged.Start = *patch.Start
	}
	if patch.Duration != nil {
		merged.Duration = *patch.Duration
	}
	if patch.InPoint != nil {
		merged.InPoint = *patch.InPoint
	}
	if patch.OutPoint != nil {
		merged.OutPoint = *patch.OutPoint
	}
	if patch.Transform != nil {
		merged.Transform = patch.Transform.apply(merged.Transform)
	}

	if err := merged.Validate(e.tracks); err != nil {
		return clips, err
	}

	out := cloneSlice(clips)
	out[idx] = merged
	return out, nil
}

// DeleteClip removes the identified clip. With ripple set, every other clip
// on the same track whose start lies at or after the deleted clip's end is
// shifted backward by the deleted duration (clamped at 0). Other tracks are
// never reflowed, even when ripple is requested.
func (e *Editor) DeleteClip(clips []models.Clip, id string, ripple bool) ([]models.Clip, error) {
	idx := indexOf(clips, id)
	if idx < 0 {
		return clips, models.NewNotFoundError("clip", id)
	}

	deleted := clips[idx]
	out := make([]models.Clip, 0, len(clips)-1)
	for i, c := range clips {
		if i == idx {
			continue
		}
		if ripple && c.TrackID == deleted.TrackID && c.Start >= deleted.End() {
			c.Start -= deleted.Duration
			if c.Start < 0 {
				c.Start = 0
			}
		}
		out = append(out, c)
	}
	return out, nil
}

// MoveClip sets the clip's start (clamped at 0) and optionally reassigns its
// track. Overlaps are not resolved here; visibility is a compositing concern.
func (e *Editor) MoveClip(clips []models.Clip, id string, newStart float64, newTrackID string) ([]models.Clip, error) {
	idx := indexOf(clips, id)
	if idx < 0 {
		return clips, models.NewNotFoundError("clip", id)
	}
	if newTrackID != "" && models.FindTrack(e.tracks, newTrackID) == nil {
		return clips, models.NewValidationError("track_id", "unknown track: "+newTrackID)
	}

	moved := clips[idx]
	moved.Start = newStart
	if moved.Start < 0 {
		moved.Start = 0
	}
	if newTrackID != "" {
		moved.TrackID = newTrackID
	}

	out := cloneSlice(clips)
	out[idx] = moved
	return out, nil
}

// ResizeClip retrims the clip to the new in/out points and recomputes its
// duration. The timeline start is left untouched.
func (e *Editor) ResizeClip(clips []models.Clip, id string, newInPoint, newOutPoint float64) ([]models.Clip, error) {
	idx := indexOf(clips, id)
	if idx < 0 {
		return clips, models.NewNotFoundError("clip", id)
	}
	if newOutPoint <= newInPoint {
		return clips, models.NewValidationError("out_point", "must be > in_point")
	}

	resized := clips[idx]
	resized.InPoint = newInPoint
	resized.OutPoint = newOutPoint
	resized.Duration = newOutPoint - newInPoint

	out := cloneSlice(clips)
	out[idx] = resized
	return out, nil
}

// SplitClip cuts the clip in two at splitTime. Within the edge tolerance of
// either clip edge the call is a silent no-op (nil new clip, unchanged
// slice): such splits come from imprecise pointer input and must never crash
// the editing session. The second half receives a fresh id and an
// independent copy of the transform.
func (e *Editor) SplitClip(clips []models.Clip, id string, splitTime float64) ([]models.Clip, *models.Clip, error) {
	idx := indexOf(clips, id)
	if idx < 0 {
		return clips, nil, models.NewNotFoundError("clip", id)
	}

	orig := clips[idx]
	if splitTime < orig.Start+SplitEdgeTolerance || splitTime > orig.End()-SplitEdgeTolerance {
		return clips, nil, nil
	}

	timeInClip := splitTime - orig.Start
	splitInPoint := orig.InPoint + timeInClip

	first := orig
	first.Duration = timeInClip
	first.OutPoint = splitInPoint

	second := models.Clip{
		ID:        e.idGen(),
		AssetID:   orig.AssetID,
		TrackID:   orig.TrackID,
		Start:     splitTime,
		Duration:  orig.Duration - timeInClip,
		InPoint:   splitInPoint,
		OutPoint:  orig.OutPoint,
		Transform: orig.Transform.Clone(),
	}

	out := make([]models.Clip, len(clips), len(clips)+1)
	copy(out, clips)
	out[idx] = first
	out = append(out, second)
	return out, &second, nil
}

// RemoveAssetClips strips every clip referencing assetID. Used by the asset
// delete cascade.
func (e *Editor) RemoveAssetClips(clips []models.Clip, assetID string) []models.Clip {
	out := make([]models.Clip, 0, len(clips))
	for _, c := range clips {
		if c.AssetID == assetID {
			continue
		}
		out = append(out, c)
	}
	return out
}

func indexOf(clips []models.Clip, id string) int {
	for i := range clips {
		if clips[i].ID == id {
			return i
		}
	}
	return -1
}

func cloneSlice(clips []models.Clip) []models.Clip {
	out := make([]models.Clip, len(clips))
	copy(out, clips)
	return out
}
