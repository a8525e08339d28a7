package compositor

import (
	"sort"

	"github.com/arjunmalik/editcore/pkg/models"
)

// Default placement of overlay images: horizontally centered, 70% down the
// viewport, at 40% of the viewport width.
const (
	DefaultOverlayAnchorX  = 0.5
	DefaultOverlayAnchorY  = 0.7
	DefaultOverlayWidthPct = 0.4
)

// RenderMode constants
const (
	RenderFullBleed    = "full-bleed"
	RenderOverlayImage = "overlay-image"
	RenderOverlayVideo = "overlay-video"
	RenderCaption      = "caption"
	RenderAudio        = "audio"
)

// Viewport is the preview surface in pixels
type Viewport struct {
	Width  float64
	Height float64
}

// ReframeOverride replaces the static x/scale of base-track layers for a
// single frame. Rotation, crop and opacity from the clip transform remain
// in effect.
type ReframeOverride struct {
	X     float64
	Scale float64
}

// CaptionPayload is handed to the external caption renderer
type CaptionPayload struct {
	Words       []models.CaptionWord `json:"words"`
	Style       models.CaptionStyle  `json:"style"`
	CurrentTime float64              `json:"current_time"`
}

// Layer is one resolved element of the preview at a given time. Layers are
// ordered bottom to top; Z is the position in that order. Audio layers are
// invisible but carry ClipTime so media elements stay in sync.
type Layer struct {
	ClipID     string           `json:"clip_id"`
	AssetID    string           `json:"asset_id"`
	Kind       string           `json:"kind"`
	RenderMode string           `json:"render_mode"`
	Z          int              `json:"z"`
	ClipTime   float64          `json:"clip_time"`
	Transform  models.Transform `json:"transform"`
	WidthPct   float64          `json:"width_pct,omitempty"`
	AnchorX    float64          `json:"anchor_x"`
	AnchorY    float64          `json:"anchor_y"`
	Visible    bool             `json:"visible"`
	Caption    *CaptionPayload  `json:"caption,omitempty"`
}

// AssetLookup resolves assets for layer typing. Lookups may miss during the
// window between clip placement and asset availability.
type AssetLookup interface {
	ResolveAsset(id string) (*models.Asset, bool)
}

// Resolver turns a clip collection and a playhead time into an ordered layer
// list. Resolve is a pure function of its arguments and is safe to call once
// per rendered frame.
type Resolver struct {
	tracks []models.Track
	assets AssetLookup
}

// NewResolver creates a resolver over the given track configuration
func NewResolver(tracks []models.Track, assets AssetLookup) *Resolver {
	return &Resolver{tracks: tracks, assets: assets}
}

type candidate struct {
	clip  models.Clip
	track models.Track
	key   int
}

// Resolve selects the clips active at time t and computes their draw order,
// local time and transform. Track precedence is fixed: base video lowest,
// overlays in ascending order, captions always topmost; it overrides any
// z-order implied by clip insertion order.
func (r *Resolver) Resolve(clips []models.Clip, captions map[string]*models.CaptionData, t float64, vp Viewport, rf *ReframeOverride) []Layer {
	base := models.BaseVideoTrack(r.tracks)

	var active []candidate
	for _, c := range clips {
		if !c.Contains(t) {
			continue
		}
		track := models.FindTrack(r.tracks, c.TrackID)
		if track == nil {
			continue
		}
		// Captions sort above everything, including the invisible audio
		// layers.
		key := track.Order
		switch track.Type {
		case models.TrackTypeAudio:
			key += 1 << 20
		case models.TrackTypeText:
			key += 1 << 21
		}
		active = append(active, candidate{clip: c, track: *track, key: key})
	}

	sort.SliceStable(active, func(i, j int) bool {
		return active[i].key < active[j].key
	})

	layers := make([]Layer, 0, len(active))
	for z, cand := range active {
		clip := cand.clip
		layer := Layer{
			ClipID:   clip.ID,
			Z:        z,
			AssetID:  clip.AssetID,
			ClipTime: t - clip.Start + clip.InPoint,
			AnchorX:  DefaultOverlayAnchorX,
			AnchorY:  DefaultOverlayAnchorY,
			Visible:  true,
		}

		if clip.Transform != nil {
			layer.Transform = *clip.Transform
		} else {
			layer.Transform = models.DefaultTransform()
		}

		switch cand.track.Type {
		case models.TrackTypeText:
			layer.Kind = "caption"
			layer.RenderMode = RenderCaption
			if data, ok := captions[clip.ID]; ok {
				layer.Caption = &CaptionPayload{
					Words:       data.Words,
					Style:       data.Style,
					CurrentTime: layer.ClipTime,
				}
			}
		case models.TrackTypeAudio:
			layer.Kind = models.AssetKindAudio
			layer.RenderMode = RenderAudio
			layer.Visible = false
		default:
			kind := models.AssetKindVideo
			if asset, ok := r.assets.ResolveAsset(clip.AssetID); ok {
				kind = asset.Kind
			}
			layer.Kind = kind

			if base != nil && clip.TrackID == base.ID {
				layer.RenderMode = RenderFullBleed
				if rf != nil {
					layer.Transform.X = rf.X
					layer.Transform.Scale = rf.Scale
				}
			} else if kind == models.AssetKindImage {
				layer.RenderMode = RenderOverlayImage
				layer.WidthPct = DefaultOverlayWidthPct
			} else {
				layer.RenderMode = RenderOverlayVideo
			}
		}

		layers = append(layers, layer)
	}

	return layers
}
