package models

// Transform holds per-clip visual adjustments. Crop values are four
// independent inset percentages (0-50 each side); crop clips the visible
// rectangle and is applied independently of translate/scale/rotate.
type Transform struct {
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Scale      float64 `json:"scale"`
	Rotation   float64 `json:"rotation"`
	Opacity    float64 `json:"opacity"`
	CropTop    float64 `json:"crop_top"`
	CropBottom float64 `json:"crop_bottom"`
	CropLeft   float64 `json:"crop_left"`
	CropRight  float64 `json:"crop_right"`
}

// DefaultTransform returns the identity transform
func DefaultTransform() Transform {
	return Transform{Scale: 1, Opacity: 1}
}

// Clone returns an independent copy of the transform. Operations that derive
// a new clip from an existing one must never share transform references.
func (t *Transform) Clone() *Transform {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}

// Clip is a placement of one Asset instance on one Track.
// AssetID is empty for caption-only clips on the text track.
// Clips on the same track may overlap; the compositor resolves visibility.
type Clip struct {
	ID        string     `json:"id" db:"id"`
	AssetID   string     `json:"asset_id" db:"asset_id"`
	TrackID   string     `json:"track_id" db:"track_id"`
	Start     float64    `json:"start" db:"start"`
	Duration  float64    `json:"duration" db:"duration"`
	InPoint   float64    `json:"in_point" db:"in_point"`
	OutPoint  float64    `json:"out_point" db:"out_point"`
	Transform *Transform `json:"transform,omitempty" db:"transform"`
}

// End returns the clip's exclusive end time on the timeline
func (c *Clip) End() float64 {
	return c.Start + c.Duration
}

// Contains reports whether timeline time t falls within [Start, End)
func (c *Clip) Contains(t float64) bool {
	return t >= c.Start && t < c.End()
}

// Clone returns a copy of the clip with an independent transform
func (c *Clip) Clone() Clip {
	out := *c
	out.Transform = c.Transform.Clone()
	return out
}

// Validate checks the clip invariants against the given track set
func (c *Clip) Validate(tracks []Track) error {
	if c.Start < 0 {
		return NewValidationError("start", "must be >= 0")
	}
	if c.Duration <= 0 {
		return NewValidationError("duration", "must be > 0")
	}
	if c.OutPoint <= c.InPoint {
		return NewValidationError("out_point", "must be > in_point")
	}
	if diff := (c.OutPoint - c.InPoint) - c.Duration; diff > 1e-9 || diff < -1e-9 {
		return NewValidationError("duration", "must equal out_point - in_point")
	}
	if FindTrack(tracks, c.TrackID) == nil {
		return NewValidationError("track_id", "unknown track: "+c.TrackID)
	}
	return nil
}
