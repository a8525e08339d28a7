package reframe

// Auto-reframe computes a pan/scale transform that keeps a tracked subject
// horizontally centered when a 16:9 source is shown in a 9:16 viewport,
// covering the frame instead of letterboxing it. The computation is a pure
// function of (time, track data, viewport size); it holds no accumulated
// state and is re-derived on every relevant frame.

const (
	sourceAspect   = 16.0 / 9.0
	viewportAspect = 9.0 / 16.0
)

// CoverScale is the fixed scale required for a 16:9 source to fully cover a
// 9:16 viewport (~3.16), independent of time.
const CoverScale = sourceAspect / viewportAspect

// Mode selects how the subject position is derived from the face tracks
type Mode string

const (
	// ModeSingle follows one selected track
	ModeSingle Mode = "single"
	// ModeGroup averages the horizontal center of all tracks active at t
	ModeGroup Mode = "group"
)

// Keyframe is one face-tracking sample: T in seconds, X the subject's
// horizontal center as a fraction of the source width (0-1).
type Keyframe struct {
	T float64 `json:"t"`
	X float64 `json:"x"`
}

// FaceTrack is one tracked face over time. Keyframes are ordered by T.
type FaceTrack struct {
	ID        string     `json:"id"`
	Keyframes []Keyframe `json:"keyframes"`
}

// Span reports the time range covered by the track's keyframes
func (ft FaceTrack) Span() (start, end float64, ok bool) {
	if len(ft.Keyframes) == 0 {
		return 0, 0, false
	}
	return ft.Keyframes[0].T, ft.Keyframes[len(ft.Keyframes)-1].T, true
}

// InterpolateX returns the track's horizontal center at time t, linearly
// interpolated between the bracketing keyframes and clamped to the first or
// last keyframe value outside the track's span.
func (ft FaceTrack) InterpolateX(t float64) (float64, bool) {
	kfs := ft.Keyframes
	if len(kfs) == 0 {
		return 0, false
	}
	if t <= kfs[0].T {
		return kfs[0].X, true
	}
	if t >= kfs[len(kfs)-1].T {
		return kfs[len(kfs)-1].X, true
	}
	for i := 1; i < len(kfs); i++ {
		if t > kfs[i].T {
			continue
		}
		prev, next := kfs[i-1], kfs[i]
		if next.T == prev.T {
			return next.X, true
		}
		frac := (t - prev.T) / (next.T - prev.T)
		return prev.X + (next.X-prev.X)*frac, true
	}
	return kfs[len(kfs)-1].X, true
}

// Viewport is the output surface in pixels
type Viewport struct {
	Width  float64
	Height float64
}

// Result is the transform override for one frame: X replaces the clip's
// static x offset and Scale its static scale. Rotation, crop and opacity of
// the static transform are unaffected.
type Result struct {
	X     float64 `json:"x"`
	Scale float64 `json:"scale"`
}

// Compute derives the reframe transform at time t. In single mode the
// selected track is followed; in group mode the horizontal centers of all
// tracks whose keyframe span covers t are averaged. Returns ok=false when no
// track yields a position, in which case the clip's static transform applies.
func Compute(tracks []FaceTrack, mode Mode, selectedID string, t float64, vp Viewport) (Result, bool) {
	faceCenterX, ok := faceCenter(tracks, mode, selectedID, t)
	if !ok {
		return Result{}, false
	}

	videoWidth := vp.Height * sourceAspect
	facePixelX := faceCenterX * videoWidth

	xOffset := -(facePixelX - videoWidth/2)

	// Clamp the pan so no source edge enters the viewport.
	bound := (videoWidth - vp.Width) / 2
	if bound < 0 {
		bound = 0
	}
	if xOffset > bound {
		xOffset = bound
	}
	if xOffset < -bound {
		xOffset = -bound
	}

	return Result{X: xOffset, Scale: CoverScale}, true
}

func faceCenter(tracks []FaceTrack, mode Mode, selectedID string, t float64) (float64, bool) {
	switch mode {
	case ModeGroup:
		sum := 0.0
		n := 0
		for _, track := range tracks {
			start, end, ok := track.Span()
			if !ok || t < start || t > end {
				continue
			}
			x, ok := track.InterpolateX(t)
			if !ok {
				continue
			}
			sum += x
			n++
		}
		if n == 0 {
			return 0, false
		}
		return sum / float64(n), true
	default:
		for _, track := range tracks {
			if track.ID != selectedID {
				continue
			}
			return track.InterpolateX(t)
		}
		return 0, false
	}
}
