package compositor

import "github.com/arjunmalik/editcore/pkg/models"

// SeekDriftTolerance is how far a media element may drift from its computed
// local time before a paused/scrubbing sync forces a seek. Seeking on every
// frame tick would stutter, so small drift is tolerated.
const SeekDriftTolerance = 0.1

// Seek instructs the presentation layer to move one media element
type Seek struct {
	ClipID   string  `json:"clip_id"`
	Position float64 `json:"position"`
}

// SyncPlan decides which media elements to seek for the given layer list.
// While playing, elements advance on their own internal clocks and must not
// be force-seeked. While paused or scrubbing, every active media layer whose
// reported position drifts beyond the tolerance is seeked to its computed
// local time. positions maps clip id to the element's current position;
// elements without a reported position are seeked unconditionally.
func SyncPlan(layers []Layer, positions map[string]float64, playing bool) []Seek {
	if playing {
		return nil
	}

	var seeks []Seek
	for _, layer := range layers {
		switch layer.RenderMode {
		case RenderCaption, RenderOverlayImage:
			// No media element to seek.
			continue
		}
		if layer.Kind == models.AssetKindImage {
			continue
		}

		pos, ok := positions[layer.ClipID]
		if ok {
			drift := pos - layer.ClipTime
			if drift < 0 {
				drift = -drift
			}
			if drift <= SeekDriftTolerance {
				continue
			}
		}
		seeks = append(seeks, Seek{ClipID: layer.ClipID, Position: layer.ClipTime})
	}
	return seeks
}
