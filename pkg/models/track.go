package models

// Track represents a named lane with a type and a fixed rendering order.
// Tracks are configuration: they are not created or destroyed during normal
// editing, and they are never loaded from persistence.
type Track struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Type  string `json:"type"`
	Order int    `json:"order"`
}

// TrackType constants
const (
	TrackTypeVideo = "video"
	TrackTypeAudio = "audio"
	TrackTypeText  = "text"
)

// Well-known track ids in the default set
const (
	TrackCaptions     = "captions"
	TrackVideoBase    = "video-base"
	TrackVideoOverlay = "video-overlay-1"
	TrackVideoTop     = "video-overlay-2"
	TrackAudioMain    = "audio-1"
	TrackAudioExtra   = "audio-2"
)

// DefaultTracks returns the authoritative in-memory track set. Order is the
// rendering order: base video lowest, overlays above it, captions topmost.
// Audio tracks carry no visual order but keep stable ids for placement.
func DefaultTracks() []Track {
	return []Track{
		{ID: TrackVideoBase, Name: "Video", Type: TrackTypeVideo, Order: 0},
		{ID: TrackVideoOverlay, Name: "Overlay 1", Type: TrackTypeVideo, Order: 1},
		{ID: TrackVideoTop, Name: "Overlay 2", Type: TrackTypeVideo, Order: 2},
		{ID: TrackCaptions, Name: "Captions", Type: TrackTypeText, Order: 3},
		{ID: TrackAudioMain, Name: "Audio 1", Type: TrackTypeAudio, Order: 4},
		{ID: TrackAudioExtra, Name: "Audio 2", Type: TrackTypeAudio, Order: 5},
	}
}

// FindTrack returns the track with the given id, or nil
func FindTrack(tracks []Track, id string) *Track {
	for i := range tracks {
		if tracks[i].ID == id {
			return &tracks[i]
		}
	}
	return nil
}

// BaseVideoTrack returns the lowest-order video track in the set, or nil.
// By convention this is the track rewritten by in-place regeneration.
func BaseVideoTrack(tracks []Track) *Track {
	var base *Track
	for i := range tracks {
		t := &tracks[i]
		if t.Type != TrackTypeVideo {
			continue
		}
		if base == nil || t.Order < base.Order {
			base = t
		}
	}
	return base
}
