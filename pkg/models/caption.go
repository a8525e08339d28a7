package models

// CaptionWord is one timed word within a captioned clip. Start and End are
// seconds relative to the clip's local time range.
type CaptionWord struct {
	Text  string  `json:"text"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// CaptionStyle describes how a caption clip is drawn. Rendering itself is
// owned by an external caption renderer; the core only carries the style.
type CaptionStyle struct {
	FontFamily      string  `json:"font_family"`
	FontSize        int     `json:"font_size"`
	FontWeight      int     `json:"font_weight"`
	Color           string  `json:"color"`
	BackgroundColor string  `json:"background_color,omitempty"`
	StrokeColor     string  `json:"stroke_color,omitempty"`
	VerticalPos     float64 `json:"vertical_pos"`
	Animation       string  `json:"animation"`
	HighlightColor  string  `json:"highlight_color,omitempty"`
	SyncOffset      float64 `json:"sync_offset,omitempty"`
}

// CaptionAnimation constants
const (
	CaptionAnimationNone      = "none"
	CaptionAnimationKaraoke   = "karaoke"
	CaptionAnimationPopIn     = "pop-in"
	CaptionAnimationHighlight = "highlight"
)

// DefaultCaptionStyle returns the style applied to new caption clips
func DefaultCaptionStyle() CaptionStyle {
	return CaptionStyle{
		FontFamily:  "Inter",
		FontSize:    42,
		FontWeight:  700,
		Color:       "#FFFFFF",
		VerticalPos: 0.8,
		Animation:   CaptionAnimationNone,
	}
}

// CaptionData holds the timed words and style for one caption clip,
// keyed by the clip's id.
type CaptionData struct {
	ClipID string        `json:"clip_id" db:"clip_id"`
	Words  []CaptionWord `json:"words" db:"words"`
	Style  CaptionStyle  `json:"style" db:"style"`
}

// Clone returns a copy with an independent word slice
func (c *CaptionData) Clone() *CaptionData {
	if c == nil {
		return nil
	}
	out := *c
	out.Words = make([]CaptionWord, len(c.Words))
	copy(out.Words, c.Words)
	return &out
}
