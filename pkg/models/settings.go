package models

// ProjectSettings holds the output frame configuration for a project
type ProjectSettings struct {
	Width  int     `json:"width" db:"width"`
	Height int     `json:"height" db:"height"`
	FPS    float64 `json:"fps" db:"fps"`
}

// DefaultProjectSettings returns the 9:16 short-form default
func DefaultProjectSettings() ProjectSettings {
	return ProjectSettings{Width: 1080, Height: 1920, FPS: 30}
}

// Validate checks the settings invariants
func (s ProjectSettings) Validate() error {
	if s.Width <= 0 {
		return NewValidationError("width", "must be > 0")
	}
	if s.Height <= 0 {
		return NewValidationError("height", "must be > 0")
	}
	if s.FPS <= 0 {
		return NewValidationError("fps", "must be > 0")
	}
	return nil
}
