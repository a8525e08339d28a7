package models

import "time"

// Asset represents a source media item in the library
type Asset struct {
	ID           string    `json:"id" db:"id"`
	Kind         string    `json:"kind" db:"kind"`
	Name         string    `json:"name" db:"name"`
	Duration     float64   `json:"duration" db:"duration"`
	Size         int64     `json:"size" db:"size"`
	Width        int       `json:"width,omitempty" db:"width"`
	Height       int       `json:"height,omitempty" db:"height"`
	ThumbnailURL string    `json:"thumbnail_url,omitempty" db:"thumbnail_url"`
	StorageKey   string    `json:"storage_key,omitempty" db:"storage_key"`
	Generated    bool      `json:"generated" db:"generated"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// AssetKind constants
const (
	AssetKindVideo = "video"
	AssetKindImage = "image"
	AssetKindAudio = "audio"
)

// ValidAssetKind reports whether kind is one of the known asset kinds
func ValidAssetKind(kind string) bool {
	switch kind {
	case AssetKindVideo, AssetKindImage, AssetKindAudio:
		return true
	}
	return false
}
