package models

// Tab is a named, independent clip collection. The main tab always exists;
// clip-type tabs are created to edit a single generated asset in isolation.
// Tabs do not share clip identity with each other.
type Tab struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Type    string `json:"type"`
	AssetID string `json:"asset_id,omitempty"`
	Clips   []Clip `json:"clips"`
}

// TabType constants
const (
	TabTypeMain = "main"
	TabTypeClip = "clip"
)

// MainTabID is the id of the always-present main tab
const MainTabID = "main"
