package project

import (
	"github.com/arjunmalik/editcore/internal/logging"
	"github.com/arjunmalik/editcore/internal/timeline"
	"github.com/arjunmalik/editcore/pkg/models"
)

// SnapshotSession captures a session's durable state
func SnapshotSession(s *timeline.Session, name string) Snapshot {
	return Snapshot{
		ID:       s.ProjectID(),
		Name:     name,
		Settings: s.Settings(),
		Tabs:     s.Tabs(),
		Captions: s.Captions(),
	}
}

// RestoreSession rebuilds an editing session from a saved snapshot
func RestoreSession(snap *Snapshot, tracks []models.Track, assets timeline.AssetResolver, logger *logging.Logger) *timeline.Session {
	return timeline.RestoreSession(snap.ID, tracks, assets, snap.Tabs, snap.Settings, snap.Captions, logger)
}
