package assets

import (
	"context"
	"sync"

	"github.com/arjunmalik/editcore/internal/logging"
	"github.com/arjunmalik/editcore/pkg/models"
)

// Store is the persistence surface the library needs. Satisfied by
// Repository.
type Store interface {
	CreateAsset(ctx context.Context, asset *models.Asset) error
	GetAsset(ctx context.Context, id string) (*models.Asset, error)
	UpdateAsset(ctx context.Context, asset *models.Asset) error
	ListAssets(ctx context.Context, limit, offset int) ([]*models.Asset, error)
	DeleteAsset(ctx context.Context, id string) error
}

// ObjectStore is the slice of Storage the library needs for cleanup
type ObjectStore interface {
	DeletePrefix(ctx context.Context, prefix string) error
}

// Library is the in-memory asset catalog backing the editing session.
// Timeline operations resolve assets synchronously per edit, so the
// catalog is held in memory and written through to the repository.
type Library struct {
	mu      sync.RWMutex
	assets  map[string]*models.Asset
	store   Store
	objects ObjectStore
	logger  *logging.Logger
}

// NewLibrary creates an empty library over the given store
func NewLibrary(store Store, objects ObjectStore, logger *logging.Logger) *Library {
	return &Library{
		assets:  make(map[string]*models.Asset),
		store:   store,
		objects: objects,
		logger:  logger,
	}
}

// Load populates the catalog from the repository
func (l *Library) Load(ctx context.Context) error {
	const pageSize = 500
	loaded := make(map[string]*models.Asset)
	for offset := 0; ; offset += pageSize {
		page, err := l.store.ListAssets(ctx, pageSize, offset)
		if err != nil {
			return err
		}
		for _, a := range page {
			loaded[a.ID] = a
		}
		if len(page) < pageSize {
			break
		}
	}

	l.mu.Lock()
	l.assets = loaded
	l.mu.Unlock()
	l.logger.WithField("count", len(loaded)).Info("asset library loaded")
	return nil
}

// ResolveAsset looks up an asset by id from the in-memory catalog
func (l *Library) ResolveAsset(id string) (*models.Asset, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	a, ok := l.assets[id]
	return a, ok
}

// List returns all cataloged assets
func (l *Library) List() []*models.Asset {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]*models.Asset, 0, len(l.assets))
	for _, a := range l.assets {
		out = append(out, a)
	}
	return out
}

// Create persists a new asset and adds it to the catalog
func (l *Library) Create(ctx context.Context, asset *models.Asset) error {
	if !models.ValidAssetKind(asset.Kind) {
		return models.NewValidationError("kind", "unknown asset kind: "+asset.Kind)
	}
	if err := l.store.CreateAsset(ctx, asset); err != nil {
		return err
	}

	l.mu.Lock()
	l.assets[asset.ID] = asset
	l.mu.Unlock()
	l.logger.WithAssetID(asset.ID).Info("asset created")
	return nil
}

// Update persists changed asset metadata and refreshes the catalog entry
func (l *Library) Update(ctx context.Context, asset *models.Asset) error {
	if err := l.store.UpdateAsset(ctx, asset); err != nil {
		return err
	}

	l.mu.Lock()
	l.assets[asset.ID] = asset
	l.mu.Unlock()
	return nil
}

// Delete removes the asset record, its stored objects, and the catalog
// entry. Returns the removed asset so the caller can cascade cleanup
// (timeline clips, face track cache). Object storage failures are logged
// and do not fail the delete: orphaned objects are recoverable, a
// half-deleted asset is not.
func (l *Library) Delete(ctx context.Context, id string) (*models.Asset, error) {
	l.mu.RLock()
	asset, ok := l.assets[id]
	l.mu.RUnlock()
	if !ok {
		return nil, models.NewNotFoundError("asset", id)
	}

	if err := l.store.DeleteAsset(ctx, id); err != nil {
		return nil, err
	}

	if err := l.objects.DeletePrefix(ctx, "assets/"+id+"/"); err != nil {
		l.logger.WithAssetID(id).WithError(err).Warn("failed to delete asset objects")
	}

	l.mu.Lock()
	delete(l.assets, id)
	l.mu.Unlock()
	l.logger.WithAssetID(id).Info("asset deleted")
	return asset, nil
}
