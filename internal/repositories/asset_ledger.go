package repositories

import (
	"fmt"
	"math"

	"invest/internal/models"
	"invest/internal/store"
)

// AssetLedger is a store-backed implementation of AssetRepository.
type AssetLedger struct {
	store *store.Store[models.Asset]
}

// NewAssetLedger creates a new instance of AssetLedger.
func NewAssetLedger(s *store.Store[models.Asset]) *AssetLedger {
	return &AssetLedger{
		store: s,
	}
}

// Add records a new asset for ownerID. The owner is not checked against the
// user directory.
func (r *AssetLedger) Add(ownerID int, assetType string, value float64) (models.Asset, error) {
	if !finite(value) {
		return models.Asset{}, fmt.Errorf("failed to add asset: %w", ErrInvalidValue)
	}
	asset, err := r.store.Insert(models.Asset{OwnerID: ownerID, Type: assetType, Value: value})
	if err != nil {
		return asset, fmt.Errorf("failed to add asset: %w", err)
	}
	return asset, nil
}

// ListByOwner returns the owner's assets in insertion order.
func (r *AssetLedger) ListByOwner(ownerID int) []models.Asset {
	return r.store.FindAll(func(a models.Asset) bool { return a.OwnerID == ownerID })
}

// GetByID retrieves a single asset by its ID.
func (r *AssetLedger) GetByID(id int) (models.Asset, error) {
	asset, ok := r.store.FindByID(id)
	if !ok {
		return models.Asset{}, fmt.Errorf("asset with ID %d: %w", id, store.ErrNotFound)
	}
	return asset, nil
}

// Edit replaces the type and value of the asset with the given ID.
// The asset is located by ID alone; ownerID is accepted but not compared with
// the stored owner, and neither ID nor owner is changed.
func (r *AssetLedger) Edit(id, ownerID int, assetType string, value float64) error {
	if !finite(value) {
		return fmt.Errorf("failed to edit asset %d: %w", id, ErrInvalidValue)
	}
	err := r.store.UpdateWhere(id, func(a *models.Asset) {
		a.Type = assetType
		a.Value = value
	})
	if err != nil {
		return fmt.Errorf("failed to edit asset: %w", err)
	}
	return nil
}

// Remove deletes the asset with the given ID. Removing an unknown ID succeeds.
func (r *AssetLedger) Remove(id int) error {
	if err := r.store.DeleteWhere(id); err != nil {
		return fmt.Errorf("failed to remove asset %d: %w", id, err)
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
