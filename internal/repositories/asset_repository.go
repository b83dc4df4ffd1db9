package repositories

import (
	"errors"

	"invest/internal/models"
)

// ErrInvalidValue is returned for an asset value that is NaN or infinite.
var ErrInvalidValue = errors.New("asset value must be a finite number")

// AssetRepository defines the interface for asset data access.
type AssetRepository interface {
	Add(ownerID int, assetType string, value float64) (models.Asset, error)
	ListByOwner(ownerID int) []models.Asset
	GetByID(id int) (models.Asset, error)
	Edit(id, ownerID int, assetType string, value float64) error
	Remove(id int) error
}
