package services

import (
	"errors"

	"go.uber.org/zap"

	"invest/internal/compliance"
	"invest/internal/models"
	"invest/internal/repositories"
)

// AssetService handles business logic related to a user's assets.
type AssetService struct {
	repo   repositories.AssetRepository
	events EventPublisher
	logger *zap.Logger
}

// NewAssetService creates a new AssetService. events may be nil.
func NewAssetService(repo repositories.AssetRepository, events EventPublisher, logger *zap.Logger) *AssetService {
	return &AssetService{
		repo:   repo,
		events: events,
		logger: logger,
	}
}

// AddAsset records a new asset owned by ownerID.
func (s *AssetService) AddAsset(ownerID int, assetType string, value float64) (models.Asset, error) {
	asset, err := s.repo.Add(ownerID, assetType, value)
	if errors.Is(err, repositories.ErrInvalidValue) {
		s.logger.Info("asset rejected", zap.Int("owner_id", ownerID), zap.Error(err))
		return asset, err
	}
	if err != nil {
		s.logger.Error("asset not persisted", zap.Int("owner_id", ownerID), zap.Error(err))
		return asset, err
	}
	publishAssetEvent(s.events, s.logger, EventAssetCreated, asset)
	return asset, nil
}

// ListAssets returns every asset owned by ownerID.
func (s *AssetService) ListAssets(ownerID int) []models.Asset {
	return s.repo.ListByOwner(ownerID)
}

// EditAsset replaces the type and value of an asset.
func (s *AssetService) EditAsset(id, ownerID int, assetType string, value float64) error {
	if err := s.repo.Edit(id, ownerID, assetType, value); err != nil {
		s.logger.Info("asset edit failed", zap.Int("asset_id", id), zap.Error(err))
		return err
	}
	if asset, err := s.repo.GetByID(id); err == nil {
		publishAssetEvent(s.events, s.logger, EventAssetUpdated, asset)
	}
	return nil
}

// DeleteAsset removes an asset. Deleting an unknown asset succeeds.
func (s *AssetService) DeleteAsset(id int) error {
	existing, lookupErr := s.repo.GetByID(id)
	if err := s.repo.Remove(id); err != nil {
		s.logger.Error("asset removal not persisted", zap.Int("asset_id", id), zap.Error(err))
		return err
	}
	if lookupErr == nil {
		publishAssetEvent(s.events, s.logger, EventAssetDeleted, existing)
	}
	return nil
}

// CheckCompliance evaluates the compliance rules over ownerID's assets.
func (s *AssetService) CheckCompliance(ownerID int) compliance.Report {
	return compliance.Evaluate(s.repo.ListByOwner(ownerID))
}
