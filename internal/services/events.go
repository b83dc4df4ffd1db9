package services

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"invest/internal/models"
)

// Routing keys for asset change events.
const (
	EventAssetCreated = "asset.created"
	EventAssetUpdated = "asset.updated"
	EventAssetDeleted = "asset.deleted"
)

// EventPublisher delivers serialized events under a routing key.
// *rabbitmq.Client satisfies it.
type EventPublisher interface {
	Publish(routingKey string, body []byte) error
}

// AssetEvent is the message body published when an asset changes.
type AssetEvent struct {
	EventID string    `json:"event_id"`
	Kind    string    `json:"kind"`
	AssetID int       `json:"asset_id"`
	OwnerID int       `json:"owner_id"`
	Type    string    `json:"type"`
	Value   float64   `json:"value"`
	At      time.Time `json:"at"`
}

// publishAssetEvent is best effort: failures are logged and never surface to
// the caller, whose mutation has already been persisted.
func publishAssetEvent(publisher EventPublisher, logger *zap.Logger, kind string, asset models.Asset) {
	if publisher == nil {
		return
	}
	event := AssetEvent{
		EventID: uuid.New().String(),
		Kind:    kind,
		AssetID: asset.ID,
		OwnerID: asset.OwnerID,
		Type:    asset.Type,
		Value:   asset.Value,
		At:      time.Now().UTC(),
	}
	body, err := json.Marshal(event)
	if err != nil {
		logger.Warn("failed to marshal asset event", zap.String("kind", kind), zap.Error(err))
		return
	}
	if err := publisher.Publish(kind, body); err != nil {
		logger.Warn("failed to publish asset event", zap.String("kind", kind), zap.Int("asset_id", asset.ID), zap.Error(err))
	}
}
