package handlers

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"invest/internal/middleware"
	"invest/internal/repositories"
	"invest/internal/services"
	"invest/internal/store"
)

// AssetHandler handles HTTP requests for the authenticated user's assets.
type AssetHandler struct {
	service  *services.AssetService
	validate *validator.Validate
	logger   *zap.Logger
}

// NewAssetHandler creates a new AssetHandler.
func NewAssetHandler(service *services.AssetService, logger *zap.Logger) *AssetHandler {
	return &AssetHandler{
		service:  service,
		validate: validator.New(),
		logger:   logger,
	}
}

// RegisterRoutes registers the asset and compliance routes.
func (h *AssetHandler) RegisterRoutes(router fiber.Router) {
	assetRoutes := router.Group("/assets")
	assetRoutes.Get("/", h.HandleListAssets)
	assetRoutes.Post("/", h.HandleAddAsset)
	assetRoutes.Put("/:id", h.HandleEditAsset)
	assetRoutes.Delete("/:id", h.HandleDeleteAsset)
	router.Get("/compliance", h.HandleCompliance)
}

// AssetRequest is the body of add and edit requests.
type AssetRequest struct {
	Type  string   `json:"type" validate:"required,max=100"`
	Value *float64 `json:"value" validate:"required,gte=0"`
}

// bind decodes and validates the body. When it reports false the error
// response has already been written.
func (h *AssetHandler) bind(c *fiber.Ctx, req *AssetRequest) (bool, error) {
	if err := c.BodyParser(req); err != nil {
		return false, badRequest(c, err)
	}
	if err := h.validate.Struct(req); err != nil {
		return false, validationFailed(c, err)
	}
	return true, nil
}

// HandleListAssets returns the caller's assets.
func (h *AssetHandler) HandleListAssets(c *fiber.Ctx) error {
	return c.JSON(h.service.ListAssets(middleware.UserID(c)))
}

// HandleAddAsset creates an asset owned by the caller.
func (h *AssetHandler) HandleAddAsset(c *fiber.Ctx) error {
	var req AssetRequest
	if ok, err := h.bind(c, &req); !ok {
		return err
	}

	asset, err := h.service.AddAsset(middleware.UserID(c), req.Type, *req.Value)
	if errors.Is(err, repositories.ErrInvalidValue) {
		return invalidValue(c, err)
	}
	if err != nil {
		return persistFailed(c, h.logger, "Asset added but could not be saved", err)
	}
	return c.Status(fiber.StatusCreated).JSON(asset)
}

// HandleEditAsset replaces the type and value of an asset.
func (h *AssetHandler) HandleEditAsset(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid asset ID",
			"error":   err.Error(),
		})
	}
	var req AssetRequest
	if ok, err := h.bind(c, &req); !ok {
		return err
	}

	err = h.service.EditAsset(id, middleware.UserID(c), req.Type, *req.Value)
	if errors.Is(err, store.ErrNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": fmt.Sprintf("Asset with ID %d not found", id),
		})
	}
	if errors.Is(err, repositories.ErrInvalidValue) {
		return invalidValue(c, err)
	}
	if err != nil {
		return persistFailed(c, h.logger, "Asset updated but could not be saved", err)
	}
	return c.JSON(fiber.Map{"message": "Asset updated"})
}

// HandleDeleteAsset removes an asset. Unknown IDs are reported as deleted.
func (h *AssetHandler) HandleDeleteAsset(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid asset ID",
			"error":   err.Error(),
		})
	}
	if err := h.service.DeleteAsset(id); err != nil {
		return persistFailed(c, h.logger, "Asset deleted but could not be saved", err)
	}
	return c.JSON(fiber.Map{"message": "Asset deleted"})
}

// HandleCompliance returns the caller's compliance report.
func (h *AssetHandler) HandleCompliance(c *fiber.Ctx) error {
	return c.JSON(h.service.CheckCompliance(middleware.UserID(c)))
}

func invalidValue(c *fiber.Ctx, err error) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"message": "Invalid asset value",
		"error":   err.Error(),
	})
}

func persistFailed(c *fiber.Ctx, logger *zap.Logger, message string, err error) error {
	logger.Error(message, zap.Error(err))
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"message": message,
		"error":   err.Error(),
	})
}
