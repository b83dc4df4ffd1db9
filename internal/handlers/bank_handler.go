package handlers

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"invest/internal/middleware"
	"invest/internal/services"
)

// BankHandler handles the mock bank linking endpoint.
type BankHandler struct {
	service  *services.BankService
	validate *validator.Validate
}

// NewBankHandler creates a new BankHandler.
func NewBankHandler(service *services.BankService) *BankHandler {
	return &BankHandler{
		service:  service,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the bank routes.
func (h *BankHandler) RegisterRoutes(router fiber.Router) {
	router.Post("/bank/link", h.HandleLink)
}

// LinkRequest is the body of a bank linking request.
type LinkRequest struct {
	CardNumber string `json:"card_number"`
	CVV        string `json:"cvv"`
	OTP        string `json:"otp" validate:"required"`
}

// HandleLink links a bank card when the one-time password matches.
func (h *BankHandler) HandleLink(c *fiber.Ctx) error {
	var req LinkRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, err)
	}
	if err := h.validate.Struct(req); err != nil {
		return validationFailed(c, err)
	}

	err := h.service.LinkAccount(middleware.UserID(c), req.CardNumber, req.CVV, req.OTP)
	if errors.Is(err, services.ErrInvalidOTP) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Bank linking failed: Invalid OTP.",
		})
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Bank linking failed",
			"error":   err.Error(),
		})
	}
	return c.JSON(fiber.Map{"message": "Bank account linked successfully."})
}
