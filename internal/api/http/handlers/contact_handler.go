package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/RealCodeCrafter/trt-backend/internal/api/dto"
	"github.com/RealCodeCrafter/trt-backend/internal/domain"
	"github.com/RealCodeCrafter/trt-backend/internal/service"
	apperrors "github.com/RealCodeCrafter/trt-backend/pkg/util/errorutil"
)

// ContactHandler relays the website contact form.
type ContactHandler struct {
	contact *service.ContactService
}

func NewContactHandler(contact *service.ContactService) *ContactHandler {
	return &ContactHandler{contact: contact}
}

// Send POST /contact.
func (h *ContactHandler) Send(c *fiber.Ctx) error {
	var req dto.ContactRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := h.contact.Send(c.UserContext(), domain.ContactMessage(req)); err != nil {
		return err
	}
	return c.JSON(dto.MessageResponse{Message: "message sent"})
}

// Info GET /contact.
func (h *ContactHandler) Info(c *fiber.Ctx) error {
	return c.JSON(h.contact.Info())
}
