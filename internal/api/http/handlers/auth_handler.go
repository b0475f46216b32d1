package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/RealCodeCrafter/trt-backend/internal/api/dto"
	"github.com/RealCodeCrafter/trt-backend/internal/auth"
	"github.com/RealCodeCrafter/trt-backend/internal/service"
	apperrors "github.com/RealCodeCrafter/trt-backend/pkg/util/errorutil"
)

// AuthHandler exposes account endpoints.
type AuthHandler struct {
	auth *service.AuthService
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: authService}
}

// Register handles POST /auth/register.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	res, err := h.auth.Register(c.UserContext(), service.Credentials(req))
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(authResponse(res, "registered"))
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	res, err := h.auth.Login(c.UserContext(), req.Username, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(authResponse(res, "logged in"))
}

// AddAdmin handles POST /auth/add-admin.
func (h *AuthHandler) AddAdmin(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	user, err := h.auth.AddAdmin(c.UserContext(), service.Credentials(req))
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(dto.NewUserResponse(user))
}

// Me handles GET /auth/me.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	identity, ok := auth.IdentityFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	user, err := h.auth.Me(c.UserContext(), identity.ID)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewUserResponse(user))
}

func authResponse(res *service.AuthResult, message string) dto.AuthResponse {
	return dto.AuthResponse{
		AccessToken: res.Token.Value,
		ExpiresAt:   res.Token.ExpiresAt,
		User:        dto.NewUserResponse(res.User),
		Message:     message,
	}
}
