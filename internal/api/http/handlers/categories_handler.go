package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/RealCodeCrafter/trt-backend/internal/api/dto"
	"github.com/RealCodeCrafter/trt-backend/internal/auth"
	"github.com/RealCodeCrafter/trt-backend/internal/domain"
	"github.com/RealCodeCrafter/trt-backend/internal/service"
)

// CategoriesHandler serves /categories.
type CategoriesHandler struct {
	categories *service.CategoryService
	maxFiles   int
}

// NewCategoriesHandler constructs handler.
func NewCategoriesHandler(categories *service.CategoryService, maxFiles int) *CategoriesHandler {
	return &CategoriesHandler{categories: categories, maxFiles: maxFiles}
}

// Create POST /categories.
func (h *CategoriesHandler) Create(c *fiber.Ctx) error {
	in, err := h.categoryInput(c)
	if err != nil {
		return err
	}
	identity, _ := auth.IdentityFromContext(c)
	category, err := h.categories.Create(c.UserContext(), in, identity)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(dto.NewCategoryResponse(*category))
}

// List GET /categories.
func (h *CategoriesHandler) List(c *fiber.Ctx) error {
	categories, err := h.categories.List(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(dto.NewCategoryResponses(categories))
}

// Get GET /categories/:id.
func (h *CategoriesHandler) Get(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	category, err := h.categories.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewCategoryResponse(*category))
}

// Update PATCH /categories/:id.
func (h *CategoriesHandler) Update(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	in, err := h.categoryInput(c)
	if err != nil {
		return err
	}
	identity, _ := auth.IdentityFromContext(c)
	category, err := h.categories.Update(c.UserContext(), id, in, identity)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewCategoryResponse(*category))
}

// Delete DELETE /categories/:id.
func (h *CategoriesHandler) Delete(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	identity, _ := auth.IdentityFromContext(c)
	if err := h.categories.Delete(c.UserContext(), id, identity); err != nil {
		return err
	}
	return c.JSON(dto.MessageResponse{Message: "category deleted"})
}

func (h *CategoriesHandler) categoryInput(c *fiber.Ctx) (service.CategoryInput, error) {
	fields, files, err := readForm(c, h.maxFiles)
	if err != nil {
		return service.CategoryInput{}, err
	}
	in := service.CategoryInput{Files: files}
	if in.Translations, err = decodeJSONField[domain.CategoryTranslations](fields, "translations"); err != nil {
		return in, err
	}
	if in.PartIDs, err = fields.idList("parts"); err != nil {
		return in, err
	}
	if in.Images, err = fields.strList(imagesField); err != nil {
		return in, err
	}
	return in, nil
}
