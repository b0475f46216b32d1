package handlers

import (
	"net/http"
	"path/filepath"

	"github.com/gofiber/fiber/v2"

	"github.com/RealCodeCrafter/trt-backend/internal/api/dto"
	"github.com/RealCodeCrafter/trt-backend/internal/auth"
	"github.com/RealCodeCrafter/trt-backend/internal/domain"
	"github.com/RealCodeCrafter/trt-backend/internal/service"
)

// PartsHandler serves /products.
type PartsHandler struct {
	parts    *service.PartService
	maxFiles int
}

// NewPartsHandler constructs handler.
func NewPartsHandler(parts *service.PartService, maxFiles int) *PartsHandler {
	return &PartsHandler{parts: parts, maxFiles: maxFiles}
}

// Create POST /products.
func (h *PartsHandler) Create(c *fiber.Ctx) error {
	in, err := h.partInput(c)
	if err != nil {
		return err
	}
	identity, _ := auth.IdentityFromContext(c)
	part, err := h.parts.Create(c.UserContext(), in, identity)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(dto.NewPartResponse(*part))
}

// Update PUT /products/:id.
func (h *PartsHandler) Update(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	in, err := h.partInput(c)
	if err != nil {
		return err
	}
	identity, _ := auth.IdentityFromContext(c)
	part, err := h.parts.Update(c.UserContext(), id, in, identity)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewPartResponse(*part))
}

// Delete DELETE /products/:id.
func (h *PartsHandler) Delete(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	identity, _ := auth.IdentityFromContext(c)
	if err := h.parts.Delete(c.UserContext(), id, identity); err != nil {
		return err
	}
	return c.JSON(dto.MessageResponse{Message: "part deleted"})
}

// Get GET /products/:id.
func (h *PartsHandler) Get(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	part, err := h.parts.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewPartResponse(*part))
}

// List GET /products/all.
func (h *PartsHandler) List(c *fiber.Ctx) error {
	parts, err := h.parts.List(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(dto.NewPartResponses(parts))
}

// SearchByName GET /products?value=.
func (h *PartsHandler) SearchByName(c *fiber.Ctx) error {
	parts, err := h.parts.SearchByName(c.UserContext(), c.Query("value"))
	if err != nil {
		return err
	}
	return c.JSON(dto.NewPartResponses(parts))
}

// Search GET /products/part/search.
func (h *PartsHandler) Search(c *fiber.Ctx) error {
	parts, err := h.parts.Search(c.UserContext(), domain.PartSearch{
		OEM:   c.Query("oem"),
		Trt:   c.Query("trt"),
		Brand: c.Query("brand"),
		Model: c.Query("model"),
	})
	if err != nil {
		return err
	}
	return c.JSON(dto.NewPartResponses(parts))
}

// Count GET /products/all/count.
func (h *PartsHandler) Count(c *fiber.Ctx) error {
	total, err := h.parts.Count(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(dto.CountResponse{Total: total})
}

// OEMs GET /products/oem/all.
func (h *PartsHandler) OEMs(c *fiber.Ctx) error {
	return sendStrings(c, func() ([]string, error) { return h.parts.OEMs(c.UserContext()) })
}

// TrtCodesByOEM GET /products/oem/:oem.
func (h *PartsHandler) TrtCodesByOEM(c *fiber.Ctx) error {
	return sendStrings(c, func() ([]string, error) { return h.parts.TrtCodesByOEM(c.UserContext(), c.Params("oem")) })
}

// BrandsByTrtCode GET /products/trt/:trt.
func (h *PartsHandler) BrandsByTrtCode(c *fiber.Ctx) error {
	return sendStrings(c, func() ([]string, error) { return h.parts.BrandsByTrtCode(c.UserContext(), c.Params("trt")) })
}

// ModelsByBrand GET /products/brand/:brand.
func (h *PartsHandler) ModelsByBrand(c *fiber.Ctx) error {
	return sendStrings(c, func() ([]string, error) { return h.parts.ModelsByBrand(c.UserContext(), c.Params("brand")) })
}

// ByCategory GET /products/part/category/:categoryId.
func (h *PartsHandler) ByCategory(c *fiber.Ctx) error {
	id, err := paramID(c, "categoryId")
	if err != nil {
		return err
	}
	res, err := h.parts.ByCategory(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewPartsInCategoryResponse(res.Category, res.Parts))
}

// Categories GET /products/parts/categories.
func (h *PartsHandler) Categories(c *fiber.Ctx) error {
	categories, err := h.parts.Categories(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(dto.NewCategorySummaries(categories))
}

// Image GET /products/uploads/:imageName.
func (h *PartsHandler) Image(c *fiber.Ctx) error {
	name := c.Params("imageName")
	rc, err := h.parts.OpenImage(c.UserContext(), name)
	if err != nil {
		return err
	}
	c.Type(filepath.Ext(name))
	return c.SendStream(rc)
}

func (h *PartsHandler) partInput(c *fiber.Ctx) (service.PartInput, error) {
	fields, files, err := readForm(c, h.maxFiles)
	if err != nil {
		return service.PartInput{}, err
	}
	in := service.PartInput{
		SKU:     fields.str("sku"),
		TrtCode: fields.str("trtCode"),
		Brand:   fields.str("brand"),
		Files:   files,
	}
	if in.Translations, err = decodeJSONField[domain.PartTranslations](fields, "translations"); err != nil {
		return in, err
	}
	lists := []struct {
		key string
		dst *[]string
	}{
		{"carName", &in.CarNames},
		{"model", &in.Models},
		{"oem", &in.OEMs},
		{"years", &in.Years},
		{imagesField, &in.Images},
	}
	for _, l := range lists {
		if *l.dst, err = fields.strList(l.key); err != nil {
			return in, err
		}
	}
	if in.CategoryIDs, err = fields.idList("categories"); err != nil {
		return in, err
	}
	return in, nil
}

func sendStrings(c *fiber.Ctx, load func() ([]string, error)) error {
	values, err := load()
	if err != nil {
		return err
	}
	return c.JSON(values)
}
