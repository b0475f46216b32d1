package handlers

import (
	"errors"
	"path/filepath"

	"github.com/gofiber/fiber/v2"

	"github.com/RealCodeCrafter/trt-backend/internal/storage"
	apperrors "github.com/RealCodeCrafter/trt-backend/pkg/util/errorutil"
)

// UploadsHandler serves stored images at the URLs ImageStore.Save returns.
type UploadsHandler struct {
	store storage.ImageStore
}

func NewUploadsHandler(store storage.ImageStore) *UploadsHandler {
	return &UploadsHandler{store: store}
}

// Serve GET /uploads/:bucket/:name.
func (h *UploadsHandler) Serve(c *fiber.Ctx) error {
	bucket, name := c.Params("bucket"), c.Params("name")
	rc, err := h.store.Open(c.UserContext(), bucket, name)
	if err != nil {
		if errors.Is(err, storage.ErrImageNotFound) || errors.Is(err, storage.ErrInvalidName) {
			return apperrors.NewNotFound("image", map[string]any{"name": name})
		}
		return apperrors.NewInternalError(err)
	}
	c.Type(filepath.Ext(name))
	return c.SendStream(rc)
}
