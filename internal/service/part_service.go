package service

import (
	"context"
	"errors"
	"io"
	"mime/multipart"
	"strings"

	"go.uber.org/zap"

	"github.com/RealCodeCrafter/trt-backend/internal/auth"
	"github.com/RealCodeCrafter/trt-backend/internal/cache"
	"github.com/RealCodeCrafter/trt-backend/internal/domain"
	"github.com/RealCodeCrafter/trt-backend/internal/events"
	"github.com/RealCodeCrafter/trt-backend/internal/repository"
	"github.com/RealCodeCrafter/trt-backend/internal/storage"
	apperrors "github.com/RealCodeCrafter/trt-backend/pkg/util/errorutil"
)

// PartInput carries create/update fields. Nil slices and empty strings mean "not supplied".
type PartInput struct {
	SKU          string
	Translations *domain.PartTranslations
	TrtCode      string
	Brand        string
	CarNames     []string
	Models       []string
	OEMs         []string
	Years        []string
	CategoryIDs  []int64
	// Images lists URLs to keep when no new files are uploaded.
	Images []string
	Files  []*multipart.FileHeader
}

// PartsInCategory is a category header with its parts.
type PartsInCategory struct {
	Category domain.Category
	Parts    []domain.Part
}

// PartService implements the catalog part operations.
type PartService struct {
	catalogDeps
	parts      repository.PartRepository
	categories repository.CategoryRepository
	cache      *cache.CatalogCache
}

// PartDependencies groups collaborators for PartService.
type PartDependencies struct {
	Parts      repository.PartRepository
	Categories repository.CategoryRepository
	Store      storage.ImageStore
	Cache      *cache.CatalogCache
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// NewPartService builds the service.
func NewPartService(deps PartDependencies) *PartService {
	return &PartService{
		catalogDeps: catalogDeps{store: deps.Store, dispatcher: deps.Dispatcher, logger: deps.Logger},
		parts:       deps.Parts,
		categories:  deps.Categories,
		cache:       deps.Cache,
	}
}

// Create validates the input, stores uploads and inserts the part.
func (s *PartService) Create(ctx context.Context, in PartInput, actor *auth.Identity) (*domain.Part, error) {
	details := map[string]any{}
	if strings.TrimSpace(in.SKU) == "" {
		details["sku"] = "required"
	}
	if strings.TrimSpace(in.TrtCode) == "" {
		details["trtCode"] = "required"
	}
	if strings.TrimSpace(in.Brand) == "" {
		details["brand"] = "required"
	}
	if in.Translations == nil || strings.TrimSpace(in.Translations.EN.Name) == "" {
		details["translations"] = domain.ErrTranslationNameRequired.Error()
	}
	if len(details) > 0 {
		return nil, apperrors.NewValidationError("invalid part payload", details)
	}

	exists, err := s.parts.ExistsByTrtCode(ctx, in.TrtCode, 0)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	if exists {
		return nil, trtConflict(in.TrtCode)
	}

	if len(in.CategoryIDs) > 0 {
		found, err := s.categories.ExistingIDs(ctx, in.CategoryIDs)
		if err != nil {
			return nil, apperrors.NewInternalError(err)
		}
		if len(found) != len(uniqueIDs(in.CategoryIDs)) {
			return nil, apperrors.NewNotFound("some categories", map[string]any{"requested": in.CategoryIDs, "found": found})
		}
	}

	images := nonNil(in.Images)
	if len(in.Files) > 0 {
		if images, err = s.saveUploads(ctx, storage.BucketParts, in.Files); err != nil {
			return nil, err
		}
	}

	part := &domain.Part{
		SKU:          in.SKU,
		Translations: *in.Translations,
		Images:       images,
		CarNames:     nonNil(in.CarNames),
		Models:       nonNil(in.Models),
		OEMs:         nonNil(in.OEMs),
		Years:        nonNil(in.Years),
		TrtCode:      in.TrtCode,
		Brand:        in.Brand,
	}
	if err := s.parts.Create(ctx, part, in.CategoryIDs); err != nil {
		if len(in.Files) > 0 {
			s.discardImages(ctx, images)
		}
		if errors.Is(err, repository.ErrConflict) {
			return nil, trtConflict(in.TrtCode)
		}
		return nil, apperrors.NewInternalError(err)
	}

	s.publish(ctx, events.EventPartCreated, part.ID, actor, events.PartPayload{TrtCode: part.TrtCode, Brand: part.Brand})
	return part, nil
}

// Update applies supplied fields. New uploads replace every stored image;
// otherwise a supplied Images list keeps that subset and deletes the rest.
func (s *PartService) Update(ctx context.Context, id int64, in PartInput, actor *auth.Identity) (*domain.Part, error) {
	part, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.TrtCode != "" && in.TrtCode != part.TrtCode {
		exists, err := s.parts.ExistsByTrtCode(ctx, in.TrtCode, id)
		if err != nil {
			return nil, apperrors.NewInternalError(err)
		}
		if exists {
			return nil, trtConflict(in.TrtCode)
		}
	}

	var categoryIDs []int64
	if in.CategoryIDs != nil {
		if categoryIDs, err = s.categories.ExistingIDs(ctx, in.CategoryIDs); err != nil {
			return nil, apperrors.NewInternalError(err)
		}
	}

	oldImages := part.Images
	var uploaded, obsolete []string
	switch {
	case len(in.Files) > 0:
		if uploaded, err = s.saveUploads(ctx, storage.BucketParts, in.Files); err != nil {
			return nil, err
		}
		part.Images = uploaded
		obsolete = oldImages
	case in.Images != nil:
		part.Images = in.Images
		obsolete = removedImages(oldImages, in.Images)
	}

	if in.Translations != nil {
		part.Translations = domain.PartTranslations{
			EN: domain.LocalizedName{Name: firstNonEmpty(in.Translations.EN.Name, part.Translations.EN.Name)},
			RU: domain.LocalizedName{Name: firstNonEmpty(in.Translations.RU.Name, part.Translations.RU.Name)},
		}
	}
	part.SKU = firstNonEmpty(in.SKU, part.SKU)
	part.TrtCode = firstNonEmpty(in.TrtCode, part.TrtCode)
	part.Brand = firstNonEmpty(in.Brand, part.Brand)
	if in.CarNames != nil {
		part.CarNames = in.CarNames
	}
	if in.Models != nil {
		part.Models = in.Models
	}
	if in.OEMs != nil {
		part.OEMs = in.OEMs
	}
	if in.Years != nil {
		part.Years = in.Years
	}

	if err := s.parts.Update(ctx, part, categoryIDs); err != nil {
		s.discardImages(ctx, uploaded)
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return nil, partNotFound(id)
		case errors.Is(err, repository.ErrConflict):
			return nil, trtConflict(part.TrtCode)
		}
		return nil, apperrors.NewInternalError(err)
	}
	s.discardImages(ctx, obsolete)

	s.publish(ctx, events.EventPartUpdated, part.ID, actor, events.PartPayload{TrtCode: part.TrtCode, Brand: part.Brand})
	return part, nil
}

// Delete removes the part and its stored images.
func (s *PartService) Delete(ctx context.Context, id int64, actor *auth.Identity) error {
	part, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.parts.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return partNotFound(id)
		}
		return apperrors.NewInternalError(err)
	}
	s.discardImages(ctx, part.Images)

	s.publish(ctx, events.EventPartDeleted, id, actor, events.PartPayload{TrtCode: part.TrtCode, Brand: part.Brand})
	return nil
}

// Get returns one part with its categories.
func (s *PartService) Get(ctx context.Context, id int64) (*domain.Part, error) {
	part, err := s.parts.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, partNotFound(id)
		}
		return nil, apperrors.NewInternalError(err)
	}
	return part, nil
}

// List returns every part ordered by id.
func (s *PartService) List(ctx context.Context) ([]domain.Part, error) {
	parts, err := s.parts.List(ctx)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	if len(parts) == 0 {
		return nil, apperrors.NewNotFound("parts", nil)
	}
	return parts, nil
}

// SearchByName matches en/ru names case-insensitively. A blank name lists everything.
func (s *PartService) SearchByName(ctx context.Context, name string) ([]domain.Part, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return s.List(ctx)
	}
	parts, err := s.parts.SearchByName(ctx, name)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	if len(parts) == 0 {
		return nil, apperrors.NewNotFound("parts", map[string]any{"value": name})
	}
	return parts, nil
}

// Search applies the non-empty filters together.
func (s *PartService) Search(ctx context.Context, filter domain.PartSearch) ([]domain.Part, error) {
	parts, err := s.parts.Search(ctx, filter)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	if len(parts) == 0 {
		return nil, apperrors.NewNotFound("parts", nil)
	}
	return parts, nil
}

// Count returns the number of parts.
func (s *PartService) Count(ctx context.Context) (int64, error) {
	total, err := cache.Remember(ctx, s.cache, cache.KeyPartCount, s.parts.Count)
	if err != nil {
		return 0, apperrors.NewInternalError(err)
	}
	return total, nil
}

// OEMs returns every distinct OEM code.
func (s *PartService) OEMs(ctx context.Context) ([]string, error) {
	return s.lookup(ctx, cache.KeyOEMs, s.parts.DistinctOEMs)
}

// TrtCodesByOEM returns trt codes of parts carrying oem.
func (s *PartService) TrtCodesByOEM(ctx context.Context, oem string) ([]string, error) {
	return s.lookup(ctx, cache.KeyTrtByOEM(oem), func(ctx context.Context) ([]string, error) {
		return s.parts.TrtCodesByOEM(ctx, oem)
	})
}

// BrandsByTrtCode returns brands of parts with the trt code.
func (s *PartService) BrandsByTrtCode(ctx context.Context, trt string) ([]string, error) {
	return s.lookup(ctx, cache.KeyBrandsByTrt(trt), func(ctx context.Context) ([]string, error) {
		return s.parts.BrandsByTrtCode(ctx, trt)
	})
}

// ModelsByBrand returns models of parts of the brand.
func (s *PartService) ModelsByBrand(ctx context.Context, brand string) ([]string, error) {
	return s.lookup(ctx, cache.KeyModelsByBrand(brand), func(ctx context.Context) ([]string, error) {
		return s.parts.ModelsByBrand(ctx, brand)
	})
}

// ByCategory returns the category header and its parts.
func (s *PartService) ByCategory(ctx context.Context, categoryID int64) (*PartsInCategory, error) {
	category, err := s.categories.GetByID(ctx, categoryID, false)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound("category", map[string]any{"id": categoryID})
		}
		return nil, apperrors.NewInternalError(err)
	}
	parts, err := s.parts.ListByCategory(ctx, categoryID)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return &PartsInCategory{Category: *category, Parts: parts}, nil
}

// Categories returns the category summaries shown next to the part list.
func (s *PartService) Categories(ctx context.Context) ([]domain.Category, error) {
	categories, err := cache.Remember(ctx, s.cache, cache.KeyCategories, s.categories.List)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	if len(categories) == 0 {
		return nil, apperrors.NewNotFound("categories", nil)
	}
	return categories, nil
}

// OpenImage streams a stored image looked up by file name in every bucket.
func (s *PartService) OpenImage(ctx context.Context, name string) (io.ReadCloser, error) {
	rc, err := storage.OpenAny(ctx, s.store, name)
	if err != nil {
		if errors.Is(err, storage.ErrImageNotFound) || errors.Is(err, storage.ErrInvalidName) {
			return nil, apperrors.NewNotFound("image", map[string]any{"name": name})
		}
		return nil, apperrors.NewInternalError(err)
	}
	return rc, nil
}

func (s *PartService) lookup(ctx context.Context, key string, load func(context.Context) ([]string, error)) ([]string, error) {
	values, err := cache.Remember(ctx, s.cache, key, load)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return values, nil
}

func partNotFound(id int64) error {
	return apperrors.NewNotFound("part", map[string]any{"id": id})
}

func trtConflict(trt string) error {
	return apperrors.NewConflict("part with this trt code already exists", map[string]any{"trtCode": trt})
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}

func uniqueIDs(ids []int64) map[int64]struct{} {
	set := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}
