package service

import (
	"context"
	"errors"
	"mime/multipart"
	"strings"

	"go.uber.org/zap"

	"github.com/RealCodeCrafter/trt-backend/internal/auth"
	"github.com/RealCodeCrafter/trt-backend/internal/domain"
	"github.com/RealCodeCrafter/trt-backend/internal/events"
	"github.com/RealCodeCrafter/trt-backend/internal/repository"
	"github.com/RealCodeCrafter/trt-backend/internal/storage"
	apperrors "github.com/RealCodeCrafter/trt-backend/pkg/util/errorutil"
)

// CategoryInput carries create/update fields. Nil means "not supplied".
type CategoryInput struct {
	Translations *domain.CategoryTranslations
	PartIDs      []int64
	Images       []string
	Files        []*multipart.FileHeader
}

// CategoryService implements category CRUD.
type CategoryService struct {
	catalogDeps
	categories repository.CategoryRepository
	parts      repository.PartRepository
}

// CategoryDependencies groups collaborators for CategoryService.
type CategoryDependencies struct {
	Categories repository.CategoryRepository
	Parts      repository.PartRepository
	Store      storage.ImageStore
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// NewCategoryService builds the service.
func NewCategoryService(deps CategoryDependencies) *CategoryService {
	return &CategoryService{
		catalogDeps: catalogDeps{store: deps.Store, dispatcher: deps.Dispatcher, logger: deps.Logger},
		categories:  deps.Categories,
		parts:       deps.Parts,
	}
}

// Create rejects a name already used as any category's en or ru name.
// Unknown part ids are skipped.
func (s *CategoryService) Create(ctx context.Context, in CategoryInput, actor *auth.Identity) (*domain.Category, error) {
	if in.Translations == nil || strings.TrimSpace(in.Translations.EN.Name) == "" {
		return nil, apperrors.NewValidationError("invalid category payload",
			map[string]any{"translations": domain.ErrTranslationNameRequired.Error()})
	}
	if err := s.ensureNameFree(ctx, in.Translations.EN.Name, 0); err != nil {
		return nil, err
	}

	partIDs, err := s.existingParts(ctx, in.PartIDs)
	if err != nil {
		return nil, err
	}

	images := []string{}
	if len(in.Files) > 0 {
		if images, err = s.saveUploads(ctx, storage.BucketCategories, in.Files); err != nil {
			return nil, err
		}
	}

	category := &domain.Category{Translations: *in.Translations, Images: images}
	if err := s.categories.Create(ctx, category, partIDs); err != nil {
		s.discardImages(ctx, images)
		return nil, apperrors.NewInternalError(err)
	}

	s.publish(ctx, events.EventCategoryCreated, category.ID, actor, events.CategoryPayload{Name: category.Translations.EN.Name})
	return category, nil
}

// List returns every category.
func (s *CategoryService) List(ctx context.Context) ([]domain.Category, error) {
	categories, err := s.categories.List(ctx)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	if len(categories) == 0 {
		return nil, apperrors.NewNotFound("categories", nil)
	}
	return categories, nil
}

// Get returns a category with its parts.
func (s *CategoryService) Get(ctx context.Context, id int64) (*domain.Category, error) {
	return s.get(ctx, id, true)
}

// Update merges translations field by field, replaces images and relinks parts when supplied.
func (s *CategoryService) Update(ctx context.Context, id int64, in CategoryInput, actor *auth.Identity) (*domain.Category, error) {
	category, err := s.get(ctx, id, false)
	if err != nil {
		return nil, err
	}

	if in.Translations != nil {
		name := firstNonEmpty(in.Translations.EN.Name, category.Translations.EN.Name)
		if err := s.ensureNameFree(ctx, name, id); err != nil {
			return nil, err
		}
		cur := category.Translations
		category.Translations = domain.CategoryTranslations{
			EN: domain.LocalizedText{
				Name:        name,
				Description: firstNonEmpty(in.Translations.EN.Description, cur.EN.Description),
			},
			RU: domain.LocalizedText{
				Name:        firstNonEmpty(in.Translations.RU.Name, cur.RU.Name),
				Description: firstNonEmpty(in.Translations.RU.Description, cur.RU.Description),
			},
		}
	}

	var partIDs []int64
	if in.PartIDs != nil {
		if partIDs, err = s.existingParts(ctx, in.PartIDs); err != nil {
			return nil, err
		}
	}

	oldImages := category.Images
	var uploaded, obsolete []string
	switch {
	case len(in.Files) > 0:
		if uploaded, err = s.saveUploads(ctx, storage.BucketCategories, in.Files); err != nil {
			return nil, err
		}
		category.Images = uploaded
		obsolete = oldImages
	case in.Images != nil:
		category.Images = in.Images
		obsolete = removedImages(oldImages, in.Images)
	}

	if err := s.categories.Update(ctx, category, partIDs); err != nil {
		s.discardImages(ctx, uploaded)
		if errors.Is(err, repository.ErrNotFound) {
			return nil, categoryNotFound(id)
		}
		return nil, apperrors.NewInternalError(err)
	}
	s.discardImages(ctx, obsolete)

	s.publish(ctx, events.EventCategoryUpdated, id, actor, events.CategoryPayload{Name: category.Translations.EN.Name})
	return category, nil
}

// Delete removes the category, its part links and its images. Parts are kept.
func (s *CategoryService) Delete(ctx context.Context, id int64, actor *auth.Identity) error {
	category, err := s.get(ctx, id, false)
	if err != nil {
		return err
	}
	if err := s.categories.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return categoryNotFound(id)
		}
		return apperrors.NewInternalError(err)
	}
	s.discardImages(ctx, category.Images)

	s.publish(ctx, events.EventCategoryDeleted, id, actor, events.CategoryPayload{Name: category.Translations.EN.Name})
	return nil
}

func (s *CategoryService) get(ctx context.Context, id int64, withParts bool) (*domain.Category, error) {
	category, err := s.categories.GetByID(ctx, id, withParts)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, categoryNotFound(id)
		}
		return nil, apperrors.NewInternalError(err)
	}
	return category, nil
}

func (s *CategoryService) ensureNameFree(ctx context.Context, name string, excludeID int64) error {
	existing, err := s.categories.FindByName(ctx, name, excludeID)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	if existing != nil {
		return apperrors.NewConflict("category with this name already exists", map[string]any{"name": name})
	}
	return nil
}

func (s *CategoryService) existingParts(ctx context.Context, ids []int64) ([]int64, error) {
	if len(ids) == 0 {
		return ids, nil
	}
	found, err := s.parts.ExistingIDs(ctx, ids)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return found, nil
}

func categoryNotFound(id int64) error {
	return apperrors.NewNotFound("category", map[string]any{"id": id})
}
