package dto

import "github.com/RealCodeCrafter/trt-backend/internal/domain"

// CategoryRefResponse is the category block embedded in a part.
type CategoryRefResponse struct {
	ID           int64                       `json:"id"`
	Translations domain.CategoryTranslations `json:"translations"`
	Images       []string                    `json:"images"`
}

// PartSummary is a part without its categories.
type PartSummary struct {
	ID           int64                   `json:"id"`
	SKU          string                  `json:"sku"`
	Translations domain.PartTranslations `json:"translations"`
	Images       []string                `json:"images"`
	CarName      []string                `json:"carName"`
	Model        []string                `json:"model"`
	OEM          []string                `json:"oem"`
	Years        []string                `json:"years"`
	TrtCode      string                  `json:"trtCode"`
	Brand        string                  `json:"brand"`
}

// PartResponse is a part with the categories it belongs to.
type PartResponse struct {
	PartSummary
	Categories []CategoryRefResponse `json:"categories"`
}

// CategoryResponse is a category with its linked parts.
type CategoryResponse struct {
	ID           int64                       `json:"id"`
	Translations domain.CategoryTranslations `json:"translations"`
	Images       []string                    `json:"images"`
	Parts        []PartSummary               `json:"parts"`
}

// CategorySummary is listed by GET /products/parts/categories.
type CategorySummary struct {
	ID           int64                       `json:"id"`
	Translations domain.CategoryTranslations `json:"translations"`
	ImageURL     string                      `json:"imageUrl,omitempty"`
}

// PartsInCategoryResponse is the category header followed by its parts.
type PartsInCategoryResponse struct {
	Category CategoryRefResponse `json:"category"`
	Parts    []PartSummary       `json:"parts"`
}

// CountResponse carries a total.
type CountResponse struct {
	Total int64 `json:"total"`
}

// MessageResponse is returned by operations without a resource body.
type MessageResponse struct {
	Message string `json:"message"`
}

func orEmpty(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}

// NewPartSummary maps a part without categories.
func NewPartSummary(p domain.Part) PartSummary {
	return PartSummary{
		ID:           p.ID,
		SKU:          p.SKU,
		Translations: p.Translations,
		Images:       orEmpty(p.Images),
		CarName:      orEmpty(p.CarNames),
		Model:        orEmpty(p.Models),
		OEM:          orEmpty(p.OEMs),
		Years:        orEmpty(p.Years),
		TrtCode:      p.TrtCode,
		Brand:        p.Brand,
	}
}

// NewPartResponse maps a part and its categories.
func NewPartResponse(p domain.Part) PartResponse {
	categories := make([]CategoryRefResponse, 0, len(p.Categories))
	for _, c := range p.Categories {
		categories = append(categories, CategoryRefResponse{ID: c.ID, Translations: c.Translations, Images: orEmpty(c.Images)})
	}
	return PartResponse{PartSummary: NewPartSummary(p), Categories: categories}
}

// NewPartResponses maps a list of parts.
func NewPartResponses(parts []domain.Part) []PartResponse {
	out := make([]PartResponse, 0, len(parts))
	for _, p := range parts {
		out = append(out, NewPartResponse(p))
	}
	return out
}

func partSummaries(parts []domain.Part) []PartSummary {
	out := make([]PartSummary, 0, len(parts))
	for _, p := range parts {
		out = append(out, NewPartSummary(p))
	}
	return out
}

// NewCategoryResponse maps a category with its parts.
func NewCategoryResponse(c domain.Category) CategoryResponse {
	return CategoryResponse{
		ID:           c.ID,
		Translations: c.Translations,
		Images:       orEmpty(c.Images),
		Parts:        partSummaries(c.Parts),
	}
}

// NewCategoryResponses maps a list of categories.
func NewCategoryResponses(categories []domain.Category) []CategoryResponse {
	out := make([]CategoryResponse, 0, len(categories))
	for _, c := range categories {
		out = append(out, NewCategoryResponse(c))
	}
	return out
}

// NewCategorySummaries maps categories to their summary view.
func NewCategorySummaries(categories []domain.Category) []CategorySummary {
	out := make([]CategorySummary, 0, len(categories))
	for _, c := range categories {
		out = append(out, CategorySummary{ID: c.ID, Translations: c.Translations, ImageURL: c.ImageURL})
	}
	return out
}

// NewPartsInCategoryResponse maps a category header and its parts.
func NewPartsInCategoryResponse(c domain.Category, parts []domain.Part) PartsInCategoryResponse {
	return PartsInCategoryResponse{
		Category: CategoryRefResponse{ID: c.ID, Translations: c.Translations, Images: orEmpty(c.Images)},
		Parts:    partSummaries(parts),
	}
}
