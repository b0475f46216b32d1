package dto

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RealCodeCrafter/trt-backend/internal/domain"
)

func TestNewPartResponse_FieldNames(t *testing.T) {
	part := domain.Part{
		ID:           3,
		SKU:          "SKU-3",
		Translations: domain.PartTranslations{EN: domain.LocalizedName{Name: "Filter"}},
		OEMs:         []string{"A1"},
		TrtCode:      "TRT-3",
		Brand:        "Kia",
		Categories:   []domain.CategoryRef{{ID: 9}},
	}

	raw, err := json.Marshal(NewPartResponse(part))
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, "TRT-3", got["trtCode"])
	assert.Equal(t, []any{"A1"}, got["oem"])
	assert.Equal(t, []any{}, got["carName"], "missing lists render as []")
	assert.Equal(t, []any{}, got["images"])
	categories := got["categories"].([]any)
	require.Len(t, categories, 1)
	assert.Equal(t, float64(9), categories[0].(map[string]any)["id"])
}

func TestNewCategoryResponse_EmptyParts(t *testing.T) {
	raw, err := json.Marshal(NewCategoryResponse(domain.Category{ID: 1}))
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":1,"translations":{"en":{"name":""},"ru":{"name":""}},"images":[],"parts":[]}`, string(raw))
}
