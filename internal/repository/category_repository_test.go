package repository

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RealCodeCrafter/trt-backend/internal/domain"
)

var categoryRowColumns = []string{"id", "translations", "images", "image_url"}

func TestCategoryRepository_CreateWithParts(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCategoryRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO categories`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(5)))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO category_parts`)).
		WithArgs(int64(5), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	mock.ExpectQuery(regexp.QuoteMeta(`WHERE cp.category_id=$1`)).
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows(partRowColumns).AddRow(partRow(1, "TRT-1", "Toyota")...))

	category := &domain.Category{
		Translations: domain.CategoryTranslations{EN: domain.LocalizedText{Name: "Brakes"}},
	}
	require.NoError(t, repo.Create(context.Background(), category, []int64{1}))
	assert.Equal(t, int64(5), category.ID)
	require.Len(t, category.Parts, 1)
	assert.Equal(t, "TRT-1", category.Parts[0].TrtCode)
}

func TestCategoryRepository_GetByID(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCategoryRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM categories c WHERE c.id=$1`)).
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows(categoryRowColumns).
			AddRow(int64(5), `{"en":{"name":"Brakes","description":"Stop"},"ru":{"name":"Тормоза"}}`, "{a.png,b.png}", ""))

	category, err := repo.GetByID(context.Background(), 5, false)
	require.NoError(t, err)
	assert.Equal(t, "Stop", category.Translations.EN.Description)
	assert.Equal(t, []string{"a.png", "b.png"}, category.Images)
	assert.Nil(t, category.Parts)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM categories c WHERE c.id=$1`)).
		WithArgs(int64(6)).
		WillReturnRows(sqlmock.NewRows(categoryRowColumns))

	_, err = repo.GetByID(context.Background(), 6, true)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCategoryRepository_FindByName(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCategoryRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`c.translations->'en'->>'name' = $1 OR c.translations->'ru'->>'name' = $1`)).
		WithArgs("Brakes", int64(0)).
		WillReturnRows(sqlmock.NewRows(categoryRowColumns))

	category, err := repo.FindByName(context.Background(), "Brakes", 0)
	require.NoError(t, err)
	assert.Nil(t, category)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM categories c`)).
		WithArgs("Brakes", int64(2)).
		WillReturnRows(sqlmock.NewRows(categoryRowColumns).AddRow(int64(1), `{"en":{"name":"Brakes"}}`, nil, ""))

	category, err = repo.FindByName(context.Background(), "Brakes", 2)
	require.NoError(t, err)
	require.NotNil(t, category)
	assert.Equal(t, int64(1), category.ID)
}

func TestCategoryRepository_UpdateMissing(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCategoryRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE categories SET`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.Update(context.Background(), &domain.Category{ID: 8}, []int64{1})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCategoryRepository_DeleteAndList(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCategoryRepository(db)

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM categories WHERE id=$1`)).
		WithArgs(int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.Delete(context.Background(), 5))

	mock.ExpectQuery(regexp.QuoteMeta(`FROM categories c ORDER BY c.id`)).
		WillReturnRows(sqlmock.NewRows(categoryRowColumns))
	list, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
}
