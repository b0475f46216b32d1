package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/RealCodeCrafter/trt-backend/internal/domain"
)

// CategoryRepository manages category persistence.
type CategoryRepository interface {
	Create(ctx context.Context, category *domain.Category, partIDs []int64) error
	// Update rewrites the row. A nil partIDs keeps the current links.
	Update(ctx context.Context, category *domain.Category, partIDs []int64) error
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64, withParts bool) (*domain.Category, error)
	List(ctx context.Context) ([]domain.Category, error)
	// FindByName matches name against both the en and ru names, skipping excludeID.
	FindByName(ctx context.Context, name string, excludeID int64) (*domain.Category, error)
	ExistingIDs(ctx context.Context, ids []int64) ([]int64, error)
}

type categoryRepository struct {
	db *sql.DB
}

// NewCategoryRepository builds the repository.
func NewCategoryRepository(db *sql.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

const categoryColumns = `c.id, c.translations, c.images, COALESCE(c.image_url, '')`

func (r *categoryRepository) Create(ctx context.Context, category *domain.Category, partIDs []int64) error {
	const query = `
        INSERT INTO categories (translations, images, image_url)
        VALUES ($1,$2,NULLIF($3,''))
        RETURNING id`

	err := withTx(ctx, r.db, func(tx DBTX) error {
		if err := tx.QueryRowContext(ctx, query,
			category.Translations,
			pq.Array(category.Images),
			category.ImageURL,
		).Scan(&category.ID); err != nil {
			return err
		}
		return linkCategoryParts(ctx, tx, category.ID, partIDs)
	})
	if err != nil {
		return fmt.Errorf("insert category: %w", err)
	}
	return r.loadParts(ctx, category)
}

func (r *categoryRepository) Update(ctx context.Context, category *domain.Category, partIDs []int64) error {
	const query = `
        UPDATE categories SET translations=$1, images=$2, image_url=NULLIF($3,'')
        WHERE id=$4`

	err := withTx(ctx, r.db, func(tx DBTX) error {
		res, err := tx.ExecContext(ctx, query,
			category.Translations,
			pq.Array(category.Images),
			category.ImageURL,
			category.ID,
		)
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return ErrNotFound
		}
		if partIDs == nil {
			return nil
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM category_parts WHERE category_id=$1`, category.ID); err != nil {
			return err
		}
		return linkCategoryParts(ctx, tx, category.ID, partIDs)
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return err
		}
		return fmt.Errorf("update category: %w", err)
	}
	return r.loadParts(ctx, category)
}

// Delete removes the category; join rows go with it through the cascade.
func (r *categoryRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM categories WHERE id=$1`, id)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *categoryRepository) GetByID(ctx context.Context, id int64, withParts bool) (*domain.Category, error) {
	category, err := scanCategory(r.db.QueryRowContext(ctx,
		`SELECT `+categoryColumns+` FROM categories c WHERE c.id=$1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("query category: %w", err)
	}
	if withParts {
		if err := r.loadParts(ctx, &category); err != nil {
			return nil, err
		}
	}
	return &category, nil
}

func (r *categoryRepository) List(ctx context.Context) ([]domain.Category, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+categoryColumns+` FROM categories c ORDER BY c.id`)
	if err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}
	defer rows.Close()

	result := []domain.Category{}
	for rows.Next() {
		category, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, category)
	}
	return result, rows.Err()
}

func (r *categoryRepository) FindByName(ctx context.Context, name string, excludeID int64) (*domain.Category, error) {
	const query = `SELECT ` + categoryColumns + ` FROM categories c
        WHERE c.id <> $2
          AND (c.translations->'en'->>'name' = $1 OR c.translations->'ru'->>'name' = $1)
        ORDER BY c.id LIMIT 1`
	category, err := scanCategory(r.db.QueryRowContext(ctx, query, name, excludeID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("query category by name: %w", err)
	}
	return &category, nil
}

func (r *categoryRepository) ExistingIDs(ctx context.Context, ids []int64) ([]int64, error) {
	return existingIDs(ctx, r.db, "categories", ids)
}

func (r *categoryRepository) loadParts(ctx context.Context, category *domain.Category) error {
	const query = `SELECT ` + partColumns + ` FROM parts p
        JOIN category_parts cp ON cp.part_id = p.id
        WHERE cp.category_id=$1
        ORDER BY p.id`
	rows, err := r.db.QueryContext(ctx, query, category.ID)
	if err != nil {
		return fmt.Errorf("query category parts: %w", err)
	}
	defer rows.Close()

	category.Parts = []domain.Part{}
	for rows.Next() {
		part, err := scanPart(rows)
		if err != nil {
			return err
		}
		category.Parts = append(category.Parts, part)
	}
	return rows.Err()
}

func scanCategory(row rowScanner) (domain.Category, error) {
	var category domain.Category
	err := row.Scan(
		&category.ID,
		&category.Translations,
		pq.Array(&category.Images),
		&category.ImageURL,
	)
	return category, err
}

func linkCategoryParts(ctx context.Context, tx DBTX, categoryID int64, partIDs []int64) error {
	if len(partIDs) == 0 {
		return nil
	}
	_, err := tx.ExecContext(ctx, `
        INSERT INTO category_parts (category_id, part_id)
        SELECT $1, id FROM parts WHERE id = ANY($2)
        ON CONFLICT DO NOTHING`,
		categoryID, pq.Array(partIDs),
	)
	return err
}
