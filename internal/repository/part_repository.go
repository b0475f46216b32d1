package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"github.com/RealCodeCrafter/trt-backend/internal/domain"
)

// PartRepository manages part persistence and the part side of category links.
type PartRepository interface {
	Create(ctx context.Context, part *domain.Part, categoryIDs []int64) error
	// Update rewrites the row. A nil categoryIDs keeps the current links;
	// a non-nil slice (even empty) replaces them.
	Update(ctx context.Context, part *domain.Part, categoryIDs []int64) error
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*domain.Part, error)
	ExistsByTrtCode(ctx context.Context, trtCode string, excludeID int64) (bool, error)
	List(ctx context.Context) ([]domain.Part, error)
	Search(ctx context.Context, filter domain.PartSearch) ([]domain.Part, error)
	SearchByName(ctx context.Context, name string) ([]domain.Part, error)
	ListByCategory(ctx context.Context, categoryID int64) ([]domain.Part, error)
	DistinctOEMs(ctx context.Context) ([]string, error)
	TrtCodesByOEM(ctx context.Context, oem string) ([]string, error)
	BrandsByTrtCode(ctx context.Context, trtCode string) ([]string, error)
	ModelsByBrand(ctx context.Context, brand string) ([]string, error)
	Count(ctx context.Context) (int64, error)
	ExistingIDs(ctx context.Context, ids []int64) ([]int64, error)
}

type partRepository struct {
	db *sql.DB
}

// NewPartRepository builds the repository.
func NewPartRepository(db *sql.DB) PartRepository {
	return &partRepository{db: db}
}

const partColumns = `p.id, p.sku, p.translations, p.images, p.car_name, p.model, p.oem, p.years, p.trt_code, p.brand`

func (r *partRepository) Create(ctx context.Context, part *domain.Part, categoryIDs []int64) error {
	const query = `
        INSERT INTO parts (sku, translations, images, car_name, model, oem, years, trt_code, brand)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
        RETURNING id`

	err := withTx(ctx, r.db, func(tx DBTX) error {
		if err := tx.QueryRowContext(ctx, query,
			part.SKU,
			part.Translations,
			pq.Array(part.Images),
			pq.Array(part.CarNames),
			pq.Array(part.Models),
			pq.Array(part.OEMs),
			pq.Array(part.Years),
			part.TrtCode,
			part.Brand,
		).Scan(&part.ID); err != nil {
			return err
		}
		return linkPartCategories(ctx, tx, part.ID, categoryIDs)
	})
	if err != nil {
		if isUniqueViolation(err) {
			return ErrConflict
		}
		return fmt.Errorf("insert part: %w", err)
	}
	return r.attachCategories(ctx, []*domain.Part{part})
}

func (r *partRepository) Update(ctx context.Context, part *domain.Part, categoryIDs []int64) error {
	const query = `
        UPDATE parts SET sku=$1, translations=$2, images=$3, car_name=$4, model=$5,
            oem=$6, years=$7, trt_code=$8, brand=$9
        WHERE id=$10`

	err := withTx(ctx, r.db, func(tx DBTX) error {
		res, err := tx.ExecContext(ctx, query,
			part.SKU,
			part.Translations,
			pq.Array(part.Images),
			pq.Array(part.CarNames),
			pq.Array(part.Models),
			pq.Array(part.OEMs),
			pq.Array(part.Years),
			part.TrtCode,
			part.Brand,
			part.ID,
		)
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return ErrNotFound
		}
		if categoryIDs == nil {
			return nil
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM category_parts WHERE part_id=$1`, part.ID); err != nil {
			return err
		}
		return linkPartCategories(ctx, tx, part.ID, categoryIDs)
	})
	switch {
	case err == nil:
	case errors.Is(err, ErrNotFound):
		return err
	case isUniqueViolation(err):
		return ErrConflict
	default:
		return fmt.Errorf("update part: %w", err)
	}
	return r.attachCategories(ctx, []*domain.Part{part})
}

func (r *partRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM parts WHERE id=$1`, id)
	if err != nil {
		return fmt.Errorf("delete part: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *partRepository) GetByID(ctx context.Context, id int64) (*domain.Part, error) {
	parts, err := r.queryParts(ctx, `SELECT `+partColumns+` FROM parts p WHERE p.id=$1`, id)
	if err != nil {
		return nil, err
	}
	if len(parts) == 0 {
		return nil, ErrNotFound
	}
	if err := r.attachCategories(ctx, []*domain.Part{&parts[0]}); err != nil {
		return nil, err
	}
	return &parts[0], nil
}

func (r *partRepository) ExistsByTrtCode(ctx context.Context, trtCode string, excludeID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM parts WHERE trt_code=$1 AND id<>$2)`,
		trtCode, excludeID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check trt code: %w", err)
	}
	return exists, nil
}

func (r *partRepository) List(ctx context.Context) ([]domain.Part, error) {
	return r.listWithCategories(ctx, `SELECT `+partColumns+` FROM parts p ORDER BY p.id`)
}

func (r *partRepository) Search(ctx context.Context, filter domain.PartSearch) ([]domain.Part, error) {
	var (
		conds []string
		args  []any
	)
	add := func(cond, value string) {
		args = append(args, strings.ToLower(strings.TrimSpace(value)))
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if filter.OEM != "" {
		add(`EXISTS (SELECT 1 FROM unnest(p.oem) o WHERE LOWER(o) = $%d)`, filter.OEM)
	}
	if filter.Model != "" {
		add(`EXISTS (SELECT 1 FROM unnest(p.model) m WHERE LOWER(m) = $%d)`, filter.Model)
	}
	if filter.Trt != "" {
		add(`LOWER(p.trt_code) = $%d`, filter.Trt)
	}
	if filter.Brand != "" {
		add(`LOWER(p.brand) = $%d`, filter.Brand)
	}

	query := `SELECT ` + partColumns + ` FROM parts p`
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, ` AND `)
	}
	query += ` ORDER BY p.id`
	return r.listWithCategories(ctx, query, args...)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func (r *partRepository) SearchByName(ctx context.Context, name string) ([]domain.Part, error) {
	pattern := "%" + likeEscaper.Replace(strings.ToLower(name)) + "%"
	const query = `SELECT ` + partColumns + ` FROM parts p
        WHERE LOWER(p.translations->'en'->>'name') LIKE $1
           OR LOWER(p.translations->'ru'->>'name') LIKE $1
        ORDER BY p.id`
	return r.listWithCategories(ctx, query, pattern)
}

func (r *partRepository) ListByCategory(ctx context.Context, categoryID int64) ([]domain.Part, error) {
	const query = `SELECT ` + partColumns + ` FROM parts p
        JOIN category_parts cp ON cp.part_id = p.id
        WHERE cp.category_id=$1
        ORDER BY p.id`
	return r.queryParts(ctx, query, categoryID)
}

func (r *partRepository) DistinctOEMs(ctx context.Context) ([]string, error) {
	return r.queryStrings(ctx, `SELECT DISTINCT unnest(oem) AS oem FROM parts ORDER BY oem`)
}

func (r *partRepository) TrtCodesByOEM(ctx context.Context, oem string) ([]string, error) {
	return r.queryStrings(ctx, `SELECT DISTINCT trt_code FROM parts WHERE $1 = ANY(oem) ORDER BY trt_code`, oem)
}

func (r *partRepository) BrandsByTrtCode(ctx context.Context, trtCode string) ([]string, error) {
	return r.queryStrings(ctx, `SELECT DISTINCT brand FROM parts WHERE trt_code=$1 ORDER BY brand`, trtCode)
}

func (r *partRepository) ModelsByBrand(ctx context.Context, brand string) ([]string, error) {
	return r.queryStrings(ctx, `SELECT DISTINCT unnest(model) AS model FROM parts WHERE brand=$1 ORDER BY model`, brand)
}

func (r *partRepository) Count(ctx context.Context) (int64, error) {
	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM parts`).Scan(&total); err != nil {
		return 0, fmt.Errorf("count parts: %w", err)
	}
	return total, nil
}

func (r *partRepository) ExistingIDs(ctx context.Context, ids []int64) ([]int64, error) {
	return existingIDs(ctx, r.db, "parts", ids)
}

func (r *partRepository) listWithCategories(ctx context.Context, query string, args ...any) ([]domain.Part, error) {
	parts, err := r.queryParts(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	ptrs := make([]*domain.Part, len(parts))
	for i := range parts {
		ptrs[i] = &parts[i]
	}
	if err := r.attachCategories(ctx, ptrs); err != nil {
		return nil, err
	}
	return parts, nil
}

func (r *partRepository) queryParts(ctx context.Context, query string, args ...any) ([]domain.Part, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query parts: %w", err)
	}
	defer rows.Close()

	result := []domain.Part{}
	for rows.Next() {
		part, err := scanPart(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, part)
	}
	return result, rows.Err()
}

// attachCategories loads category refs for all parts with a single query.
func (r *partRepository) attachCategories(ctx context.Context, parts []*domain.Part) error {
	if len(parts) == 0 {
		return nil
	}
	byID := make(map[int64]*domain.Part, len(parts))
	ids := make([]int64, 0, len(parts))
	for _, p := range parts {
		p.Categories = []domain.CategoryRef{}
		byID[p.ID] = p
		ids = append(ids, p.ID)
	}

	const query = `
        SELECT cp.part_id, c.id, c.translations, c.images
        FROM category_parts cp
        JOIN categories c ON c.id = cp.category_id
        WHERE cp.part_id = ANY($1)
        ORDER BY c.id`
	rows, err := r.db.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("query part categories: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			partID int64
			ref    domain.CategoryRef
		)
		if err := rows.Scan(&partID, &ref.ID, &ref.Translations, pq.Array(&ref.Images)); err != nil {
			return err
		}
		if p, ok := byID[partID]; ok {
			p.Categories = append(p.Categories, ref)
		}
	}
	return rows.Err()
}

func (r *partRepository) queryStrings(ctx context.Context, query string, args ...any) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query values: %w", err)
	}
	return collectStrings(rows)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPart(row rowScanner) (domain.Part, error) {
	var part domain.Part
	err := row.Scan(
		&part.ID,
		&part.SKU,
		&part.Translations,
		pq.Array(&part.Images),
		pq.Array(&part.CarNames),
		pq.Array(&part.Models),
		pq.Array(&part.OEMs),
		pq.Array(&part.Years),
		&part.TrtCode,
		&part.Brand,
	)
	return part, err
}

func linkPartCategories(ctx context.Context, tx DBTX, partID int64, categoryIDs []int64) error {
	if len(categoryIDs) == 0 {
		return nil
	}
	_, err := tx.ExecContext(ctx, `
        INSERT INTO category_parts (category_id, part_id)
        SELECT unnest($1::bigint[]), $2
        ON CONFLICT DO NOTHING`,
		pq.Array(categoryIDs), partID,
	)
	return err
}

// existingIDs returns the subset of ids present in table, in ascending order.
func existingIDs(ctx context.Context, db DBTX, table string, ids []int64) ([]int64, error) {
	if len(ids) == 0 {
		return []int64{}, nil
	}
	rows, err := db.QueryContext(ctx,
		`SELECT id FROM `+table+` WHERE id = ANY($1) ORDER BY id`,
		pq.Array(ids),
	)
	if err != nil {
		return nil, fmt.Errorf("query %s ids: %w", table, err)
	}
	defer rows.Close()

	found := []int64{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		found = append(found, id)
	}
	return found, rows.Err()
}
