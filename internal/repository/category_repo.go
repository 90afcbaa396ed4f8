package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/GTDGit/catalog_api/internal/models"
)

// CategoryRepository handles data access for categories, sub-categories and
// category attribute declarations.
type CategoryRepository struct {
	db Queryer
}

// NewCategoryRepository creates a new CategoryRepository.
func NewCategoryRepository(db Queryer) *CategoryRepository {
	return &CategoryRepository{db: db}
}

// WithTx returns a copy of the repository bound to tx.
func (r *CategoryRepository) WithTx(tx *sqlx.Tx) *CategoryRepository {
	return &CategoryRepository{db: tx}
}

// Create inserts a category.
func (r *CategoryRepository) Create(ctx context.Context, c *models.Category) error {
	const q = `INSERT INTO categories (id, title, slug, description, colour, created_at) VALUES (?, ?, ?, ?, ?, ?)`
	_, err := exec(ctx, r.db, q, c.ID, c.Title, c.Slug, c.Description, c.Colour, c.CreatedAt)
	return err
}

// GetByID returns a single category by id, without sub-categories.
func (r *CategoryRepository) GetByID(ctx context.Context, id string) (*models.Category, error) {
	const q = `SELECT id, title, slug, description, colour, created_at FROM categories WHERE id = ?`
	var c models.Category
	if err := get(ctx, r.db, &c, q, id); err != nil {
		return nil, err
	}
	return &c, nil
}

// SlugExists reports whether a category already uses slug.
func (r *CategoryRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	return exists(ctx, r.db, `SELECT 1 FROM categories WHERE slug = ?`, slug)
}

// List returns all categories ordered by title.
func (r *CategoryRepository) List(ctx context.Context) ([]models.Category, error) {
	const q = `SELECT id, title, slug, description, colour, created_at FROM categories ORDER BY title ASC, id ASC`
	var cats []models.Category
	if err := selectAll(ctx, r.db, &cats, q); err != nil {
		return nil, err
	}
	return cats, nil
}

// CreateSubCategory inserts a sub-category.
func (r *CategoryRepository) CreateSubCategory(ctx context.Context, s *models.SubCategory) error {
	const q = `INSERT INTO sub_categories (id, title, category_id, created_at) VALUES (?, ?, ?, ?)`
	_, err := exec(ctx, r.db, q, s.ID, s.Title, s.CategoryID, s.CreatedAt)
	return err
}

// GetSubCategory returns a sub-category by id.
func (r *CategoryRepository) GetSubCategory(ctx context.Context, id string) (*models.SubCategory, error) {
	const q = `SELECT id, title, category_id, created_at FROM sub_categories WHERE id = ?`
	var s models.SubCategory
	if err := get(ctx, r.db, &s, q, id); err != nil {
		return nil, err
	}
	return &s, nil
}

// SubCategoryTitleExists reports whether categoryID already has a sub-category titled title.
func (r *CategoryRepository) SubCategoryTitleExists(ctx context.Context, categoryID, title string) (bool, error) {
	return exists(ctx, r.db, `SELECT 1 FROM sub_categories WHERE category_id = ? AND title = ?`, categoryID, title)
}

// ListSubCategories returns every sub-category ordered by title. Callers group
// them by CategoryID.
func (r *CategoryRepository) ListSubCategories(ctx context.Context) ([]models.SubCategory, error) {
	const q = `SELECT id, title, category_id, created_at FROM sub_categories ORDER BY title ASC, id ASC`
	var subs []models.SubCategory
	if err := selectAll(ctx, r.db, &subs, q); err != nil {
		return nil, err
	}
	return subs, nil
}

// ListSubCategoriesOf returns the sub-categories of one category ordered by title.
func (r *CategoryRepository) ListSubCategoriesOf(ctx context.Context, categoryID string) ([]models.SubCategory, error) {
	const q = `SELECT id, title, category_id, created_at FROM sub_categories WHERE category_id = ? ORDER BY title ASC, id ASC`
	var subs []models.SubCategory
	if err := selectAll(ctx, r.db, &subs, q, categoryID); err != nil {
		return nil, err
	}
	return subs, nil
}

// CreateAttribute inserts an attribute declaration.
func (r *CategoryRepository) CreateAttribute(ctx context.Context, row *models.CategoryAttributeRow) error {
	const q = `INSERT INTO category_attributes (id, title, category_id, datatype, enum_values, created_at) VALUES (?, ?, ?, ?, ?, ?)`
	_, err := exec(ctx, r.db, q, row.ID, row.Title, row.CategoryID, row.Datatype, row.EnumValues, row.CreatedAt)
	return err
}

// GetAttribute returns an attribute declaration by id.
func (r *CategoryRepository) GetAttribute(ctx context.Context, id string) (*models.CategoryAttributeRow, error) {
	const q = `SELECT id, title, category_id, datatype, enum_values, created_at FROM category_attributes WHERE id = ?`
	var row models.CategoryAttributeRow
	if err := get(ctx, r.db, &row, q, id); err != nil {
		return nil, err
	}
	return &row, nil
}

// AttributeTitleExists reports whether categoryID already declares an attribute titled title.
func (r *CategoryRepository) AttributeTitleExists(ctx context.Context, categoryID, title string) (bool, error) {
	return exists(ctx, r.db, `SELECT 1 FROM category_attributes WHERE category_id = ? AND title = ?`, categoryID, title)
}

// QueryAttributes opens a cursor over the attributes of categoryID in
// insertion order. The caller must close the returned rows.
func (r *CategoryRepository) QueryAttributes(ctx context.Context, categoryID string) (*sqlx.Rows, error) {
	const q = `SELECT id, title, category_id, datatype, enum_values, created_at
        FROM category_attributes WHERE category_id = ? ORDER BY created_at ASC, id ASC`
	return r.db.QueryxContext(ctx, r.db.Rebind(q), categoryID)
}
