package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/GTDGit/catalog_api/internal/models"
)

// VariantRepository handles data access for variant types and variant values.
type VariantRepository struct {
	db Queryer
}

// NewVariantRepository creates a new VariantRepository.
func NewVariantRepository(db Queryer) *VariantRepository {
	return &VariantRepository{db: db}
}

// WithTx returns a copy of the repository bound to tx.
func (r *VariantRepository) WithTx(tx *sqlx.Tx) *VariantRepository {
	return &VariantRepository{db: tx}
}

// CreateType inserts a variant type.
func (r *VariantRepository) CreateType(ctx context.Context, t *models.VariantType) error {
	const q = `INSERT INTO variant_types (id, title, listing_id, created_at) VALUES (?, ?, ?, ?)`
	_, err := exec(ctx, r.db, q, t.ID, t.Title, t.ListingID, t.CreatedAt)
	return err
}

// GetType returns a variant type by id, without values.
func (r *VariantRepository) GetType(ctx context.Context, id string) (*models.VariantType, error) {
	const q = `SELECT id, title, listing_id, created_at FROM variant_types WHERE id = ?`
	var t models.VariantType
	if err := get(ctx, r.db, &t, q, id); err != nil {
		return nil, err
	}
	return &t, nil
}

// GetTypeLocked returns a variant type and, on PostgreSQL, locks its row
// exclusively or shared for the rest of the transaction.
func (r *VariantRepository) GetTypeLocked(ctx context.Context, id string, exclusive bool) (*models.VariantType, error) {
	q := `SELECT id, title, listing_id, created_at FROM variant_types WHERE id = ?` + lockClause(r.db, lockMode(exclusive))
	var t models.VariantType
	if err := get(ctx, r.db, &t, q, id); err != nil {
		return nil, err
	}
	return &t, nil
}

// TypeTitleExists reports whether listingID already has a variant type titled title.
func (r *VariantRepository) TypeTitleExists(ctx context.Context, listingID, title string) (bool, error) {
	return exists(ctx, r.db, `SELECT 1 FROM variant_types WHERE listing_id = ? AND title = ?`, listingID, title)
}

// ListTypes returns the variant types of a listing ordered by title.
func (r *VariantRepository) ListTypes(ctx context.Context, listingID string) ([]models.VariantType, error) {
	const q = `SELECT id, title, listing_id, created_at FROM variant_types WHERE listing_id = ? ORDER BY title ASC, id ASC`
	var types []models.VariantType
	if err := selectAll(ctx, r.db, &types, q, listingID); err != nil {
		return nil, err
	}
	return types, nil
}

// DeleteType removes a variant type and its values. Callers must have checked
// that no SKU option references them.
func (r *VariantRepository) DeleteType(ctx context.Context, id string) error {
	if _, err := exec(ctx, r.db, `DELETE FROM variant_values WHERE variant_type_id = ?`, id); err != nil {
		return err
	}
	_, err := exec(ctx, r.db, `DELETE FROM variant_types WHERE id = ?`, id)
	return err
}

// CreateValue inserts a variant value.
func (r *VariantRepository) CreateValue(ctx context.Context, v *models.VariantValue) error {
	const q = `INSERT INTO variant_values (id, title, variant_type_id, colour, created_at) VALUES (?, ?, ?, ?, ?)`
	_, err := exec(ctx, r.db, q, v.ID, v.Title, v.VariantTypeID, v.Colour, v.CreatedAt)
	return err
}

// GetValue returns a variant value by id.
func (r *VariantRepository) GetValue(ctx context.Context, id string) (*models.VariantValue, error) {
	const q = `SELECT id, title, variant_type_id, colour, created_at FROM variant_values WHERE id = ?`
	var v models.VariantValue
	if err := get(ctx, r.db, &v, q, id); err != nil {
		return nil, err
	}
	return &v, nil
}

// GetValueLocked returns a variant value and, on PostgreSQL, locks its row
// exclusively or shared for the rest of the transaction.
func (r *VariantRepository) GetValueLocked(ctx context.Context, id string, exclusive bool) (*models.VariantValue, error) {
	q := `SELECT id, title, variant_type_id, colour, created_at FROM variant_values WHERE id = ?` + lockClause(r.db, lockMode(exclusive))
	var v models.VariantValue
	if err := get(ctx, r.db, &v, q, id); err != nil {
		return nil, err
	}
	return &v, nil
}

// ValueTitleExists reports whether variantTypeID already has a value titled title.
func (r *VariantRepository) ValueTitleExists(ctx context.Context, variantTypeID, title string) (bool, error) {
	return exists(ctx, r.db, `SELECT 1 FROM variant_values WHERE variant_type_id = ? AND title = ?`, variantTypeID, title)
}

// ListValuesOfListing returns all variant values under the listing's types in
// creation order. Callers group them by VariantTypeID.
func (r *VariantRepository) ListValuesOfListing(ctx context.Context, listingID string) ([]models.VariantValue, error) {
	const q = `SELECT vv.id, vv.title, vv.variant_type_id, vv.colour, vv.created_at
        FROM variant_values vv
        JOIN variant_types vt ON vt.id = vv.variant_type_id
        WHERE vt.listing_id = ?
        ORDER BY vv.created_at ASC, vv.id ASC`
	var values []models.VariantValue
	if err := selectAll(ctx, r.db, &values, q, listingID); err != nil {
		return nil, err
	}
	return values, nil
}

// DeleteValue removes a variant value.
func (r *VariantRepository) DeleteValue(ctx context.Context, id string) error {
	_, err := exec(ctx, r.db, `DELETE FROM variant_values WHERE id = ?`, id)
	return err
}

// CountOptionsOfType counts SKU options holding any value of variantTypeID.
func (r *VariantRepository) CountOptionsOfType(ctx context.Context, variantTypeID string) (int, error) {
	const q = `SELECT COUNT(*) FROM sku_options o
        JOIN variant_values vv ON vv.id = o.variant_value_id
        WHERE vv.variant_type_id = ?`
	return count(ctx, r.db, q, variantTypeID)
}

// CountOptionsOfValue counts SKU options holding variantValueID.
func (r *VariantRepository) CountOptionsOfValue(ctx context.Context, variantValueID string) (int, error) {
	return count(ctx, r.db, `SELECT COUNT(*) FROM sku_options WHERE variant_value_id = ?`, variantValueID)
}

func lockMode(exclusive bool) string {
	if exclusive {
		return lockUpdate
	}
	return lockShare
}
