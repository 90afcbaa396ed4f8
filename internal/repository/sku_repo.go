package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/GTDGit/catalog_api/internal/models"
)

// SKURepository handles data access for skus and their variant options.
type SKURepository struct {
	db Queryer
}

// NewSKURepository creates a new SKURepository.
func NewSKURepository(db Queryer) *SKURepository {
	return &SKURepository{db: db}
}

// WithTx returns a copy of the repository bound to tx.
func (r *SKURepository) WithTx(tx *sqlx.Tx) *SKURepository {
	return &SKURepository{db: tx}
}

const skuColumns = `id, title, price, discount, condition_id, listing_id, stock, is_public, created_at`

// Create inserts a SKU.
func (r *SKURepository) Create(ctx context.Context, sku *models.SKU) error {
	const q = `INSERT INTO skus (` + skuColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := exec(ctx, r.db, q,
		sku.ID,
		sku.Title,
		sku.Price,
		sku.Discount,
		sku.ConditionID,
		sku.ListingID,
		sku.Stock,
		sku.IsPublic,
		sku.CreatedAt,
	)
	return err
}

// GetByID returns a single SKU by id.
func (r *SKURepository) GetByID(ctx context.Context, id string) (*models.SKU, error) {
	const q = `SELECT ` + skuColumns + ` FROM skus WHERE id = ?`
	var sku models.SKU
	if err := get(ctx, r.db, &sku, q, id); err != nil {
		return nil, err
	}
	return &sku, nil
}

// GetByIDForUpdate returns a SKU and, on PostgreSQL, locks its row so option
// changes on the same SKU serialize.
func (r *SKURepository) GetByIDForUpdate(ctx context.Context, id string) (*models.SKU, error) {
	q := `SELECT ` + skuColumns + ` FROM skus WHERE id = ?` + lockClause(r.db, lockUpdate)
	var sku models.SKU
	if err := get(ctx, r.db, &sku, q, id); err != nil {
		return nil, err
	}
	return &sku, nil
}

// GetByListingID returns the SKUs of a listing in creation order.
func (r *SKURepository) GetByListingID(ctx context.Context, listingID string) ([]models.SKU, error) {
	const q = `SELECT ` + skuColumns + ` FROM skus WHERE listing_id = ? ORDER BY created_at ASC, id ASC`
	var skus []models.SKU
	if err := selectAll(ctx, r.db, &skus, q, listingID); err != nil {
		return nil, err
	}
	return skus, nil
}

// UpdateStock sets the stock of a SKU.
func (r *SKURepository) UpdateStock(ctx context.Context, id string, stock int) (bool, error) {
	res, err := exec(ctx, r.db, `UPDATE skus SET stock = ? WHERE id = ?`, stock, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// UpdateVisibility sets the public flag of a SKU.
func (r *SKURepository) UpdateVisibility(ctx context.Context, id string, public bool) (bool, error) {
	res, err := exec(ctx, r.db, `UPDATE skus SET is_public = ? WHERE id = ?`, public, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// Delete deletes a SKU by ID.
func (r *SKURepository) Delete(ctx context.Context, id string) error {
	_, err := exec(ctx, r.db, `DELETE FROM skus WHERE id = ?`, id)
	return err
}

// CountOptions counts the variant options assigned to a SKU.
func (r *SKURepository) CountOptions(ctx context.Context, skuID string) (int, error) {
	return count(ctx, r.db, `SELECT COUNT(*) FROM sku_options WHERE sku_id = ?`, skuID)
}

// InsertOption inserts one option row.
func (r *SKURepository) InsertOption(ctx context.Context, o models.SKUOption) error {
	const q = `INSERT INTO sku_options (sku_id, variant_value_id, variant_type_id) VALUES (?, ?, ?)`
	_, err := exec(ctx, r.db, q, o.SKUID, o.VariantValueID, o.VariantTypeID)
	return err
}

// DeleteOption removes the option of skuID under variantTypeID and reports
// whether a row was removed.
func (r *SKURepository) DeleteOption(ctx context.Context, skuID, variantTypeID string) (bool, error) {
	res, err := exec(ctx, r.db, `DELETE FROM sku_options WHERE sku_id = ? AND variant_type_id = ?`, skuID, variantTypeID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

const optionRowSelect = `SELECT o.sku_id, vt.id AS variant_type_id, vt.title AS type_title, vv.title AS value_title
        FROM sku_options o
        JOIN variant_values vv ON vv.id = o.variant_value_id
        JOIN variant_types vt ON vt.id = vv.variant_type_id`

// OptionRows returns the options of one SKU joined to value and type titles.
func (r *SKURepository) OptionRows(ctx context.Context, skuID string) ([]models.OptionRow, error) {
	const q = optionRowSelect + ` WHERE o.sku_id = ?`
	var rows []models.OptionRow
	if err := selectAll(ctx, r.db, &rows, q, skuID); err != nil {
		return nil, err
	}
	return rows, nil
}

// OptionRowsOfListing returns the options of every SKU of a listing.
func (r *SKURepository) OptionRowsOfListing(ctx context.Context, listingID string) ([]models.OptionRow, error) {
	const q = optionRowSelect + ` JOIN skus s ON s.id = o.sku_id WHERE s.listing_id = ?`
	var rows []models.OptionRow
	if err := selectAll(ctx, r.db, &rows, q, listingID); err != nil {
		return nil, err
	}
	return rows, nil
}
