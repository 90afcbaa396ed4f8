package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/GTDGit/catalog_api/internal/models"
)

// ListingRepository handles data access for listings and their attribute values.
type ListingRepository struct {
	db Queryer
}

// NewListingRepository creates a new ListingRepository.
func NewListingRepository(db Queryer) *ListingRepository {
	return &ListingRepository{db: db}
}

// WithTx returns a copy of the repository bound to tx.
func (r *ListingRepository) WithTx(tx *sqlx.Tx) *ListingRepository {
	return &ListingRepository{db: tx}
}

const listingColumns = `id, title, description, owner_id, views, rating, is_public, added_at, sub_category_id`

// Create inserts a listing.
func (r *ListingRepository) Create(ctx context.Context, l *models.Listing) error {
	const q = `INSERT INTO listings (` + listingColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := exec(ctx, r.db, q,
		l.ID, l.Title, l.Description, l.OwnerID, l.Views, l.Rating, l.IsPublic, l.AddedAt, l.SubCategoryID,
	)
	return err
}

// GetByID returns a single listing by id.
func (r *ListingRepository) GetByID(ctx context.Context, id string) (*models.Listing, error) {
	const q = `SELECT ` + listingColumns + ` FROM listings WHERE id = ?`
	var l models.Listing
	if err := get(ctx, r.db, &l, q, id); err != nil {
		return nil, err
	}
	return &l, nil
}

// GetByIDForUpdate returns a listing and, on PostgreSQL, locks its row for
// the rest of the transaction.
func (r *ListingRepository) GetByIDForUpdate(ctx context.Context, id string) (*models.Listing, error) {
	q := `SELECT ` + listingColumns + ` FROM listings WHERE id = ?` + lockClause(r.db, lockUpdate)
	var l models.Listing
	if err := get(ctx, r.db, &l, q, id); err != nil {
		return nil, err
	}
	return &l, nil
}

// UpdateVisibility sets the public flag of a listing.
func (r *ListingRepository) UpdateVisibility(ctx context.Context, id string, public bool) (bool, error) {
	res, err := exec(ctx, r.db, `UPDATE listings SET is_public = ? WHERE id = ?`, public, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// IncrementViews adds one to the view counter of a listing.
func (r *ListingRepository) IncrementViews(ctx context.Context, id string) (bool, error) {
	res, err := exec(ctx, r.db, `UPDATE listings SET views = views + 1 WHERE id = ?`, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// Delete removes a listing row.
func (r *ListingRepository) Delete(ctx context.Context, id string) error {
	_, err := exec(ctx, r.db, `DELETE FROM listings WHERE id = ?`, id)
	return err
}

// ListingDependents counts the rows that block deleting a listing.
type ListingDependents struct {
	SKUs            int
	VariantTypes    int
	AttributeValues int
}

// Any reports whether at least one dependent row exists.
func (d ListingDependents) Any() bool {
	return d.SKUs+d.VariantTypes+d.AttributeValues > 0
}

// CountDependents counts skus, variant types and attribute values of a listing.
func (r *ListingRepository) CountDependents(ctx context.Context, id string) (ListingDependents, error) {
	var d ListingDependents
	var err error
	if d.SKUs, err = count(ctx, r.db, `SELECT COUNT(*) FROM skus WHERE listing_id = ?`, id); err != nil {
		return d, err
	}
	if d.VariantTypes, err = count(ctx, r.db, `SELECT COUNT(*) FROM variant_types WHERE listing_id = ?`, id); err != nil {
		return d, err
	}
	if d.AttributeValues, err = count(ctx, r.db, `SELECT COUNT(*) FROM listing_attribute_values WHERE listing_id = ?`, id); err != nil {
		return d, err
	}
	return d, nil
}

// CategoryOf returns the category id of a listing's sub-category.
func (r *ListingRepository) CategoryOf(ctx context.Context, listingID string) (string, error) {
	const q = `SELECT sc.category_id FROM listings l JOIN sub_categories sc ON sc.id = l.sub_category_id WHERE l.id = ?`
	var categoryID string
	if err := get(ctx, r.db, &categoryID, q, listingID); err != nil {
		return "", err
	}
	return categoryID, nil
}

// UpsertAttributeValue inserts or replaces the value of (listing, attribute).
// The stored row keeps the id of the first insert.
func (r *ListingRepository) UpsertAttributeValue(ctx context.Context, v *models.ListingAttributeValue) error {
	const q = `
        INSERT INTO listing_attribute_values (id, value, attribute_id, listing_id, updated_at)
        VALUES (?, ?, ?, ?, ?)
        ON CONFLICT (listing_id, attribute_id) DO UPDATE SET
            value = EXCLUDED.value,
            updated_at = EXCLUDED.updated_at`
	if _, err := exec(ctx, r.db, q, v.ID, v.Value, v.AttributeID, v.ListingID, v.UpdatedAt); err != nil {
		return err
	}
	return get(ctx, r.db, &v.ID,
		`SELECT id FROM listing_attribute_values WHERE listing_id = ? AND attribute_id = ?`, v.ListingID, v.AttributeID)
}

// ListAttributeValues returns the attribute values of a listing.
func (r *ListingRepository) ListAttributeValues(ctx context.Context, listingID string) ([]models.ListingAttributeValue, error) {
	const q = `SELECT v.id, v.value, v.attribute_id, v.listing_id, v.updated_at
        FROM listing_attribute_values v
        JOIN category_attributes a ON a.id = v.attribute_id
        WHERE v.listing_id = ?
        ORDER BY a.created_at ASC, a.id ASC`
	var values []models.ListingAttributeValue
	if err := selectAll(ctx, r.db, &values, q, listingID); err != nil {
		return nil, err
	}
	return values, nil
}
