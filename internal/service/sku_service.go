package service

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/GTDGit/catalog_api/internal/database"
	"github.com/GTDGit/catalog_api/internal/models"
	"github.com/GTDGit/catalog_api/internal/repository"
	"github.com/GTDGit/catalog_api/internal/utils"
)

var (
	maxDiscount = decimal.NewFromInt(100)
	maxPrice    = decimal.RequireFromString("9999999999.99")
)

// SKUService is the registry of sellable units and their variant selections.
type SKUService struct {
	db         *sqlx.DB
	listings   *repository.ListingRepository
	variants   *repository.VariantRepository
	skus       *repository.SKURepository
	conditions *repository.ConditionRepository
}

// NewSKUService constructs a SKUService.
func NewSKUService(
	db *sqlx.DB,
	listings *repository.ListingRepository,
	variants *repository.VariantRepository,
	skus *repository.SKURepository,
	conditions *repository.ConditionRepository,
) *SKUService {
	return &SKUService{
		db:         db,
		listings:   listings,
		variants:   variants,
		skus:       skus,
		conditions: conditions,
	}
}

// CreateSKURequest represents the request to create a SKU. Options lists
// variant value ids applied with the insert.
type CreateSKURequest struct {
	Title       string          `json:"title" binding:"required"`
	Price       decimal.Decimal `json:"price"`
	Discount    decimal.Decimal `json:"discount"`
	ConditionID string          `json:"conditionId" binding:"required"`
	Stock       int             `json:"stock"`
	Options     []string        `json:"options"`
}

func (r *CreateSKURequest) validate() error {
	if r.Stock < 0 {
		return invalid("stock must not be negative")
	}
	if r.Price.IsNegative() {
		return invalid("price must not be negative")
	}
	if r.Price.GreaterThan(maxPrice) {
		return invalid("price %s is too large", r.Price)
	}
	if !r.Price.Equal(r.Price.Round(2)) {
		return invalid("price %s has more than two decimal places", r.Price)
	}
	if r.Discount.IsNegative() || r.Discount.GreaterThan(maxDiscount) {
		return invalid("discount %s must be a percentage between 0 and 100", r.Discount)
	}
	return nil
}

// CreateSKU inserts a SKU under listingID together with its initial options.
// Either the SKU and all of its options are stored or nothing is.
func (s *SKUService) CreateSKU(ctx context.Context, listingID string, req *CreateSKURequest) (*models.SKU, error) {
	title, err := requireTitle(req.Title, 1, "sku")
	if err != nil {
		return nil, err
	}
	if err := req.validate(); err != nil {
		return nil, err
	}

	sku := &models.SKU{
		ID:          utils.NewID(),
		Title:       title,
		Price:       req.Price.Round(2),
		Discount:    req.Discount.Round(2),
		ConditionID: req.ConditionID,
		ListingID:   listingID,
		Stock:       req.Stock,
		CreatedAt:   utils.NowMillis(),
	}

	err = database.WithTx(ctx, s.db, nil, func(tx *sqlx.Tx) error {
		if _, err := s.listings.WithTx(tx).GetByID(ctx, listingID); err != nil {
			return notFound(err, "listing", listingID)
		}
		known, err := s.conditions.WithTx(tx).Exists(ctx, req.ConditionID)
		if err != nil {
			return err
		}
		if !known {
			return fmt.Errorf("%w: condition %s", utils.ErrNotFound, req.ConditionID)
		}
		skus := s.skus.WithTx(tx)
		if err := skus.Create(ctx, sku); err != nil {
			return err
		}
		variants := s.variants.WithTx(tx)
		for _, valueID := range req.Options {
			if err := assignOption(ctx, skus, variants, sku, valueID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Info().Str("listing_id", listingID).Str("sku_id", sku.ID).Int("options", len(req.Options)).Msg("sku created")
	return sku, nil
}

// SetSKUOption assigns variantValueID to skuID, replacing whatever value the
// SKU held for the same variant type.
func (s *SKUService) SetSKUOption(ctx context.Context, skuID, variantValueID string) error {
	return database.WithTx(ctx, s.db, nil, func(tx *sqlx.Tx) error {
		skus := s.skus.WithTx(tx)
		sku, err := skus.GetByIDForUpdate(ctx, skuID)
		if err != nil {
			return notFound(err, "sku", skuID)
		}
		if err := assignOption(ctx, skus, s.variants.WithTx(tx), sku, variantValueID); err != nil {
			return err
		}
		log.Debug().Str("sku_id", skuID).Str("variant_value_id", variantValueID).Msg("sku option set")
		return nil
	})
}

// assignOption replaces the option of sku under the value's variant type.
// The value and its type are share-locked so a concurrent delete of either
// waits for this transaction.
func assignOption(ctx context.Context, skus *repository.SKURepository, variants *repository.VariantRepository, sku *models.SKU, valueID string) error {
	v, err := variants.GetValueLocked(ctx, valueID, false)
	if err != nil {
		return notFound(err, "variant value", valueID)
	}
	t, err := variants.GetTypeLocked(ctx, v.VariantTypeID, false)
	if err != nil {
		return notFound(err, "variant type", v.VariantTypeID)
	}
	if t.ListingID != sku.ListingID {
		return fmt.Errorf("%w: variant value %s belongs to listing %s, sku %s to listing %s",
			utils.ErrCrossListingMismatch, valueID, t.ListingID, sku.ID, sku.ListingID)
	}
	if _, err := skus.DeleteOption(ctx, sku.ID, t.ID); err != nil {
		return err
	}
	return skus.InsertOption(ctx, models.SKUOption{
		SKUID:          sku.ID,
		VariantValueID: v.ID,
		VariantTypeID:  t.ID,
	})
}

// ClearSKUOption removes the value skuID holds for variantTypeID. Clearing a
// dimension that has no value is a no-op.
func (s *SKUService) ClearSKUOption(ctx context.Context, skuID, variantTypeID string) error {
	return database.WithTx(ctx, s.db, nil, func(tx *sqlx.Tx) error {
		skus := s.skus.WithTx(tx)
		if _, err := skus.GetByIDForUpdate(ctx, skuID); err != nil {
			return notFound(err, "sku", skuID)
		}
		removed, err := skus.DeleteOption(ctx, skuID, variantTypeID)
		if err != nil {
			return err
		}
		if removed {
			log.Debug().Str("sku_id", skuID).Str("variant_type_id", variantTypeID).Msg("sku option cleared")
		}
		return nil
	})
}

// GetSKU returns a SKU by id.
func (s *SKUService) GetSKU(ctx context.Context, id string) (*models.SKU, error) {
	sku, err := s.skus.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "sku", id)
	}
	return sku, nil
}

// SKUsOf returns the SKUs of a listing in creation order.
func (s *SKUService) SKUsOf(ctx context.Context, listingID string) ([]models.SKU, error) {
	if _, err := s.listings.GetByID(ctx, listingID); err != nil {
		return nil, notFound(err, "listing", listingID)
	}
	skus, err := s.skus.GetByListingID(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if skus == nil {
		skus = []models.SKU{}
	}
	return skus, nil
}

// UpdateStock sets the stock of a SKU.
func (s *SKUService) UpdateStock(ctx context.Context, id string, stock int) error {
	if stock < 0 {
		return invalid("stock must not be negative")
	}
	ok, err := s.skus.UpdateStock(ctx, id, stock)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: sku %s", utils.ErrNotFound, id)
	}
	return nil
}

// SetVisibility publishes or hides a SKU.
func (s *SKUService) SetVisibility(ctx context.Context, id string, public bool) error {
	ok, err := s.skus.UpdateVisibility(ctx, id, public)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: sku %s", utils.ErrNotFound, id)
	}
	return nil
}

// DeleteSKU removes a SKU whose options have all been cleared.
func (s *SKUService) DeleteSKU(ctx context.Context, id string) error {
	return database.WithTx(ctx, s.db, nil, func(tx *sqlx.Tx) error {
		skus := s.skus.WithTx(tx)
		if _, err := skus.GetByIDForUpdate(ctx, id); err != nil {
			return notFound(err, "sku", id)
		}
		n, err := skus.CountOptions(ctx, id)
		if err != nil {
			return err
		}
		if n > 0 {
			return fmt.Errorf("%w: sku %s still holds %d options", utils.ErrInUse, id, n)
		}
		if err := skus.Delete(ctx, id); err != nil {
			return err
		}
		log.Info().Str("sku_id", id).Msg("sku deleted")
		return nil
	})
}

// ListConditions returns the item conditions a SKU may reference.
func (s *SKUService) ListConditions(ctx context.Context) ([]models.Condition, error) {
	conds, err := s.conditions.List(ctx)
	if err != nil {
		return nil, err
	}
	if conds == nil {
		conds = []models.Condition{}
	}
	return conds, nil
}

// ListingOfSKU returns the listing id owning skuID.
func (s *SKUService) ListingOfSKU(ctx context.Context, skuID string) (string, error) {
	sku, err := s.GetSKU(ctx, skuID)
	if err != nil {
		return "", err
	}
	return sku.ListingID, nil
}
