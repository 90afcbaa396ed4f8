package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"

	"github.com/GTDGit/catalog_api/internal/database"
	"github.com/GTDGit/catalog_api/internal/models"
	"github.com/GTDGit/catalog_api/internal/repository"
	"github.com/GTDGit/catalog_api/internal/utils"
)

// VariantService manages the variant dimensions of listings and their values.
type VariantService struct {
	db       *sqlx.DB
	listings *repository.ListingRepository
	variants *repository.VariantRepository
}

// NewVariantService constructs a VariantService.
func NewVariantService(db *sqlx.DB, listings *repository.ListingRepository, variants *repository.VariantRepository) *VariantService {
	return &VariantService{db: db, listings: listings, variants: variants}
}

// AddVariantValueRequest represents the request to add a value to a variant type.
type AddVariantValueRequest struct {
	Title  string  `json:"title" binding:"required"`
	Colour *string `json:"colour"`
}

// DefineVariantType adds a variant dimension titled title to listingID.
func (s *VariantService) DefineVariantType(ctx context.Context, listingID, title string) (*models.VariantType, error) {
	title, err := requireTitle(title, 1, "variant type")
	if err != nil {
		return nil, err
	}
	if _, err := s.listings.GetByID(ctx, listingID); err != nil {
		return nil, notFound(err, "listing", listingID)
	}
	taken, err := s.variants.TypeTitleExists(ctx, listingID, title)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, fmt.Errorf("%w: variant type %q on listing %s", utils.ErrDuplicateDefinition, title, listingID)
	}

	t := &models.VariantType{
		ID:        utils.NewID(),
		Title:     title,
		ListingID: listingID,
		CreatedAt: utils.NowMillis(),
		Values:    []models.VariantValue{},
	}
	if err := s.variants.CreateType(ctx, t); err != nil {
		return nil, duplicate(err, fmt.Sprintf("variant type %q", title))
	}
	log.Info().Str("listing_id", listingID).Str("variant_type_id", t.ID).Str("title", title).Msg("variant type defined")
	return t, nil
}

// AddVariantValue adds an allowed value to variantTypeID.
func (s *VariantService) AddVariantValue(ctx context.Context, variantTypeID string, req *AddVariantValueRequest) (*models.VariantValue, error) {
	title, err := requireTitle(req.Title, 1, "variant value")
	if err != nil {
		return nil, err
	}
	var colour *string
	if req.Colour != nil {
		c := strings.ToLower(strings.TrimSpace(*req.Colour))
		if !colourPattern.MatchString(c) {
			return nil, invalid("colour %q must look like #rrggbb", *req.Colour)
		}
		colour = &c
	}
	if _, err := s.variants.GetType(ctx, variantTypeID); err != nil {
		return nil, notFound(err, "variant type", variantTypeID)
	}
	taken, err := s.variants.ValueTitleExists(ctx, variantTypeID, title)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, fmt.Errorf("%w: variant value %q on type %s", utils.ErrDuplicateDefinition, title, variantTypeID)
	}

	v := &models.VariantValue{
		ID:            utils.NewID(),
		Title:         title,
		VariantTypeID: variantTypeID,
		Colour:        colour,
		CreatedAt:     utils.NowMillis(),
	}
	if err := s.variants.CreateValue(ctx, v); err != nil {
		return nil, duplicate(err, fmt.Sprintf("variant value %q", title))
	}
	log.Debug().Str("variant_type_id", variantTypeID).Str("variant_value_id", v.ID).Msg("variant value added")
	return v, nil
}

// DeleteVariantType removes a variant type and its values. It fails with
// ErrInUse while any SKU still holds one of its values.
func (s *VariantService) DeleteVariantType(ctx context.Context, variantTypeID string) error {
	return database.WithTx(ctx, s.db, nil, func(tx *sqlx.Tx) error {
		variants := s.variants.WithTx(tx)
		// The exclusive lock keeps SetSKUOption (which share-locks the type)
		// from assigning one of its values between the check and the delete.
		t, err := variants.GetTypeLocked(ctx, variantTypeID, true)
		if err != nil {
			return notFound(err, "variant type", variantTypeID)
		}
		n, err := variants.CountOptionsOfType(ctx, variantTypeID)
		if err != nil {
			return err
		}
		if n > 0 {
			return fmt.Errorf("%w: variant type %q is assigned to %d skus", utils.ErrInUse, t.Title, n)
		}
		if err := variants.DeleteType(ctx, variantTypeID); err != nil {
			return err
		}
		log.Info().Str("listing_id", t.ListingID).Str("variant_type_id", variantTypeID).Msg("variant type deleted")
		return nil
	})
}

// DeleteVariantValue removes a variant value. It fails with ErrInUse while
// any SKU holds it.
func (s *VariantService) DeleteVariantValue(ctx context.Context, variantValueID string) error {
	return database.WithTx(ctx, s.db, nil, func(tx *sqlx.Tx) error {
		variants := s.variants.WithTx(tx)
		v, err := variants.GetValueLocked(ctx, variantValueID, true)
		if err != nil {
			return notFound(err, "variant value", variantValueID)
		}
		n, err := variants.CountOptionsOfValue(ctx, variantValueID)
		if err != nil {
			return err
		}
		if n > 0 {
			return fmt.Errorf("%w: variant value %q is assigned to %d skus", utils.ErrInUse, v.Title, n)
		}
		return variants.DeleteValue(ctx, variantValueID)
	})
}

// VariantTypesOf returns the variant types of a listing ordered by title,
// each with its values in creation order.
func (s *VariantService) VariantTypesOf(ctx context.Context, listingID string) ([]models.VariantType, error) {
	if _, err := s.listings.GetByID(ctx, listingID); err != nil {
		return nil, notFound(err, "listing", listingID)
	}
	types, err := s.variants.ListTypes(ctx, listingID)
	if err != nil {
		return nil, err
	}
	values, err := s.variants.ListValuesOfListing(ctx, listingID)
	if err != nil {
		return nil, err
	}
	byType := make(map[string][]models.VariantValue, len(types))
	for _, v := range values {
		byType[v.VariantTypeID] = append(byType[v.VariantTypeID], v)
	}
	for i := range types {
		types[i].Values = byType[types[i].ID]
		if types[i].Values == nil {
			types[i].Values = []models.VariantValue{}
		}
	}
	if types == nil {
		types = []models.VariantType{}
	}
	return types, nil
}

// ListingOfType returns the listing id owning variantTypeID.
func (s *VariantService) ListingOfType(ctx context.Context, variantTypeID string) (string, error) {
	t, err := s.variants.GetType(ctx, variantTypeID)
	if err != nil {
		return "", notFound(err, "variant type", variantTypeID)
	}
	return t.ListingID, nil
}

// ListingOfValue returns the listing id owning variantValueID.
func (s *VariantService) ListingOfValue(ctx context.Context, variantValueID string) (string, error) {
	v, err := s.variants.GetValue(ctx, variantValueID)
	if err != nil {
		return "", notFound(err, "variant value", variantValueID)
	}
	return s.ListingOfType(ctx, v.VariantTypeID)
}
