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

// ListingService handles listing lifecycle and listing attribute values.
type ListingService struct {
	db         *sqlx.DB
	listings   *repository.ListingRepository
	categories *repository.CategoryRepository
	users      UserResolver
	events     ListingEventLog
}

// NewListingService constructs a ListingService.
func NewListingService(db *sqlx.DB, listings *repository.ListingRepository, categories *repository.CategoryRepository, users UserResolver, events ListingEventLog) *ListingService {
	return &ListingService{
		db:         db,
		listings:   listings,
		categories: categories,
		users:      users,
		events:     events,
	}
}

// CreateListingRequest represents the request to create a listing.
type CreateListingRequest struct {
	Title         string `json:"title" binding:"required"`
	Description   string `json:"description"`
	SubCategoryID string `json:"subCategoryId" binding:"required"`
}

// CreateListing creates a draft listing owned by ownerID.
func (s *ListingService) CreateListing(ctx context.Context, ownerID string, req *CreateListingRequest) (*models.Listing, error) {
	title, err := requireTitle(req.Title, 3, "listing")
	if err != nil {
		return nil, err
	}
	known, err := s.users.ResolveUser(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if !known {
		return nil, fmt.Errorf("%w: user %s", utils.ErrNotFound, ownerID)
	}
	if _, err := s.categories.GetSubCategory(ctx, req.SubCategoryID); err != nil {
		return nil, notFound(err, "sub-category", req.SubCategoryID)
	}

	listing := &models.Listing{
		ID:            utils.NewID(),
		Title:         title,
		Description:   strings.TrimSpace(req.Description),
		OwnerID:       ownerID,
		AddedAt:       utils.NowMillis(),
		SubCategoryID: req.SubCategoryID,
	}
	if err := s.listings.Create(ctx, listing); err != nil {
		return nil, err
	}
	log.Info().Str("listing_id", listing.ID).Str("owner_id", ownerID).Msg("listing created")
	return listing, nil
}

// GetListing returns a listing by id.
func (s *ListingService) GetListing(ctx context.Context, id string) (*models.Listing, error) {
	l, err := s.listings.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "listing", id)
	}
	return l, nil
}

// Authorize checks that userID owns listingID.
func (s *ListingService) Authorize(ctx context.Context, listingID, userID string) error {
	l, err := s.GetListing(ctx, listingID)
	if err != nil {
		return err
	}
	if l.OwnerID != userID {
		return fmt.Errorf("%w: listing %s is owned by another user", utils.ErrForbidden, listingID)
	}
	return nil
}

// SetVisibility publishes or hides a listing.
func (s *ListingService) SetVisibility(ctx context.Context, id string, public bool) error {
	ok, err := s.listings.UpdateVisibility(ctx, id, public)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: listing %s", utils.ErrNotFound, id)
	}
	return nil
}

// RecordView increments the view counter and appends a view event. The event
// log is best effort: its failures are logged, never returned.
func (s *ListingService) RecordView(ctx context.Context, listingID, viewerID string) error {
	ok, err := s.listings.IncrementViews(ctx, listingID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: listing %s", utils.ErrNotFound, listingID)
	}
	if s.events != nil {
		if err := s.events.Append(ctx, EventListingViewed, viewerID, listingID); err != nil {
			log.Warn().Err(err).Str("listing_id", listingID).Msg("listing event dropped")
		}
	}
	return nil
}

// DeleteListing removes a listing that no longer owns skus, variant types or
// attribute values. Dependents must be removed explicitly first.
func (s *ListingService) DeleteListing(ctx context.Context, id string) error {
	return database.WithTx(ctx, s.db, nil, func(tx *sqlx.Tx) error {
		listings := s.listings.WithTx(tx)
		if _, err := listings.GetByIDForUpdate(ctx, id); err != nil {
			return notFound(err, "listing", id)
		}
		deps, err := listings.CountDependents(ctx, id)
		if err != nil {
			return err
		}
		if deps.Any() {
			return fmt.Errorf("%w: listing %s still has %d skus, %d variant types and %d attribute values",
				utils.ErrInUse, id, deps.SKUs, deps.VariantTypes, deps.AttributeValues)
		}
		if err := listings.Delete(ctx, id); err != nil {
			return err
		}
		log.Info().Str("listing_id", id).Msg("listing deleted")
		return nil
	})
}

// SetAttributeValue stores value for the listing's attribute, replacing any
// previous value. The value is coerced to the attribute's datatype and the
// attribute must belong to the listing's category.
func (s *ListingService) SetAttributeValue(ctx context.Context, listingID, attributeID, value string) (*models.ListingAttributeValue, error) {
	categoryID, err := s.listings.CategoryOf(ctx, listingID)
	if err != nil {
		return nil, notFound(err, "listing", listingID)
	}
	row, err := s.categories.GetAttribute(ctx, attributeID)
	if err != nil {
		return nil, notFound(err, "attribute", attributeID)
	}
	attr, err := row.ToAttribute()
	if err != nil {
		return nil, err
	}
	if attr.CategoryID != categoryID {
		return nil, invalid("attribute %s is not declared for the listing's category", attributeID)
	}

	canonical, err := attr.Datatype.Coerce(value)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", utils.ErrTypeMismatch, err)
	}

	v := &models.ListingAttributeValue{
		ID:          utils.NewID(),
		Value:       canonical,
		AttributeID: attributeID,
		ListingID:   listingID,
		UpdatedAt:   utils.NowMillis(),
	}
	if err := s.listings.UpsertAttributeValue(ctx, v); err != nil {
		return nil, err
	}
	return v, nil
}

// AttributeValuesOf returns the attribute values of a listing.
func (s *ListingService) AttributeValuesOf(ctx context.Context, listingID string) ([]models.ListingAttributeValue, error) {
	if _, err := s.GetListing(ctx, listingID); err != nil {
		return nil, err
	}
	values, err := s.listings.ListAttributeValues(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if values == nil {
		values = []models.ListingAttributeValue{}
	}
	return values, nil
}
