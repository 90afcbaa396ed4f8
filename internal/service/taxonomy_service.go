package service

import (
	"context"
	"fmt"
	"iter"
	"regexp"
	"strings"

	"github.com/gosimple/slug"
	"github.com/rs/zerolog/log"

	"github.com/GTDGit/catalog_api/internal/models"
	"github.com/GTDGit/catalog_api/internal/repository"
	"github.com/GTDGit/catalog_api/internal/utils"
)

var colourPattern = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// TaxonomyService manages categories, sub-categories and attribute declarations.
type TaxonomyService struct {
	categories *repository.CategoryRepository
}

// NewTaxonomyService constructs a TaxonomyService.
func NewTaxonomyService(categories *repository.CategoryRepository) *TaxonomyService {
	return &TaxonomyService{categories: categories}
}

// CreateCategoryRequest represents the request to create a category.
type CreateCategoryRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	Colour      string `json:"colour"`
}

// CreateCategory creates a category. Titles must be unique once slugified.
func (s *TaxonomyService) CreateCategory(ctx context.Context, req *CreateCategoryRequest) (*models.Category, error) {
	title, err := requireTitle(req.Title, 3, "category")
	if err != nil {
		return nil, err
	}
	colour := strings.TrimSpace(req.Colour)
	if colour != "" && !colourPattern.MatchString(colour) {
		return nil, invalid("colour %q must look like #rrggbb", req.Colour)
	}
	categorySlug := slug.Make(title)
	if categorySlug == "" {
		return nil, invalid("category title %q has no usable characters", title)
	}

	taken, err := s.categories.SlugExists(ctx, categorySlug)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, fmt.Errorf("%w: category %q", utils.ErrDuplicateDefinition, title)
	}

	c := &models.Category{
		ID:            utils.NewID(),
		Title:         title,
		Slug:          categorySlug,
		Description:   strings.TrimSpace(req.Description),
		Colour:        strings.ToLower(colour),
		CreatedAt:     utils.NowMillis(),
		SubCategories: []models.SubCategory{},
	}
	if err := s.categories.Create(ctx, c); err != nil {
		return nil, duplicate(err, fmt.Sprintf("category %q", title))
	}
	log.Info().Str("category_id", c.ID).Str("slug", c.Slug).Msg("category created")
	return c, nil
}

// CreateSubCategory creates a sub-category under categoryID.
func (s *TaxonomyService) CreateSubCategory(ctx context.Context, categoryID, title string) (*models.SubCategory, error) {
	title, err := requireTitle(title, 3, "sub-category")
	if err != nil {
		return nil, err
	}
	if _, err := s.categories.GetByID(ctx, categoryID); err != nil {
		return nil, notFound(err, "category", categoryID)
	}
	taken, err := s.categories.SubCategoryTitleExists(ctx, categoryID, title)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, fmt.Errorf("%w: sub-category %q", utils.ErrDuplicateDefinition, title)
	}

	sub := &models.SubCategory{
		ID:         utils.NewID(),
		Title:      title,
		CategoryID: categoryID,
		CreatedAt:  utils.NowMillis(),
	}
	if err := s.categories.CreateSubCategory(ctx, sub); err != nil {
		return nil, duplicate(err, fmt.Sprintf("sub-category %q", title))
	}
	return sub, nil
}

// DeclareAttribute declares a custom attribute for listings of categoryID.
func (s *TaxonomyService) DeclareAttribute(ctx context.Context, categoryID, title string, datatype models.Datatype) (*models.CategoryAttribute, error) {
	title, err := requireTitle(title, 1, "attribute")
	if err != nil {
		return nil, err
	}
	if datatype == nil {
		return nil, invalid("attribute datatype is required")
	}
	if _, err := s.categories.GetByID(ctx, categoryID); err != nil {
		return nil, notFound(err, "category", categoryID)
	}
	taken, err := s.categories.AttributeTitleExists(ctx, categoryID, title)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, fmt.Errorf("%w: attribute %q", utils.ErrDuplicateDefinition, title)
	}

	attr := models.CategoryAttribute{
		ID:         utils.NewID(),
		Title:      title,
		CategoryID: categoryID,
		Datatype:   datatype,
		CreatedAt:  utils.NowMillis(),
	}
	row, err := models.AttributeRowFrom(attr)
	if err != nil {
		return nil, err
	}
	if err := s.categories.CreateAttribute(ctx, &row); err != nil {
		return nil, duplicate(err, fmt.Sprintf("attribute %q", title))
	}
	log.Info().Str("category_id", categoryID).Str("attribute_id", attr.ID).Str("datatype", string(datatype.Tag())).Msg("attribute declared")
	return &attr, nil
}

// AttributesOf yields the attributes declared for categoryID in insertion
// order. Rows are read lazily; ranging again re-runs the query. A missing
// category yields a single ErrNotFound.
//
// The cursor holds a pooled connection until the range ends. On SQLite the
// pool has one connection, so the loop body must not query the store; use
// ListAttributes when it needs to.
func (s *TaxonomyService) AttributesOf(ctx context.Context, categoryID string) iter.Seq2[models.CategoryAttribute, error] {
	return func(yield func(models.CategoryAttribute, error) bool) {
		if _, err := s.categories.GetByID(ctx, categoryID); err != nil {
			yield(models.CategoryAttribute{}, notFound(err, "category", categoryID))
			return
		}
		rows, err := s.categories.QueryAttributes(ctx, categoryID)
		if err != nil {
			yield(models.CategoryAttribute{}, err)
			return
		}
		defer rows.Close()

		for rows.Next() {
			var row models.CategoryAttributeRow
			if err := rows.StructScan(&row); err != nil {
				yield(models.CategoryAttribute{}, err)
				return
			}
			attr, err := row.ToAttribute()
			if !yield(attr, err) || err != nil {
				return
			}
		}
		if err := rows.Err(); err != nil {
			yield(models.CategoryAttribute{}, err)
		}
	}
}

// ListAttributes collects AttributesOf into a slice.
func (s *TaxonomyService) ListAttributes(ctx context.Context, categoryID string) ([]models.CategoryAttribute, error) {
	attrs := []models.CategoryAttribute{}
	for attr, err := range s.AttributesOf(ctx, categoryID) {
		if err != nil {
			return nil, err
		}
		attrs = append(attrs, attr)
	}
	return attrs, nil
}

// GetAttribute returns a single attribute declaration.
func (s *TaxonomyService) GetAttribute(ctx context.Context, id string) (*models.CategoryAttribute, error) {
	row, err := s.categories.GetAttribute(ctx, id)
	if err != nil {
		return nil, notFound(err, "attribute", id)
	}
	attr, err := row.ToAttribute()
	if err != nil {
		return nil, err
	}
	return &attr, nil
}

// ListCategories returns every category with its sub-categories, ordered by title.
func (s *TaxonomyService) ListCategories(ctx context.Context) ([]models.Category, error) {
	cats, err := s.categories.List(ctx)
	if err != nil {
		return nil, err
	}
	subs, err := s.categories.ListSubCategories(ctx)
	if err != nil {
		return nil, err
	}
	byCategory := make(map[string][]models.SubCategory, len(cats))
	for _, sub := range subs {
		byCategory[sub.CategoryID] = append(byCategory[sub.CategoryID], sub)
	}
	for i := range cats {
		cats[i].SubCategories = byCategory[cats[i].ID]
		if cats[i].SubCategories == nil {
			cats[i].SubCategories = []models.SubCategory{}
		}
	}
	if cats == nil {
		cats = []models.Category{}
	}
	return cats, nil
}

// GetCategory returns one category with its sub-categories.
func (s *TaxonomyService) GetCategory(ctx context.Context, id string) (*models.Category, error) {
	c, err := s.categories.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "category", id)
	}
	subs, err := s.categories.ListSubCategoriesOf(ctx, id)
	if err != nil {
		return nil, err
	}
	if subs == nil {
		subs = []models.SubCategory{}
	}
	c.SubCategories = subs
	return c, nil
}
