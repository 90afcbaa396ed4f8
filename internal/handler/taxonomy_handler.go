package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/GTDGit/catalog_api/internal/models"
	"github.com/GTDGit/catalog_api/internal/service"
	"github.com/GTDGit/catalog_api/internal/utils"
)

// TaxonomyHandler handles category, sub-category and attribute requests.
type TaxonomyHandler struct {
	taxonomy *service.TaxonomyService
}

// NewTaxonomyHandler creates a new TaxonomyHandler.
func NewTaxonomyHandler(taxonomy *service.TaxonomyService) *TaxonomyHandler {
	return &TaxonomyHandler{taxonomy: taxonomy}
}

type createSubCategoryRequest struct {
	Title string `json:"title" binding:"required"`
}

type declareAttributeRequest struct {
	Title    string   `json:"title" binding:"required"`
	Datatype string   `json:"datatype" binding:"required"`
	Values   []string `json:"values"`
}

// ListCategories returns all categories with their sub-categories.
// GET /v1/categories
func (h *TaxonomyHandler) ListCategories(c *gin.Context) {
	categories, err := h.taxonomy.ListCategories(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, http.StatusOK, "Categories retrieved successfully", categories)
}

// GetCategory returns one category.
// GET /v1/categories/:id
func (h *TaxonomyHandler) GetCategory(c *gin.Context) {
	category, err := h.taxonomy.GetCategory(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, http.StatusOK, "Category retrieved successfully", category)
}

// ListAttributes returns the attributes declared for a category.
// GET /v1/categories/:id/attributes
func (h *TaxonomyHandler) ListAttributes(c *gin.Context) {
	attrs, err := h.taxonomy.ListAttributes(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, http.StatusOK, "Attributes retrieved successfully", attrs)
}

// CreateCategory creates a category.
// POST /v1/categories
func (h *TaxonomyHandler) CreateCategory(c *gin.Context) {
	var req service.CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	category, err := h.taxonomy.CreateCategory(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, http.StatusCreated, "Category created", category)
}

// CreateSubCategory adds a sub-category to a category.
// POST /v1/categories/:id/subcategories
func (h *TaxonomyHandler) CreateSubCategory(c *gin.Context) {
	var req createSubCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	sub, err := h.taxonomy.CreateSubCategory(c.Request.Context(), c.Param("id"), req.Title)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, http.StatusCreated, "Sub-category created", sub)
}

// DeclareAttribute declares a custom attribute on a category.
// POST /v1/categories/:id/attributes
func (h *TaxonomyHandler) DeclareAttribute(c *gin.Context) {
	var req declareAttributeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	datatype, err := models.ParseDatatype(models.DatatypeTag(req.Datatype), req.Values)
	if err != nil {
		utils.Error(c, http.StatusBadRequest, utils.ErrInvalidArgument.Error(), err.Error())
		return
	}
	attr, err := h.taxonomy.DeclareAttribute(c.Request.Context(), c.Param("id"), req.Title, datatype)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, http.StatusCreated, "Attribute declared", attr)
}
