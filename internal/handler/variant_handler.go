package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/GTDGit/catalog_api/internal/service"
	"github.com/GTDGit/catalog_api/internal/utils"
)

// VariantHandler handles variant type and variant value requests.
type VariantHandler struct {
	variants *service.VariantService
	auth     ListingAuthorizer
}

// NewVariantHandler creates a new VariantHandler.
func NewVariantHandler(variants *service.VariantService, auth ListingAuthorizer) *VariantHandler {
	return &VariantHandler{variants: variants, auth: auth}
}

type defineVariantTypeRequest struct {
	Title string `json:"title" binding:"required"`
}

// ListVariantTypes returns the variant types of a listing with their values.
// GET /v1/listings/:id/variants
func (h *VariantHandler) ListVariantTypes(c *gin.Context) {
	types, err := h.variants.VariantTypesOf(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, http.StatusOK, "Variant types retrieved successfully", types)
}

// DefineVariantType adds a variant dimension to a listing.
// POST /v1/listings/:id/variants
func (h *VariantHandler) DefineVariantType(c *gin.Context) {
	var req defineVariantTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	if !authorize(c, h.auth, listingParam(c)) {
		return
	}
	t, err := h.variants.DefineVariantType(c.Request.Context(), c.Param("id"), req.Title)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, http.StatusCreated, "Variant type defined", t)
}

// DeleteVariantType removes a variant type no SKU uses.
// DELETE /v1/variant-types/:id
func (h *VariantHandler) DeleteVariantType(c *gin.Context) {
	id := c.Param("id")
	if !authorize(c, h.auth, h.typeOwner(id)) {
		return
	}
	if err := h.variants.DeleteVariantType(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, http.StatusOK, "Variant type deleted", nil)
}

// AddVariantValue adds a value to a variant type.
// POST /v1/variant-types/:id/values
func (h *VariantHandler) AddVariantValue(c *gin.Context) {
	var req service.AddVariantValueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	id := c.Param("id")
	if !authorize(c, h.auth, h.typeOwner(id)) {
		return
	}
	v, err := h.variants.AddVariantValue(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, http.StatusCreated, "Variant value added", v)
}

// DeleteVariantValue removes a variant value no SKU holds.
// DELETE /v1/variant-values/:id
func (h *VariantHandler) DeleteVariantValue(c *gin.Context) {
	id := c.Param("id")
	owner := func(ctx context.Context) (string, error) { return h.variants.ListingOfValue(ctx, id) }
	if !authorize(c, h.auth, owner) {
		return
	}
	if err := h.variants.DeleteVariantValue(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, http.StatusOK, "Variant value deleted", nil)
}

func (h *VariantHandler) typeOwner(variantTypeID string) func(context.Context) (string, error) {
	return func(ctx context.Context) (string, error) { return h.variants.ListingOfType(ctx, variantTypeID) }
}
