package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/GTDGit/catalog_api/internal/service"
	"github.com/GTDGit/catalog_api/internal/utils"
)

// SKUHandler handles SKU, SKU option and projection requests.
type SKUHandler struct {
	skus      *service.SKUService
	projector *service.ProjectorService
	auth      ListingAuthorizer
}

// NewSKUHandler creates a new SKUHandler.
func NewSKUHandler(skus *service.SKUService, projector *service.ProjectorService, auth ListingAuthorizer) *SKUHandler {
	return &SKUHandler{skus: skus, projector: projector, auth: auth}
}

type setOptionRequest struct {
	VariantValueID string `json:"variantValueId" binding:"required"`
}

type stockRequest struct {
	Stock *int `json:"stock" binding:"required"`
}

// ListConditions returns the item conditions.
// GET /v1/conditions
func (h *SKUHandler) ListConditions(c *gin.Context) {
	conds, err := h.skus.ListConditions(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, http.StatusOK, "Conditions retrieved successfully", conds)
}

// ListSKUs returns every SKU of a listing with its projected options, in
// creation order.
// GET /v1/listings/:id/skus
func (h *SKUHandler) ListSKUs(c *gin.Context) {
	projections, err := h.projector.ProjectAll(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, http.StatusOK, "SKUs retrieved successfully", projections)
}

// GetSKUOptions returns a SKU with its projected options.
// GET /v1/skus/:id/options
func (h *SKUHandler) GetSKUOptions(c *gin.Context) {
	view, err := h.projector.SKUOptionsView(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, http.StatusOK, "SKU options retrieved successfully", view)
}

// CreateSKU creates a SKU under a listing.
// POST /v1/listings/:id/skus
func (h *SKUHandler) CreateSKU(c *gin.Context) {
	var req service.CreateSKURequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	if !authorize(c, h.auth, listingParam(c)) {
		return
	}
	sku, err := h.skus.CreateSKU(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, http.StatusCreated, "SKU created", sku)
}

// SetOption assigns a variant value to a SKU.
// PUT /v1/skus/:id/options
func (h *SKUHandler) SetOption(c *gin.Context) {
	var req setOptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	id := c.Param("id")
	if !authorize(c, h.auth, h.skuOwner(id)) {
		return
	}
	if err := h.skus.SetSKUOption(c.Request.Context(), id, req.VariantValueID); err != nil {
		respondError(c, err)
		return
	}
	h.respondView(c, id, "SKU option set")
}

// ClearOption removes the value a SKU holds for a variant type.
// DELETE /v1/skus/:id/options/:variantTypeId
func (h *SKUHandler) ClearOption(c *gin.Context) {
	id := c.Param("id")
	if !authorize(c, h.auth, h.skuOwner(id)) {
		return
	}
	if err := h.skus.ClearSKUOption(c.Request.Context(), id, c.Param("variantTypeId")); err != nil {
		respondError(c, err)
		return
	}
	h.respondView(c, id, "SKU option cleared")
}

// UpdateStock sets the stock of a SKU.
// PATCH /v1/skus/:id/stock
func (h *SKUHandler) UpdateStock(c *gin.Context) {
	var req stockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	id := c.Param("id")
	if !authorize(c, h.auth, h.skuOwner(id)) {
		return
	}
	if err := h.skus.UpdateStock(c.Request.Context(), id, *req.Stock); err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, http.StatusOK, "SKU stock updated", gin.H{"id": id, "stock": *req.Stock})
}

// SetVisibility publishes or hides a SKU.
// PATCH /v1/skus/:id/visibility
func (h *SKUHandler) SetVisibility(c *gin.Context) {
	var req visibilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	id := c.Param("id")
	if !authorize(c, h.auth, h.skuOwner(id)) {
		return
	}
	if err := h.skus.SetVisibility(c.Request.Context(), id, *req.IsPublic); err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, http.StatusOK, "SKU visibility updated", gin.H{"id": id, "isPublic": *req.IsPublic})
}

// DeleteSKU removes a SKU with no options.
// DELETE /v1/skus/:id
func (h *SKUHandler) DeleteSKU(c *gin.Context) {
	id := c.Param("id")
	if !authorize(c, h.auth, h.skuOwner(id)) {
		return
	}
	if err := h.skus.DeleteSKU(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, http.StatusOK, "SKU deleted", nil)
}

func (h *SKUHandler) respondView(c *gin.Context, skuID, message string) {
	view, err := h.projector.SKUOptionsView(c.Request.Context(), skuID)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, http.StatusOK, message, view)
}

func (h *SKUHandler) skuOwner(skuID string) func(context.Context) (string, error) {
	return func(ctx context.Context) (string, error) { return h.skus.ListingOfSKU(ctx, skuID) }
}
