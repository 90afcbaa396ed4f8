package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/GTDGit/catalog_api/internal/service"
	"github.com/GTDGit/catalog_api/internal/utils"
)

const anonymousViewer = "anonymous"

// ListingHandler handles listing and listing attribute requests.
type ListingHandler struct {
	listings *service.ListingService
}

// NewListingHandler creates a new ListingHandler.
func NewListingHandler(listings *service.ListingService) *ListingHandler {
	return &ListingHandler{listings: listings}
}

type visibilityRequest struct {
	IsPublic *bool `json:"isPublic" binding:"required"`
}

type attributeValueRequest struct {
	Value string `json:"value"`
}

// GetListing returns a listing with its attribute values and counts the view.
// GET /v1/listings/:id
func (h *ListingHandler) GetListing(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")

	viewer := c.GetString("user_id")
	if viewer == "" {
		viewer = anonymousViewer
	}
	if err := h.listings.RecordView(ctx, id, viewer); err != nil {
		respondError(c, err)
		return
	}
	listing, err := h.listings.GetListing(ctx, id)
	if err != nil {
		respondError(c, err)
		return
	}
	attrs, err := h.listings.AttributeValuesOf(ctx, id)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, http.StatusOK, "Listing retrieved successfully", gin.H{
		"listing":    listing,
		"attributes": attrs,
	})
}

// CreateListing creates a draft listing owned by the caller.
// POST /v1/listings
func (h *ListingHandler) CreateListing(c *gin.Context) {
	var req service.CreateListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	listing, err := h.listings.CreateListing(c.Request.Context(), c.GetString("user_id"), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, http.StatusCreated, "Listing created", listing)
}

// SetVisibility publishes or hides a listing.
// PATCH /v1/listings/:id/visibility
func (h *ListingHandler) SetVisibility(c *gin.Context) {
	var req visibilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	if !authorize(c, h.listings, listingParam(c)) {
		return
	}
	if err := h.listings.SetVisibility(c.Request.Context(), c.Param("id"), *req.IsPublic); err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, http.StatusOK, "Listing visibility updated", gin.H{"id": c.Param("id"), "isPublic": *req.IsPublic})
}

// DeleteListing removes a listing without dependents.
// DELETE /v1/listings/:id
func (h *ListingHandler) DeleteListing(c *gin.Context) {
	if !authorize(c, h.listings, listingParam(c)) {
		return
	}
	if err := h.listings.DeleteListing(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, http.StatusOK, "Listing deleted", nil)
}

// SetAttributeValue stores the value of a category attribute on a listing.
// PUT /v1/listings/:id/attributes/:attributeId
func (h *ListingHandler) SetAttributeValue(c *gin.Context) {
	var req attributeValueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	if !authorize(c, h.listings, listingParam(c)) {
		return
	}
	value, err := h.listings.SetAttributeValue(c.Request.Context(), c.Param("id"), c.Param("attributeId"), req.Value)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, http.StatusOK, "Attribute value stored", value)
}
