package handler

import (
	"github.com/gin-gonic/gin"
)

// Handlers groups all HTTP handlers used by the server.
type Handlers struct {
	Health   *HealthHandler
	Taxonomy *TaxonomyHandler
	Listing  *ListingHandler
	Variant  *VariantHandler
	SKU      *SKUHandler
}

// SetupRoutes registers all routes. seller guards the mutating routes and
// must leave the caller's id in the user_id context key.
func SetupRoutes(router *gin.Engine, handlers *Handlers, seller ...gin.HandlerFunc) {
	router.GET("/v1/health", handlers.Health.GetHealth)

	// Public catalog reads
	v1 := router.Group("/v1")
	{
		v1.GET("/categories", handlers.Taxonomy.ListCategories)
		v1.GET("/categories/:id", handlers.Taxonomy.GetCategory)
		v1.GET("/categories/:id/attributes", handlers.Taxonomy.ListAttributes)
		v1.GET("/conditions", handlers.SKU.ListConditions)

		v1.GET("/listings/:id", handlers.Listing.GetListing)
		v1.GET("/listings/:id/variants", handlers.Variant.ListVariantTypes)
		v1.GET("/listings/:id/skus", handlers.SKU.ListSKUs)
		v1.GET("/skus/:id/options", handlers.SKU.GetSKUOptions)
	}

	// Seller routes (protected with JWT)
	s := router.Group("/v1")
	s.Use(seller...)
	{
		s.POST("/categories", handlers.Taxonomy.CreateCategory)
		s.POST("/categories/:id/subcategories", handlers.Taxonomy.CreateSubCategory)
		s.POST("/categories/:id/attributes", handlers.Taxonomy.DeclareAttribute)

		s.POST("/listings", handlers.Listing.CreateListing)
		s.PATCH("/listings/:id/visibility", handlers.Listing.SetVisibility)
		s.DELETE("/listings/:id", handlers.Listing.DeleteListing)
		s.PUT("/listings/:id/attributes/:attributeId", handlers.Listing.SetAttributeValue)

		s.POST("/listings/:id/variants", handlers.Variant.DefineVariantType)
		s.DELETE("/variant-types/:id", handlers.Variant.DeleteVariantType)
		s.POST("/variant-types/:id/values", handlers.Variant.AddVariantValue)
		s.DELETE("/variant-values/:id", handlers.Variant.DeleteVariantValue)

		s.POST("/listings/:id/skus", handlers.SKU.CreateSKU)
		s.PUT("/skus/:id/options", handlers.SKU.SetOption)
		s.DELETE("/skus/:id/options/:variantTypeId", handlers.SKU.ClearOption)
		s.PATCH("/skus/:id/stock", handlers.SKU.UpdateStock)
		s.PATCH("/skus/:id/visibility", handlers.SKU.SetVisibility)
		s.DELETE("/skus/:id", handlers.SKU.DeleteSKU)
	}
}
