package models

import "github.com/shopspring/decimal"

// SKU is a single sellable unit within a listing.
type SKU struct {
	ID          string          `db:"id" json:"id"`
	Title       string          `db:"title" json:"title"`
	Price       decimal.Decimal `db:"price" json:"price"`
	Discount    decimal.Decimal `db:"discount" json:"discount"` // percent, 0-100
	ConditionID string          `db:"condition_id" json:"conditionId"`
	ListingID   string          `db:"listing_id" json:"listingId"`
	Stock       int             `db:"stock" json:"stock"`
	IsPublic    bool            `db:"is_public" json:"isPublic"`
	CreatedAt   int64           `db:"created_at" json:"createdAt"`
}

// SKUOption assigns one variant value to a SKU. VariantTypeID is the owning
// type of VariantValueID, stored alongside so (SKUID, VariantTypeID) can be
// kept unique.
type SKUOption struct {
	SKUID          string `db:"sku_id" json:"skuId"`
	VariantValueID string `db:"variant_value_id" json:"variantValueId"`
	VariantTypeID  string `db:"variant_type_id" json:"variantTypeId"`
}

// OptionRow is one SKU option joined to its value and type titles.
type OptionRow struct {
	SKUID         string `db:"sku_id"`
	VariantTypeID string `db:"variant_type_id"`
	TypeTitle     string `db:"type_title"`
	ValueTitle    string `db:"value_title"`
}
