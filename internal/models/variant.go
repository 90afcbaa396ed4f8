package models

// VariantType is a named axis of customization for a listing's SKUs, e.g. "Color".
type VariantType struct {
	ID        string         `db:"id" json:"id"`
	Title     string         `db:"title" json:"title"`
	ListingID string         `db:"listing_id" json:"listingId"`
	CreatedAt int64          `db:"created_at" json:"-"`
	Values    []VariantValue `db:"-" json:"values"`
}

// VariantValue is one allowed value along a VariantType, e.g. "Red".
type VariantValue struct {
	ID            string  `db:"id" json:"id"`
	Title         string  `db:"title" json:"title"`
	VariantTypeID string  `db:"variant_type_id" json:"variantTypeId"`
	Colour        *string `db:"colour" json:"colour,omitempty"`
	CreatedAt     int64   `db:"created_at" json:"-"`
}
