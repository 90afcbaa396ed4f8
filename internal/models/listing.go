package models

// Listing is a seller's product page. It owns its variant types and SKUs.
type Listing struct {
	ID            string  `db:"id" json:"id"`
	Title         string  `db:"title" json:"title"`
	Description   string  `db:"description" json:"description"`
	OwnerID       string  `db:"owner_id" json:"ownerId"`
	Views         int64   `db:"views" json:"views"`
	Rating        float64 `db:"rating" json:"rating"`
	IsPublic      bool    `db:"is_public" json:"isPublic"`
	AddedAt       int64   `db:"added_at" json:"addedAt"`
	SubCategoryID string  `db:"sub_category_id" json:"subCategoryId"`
}

// User is the local replica of an identity-service account.
type User struct {
	ID        string `db:"id" json:"id"`
	Username  string `db:"username" json:"username"`
	CreatedAt int64  `db:"created_at" json:"-"`
}

// Condition is an item condition such as "new" or "used".
type Condition struct {
	ID    string `db:"id" json:"id"`
	Title string `db:"title" json:"title"`
}
