package models

// Category is a top-level taxonomy node.
type Category struct {
	ID            string        `db:"id" json:"id"`
	Title         string        `db:"title" json:"title"`
	Slug          string        `db:"slug" json:"slug"`
	Description   string        `db:"description" json:"description"`
	Colour        string        `db:"colour" json:"colour"`
	CreatedAt     int64         `db:"created_at" json:"-"`
	SubCategories []SubCategory `db:"-" json:"subCategories"`
}

// SubCategory belongs to exactly one Category.
type SubCategory struct {
	ID         string `db:"id" json:"id"`
	Title      string `db:"title" json:"title"`
	CategoryID string `db:"category_id" json:"categoryId"`
	CreatedAt  int64  `db:"created_at" json:"-"`
}
