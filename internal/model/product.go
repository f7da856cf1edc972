package model

import (
	"bytes"
	"time"
)

// Category represents a product category
type Category struct {
	ID          string    `json:"_id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Image       string    `json:"image"`
	Slug        string    `json:"slug,omitempty"`
	IsActive    bool      `json:"isActive"`
	SortOrder   int       `json:"sortOrder"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// UnmarshalJSON accepts a populated category or the bare category id
func (c *Category) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		*c = Category{}
		return json.Unmarshal(data, &c.ID)
	}
	type plain Category
	return json.Unmarshal(data, (*plain)(c))
}

// Merchant represents the owner a rental item is sourced from
type Merchant struct {
	ID           string    `json:"_id"`
	Name         string    `json:"name"`
	MobileNumber *int64    `json:"mobilenumber,omitempty"`
	Address      string    `json:"address,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// UnmarshalJSON accepts a populated merchant or the bare merchant id
func (m *Merchant) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		*m = Merchant{}
		return json.Unmarshal(data, &m.ID)
	}
	type plain Merchant
	return json.Unmarshal(data, (*plain)(m))
}

// ProductSize is one size entry of a product
type ProductSize struct {
	Size        Size `json:"size"`
	IsAvailable bool `json:"isAvailable"`
	Quantity    int  `json:"quantity"`
}

// DefaultSize is the size entry new products and new size rows start with
func DefaultSize() ProductSize {
	return ProductSize{Size: SizeM, IsAvailable: true, Quantity: 1}
}

// Product represents a rentable clothing item
type Product struct {
	ID               string        `json:"_id"`
	Name             string        `json:"name"`
	Description      string        `json:"description"`
	Category         *Category     `json:"category,omitempty"`
	Categories       []*Category   `json:"categories"`
	Owner            *Merchant     `json:"Owner,omitempty"`
	Images           []string      `json:"images"`
	Price            float64       `json:"price"`
	OriginalPrice    float64       `json:"originalPrice"`
	Deposit          float64       `json:"deposit,omitempty"`
	Sizes            []ProductSize `json:"sizes"`
	Color            string        `json:"color"`
	Brand            string        `json:"brand,omitempty"`
	Material         string        `json:"material,omitempty"`
	Condition        Condition     `json:"condition"`
	RentalDuration   int           `json:"rentalDuration"`
	IsAvailable      bool          `json:"isAvailable"`
	IsFeatured       bool          `json:"isFeatured"`
	IsHighlighted    bool          `json:"isHighlighted"`
	HighlightOrder   int           `json:"highlightOrder"`
	Tags             []string      `json:"tags"`
	CareInstructions string        `json:"careInstructions,omitempty"`
	Slug             string        `json:"slug,omitempty"`
	CreatedAt        time.Time     `json:"createdAt"`
	UpdatedAt        time.Time     `json:"updatedAt"`
}

// CategoryIDs returns the ids of the product's categories, falling back to
// the legacy single category when the list holds no usable entries.
func (p *Product) CategoryIDs() []string {
	ids := make([]string, 0, len(p.Categories))
	for _, c := range p.Categories {
		if c != nil && c.ID != "" {
			ids = append(ids, c.ID)
		}
	}
	if len(ids) == 0 && p.Category != nil && p.Category.ID != "" {
		ids = append(ids, p.Category.ID)
	}
	return ids
}

// CategoryNames joins the display names used in product cards
func (p *Product) CategoryNames() []string {
	names := make([]string, 0, len(p.Categories))
	for _, c := range p.Categories {
		if c != nil {
			names = append(names, c.Name)
		}
	}
	if len(names) == 0 && p.Category != nil {
		names = append(names, p.Category.Name)
	}
	return names
}

// CoverImage returns the first image or an empty string
func (p *Product) CoverImage() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}

// ProductInput is the create/update payload for a product
type ProductInput struct {
	Name             string        `json:"name"`
	Description      string        `json:"description"`
	Categories       []string      `json:"categories"`
	Owner            string        `json:"Owner,omitempty"`
	Images           []string      `json:"images"`
	Price            float64       `json:"price"`
	OriginalPrice    float64       `json:"originalPrice"`
	Deposit          float64       `json:"deposit,omitempty"`
	Sizes            []ProductSize `json:"sizes"`
	Color            string        `json:"color"`
	RentalDuration   int           `json:"rentalDuration"`
	Condition        Condition     `json:"condition,omitempty"`
	Brand            string        `json:"brand,omitempty"`
	Material         string        `json:"material,omitempty"`
	Tags             []string      `json:"tags"`
	CareInstructions string        `json:"careInstructions,omitempty"`
	IsFeatured       bool          `json:"isFeatured"`
	IsAvailable      bool          `json:"isAvailable"`
}

// CategoryInput is the create/update payload for a category
type CategoryInput struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Image       string `json:"image"`
	SortOrder   int    `json:"sortOrder"`
}

// MerchantInput is the create/update payload for a merchant
type MerchantInput struct {
	Name         string `json:"name"`
	MobileNumber *int64 `json:"mobilenumber,omitempty"`
	Address      string `json:"address,omitempty"`
}

// HighlightRank is one entry of the highlight order payload
type HighlightRank struct {
	ID    string `json:"id"`
	Order int    `json:"order"`
}
