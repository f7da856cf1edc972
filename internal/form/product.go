package form

import (
	"context"
	"strings"

	"rent-admin/internal/model"
	"rent-admin/internal/notify"

	"github.com/spf13/cast"
)

// ProductDraft is the editable state of the product form
type ProductDraft struct {
	Name             string              `json:"name"`
	Description      string              `json:"description"`
	Categories       []string            `json:"categories"`
	Images           []string            `json:"images"`
	Price            float64             `json:"price"`
	OriginalPrice    float64             `json:"originalPrice"`
	Sizes            []model.ProductSize `json:"sizes"`
	Color            string              `json:"color"`
	RentalDuration   int                 `json:"rentalDuration"`
	Condition        model.Condition     `json:"condition"`
	Brand            string              `json:"brand"`
	Material         string              `json:"material"`
	Tags             []string            `json:"tags"`
	CareInstructions string              `json:"careInstructions"`
	IsFeatured       bool                `json:"isFeatured"`
	IsAvailable      bool                `json:"isAvailable"`
}

// DefaultProductDraft is the blank product form
func DefaultProductDraft() ProductDraft {
	return ProductDraft{
		Categories:     []string{},
		Images:         []string{""},
		Sizes:          []model.ProductSize{model.DefaultSize()},
		RentalDuration: 1,
		Condition:      model.ConditionGood,
		Tags:           []string{""},
		IsAvailable:    true,
	}
}

// ProductDraftFrom seeds the form from an existing product
func ProductDraftFrom(p *model.Product) ProductDraft {
	d := ProductDraft{
		Name:             p.Name,
		Description:      p.Description,
		Categories:       p.CategoryIDs(),
		Images:           append([]string{}, p.Images...),
		Price:            p.Price,
		OriginalPrice:    p.OriginalPrice,
		Sizes:            append([]model.ProductSize{}, p.Sizes...),
		Color:            p.Color,
		RentalDuration:   p.RentalDuration,
		Condition:        p.Condition,
		Brand:            p.Brand,
		Material:         p.Material,
		Tags:             append([]string{}, p.Tags...),
		CareInstructions: p.CareInstructions,
		IsFeatured:       p.IsFeatured,
		IsAvailable:      p.IsAvailable,
	}
	if len(d.Sizes) == 0 {
		d.Sizes = []model.ProductSize{model.DefaultSize()}
	}
	if len(d.Tags) == 0 {
		d.Tags = []string{""}
	}
	return d
}

func (d ProductDraft) Clone() ProductDraft {
	d.Categories = append([]string{}, d.Categories...)
	d.Images = append([]string{}, d.Images...)
	d.Sizes = append([]model.ProductSize{}, d.Sizes...)
	d.Tags = append([]string{}, d.Tags...)
	return d
}

// Input builds the gateway payload, dropping blank images and tags
func (d ProductDraft) Input() model.ProductInput {
	return model.ProductInput{
		Name:             d.Name,
		Description:      d.Description,
		Categories:       append([]string{}, d.Categories...),
		Images:           nonBlank(d.Images),
		Price:            d.Price,
		OriginalPrice:    d.OriginalPrice,
		Sizes:            append([]model.ProductSize{}, d.Sizes...),
		Color:            d.Color,
		RentalDuration:   d.RentalDuration,
		Condition:        d.Condition,
		Brand:            d.Brand,
		Material:         d.Material,
		Tags:             nonBlank(d.Tags),
		CareInstructions: d.CareInstructions,
		IsFeatured:       d.IsFeatured,
		IsAvailable:      d.IsAvailable,
	}
}

// ValidateProduct checks a product draft. Missing categories only warn.
func ValidateProduct(d ProductDraft) ([]string, error) {
	var warnings []string
	if len(d.Categories) == 0 {
		warnings = append(warnings, "Please select at least one category")
	}
	if strings.TrimSpace(d.Name) == "" {
		return warnings, invalid("name", "Product name is required")
	}
	if d.Price < 0 || d.OriginalPrice < 0 {
		return warnings, invalid("price", "Price cannot be negative")
	}
	if d.Condition != "" && !d.Condition.Valid() {
		return warnings, invalid("condition", "Invalid condition %q", d.Condition)
	}
	for _, s := range d.Sizes {
		if !s.Size.Valid() {
			return warnings, invalid("sizes", "Invalid size %q", s.Size)
		}
	}
	return warnings, nil
}

// ProductWriter is the gateway surface the product form needs
type ProductWriter interface {
	CreateProduct(ctx context.Context, in model.ProductInput) (*model.Product, error)
	UpdateProduct(ctx context.Context, id string, in model.ProductInput) (*model.Product, error)
}

// ProductForm is the product create/edit form with its row helpers
type ProductForm struct {
	*Controller[ProductDraft]
}

func NewProductForm(w ProductWriter, notes *notify.Center, bus *notify.Bus) *ProductForm {
	return &ProductForm{NewController(Hooks[ProductDraft]{
		Entity:   "Product",
		Defaults: DefaultProductDraft,
		Validate: ValidateProduct,
		Create: func(ctx context.Context, d ProductDraft) error {
			_, err := w.CreateProduct(ctx, d.Input())
			return err
		},
		Update: func(ctx context.Context, id string, d ProductDraft) error {
			_, err := w.UpdateProduct(ctx, id, d.Input())
			return err
		},
		Topic: notify.TopicProducts,
	}, notes, bus)}
}

// EditProduct opens the form for p
func (f *ProductForm) EditProduct(p *model.Product) State[ProductDraft] {
	return f.OpenEdit(p.ID, ProductDraftFrom(p))
}

func (f *ProductForm) AddTag() (State[ProductDraft], error) {
	return f.Edit(func(d *ProductDraft) error {
		d.Tags = append(d.Tags, "")
		return nil
	})
}

func (f *ProductForm) RemoveTag(i int) (State[ProductDraft], error) {
	return f.Edit(func(d *ProductDraft) (err error) {
		d.Tags, err = removeAt(d.Tags, i)
		return err
	})
}

func (f *ProductForm) UpdateTag(i int, value string) (State[ProductDraft], error) {
	return f.Edit(func(d *ProductDraft) error {
		if i < 0 || i >= len(d.Tags) {
			return ErrOutOfRange
		}
		d.Tags[i] = value
		return nil
	})
}

func (f *ProductForm) AddImage(url string) (State[ProductDraft], error) {
	return f.Edit(func(d *ProductDraft) error {
		d.Images = append(d.Images, url)
		return nil
	})
}

// RemoveImage drops image row i. Unlike tags and sizes the list may become empty.
func (f *ProductForm) RemoveImage(i int) (State[ProductDraft], error) {
	return f.Edit(func(d *ProductDraft) error {
		if i < 0 || i >= len(d.Images) {
			return ErrOutOfRange
		}
		d.Images = append(d.Images[:i:i], d.Images[i+1:]...)
		return nil
	})
}

func (f *ProductForm) UpdateImage(i int, url string) (State[ProductDraft], error) {
	return f.Edit(func(d *ProductDraft) error {
		if i < 0 || i >= len(d.Images) {
			return ErrOutOfRange
		}
		d.Images[i] = url
		return nil
	})
}

// SetImages replaces the image list, as the multi-image uploader does
func (f *ProductForm) SetImages(urls []string) (State[ProductDraft], error) {
	return f.Edit(func(d *ProductDraft) error {
		d.Images = append([]string{}, urls...)
		return nil
	})
}

func (f *ProductForm) AddSize() (State[ProductDraft], error) {
	return f.Edit(func(d *ProductDraft) error {
		d.Sizes = append(d.Sizes, model.DefaultSize())
		return nil
	})
}

func (f *ProductForm) RemoveSize(i int) (State[ProductDraft], error) {
	return f.Edit(func(d *ProductDraft) (err error) {
		d.Sizes, err = removeAt(d.Sizes, i)
		return err
	})
}

// UpdateSize sets one field of size row i. Values arrive loosely typed from
// form posts: quantity accepts "3" and falls back to 1 when unparseable or
// below 1.
func (f *ProductForm) UpdateSize(i int, field string, value interface{}) (State[ProductDraft], error) {
	return f.Edit(func(d *ProductDraft) error {
		if i < 0 || i >= len(d.Sizes) {
			return ErrOutOfRange
		}
		row := d.Sizes[i]
		switch field {
		case "size":
			size := model.Size(cast.ToString(value))
			if !size.Valid() {
				return invalid("size", "Invalid size %q", size)
			}
			row.Size = size
		case "isAvailable":
			ok, err := cast.ToBoolE(value)
			if err != nil {
				return invalid("isAvailable", "Invalid availability %v", value)
			}
			row.IsAvailable = ok
		case "quantity":
			row.Quantity = atLeastOne(value)
		default:
			return invalid(field, "Unknown size field %q", field)
		}
		d.Sizes[i] = row
		return nil
	})
}

// ToggleCategory adds or removes a category id
func (f *ProductForm) ToggleCategory(id string) (State[ProductDraft], error) {
	return f.Edit(func(d *ProductDraft) error {
		for i, existing := range d.Categories {
			if existing == id {
				d.Categories = append(d.Categories[:i:i], d.Categories[i+1:]...)
				return nil
			}
		}
		d.Categories = append(d.Categories, id)
		return nil
	})
}

// Set updates one scalar field from a loosely typed value
func (f *ProductForm) Set(field string, value interface{}) (State[ProductDraft], error) {
	return f.Edit(func(d *ProductDraft) error {
		switch field {
		case "name":
			d.Name = cast.ToString(value)
		case "description":
			d.Description = cast.ToString(value)
		case "color":
			d.Color = cast.ToString(value)
		case "brand":
			d.Brand = cast.ToString(value)
		case "material":
			d.Material = cast.ToString(value)
		case "careInstructions":
			d.CareInstructions = cast.ToString(value)
		case "price":
			d.Price = cast.ToFloat64(value)
		case "originalPrice":
			d.OriginalPrice = cast.ToFloat64(value)
		case "rentalDuration":
			d.RentalDuration = atLeastOne(value)
		case "condition":
			c := model.Condition(cast.ToString(value))
			if !c.Valid() {
				return invalid("condition", "Invalid condition %q", c)
			}
			d.Condition = c
		case "isFeatured":
			d.IsFeatured = cast.ToBool(value)
		case "isAvailable":
			d.IsAvailable = cast.ToBool(value)
		default:
			return invalid(field, "Unknown product field %q", field)
		}
		return nil
	})
}

func atLeastOne(value interface{}) int {
	n, err := cast.ToIntE(value)
	if err != nil || n < 1 {
		return 1
	}
	return n
}
