package form

import (
	"context"
	"strconv"
	"strings"

	"rent-admin/internal/model"
	"rent-admin/internal/notify"

	"github.com/spf13/cast"
)

// CategoryDraft is the editable state of the category form
type CategoryDraft struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Image       string `json:"image"`
	SortOrder   int    `json:"sortOrder"`
}

func (d CategoryDraft) Clone() CategoryDraft { return d }

func CategoryDraftFrom(c *model.Category) CategoryDraft {
	return CategoryDraft{Name: c.Name, Description: c.Description, Image: c.Image, SortOrder: c.SortOrder}
}

func (d CategoryDraft) Input() model.CategoryInput {
	return model.CategoryInput{Name: d.Name, Description: d.Description, Image: d.Image, SortOrder: d.SortOrder}
}

// CategoryWriter is the gateway surface the category form needs
type CategoryWriter interface {
	CreateCategory(ctx context.Context, in model.CategoryInput) (*model.Category, error)
	UpdateCategory(ctx context.Context, id string, in model.CategoryInput) (*model.Category, error)
}

// CategoryForm is the category create/edit form
type CategoryForm struct {
	*Controller[CategoryDraft]
}

func NewCategoryForm(w CategoryWriter, notes *notify.Center, bus *notify.Bus) *CategoryForm {
	return &CategoryForm{NewController(Hooks[CategoryDraft]{
		Entity:   "Category",
		Defaults: func() CategoryDraft { return CategoryDraft{} },
		Validate: func(d CategoryDraft) ([]string, error) {
			if strings.TrimSpace(d.Name) == "" {
				return nil, invalid("name", "Category name is required")
			}
			return nil, nil
		},
		Create: func(ctx context.Context, d CategoryDraft) error {
			_, err := w.CreateCategory(ctx, d.Input())
			return err
		},
		Update: func(ctx context.Context, id string, d CategoryDraft) error {
			_, err := w.UpdateCategory(ctx, id, d.Input())
			return err
		},
		Topic: notify.TopicCategories,
	}, notes, bus)}
}

func (f *CategoryForm) EditCategory(c *model.Category) State[CategoryDraft] {
	return f.OpenEdit(c.ID, CategoryDraftFrom(c))
}

// Set updates one field; sortOrder falls back to 0 when unparseable
func (f *CategoryForm) Set(field string, value interface{}) (State[CategoryDraft], error) {
	return f.Edit(func(d *CategoryDraft) error {
		switch field {
		case "name":
			d.Name = cast.ToString(value)
		case "description":
			d.Description = cast.ToString(value)
		case "image":
			d.Image = cast.ToString(value)
		case "sortOrder":
			d.SortOrder = cast.ToInt(value)
		default:
			return invalid(field, "Unknown category field %q", field)
		}
		return nil
	})
}

// MerchantDraft is the editable state of the merchant form. The mobile
// number stays text until submit.
type MerchantDraft struct {
	Name         string `json:"name"`
	MobileNumber string `json:"mobilenumber"`
	Address      string `json:"address"`
}

func (d MerchantDraft) Clone() MerchantDraft { return d }

func MerchantDraftFrom(m *model.Merchant) MerchantDraft {
	d := MerchantDraft{Name: m.Name, Address: m.Address}
	if m.MobileNumber != nil {
		d.MobileNumber = strconv.FormatInt(*m.MobileNumber, 10)
	}
	return d
}

// Input parses the mobile number; a blank number is omitted
func (d MerchantDraft) Input() (model.MerchantInput, error) {
	in := model.MerchantInput{Name: d.Name, Address: d.Address}
	raw := strings.NewReplacer(" ", "", "-", "").Replace(strings.TrimPrefix(strings.TrimSpace(d.MobileNumber), "+"))
	if raw == "" {
		return in, nil
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n < 0 {
		return in, invalid("mobilenumber", "Mobile number must contain digits only")
	}
	in.MobileNumber = &n
	return in, nil
}

// MerchantWriter is the gateway surface the merchant form needs
type MerchantWriter interface {
	CreateMerchant(ctx context.Context, in model.MerchantInput) (*model.Merchant, error)
	UpdateMerchant(ctx context.Context, id string, in model.MerchantInput) (*model.Merchant, error)
}

// MerchantForm is the merchant create/edit form
type MerchantForm struct {
	*Controller[MerchantDraft]
}

func NewMerchantForm(w MerchantWriter, notes *notify.Center, bus *notify.Bus) *MerchantForm {
	return &MerchantForm{NewController(Hooks[MerchantDraft]{
		Entity:   "Merchant",
		Defaults: func() MerchantDraft { return MerchantDraft{} },
		Validate: func(d MerchantDraft) ([]string, error) {
			if strings.TrimSpace(d.Name) == "" {
				return nil, invalid("name", "Merchant name is required")
			}
			_, err := d.Input()
			return nil, err
		},
		Create: func(ctx context.Context, d MerchantDraft) error {
			in, err := d.Input()
			if err != nil {
				return err
			}
			_, err = w.CreateMerchant(ctx, in)
			return err
		},
		Update: func(ctx context.Context, id string, d MerchantDraft) error {
			in, err := d.Input()
			if err != nil {
				return err
			}
			_, err = w.UpdateMerchant(ctx, id, in)
			return err
		},
		Topic: notify.TopicMerchants,
	}, notes, bus)}
}

func (f *MerchantForm) EditMerchant(m *model.Merchant) State[MerchantDraft] {
	return f.OpenEdit(m.ID, MerchantDraftFrom(m))
}

func (f *MerchantForm) Set(field string, value interface{}) (State[MerchantDraft], error) {
	return f.Edit(func(d *MerchantDraft) error {
		switch field {
		case "name":
			d.Name = cast.ToString(value)
		case "mobilenumber":
			d.MobileNumber = cast.ToString(value)
		case "address":
			d.Address = cast.ToString(value)
		default:
			return invalid(field, "Unknown merchant field %q", field)
		}
		return nil
	})
}
