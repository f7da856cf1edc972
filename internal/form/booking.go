package form

import (
	"context"
	"strings"

	"rent-admin/internal/model"
	"rent-admin/internal/notify"

	"github.com/spf13/cast"
)

// BookingDraft is the editable state of the booking form. Dates are kept as
// YYYY-MM-DD, the format of a date input.
type BookingDraft struct {
	DressID           string         `json:"dressId"`
	PriceAfterBargain float64        `json:"priceAfterBargain"`
	Advance           float64        `json:"advance"`
	Pending           float64        `json:"pending"`
	SecurityAmount    float64        `json:"securityAmount"`
	SendDate          string         `json:"sendDate"`
	ReceiveDate       string         `json:"receiveDate"`
	Customer          model.Customer `json:"customer"`
	ReferenceCustomer string         `json:"referenceCustomer"`
	DressImage        string         `json:"dressImage"`
}

func (d BookingDraft) Clone() BookingDraft { return d }

// BookingDraftFrom seeds the form from an existing booking
func BookingDraftFrom(b *model.Booking) BookingDraft {
	return BookingDraft{
		DressID:           b.Dress.ID,
		PriceAfterBargain: b.PriceAfterBargain,
		Advance:           b.Advance,
		Pending:           b.Pending,
		SecurityAmount:    b.SecurityAmount,
		SendDate:          dateOnly(b.SendDate),
		ReceiveDate:       dateOnly(b.ReceiveDate),
		Customer:          b.Customer,
		ReferenceCustomer: b.ReferenceCustomer,
		DressImage:        b.DressImage,
	}
}

func dateOnly(s string) string {
	if i := strings.IndexByte(s, 'T'); i >= 0 {
		return s[:i]
	}
	return s
}

func (d BookingDraft) Input() model.BookingInput {
	return model.BookingInput{
		DressID:           d.DressID,
		PriceAfterBargain: d.PriceAfterBargain,
		Advance:           d.Advance,
		Pending:           d.Pending,
		SecurityAmount:    d.SecurityAmount,
		SendDate:          d.SendDate,
		ReceiveDate:       d.ReceiveDate,
		Customer:          d.Customer,
		ReferenceCustomer: d.ReferenceCustomer,
		DressImage:        d.DressImage,
	}
}

// ValidateBooking requires a dress, a customer name and ordered dates
func ValidateBooking(d BookingDraft) ([]string, error) {
	if d.DressID == "" {
		return nil, invalid("dressId", "Please select a product")
	}
	if strings.TrimSpace(d.Customer.Name) == "" {
		return nil, invalid("customer.name", "Customer name is required")
	}
	if d.SendDate != "" && d.ReceiveDate != "" && d.ReceiveDate < d.SendDate {
		return nil, invalid("receiveDate", "Receive date cannot be before send date")
	}
	return nil, nil
}

// BookingWriter is the gateway surface the booking form needs
type BookingWriter interface {
	CreateBooking(ctx context.Context, in model.BookingInput) (*model.Booking, error)
	UpdateBooking(ctx context.Context, id string, in model.BookingInput) (*model.Booking, error)
}

// BookingForm is the booking create/edit form
type BookingForm struct {
	*Controller[BookingDraft]
}

func NewBookingForm(w BookingWriter, notes *notify.Center, bus *notify.Bus) *BookingForm {
	return &BookingForm{NewController(Hooks[BookingDraft]{
		Entity:   "Booking",
		Defaults: func() BookingDraft { return BookingDraft{} },
		Validate: ValidateBooking,
		Create: func(ctx context.Context, d BookingDraft) error {
			_, err := w.CreateBooking(ctx, d.Input())
			return err
		},
		Update: func(ctx context.Context, id string, d BookingDraft) error {
			_, err := w.UpdateBooking(ctx, id, d.Input())
			return err
		},
		Topic: notify.TopicBookings,
	}, notes, bus)}
}

func (f *BookingForm) EditBooking(b *model.Booking) State[BookingDraft] {
	return f.OpenEdit(b.ID, BookingDraftFrom(b))
}

// SelectDress sets the booked product and snapshots its first image
func (f *BookingForm) SelectDress(p model.Product) (State[BookingDraft], error) {
	return f.Edit(func(d *BookingDraft) error {
		d.DressID = p.ID
		if img := p.CoverImage(); img != "" {
			d.DressImage = img
		}
		return nil
	})
}

func (f *BookingForm) Set(field string, value interface{}) (State[BookingDraft], error) {
	return f.Edit(func(d *BookingDraft) error {
		switch field {
		case "priceAfterBargain":
			d.PriceAfterBargain = cast.ToFloat64(value)
		case "advance":
			d.Advance = cast.ToFloat64(value)
		case "pending":
			d.Pending = cast.ToFloat64(value)
		case "securityAmount":
			d.SecurityAmount = cast.ToFloat64(value)
		case "sendDate":
			d.SendDate = dateOnly(cast.ToString(value))
		case "receiveDate":
			d.ReceiveDate = dateOnly(cast.ToString(value))
		case "customer.name":
			d.Customer.Name = cast.ToString(value)
		case "customer.image":
			d.Customer.Image = cast.ToString(value)
		case "customer.location":
			d.Customer.Location = cast.ToString(value)
		case "customer.mobile":
			d.Customer.Mobile = cast.ToString(value)
		case "referenceCustomer":
			d.ReferenceCustomer = cast.ToString(value)
		case "dressImage":
			d.DressImage = cast.ToString(value)
		default:
			return invalid(field, "Unknown booking field %q", field)
		}
		return nil
	})
}
