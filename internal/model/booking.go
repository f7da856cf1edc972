package model

import (
	"bytes"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Customer is embedded in a booking, not referenced
type Customer struct {
	Name     string `json:"name"`
	Image    string `json:"image,omitempty"`
	Location string `json:"location,omitempty"`
	Mobile   string `json:"mobile,omitempty"`
}

// DressRef points at the booked product. The gateway sends either the bare
// product id or the populated product document.
type DressRef struct {
	ID      string
	Product *Product
}

// Name is the dress name when the reference was populated
func (d DressRef) Name() string {
	if d.Product == nil {
		return ""
	}
	return d.Product.Name
}

// UnmarshalJSON accepts a string id, a product object or null
func (d *DressRef) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	*d = DressRef{}
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	if data[0] == '"' {
		return json.Unmarshal(data, &d.ID)
	}
	var p Product
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	d.ID = p.ID
	d.Product = &p
	return nil
}

// MarshalJSON writes the bare id, which is what the gateway accepts on writes
func (d DressRef) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.ID)
}

// Booking is an offline rental of one dress to one customer
type Booking struct {
	ID                string   `json:"_id"`
	Dress             DressRef `json:"dressId"`
	PriceAfterBargain float64  `json:"priceAfterBargain"`
	Advance           float64  `json:"advance"`
	Pending           float64  `json:"pending"`
	SecurityAmount    float64  `json:"securityAmount"`
	SendDate          string   `json:"sendDate,omitempty"`
	ReceiveDate       string   `json:"receiveDate,omitempty"`
	Customer          Customer `json:"customer"`
	ReferenceCustomer string   `json:"referenceCustomer,omitempty"`
	DressImage        string   `json:"dressImage,omitempty"`
}

// BookingInput is the create/update payload for a booking
type BookingInput struct {
	DressID           string   `json:"dressId"`
	PriceAfterBargain float64  `json:"priceAfterBargain"`
	Advance           float64  `json:"advance"`
	Pending           float64  `json:"pending"`
	SecurityAmount    float64  `json:"securityAmount"`
	SendDate          string   `json:"sendDate"`
	ReceiveDate       string   `json:"receiveDate"`
	Customer          Customer `json:"customer"`
	ReferenceCustomer string   `json:"referenceCustomer,omitempty"`
	DressImage        string   `json:"dressImage,omitempty"`
}
