// Package export writes bookings as spreadsheet files for the admin.
package export

import (
	"fmt"
	"io"
	"strings"
	"time"

	"rent-admin/internal/calendar"
	"rent-admin/internal/model"

	"github.com/gocarina/gocsv"
	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"
)

// Format is an export file type
type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatCSV  Format = "csv"

	sheetName = "Bookings"
	dayLayout = "2006-01-02"
)

var ErrUnknownFormat = errors.New("export: unknown format")

// ParseFormat accepts xlsx or csv, case-insensitive. Empty means xlsx.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatXLSX:
		return FormatXLSX, nil
	case FormatCSV:
		return FormatCSV, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// ContentType is the MIME type of the format
func (f Format) ContentType() string {
	if f == FormatCSV {
		return "text/csv"
	}
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

// Filename names an export written at t
func (f Format) Filename(t time.Time) string {
	return fmt.Sprintf("bookings_export_%s.%s", t.Format("2006-01-02_15-04-05"), f)
}

// Row is one exported booking
type Row struct {
	ID                string  `csv:"id"`
	Customer          string  `csv:"customer"`
	Mobile            string  `csv:"mobile"`
	Location          string  `csv:"location"`
	Dress             string  `csv:"dress"`
	SendDate          string  `csv:"send_date"`
	ReceiveDate       string  `csv:"receive_date"`
	PriceAfterBargain float64 `csv:"price_after_bargain"`
	Advance           float64 `csv:"advance"`
	Pending           float64 `csv:"pending"`
	SecurityAmount    float64 `csv:"security_amount"`
	ReferenceCustomer string  `csv:"reference_customer"`
}

var headers = []string{
	"ID", "Customer", "Mobile", "Location", "Dress", "Send Date", "Receive Date",
	"Price After Bargain", "Advance", "Pending", "Security Amount", "Reference Customer",
}

func (r Row) values() []interface{} {
	return []interface{}{
		r.ID, r.Customer, r.Mobile, r.Location, r.Dress, r.SendDate, r.ReceiveDate,
		r.PriceAfterBargain, r.Advance, r.Pending, r.SecurityAmount, r.ReferenceCustomer,
	}
}

// Range is an inclusive day window. Zero bounds are open.
type Range struct {
	From time.Time
	To   time.Time
}

// ParseRange reads from/to in the binder's location. A to date without a
// time covers the whole day.
func ParseRange(b *calendar.Binder, from, to string) (Range, error) {
	var r Range
	if strings.TrimSpace(from) != "" {
		t, err := b.Parse(from)
		if err != nil {
			return r, errors.Wrapf(err, "parse from %q", from)
		}
		r.From = t
	}
	if strings.TrimSpace(to) != "" {
		t, err := b.Parse(to)
		if err != nil {
			return r, errors.Wrapf(err, "parse to %q", to)
		}
		if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 {
			t = t.Add(24*time.Hour - time.Nanosecond)
		}
		r.To = t
	}
	if !r.From.IsZero() && !r.To.IsZero() && r.To.Before(r.From) {
		return r, errors.Errorf("export: range ends before it starts")
	}
	return r, nil
}

// Rows converts bookings to rows in calendar order, keeping those that
// overlap r. Bookings the calendar cannot place are returned as skipped.
func Rows(b *calendar.Binder, bookings []model.Booking, r Range) ([]Row, []calendar.Skipped) {
	events, skipped := b.ToEvents(bookings)
	events = calendar.Between(events, r.From, r.To)
	rows := make([]Row, 0, len(events))
	for _, e := range events {
		bk := e.Booking
		dress := bk.Dress.Name()
		if dress == "" {
			dress = bk.Dress.ID
		}
		rows = append(rows, Row{
			ID:                bk.ID,
			Customer:          bk.Customer.Name,
			Mobile:            bk.Customer.Mobile,
			Location:          bk.Customer.Location,
			Dress:             dress,
			SendDate:          e.Start.Format(dayLayout),
			ReceiveDate:       e.End.Format(dayLayout),
			PriceAfterBargain: bk.PriceAfterBargain,
			Advance:           bk.Advance,
			Pending:           bk.Pending,
			SecurityAmount:    bk.SecurityAmount,
			ReferenceCustomer: bk.ReferenceCustomer,
		})
	}
	return rows, skipped
}

// Write encodes rows to w in format f
func Write(w io.Writer, f Format, rows []Row) error {
	switch f {
	case FormatCSV:
		return WriteCSV(w, rows)
	case FormatXLSX:
		return WriteXLSX(w, rows)
	}
	return fmt.Errorf("%w: %q", ErrUnknownFormat, f)
}

// WriteCSV writes a header line then one line per row
func WriteCSV(w io.Writer, rows []Row) error {
	if rows == nil {
		rows = []Row{}
	}
	if err := gocsv.Marshal(&rows, w); err != nil {
		return errors.Wrap(err, "write csv")
	}
	return nil
}

// WriteXLSX writes a single Bookings sheet
func WriteXLSX(w io.Writer, rows []Row) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return errors.Wrap(err, "rename sheet")
	}

	style, err := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font: &excelize.Font{Bold: true},
	})
	if err != nil {
		return errors.Wrap(err, "header style")
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetName, cell, h)
	}
	last, _ := excelize.CoordinatesToCellName(len(headers), 1)
	f.SetCellStyle(sheetName, "A1", last, style)

	for i, r := range rows {
		for col, v := range r.values() {
			cell, _ := excelize.CoordinatesToCellName(col+1, i+2)
			f.SetCellValue(sheetName, cell, v)
		}
	}

	f.SetColWidth(sheetName, "A", "A", 26)
	f.SetColWidth(sheetName, "B", "E", 20)
	f.SetColWidth(sheetName, "F", "G", 14)
	f.SetColWidth(sheetName, "H", "L", 18)

	if _, err := f.WriteTo(w); err != nil {
		return errors.Wrap(err, "write xlsx")
	}
	return nil
}
