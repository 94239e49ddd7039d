package reports

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// =====================================================
// Errors
// =====================================================

var (
	// ErrInvalidDataset is returned when the requested dataset key is not
	// in the allow-list.
	ErrInvalidDataset = errors.New("invalid database option")
	// ErrDataSource wraps connection, query and decode failures.
	ErrDataSource = errors.New("data source failure")
	// ErrRendering wraps failures while building the PDF document.
	ErrRendering = errors.New("rendering failure")
	// ErrInvalidSection is returned for a CSV export of an unknown section.
	ErrInvalidSection = errors.New("invalid report section")
)

// =====================================================
// Enums and Constants
// =====================================================

// Collection names in every dataset database
const (
	CollectionPayment = "Payment"
	CollectionSale    = "Sale"
)

// PaymentMethodNetwork is the card/network payment method
const PaymentMethodNetwork = "network"

// DefaultTopProductsLimit bounds the top products list
const DefaultTopProductsLimit = 5

// =====================================================
// Core Models
// =====================================================

// TimeRange is a reporting window, inclusive on both ends
type TimeRange struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t lies within the range
func (r TimeRange) Contains(t time.Time) bool {
	return !t.Before(r.Start) && !t.After(r.End)
}

// PaymentSummary is one row of the payment report
type PaymentSummary struct {
	Method           string
	IsOutgoing       bool
	TotalAmount      decimal.Decimal
	TransactionCount int64
}

// ClinicSummary splits clinic service revenue into large-animal and normal services
type ClinicSummary struct {
	TotalRevenue          decimal.Decimal
	LargeServicesRevenue  decimal.Decimal
	NormalServicesRevenue decimal.Decimal
}

// TopProduct is a single sale line ranked by revenue
type TopProduct struct {
	ProductName string
	Revenue     decimal.Decimal
	Profit      decimal.Decimal
}

// SalesSummary holds sales totals and the best selling lines
type SalesSummary struct {
	TotalRevenue decimal.Decimal
	TotalProfit  decimal.Decimal
	TopProducts  []TopProduct
}

// ReportBundle carries everything produced for one request
type ReportBundle struct {
	Dataset  string
	Range    TimeRange
	Payments []PaymentSummary
	Clinic   ClinicSummary
	Sales    SalesSummary
	PDF      []byte
}

// =====================================================
// Request/Response DTOs
// =====================================================

// Timestamp accepts RFC 3339, a zone-less date-time or a bare date.
// Zone-less values are taken as UTC.
type Timestamp struct {
	time.Time
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseTimestamp parses s using the accepted layouts
func ParseTimestamp(s string) (Timestamp, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Timestamp{Time: t}, nil
		}
	}
	return Timestamp{}, fmt.Errorf("invalid datetime %q", s)
}

// UnmarshalJSON implements json.Unmarshaler
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("datetime must be a string: %w", err)
	}
	parsed, err := ParseTimestamp(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// MarshalJSON implements json.Marshaler
func (t Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Time.Format(time.RFC3339))
}

// ReportRequest is the body of a full report request
type ReportRequest struct {
	DBOption  string    `json:"db_option"`
	StartDate Timestamp `json:"start_date"`
	EndDate   Timestamp `json:"end_date"`
}

// Validate checks the window is present and ordered
func (r *ReportRequest) Validate() error {
	if r.StartDate.IsZero() || r.EndDate.IsZero() {
		return errors.New("start_date and end_date are required")
	}
	if r.StartDate.After(r.EndDate.Time) {
		return errors.New("start_date must not be after end_date")
	}
	return nil
}

// Range returns the requested window
func (r *ReportRequest) Range() TimeRange {
	return TimeRange{Start: r.StartDate.Time, End: r.EndDate.Time}
}

// PaymentReportItem is a payment row as returned to clients
type PaymentReportItem struct {
	Method           string  `json:"method"`
	IsOutgoing       bool    `json:"isOutgoing"`
	TotalAmount      float64 `json:"totalAmount"`
	TransactionCount int64   `json:"transactionCount"`
}

// ClinicReport is the clinic section as returned to clients
type ClinicReport struct {
	TotalRevenue          float64 `json:"totalRevenue"`
	LargeServicesRevenue  float64 `json:"largeServicesRevenue"`
	NormalServicesRevenue float64 `json:"normalServicesRevenue"`
}

// TopProductItem is a ranked sale line as returned to clients
type TopProductItem struct {
	ProductName string  `json:"productName"`
	Revenue     float64 `json:"revenue"`
	Profit      float64 `json:"profit"`
}

// SalesReport is the sales section as returned to clients
type SalesReport struct {
	TotalRevenue float64          `json:"totalRevenue"`
	TotalProfit  float64          `json:"totalProfit"`
	TopProducts  []TopProductItem `json:"topProducts"`
}

// FullReportResponse is the response of a full report request
type FullReportResponse struct {
	Success       bool                `json:"success"`
	PaymentReport []PaymentReportItem `json:"payment_report"`
	ClinicReport  ClinicReport        `json:"clinic_report"`
	SalesReport   SalesReport         `json:"sales_report"`
	PDFBytes      string              `json:"pdf_bytes"`
}

// DatasetsResponse lists the dataset keys a client may request
type DatasetsResponse struct {
	Datasets []string `json:"datasets"`
}

// ErrorResponse is the body of every error response
type ErrorResponse struct {
	Detail string `json:"detail"`
}

// toFloat64 converts a decimal for JSON output
func toFloat64(d decimal.Decimal) float64 {
	f, _ := d.Float64()
	return f
}

// NewFullReportResponse maps a bundle to its JSON form. pdf is the encoded document.
func NewFullReportResponse(b *ReportBundle, pdf string) *FullReportResponse {
	payments := make([]PaymentReportItem, 0, len(b.Payments))
	for _, p := range b.Payments {
		payments = append(payments, PaymentReportItem{
			Method:           p.Method,
			IsOutgoing:       p.IsOutgoing,
			TotalAmount:      toFloat64(p.TotalAmount),
			TransactionCount: p.TransactionCount,
		})
	}

	products := make([]TopProductItem, 0, len(b.Sales.TopProducts))
	for _, p := range b.Sales.TopProducts {
		products = append(products, TopProductItem{
			ProductName: p.ProductName,
			Revenue:     toFloat64(p.Revenue),
			Profit:      toFloat64(p.Profit),
		})
	}

	return &FullReportResponse{
		Success:       true,
		PaymentReport: payments,
		ClinicReport: ClinicReport{
			TotalRevenue:          toFloat64(b.Clinic.TotalRevenue),
			LargeServicesRevenue:  toFloat64(b.Clinic.LargeServicesRevenue),
			NormalServicesRevenue: toFloat64(b.Clinic.NormalServicesRevenue),
		},
		SalesReport: SalesReport{
			TotalRevenue: toFloat64(b.Sales.TotalRevenue),
			TotalProfit:  toFloat64(b.Sales.TotalProfit),
			TopProducts:  products,
		},
		PDFBytes: pdf,
	}
}
