package export

import (
	"time"

	"github.com/shopspring/decimal"
)

// FullReportData is the input of the document and workbook exporters
type FullReportData struct {
	Database string
	Start    time.Time
	End      time.Time
	Payments []PaymentRow
	Clinic   ClinicData
	Sales    SalesData
}

// PaymentRow is one (method, direction) payment group
type PaymentRow struct {
	Method           string
	IsOutgoing       bool
	TotalAmount      decimal.Decimal
	TransactionCount int64
}

// ClinicData holds the clinic revenue split
type ClinicData struct {
	TotalRevenue          decimal.Decimal
	LargeServicesRevenue  decimal.Decimal
	NormalServicesRevenue decimal.Decimal
}

// ProductRow is a ranked sale line
type ProductRow struct {
	ProductName string
	Revenue     decimal.Decimal
	Profit      decimal.Decimal
}

// SalesData holds the sales totals and top lines
type SalesData struct {
	TotalRevenue decimal.Decimal
	TotalProfit  decimal.Decimal
	TopProducts  []ProductRow
}

// Report labels
const (
	labelTitle         = "تقرير العيادة البيطرية الشامل"
	labelDatabase      = "القاعدة: "
	labelPeriodFrom    = "الفترة من "
	labelPeriodTo      = " إلى "
	labelPayments      = "تقرير المدفوعات"
	labelType          = "النوع"
	labelMethod        = "الطريقة"
	labelAmount        = "المبلغ"
	labelCount         = "عدد المعاملات"
	labelOutgoing      = "صادر"
	labelIncoming      = "وارد"
	labelNetwork       = "شبكة"
	labelCash          = "كاش"
	labelClinic        = "تقرير العيادة"
	labelClinicTotal   = "الإجمالي"
	labelClinicLarge   = "خدمات لارج"
	labelClinicNormal  = "خدمات عادية"
	labelSales         = "تقرير المبيعات والأرباح"
	labelTotalRevenue  = "إجمالي الإيرادات: "
	labelTotalProfit   = "إجمالي الأرباح: "
	labelTopProducts   = "أفضل المنتجات:"
	labelProduct       = "المنتج"
	labelRevenue       = "الإيراد"
	labelProfit        = "الربح"
	methodNetworkValue = "network"

	labelItem             = "البند"
	labelTotalRevenueCell = "إجمالي الإيرادات"
	labelTotalProfitCell  = "إجمالي الأرباح"
)

// Section keys of the tabular exports
const (
	SectionPayments = "payments"
	SectionClinic   = "clinic"
	SectionSales    = "sales"
)

// Section is one report table shared by the workbook and CSV exporters
type Section struct {
	Key     string
	Sheet   string
	Columns []string
	Rows    [][]interface{}
}

// Sections lays the report out as payments, clinic and sales tables.
// Amounts stay decimal so each exporter can format them itself.
func Sections(data FullReportData) []Section {
	payments := make([][]interface{}, 0, len(data.Payments))
	for _, p := range data.Payments {
		payments = append(payments, []interface{}{
			DirectionLabel(p.IsOutgoing),
			MethodLabel(p.Method),
			p.TotalAmount,
			p.TransactionCount,
		})
	}

	clinic := [][]interface{}{
		{labelClinicTotal, data.Clinic.TotalRevenue},
		{labelClinicLarge, data.Clinic.LargeServicesRevenue},
		{labelClinicNormal, data.Clinic.NormalServicesRevenue},
	}

	sales := make([][]interface{}, 0, len(data.Sales.TopProducts)+3)
	for _, p := range data.Sales.TopProducts {
		sales = append(sales, []interface{}{p.ProductName, p.Revenue, p.Profit})
	}
	sales = append(sales,
		[]interface{}{},
		[]interface{}{labelTotalRevenueCell, data.Sales.TotalRevenue},
		[]interface{}{labelTotalProfitCell, data.Sales.TotalProfit},
	)

	return []Section{
		{Key: SectionPayments, Sheet: SheetPayments, Columns: []string{labelType, labelMethod, labelAmount, labelCount}, Rows: payments},
		{Key: SectionClinic, Sheet: SheetClinic, Columns: []string{labelItem, labelAmount}, Rows: clinic},
		{Key: SectionSales, Sheet: SheetSales, Columns: []string{labelProduct, labelRevenue, labelProfit}, Rows: sales},
	}
}

// DirectionLabel names a payment direction
func DirectionLabel(isOutgoing bool) string {
	if isOutgoing {
		return labelOutgoing
	}
	return labelIncoming
}

// MethodLabel names a payment method. Anything but network is cash.
func MethodLabel(method string) string {
	if method == methodNetworkValue {
		return labelNetwork
	}
	return labelCash
}

// FormatAmount renders a value with two decimals followed by the currency code
func FormatAmount(d decimal.Decimal, currency string) string {
	if currency == "" {
		return d.StringFixed(2)
	}
	return d.StringFixed(2) + " " + currency
}
