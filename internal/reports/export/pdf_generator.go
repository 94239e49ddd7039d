package export

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"io"

	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"

	"github.com/mahmoud206/vetratech-mobile-api/pkg/arabic"
)

const arabicFontFamily = "Arabic"

// PDFGenerator renders one report document. Create a new generator for every
// document; it is not safe for concurrent use.
type PDFGenerator struct {
	pdf      *gofpdf.Fpdf
	options  PDFOptions
	tr       func(string) string
	family   string
	unicode  bool
	degraded error
}

// PDFOptions configures PDF generation
type PDFOptions struct {
	PageSize       string     `json:"page_size"`   // A4, Letter, Legal
	Orientation    string     `json:"orientation"` // portrait, landscape
	Author         string     `json:"author,omitempty"`
	Currency       string     `json:"currency"`
	DateFormat     string     `json:"date_format"`
	IncludePageNum bool       `json:"include_page_num"`
	HeaderColor    PDFColor   `json:"header_color"`
	FallbackFont   string     `json:"fallback_font"`
	FontSize       float64    `json:"font_size"`
	HeaderFontSize float64    `json:"header_font_size"`
	TitleFontSize  float64    `json:"title_font_size"`
	RowHeight      float64    `json:"row_height"`
	Margins        PDFMargins `json:"margins"`
}

// PDFColor represents an RGB color
type PDFColor struct {
	R int `json:"r"`
	G int `json:"g"`
	B int `json:"b"`
}

// PDFMargins represents page margins
type PDFMargins struct {
	Left   float64 `json:"left"`
	Right  float64 `json:"right"`
	Top    float64 `json:"top"`
	Bottom float64 `json:"bottom"`
}

// DefaultPDFOptions returns default PDF options
func DefaultPDFOptions() PDFOptions {
	return PDFOptions{
		PageSize:       "Letter",
		Orientation:    "portrait",
		Currency:       "SAR",
		DateFormat:     "2006-01-02",
		IncludePageNum: true,
		HeaderColor:    PDFColor{R: 211, G: 211, B: 211},
		FallbackFont:   "Helvetica",
		FontSize:       12,
		HeaderFontSize: 14,
		TitleFontSize:  16,
		RowHeight:      8,
		Margins: PDFMargins{
			Left:   12.7,
			Right:  12.7,
			Top:    12.7,
			Bottom: 12.7,
		},
	}
}

// NewPDFGenerator creates a new PDF generator. When fonts is nil or its font
// cannot be loaded the generator uses the core fallback font; check Degraded.
func NewPDFGenerator(options PDFOptions, fonts *FontRegistry) *PDFGenerator {
	orientation := "P"
	if options.Orientation == "landscape" {
		orientation = "L"
	}

	pdf := gofpdf.New(orientation, "mm", options.PageSize, "")
	pdf.SetMargins(options.Margins.Left, options.Margins.Top, options.Margins.Right)
	pdf.SetAutoPageBreak(true, options.Margins.Bottom)
	if options.Author != "" {
		pdf.SetAuthor(options.Author, true)
	}

	g := &PDFGenerator{
		pdf:     pdf,
		options: options,
	}
	g.setupFont(fonts)
	g.setFooter()

	return g
}

func (g *PDFGenerator) setupFont(fonts *FontRegistry) {
	var err error
	if fonts == nil {
		err = fmt.Errorf("no font registry")
	} else {
		var data []byte
		if data, err = fonts.Load(); err == nil {
			if err = g.registerFont(data); err != nil {
				fonts.Reject(err)
			}
		}
	}

	if err == nil {
		g.family = arabicFontFamily
		g.unicode = true
		g.tr = func(s string) string { return s }
		return
	}

	g.degraded = err
	g.family = g.options.FallbackFont
	if g.family == "" {
		g.family = "Helvetica"
	}
	g.tr = g.pdf.UnicodeTranslatorFromDescriptor("")
}

// registerFont adds the UTF-8 font and selects it once. gofpdf only prints
// parse failures, so selecting the family is what proves it registered.
func (g *PDFGenerator) registerFont(data []byte) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("font rejected: %v", r)
		}
		if err != nil {
			g.pdf.ClearError()
		}
	}()

	g.pdf.AddUTF8FontFromBytes(arabicFontFamily, "", data)
	if err = g.pdf.Error(); err != nil {
		return fmt.Errorf("font rejected: %w", err)
	}
	g.pdf.SetFont(arabicFontFamily, "", g.options.FontSize)
	if err = g.pdf.Error(); err != nil {
		return fmt.Errorf("font rejected: %w", err)
	}
	return nil
}

// Degraded returns why the Arabic font is not in use, or nil
func (g *PDFGenerator) Degraded() error {
	return g.degraded
}

// setFont selects the report font. The UTF-8 font is registered in the
// regular style only.
func (g *PDFGenerator) setFont(bold bool, size float64) {
	style := ""
	if bold && !g.unicode {
		style = "B"
	}
	g.pdf.SetFont(g.family, style, size)
}

// text shapes s for display and converts it to the font's encoding
func (g *PDFGenerator) text(s string) string {
	return g.tr(arabic.Shape(s))
}

func (g *PDFGenerator) amount(d decimal.Decimal) string {
	return FormatAmount(d, g.options.Currency)
}

// RenderFullReport lays out the cover, payments, clinic and sales pages
func (g *PDFGenerator) RenderFullReport(data FullReportData) ([]byte, error) {
	g.pdf.SetTitle(labelTitle, true)

	g.addCover(data)
	g.addPaymentReport(data.Payments)
	g.addClinicReport(data.Clinic)
	g.addSalesReport(data.Sales)

	return g.OutputToBytes()
}

// addCover adds the title page
func (g *PDFGenerator) addCover(data FullReportData) {
	g.pdf.AddPage()

	g.setFont(true, g.options.TitleFontSize)
	g.pdf.SetTextColor(0, 0, 0)
	g.pdf.CellFormat(0, 12, g.text(labelTitle), "", 1, "C", false, 0, "")
	g.pdf.Ln(8)

	g.setFont(false, g.options.FontSize)
	g.pdf.CellFormat(0, 8, g.text(labelDatabase+arabic.KeepLTR(data.Database)), "", 1, "R", false, 0, "")
	period := labelPeriodFrom + arabic.KeepLTR(data.Start.Format(g.options.DateFormat)) +
		labelPeriodTo + arabic.KeepLTR(data.End.Format(g.options.DateFormat))
	g.pdf.CellFormat(0, 8, g.text(period), "", 1, "R", false, 0, "")
}

// addSectionHeader starts a new page with a section heading
func (g *PDFGenerator) addSectionHeader(title string) {
	g.pdf.AddPage()
	g.setFont(true, g.options.HeaderFontSize)
	g.pdf.SetTextColor(0, 0, 0)
	g.pdf.CellFormat(0, 10, g.text(title), "", 1, "R", false, 0, "")
	g.pdf.Ln(4)
}

// addPaymentReport adds the payments page
func (g *PDFGenerator) addPaymentReport(rows []PaymentRow) {
	g.addSectionHeader(labelPayments)

	labels := []string{labelType, labelMethod, labelAmount, labelCount}
	widths := []float64{30.48, 30.48, 25.4, 25.4}
	cells := make([][]string, 0, len(rows))
	for _, row := range rows {
		cells = append(cells, []string{
			DirectionLabel(row.IsOutgoing),
			MethodLabel(row.Method),
			g.amount(row.TotalAmount),
			fmt.Sprintf("%d", row.TransactionCount),
		})
	}

	g.addTable(labels, widths, cells)
}

// addClinicReport adds the clinic page as a label/value table
func (g *PDFGenerator) addClinicReport(clinic ClinicData) {
	g.addSectionHeader(labelClinic)

	cells := [][]string{
		{labelClinicTotal, g.amount(clinic.TotalRevenue)},
		{labelClinicLarge, g.amount(clinic.LargeServicesRevenue)},
		{labelClinicNormal, g.amount(clinic.NormalServicesRevenue)},
	}
	g.addTable(nil, []float64{50.8, 50.8}, cells)
}

// addSalesReport adds the sales page
func (g *PDFGenerator) addSalesReport(sales SalesData) {
	g.addSectionHeader(labelSales)

	g.setFont(false, g.options.FontSize)
	g.pdf.CellFormat(0, 8, g.text(labelTotalRevenue+arabic.KeepLTR(g.amount(sales.TotalRevenue))), "", 1, "R", false, 0, "")
	g.pdf.CellFormat(0, 8, g.text(labelTotalProfit+arabic.KeepLTR(g.amount(sales.TotalProfit))), "", 1, "R", false, 0, "")
	g.pdf.Ln(4)

	if len(sales.TopProducts) == 0 {
		return
	}

	g.pdf.CellFormat(0, 8, g.text(labelTopProducts), "", 1, "R", false, 0, "")

	labels := []string{labelProduct, labelRevenue, labelProfit}
	widths := []float64{76.2, 38.1, 38.1}
	cells := make([][]string, 0, len(sales.TopProducts))
	for _, p := range sales.TopProducts {
		cells = append(cells, []string{
			p.ProductName,
			g.amount(p.Revenue),
			g.amount(p.Profit),
		})
	}

	g.addTable(labels, widths, cells)
}

// addTable draws a right-to-left table: the first column is on the right.
// The table is right-aligned to the page margin.
func (g *PDFGenerator) addTable(labels []string, widths []float64, rows [][]string) {
	if len(labels) > 0 {
		g.addTableHeader(labels, widths)
	}
	g.addTableData(labels, rows, widths)
}

// tableLeft is the x position that right-aligns a table of the given widths
func (g *PDFGenerator) tableLeft(widths []float64) float64 {
	pageWidth, _ := g.pdf.GetPageSize()
	total := 0.0
	for _, w := range widths {
		total += w
	}
	left := pageWidth - g.options.Margins.Right - total
	if left < g.options.Margins.Left {
		left = g.options.Margins.Left
	}
	return left
}

// addTableHeader adds the table header row
func (g *PDFGenerator) addTableHeader(labels []string, widths []float64) {
	g.setFont(true, g.options.FontSize)
	g.pdf.SetFillColor(g.options.HeaderColor.R, g.options.HeaderColor.G, g.options.HeaderColor.B)
	g.pdf.SetTextColor(0, 0, 0)

	g.pdf.SetX(g.tableLeft(widths))
	for i := len(labels) - 1; i >= 0; i-- {
		g.pdf.CellFormat(widths[i], g.options.RowHeight, g.fit(labels[i], widths[i]), "1", 0, "R", true, 0, "")
	}
	g.pdf.Ln(-1)
}

// addTableData adds the data rows, repeating the header after page breaks
func (g *PDFGenerator) addTableData(labels []string, rows [][]string, widths []float64) {
	g.setFont(false, g.options.FontSize)
	g.pdf.SetTextColor(0, 0, 0)
	g.pdf.SetFillColor(255, 255, 255)

	_, pageHeight := g.pdf.GetPageSize()
	for _, row := range rows {
		// Check if we need a new page
		if g.pdf.GetY()+g.options.RowHeight > pageHeight-g.options.Margins.Bottom {
			g.pdf.AddPage()
			if len(labels) > 0 {
				g.addTableHeader(labels, widths)
				g.setFont(false, g.options.FontSize)
				g.pdf.SetFillColor(255, 255, 255)
			}
		}

		g.pdf.SetX(g.tableLeft(widths))
		for j := len(row) - 1; j >= 0; j-- {
			g.pdf.CellFormat(widths[j], g.options.RowHeight, g.fit(row[j], widths[j]), "1", 0, "R", false, 0, "")
		}
		g.pdf.Ln(-1)
	}
}

// fit shapes s and drops trailing characters until it fits in width
func (g *PDFGenerator) fit(s string, width float64) string {
	out := g.text(s)
	if g.pdf.GetStringWidth(out) <= width-2 {
		return out
	}

	runes := []rune(s)
	for len(runes) > 1 {
		runes = runes[:len(runes)-1]
		out = g.text(string(runes) + "…")
		if g.pdf.GetStringWidth(out) <= width-2 {
			break
		}
	}
	return out
}

// setFooter sets up the page footer
func (g *PDFGenerator) setFooter() {
	g.pdf.SetFooterFunc(func() {
		if !g.options.IncludePageNum {
			return
		}
		g.pdf.SetY(-10)
		g.setFont(false, 8)
		g.pdf.SetTextColor(128, 128, 128)
		g.pdf.CellFormat(0, 6, fmt.Sprintf("%d", g.pdf.PageNo()), "", 0, "C", false, 0, "")
	})
}

// PageCount returns the number of pages laid out so far
func (g *PDFGenerator) PageCount() int {
	return g.pdf.PageCount()
}

// WriteTo writes the PDF to a writer
func (g *PDFGenerator) WriteTo(w io.Writer) error {
	return g.pdf.Output(w)
}

// OutputToBytes returns the PDF as bytes
func (g *PDFGenerator) OutputToBytes() ([]byte, error) {
	var buf bytes.Buffer
	err := g.pdf.Output(&buf)
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// EncodeBase64 encodes a document for JSON transport
func EncodeBase64(pdf []byte) string {
	return base64.StdEncoding.EncodeToString(pdf)
}
