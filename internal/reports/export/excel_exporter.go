package export

import (
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// Sheet names of the report workbook
const (
	SheetPayments = "Payments"
	SheetClinic   = "Clinic"
	SheetSales    = "Sales"
)

// ExcelOptions configures Excel export behavior
type ExcelOptions struct {
	FreezeHeader bool              `json:"freeze_header"`
	RightToLeft  bool              `json:"right_to_left"`
	NumberFormat string            `json:"number_format"`
	HeaderStyle  *ExcelStyleConfig `json:"header_style,omitempty"`
	DataStyle    *ExcelStyleConfig `json:"data_style,omitempty"`
	AutoWidth    bool              `json:"auto_width"`
}

// ExcelStyleConfig defines style for cells
type ExcelStyleConfig struct {
	FontBold  bool   `json:"font_bold"`
	FontSize  int    `json:"font_size"`
	FontColor string `json:"font_color"`
	FillColor string `json:"fill_color"`
	Alignment string `json:"alignment"` // left, center, right
	Border    bool   `json:"border"`
	WrapText  bool   `json:"wrap_text"`
}

// DefaultExcelOptions returns default Excel export options
func DefaultExcelOptions() ExcelOptions {
	return ExcelOptions{
		FreezeHeader: true,
		RightToLeft:  true,
		NumberFormat: "#,##0.00",
		AutoWidth:    true,
		HeaderStyle: &ExcelStyleConfig{
			FontBold:  true,
			FontSize:  12,
			FillColor: "D3D3D3",
			FontColor: "000000",
			Alignment: "right",
			Border:    true,
		},
		DataStyle: &ExcelStyleConfig{
			FontSize:  11,
			Alignment: "right",
			Border:    true,
		},
	}
}

// WorkbookExporter writes the full report as one sheet per section
type WorkbookExporter struct {
	file    *excelize.File
	options ExcelOptions

	headerStyle int
	dataStyle   int
	numberStyle int
}

// NewWorkbookExporter creates a workbook exporter
func NewWorkbookExporter(options ExcelOptions) *WorkbookExporter {
	return &WorkbookExporter{
		file:    excelize.NewFile(),
		options: options,
	}
}

// RenderFullReport writes the payments, clinic and sales sheets and returns
// the xlsx bytes
func (e *WorkbookExporter) RenderFullReport(data FullReportData) ([]byte, error) {
	if err := e.prepareStyles(); err != nil {
		return nil, err
	}

	if err := e.file.SetDocProps(&excelize.DocProperties{
		Title:       labelTitle,
		Subject:     data.Database,
		Description: fmt.Sprintf("%s - %s", data.Start.Format("2006-01-02"), data.End.Format("2006-01-02")),
	}); err != nil {
		return nil, fmt.Errorf("failed to set document properties: %w", err)
	}

	for _, section := range Sections(data) {
		if err := e.addSheet(section.Sheet, section.Columns, section.Rows); err != nil {
			return nil, err
		}
	}

	// Remove the default sheet once the report sheets exist
	if err := e.file.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("failed to remove default sheet: %w", err)
	}
	if idx, err := e.file.GetSheetIndex(SheetPayments); err == nil {
		e.file.SetActiveSheet(idx)
	}

	buf, err := e.file.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func (e *WorkbookExporter) prepareStyles() error {
	if e.options.HeaderStyle != nil {
		style, err := e.createStyle(e.options.HeaderStyle, "")
		if err != nil {
			return fmt.Errorf("failed to create header style: %w", err)
		}
		e.headerStyle = style
	}

	if e.options.DataStyle != nil {
		style, err := e.createStyle(e.options.DataStyle, "")
		if err != nil {
			return fmt.Errorf("failed to create data style: %w", err)
		}
		e.dataStyle = style

		style, err = e.createStyle(e.options.DataStyle, e.options.NumberFormat)
		if err != nil {
			return fmt.Errorf("failed to create number style: %w", err)
		}
		e.numberStyle = style
	}
	return nil
}

// addSheet adds a sheet with a header row and data rows
func (e *WorkbookExporter) addSheet(name string, columns []string, rows [][]interface{}) error {
	if _, err := e.file.NewSheet(name); err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}

	if e.options.RightToLeft {
		rtl := true
		if err := e.file.SetSheetView(name, -1, &excelize.ViewOptions{RightToLeft: &rtl}); err != nil {
			return fmt.Errorf("failed to set sheet view: %w", err)
		}
	}

	// Track max width for each column
	columnWidths := make([]float64, len(columns))

	for i, col := range columns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := e.file.SetCellValue(name, cell, col); err != nil {
			return fmt.Errorf("failed to set header: %w", err)
		}
		if e.headerStyle > 0 {
			e.file.SetCellStyle(name, cell, cell, e.headerStyle)
		}
		columnWidths[i] = estimateCellWidth(col)
	}

	for rowIdx, row := range rows {
		for colIdx, val := range row {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			if err := e.setCellValue(name, cell, val); err != nil {
				return fmt.Errorf("failed to set cell value: %w", err)
			}
			if colIdx < len(columnWidths) {
				if w := estimateCellWidth(val); w > columnWidths[colIdx] {
					columnWidths[colIdx] = w
				}
			}
		}
	}

	// Freeze header row
	if e.options.FreezeHeader {
		e.file.SetPanes(name, &excelize.Panes{
			Freeze:      true,
			Split:       false,
			XSplit:      0,
			YSplit:      1,
			TopLeftCell: "A2",
			ActivePane:  "bottomLeft",
		})
	}

	// Apply column widths
	if e.options.AutoWidth {
		for colIdx, width := range columnWidths {
			colName, _ := excelize.ColumnNumberToName(colIdx + 1)
			// Min width 10, max width 50
			if width < 10 {
				width = 10
			}
			if width > 50 {
				width = 50
			}
			e.file.SetColWidth(name, colName, colName, width)
		}
	}

	return nil
}

// setCellValue sets a cell value with appropriate formatting
func (e *WorkbookExporter) setCellValue(sheet, cell string, val interface{}) error {
	switch v := val.(type) {
	case decimal.Decimal:
		f, _ := v.Float64()
		if err := e.file.SetCellValue(sheet, cell, f); err != nil {
			return err
		}
		if e.numberStyle > 0 {
			return e.file.SetCellStyle(sheet, cell, cell, e.numberStyle)
		}
		return nil
	default:
		if err := e.file.SetCellValue(sheet, cell, v); err != nil {
			return err
		}
		if e.dataStyle > 0 {
			return e.file.SetCellStyle(sheet, cell, cell, e.dataStyle)
		}
		return nil
	}
}

// createStyle creates an Excel style from config
func (e *WorkbookExporter) createStyle(config *ExcelStyleConfig, numFmt string) (int, error) {
	style := &excelize.Style{}

	// Font
	style.Font = &excelize.Font{
		Bold: config.FontBold,
		Size: float64(config.FontSize),
	}
	if config.FontColor != "" {
		style.Font.Color = config.FontColor
	}

	// Fill
	if config.FillColor != "" {
		style.Fill = excelize.Fill{
			Type:    "pattern",
			Pattern: 1,
			Color:   []string{config.FillColor},
		}
	}

	// Alignment
	if config.Alignment != "" || config.WrapText {
		style.Alignment = &excelize.Alignment{
			Horizontal: config.Alignment,
			WrapText:   config.WrapText,
		}
	}

	// Border
	if config.Border {
		style.Border = []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
		}
	}

	if numFmt != "" {
		style.CustomNumFmt = &numFmt
	}

	return e.file.NewStyle(style)
}

// estimateCellWidth estimates the display width of a cell value
func estimateCellWidth(val interface{}) float64 {
	if val == nil {
		return 0
	}

	var str string
	switch v := val.(type) {
	case decimal.Decimal:
		str = v.StringFixed(2)
	default:
		str = fmt.Sprintf("%v", v)
	}
	// Rough estimate: 1 character = 1 unit width, plus padding
	return float64(utf8.RuneCountInString(str))*1.2 + 2
}

// WriteTo writes the Excel file to a writer
func (e *WorkbookExporter) WriteTo(w io.Writer) error {
	return e.file.Write(w)
}

// Close closes the Excel file
func (e *WorkbookExporter) Close() error {
	return e.file.Close()
}
