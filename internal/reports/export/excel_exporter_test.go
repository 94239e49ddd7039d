package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestWorkbookExporter_RenderFullReport(t *testing.T) {
	exporter := NewWorkbookExporter(DefaultExcelOptions())
	defer exporter.Close()

	out, err := exporter.RenderFullReport(sampleReport())
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(out))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetPayments, SheetClinic, SheetSales}, f.GetSheetList())

	header, err := f.GetCellValue(SheetPayments, "A1")
	require.NoError(t, err)
	assert.Equal(t, "النوع", header)

	direction, _ := f.GetCellValue(SheetPayments, "A2")
	method, _ := f.GetCellValue(SheetPayments, "B2")
	amount, _ := f.GetCellValue(SheetPayments, "C2", excelize.Options{RawCellValue: true})
	count, _ := f.GetCellValue(SheetPayments, "D2")
	assert.Equal(t, "وارد", direction)
	assert.Equal(t, "كاش", method)
	assert.Equal(t, "150", amount)
	assert.Equal(t, "2", count)

	outgoing, _ := f.GetCellValue(SheetPayments, "A3")
	network, _ := f.GetCellValue(SheetPayments, "B3")
	assert.Equal(t, "صادر", outgoing)
	assert.Equal(t, "شبكة", network)

	clinicRows, err := f.GetRows(SheetClinic)
	require.NoError(t, err)
	require.Len(t, clinicRows, 4)
	assert.Equal(t, "خدمات لارج", clinicRows[2][0])

	product, _ := f.GetCellValue(SheetSales, "A2")
	assert.Equal(t, "علف مواشي", product)
}

func TestWorkbookExporter_EmptyReport(t *testing.T) {
	data := sampleReport()
	data.Payments = nil
	data.Sales.TopProducts = nil

	exporter := NewWorkbookExporter(DefaultExcelOptions())
	defer exporter.Close()

	out, err := exporter.RenderFullReport(data)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(out))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(SheetPayments)
	require.NoError(t, err)
	assert.Len(t, rows, 1, "header only")
}
