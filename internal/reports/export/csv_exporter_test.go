package export

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readCSV(t *testing.T, s string) [][]string {
	t.Helper()
	records, err := csv.NewReader(strings.NewReader(strings.TrimPrefix(s, utf8BOM))).ReadAll()
	require.NoError(t, err)
	return records
}

func TestCSVExporter_Payments(t *testing.T) {
	var buf bytes.Buffer
	exporter := NewCSVExporter(&buf, DefaultCSVOptions())

	require.NoError(t, exporter.RenderSection(sampleReport(), SectionPayments))

	assert.True(t, strings.HasPrefix(buf.String(), utf8BOM))
	records := readCSV(t, buf.String())
	require.Len(t, records, 3)
	assert.Equal(t, []string{"النوع", "الطريقة", "المبلغ", "عدد المعاملات"}, records[0])
	assert.Equal(t, []string{"وارد", "كاش", "150.00", "2"}, records[1])
	assert.Equal(t, "صادر", records[2][0])
}

func TestCSVExporter_ClinicAndSales(t *testing.T) {
	var clinic bytes.Buffer
	require.NoError(t, NewCSVExporter(&clinic, DefaultCSVOptions()).RenderSection(sampleReport(), SectionClinic))
	clinicRecords := readCSV(t, clinic.String())
	require.Len(t, clinicRecords, 4)
	assert.Equal(t, "خدمات لارج", clinicRecords[2][0])

	opts := DefaultCSVOptions()
	opts.WriteBOM = false
	opts.Delimiter = ';'
	var sales bytes.Buffer
	require.NoError(t, NewCSVExporter(&sales, opts).RenderSection(sampleReport(), SectionSales))

	assert.False(t, strings.HasPrefix(sales.String(), utf8BOM))
	assert.Contains(t, sales.String(), "علف مواشي;")
}

func TestCSVExporter_UnknownSection(t *testing.T) {
	var buf bytes.Buffer
	err := NewCSVExporter(&buf, DefaultCSVOptions()).RenderSection(sampleReport(), "inventory")

	assert.ErrorIs(t, err, ErrUnknownSection)
	assert.Empty(t, buf.String())
}
