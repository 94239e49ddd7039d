package export

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

const fixtureFont = "testdata/DejaVuSansCondensed.ttf"

func sampleReport() FullReportData {
	return FullReportData{
		Database: "Elanam-KhamisMushit",
		Start:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		End:      time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC),
		Payments: []PaymentRow{
			{Method: "cash", IsOutgoing: false, TotalAmount: decimal.NewFromInt(150), TransactionCount: 2},
			{Method: "network", IsOutgoing: true, TotalAmount: decimal.NewFromInt(50), TransactionCount: 1},
		},
		Clinic: ClinicData{
			TotalRevenue:          decimal.NewFromInt(250),
			LargeServicesRevenue:  decimal.NewFromInt(200),
			NormalServicesRevenue: decimal.NewFromInt(50),
		},
		Sales: SalesData{
			TotalRevenue: decimal.RequireFromString("120.5"),
			TotalProfit:  decimal.RequireFromString("30.25"),
			TopProducts: []ProductRow{
				{ProductName: "علف مواشي", Revenue: decimal.NewFromInt(100), Profit: decimal.NewFromInt(25)},
				{ProductName: "Vitamin AD3E", Revenue: decimal.RequireFromString("20.5"), Profit: decimal.RequireFromString("5.25")},
			},
		},
	}
}

func TestRenderFullReport_ProducesPDF(t *testing.T) {
	g := NewPDFGenerator(DefaultPDFOptions(), nil)

	out, err := g.RenderFullReport(sampleReport())

	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
	assert.Equal(t, 4, g.PageCount())
}

func TestRenderFullReport_EmptySectionsStillRender(t *testing.T) {
	data := sampleReport()
	data.Payments = nil
	data.Sales = SalesData{TotalRevenue: decimal.Zero, TotalProfit: decimal.Zero, TopProducts: []ProductRow{}}

	g := NewPDFGenerator(DefaultPDFOptions(), nil)
	out, err := g.RenderFullReport(data)

	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
	assert.Equal(t, 4, g.PageCount())
}

func TestRenderFullReport_LongTablesBreakPages(t *testing.T) {
	data := sampleReport()
	data.Payments = make([]PaymentRow, 0, 200)
	for i := 0; i < 200; i++ {
		data.Payments = append(data.Payments, PaymentRow{
			Method:           fmt.Sprintf("method-%d", i),
			TotalAmount:      decimal.NewFromInt(int64(i)),
			TransactionCount: 1,
		})
	}

	g := NewPDFGenerator(DefaultPDFOptions(), nil)
	out, err := g.RenderFullReport(data)

	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
	assert.Greater(t, g.PageCount(), 6)
}

func TestNewPDFGenerator_FallsBackWithoutFont(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	fonts := NewFontRegistry(filepath.Join(t.TempDir(), "missing.ttf"), zap.New(core))

	first := NewPDFGenerator(DefaultPDFOptions(), fonts)
	second := NewPDFGenerator(DefaultPDFOptions(), fonts)

	assert.Error(t, first.Degraded())
	assert.Error(t, second.Degraded())
	assert.Equal(t, 1, logs.Len(), "missing font is reported once")

	out, err := first.RenderFullReport(sampleReport())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestNewPDFGenerator_CorruptFontFallsBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.ttf")
	require.NoError(t, os.WriteFile(path, []byte("this file holds plain text, not a TrueType font"), 0o600))

	core, logs := observer.New(zapcore.WarnLevel)
	fonts := NewFontRegistry(path, zap.New(core))

	first := NewPDFGenerator(DefaultPDFOptions(), fonts)
	second := NewPDFGenerator(DefaultPDFOptions(), fonts)

	assert.True(t, fonts.Available(), "the bytes load, the renderer rejects them")
	require.Error(t, first.Degraded())
	assert.Error(t, second.Degraded())
	assert.Equal(t, 1, logs.FilterMessageSnippet("rejected").Len())

	out, err := first.RenderFullReport(sampleReport())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
	assert.Equal(t, 4, first.PageCount())
}

func TestRenderFullReport_WithUTF8Font(t *testing.T) {
	fonts := NewFontRegistry(fixtureFont, zap.NewNop())
	require.True(t, fonts.Available())

	g := NewPDFGenerator(DefaultPDFOptions(), fonts)
	require.NoError(t, g.Degraded())

	out, err := g.RenderFullReport(sampleReport())

	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
	assert.Equal(t, 4, g.PageCount())
	assert.Contains(t, string(out), "/BaseFont /utf8arabic")
}

func TestRenderFullReport_UTF8FontRepeatsHeaderOnPageBreak(t *testing.T) {
	data := sampleReport()
	data.Payments = make([]PaymentRow, 0, 200)
	for i := 0; i < 200; i++ {
		data.Payments = append(data.Payments, PaymentRow{
			Method:           "network",
			IsOutgoing:       i%2 == 0,
			TotalAmount:      decimal.NewFromInt(int64(i * 1000)),
			TransactionCount: int64(i),
		})
	}

	g := NewPDFGenerator(DefaultPDFOptions(), NewFontRegistry(fixtureFont, zap.NewNop()))
	require.NoError(t, g.Degraded())
	g.pdf.SetCompression(false)

	out, err := g.RenderFullReport(data)
	require.NoError(t, err, "bold is never requested from the UTF-8 font")

	// cover, clinic and sales take one page each
	paymentPages := g.PageCount() - 3
	require.Greater(t, paymentPages, 1)

	// every header cell is a filled, bordered rectangle: four per payments
	// page plus three for the sales table
	assert.Equal(t, 4*paymentPages+3, strings.Count(string(out), " re B "))
	assert.NotContains(t, string(out), "Helvetica")
}

func TestFontRegistry_EmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.ttf")
	require.NoError(t, os.WriteFile(path, nil, 0o600))

	fonts := NewFontRegistry(path, nil)

	assert.False(t, fonts.Available())
	_, err := fonts.Load()
	assert.Error(t, err)
}

func TestFontRegistry_NoPath(t *testing.T) {
	fonts := NewFontRegistry("", zap.NewNop())

	assert.False(t, fonts.Available())
}

func TestEncodeBase64_RoundTrip(t *testing.T) {
	g := NewPDFGenerator(DefaultPDFOptions(), nil)
	out, err := g.RenderFullReport(sampleReport())
	require.NoError(t, err)

	decoded, err := base64.StdEncoding.DecodeString(EncodeBase64(out))

	require.NoError(t, err)
	assert.Equal(t, out, decoded)
}

func TestLabels(t *testing.T) {
	assert.Equal(t, "صادر", DirectionLabel(true))
	assert.Equal(t, "وارد", DirectionLabel(false))
	assert.Equal(t, "شبكة", MethodLabel("network"))
	assert.Equal(t, "كاش", MethodLabel("cash"))
	assert.Equal(t, "كاش", MethodLabel("bank-transfer"))
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "150.00 SAR", FormatAmount(decimal.NewFromInt(150), "SAR"))
	assert.Equal(t, "1234.50 SAR", FormatAmount(decimal.RequireFromString("1234.5"), "SAR"))
	assert.Equal(t, "0.00", FormatAmount(decimal.Zero, ""))
}
