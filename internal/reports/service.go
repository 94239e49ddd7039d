package reports

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mahmoud206/vetratech-mobile-api/internal/reports/export"
)

// ServiceConfig holds the fixed configuration of the report service
type ServiceConfig struct {
	Datasets map[string]string
	Engine   EngineConfig
	PDF      export.PDFOptions
	Excel    export.ExcelOptions
	CSV      export.CSVOptions
}

// Service provides business logic for reporting operations
type Service struct {
	connector Connector
	engine    *Engine
	fonts     *export.FontRegistry
	datasets  map[string]string
	pdf       export.PDFOptions
	excel     export.ExcelOptions
	csv       export.CSVOptions
	logger    *zap.Logger
}

// NewService creates a new reports service
func NewService(connector Connector, fonts *export.FontRegistry, cfg ServiceConfig, logger *zap.Logger) *Service {
	datasets := make(map[string]string, len(cfg.Datasets))
	for k, v := range cfg.Datasets {
		datasets[k] = v
	}

	return &Service{
		connector: connector,
		engine:    NewEngine(cfg.Engine),
		fonts:     fonts,
		datasets:  datasets,
		pdf:       cfg.PDF,
		excel:     cfg.Excel,
		csv:       cfg.CSV,
		logger:    logger,
	}
}

// =====================================================
// Report Operations
// =====================================================

// GenerateFullReport computes all three sections for the requested dataset and
// renders them as a PDF
func (s *Service) GenerateFullReport(ctx context.Context, req *ReportRequest) (*FullReportResponse, error) {
	bundle, err := s.collect(ctx, req)
	if err != nil {
		return nil, err
	}

	generator := export.NewPDFGenerator(s.pdf, s.fonts)
	if reason := generator.Degraded(); reason != nil {
		s.logger.Debug("Rendering report without Arabic font",
			zap.String("database", bundle.Dataset),
			zap.Error(reason),
		)
	}

	pdf, err := generator.RenderFullReport(toExportData(bundle))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRendering, err)
	}
	bundle.PDF = pdf

	s.logger.Info("Full report generated",
		zap.String("database", bundle.Dataset),
		zap.Time("start", bundle.Range.Start),
		zap.Time("end", bundle.Range.End),
		zap.Int("payment_rows", len(bundle.Payments)),
		zap.Int("top_products", len(bundle.Sales.TopProducts)),
		zap.Int("pdf_size", len(pdf)),
	)

	return NewFullReportResponse(bundle, export.EncodeBase64(pdf)), nil
}

// ExportWorkbook computes all three sections and writes them as an xlsx workbook
func (s *Service) ExportWorkbook(ctx context.Context, req *ReportRequest) ([]byte, error) {
	bundle, err := s.collect(ctx, req)
	if err != nil {
		return nil, err
	}

	exporter := export.NewWorkbookExporter(s.excel)
	defer exporter.Close()

	data, err := exporter.RenderFullReport(toExportData(bundle))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRendering, err)
	}

	s.logger.Info("Workbook exported",
		zap.String("database", bundle.Dataset),
		zap.Int("size", len(data)),
	)
	return data, nil
}

// ExportCSV computes the report and writes one section as CSV
func (s *Service) ExportCSV(ctx context.Context, req *ReportRequest, section string) ([]byte, error) {
	switch section {
	case export.SectionPayments, export.SectionClinic, export.SectionSales:
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidSection, section)
	}

	bundle, err := s.collect(ctx, req)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := export.NewCSVExporter(&buf, s.csv).RenderSection(toExportData(bundle), section); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRendering, err)
	}

	s.logger.Info("CSV section exported",
		zap.String("database", bundle.Dataset),
		zap.String("section", section),
		zap.Int("size", buf.Len()),
	)
	return buf.Bytes(), nil
}

// Datasets returns the allowed dataset keys in sorted order
func (s *Service) Datasets() []string {
	keys := make([]string, 0, len(s.datasets))
	for k := range s.datasets {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ResolveDataset maps a dataset key to its database name
func (s *Service) ResolveDataset(key string) (string, error) {
	db, ok := s.datasets[key]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidDataset, key)
	}
	return db, nil
}

// collect opens the dataset and runs the three aggregations concurrently
func (s *Service) collect(ctx context.Context, req *ReportRequest) (*ReportBundle, error) {
	dbName, err := s.ResolveDataset(req.DBOption)
	if err != nil {
		return nil, err
	}

	lease, err := s.connector.Open(ctx, dbName)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open %s: %v", ErrDataSource, dbName, err)
	}
	defer func() {
		if cerr := lease.Close(ctx); cerr != nil {
			s.logger.Warn("Failed to release data source", zap.String("database", dbName), zap.Error(cerr))
		}
	}()

	r := req.Range()
	bundle := &ReportBundle{Dataset: dbName, Range: r}

	start := time.Now()
	var wg sync.WaitGroup
	var mu sync.Mutex
	var errs []error

	wg.Add(3)

	// Payments
	go func() {
		defer wg.Done()
		payments, err := s.engine.PaymentSummary(ctx, lease, r)
		mu.Lock()
		defer mu.Unlock()
		if err != nil {
			errs = append(errs, fmt.Errorf("payment summary: %w", err))
			return
		}
		bundle.Payments = payments
	}()

	// Clinic
	go func() {
		defer wg.Done()
		clinic, err := s.engine.ClinicSummary(ctx, lease, r)
		mu.Lock()
		defer mu.Unlock()
		if err != nil {
			errs = append(errs, fmt.Errorf("clinic summary: %w", err))
			return
		}
		bundle.Clinic = clinic
	}()

	// Sales
	go func() {
		defer wg.Done()
		sales, err := s.engine.SalesSummary(ctx, lease, r)
		mu.Lock()
		defer mu.Unlock()
		if err != nil {
			errs = append(errs, fmt.Errorf("sales summary: %w", err))
			return
		}
		bundle.Sales = sales
	}()

	wg.Wait()

	if len(errs) > 0 {
		err := errors.Join(errs...)
		s.logger.Error("Report aggregation failed", zap.String("database", dbName), zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrDataSource, err)
	}

	s.logger.Debug("Aggregations completed",
		zap.String("database", dbName),
		zap.Duration("duration", time.Since(start)),
	)
	return bundle, nil
}

func toExportData(b *ReportBundle) export.FullReportData {
	payments := make([]export.PaymentRow, 0, len(b.Payments))
	for _, p := range b.Payments {
		payments = append(payments, export.PaymentRow{
			Method:           p.Method,
			IsOutgoing:       p.IsOutgoing,
			TotalAmount:      p.TotalAmount,
			TransactionCount: p.TransactionCount,
		})
	}

	products := make([]export.ProductRow, 0, len(b.Sales.TopProducts))
	for _, p := range b.Sales.TopProducts {
		products = append(products, export.ProductRow{
			ProductName: p.ProductName,
			Revenue:     p.Revenue,
			Profit:      p.Profit,
		})
	}

	return export.FullReportData{
		Database: b.Dataset,
		Start:    b.Range.Start,
		End:      b.Range.End,
		Payments: payments,
		Clinic: export.ClinicData{
			TotalRevenue:          b.Clinic.TotalRevenue,
			LargeServicesRevenue:  b.Clinic.LargeServicesRevenue,
			NormalServicesRevenue: b.Clinic.NormalServicesRevenue,
		},
		Sales: export.SalesData{
			TotalRevenue: b.Sales.TotalRevenue,
			TotalProfit:  b.Sales.TotalProfit,
			TopProducts:  products,
		},
	}
}
