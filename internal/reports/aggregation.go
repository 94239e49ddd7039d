package reports

import (
	"context"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// EngineConfig holds the fixed inputs of the aggregations
type EngineConfig struct {
	ExcludedContacts   []string
	LargeServiceMarker string
	TopProductsLimit   int
}

// Engine computes the three report sections from a Source.
// It holds no per-request state and is safe for concurrent use.
type Engine struct {
	excluded    map[string]struct{}
	excludedAll []string
	largeMarker string
	topLimit    int
}

// NewEngine creates an aggregation engine
func NewEngine(cfg EngineConfig) *Engine {
	excluded := make(map[string]struct{}, len(cfg.ExcludedContacts))
	for _, name := range cfg.ExcludedContacts {
		excluded[name] = struct{}{}
	}

	limit := cfg.TopProductsLimit
	if limit <= 0 {
		limit = DefaultTopProductsLimit
	}

	return &Engine{
		excluded:    excluded,
		excludedAll: append([]string(nil), cfg.ExcludedContacts...),
		largeMarker: cfg.LargeServiceMarker,
		topLimit:    limit,
	}
}

// PaymentSummary returns one row per (method, direction) in the range
func (e *Engine) PaymentSummary(ctx context.Context, src Source, r TimeRange) ([]PaymentSummary, error) {
	records, err := src.FindPayments(ctx, Filter{Range: r})
	if err != nil {
		return nil, err
	}
	return SummarizePayments(records, r), nil
}

// ClinicSummary returns the clinic service revenue split for resolved visits
func (e *Engine) ClinicSummary(ctx context.Context, src Source, r TimeRange) (ClinicSummary, error) {
	visits, err := src.FindClinicVisits(ctx, Filter{Range: r, ResolvedOnly: true})
	if err != nil {
		return ClinicSummary{}, err
	}
	return SummarizeClinic(visits, r, e.largeMarker), nil
}

// SalesSummary returns sales totals and the top lines by revenue
func (e *Engine) SalesSummary(ctx context.Context, src Source, r TimeRange) (SalesSummary, error) {
	sales, err := src.FindSales(ctx, Filter{Range: r, ExcludedContacts: e.excludedAll})
	if err != nil {
		return SalesSummary{}, err
	}
	return SummarizeSales(sales, r, e.excluded, e.topLimit), nil
}

type paymentKey struct {
	method     string
	isOutgoing bool
}

// SummarizePayments groups payments by method and direction. Rows follow the
// order in which each group is first seen.
func SummarizePayments(records []PaymentRecord, r TimeRange) []PaymentSummary {
	rows := make([]PaymentSummary, 0)
	index := make(map[paymentKey]int)

	for _, rec := range records {
		if rec.IsDeleted || !r.Contains(rec.CreatedAt) {
			continue
		}

		key := paymentKey{method: rec.Method, isOutgoing: rec.IsOutgoing}
		i, ok := index[key]
		if !ok {
			i = len(rows)
			index[key] = i
			rows = append(rows, PaymentSummary{
				Method:      rec.Method,
				IsOutgoing:  rec.IsOutgoing,
				TotalAmount: decimal.Zero,
			})
		}
		rows[i].TotalAmount = rows[i].TotalAmount.Add(rec.Amount.Decimal)
		rows[i].TransactionCount++
	}

	return rows
}

// SummarizeClinic totals service revenue of resolved visits. A service is
// large when its name contains marker.
func SummarizeClinic(visits []ClinicVisit, r TimeRange, marker string) ClinicSummary {
	summary := ClinicSummary{
		TotalRevenue:          decimal.Zero,
		LargeServicesRevenue:  decimal.Zero,
		NormalServicesRevenue: decimal.Zero,
	}

	for _, v := range visits {
		if v.IsDeleted || !v.IsResolved || !r.Contains(v.CreatedAt) {
			continue
		}
		for _, line := range v.Services {
			revenue := line.Revenue()
			summary.TotalRevenue = summary.TotalRevenue.Add(revenue)
			if marker != "" && strings.Contains(line.ServiceName, marker) {
				summary.LargeServicesRevenue = summary.LargeServicesRevenue.Add(revenue)
			} else {
				summary.NormalServicesRevenue = summary.NormalServicesRevenue.Add(revenue)
			}
		}
	}

	return summary
}

// SummarizeSales totals revenue and profit of sale lines and keeps the limit
// lines with the highest revenue. Lines are not merged by product.
func SummarizeSales(sales []SaleRecord, r TimeRange, excluded map[string]struct{}, limit int) SalesSummary {
	if limit <= 0 {
		limit = DefaultTopProductsLimit
	}

	summary := SalesSummary{
		TotalRevenue: decimal.Zero,
		TotalProfit:  decimal.Zero,
		TopProducts:  make([]TopProduct, 0),
	}

	lines := make([]TopProduct, 0)
	for _, s := range sales {
		if s.IsDeleted || !r.Contains(s.CreatedAt) {
			continue
		}
		if _, skip := excluded[s.ContactName]; skip {
			continue
		}
		for _, item := range s.Items {
			line := TopProduct{
				ProductName: item.ProductName,
				Revenue:     item.Revenue(),
				Profit:      item.Profit.Decimal,
			}
			summary.TotalRevenue = summary.TotalRevenue.Add(line.Revenue)
			summary.TotalProfit = summary.TotalProfit.Add(line.Profit)
			lines = append(lines, line)
		}
	}

	sort.SliceStable(lines, func(i, j int) bool {
		return lines[i].Revenue.GreaterThan(lines[j].Revenue)
	})
	if len(lines) > limit {
		lines = lines[:limit]
	}
	summary.TopProducts = append(summary.TopProducts, lines...)

	return summary
}
