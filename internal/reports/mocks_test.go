package reports

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// MockLease is a mock implementation of the Lease interface
type MockLease struct {
	mock.Mock
}

func (m *MockLease) FindPayments(ctx context.Context, filter Filter) ([]PaymentRecord, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]PaymentRecord), args.Error(1)
}

func (m *MockLease) FindClinicVisits(ctx context.Context, filter Filter) ([]ClinicVisit, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ClinicVisit), args.Error(1)
}

func (m *MockLease) FindSales(ctx context.Context, filter Filter) ([]SaleRecord, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]SaleRecord), args.Error(1)
}

func (m *MockLease) Close(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockConnector is a mock implementation of the Connector interface
type MockConnector struct {
	mock.Mock
}

func (m *MockConnector) Open(ctx context.Context, database string) (Lease, error) {
	args := m.Called(ctx, database)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(Lease), args.Error(1)
}

func day(y int, mo time.Month, d int) time.Time {
	return time.Date(y, mo, d, 0, 0, 0, 0, time.UTC)
}

func year2024() TimeRange {
	return TimeRange{Start: day(2024, 1, 1), End: day(2024, 12, 31)}
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func amt(s string) Amount {
	return Amount{Decimal: dec(s)}
}

// khamisPayments is the worked example: two cash receipts and one outgoing
// network payment.
func khamisPayments() []PaymentRecord {
	return []PaymentRecord{
		{Method: "cash", IsOutgoing: false, Amount: amt("100"), CreatedAt: day(2024, 3, 1)},
		{Method: "network", IsOutgoing: true, Amount: amt("50"), CreatedAt: day(2024, 3, 2)},
		{Method: "cash", IsOutgoing: false, Amount: amt("50"), CreatedAt: day(2024, 3, 3)},
	}
}

func clinicVisits() []ClinicVisit {
	return []ClinicVisit{
		{
			CreatedAt:  day(2024, 5, 1),
			IsResolved: true,
			Services: []ServiceLine{
				{ServiceName: "كشف لارج", Price: amt("100"), Quantity: amt("2")},
				{ServiceName: "تطعيم", Price: amt("50"), Quantity: amt("1")},
			},
		},
	}
}
