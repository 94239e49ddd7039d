package reports

import (
	"context"
)

// Filter describes which documents a report reads. Adapters push it down to
// the store; the engine applies it again in memory.
type Filter struct {
	Range            TimeRange
	ResolvedOnly     bool
	ExcludedContacts []string
}

// Source defines read access to a single dataset. Deleted documents are never
// returned.
type Source interface {
	FindPayments(ctx context.Context, filter Filter) ([]PaymentRecord, error)
	FindClinicVisits(ctx context.Context, filter Filter) ([]ClinicVisit, error)
	FindSales(ctx context.Context, filter Filter) ([]SaleRecord, error)
}

// Lease is a Source bound to one dataset for the lifetime of a request.
// Close must be called on every path.
type Lease interface {
	Source
	Close(ctx context.Context) error
}

// Connector opens leases on named databases
type Connector interface {
	Open(ctx context.Context, database string) (Lease, error)
}
