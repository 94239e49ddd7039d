package reports

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// MongoConnector hands out leases on databases of a shared client.
// The client's connection pool is safe for concurrent use, so leases are
// cheap and concurrent finds on one lease are allowed.
type MongoConnector struct {
	client       *mongo.Client
	queryTimeout time.Duration
	logger       *zap.Logger
}

// NewMongoConnector creates a connector over a connected client
func NewMongoConnector(client *mongo.Client, queryTimeout time.Duration, logger *zap.Logger) *MongoConnector {
	return &MongoConnector{
		client:       client,
		queryTimeout: queryTimeout,
		logger:       logger,
	}
}

// Open implements Connector
func (c *MongoConnector) Open(ctx context.Context, database string) (Lease, error) {
	if c.client == nil {
		return nil, fmt.Errorf("mongo client is not connected")
	}
	return NewMongoRepository(c.client.Database(database), c.queryTimeout, c.logger), nil
}

// MongoRepository implements Source over one database
type MongoRepository struct {
	db           *mongo.Database
	queryTimeout time.Duration
	logger       *zap.Logger
}

// NewMongoRepository creates a repository for db
func NewMongoRepository(db *mongo.Database, queryTimeout time.Duration, logger *zap.Logger) *MongoRepository {
	return &MongoRepository{
		db:           db,
		queryTimeout: queryTimeout,
		logger:       logger,
	}
}

// Close implements Lease. Connections go back to the client pool once each
// cursor is exhausted, so there is nothing left to release here.
func (r *MongoRepository) Close(ctx context.Context) error {
	return nil
}

// FindPayments implements Source
func (r *MongoRepository) FindPayments(ctx context.Context, filter Filter) ([]PaymentRecord, error) {
	var records []PaymentRecord
	if err := r.find(ctx, CollectionPayment, paymentQuery(filter), &records); err != nil {
		return nil, err
	}
	return records, nil
}

// FindClinicVisits implements Source
func (r *MongoRepository) FindClinicVisits(ctx context.Context, filter Filter) ([]ClinicVisit, error) {
	var visits []ClinicVisit
	if err := r.find(ctx, CollectionSale, clinicQuery(filter), &visits); err != nil {
		return nil, err
	}
	return visits, nil
}

// FindSales implements Source
func (r *MongoRepository) FindSales(ctx context.Context, filter Filter) ([]SaleRecord, error) {
	var sales []SaleRecord
	if err := r.find(ctx, CollectionSale, salesQuery(filter), &sales); err != nil {
		return nil, err
	}
	return sales, nil
}

func (r *MongoRepository) find(ctx context.Context, collection string, query bson.D, out any) error {
	if r.queryTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.queryTimeout)
		defer cancel()
	}

	start := time.Now()
	cursor, err := r.db.Collection(collection).Find(ctx, query, options.Find())
	if err != nil {
		return fmt.Errorf("failed to query %s.%s: %w", r.db.Name(), collection, err)
	}
	if err := cursor.All(ctx, out); err != nil {
		return fmt.Errorf("failed to decode %s.%s: %w", r.db.Name(), collection, err)
	}

	r.logger.Debug("Query completed",
		zap.String("database", r.db.Name()),
		zap.String("collection", collection),
		zap.Duration("duration", time.Since(start)),
	)
	return nil
}

func rangeQuery(filter Filter) bson.D {
	return bson.D{
		{Key: "createdAt", Value: bson.D{
			{Key: "$gte", Value: filter.Range.Start},
			{Key: "$lte", Value: filter.Range.End},
		}},
		{Key: "isDeleted", Value: false},
	}
}

func paymentQuery(filter Filter) bson.D {
	return rangeQuery(filter)
}

func clinicQuery(filter Filter) bson.D {
	q := rangeQuery(filter)
	if filter.ResolvedOnly {
		q = append(q, bson.E{Key: "isResolved", Value: true})
	}
	return q
}

func salesQuery(filter Filter) bson.D {
	q := rangeQuery(filter)
	if len(filter.ExcludedContacts) > 0 {
		q = append(q, bson.E{Key: "contactName", Value: bson.D{
			{Key: "$nin", Value: filter.ExcludedContacts},
		}})
	}
	return q
}
