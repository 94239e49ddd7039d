package reports

import (
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/x/bsonx/bsoncore"
)

// Amount is a monetary or quantity value read from the record store.
// Doubles, integers and decimal128 decode into an exact decimal. Anything
// else (null, missing, strings, booleans, documents) is zero, the way the
// store's own $sum skips non-numeric values; the record itself still counts.
type Amount struct {
	decimal.Decimal
}

// NewAmount creates an Amount from a float, for tests and fixtures
func NewAmount(f float64) Amount {
	return Amount{Decimal: decimal.NewFromFloat(f)}
}

// UnmarshalBSONValue implements bson.ValueUnmarshaler
func (a *Amount) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	v := bsoncore.Value{Type: t, Data: data}

	switch t {
	case bsontype.Double:
		f, ok := v.DoubleOK()
		if !ok {
			return fmt.Errorf("malformed double")
		}
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return fmt.Errorf("double %v is not a finite number", f)
		}
		a.Decimal = decimal.NewFromFloat(f)
		return nil
	case bsontype.Int32:
		i, ok := v.Int32OK()
		if !ok {
			return fmt.Errorf("malformed int32")
		}
		a.Decimal = decimal.NewFromInt32(i)
		return nil
	case bsontype.Int64:
		i, ok := v.Int64OK()
		if !ok {
			return fmt.Errorf("malformed int64")
		}
		a.Decimal = decimal.NewFromInt(i)
		return nil
	case bsontype.Decimal128:
		d128, ok := v.Decimal128OK()
		if !ok {
			return fmt.Errorf("malformed decimal128")
		}
		d, err := decimal.NewFromString(d128.String())
		if err != nil {
			return fmt.Errorf("decimal128 %s is not a finite number: %w", d128.String(), err)
		}
		a.Decimal = d
		return nil
	}

	a.Decimal = decimal.Zero
	return nil
}

// PaymentRecord is a document of the Payment collection
type PaymentRecord struct {
	Method     string    `bson:"method"`
	IsOutgoing bool      `bson:"isOutgoing"`
	Amount     Amount    `bson:"amount"`
	CreatedAt  time.Time `bson:"createdAt"`
	IsDeleted  bool      `bson:"isDeleted"`
}

// ServiceLine is a billed clinic service
type ServiceLine struct {
	ServiceName string `bson:"serviceName"`
	Price       Amount `bson:"price"`
	Quantity    Amount `bson:"quantity"`
}

// Revenue is price times quantity
func (l ServiceLine) Revenue() decimal.Decimal {
	return l.Price.Mul(l.Quantity.Decimal)
}

// ClinicVisit is a Sale document seen as a clinic visit
type ClinicVisit struct {
	CreatedAt  time.Time     `bson:"createdAt"`
	IsDeleted  bool          `bson:"isDeleted"`
	IsResolved bool          `bson:"isResolved"`
	Services   []ServiceLine `bson:"services"`
}

// SaleItem is a sold product line
type SaleItem struct {
	ProductName  string `bson:"productName"`
	PricePerUnit Amount `bson:"pricePerUnit"`
	Quantity     Amount `bson:"quantity"`
	Profit       Amount `bson:"profit"`
}

// Revenue is unit price times quantity
func (i SaleItem) Revenue() decimal.Decimal {
	return i.PricePerUnit.Mul(i.Quantity.Decimal)
}

// SaleRecord is a Sale document seen as a product sale
type SaleRecord struct {
	CreatedAt   time.Time  `bson:"createdAt"`
	IsDeleted   bool       `bson:"isDeleted"`
	ContactName string     `bson:"contactName"`
	Items       []SaleItem `bson:"items"`
}
