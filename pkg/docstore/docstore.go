// Package docstore is a small document-store abstraction over BSON with two
// drivers: MongoDB for deployments and an in-process memory store for tests
// and local runs.
//
// Services talk to typed repositories:
//
//	items := docstore.NewRepo[models.Item](store, "items", "Item")
//	list, err := items.Find(ctx, bson.M{"restaurantId": rid}, docstore.SortBy("name"))
package docstore

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
)

var (
	// ErrNotFound is returned by drivers when no document matched.
	ErrNotFound = errors.New("docstore: document not found")
	// ErrDuplicate is returned when a write violates a unique index.
	ErrDuplicate = errors.New("docstore: duplicate key")
)

// DuplicateError reports the fields of the unique index a write violated.
// It matches ErrDuplicate with errors.Is.
type DuplicateError struct {
	Collection string
	Fields     []string
	Err        error
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("docstore: duplicate key in %s %v", e.Collection, e.Fields)
}

func (e *DuplicateError) Is(target error) bool { return target == ErrDuplicate }

func (e *DuplicateError) Unwrap() error { return e.Err }

// Store is a document database.
type Store interface {
	Collection(name string) Collection
	EnsureIndexes(ctx context.Context, indexes ...Index) error
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

// Collection is the driver-level view of one collection. Filters are
// equality maps with optional $in / $ne operators per field.
type Collection interface {
	Find(ctx context.Context, filter bson.M, q Query) ([]bson.Raw, error)
	FindOne(ctx context.Context, filter bson.M) (bson.Raw, error)
	InsertOne(ctx context.Context, doc bson.M) error
	ReplaceOne(ctx context.Context, filter bson.M, doc bson.M) error
	UpdateMany(ctx context.Context, filter bson.M, set bson.M) (int64, error)
	DeleteOne(ctx context.Context, filter bson.M) error
	Count(ctx context.Context, filter bson.M) (int64, error)
}

// Index declares an index on a collection.
type Index struct {
	Collection string
	Fields     []string
	Unique     bool
}

// SortField orders results by one field.
type SortField struct {
	Field string
	Desc  bool
}

// Query carries ordering and paging for Find.
type Query struct {
	Sort  []SortField
	Limit int64
}

// SortBy returns a Query ordered ascending by fields.
func SortBy(fields ...string) Query {
	q := Query{}
	for _, f := range fields {
		q.Sort = append(q.Sort, SortField{Field: f})
	}
	return q
}

// Newest orders by field descending and caps the result at limit (0 = all).
func Newest(field string, limit int64) Query {
	return Query{Sort: []SortField{{Field: field, Desc: true}}, Limit: limit}
}
