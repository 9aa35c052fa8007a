package docstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/shashiranjanraj/pantry/pkg/apperr"
	"github.com/shashiranjanraj/pantry/pkg/metrics"
)

// Repo is a typed repository for documents of type T. Driver errors are
// translated into apperr codes using the entity label.
type Repo[T any] struct {
	col    Collection
	name   string
	entity string
}

func NewRepo[T any](s Store, collection, entity string) *Repo[T] {
	return &Repo[T]{col: s.Collection(collection), name: collection, entity: entity}
}

func (r *Repo[T]) op(name string) string { return "docstore." + r.name + "." + name }

func (r *Repo[T]) Find(ctx context.Context, filter bson.M, q Query) ([]T, error) {
	defer metrics.ObserveStoreOp(r.name, "find", time.Now())

	raws, err := r.col.Find(ctx, filter, q)
	if err != nil {
		return nil, apperr.Internal(r.op("Find"), err)
	}
	out := make([]T, 0, len(raws))
	for _, raw := range raws {
		var doc T
		if err := bson.Unmarshal(raw, &doc); err != nil {
			return nil, apperr.Internal(r.op("Find"), err)
		}
		out = append(out, doc)
	}
	return out, nil
}

func (r *Repo[T]) FindOne(ctx context.Context, filter bson.M) (*T, error) {
	defer metrics.ObserveStoreOp(r.name, "find_one", time.Now())

	raw, err := r.col.FindOne(ctx, filter)
	if err != nil {
		return nil, r.translate("FindOne", err)
	}
	var doc T
	if err := bson.Unmarshal(raw, &doc); err != nil {
		return nil, apperr.Internal(r.op("FindOne"), err)
	}
	return &doc, nil
}

// Insert writes doc, assigning a fresh _id when it has none. The assigned id
// is decoded back into doc.
func (r *Repo[T]) Insert(ctx context.Context, doc *T) error {
	defer metrics.ObserveStoreOp(r.name, "insert", time.Now())

	m, err := toM(doc)
	if err != nil {
		return apperr.Internal(r.op("Insert"), err)
	}
	if id, ok := m["_id"].(primitive.ObjectID); !ok || id.IsZero() {
		m["_id"] = primitive.NewObjectID()
		if err := fromM(m, doc); err != nil {
			return apperr.Internal(r.op("Insert"), err)
		}
	}
	if err := r.col.InsertOne(ctx, m); err != nil {
		return r.translate("Insert", err)
	}
	return nil
}

// Replace overwrites the single document matching filter with doc.
func (r *Repo[T]) Replace(ctx context.Context, filter bson.M, doc *T) error {
	defer metrics.ObserveStoreOp(r.name, "replace", time.Now())

	m, err := toM(doc)
	if err != nil {
		return apperr.Internal(r.op("Replace"), err)
	}
	if err := r.col.ReplaceOne(ctx, filter, m); err != nil {
		return r.translate("Replace", err)
	}
	return nil
}

// UpdateMany sets fields on every matching document and returns the number
// matched.
func (r *Repo[T]) UpdateMany(ctx context.Context, filter, set bson.M) (int64, error) {
	defer metrics.ObserveStoreOp(r.name, "update_many", time.Now())

	n, err := r.col.UpdateMany(ctx, filter, set)
	if err != nil {
		return 0, r.translate("UpdateMany", err)
	}
	return n, nil
}

func (r *Repo[T]) Delete(ctx context.Context, filter bson.M) error {
	defer metrics.ObserveStoreOp(r.name, "delete", time.Now())

	if err := r.col.DeleteOne(ctx, filter); err != nil {
		return r.translate("Delete", err)
	}
	return nil
}

func (r *Repo[T]) Count(ctx context.Context, filter bson.M) (int64, error) {
	defer metrics.ObserveStoreOp(r.name, "count", time.Now())

	n, err := r.col.Count(ctx, filter)
	if err != nil {
		return 0, apperr.Internal(r.op("Count"), err)
	}
	return n, nil
}

func (r *Repo[T]) translate(op string, err error) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return apperr.NotFound(r.op(op), r.entity)
	case errors.Is(err, ErrDuplicate):
		return r.duplicate(op, err)
	}
	return apperr.Internal(r.op(op), err)
}

// duplicate reports a unique index violation as a validation error on the
// field that clashed. Tenant scoping fields are not named.
func (r *Repo[T]) duplicate(op string, err error) error {
	field := ""
	var dup *DuplicateError
	if errors.As(err, &dup) {
		for _, f := range dup.Fields {
			if f != "restaurantId" {
				field = f
			}
		}
	}
	if field == "" {
		return &apperr.Error{Code: apperr.EInvalid, Op: r.op(op), Msg: fmt.Sprintf("%s already exists.", r.entity), Err: err}
	}
	return &apperr.Error{
		Code:    apperr.EInvalid,
		Op:      r.op(op),
		Msg:     fmt.Sprintf("A %s with this %s already exists.", strings.ToLower(r.entity), field),
		Err:     err,
		Details: map[string]any{field: fmt.Sprintf("The %s has already been taken.", field)},
	}
}

func toM(v any) (bson.M, error) {
	data, err := bson.Marshal(v)
	if err != nil {
		return nil, err
	}
	var m bson.M
	if err := bson.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return m, nil
}

func fromM(m bson.M, dest any) error {
	data, err := bson.Marshal(m)
	if err != nil {
		return err
	}
	return bson.Unmarshal(data, dest)
}
