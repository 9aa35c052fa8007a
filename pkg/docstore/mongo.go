package docstore

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Mongo is the MongoDB driver.
type Mongo struct {
	db *mongo.Database
}

func NewMongo(db *mongo.Database) *Mongo { return &Mongo{db: db} }

// Database exposes the underlying handle, e.g. for the log handler.
func (m *Mongo) Database() *mongo.Database { return m.db }

func (m *Mongo) Collection(name string) Collection {
	return &mongoCollection{col: m.db.Collection(name)}
}

func (m *Mongo) EnsureIndexes(ctx context.Context, indexes ...Index) error {
	for _, idx := range indexes {
		keys := bson.D{}
		for _, f := range idx.Fields {
			keys = append(keys, bson.E{Key: f, Value: 1})
		}
		model := mongo.IndexModel{Keys: keys}
		if idx.Unique {
			model.Options = options.Index().SetUnique(true)
		}
		if _, err := m.db.Collection(idx.Collection).Indexes().CreateOne(ctx, model); err != nil {
			return err
		}
	}
	return nil
}

func (m *Mongo) Ping(ctx context.Context) error {
	return m.db.Client().Ping(ctx, nil)
}

func (m *Mongo) Close(ctx context.Context) error {
	return m.db.Client().Disconnect(ctx)
}

type mongoCollection struct {
	col *mongo.Collection
}

func (c *mongoCollection) Find(ctx context.Context, filter bson.M, q Query) ([]bson.Raw, error) {
	opts := options.Find()
	if len(q.Sort) > 0 {
		sort := bson.D{}
		for _, s := range q.Sort {
			dir := 1
			if s.Desc {
				dir = -1
			}
			sort = append(sort, bson.E{Key: s.Field, Value: dir})
		}
		opts.SetSort(sort)
	}
	if q.Limit > 0 {
		opts.SetLimit(q.Limit)
	}

	cur, err := c.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []bson.Raw
	for cur.Next(ctx) {
		out = append(out, append(bson.Raw(nil), cur.Current...))
	}
	return out, cur.Err()
}

func (c *mongoCollection) FindOne(ctx context.Context, filter bson.M) (bson.Raw, error) {
	raw, err := c.col.FindOne(ctx, filter).Raw()
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	return raw, err
}

func (c *mongoCollection) InsertOne(ctx context.Context, doc bson.M) error {
	_, err := c.col.InsertOne(ctx, doc)
	return mapWriteErr(err)
}

func (c *mongoCollection) ReplaceOne(ctx context.Context, filter bson.M, doc bson.M) error {
	res, err := c.col.ReplaceOne(ctx, filter, doc)
	if err != nil {
		return mapWriteErr(err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (c *mongoCollection) UpdateMany(ctx context.Context, filter bson.M, set bson.M) (int64, error) {
	res, err := c.col.UpdateMany(ctx, filter, bson.M{"$set": set})
	if err != nil {
		return 0, mapWriteErr(err)
	}
	return res.MatchedCount, nil
}

func (c *mongoCollection) DeleteOne(ctx context.Context, filter bson.M) error {
	res, err := c.col.DeleteOne(ctx, filter)
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (c *mongoCollection) Count(ctx context.Context, filter bson.M) (int64, error) {
	return c.col.CountDocuments(ctx, filter)
}

var dupIndex = regexp.MustCompile(`index: (\S+) dup key`)

func mapWriteErr(err error) error {
	if err != nil && mongo.IsDuplicateKeyError(err) {
		return &DuplicateError{Fields: indexFields(err.Error()), Err: err}
	}
	return err
}

// indexFields recovers field names from a default index name such as
// restaurantId_1_name_1 quoted in a duplicate key message.
func indexFields(msg string) []string {
	m := dupIndex.FindStringSubmatch(msg)
	if m == nil {
		return nil
	}
	var fields []string
	parts := strings.Split(m[1], "_")
	for i := 0; i+1 < len(parts); i += 2 {
		fields = append(fields, parts[i])
	}
	return fields
}
