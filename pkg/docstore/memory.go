package docstore

import (
	"context"
	"reflect"
	"sort"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Memory is an in-process Store. It understands the filter subset the
// services use: field equality (matching array elements the way MongoDB
// does), dotted paths, and the $in / $ne operators. Unique indexes declared
// through EnsureIndexes are enforced.
type Memory struct {
	mu      sync.RWMutex
	cols    map[string][]bson.M
	uniques map[string][][]string
}

func NewMemory() *Memory {
	return &Memory{
		cols:    make(map[string][]bson.M),
		uniques: make(map[string][][]string),
	}
}

func (m *Memory) Collection(name string) Collection {
	return &memoryCollection{store: m, name: name}
}

func (m *Memory) EnsureIndexes(_ context.Context, indexes ...Index) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, idx := range indexes {
		if idx.Unique {
			m.uniques[idx.Collection] = append(m.uniques[idx.Collection], idx.Fields)
		}
	}
	return nil
}

func (m *Memory) Ping(context.Context) error  { return nil }
func (m *Memory) Close(context.Context) error { return nil }

type memoryCollection struct {
	store *Memory
	name  string
}

func (c *memoryCollection) Find(_ context.Context, filter bson.M, q Query) ([]bson.Raw, error) {
	c.store.mu.RLock()
	var hits []bson.M
	for _, doc := range c.store.cols[c.name] {
		if matches(doc, filter) {
			hits = append(hits, doc)
		}
	}
	c.store.mu.RUnlock()

	if len(q.Sort) > 0 {
		sort.SliceStable(hits, func(i, j int) bool {
			for _, s := range q.Sort {
				cmp := compare(lookup(hits[i], s.Field), lookup(hits[j], s.Field))
				if cmp == 0 {
					continue
				}
				if s.Desc {
					return cmp > 0
				}
				return cmp < 0
			}
			return false
		})
	}
	if q.Limit > 0 && int64(len(hits)) > q.Limit {
		hits = hits[:q.Limit]
	}

	out := make([]bson.Raw, 0, len(hits))
	for _, doc := range hits {
		raw, err := bson.Marshal(doc)
		if err != nil {
			return nil, err
		}
		out = append(out, raw)
	}
	return out, nil
}

func (c *memoryCollection) FindOne(_ context.Context, filter bson.M) (bson.Raw, error) {
	c.store.mu.RLock()
	defer c.store.mu.RUnlock()
	for _, doc := range c.store.cols[c.name] {
		if matches(doc, filter) {
			return bson.Marshal(doc)
		}
	}
	return nil, ErrNotFound
}

func (c *memoryCollection) InsertOne(_ context.Context, doc bson.M) error {
	doc, err := canonical(doc)
	if err != nil {
		return err
	}

	c.store.mu.Lock()
	defer c.store.mu.Unlock()
	if err := c.checkUnique(doc, -1); err != nil {
		return err
	}
	c.store.cols[c.name] = append(c.store.cols[c.name], doc)
	return nil
}

func (c *memoryCollection) ReplaceOne(_ context.Context, filter bson.M, doc bson.M) error {
	c.store.mu.Lock()
	defer c.store.mu.Unlock()

	docs := c.store.cols[c.name]
	for i, cur := range docs {
		if !matches(cur, filter) {
			continue
		}
		next, err := canonical(doc)
		if err != nil {
			return err
		}
		next["_id"] = cur["_id"]
		if err := c.checkUnique(next, i); err != nil {
			return err
		}
		docs[i] = next
		return nil
	}
	return ErrNotFound
}

func (c *memoryCollection) UpdateMany(_ context.Context, filter bson.M, set bson.M) (int64, error) {
	c.store.mu.Lock()
	defer c.store.mu.Unlock()

	var n int64
	docs := c.store.cols[c.name]
	for i, cur := range docs {
		if !matches(cur, filter) {
			continue
		}
		for k, v := range set {
			assign(cur, k, v)
		}
		next, err := canonical(cur)
		if err != nil {
			return n, err
		}
		docs[i] = next
		n++
	}
	return n, nil
}

func (c *memoryCollection) DeleteOne(_ context.Context, filter bson.M) error {
	c.store.mu.Lock()
	defer c.store.mu.Unlock()

	docs := c.store.cols[c.name]
	for i, cur := range docs {
		if matches(cur, filter) {
			c.store.cols[c.name] = append(docs[:i:i], docs[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func (c *memoryCollection) Count(_ context.Context, filter bson.M) (int64, error) {
	c.store.mu.RLock()
	defer c.store.mu.RUnlock()

	var n int64
	for _, doc := range c.store.cols[c.name] {
		if matches(doc, filter) {
			n++
		}
	}
	return n, nil
}

// checkUnique must be called with the write lock held. skip is the index of
// the document being replaced, or -1.
func (c *memoryCollection) checkUnique(doc bson.M, skip int) error {
	for _, fields := range c.store.uniques[c.name] {
		key := bson.M{}
		for _, f := range fields {
			key[f] = lookup(doc, f)
		}
		for i, other := range c.store.cols[c.name] {
			if i != skip && matches(other, key) {
				return &DuplicateError{Collection: c.name, Fields: fields}
			}
		}
	}
	return nil
}

// canonical round-trips doc through BSON so stored values have the same
// types a decoder produces.
func canonical(doc bson.M) (bson.M, error) {
	data, err := bson.Marshal(doc)
	if err != nil {
		return nil, err
	}
	var out bson.M
	if err := bson.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func lookup(doc bson.M, path string) any {
	var cur any = doc
	for _, part := range strings.Split(path, ".") {
		switch v := cur.(type) {
		case bson.M:
			cur = v[part]
		case primitive.D:
			cur = v.Map()[part]
		default:
			return nil
		}
	}
	return cur
}

func assign(doc bson.M, path string, value any) {
	parts := strings.Split(path, ".")
	cur := doc
	for _, part := range parts[:len(parts)-1] {
		next, ok := cur[part].(bson.M)
		if !ok {
			next = bson.M{}
			cur[part] = next
		}
		cur = next
	}
	cur[parts[len(parts)-1]] = value
}

func matches(doc bson.M, filter bson.M) bool {
	for field, want := range filter {
		got := lookup(doc, field)
		if ops, ok := want.(bson.M); ok && isOperatorDoc(ops) {
			for op, arg := range ops {
				switch op {
				case "$in":
					if !anyMatch(got, listOf(arg)) {
						return false
					}
				case "$ne":
					if anyMatch(got, []any{arg}) {
						return false
					}
				default:
					return false
				}
			}
			continue
		}
		if !anyMatch(got, []any{want}) {
			return false
		}
	}
	return true
}

func isOperatorDoc(m bson.M) bool {
	for k := range m {
		if !strings.HasPrefix(k, "$") {
			return false
		}
	}
	return len(m) > 0
}

// anyMatch reports whether got equals one of wants. When got is an array,
// any element may match.
func anyMatch(got any, wants []any) bool {
	candidates := []any{got}
	if arr, ok := got.(primitive.A); ok {
		candidates = append(candidates, arr...)
	}
	for _, c := range candidates {
		for _, w := range wants {
			if equal(c, w) {
				return true
			}
		}
	}
	return false
}

func listOf(v any) []any {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return []any{v}
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out
}

func equal(a, b any) bool {
	return reflect.DeepEqual(normalize(a), normalize(b))
}

func normalize(v any) any {
	switch x := v.(type) {
	case int:
		return float64(x)
	case int32:
		return float64(x)
	case int64:
		return float64(x)
	case float32:
		return float64(x)
	case time.Time:
		return primitive.NewDateTimeFromTime(x)
	case primitive.ObjectID:
		return x
	}
	return v
}

func compare(a, b any) int {
	a, b = normalize(a), normalize(b)
	switch x := a.(type) {
	case string:
		if y, ok := b.(string); ok {
			return strings.Compare(x, y)
		}
	case float64:
		if y, ok := b.(float64); ok {
			return cmpOrdered(x, y)
		}
	case primitive.DateTime:
		if y, ok := b.(primitive.DateTime); ok {
			return cmpOrdered(x, y)
		}
	case primitive.ObjectID:
		if y, ok := b.(primitive.ObjectID); ok {
			return strings.Compare(x.Hex(), y.Hex())
		}
	case bool:
		if y, ok := b.(bool); ok && x != y {
			if x {
				return 1
			}
			return -1
		}
		return 0
	}
	// nil sorts first
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}
	return 0
}

func cmpOrdered[T int64 | float64 | primitive.DateTime](a, b T) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
