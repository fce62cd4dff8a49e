package document

import (
	"fmt"
	"slices"
	"soulhealing/internal/models"

	"github.com/RoaringBitmap/roaring/v2/roaring64"
)

// index maps a key derived from a record to the ids of every record with
// that key.
type index[T any] struct {
	key  func(*T) string
	sets map[string]*roaring64.Bitmap
}

func (ix *index[T]) add(id int64, rec *T) {
	k := ix.key(rec)
	bm, ok := ix.sets[k]
	if !ok {
		bm = roaring64.New()
		ix.sets[k] = bm
	}
	bm.Add(uint64(id))
}

func (ix *index[T]) remove(id int64, rec *T) {
	k := ix.key(rec)
	bm, ok := ix.sets[k]
	if !ok {
		return
	}
	bm.Remove(uint64(id))
	if bm.IsEmpty() {
		delete(ix.sets, k)
	}
}

// lookup returns the ids stored under key, or an empty bitmap.
func (ix *index[T]) lookup(key string) *roaring64.Bitmap {
	if bm, ok := ix.sets[key]; ok {
		return bm
	}
	return roaring64.New()
}

// sortedKeys returns the index keys in byte order.
func (ix *index[T]) sortedKeys() []string {
	keys := make([]string, 0, len(ix.sets))
	for k := range ix.sets {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

func (ix *index[T]) clone() *index[T] {
	sets := make(map[string]*roaring64.Bitmap, len(ix.sets))
	for k, bm := range ix.sets {
		sets[k] = bm.Clone()
	}
	return &index[T]{key: ix.key, sets: sets}
}

// collection is a keyed set of records of one kind with secondary indexes.
// Records cross the collection boundary through detach, so neither callers
// nor stored state share pointer fields.
type collection[T any] struct {
	name    string
	idOf    func(*T) *int64
	detach  func(T) T
	lastID  int64
	all     *roaring64.Bitmap
	records map[int64]T
	indexes map[string]*index[T]
}

func newCollection[T any](name string, idOf func(*T) *int64, detach func(T) T, indexes map[string]func(*T) string) *collection[T] {
	c := &collection[T]{
		name:    name,
		idOf:    idOf,
		detach:  detach,
		all:     roaring64.New(),
		records: make(map[int64]T),
		indexes: make(map[string]*index[T], len(indexes)),
	}
	for name, key := range indexes {
		c.indexes[name] = &index[T]{key: key, sets: make(map[string]*roaring64.Bitmap)}
	}
	return c
}

// insert assigns the next id to rec and stores it.
func (c *collection[T]) insert(rec T) T {
	c.lastID++
	*c.idOf(&rec) = c.lastID
	c.store(rec)
	return c.detach(rec)
}

// put stores rec under its own id, which must be positive. Used by import,
// which keeps ids.
func (c *collection[T]) put(rec T) error {
	id := *c.idOf(&rec)
	if id <= 0 {
		return fmt.Errorf("%s: %w, got %d", c.name, models.ErrInvalidID, id)
	}
	if _, exists := c.records[id]; exists {
		return fmt.Errorf("%s: duplicate id %d", c.name, id)
	}
	c.store(rec)
	if id > c.lastID {
		c.lastID = id
	}
	return nil
}

// replace overwrites an existing record, keeping the indexes in sync.
func (c *collection[T]) replace(rec T) {
	id := *c.idOf(&rec)
	if old, ok := c.records[id]; ok {
		c.unindex(id, &old)
	}
	c.store(rec)
}

func (c *collection[T]) store(rec T) {
	id := *c.idOf(&rec)
	rec = c.detach(rec)
	c.records[id] = rec
	c.all.Add(uint64(id))
	for _, ix := range c.indexes {
		ix.add(id, &rec)
	}
}

func (c *collection[T]) get(id int64) (T, bool) {
	rec, ok := c.records[id]
	if !ok {
		return rec, false
	}
	return c.detach(rec), true
}

// delete reports whether a record was removed.
func (c *collection[T]) delete(id int64) bool {
	rec, ok := c.records[id]
	if !ok {
		return false
	}
	c.unindex(id, &rec)
	delete(c.records, id)
	return true
}

func (c *collection[T]) unindex(id int64, rec *T) {
	c.all.Remove(uint64(id))
	for _, ix := range c.indexes {
		ix.remove(id, rec)
	}
}

// clear drops every record. The id sequence keeps counting.
func (c *collection[T]) clear() {
	c.all.Clear()
	c.records = make(map[int64]T)
	for _, ix := range c.indexes {
		ix.sets = make(map[string]*roaring64.Bitmap)
	}
}

func (c *collection[T]) index(name string) *index[T] {
	ix, ok := c.indexes[name]
	if !ok {
		panic(fmt.Sprintf("%s: unknown index %s", c.name, name))
	}
	return ix
}

// descending returns the records whose ids are in set, highest id first.
func (c *collection[T]) descending(set *roaring64.Bitmap) []T {
	ids := set.ToArray()
	out := make([]T, 0, len(ids))
	for i := len(ids) - 1; i >= 0; i-- {
		out = append(out, c.detach(c.records[int64(ids[i])]))
	}
	return out
}

// ascending returns every record in id order.
func (c *collection[T]) ascending() []T {
	out := make([]T, 0, len(c.records))
	it := c.all.Iterator()
	for it.HasNext() {
		out = append(out, c.detach(c.records[int64(it.Next())]))
	}
	return out
}

func (c *collection[T]) clone() *collection[T] {
	records := make(map[int64]T, len(c.records))
	for id, rec := range c.records {
		records[id] = rec
	}
	indexes := make(map[string]*index[T], len(c.indexes))
	for name, ix := range c.indexes {
		indexes[name] = ix.clone()
	}
	return &collection[T]{
		name:    c.name,
		idOf:    c.idOf,
		detach:  c.detach,
		lastID:  c.lastID,
		all:     c.all.Clone(),
		records: records,
		indexes: indexes,
	}
}
