package patch

import (
	"sort"

	"mod-loader/core/resource"
)

// Store is the part of the resource store the engine needs.
type Store interface {
	Fetch(key resource.Key) (resource.Resource, bool)
	Contains(key resource.Key) bool
	Remove(key resource.Key) bool
	Commit(writes map[resource.Key]resource.Write, deletes []resource.Key)
}

// view is where a batch reads and writes resources.
type view interface {
	read(key resource.Key) (resource.Resource, bool)
	write(key resource.Key, w resource.Write)
	remove(key resource.Key) bool
}

// direct applies every change to the store immediately.
type direct struct {
	store Store
}

func (d direct) read(key resource.Key) (resource.Resource, bool) {
	return d.store.Fetch(key)
}

func (d direct) write(key resource.Key, w resource.Write) {
	d.store.Commit(map[resource.Key]resource.Write{key: w}, nil)
}

func (d direct) remove(key resource.Key) bool {
	return d.store.Remove(key)
}

// overlay stages writes and deletes for one batch. Reads check the staged sets first and fall
// through to the store.
type overlay struct {
	store   Store
	writes  map[resource.Key]resource.Write
	deletes map[resource.Key]bool
}

func newOverlay(store Store) *overlay {
	return &overlay{
		store:   store,
		writes:  make(map[resource.Key]resource.Write),
		deletes: make(map[resource.Key]bool),
	}
}

func (o *overlay) read(key resource.Key) (resource.Resource, bool) {
	if o.deletes[key] {
		return resource.Resource{}, false
	}
	if w, ok := o.writes[key]; ok {
		return resource.Resource{
			Key:    key,
			Kind:   w.Kind,
			Origin: w.Origin,
			Data:   append([]byte{}, w.Data...),
		}, true
	}
	return o.store.Fetch(key)
}

func (o *overlay) write(key resource.Key, w resource.Write) {
	delete(o.deletes, key)
	o.writes[key] = w
}

func (o *overlay) remove(key resource.Key) bool {
	if o.deletes[key] {
		return false
	}
	_, staged := o.writes[key]
	delete(o.writes, key)
	if o.store.Contains(key) {
		o.deletes[key] = true
		return true
	}
	return staged
}

// commit publishes the staged changes in one store operation.
func (o *overlay) commit() {
	deletes := make([]resource.Key, 0, len(o.deletes))
	for key := range o.deletes {
		deletes = append(deletes, key)
	}
	sort.Slice(deletes, func(i, j int) bool { return deletes[i] < deletes[j] })
	o.store.Commit(o.writes, deletes)
}
