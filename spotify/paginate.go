package spotify

import (
	"context"
	"encoding/json"
)

// Page sizes the partner API accepts per resource kind.
const (
	DefaultPageLimit  = 25
	AlbumPageLimit    = 50
	PlaylistPageLimit = 343
)

// Page is one slice of a paginated child collection.
type Page struct {
	Collection json.RawMessage // the raw nested collection for this slice
	Items      []json.RawMessage
	TotalCount int
	Limit      int
	Offset     int
}

// FetchPageFunc returns one chunk of a resource's child collection.
type FetchPageFunc func(ctx context.Context, limit, offset int) (*Page, error)

// collectionEnvelope is the pagination shape shared by album tracks and
// playlist content.
type collectionEnvelope struct {
	TotalCount int               `json:"totalCount"`
	Items      []json.RawMessage `json:"items"`
}

func newPage(kind Kind, collection json.RawMessage, limit, offset int) (*Page, error) {
	if len(collection) == 0 {
		return nil, &ResourceError{Kind: kind, Message: "document missing paginated collection"}
	}
	var env collectionEnvelope
	if err := json.Unmarshal(collection, &env); err != nil {
		return nil, &ResourceError{Kind: kind, Message: "malformed paginated collection", Detail: err.Error()}
	}
	return &Page{Collection: collection, Items: env.Items, TotalCount: env.TotalCount, Limit: limit, Offset: offset}, nil
}

// Iterator walks a child collection chunk by chunk. The total count is
// learned from the first fetch; the offset then advances by the page
// limit until it reaches the total, so no offset repeats. An iterator is
// single-use: build a fresh one per traversal.
type Iterator struct {
	fetch   FetchPageFunc
	limit   int
	offset  int
	total   int
	page    *Page
	err     error
	started bool
	done    bool
}

func NewIterator(fetch FetchPageFunc, pageLimit int) *Iterator {
	return &Iterator{fetch: fetch, limit: pageLimit}
}

// Next advances to the next chunk. It returns false once the collection
// is exhausted or a fetch fails; Err distinguishes the two. The consumer
// may simply stop calling Next to abandon the traversal early.
func (it *Iterator) Next(ctx context.Context) bool {
	if it.done || it.err != nil {
		return false
	}
	if it.started && it.offset >= it.total {
		it.done = true
		return false
	}

	page, err := it.fetch(ctx, it.limit, it.offset)
	if err != nil {
		it.err = err
		it.done = true
		return false
	}
	if !it.started {
		it.total = page.TotalCount
		it.started = true
	}
	it.page = page
	it.offset += it.limit
	return true
}

// Page returns the chunk produced by the last successful Next.
func (it *Iterator) Page() *Page { return it.page }

// Err returns the fetch error that ended the traversal, if any.
func (it *Iterator) Err() error { return it.err }

// CollectItems drains a fresh iterator and returns every item in order.
// On a mid-stream failure the partial accumulation is discarded and only
// the error is returned.
func CollectItems(ctx context.Context, fetch FetchPageFunc, pageLimit int) ([]json.RawMessage, error) {
	it := NewIterator(fetch, pageLimit)
	var items []json.RawMessage
	for it.Next(ctx) {
		items = append(items, it.Page().Items...)
	}
	if err := it.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
