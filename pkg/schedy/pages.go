package schedy

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"

	log "github.com/sirupsen/logrus"
	"google.golang.org/api/iterator"

	cbhttp "github.com/schedyio/schedy/pkg/clientbase/http"
)

const (
	pageItemsField = "items"
	pageNextField  = "next"
)

type startParams struct {
	Start string `json:"start"`
}

type pageFetcher func(ctx context.Context, start *string) (map[string]json.RawMessage, error)

// PageIterator walks a paginated listing one item at a time. The first page
// is fetched when the iterator is created, following pages when the items
// in memory are exhausted.
type PageIterator[T any] struct {
	fetch  pageFetcher
	decode func(json.RawMessage) (T, error)

	items []json.RawMessage
	next  *string
	done  bool
}

func newPageIterator[T any](ctx context.Context, fetch pageFetcher, decode func(json.RawMessage) (T, error)) (*PageIterator[T], error) {
	it := &PageIterator[T]{fetch: fetch, decode: decode}
	if err := it.load(ctx, nil); err != nil {
		return nil, err
	}
	return it, nil
}

// sessionPages fetches the pages of uri through the session, passing the
// cursor as the start query parameter.
func sessionPages(session *Session, uri string) pageFetcher {
	return func(ctx context.Context, start *string) (map[string]json.RawMessage, error) {
		var raw json.RawMessage
		var opts []cbhttp.RequestOption
		if start != nil {
			opts = append(opts, cbhttp.QueryObj(startParams{Start: *start}))
		}
		if _, err := session.DoJson(ctx, http.MethodGet, uri, &raw, opts...); err != nil {
			return nil, err
		}
		var page map[string]json.RawMessage
		if err := json.Unmarshal(raw, &page); err != nil || page == nil {
			return nil, newError(ErrUnhandledResponse, "expected a page object from %s", uri)
		}
		return page, nil
	}
}

func (it *PageIterator[T]) load(ctx context.Context, start *string) error {
	page, err := it.fetch(ctx, start)
	if err != nil {
		return err
	}

	var unexpected []string
	for key := range page {
		if key != pageItemsField && key != pageNextField {
			unexpected = append(unexpected, key)
		}
	}
	if len(unexpected) > 0 {
		sort.Strings(unexpected)
		log.Warnf("unexpected page keys: %v", unexpected)
	}

	rawItems, ok := page[pageItemsField]
	if !ok {
		return newError(ErrUnhandledResponse, "invalid page: no %q field", pageItemsField)
	}
	var items []json.RawMessage
	if err := json.Unmarshal(rawItems, &items); err != nil {
		return newError(ErrUnhandledResponse, "invalid page: %v", err)
	}

	next, err := parseCursor(page[pageNextField])
	if err != nil {
		return err
	}

	it.items = items
	it.next = next
	return nil
}

// parseCursor keeps strings as they are and other values as their JSON text.
// Absent and null mean there are no more pages.
func parseCursor(raw json.RawMessage) (*string, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}
	var cursor string
	if trimmed[0] == '"' {
		if err := json.Unmarshal(trimmed, &cursor); err != nil {
			return nil, newError(ErrUnhandledResponse, "invalid page cursor: %v", err)
		}
	} else {
		cursor = string(trimmed)
	}
	return &cursor, nil
}

// Next returns the next item, or iterator.Done once the listing is
// exhausted. A failure ends the iteration.
func (it *PageIterator[T]) Next(ctx context.Context) (T, error) {
	var zero T
	if it.done {
		return zero, iterator.Done
	}

	if len(it.items) == 0 {
		if it.next == nil {
			it.done = true
			return zero, iterator.Done
		}
		if err := it.load(ctx, it.next); err != nil {
			it.done = true
			return zero, err
		}
		if len(it.items) == 0 {
			it.done = true
			return zero, iterator.Done
		}
	}

	raw := it.items[0]
	it.items = it.items[1:]
	item, err := it.decode(raw)
	if err != nil {
		it.done = true
		return zero, err
	}
	return item, nil
}

// Collect drains the iterator.
func (it *PageIterator[T]) Collect(ctx context.Context) ([]T, error) {
	var out []T
	for {
		item, err := it.Next(ctx)
		if err == iterator.Done {
			return out, nil
		}
		if err != nil {
			return nil, fmt.Errorf("listing aborted after %d items: %w", len(out), err)
		}
		out = append(out, item)
	}
}
