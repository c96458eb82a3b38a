package backend

import (
	"bytes"
	"encoding/json"
)

// Listing decodes either a bare JSON array or a paginated envelope
// carrying the array under "results". Any other shape decodes to an
// empty listing.
type Listing[T any] struct {
	items []T
	count int
	next  string
}

type envelope[T any] struct {
	Count   int    `json:"count"`
	Next    string `json:"next"`
	Results []T    `json:"results"`
}

func (l *Listing[T]) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	l.items, l.count, l.next = nil, 0, ""
	if len(trimmed) == 0 {
		return nil
	}

	switch trimmed[0] {
	case '[':
		var items []T
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return err
		}
		l.items = items
		l.count = len(items)
	case '{':
		var env envelope[T]
		if err := json.Unmarshal(trimmed, &env); err != nil {
			return err
		}
		l.items = env.Results
		l.count = env.Count
		if l.count == 0 {
			l.count = len(env.Results)
		}
		l.next = env.Next
	}
	return nil
}

func (l Listing[T]) MarshalJSON() ([]byte, error) {
	return json.Marshal(l.Items())
}

// Items returns the ordered sequence; never nil.
func (l Listing[T]) Items() []T {
	if l.items == nil {
		return []T{}
	}
	return l.items
}

// Count is the backend's total when paginated, otherwise the item count.
func (l Listing[T]) Count() int {
	return l.count
}

// HasMore reports whether the backend advertised a next page.
func (l Listing[T]) HasMore() bool {
	return l.next != ""
}

// NewListing builds a listing from an already ordered sequence.
func NewListing[T any](items ...T) Listing[T] {
	return Listing[T]{items: items, count: len(items)}
}
