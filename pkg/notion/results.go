// Package notion holds the result types returned by the workspace API
// client: decoded entries and the aggregate results of create, query and
// property item operations.
package notion

import (
	"encoding/json"
	"fmt"

	"github.com/notework/timekeeper/pkg/notion/wire"
)

// Entry is one decoded API object: a page, database or block. It keeps the
// full document and answers path lookups into it, since the interesting parts
// of an entry depend entirely on the database schema it came from.
type Entry struct {
	document map[string]any
}

func NewEntry(document map[string]any) *Entry {
	return &Entry{document: document}
}

func NewEntryFromJSON(body []byte) (*Entry, error) {
	document := map[string]any{}
	if err := json.Unmarshal(body, &document); err != nil {
		return nil, fmt.Errorf("failed to decode entry: %w", err)
	}

	return NewEntry(document), nil
}

func (e *Entry) Document() map[string]any {
	return e.document
}

func (e *Entry) ID() string {
	id, _ := wire.LookupString(e.document, "id")
	return id
}

func (e *Entry) Object() string {
	object, _ := wire.LookupString(e.document, "object")
	return object
}

func (e *Entry) URL() string {
	u, _ := wire.LookupString(e.document, "url")
	return u
}

func (e *Entry) Archived() bool {
	archived, ok := wire.Lookup(e.document, "archived")
	if !ok {
		return false
	}

	b, _ := archived.(bool)
	return b
}

// Property looks a value up by path, starting below the entry's properties
// key. Entry level keys are reachable with Lookup on the document itself.
func (e *Entry) Property(path ...any) (any, bool) {
	full := append([]any{"properties"}, path...)
	return wire.Lookup(e.document, full...)
}

func (e *Entry) PropertyString(path ...any) (string, bool) {
	v, ok := e.Property(path...)
	if !ok {
		return "", false
	}

	s, ok := v.(string)
	return s, ok
}

func (e *Entry) PropertyNumber(path ...any) (float64, bool) {
	v, ok := e.Property(path...)
	if !ok {
		return 0, false
	}

	n, ok := v.(float64)
	return n, ok
}

type CreatePageResult struct {
	entry *Entry
}

func NewCreatePageResult(entry *Entry) *CreatePageResult {
	return &CreatePageResult{entry: entry}
}

func (r CreatePageResult) PageID() string {
	return r.entry.ID()
}

func (r CreatePageResult) URL() string {
	return r.entry.URL()
}

func (r CreatePageResult) Entry() *Entry {
	return r.entry
}

// QueryResult streams the entries a database query matched. The client feeds
// Found from as many result pages as the query produces and terminates the
// stream with a nil entry. If a later page fails to load, Err holds the
// failure and is safe to read once the nil entry has been received.
type QueryResult struct {
	Found chan (*Entry)
	Err   error
}

func NewQueryResult() *QueryResult {
	return &QueryResult{
		Found: make(chan *Entry),
	}
}

// QueryPage is a single result page for callers that thread cursors
// themselves.
type QueryPage struct {
	Entries    []*Entry
	NextCursor string
	HasMore    bool
}

func NewQueryPage(document map[string]any) (*QueryPage, error) {
	results, ok := wire.Lookup(document, "results")
	if !ok {
		return nil, fmt.Errorf("query response carries no results key")
	}

	list, ok := results.([]any)
	if !ok {
		return nil, fmt.Errorf("query results are not a list")
	}

	page := &QueryPage{Entries: make([]*Entry, 0, len(list))}

	for _, item := range list {
		entryDocument, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("query result entry is not an object")
		}
		page.Entries = append(page.Entries, NewEntry(entryDocument))
	}

	page.NextCursor, _ = wire.LookupString(document, "next_cursor")
	if hasMore, ok := wire.Lookup(document, "has_more"); ok {
		page.HasMore, _ = hasMore.(bool)
	}

	return page, nil
}

// PropertyItemResult is the response of a property item retrieval. Paginated
// property items (long rich text, many relations) report a cursor the same
// way queries do.
type PropertyItemResult struct {
	entry      *Entry
	NextCursor string
	HasMore    bool
}

func NewPropertyItemResult(document map[string]any) *PropertyItemResult {
	r := &PropertyItemResult{entry: NewEntry(document)}
	r.NextCursor, _ = wire.LookupString(document, "next_cursor")
	if hasMore, ok := wire.Lookup(document, "has_more"); ok {
		r.HasMore, _ = hasMore.(bool)
	}
	return r
}

func (r *PropertyItemResult) Entry() *Entry {
	return r.entry
}

type AppendChildrenResult struct {
	entry *Entry
}

func NewAppendChildrenResult(entry *Entry) *AppendChildrenResult {
	return &AppendChildrenResult{entry: entry}
}

func (r AppendChildrenResult) Entry() *Entry {
	return r.entry
}
