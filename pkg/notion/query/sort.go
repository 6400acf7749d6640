package query

import (
	"github.com/notework/timekeeper/pkg/notion/wire"
)

type SortOrder string

const (
	Ascending  SortOrder = "ascending"
	Descending SortOrder = "descending"
)

// Sort is one ordering instruction, either over a named column or over an
// entry timestamp.
type Sort struct {
	key   string
	value string
	order SortOrder
}

func ByProperty(property string, order SortOrder) Sort {
	return Sort{key: "property", value: property, order: order}
}

func byTimestamp(timestamp string, order SortOrder) Sort {
	return Sort{key: "timestamp", value: timestamp, order: order}
}

func CreatedTimeAscending() Sort  { return byTimestamp("created_time", Ascending) }
func CreatedTimeDescending() Sort { return byTimestamp("created_time", Descending) }

func LastEditedTimeAscending() Sort  { return byTimestamp("last_edited_time", Ascending) }
func LastEditedTimeDescending() Sort { return byTimestamp("last_edited_time", Descending) }

func (s Sort) sortNode() *wire.Object {
	obj := wire.NewObject()
	obj.Set(s.key, s.value)
	obj.Set("direction", string(s.order))
	return obj
}

func (s Sort) MarshalJSON() ([]byte, error) {
	return s.sortNode().MarshalJSON()
}

// SortFilter collects ordering instructions under the top level sorts key.
// Earlier instructions take precedence.
type SortFilter struct {
	sorts []Sort
}

func SortBy(sorts ...Sort) *SortFilter {
	return &SortFilter{sorts: sorts}
}

func (f *SortFilter) WireObject() *wire.Object {
	nodes := make([]any, len(f.sorts))
	for i, s := range f.sorts {
		nodes[i] = s.sortNode()
	}

	obj := wire.NewObject()
	obj.SetArray("sorts", nodes)
	return obj
}

func (f *SortFilter) MarshalJSON() ([]byte, error) {
	return f.WireObject().MarshalJSON()
}
