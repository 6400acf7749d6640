package query

import (
	"github.com/notework/timekeeper/pkg/notion/wire"
)

// TimestampFilter matches an entry's own created or last edited time. Unlike
// CreatedTimeProperty it needs no column in the schema.
type TimestampFilter struct {
	timestamp string
	node      *wire.Object
}

func CreatedTime(c DateCondition) TimestampFilter {
	return TimestampFilter{timestamp: "created_time", node: c.conditionNode()}
}

func LastEditedTime(c DateCondition) TimestampFilter {
	return TimestampFilter{timestamp: "last_edited_time", node: c.conditionNode()}
}

func (f TimestampFilter) filterNode() any {
	obj := wire.NewObject()
	obj.Set("timestamp", f.timestamp)
	obj.Set(f.timestamp, f.node)
	return obj
}

func (f TimestampFilter) MarshalJSON() ([]byte, error) {
	return f.filterNode().(*wire.Object).MarshalJSON()
}
