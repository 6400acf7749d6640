// Package query builds database query payloads: a typed filter expression
// tree plus sort instructions, serialized to the grammar the query endpoint
// expects. Constructing an expression cannot fail; structural limits such as
// compound nesting depth are checked at serialization time.
// See https://developers.notion.com/reference/post-database-query-filter
package query

import (
	"github.com/notework/timekeeper/pkg/notion/wire"
)

// FilterExpression is one node of a filter tree: a property filter, a
// timestamp filter or a compound combination of them. The set of
// implementations is closed.
type FilterExpression interface {
	filterNode() any
}

// PropertyFilter matches one column against one condition. The constructors
// pair each column type with its condition set, so that a checkbox column
// cannot be asked for a substring match.
type PropertyFilter struct {
	property string
	kind     string
	node     *wire.Object
}

func propertyFilter(property, kind string, c typedCondition) PropertyFilter {
	return PropertyFilter{property: property, kind: kind, node: c.conditionNode()}
}

func (f PropertyFilter) filterNode() any {
	obj := wire.NewObject()
	obj.Set("property", f.property)
	obj.Set(f.kind, f.node)
	return obj
}

func (f PropertyFilter) MarshalJSON() ([]byte, error) {
	return f.filterNode().(*wire.Object).MarshalJSON()
}

func Title(property string, c TextCondition) PropertyFilter {
	return propertyFilter(property, "title", c)
}

func RichText(property string, c TextCondition) PropertyFilter {
	return propertyFilter(property, "rich_text", c)
}

func URL(property string, c TextCondition) PropertyFilter {
	return propertyFilter(property, "url", c)
}

func Email(property string, c TextCondition) PropertyFilter {
	return propertyFilter(property, "email", c)
}

func PhoneNumber(property string, c TextCondition) PropertyFilter {
	return propertyFilter(property, "phone_number", c)
}

func Number(property string, c NumberCondition) PropertyFilter {
	return propertyFilter(property, "number", c)
}

func Checkbox(property string, c CheckboxCondition) PropertyFilter {
	return propertyFilter(property, "checkbox", c)
}

func Select(property string, c SelectCondition) PropertyFilter {
	return propertyFilter(property, "select", c)
}

func MultiSelect(property string, c MultiSelectCondition) PropertyFilter {
	return propertyFilter(property, "multi_select", c)
}

func Status(property string, c StatusCondition) PropertyFilter {
	return propertyFilter(property, "status", c)
}

func Date(property string, c DateCondition) PropertyFilter {
	return propertyFilter(property, "date", c)
}

// CreatedTimeProperty and LastEditedTimeProperty address columns of those
// types by name. To filter on the entry's own timestamps regardless of the
// schema, use CreatedTime and LastEditedTime instead.
func CreatedTimeProperty(property string, c DateCondition) PropertyFilter {
	return propertyFilter(property, "created_time", c)
}

func LastEditedTimeProperty(property string, c DateCondition) PropertyFilter {
	return propertyFilter(property, "last_edited_time", c)
}

func People(property string, c PeopleCondition) PropertyFilter {
	return propertyFilter(property, "people", c)
}

func CreatedBy(property string, c PeopleCondition) PropertyFilter {
	return propertyFilter(property, "created_by", c)
}

func LastEditedBy(property string, c PeopleCondition) PropertyFilter {
	return propertyFilter(property, "last_edited_by", c)
}

func Files(property string, c FilesCondition) PropertyFilter {
	return propertyFilter(property, "files", c)
}

func Relation(property string, c RelationCondition) PropertyFilter {
	return propertyFilter(property, "relation", c)
}

func Rollup(property string, c RollupCondition) PropertyFilter {
	return propertyFilter(property, "rollup", c)
}

func Formula(property string, c FormulaCondition) PropertyFilter {
	return propertyFilter(property, "formula", c)
}
