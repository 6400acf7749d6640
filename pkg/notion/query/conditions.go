package query

import (
	"github.com/notework/timekeeper/pkg/notion/wire"
)

// Relative date conditions and the is_empty family carry no operand of their
// own. The service grammar marks them with distinct sentinel values: an empty
// mapping for relative dates, a literal true for emptiness checks.
var emptyObject = map[string]any{}

type condition struct {
	key   string
	value any
}

func (c condition) conditionNode() *wire.Object {
	obj := wire.NewObject()
	obj.Set(c.key, c.value)
	return obj
}

// TextCondition matches the string content of title, rich_text, url, email
// and phone_number columns.
type TextCondition struct {
	condition
}

func textCondition(key string, value any) TextCondition {
	return TextCondition{condition{key: key, value: value}}
}

func (TextCondition) conditionType() string { return "rich_text" }

func TextEquals(value string) TextCondition       { return textCondition("equals", value) }
func TextDoesNotEqual(value string) TextCondition { return textCondition("does_not_equal", value) }
func TextContains(value string) TextCondition     { return textCondition("contains", value) }
func TextDoesNotContain(value string) TextCondition {
	return textCondition("does_not_contain", value)
}
func TextStartsWith(value string) TextCondition { return textCondition("starts_with", value) }
func TextEndsWith(value string) TextCondition   { return textCondition("ends_with", value) }
func TextIsEmpty() TextCondition                { return textCondition("is_empty", true) }
func TextIsNotEmpty() TextCondition             { return textCondition("is_not_empty", true) }

type NumberCondition struct {
	condition
}

func numberCondition(key string, value any) NumberCondition {
	return NumberCondition{condition{key: key, value: value}}
}

func (NumberCondition) conditionType() string { return "number" }

func NumberEquals(value float64) NumberCondition { return numberCondition("equals", value) }
func NumberDoesNotEqual(value float64) NumberCondition {
	return numberCondition("does_not_equal", value)
}
func NumberGreaterThan(value float64) NumberCondition {
	return numberCondition("greater_than", value)
}
func NumberGreaterThanOrEqualTo(value float64) NumberCondition {
	return numberCondition("greater_than_or_equal_to", value)
}
func NumberLessThan(value float64) NumberCondition { return numberCondition("less_than", value) }
func NumberLessThanOrEqualTo(value float64) NumberCondition {
	return numberCondition("less_than_or_equal_to", value)
}
func NumberIsEmpty() NumberCondition    { return numberCondition("is_empty", true) }
func NumberIsNotEmpty() NumberCondition { return numberCondition("is_not_empty", true) }

type CheckboxCondition struct {
	condition
}

func (CheckboxCondition) conditionType() string { return "checkbox" }

func CheckboxEquals(value bool) CheckboxCondition {
	return CheckboxCondition{condition{key: "equals", value: value}}
}

func CheckboxDoesNotEqual(value bool) CheckboxCondition {
	return CheckboxCondition{condition{key: "does_not_equal", value: value}}
}

type SelectCondition struct {
	condition
}

func selectCondition(key string, value any) SelectCondition {
	return SelectCondition{condition{key: key, value: value}}
}

func (SelectCondition) conditionType() string { return "select" }

func SelectEquals(option string) SelectCondition { return selectCondition("equals", option) }
func SelectDoesNotEqual(option string) SelectCondition {
	return selectCondition("does_not_equal", option)
}
func SelectIsEmpty() SelectCondition    { return selectCondition("is_empty", true) }
func SelectIsNotEmpty() SelectCondition { return selectCondition("is_not_empty", true) }

type MultiSelectCondition struct {
	condition
}

func multiSelectCondition(key string, value any) MultiSelectCondition {
	return MultiSelectCondition{condition{key: key, value: value}}
}

func (MultiSelectCondition) conditionType() string { return "multi_select" }

func MultiSelectContains(option string) MultiSelectCondition {
	return multiSelectCondition("contains", option)
}
func MultiSelectDoesNotContain(option string) MultiSelectCondition {
	return multiSelectCondition("does_not_contain", option)
}
func MultiSelectIsEmpty() MultiSelectCondition    { return multiSelectCondition("is_empty", true) }
func MultiSelectIsNotEmpty() MultiSelectCondition { return multiSelectCondition("is_not_empty", true) }

type StatusCondition struct {
	condition
}

func statusCondition(key string, value any) StatusCondition {
	return StatusCondition{condition{key: key, value: value}}
}

func (StatusCondition) conditionType() string { return "status" }

func StatusEquals(option string) StatusCondition { return statusCondition("equals", option) }
func StatusDoesNotEqual(option string) StatusCondition {
	return statusCondition("does_not_equal", option)
}
func StatusIsEmpty() StatusCondition    { return statusCondition("is_empty", true) }
func StatusIsNotEmpty() StatusCondition { return statusCondition("is_not_empty", true) }

// DateCondition matches date columns and entry timestamps. Operand carrying
// conditions take an ISO 8601 timestamp; the relative conditions such as
// PastWeek carry the empty object sentinel instead.
type DateCondition struct {
	condition
}

func dateCondition(key string, value any) DateCondition {
	return DateCondition{condition{key: key, value: value}}
}

func (DateCondition) conditionType() string { return "date" }

func DateEquals(timestamp string) DateCondition     { return dateCondition("equals", timestamp) }
func DateBefore(timestamp string) DateCondition     { return dateCondition("before", timestamp) }
func DateAfter(timestamp string) DateCondition      { return dateCondition("after", timestamp) }
func DateOnOrBefore(timestamp string) DateCondition { return dateCondition("on_or_before", timestamp) }
func DateOnOrAfter(timestamp string) DateCondition  { return dateCondition("on_or_after", timestamp) }
func DateIsEmpty() DateCondition                    { return dateCondition("is_empty", true) }
func DateIsNotEmpty() DateCondition                 { return dateCondition("is_not_empty", true) }
func DatePastWeek() DateCondition                   { return dateCondition("past_week", emptyObject) }
func DatePastMonth() DateCondition                  { return dateCondition("past_month", emptyObject) }
func DatePastYear() DateCondition                   { return dateCondition("past_year", emptyObject) }
func DateThisWeek() DateCondition                   { return dateCondition("this_week", emptyObject) }
func DateNextWeek() DateCondition                   { return dateCondition("next_week", emptyObject) }
func DateNextMonth() DateCondition                  { return dateCondition("next_month", emptyObject) }
func DateNextYear() DateCondition                   { return dateCondition("next_year", emptyObject) }

type PeopleCondition struct {
	condition
}

func peopleCondition(key string, value any) PeopleCondition {
	return PeopleCondition{condition{key: key, value: value}}
}

func (PeopleCondition) conditionType() string { return "people" }

func PeopleContains(userID string) PeopleCondition { return peopleCondition("contains", userID) }
func PeopleDoesNotContain(userID string) PeopleCondition {
	return peopleCondition("does_not_contain", userID)
}
func PeopleIsEmpty() PeopleCondition    { return peopleCondition("is_empty", true) }
func PeopleIsNotEmpty() PeopleCondition { return peopleCondition("is_not_empty", true) }

type FilesCondition struct {
	condition
}

func (FilesCondition) conditionType() string { return "files" }

func FilesIsEmpty() FilesCondition {
	return FilesCondition{condition{key: "is_empty", value: true}}
}

func FilesIsNotEmpty() FilesCondition {
	return FilesCondition{condition{key: "is_not_empty", value: true}}
}

type RelationCondition struct {
	condition
}

func relationCondition(key string, value any) RelationCondition {
	return RelationCondition{condition{key: key, value: value}}
}

func (RelationCondition) conditionType() string { return "relation" }

func RelationContains(pageID string) RelationCondition {
	return relationCondition("contains", pageID)
}
func RelationDoesNotContain(pageID string) RelationCondition {
	return relationCondition("does_not_contain", pageID)
}
func RelationIsEmpty() RelationCondition    { return relationCondition("is_empty", true) }
func RelationIsNotEmpty() RelationCondition { return relationCondition("is_not_empty", true) }

// typedCondition is implemented by every condition kind above, so that the
// rollup and formula wrappers can re-key a condition under its own type.
type typedCondition interface {
	conditionType() string
	conditionNode() *wire.Object
}

// RollupCondition matches rollup columns, either by requantifying a condition
// over the rolled up entries (any, every, none) or by matching the aggregate
// itself (number, date).
type RollupCondition struct {
	condition
}

func rollupWrapped(quantifier string, inner typedCondition) RollupCondition {
	wrapped := wire.NewObject()
	wrapped.Set(inner.conditionType(), inner.conditionNode())
	return RollupCondition{condition{key: quantifier, value: wrapped}}
}

func (RollupCondition) conditionType() string { return "rollup" }

func RollupAny(inner typedCondition) RollupCondition   { return rollupWrapped("any", inner) }
func RollupEvery(inner typedCondition) RollupCondition { return rollupWrapped("every", inner) }
func RollupNone(inner typedCondition) RollupCondition  { return rollupWrapped("none", inner) }

func RollupNumber(inner NumberCondition) RollupCondition {
	return RollupCondition{condition{key: "number", value: inner.conditionNode()}}
}

func RollupDate(inner DateCondition) RollupCondition {
	return RollupCondition{condition{key: "date", value: inner.conditionNode()}}
}

// FormulaCondition matches the computed result of a formula column, keyed by
// the result's type.
type FormulaCondition struct {
	condition
}

func (FormulaCondition) conditionType() string { return "formula" }

func FormulaString(inner TextCondition) FormulaCondition {
	return FormulaCondition{condition{key: "string", value: inner.conditionNode()}}
}

func FormulaNumber(inner NumberCondition) FormulaCondition {
	return FormulaCondition{condition{key: "number", value: inner.conditionNode()}}
}

func FormulaCheckbox(inner CheckboxCondition) FormulaCondition {
	return FormulaCondition{condition{key: "checkbox", value: inner.conditionNode()}}
}

func FormulaDate(inner DateCondition) FormulaCondition {
	return FormulaCondition{condition{key: "date", value: inner.conditionNode()}}
}
