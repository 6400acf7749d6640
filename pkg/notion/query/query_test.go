package query

import (
	"encoding/json"
	"testing"

	"github.com/matryer/is"
	"github.com/notework/timekeeper/pkg/notion/wire"
)

func marshalToString(t *testing.T, v any) string {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	return string(b)
}

func TestPropertyFilterSerializesBare(t *testing.T) {
	is := is.New(t)

	f := Checkbox("running", CheckboxEquals(true))
	is.Equal(marshalToString(t, f), `{"property":"running","checkbox":{"equals":true}}`)
}

func TestTextConditions(t *testing.T) {
	is := is.New(t)

	is.Equal(marshalToString(t, Title("Name", TextStartsWith("2023-"))),
		`{"property":"Name","title":{"starts_with":"2023-"}}`)
	is.Equal(marshalToString(t, RichText("notes", TextIsEmpty())),
		`{"property":"notes","rich_text":{"is_empty":true}}`)
}

func TestDateConditionsCarryTheRelativeSentinel(t *testing.T) {
	is := is.New(t)

	is.Equal(marshalToString(t, Date("when", DatePastWeek())),
		`{"property":"when","date":{"past_week":{}}}`)
	is.Equal(marshalToString(t, Date("when", DateOnOrAfter("2023-03-01"))),
		`{"property":"when","date":{"on_or_after":"2023-03-01"}}`)
}

func TestTimestampFilter(t *testing.T) {
	is := is.New(t)

	is.Equal(marshalToString(t, CreatedTime(DatePastMonth())),
		`{"timestamp":"created_time","created_time":{"past_month":{}}}`)
	is.Equal(marshalToString(t, LastEditedTime(DateBefore("2023-03-01"))),
		`{"timestamp":"last_edited_time","last_edited_time":{"before":"2023-03-01"}}`)
}

func TestRollupConditions(t *testing.T) {
	is := is.New(t)

	is.Equal(marshalToString(t, Rollup("entries", RollupAny(NumberGreaterThan(0)))),
		`{"property":"entries","rollup":{"any":{"number":{"greater_than":0}}}}`)
	is.Equal(marshalToString(t, Rollup("total", RollupNumber(NumberGreaterThanOrEqualTo(8)))),
		`{"property":"total","rollup":{"number":{"greater_than_or_equal_to":8}}}`)
}

func TestFormulaConditions(t *testing.T) {
	is := is.New(t)

	is.Equal(marshalToString(t, Formula("sum", FormulaNumber(NumberEquals(40)))),
		`{"property":"sum","formula":{"number":{"equals":40}}}`)
	is.Equal(marshalToString(t, Formula("label", FormulaString(TextContains("week")))),
		`{"property":"label","formula":{"string":{"contains":"week"}}}`)
}

func TestCompoundFilterWrapsTerms(t *testing.T) {
	is := is.New(t)

	f := And(
		Checkbox("running", CheckboxEquals(true)),
		Number("hours", NumberGreaterThan(5)),
	)

	is.Equal(marshalToString(t, f),
		`{"filter":{"and":[{"property":"running","checkbox":{"equals":true}},{"property":"hours","number":{"greater_than":5}}]}}`)
}

func TestWhereWrapsASingleExpression(t *testing.T) {
	is := is.New(t)

	f := Where(Checkbox("running", CheckboxEquals(true)))
	is.Equal(marshalToString(t, f),
		`{"filter":{"property":"running","checkbox":{"equals":true}}}`)
}

func TestNestedCompoundsSerialize(t *testing.T) {
	is := is.New(t)

	f := And(
		Checkbox("running", CheckboxEquals(true)),
		Or(
			Select("category", SelectEquals("work")),
			Select("category", SelectEquals("studies")),
		),
	)

	is.Equal(marshalToString(t, f),
		`{"filter":{"and":[{"property":"running","checkbox":{"equals":true}},{"or":[{"property":"category","select":{"equals":"work"}},{"property":"category","select":{"equals":"studies"}}]}]}}`)
}

func TestOverDeepCompoundsFailValidation(t *testing.T) {
	is := is.New(t)

	leaf := Checkbox("running", CheckboxEquals(true))
	tooDeep := And(Or(And(leaf)))

	is.True(tooDeep.Validate() != nil)

	_, err := json.Marshal(tooDeep)
	is.True(err != nil)
}

func TestEmptyCompoundsFailValidation(t *testing.T) {
	is := is.New(t)

	is.True(And().Validate() != nil)

	_, err := json.Marshal(Or())
	is.True(err != nil)
}

func TestSortInstructions(t *testing.T) {
	is := is.New(t)

	is.Equal(marshalToString(t, ByProperty("when", Ascending)),
		`{"property":"when","direction":"ascending"}`)
	is.Equal(marshalToString(t, CreatedTimeDescending()),
		`{"timestamp":"created_time","direction":"descending"}`)
}

func TestSortFilterCollectsUnderSorts(t *testing.T) {
	is := is.New(t)

	f := SortBy(ByProperty("when", Descending), LastEditedTimeAscending())
	is.Equal(marshalToString(t, f),
		`{"sorts":[{"property":"when","direction":"descending"},{"timestamp":"last_edited_time","direction":"ascending"}]}`)
}

func TestQueryPayloadCombinesFilterAndSorts(t *testing.T) {
	is := is.New(t)

	filter := Where(CreatedTime(DatePastWeek()))
	sorts := SortBy(CreatedTimeAscending())

	body, err := wire.Payload(filter, sorts)
	is.NoErr(err)

	is.Equal(string(body),
		`{"filter":{"timestamp":"created_time","created_time":{"past_week":{}}},"sorts":[{"timestamp":"created_time","direction":"ascending"}]}`)
}
