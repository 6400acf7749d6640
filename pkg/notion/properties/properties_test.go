package properties

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

func TestBoundValueIncludesName(t *testing.T) {
	is := is.New(t)

	v := NewNumberValue(7.5, Named("hours"))
	is.Equal(marshalToString(t, v), `{"name":"hours","type":"number","number":7.5}`)
}

func TestUnboundValueOmitsName(t *testing.T) {
	is := is.New(t)

	v := NewCheckboxValue(true)
	is.Equal(marshalToString(t, v), `{"type":"checkbox","checkbox":true}`)
}

func TestDateValueOmitsEmptyEnd(t *testing.T) {
	is := is.New(t)

	v := NewDateValue("2023-03-01T09:00:00Z", "")
	is.Equal(marshalToString(t, v), `{"type":"date","date":{"start":"2023-03-01T09:00:00Z"}}`)
}

func TestDateValueKeepsEnd(t *testing.T) {
	is := is.New(t)

	v := NewDateValue("2023-03-01T09:00:00Z", "2023-03-01T17:00:00Z")
	is.Equal(marshalToString(t, v), `{"type":"date","date":{"start":"2023-03-01T09:00:00Z","end":"2023-03-01T17:00:00Z"}}`)
}

func TestEmptyRelationClearsTheColumn(t *testing.T) {
	is := is.New(t)

	v := NewRelationValue(nil)
	is.Equal(marshalToString(t, v), `{"type":"relation","relation":[]}`)
}

func TestRelationValueReferencesPages(t *testing.T) {
	is := is.New(t)

	v := NewRelationValue([]string{"a", "b"})
	is.Equal(marshalToString(t, v), `{"type":"relation","relation":[{"id":"a"},{"id":"b"}]}`)
}

func TestPropertiesRequireBoundValues(t *testing.T) {
	is := is.New(t)

	_, err := NewProperties(NewNumberValue(1))
	is.True(err != nil)
}

func TestPropertiesKeyValuesByName(t *testing.T) {
	is := is.New(t)

	p, err := NewProperties(
		NewTitleValue(Text("tuesday"), Named("Name")),
		NewNumberValue(3, Named("hours")),
	)
	is.NoErr(err)

	is.Equal(marshalToString(t, p),
		`{"properties":{"Name":[{"type":"text","text":{"content":"tuesday"}}],"hours":{"type":"number","number":3}}}`)
}

func TestSchemaPropertiesRequireBoundSchemas(t *testing.T) {
	is := is.New(t)

	_, err := NewSchemaProperties(NewCheckboxSchema())
	is.True(err != nil)
}

func TestDualRelationSchemaShape(t *testing.T) {
	is := is.New(t)

	s, err := NewDualRelationSchema("db-1", "backref", Named("project"))
	is.NoErr(err)

	is.Equal(marshalToString(t, s),
		`{"name":"project","type":"relation","relation":{"database_id":"db-1","type":"dual_property","dual_property":{"synced_property_name":"backref"}}}`)
}

func TestSingleRelationSchemaShape(t *testing.T) {
	is := is.New(t)

	s := NewSingleRelationSchema("db-1", Named("project"))
	is.Equal(marshalToString(t, s),
		`{"name":"project","type":"relation","relation":{"database_id":"db-1","type":"single_property","single_property":{}}}`)
}

func TestRollupSchemaRejectsUnknownFunctions(t *testing.T) {
	is := is.New(t)

	_, err := NewRollupSchema("project", "hours", Function("mean"))
	is.True(err != nil)
}

func TestRollupSchemaShape(t *testing.T) {
	is := is.New(t)

	s, err := NewRollupSchema("project", "hours", FunctionSum, Named("total"))
	is.NoErr(err)

	is.Equal(marshalToString(t, s),
		`{"name":"total","type":"rollup","rollup":{"relation_property_name":"project","rollup_property_name":"hours","function":"sum"}}`)
}

func TestOptionsRejectCommas(t *testing.T) {
	is := is.New(t)

	_, err := NewOption("a,b", ColorBlue)
	is.True(err != nil)
}

func TestSelectSchemaCarriesOptions(t *testing.T) {
	is := is.New(t)

	opt, err := NewOption("work", ColorGreen)
	is.NoErr(err)

	s := NewSelectSchema([]Option{opt}, Named("category"))
	is.Equal(marshalToString(t, s),
		`{"name":"category","type":"select","select":{"options":[{"name":"work","color":"green"}]}}`)
}

func TestParentShapes(t *testing.T) {
	is := is.New(t)

	is.Equal(marshalToString(t, DatabaseParent("db-1")), `{"parent":{"type":"database_id","database_id":"db-1"}}`)
	is.Equal(marshalToString(t, PageParent("p-1")), `{"parent":{"type":"page_id","page_id":"p-1"}}`)
	is.Equal(marshalToString(t, BlockParent("b-1")), `{"parent":{"type":"block_id","block_id":"b-1"}}`)
}

func TestRichTextDefaults(t *testing.T) {
	is := is.New(t)

	rt := NewRichText("hello")
	is.Equal(marshalToString(t, rt), `{"type":"text","text":{"content":"hello"}}`)
}

func TestRichTextWithLinkAndAnnotations(t *testing.T) {
	is := is.New(t)

	rt := NewRichText("docs",
		WithLink("https://example.com"),
		WithAnnotations(Annotations{Bold: true, Color: ColorRed}),
	)
	is.Equal(marshalToString(t, rt),
		`{"type":"text","text":{"content":"docs","link":{"url":"https://example.com"}},"annotations":{"bold":true,"color":"red"}}`)
}

func TestAnnotationsAlwaysCarryAColor(t *testing.T) {
	is := is.New(t)

	is.Equal(marshalToString(t, Annotations{Italic: true}), `{"italic":true,"color":"default"}`)
}

func TestMentionShapes(t *testing.T) {
	is := is.New(t)

	is.Equal(marshalToString(t, MentionPage("p-1")),
		`{"type":"mention","mention":{"type":"page","page":{"id":"p-1"}}}`)
	is.Equal(marshalToString(t, MentionToday()),
		`{"type":"mention","mention":{"type":"template_mention","template_mention":{"type":"template_mention_date","template_mention_date":"today"}}}`)
	is.Equal(marshalToString(t, MentionMe()),
		`{"type":"mention","mention":{"type":"template_mention","template_mention":{"type":"template_mention_user","template_mention_user":"me"}}}`)
	is.Equal(marshalToString(t, MentionDate("2023-03-01", "")),
		`{"type":"mention","mention":{"type":"date","date":{"start":"2023-03-01"}}}`)
}

func TestUserShapes(t *testing.T) {
	is := is.New(t)

	is.Equal(marshalToString(t, NewUser("u-1")), `{"object":"user","id":"u-1"}`)
	is.Equal(marshalToString(t, NewPerson("u-1", WithUserName("Sam"), WithUserEmail("sam@example.com"))),
		`{"object":"user","id":"u-1","name":"Sam","type":"person","person":{"email":"sam@example.com"}}`)
}

func TestFileShapes(t *testing.T) {
	is := is.New(t)

	is.Equal(marshalToString(t, NewExternalFile("cover", "https://example.com/x.png")),
		`{"name":"cover","type":"external","external":{"url":"https://example.com/x.png"}}`)
	is.Equal(marshalToString(t, NewHostedFile("", "https://files.example.com/y")),
		`{"type":"file","file":{"url":"https://files.example.com/y"}}`)
}

func TestBlockShapes(t *testing.T) {
	is := is.New(t)

	is.Equal(marshalToString(t, NewParagraphBlock(Text("body"))),
		`{"object":"block","type":"paragraph","paragraph":{"rich_text":[{"type":"text","text":{"content":"body"}}]}}`)
	is.Equal(marshalToString(t, NewHeadingBlock(2, Text("totals"))),
		`{"object":"block","type":"heading_2","heading_2":{"rich_text":[{"type":"text","text":{"content":"totals"}}]}}`)
	is.Equal(marshalToString(t, NewToDoBlock(Text("stop timer"), false)),
		`{"object":"block","type":"to_do","to_do":{"rich_text":[{"type":"text","text":{"content":"stop timer"}}],"checked":false}}`)
	is.Equal(marshalToString(t, NewDividerBlock()),
		`{"object":"block","type":"divider","divider":{}}`)
}

func TestChildrenMergeIntoPayloads(t *testing.T) {
	is := is.New(t)

	children := NewChildren(NewDividerBlock())
	body, err := wire.Payload(PageParent("p-1"), children)
	is.NoErr(err)

	is.Equal(string(body),
		`{"parent":{"type":"page_id","page_id":"p-1"},"children":[{"object":"block","type":"divider","divider":{}}]}`)
}
