package wire

import (
	"testing"

	"github.com/matryer/is"
)

func TestSetOverwrites(t *testing.T) {
	is := is.New(t)

	o := NewObject()
	o.Set("type", "checkbox")
	o.Set("type", "number")

	b, err := o.MarshalJSON()
	is.NoErr(err)
	is.Equal(string(b), `{"type":"number"}`)
}

func TestSetPreservesInsertionOrder(t *testing.T) {
	is := is.New(t)

	o := NewObject()
	o.Set("type", "checkbox")
	o.Set("checkbox", true)

	b, err := o.MarshalJSON()
	is.NoErr(err)
	is.Equal(string(b), `{"type":"checkbox","checkbox":true}`)
}

func TestNestCreatesMappingWhenAbsent(t *testing.T) {
	is := is.New(t)

	o := NewObject()
	o.Nest("filter", "timestamp", "created_time")

	b, err := o.MarshalJSON()
	is.NoErr(err)
	is.Equal(string(b), `{"filter":{"timestamp":"created_time"}}`)
}

func TestNestMergesDistinctSubkeys(t *testing.T) {
	is := is.New(t)

	o := NewObject()
	o.Nest("k", "a", 1)
	o.Nest("k", "b", 2)

	b, err := o.MarshalJSON()
	is.NoErr(err)
	is.Equal(string(b), `{"k":{"a":1,"b":2}}`)
}

func TestNestLastWriteWinsOnSubkeyCollision(t *testing.T) {
	is := is.New(t)

	o := NewObject()
	o.Nest("k", "a", 1)
	o.Nest("k", "a", 2)

	b, err := o.MarshalJSON()
	is.NoErr(err)
	is.Equal(string(b), `{"k":{"a":2}}`)
}

func TestSetArrayMaterializesValues(t *testing.T) {
	is := is.New(t)

	o := NewObject()
	values := []any{"a", "b"}
	o.SetArray("sorts", values)
	values[0] = "mutated"

	b, err := o.MarshalJSON()
	is.NoErr(err)
	is.Equal(string(b), `{"sorts":["a","b"]}`)
}

func TestNullValuesArePruned(t *testing.T) {
	is := is.New(t)

	o := NewObject()
	o.Set("start", "2023-01-01")
	o.Set("end", nil)

	b, err := o.MarshalJSON()
	is.NoErr(err)
	is.Equal(string(b), `{"start":"2023-01-01"}`)
}

func TestEmptyMappingsSurvivePruning(t *testing.T) {
	is := is.New(t)

	o := NewObject()
	o.Set("is_empty", map[string]any{})

	b, err := o.MarshalJSON()
	is.NoErr(err)
	is.Equal(string(b), `{"is_empty":{}}`)
}

func TestMarshalIsIdempotent(t *testing.T) {
	is := is.New(t)

	o := NewObject()
	o.Set("title", []any{nil, "kept"})

	first, err := o.MarshalJSON()
	is.NoErr(err)
	second, err := o.MarshalJSON()
	is.NoErr(err)
	is.Equal(string(first), string(second))
	is.Equal(string(first), `{"title":["kept"]}`)
}

func TestPayloadMergesTopLevelKeysInOrder(t *testing.T) {
	is := is.New(t)

	a := NewObject()
	a.Set("filter", map[string]any{"property": "x"})
	b := NewObject()
	b.Set("sorts", []any{})

	payload, err := Payload(a, b)
	is.NoErr(err)
	is.Equal(string(payload), `{"filter":{"property":"x"},"sorts":[]}`)
}

func TestPayloadLaterObjectsWin(t *testing.T) {
	is := is.New(t)

	a := NewObject()
	a.Set("page_size", 10)
	b := NewObject()
	b.Set("page_size", 100)

	payload, err := Payload(a, b)
	is.NoErr(err)
	is.Equal(string(payload), `{"page_size":100}`)
}

func TestLookupWalksMapsAndArrays(t *testing.T) {
	is := is.New(t)

	doc := map[string]any{
		"results": []any{
			map[string]any{"id": "abc123"},
		},
	}

	id, ok := LookupString(doc, "results", 0, "id")
	is.True(ok)
	is.Equal(id, "abc123")
}

func TestLookupMissingPathReturnsFalse(t *testing.T) {
	is := is.New(t)

	doc := map[string]any{"results": []any{}}

	_, ok := Lookup(doc, "results", 0, "id")
	is.Equal(ok, false)
}
