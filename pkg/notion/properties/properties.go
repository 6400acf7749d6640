// Package properties models the typed property objects of the workspace API:
// row level property values, database column schemas, rich text and the
// aggregate containers that key them into request payloads.
// See https://developers.notion.com/reference/page-property-values
package properties

import (
	"fmt"

	"github.com/notework/timekeeper/pkg/notion/wire"
)

func newWire() *wire.Object {
	return wire.NewObject()
}

type valueHeader struct {
	name string
}

// ValueDecoratorFunc customizes a property value or schema object at
// construction time.
type ValueDecoratorFunc func(*valueHeader)

// Named binds the value to the database column it targets. The bound name is
// what the Properties aggregator keys the final payload by.
func Named(propertyName string) ValueDecoratorFunc {
	return func(h *valueHeader) {
		h.name = propertyName
	}
}

func (h *valueHeader) apply(decorators []ValueDecoratorFunc) {
	for _, decorator := range decorators {
		decorator(h)
	}
}

// PropertyValue is one row level value for a single database column. The set
// of implementations is closed: every variant lives in this package and knows
// its own wire shape.
type PropertyValue interface {
	PropertyType() string
	PropertyName() string
	valueNode() *wire.Object
}

// marshalValue produces {"name"?, "type", <discriminator>: payload}, with
// name present only when the value was bound with Named.
func marshalValue(v PropertyValue) ([]byte, error) {
	obj := newWire()
	if v.PropertyName() != "" {
		obj.Set("name", v.PropertyName())
	}
	obj.Merge(v.valueNode())
	return obj.MarshalJSON()
}

// Properties aggregates named property values into the {"properties": {...}}
// shape that page create and update payloads expect. It takes ownership of
// its arguments; keys follow argument order.
type Properties struct {
	combined *wire.Object
}

func NewProperties(values ...PropertyValue) (*Properties, error) {
	combined := newWire()

	for _, v := range values {
		if v.PropertyName() == "" {
			return nil, fmt.Errorf("properties may only aggregate named values: bind %s values with Named", v.PropertyType())
		}

		if title, ok := v.(*TitleValue); ok {
			// the title endpoint accepts the bare rich text array
			combined.Set(v.PropertyName(), title.Title)
			continue
		}

		combined.Set(v.PropertyName(), v.valueNode())
	}

	p := &Properties{combined: newWire()}
	p.combined.Set("properties", combined)
	return p, nil
}

func (p *Properties) WireObject() *wire.Object {
	return p.combined
}

func (p *Properties) MarshalJSON() ([]byte, error) {
	return p.combined.MarshalJSON()
}

// SchemaProperties aggregates named column schema objects into the same
// {"properties": {...}} shape for database create and update payloads.
type SchemaProperties struct {
	combined *wire.Object
}

func NewSchemaProperties(schemas ...SchemaObject) (*SchemaProperties, error) {
	combined := newWire()

	for _, s := range schemas {
		if s.PropertyName() == "" {
			return nil, fmt.Errorf("schema properties may only aggregate named columns: bind %s schemas with Named", s.SchemaType())
		}

		combined.Set(s.PropertyName(), s.schemaNode())
	}

	p := &SchemaProperties{combined: newWire()}
	p.combined.Set("properties", combined)
	return p, nil
}

func (p *SchemaProperties) WireObject() *wire.Object {
	return p.combined
}

func (p *SchemaProperties) MarshalJSON() ([]byte, error) {
	return p.combined.MarshalJSON()
}

// Parent identifies the page, database or block a new object is created
// under. See https://developers.notion.com/reference/parent-object
type Parent struct {
	kind string
	id   string
}

func PageParent(pageID string) Parent {
	return Parent{kind: "page_id", id: pageID}
}

func DatabaseParent(databaseID string) Parent {
	return Parent{kind: "database_id", id: databaseID}
}

func BlockParent(blockID string) Parent {
	return Parent{kind: "block_id", id: blockID}
}

func (p Parent) WireObject() *wire.Object {
	inner := newWire()
	inner.Set("type", p.kind)
	inner.Set(p.kind, p.id)

	obj := newWire()
	obj.Set("parent", inner)
	return obj
}

func (p Parent) MarshalJSON() ([]byte, error) {
	return p.WireObject().MarshalJSON()
}
