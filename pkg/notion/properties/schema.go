package properties

import (
	"fmt"

	"github.com/notework/timekeeper/pkg/notion/wire"
)

// SchemaObject describes the configuration of one database column, as
// opposed to a row's value for it. The variant set is closed and disjoint
// from PropertyValue. See https://developers.notion.com/reference/property-object
type SchemaObject interface {
	SchemaType() string
	PropertyName() string
	schemaNode() *wire.Object
}

func marshalSchema(s SchemaObject) ([]byte, error) {
	obj := newWire()
	if s.PropertyName() != "" {
		obj.Set("name", s.PropertyName())
	}
	obj.Merge(s.schemaNode())
	return obj.MarshalJSON()
}

// SimpleSchema covers the column types whose configuration object carries no
// settings of its own: the discriminator key maps to an empty mapping.
type SimpleSchema struct {
	header valueHeader
	kind   string
}

func (s *SimpleSchema) SchemaType() string   { return s.kind }
func (s *SimpleSchema) PropertyName() string { return s.header.name }

func (s *SimpleSchema) schemaNode() *wire.Object {
	obj := newWire()
	obj.Set("type", s.kind)
	obj.Set(s.kind, map[string]any{})
	return obj
}

func (s *SimpleSchema) MarshalJSON() ([]byte, error) { return marshalSchema(s) }

func newSimpleSchema(kind string, decorators []ValueDecoratorFunc) *SimpleSchema {
	s := &SimpleSchema{kind: kind}
	s.header.apply(decorators)
	return s
}

// NewTitleSchema is the single mandatory title column every database carries.
func NewTitleSchema(decorators ...ValueDecoratorFunc) *SimpleSchema {
	return newSimpleSchema("title", decorators)
}

func NewRichTextSchema(decorators ...ValueDecoratorFunc) *SimpleSchema {
	return newSimpleSchema("rich_text", decorators)
}

func NewCheckboxSchema(decorators ...ValueDecoratorFunc) *SimpleSchema {
	return newSimpleSchema("checkbox", decorators)
}

func NewDateSchema(decorators ...ValueDecoratorFunc) *SimpleSchema {
	return newSimpleSchema("date", decorators)
}

func NewPeopleSchema(decorators ...ValueDecoratorFunc) *SimpleSchema {
	return newSimpleSchema("people", decorators)
}

func NewFilesSchema(decorators ...ValueDecoratorFunc) *SimpleSchema {
	return newSimpleSchema("files", decorators)
}

func NewURLSchema(decorators ...ValueDecoratorFunc) *SimpleSchema {
	return newSimpleSchema("url", decorators)
}

func NewEmailSchema(decorators ...ValueDecoratorFunc) *SimpleSchema {
	return newSimpleSchema("email", decorators)
}

func NewPhoneNumberSchema(decorators ...ValueDecoratorFunc) *SimpleSchema {
	return newSimpleSchema("phone_number", decorators)
}

func NewCreatedTimeSchema(decorators ...ValueDecoratorFunc) *SimpleSchema {
	return newSimpleSchema("created_time", decorators)
}

func NewCreatedBySchema(decorators ...ValueDecoratorFunc) *SimpleSchema {
	return newSimpleSchema("created_by", decorators)
}

func NewLastEditedTimeSchema(decorators ...ValueDecoratorFunc) *SimpleSchema {
	return newSimpleSchema("last_edited_time", decorators)
}

func NewLastEditedBySchema(decorators ...ValueDecoratorFunc) *SimpleSchema {
	return newSimpleSchema("last_edited_by", decorators)
}

// NumberSchema configures a number column's display format.
type NumberSchema struct {
	header valueHeader
	Format NumberFormat
}

func NewNumberSchema(format NumberFormat, decorators ...ValueDecoratorFunc) *NumberSchema {
	s := &NumberSchema{Format: format}
	s.header.apply(decorators)
	return s
}

func (s *NumberSchema) SchemaType() string   { return "number" }
func (s *NumberSchema) PropertyName() string { return s.header.name }

func (s *NumberSchema) schemaNode() *wire.Object {
	format := newWire()
	format.Set("format", string(s.Format))

	obj := newWire()
	obj.Set("type", "number")
	obj.Set("number", format)
	return obj
}

func (s *NumberSchema) MarshalJSON() ([]byte, error) { return marshalSchema(s) }

type SelectSchema struct {
	header  valueHeader
	Options []Option
}

func NewSelectSchema(options []Option, decorators ...ValueDecoratorFunc) *SelectSchema {
	s := &SelectSchema{Options: options}
	s.header.apply(decorators)
	return s
}

func (s *SelectSchema) SchemaType() string   { return "select" }
func (s *SelectSchema) PropertyName() string { return s.header.name }

func (s *SelectSchema) schemaNode() *wire.Object {
	options := newWire()
	options.Set("options", s.Options)

	obj := newWire()
	obj.Set("type", "select")
	obj.Set("select", options)
	return obj
}

func (s *SelectSchema) MarshalJSON() ([]byte, error) { return marshalSchema(s) }

type MultiSelectSchema struct {
	header  valueHeader
	Options []Option
}

func NewMultiSelectSchema(options []Option, decorators ...ValueDecoratorFunc) *MultiSelectSchema {
	s := &MultiSelectSchema{Options: options}
	s.header.apply(decorators)
	return s
}

func (s *MultiSelectSchema) SchemaType() string   { return "multi_select" }
func (s *MultiSelectSchema) PropertyName() string { return s.header.name }

func (s *MultiSelectSchema) schemaNode() *wire.Object {
	options := newWire()
	options.Set("options", s.Options)

	obj := newWire()
	obj.Set("type", "multi_select")
	obj.Set("multi_select", options)
	return obj
}

func (s *MultiSelectSchema) MarshalJSON() ([]byte, error) { return marshalSchema(s) }

// StatusSchema configures a status column with its groups and options. The
// schema endpoint wants both keyed arrays, unlike the value endpoint.
type StatusSchema struct {
	header  valueHeader
	Groups  []Group
	Options []Option
}

func NewStatusSchema(groups []Group, options []Option, decorators ...ValueDecoratorFunc) *StatusSchema {
	s := &StatusSchema{Groups: groups, Options: options}
	s.header.apply(decorators)
	return s
}

func (s *StatusSchema) SchemaType() string   { return "status" }
func (s *StatusSchema) PropertyName() string { return s.header.name }

func (s *StatusSchema) schemaNode() *wire.Object {
	config := newWire()
	config.Set("groups", s.Groups)
	config.Set("options", s.Options)

	obj := newWire()
	obj.Set("type", "status")
	obj.Set("status", config)
	return obj
}

func (s *StatusSchema) MarshalJSON() ([]byte, error) { return marshalSchema(s) }

// FormulaSchema computes its cells from an expression over other columns.
type FormulaSchema struct {
	header     valueHeader
	Expression string
}

func NewFormulaSchema(expression string, decorators ...ValueDecoratorFunc) *FormulaSchema {
	s := &FormulaSchema{Expression: expression}
	s.header.apply(decorators)
	return s
}

func (s *FormulaSchema) SchemaType() string   { return "formula" }
func (s *FormulaSchema) PropertyName() string { return s.header.name }

func (s *FormulaSchema) schemaNode() *wire.Object {
	formula := newWire()
	formula.Set("expression", s.Expression)

	obj := newWire()
	obj.Set("type", "formula")
	obj.Set("formula", formula)
	return obj
}

func (s *FormulaSchema) MarshalJSON() ([]byte, error) { return marshalSchema(s) }

// RelationSchema links a column to another database. The two sub shapes are
// incompatible: single_property relations are one directional, dual_property
// relations keep a synced column in the related database (which the service
// may rename on its own).
type RelationSchema struct {
	header             valueHeader
	databaseID         string
	dual               bool
	syncedPropertyName string
}

func NewSingleRelationSchema(databaseID string, decorators ...ValueDecoratorFunc) *RelationSchema {
	s := &RelationSchema{databaseID: databaseID}
	s.header.apply(decorators)
	return s
}

func NewDualRelationSchema(databaseID, syncedPropertyName string, decorators ...ValueDecoratorFunc) (*RelationSchema, error) {
	if syncedPropertyName == "" {
		return nil, fmt.Errorf("dual relations require a synced property name")
	}

	s := &RelationSchema{
		databaseID:         databaseID,
		dual:               true,
		syncedPropertyName: syncedPropertyName,
	}
	s.header.apply(decorators)
	return s, nil
}

func (s *RelationSchema) SchemaType() string   { return "relation" }
func (s *RelationSchema) PropertyName() string { return s.header.name }

func (s *RelationSchema) schemaNode() *wire.Object {
	relation := newWire()
	relation.Set("database_id", s.databaseID)

	if s.dual {
		dual := newWire()
		dual.Set("synced_property_name", s.syncedPropertyName)
		relation.Set("type", "dual_property")
		relation.Set("dual_property", dual)
	} else {
		relation.Set("type", "single_property")
		relation.Set("single_property", map[string]any{})
	}

	obj := newWire()
	obj.Set("type", "relation")
	obj.Set("relation", relation)
	return obj
}

func (s *RelationSchema) MarshalJSON() ([]byte, error) { return marshalSchema(s) }

// RollupSchema aggregates a column of a related database. All three fields
// are required and have no defaults.
type RollupSchema struct {
	header               valueHeader
	RelationPropertyName string
	RollupPropertyName   string
	Function             Function
}

func NewRollupSchema(relationPropertyName, rollupPropertyName string, function Function, decorators ...ValueDecoratorFunc) (*RollupSchema, error) {
	if relationPropertyName == "" || rollupPropertyName == "" {
		return nil, fmt.Errorf("rollups require both a relation property name and a rollup property name")
	}
	if !function.valid() {
		return nil, fmt.Errorf("unknown rollup function %q", function)
	}

	s := &RollupSchema{
		RelationPropertyName: relationPropertyName,
		RollupPropertyName:   rollupPropertyName,
		Function:             function,
	}
	s.header.apply(decorators)
	return s, nil
}

func (s *RollupSchema) SchemaType() string   { return "rollup" }
func (s *RollupSchema) PropertyName() string { return s.header.name }

func (s *RollupSchema) schemaNode() *wire.Object {
	config := newWire()
	config.Set("relation_property_name", s.RelationPropertyName)
	config.Set("rollup_property_name", s.RollupPropertyName)
	config.Set("function", string(s.Function))

	obj := newWire()
	obj.Set("type", "rollup")
	obj.Set("rollup", config)
	return obj
}

func (s *RollupSchema) MarshalJSON() ([]byte, error) { return marshalSchema(s) }
