package properties

import (
	"time"

	"github.com/notework/timekeeper/pkg/notion/wire"
)

// Timestamp is the string timestamp format the service expects for dates.
const Timestamp = time.RFC3339

// TitleValue holds the rich text array shown at the top of a page.
type TitleValue struct {
	header valueHeader
	Title  []RichText
}

func NewTitleValue(title []RichText, decorators ...ValueDecoratorFunc) *TitleValue {
	v := &TitleValue{Title: title}
	v.header.apply(decorators)
	return v
}

func (v *TitleValue) PropertyType() string { return "title" }
func (v *TitleValue) PropertyName() string { return v.header.name }

func (v *TitleValue) valueNode() *wire.Object {
	obj := newWire()
	obj.Set("type", "title")
	obj.Set("title", v.Title)
	return obj
}

func (v *TitleValue) MarshalJSON() ([]byte, error) { return marshalValue(v) }

// RichTextValue carries an array of rich text runs under the rich_text key,
// as opposed to RichText itself which is keyed by text.
type RichTextValue struct {
	header valueHeader
	Text   []RichText
}

func NewRichTextValue(text []RichText, decorators ...ValueDecoratorFunc) *RichTextValue {
	v := &RichTextValue{Text: text}
	v.header.apply(decorators)
	return v
}

func (v *RichTextValue) PropertyType() string { return "rich_text" }
func (v *RichTextValue) PropertyName() string { return v.header.name }

func (v *RichTextValue) valueNode() *wire.Object {
	obj := newWire()
	obj.Set("type", "rich_text")
	obj.Set("rich_text", v.Text)
	return obj
}

func (v *RichTextValue) MarshalJSON() ([]byte, error) { return marshalValue(v) }

type NumberValue struct {
	header valueHeader
	Number float64
}

func NewNumberValue(number float64, decorators ...ValueDecoratorFunc) *NumberValue {
	v := &NumberValue{Number: number}
	v.header.apply(decorators)
	return v
}

func (v *NumberValue) PropertyType() string { return "number" }
func (v *NumberValue) PropertyName() string { return v.header.name }

func (v *NumberValue) valueNode() *wire.Object {
	obj := newWire()
	obj.Set("type", "number")
	obj.Set("number", v.Number)
	return obj
}

func (v *NumberValue) MarshalJSON() ([]byte, error) { return marshalValue(v) }

type CheckboxValue struct {
	header  valueHeader
	Checked bool
}

func NewCheckboxValue(checked bool, decorators ...ValueDecoratorFunc) *CheckboxValue {
	v := &CheckboxValue{Checked: checked}
	v.header.apply(decorators)
	return v
}

func (v *CheckboxValue) PropertyType() string { return "checkbox" }
func (v *CheckboxValue) PropertyName() string { return v.header.name }

func (v *CheckboxValue) valueNode() *wire.Object {
	obj := newWire()
	obj.Set("type", "checkbox")
	obj.Set("checkbox", v.Checked)
	return obj
}

func (v *CheckboxValue) MarshalJSON() ([]byte, error) { return marshalValue(v) }

// SelectValue sets a single option. If the option name is unknown to the
// parent database schema the service adds it, given write access.
type SelectValue struct {
	header valueHeader
	Option Option
}

func NewSelectValue(option Option, decorators ...ValueDecoratorFunc) *SelectValue {
	v := &SelectValue{Option: option}
	v.header.apply(decorators)
	return v
}

func (v *SelectValue) PropertyType() string { return "select" }
func (v *SelectValue) PropertyName() string { return v.header.name }

func (v *SelectValue) valueNode() *wire.Object {
	obj := newWire()
	obj.Set("type", "select")
	obj.Set("select", v.Option)
	return obj
}

func (v *SelectValue) MarshalJSON() ([]byte, error) { return marshalValue(v) }

type MultiSelectValue struct {
	header  valueHeader
	Options []Option
}

func NewMultiSelectValue(options []Option, decorators ...ValueDecoratorFunc) *MultiSelectValue {
	v := &MultiSelectValue{Options: options}
	v.header.apply(decorators)
	return v
}

func (v *MultiSelectValue) PropertyType() string { return "multi_select" }
func (v *MultiSelectValue) PropertyName() string { return v.header.name }

func (v *MultiSelectValue) valueNode() *wire.Object {
	obj := newWire()
	obj.Set("type", "multi_select")
	obj.Set("multi_select", v.Options)
	return obj
}

func (v *MultiSelectValue) MarshalJSON() ([]byte, error) { return marshalValue(v) }

type StatusValue struct {
	header valueHeader
	Option Option
}

func NewStatusValue(option Option, decorators ...ValueDecoratorFunc) *StatusValue {
	v := &StatusValue{Option: option}
	v.header.apply(decorators)
	return v
}

func (v *StatusValue) PropertyType() string { return "status" }
func (v *StatusValue) PropertyName() string { return v.header.name }

func (v *StatusValue) valueNode() *wire.Object {
	obj := newWire()
	obj.Set("type", "status")
	obj.Set("status", v.Option)
	return obj
}

func (v *StatusValue) MarshalJSON() ([]byte, error) { return marshalValue(v) }

// DateValue is a start timestamp with an optional end, forming a range. An
// unset end serializes as absent rather than null.
type DateValue struct {
	header valueHeader
	Start  string
	End    string
}

func NewDateValue(start, end string, decorators ...ValueDecoratorFunc) *DateValue {
	v := &DateValue{Start: start, End: end}
	v.header.apply(decorators)
	return v
}

// NewDateValueFromTime converts structured times to the service's string
// timestamp format. A nil end means the value is not a range.
func NewDateValueFromTime(start time.Time, end *time.Time, decorators ...ValueDecoratorFunc) *DateValue {
	v := &DateValue{Start: start.Format(Timestamp)}
	if end != nil {
		v.End = end.Format(Timestamp)
	}
	v.header.apply(decorators)
	return v
}

func (v *DateValue) PropertyType() string { return "date" }
func (v *DateValue) PropertyName() string { return v.header.name }

func (v *DateValue) valueNode() *wire.Object {
	date := newWire()
	date.Set("start", v.Start)
	if v.End != "" {
		date.Set("end", v.End)
	}

	obj := newWire()
	obj.Set("type", "date")
	obj.Set("date", date)
	return obj
}

func (v *DateValue) MarshalJSON() ([]byte, error) { return marshalValue(v) }

// RelationValue references pages in another database by ID. Sending an empty
// reference list clears the relation (service defined semantics).
type RelationValue struct {
	header  valueHeader
	PageIDs []string
}

func NewRelationValue(pageIDs []string, decorators ...ValueDecoratorFunc) *RelationValue {
	v := &RelationValue{PageIDs: pageIDs}
	v.header.apply(decorators)
	return v
}

func (v *RelationValue) PropertyType() string { return "relation" }
func (v *RelationValue) PropertyName() string { return v.header.name }

func (v *RelationValue) valueNode() *wire.Object {
	references := make([]any, 0, len(v.PageIDs))
	for _, id := range v.PageIDs {
		ref := newWire()
		ref.Set("id", id)
		references = append(references, ref)
	}

	obj := newWire()
	obj.Set("type", "relation")
	obj.SetArray("relation", references)
	return obj
}

func (v *RelationValue) MarshalJSON() ([]byte, error) { return marshalValue(v) }

// RollupValue updates the aggregation function of a rollup column. The
// function is the only part of a rollup the API can update.
type RollupValue struct {
	header   valueHeader
	Function Function
}

func NewRollupValue(function Function, decorators ...ValueDecoratorFunc) *RollupValue {
	v := &RollupValue{Function: function}
	v.header.apply(decorators)
	return v
}

func (v *RollupValue) PropertyType() string { return "rollup" }
func (v *RollupValue) PropertyName() string { return v.header.name }

func (v *RollupValue) valueNode() *wire.Object {
	rollup := newWire()
	rollup.Set("function", string(v.Function))

	obj := newWire()
	obj.Set("type", "rollup")
	obj.Set("rollup", rollup)
	return obj
}

func (v *RollupValue) MarshalJSON() ([]byte, error) { return marshalValue(v) }

type PeopleValue struct {
	header valueHeader
	Users  []User
}

func NewPeopleValue(users []User, decorators ...ValueDecoratorFunc) *PeopleValue {
	v := &PeopleValue{Users: users}
	v.header.apply(decorators)
	return v
}

func (v *PeopleValue) PropertyType() string { return "people" }
func (v *PeopleValue) PropertyName() string { return v.header.name }

func (v *PeopleValue) valueNode() *wire.Object {
	obj := newWire()
	obj.Set("type", "people")
	obj.Set("people", v.Users)
	return obj
}

func (v *PeopleValue) MarshalJSON() ([]byte, error) { return marshalValue(v) }

type EmailValue struct {
	header valueHeader
	Email  string
}

func NewEmailValue(email string, decorators ...ValueDecoratorFunc) *EmailValue {
	v := &EmailValue{Email: email}
	v.header.apply(decorators)
	return v
}

func (v *EmailValue) PropertyType() string { return "email" }
func (v *EmailValue) PropertyName() string { return v.header.name }

func (v *EmailValue) valueNode() *wire.Object {
	obj := newWire()
	obj.Set("type", "email")
	obj.Set("email", v.Email)
	return obj
}

func (v *EmailValue) MarshalJSON() ([]byte, error) { return marshalValue(v) }

// PhoneNumberValue is an unvalidated phone number string; the service
// enforces no particular format.
type PhoneNumberValue struct {
	header      valueHeader
	PhoneNumber string
}

func NewPhoneNumberValue(phoneNumber string, decorators ...ValueDecoratorFunc) *PhoneNumberValue {
	v := &PhoneNumberValue{PhoneNumber: phoneNumber}
	v.header.apply(decorators)
	return v
}

func (v *PhoneNumberValue) PropertyType() string { return "phone_number" }
func (v *PhoneNumberValue) PropertyName() string { return v.header.name }

func (v *PhoneNumberValue) valueNode() *wire.Object {
	obj := newWire()
	obj.Set("type", "phone_number")
	obj.Set("phone_number", v.PhoneNumber)
	return obj
}

func (v *PhoneNumberValue) MarshalJSON() ([]byte, error) { return marshalValue(v) }

type URLValue struct {
	header valueHeader
	URL    string
}

func NewURLValue(url string, decorators ...ValueDecoratorFunc) *URLValue {
	v := &URLValue{URL: url}
	v.header.apply(decorators)
	return v
}

func (v *URLValue) PropertyType() string { return "url" }
func (v *URLValue) PropertyName() string { return v.header.name }

func (v *URLValue) valueNode() *wire.Object {
	obj := newWire()
	obj.Set("type", "url")
	obj.Set("url", v.URL)
	return obj
}

func (v *URLValue) MarshalJSON() ([]byte, error) { return marshalValue(v) }

// FilesValue overwrites a files column with the given array. Files hosted by
// the service survive the update only when passed along again.
type FilesValue struct {
	header valueHeader
	Files  []File
}

func NewFilesValue(files []File, decorators ...ValueDecoratorFunc) *FilesValue {
	v := &FilesValue{Files: files}
	v.header.apply(decorators)
	return v
}

func (v *FilesValue) PropertyType() string { return "files" }
func (v *FilesValue) PropertyName() string { return v.header.name }

func (v *FilesValue) valueNode() *wire.Object {
	obj := newWire()
	obj.Set("type", "files")
	obj.Set("files", v.Files)
	return obj
}

func (v *FilesValue) MarshalJSON() ([]byte, error) { return marshalValue(v) }
