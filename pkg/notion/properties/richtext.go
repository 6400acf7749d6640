package properties

import (
	"github.com/notework/timekeeper/pkg/notion/wire"
)

// Annotations hold the formatting flags of one rich text run. The flags are
// independently settable; an unset color serializes as the named "default"
// rather than being absent.
type Annotations struct {
	Bold          bool
	Italic        bool
	Strikethrough bool
	Underline     bool
	Code          bool
	Color         Color
}

func (a Annotations) MarshalJSON() ([]byte, error) {
	obj := newWire()
	if a.Bold {
		obj.Set("bold", true)
	}
	if a.Italic {
		obj.Set("italic", true)
	}
	if a.Strikethrough {
		obj.Set("strikethrough", true)
	}
	if a.Underline {
		obj.Set("underline", true)
	}
	if a.Code {
		obj.Set("code", true)
	}

	color := a.Color
	if color == "" {
		color = ColorDefault
	}
	obj.Set("color", string(color))

	return obj.MarshalJSON()
}

// Inline is implemented by every rich text run kind, so paragraphs can
// interleave literal text with mentions and equations.
type Inline interface {
	inline()
}

func (RichText) inline() {}
func (Mention) inline()  {}
func (Equation) inline() {}

// RichText is one run of literal text with an optional hyperlink and
// optional annotations. See https://developers.notion.com/reference/rich-text
type RichText struct {
	Content     string
	Link        string
	Annotations *Annotations
}

type RichTextDecoratorFunc func(*RichText)

func WithLink(url string) RichTextDecoratorFunc {
	return func(rt *RichText) {
		rt.Link = url
	}
}

func WithAnnotations(a Annotations) RichTextDecoratorFunc {
	return func(rt *RichText) {
		rt.Annotations = &a
	}
}

func NewRichText(content string, decorators ...RichTextDecoratorFunc) RichText {
	rt := RichText{Content: content}
	for _, decorator := range decorators {
		decorator(&rt)
	}
	return rt
}

func (rt RichText) MarshalJSON() ([]byte, error) {
	text := newWire()
	text.Set("content", rt.Content)
	if rt.Link != "" {
		link := newWire()
		link.Set("url", rt.Link)
		text.Set("link", link)
	}

	obj := newWire()
	obj.Set("type", "text")
	obj.Set("text", text)
	if rt.Annotations != nil {
		obj.Set("annotations", *rt.Annotations)
	}

	return obj.MarshalJSON()
}

// Text is shorthand for a single-run rich text array.
func Text(content string, decorators ...RichTextDecoratorFunc) []RichText {
	return []RichText{NewRichText(content, decorators...)}
}

// Equation is an inline expression rendered by the service.
type Equation struct {
	Expression  string
	Annotations *Annotations
}

func NewEquation(expression string) Equation {
	return Equation{Expression: expression}
}

func (e Equation) MarshalJSON() ([]byte, error) {
	expr := newWire()
	expr.Set("expression", e.Expression)

	obj := newWire()
	obj.Set("type", "equation")
	obj.Set("equation", expr)
	if e.Annotations != nil {
		obj.Set("annotations", *e.Annotations)
	}

	return obj.MarshalJSON()
}

// Mention is a tagged union over the inline mention kinds. Every constructor
// supplies exactly one concrete sub kind; no empty mention is representable.
type Mention struct {
	mention     *wire.Object
	Annotations *Annotations
}

func newMention(kind string, payload any) Mention {
	inner := newWire()
	inner.Set("type", kind)
	inner.Set(kind, payload)
	return Mention{mention: inner}
}

func MentionUser(user User) Mention {
	return newMention("user", user)
}

func MentionPage(pageID string) Mention {
	ref := newWire()
	ref.Set("id", pageID)
	return newMention("page", ref)
}

func MentionDatabase(databaseID string) Mention {
	ref := newWire()
	ref.Set("id", databaseID)
	return newMention("database", ref)
}

func MentionLinkPreview(url string) Mention {
	ref := newWire()
	ref.Set("url", url)
	return newMention("link_preview", ref)
}

func MentionDate(start, end string) Mention {
	date := newWire()
	date.Set("start", start)
	if end != "" {
		date.Set("end", end)
	}
	return newMention("date", date)
}

func mentionTemplate(kind, value string) Mention {
	inner := newWire()
	inner.Set("type", kind)
	inner.Set(kind, value)
	return newMention("template_mention", inner)
}

func MentionToday() Mention {
	return mentionTemplate("template_mention_date", "today")
}

func MentionNow() Mention {
	return mentionTemplate("template_mention_date", "now")
}

func MentionMe() Mention {
	return mentionTemplate("template_mention_user", "me")
}

func (m Mention) Annotated(a Annotations) Mention {
	m.Annotations = &a
	return m
}

func (m Mention) MarshalJSON() ([]byte, error) {
	obj := newWire()
	obj.Set("type", "mention")
	obj.Set("mention", m.mention)
	if m.Annotations != nil {
		obj.Set("annotations", *m.Annotations)
	}

	return obj.MarshalJSON()
}
