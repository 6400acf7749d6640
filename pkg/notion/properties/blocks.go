package properties

import (
	"github.com/notework/timekeeper/pkg/notion/wire"
)

// Block is one unit of page content. The concrete kinds below cover the
// block types the timekeeping flows write; the set can grow as needed.
type Block interface {
	BlockType() string
	blockNode() *wire.Object
}

func marshalBlock(b Block) ([]byte, error) {
	obj := newWire()
	obj.Set("object", "block")
	obj.Set("type", b.BlockType())
	obj.Set(b.BlockType(), b.blockNode())
	return obj.MarshalJSON()
}

func richTextNode(text []RichText) *wire.Object {
	obj := newWire()
	obj.SetArray("rich_text", anySlice(text))
	return obj
}

func anySlice[T any](in []T) []any {
	out := make([]any, len(in))
	for i := range in {
		out[i] = in[i]
	}
	return out
}

type ParagraphBlock struct {
	Runs []Inline
}

func NewParagraphBlock(text []RichText) *ParagraphBlock {
	runs := make([]Inline, len(text))
	for i := range text {
		runs[i] = text[i]
	}
	return &ParagraphBlock{Runs: runs}
}

// NewInlineParagraphBlock builds a paragraph from mixed runs, for content
// that interleaves text with mentions or equations.
func NewInlineParagraphBlock(runs ...Inline) *ParagraphBlock {
	return &ParagraphBlock{Runs: runs}
}

func (b *ParagraphBlock) BlockType() string { return "paragraph" }

func (b *ParagraphBlock) blockNode() *wire.Object {
	obj := newWire()
	obj.SetArray("rich_text", anySlice(b.Runs))
	return obj
}

func (b *ParagraphBlock) MarshalJSON() ([]byte, error) {
	return marshalBlock(b)
}

type HeadingBlock struct {
	Text  []RichText
	level int
}

func NewHeadingBlock(level int, text []RichText) *HeadingBlock {
	if level < 1 {
		level = 1
	} else if level > 3 {
		level = 3
	}
	return &HeadingBlock{Text: text, level: level}
}

func (b *HeadingBlock) BlockType() string {
	return [...]string{"heading_1", "heading_2", "heading_3"}[b.level-1]
}

func (b *HeadingBlock) blockNode() *wire.Object { return richTextNode(b.Text) }

func (b *HeadingBlock) MarshalJSON() ([]byte, error) {
	return marshalBlock(b)
}

type ToDoBlock struct {
	Text    []RichText
	Checked bool
}

func NewToDoBlock(text []RichText, checked bool) *ToDoBlock {
	return &ToDoBlock{Text: text, Checked: checked}
}

func (b *ToDoBlock) BlockType() string { return "to_do" }

func (b *ToDoBlock) blockNode() *wire.Object {
	obj := richTextNode(b.Text)
	obj.Set("checked", b.Checked)
	return obj
}

func (b *ToDoBlock) MarshalJSON() ([]byte, error) {
	return marshalBlock(b)
}

type CodeBlock struct {
	Text     []RichText
	Language string
}

func NewCodeBlock(text []RichText, language string) *CodeBlock {
	if language == "" {
		language = "plain text"
	}
	return &CodeBlock{Text: text, Language: language}
}

func (b *CodeBlock) BlockType() string { return "code" }

func (b *CodeBlock) blockNode() *wire.Object {
	obj := richTextNode(b.Text)
	obj.Set("language", b.Language)
	return obj
}

func (b *CodeBlock) MarshalJSON() ([]byte, error) {
	return marshalBlock(b)
}

type DividerBlock struct{}

func NewDividerBlock() *DividerBlock { return &DividerBlock{} }

func (b *DividerBlock) BlockType() string       { return "divider" }
func (b *DividerBlock) blockNode() *wire.Object { return newWire() }

func (b *DividerBlock) MarshalJSON() ([]byte, error) {
	return marshalBlock(b)
}

// Children collects blocks under the "children" key of an append or create
// payload.
type Children struct {
	blocks []Block
}

func NewChildren(blocks ...Block) *Children {
	return &Children{blocks: blocks}
}

func (c *Children) Append(blocks ...Block) *Children {
	c.blocks = append(c.blocks, blocks...)
	return c
}

func (c *Children) WireObject() *wire.Object {
	obj := newWire()
	obj.SetArray("children", anySlice(c.blocks))
	return obj
}

func (c *Children) MarshalJSON() ([]byte, error) {
	return c.WireObject().MarshalJSON()
}
