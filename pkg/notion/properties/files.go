package properties

import (
	"github.com/notework/timekeeper/pkg/notion/wire"
)

// File points at an attachment, either one hosted by the service or an
// external URL. The two kinds differ only in the discriminator key.
type File struct {
	Name     string
	URL      string
	external bool
}

func NewHostedFile(name, url string) File {
	return File{Name: name, URL: url}
}

func NewExternalFile(name, url string) File {
	return File{Name: name, URL: url, external: true}
}

func (f File) MarshalJSON() ([]byte, error) {
	ref := newWire()
	ref.Set("url", f.URL)

	kind := "file"
	if f.external {
		kind = "external"
	}

	obj := newWire()
	if f.Name != "" {
		obj.Set("name", f.Name)
	}
	obj.Set("type", kind)
	obj.Set(kind, ref)

	return obj.MarshalJSON()
}

// Emoji is a single emoji usable as a page or database icon.
type Emoji struct {
	Character string
}

func NewEmoji(character string) Emoji {
	return Emoji{Character: character}
}

func (e Emoji) MarshalJSON() ([]byte, error) {
	obj := newWire()
	obj.Set("type", "emoji")
	obj.Set("emoji", e.Character)
	return obj.MarshalJSON()
}

// Icon wraps an emoji or external file under the "icon" key of a page
// or database payload.
type Icon struct {
	value any
}

func NewEmojiIcon(character string) Icon {
	return Icon{value: NewEmoji(character)}
}

func NewFileIcon(url string) Icon {
	return Icon{value: NewExternalFile("", url)}
}

func (i Icon) WireObject() *wire.Object {
	obj := newWire()
	obj.Set("icon", i.value)
	return obj
}

func (i Icon) MarshalJSON() ([]byte, error) {
	return i.WireObject().MarshalJSON()
}
