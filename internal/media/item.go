// Package media implements the media dispatch engine: classifying files,
// annotating them with probe metadata, and partitioning them into an ordered
// plan of single and album sends for the Telegram Bot API.
package media

import "fmt"

// Kind is the four-way classification of a media file. It drives grouping,
// the Bot API method used for single sends, and per-type payload fields.
type Kind string

const (
	KindPhoto    Kind = "photo"
	KindVideo    Kind = "video"
	KindAudio    Kind = "audio"
	KindDocument Kind = "document"
)

// AllowsSpoiler reports whether the Bot API honors has_spoiler for this kind.
func (k Kind) AllowsSpoiler() bool {
	return k == KindPhoto || k == KindVideo
}

// SendMethod returns the Bot API method for a single send of this kind.
func (k Kind) SendMethod() string {
	switch k {
	case KindPhoto:
		return "sendPhoto"
	case KindVideo:
		return "sendVideo"
	case KindAudio:
		return "sendAudio"
	default:
		return "sendDocument"
	}
}

// UploadAction returns the chat action shown while uploading this kind.
func (k Kind) UploadAction() string {
	switch k {
	case KindPhoto:
		return "upload_photo"
	case KindVideo:
		return "upload_video"
	case KindAudio:
		return "upload_voice"
	default:
		return "upload_document"
	}
}

// Metadata holds optional probe results for an item. Zero-valued fields are
// omitted from outgoing payloads. For photos only Thumbnail is ever set.
type Metadata struct {
	Duration  int // seconds, floored
	Width     int
	Height    int
	Thumbnail []byte // JPEG bytes, nil when absent or discarded
}

// Item is one attachment selected for sending. Items are built once by
// BuildItems and are read-only afterwards.
type Item struct {
	Kind     Kind
	Path     string
	FileName string // upload file name; "media" when the path has no usable name
	Caption  string // non-empty on at most one item per batch
	Spoiler  bool   // already masked by Kind.AllowsSpoiler at build time
	Meta     *Metadata
	Slot     string // multipart part name correlating the descriptor with its bytes
}

// ThumbSlot returns the part name for the item's thumbnail bytes.
func (it *Item) ThumbSlot() string {
	return it.Slot + "_thumb"
}

// Step is one unit of dispatch: a single send when it holds one item, an
// album send when it holds two to ten.
type Step struct {
	Items []*Item
}

// IsGroup reports whether the step is an album send.
func (s Step) IsGroup() bool {
	return len(s.Items) > 1
}

func (s Step) String() string {
	if s.IsGroup() {
		return fmt.Sprintf("group of %d", len(s.Items))
	}
	if len(s.Items) == 1 {
		return fmt.Sprintf("single %s", s.Items[0].FileName)
	}
	return "empty step"
}
