package command

import (
	"sort"
)

// Kind is the routing tag carried in the request_type field of a command envelope.
type Kind string

const (
	KindSendMessage   Kind = "send_message"
	KindEditMessage   Kind = "edit_message"
	KindDeleteMessage Kind = "delete_message"
	KindMessagePin    Kind = "message_pin"
	KindMessageUnpin  Kind = "message_unpin"
	KindSendPhoto     Kind = "send_photo"
	KindSendVideo     Kind = "send_video"
	KindSendAudio     Kind = "send_audio"
	KindSendDocument  Kind = "send_document"
	KindSendSticker   Kind = "send_sticker"
	KindSendVoice     Kind = "send_voice"
	KindSendGIF       Kind = "send_gif"
	KindCreateTopic   Kind = "create_topic"
	KindEditTopic     Kind = "edit_topic"
	KindDeleteTopic   Kind = "delete_topic"
	KindMediaFileInfo Kind = "media_file_info"
)

var registry = map[Kind]func() Request{
	KindSendMessage:   func() Request { return &SendMessage{} },
	KindEditMessage:   func() Request { return &EditMessage{} },
	KindDeleteMessage: func() Request { return &DeleteMessage{} },
	KindMessagePin:    func() Request { return &MessagePin{} },
	KindMessageUnpin:  func() Request { return &MessageUnpin{} },
	KindSendPhoto:     func() Request { return &SendPhoto{} },
	KindSendVideo:     func() Request { return &SendVideo{} },
	KindSendAudio:     func() Request { return &SendAudio{} },
	KindSendDocument:  func() Request { return &SendDocument{} },
	KindSendSticker:   func() Request { return &SendSticker{} },
	KindSendVoice:     func() Request { return &SendVoice{} },
	KindSendGIF:       func() Request { return &SendGIF{} },
	KindCreateTopic:   func() Request { return &CreateTopic{} },
	KindEditTopic:     func() Request { return &EditTopic{} },
	KindDeleteTopic:   func() Request { return &DeleteTopic{} },
	KindMediaFileInfo: func() Request { return &MediaFileInfoRequest{} },
}

// Lookup reports whether tag names a supported command kind.
func Lookup(tag string) (Kind, bool) {
	k := Kind(tag)
	_, ok := registry[k]
	return k, ok
}

// Kinds returns every supported kind in lexical order.
func Kinds() []Kind {
	out := make([]Kind, 0, len(registry))
	for k := range registry {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (k Kind) String() string {
	return string(k)
}
