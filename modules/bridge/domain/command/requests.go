package command

import (
	"context"
	"strings"
)

type ParseMode string

const (
	ParseModeNone     ParseMode = ""
	ParseModeHTML     ParseMode = "html"
	ParseModeMD       ParseMode = "md"
	ParseModeMarkdown ParseMode = "markdown"
)

// IsMarkdown reports whether text must be rendered from markdown.
func (p ParseMode) IsMarkdown() bool {
	return p == ParseModeMD || p == ParseModeMarkdown
}

// Forum topic icon colors accepted by Telegram.
const (
	TopicColorBlue   = 0x6FB9F0
	TopicColorYellow = 0xFFD67E
	TopicColorViolet = 0xCB86DB
	TopicColorGreen  = 0x8EEE98
	TopicColorRose   = 0xFF93B2
	TopicColorRed    = 0xFB6F5F
)

type Meta struct {
	RequestID string `json:"request_id,omitempty"`
}

func (m Meta) ID() string {
	return m.RequestID
}

type Chat struct {
	ChatID ChatID `json:"chat_id" validate:"required,chatid"`
}

func (c Chat) Target() ChatID {
	return c.ChatID
}

type Styled struct {
	ParseMode ParseMode `json:"parse_mode,omitempty" validate:"omitempty,oneof=html md markdown"`
}

func (s *Styled) normalize() {
	s.ParseMode = ParseMode(strings.ToLower(strings.TrimSpace(string(s.ParseMode))))
}

type SendMessage struct {
	Meta
	Chat
	Styled
	Text                string `json:"text" validate:"required"`
	DisableNotification bool   `json:"disable_notification,omitempty"`
	TopicID             int    `json:"topic_id,omitempty" validate:"omitempty,gt=0"`
	ReplyToMessageID    int    `json:"reply_to_message_id,omitempty" validate:"omitempty,gt=0"`
}

func (*SendMessage) Kind() Kind { return KindSendMessage }
func (r *SendMessage) Accept(ctx context.Context, h Handler) Outcome {
	return h.SendMessage(ctx, r)
}

// ReplyTo returns the message the new one answers: the topic root wins over an explicit reply.
func (r *SendMessage) ReplyTo() int {
	if r.TopicID != 0 {
		return r.TopicID
	}
	return r.ReplyToMessageID
}

type EditMessage struct {
	Meta
	Chat
	Styled
	MessageID int    `json:"message_id" validate:"required,gt=0"`
	Text      string `json:"text" validate:"required"`
}

func (*EditMessage) Kind() Kind { return KindEditMessage }
func (r *EditMessage) Accept(ctx context.Context, h Handler) Outcome {
	return h.EditMessage(ctx, r)
}

type DeleteMessage struct {
	Meta
	Chat
	MessageIDs MessageIDs `json:"message_id" validate:"required,min=1,dive,gt=0"`
}

func (*DeleteMessage) Kind() Kind { return KindDeleteMessage }
func (r *DeleteMessage) Accept(ctx context.Context, h Handler) Outcome {
	return h.DeleteMessage(ctx, r)
}

type MessagePin struct {
	Meta
	Chat
	MessageID int `json:"message_id" validate:"required,gt=0"`
}

func (*MessagePin) Kind() Kind { return KindMessagePin }
func (r *MessagePin) Accept(ctx context.Context, h Handler) Outcome {
	return h.MessagePin(ctx, r)
}

type MessageUnpin struct {
	Meta
	Chat
	MessageID int `json:"message_id" validate:"required,gt=0"`
}

func (*MessageUnpin) Kind() Kind { return KindMessageUnpin }
func (r *MessageUnpin) Accept(ctx context.Context, h Handler) Outcome {
	return h.MessageUnpin(ctx, r)
}

// Media holds the fields shared by every send_* media command.
type Media struct {
	Caption string `json:"caption,omitempty"`
	TopicID int    `json:"topic_id,omitempty" validate:"omitempty,gt=0"`
}

type SendPhoto struct {
	Meta
	Chat
	Styled
	Media
	Photo string `json:"photo" validate:"required"`
}

func (*SendPhoto) Kind() Kind { return KindSendPhoto }
func (r *SendPhoto) Accept(ctx context.Context, h Handler) Outcome {
	return h.SendPhoto(ctx, r)
}

type SendVideo struct {
	Meta
	Chat
	Styled
	Media
	Video string `json:"video" validate:"required"`
}

func (*SendVideo) Kind() Kind { return KindSendVideo }
func (r *SendVideo) Accept(ctx context.Context, h Handler) Outcome {
	return h.SendVideo(ctx, r)
}

type SendAudio struct {
	Meta
	Chat
	Styled
	Media
	Audio string `json:"audio" validate:"required"`
}

func (*SendAudio) Kind() Kind { return KindSendAudio }
func (r *SendAudio) Accept(ctx context.Context, h Handler) Outcome {
	return h.SendAudio(ctx, r)
}

type SendDocument struct {
	Meta
	Chat
	Styled
	Media
	Document string `json:"document" validate:"required"`
}

func (*SendDocument) Kind() Kind { return KindSendDocument }
func (r *SendDocument) Accept(ctx context.Context, h Handler) Outcome {
	return h.SendDocument(ctx, r)
}

// SendSticker carries no caption.
type SendSticker struct {
	Meta
	Chat
	Sticker string `json:"sticker" validate:"required"`
	TopicID int    `json:"topic_id,omitempty" validate:"omitempty,gt=0"`
}

func (*SendSticker) Kind() Kind { return KindSendSticker }
func (r *SendSticker) Accept(ctx context.Context, h Handler) Outcome {
	return h.SendSticker(ctx, r)
}

// SendVoice captions are sent as plain text.
type SendVoice struct {
	Meta
	Chat
	Media
	Voice string `json:"voice" validate:"required"`
}

func (*SendVoice) Kind() Kind { return KindSendVoice }
func (r *SendVoice) Accept(ctx context.Context, h Handler) Outcome {
	return h.SendVoice(ctx, r)
}

type SendGIF struct {
	Meta
	Chat
	Styled
	Media
	GIF string `json:"gif" validate:"required"`
}

func (*SendGIF) Kind() Kind { return KindSendGIF }
func (r *SendGIF) Accept(ctx context.Context, h Handler) Outcome {
	return h.SendGIF(ctx, r)
}

type CreateTopic struct {
	Meta
	Chat
	Title     string `json:"title" validate:"required,max=128"`
	IconColor int    `json:"icon_color,omitempty" validate:"omitempty,oneof=7322096 16766590 13338331 9367192 16749490 16478047"`
}

func (*CreateTopic) Kind() Kind { return KindCreateTopic }
func (r *CreateTopic) Accept(ctx context.Context, h Handler) Outcome {
	return h.CreateTopic(ctx, r)
}

type EditTopic struct {
	Meta
	Chat
	TopicID int    `json:"topic_id" validate:"required,gt=0"`
	Title   string `json:"title" validate:"required,max=128"`
}

func (*EditTopic) Kind() Kind { return KindEditTopic }
func (r *EditTopic) Accept(ctx context.Context, h Handler) Outcome {
	return h.EditTopic(ctx, r)
}

type DeleteTopic struct {
	Meta
	Chat
	TopicID int `json:"topic_id" validate:"required,gt=0"`
}

func (*DeleteTopic) Kind() Kind { return KindDeleteTopic }
func (r *DeleteTopic) Accept(ctx context.Context, h Handler) Outcome {
	return h.DeleteTopic(ctx, r)
}

type MediaFileInfoRequest struct {
	Meta
	Chat
	MessageID int `json:"message_id" validate:"required,gt=0"`
}

func (*MediaFileInfoRequest) Kind() Kind { return KindMediaFileInfo }
func (r *MediaFileInfoRequest) Accept(ctx context.Context, h Handler) Outcome {
	return h.MediaFileInfo(ctx, r)
}
