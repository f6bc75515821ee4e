package command

import "context"

// Handler executes every command kind. Adding a kind without a Handler method does
// not compile.
type Handler interface {
	SendMessage(ctx context.Context, r *SendMessage) Outcome
	EditMessage(ctx context.Context, r *EditMessage) Outcome
	DeleteMessage(ctx context.Context, r *DeleteMessage) Outcome
	MessagePin(ctx context.Context, r *MessagePin) Outcome
	MessageUnpin(ctx context.Context, r *MessageUnpin) Outcome
	SendPhoto(ctx context.Context, r *SendPhoto) Outcome
	SendVideo(ctx context.Context, r *SendVideo) Outcome
	SendAudio(ctx context.Context, r *SendAudio) Outcome
	SendDocument(ctx context.Context, r *SendDocument) Outcome
	SendSticker(ctx context.Context, r *SendSticker) Outcome
	SendVoice(ctx context.Context, r *SendVoice) Outcome
	SendGIF(ctx context.Context, r *SendGIF) Outcome
	CreateTopic(ctx context.Context, r *CreateTopic) Outcome
	EditTopic(ctx context.Context, r *EditTopic) Outcome
	DeleteTopic(ctx context.Context, r *DeleteTopic) Outcome
	MediaFileInfo(ctx context.Context, r *MediaFileInfoRequest) Outcome
}

// Abandoner is implemented by handlers that owe the caller something even when a
// request is given up after its last attempt.
type Abandoner interface {
	Abandon(ctx context.Context, r Request, cause error)
}

// Request is a decoded, validated command.
type Request interface {
	Kind() Kind
	ID() string
	Target() ChatID
	Accept(ctx context.Context, h Handler) Outcome
}
