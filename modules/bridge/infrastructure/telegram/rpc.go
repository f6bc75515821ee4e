package telegram

import (
	"context"
	"encoding/binary"

	"github.com/google/uuid"
	"github.com/gotd/td/tg"
)

// RPC is the subset of the raw Telegram API the bridge calls. *tg.Client satisfies it.
type RPC interface {
	MessagesSendMessage(ctx context.Context, request *tg.MessagesSendMessageRequest) (tg.UpdatesClass, error)
	MessagesEditMessage(ctx context.Context, request *tg.MessagesEditMessageRequest) (tg.UpdatesClass, error)
	MessagesDeleteMessages(ctx context.Context, request *tg.MessagesDeleteMessagesRequest) (*tg.MessagesAffectedMessages, error)
	ChannelsDeleteMessages(ctx context.Context, request *tg.ChannelsDeleteMessagesRequest) (*tg.MessagesAffectedMessages, error)
	MessagesUpdatePinnedMessage(ctx context.Context, request *tg.MessagesUpdatePinnedMessageRequest) (tg.UpdatesClass, error)
	MessagesSendMedia(ctx context.Context, request *tg.MessagesSendMediaRequest) (tg.UpdatesClass, error)

	ChannelsCreateForumTopic(ctx context.Context, request *tg.ChannelsCreateForumTopicRequest) (tg.UpdatesClass, error)
	ChannelsEditForumTopic(ctx context.Context, request *tg.ChannelsEditForumTopicRequest) (tg.UpdatesClass, error)
	ChannelsDeleteTopicHistory(ctx context.Context, request *tg.ChannelsDeleteTopicHistoryRequest) (*tg.MessagesAffectedHistory, error)

	MessagesGetMessages(ctx context.Context, id []tg.InputMessageClass) (tg.MessagesMessagesClass, error)
	ChannelsGetMessages(ctx context.Context, request *tg.ChannelsGetMessagesRequest) (tg.MessagesMessagesClass, error)
	UsersGetUsers(ctx context.Context, id []tg.InputUserClass) ([]tg.UserClass, error)
	ChannelsGetChannels(ctx context.Context, id []tg.InputChannelClass) (tg.MessagesChatsClass, error)

	UploadGetFile(ctx context.Context, request *tg.UploadGetFileRequest) (tg.UploadFileClass, error)

	MessagesGetDialogs(ctx context.Context, request *tg.MessagesGetDialogsRequest) (tg.MessagesDialogsClass, error)
	MessagesGetHistory(ctx context.Context, request *tg.MessagesGetHistoryRequest) (tg.MessagesMessagesClass, error)
}

var _ RPC = (*tg.Client)(nil)

// Uploader turns local content into an uploaded input file. *uploader.Uploader satisfies it.
type Uploader interface {
	FromPath(ctx context.Context, path string) (tg.InputFileClass, error)
	FromBytes(ctx context.Context, name string, b []byte) (tg.InputFileClass, error)
}

func randomID() int64 {
	id := uuid.New()
	return int64(binary.LittleEndian.Uint64(id[:8]))
}
