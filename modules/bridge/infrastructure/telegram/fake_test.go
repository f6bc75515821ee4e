package telegram

import (
	"context"
	"sync"

	"github.com/gotd/td/tg"

	"github.com/iota-uz/tgbridge/modules/bridge/infrastructure/sidestore"
	"github.com/iota-uz/tgbridge/pkg/logging"
)

// fakeRPC records requests. Methods the tests do not configure fall through to the
// embedded nil interface and panic.
type fakeRPC struct {
	RPC

	mu sync.Mutex

	sent        []*tg.MessagesSendMessageRequest
	edited      []*tg.MessagesEditMessageRequest
	deleted     []*tg.MessagesDeleteMessagesRequest
	chDeleted   []*tg.ChannelsDeleteMessagesRequest
	pinned      []*tg.MessagesUpdatePinnedMessageRequest
	media       []*tg.MessagesSendMediaRequest
	created     []*tg.ChannelsCreateForumTopicRequest
	editedTopic []*tg.ChannelsEditForumTopicRequest
	fileReqs    []*tg.UploadGetFileRequest

	sendErr          error
	createUpdates    tg.UpdatesClass
	topicHistoryLeft []int
	topicHistoryReqs int
	messages         tg.MessagesMessagesClass
	messagesErr      error
	users            []tg.UserClass
	channels         []tg.ChatClass
	usersCalls       int
	file             []byte
	dialogs          tg.MessagesDialogsClass
	history          map[int64]tg.MessagesMessagesClass
}

func (f *fakeRPC) MessagesSendMessage(_ context.Context, r *tg.MessagesSendMessageRequest) (tg.UpdatesClass, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, r)
	if f.sendErr != nil {
		return nil, f.sendErr
	}
	return &tg.Updates{}, nil
}

func (f *fakeRPC) MessagesEditMessage(_ context.Context, r *tg.MessagesEditMessageRequest) (tg.UpdatesClass, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.edited = append(f.edited, r)
	return &tg.Updates{}, nil
}

func (f *fakeRPC) MessagesDeleteMessages(_ context.Context, r *tg.MessagesDeleteMessagesRequest) (*tg.MessagesAffectedMessages, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, r)
	return &tg.MessagesAffectedMessages{}, nil
}

func (f *fakeRPC) ChannelsDeleteMessages(_ context.Context, r *tg.ChannelsDeleteMessagesRequest) (*tg.MessagesAffectedMessages, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.chDeleted = append(f.chDeleted, r)
	return &tg.MessagesAffectedMessages{}, nil
}

func (f *fakeRPC) MessagesUpdatePinnedMessage(_ context.Context, r *tg.MessagesUpdatePinnedMessageRequest) (tg.UpdatesClass, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pinned = append(f.pinned, r)
	return &tg.Updates{}, nil
}

func (f *fakeRPC) MessagesSendMedia(_ context.Context, r *tg.MessagesSendMediaRequest) (tg.UpdatesClass, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.media = append(f.media, r)
	return &tg.Updates{}, nil
}

func (f *fakeRPC) ChannelsCreateForumTopic(_ context.Context, r *tg.ChannelsCreateForumTopicRequest) (tg.UpdatesClass, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, r)
	if f.createUpdates != nil {
		return f.createUpdates, nil
	}
	return &tg.Updates{}, nil
}

func (f *fakeRPC) ChannelsEditForumTopic(_ context.Context, r *tg.ChannelsEditForumTopicRequest) (tg.UpdatesClass, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.editedTopic = append(f.editedTopic, r)
	return &tg.Updates{}, nil
}

func (f *fakeRPC) ChannelsDeleteTopicHistory(_ context.Context, _ *tg.ChannelsDeleteTopicHistoryRequest) (*tg.MessagesAffectedHistory, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.topicHistoryReqs++
	offset := 0
	if len(f.topicHistoryLeft) > 0 {
		offset = f.topicHistoryLeft[0]
		f.topicHistoryLeft = f.topicHistoryLeft[1:]
	}
	return &tg.MessagesAffectedHistory{Offset: offset}, nil
}

func (f *fakeRPC) MessagesGetMessages(context.Context, []tg.InputMessageClass) (tg.MessagesMessagesClass, error) {
	return f.messages, f.messagesErr
}

func (f *fakeRPC) ChannelsGetMessages(context.Context, *tg.ChannelsGetMessagesRequest) (tg.MessagesMessagesClass, error) {
	return f.messages, f.messagesErr
}

func (f *fakeRPC) UsersGetUsers(context.Context, []tg.InputUserClass) ([]tg.UserClass, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.usersCalls++
	return f.users, nil
}

func (f *fakeRPC) ChannelsGetChannels(context.Context, []tg.InputChannelClass) (tg.MessagesChatsClass, error) {
	return &tg.MessagesChats{Chats: f.channels}, nil
}

func (f *fakeRPC) UploadGetFile(_ context.Context, r *tg.UploadGetFileRequest) (tg.UploadFileClass, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fileReqs = append(f.fileReqs, r)
	start := int(r.Offset)
	if start >= len(f.file) {
		return &tg.UploadFile{}, nil
	}
	end := start + r.Limit
	if end > len(f.file) {
		end = len(f.file)
	}
	return &tg.UploadFile{Bytes: f.file[start:end]}, nil
}

func (f *fakeRPC) MessagesGetDialogs(context.Context, *tg.MessagesGetDialogsRequest) (tg.MessagesDialogsClass, error) {
	return f.dialogs, nil
}

func (f *fakeRPC) MessagesGetHistory(_ context.Context, r *tg.MessagesGetHistoryRequest) (tg.MessagesMessagesClass, error) {
	if p, ok := r.Peer.(*tg.InputPeerChat); ok {
		if h, ok := f.history[p.ChatID]; ok {
			return h, nil
		}
	}
	return &tg.MessagesMessages{}, nil
}

type fakeUploader struct {
	paths []string
	names []string
	sizes []int
}

func (u *fakeUploader) FromPath(_ context.Context, path string) (tg.InputFileClass, error) {
	u.paths = append(u.paths, path)
	return &tg.InputFile{ID: 1, Name: path}, nil
}

func (u *fakeUploader) FromBytes(_ context.Context, name string, b []byte) (tg.InputFileClass, error) {
	u.names = append(u.names, name)
	u.sizes = append(u.sizes, len(b))
	return &tg.InputFile{ID: 2, Name: name}, nil
}

// newStore returns a memory store that already knows user 42 and channel 100.
func newStore() *sidestore.MemoryStore {
	s := sidestore.NewMemoryStore()
	_ = s.SaveChat(context.Background(), sidestore.Chat{Kind: "user", ID: 42, AccessHash: 4242})
	_ = s.SaveChat(context.Background(), sidestore.Chat{Kind: "channel", ID: 100, AccessHash: 1001, Forum: true})
	return s
}

func newPeers(rpc RPC, store sidestore.Store) *PeerResolver {
	return NewPeerResolver(rpc, store, logging.Nop())
}
