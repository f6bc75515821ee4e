package telegram

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/gotd/td/tg"

	"github.com/iota-uz/tgbridge/modules/bridge/domain/command"
)

var ErrMessageNotFound = errors.New("message not found")

// FetchMessage loads a single message by id from the given chat.
func FetchMessage(ctx context.Context, rpc RPC, peers *PeerResolver, chatID command.ChatID, id int) (*tg.Message, error) {
	peer, err := command.ParsePeer(chatID)
	if err != nil {
		return nil, err
	}
	ids := []tg.InputMessageClass{&tg.InputMessageID{ID: id}}

	var res tg.MessagesMessagesClass
	if peer.Kind == command.PeerChannel {
		ch, err := peers.InputChannel(ctx, chatID)
		if err != nil {
			return nil, err
		}
		res, err = rpc.ChannelsGetMessages(ctx, &tg.ChannelsGetMessagesRequest{Channel: ch, ID: ids})
		if err != nil {
			return nil, errors.Wrap(err, "get channel messages")
		}
	} else {
		res, err = rpc.MessagesGetMessages(ctx, ids)
		if err != nil {
			return nil, errors.Wrap(err, "get messages")
		}
	}

	modified, ok := res.AsModified()
	if !ok {
		return nil, ErrMessageNotFound
	}
	for _, m := range modified.GetMessages() {
		if msg, ok := m.(*tg.Message); ok && msg.ID == id {
			return msg, nil
		}
	}
	return nil, errors.Wrapf(ErrMessageNotFound, "chat %s message %d", chatID, id)
}

// createdTopicID finds the id of the service message that opened a new forum topic.
func createdTopicID(u tg.UpdatesClass) int {
	var updates []tg.UpdateClass
	switch v := u.(type) {
	case *tg.Updates:
		updates = v.Updates
	case *tg.UpdatesCombined:
		updates = v.Updates
	}
	for _, upd := range updates {
		m, ok := upd.(*tg.UpdateNewChannelMessage)
		if !ok {
			continue
		}
		svc, ok := m.Message.(*tg.MessageService)
		if !ok {
			continue
		}
		if _, ok := svc.Action.(*tg.MessageActionTopicCreate); ok {
			return svc.ID
		}
	}
	return 0
}
