package telegram

import (
	"context"
	"strconv"

	"github.com/go-faster/errors"
	"github.com/gotd/td/tg"
	"github.com/sirupsen/logrus"

	"github.com/iota-uz/tgbridge/modules/bridge/domain/command"
	"github.com/iota-uz/tgbridge/modules/bridge/infrastructure/sidestore"
)

// UpdateListener keeps the side-store current from incoming updates: chat snapshots
// for every entity seen and reverse lookups for messages outside channels, whose
// deletion updates carry no chat id.
type UpdateListener struct {
	peers  *PeerResolver
	store  sidestore.Store
	logger *logrus.Entry
}

func NewUpdateListener(peers *PeerResolver, store sidestore.Store, logger *logrus.Entry) *UpdateListener {
	return &UpdateListener{peers: peers, store: store, logger: logger}
}

func (l *UpdateListener) Register(d tg.UpdateDispatcher) {
	d.OnNewMessage(l.onNewMessage)
	d.OnNewChannelMessage(l.onNewChannelMessage)
	d.OnDeleteMessages(l.onDeleteMessages)
}

func (l *UpdateListener) onNewMessage(ctx context.Context, e tg.Entities, u *tg.UpdateNewMessage) error {
	l.peers.Remember(ctx, e)

	msg, ok := u.Message.(*tg.Message)
	if !ok {
		return nil
	}
	chatID, ok := chatIDOf(msg.PeerID)
	if !ok {
		return nil
	}
	if err := l.store.RememberMessages(ctx, chatID, []int{msg.ID}); err != nil {
		l.logger.WithError(err).WithField("message_id", msg.ID).Warn("failed to remember message")
	}
	return nil
}

func (l *UpdateListener) onNewChannelMessage(ctx context.Context, e tg.Entities, _ *tg.UpdateNewChannelMessage) error {
	l.peers.Remember(ctx, e)
	return nil
}

func (l *UpdateListener) onDeleteMessages(ctx context.Context, _ tg.Entities, u *tg.UpdateDeleteMessages) error {
	for _, id := range u.Messages {
		logger := l.logger.WithField("message_id", id)
		chatID, err := l.store.MessageChat(ctx, id)
		switch {
		case errors.Is(err, sidestore.ErrNotFound):
			logger.Debug("message deleted in an unknown chat")
		case err != nil:
			logger.WithError(err).Warn("reverse message lookup failed")
		default:
			logger.WithField("chat_id", chatID).Info("message deleted")
		}
	}
	return nil
}

// chatIDOf maps a user or basic group peer to its chat id. Channel peers are skipped.
func chatIDOf(p tg.PeerClass) (command.ChatID, bool) {
	switch v := p.(type) {
	case *tg.PeerUser:
		return command.ChatID(strconv.FormatInt(v.UserID, 10)), true
	case *tg.PeerChat:
		return command.Peer{Kind: command.PeerChat, ID: v.ChatID}.ChatID(), true
	default:
		return "", false
	}
}
