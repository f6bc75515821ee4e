package telegram

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/gotd/td/tg"
	"github.com/sirupsen/logrus"

	"github.com/iota-uz/tgbridge/modules/bridge/domain/command"
	"github.com/iota-uz/tgbridge/modules/bridge/infrastructure/sidestore"
)

var ErrPeerNotFound = errors.New("peer not found")

// PeerResolver builds input peers from chat ids. Access hashes come from cached chat
// snapshots first and from Telegram otherwise.
type PeerResolver struct {
	rpc    RPC
	store  sidestore.Store
	logger *logrus.Entry
}

func NewPeerResolver(rpc RPC, store sidestore.Store, logger *logrus.Entry) *PeerResolver {
	return &PeerResolver{rpc: rpc, store: store, logger: logger}
}

func (r *PeerResolver) InputPeer(ctx context.Context, chatID command.ChatID) (tg.InputPeerClass, error) {
	peer, err := command.ParsePeer(chatID)
	if err != nil {
		return nil, err
	}
	switch peer.Kind {
	case command.PeerChat:
		return &tg.InputPeerChat{ChatID: peer.ID}, nil
	case command.PeerUser:
		hash, err := r.accessHash(ctx, peer)
		if err != nil {
			return nil, err
		}
		return &tg.InputPeerUser{UserID: peer.ID, AccessHash: hash}, nil
	default:
		hash, err := r.accessHash(ctx, peer)
		if err != nil {
			return nil, err
		}
		return &tg.InputPeerChannel{ChannelID: peer.ID, AccessHash: hash}, nil
	}
}

// InputChannel resolves chat ids that must address a channel or supergroup.
func (r *PeerResolver) InputChannel(ctx context.Context, chatID command.ChatID) (*tg.InputChannel, error) {
	peer, err := command.ParsePeer(chatID)
	if err != nil {
		return nil, err
	}
	if peer.Kind != command.PeerChannel {
		return nil, errors.Errorf("chat %s is a %s, not a channel", chatID, peer.Kind)
	}
	hash, err := r.accessHash(ctx, peer)
	if err != nil {
		return nil, err
	}
	return &tg.InputChannel{ChannelID: peer.ID, AccessHash: hash}, nil
}

func (r *PeerResolver) accessHash(ctx context.Context, peer command.Peer) (int64, error) {
	snap, err := r.store.Chat(ctx, peer.ChatID())
	if err == nil {
		return snap.AccessHash, nil
	}
	if !errors.Is(err, sidestore.ErrNotFound) {
		r.logger.WithError(err).WithField("peer", peer.String()).Warn("chat snapshot lookup failed")
	}

	switch peer.Kind {
	case command.PeerUser:
		users, err := r.rpc.UsersGetUsers(ctx, []tg.InputUserClass{&tg.InputUser{UserID: peer.ID}})
		if err != nil {
			return 0, errors.Wrap(err, "get users")
		}
		for _, u := range users {
			if user, ok := u.(*tg.User); ok && user.ID == peer.ID {
				r.remember(ctx, UserSnapshot(user))
				return user.AccessHash, nil
			}
		}
	case command.PeerChannel:
		res, err := r.rpc.ChannelsGetChannels(ctx, []tg.InputChannelClass{&tg.InputChannel{ChannelID: peer.ID}})
		if err != nil {
			return 0, errors.Wrap(err, "get channels")
		}
		for _, c := range res.GetChats() {
			if ch, ok := c.(*tg.Channel); ok && ch.ID == peer.ID {
				r.remember(ctx, ChannelSnapshot(ch))
				return ch.AccessHash, nil
			}
		}
	}
	return 0, errors.Wrapf(ErrPeerNotFound, "%s", peer)
}

func (r *PeerResolver) remember(ctx context.Context, snap sidestore.Chat) {
	if err := r.store.SaveChat(ctx, snap); err != nil {
		r.logger.WithError(err).WithField("chat_id", snap.ChatID()).Warn("failed to cache chat snapshot")
	}
}

// Remember caches snapshots of every user and chat in entities. Min constructors carry
// no usable access hash and are skipped.
func (r *PeerResolver) Remember(ctx context.Context, e tg.Entities) {
	for _, u := range e.Users {
		if !u.Min {
			r.remember(ctx, UserSnapshot(u))
		}
	}
	for _, c := range e.Chats {
		r.remember(ctx, ChatSnapshot(c))
	}
	for _, c := range e.Channels {
		if !c.Min {
			r.remember(ctx, ChannelSnapshot(c))
		}
	}
}

func UserSnapshot(u *tg.User) sidestore.Chat {
	title := u.FirstName
	if u.LastName != "" {
		title += " " + u.LastName
	}
	return sidestore.Chat{
		Kind:       command.PeerUser.String(),
		ID:         u.ID,
		AccessHash: u.AccessHash,
		Title:      title,
		Username:   u.Username,
	}
}

func ChatSnapshot(c *tg.Chat) sidestore.Chat {
	return sidestore.Chat{Kind: command.PeerChat.String(), ID: c.ID, Title: c.Title}
}

func ChannelSnapshot(c *tg.Channel) sidestore.Chat {
	return sidestore.Chat{
		Kind:       command.PeerChannel.String(),
		ID:         c.ID,
		AccessHash: c.AccessHash,
		Title:      c.Title,
		Username:   c.Username,
		Forum:      c.Forum,
	}
}
