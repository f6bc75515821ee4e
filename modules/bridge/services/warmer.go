package services

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/gotd/td/tg"
	"github.com/gotd/td/tgerr"
	"github.com/sirupsen/logrus"

	"github.com/iota-uz/tgbridge/modules/bridge/domain/command"
	"github.com/iota-uz/tgbridge/modules/bridge/infrastructure/sidestore"
	"github.com/iota-uz/tgbridge/modules/bridge/infrastructure/telegram"
	"github.com/iota-uz/tgbridge/pkg/logging"
)

type WarmerOptions struct {
	// Dialogs is how many recent dialogs are loaded.
	Dialogs int
	// History is how many recent messages are loaded per basic group.
	History int
	Logger  *logrus.Entry
}

type WarmStats struct {
	Chats    int
	Groups   int
	Messages int
}

// Warmer fills the side-store from recent dialogs: chat snapshots for every peer and
// message lookups for basic groups.
type Warmer struct {
	rpc   telegram.RPC
	peers *telegram.PeerResolver
	store sidestore.Store
	opts  WarmerOptions
}

func NewWarmer(rpc telegram.RPC, peers *telegram.PeerResolver, store sidestore.Store, opts WarmerOptions) *Warmer {
	if opts.Dialogs <= 0 {
		opts.Dialogs = 100
	}
	if opts.History <= 0 {
		opts.History = 200
	}
	if opts.Logger == nil {
		opts.Logger = logging.Nop()
	}
	return &Warmer{rpc: rpc, peers: peers, store: store, opts: opts}
}

func (w *Warmer) Warm(ctx context.Context) (WarmStats, error) {
	res, err := w.rpc.MessagesGetDialogs(ctx, &tg.MessagesGetDialogsRequest{
		OffsetPeer: &tg.InputPeerEmpty{},
		Limit:      w.opts.Dialogs,
	})
	if err != nil {
		return WarmStats{}, errors.Wrap(err, "get dialogs")
	}
	dialogs, ok := res.AsModified()
	if !ok {
		return WarmStats{}, nil
	}

	entities := dialogEntities(dialogs.GetUsers(), dialogs.GetChats())
	w.peers.Remember(ctx, entities)

	stats := WarmStats{Chats: len(entities.Users) + len(entities.Chats) + len(entities.Channels)}
	for _, chat := range entities.Chats {
		if chat.Deactivated {
			continue
		}
		n, err := w.warmGroup(ctx, chat)
		if err != nil {
			if ctx.Err() != nil {
				return stats, ctx.Err()
			}
			logger := w.opts.Logger.WithError(err).WithField("chat_id", chat.ID)
			if _, ok := tgerr.AsFloodWait(err); ok {
				logger.Warn("flood wait while loading group history, skipping")
			} else {
				logger.Warn("failed to load group history")
			}
			continue
		}
		stats.Groups++
		stats.Messages += n
	}

	w.opts.Logger.WithFields(logrus.Fields{
		"chats":    stats.Chats,
		"groups":   stats.Groups,
		"messages": stats.Messages,
	}).Info("side-store warmed up")
	return stats, nil
}

func (w *Warmer) warmGroup(ctx context.Context, chat *tg.Chat) (int, error) {
	res, err := w.rpc.MessagesGetHistory(ctx, &tg.MessagesGetHistoryRequest{
		Peer:  &tg.InputPeerChat{ChatID: chat.ID},
		Limit: w.opts.History,
	})
	if err != nil {
		return 0, errors.Wrap(err, "get history")
	}
	history, ok := res.AsModified()
	if !ok {
		return 0, nil
	}

	ids := make([]int, 0, len(history.GetMessages()))
	for _, m := range history.GetMessages() {
		if _, empty := m.(*tg.MessageEmpty); empty {
			continue
		}
		ids = append(ids, m.GetID())
	}
	if len(ids) == 0 {
		return 0, nil
	}
	chatID := command.Peer{Kind: command.PeerChat, ID: chat.ID}.ChatID()
	if err := w.store.RememberMessages(ctx, chatID, ids); err != nil {
		return 0, errors.Wrap(err, "remember messages")
	}
	return len(ids), nil
}

func dialogEntities(users []tg.UserClass, chats []tg.ChatClass) tg.Entities {
	e := tg.Entities{
		Users:    map[int64]*tg.User{},
		Chats:    map[int64]*tg.Chat{},
		Channels: map[int64]*tg.Channel{},
	}
	for _, u := range users {
		if user, ok := u.(*tg.User); ok {
			e.Users[user.ID] = user
		}
	}
	for _, c := range chats {
		switch v := c.(type) {
		case *tg.Chat:
			e.Chats[v.ID] = v
		case *tg.Channel:
			e.Channels[v.ID] = v
		}
	}
	return e
}
