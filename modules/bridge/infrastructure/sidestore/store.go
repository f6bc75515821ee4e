package sidestore

import (
	"context"
	"errors"

	"github.com/iota-uz/tgbridge/modules/bridge/domain/command"
)

var ErrNotFound = errors.New("sidestore: key not found")

// Topic is the cached metadata of a forum topic.
type Topic struct {
	Title     string `json:"title"`
	IconColor int    `json:"icon_color,omitempty"`
}

// Chat is a cached snapshot of a peer, enough to rebuild an input peer without
// asking Telegram again.
type Chat struct {
	Kind       string `json:"kind"`
	ID         int64  `json:"id"`
	AccessHash int64  `json:"access_hash,omitempty"`
	Title      string `json:"title,omitempty"`
	Username   string `json:"username,omitempty"`
	Forum      bool   `json:"forum,omitempty"`
}

// ChatID returns the signed chat id the snapshot is stored under.
func (c Chat) ChatID() command.ChatID {
	return command.Peer{Kind: peerKind(c.Kind), ID: c.ID}.ChatID()
}

func peerKind(s string) command.PeerKind {
	for _, k := range []command.PeerKind{command.PeerUser, command.PeerChat, command.PeerChannel} {
		if k.String() == s {
			return k
		}
	}
	return 0
}

// Store is a best-effort cache: reverse message lookups, forum topics and chat
// snapshots. Lookups of missing keys return ErrNotFound.
type Store interface {
	MessageChat(ctx context.Context, messageID int) (command.ChatID, error)
	// RememberMessages maps each message id to chatID unless the id is already mapped.
	RememberMessages(ctx context.Context, chatID command.ChatID, messageIDs []int) error
	Topic(ctx context.Context, chatID command.ChatID, topicID int) (Topic, error)
	SaveTopic(ctx context.Context, chatID command.ChatID, topicID int, t Topic) error
	Chat(ctx context.Context, chatID command.ChatID) (Chat, error)
	SaveChat(ctx context.Context, c Chat) error
	Ping(ctx context.Context) error
}
