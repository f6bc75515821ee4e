package command

import (
	"strconv"
	"strings"

	"github.com/go-faster/errors"
)

// PeerKind is one of the three Telegram address spaces.
type PeerKind int

const (
	PeerUser PeerKind = iota + 1
	PeerChat
	PeerChannel
)

func (k PeerKind) String() string {
	switch k {
	case PeerUser:
		return "user"
	case PeerChat:
		return "chat"
	case PeerChannel:
		return "channel"
	default:
		return "unknown"
	}
}

const channelPrefix = "-100"

var ErrInvalidChatID = errors.New("invalid chat id")

type Peer struct {
	Kind PeerKind
	ID   int64
}

// ParsePeer classifies a chat id: "-100<id>" is a channel or supergroup, "-<id>" is a
// basic group and anything else is a user.
func ParsePeer(chatID ChatID) (Peer, error) {
	s := strings.TrimSpace(string(chatID))
	var (
		kind PeerKind
		rest string
	)
	switch {
	case strings.HasPrefix(s, channelPrefix):
		kind, rest = PeerChannel, s[len(channelPrefix):]
	case strings.HasPrefix(s, "-"):
		kind, rest = PeerChat, s[1:]
	default:
		kind, rest = PeerUser, s
	}
	id, err := strconv.ParseInt(rest, 10, 64)
	if err != nil || id <= 0 {
		return Peer{}, errors.Wrapf(ErrInvalidChatID, "%q", string(chatID))
	}
	return Peer{Kind: kind, ID: id}, nil
}

// ChatID returns the signed string form that ParsePeer accepts.
func (p Peer) ChatID() ChatID {
	id := strconv.FormatInt(p.ID, 10)
	switch p.Kind {
	case PeerChannel:
		return ChatID(channelPrefix + id)
	case PeerChat:
		return ChatID("-" + id)
	default:
		return ChatID(id)
	}
}

func (p Peer) String() string {
	return p.Kind.String() + ":" + strconv.FormatInt(p.ID, 10)
}
