package telegram

import (
	"strings"

	"github.com/go-faster/errors"
	"github.com/gotd/td/telegram/message/entity"
	"github.com/gotd/td/telegram/message/html"
	"github.com/gotd/td/tg"

	"github.com/iota-uz/tgbridge/modules/bridge/domain/command"
)

// styledText converts text in the given parse mode into plain text plus Telegram
// message entities.
func styledText(text string, mode command.ParseMode) (string, []tg.MessageEntityClass, error) {
	switch {
	case mode == command.ParseModeHTML:
		return fromHTML(text)
	case mode.IsMarkdown():
		plain, entities := fromMarkdown(text)
		return plain, entities, nil
	default:
		return text, nil, nil
	}
}

func fromHTML(s string) (string, []tg.MessageEntityClass, error) {
	var b entity.Builder
	if err := html.HTML(strings.NewReader(s), &b, html.Options{}); err != nil {
		return "", nil, errors.Wrap(err, "parse html")
	}
	text, entities := b.Complete()
	return text, entities, nil
}
