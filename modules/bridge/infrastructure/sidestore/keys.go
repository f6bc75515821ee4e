package sidestore

import (
	"fmt"

	"github.com/iota-uz/tgbridge/modules/bridge/domain/command"
)

func messageKey(messageID int) string {
	return fmt.Sprintf("msg:%d", messageID)
}

func topicKey(chatID command.ChatID, topicID int) string {
	return fmt.Sprintf("topic:%s:%d", chatID, topicID)
}

func chatKey(chatID command.ChatID) string {
	return fmt.Sprintf("chat:%s", chatID)
}
