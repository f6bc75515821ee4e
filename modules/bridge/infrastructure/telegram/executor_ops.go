package telegram

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/gotd/td/tg"
	"github.com/sirupsen/logrus"

	"github.com/iota-uz/tgbridge/modules/bridge/domain/command"
	"github.com/iota-uz/tgbridge/modules/bridge/infrastructure/sidestore"
)

func replyTo(id int) *tg.InputReplyToMessage {
	return &tg.InputReplyToMessage{ReplyToMsgID: id}
}

func (e *Executor) SendMessage(ctx context.Context, r *command.SendMessage) command.Outcome {
	return e.run(ctx, r, func(ctx context.Context) error {
		peer, err := e.peers.InputPeer(ctx, r.ChatID)
		if err != nil {
			return err
		}
		text, entities, err := styledText(r.Text, r.ParseMode)
		if err != nil {
			return err
		}
		req := &tg.MessagesSendMessageRequest{
			Peer:     peer,
			Message:  text,
			RandomID: randomID(),
		}
		req.SetSilent(r.DisableNotification)
		if len(entities) > 0 {
			req.SetEntities(entities)
		}
		if id := r.ReplyTo(); id != 0 {
			req.SetReplyTo(replyTo(id))
		}
		_, err = e.rpc.MessagesSendMessage(ctx, req)
		return err
	})
}

func (e *Executor) EditMessage(ctx context.Context, r *command.EditMessage) command.Outcome {
	return e.run(ctx, r, func(ctx context.Context) error {
		peer, err := e.peers.InputPeer(ctx, r.ChatID)
		if err != nil {
			return err
		}
		text, entities, err := styledText(r.Text, r.ParseMode)
		if err != nil {
			return err
		}
		req := &tg.MessagesEditMessageRequest{Peer: peer, ID: r.MessageID}
		req.SetMessage(text)
		if len(entities) > 0 {
			req.SetEntities(entities)
		}
		_, err = e.rpc.MessagesEditMessage(ctx, req)
		return err
	})
}

func (e *Executor) DeleteMessage(ctx context.Context, r *command.DeleteMessage) command.Outcome {
	return e.run(ctx, r, func(ctx context.Context) error {
		peer, err := command.ParsePeer(r.ChatID)
		if err != nil {
			return err
		}
		ids := []int(r.MessageIDs)
		if peer.Kind == command.PeerChannel {
			ch, err := e.peers.InputChannel(ctx, r.ChatID)
			if err != nil {
				return err
			}
			_, err = e.rpc.ChannelsDeleteMessages(ctx, &tg.ChannelsDeleteMessagesRequest{Channel: ch, ID: ids})
			return err
		}
		_, err = e.rpc.MessagesDeleteMessages(ctx, &tg.MessagesDeleteMessagesRequest{Revoke: true, ID: ids})
		return err
	})
}

func (e *Executor) MessagePin(ctx context.Context, r *command.MessagePin) command.Outcome {
	return e.run(ctx, r, func(ctx context.Context) error {
		return e.updatePinned(ctx, r.ChatID, r.MessageID, false)
	})
}

func (e *Executor) MessageUnpin(ctx context.Context, r *command.MessageUnpin) command.Outcome {
	return e.run(ctx, r, func(ctx context.Context) error {
		return e.updatePinned(ctx, r.ChatID, r.MessageID, true)
	})
}

func (e *Executor) updatePinned(ctx context.Context, chatID command.ChatID, id int, unpin bool) error {
	peer, err := e.peers.InputPeer(ctx, chatID)
	if err != nil {
		return err
	}
	req := &tg.MessagesUpdatePinnedMessageRequest{Peer: peer, ID: id}
	req.SetSilent(true)
	req.SetUnpin(unpin)
	_, err = e.rpc.MessagesUpdatePinnedMessage(ctx, req)
	return err
}

func (e *Executor) SendPhoto(ctx context.Context, r *command.SendPhoto) command.Outcome {
	return e.run(ctx, r, func(ctx context.Context) error {
		return e.sendMedia(ctx, r.ChatID, mediaPhoto, r.Photo, r.Caption, r.ParseMode, r.TopicID)
	})
}

func (e *Executor) SendVideo(ctx context.Context, r *command.SendVideo) command.Outcome {
	return e.run(ctx, r, func(ctx context.Context) error {
		return e.sendMedia(ctx, r.ChatID, mediaVideo, r.Video, r.Caption, r.ParseMode, r.TopicID)
	})
}

func (e *Executor) SendAudio(ctx context.Context, r *command.SendAudio) command.Outcome {
	return e.run(ctx, r, func(ctx context.Context) error {
		return e.sendMedia(ctx, r.ChatID, mediaAudio, r.Audio, r.Caption, r.ParseMode, r.TopicID)
	})
}

func (e *Executor) SendDocument(ctx context.Context, r *command.SendDocument) command.Outcome {
	return e.run(ctx, r, func(ctx context.Context) error {
		return e.sendMedia(ctx, r.ChatID, mediaDocument, r.Document, r.Caption, r.ParseMode, r.TopicID)
	})
}

func (e *Executor) SendSticker(ctx context.Context, r *command.SendSticker) command.Outcome {
	return e.run(ctx, r, func(ctx context.Context) error {
		return e.sendMedia(ctx, r.ChatID, mediaSticker, r.Sticker, "", command.ParseModeNone, r.TopicID)
	})
}

func (e *Executor) SendVoice(ctx context.Context, r *command.SendVoice) command.Outcome {
	return e.run(ctx, r, func(ctx context.Context) error {
		return e.sendMedia(ctx, r.ChatID, mediaVoice, r.Voice, r.Caption, command.ParseModeNone, r.TopicID)
	})
}

func (e *Executor) SendGIF(ctx context.Context, r *command.SendGIF) command.Outcome {
	return e.run(ctx, r, func(ctx context.Context) error {
		return e.sendMedia(ctx, r.ChatID, mediaGIF, r.GIF, r.Caption, r.ParseMode, r.TopicID)
	})
}

func (e *Executor) sendMedia(
	ctx context.Context,
	chatID command.ChatID,
	kind mediaKind,
	ref, caption string,
	mode command.ParseMode,
	topicID int,
) error {
	peer, err := e.peers.InputPeer(ctx, chatID)
	if err != nil {
		return err
	}
	text, entities, err := styledText(caption, mode)
	if err != nil {
		return err
	}
	media, err := e.inputMedia(ctx, kind, ref)
	if err != nil {
		return err
	}
	req := &tg.MessagesSendMediaRequest{
		Peer:     peer,
		Media:    media,
		Message:  text,
		RandomID: randomID(),
	}
	if len(entities) > 0 {
		req.SetEntities(entities)
	}
	if topicID != 0 {
		req.SetReplyTo(replyTo(topicID))
	}
	_, err = e.rpc.MessagesSendMedia(ctx, req)
	return err
}

func (e *Executor) CreateTopic(ctx context.Context, r *command.CreateTopic) command.Outcome {
	return e.run(ctx, r, func(ctx context.Context) error {
		ch, err := e.peers.InputChannel(ctx, r.ChatID)
		if err != nil {
			return err
		}
		req := &tg.ChannelsCreateForumTopicRequest{
			Channel:  ch,
			Title:    r.Title,
			RandomID: randomID(),
		}
		if r.IconColor != 0 {
			req.SetIconColor(r.IconColor)
		}
		updates, err := e.rpc.ChannelsCreateForumTopic(ctx, req)
		if err != nil {
			return err
		}
		if id := createdTopicID(updates); id != 0 {
			e.saveTopic(ctx, r.ChatID, id, sidestore.Topic{Title: r.Title, IconColor: r.IconColor})
		} else {
			e.logger.WithField("chat_id", r.ChatID).Warn("created topic id not found in updates")
		}
		return nil
	})
}

func (e *Executor) EditTopic(ctx context.Context, r *command.EditTopic) command.Outcome {
	return e.run(ctx, r, func(ctx context.Context) error {
		ch, err := e.peers.InputChannel(ctx, r.ChatID)
		if err != nil {
			return err
		}
		req := &tg.ChannelsEditForumTopicRequest{Channel: ch, TopicID: r.TopicID}
		req.SetTitle(r.Title)
		if _, err := e.rpc.ChannelsEditForumTopic(ctx, req); err != nil {
			return err
		}

		topic, err := e.store.Topic(ctx, r.ChatID, r.TopicID)
		if err != nil && !errors.Is(err, sidestore.ErrNotFound) {
			e.logger.WithError(err).Warn("failed to read cached topic")
		}
		topic.Title = r.Title
		e.saveTopic(ctx, r.ChatID, r.TopicID, topic)
		return nil
	})
}

func (e *Executor) DeleteTopic(ctx context.Context, r *command.DeleteTopic) command.Outcome {
	return e.run(ctx, r, func(ctx context.Context) error {
		ch, err := e.peers.InputChannel(ctx, r.ChatID)
		if err != nil {
			return err
		}
		// Telegram deletes history in portions; repeat while it reports more to go.
		for {
			res, err := e.rpc.ChannelsDeleteTopicHistory(ctx, &tg.ChannelsDeleteTopicHistoryRequest{
				Channel:  ch,
				TopMsgID: r.TopicID,
			})
			if err != nil {
				return err
			}
			if res.Offset <= 0 {
				return nil
			}
		}
	})
}

func (e *Executor) MediaFileInfo(ctx context.Context, r *command.MediaFileInfoRequest) command.Outcome {
	return e.run(ctx, r, func(ctx context.Context) error {
		logger := e.logger.WithFields(logrus.Fields{
			"chat_id":    r.ChatID,
			"message_id": r.MessageID,
			"request_id": r.RequestID,
		})

		resp := command.FailResponse(r.RequestID)
		msg, err := FetchMessage(ctx, e.rpc, e.peers, r.ChatID, r.MessageID)
		switch {
		case err != nil && isFloodWait(err):
			return err
		case err != nil:
			logger.WithError(err).Error("media lookup failed")
		default:
			info, err := ExtractMediaInfo(msg)
			if err != nil {
				logger.WithError(err).Error("no media found on message")
			} else {
				resp = command.SuccessResponse(r.RequestID, info)
			}
		}

		if err := e.respond(ctx, resp); err != nil {
			logger.WithError(err).Error("failed to publish media info response")
		}
		return nil
	})
}

// Abandon publishes a fail response for a media info request that ran out of
// attempts. Other kinds have no response to send.
func (e *Executor) Abandon(ctx context.Context, r command.Request, cause error) {
	req, ok := r.(*command.MediaFileInfoRequest)
	if !ok {
		return
	}
	logger := e.logger.WithFields(logrus.Fields{
		"chat_id":    req.ChatID,
		"message_id": req.MessageID,
		"request_id": req.RequestID,
	})
	logger.WithError(cause).Error("media info request abandoned")
	if err := e.respond(context.WithoutCancel(ctx), command.FailResponse(req.RequestID)); err != nil {
		logger.WithError(err).Error("failed to publish media info response")
	}
}

func (e *Executor) saveTopic(ctx context.Context, chatID command.ChatID, topicID int, t sidestore.Topic) {
	if err := e.store.SaveTopic(ctx, chatID, topicID, t); err != nil {
		e.logger.WithError(err).WithField("topic_id", topicID).Warn("failed to cache topic")
	}
}
