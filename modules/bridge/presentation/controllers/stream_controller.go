package controllers

import (
	"context"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-faster/errors"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/iota-uz/tgbridge/modules/bridge/domain/command"
	"github.com/iota-uz/tgbridge/modules/bridge/infrastructure/telegram"
	"github.com/iota-uz/tgbridge/pkg/application"
	"github.com/iota-uz/tgbridge/pkg/httpapi"
	"github.com/iota-uz/tgbridge/pkg/middleware"
)

// MediaStreamer is satisfied by *telegram.Streamer.
type MediaStreamer interface {
	Open(ctx context.Context, chatID command.ChatID, messageID int) (telegram.Media, error)
	Stream(ctx context.Context, media telegram.Media, offset int64, w io.Writer) (int64, error)
}

type StreamController struct {
	streamer MediaStreamer
	logger   *logrus.Entry
	basePath string
}

func NewStreamController(streamer MediaStreamer, logger *logrus.Entry) application.Controller {
	return &StreamController{
		streamer: streamer,
		logger:   logger,
		basePath: "/internal/stream",
	}
}

func (c *StreamController) Key() string {
	return c.basePath
}

func (c *StreamController) Register(r *mux.Router) {
	router := r.PathPrefix(c.basePath).Subrouter()
	router.HandleFunc("/{chat_id}/{msg_id}", c.Stream).Methods(http.MethodGet)
}

// Stream sends the media of a message from the requested byte offset.
func (c *StreamController) Stream(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	chatID := command.ChatID(vars["chat_id"])
	if _, err := command.ParsePeer(chatID); err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "STREAM_INVALID_CHAT_ID", "invalid chat id", nil)
		return
	}
	msgID, err := strconv.Atoi(vars["msg_id"])
	if err != nil || msgID <= 0 {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "STREAM_INVALID_MESSAGE_ID", "invalid message id", nil)
		return
	}
	var offset int64
	if v := strings.TrimSpace(r.URL.Query().Get("offset")); v != "" {
		offset, err = strconv.ParseInt(v, 10, 64)
		if err != nil || offset < 0 {
			_ = httpapi.WriteError(w, http.StatusBadRequest, "STREAM_INVALID_OFFSET", "invalid offset", nil)
			return
		}
	}

	logger := middleware.Logger(r.Context(), c.logger).WithFields(logrus.Fields{
		"chat_id":    chatID,
		"message_id": msgID,
		"offset":     offset,
	})

	media, err := c.streamer.Open(r.Context(), chatID, msgID)
	if err != nil {
		if isNotFound(err) {
			logger.WithError(err).Info("media not found")
			_ = httpapi.WriteError(w, http.StatusNotFound, "STREAM_NOT_FOUND", "media not found", nil)
			return
		}
		logger.WithError(err).Error("failed to open media")
		_ = httpapi.WriteError(w, http.StatusBadGateway, "STREAM_UPSTREAM", "failed to open media", nil)
		return
	}

	w.Header().Set("Accept-Ranges", "bytes")
	w.Header().Set("Content-Type", "video/mp4")
	if media.Size > offset {
		w.Header().Set("Content-Length", strconv.FormatInt(media.Size-offset, 10))
	}
	w.WriteHeader(http.StatusOK)

	n, err := c.streamer.Stream(r.Context(), media, offset, flushWriter{w: w})
	switch {
	case err == nil:
		logger.WithField("bytes", n).Info("media streamed")
	case r.Context().Err() != nil:
		logger.WithField("bytes", n).Debug("client disconnected during stream")
	default:
		logger.WithError(err).WithField("bytes", n).Warn("media stream interrupted")
	}
}

func isNotFound(err error) bool {
	return errors.Is(err, telegram.ErrMessageNotFound) ||
		errors.Is(err, telegram.ErrNoMedia) ||
		errors.Is(err, telegram.ErrUnsupportedMedia) ||
		errors.Is(err, telegram.ErrPeerNotFound)
}

// flushWriter pushes every chunk to the client as soon as it is written.
type flushWriter struct {
	w http.ResponseWriter
}

func (f flushWriter) Write(p []byte) (int, error) {
	n, err := f.w.Write(p)
	if fl, ok := f.w.(http.Flusher); ok {
		fl.Flush()
	}
	return n, err
}
