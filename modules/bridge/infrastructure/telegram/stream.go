package telegram

import (
	"context"
	"io"
	"time"

	"github.com/go-faster/errors"
	"github.com/gotd/td/tg"
	"github.com/sirupsen/logrus"

	"github.com/iota-uz/tgbridge/modules/bridge/domain/command"
)

const progressEvery = 10

// Media is a downloadable file attached to a message.
type Media struct {
	Location tg.InputFileLocationClass
	Size     int64
	MimeType string
}

// Streamer reads message media in fixed-size chunks.
type Streamer struct {
	rpc       RPC
	peers     *PeerResolver
	chunkSize int
	logger    *logrus.Entry
	m         *metrics
}

// NewStreamer expects chunkSize to be a multiple of 4 KiB that divides 1 MiB.
func NewStreamer(rpc RPC, peers *PeerResolver, chunkSize int, logger *logrus.Entry) *Streamer {
	return &Streamer{rpc: rpc, peers: peers, chunkSize: chunkSize, logger: logger, m: getMetrics()}
}

// Open locates the media of a message.
func (s *Streamer) Open(ctx context.Context, chatID command.ChatID, messageID int) (Media, error) {
	msg, err := FetchMessage(ctx, s.rpc, s.peers, chatID, messageID)
	if err != nil {
		return Media{}, err
	}
	return mediaOf(msg)
}

func mediaOf(msg *tg.Message) (Media, error) {
	media, ok := msg.GetMedia()
	if !ok {
		return Media{}, ErrNoMedia
	}
	switch m := media.(type) {
	case *tg.MessageMediaDocument:
		docClass, ok := m.GetDocument()
		if !ok {
			return Media{}, ErrNoMedia
		}
		doc, ok := docClass.AsNotEmpty()
		if !ok {
			return Media{}, ErrNoMedia
		}
		return Media{
			Location: &tg.InputDocumentFileLocation{
				ID:            doc.ID,
				AccessHash:    doc.AccessHash,
				FileReference: doc.FileReference,
			},
			Size:     doc.Size,
			MimeType: doc.MimeType,
		}, nil
	case *tg.MessageMediaPhoto:
		photoClass, ok := m.GetPhoto()
		if !ok {
			return Media{}, ErrNoMedia
		}
		photo, ok := photoClass.AsNotEmpty()
		if !ok || len(photo.Sizes) == 0 {
			return Media{}, ErrNoMedia
		}
		largest := photo.Sizes[len(photo.Sizes)-1]
		return Media{
			Location: &tg.InputPhotoFileLocation{
				ID:            photo.ID,
				AccessHash:    photo.AccessHash,
				FileReference: photo.FileReference,
				ThumbSize:     largest.GetType(),
			},
			Size:     photoInfo(photo.Sizes).FileSize,
			MimeType: "image/jpeg",
		}, nil
	default:
		return Media{}, errors.Wrapf(ErrUnsupportedMedia, "%T", media)
	}
}

// Stream writes media bytes starting at offset to w. Requests are aligned down to
// the chunk size and the leading bytes before offset are skipped. It stops at the
// first short chunk, on ctx cancellation or when w fails.
func (s *Streamer) Stream(ctx context.Context, media Media, offset int64, w io.Writer) (int64, error) {
	chunk := int64(s.chunkSize)
	pos := offset - offset%chunk
	skip := offset - pos

	var (
		written int64
		chunks  int
		start   = time.Now()
	)
	for {
		if err := ctx.Err(); err != nil {
			return written, err
		}
		res, err := s.rpc.UploadGetFile(ctx, &tg.UploadGetFileRequest{
			Location: media.Location,
			Offset:   pos,
			Limit:    s.chunkSize,
		})
		if err != nil {
			return written, errors.Wrap(err, "get file")
		}
		file, ok := res.(*tg.UploadFile)
		if !ok {
			return written, errors.Errorf("unexpected %T", res)
		}

		data := file.Bytes
		if skip > 0 {
			if skip >= int64(len(data)) {
				data = nil
			} else {
				data = data[skip:]
			}
			skip = 0
		}
		if len(data) > 0 {
			n, err := w.Write(data)
			written += int64(n)
			s.m.streamBytes.Add(float64(n))
			if err != nil {
				return written, err
			}
		}

		chunks++
		s.m.streamChunks.Inc()
		if chunks%progressEvery == 0 {
			mb := float64(written) / (1 << 20)
			s.logger.WithFields(logrus.Fields{
				"chunks": chunks,
				"mb":     mb,
				"mb_s":   mb / time.Since(start).Seconds(),
			}).Info("media stream progress")
		}

		if int64(len(file.Bytes)) < chunk {
			return written, nil
		}
		pos += chunk
	}
}
