package telegram

import (
	"time"

	"github.com/go-faster/errors"
	"github.com/gotd/td/tg"

	"github.com/iota-uz/tgbridge/modules/bridge/domain/command"
)

var (
	ErrNoMedia          = errors.New("message has no media")
	ErrUnsupportedMedia = errors.New("unsupported media")
)

// ExtractMediaInfo describes the photo or document attached to msg.
func ExtractMediaInfo(msg *tg.Message) (command.MediaFileInfo, error) {
	media, ok := msg.GetMedia()
	if !ok || media == nil {
		return command.MediaFileInfo{}, ErrNoMedia
	}
	created := time.Unix(int64(msg.Date), 0).UTC()

	switch m := media.(type) {
	case *tg.MessageMediaPhoto:
		photoClass, ok := m.GetPhoto()
		if !ok {
			return command.MediaFileInfo{}, ErrNoMedia
		}
		photo, ok := photoClass.AsNotEmpty()
		if !ok {
			return command.MediaFileInfo{}, ErrNoMedia
		}
		info := photoInfo(photo.Sizes)
		info.CreatedAt = created
		return info, nil
	case *tg.MessageMediaDocument:
		docClass, ok := m.GetDocument()
		if !ok {
			return command.MediaFileInfo{}, ErrNoMedia
		}
		doc, ok := docClass.AsNotEmpty()
		if !ok {
			return command.MediaFileInfo{}, ErrNoMedia
		}
		info := documentInfo(doc.Attributes)
		info.MimeType = doc.MimeType
		info.FileSize = doc.Size
		info.CreatedAt = created
		return info, nil
	default:
		return command.MediaFileInfo{}, errors.Wrapf(ErrUnsupportedMedia, "%T", media)
	}
}

// photoInfo reports the last listed size, which Telegram orders from smallest to largest.
func photoInfo(sizes []tg.PhotoSizeClass) command.MediaFileInfo {
	info := command.MediaFileInfo{FileType: command.FileTypePhoto, MimeType: "image/jpeg"}
	if len(sizes) == 0 {
		return info
	}
	switch s := sizes[len(sizes)-1].(type) {
	case *tg.PhotoSize:
		info.Width, info.Height, info.FileSize = s.W, s.H, int64(s.Size)
	case *tg.PhotoCachedSize:
		info.Width, info.Height, info.FileSize = s.W, s.H, int64(len(s.Bytes))
	case *tg.PhotoSizeProgressive:
		info.Width, info.Height = s.W, s.H
		if n := len(s.Sizes); n > 0 {
			info.FileSize = int64(s.Sizes[n-1])
		}
	}
	return info
}

// documentInfo applies attributes in order; a later attribute overwrites fields set
// by an earlier one.
func documentInfo(attrs []tg.DocumentAttributeClass) command.MediaFileInfo {
	info := command.MediaFileInfo{FileType: command.FileTypeDocument}
	for _, attr := range attrs {
		switch a := attr.(type) {
		case *tg.DocumentAttributeFilename:
			info.FileName = a.FileName
		case *tg.DocumentAttributeVideo:
			info.FileType = command.FileTypeVideo
			info.Width, info.Height = a.W, a.H
		case *tg.DocumentAttributeAudio:
			if a.Voice {
				info.FileType = command.FileTypeVoice
			} else {
				info.FileType = command.FileTypeAudio
			}
		case *tg.DocumentAttributeSticker:
			info.FileType = command.FileTypeSticker
		case *tg.DocumentAttributeImageSize:
			info.Width, info.Height = a.W, a.H
		}
	}
	return info
}
