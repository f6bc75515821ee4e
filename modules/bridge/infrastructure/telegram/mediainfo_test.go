package telegram

import (
	"testing"
	"time"

	"github.com/gotd/td/tg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iota-uz/tgbridge/modules/bridge/domain/command"
)

func TestPhotoInfo_LastSizeWins(t *testing.T) {
	info := photoInfo([]tg.PhotoSizeClass{
		&tg.PhotoSize{Type: "s", W: 90, H: 90, Size: 1000},
		&tg.PhotoSize{Type: "m", W: 320, H: 240, Size: 9000},
		&tg.PhotoSize{Type: "x", W: 1280, H: 960, Size: 50000},
	})
	assert.Equal(t, command.FileTypePhoto, info.FileType)
	assert.Equal(t, "image/jpeg", info.MimeType)
	assert.Equal(t, 1280, info.Width)
	assert.Equal(t, 960, info.Height)
	assert.Equal(t, int64(50000), info.FileSize)
}

func TestPhotoInfo_ProgressiveAndCached(t *testing.T) {
	info := photoInfo([]tg.PhotoSizeClass{
		&tg.PhotoCachedSize{Type: "s", W: 10, H: 10, Bytes: []byte{1, 2, 3}},
	})
	assert.Equal(t, int64(3), info.FileSize)

	info = photoInfo([]tg.PhotoSizeClass{
		&tg.PhotoSizeProgressive{Type: "y", W: 800, H: 600, Sizes: []int{100, 2000, 30000}},
	})
	assert.Equal(t, 800, info.Width)
	assert.Equal(t, int64(30000), info.FileSize)
}

func TestDocumentInfo_LaterAttributesOverwrite(t *testing.T) {
	info := documentInfo([]tg.DocumentAttributeClass{
		&tg.DocumentAttributeFilename{FileName: "a.mp4"},
		&tg.DocumentAttributeVideo{W: 640, H: 480},
		&tg.DocumentAttributeAudio{Voice: true},
	})
	assert.Equal(t, command.FileTypeVoice, info.FileType)
	assert.Equal(t, "a.mp4", info.FileName)
	assert.Equal(t, 640, info.Width)
	assert.Equal(t, 480, info.Height)
}

func TestDocumentInfo_StickerKeepsImageSize(t *testing.T) {
	info := documentInfo([]tg.DocumentAttributeClass{
		&tg.DocumentAttributeSticker{Alt: ":)", Stickerset: &tg.InputStickerSetEmpty{}},
		&tg.DocumentAttributeImageSize{W: 512, H: 512},
	})
	assert.Equal(t, command.FileTypeSticker, info.FileType)
	assert.Equal(t, 512, info.Width)
}

func TestDocumentInfo_Defaults(t *testing.T) {
	info := documentInfo(nil)
	assert.Equal(t, command.FileTypeDocument, info.FileType)

	info = documentInfo([]tg.DocumentAttributeClass{&tg.DocumentAttributeAudio{}})
	assert.Equal(t, command.FileTypeAudio, info.FileType)
}

func TestExtractMediaInfo(t *testing.T) {
	date := int(time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC).Unix())

	msg := &tg.Message{ID: 1, Date: date}
	msg.SetMedia(&tg.MessageMediaDocument{})
	msg.Media.(*tg.MessageMediaDocument).SetDocument(&tg.Document{
		MimeType:   "video/mp4",
		Size:       4096,
		Attributes: []tg.DocumentAttributeClass{&tg.DocumentAttributeVideo{W: 1920, H: 1080}},
	})

	info, err := ExtractMediaInfo(msg)
	require.NoError(t, err)
	assert.Equal(t, command.FileTypeVideo, info.FileType)
	assert.Equal(t, "video/mp4", info.MimeType)
	assert.Equal(t, int64(4096), info.FileSize)
	assert.True(t, info.CreatedAt.Equal(time.Unix(int64(date), 0)))
}

func TestExtractMediaInfo_NoMedia(t *testing.T) {
	_, err := ExtractMediaInfo(&tg.Message{ID: 1})
	require.ErrorIs(t, err, ErrNoMedia)

	msg := &tg.Message{ID: 2}
	msg.SetMedia(&tg.MessageMediaGeo{Geo: &tg.GeoPointEmpty{}})
	_, err = ExtractMediaInfo(msg)
	require.ErrorIs(t, err, ErrUnsupportedMedia)
}
