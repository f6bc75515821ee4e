package command

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResponse_SuccessWireFormat(t *testing.T) {
	created := time.Date(2024, 3, 1, 12, 30, 0, 0, time.FixedZone("UTC+5", 5*3600))
	resp := SuccessResponse("req-1", MediaFileInfo{
		FileType:  FileTypeVideo,
		FileName:  "a.mp4",
		MimeType:  "video/mp4",
		FileSize:  1024,
		Width:     640,
		Height:    480,
		CreatedAt: created,
	})

	raw, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"status": "success",
		"request_id": "req-1",
		"request_type": "media_file_info",
		"media_info": {
			"file_type": "video",
			"file_name": "a.mp4",
			"mime_type": "video/mp4",
			"file_size": 1024,
			"width": 640,
			"height": 480,
			"created_at": "2024-03-01T07:30:00+00:00"
		}
	}`, string(raw))
}

func TestResponse_FailWireFormat(t *testing.T) {
	raw, err := json.Marshal(FailResponse("req-2"))
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"status": "fail",
		"request_id": "req-2",
		"request_type": "media_file_info",
		"media_info": null
	}`, string(raw))
}

func TestMediaFileInfo_OptionalFieldsAreNull(t *testing.T) {
	raw, err := json.Marshal(MediaFileInfo{
		FileType:  FileTypeAudio,
		MimeType:  "audio/mpeg",
		FileSize:  10,
		CreatedAt: time.Unix(0, 0),
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"file_type": "audio",
		"file_name": null,
		"mime_type": "audio/mpeg",
		"file_size": 10,
		"width": null,
		"height": null,
		"created_at": "1970-01-01T00:00:00+00:00"
	}`, string(raw))

	var back MediaFileInfo
	require.NoError(t, json.Unmarshal(raw, &back))
	assert.Equal(t, FileTypeAudio, back.FileType)
	assert.True(t, back.CreatedAt.Equal(time.Unix(0, 0)))
}
