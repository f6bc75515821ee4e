package command

import (
	"encoding/json"
	"time"
)

type Status string

const (
	StatusSuccess Status = "success"
	StatusFail    Status = "fail"
)

type FileType string

const (
	FileTypePhoto    FileType = "photo"
	FileTypeVideo    FileType = "video"
	FileTypeAudio    FileType = "audio"
	FileTypeVoice    FileType = "voice"
	FileTypeDocument FileType = "document"
	FileTypeSticker  FileType = "sticker"
)

// CreatedAtLayout is the wire format of MediaFileInfo.CreatedAt.
const CreatedAtLayout = "2006-01-02T15:04:05-07:00"

// responseRequestType is stamped on every response, whatever command produced it.
const responseRequestType = "media_file_info"

type MediaFileInfo struct {
	FileType  FileType
	FileName  string
	MimeType  string
	FileSize  int64
	Width     int
	Height    int
	CreatedAt time.Time
}

type mediaFileInfoJSON struct {
	FileType  FileType `json:"file_type"`
	FileName  *string  `json:"file_name"`
	MimeType  string   `json:"mime_type"`
	FileSize  int64    `json:"file_size"`
	Width     *int     `json:"width"`
	Height    *int     `json:"height"`
	CreatedAt string   `json:"created_at"`
}

func (m MediaFileInfo) MarshalJSON() ([]byte, error) {
	out := mediaFileInfoJSON{
		FileType:  m.FileType,
		MimeType:  m.MimeType,
		FileSize:  m.FileSize,
		CreatedAt: m.CreatedAt.UTC().Format(CreatedAtLayout),
	}
	if m.FileName != "" {
		out.FileName = &m.FileName
	}
	// Zero dimensions mean the media carried none.
	if m.Width != 0 || m.Height != 0 {
		out.Width = &m.Width
		out.Height = &m.Height
	}
	return json.Marshal(out)
}

func (m *MediaFileInfo) UnmarshalJSON(data []byte) error {
	var in mediaFileInfoJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	*m = MediaFileInfo{
		FileType: in.FileType,
		MimeType: in.MimeType,
		FileSize: in.FileSize,
	}
	if in.FileName != nil {
		m.FileName = *in.FileName
	}
	if in.Width != nil {
		m.Width = *in.Width
	}
	if in.Height != nil {
		m.Height = *in.Height
	}
	if in.CreatedAt != "" {
		t, err := time.Parse(CreatedAtLayout, in.CreatedAt)
		if err != nil {
			return err
		}
		m.CreatedAt = t
	}
	return nil
}

// Response is published to the responses topic, keyed by RequestID.
type Response struct {
	Status    Status         `json:"status"`
	RequestID string         `json:"request_id"`
	MediaInfo *MediaFileInfo `json:"media_info"`
}

// MarshalJSON always sets request_type to "media_file_info" to stay wire compatible
// with existing consumers.
func (r Response) MarshalJSON() ([]byte, error) {
	type plain Response
	return json.Marshal(struct {
		plain
		RequestType string `json:"request_type"`
	}{plain: plain(r), RequestType: responseRequestType})
}

func SuccessResponse(requestID string, info MediaFileInfo) Response {
	return Response{Status: StatusSuccess, RequestID: requestID, MediaInfo: &info}
}

func FailResponse(requestID string) Response {
	return Response{Status: StatusFail, RequestID: requestID}
}
