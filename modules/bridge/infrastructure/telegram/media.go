package telegram

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-faster/errors"
	"github.com/go-resty/resty/v2"
	"github.com/gotd/td/tg"
)

type mediaKind int

const (
	mediaPhoto mediaKind = iota
	mediaVideo
	mediaAudio
	mediaDocument
	mediaSticker
	mediaVoice
	mediaGIF
)

func isURL(ref string) bool {
	lower := strings.ToLower(strings.TrimSpace(ref))
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

// inputMedia turns a media reference into an InputMedia. URLs are sent as external
// media except voice notes, which are downloaded so the voice attribute can be set.
// Anything else is treated as a local file path and uploaded.
func (e *Executor) inputMedia(ctx context.Context, kind mediaKind, ref string) (tg.InputMediaClass, error) {
	ref = strings.TrimSpace(ref)
	if isURL(ref) && kind != mediaVoice {
		if kind == mediaPhoto {
			return &tg.InputMediaPhotoExternal{URL: ref}, nil
		}
		return &tg.InputMediaDocumentExternal{URL: ref}, nil
	}

	var (
		file tg.InputFileClass
		mime string
		name string
		err  error
	)
	if isURL(ref) {
		var body []byte
		body, err = e.download(ctx, ref)
		if err != nil {
			return nil, err
		}
		name = filepath.Base(strings.SplitN(ref, "?", 2)[0])
		mime = mimetype.Detect(body).String()
		file, err = e.uploader.FromBytes(ctx, name, body)
	} else {
		name = filepath.Base(ref)
		var detected *mimetype.MIME
		detected, err = mimetype.DetectFile(ref)
		if err != nil {
			return nil, errors.Wrapf(err, "open %s", ref)
		}
		mime = detected.String()
		file, err = e.uploader.FromPath(ctx, ref)
	}
	if err != nil {
		return nil, errors.Wrap(err, "upload media")
	}

	if kind == mediaPhoto {
		return &tg.InputMediaUploadedPhoto{File: file}, nil
	}
	doc := &tg.InputMediaUploadedDocument{
		File:       file,
		MimeType:   mime,
		Attributes: []tg.DocumentAttributeClass{&tg.DocumentAttributeFilename{FileName: name}},
	}
	switch kind {
	case mediaVideo:
		doc.Attributes = append(doc.Attributes, &tg.DocumentAttributeVideo{SupportsStreaming: true})
	case mediaAudio:
		doc.Attributes = append(doc.Attributes, &tg.DocumentAttributeAudio{})
	case mediaVoice:
		doc.Attributes = []tg.DocumentAttributeClass{&tg.DocumentAttributeAudio{Voice: true}}
	case mediaGIF:
		doc.Attributes = append(doc.Attributes, &tg.DocumentAttributeAnimated{})
	case mediaSticker:
		doc.Attributes = append(doc.Attributes, &tg.DocumentAttributeSticker{Stickerset: &tg.InputStickerSetEmpty{}})
	case mediaDocument:
		doc.ForceFile = true
	}
	return doc, nil
}

func (e *Executor) download(ctx context.Context, url string) ([]byte, error) {
	resp, err := e.http.R().SetContext(ctx).Get(url)
	if err != nil {
		return nil, errors.Wrapf(err, "download %s", url)
	}
	if resp.IsError() {
		return nil, errors.Errorf("download %s: unexpected status %d", url, resp.StatusCode())
	}
	return resp.Body(), nil
}

func newHTTPClient() *resty.Client {
	return resty.New().SetRetryCount(2)
}
