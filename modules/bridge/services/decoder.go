package services

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/tidwall/gjson"

	"github.com/iota-uz/tgbridge/modules/bridge/domain/command"
	"github.com/iota-uz/tgbridge/pkg/dispatch"
)

var ErrMalformedPayload = errors.New("payload is not a JSON object")

const kindField = "request_type"

// Decoder turns raw command payloads into dispatch units bound to a handler.
type Decoder struct {
	handler command.Handler
}

func NewDecoder(handler command.Handler) *Decoder {
	return &Decoder{handler: handler}
}

// Decode returns (nil, nil) for payloads whose request_type is missing or unknown.
// Payloads that fail to parse or validate return a *command.ValidationError.
func (d *Decoder) Decode(raw []byte) (*dispatch.Unit, error) {
	if !gjson.ValidBytes(raw) {
		return nil, &command.ValidationError{Err: ErrMalformedPayload}
	}
	doc := gjson.ParseBytes(raw)
	if !doc.IsObject() {
		return nil, &command.ValidationError{Err: ErrMalformedPayload}
	}
	tag := doc.Get(kindField)
	if tag.Type != gjson.String {
		return nil, nil
	}
	kind, ok := command.Lookup(tag.Str)
	if !ok {
		return nil, nil
	}

	req, err := command.Parse(kind, raw)
	if err != nil {
		return nil, err
	}
	unit := &dispatch.Unit{
		Name:      string(kind),
		RequestID: req.ID(),
		Run: func(ctx context.Context) error {
			return req.Accept(ctx, d.handler).Err()
		},
	}
	if a, ok := d.handler.(command.Abandoner); ok {
		unit.OnDrop = func(ctx context.Context, lastErr error) {
			a.Abandon(ctx, req, lastErr)
		}
	}
	return unit, nil
}
