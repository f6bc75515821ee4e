package command

import (
	"bytes"
	"encoding/json"
	"strconv"

	"github.com/go-faster/errors"
)

// ChatID is a signed chat identifier. On the wire it may be a JSON string or integer;
// either form is kept as its decimal string.
type ChatID string

func (c *ChatID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*c = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*c = ChatID(s)
		return nil
	}
	n, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return errors.Wrapf(err, "chat_id %s is neither a string nor an integer", data)
	}
	*c = ChatID(strconv.FormatInt(n, 10))
	return nil
}

func (c ChatID) String() string {
	return string(c)
}

// MessageIDs accepts either a single message id or a list of them.
type MessageIDs []int

func (m *MessageIDs) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*m = nil
		return nil
	}
	if len(data) > 0 && data[0] == '[' {
		var ids []int
		if err := json.Unmarshal(data, &ids); err != nil {
			return err
		}
		*m = ids
		return nil
	}
	var id int
	if err := json.Unmarshal(data, &id); err != nil {
		return errors.Wrap(err, "message_id must be an integer or a list of integers")
	}
	*m = MessageIDs{id}
	return nil
}
