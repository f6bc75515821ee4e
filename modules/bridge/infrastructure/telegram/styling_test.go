package telegram

import (
	"testing"

	"github.com/gotd/td/tg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iota-uz/tgbridge/modules/bridge/domain/command"
)

func TestStyledText_Plain(t *testing.T) {
	text, entities, err := styledText("<b>not parsed</b>", command.ParseModeNone)
	require.NoError(t, err)
	assert.Equal(t, "<b>not parsed</b>", text)
	assert.Empty(t, entities)
}

func TestStyledText_HTML(t *testing.T) {
	text, entities, err := styledText("<b>bold</b> and <i>italic</i>", command.ParseModeHTML)
	require.NoError(t, err)
	assert.Equal(t, "bold and italic", text)
	require.Len(t, entities, 2)
	assert.Equal(t, &tg.MessageEntityBold{Offset: 0, Length: 4}, entities[0])
	assert.Equal(t, &tg.MessageEntityItalic{Offset: 9, Length: 6}, entities[1])
}

func TestStyledText_Markdown(t *testing.T) {
	for _, mode := range []command.ParseMode{command.ParseModeMD, command.ParseModeMarkdown} {
		text, entities, err := styledText("**bold** text", mode)
		require.NoError(t, err)
		assert.Equal(t, "bold text", text)
		assert.Equal(t, []tg.MessageEntityClass{&tg.MessageEntityBold{Offset: 0, Length: 4}}, entities, "mode %s", mode)
	}
}

func TestFromMarkdown(t *testing.T) {
	cases := []struct {
		name     string
		in       string
		text     string
		entities []tg.MessageEntityClass
	}{
		{name: "blank line kept", in: "a\n\nb", text: "a\n\nb"},
		{
			name:     "double underscore is italic",
			in:       "__it__ *x*",
			text:     "it *x*",
			entities: []tg.MessageEntityClass{&tg.MessageEntityItalic{Offset: 0, Length: 2}},
		},
		{name: "list markers kept", in: "- one\n- two", text: "- one\n- two"},
		{
			name: "nested",
			in:   "**bold __it__**",
			text: "bold it",
			entities: []tg.MessageEntityClass{
				&tg.MessageEntityBold{Offset: 0, Length: 7},
				&tg.MessageEntityItalic{Offset: 5, Length: 2},
			},
		},
		{
			name:     "code is not parsed inside",
			in:       "`a **b**` c",
			text:     "a **b** c",
			entities: []tg.MessageEntityClass{&tg.MessageEntityCode{Offset: 0, Length: 7}},
		},
		{
			name: "pre and strike",
			in:   "```x := 1``` ~~old~~",
			text: "x := 1 old",
			entities: []tg.MessageEntityClass{
				&tg.MessageEntityPre{Offset: 0, Length: 6},
				&tg.MessageEntityStrike{Offset: 7, Length: 3},
			},
		},
		{
			name:     "link",
			in:       "see [docs](https://x.io) now",
			text:     "see docs now",
			entities: []tg.MessageEntityClass{&tg.MessageEntityTextURL{Offset: 4, Length: 4, URL: "https://x.io"}},
		},
		{
			name:     "offsets count utf-16 units",
			in:       "😀 **b**",
			text:     "😀 b",
			entities: []tg.MessageEntityClass{&tg.MessageEntityBold{Offset: 3, Length: 1}},
		},
		{name: "unclosed delimiter is literal", in: "**a", text: "**a"},
		{
			name:     "surrounding whitespace trimmed",
			in:       "  **a**  ",
			text:     "a",
			entities: []tg.MessageEntityClass{&tg.MessageEntityBold{Offset: 0, Length: 1}},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			text, entities := fromMarkdown(tc.in)
			assert.Equal(t, tc.text, text)
			if len(tc.entities) == 0 {
				assert.Empty(t, entities)
				return
			}
			assert.Equal(t, tc.entities, entities)
		})
	}
}

func TestCreatedTopicID(t *testing.T) {
	assert.Zero(t, createdTopicID(&tg.UpdateShort{}))
	assert.Zero(t, createdTopicID(&tg.Updates{Updates: []tg.UpdateClass{
		&tg.UpdateNewChannelMessage{Message: &tg.Message{ID: 3}},
	}}))
	assert.Equal(t, 8, createdTopicID(&tg.UpdatesCombined{Updates: []tg.UpdateClass{
		&tg.UpdateNewChannelMessage{Message: &tg.MessageService{ID: 8, Action: &tg.MessageActionTopicCreate{}}},
	}}))
}
