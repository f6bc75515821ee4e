package telegram

import (
	"unicode"
	"unicode/utf16"

	"github.com/gotd/td/tg"
)

type spanKind int

const (
	spanBold spanKind = iota
	spanItalic
	spanStrike
	spanCode
	spanPre
	spanLink
)

// Longest first, so "```" wins over "`".
var markdownDelims = []struct {
	token []rune
	kind  spanKind
}{
	{[]rune("```"), spanPre},
	{[]rune("**"), spanBold},
	{[]rune("__"), spanItalic},
	{[]rune("~~"), spanStrike},
	{[]rune("`"), spanCode},
}

// span offsets and lengths count runes until toEntities converts them.
type span struct {
	kind   spanKind
	offset int
	length int
	url    string
}

// fromMarkdown parses Telegram-flavoured markdown: **bold**, __italic__, ~~strike~~,
// `code`, ```pre``` and [text](url). Anything else, line breaks included, is kept
// verbatim. Code and pre content is not parsed further.
func fromMarkdown(s string) (string, []tg.MessageEntityClass) {
	msg := []rune(s)
	var spans []span

	for i := 0; i < len(msg); {
		if token, kind, ok := delimAt(msg, i); ok {
			n := len(token)
			end := indexFrom(msg, token, i+n+1)
			if end != -1 {
				out := make([]rune, 0, len(msg)-2*n)
				out = append(out, msg[:i]...)
				out = append(out, msg[i+n:end]...)
				out = append(out, msg[end+n:]...)
				msg = out

				for k := range spans {
					sp := &spans[k]
					if sp.offset+sp.length > i {
						if sp.offset <= i {
							sp.length -= 2 * n
						} else {
							sp.length -= n
						}
					}
				}
				spans = append(spans, span{kind: kind, offset: i, length: end - i - n})
				if kind == spanCode || kind == spanPre {
					i = end - n
				}
				continue
			}
		} else if text, url, size, ok := linkAt(msg, i); ok {
			out := make([]rune, 0, len(msg)-size+len(text))
			out = append(out, msg[:i]...)
			out = append(out, text...)
			out = append(out, msg[i+size:]...)
			msg = out

			cut := size - len(text)
			for k := range spans {
				if spans[k].offset+spans[k].length > i {
					spans[k].length -= cut
				}
			}
			spans = append(spans, span{kind: spanLink, offset: i, length: len(text), url: url})
			i += len(text)
			continue
		}
		i++
	}

	msg, spans = stripSpans(msg, spans)
	return string(msg), toEntities(msg, spans)
}

func delimAt(msg []rune, i int) ([]rune, spanKind, bool) {
	for _, d := range markdownDelims {
		if hasPrefixAt(msg, i, d.token) {
			return d.token, d.kind, true
		}
	}
	return nil, 0, false
}

// linkAt matches [text](url) at i. text is non-empty and has no ']'; url is
// non-empty, single line and ends at the first ')'.
func linkAt(msg []rune, i int) (text []rune, url string, size int, ok bool) {
	if msg[i] != '[' {
		return nil, "", 0, false
	}
	closeText := -1
	for j := i + 1; j < len(msg); j++ {
		if msg[j] == ']' {
			closeText = j
			break
		}
	}
	if closeText <= i+1 || closeText+1 >= len(msg) || msg[closeText+1] != '(' {
		return nil, "", 0, false
	}
	start := closeText + 2
	if start >= len(msg) || msg[start] == '\n' {
		return nil, "", 0, false
	}
	for j := start + 1; j < len(msg); j++ {
		if msg[j] == '\n' {
			return nil, "", 0, false
		}
		if msg[j] == ')' {
			return msg[i+1 : closeText], string(msg[start:j]), j + 1 - i, true
		}
	}
	return nil, "", 0, false
}

func hasPrefixAt(msg []rune, i int, token []rune) bool {
	if i+len(token) > len(msg) {
		return false
	}
	for k, r := range token {
		if msg[i+k] != r {
			return false
		}
	}
	return true
}

func indexFrom(msg []rune, token []rune, from int) int {
	for j := from; j+len(token) <= len(msg); j++ {
		if hasPrefixAt(msg, j, token) {
			return j
		}
	}
	return -1
}

// stripSpans trims surrounding whitespace and moves or clips spans to match.
// Empty spans and spans left outside the text are dropped.
func stripSpans(msg []rune, spans []span) ([]rune, []span) {
	left := 0
	for left < len(msg) && unicode.IsSpace(msg[left]) {
		left++
	}
	right := len(msg)
	for right > left && unicode.IsSpace(msg[right-1]) {
		right--
	}
	msg = msg[left:right]

	kept := spans[:0]
	for _, sp := range spans {
		if sp.length <= 0 || sp.offset+sp.length <= left {
			continue
		}
		if sp.offset >= left {
			sp.offset -= left
		} else {
			sp.length = sp.offset + sp.length - left
			sp.offset = 0
		}
		if sp.offset >= len(msg) {
			continue
		}
		if sp.offset+sp.length > len(msg) {
			sp.length = len(msg) - sp.offset
		}
		kept = append(kept, sp)
	}
	return msg, kept
}

// toEntities converts rune spans into entities measured in UTF-16 code units.
func toEntities(msg []rune, spans []span) []tg.MessageEntityClass {
	if len(spans) == 0 {
		return nil
	}
	units := make([]int, len(msg)+1)
	for i, r := range msg {
		units[i+1] = units[i] + utf16.RuneLen(r)
	}

	entities := make([]tg.MessageEntityClass, 0, len(spans))
	for _, sp := range spans {
		offset := units[sp.offset]
		length := units[sp.offset+sp.length] - offset
		switch sp.kind {
		case spanBold:
			entities = append(entities, &tg.MessageEntityBold{Offset: offset, Length: length})
		case spanItalic:
			entities = append(entities, &tg.MessageEntityItalic{Offset: offset, Length: length})
		case spanStrike:
			entities = append(entities, &tg.MessageEntityStrike{Offset: offset, Length: length})
		case spanCode:
			entities = append(entities, &tg.MessageEntityCode{Offset: offset, Length: length})
		case spanPre:
			entities = append(entities, &tg.MessageEntityPre{Offset: offset, Length: length})
		case spanLink:
			entities = append(entities, &tg.MessageEntityTextURL{Offset: offset, Length: length, URL: sp.url})
		}
	}
	return entities
}
