package dispatch

import "unicode/utf8"

// clipMarker is appended to error text cut at LastErrorMaxLen.
const clipMarker = "…"

// errorText renders err for a log field, keeping at most limit bytes of the message.
func errorText(err error, limit int) string {
	if err == nil || limit <= 0 {
		return ""
	}
	msg := err.Error()
	if len(msg) <= limit {
		return msg
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(msg[cut]) {
		cut--
	}
	return msg[:cut] + clipMarker
}
