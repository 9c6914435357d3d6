package llm

import "unicode/utf8"

const maxErrorMessageBytes = 4096

// truncateMessage caps provider error text at maxErrorMessageBytes without
// splitting a UTF-8 sequence.
func truncateMessage(s string) string {
	if len(s) <= maxErrorMessageBytes {
		return s
	}
	cut := maxErrorMessageBytes
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
