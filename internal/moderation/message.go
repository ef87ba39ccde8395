package moderation

import "fmt"

// countMessage renders a pluralized summary fragment, e.g. "1 post deleted"
// or "3 posts deleted".
func countMessage(n int, noun, verb string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s %s", noun, verb)
	}
	return fmt.Sprintf("%d %ss %s", n, noun, verb)
}

// concatMessages joins two summary fragments with a fixed separator.
// Empty fragments contribute nothing.
func concatMessages(message1, message2 string) string {
	if message1 == "" {
		return message2
	}
	if message2 == "" {
		return message1
	}
	return message1 + ", " + message2
}
