package anthropic

import "github.com/fwojciec/chat"

// ConvertMessagesForTest exposes convertMessages as role/content pairs.
func ConvertMessagesForTest(msgs []chat.Message) [][2]string {
	var out [][2]string
	for _, m := range convertMessages(msgs) {
		out = append(out, [2]string{m.Role, m.Content})
	}
	return out
}
