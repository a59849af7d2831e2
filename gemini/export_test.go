package gemini

import "github.com/fwojciec/chat"

// ConvertMessagesForTest exposes convertMessages as role and texts pairs.
func ConvertMessagesForTest(msgs []chat.Message) [][]string {
	var out [][]string
	for _, c := range convertMessages(msgs) {
		row := []string{c.Role}
		for _, p := range c.Parts {
			row = append(row, p.Text)
		}
		out = append(out, row)
	}
	return out
}
