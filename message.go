package chat

import "time"

// Message is a single entry in a conversation. Messages are values: once
// appended to a Log they are never modified.
type Message struct {
	Role      Role
	Content   string
	Timestamp time.Time
}

// UserMessage returns a user-authored message stamped with the current time.
func UserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content, Timestamp: time.Now()}
}

// AssistantMessage returns an assistant-authored message stamped with the
// current time.
func AssistantMessage(content string) Message {
	return Message{Role: RoleAssistant, Content: content, Timestamp: time.Now()}
}
