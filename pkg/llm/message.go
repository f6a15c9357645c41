// Package llm provides provider-agnostic chat types and the chat completion
// client used by the router, the memory analyzer, and the persona reply
// generator.
package llm

// Message roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message represents a single message in a conversation thread.
// Media turns are represented in-band: the transport annotates user image
// turns with the [USER_SENT_IMAGE] marker and embeds the vision analysis as
// text, so history stays a flat sequence of role-tagged strings.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// NewUserMessage creates a user-role message.
func NewUserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

// NewAssistantMessage creates an assistant-role message.
func NewAssistantMessage(content string) Message {
	return Message{Role: RoleAssistant, Content: content}
}
