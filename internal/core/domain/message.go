package domain

// Role identifies the author of a Message.
type Role string

// Message roles understood by every generation backend.
const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// IsValid returns true if the role is recognised.
func (r Role) IsValid() bool {
	switch r {
	case RoleSystem, RoleUser, RoleAssistant:
		return true
	default:
		return false
	}
}

// Message is one role-tagged entry of the sequence handed to generation.
// The sequence is built per request and carries no conversational state.
type Message struct {
	Role    Role
	Content string
}
