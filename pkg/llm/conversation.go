package llm

// Conversation is the fixed two-turn payload sent to the model: a system
// instruction followed by the user's question.
type Conversation struct {
	System Message `json:"system"`
	User   Message `json:"user"`
}

// NewConversation builds a Conversation with the roles filled in.
func NewConversation(system, user string) Conversation {
	return Conversation{
		System: Message{Role: RoleSystem, Content: system},
		User:   Message{Role: RoleUser, Content: user},
	}
}

// Messages returns the turns in order, system first.
func (c Conversation) Messages() []Message {
	return []Message{c.System, c.User}
}
