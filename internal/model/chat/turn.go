package chat

// Turn is a single entry in the conversation sent to the completions API.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Roles understood by the completions API. The system turn always comes first
// and carries the persona prompt.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// SystemTurn builds the leading persona instruction turn.
func SystemTurn(content string) Turn {
	return Turn{Role: RoleSystem, Content: content}
}

// UserTurn builds a user message turn.
func UserTurn(content string) Turn {
	return Turn{Role: RoleUser, Content: content}
}

// AssistantTurn builds an assistant reply turn.
func AssistantTurn(content string) Turn {
	return Turn{Role: RoleAssistant, Content: content}
}
