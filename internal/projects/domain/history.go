package domain

// Turn is a single (role, content) unit replayed to the generation service.
type Turn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// FormatHistory converts an ordered message list into turns.
// Every message is kept, in order, processed or not.
func FormatHistory(messages []Message) []Turn {
	turns := make([]Turn, 0, len(messages))
	for _, m := range messages {
		turns = append(turns, Turn{Role: m.Role, Content: m.Content})
	}
	return turns
}
