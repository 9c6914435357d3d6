package domain

import "time"

// Role identifies who authored a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Valid reports whether r is one of the two stored roles.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAssistant
}

// Project is a generated website together with its conversation.
// It is storage-agnostic and used across repository, service and HTTP layers.
type Project struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	HTMLContent   string    `json:"html_content"`
	InitialPrompt *string   `json:"initial_prompt"`
	CreatedAt     time.Time `json:"created_at"`
}

// Message is one persisted turn of a project's conversation.
type Message struct {
	ID        string    `json:"id"`
	ProjectID string    `json:"project_id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Processed bool      `json:"processed"`
	CreatedAt time.Time `json:"created_at"`
}

// SeedPrompt builds the first user message of a new project.
func SeedPrompt(name, description string) string {
	return "Create a website named " + name + " with the following description: " + description
}
