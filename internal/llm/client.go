package llm

import "context"

// Chat roles accepted by both providers.
const (
	RoleSystem = "system"
	RoleUser   = "user"
)

type Message struct {
	Role    string
	Content string
}

// Usage is the token accounting of one completion.
type Usage struct {
	Prompt     int
	Completion int
	Total      int
}

// Completion is the first alternative returned by a provider.
type Completion struct {
	Text  string
	Model string
	Usage Usage
}

// Client is a chat completion backend.
type Client interface {
	Complete(ctx context.Context, messages []Message) (Completion, error)
}

// Narrator rewrites a plain KPI summary for the artist.
type Narrator interface {
	Narrate(ctx context.Context, summary string) (string, error)
}
