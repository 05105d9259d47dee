package models

// Page is a crawled page whose extracted text passed the minimum content threshold.
type Page struct {
	URL   string
	Text  string
	Depth int
}

// Chunk is a bounded window of a page's text.
type Chunk struct {
	SourceURL string
	Content   string
	Index     int
}

// EmbeddingRecord is one persisted chunk with its vector. The JSON shape is the
// contract between the index build and the server.
type EmbeddingRecord struct {
	URL       string    `json:"url"`
	Content   string    `json:"content"`
	Embedding []float32 `json:"embedding"`
}

// Turn is one past exchange of a conversation.
type Turn struct {
	User      string `json:"user"`
	Assistant string `json:"assistant"`
}

// ChatRequest is the request accepted by the chat endpoints.
type ChatRequest struct {
	Message string `json:"message"`
	History []Turn `json:"history"`
}

// ChatResponse is the reply returned by the chat endpoints.
type ChatResponse struct {
	Reply string `json:"reply"`
}

type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one entry of the ordered message list sent to the completion service.
type Message struct {
	Role    Role
	Content string
}
