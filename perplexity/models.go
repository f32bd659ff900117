package perplexity

// Wire types for the chat completions API. Kept local to the package; the
// rest of the service only sees Completion.

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature *float32      `json:"temperature,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"` // string, or []contentPart for vision
}

type contentPart struct {
	Type     string    `json:"type"` // "text" | "image_url"
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type imageURL struct {
	URL string `json:"url"`
}

type chatResponse struct {
	ID        string       `json:"id"`
	Choices   []chatChoice `json:"choices"`
	Citations []string     `json:"citations,omitempty"`
	Error     *apiError    `json:"error,omitempty"`
}

type chatChoice struct {
	Index        int    `json:"index"`
	FinishReason string `json:"finish_reason"`
	Message      struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"message"`
}

type apiError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// Completion is what callers get back: the text plus whatever citations the
// backend attached.
type Completion struct {
	Content   string   `json:"content"`
	Citations []string `json:"citations,omitempty"`
}
