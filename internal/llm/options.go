package llm

// clientConfig holds construction-time settings for a Client.
type clientConfig struct {
	baseURL   string
	apiKey    string
	modelID   string
	maxTokens int
}

// Option is a functional option for configuring a Client.
type Option func(*clientConfig)

// WithBaseURL points the client at a non-OpenAI endpoint, such as a Mistral
// or local vLLM server.
func WithBaseURL(url string) Option {
	return func(c *clientConfig) {
		c.baseURL = url
	}
}

// WithAPIKey sets the API key. Local servers typically accept any value.
func WithAPIKey(key string) Option {
	return func(c *clientConfig) {
		if key != "" {
			c.apiKey = key
		}
	}
}

// WithModelID sets the model id sent to the API when it differs from the
// tracking name, e.g. name "gpt4o" with id "gpt-4o-2024-08-06".
func WithModelID(id string) Option {
	return func(c *clientConfig) {
		if id != "" {
			c.modelID = id
		}
	}
}

// WithMaxTokens caps the response length.
func WithMaxTokens(n int) Option {
	return func(c *clientConfig) {
		if n > 0 {
			c.maxTokens = n
		}
	}
}
