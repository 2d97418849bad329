package sdk

import "go.uber.org/zap"

type clientConfig struct {
	addrs      []string
	username   string
	password   string
	apiKey     string
	baseURL    string
	model      string
	dimensions int
	alpha      float64
	logger     *zap.Logger
}

// Option configures the client.
type Option func(*clientConfig)

// WithAddrs sets the vector store addresses.
func WithAddrs(addrs ...string) Option {
	return func(c *clientConfig) { c.addrs = addrs }
}

// WithAuth sets the vector store credentials.
func WithAuth(username, password string) Option {
	return func(c *clientConfig) {
		c.username = username
		c.password = password
	}
}

// WithAPIKey sets the embedding provider API key.
func WithAPIKey(key string) Option {
	return func(c *clientConfig) { c.apiKey = key }
}

// WithBaseURL sets the embedding provider base URL for OpenAI-compatible APIs.
func WithBaseURL(url string) Option {
	return func(c *clientConfig) { c.baseURL = url }
}

// WithModel sets the embedding model name.
func WithModel(model string) Option {
	return func(c *clientConfig) { c.model = model }
}

// WithDimensions sets the embedding dimension.
func WithDimensions(dim int) Option {
	return func(c *clientConfig) { c.dimensions = dim }
}

// WithAlpha sets the contrastive composition weight.
func WithAlpha(alpha float64) Option {
	return func(c *clientConfig) { c.alpha = alpha }
}

// WithLogger sets the logger; default is a no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *clientConfig) { c.logger = logger }
}
