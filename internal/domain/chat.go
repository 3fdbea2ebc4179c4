package domain

// ChatRequest is a single-turn chat completion request. Zero Temperature and
// MaxTokens leave the transport's defaults in effect.
type ChatRequest struct {
	System      string
	User        string
	Temperature float32
	MaxTokens   int
}
