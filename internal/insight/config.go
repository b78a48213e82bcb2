package insight

// Config holds generation parameters.
type Config struct {
	MaxTokens   int
	Temperature float64
}

// DefaultConfig returns the defaults used by the result screen.
func DefaultConfig() Config {
	return Config{
		MaxTokens:   600,
		Temperature: 0.4,
	}
}
