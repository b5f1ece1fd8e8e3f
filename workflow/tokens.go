package workflow

import (
	"github.com/pkoukk/tiktoken-go"
	"go.uber.org/zap"
)

// TokenCounter counts prompt tokens for the grounding budget. When the
// tiktoken encoding for the model is unavailable (offline, unknown model),
// it falls back to a character estimate rather than failing.
type TokenCounter struct {
	enc    *tiktoken.Tiktoken
	logger *zap.Logger
}

// NewTokenCounter creates a counter for the given model name.
func NewTokenCounter(model string, logger *zap.Logger) *TokenCounter {
	if logger == nil {
		logger = zap.NewNop()
	}
	enc, err := tiktoken.EncodingForModel(model)
	if err != nil {
		logger.Warn("tiktoken encoding unavailable, using character estimate",
			zap.String("model", model), zap.Error(err))
		enc = nil
	}
	return &TokenCounter{enc: enc, logger: logger}
}

// Count returns the token count of text, estimating len/4 without an encoding.
func (c *TokenCounter) Count(text string) int {
	if c == nil || c.enc == nil {
		return len(text) / 4
	}
	return len(c.enc.Encode(text, nil, nil))
}
