package nlp

import (
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

const defaultEncoding = "cl100k_base"

// TokenCounter estimates prompt size. The encoder is loaded on first use; if it cannot
// be loaded the counter falls back to len/4.
type TokenCounter struct {
	once   sync.Once
	load   func() (func(string) int, error)
	encode func(string) int
}

func NewTokenCounter() *TokenCounter {
	return &TokenCounter{load: func() (func(string) int, error) {
		tke, err := tiktoken.GetEncoding(defaultEncoding)
		if err != nil {
			return nil, err
		}
		return func(s string) int { return len(tke.Encode(s, nil, nil)) }, nil
	}}
}

func (c *TokenCounter) Count(text string) int {
	if text == "" {
		return 0
	}
	c.once.Do(func() {
		if c.load == nil {
			return
		}
		if enc, err := c.load(); err == nil {
			c.encode = enc
		}
	})
	if c.encode == nil {
		return (len(text) + 3) / 4
	}
	return c.encode(text)
}
