package grok

import (
	"strings"
	"sync"
)

// TokenPool hands out upstream credentials round-robin. It is safe for
// concurrent use by many generation workers.
type TokenPool struct {
	mu     sync.Mutex
	tokens []string
	next   int
}

// NewTokenPool builds a pool from the given credentials, dropping blanks.
func NewTokenPool(tokens []string) *TokenPool {
	pool := &TokenPool{}
	for _, t := range tokens {
		t = strings.TrimSpace(t)
		if t != "" {
			pool.tokens = append(pool.tokens, t)
		}
	}
	return pool
}

// Next returns the next credential in rotation, or "" when the pool is empty.
func (p *TokenPool) Next() string {
	if p == nil {
		return ""
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.tokens) == 0 {
		return ""
	}
	token := p.tokens[p.next%len(p.tokens)]
	p.next++
	return token
}

// Size reports how many credentials are configured.
func (p *TokenPool) Size() int {
	if p == nil {
		return 0
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.tokens)
}
