package algo

import (
	"context"
	"sync"

	"lazyres/internal/decl"
)

// ScopeSession caches file-scope lookups for one request chain.
type ScopeSession struct {
	mu    sync.Mutex
	files map[scopeKey]scopeHit
}

type scopeKey struct {
	file *decl.File
	name string
	call bool
	kind uint8
}

type scopeHit struct {
	fq     string
	target decl.Decl
	ok     bool
}

const (
	kindClassifier uint8 = iota
	kindValue
)

func NewScopeSession() *ScopeSession {
	return &ScopeSession{files: make(map[scopeKey]scopeHit)}
}

func (s *ScopeSession) get(k scopeKey) (scopeHit, bool) {
	if s == nil {
		return scopeHit{}, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	h, ok := s.files[k]
	return h, ok
}

func (s *ScopeSession) put(k scopeKey, h scopeHit) {
	if s == nil {
		return
	}
	s.mu.Lock()
	s.files[k] = h
	s.mu.Unlock()
}

// Len returns the number of cached lookups.
func (s *ScopeSession) Len() int {
	if s == nil {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.files)
}

// ComputationSession tracks the declarations whose implicit type is being
// inferred, to turn inference cycles into error types.
type ComputationSession struct {
	mu      sync.Mutex
	pending map[decl.Decl]struct{}
}

func NewComputationSession() *ComputationSession {
	return &ComputationSession{pending: make(map[decl.Decl]struct{})}
}

// Enter marks d as in progress. It returns false when d already is.
func (c *ComputationSession) Enter(d decl.Decl) bool {
	if c == nil {
		return true
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, busy := c.pending[d]; busy {
		return false
	}
	c.pending[d] = struct{}{}
	return true
}

// Leave clears the mark set by Enter.
func (c *ComputationSession) Leave(d decl.Decl) {
	if c == nil {
		return
	}
	c.mu.Lock()
	delete(c.pending, d)
	c.mu.Unlock()
}

// InProgress reports whether d is being computed.
func (c *ComputationSession) InProgress(d decl.Decl) bool {
	if c == nil {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	_, busy := c.pending[d]
	return busy
}

// Session is the per-request-chain state shared by nested resolutions.
type Session struct {
	Scopes      *ScopeSession
	Computation *ComputationSession
}

func NewSession() *Session {
	return &Session{Scopes: NewScopeSession(), Computation: NewComputationSession()}
}

type sessionKey struct{}

// WithSession attaches s to ctx.
func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

// SessionFrom returns the session attached to ctx.
func SessionFrom(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(sessionKey{}).(*Session)
	return s, ok && s != nil
}
