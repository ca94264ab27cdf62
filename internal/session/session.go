package session

import (
	"context"
	"sync/atomic"
)

const (
	// DefaultTokenKey is the storage key of the session token.
	DefaultTokenKey = "muzeeToken"
	// AfterPathKey is the storage key of the path to return to after login.
	AfterPathKey = "after_path"
)

// Session is the explicit session context shared by the API client and the host application.
type Session struct {
	store    Store
	tokenKey string
	disabled atomic.Bool
}

// New creates a [Session] over store. An empty tokenKey uses [DefaultTokenKey].
func New(store Store, tokenKey string) *Session {
	if tokenKey == "" {
		tokenKey = DefaultTokenKey
	}
	return &Session{store: store, tokenKey: tokenKey}
}

// TokenKey returns the storage key used for the token.
func (s *Session) TokenKey() string { return s.tokenKey }

// Token returns the stored token, or "" when unauthenticated.
func (s *Session) Token(ctx context.Context) (string, error) {
	token, _, err := s.store.Get(ctx, s.tokenKey)
	return token, err
}

// SetToken persists token.
func (s *Session) SetToken(ctx context.Context, token string) error {
	return s.store.Set(ctx, s.tokenKey, token)
}

// ClearToken removes the stored token.
func (s *Session) ClearToken(ctx context.Context) error {
	return s.store.Delete(ctx, s.tokenKey)
}

// AfterPath returns the stored return path.
func (s *Session) AfterPath(ctx context.Context) (string, error) {
	path, _, err := s.store.Get(ctx, AfterPathKey)
	return path, err
}

// SetAfterPath records the path to return to after login.
func (s *Session) SetAfterPath(ctx context.Context, path string) error {
	return s.store.Set(ctx, AfterPathKey, path)
}

// ConsumeAfterPath returns the stored return path and removes it.
func (s *Session) ConsumeAfterPath(ctx context.Context) (string, error) {
	path, ok, err := s.store.Get(ctx, AfterPathKey)
	if err != nil || !ok {
		return "", err
	}
	if err := s.store.Delete(ctx, AfterPathKey); err != nil {
		return "", err
	}
	return path, nil
}

// Disabled reports whether interaction is suspended.
func (s *Session) Disabled() bool { return s.disabled.Load() }

// Disable suspends interaction. It reports true only for the call that flipped the flag.
func (s *Session) Disable() bool { return s.disabled.CompareAndSwap(false, true) }

// Enable clears the disabled flag.
func (s *Session) Enable() { s.disabled.Store(false) }
