package services

import (
	"context"
	"sync"

	"github.com/desertthunder/muzee/internal/shared"
)

// Navigator is the host's location: where the user currently is, and how to send them somewhere else.
type Navigator interface {
	// Navigate performs a top-level navigation to url.
	Navigate(ctx context.Context, url string) error
	// Path returns the current in-app path.
	Path() string
}

// BrowserNavigator navigates by opening the system browser.
//
// The in-app path is whatever the host last set with [BrowserNavigator.SetPath], e.g. the CLI command being run.
type BrowserNavigator struct {
	mu   sync.RWMutex
	path string
	open func(string) error
}

// NewBrowserNavigator creates a [BrowserNavigator] starting at path.
func NewBrowserNavigator(path string) *BrowserNavigator {
	if path == "" {
		path = "/"
	}
	return &BrowserNavigator{path: path, open: shared.OpenBrowser}
}

// Navigate opens url in the default browser.
func (n *BrowserNavigator) Navigate(_ context.Context, url string) error {
	return n.open(url)
}

// Path returns the current in-app path.
func (n *BrowserNavigator) Path() string {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.path
}

// SetPath records the current in-app path.
func (n *BrowserNavigator) SetPath(path string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.path = NormalizePath(path)
}
