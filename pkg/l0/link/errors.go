package link

import "errors"

var (
	// ErrNotConfigured indicates a send was dropped because the link is
	// not connected.
	ErrNotConfigured = errors.New("link not configured")
)
