package newsbrief

import "errors"

// Exported errors for library consumers.
var (
	// ErrNoDatabase indicates no database was configured.
	ErrNoDatabase = errors.New("newsbrief: no database configured")

	// ErrClientClosed indicates the client has been closed.
	ErrClientClosed = errors.New("newsbrief: client is closed")
)
