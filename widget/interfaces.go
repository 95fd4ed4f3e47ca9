package widget

import (
	"context"

	"query-chat/backend"
)

// Backend is the analysis server behind /upload and /query.
type Backend interface {
	Upload(ctx context.Context, files []backend.File) (*backend.UploadResponse, error)
	Query(ctx context.Context, query string) (*backend.QueryResponse, error)
}

// Transcript is the rendering surface for chat messages. Messages are only
// ever appended; Clear empties the surface and restores the welcome banner.
type Transcript interface {
	Append(msg *Message)
	Clear()
	ScrollToEnd()
	DismissWelcome()
}

// Controls are the input affordances around the transcript.
type Controls interface {
	SetLoading(loading bool)
	ResetFileInput()
	ClearQueryInput()
	SetTheme(theme string)
}

// Clipboard receives copied code blocks.
type Clipboard interface {
	WriteText(ctx context.Context, text string) error
}
