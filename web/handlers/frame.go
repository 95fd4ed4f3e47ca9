package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"query-chat/web/components"
	"query-chat/widget"

	"go.uber.org/zap"
)

// Effects is one change a widget request makes to the page. The page script
// applies each event as it arrives.
type Effects struct {
	HTML            string `json:"html,omitempty"`
	DismissWelcome  bool   `json:"dismiss_welcome,omitempty"`
	Clear           bool   `json:"clear,omitempty"`
	ScrollToEnd     bool   `json:"scroll_to_end,omitempty"`
	Loading         *bool  `json:"loading,omitempty"`
	ResetFileInput  bool   `json:"reset_file_input,omitempty"`
	ClearQueryInput bool   `json:"clear_query_input,omitempty"`
	Theme           string `json:"theme,omitempty"`
	Done            bool   `json:"done,omitempty"`
}

// frame is the transcript and controls of a single request. Every call is
// written to the response as a server-sent event and flushed, so the page
// sees the user's message before the backend answers.
type frame struct {
	ctx    context.Context
	w      http.ResponseWriter
	logger *zap.Logger

	mu     sync.Mutex
	failed bool
}

func newFrame(ctx context.Context, w http.ResponseWriter, logger *zap.Logger) *frame {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	return &frame{ctx: ctx, w: w, logger: logger}
}

func (f *frame) emit(e Effects) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failed {
		return
	}

	data, err := json.Marshal(e)
	if err == nil {
		_, err = fmt.Fprintf(f.w, "data: %s\n\n", data)
	}
	if err != nil {
		// Client is gone; later events are dropped.
		f.failed = true
		f.logger.Debug("Failed to write widget event", zap.Error(err))
		return
	}
	if flusher, ok := f.w.(http.Flusher); ok {
		flusher.Flush()
	}
}

func (f *frame) Append(msg *widget.Message) {
	var buf bytes.Buffer
	if err := components.MessageBlock(msg).Render(f.ctx, &buf); err != nil {
		f.logger.Error("Failed to render message", zap.String("message_id", msg.ID), zap.Error(err))
		return
	}
	f.emit(Effects{HTML: buf.String()})
}

func (f *frame) Clear()          { f.emit(Effects{Clear: true}) }
func (f *frame) ScrollToEnd()    { f.emit(Effects{ScrollToEnd: true}) }
func (f *frame) DismissWelcome() { f.emit(Effects{DismissWelcome: true}) }

func (f *frame) SetLoading(loading bool) { f.emit(Effects{Loading: &loading}) }
func (f *frame) ResetFileInput()         { f.emit(Effects{ResetFileInput: true}) }
func (f *frame) ClearQueryInput()        { f.emit(Effects{ClearQueryInput: true}) }
func (f *frame) SetTheme(theme string)   { f.emit(Effects{Theme: theme}) }

// finish closes the stream with the session's current theme.
func (f *frame) finish(theme string) {
	f.emit(Effects{Theme: theme, Done: true})
}
