package widget

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// Renderer appends styled messages to a transcript and keeps the newest one
// in view.
type Renderer struct {
	transcript Transcript
	copyDelay  time.Duration
	now        func() time.Time
	logger     *zap.Logger

	mu               sync.Mutex
	welcomeDismissed bool
}

func NewRenderer(transcript Transcript, copyDelay time.Duration, logger *zap.Logger) *Renderer {
	return &Renderer{
		transcript: transcript,
		copyDelay:  copyDelay,
		now:        time.Now,
		logger:     logger,
	}
}

// Render builds a message and appends it. Content is trusted markup; it is not
// escaped here.
func (r *Renderer) Render(msgType MessageType, content string, isCode bool) *Message {
	r.dismissWelcome()

	msg := &Message{
		ID:      newMessageID(),
		Type:    msgType,
		Content: content,
		IsCode:  isCode,
	}
	if isCode {
		msg.Copy = newCopyButton(content, r.copyDelay, r.logger)
	} else {
		msg.Timestamp = r.now()
	}

	r.transcript.Append(msg)
	r.transcript.ScrollToEnd()
	return msg
}

// Reset clears the transcript and brings the welcome banner back.
func (r *Renderer) Reset() {
	r.mu.Lock()
	r.welcomeDismissed = false
	r.mu.Unlock()
	r.transcript.Clear()
}

func (r *Renderer) dismissWelcome() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.welcomeDismissed {
		return
	}
	r.welcomeDismissed = true
	r.transcript.DismissWelcome()
}
