package widget

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type MessageType string

const (
	MessageUser      MessageType = "user"
	MessageAssistant MessageType = "assistant"
)

const (
	CopyLabel   = "📋 Copy"
	CopiedLabel = "✅ Copied!"

	// TimestampLayout matches a browser's en-US toLocaleTimeString.
	TimestampLayout = "3:04:05 PM"
)

// Message is one transcript entry. Code messages carry a CopyButton instead
// of a timestamp.
type Message struct {
	ID        string
	Type      MessageType
	Content   string
	IsCode    bool
	Timestamp time.Time
	Copy      *CopyButton
}

// TimeLabel is the human-readable render time; empty for code messages.
func (m *Message) TimeLabel() string {
	if m.IsCode || m.Timestamp.IsZero() {
		return ""
	}
	return m.Timestamp.Format(TimestampLayout)
}

// CopyButton is the copy affordance of a code message.
type CopyButton struct {
	text   string
	delay  time.Duration
	logger *zap.Logger

	mu     sync.Mutex
	label  string
	revert *time.Timer
}

func newCopyButton(text string, delay time.Duration, logger *zap.Logger) *CopyButton {
	return &CopyButton{text: text, delay: delay, logger: logger, label: CopyLabel}
}

// Text is the code the button copies.
func (b *CopyButton) Text() string { return b.text }

// Label is the current button caption.
func (b *CopyButton) Label() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.label
}

// Copy writes the code to the clipboard and shows CopiedLabel until the
// feedback delay elapses. A failed write is logged and leaves the label as is.
func (b *CopyButton) Copy(ctx context.Context, clipboard Clipboard) bool {
	if err := clipboard.WriteText(ctx, b.text); err != nil {
		b.logger.Error("Copy failed", zap.Error(err))
		return false
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.label = CopiedLabel
	if b.revert != nil {
		b.revert.Stop()
	}
	b.revert = time.AfterFunc(b.delay, func() {
		b.mu.Lock()
		b.label = CopyLabel
		b.mu.Unlock()
	})
	return true
}

func newMessageID() string {
	return uuid.New().String()
}
