package terminal

import (
	"context"
	"io"
	"sync"

	"github.com/aymanbagabas/go-osc52/v2"
)

// OSC52Clipboard copies through the terminal emulator with the OSC 52 escape
// sequence, which also works over SSH.
type OSC52Clipboard struct {
	mu  sync.Mutex
	out io.Writer
}

func NewOSC52Clipboard(out io.Writer) *OSC52Clipboard {
	return &OSC52Clipboard{out: out}
}

func (c *OSC52Clipboard) WriteText(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	_, err := osc52.New(text).WriteTo(c.out)
	return err
}
