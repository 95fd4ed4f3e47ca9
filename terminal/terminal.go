package terminal

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"query-chat/backend"
	"query-chat/format"
	"query-chat/session"
	"query-chat/widget"

	"go.uber.org/zap"
)

const helpText = `Commands:
  /upload <file>...  upload one or more datasets
  /copy              copy the latest SQL to the clipboard
  /theme             toggle dark mode
  /clear             clear the transcript
  /help              show this help
  /quit              exit
Anything else is sent as a question about the active dataset.`

const clearScreen = "\x1b[H\x1b[2J"

// Options tune the terminal surface.
type Options struct {
	widget.Options
	Color       bool
	PreferDark  bool
	Clipboard   widget.Clipboard
	WelcomeText string
}

// Terminal runs the chat widget over a line-oriented terminal. It is the
// widget's transcript and controls.
type Terminal struct {
	in        io.Reader
	out       io.Writer
	widget    *widget.Widget
	clipboard widget.Clipboard
	color     bool
	welcome   string
	logger    *zap.Logger

	mu       sync.Mutex
	lastCode *widget.Message
	theme    string
	palettes map[string]palette
}

func New(be widget.Backend, in io.Reader, out io.Writer, opts Options, logger *zap.Logger) *Terminal {
	t := &Terminal{
		in:        in,
		out:       out,
		clipboard: opts.Clipboard,
		color:     opts.Color,
		welcome:   opts.WelcomeText,
		logger:    logger,
		theme:     session.ThemeLight,
		palettes:  newPalettes(out),
	}
	if t.clipboard == nil {
		t.clipboard = NewOSC52Clipboard(out)
	}
	if t.welcome == "" {
		t.welcome = format.HTMLToTerminal(format.MarkdownToHTML(widget.WelcomeMarkdown), opts.Color)
	}
	t.widget = widget.New(session.New(), be, t, t, opts.Options, logger)
	t.widget.InitTheme(opts.PreferDark)
	return t
}

func (t *Terminal) Widget() *widget.Widget { return t.widget }

// Run reads commands until /quit, end of input or ctx cancellation.
func (t *Terminal) Run(ctx context.Context) error {
	t.printf("%s\n\n", t.welcome)

	lines := make(chan string)
	scanErr := make(chan error, 1)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(t.in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		scanErr <- scanner.Err()
	}()

	for {
		t.prompt()
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-scanErr:
					return err
				default:
					return nil
				}
			}
			if quit := t.handleLine(ctx, line); quit {
				return nil
			}
		}
	}
}

func (t *Terminal) handleLine(ctx context.Context, line string) bool {
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, "/") {
		t.widget.HandleQuery(ctx, line)
		return false
	}

	fields := strings.Fields(trimmed)
	switch fields[0] {
	case "/quit", "/exit":
		return true
	case "/upload":
		t.upload(ctx, fields[1:])
	case "/copy":
		t.copyLatest(ctx)
	case "/theme":
		t.widget.ToggleDarkMode()
	case "/clear":
		t.widget.Renderer().Reset()
	case "/help":
		t.printf("%s\n", helpText)
	default:
		t.printf("Unknown command %s. Type /help for the list.\n", fields[0])
	}
	return false
}

func (t *Terminal) upload(ctx context.Context, paths []string) {
	files := make([]backend.File, 0, len(paths))
	for _, path := range paths {
		f, err := os.Open(path)
		if err != nil {
			t.logger.Warn("Cannot open dataset", zap.String("path", path), zap.Error(err))
			t.printf("Cannot open %s: %v\n", path, err)
			for _, opened := range files {
				opened.Content.(io.Closer).Close()
			}
			return
		}
		files = append(files, backend.File{Name: baseName(path), Content: f})
	}
	defer func() {
		for _, f := range files {
			f.Content.(io.Closer).Close()
		}
	}()

	t.widget.HandleUpload(ctx, files)
}

func (t *Terminal) copyLatest(ctx context.Context) {
	t.mu.Lock()
	msg := t.lastCode
	t.mu.Unlock()

	if msg == nil {
		t.printf("Nothing to copy yet.\n")
		return
	}
	if msg.Copy.Copy(ctx, t.clipboard) {
		t.printf("%s\n", widget.CopiedLabel)
	}
}

// Transcript

func (t *Terminal) Append(msg *widget.Message) {
	if msg.IsCode {
		t.mu.Lock()
		t.lastCode = msg
		t.mu.Unlock()
		t.printf("%s\n%s\n%s\n", t.style("┌ SQL  "+msg.Copy.Label()+" (/copy)", styleMuted), msg.Content, t.style("└", styleMuted))
		return
	}

	speaker := "assistant"
	tone := styleAssistant
	if msg.Type == widget.MessageUser {
		speaker, tone = "you", styleUser
	}
	content := format.HTMLToTerminal(msg.Content, t.color)
	t.printf("%s %s %s\n", t.style("["+msg.TimeLabel()+"]", styleMuted), t.style(speaker+":", tone), content)
}

func (t *Terminal) Clear() {
	t.mu.Lock()
	t.lastCode = nil
	t.mu.Unlock()
	if t.color {
		t.printf("%s", clearScreen)
	}
	t.printf("%s\n\n", t.welcome)
}

// ScrollToEnd is a no-op: the terminal always shows the newest line.
func (t *Terminal) ScrollToEnd() {}

// DismissWelcome is a no-op: the banner scrolls away with the first message.
func (t *Terminal) DismissWelcome() {}

// Controls

func (t *Terminal) SetLoading(loading bool) {
	if loading {
		t.printf("%s\n", t.style("Uploading...", styleMuted))
	}
}

func (t *Terminal) ResetFileInput() {}

func (t *Terminal) ClearQueryInput() {}

func (t *Terminal) SetTheme(theme string) {
	t.mu.Lock()
	t.theme = theme
	t.mu.Unlock()
	t.printf("Theme: %s\n", theme)
}

func (t *Terminal) prompt() {
	t.printf("%s ", t.style(">", styleUser))
}

func (t *Terminal) printf(format string, args ...any) {
	fmt.Fprintf(t.out, format, args...)
}

func baseName(path string) string {
	if i := strings.LastIndexAny(path, `/\`); i >= 0 {
		return path[i+1:]
	}
	return path
}
