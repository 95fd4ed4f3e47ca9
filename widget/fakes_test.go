package widget

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"query-chat/backend"
)

// events records surface and backend calls in order.
type events struct {
	mu  sync.Mutex
	log []string
}

func (e *events) add(ev string) {
	e.mu.Lock()
	e.log = append(e.log, ev)
	e.mu.Unlock()
}

func (e *events) all() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.log...)
}

type fakeTranscript struct {
	ev       *events
	messages []*Message
	welcome  bool
	scrolls  int
	dismiss  int
}

func (f *fakeTranscript) Append(msg *Message) {
	f.ev.add("append:" + string(msg.Type))
	f.messages = append(f.messages, msg)
}

func (f *fakeTranscript) Clear() {
	f.messages = nil
	f.welcome = true
}

func (f *fakeTranscript) ScrollToEnd() { f.scrolls++ }

func (f *fakeTranscript) DismissWelcome() {
	f.dismiss++
	f.welcome = false
}

func (f *fakeTranscript) assistant() []*Message {
	var out []*Message
	for _, m := range f.messages {
		if m.Type == MessageAssistant {
			out = append(out, m)
		}
	}
	return out
}

type fakeControls struct {
	ev    *events
	theme string
}

func (f *fakeControls) SetLoading(loading bool) {
	if loading {
		f.ev.add("loading:on")
	} else {
		f.ev.add("loading:off")
	}
}

func (f *fakeControls) ResetFileInput()        { f.ev.add("reset-file") }
func (f *fakeControls) ClearQueryInput()       { f.ev.add("clear-query") }
func (f *fakeControls) SetTheme(theme string) { f.theme = theme }

type fakeBackend struct {
	ev        *events
	uploadRes *backend.UploadResponse
	queryBody string
	err       error

	uploads [][]backend.File
	queries []string
}

func (f *fakeBackend) Upload(ctx context.Context, files []backend.File) (*backend.UploadResponse, error) {
	f.ev.add("backend:upload")
	f.uploads = append(f.uploads, files)
	if f.err != nil {
		return nil, f.err
	}
	return f.uploadRes, nil
}

func (f *fakeBackend) Query(ctx context.Context, query string) (*backend.QueryResponse, error) {
	f.ev.add("backend:query")
	f.queries = append(f.queries, query)
	if f.err != nil {
		return nil, f.err
	}
	var resp backend.QueryResponse
	if err := json.Unmarshal([]byte(f.queryBody), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

type fakeClipboard struct {
	text string
	err  error
}

func (f *fakeClipboard) WriteText(ctx context.Context, text string) error {
	if f.err != nil {
		return f.err
	}
	f.text = text
	return nil
}

var errBackendDown = errors.New("connection refused")
