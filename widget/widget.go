package widget

import (
	"context"
	"fmt"
	"strings"
	"time"

	"query-chat/backend"
	"query-chat/format"
	"query-chat/session"

	"go.uber.org/zap"
)

// WelcomeMarkdown is the banner shown until the first message is rendered.
const WelcomeMarkdown = `### Chat with your data

Upload a **CSV**, **Excel** or **JSON** file, then ask questions about it in plain language.
Each answer shows the generated SQL, ready to copy, followed by the result.`

const (
	msgUploadSuccess     = "Successfully uploaded %s. You can now ask questions about this dataset."
	msgUploadRejected    = "Error uploading file. Please try again."
	msgUploadServerError = "Server error. Please check your backend."
	msgNeedDataset       = "Hold up, data detective! 🕵️‍♂️ I need a dataset before I can work my SQL magic. "
	msgQueryServerError  = "Server error while processing query."
)

// Options tune a Widget.
type Options struct {
	CopyFeedbackDelay time.Duration
	// Now overrides the message clock; nil uses time.Now.
	Now func() time.Time
}

// Widget is the chat widget: it owns a session and turns uploads and queries
// into backend calls and transcript messages.
type Widget struct {
	session  *session.Session
	backend  Backend
	renderer *Renderer
	controls Controls
	logger   *zap.Logger
}

func New(sess *session.Session, be Backend, transcript Transcript, controls Controls, opts Options, logger *zap.Logger) *Widget {
	renderer := NewRenderer(transcript, opts.CopyFeedbackDelay, logger)
	if opts.Now != nil {
		renderer.now = opts.Now
	}
	return &Widget{
		session:  sess,
		backend:  be,
		renderer: renderer,
		controls: controls,
		logger:   logger.With(zap.String("session_id", sess.ID().String())),
	}
}

func (w *Widget) Session() *session.Session { return w.session }

func (w *Widget) Renderer() *Renderer { return w.renderer }

// HandleUpload sends the selected files to the backend and records the dataset
// on success. An empty selection does nothing.
func (w *Widget) HandleUpload(ctx context.Context, files []backend.File) {
	if len(files) == 0 {
		return
	}

	w.logger.Info("Uploading file",
		zap.String("filename", files[0].Name),
		zap.Int("file_count", len(files)))

	w.controls.SetLoading(true)
	resp, err := w.backend.Upload(ctx, files)
	w.controls.SetLoading(false)
	w.controls.ResetFileInput()

	if err != nil {
		w.logger.Error("Upload error", zap.Error(err))
		w.renderer.Render(MessageAssistant, msgUploadServerError, false)
		return
	}

	switch outcome := classifyUpload(resp).(type) {
	case uploadAccepted:
		w.session.SetActiveDataset(outcome.dataset)
		w.renderer.Render(MessageAssistant, fmt.Sprintf(msgUploadSuccess, outcome.label), false)
	case uploadRejected:
		w.logger.Warn("Backend rejected upload", zap.String("message", resp.Message))
		w.renderer.Render(MessageAssistant, msgUploadRejected, false)
	}
}

// HandleQuery sends a natural-language query for the active dataset and
// renders the generated SQL followed by the result or the error.
func (w *Widget) HandleQuery(ctx context.Context, text string) {
	if _, ok := w.session.ActiveDataset(); !ok {
		w.renderer.Render(MessageAssistant, msgNeedDataset, false)
		return
	}

	query := strings.TrimSpace(text)
	if query == "" {
		return
	}

	w.renderer.Render(MessageUser, query, false)
	w.controls.ClearQueryInput()

	resp, err := w.backend.Query(ctx, query)
	if err != nil {
		w.logger.Error("Query error", zap.Error(err))
		w.renderer.Render(MessageAssistant, msgQueryServerError, false)
		return
	}

	switch outcome := classifyQuery(resp).(type) {
	case queryAnswered:
		w.renderer.Render(MessageAssistant, outcome.sql, true)
		w.renderer.Render(MessageAssistant, format.FormatQueryResult(outcome.results), false)
		// Raw dump of results.data; overlaps the formatted rows above.
		w.renderer.Render(MessageAssistant, "<strong>Result:</strong> "+format.Stringify(outcome.data), false)
	case queryFlagged:
		w.renderer.Render(MessageAssistant, outcome.sql, true)
		w.renderer.Render(MessageAssistant, "<strong>Error:</strong> "+outcome.message, false)
	case queryBroken:
		w.renderer.Render(MessageAssistant, outcome.sql, true)
		w.logger.Error("Query error", zap.String("reason", "results missing from response"))
		w.renderer.Render(MessageAssistant, msgQueryServerError, false)
	}
}

// ToggleDarkMode flips the theme and pushes it to the surface.
func (w *Widget) ToggleDarkMode() string {
	theme := w.session.ToggleDarkMode()
	w.controls.SetTheme(theme)
	return theme
}

// InitTheme applies the surface's initial preference.
func (w *Widget) InitTheme(prefersDark bool) {
	if prefersDark && !w.session.DarkMode() {
		w.ToggleDarkMode()
	}
}
