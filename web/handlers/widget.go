package handlers

import (
	"net/http"

	"query-chat/config"
	apperrors "query-chat/errors"
	"query-chat/format"
	"query-chat/session"
	"query-chat/web/components"
	"query-chat/web/middleware"
	"query-chat/web/services"
	"query-chat/widget"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type WidgetHandler struct {
	sessions    *services.SessionService
	uploads     *services.UploadService
	backend     widget.Backend
	cfg         *config.Config
	logger      *zap.Logger
	welcomeHTML string
}

type QueryRequest struct {
	Query string `json:"query" form:"query"`
}

type ThemeRequest struct {
	PrefersDark *bool `json:"prefers_dark" form:"prefers_dark"`
}

func NewWidgetHandler(sessions *services.SessionService, uploads *services.UploadService, backend widget.Backend, cfg *config.Config, logger *zap.Logger) *WidgetHandler {
	return &WidgetHandler{
		sessions:    sessions,
		uploads:     uploads,
		backend:     backend,
		cfg:         cfg,
		logger:      logger,
		welcomeHTML: format.MarkdownToHTML(widget.WelcomeMarkdown),
	}
}

// Index serves the chat page. Every page load starts a new session and drops
// the one it replaces, so a reload forgets the active dataset and the theme.
func (h *WidgetHandler) Index(c *gin.Context) {
	if cookie, err := c.Cookie(middleware.SessionCookieName); err == nil {
		if id, err := uuid.Parse(cookie); err == nil {
			h.sessions.Delete(id)
		}
	}
	sess := h.sessions.Create()
	middleware.SetSessionCookie(c, sess)

	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Status(http.StatusOK)
	page := components.ChatPage(components.PageData{Theme: sess.Theme(), WelcomeHTML: h.welcomeHTML})
	if err := page.Render(c.Request.Context(), c.Writer); err != nil {
		h.logger.Error("Failed to render chat page", zap.Error(err))
	}
}

// Upload forwards the selected files (repeated "file" field) to the backend.
func (h *WidgetHandler) Upload(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		rejectRequest(c, h.logger, http.StatusBadRequest, "Expected a multipart file upload", err)
		return
	}

	opened, err := h.uploads.OpenFiles(form.File["file"])
	if err != nil {
		if apperrors.IsInvalidInput(err) {
			rejectRequest(c, h.logger, http.StatusBadRequest, err.Error(), nil)
			return
		}
		rejectRequest(c, h.logger, http.StatusInternalServerError, "Could not read uploaded file", err)
		return
	}
	defer opened.Close()

	sess := middleware.CurrentSession(c)
	f := newFrame(c.Request.Context(), c.Writer, h.logger)
	h.newWidget(sess, f).HandleUpload(c.Request.Context(), opened.Files)
	f.finish(sess.Theme())
}

// Query runs one natural-language query for the session's dataset.
func (h *WidgetHandler) Query(c *gin.Context) {
	var req QueryRequest
	if err := c.ShouldBind(&req); err != nil {
		rejectRequest(c, h.logger, http.StatusBadRequest, "Invalid request", err)
		return
	}

	sess := middleware.CurrentSession(c)
	f := newFrame(c.Request.Context(), c.Writer, h.logger)
	h.newWidget(sess, f).HandleQuery(c.Request.Context(), req.Query)
	f.finish(sess.Theme())
}

// Theme toggles dark mode, or applies the browser preference when
// prefers_dark is sent.
func (h *WidgetHandler) Theme(c *gin.Context) {
	var req ThemeRequest
	if err := c.ShouldBind(&req); err != nil {
		rejectRequest(c, h.logger, http.StatusBadRequest, "Invalid request", err)
		return
	}

	sess := middleware.CurrentSession(c)
	f := newFrame(c.Request.Context(), c.Writer, h.logger)
	w := h.newWidget(sess, f)
	if req.PrefersDark != nil {
		w.InitTheme(*req.PrefersDark)
	} else {
		w.ToggleDarkMode()
	}
	f.finish(sess.Theme())
}

func (h *WidgetHandler) newWidget(sess *session.Session, f *frame) *widget.Widget {
	return widget.New(sess, h.backend, f, f, widget.Options{CopyFeedbackDelay: h.cfg.CopyFeedbackDelay}, h.logger)
}
