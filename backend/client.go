package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"query-chat/config"
	apperrors "query-chat/errors"
	"query-chat/format"

	"go.uber.org/zap"
)

const (
	uploadPath = "/upload"
	queryPath  = "/query"

	// uploadField is repeated once per attached file.
	uploadField = "file"
)

// File is one dataset attached to an upload.
type File struct {
	Name    string
	Content io.Reader
}

// UploadResponse mirrors the backend's /upload answer. Fields are read
// loosely: any truthy success counts, and message is interpolated as text.
// Dataset is the message when it is truthy and empty otherwise.
type UploadResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Dataset string `json:"-"`
}

func (r *UploadResponse) UnmarshalJSON(data []byte) error {
	v, err := format.DecodeJSON(data)
	if err != nil {
		return err
	}
	success, err := format.Property(v, "success")
	if err != nil {
		return err
	}
	message, err := format.Property(v, "message")
	if err != nil {
		return err
	}

	*r = UploadResponse{
		Success: format.Truthy(success),
		Message: format.Stringify(message),
	}
	if format.Truthy(message) {
		r.Dataset = r.Message
	}
	return nil
}

// QueryResponse mirrors the backend's /query answer. Results is kept raw: the
// backend sends an object, a JSON-encoded string or an array depending on how
// execution went.
type QueryResponse struct {
	SQLQuery string          `json:"sql_query"`
	Results  json.RawMessage `json:"results"`
}

type queryRequest struct {
	Query string `json:"query"`
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

func New(cfg *config.Config, logger *zap.Logger) *Client {
	// A zero timeout leaves cancellation to the caller's context.
	return &Client{
		baseURL:    strings.TrimRight(cfg.BackendURL, "/"),
		httpClient: &http.Client{Timeout: cfg.BackendTimeout},
		logger:     logger,
	}
}

// Upload posts every file under the same multipart field. HTTP status codes are
// not inspected; any JSON body is returned for the caller to judge.
func (c *Client) Upload(ctx context.Context, files []File) (*UploadResponse, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for _, f := range files {
		part, err := mw.CreateFormFile(uploadField, f.Name)
		if err != nil {
			return nil, fmt.Errorf("create form file %q: %w", f.Name, err)
		}
		if _, err := io.Copy(part, f.Content); err != nil {
			return nil, fmt.Errorf("read upload %q: %w", f.Name, err)
		}
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("finalize multipart body: %w", err)
	}

	var out UploadResponse
	if err := c.post(ctx, uploadPath, mw.FormDataContentType(), &body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Query posts a natural-language query.
func (c *Client) Query(ctx context.Context, query string) (*QueryResponse, error) {
	jsonBody, err := json.Marshal(queryRequest{Query: query})
	if err != nil {
		return nil, fmt.Errorf("marshal query request: %w", err)
	}

	var out QueryResponse
	if err := c.post(ctx, queryPath, "application/json", bytes.NewReader(jsonBody), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) post(ctx context.Context, path, contentType string, body io.Reader, out any) error {
	url := c.baseURL + path

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return fmt.Errorf("create %s request: %w", path, err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return apperrors.Mark(fmt.Errorf("send %s request: %w", path, err), apperrors.ErrTransport)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return apperrors.Mark(fmt.Errorf("read %s response: %w", path, err), apperrors.ErrTransport)
	}

	if resp.StatusCode != http.StatusOK {
		c.logger.Debug("Backend answered with non-200 status",
			zap.String("path", path),
			zap.String("status", resp.Status))
	}

	if bytes.Equal(bytes.TrimSpace(bodyBytes), []byte("null")) {
		return apperrors.Mark(fmt.Errorf("decode %s response: empty payload", path), apperrors.ErrDecode)
	}
	if err := json.Unmarshal(bodyBytes, out); err != nil {
		return apperrors.Mark(fmt.Errorf("decode %s response (status %s): %w", path, resp.Status, err), apperrors.ErrDecode)
	}
	return nil
}
