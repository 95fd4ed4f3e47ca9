package backend

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"query-chat/config"
	apperrors "query-chat/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(&config.Config{BackendURL: srv.URL + "/"}, zap.NewNop())
}

func TestUploadSendsEveryFile(t *testing.T) {
	var names, contents []string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/upload", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		for _, fh := range r.MultipartForm.File["file"] {
			f, err := fh.Open()
			require.NoError(t, err)
			b, _ := io.ReadAll(f)
			f.Close()
			names = append(names, fh.Filename)
			contents = append(contents, string(b))
		}
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"success": true, "message": "sales, costs"}`)
	})

	resp, err := client.Upload(context.Background(), []File{
		{Name: "sales.csv", Content: strings.NewReader("a,b\n1,2\n")},
		{Name: "costs.csv", Content: strings.NewReader("c\n3\n")},
	})
	require.NoError(t, err)

	assert.True(t, resp.Success)
	assert.Equal(t, "sales, costs", resp.Message)
	assert.Equal(t, []string{"sales.csv", "costs.csv"}, names)
	assert.Equal(t, []string{"a,b\n1,2\n", "c\n3\n"}, contents)
}

func TestUploadErrorBodyIsAnAnswer(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		io.WriteString(w, `{"error": "No file provided"}`)
	})

	resp, err := client.Upload(context.Background(), nil)
	require.NoError(t, err)
	assert.False(t, resp.Success)
}

func TestUploadResponseIsReadLoosely(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		wantSuccess bool
		wantMessage string
		wantDataset string
	}{
		{"typed", `{"success": true, "message": "sales.csv"}`, true, "sales.csv", "sales.csv"},
		{"truthy number and numeric message", `{"success": 1, "message": 42}`, true, "42", "42"},
		{"truthy string without message", `{"success": "yes"}`, true, "undefined", ""},
		{"zero message", `{"success": true, "message": 0}`, true, "0", ""},
		{"empty message", `{"success": true, "message": ""}`, true, "", ""},
		{"falsy success", `{"success": 0, "message": "sales.csv"}`, false, "sales.csv", "sales.csv"},
		{"array body", `[]`, false, "undefined", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				io.WriteString(w, tt.body)
			})

			resp, err := client.Upload(context.Background(), []File{{Name: "sales.csv", Content: strings.NewReader("a\n")}})
			require.NoError(t, err)
			assert.Equal(t, tt.wantSuccess, resp.Success)
			assert.Equal(t, tt.wantMessage, resp.Message)
			assert.Equal(t, tt.wantDataset, resp.Dataset)
		})
	}
}

func TestQueryPostsJSON(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/query", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "total sales", body["query"])
		io.WriteString(w, `{"sql_query": "SELECT SUM(amount) FROM sales;", "results": {"data": "<table></table>"}}`)
	})

	resp, err := client.Query(context.Background(), "total sales")
	require.NoError(t, err)
	assert.Equal(t, "SELECT SUM(amount) FROM sales;", resp.SQLQuery)
	assert.JSONEq(t, `{"data": "<table></table>"}`, string(resp.Results))
}

func TestQueryDecodeFailures(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "html_error_page", body: "<html>Internal Server Error</html>"},
		{name: "null_payload", body: "null"},
		{name: "truncated", body: `{"sql_query": "SELECT`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				io.WriteString(w, tt.body)
			})

			_, err := client.Query(context.Background(), "anything")
			require.Error(t, err)
			assert.True(t, apperrors.IsDecode(err))
			assert.False(t, apperrors.IsTransport(err))
		})
	}
}

func TestQueryTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	client := New(&config.Config{BackendURL: url}, zap.NewNop())
	_, err := client.Query(context.Background(), "anything")
	require.Error(t, err)
	assert.True(t, apperrors.IsTransport(err))
}
