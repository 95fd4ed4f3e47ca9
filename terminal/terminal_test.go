package terminal

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"query-chat/backend"

	"github.com/aymanbagabas/go-osc52/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubBackend struct {
	uploaded  []string
	contents  []string
	queries   []string
	queryBody string
}

func (s *stubBackend) Upload(ctx context.Context, files []backend.File) (*backend.UploadResponse, error) {
	for _, f := range files {
		data, err := io.ReadAll(f.Content)
		if err != nil {
			return nil, err
		}
		s.uploaded = append(s.uploaded, f.Name)
		s.contents = append(s.contents, string(data))
	}
	return &backend.UploadResponse{Success: true, Message: files[0].Name, Dataset: files[0].Name}, nil
}

func (s *stubBackend) Query(ctx context.Context, query string) (*backend.QueryResponse, error) {
	s.queries = append(s.queries, query)
	var resp backend.QueryResponse
	if err := json.Unmarshal([]byte(s.queryBody), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func runScript(t *testing.T, be *stubBackend, script string) string {
	t.Helper()
	var out bytes.Buffer
	term := New(be, strings.NewReader(script), &out, Options{}, zap.NewNop())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, term.Run(ctx))
	return out.String()
}

func TestQueryBeforeUpload(t *testing.T) {
	be := &stubBackend{}
	out := runScript(t, be, "how many rows?\n")

	assert.Contains(t, out, "I need a dataset before I can work my SQL magic.")
	assert.Empty(t, be.queries)
}

func TestUploadThenQuery(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sales.csv")
	require.NoError(t, os.WriteFile(path, []byte("region,total\nEU,3\n"), 0o644))

	be := &stubBackend{
		queryBody: `{"sql_query":"SELECT COUNT(*) FROM sales","results":[{"row_count":3}]}`,
	}
	out := runScript(t, be, "/upload "+path+"\n  how many rows?  \n/copy\n")

	assert.Equal(t, []string{"sales.csv"}, be.uploaded)
	assert.Equal(t, []string{"region,total\nEU,3\n"}, be.contents)
	assert.Equal(t, []string{"how many rows?"}, be.queries)

	assert.Contains(t, out, "Uploading...")
	assert.Contains(t, out, "Successfully uploaded sales.csv.")
	assert.Contains(t, out, "you: how many rows?")
	assert.Contains(t, out, "SELECT COUNT(*) FROM sales")
	assert.Contains(t, out, "row count: 3")
	assert.Contains(t, out, "Result: undefined")

	assert.Contains(t, out, osc52.New("SELECT COUNT(*) FROM sales").String())
	assert.Contains(t, out, "✅ Copied!")
}

func TestUploadMissingFile(t *testing.T) {
	be := &stubBackend{}
	out := runScript(t, be, "/upload /does/not/exist.csv\n")

	assert.Contains(t, out, "Cannot open /does/not/exist.csv")
	assert.Empty(t, be.uploaded)
}

func TestCommands(t *testing.T) {
	tests := []struct {
		name   string
		script string
		want   []string
		absent []string
	}{
		{
			name:   "theme toggles",
			script: "/theme\n/theme\n",
			want:   []string{"Theme: light", "Theme: dark"},
		},
		{
			name:   "copy with nothing rendered",
			script: "/copy\n",
			want:   []string{"Nothing to copy yet."},
		},
		{
			name:   "unknown command",
			script: "/frobnicate\n",
			want:   []string{"Unknown command /frobnicate."},
		},
		{
			name:   "help",
			script: "/help\n",
			want:   []string{"/upload <file>..."},
		},
		{
			name:   "quit stops reading",
			script: "/quit\n/help\n",
			absent: []string{"/upload <file>..."},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := runScript(t, &stubBackend{}, tt.script)
			for _, w := range tt.want {
				assert.Contains(t, out, w)
			}
			for _, a := range tt.absent {
				assert.NotContains(t, out, a)
			}
		})
	}
}

func TestClearReprintsWelcome(t *testing.T) {
	out := runScript(t, &stubBackend{}, "/clear\n")
	assert.Equal(t, 2, strings.Count(out, "Chat with your data"))
}

func TestBaseName(t *testing.T) {
	assert.Equal(t, "a.csv", baseName("/tmp/x/a.csv"))
	assert.Equal(t, "b.xlsx", baseName(`C:\data\b.xlsx`))
	assert.Equal(t, "c.json", baseName("c.json"))
}
