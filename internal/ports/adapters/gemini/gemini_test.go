package gemini

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forPelevin/goalcut/internal/ports"
)

func testAdapter(t *testing.T, handler http.Handler) *Adapter {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	a := New("test-key", "gemini-2.0-flash", srv.URL, 3*time.Second, time.Minute)
	a.sleep = func(context.Context, time.Duration) error { return nil }
	return a
}

func TestUpload(t *testing.T) {
	var gotPath, gotProto string
	a := testAdapter(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotProto = r.Header.Get("X-Goog-Upload-Protocol")
		w.Write([]byte(`{"file":{"name":"files/abc123","uri":"https://files/abc123","state":"PROCESSING"}}`))
	}))

	tmp := filepath.Join(t.TempDir(), "part_001.mp4")
	require.NoError(t, os.WriteFile(tmp, []byte("mp4"), 0o644))

	h, err := a.Upload(context.Background(), tmp)
	require.NoError(t, err)
	assert.Equal(t, "/upload/v1beta/files", gotPath)
	assert.Equal(t, "raw", gotProto)
	assert.Equal(t, "files/abc123", h.Name)
	assert.Equal(t, "https://files/abc123", h.URI)
}

func TestUpload_MissingFile(t *testing.T) {
	a := testAdapter(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	_, err := a.Upload(context.Background(), filepath.Join(t.TempDir(), "nope.mp4"))
	assert.Error(t, err)
}

func TestPollUntilReady_EventuallyActive(t *testing.T) {
	states := []string{"PROCESSING", "PROCESSING", "ACTIVE"}
	calls := 0
	a := testAdapter(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1beta/files/abc123", r.URL.Path)
		w.Write([]byte(`{"name":"files/abc123","state":"` + states[calls] + `"}`))
		calls++
	}))

	state, err := a.PollUntilReady(context.Background(), ports.UploadHandle{Name: "files/abc123"})
	require.NoError(t, err)
	assert.Equal(t, ports.FileStateActive, state)
	assert.Equal(t, 3, calls)
}

func TestPollUntilReady_Failed(t *testing.T) {
	a := testAdapter(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"name":"files/abc123","state":"FAILED"}`))
	}))

	state, err := a.PollUntilReady(context.Background(), ports.UploadHandle{Name: "files/abc123"})
	require.NoError(t, err)
	assert.Equal(t, ports.FileStateFailed, state)
}

func TestPollUntilReady_Timeout(t *testing.T) {
	a := testAdapter(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"name":"files/abc123","state":"PROCESSING"}`))
	}))

	// Fake clock: every sleep advances past the poll timeout.
	clock := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	a.now = func() time.Time { return clock }
	a.sleep = func(_ context.Context, d time.Duration) error {
		clock = clock.Add(a.pollTimeout + d)
		return nil
	}

	_, err := a.PollUntilReady(context.Background(), ports.UploadHandle{Name: "files/abc123"})
	assert.ErrorIs(t, err, ErrPollTimeout)
}

func TestAnalyze(t *testing.T) {
	a := testAdapter(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1beta/models/gemini-2.0-flash:generateContent", r.URL.Path)
		w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"[00:00:12, "},{"text":"00:00:29]"}]}}]}`))
	}))

	text, err := a.Analyze(context.Background(), ports.UploadHandle{URI: "https://files/abc123"}, "find goals")
	require.NoError(t, err)
	assert.Equal(t, "[00:00:12, 00:00:29]", text)
}

func TestAnalyze_HTTPErrorIsRedacted(t *testing.T) {
	a := testAdapter(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"error":"bad key test-key for ?key=test-key"}`))
	}))

	_, err := a.Analyze(context.Background(), ports.UploadHandle{URI: "u"}, "p")
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "test-key")
}

func TestAnalyze_NoCandidates(t *testing.T) {
	a := testAdapter(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"candidates":[]}`))
	}))

	_, err := a.Analyze(context.Background(), ports.UploadHandle{URI: "u"}, "p")
	assert.Error(t, err)
}

func TestRedactSecrets(t *testing.T) {
	apiKey := "AIzaSy-super-secret"
	in := `status 403; url=/v1beta/files/x?key=AIzaSy-super-secret; api_key=AIzaSy-super-secret`
	got := redactSecrets(in, apiKey)

	assert.NotContains(t, got, apiKey)
	assert.Contains(t, got, "?key=[REDACTED]")
	assert.Contains(t, got, "api_key=[REDACTED]")
}
