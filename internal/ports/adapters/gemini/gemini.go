package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/forPelevin/goalcut/internal/ports"
)

const requestTimeout = 90 * time.Second

// ErrPollTimeout is returned when an uploaded file never leaves the
// processing state within the configured poll timeout.
var ErrPollTimeout = errors.New("gemini: poll timeout waiting for file to become active")

type Adapter struct {
	key          string
	model        string
	baseURL      string
	pollInterval time.Duration
	pollTimeout  time.Duration
	client       *http.Client
	logger       *zap.Logger

	// Injected so tests run without wall-clock time.
	sleep func(ctx context.Context, d time.Duration) error
	now   func() time.Time
}

func New(apiKey, model, baseURL string, pollInterval, pollTimeout time.Duration) *Adapter {
	return NewWithLogger(apiKey, model, baseURL, pollInterval, pollTimeout, nil)
}

func NewWithLogger(apiKey, model, baseURL string, pollInterval, pollTimeout time.Duration, logger *zap.Logger) *Adapter {
	if model == "" {
		model = "gemini-2.0-flash"
	}
	if pollInterval <= 0 {
		pollInterval = 3 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Adapter{
		key:          apiKey,
		model:        model,
		baseURL:      normalizeBaseURL(baseURL),
		pollInterval: pollInterval,
		pollTimeout:  pollTimeout,
		client:       &http.Client{Timeout: 5 * time.Minute},
		logger:       logger,
		sleep:        sleepCtx,
		now:          time.Now,
	}
}

type fileInfo struct {
	Name  string `json:"name"`
	URI   string `json:"uri"`
	State string `json:"state"`
}

// Upload sends the chunk media to the Files API and returns its handle.
func (a *Adapter) Upload(ctx context.Context, path string) (ports.UploadHandle, error) {
	f, err := os.Open(path)
	if err != nil {
		return ports.UploadHandle{}, fmt.Errorf("gemini upload: open %s: %w", path, err)
	}
	defer f.Close()

	reqCtx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	url := a.baseURL + "/upload/v1beta/files?key=" + a.key
	req, err := http.NewRequestWithContext(reqCtx, "POST", url, f)
	if err != nil {
		return ports.UploadHandle{}, err
	}
	req.Header.Set("Content-Type", "video/mp4")
	req.Header.Set("X-Goog-Upload-Protocol", "raw")

	resp, err := a.client.Do(req)
	if err != nil {
		return ports.UploadHandle{}, fmt.Errorf("gemini upload: %w", err)
	}
	defer resp.Body.Close()
	if err := checkStatus(resp, a.key, "gemini upload"); err != nil {
		return ports.UploadHandle{}, err
	}

	var raw struct {
		File fileInfo `json:"file"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return ports.UploadHandle{}, fmt.Errorf("gemini upload: decode response: %w", err)
	}
	if raw.File.Name == "" {
		return ports.UploadHandle{}, errors.New("gemini upload: response missing file name")
	}
	a.logger.Debug("uploaded chunk",
		zap.String("file", raw.File.Name),
		zap.String("state", raw.File.State))
	return ports.UploadHandle{Name: raw.File.Name, URI: raw.File.URI}, nil
}

// PollUntilReady blocks until the uploaded file is Active or Failed, checking
// at the configured interval. A non-positive poll timeout means no bound.
func (a *Adapter) PollUntilReady(ctx context.Context, h ports.UploadHandle) (ports.FileState, error) {
	deadline := time.Time{}
	if a.pollTimeout > 0 {
		deadline = a.now().Add(a.pollTimeout)
	}
	for {
		info, err := a.getFile(ctx, h.Name)
		if err != nil {
			return ports.FileStateFailed, err
		}
		switch ports.FileState(info.State) {
		case ports.FileStateActive:
			return ports.FileStateActive, nil
		case ports.FileStateFailed:
			return ports.FileStateFailed, nil
		}
		if !deadline.IsZero() && !a.now().Before(deadline) {
			return ports.FileStateFailed, ErrPollTimeout
		}
		if err := a.sleep(ctx, a.pollInterval); err != nil {
			return ports.FileStateFailed, err
		}
	}
}

// Analyze asks the model about the uploaded chunk and returns its raw text.
// Retrying is the caller's job; a single failed request is a single error.
func (a *Adapter) Analyze(ctx context.Context, h ports.UploadHandle, prompt string) (string, error) {
	payload := map[string]any{
		"contents": []map[string]any{
			{
				"parts": []map[string]any{
					{"file_data": map[string]any{"file_uri": h.URI, "mime_type": "video/mp4"}},
					{"text": prompt},
				},
			},
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("gemini analyze: marshal request: %w", err)
	}

	reqCtx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	url := a.baseURL + "/v1beta/models/" + a.model + ":generateContent?key=" + a.key
	req, err := http.NewRequestWithContext(reqCtx, "POST", url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		if errors.Is(reqCtx.Err(), context.DeadlineExceeded) {
			return "", fmt.Errorf("gemini timeout after %s (model=%s)", requestTimeout, a.model)
		}
		return "", fmt.Errorf("gemini analyze: %w", err)
	}
	defer resp.Body.Close()
	if err := checkStatus(resp, a.key, "gemini analyze"); err != nil {
		return "", err
	}

	var raw struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return "", fmt.Errorf("gemini analyze: decode response: %w", err)
	}
	if len(raw.Candidates) == 0 {
		return "", errors.New("gemini analyze: no candidates in response")
	}

	var b strings.Builder
	for _, p := range raw.Candidates[0].Content.Parts {
		b.WriteString(p.Text)
	}
	text := strings.TrimSpace(b.String())
	if text == "" {
		return "", errors.New("gemini analyze: empty candidate text")
	}
	return text, nil
}

func (a *Adapter) getFile(ctx context.Context, name string) (fileInfo, error) {
	reqCtx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	url := a.baseURL + "/v1beta/" + name + "?key=" + a.key
	req, err := http.NewRequestWithContext(reqCtx, "GET", url, nil)
	if err != nil {
		return fileInfo{}, err
	}
	resp, err := a.client.Do(req)
	if err != nil {
		return fileInfo{}, fmt.Errorf("gemini get file: %w", err)
	}
	defer resp.Body.Close()
	if err := checkStatus(resp, a.key, "gemini get file"); err != nil {
		return fileInfo{}, err
	}

	var info fileInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return fileInfo{}, fmt.Errorf("gemini get file: decode response: %w", err)
	}
	return info, nil
}

func checkStatus(resp *http.Response, apiKey, op string) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	rb, readErr := io.ReadAll(resp.Body)
	if readErr != nil {
		return fmt.Errorf("%s: status %d and read body failed: %v", op, resp.StatusCode, readErr)
	}
	return fmt.Errorf("%s: status %d: %s", op, resp.StatusCode, truncate(redactSecrets(string(rb), apiKey), 400))
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

var (
	keyParamRE    = regexp.MustCompile(`(?i)([?&]key=)[^&\s"]+`)
	apiKeyFieldRE = regexp.MustCompile(`(?i)(api[_-]?key\s*[:=]\s*)([^\n\r,;]+)`)
)

func redactSecrets(s, apiKey string) string {
	if s == "" {
		return s
	}
	out := s
	if apiKey != "" {
		out = strings.ReplaceAll(out, apiKey, "[REDACTED]")
	}
	out = keyParamRE.ReplaceAllString(out, "${1}[REDACTED]")
	out = apiKeyFieldRE.ReplaceAllString(out, "${1}[REDACTED]")
	return out
}
