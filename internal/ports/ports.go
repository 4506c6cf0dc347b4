package ports

import "context"

// FileState is the remote readiness state of an uploaded chunk.
type FileState string

const (
	FileStatePending FileState = "PROCESSING"
	FileStateActive  FileState = "ACTIVE"
	FileStateFailed  FileState = "FAILED"
)

// UploadHandle identifies an uploaded chunk on the inference service.
// Name is the resource polled for readiness; URI is what analysis references.
type UploadHandle struct {
	Name string
	URI  string
}

type VideoTool interface {
	ProbeDuration(ctx context.Context, inPath string) (float64, error)
	ExtractRange(ctx context.Context, inPath string, startSec, endSec int, outPath string) error
	Concat(ctx context.Context, clipPaths []string, outPath string) error
}

type Inference interface {
	Upload(ctx context.Context, path string) (UploadHandle, error)
	PollUntilReady(ctx context.Context, h UploadHandle) (FileState, error)
	Analyze(ctx context.Context, h UploadHandle, prompt string) (string, error)
}
