package ffmpeg

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConcatList(t *testing.T) {
	got := concatList([]string{"/tmp/a.mp4", "/tmp/b.mp4"})
	assert.Equal(t, "file '/tmp/a.mp4'\nfile '/tmp/b.mp4'\n", got)
}

func TestEscapeConcatPath(t *testing.T) {
	assert.Equal(t, `/tmp/it'\''s.mp4`, escapeConcatPath("/tmp/it's.mp4"))
	assert.Equal(t, "/tmp/plain.mp4", escapeConcatPath("/tmp/plain.mp4"))
}
