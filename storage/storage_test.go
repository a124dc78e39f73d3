package storage

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStoreRoundTrip(t *testing.T) {
	s, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, "modules/1/video.mp4", strings.NewReader("frames"), "video/mp4"))

	rc, err := s.Open(ctx, "modules/1/video.mp4")
	require.NoError(t, err)
	body, _ := io.ReadAll(rc)
	rc.Close()
	assert.Equal(t, "frames", string(body))

	require.NoError(t, s.Delete(ctx, "modules/1/video.mp4"))
	_, err = s.Open(ctx, "modules/1/video.mp4")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLocalStoreKeysStayInsideRoot(t *testing.T) {
	root := t.TempDir()
	s, err := NewLocalStore(root)
	require.NoError(t, err)

	require.NoError(t, s.Save(context.Background(), "../../escape.txt", strings.NewReader("x"), "text/plain"))
	rc, err := s.Open(context.Background(), "escape.txt")
	require.NoError(t, err, "traversal segments are cleaned into the root")
	rc.Close()
}
