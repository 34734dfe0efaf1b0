package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObjectURLRoundTrip(t *testing.T) {
	url := ObjectURL("voice-notes", "voice_notes/123_note.m4a")
	assert.Equal(t, "storage://voice-notes/voice_notes/123_note.m4a", url)

	bucket, key, err := ParseObjectURL(url)
	require.NoError(t, err)
	assert.Equal(t, "voice-notes", bucket)
	assert.Equal(t, "voice_notes/123_note.m4a", key)
}

func TestParseObjectURLRejectsMalformed(t *testing.T) {
	tests := []string{
		"",
		"https://example.com/file",
		"storage://",
		"storage://bucket-only",
		"storage://bucket/",
		"storage:///key",
	}

	for _, input := range tests {
		_, _, err := ParseObjectURL(input)
		assert.Error(t, err, "input %q", input)
	}
}

func TestLocalGateway(t *testing.T) {
	gw := NewLocalGateway(t.TempDir(), "test-bucket")
	ctx := context.Background()

	url, err := gw.Put(ctx, "voice_notes/1_note.m4a", []byte("audio"), "audio/mp4")
	require.NoError(t, err)
	assert.Equal(t, ObjectURL("test-bucket", "voice_notes/1_note.m4a"), url)

	data, err := gw.Fetch(ctx, url)
	require.NoError(t, err)
	assert.Equal(t, []byte("audio"), data)

	require.NoError(t, gw.Remove(ctx, url))
	_, err = gw.Fetch(ctx, url)
	assert.Error(t, err)

	// Removing a missing object is not an error
	assert.NoError(t, gw.Remove(ctx, url))
}

func TestLocalGatewayRejectsTraversal(t *testing.T) {
	gw := NewLocalGateway(t.TempDir(), "test-bucket")
	ctx := context.Background()

	_, err := gw.Fetch(ctx, "storage://test-bucket/../outside")
	assert.Error(t, err)

	err = gw.Remove(ctx, "storage://test-bucket/../../etc/passwd")
	assert.Error(t, err)
}
